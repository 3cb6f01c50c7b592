package render

import (
	"regexp"
	"strings"

	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/naming"
)

// ColumnContext is a column enriched with the values templates need.
type ColumnContext struct {
	model.Column

	// FieldLabel is the column comment without its trailing parenthetical annotation.
	FieldLabel        string
	DictTypeCamelcase string

	// Split from the type suffix: precision/scale for numeric types, length otherwise.
	ColumnLength    string
	ColumnPrecision string
	ColumnScale     string
}

// Context is everything a template can reference for one table.
type Context struct {
	model.Table

	Columns []ColumnContext

	Constants Constants

	ControllerName string

	ClassNameCamelcase  string
	ClassNamePascalCase string
	ClassNameKebabCase  string

	BusinessNameCamelcase  string
	BusinessNamePascalCase string
	BusinessNameKebabCase  string

	PkColumn    ColumnContext
	DictColumns []ColumnContext
	HTMLTypes   []model.HTMLType
}

// Constants exposes the model vocabulary to templates.
type Constants struct {
	Required string

	HTMLInput    model.HTMLType
	HTMLNumber   model.HTMLType
	HTMLTextarea model.HTMLType
	HTMLSelect   model.HTMLType
	HTMLRadio    model.HTMLType
	HTMLCheckbox model.HTMLType
	HTMLDatetime model.HTMLType
	HTMLUpload   model.HTMLType
	HTMLEditor   model.HTMLType

	QueryEQ   model.QueryType
	QueryLike model.QueryType

	JavaDate       string
	JavaBigDecimal string

	// BaseEntity lists fields inherited from the generated base entity.
	BaseEntity []string
}

var constants = Constants{
	Required:       model.Required,
	HTMLInput:      model.HTMLInput,
	HTMLNumber:     model.HTMLNumber,
	HTMLTextarea:   model.HTMLTextarea,
	HTMLSelect:     model.HTMLSelect,
	HTMLRadio:      model.HTMLRadio,
	HTMLCheckbox:   model.HTMLCheckbox,
	HTMLDatetime:   model.HTMLDatetime,
	HTMLUpload:     model.HTMLUpload,
	HTMLEditor:     model.HTMLEditor,
	QueryEQ:        model.QueryEQ,
	QueryLike:      model.QueryLike,
	JavaDate:       model.JavaDate,
	JavaBigDecimal: model.JavaBigDecimal,
	BaseEntity:     []string{"createBy", "createTime", "updateBy", "updateTime"},
}

var (
	asciiAnnotation     = regexp.MustCompile(`\(.+\)`)
	fullWidthAnnotation = regexp.MustCompile(`（.+）`)
)

// FieldLabel strips "(...)" and "（...）" annotations from a column comment.
func FieldLabel(comment string) string {
	label := asciiAnnotation.ReplaceAllString(comment, "")
	label = fullWidthAnnotation.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

// BuildContext derives the render context for a table. The table is not modified.
func BuildContext(t model.Table) *Context {
	table := t.Clone()
	model.SortColumns(table.Columns)

	ctx := &Context{
		Table:     table,
		Constants: constants,

		ControllerName: naming.Plural(naming.Kebab(table.BusinessName)),

		ClassNameCamelcase:  naming.Camel(table.ClassName),
		ClassNamePascalCase: naming.Pascal(table.ClassName),
		ClassNameKebabCase:  naming.Kebab(table.ClassName),

		BusinessNameCamelcase:  naming.Camel(table.BusinessName),
		BusinessNamePascalCase: naming.Pascal(table.BusinessName),
		BusinessNameKebabCase:  naming.Kebab(table.BusinessName),
	}

	ctx.Columns = make([]ColumnContext, 0, len(table.Columns))
	for _, c := range table.Columns {
		ctx.Columns = append(ctx.Columns, buildColumn(c))
	}
	ctx.Table.Columns = nil

	pkFound := false
	seen := make(map[model.HTMLType]bool)
	for _, c := range ctx.Columns {
		if !pkFound && bool(c.IsPk) {
			ctx.PkColumn = c
			pkFound = true
		}
		if c.DictType != "" {
			ctx.DictColumns = append(ctx.DictColumns, c)
		}
		if c.HTMLType != "" && !seen[c.HTMLType] {
			seen[c.HTMLType] = true
			ctx.HTMLTypes = append(ctx.HTMLTypes, c.HTMLType)
		}
	}
	if !pkFound && len(ctx.Columns) > 0 {
		ctx.PkColumn = ctx.Columns[0]
	}

	return ctx
}

func buildColumn(c model.Column) ColumnContext {
	cc := ColumnContext{Column: c}

	if c.ColumnComment != "" {
		cc.FieldLabel = FieldLabel(c.ColumnComment)
	}
	if c.DictType != "" {
		cc.DictTypeCamelcase = naming.Camel(c.DictType)
	}

	if c.ColumnType != "" {
		base := infer.BaseType(c.ColumnType)
		suffix, ok := infer.TypeSuffix(c.ColumnType)
		if ok {
			parts := strings.Split(suffix, ",")
			if infer.IsNumberType(strings.ToLower(base)) {
				if len(parts) == 2 {
					cc.ColumnPrecision = strings.TrimSpace(parts[0])
					cc.ColumnScale = strings.TrimSpace(parts[1])
				}
			} else {
				cc.ColumnLength = strings.TrimSpace(parts[0])
			}
		}
		cc.ColumnType = base
	}

	return cc
}
