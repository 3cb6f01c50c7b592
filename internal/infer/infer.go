// Package infer derives generation metadata from raw table and column definitions.
package infer

import (
	"strconv"
	"strings"

	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/naming"
)

// Defaults are the deployment constants stamped onto freshly imported tables.
type Defaults struct {
	Module   string
	Author   string
	Category string
}

// DefaultDefaults returns the built-in attribution.
func DefaultDefaults() Defaults {
	return Defaults{Module: DefaultModule, Author: DefaultAuthor, Category: DefaultCategory}
}

// Table bootstraps naming metadata for a live table.
func Table(name, comment string, d Defaults) model.Table {
	if d.Module == "" {
		d.Module = DefaultModule
	}
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}

	return model.Table{
		TableName:        name,
		TableComment:     comment,
		ClassName:        ClassName(name),
		ModuleName:       d.Module,
		BusinessName:     BusinessName(name),
		FunctionName:     FunctionName(comment),
		FunctionAuthor:   d.Author,
		TemplateCategory: d.Category,
	}
}

// ClassName is the PascalCase form of the full table name.
func ClassName(tableName string) string {
	return naming.Pascal(tableName)
}

// BusinessName is the camelCase form of the last "_" separated segment of the table name.
func BusinessName(tableName string) string {
	parts := strings.Split(tableName, "_")
	return naming.Camel(parts[len(parts)-1])
}

// FunctionName is the table comment with every occurrence of "table" removed.
func FunctionName(comment string) string {
	return strings.TrimSpace(strings.ReplaceAll(comment, "table", ""))
}

// BaseType strips the parenthesized suffix: "varchar(100)" -> "varchar".
func BaseType(columnType string) string {
	if i := strings.Index(columnType, "("); i > 0 {
		return strings.TrimSpace(columnType[:i])
	}
	return strings.TrimSpace(columnType)
}

// TypeSuffix returns the text between the first "(" and the last ")", and whether one
// was present: "decimal(10,2)" -> "10,2".
func TypeSuffix(columnType string) (string, bool) {
	open := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if open < 0 || end <= open {
		return "", false
	}
	return columnType[open+1 : end], true
}

// Column returns c with every inferred field computed from its name, type and flags.
// Source fields (name, type, sort, comment, pk, increment, required) pass through.
func Column(c model.Column) model.Column {
	base := strings.ToLower(BaseType(c.ColumnType))
	name := c.ColumnName

	c.FieldName = naming.Camel(name)
	c.QueryType = model.QueryEQ
	c.TSType = model.TSString
	c.JavaType = model.JavaString
	c.HTMLType = ""
	c.DictType = ""
	c.IsEdit, c.IsInsert, c.IsList, c.IsQuery = false, false, false, false

	if !in(notEditable, name) && !bool(c.IsPk) {
		c.IsEdit = true
		c.IsInsert = true
	}
	if !in(notListable, name) && !bool(c.IsPk) {
		c.IsList = true
	}
	if !in(notQueryable, name) && !bool(c.IsPk) {
		c.IsQuery = true
	}

	suffix, _ := TypeSuffix(c.ColumnType)

	switch {
	case in(stringTypes, base):
		c.HTMLType = model.HTMLInput
		if n, ok := parseNumber(suffix); ok && n >= textareaLength {
			c.HTMLType = model.HTMLTextarea
		}
	case in(textTypes, base):
		c.HTMLType = model.HTMLTextarea
	case in(timeTypes, base):
		c.HTMLType = model.HTMLDatetime
		c.JavaType = model.JavaDate
	case in(numberTypes, base):
		c.HTMLType = model.HTMLNumber
		c.TSType = model.TSNumber
		c.JavaType = numberJavaType(suffix)
	}

	for _, rule := range nameRules {
		if rule.matches(name) {
			rule.apply(&c)
			if rule.exclusive {
				break
			}
		}
	}

	return c
}

// Columns infers every column in order.
func Columns(columns []model.Column) []model.Column {
	out := make([]model.Column, len(columns))
	for i, c := range columns {
		out[i] = Column(c)
	}
	return out
}

func numberJavaType(suffix string) string {
	if suffix == "" {
		return model.JavaLong
	}

	parts := strings.Split(suffix, ",")
	if len(parts) == 2 {
		if n, ok := parseNumber(parts[0]); ok && n > 0 {
			return model.JavaBigDecimal
		}
	}
	if len(parts) == 1 {
		if n, ok := parseNumber(parts[0]); ok && n <= 10 {
			return model.JavaInteger
		}
	}
	return model.JavaLong
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
