// Package render turns a generation table into source files: it builds the template
// context, executes templates and derives output paths.
package render

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/naming"
)

// Delimiters used by every template. Generated TSX is full of "{{ }}".
const (
	LeftDelim  = "[["
	RightDelim = "]]"
)

// Renderer executes templates against a Context.
type Renderer struct {
	funcs template.FuncMap
	log   logger.Logger
}

// NewRenderer returns a renderer with the helper functions installed.
func NewRenderer() *Renderer {
	return &Renderer{funcs: Funcs(), log: logger.Render()}
}

// Funcs returns the helpers available to templates. None of them mutate their arguments.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"isIn":       isIn,
		"notIn":      func(collection, value interface{}) bool { return !isIn(collection, value) },
		"isEqual":    isEqual,
		"notEqual":   func(a, b interface{}) bool { return !isEqual(a, b) },
		"isRequire":  isRequire,
		"notRequire": func(v interface{}) bool { return !isRequire(v) },
		"camel":      naming.Camel,
		"pascal":     naming.Pascal,
		"kebab":      naming.Kebab,
		"plural":     naming.Plural,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"join":       strings.Join,
		"jsString":   jsString,
		"jsxAttr":    jsxAttr,
	}
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"`", "\\`",
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// jsString escapes s for use inside a quoted or template JavaScript string literal.
func jsString(s string) string {
	return jsEscaper.Replace(s)
}

var jsxAttrEscaper = strings.NewReplacer(`&`, `&amp;`, `"`, `&quot;`)

// jsxAttr escapes s for use inside a double-quoted JSX attribute, which does not honour
// backslash escapes.
func jsxAttr(s string) string {
	return jsxAttrEscaper.Replace(s)
}

// Render executes text as a template named name.
func (r *Renderer) Render(name, text string, ctx *Context) (string, error) {
	tmpl, err := template.New(name).
		Delims(LeftDelim, RightDelim).
		Funcs(r.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// normalize collapses typed strings to string, flags and bools to "1"/"0" and numbers to
// int64 or float64 so values of different declared types compare by content.
func normalize(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		if rv.Bool() {
			return model.Required
		}
		return "0"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}

func isEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// isIn reports whether collection contains value. Strings match by substring, maps by value.
func isIn(collection, value interface{}) bool {
	if collection == nil {
		return false
	}

	rv := reflect.ValueOf(collection)
	switch rv.Kind() {
	case reflect.String:
		s, ok := normalize(value).(string)
		return ok && strings.Contains(rv.String(), s)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if isEqual(rv.Index(i).Interface(), value) {
				return true
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if isEqual(iter.Value().Interface(), value) {
				return true
			}
		}
	}
	return false
}

func isRequire(v interface{}) bool {
	return normalize(v) == model.Required
}

// File is one rendered output of a table.
type File struct {
	Group    string `json:"group"`
	Template string `json:"template"`
	Path     string `json:"path"`
	Content  string `json:"content"`
}

// RenderTable renders every template of the table's category, group by group, in order.
func (r *Renderer) RenderTable(t model.Table, src *Templates) ([]File, error) {
	groups, err := Groups(t.TemplateCategory)
	if err != nil {
		return nil, err
	}

	log := r.log.WithField("table", t.TableName)

	ctx := BuildContext(t)
	var files []File
	for _, g := range groups {
		for _, id := range g.Files {
			text, err := src.Text(id)
			if err != nil {
				return nil, err
			}

			content, err := r.Render(id, text, ctx)
			if err != nil {
				log.WithError(err).Error("Template failed", "template", id)
				return nil, err
			}

			files = append(files, File{
				Group:    g.Name,
				Template: id,
				Path:     FileName(id, ctx),
				Content:  content,
			})
		}
	}

	log.Debug("Rendered table", "files", len(files))
	return files, nil
}
