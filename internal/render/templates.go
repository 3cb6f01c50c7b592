package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates
var embedded embed.FS

// ErrUnknownCategory is returned for a template category with no groups.
var ErrUnknownCategory = errors.New("unknown template category")

// Group is a named, ordered list of template identifiers for one target stack.
type Group struct {
	Name  string
	Files []string
}

var (
	nestGroup = Group{
		Name: "Nest",
		Files: []string{
			"nest/[name].module.tmpl",
			"nest/[name].controller.tmpl",
			"nest/[name].service.tmpl",
			"nest/dto/[name].dto.tmpl",
			"nest/entities/[name].entity.tmpl",
			"nest/[name].mapper.tmpl",
			"nest/[name].mapper.xml.tmpl",
		},
	}
	reactGroup = Group{
		Name: "React",
		Files: []string{
			"react/index.tmpl",
			"react/components/UpdateForm.tmpl",
			"react/apis/index.tmpl",
			"react/apis/model.tmpl",
		},
	}
)

var categories = map[string][]Group{
	"crud":  {nestGroup, reactGroup},
	"1":     {nestGroup, reactGroup},
	"nest":  {nestGroup},
	"react": {reactGroup},
}

// Groups returns the template groups rendered for a table's category. An empty category
// falls back to crud.
func Groups(category string) ([]Group, error) {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		key = "crud"
	}

	groups, ok := categories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Files: append([]string(nil), g.Files...)}
	}
	return out, nil
}

// Templates resolves template identifiers to text. Files in the override directory take
// precedence over the embedded set, one file at a time.
type Templates struct {
	base     fs.FS
	override fs.FS
}

// NewTemplates returns the embedded templates, overridden by dir when it is not empty.
func NewTemplates(dir string) *Templates {
	base, _ := fs.Sub(embedded, "templates")
	t := &Templates{base: base}
	if dir != "" {
		t.override = os.DirFS(dir)
	}
	return t
}

// NewTemplatesFS resolves templates from fsys only.
func NewTemplatesFS(fsys fs.FS) *Templates {
	return &Templates{base: fsys}
}

// Text returns the template text for id.
func (t *Templates) Text(id string) (string, error) {
	if t.override != nil {
		data, err := fs.ReadFile(t.override, id)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template override %s: %w", id, err)
		}
	}

	data, err := fs.ReadFile(t.base, id)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", id, err)
	}
	return string(data), nil
}
