package infer

import (
	"strings"

	"github.com/eleven-am/genkit/internal/model"
)

// nameRule overrides inferred fields from a column-name suffix. Rules run in order after
// the type defaults; an exclusive rule stops the rules after it from being considered.
type nameRule struct {
	suffixes  []string
	apply     func(c *model.Column)
	exclusive bool
}

func (r nameRule) matches(columnName string) bool {
	lower := strings.ToLower(columnName)
	for _, s := range r.suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func widget(h model.HTMLType) func(c *model.Column) {
	return func(c *model.Column) { c.HTMLType = h }
}

var nameRules = []nameRule{
	{suffixes: []string{"name"}, apply: func(c *model.Column) { c.QueryType = model.QueryLike }},
	{suffixes: []string{"status"}, apply: widget(model.HTMLRadio), exclusive: true},
	{suffixes: []string{"sex", "type"}, apply: widget(model.HTMLSelect), exclusive: true},
	{suffixes: []string{"file", "image"}, apply: widget(model.HTMLUpload), exclusive: true},
	{suffixes: []string{"content"}, apply: widget(model.HTMLEditor), exclusive: true},
}
