// Package naming converts identifiers between the casing styles used by generated code.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// Words splits an identifier into lowercase words. Any non alphanumeric rune separates
// words, as do lower-to-upper transitions ("sysUser") and the end of an uppercase run
// followed by a lowercase letter ("XMLHttp" -> xml, http).
func Words(s string) []string {
	runes := []rune(s)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}

		current = append(current, r)
	}
	flush()

	return words
}

// Camel converts s to camelCase ("sys_user_post" -> "sysUserPost").
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Pascal converts s to PascalCase ("sys_user_post" -> "SysUserPost").
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Kebab converts s to kebab-case ("SysJobLog" -> "sys-job-log").
func Kebab(s string) string {
	return strings.Join(Words(s), "-")
}

// Plural pluralizes the last word of s, keeping any prefix untouched ("job-log" -> "job-logs").
func Plural(s string) string {
	if s == "" {
		return s
	}

	cut := strings.LastIndexAny(s, "-_ ")
	if cut < 0 {
		return inflect.Pluralize(s)
	}
	return s[:cut+1] + inflect.Pluralize(s[cut+1:])
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
