package render

import "strings"

// NamePlaceholder is the token in a template identifier replaced by the generated name.
const NamePlaceholder = "[name]"

// TemplateExt is the extension every template identifier carries.
const TemplateExt = ".tmpl"

// FileName derives the output path of a template for the given context.
func FileName(template string, ctx *Context) string {
	switch {
	case strings.HasPrefix(template, "nest/entities"):
		return replaceExt(template, ".ts", ctx.ClassNameKebabCase)
	case strings.HasPrefix(template, "nest/") && strings.HasSuffix(template, "mapper.xml"+TemplateExt):
		return replaceExt(template, "", ctx.BusinessNameKebabCase)
	case strings.HasPrefix(template, "nest/"):
		return replaceExt(template, ".ts", ctx.BusinessNameKebabCase)
	case strings.HasPrefix(template, "react/apis"):
		return strings.TrimSuffix(template, TemplateExt) + ".ts"
	case strings.HasPrefix(template, "react/"):
		return strings.TrimSuffix(template, TemplateExt) + ".tsx"
	default:
		return replaceExt(template, "", ctx.BusinessNameKebabCase)
	}
}

func replaceExt(template, ext, name string) string {
	path := strings.TrimSuffix(template, TemplateExt) + ext
	return strings.ReplaceAll(path, NamePlaceholder, name)
}
