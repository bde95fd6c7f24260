// Package templating renders user-provided templates such as run titles. Placeholders are written in single braces,
// e.g. `{YYYY}` or `{env:GITHUB_RUN_ID}`. Placeholders that cannot be resolved are left verbatim.
package templating

import (
	"regexp"
	"strings"
)

var placeholderRegexp = regexp.MustCompile(`\{(env:[A-Za-z_][A-Za-z0-9_]*|[A-Za-z]+)\}`)

// CompiledTemplate is a template split into literal text and placeholders.
type CompiledTemplate struct {
	Template     string
	Placeholders []string
}

// CompileTemplate finds all placeholders of a template.
func CompileTemplate(template string) CompiledTemplate {
	placeholders := make([]string, 0)
	for _, match := range placeholderRegexp.FindAllStringSubmatch(template, -1) {
		placeholders = append(placeholders, match[1])
	}

	return CompiledTemplate{Template: template, Placeholders: placeholders}
}

// Keywords returns the distinct placeholder keywords in order of appearance.
func (ct CompiledTemplate) Keywords() []string {
	seen := make(map[string]struct{}, len(ct.Placeholders))
	keywords := make([]string, 0, len(ct.Placeholders))

	for _, keyword := range ct.Placeholders {
		if _, ok := seen[keyword]; ok {
			continue
		}

		seen[keyword] = struct{}{}
		keywords = append(keywords, keyword)
	}

	return keywords
}

// Substitute replaces every placeholder for which lookup returns a value.
func (ct CompiledTemplate) Substitute(lookup func(keyword string) (string, bool)) string {
	if len(ct.Placeholders) == 0 {
		return ct.Template
	}

	return placeholderRegexp.ReplaceAllStringFunc(ct.Template, func(placeholder string) string {
		keyword := strings.TrimSuffix(strings.TrimPrefix(placeholder, "{"), "}")

		if value, ok := lookup(keyword); ok {
			return value
		}

		return placeholder
	})
}
