// Package render implements {{name}} token substitution for action
// template fields.
package render

import "regexp"

// token matches a single {{name}} placeholder. Matching is case-sensitive
// and non-greedy; nested or escaped braces are not supported.
var token = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Render replaces every recognized {{name}} token in tmpl with its value
// from data. A token whose name is absent from data, or whose value is the
// empty string, is left unchanged including its braces. The empty-string
// case mirrors the legacy falsy check and is covered by tests; callers that
// want a blank substitution must omit the token from the template.
func Render(tmpl string, data map[string]string) string {
	if tmpl == "" {
		return ""
	}
	return token.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := data[name]; ok && v != "" {
			return v
		}
		return match
	})
}

// RenderMap renders every string value of fields in place and returns the
// map for chaining.
func RenderMap(fields map[string]string, data map[string]string) map[string]string {
	for k, v := range fields {
		fields[k] = Render(v, data)
	}
	return fields
}

// ExtractVariables scans one or more template strings and returns the
// deduplicated token names in first-seen order. The result drives the
// preview UI that asks for sample values.
func ExtractVariables(templates ...string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tmpl := range templates {
		for _, m := range token.FindAllStringSubmatch(tmpl, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}
