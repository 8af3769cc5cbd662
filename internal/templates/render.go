// Package templates renders outbound action emails: placeholder substitution,
// the template catalog and the branded HTML layout.
package templates

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Render replaces {{key}} placeholders (inner whitespace allowed) with values
// from vars. Placeholders without a value are left exactly as written, so
// Render(t, nil) returns t unchanged.
func Render(tpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return match
	})
}

// Placeholders lists the distinct placeholder keys of tpl in order of first use
func Placeholders(tpl string) []string {
	seen := map[string]struct{}{}
	keys := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(tpl, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

// Missing returns the placeholders of tpl that vars does not supply
func Missing(tpl string, vars map[string]string) []string {
	missing := []string{}
	for _, key := range Placeholders(tpl) {
		if _, ok := vars[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
