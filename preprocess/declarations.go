package preprocess

import (
	"regexp"
	"strings"
)

var (
	missingSemicolonRe = regexp.MustCompile(`(\w+\s*:\s*[\w"'\x{E000}\x{E001}]+)( *[}\n])`)
	nestedPropsRe      = regexp.MustCompile(`([\w-]+)\s*:\s*\{([^}]+)\}`)
	subPropRe          = regexp.MustCompile(`([\w-]+)\s*:`)
)

// fixMissingSemicolons terminates "name: value" pairs directly followed by a
// closing brace or a line break. This is a heuristic, it may fire on
// ambiguous text (a selector with pseudo class at the end of line) and miss
// multi-word values.
func (c *Context) fixMissingSemicolons(text string) string {
	return replaceAllSubmatchFunc(missingSemicolonRe, text, func(m []string, offset int) string {
		c.report(KindMissingSemicolon, lineAt(text, offset), c.vault.Restore(m[1]), "missing semicolon for %q", c.vault.Restore(m[1]))
		return m[1] + ";" + m[2]
	})
}

// flattenNestedProperties turns "font: { family: x; size: 1em; }" into
// "font-family: x; font-size: 1em;". Only one level of nesting is supported.
func flattenNestedProperties(text string) string {
	return replaceAllSubmatchFunc(nestedPropsRe, text, func(m []string, _ int) string {
		main := m[1]
		return subPropRe.ReplaceAllStringFunc(m[2], func(sub string) string {
			name := strings.TrimSpace(strings.TrimSuffix(sub, ":"))
			return main + "-" + name + ":"
		})
	})
}
