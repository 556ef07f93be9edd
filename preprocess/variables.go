package preprocess

import (
	"regexp"
	"strings"
)

var (
	varDeclRe  = regexp.MustCompile(`\$([-\w$]+)(\s*:\s*)(.+?);`)
	varUsageRe = regexp.MustCompile(`\$([-\w$]+)(\s+!important)?(\s*;)`)
	bareVarRe  = regexp.MustCompile(`^\$([-\w$]+)$`)
)

// substituteVariables turns "$name: value;" into "--name: value;" and
// "$name;" into "var(--name);". Declared values are copied into the variable
// table at declaration time, a value consisting of a single variable
// reference is dereferenced once. Anything else is stored verbatim.
func (c *Context) substituteVariables(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}
	text = replaceAllSubmatchFunc(varDeclRe, text, func(m []string, _ int) string {
		name, sep, value := m[1], m[2], m[3]
		if ref := bareVarRe.FindStringSubmatch(value); ref != nil {
			c.vars[name] = c.vars[ref[1]]
		} else {
			c.vars[name] = value
		}
		return "--" + name + sep + value + ";"
	})
	return varUsageRe.ReplaceAllString(text, "var(--$1)$2$3")
}
