package preprocess

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const spread = "..."

var (
	mixinRe   = regexp.MustCompile(`^@mixin\s+([\w-]+)\s*`)
	includeRe = regexp.MustCompile(`@include\s+([\w-]+)\s*`)
	contentRe = regexp.MustCompile(`@content\s*;?\s*`)
)

// Param is a formal mixin parameter.
type Param struct {
	Name    string // including "$" and trailing "..." for rest parameter
	Default string
}

func (p Param) rest() bool {
	return strings.HasSuffix(p.Name, spread)
}

// Mixin is a registered @mixin definition. Body is kept unexpanded.
type Mixin struct {
	Name   string
	Params []Param
	Body   string
}

func mixinKey(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// registerMixins collects @mixin definitions and removes them from text.
func (c *Context) registerMixins(text string) string {
	return cutBalanced(text, "@mixin", "{", "}", func(block string, offset int) string {
		m, ok := parseMixin(block)
		if !ok {
			c.report(KindMalformedMixin, lineAt(text, offset), firstLine(block), "malformed @mixin")
			return ""
		}

		key := mixinKey(m.Name)
		if _, exists := c.mixins[key]; exists {
			c.report(KindDuplicateMixin, lineAt(text, offset), m.Name, "duplicate @mixin %q", m.Name)
			return ""
		}
		c.mixins[key] = m
		c.log.Debug("Registered mixin", zap.String("name", m.Name), zap.Int("params", len(m.Params)))
		return ""
	})
}

// parseMixin splits "@mixin name(params) { body }" block.
func parseMixin(block string) (*Mixin, bool) {
	loc := mixinRe.FindStringSubmatchIndex(block)
	if loc == nil {
		return nil, false
	}
	m := &Mixin{Name: block[loc[2]:loc[3]]}

	i := loc[1]
	if i < len(block) && block[i] == '(' {
		end := matchParen(block, i)
		if end < 0 {
			return nil, false
		}
		m.Params = parseParams(block[i+1 : end])
		i = skipSpace(block, end+1)
	}
	if i >= len(block) || block[i] != '{' || !strings.HasSuffix(block, "}") {
		return nil, false
	}
	m.Body = block[i+1 : len(block)-1]
	return m, true
}

func parseParams(list string) []Param {
	var params []Param
	for _, p := range splitTopLevel(list, ",\n") {
		if p == "" {
			continue
		}
		name, def, _ := strings.Cut(p, ":")
		params = append(params, Param{Name: strings.TrimSpace(name), Default: strings.TrimSpace(def)})
	}
	return params
}

// expandIncludes replaces every @include with the mixin expansion. Outermost
// calls (guard == nil) get a fresh recursion guard, nested calls share it.
func (c *Context) expandIncludes(text string, guard map[string]bool) string {
	if !strings.Contains(text, "@include") {
		return text
	}

	var (
		sb  strings.Builder
		pos int
	)
	for {
		loc := includeRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, name, next := pos+loc[0], text[pos+loc[2]:pos+loc[3]], pos+loc[1]

		var args string
		if next < len(text) && text[next] == '(' {
			end := matchParen(text, next)
			if end < 0 {
				break
			}
			args = text[next+1 : end]
			next = skipSpace(text, end+1)
		}

		var (
			content    string
			hasContent bool
		)
		switch {
		case next < len(text) && text[next] == ';':
			next++
		case next < len(text) && text[next] == '{':
			closeAt := closing(text, next, "{", "}")
			if closeAt < 0 {
				sb.WriteString(text[pos:next])
				pos = next
				continue
			}
			content, hasContent = text[next+1:closeAt], true
			next = closeAt + 1
		default:
			// not a call we understand, leave it for the CSS consumer
			sb.WriteString(text[pos:next])
			pos = next
			continue
		}

		sb.WriteString(text[pos:start])
		g := guard
		if g == nil {
			g = make(map[string]bool)
		}
		sb.WriteString(c.include(name, args, content, hasContent, g, lineAt(text, start)))
		pos = next
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// include expands single mixin call.
func (c *Context) include(name, args, content string, hasContent bool, guard map[string]bool, line int) string {
	key := mixinKey(name)
	if guard[key] {
		c.report(KindRecursiveMixin, line, name, "endless recursion in @mixin %q", name)
		return ""
	}
	m, ok := c.mixins[key]
	if !ok {
		c.report(KindUnknownMixin, line, name, "unknown @include mixin %q", name)
		return ""
	}

	if hasContent {
		// content belongs to the caller
		content = c.expandIncludes(content, guard)
	}

	guard[key] = true
	body := c.expandIncludes(bindParams(m.Params, c.actualArgs(args), m.Body), guard)
	delete(guard, key)

	replaced := false
	body = contentRe.ReplaceAllStringFunc(body, func(s string) string {
		if replaced {
			return s
		}
		replaced = true
		return content
	})
	return c.substituteVariables(body)
}

// actualArgs splits argument list and expands "$list..." arguments using
// current variable values.
func (c *Context) actualArgs(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}

	var out []string
	for _, arg := range splitTopLevel(args, ",\n") {
		if !strings.HasSuffix(arg, spread) {
			out = append(out, arg)
			continue
		}
		name := strings.TrimPrefix(strings.TrimSuffix(arg, spread), "$")
		out = append(out, listSepRe.Split(c.vars[name], -1)...)
	}
	return out
}

// bindParams substitutes formal parameters in body. Missing arguments take
// the default value and then the previous parameter value, starting at "0".
// Trailing rest parameter collects remaining arguments.
func bindParams(params []Param, actual []string, body string) string {
	if len(params) == 0 {
		return body
	}

	type binding struct{ name, value string }
	bindings := make([]binding, 0, len(params))

	last := "0"
	for i, p := range params {
		var v string
		if i < len(actual) {
			v = actual[i]
			if p.rest() {
				v = strings.Join(actual[i:], ", ")
			}
		}
		if v == "" {
			v = p.Default
		}
		if v == "" {
			v = last
		}
		last = v
		bindings = append(bindings, binding{name: strings.TrimSuffix(p.Name, spread), value: v})
	}

	// "$a" must not eat the prefix of "$ab"
	sort.SliceStable(bindings, func(i, j int) bool { return len(bindings[i].name) > len(bindings[j].name) })
	pairs := make([]string, 0, 2*len(bindings))
	for _, b := range bindings {
		if b.name != "" {
			pairs = append(pairs, b.name, b.value)
		}
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

func skipSpace(s string, i int) int {
	for i < len(s) && strings.IndexByte(" \t\n", s[i]) >= 0 {
		i++
	}
	return i
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
