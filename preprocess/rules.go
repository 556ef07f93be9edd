package preprocess

import (
	"strings"

	"github.com/edwingeng/deque"

	"pscss/utils/debug"
)

const mediaKeyword = "@media"

// selector is a flattened selector together with the media condition
// promoted from nested @media blocks.
type selector struct {
	media string // condition without "@media", empty when not in media block
	path  string
}

// rule is a node of the rule tree. Declarations keep their terminators.
type rule struct {
	selectors []selector
	decls     []string
	children  []*rule
}

// buildRules consumes the token queue and returns the root of the rule tree.
// Root has a single selector: rootSelector or empty path.
func (c *Context) buildRules(q deque.Deque, rootSelector string) *rule {
	root := &rule{selectors: []selector{{path: rootSelector}}}
	for {
		line, closed := c.fill(root, q)
		if !closed {
			return root
		}
		// line is counted on processed text and is an estimate for the source
		c.report(KindUnbalancedBrace, line, "}", "unexpected closing brace at top level")
	}
}

// fill adds declarations and nested rules to r until the block is closed.
// It returns line of the closing brace, closed is false when input ends first.
func (c *Context) fill(r *rule, q deque.Deque) (line int, closed bool) {
	for !q.Empty() {
		tok := q.PopFront().(token)
		switch tok.text {
		case "}":
			return tok.line, true
		case ";":
		case "{":
			// block without selector stays in the parent context
			child := &rule{selectors: r.selectors}
			r.children = append(r.children, child)
			c.fill(child, q)
		default:
			if q.Empty() || q.Front().(token).text != "{" {
				r.decls = append(r.decls, tok.text+";")
				continue
			}
			q.PopFront()
			child := &rule{selectors: combineAll(r.selectors, splitSelectors(tok.text))}
			r.children = append(r.children, child)
			c.fill(child, q)
		}
	}
	return 0, false
}

// splitSelectors splits selector list on top-level commas and collapses
// white space inside every selector.
func splitSelectors(list string) []string {
	var out []string
	for _, s := range splitTopLevel(list, ",") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func combineAll(parents []selector, children []string) []selector {
	out := make([]selector, 0, len(parents)*len(children))
	for _, child := range children {
		for _, parent := range parents {
			out = append(out, combine(parent, child))
		}
	}
	return out
}

// combine joins nested selector with its parent. Media conditions float
// outwards: they wrap parent selector and nested conditions are joined with
// "and". Otherwise every "&" is replaced by parent, or child becomes
// parent's descendant.
func combine(parent selector, child string) selector {
	if cond, ok := mediaCondition(child); ok {
		if parent.media != "" {
			cond = parent.media + " and " + cond
		}
		return selector{media: cond, path: parent.path}
	}

	out := selector{media: parent.media}
	switch {
	case child == "":
		out.path = parent.path
	case strings.Contains(child, "&"):
		out.path = strings.ReplaceAll(child, "&", parent.path)
	case parent.path == "":
		out.path = child
	default:
		out.path = parent.path + " " + child
	}
	return out
}

func mediaCondition(s string) (string, bool) {
	if !strings.HasPrefix(s, mediaKeyword) {
		return "", false
	}
	return strings.TrimSpace(s[len(mediaKeyword):]), true
}

// render serializes tree, rules are emitted before their nested rules. When
// root is implicit (no root selector) its declarations are split into bare
// statements and custom properties wrapped into ":root".
func (r *rule) render(implicitRoot bool) string {
	var lines []string
	r.walk(func(n *rule, _ int) {
		if len(n.selectors) == 0 || len(n.decls) == 0 {
			return
		}
		if implicitRoot && n.bare() {
			lines = append(lines, renderRoot(n.decls)...)
			return
		}
		lines = append(lines, n.renderRule()...)
	}, 0)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (r *rule) walk(fn func(*rule, int), depth int) {
	fn(r, depth)
	for _, child := range r.children {
		child.walk(fn, depth+1)
	}
}

// bare is true for rules living directly in the document root.
func (r *rule) bare() bool {
	for _, s := range r.selectors {
		if s.media != "" || s.path != "" {
			return false
		}
	}
	return true
}

func (r *rule) renderRule() []string {
	// group selectors sharing media condition, keeping first appearance order
	var (
		conds  []string
		groups = make(map[string][]string)
	)
	for _, s := range r.selectors {
		paths, seen := groups[s.media]
		if !seen {
			conds = append(conds, s.media)
		}
		if s.path != "" {
			paths = append(paths, s.path)
		}
		groups[s.media] = paths
	}

	body := strings.Join(r.decls, " ")
	lines := make([]string, 0, len(conds))
	for _, cond := range conds {
		block := body
		if paths := groups[cond]; len(paths) > 0 {
			block = strings.Join(paths, ", ") + " { " + body + " }"
		}
		if cond != "" {
			block = mediaKeyword + " " + cond + " { " + block + " }"
		}
		lines = append(lines, block)
	}
	return lines
}

// renderRoot places custom properties into ":root" since they are not valid
// outside of a rule.
func renderRoot(decls []string) []string {
	var lines, props []string
	for _, d := range decls {
		if customPropertyLike(d) {
			props = append(props, d)
		} else {
			lines = append(lines, d)
		}
	}
	if len(props) > 0 {
		lines = append(lines, ":root { "+strings.Join(props, " ")+" }")
	}
	return lines
}

func customPropertyLike(decl string) bool {
	for _, prefix := range []string{"$", "--", "var("} {
		if strings.HasPrefix(decl, prefix) {
			return true
		}
	}
	if _, value, ok := strings.Cut(decl, ":"); ok {
		return strings.HasPrefix(strings.TrimSpace(value), "var(")
	}
	return false
}

// dump writes indented rule tree for debugging, restore puts quoted
// literals back.
func (r *rule) dump(restore func(string) string) string {
	tw := debug.NewTreeWriter()
	r.walk(func(n *rule, depth int) {
		names := make([]string, 0, len(n.selectors))
		for _, s := range n.selectors {
			if s.media != "" {
				names = append(names, mediaKeyword+" "+s.media+" | "+s.path)
			} else {
				names = append(names, s.path)
			}
		}
		tw.Node(depth, "rule ["+restore(strings.Join(names, ", "))+"]", "decls", len(n.decls), "children", len(n.children))
		for _, d := range n.decls {
			tw.TextBlock(depth+1, "decl", restore(d))
		}
	}, 0)
	return tw.String()
}
