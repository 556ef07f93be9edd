package preprocess

import (
	"regexp"
	"strings"
)

// listSepRe separates items of comma or newline delimited lists.
var listSepRe = regexp.MustCompile(`\s*[\n,]+\s*`)

func normalizeNewlines(s string) string {
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
}

// lineAt estimates 1-based line number of offset in s.
func lineAt(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s) {
		offset = len(s)
	}
	return strings.Count(s[:offset], "\n") + 1
}

// replaceAllSubmatchFunc is regexp.ReplaceAllStringFunc which also provides
// submatches and the offset of every match.
func replaceAllSubmatchFunc(re *regexp.Regexp, s string, fn func(m []string, offset int) string) string {
	all := re.FindAllStringSubmatchIndex(s, -1)
	if len(all) == 0 {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, loc := range all {
		sb.WriteString(s[last:loc[0]])
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		sb.WriteString(fn(m, loc[0]))
		last = loc[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// closing returns index of end which balances the first begin found at or
// after from or -1 if the pair is never closed. Openers are only counted while
// they precede the currently expected closer, so text like "{ } }" closes at
// the first "}".
func closing(s string, from int, begin, end string) int {
	open := indexFrom(s, begin, from)
	if open < 0 {
		return -1
	}
	closeAt := indexFrom(s, end, from)
	for closeAt >= 0 {
		next := indexFrom(s, begin, open+len(begin))
		if next <= open || next >= closeAt {
			break
		}
		open = next
		closeAt = indexFrom(s, end, closeAt+len(end))
	}
	return closeAt
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return i + from
}

// cutBalanced removes every block starting with prefix and spanning balanced
// begin/end pair, text returned by handle takes its place. Processing stops at
// the first block which is never closed, leaving rest of the text intact.
func cutBalanced(s, prefix, begin, end string, handle func(block string, offset int) string) string {
	var (
		sb       strings.Builder
		consumed int
	)
	for {
		start := strings.Index(s, prefix)
		if start < 0 {
			break
		}
		closeAt := closing(s, start, begin, end)
		if closeAt < 0 {
			break
		}
		stop := closeAt + len(end)
		sb.WriteString(s[:start])
		if handle != nil {
			sb.WriteString(handle(s[start:stop], consumed+start))
		}
		s = s[stop:]
		consumed += stop
	}
	sb.WriteString(s)
	return sb.String()
}

// splitTopLevel splits s on any of seps which are not enclosed in
// parentheses or brackets. Parts are trimmed.
func splitTopLevel(s, seps string) []string {
	var (
		parts []string
		depth int
		last  int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.IndexByte(seps, c) >= 0:
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[last:]))
}

// matchParen returns index of parenthesis closing the one at open or -1.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
