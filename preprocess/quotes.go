package preprocess

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder runes come from the private use area so they never appear in
// real style sheets. Both ends are delimited, index 1 cannot swallow a
// following digit.
const (
	quoteOpen  = '\uE000'
	quoteClose = '\uE001'
)

var placeholderRe = regexp.MustCompile(`\x{E000}Q(\d+)\x{E001}`)

// Vault keeps quoted literals (quote characters included) out of reach of
// textual passes. Literals are addressed by 1-based index.
type Vault struct {
	quotes []string
}

func placeholder(n int) string {
	return string(quoteOpen) + "Q" + strconv.Itoa(n) + string(quoteClose)
}

// Protect replaces every single or double quoted literal with a placeholder.
// Literals do not span lines, escaped terminators do not close a literal and
// unterminated quotes are left alone.
func (v *Vault) Protect(text string) string {
	if !strings.ContainsAny(text, `"'`) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		if c := text[i]; c == '"' || c == '\'' {
			if end := literalEnd(text, i); end > 0 {
				v.quotes = append(v.quotes, text[i:end])
				sb.WriteString(placeholder(len(v.quotes)))
				i = end
				continue
			}
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}

// literalEnd returns position right after the quote closing literal started
// at start or -1 when there is none on the same line.
func literalEnd(text string, start int) int {
	q := text[start]
	for j := start + 1; j < len(text); j++ {
		switch text[j] {
		case '\n':
			return -1
		case q:
			if j == start+1 || text[j-1] != '\\' {
				return j + 1
			}
		}
	}
	return -1
}

// Restore puts original literals back in place of placeholders.
func (v *Vault) Restore(text string) string {
	if len(v.quotes) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		if q, ok := v.lookup(placeholderRe.FindStringSubmatch(m)[1]); ok {
			return q
		}
		return m
	})
}

// Literal returns n-th (1-based) stored literal.
func (v *Vault) Literal(n int) (string, bool) {
	if n < 1 || n > len(v.quotes) {
		return "", false
	}
	return v.quotes[n-1], true
}

// Len returns number of stored literals.
func (v *Vault) Len() int {
	return len(v.quotes)
}

func (v *Vault) lookup(index string) (string, bool) {
	n, err := strconv.Atoi(index)
	if err != nil {
		return "", false
	}
	return v.Literal(n)
}

// unquote strips surrounding quote characters from a stored literal.
func unquote(literal string) string {
	if len(literal) >= 2 && literal[0] == literal[len(literal)-1] {
		return literal[1 : len(literal)-1]
	}
	return literal
}
