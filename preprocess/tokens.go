package preprocess

import (
	"strings"

	"github.com/edwingeng/deque"
)

const delimiters = ";{}"

// token is a statement or a single delimiter with the line it starts on.
type token struct {
	text string
	line int
}

// tokenize cuts text into queue of statements and delimiters. Text after the
// last delimiter is not a complete statement and is dropped.
func tokenize(text string) deque.Deque {
	q := deque.NewDeque()
	line := 1
	for {
		i := strings.IndexAny(text, delimiters)
		if i < 0 {
			return q
		}
		stmt := text[:i]
		if t := strings.TrimSpace(stmt); t != "" {
			lead := stmt[:strings.Index(stmt, t)]
			q.PushBack(token{text: t, line: line + strings.Count(lead, "\n")})
		}
		line += strings.Count(stmt, "\n")
		q.PushBack(token{text: text[i : i+1], line: line})
		text = text[i+1:]
	}
}
