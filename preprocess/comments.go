package preprocess

import "regexp"

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	// "//" right after ":" belongs to an unquoted URL scheme
	lineCommentRe = regexp.MustCompile(`(^|[^:])//[^\n]*`)
)

// stripComments removes block and line comments. Quoted literals must be
// protected before this is called. With nested set "/* /* */ */" is treated
// as a single comment.
func stripComments(text string, nested bool) string {
	if nested {
		text = cutBalanced(text, "/*", "/*", "*/", nil)
	} else {
		text = blockCommentRe.ReplaceAllString(text, "")
	}
	return lineCommentRe.ReplaceAllString(text, "$1")
}
