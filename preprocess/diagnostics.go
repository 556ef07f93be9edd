package preprocess

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind classifies diagnostics produced during conversion.
type Kind int

const (
	KindMissingSemicolon Kind = iota
	KindDuplicateMixin
	KindMalformedMixin
	KindUnknownMixin
	KindRecursiveMixin
	KindImportFailed
	KindUnbalancedBrace
)

var kindNames = [...]string{
	KindMissingSemicolon: "missing-semicolon",
	KindDuplicateMixin:   "duplicate-mixin",
	KindMalformedMixin:   "malformed-mixin",
	KindUnknownMixin:     "unknown-mixin",
	KindRecursiveMixin:   "recursive-mixin",
	KindImportFailed:     "import-failed",
	KindUnbalancedBrace:  "unbalanced-brace",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Diagnostic is an advisory message about questionable input. Diagnostics
// never change produced CSS.
type Diagnostic struct {
	Kind      Kind
	Source    string // base path of converted sheet or "pscss"
	Line      int    // estimated, 0 when unknown
	Construct string // offending text
	Message   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s (%s)", d.Source, d.Line, d.Message, d.Construct)
}

// report records the diagnostic and logs it.
func (c *Context) report(kind Kind, line int, construct, format string, args ...any) {
	d := Diagnostic{
		Kind:      kind,
		Source:    c.source,
		Line:      line,
		Construct: construct,
		Message:   fmt.Sprintf(format, args...),
	}
	c.diags = append(c.diags, d)
	c.log.Warn(d.Message,
		zap.Stringer("kind", kind), zap.String("source", d.Source), zap.Int("line", d.Line), zap.String("construct", construct))
}
