// Package css inspects and minifies style sheets produced by the
// preprocessor.
package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// maxErrors limits number of grammar errors collected for a single sheet,
// parser recovers from most of them and pathological input could produce one
// per token.
const maxErrors = 32

// SyntaxError describes single grammar problem in produced CSS.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
	Context string
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Report summarizes style sheet structure.
type Report struct {
	Source           string
	Rulesets         int
	Declarations     int
	CustomProperties int
	AtRules          int
	Media            int
	Imports          []string
	Errors           []SyntaxError
}

// Valid reports whether grammar check found no errors.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Checker runs CSS grammar parser over style sheets.
type Checker struct {
	log *zap.Logger
}

// NewChecker creates a new checker.
func NewChecker(log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{log: log.Named("css")}
}

// Check parses data and returns its structural summary. Check never fails,
// grammar problems are collected in the report.
func (c *Checker) Check(data []byte, source string) *Report {
	rpt := &Report{Source: source}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			se, ok := syntaxError(parser.Err())
			if !ok {
				if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
					c.log.Debug("CSS read error", zap.String("source", source), zap.Error(err))
				}
				c.log.Debug("CSS checked", zap.String("source", source), zap.Int("rulesets", rpt.Rulesets), zap.Int("errors", len(rpt.Errors)))
				return rpt
			}
			rpt.Errors = append(rpt.Errors, se)
			if len(rpt.Errors) >= maxErrors {
				c.log.Debug("Too many CSS errors, giving up", zap.String("source", source))
				return rpt
			}

		case css.AtRuleGrammar:
			rpt.AtRules++
			if bytes.EqualFold(data, []byte("@import")) {
				if url := extractImportURL(parser.Values()); url != "" {
					rpt.Imports = append(rpt.Imports, url)
				}
			}

		case css.BeginAtRuleGrammar:
			rpt.AtRules++
			if bytes.EqualFold(data, []byte("@media")) {
				rpt.Media++
			}

		case css.BeginRulesetGrammar:
			rpt.Rulesets++

		case css.DeclarationGrammar:
			rpt.Declarations++

		case css.CustomPropertyGrammar:
			rpt.CustomProperties++
		}
	}
}

func syntaxError(err error) (SyntaxError, bool) {
	var perr *parse.Error
	if !errors.As(err, &perr) {
		return SyntaxError{}, false
	}
	return SyntaxError{
		Line:    perr.Line,
		Column:  perr.Column,
		Message: perr.Message,
		Context: strings.TrimSpace(perr.Context),
	}, true
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(s)
		}
	}
	return ""
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
