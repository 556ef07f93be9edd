package css

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	parse "github.com/tdewolff/parse/v2"
	"go.uber.org/zap/zaptest"
)

func TestCheck_Counts(t *testing.T) {
	src := `@import url(theme.css);
@import "print.css";
:root { --accent: blue; --gap: 4px; }
a { color: var(--accent); margin: 0; }
@media print {
  p { margin: 0; }
}
`
	c := NewChecker(zaptest.NewLogger(t))
	rpt := c.Check([]byte(src), "main.css")

	if !rpt.Valid() {
		t.Fatalf("unexpected errors: %v", rpt.Errors)
	}
	if rpt.Source != "main.css" {
		t.Errorf("Source = %q", rpt.Source)
	}
	if rpt.Rulesets != 3 {
		t.Errorf("Rulesets = %d, want 3", rpt.Rulesets)
	}
	if rpt.Declarations != 3 {
		t.Errorf("Declarations = %d, want 3", rpt.Declarations)
	}
	if rpt.CustomProperties != 2 {
		t.Errorf("CustomProperties = %d, want 2", rpt.CustomProperties)
	}
	if rpt.AtRules != 3 {
		t.Errorf("AtRules = %d, want 3", rpt.AtRules)
	}
	if rpt.Media != 1 {
		t.Errorf("Media = %d, want 1", rpt.Media)
	}
	if diff := cmp.Diff([]string{"theme.css", "print.css"}, rpt.Imports); diff != "" {
		t.Errorf("Imports mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_Empty(t *testing.T) {
	rpt := NewChecker(nil).Check(nil, "")
	if !rpt.Valid() || rpt.Rulesets != 0 || len(rpt.Imports) != 0 {
		t.Errorf("unexpected report for empty input: %+v", rpt)
	}
}

func TestSyntaxError(t *testing.T) {
	wrapped := fmt.Errorf("check: %w", &parse.Error{
		Message: "unexpected token",
		Line:    2,
		Column:  5,
		Context: "    2: a { ; }\n",
	})

	se, ok := syntaxError(wrapped)
	if !ok {
		t.Fatal("expected parse error to be recognized")
	}
	want := SyntaxError{Line: 2, Column: 5, Message: "unexpected token", Context: "2: a { ; }"}
	if diff := cmp.Diff(want, se); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got := se.String(); got != "2:5: unexpected token" {
		t.Errorf("String() = %q", got)
	}

	for _, err := range []error{nil, io.EOF, fmt.Errorf("boom")} {
		if _, ok := syntaxError(err); ok {
			t.Errorf("syntaxError(%v) should not match", err)
		}
	}
}

func TestExtractImportURL(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`@import "a.css";`, "a.css"},
		{`@import 'b.css';`, "b.css"},
		{`@import url(c.css);`, "c.css"},
		{`@import url( "d.css" );`, "d.css"},
		{`@import url(e.css) screen;`, "e.css"},
	}
	for _, tt := range tests {
		rpt := NewChecker(nil).Check([]byte(tt.src), "")
		if len(rpt.Imports) != 1 || rpt.Imports[0] != tt.want {
			t.Errorf("%s: imports = %v, want [%s]", tt.src, rpt.Imports, tt.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	for in, want := range map[string]string{
		`"a"`:   "a",
		`'b'`:   "b",
		` "c" `: "c",
		`"d'`:   `"d'`,
		`e`:     "e",
		`"`:     `"`,
	} {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMinify(t *testing.T) {
	c := NewChecker(zaptest.NewLogger(t))
	out, err := c.Minify([]byte("a {\n  color: #ff0000;\n  margin: 0px;\n}\n\np {\n  color: blue;\n}\n"), "main.css")
	if err != nil {
		t.Fatalf("Minify: %v", err)
	}
	got := strings.TrimSpace(string(out))
	if strings.Contains(got, "\n") || strings.Contains(got, "  ") {
		t.Errorf("whitespace not removed: %q", got)
	}
	if !strings.HasPrefix(got, "a{") || !strings.Contains(got, "p{color:") {
		t.Errorf("unexpected minified output: %q", got)
	}
	if len(got) >= len("a {\n  color: #ff0000;\n  margin: 0px;\n}\n\np {\n  color: blue;\n}\n") {
		t.Errorf("output was not shortened: %q", got)
	}
}
