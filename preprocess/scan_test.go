package preprocess

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClosing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		from  int
		want  int
	}{
		{name: "simple", input: "a { b }", want: 6},
		{name: "nested", input: "a { b { c } d } e }", want: 14},
		{name: "extra closer", input: "{ } }", want: 2},
		{name: "never closed", input: "a { b { c }", want: -1},
		{name: "no opener", input: "a b }", want: -1},
		{name: "from offset", input: "{ } { { } }", from: 3, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := closing(tt.input, tt.from, "{", "}"); got != tt.want {
				t.Errorf("closing(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCutBalanced(t *testing.T) {
	var offsets []int
	input := "x\n@m a { b { c } }\ny @m d { e }\nz"
	got := cutBalanced(input, "@m", "{", "}", func(block string, offset int) string {
		offsets = append(offsets, offset)
		if !strings.HasPrefix(input[offset:], block) {
			t.Errorf("offset %d does not point to block %q", offset, block)
		}
		return "#"
	})
	if want := "x\n#\ny #\nz"; got != want {
		t.Errorf("cutBalanced() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]int{2, 21}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}

	if got := cutBalanced("a @m { b", "@m", "{", "}", nil); got != "a @m { b" {
		t.Errorf("unclosed block must stay, got %q", got)
	}
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		input string
		seps  string
		want  []string
	}{
		{input: "a, b ,c", seps: ",", want: []string{"a", "b", "c"}},
		{input: "rgba(0, 0, 0), [x, y], z", seps: ",", want: []string{"rgba(0, 0, 0)", "[x, y]", "z"}},
		{input: "$a: 1,\n$b", seps: ",\n", want: []string{"$a: 1", "", "$b"}},
		{input: "", seps: ",", want: []string{""}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitTopLevel(tt.input, tt.seps)); diff != "" {
			t.Errorf("splitTopLevel(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestMatchParen(t *testing.T) {
	if got := matchParen("m(a(b), c) x", 1); got != 9 {
		t.Errorf("matchParen() = %d, want 9", got)
	}
	if got := matchParen("m(a(b", 1); got != -1 {
		t.Errorf("matchParen() = %d, want -1", got)
	}
}

func TestLineAt(t *testing.T) {
	s := "a\nb\nc"
	for offset, want := range map[int]int{0: 1, 2: 2, 4: 3, 100: 3, -1: 0} {
		if got := lineAt(s, offset); got != want {
			t.Errorf("lineAt(%d) = %d, want %d", offset, got, want)
		}
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := normalizeNewlines("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Errorf("normalizeNewlines() = %q", got)
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		nested bool
		want   string
	}{
		{name: "block", input: "a /* x\ny */b", want: "a b"},
		{name: "line", input: "a; // x\nb", want: "a; \nb"},
		{name: "line at start", input: "// x\nb", want: "\nb"},
		{name: "url scheme", input: "url(https://x.org/a)", want: "url(https://x.org/a)"},
		{name: "flat nested", input: "a /* x /* y */ z */ b", want: "a  z */ b"},
		{name: "nested", input: "a /* x /* y */ z */ b", nested: true, want: "a  b"},
		{name: "nested unclosed", input: "a /* x /* y */ b", nested: true, want: "a /* x /* y */ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripComments(tt.input, tt.nested); got != tt.want {
				t.Errorf("stripComments() = %q, want %q", got, tt.want)
			}
		})
	}
}
