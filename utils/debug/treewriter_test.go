package debug

import (
	"testing"
)

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.String() != "" || tw.Lines() != 0 {
		t.Error("Expected empty new TreeWriter")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{
			name:   "no depth",
			depth:  0,
			format: "test",
			want:   "test\n",
		},
		{
			name:   "depth 2",
			depth:  2,
			format: "double indent",
			want:   "    double indent\n",
		},
		{
			name:   "with formatting",
			depth:  1,
			format: "rule [%s] decls=%d",
			args:   []any{"a b", 2},
			want:   "  rule [a b] decls=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Node(t *testing.T) {
	tests := []struct {
		name  string
		attrs []any
		want  string
	}{
		{name: "no attributes", want: "  rule\n"},
		{name: "pairs", attrs: []any{"decls", 1, "children", 0}, want: "  rule decls=1 children=0\n"},
		{name: "odd key", attrs: []any{"decls", 1, "root"}, want: "  rule decls=1 root\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Node(1, "rule", tt.attrs...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Node() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: "decl: \n"},
		{name: "simple", value: "color: red;", want: "decl: \"color: red;\"\n"},
		{name: "line break", value: "a,\nb", want: "decl: \"a,\\nb\"\n"},
		{name: "quotes", value: `content: "x";`, want: "decl: \"content: \\\"x\\\";\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(0, "decl", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Lines(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "root")
	tw.Node(1, "child", "n", 1)
	tw.TextBlock(2, "decl", "x")
	if tw.Lines() != 3 {
		t.Errorf("Lines() = %d, want 3", tw.Lines())
	}
	want := "root\n  child n=1\n    decl: \"x\"\n"
	if tw.String() != want {
		t.Errorf("String() = %q, want %q", tw.String(), want)
	}
}
