// Package debug has helpers producing human readable dumps of internal
// structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines, one node per line.
type TreeWriter struct {
	w     *strings.Builder
	lines int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

// Lines returns number of lines written so far.
func (tw *TreeWriter) Lines() int {
	return tw.lines
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.end()
}

// Node writes label followed by key=value attributes. Attributes come in
// pairs, odd trailing key is written without value.
func (tw *TreeWriter) Node(depth int, label string, attrs ...any) {
	tw.pad(depth)
	tw.w.WriteString(label)
	for i := 0; i < len(attrs); i += 2 {
		fmt.Fprintf(tw.w, " %v", attrs[i])
		if i+1 < len(attrs) {
			fmt.Fprintf(tw.w, "=%v", attrs[i+1])
		}
	}
	tw.end()
}

// TextBlock writes labeled value, value is quoted so line breaks and
// non-printable characters stay visible.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.end()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(indent)
	}
}

func (tw *TreeWriter) end() {
	tw.w.WriteByte('\n')
	tw.lines++
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
