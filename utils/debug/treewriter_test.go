package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "book", want: "book\n"},
		{name: "depth 2", depth: 2, format: "chapter", want: "    chapter\n"},
		{name: "with formatting", depth: 1, format: "Chapter[%d] %q", args: []any{3, "ch3"}, want: "  Chapter[3] \"ch3\"\n"},
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

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		limit int
		want  string
	}{
		{name: "empty value", label: "text", value: "", limit: 10, want: "text: \n"},
		{name: "short value", depth: 1, label: "text", value: "Hello", limit: 10, want: "  text: \"Hello\"\n"},
		{name: "no limit", label: "text", value: "line1\nline2", limit: 0, want: "text: \"line1\\nline2\"\n"},
		{name: "cut value", label: "text", value: "abcdefghij", limit: 4, want: "text: \"abcd\" (+6)\n"},
		{name: "cut counts runes", label: "text", value: "привет", limit: 2, want: "text: \"пр\" (+4)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value, tt.limit)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}
