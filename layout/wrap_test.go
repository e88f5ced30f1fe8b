package layout

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			name:  "short line untouched",
			text:  "Hello world",
			width: 20,
			want:  "Hello world",
		},
		{
			name:  "greedy wrap",
			text:  "the quick brown fox jumps over the lazy dog",
			width: 10,
			want:  "the quick\nbrown fox\njumps over\nthe lazy\ndog",
		},
		{
			name:  "whitespace normalized within line",
			text:  "  a   b\t\tc  ",
			width: 80,
			want:  "a b c",
		},
		{
			name:  "blank lines preserved",
			text:  "first\n\nsecond\n   \nthird",
			width: 80,
			want:  "first\n\nsecond\n\nthird",
		},
		{
			name:  "lines never merged",
			text:  "one\ntwo",
			width: 80,
			want:  "one\ntwo",
		},
		{
			name:  "long word broken",
			text:  "abcdefghij xy",
			width: 4,
			want:  "abcd\nefgh\nij\nxy",
		},
		{
			name:  "long word after text",
			text:  "ab abcdefgh",
			width: 4,
			want:  "ab\nabcd\nefgh",
		},
		{
			name:  "no-break space keeps words together",
			text:  "a\u00a0b c",
			width: 3,
			want:  "a\u00a0b\nc",
		},
		{
			name:  "empty text",
			text:  "",
			width: 10,
			want:  "",
		},
		{
			name:  "zero width treated as one",
			text:  "ab",
			width: 0,
			want:  "a\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.text, tt.width); got != tt.want {
				t.Errorf("Wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_WideRunes(t *testing.T) {
	got := Wrap("日本語のテキスト", 6)
	for _, line := range strings.Split(got, "\n") {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Errorf("line %q is %d columns wide, want at most 6", line, w)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != "日本語のテキスト" {
		t.Errorf("Wrap() = %q lost characters", got)
	}
}

func TestWrap_PreservesParagraphs(t *testing.T) {
	paragraphs := []string{
		"It was the best of times, it was the worst of times, it was the age of wisdom.",
		"Short.",
		"Call me Ishmael. Some years ago, never mind how long precisely, having little or no money in my purse.",
		"x",
	}
	text := strings.Join(paragraphs, "\n\n")

	for _, width := range []int{1, 5, 13, 40, 200} {
		lines := strings.Split(Wrap(text, width), "\n")

		var got []string
		var cur []string
		for _, l := range append(lines, "") {
			if l == "" {
				if len(cur) > 0 {
					got = append(got, strings.Join(cur, " "))
					cur = nil
				}
				continue
			}
			if runewidth.StringWidth(l) > width {
				t.Errorf("width %d: line %q too wide", width, l)
			}
			cur = append(cur, l)
		}

		if len(got) != len(paragraphs) {
			t.Fatalf("width %d: got %d paragraphs, want %d", width, len(got), len(paragraphs))
		}
		for i := range paragraphs {
			// broken words rejoin with spaces, compare without them
			if strings.ReplaceAll(got[i], " ", "") != strings.ReplaceAll(paragraphs[i], " ", "") {
				t.Errorf("width %d: paragraph %d = %q, want %q", width, i, got[i], paragraphs[i])
			}
		}
	}
}
