// Package layout reflows plain chapter text to fixed width lines.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap reflows every input line independently to at most width display
// columns. Lines are never merged, blank lines come out empty so paragraph
// spacing survives. Words wider than width are broken.
func Wrap(text string, width int) string {
	if width < 1 {
		width = 1
	}

	src := strings.Split(text, "\n")
	out := make([]string, 0, len(src))
	for _, line := range src {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapLine greedily fills lines with words. Only ASCII whitespace separates
// words, no-break spaces keep words together.
func wrapLine(line string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}

	for _, word := range strings.FieldsFunc(line, isASCIISpace) {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww <= width {
			cur.WriteByte(' ')
			cur.WriteString(word)
			curW += 1 + ww
			continue
		}
		if curW > 0 {
			flush()
		}
		for ww > width {
			head := cutWidth(word, width)
			lines = append(lines, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		cur.WriteString(word)
		curW = ww
	}
	if curW > 0 {
		flush()
	}
	return lines
}

// cutWidth returns the longest prefix of s fitting width columns, at least
// one rune.
func cutWidth(s string, width int) string {
	head := runewidth.Truncate(s, width, "")
	if head == "" {
		for _, r := range s {
			return string(r)
		}
	}
	return head
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
