package epub

import (
	"unicode/utf8"

	"bookr/utils/debug"
)

// excerptLimit is how much of chapter text goes to the dump.
const excerptLimit = 120

// String returns readable tree of the loaded book. It exists solely for
// debug reports and manual inspection.
func (b *Book) String() string {
	if b == nil {
		return "<nil Book>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Book")
	tw.TextBlock(1, "title", b.Meta.Title, 0)
	tw.TextBlock(1, "creator", b.Meta.Creator, 0)
	tw.TextBlock(1, "language", b.Meta.Language, 0)
	tw.TextBlock(1, "identifier", b.Meta.Identifier, 0)

	tw.Line(0, "Chapters: %d", len(b.Chapters))
	for i, ch := range b.Chapters {
		tw.Line(1, "[%d] %s id[%q] href[%q] runes[%d]", i+1, ch.Title, ch.ID, ch.Href, utf8.RuneCountInString(ch.Text))
		tw.TextBlock(2, "text", ch.Text, excerptLimit)
	}

	if len(b.entries) > 0 {
		tw.Line(0, "Archive entries: %d", len(b.entries))
		for _, name := range b.entries {
			tw.Line(1, "%s", name)
		}
	}
	return tw.String()
}
