// Package epub reads EPUB containers into an ordered list of plain text
// chapters.
package epub

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrInvalidArchive is returned when file cannot be read as a book at all:
// no container pointer, unusable package document or no readable chapters.
var ErrInvalidArchive = errors.New("invalid epub")

// errChapterUnavailable marks spine entries skipped during loading.
var errChapterUnavailable = errors.New("chapter unavailable")

const (
	defaultTitle   = "Untitled"
	defaultCreator = "Unknown"
)

// BookMeta is descriptive information from the package document.
type BookMeta struct {
	Title      string
	Creator    string
	Language   string
	Identifier string
}

// LanguageName returns English name of the book language or empty string if
// language is absent or cannot be recognized.
func (m BookMeta) LanguageName() string {
	if m.Language == "" {
		return ""
	}
	tag, err := language.Parse(m.Language)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

// Chapter is a single readable spine document. Title is synthesized from
// chapter position, Href is a path inside the archive.
type Chapter struct {
	ID    string
	Title string
	Href  string
	Text  string
}

// Book is a loaded EPUB. Chapters are in spine order and never empty.
type Book struct {
	Meta     BookMeta
	Chapters []Chapter

	// archive entries, used by debug dump only
	entries []string
}
