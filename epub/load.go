package epub

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bookr/archive"
	"bookr/markup"
)

// Load reads EPUB file and converts every readable spine document into a
// chapter. Spine entries which cannot be used are skipped, book without any
// chapters is rejected with ErrInvalidArchive.
func Load(fname string, log *zap.Logger) (book *Book, err error) {
	a, err := archive.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(a))

	log.Debug("Loading book", zap.String("file", fname))
	defer func(start time.Time) {
		if err == nil {
			log.Debug("Book loaded", zap.Int("chapters", len(book.Chapters)), zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	opfPath, err := packagePath(a)
	if err != nil {
		return nil, err
	}

	data, err := a.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read package document: %w", ErrInvalidArchive, err)
	}
	pkg, err := parsePackage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse package document %s: %w", ErrInvalidArchive, opfPath, err)
	}

	book = &Book{
		Meta:    pkg.meta,
		entries: a.Names(),
	}
	for _, idref := range pkg.spine {
		ch, err := readChapter(a, opfPath, idref, pkg.manifest)
		if err != nil {
			log.Debug("Skipping spine entry", zap.String("idref", idref), zap.Error(err))
			continue
		}
		ch.Title = "Chapter " + strconv.Itoa(len(book.Chapters)+1)
		book.Chapters = append(book.Chapters, ch)
	}

	if len(book.Chapters) == 0 {
		return nil, fmt.Errorf("%w: no readable chapters found in spine", ErrInvalidArchive)
	}
	return book, nil
}

// readChapter resolves single spine entry. All failures are reported as
// errChapterUnavailable.
func readChapter(a *archive.Archive, opfPath, idref string, manifest map[string]manifestItem) (Chapter, error) {
	if idref == "" {
		return Chapter{}, fmt.Errorf("%w: empty idref", errChapterUnavailable)
	}
	item, ok := manifest[idref]
	if !ok {
		return Chapter{}, fmt.Errorf("%w: no manifest item", errChapterUnavailable)
	}
	if !chapterMediaTypes[item.mediaType] {
		return Chapter{}, fmt.Errorf("%w: media type %q", errChapterUnavailable, item.mediaType)
	}

	href := resolveHref(opfPath, item.href)
	if !a.Has(href) {
		// some producers percent-encode hrefs, some archive entries
		if unescaped, err := url.PathUnescape(href); err == nil && a.Has(unescaped) {
			href = unescaped
		}
	}

	data, err := a.ReadFile(href)
	if err != nil {
		return Chapter{}, fmt.Errorf("%w: %w", errChapterUnavailable, err)
	}

	return Chapter{
		ID:   idref,
		Href: href,
		Text: markup.ToText(decodeText(data)),
	}, nil
}

// decodeText decodes UTF-8 replacing invalid sequences with U+FFFD, leading
// byte order mark is dropped.
func decodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		// should not happen, decoder replaces rather than fails
		return string([]rune(string(data)))
	}
	return string(out)
}
