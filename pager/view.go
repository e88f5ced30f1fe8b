package pager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"bookr/config"
	"bookr/epub"
	"bookr/layout"
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	keysHint    = "Keys: ↑/↓ or j/k line  d/u half-page  q quit"
)

var errNotTerminal = errors.New("output is not a terminal")

// Viewer renders chapters page by page.
type Viewer struct {
	cfg   *config.ReaderConfig
	out   io.Writer
	keys  KeySource
	size  func() (width, height int, err error)
	clear bool
	log   *zap.Logger
}

type Option func(*Viewer)

// WithTerminalSize overrides terminal size detection.
func WithTerminalSize(fn func() (width, height int, err error)) Option {
	return func(v *Viewer) {
		v.size = fn
	}
}

// NewViewer creates viewer writing pages to out. Screen is cleared between
// pages only when out is a terminal and configuration allows it.
func NewViewer(cfg *config.ReaderConfig, out io.Writer, keys KeySource, log *zap.Logger, opts ...Option) *Viewer {
	v := &Viewer{
		cfg:  cfg,
		out:  out,
		keys: keys,
		log:  log,
		size: func() (int, int, error) { return 0, 0, errNotTerminal },
	}
	if f, ok := out.(*os.File); ok {
		v.size = func() (int, int, error) { return term.GetSize(int(f.Fd())) }
		v.clear = cfg.ClearScreen && config.EnableColorOutput(f)
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Geometry returns wrap width and number of text lines on a page for the
// current terminal size.
func (v *Viewer) Geometry() (width, pageSize int) {
	cols, rows, err := v.size()
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = v.cfg.DefaultWidth, v.cfg.DefaultHeight
	}
	width = max(v.cfg.MinWidth, cols-1)
	pageSize = max(v.cfg.MinPageLines, rows-v.cfg.ReservedLines)
	return width, pageSize
}

func (v *Viewer) chapterLines(book *epub.Book, idx, width int) ([]string, error) {
	if book == nil || idx < 0 || idx >= len(book.Chapters) {
		return nil, fmt.Errorf("chapter index %d out of range", idx)
	}
	return strings.Split(layout.Wrap(book.Chapters[idx].Text, width), "\n"), nil
}

// InitialView returns text of the first page of chapter idx without drawing
// anything.
func (v *Viewer) InitialView(book *epub.Book, idx int) string {
	width, pageSize := v.Geometry()
	lines, err := v.chapterLines(book, idx, width)
	if err != nil {
		return ""
	}
	return strings.Join(Visible(lines, 0, pageSize), "\n")
}

// Render shows chapter idx and processes keys until quit is requested.
// It returns text of the last page shown. When key source fails the last
// page is returned together with the error.
func (v *Viewer) Render(book *epub.Book, idx int) (string, error) {
	width, pageSize := v.Geometry()
	lines, err := v.chapterLines(book, idx, width)
	if err != nil {
		return "", err
	}

	v.log.Debug("Viewing chapter",
		zap.Int("chapter", idx+1),
		zap.Int("lines", len(lines)),
		zap.Int("width", width),
		zap.Int("page", pageSize))

	fmt.Fprintln(v.out)
	offset := 0
	for {
		visible := Visible(lines, offset, pageSize)
		v.draw(book.Chapters[idx], idx, offset, visible, len(lines), width)

		key, err := v.keys.ReadKey()
		if err != nil {
			return strings.Join(visible, "\n"), err
		}
		if key == KeyQuit {
			return strings.Join(visible, "\n"), nil
		}
		offset = NextOffset(offset, key, len(lines), pageSize)
	}
}

func (v *Viewer) draw(ch epub.Chapter, idx, offset int, visible []string, total, width int) {
	var b strings.Builder
	if v.clear {
		b.WriteString(clearScreen)
	}
	rule := strings.Repeat("-", width)

	fmt.Fprintf(&b, "[%d] %s (%s)\n", idx+1, ch.Title, ch.Href)
	fmt.Fprintf(&b, "Lines %d-%d of %d\n", offset+1, offset+len(visible), total)
	b.WriteString(rule + "\n")
	for _, line := range visible {
		b.WriteString(line + "\n")
	}
	b.WriteString(rule + "\n")
	b.WriteString(keysHint + "\n")

	if _, err := io.WriteString(v.out, b.String()); err != nil {
		v.log.Debug("Unable to draw page", zap.Error(err))
	}
}
