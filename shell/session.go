// Package shell runs the interactive command prompt over a loaded book.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"

	"bookr/ai"
	"bookr/epub"
)

const prompt = "bookr> "

// Renderer shows chapters, implemented by pager.Viewer.
type Renderer interface {
	// Render blocks until reader leaves the chapter and returns text which
	// was visible at that moment.
	Render(book *epub.Book, idx int) (string, error)
	// InitialView returns first page of the chapter without showing it.
	InitialView(book *epub.Book, idx int) string
}

// Session holds reader state between commands: current chapter and the text
// which was last visible, used as context for questions.
type Session struct {
	book     *epub.Book
	ai       ai.Provider
	view     Renderer
	in       *bufio.Reader
	out      io.Writer
	log      *zap.Logger
	splitter *sentences.DefaultSentenceTokenizer

	current int
	visible string
}

// New creates session. Input reader should be shared with key source when
// keys are read line by line.
func New(book *epub.Book, provider ai.Provider, view Renderer, in *bufio.Reader, out io.Writer, log *zap.Logger) *Session {
	s := &Session{
		book: book,
		ai:   provider,
		view: view,
		in:   in,
		out:  out,
		log:  log,
	}
	var err error
	if s.splitter, err = english.NewSentenceTokenizer(nil); err != nil {
		log.Warn("Sentence tokenizer is not available, search results will have no excerpts", zap.Error(err))
	}
	return s
}

// Run processes commands until quit or end of input. Context cancellation is
// noticed between commands.
func (s *Session) Run(ctx context.Context) error {
	s.visible = s.view.InitialView(s.book, s.current)

	s.printf("Loaded: %s by %s\n", s.book.Meta.Title, s.book.Meta.Creator)
	s.printf("Type `help` for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s", prompt)
		line, err := s.in.ReadString('\n')
		if err != nil && len(line) == 0 {
			if errors.Is(err, io.EOF) {
				s.printf("\n")
				return nil
			}
			return fmt.Errorf("unable to read command: %w", err)
		}

		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		cmd, arg := splitCommand(raw)
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		s.log.Debug("Command", zap.String("cmd", cmd), zap.String("arg", arg))
		s.dispatch(ctx, cmd, arg)
	}
}

// splitCommand returns lower cased first word and the rest of the line.
func splitCommand(raw string) (cmd, arg string) {
	cmd = raw
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		cmd, arg = raw[:i], raw[i:]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
