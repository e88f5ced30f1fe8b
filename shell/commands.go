package shell

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

const helpText = `Commands:
  help                 Show this help
  meta                 Show book metadata
  chapters             List chapters
  read <n>             Read chapter number n (interactive)
  next                 Read next chapter
  prev                 Read previous chapter
  search <query>       Search in chapter text
  ask <question>       Ask AI using currently visible text
  quit / exit          Leave reader`

const excerptWidth = 100

func (s *Session) dispatch(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "meta":
		s.meta()
	case "chapters":
		s.chapters()
	case "read":
		s.read(arg)
	case "next":
		if s.current < len(s.book.Chapters)-1 {
			s.current++
		}
		s.render()
	case "prev":
		if s.current > 0 {
			s.current--
		}
		s.render()
	case "search":
		s.search(arg)
	case "ask":
		s.ask(ctx, arg)
	default:
		s.printf("Unknown command: %s\n", cmd)
	}
}

func (s *Session) meta() {
	m := s.book.Meta
	s.printf("Title: %s\n", m.Title)
	s.printf("Creator: %s\n", m.Creator)
	switch {
	case m.Language == "":
		s.printf("Language: unknown\n")
	case m.LanguageName() != "":
		s.printf("Language: %s (%s)\n", m.Language, m.LanguageName())
	default:
		s.printf("Language: %s\n", m.Language)
	}
	if m.Identifier != "" {
		s.printf("Identifier: %s\n", m.Identifier)
	}
}

func (s *Session) chapters() {
	tw := table.NewWriter()
	tw.SetOutputMirror(s.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Title", "Href", "Length"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for i, ch := range s.book.Chapters {
		tw.AppendRow(table.Row{i + 1, ch.Title, ch.Href, len([]rune(ch.Text))})
	}
	tw.Render()
}

func (s *Session) read(arg string) {
	if arg == "" || strings.TrimLeft(arg, "0123456789") != "" {
		s.printf("Usage: read <chapter_number>\n")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.book.Chapters) {
		s.printf("Chapter out of range\n")
		return
	}
	s.current = n - 1
	s.render()
}

func (s *Session) render() {
	visible, err := s.view.Render(s.book, s.current)
	if err != nil && !errors.Is(err, io.EOF) {
		s.log.Warn("Chapter view ended unexpectedly", zap.Int("chapter", s.current+1), zap.Error(err))
	}
	s.visible = visible
}

func (s *Session) search(arg string) {
	if arg == "" {
		s.printf("Usage: search <query>\n")
		return
	}

	query := strings.ToLower(arg)
	found := false
	for i, ch := range s.book.Chapters {
		if !strings.Contains(strings.ToLower(ch.Text), query) {
			continue
		}
		found = true
		s.printf("match: chapter %d (%s)\n", i+1, ch.Href)
		if excerpt := s.excerpt(ch.Text, query); excerpt != "" {
			s.printf("    %s\n", excerpt)
		}
	}
	if !found {
		s.printf("No matches\n")
	}
}

// excerpt returns first sentence of text containing lower cased query,
// squeezed to a single line.
func (s *Session) excerpt(text, query string) string {
	if s.splitter == nil {
		return ""
	}
	for _, sentence := range s.splitter.Tokenize(text) {
		if strings.Contains(strings.ToLower(sentence.Text), query) {
			return runewidth.Truncate(strings.Join(strings.Fields(sentence.Text), " "), excerptWidth, "...")
		}
	}
	return ""
}

func (s *Session) ask(ctx context.Context, question string) {
	if question == "" {
		s.printf("Usage: ask <question>\n")
		return
	}
	s.log.Debug("Asking AI", zap.Int("chapter", s.current+1), zap.Int("context", len(s.visible)))
	s.printf("%s\n", s.ai.Answer(ctx, question, s.visible))
}
