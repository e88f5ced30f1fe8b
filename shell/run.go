package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bookr/ai"
	"bookr/config"
	"bookr/epub"
	"bookr/pager"
	"bookr/state"
)

// Run is the action of read command: loads the book and runs command prompt
// over it.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("read")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no book has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many books", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	ApplyFlags(cmd, &env.Cfg.AI)
	if err := env.Cfg.Validate(); err != nil {
		return fmt.Errorf("bad settings after applying command line: %w", err)
	}

	book, err := epub.Load(src, log.Named("epub"))
	if err != nil {
		return fmt.Errorf("unable to load book: %w", err)
	}
	storeBook(env.Rpt, book)

	provider, err := ai.New(&env.Cfg.AI, log.Named("ai"))
	if err != nil {
		return err
	}

	in := bufio.NewReader(env.In)
	var keys pager.KeySource
	if env.Interactive() {
		keys = pager.NewTerminalKeys(env.In)
	} else {
		keys = pager.NewLineKeys(in)
	}
	view := pager.NewViewer(&env.Cfg.Reader, env.Out, keys, log.Named("pager"))

	log.Info("Reading started", zap.String("book", src), zap.Int("chapters", len(book.Chapters)), zap.String("ai", env.Cfg.AI.Provider))
	defer func(start time.Time) {
		log.Info("Reading completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return New(book, provider, view, in, env.Out, log).Run(ctx)
}

// AI flag names, values override configuration when set.
const (
	FlagAIProvider     = "ai-provider"
	FlagAIModel        = "ai-model"
	FlagAIBaseURL      = "ai-base-url"
	FlagAIChatPath     = "ai-chat-path"
	FlagAISystemPrompt = "ai-system-prompt"
)

// ApplyFlags copies explicitly set AI flags into configuration.
func ApplyFlags(cmd *cli.Command, cfg *config.AIConfig) {
	for name, field := range map[string]*string{
		FlagAIProvider:     &cfg.Provider,
		FlagAIModel:        &cfg.Model,
		FlagAIBaseURL:      &cfg.BaseURL,
		FlagAIChatPath:     &cfg.ChatPath,
		FlagAISystemPrompt: &cfg.SystemPrompt,
	} {
		if cmd.IsSet(name) {
			*field = cmd.String(name)
		}
	}
}

// storeBook puts parsed book structure into debug report.
func storeBook(rpt *config.Report, book *epub.Book) {
	if rpt == nil {
		return
	}
	name := slug.Make(book.Meta.Title)
	if name == "" {
		name = "book"
	}
	rpt.StoreData("book/"+name+".txt", []byte(book.String()))
}
