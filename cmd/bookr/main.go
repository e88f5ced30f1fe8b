package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bookr/config"
	"bookr/misc"
	"bookr/shell"
	"bookr/state"
)

// errLogged is set when failure already went to the program log.
var errLogged bool

// prepareEnv loads configuration and brings up reporting and logging.
func prepareEnv(env *state.LocalEnv, configFile string, withReport bool) (err error) {
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if withReport {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			// secrets are masked by dump
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	return nil
}

// beforeCommand runs after command line is parsed.
func beforeCommand(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help will be shown
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	configFile := cmd.String("config")
	if err := prepareEnv(env, configFile, cmd.Bool("debug")); err != nil {
		return ctx, err
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()),
		zap.Bool("defaults", len(configFile) == 0))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	return ctx, nil
}

func afterCommand(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	// log is synced, from now on errors go to stderr directly
	var err error
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = fmt.Errorf("unable to close debug report: %w", er)
		} else {
			fmt.Fprintf(os.Stderr, "Debug report: %s\n", env.Rpt.Name())
		}
	}
	// report already has panic log if it was needed
	return multierr.Append(err, config.ReleaseCrashOutput())
}

// logFailure is called before afterCommand, while log is still available.
func logFailure(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Program ended with error", zap.Error(err))
		errLogged = true
	}
}

// usage errors are reported by main like any other
func passUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

func readFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: shell.FlagAIProvider, Usage: "AI `BACKEND` answering ask command (noop, openai)"},
		&cli.StringFlag{Name: shell.FlagAIModel, Usage: "model `NAME` when using openai provider"},
		&cli.StringFlag{Name: shell.FlagAIBaseURL, Usage: "base `URL` of OpenAI compatible API"},
		&cli.StringFlag{Name: shell.FlagAIChatPath, Usage: "chat completions `PATH` relative to base URL"},
		&cli.StringFlag{Name: shell.FlagAISystemPrompt, Usage: "system `PROMPT` sent with every question"},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "terminal reader for EPUB books with optional AI assistance",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          beforeCommand,
		After:           afterCommand,
		OnUsageError:    passUsageError,
		ExitErrHandler:  logFailure,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "write debug log and book dump into report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "read",
				Usage:        "Opens EPUB book for reading",
				OnUsageError: passUsageError,
				Action:       shell.Run,
				Flags:        readFlags(),
				ArgsUsage:    "EPUB",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
EPUB:
    path to EPUB file to read

Commands are entered at "bookr>" prompt, type "help" to list them. When
standard input is a terminal chapters are paged with single keys, otherwise
key names (up, down, half_up, half_down, quit) are read one per line.
`,
			},
			{
				Name:  "dumpconfig",
				Usage: "Writes default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "write configuration embedded into the program"},
				},
				OnUsageError: passUsageError,
				Action:       dumpConfig,
				ArgsUsage:    "[DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file to write configuration to, standard output when absent

Actual configuration is the embedded defaults merged with file given by
--config, API key is masked.
`,
			},
		},
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	dest := cmd.Args().First()
	if len(dest) == 0 {
		_, err = env.Out.Write(data)
	} else {
		err = os.WriteFile(dest, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	env.Log.Debug("Configuration written", zap.Bool("default", cmd.Bool("default")), zap.String("destination", dest))
	return nil
}

func main() {
	// Interrupt keeps its default action: prompt is blocked in read and must
	// be left immediately, raw mode turns Ctrl-C into a key while paging.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		// log may not exist yet or is already closed
		if !errLogged {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
