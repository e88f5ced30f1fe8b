package shell

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"bookr/config"
	"bookr/state"
)

const (
	testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`
	testPackage = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Tiny Book</dc:title><dc:creator>Somebody</dc:creator><dc:identifier id="id">tiny-1</dc:identifier>
  </metadata>
  <manifest><item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/></manifest>
  <spine><itemref idref="c1"/></spine>
</package>`
	testChapter = `<html xmlns="http://www.w3.org/1999/xhtml"><body><p>Hello reader.</p></body></html>`
)

func writeTestBook(t *testing.T) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "tiny.epub")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainer},
		{"OEBPS/content.opf", testPackage},
		{"OEBPS/ch1.xhtml", testChapter},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

// runRead executes read command with input fed from file and returns what
// was written to output.
func runRead(t *testing.T, rpt *config.Report, input string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	inName, outName := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	if err := os.WriteFile(inName, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}
	in, err := os.Open(inName)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	out, err := os.Create(outName)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg, env.Rpt, env.Log = cfg, rpt, zaptest.NewLogger(t)
	env.In, env.Out = in, out

	cmd := &cli.Command{
		Name: "read",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: FlagAIProvider},
			&cli.StringFlag{Name: FlagAIModel},
			&cli.StringFlag{Name: FlagAIBaseURL},
			&cli.StringFlag{Name: FlagAIChatPath},
			&cli.StringFlag{Name: FlagAISystemPrompt},
		},
		Action: Run,
	}
	runErr := cmd.Run(ctx, append([]string{"read"}, args...))

	data, err := os.ReadFile(outName)
	if err != nil {
		t.Fatal(err)
	}
	return string(data), runErr
}

func TestRunCommand(t *testing.T) {
	book := writeTestBook(t)

	out, err := runRead(t, nil, "meta\nread 1\ndown\nq\nask what?\nquit\n", book)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{
		"Loaded: Tiny Book by Somebody",
		"Identifier: tiny-1",
		"[1] Chapter 1 (OEBPS/ch1.xhtml)",
		"Hello reader.",
		"No AI provider configured yet.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[2J") {
		t.Error("screen cleared while writing to a file")
	}
}

func TestRunCommand_Errors(t *testing.T) {
	book := writeTestBook(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no book", args: nil, want: "no book has been specified"},
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "none.epub")}, want: "unable to load book"},
		{name: "bad provider", args: []string{"--" + FlagAIProvider, "magic", book}, want: "bad settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRead(t, nil, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRunCommand_StoresBookInReport(t *testing.T) {
	dir := t.TempDir()
	rconf := config.ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := rconf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if _, err := runRead(t, rpt, "quit\n", writeTestBook(t)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rc, err := zip.OpenReader(rconf.Destination)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer rc.Close()

	found := false
	for _, f := range rc.File {
		if f.Name == "book/tiny-book.txt" {
			found = true
		}
	}
	if !found {
		t.Error("book dump not stored in report")
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.AIConfig{Provider: "noop", Model: "m", BaseURL: "http://a", ChatPath: "p", SystemPrompt: "s"}

	cmd := &cli.Command{
		Name: "read",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: FlagAIProvider},
			&cli.StringFlag{Name: FlagAIModel},
			&cli.StringFlag{Name: FlagAIBaseURL},
			&cli.StringFlag{Name: FlagAIChatPath},
			&cli.StringFlag{Name: FlagAISystemPrompt},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ApplyFlags(cmd, &cfg)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"read", "--ai-provider", "openai", "--ai-base-url", "http://localhost:11434/v1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := config.AIConfig{Provider: "openai", Model: "m", BaseURL: "http://localhost:11434/v1", ChatPath: "p", SystemPrompt: "s"}
	if cfg != want {
		t.Errorf("ApplyFlags() = %+v, want %+v", cfg, want)
	}
}
