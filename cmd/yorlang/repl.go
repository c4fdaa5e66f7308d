package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/peterh/liner"

	"github.com/yorlang/yorlang/internal/config"
	"github.com/yorlang/yorlang/internal/diag"
	"github.com/yorlang/yorlang/internal/env"
	"github.com/yorlang/yorlang/internal/parser"
	"github.com/yorlang/yorlang/internal/rtfmt"
	"github.com/yorlang/yorlang/internal/token"
	"github.com/yorlang/yorlang/internal/value"
)

const (
	replPath       = "<repl>"
	continuePrompt = "... "
)

var replHelp = heredoc.Doc(`
	Enter Yorlang statements. Unfinished input continues on the next line.

	  :help    show this help
	  :scopes  list active scopes and their variables
	  :show    print everything entered so far
	  :reset   forget all variables and routines
	  :quit    leave (Ctrl-D also works)
`)

// lineReader is the part of *liner.State the session needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type session struct {
	r      *runner
	in     lineReader
	env    *env.Environment
	prompt string
	styles diag.Styles
	log    []string
}

func newSession(r *runner, in lineReader, prompt string, styles diag.Styles) *session {
	if prompt == "" {
		prompt = config.PromptDefault
	}
	return &session{r: r, in: in, env: env.New(), prompt: prompt, styles: styles}
}

func startREPL(ctx context.Context, r *runner, settings config.Settings) error {
	line := liner.NewLiner()
	defer func() {
		if err := line.Close(); err != nil {
			log.Printf("liner close: %v", err)
		}
	}()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	histPath := config.HistoryPath(settings)
	if f, err := os.Open(histPath); err == nil {
		if _, err := line.ReadHistory(f); err != nil {
			log.Printf("history load error: %v", err)
		}
		_ = f.Close()
	}

	styles := diag.NewStyles(diag.NewRenderer(r.out, settings.Output.Color))
	s := newSession(r, line, settings.REPL.Prompt, styles)
	err := s.loop(ctx)

	if werr := saveHistory(line, histPath, settings.REPL.HistorySize); werr != nil {
		log.Printf("history save error: %v", werr)
	}
	return err
}

func saveHistory(line *liner.State, path string, limit int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf strings.Builder
	if _, err := line.WriteHistory(&buf); err != nil {
		return err
	}
	raw := strings.TrimRight(buf.String(), "\n")
	if raw == "" {
		return nil
	}
	entries := strings.Split(raw, "\n")
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return os.WriteFile(path, []byte(strings.Join(entries, "\n")+"\n"), 0o600)
}

func completer(line string) []string {
	start := strings.LastIndexAny(line, " \t(;{[,") + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, kw := range token.Keywords() {
		if strings.HasPrefix(kw, prefix) {
			out = append(out, line[:start]+kw)
		}
	}
	return out
}

// loop reads until end of input, :quit or ctx is done. Errors in user
// input are reported and the session continues.
func (s *session) loop(ctx context.Context) error {
	var pending strings.Builder
	for ctx.Err() == nil {
		prompt := s.prompt
		if pending.Len() > 0 {
			prompt = continuePrompt
		}
		line, err := s.in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			pending.Reset()
			continue
		}
		if err != nil {
			return err
		}

		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if quit := s.command(strings.TrimSpace(line)); quit {
				return nil
			}
			continue
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
		src := pending.String()
		if strings.TrimSpace(src) == "" {
			pending.Reset()
			continue
		}
		if _, err := parser.Parse(replPath, []byte(src)); parser.IsIncomplete(err) {
			continue
		}
		pending.Reset()
		s.in.AppendHistory(strings.TrimRight(src, "\n"))
		s.eval(ctx, src)
	}
	return nil
}

func (s *session) eval(ctx context.Context, src string) {
	if err := s.r.exec(ctx, s.env, replPath, []byte(src), "repl"); err != nil {
		s.r.report(err, []byte(src))
		return
	}
	s.log = append(s.log, src)
}

func (s *session) command(cmd string) bool {
	h := rtfmt.LogHandler(log.Printf, "repl write failed: %v")
	switch cmd {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		_ = rtfmt.Fprint(s.r.out, h, replHelp)
	case ":scopes":
		for _, scope := range s.env.Scopes() {
			_ = rtfmt.Fprintf(s.r.out, "%s: %s\n", h, scope, formatBindings(s.env.Bindings(scope)))
		}
	case ":show":
		_ = rtfmt.Fprint(s.r.out, h, diag.Highlight(strings.Join(s.log, ""), s.styles))
	case ":reset":
		s.env = env.New()
		s.log = nil
	default:
		_ = rtfmt.Fprintf(s.r.errOut, "unknown command %s (try :help)\n", h, cmd)
	}
	return false
}

func formatBindings(vars map[string]value.Value) string {
	if len(vars) == 0 {
		return "-"
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		v := vars[name]
		shown := v.String()
		if v.K == value.KStr {
			shown = fmt.Sprintf("%q", v.S)
		}
		parts = append(parts, name+"="+shown)
	}
	return strings.Join(parts, ", ")
}
