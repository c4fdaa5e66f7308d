package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"

	"github.com/yorlang/yorlang/internal/config"
	"github.com/yorlang/yorlang/internal/diag"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/interp"
	"github.com/yorlang/yorlang/internal/rtfmt"
	"github.com/yorlang/yorlang/internal/telemetry"
	"github.com/yorlang/yorlang/internal/watcher"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

var usage = heredoc.Doc(`
	Usage: yorlang [flags] [file.yl | -]

	Runs a Yorlang program. With no file, or with -repl, starts an
	interactive session. A file named "-" is read from standard input.

	Flags:
`)

func main() {
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	showVersion bool
	repl        bool
	watch       bool
	dumpAST     bool
	cat         bool
	color       string
	maxSteps    int64
	maxDepth    int
	timeout     time.Duration
	otel        telemetry.Config
}

func parseFlags(args []string, settings config.Settings, stderr io.Writer) (options, []string, error) {
	opts := options{
		color:    string(settings.Output.Color),
		maxSteps: settings.Limits.MaxSteps,
		maxDepth: settings.Limits.MaxCallDepth,
		timeout:  time.Duration(settings.Limits.Timeout),
		otel:     telemetry.ConfigFromEnv(os.Getenv),
	}

	fs := flag.NewFlagSet("yorlang", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_ = rtfmt.Fprint(stderr, rtfmt.LogHandler(log.Printf, "usage write failed: %v"), usage)
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.showVersion, "version", false, "Show yorlang version")
	fs.BoolVar(&opts.repl, "repl", false, "Start an interactive session")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the program whenever the file changes")
	fs.BoolVar(&opts.dumpAST, "dump-ast", false, "Print the parsed program as YAML instead of running it")
	fs.BoolVar(&opts.cat, "cat", false, "Print the highlighted source instead of running it")
	fs.StringVar(&opts.color, "color", opts.color, "Colour output: auto, always or never")
	fs.Int64Var(&opts.maxSteps, "max-steps", opts.maxSteps, "Stop after this many steps (0 = unlimited)")
	fs.IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "Maximum routine call depth (0 = unlimited)")
	fs.DurationVar(&opts.timeout, "timeout", opts.timeout, "Stop a run after this long (0 = unlimited)")
	fs.StringVar(
		&opts.otel.Endpoint,
		"trace-otel-endpoint",
		opts.otel.Endpoint,
		"OTLP collector endpoint for run traces",
	)
	fs.BoolVar(
		&opts.otel.Insecure,
		"trace-otel-insecure",
		opts.otel.Insecure,
		"Disable TLS for OTLP trace export",
	)
	fs.StringVar(
		&opts.otel.ServiceName,
		"trace-otel-service",
		opts.otel.ServiceName,
		"Override service.name resource attribute for exported spans",
	)
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	if _, ok := config.ParseColorMode(opts.color); !ok {
		return opts, nil, fmt.Errorf("invalid -color value %q", opts.color)
	}
	opts.otel.Endpoint = strings.TrimSpace(opts.otel.Endpoint)
	opts.otel.ServiceName = strings.TrimSpace(opts.otel.ServiceName)
	opts.otel.Version = version
	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	errLog := rtfmt.LogHandler(log.Printf, "stderr write failed: %v")

	settings, handle, err := config.LoadSettings()
	if err != nil {
		log.Printf("settings load error: %v", err)
		settings = config.DefaultSettings()
		handle = config.SettingsHandle{
			Path:   filepath.Join(config.Dir(), "settings.toml"),
			Format: config.SettingsFormatTOML,
		}
	}

	opts, rest, err := parseFlags(args, settings, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		_ = rtfmt.Fprintf(stderr, "yorlang: %v\n", errLog, err)
		return exitUsage
	}

	if opts.showVersion {
		_ = rtfmt.Fprintf(stdout, "yorlang %s\n", errLog, version)
		_ = rtfmt.Fprintf(stdout, "  commit: %s\n", errLog, commit)
		_ = rtfmt.Fprintf(stdout, "  built:  %s\n", errLog, date)
		_ = rtfmt.Fprintf(stdout, "  config: %s\n", errLog, handle.Path)
		return exitOK
	}

	if len(rest) > 1 {
		_ = rtfmt.Fprintf(stderr, "yorlang: expected one file, got %d\n", errLog, len(rest))
		return exitUsage
	}

	mode, _ := config.ParseColorMode(opts.color)
	r := &runner{
		out:    stdout,
		errOut: stderr,
		styles: diag.NewStyles(diag.NewRenderer(stderr, mode)),
		limits: interp.Limits{
			MaxSteps:     int(opts.maxSteps),
			MaxCallDepth: opts.maxDepth,
			Timeout:      opts.timeout,
		},
		inst: telemetry.Noop(),
	}

	inst, err := telemetry.New(opts.otel)
	if err != nil {
		if opts.otel.Enabled() {
			log.Printf("telemetry init error: %v", err)
		}
	} else {
		r.inst = inst
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := inst.Shutdown(sctx); shutdownErr != nil {
				log.Printf("telemetry shutdown: %v", shutdownErr)
			}
		}()
	}

	if len(rest) == 0 || opts.repl {
		if opts.watch || opts.dumpAST || opts.cat {
			_ = rtfmt.Fprintln(stderr, errLog, "yorlang: -watch, -dump-ast and -cat need a file")
			return exitUsage
		}
		settings.Output.Color = mode
		if err := startREPL(ctx, r, settings); err != nil {
			log.Printf("repl: %v", err)
			return exitRuntime
		}
		return exitOK
	}

	path := rest[0]
	if opts.watch {
		if path == "-" {
			_ = rtfmt.Fprintln(stderr, errLog, "yorlang: -watch needs a file, not stdin")
			return exitUsage
		}
		if err := r.watch(ctx, path, watcher.New(watcher.Options{})); err != nil {
			r.report(err, nil)
			return exitCode(err)
		}
		return exitOK
	}

	src, err := readSource(path, stdin)
	if err != nil {
		r.report(err, nil)
		return exitRuntime
	}

	switch {
	case opts.cat:
		out := diag.Highlight(string(src), diag.NewStyles(diag.NewRenderer(stdout, mode)))
		_ = rtfmt.Fprint(stdout, errLog, out)
		return exitOK
	case opts.dumpAST:
		if err := r.dumpAST(path, src, stdout); err != nil {
			r.report(err, src)
			return exitCode(err)
		}
		return exitOK
	}

	name := path
	if path == "-" {
		name = "<stdin>"
	}
	if err := r.exec(ctx, nil, name, src, "run"); err != nil {
		r.report(err, src)
		return exitCode(err)
	}
	return exitOK
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read file")
	}
	return data, nil
}

// exitCode maps syntax and usage problems to 2 and everything else to 1.
func exitCode(err error) int {
	switch errdef.CodeOf(err) {
	case errdef.CodeSyntax, errdef.CodeConfig:
		return exitUsage
	default:
		return exitRuntime
	}
}
