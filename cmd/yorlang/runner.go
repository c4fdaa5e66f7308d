package main

import (
	"context"
	"io"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/diag"
	"github.com/yorlang/yorlang/internal/env"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/interp"
	"github.com/yorlang/yorlang/internal/parser"
	"github.com/yorlang/yorlang/internal/rtfmt"
	"github.com/yorlang/yorlang/internal/telemetry"
	"github.com/yorlang/yorlang/internal/watcher"
)

type runner struct {
	out    io.Writer
	errOut io.Writer
	styles diag.Styles
	limits interp.Limits
	inst   telemetry.Instrumenter
}

// exec parses and runs src against e, or a fresh environment when e is
// nil, inside one traced run.
func (r *runner) exec(ctx context.Context, e *env.Environment, path string, src []byte, mode string) error {
	if e == nil {
		e = env.New()
	}
	ctx, span := r.inst.Start(ctx, telemetry.RunStart{Path: path, Mode: mode, Size: len(src)})

	_, ps := span.Phase(ctx, telemetry.PhaseParse)
	prog, err := parser.Parse(path, src)
	ps.End(err)
	if err != nil {
		span.End(telemetry.RunResult{Err: err})
		return err
	}

	ictx, is := span.Phase(ctx, telemetry.PhaseInterpret)
	in := interp.New(
		e,
		interp.WithOutput(r.out),
		interp.WithLimits(r.limits),
		interp.WithContext(ictx),
		interp.WithCallObserver(span.RecordCall),
	)
	err = in.InterpretProgram(prog)
	is.End(err)
	span.End(telemetry.RunResult{Err: err, Steps: in.Steps()})
	return err
}

func (r *runner) report(err error, src []byte) {
	handler := rtfmt.LogHandler(log.Printf, "error report write failed: %v")
	_ = rtfmt.Fprint(r.errOut, handler, diag.Format(err, src, r.styles))
}

// dumpAST writes the parsed program as YAML.
func (r *runner) dumpAST(path string, src []byte, w io.Writer) error {
	prog, err := parser.Parse(path, src)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ast.DescribeProgram(prog)); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write ast")
	}
	return enc.Close()
}

// watch runs path once and again after every content change until ctx is
// done. Errors from individual runs are reported, not returned.
func (r *runner) watch(ctx context.Context, path string, w *watcher.Watcher) error {
	src, err := w.Add(path)
	if err != nil {
		return err
	}
	r.once(ctx, path, src)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for ev := range w.Events() {
		switch ev.Kind {
		case watcher.EventChanged:
			log.Printf("%s changed, re-running", ev.Path)
			r.once(ctx, ev.Path, ev.Source)
		case watcher.EventMissing:
			log.Printf("%s is missing, waiting for it to return", ev.Path)
		}
	}
	return <-done
}

func (r *runner) once(ctx context.Context, path string, src []byte) {
	if err := r.exec(ctx, nil, path, src, "watch"); err != nil {
		r.report(err, src)
	}
}
