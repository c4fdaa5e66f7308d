package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/yorlang/yorlang/internal/diag"
	"github.com/yorlang/yorlang/internal/telemetry"
)

type scriptedReader struct {
	lines   []string
	prompts []string
	history []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func newTestSession(lines ...string) (*session, *scriptedReader, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := &runner{
		out:    &out,
		errOut: &errOut,
		styles: diag.PlainStyles(),
		inst:   telemetry.Noop(),
	}
	in := &scriptedReader{lines: lines}
	return newSession(r, in, "yl> ", diag.PlainStyles()), in, &out, &errOut
}

func TestSessionKeepsEnvironment(t *testing.T) {
	s, in, out, _ := newTestSession(
		"ti a = 2;",
		"ise meji(x) {",
		"  pada x * 2;",
		"}",
		"sope meji(a);",
	)
	if err := s.loop(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if out.String() != "4\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	wantPrompts := []string{"yl> ", "yl> ", "... ", "... ", "yl> ", "yl> "}
	if strings.Join(in.prompts, "|") != strings.Join(wantPrompts, "|") {
		t.Fatalf("unexpected prompts %q", in.prompts)
	}
	if len(in.history) != 3 || !strings.HasPrefix(in.history[1], "ise meji(x) {\n") {
		t.Fatalf("unexpected history %q", in.history)
	}
}

func TestSessionReportsErrorsAndContinues(t *testing.T) {
	s, _, out, errOut := newTestSession(
		"ti = 1;",
		"sope aimo;",
		"sope 3;",
	)
	if err := s.loop(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if out.String() != "3\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !strings.Contains(errOut.String(), "error[syntax]") ||
		!strings.Contains(errOut.String(), `jeki "aimo" does not exist`) {
		t.Fatalf("unexpected errors:\n%s", errOut.String())
	}
}

func TestSessionCommands(t *testing.T) {
	s, in, out, errOut := newTestSession(
		"ti a = \"x\";",
		"ti b = [1, 2];",
		":scopes",
		":show",
		":bogus",
		":reset",
		":scopes",
		":quit",
		"sope 1;",
	)
	if err := s.loop(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	want := "<global>: a=\"x\", b=[1, 2]\n" +
		"ti a = \"x\";\nti b = [1, 2];\n" +
		"<global>: -\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	if !strings.Contains(errOut.String(), "unknown command :bogus") {
		t.Fatalf("expected unknown command notice, got %q", errOut.String())
	}
	if len(in.lines) != 1 {
		t.Fatalf("expected :quit to stop reading, %d lines left", len(in.lines))
	}
}

func TestCompleter(t *testing.T) {
	got := completer("fun (ti i = 0; i < 3; ni")
	if len(got) != 1 || got[0] != "fun (ti i = 0; i < 3; nigbati" {
		t.Fatalf("unexpected completions %q", got)
	}
	got = completer("pa")
	if strings.Join(got, ",") != "pada,padasi" {
		t.Fatalf("unexpected completions %q", got)
	}
	if completer("sope ") != nil {
		t.Fatalf("expected no completions for empty word")
	}
}
