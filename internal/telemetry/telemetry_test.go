package telemetry

import (
	"context"
	"io"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/yorlang/yorlang/internal/env"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/interp"
	"github.com/yorlang/yorlang/internal/parser"
)

func newRecorded(t *testing.T) (Instrumenter, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	inst, err := New(
		Config{ServiceName: "yorlang-test", Version: "test"},
		WithSpanProcessor(recorder),
	)
	if err != nil {
		t.Fatalf("New instrumenter: %v", err)
	}
	t.Cleanup(func() {
		_ = inst.Shutdown(context.Background())
	})
	return inst, recorder
}

func TestInstrumenterRecordsRun(t *testing.T) {
	inst, recorder := newRecorded(t)
	src := "ise meji(x) { pada x * 2; }\nsope meji(2);\nsope ka(\"ab\");\n"

	ctx, run := inst.Start(context.Background(), RunStart{Path: "main.yl", Mode: "run", Size: len(src)})
	_, ps := run.Phase(ctx, PhaseParse)
	prog, err := parser.Parse("main.yl", []byte(src))
	ps.End(err)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, is := run.Phase(ctx, PhaseInterpret)
	in := interp.New(env.New(), interp.WithOutput(io.Discard), interp.WithCallObserver(run.RecordCall))
	err = in.InterpretProgram(prog)
	is.End(err)
	run.End(RunResult{Err: err, Steps: in.Steps()})
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].Name() != "yorlang.parse" || spans[1].Name() != "yorlang.interpret" {
		t.Fatalf("unexpected phase spans %q %q", spans[0].Name(), spans[1].Name())
	}
	ro := spans[2]
	if got := ro.Name(); got != "yorlang.run main.yl" {
		t.Fatalf("unexpected span name %q", got)
	}
	if spans[0].Parent().SpanID() != ro.SpanContext().SpanID() {
		t.Fatalf("parse span is not a child of the run span")
	}
	assertAttribute(t, ro, "yorlang.source.path", "main.yl")
	assertAttribute(t, ro, "yorlang.calls", int64(2))
	if ro.Status().Code != codes.Ok {
		t.Fatalf("expected span status OK, got %v", ro.Status().Code)
	}

	var helperCalls, userCalls int
	for _, ev := range ro.Events() {
		if ev.Name != "yorlang.call" {
			continue
		}
		for _, kv := range ev.Attributes {
			if kv.Key == "yorlang.call.helper" {
				if kv.Value.AsBool() {
					helperCalls++
				} else {
					userCalls++
				}
			}
		}
	}
	if helperCalls != 1 || userCalls != 1 {
		t.Fatalf("expected one helper and one user call, got %d/%d", helperCalls, userCalls)
	}
}

func TestInstrumenterRecordsError(t *testing.T) {
	inst, recorder := newRecorded(t)
	ctx, run := inst.Start(context.Background(), RunStart{})
	_, ps := run.Phase(ctx, PhaseParse)
	_, err := parser.Parse("", []byte("ti = 1;"))
	ps.End(err)
	run.End(RunResult{Err: err})

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, ro := range spans {
		if ro.Status().Code != codes.Error {
			t.Fatalf("expected error status on %q", ro.Name())
		}
		assertAttribute(t, ro, "yorlang.error.code", string(errdef.CodeSyntax))
	}
	if spans[1].Name() != "yorlang.run" {
		t.Fatalf("unexpected span name %q", spans[1].Name())
	}
}

func TestNoopWhenDisabled(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := inst.(noopInstrumenter); !ok {
		t.Fatalf("expected noop instrumenter, got %T", inst)
	}
	ctx, run := inst.Start(context.Background(), RunStart{})
	_, ps := run.Phase(ctx, PhaseParse)
	ps.End(nil)
	run.RecordCall(interp.CallEvent{Name: "f"})
	run.End(RunResult{})
	if err := inst.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func assertAttribute(t *testing.T, span sdktrace.ReadOnlySpan, key string, want any) {
	t.Helper()
	for _, attr := range span.Attributes() {
		if string(attr.Key) != key {
			continue
		}
		switch v := want.(type) {
		case string:
			if attr.Value.AsString() == v {
				return
			}
		case bool:
			if attr.Value.AsBool() == v {
				return
			}
		case int64:
			if attr.Value.AsInt64() == v {
				return
			}
		}
		t.Fatalf("attribute %s mismatch: got %v, want %v", key, attr.Value, want)
	}
	t.Fatalf("attribute %s not found", key)
}
