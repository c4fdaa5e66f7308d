package helpers

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yorlang/yorlang/internal/errdef"
)

func call(t *testing.T, name string, args ...any) any {
	t.Helper()
	out, err := Default().Run(name, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return out
}

func TestLen(t *testing.T) {
	if got := call(t, "ka", "e\u0301we\u0300"); got != 3.0 {
		t.Fatalf("expected 3 graphemes, got %v", got)
	}
	if got := call(t, "ka", []any{1.0, 2.0}); got != 2.0 {
		t.Fatalf("expected 2, got %v", got)
	}
	if _, err := Default().Run("ka", []any{1.0}); errdef.CodeOf(err) != errdef.CodeRuntime {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestCase(t *testing.T) {
	if got := call(t, "siLetaNla", "\u1eb9k\u1ecd"); got != "\u1eb8K\u1ecc" {
		t.Fatalf("unexpected upper %q", got)
	}
	if got := call(t, "siLetaKekere", "ABC"); got != "abc" {
		t.Fatalf("unexpected lower %q", got)
	}
}

func TestPad(t *testing.T) {
	if got := call(t, "fiAye", "日本", 6.0); got != "日本  " {
		t.Fatalf("unexpected pad %q", got)
	}
	if got := call(t, "fiAye", "abcdef", 3.0); got != "abcdef" {
		t.Fatalf("unexpected pad %q", got)
	}
}

func TestPadRejectsBadWidth(t *testing.T) {
	for _, w := range []float64{-1, 2.5, math.NaN(), math.Inf(1), 1e14} {
		if _, err := Default().Run("fiAye", []any{"a", w}); errdef.CodeOf(err) != errdef.CodeRuntime {
			t.Fatalf("width %v: expected runtime error, got %v", w, err)
		}
	}
	if got := call(t, "fiAye", "a", float64(maxPadWidth)).(string); len(got) != maxPadWidth {
		t.Fatalf("expected %d bytes at the cap, got %d", maxPadWidth, len(got))
	}
}

func TestID(t *testing.T) {
	got := call(t, "idamo").(string)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("not a uuid %q: %v", got, err)
	}
}

func TestNow(t *testing.T) {
	old := Now
	Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { Now = old }()
	if got := call(t, "aago"); got != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected time %q", got)
	}
}

func TestAppendReverseType(t *testing.T) {
	got := call(t, "fiKun", []any{1.0}, 2.0, "a").([]any)
	if len(got) != 3 || got[2] != "a" {
		t.Fatalf("unexpected append %v", got)
	}
	rev := call(t, "yiPada", []any{1.0, 2.0}).([]any)
	if rev[0] != 2.0 || rev[1] != 1.0 {
		t.Fatalf("unexpected reverse %v", rev)
	}
	if got := call(t, "iruRe", nil); got != "aisi" {
		t.Fatalf("unexpected type %v", got)
	}
}

func TestArity(t *testing.T) {
	if _, err := Default().Run("ka", nil); errdef.CodeOf(err) != errdef.CodeArity {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	r := New()
	if err := r.Register(" ", func([]any) (any, error) { return nil, nil }); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error, got %v", err)
	}
	if err := r.Register("x", nil); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error, got %v", err)
	}
	if err := Default().Register("ka", func([]any) (any, error) { return nil, nil }); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := r.Run("missing", nil); errdef.CodeOf(err) != errdef.CodeName {
		t.Fatalf("expected name error, got %v", err)
	}
}
