package env

import (
	"slices"
	"testing"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/helpers"
	"github.com/yorlang/yorlang/internal/value"
)

func TestJekiScopedByName(t *testing.T) {
	e := New()
	e.SetJeki(GlobalScope, "a", value.Num(1))
	e.SetJeki("f", "a", value.Num(2))

	if v, ok := e.GetJeki(GlobalScope, "a"); !ok || v.N != 1 {
		t.Fatalf("global a: %+v %v", v, ok)
	}
	if v, ok := e.GetJeki("f", "a"); !ok || v.N != 2 {
		t.Fatalf("f a: %+v %v", v, ok)
	}
	if _, ok := e.GetJeki("g", "a"); ok {
		t.Fatalf("expected miss in unknown scope")
	}
	e.SetJeki(GlobalScope, "a", value.Num(3))
	if v, _ := e.GetJeki(GlobalScope, "a"); v.N != 3 {
		t.Fatalf("expected overwrite, got %+v", v)
	}
}

func TestGetIseMiss(t *testing.T) {
	e := New()
	if def, ok := e.GetIse(GlobalScope, "nope"); ok || def != nil {
		t.Fatalf("expected not found sentinel")
	}
	def := &ast.IseDef{Name: "f"}
	e.SetIse(GlobalScope, "f", def)
	if got, ok := e.GetIse(GlobalScope, "f"); !ok || got != def {
		t.Fatalf("expected registered def")
	}
}

func TestLookupInnermostFirst(t *testing.T) {
	e := New()
	e.SetJeki(GlobalScope, "a", value.Str("global"))
	e.SetIse(GlobalScope, "f", &ast.IseDef{Name: "global-f"})

	release := e.PushScope("f")
	e.SetJeki("f", "a", value.Str("inner"))
	if v, _ := e.LookupJeki("a"); v.S != "inner" {
		t.Fatalf("expected inner binding, got %q", v.S)
	}
	if def, _ := e.LookupIse("f"); def.Name != "global-f" {
		t.Fatalf("expected global routine, got %q", def.Name)
	}
	release()

	if v, _ := e.LookupJeki("a"); v.S != "global" {
		t.Fatalf("expected global binding after pop, got %q", v.S)
	}
}

func TestPushScopeReleaseIdempotent(t *testing.T) {
	e := New()
	outer := e.PushScope("a")
	inner := e.PushScope("b")
	if got := e.Scopes(); !slices.Equal(got, []string{GlobalScope, "a", "b"}) {
		t.Fatalf("unexpected stack %v", got)
	}
	inner()
	inner()
	if e.Depth() != 2 || e.CurrentScope() != "a" {
		t.Fatalf("unexpected stack after double release %v", e.Scopes())
	}
	outer()
	if e.Depth() != 1 || e.CurrentScope() != GlobalScope {
		t.Fatalf("unexpected stack %v", e.Scopes())
	}
}

func TestPushScopeNamedLikeGlobal(t *testing.T) {
	e := New()
	e.SetJeki(GlobalScope, "x", value.Num(7))
	release := e.PushScope("global")
	defer release()
	if v, ok := e.LookupJeki("x"); !ok || v.N != 7 {
		t.Fatalf("global binding hidden by routine scope: %+v %v", v, ok)
	}
}

func TestPushScopePurgesBindings(t *testing.T) {
	e := New()
	release := e.PushScope("f")
	e.SetJeki("f", "x", value.Num(1))
	release()
	if _, ok := e.GetJeki("f", "x"); ok {
		t.Fatalf("binding survived scope release")
	}
}

func TestPushScopeShadowsRecursion(t *testing.T) {
	e := New()
	outer := e.PushScope("f")
	e.SetJeki("f", "n", value.Num(2))

	inner := e.PushScope("f")
	if _, ok := e.GetJeki("f", "n"); ok {
		t.Fatalf("inner activation sees outer binding")
	}
	e.SetJeki("f", "n", value.Num(1))
	inner()

	if v, ok := e.GetJeki("f", "n"); !ok || v.N != 2 {
		t.Fatalf("outer binding not restored: %+v", v)
	}
	outer()
	if e.Bindings("f") != nil {
		t.Fatalf("expected no bindings after final release")
	}
}

func TestRunHelperIse(t *testing.T) {
	reg := helpers.New()
	if err := reg.Register("meji", func(args []any) (any, error) {
		return []any{args[0], args[0]}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	e := New(WithHelpers(reg))
	if !e.HasHelperIse("meji") || e.HasHelperIse("ka") {
		t.Fatalf("unexpected helper registry contents")
	}
	v, err := e.RunHelperIse("meji", []value.Value{value.Str("a")})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v.K != value.KList || v.String() != `["a", "a"]` {
		t.Fatalf("unexpected result %s", v.String())
	}

	if _, err := e.RunHelperIse("nope", nil); errdef.CodeOf(err) != errdef.CodeName {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestRunHelperIseBadResult(t *testing.T) {
	reg := helpers.New()
	if err := reg.Register("buru", func(args []any) (any, error) {
		return struct{}{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	e := New(WithHelpers(reg))
	if _, err := e.RunHelperIse("buru", nil); errdef.CodeOf(err) != errdef.CodeRuntime {
		t.Fatalf("expected runtime error, got %v", err)
	}
}
