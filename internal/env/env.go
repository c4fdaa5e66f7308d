package env

import (
	"maps"
	"slices"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/helpers"
	"github.com/yorlang/yorlang/internal/value"
)

// GlobalScope is the outermost scope. Its name is not a valid identifier, so
// no routine can shadow it.
const GlobalScope = "<global>"

type frame struct {
	vars     map[string]value.Value
	routines map[string]*ast.IseDef
}

func newFrame() *frame {
	return &frame{
		vars:     make(map[string]value.Value),
		routines: make(map[string]*ast.IseDef),
	}
}

// Environment stores variable ("jeki") and routine ("ise") bindings keyed
// by scope name, together with the stack of active scope names.
type Environment struct {
	scopes  map[string]*frame
	stack   []string
	helpers *helpers.Registry
}

type Option func(*Environment)

// WithHelpers replaces the built-in helper registry. A nil registry
// disables helper fallback.
func WithHelpers(r *helpers.Registry) Option {
	return func(e *Environment) { e.helpers = r }
}

func New(opts ...Option) *Environment {
	e := &Environment{
		scopes:  map[string]*frame{GlobalScope: newFrame()},
		stack:   []string{GlobalScope},
		helpers: helpers.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Environment) frame(scope string, create bool) *frame {
	f, ok := e.scopes[scope]
	if !ok && create {
		f = newFrame()
		e.scopes[scope] = f
	}
	return f
}

func (e *Environment) SetJeki(scope, name string, v value.Value) {
	e.frame(scope, true).vars[name] = v
}

func (e *Environment) GetJeki(scope, name string) (value.Value, bool) {
	f := e.frame(scope, false)
	if f == nil {
		return value.Absent(), false
	}
	v, ok := f.vars[name]
	return v, ok
}

func (e *Environment) SetIse(scope, name string, def *ast.IseDef) {
	e.frame(scope, true).routines[name] = def
}

func (e *Environment) GetIse(scope, name string) (*ast.IseDef, bool) {
	f := e.frame(scope, false)
	if f == nil {
		return nil, false
	}
	def, ok := f.routines[name]
	return def, ok
}

// LookupJeki resolves name from the innermost active scope outwards.
func (e *Environment) LookupJeki(name string) (value.Value, bool) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if v, ok := e.GetJeki(e.stack[i], name); ok {
			return v, true
		}
	}
	return value.Absent(), false
}

// LookupIse resolves a routine from the innermost active scope outwards.
func (e *Environment) LookupIse(name string) (*ast.IseDef, bool) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if def, ok := e.GetIse(e.stack[i], name); ok {
			return def, true
		}
	}
	return nil, false
}

// PushScope activates scope name and returns the function that ends the
// activation. Bindings made under name during the activation are dropped
// on release. If name is already active the outer activation's bindings
// are hidden until release. Calling release more than once is a no-op.
func (e *Environment) PushScope(name string) (release func()) {
	depth := len(e.stack)
	prev, had := e.scopes[name]
	e.scopes[name] = newFrame()
	e.stack = append(e.stack, name)

	done := false
	return func() {
		if done {
			return
		}
		done = true
		if len(e.stack) > depth {
			e.stack = e.stack[:depth]
		}
		if had {
			e.scopes[name] = prev
			return
		}
		delete(e.scopes, name)
	}
}

func (e *Environment) CurrentScope() string {
	return e.stack[len(e.stack)-1]
}

// Scopes returns the active scope names, outermost first.
func (e *Environment) Scopes() []string {
	return slices.Clone(e.stack)
}

func (e *Environment) Depth() int {
	return len(e.stack)
}

// Bindings returns the variables bound directly in scope.
func (e *Environment) Bindings(scope string) map[string]value.Value {
	f := e.frame(scope, false)
	if f == nil {
		return nil
	}
	return maps.Clone(f.vars)
}

func (e *Environment) HasHelperIse(name string) bool {
	return e.helpers.Has(name)
}

// RunHelperIse calls a built-in helper with already evaluated arguments
// and adapts its native result.
func (e *Environment) RunHelperIse(name string, args []value.Value) (value.Value, error) {
	native := make([]any, 0, len(args))
	for _, a := range args {
		native = append(native, value.ToNative(a))
	}
	out, err := e.helpers.Run(name, native)
	if err != nil {
		return value.Absent(), err
	}
	v, err := value.FromNative(out)
	if err != nil {
		return value.Absent(), errdef.Wrap(errdef.CodeRuntime, err, "helper %s", name)
	}
	return v, nil
}
