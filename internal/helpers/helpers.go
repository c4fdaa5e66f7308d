package helpers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yorlang/yorlang/internal/errdef"
)

// Func is a built-in routine. Arguments arrive as native Go values
// (float64, string, bool, []any or nil).
type Func func(args []any) (any, error)

type Registry struct {
	fns map[string]Func
}

func New() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Default returns a registry with every built-in helper installed.
func Default() *Registry {
	r := New()
	for name, fn := range builtins {
		if err := r.Register(name, fn); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errdef.New(errdef.CodeStructural, "helper name is empty")
	}
	if fn == nil {
		return errdef.New(errdef.CodeStructural, "helper %q has no implementation", name)
	}
	if _, ok := r.fns[name]; ok {
		return errdef.New(errdef.CodeStructural, "helper %q already registered", name)
	}
	r.fns[name] = fn
	return nil
}

func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.fns[name]
	return ok
}

func (r *Registry) Run(name string, args []any) (any, error) {
	if r == nil {
		return nil, errdef.New(errdef.CodeName, "helper %q does not exist", name)
	}
	fn, ok := r.fns[name]
	if !ok {
		return nil, errdef.New(errdef.CodeName, "helper %q does not exist", name)
	}
	return fn(args)
}

// Names lists registered helpers in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.fns))
	for k := range r.fns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func argCount(args []any, n int, sig string) error {
	if len(args) != n {
		return errdef.New(errdef.CodeArity, "%s expects %d args, got %d", sig, n, len(args))
	}
	return nil
}

func strArg(args []any, i int, sig string) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", errdef.New(errdef.CodeRuntime, "%s: argument %d must be a string, got %s", sig, i+1, typeName(args[i]))
	}
	return s, nil
}

func numArg(args []any, i int, sig string) (float64, error) {
	n, ok := args[i].(float64)
	if !ok {
		return 0, errdef.New(errdef.CodeRuntime, "%s: argument %d must be a number, got %s", sig, i+1, typeName(args[i]))
	}
	return n, nil
}

func listArg(args []any, i int, sig string) ([]any, error) {
	l, ok := args[i].([]any)
	if !ok {
		return nil, errdef.New(errdef.CodeRuntime, "%s: argument %d must be an array, got %s", sig, i+1, typeName(args[i]))
	}
	return l, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "aisi"
	case bool:
		return "boolean"
	case float64:
		return "nomba"
	case string:
		return "oro"
	case []any:
		return "akojo"
	default:
		return fmt.Sprintf("%T", v)
	}
}
