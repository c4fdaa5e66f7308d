package interp

import (
	"errors"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/token"
	"github.com/yorlang/yorlang/internal/value"
)

// evalCall resolves c.Name through the active scopes, innermost first,
// then the helper registry.
func (in *Interpreter) evalCall(c *ast.Call) (value.Value, error) {
	def, ok := in.env.LookupIse(c.Name)
	if !ok {
		if in.env.HasHelperIse(c.Name) {
			return in.callHelper(c)
		}
		return value.Absent(), in.nameErr(c.Pos(), "ise", c.Name)
	}

	args, err := in.evalArgs(c.Args)
	if err != nil {
		return value.Absent(), err
	}
	return in.callIse(c.Pos(), def, args)
}

func (in *Interpreter) evalArgs(exprs []ast.Expr) ([]value.Value, error) {
	args := make([]value.Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (in *Interpreter) callHelper(c *ast.Call) (value.Value, error) {
	args, err := in.evalArgs(c.Args)
	if err != nil {
		return value.Absent(), err
	}
	in.notify(CallEvent{Name: c.Name, Pos: c.Pos(), Helper: true, Args: len(args), Depth: len(in.frames)})
	v, err := in.env.RunHelperIse(c.Name, args)
	if err != nil {
		code := errdef.CodeOf(err)
		if code == errdef.CodeUnknown {
			code = errdef.CodeRuntime
		}
		return value.Absent(), in.rtErr(c.Pos(), code, "%s", err.Error())
	}
	return v, nil
}

// callIse runs a user routine under a scope named after it. The scope is
// released on every exit path.
func (in *Interpreter) callIse(pos token.Pos, def *ast.IseDef, args []value.Value) (value.Value, error) {
	if len(args) != len(def.Params) {
		return value.Absent(), in.rtErr(pos, errdef.CodeArity,
			"%s %q expects %d args, got %d", token.KwIse, def.Name, len(def.Params), len(args))
	}
	if in.lim.MaxCallDepth > 0 && len(in.frames) >= in.lim.MaxCallDepth {
		return value.Absent(), in.rtErr(pos, errdef.CodeLimit, "call depth exceeded")
	}

	in.notify(CallEvent{Name: def.Name, Pos: pos, Args: len(args), Depth: len(in.frames) + 1})

	in.frames = append(in.frames, Frame{Name: def.Name, Pos: pos})
	release := in.env.PushScope(def.Name)
	defer func() {
		release()
		in.frames = in.frames[:len(in.frames)-1]
	}()

	for i, name := range def.Params {
		in.env.SetJeki(def.Name, name, args[i])
	}

	err := in.execBlock(def.Body)
	if err == nil {
		return value.Absent(), nil
	}
	var r returnSignal
	if errors.As(err, &r) {
		return r.v, nil
	}
	if b, ok := err.(breakSignal); ok {
		return value.Absent(), in.rtErr(b.pos, errdef.CodeRuntime, "%s outside loop", token.KwKuro)
	}
	return value.Absent(), err
}

func (in *Interpreter) notify(ev CallEvent) {
	if in.observe != nil {
		in.observe(ev)
	}
}
