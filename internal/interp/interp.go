package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/env"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/token"
	"github.com/yorlang/yorlang/internal/value"
)

// Limits bounds a run. Zero fields are unlimited.
type Limits struct {
	MaxSteps     int
	MaxCallDepth int
	Timeout      time.Duration
}

// CallEvent describes one routine invocation, reported before the body
// runs.
type CallEvent struct {
	Name   string
	Pos    token.Pos
	Helper bool
	Args   int
	Depth  int
}

type Frame struct {
	Name string
	Pos  token.Pos
}

// StackError decorates a runtime error raised inside routine calls with
// the active call frames, innermost last.
type StackError struct {
	Err    error
	Frames []Frame
}

func (e *StackError) Error() string { return e.Err.Error() }

func (e *StackError) Unwrap() error { return e.Err }

func (e *StackError) Pretty() string {
	out := e.Err.Error()
	for i := len(e.Frames) - 1; i >= 0; i-- {
		f := e.Frames[i]
		out += fmt.Sprintf("\n  at %s in %s", f.Pos, f.Name)
	}
	return out
}

type breakSignal struct {
	pos token.Pos
}

func (breakSignal) Error() string { return "kuro" }

type returnSignal struct {
	v value.Value
}

func (returnSignal) Error() string { return "pada" }

type Interpreter struct {
	env     *env.Environment
	out     io.Writer
	lim     Limits
	ctx     context.Context
	observe func(CallEvent)
	now     func() time.Time

	steps  int
	start  time.Time
	frames []Frame
}

type Option func(*Interpreter)

func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.out = w
		}
	}
}

func WithLimits(l Limits) Option {
	return func(in *Interpreter) { in.lim = l }
}

func WithContext(ctx context.Context) Option {
	return func(in *Interpreter) {
		if ctx != nil {
			in.ctx = ctx
		}
	}
}

func WithCallObserver(fn func(CallEvent)) Option {
	return func(in *Interpreter) { in.observe = fn }
}

func New(e *env.Environment, opts ...Option) *Interpreter {
	if e == nil {
		e = env.New()
	}
	in := &Interpreter{
		env: e,
		out: os.Stdout,
		ctx: context.Background(),
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(in)
		}
	}
	in.start = in.now()
	return in
}

func (in *Interpreter) Env() *env.Environment { return in.env }

// Steps reports the steps taken by the last run.
func (in *Interpreter) Steps() int { return in.steps }

// InterpretProgram runs prog at the current scope, statement by statement.
// Execution stops at the first error.
func (in *Interpreter) InterpretProgram(prog *ast.Program) error {
	if prog == nil {
		return errdef.New(errdef.CodeStructural, "nil program")
	}
	in.steps = 0
	in.start = in.now()
	for _, st := range prog.Stmts {
		if err := in.execStmt(st); err != nil {
			return in.escaped(err)
		}
	}
	return nil
}

// EvaluateNode evaluates a single node. Statements yield an absent value,
// except calls and pada which yield the value they produce.
func (in *Interpreter) EvaluateNode(node ast.Node) (value.Value, error) {
	switch n := node.(type) {
	case nil:
		return value.Absent(), nil
	case ast.Expr:
		return in.eval(n)
	case *ast.CallStmt:
		return in.evalCall(n.Call)
	case ast.Stmt:
		err := in.execStmt(n)
		var r returnSignal
		if errors.As(err, &r) {
			return r.v, nil
		}
		if err != nil {
			return value.Absent(), in.escaped(err)
		}
		return value.Absent(), nil
	default:
		return value.Absent(), errdef.New(errdef.CodeStructural, "unsupported node %T", node)
	}
}

// escaped turns control signals that reached the top level into errors.
func (in *Interpreter) escaped(err error) error {
	switch sig := err.(type) {
	case breakSignal:
		return in.rtErr(sig.pos, errdef.CodeRuntime, "%s outside loop", token.KwKuro)
	case returnSignal:
		return in.rtErr(token.Pos{}, errdef.CodeRuntime, "%s outside %s", token.KwPada, token.KwIse)
	}
	return err
}

// tick counts one step and enforces limits and cancellation.
func (in *Interpreter) tick(pos token.Pos) error {
	in.steps++
	if in.lim.MaxSteps > 0 && in.steps > in.lim.MaxSteps {
		return in.rtErr(pos, errdef.CodeLimit, "step limit exceeded")
	}
	if in.lim.Timeout > 0 && in.now().Sub(in.start) > in.lim.Timeout {
		return in.rtErr(pos, errdef.CodeLimit, "timeout exceeded")
	}
	select {
	case <-in.ctx.Done():
		return in.rtErr(pos, errdef.CodeLimit, "canceled: %v", in.ctx.Err())
	default:
		return nil
	}
}

func (in *Interpreter) rtErr(pos token.Pos, code errdef.Code, format string, args ...any) error {
	base := &errdef.RuntimeError{Pos: pos, Code: code, Msg: fmt.Sprintf(format, args...)}
	return in.withFrames(base)
}

func (in *Interpreter) nameErr(pos token.Pos, kind, name string) error {
	return in.withFrames(&errdef.NameError{Pos: pos, Kind: kind, Name: name})
}

func (in *Interpreter) withFrames(err error) error {
	if len(in.frames) == 0 {
		return err
	}
	var se *StackError
	if errors.As(err, &se) {
		return err
	}
	return &StackError{Err: err, Frames: append([]Frame(nil), in.frames...)}
}
