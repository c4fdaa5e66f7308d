package interp

import (
	"math"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/token"
	"github.com/yorlang/yorlang/internal/value"
)

func (in *Interpreter) eval(ex ast.Expr) (value.Value, error) {
	switch e := ex.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.LitNum:
			return value.Num(e.N), nil
		case ast.LitStr:
			return value.Str(e.S), nil
		case ast.LitBool:
			return value.Bool(e.B), nil
		}
		return value.Absent(), in.rtErr(e.Pos(), errdef.CodeStructural, "bad literal")
	case *ast.Ident:
		v, ok := in.env.LookupJeki(e.Name)
		if !ok {
			return value.Absent(), in.nameErr(e.Pos(), "jeki", e.Name)
		}
		return v, nil
	case *ast.Array:
		out := make([]value.Value, 0, len(e.Elems))
		for _, it := range e.Elems {
			v, err := in.eval(it)
			if err != nil {
				return value.Absent(), err
			}
			out = append(out, v)
		}
		return value.List(out), nil
	case *ast.Unary:
		x, err := in.eval(e.X)
		if err != nil {
			return value.Absent(), err
		}
		switch e.Op {
		case token.SymNot:
			return value.Bool(!x.Truthy()), nil
		case token.SymMinus:
			if x.K != value.KNum {
				return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "cannot negate %s", x.K)
			}
			return value.Num(-x.N), nil
		}
		return value.Absent(), in.rtErr(e.Pos(), errdef.CodeStructural, "bad unary %q", e.Op)
	case *ast.Binary:
		return in.evalBinary(e)
	case *ast.Index:
		x, err := in.eval(e.X)
		if err != nil {
			return value.Absent(), err
		}
		idx, err := in.eval(e.Idx)
		if err != nil {
			return value.Absent(), err
		}
		return in.index(e.Pos(), x, idx)
	case *ast.Call:
		return in.evalCall(e)
	case nil:
		return value.Absent(), nil
	default:
		return value.Absent(), in.rtErr(ex.Pos(), errdef.CodeStructural, "unknown expression %T", ex)
	}
}

func (in *Interpreter) evalBinary(e *ast.Binary) (value.Value, error) {
	switch e.Op {
	case token.SymAssign:
		return in.evalAssign(e)
	case token.SymAnd:
		l, err := in.eval(e.Left)
		if err != nil {
			return value.Absent(), err
		}
		if !l.Truthy() {
			return value.Bool(false), nil
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return value.Absent(), err
		}
		return value.Bool(r.Truthy()), nil
	case token.SymOr:
		l, err := in.eval(e.Left)
		if err != nil {
			return value.Absent(), err
		}
		if l.Truthy() {
			return value.Bool(true), nil
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return value.Absent(), err
		}
		return value.Bool(r.Truthy()), nil
	}

	l, err := in.eval(e.Left)
	if err != nil {
		return value.Absent(), err
	}
	r, err := in.eval(e.Right)
	if err != nil {
		return value.Absent(), err
	}

	switch e.Op {
	case token.SymPlus:
		switch {
		case l.K == value.KNum && r.K == value.KNum:
			return value.Num(l.N + r.N), nil
		case l.K == value.KStr || r.K == value.KStr:
			return value.Str(l.String() + r.String()), nil
		case l.K == value.KList && r.K == value.KList:
			out := make([]value.Value, 0, len(l.Items())+len(r.Items()))
			out = append(out, l.Items()...)
			out = append(out, r.Items()...)
			return value.List(out), nil
		}
		return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "cannot add %s and %s", l.K, r.K)
	case token.SymMinus, token.SymMultiply, token.SymDivide, token.SymRemainder:
		if l.K != value.KNum || r.K != value.KNum {
			return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "operator %s needs numbers, got %s and %s", e.Op, l.K, r.K)
		}
		switch e.Op {
		case token.SymMinus:
			return value.Num(l.N - r.N), nil
		case token.SymMultiply:
			return value.Num(l.N * r.N), nil
		case token.SymDivide:
			if r.N == 0 {
				return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "division by zero")
			}
			return value.Num(l.N / r.N), nil
		default:
			if r.N == 0 {
				return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "division by zero")
			}
			return value.Num(math.Mod(l.N, r.N)), nil
		}
	case token.SymEq:
		return value.Bool(value.Equal(l, r)), nil
	case token.SymNotEq:
		return value.Bool(!value.Equal(l, r)), nil
	case token.SymLThan, token.SymGThan, token.SymLThanOrEq, token.SymGThanOrEq:
		return in.compare(e, l, r)
	}
	return value.Absent(), in.rtErr(e.Pos(), errdef.CodeStructural, "bad operator %q", e.Op)
}

func (in *Interpreter) compare(e *ast.Binary, l, r value.Value) (value.Value, error) {
	var c int
	switch {
	case l.K == value.KNum && r.K == value.KNum:
		switch {
		case l.N < r.N:
			c = -1
		case l.N > r.N:
			c = 1
		}
	case l.K == value.KStr && r.K == value.KStr:
		switch {
		case l.S < r.S:
			c = -1
		case l.S > r.S:
			c = 1
		}
	default:
		return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "cannot compare %s and %s", l.K, r.K)
	}
	switch e.Op {
	case token.SymLThan:
		return value.Bool(c < 0), nil
	case token.SymGThan:
		return value.Bool(c > 0), nil
	case token.SymLThanOrEq:
		return value.Bool(c <= 0), nil
	default:
		return value.Bool(c >= 0), nil
	}
}

// evalAssign handles `=` inside an expression. The target is bound in the
// current scope and the assigned value is the result.
func (in *Interpreter) evalAssign(e *ast.Binary) (value.Value, error) {
	switch t := e.Left.(type) {
	case *ast.Ident:
		v, err := in.eval(e.Right)
		if err != nil {
			return value.Absent(), err
		}
		in.env.SetJeki(in.env.CurrentScope(), t.Name, v)
		return v, nil
	case *ast.Index:
		x, err := in.eval(t.X)
		if err != nil {
			return value.Absent(), err
		}
		v, err := in.eval(e.Right)
		if err != nil {
			return value.Absent(), err
		}
		if err := in.setIndex(t.Pos(), x, t.Idx, v); err != nil {
			return value.Absent(), err
		}
		return v, nil
	default:
		return value.Absent(), in.rtErr(e.Pos(), errdef.CodeRuntime, "invalid assignment target")
	}
}

func (in *Interpreter) index(pos token.Pos, x, idx value.Value) (value.Value, error) {
	switch x.K {
	case value.KList:
		i, err := in.position(pos, idx, len(x.Items()))
		if err != nil {
			return value.Absent(), err
		}
		return x.Items()[i], nil
	case value.KStr:
		rs := []rune(x.S)
		i, err := in.position(pos, idx, len(rs))
		if err != nil {
			return value.Absent(), err
		}
		return value.Str(string(rs[i])), nil
	default:
		return value.Absent(), in.rtErr(pos, errdef.CodeRuntime, "cannot index %s", x.K)
	}
}

func (in *Interpreter) setIndex(pos token.Pos, target value.Value, idxExpr ast.Expr, v value.Value) error {
	if target.K != value.KList {
		return in.rtErr(pos, errdef.CodeRuntime, "cannot assign into %s", target.K)
	}
	idx, err := in.eval(idxExpr)
	if err != nil {
		return err
	}
	items := target.Items()
	i, err := in.position(pos, idx, len(items))
	if err != nil {
		return err
	}
	items[i] = v
	return nil
}

func (in *Interpreter) position(pos token.Pos, idx value.Value, n int) (int, error) {
	if idx.K != value.KNum || idx.N != math.Trunc(idx.N) {
		return 0, in.rtErr(pos, errdef.CodeRuntime, "index must be a whole number, got %s", idx.String())
	}
	i := int(idx.N)
	if i < 0 || i >= n {
		return 0, in.rtErr(pos, errdef.CodeRuntime, "index %d out of range [0:%d]", i, n)
	}
	return i, nil
}
