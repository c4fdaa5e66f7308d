package interp

import (
	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/rtfmt"
	"github.com/yorlang/yorlang/internal/token"
	"github.com/yorlang/yorlang/internal/value"
)

func (in *Interpreter) execStmt(st ast.Stmt) error {
	if err := in.tick(st.Pos()); err != nil {
		return err
	}
	switch s := st.(type) {
	case *ast.Assign:
		v, err := in.eval(s.Val)
		if err != nil {
			return err
		}
		in.env.SetJeki(in.env.CurrentScope(), s.Name, v)
		return nil
	case *ast.IndexAssign:
		target, ok := in.env.LookupJeki(s.Name)
		if !ok {
			return in.nameErr(s.Pos(), "jeki", s.Name)
		}
		v, err := in.eval(s.Val)
		if err != nil {
			return err
		}
		return in.setIndex(s.Pos(), target, s.Idx, v)
	case *ast.If:
		for _, br := range s.Branches {
			c, err := in.eval(br.Cond)
			if err != nil {
				return err
			}
			if c.Truthy() {
				return in.execBlock(br.Body)
			}
		}
		return in.execBlock(s.Else)
	case *ast.While:
		return in.execWhile(s)
	case *ast.For:
		return in.execFor(s)
	case *ast.Switch:
		return in.execSwitch(s)
	case *ast.IseDef:
		in.env.SetIse(in.env.CurrentScope(), s.Name, s)
		return nil
	case *ast.CallStmt:
		_, err := in.evalCall(s.Call)
		return err
	case *ast.Print:
		v, err := in.eval(s.Val)
		if err != nil {
			return err
		}
		if err := rtfmt.Fprintln(in.out, nil, v.String()); err != nil {
			return in.withFrames(errdef.Wrap(errdef.CodeRuntime, err, "%s %s", s.Pos(), token.KwSope))
		}
		return nil
	case *ast.Break:
		return breakSignal{pos: s.Pos()}
	case *ast.Return:
		if s.Val == nil {
			return returnSignal{v: value.Absent()}
		}
		v, err := in.eval(s.Val)
		if err != nil {
			return err
		}
		return returnSignal{v: v}
	default:
		return in.rtErr(st.Pos(), errdef.CodeStructural, "unknown statement %T", st)
	}
}

// execBlock runs stmts in the current scope. Blocks do not open scopes;
// only routine calls do.
func (in *Interpreter) execBlock(b *ast.Block) error {
	if b == nil {
		return nil
	}
	return in.execStmts(b.Stmts)
}

func (in *Interpreter) execStmts(stmts []ast.Stmt) error {
	for _, st := range stmts {
		if err := in.execStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execWhile(s *ast.While) error {
	for {
		if err := in.tick(s.Pos()); err != nil {
			return err
		}
		c, err := in.eval(s.Cond)
		if err != nil {
			return err
		}
		if !c.Truthy() {
			return nil
		}
		if err := in.execBlock(s.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			return err
		}
	}
}

func (in *Interpreter) execFor(s *ast.For) error {
	if s.Init != nil {
		if err := in.execStmt(s.Init); err != nil {
			return err
		}
	}
	for {
		if err := in.tick(s.Pos()); err != nil {
			return err
		}
		if s.Cond != nil {
			c, err := in.eval(s.Cond)
			if err != nil {
				return err
			}
			if !c.Truthy() {
				return nil
			}
		}
		if err := in.execBlock(s.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			return err
		}
		if s.Post != nil {
			if err := in.execStmt(s.Post); err != nil {
				return err
			}
		}
	}
}

// execSwitch runs the first case whose value equals the subject, or the
// default. There is no fall-through.
func (in *Interpreter) execSwitch(s *ast.Switch) error {
	subject, err := in.eval(s.Subject)
	if err != nil {
		return err
	}
	for _, c := range s.Cases {
		m, err := in.eval(c.Match)
		if err != nil {
			return err
		}
		if value.Equal(subject, m) {
			return in.execStmts(c.Stmts)
		}
	}
	return in.execStmts(s.Default)
}
