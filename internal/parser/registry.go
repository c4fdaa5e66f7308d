package parser

import (
	"reflect"
	"sort"
	"strings"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/token"
)

// StmtBuilder builds one statement starting at the current token.
type StmtBuilder interface {
	BuildStmt(p *Parser) ast.Stmt
}

type StmtBuilderFunc func(p *Parser) ast.Stmt

func (f StmtBuilderFunc) BuildStmt(p *Parser) ast.Stmt { return f(p) }

// ExprBuilder builds one operand of the innermost expression level.
type ExprBuilder interface {
	BuildExpr(p *Parser) ast.Expr
}

type ExprBuilderFunc func(p *Parser) ast.Expr

func (f ExprBuilderFunc) BuildExpr(p *Parser) ast.Expr { return f(p) }

// AssignFormBuilder takes over a `ti` statement once the target name has
// been read and the following token selected it.
type AssignFormBuilder interface {
	BuildAssign(p *Parser, target token.Token) ast.Stmt
}

type AssignFormBuilderFunc func(p *Parser, target token.Token) ast.Stmt

func (f AssignFormBuilderFunc) BuildAssign(p *Parser, target token.Token) ast.Stmt {
	return f(p, target)
}

// Registry maps a discriminant (keyword, token kind or leading symbol) to
// a builder. Entries are checked when registered.
type Registry[B any] struct {
	name string
	m    map[string]B
}

func NewRegistry[B any](name string) *Registry[B] {
	return &Registry[B]{name: name, m: make(map[string]B)}
}

func (r *Registry[B]) Register(key string, b B) error {
	if strings.TrimSpace(key) == "" {
		return errdef.New(errdef.CodeStructural, "%s: empty key", r.name)
	}
	if isNil(b) {
		return errdef.New(errdef.CodeStructural, "%s: %q has no builder", r.name, key)
	}
	if _, ok := r.m[key]; ok {
		return errdef.New(errdef.CodeStructural, "%s: %q already registered", r.name, key)
	}
	r.m[key] = b
	return nil
}

func (r *Registry[B]) Lookup(key string) (B, bool) {
	b, ok := r.m[key]
	return b, ok
}

func (r *Registry[B]) Keys() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry[B]) clone() *Registry[B] {
	n := NewRegistry[B](r.name)
	for k, v := range r.m {
		n.m[k] = v
	}
	return n
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Grammar is the full set of registries a Parser dispatches through.
type Grammar struct {
	// Stmts is keyed by statement keyword.
	Stmts *Registry[StmtBuilder]
	// Literals is keyed by token kind name (NUMBER, STRING, ...).
	Literals *Registry[ExprBuilder]
	// Punct is keyed by the symbol that opens an operand: "(", "[", "-", "!".
	Punct *Registry[ExprBuilder]
	// AssignForms is keyed by the token following a `ti` target.
	AssignForms *Registry[AssignFormBuilder]
}

func NewGrammar() *Grammar {
	return &Grammar{
		Stmts:       NewRegistry[StmtBuilder]("statement"),
		Literals:    NewRegistry[ExprBuilder]("literal"),
		Punct:       NewRegistry[ExprBuilder]("expression punctuation"),
		AssignForms: NewRegistry[AssignFormBuilder]("assignment form"),
	}
}

// Clone returns a grammar whose registries can be extended without
// touching g.
func (g *Grammar) Clone() *Grammar {
	return &Grammar{
		Stmts:       g.Stmts.clone(),
		Literals:    g.Literals.clone(),
		Punct:       g.Punct.clone(),
		AssignForms: g.AssignForms.clone(),
	}
}

var defaultGrammar = buildDefaultGrammar()

// DefaultGrammar returns a fresh copy of the Yorlang grammar.
func DefaultGrammar() *Grammar {
	return defaultGrammar.Clone()
}

func buildDefaultGrammar() *Grammar {
	g := NewGrammar()
	must(g.Stmts.Register(token.KwTi, StmtBuilderFunc(buildTi)))
	must(g.Stmts.Register(token.KwSe, StmtBuilderFunc(buildSe)))
	must(g.Stmts.Register(token.KwNigbati, StmtBuilderFunc(buildNigbati)))
	must(g.Stmts.Register(token.KwFun, StmtBuilderFunc(buildFun)))
	must(g.Stmts.Register(token.KwIse, StmtBuilderFunc(buildIse)))
	must(g.Stmts.Register(token.KwPada, StmtBuilderFunc(buildPada)))
	must(g.Stmts.Register(token.KwKuro, StmtBuilderFunc(buildKuro)))
	must(g.Stmts.Register(token.KwSope, StmtBuilderFunc(buildSope)))
	must(g.Stmts.Register(token.KwYi, StmtBuilderFunc(buildYi)))

	must(g.Literals.Register(token.Number.String(), ExprBuilderFunc(buildNumber)))
	must(g.Literals.Register(token.String.String(), ExprBuilderFunc(buildString)))
	must(g.Literals.Register(token.Boolean.String(), ExprBuilderFunc(buildBoolean)))
	must(g.Literals.Register(token.Variable.String(), ExprBuilderFunc(buildVariable)))

	must(g.Punct.Register(token.SymLParen, ExprBuilderFunc(buildParen)))
	must(g.Punct.Register(token.SymLBracket, ExprBuilderFunc(buildArray)))
	must(g.Punct.Register(token.SymMinus, ExprBuilderFunc(buildUnary)))
	must(g.Punct.Register(token.SymNot, ExprBuilderFunc(buildUnary)))

	must(g.AssignForms.Register(token.SymLBracket, AssignFormBuilderFunc(buildIndexAssign)))
	return g
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
