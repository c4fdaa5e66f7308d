package ast

import "github.com/yorlang/yorlang/internal/token"

type Pos = token.Pos

type Program struct {
	Path  string
	Stmts []Stmt
}

type Node interface {
	Pos() Pos
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Block struct {
	P     Pos
	Kind  string
	Stmts []Stmt
}

// Assign binds Name in the current scope. Assignment inside an expression
// is a Binary with Op "=".
type Assign struct {
	P    Pos
	Name string
	Val  Expr
}

func (*Assign) stmtNode()  {}
func (s *Assign) Pos() Pos { return s.P }

type IndexAssign struct {
	P    Pos
	Name string
	Idx  Expr
	Val  Expr
}

func (*IndexAssign) stmtNode()  {}
func (s *IndexAssign) Pos() Pos { return s.P }

type Branch struct {
	P    Pos
	Cond Expr
	Body *Block
}

type If struct {
	P        Pos
	Branches []Branch
	Else     *Block
}

func (*If) stmtNode()  {}
func (s *If) Pos() Pos { return s.P }

type For struct {
	P    Pos
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
}

func (*For) stmtNode()  {}
func (s *For) Pos() Pos { return s.P }

type While struct {
	P    Pos
	Cond Expr
	Body *Block
}

func (*While) stmtNode()  {}
func (s *While) Pos() Pos { return s.P }

type Case struct {
	P     Pos
	Match Expr
	Stmts []Stmt
}

type Switch struct {
	P       Pos
	Subject Expr
	Cases   []Case
	Default []Stmt
}

func (*Switch) stmtNode()  {}
func (s *Switch) Pos() Pos { return s.P }

// IseDef declares a routine. The definition is registered when the
// statement executes, not when it is parsed.
type IseDef struct {
	P      Pos
	Name   string
	Params []string
	Body   *Block
}

func (*IseDef) stmtNode()  {}
func (s *IseDef) Pos() Pos { return s.P }

type CallStmt struct {
	P    Pos
	Call *Call
}

func (*CallStmt) stmtNode()  {}
func (s *CallStmt) Pos() Pos { return s.P }

type Print struct {
	P   Pos
	Val Expr
}

func (*Print) stmtNode()  {}
func (s *Print) Pos() Pos { return s.P }

type Break struct {
	P Pos
}

func (*Break) stmtNode()  {}
func (s *Break) Pos() Pos { return s.P }

// Return with a nil Val yields an absent value.
type Return struct {
	P   Pos
	Val Expr
}

func (*Return) stmtNode()  {}
func (s *Return) Pos() Pos { return s.P }

type Ident struct {
	P    Pos
	Name string
}

func (*Ident) exprNode()  {}
func (e *Ident) Pos() Pos { return e.P }

type LitKind int

const (
	LitNum LitKind = iota
	LitStr
	LitBool
)

type Literal struct {
	P    Pos
	Kind LitKind
	B    bool
	N    float64
	S    string
}

func (*Literal) exprNode()  {}
func (e *Literal) Pos() Pos { return e.P }

type Array struct {
	P     Pos
	Elems []Expr
}

func (*Array) exprNode()  {}
func (e *Array) Pos() Pos { return e.P }

// Binary is used for every infix operator, including `=`. Op holds the
// operator spelling.
type Binary struct {
	P     Pos
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) exprNode()  {}
func (e *Binary) Pos() Pos { return e.P }

type Unary struct {
	P  Pos
	Op string
	X  Expr
}

func (*Unary) exprNode()  {}
func (e *Unary) Pos() Pos { return e.P }

type Index struct {
	P   Pos
	X   Expr
	Idx Expr
}

func (*Index) exprNode()  {}
func (e *Index) Pos() Pos { return e.P }

type Call struct {
	P    Pos
	Name string
	Args []Expr
}

func (*Call) exprNode()  {}
func (e *Call) Pos() Pos { return e.P }
