package parser

import (
	"errors"
	"fmt"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/lexer"
	"github.com/yorlang/yorlang/internal/token"
)

// Stream is the token source a Parser consumes. *lexer.Lexer satisfies it.
type Stream interface {
	Peek() token.Token
	Next() token.Token
	IsNotEndOfInput() bool
	Errorf(format string, args ...any) error
}

// Block kinds pushed while parsing nested bodies.
const (
	BlockSe      = token.KwSe
	BlockTabi    = token.KwTabi
	BlockNigbati = token.KwNigbati
	BlockFun     = token.KwFun
	BlockIse     = token.KwIse
	BlockYi      = token.KwYi
)

type Parser struct {
	lx         Stream
	g          *Grammar
	path       string
	blocks     []string
	arithmetic bool
}

type Option func(*Parser)

func WithGrammar(g *Grammar) Option {
	return func(p *Parser) {
		if g != nil {
			p.g = g
		}
	}
}

func WithPath(path string) Option {
	return func(p *Parser) { p.path = path }
}

func New(stream Stream, opts ...Option) *Parser {
	p := &Parser{lx: stream, arithmetic: true}
	if ps, ok := stream.(interface{ Path() string }); ok {
		p.path = ps.Path()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.g == nil {
		p.g = DefaultGrammar()
	}
	return p
}

// Parse tokenizes and parses src in one step.
func Parse(path string, src []byte, opts ...Option) (*ast.Program, error) {
	return New(lexer.New(path, src), opts...).ParseProgram()
}

// ParseProgram consumes the whole stream. Builders report syntax errors by
// panicking with *errdef.SyntaxError; they are recovered here.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			var se *errdef.SyntaxError
			if e, ok := r.(error); ok && errors.As(e, &se) {
				prog = nil
				err = se
				return
			}
			panic(r)
		}
	}()

	prog = &ast.Program{Path: p.path}
	for p.isNotEnd() {
		prog.Stmts = append(prog.Stmts, p.ParseAst())
	}
	return prog, nil
}

// IsIncomplete reports whether err was caused by input ending before a
// construct was closed.
func IsIncomplete(err error) bool {
	var se *errdef.SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

// ParseAst parses one statement: a registered keyword form, or a routine
// call when the statement starts with a name.
func (p *Parser) ParseAst() ast.Stmt {
	tok := p.Peek()
	if tok.Kind == token.Keyword {
		if b, ok := p.g.Stmts.Lookup(tok.Value); ok {
			return b.BuildStmt(p)
		}
	}
	if tok.Kind == token.Variable {
		return p.parseCallStmt()
	}
	p.failUnexpected(tok)
	return nil
}

// ParseBlock parses `{ stmts }` with kind pushed on the block stack.
func (p *Parser) ParseBlock(kind string) *ast.Block {
	p.blocks = append(p.blocks, kind)
	defer func() { p.blocks = p.blocks[:len(p.blocks)-1] }()

	open := p.ExpectPunct(token.SymLBrace)
	b := &ast.Block{P: open.Pos, Kind: kind}
	for p.isNotEnd() && !p.isPunct(token.SymRBrace) {
		b.Stmts = append(b.Stmts, p.ParseAst())
	}
	p.ExpectPunct(token.SymRBrace)
	return b
}

// ParseDelimited parses zero or more items between start and stop,
// separated by sep. A trailing sep before stop is accepted.
func ParseDelimited[T any](p *Parser, start, stop, sep string, item func() T) []T {
	var out []T
	p.ExpectPunct(start)
	first := true
	for p.isNotEnd() {
		if p.isPunct(stop) {
			break
		}
		if first {
			first = false
		} else {
			p.ExpectPunct(sep)
		}
		if p.isPunct(stop) {
			break
		}
		out = append(out, item())
	}
	p.ExpectPunct(stop)
	return out
}

// ParseVarname consumes a variable name.
func (p *Parser) ParseVarname() token.Token {
	tok := p.Peek()
	if tok.Kind != token.Variable {
		p.failUnexpected(tok)
	}
	return p.Next()
}

func (p *Parser) parseCallStmt() ast.Stmt {
	call := p.parseCall(p.ParseVarname())
	p.ExpectPunct(token.SymTerminator)
	return &ast.CallStmt{P: call.P, Call: call}
}

func (p *Parser) parseCall(name token.Token) *ast.Call {
	args := ParseDelimited(p, token.SymLParen, token.SymRParen, token.SymComma, p.parseInner)
	return &ast.Call{P: name.Pos, Name: name.Value, Args: args}
}

// Peek returns the next token. Illegal tokens become syntax errors here so
// that no builder has to check for them.
func (p *Parser) Peek() token.Token {
	tok := p.lx.Peek()
	if tok.Kind == token.Illegal {
		panic(&errdef.SyntaxError{Pos: tok.Pos, Token: tok.Value, Msg: tok.Value})
	}
	return tok
}

func (p *Parser) Next() token.Token {
	p.Peek()
	return p.lx.Next()
}

func (p *Parser) ExpectPunct(v string) token.Token {
	return p.expect(token.Punctuation, v)
}

func (p *Parser) ExpectOperator(v string) token.Token {
	return p.expect(token.Operator, v)
}

func (p *Parser) ExpectKeyword(v string) token.Token {
	return p.expect(token.Keyword, v)
}

func (p *Parser) expect(kind token.Kind, v string) token.Token {
	tok := p.Peek()
	if !tok.Is(kind, v) {
		p.failAt(tok, "expected %q, got %s", v, describe(tok))
	}
	return p.Next()
}

func (p *Parser) isPunct(v string) bool {
	return p.Peek().Is(token.Punctuation, v)
}

func (p *Parser) isKeyword(v string) bool {
	return p.Peek().Is(token.Keyword, v)
}

func (p *Parser) isNotEnd() bool {
	return p.lx.IsNotEndOfInput()
}

// Fail aborts parsing with a syntax error at the upcoming token.
func (p *Parser) Fail(format string, args ...any) {
	err := p.lx.Errorf(format, args...)
	var se *errdef.SyntaxError
	if !errors.As(err, &se) {
		p.failAt(p.lx.Peek(), "%s", err.Error())
	}
	panic(se)
}

func (p *Parser) failAt(tok token.Token, format string, args ...any) {
	panic(&errdef.SyntaxError{
		Pos:        tok.Pos,
		Token:      tok.Value,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: tok.Kind == token.EOF,
	})
}

func (p *Parser) failUnexpected(tok token.Token) {
	if tok.Kind == token.EOF {
		p.failAt(tok, "unexpected end of input")
	}
	p.failAt(tok, "unexpected token %q", tok.Value)
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return tok.Describe()
	}
	return fmt.Sprintf("%q", tok.Value)
}

// withArithmetic sets the arithmetic flag and returns the function that
// restores the previous value.
func (p *Parser) withArithmetic(on bool) func() {
	prev := p.arithmetic
	p.arithmetic = on
	return func() { p.arithmetic = prev }
}

// inLoop reports whether a loop body encloses the current position without
// an intervening routine body.
func (p *Parser) inLoop() bool {
	for i := len(p.blocks) - 1; i >= 0; i-- {
		switch p.blocks[i] {
		case BlockFun, BlockNigbati:
			return true
		case BlockIse:
			return false
		}
	}
	return false
}

func (p *Parser) inRoutine() bool {
	for _, b := range p.blocks {
		if b == BlockIse {
			return true
		}
	}
	return false
}
