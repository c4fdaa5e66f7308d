package parser

import (
	"slices"
	"strconv"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/token"
)

var (
	assignOps     = []string{token.SymAssign}
	orOps         = []string{token.SymOr}
	andOps        = []string{token.SymAnd}
	relationalOps = []string{
		token.SymLThan, token.SymGThan, token.SymGThanOrEq,
		token.SymLThanOrEq, token.SymEq, token.SymNotEq,
	}
	additiveOps       = []string{token.SymPlus, token.SymMinus}
	multiplicativeOps = []string{token.SymMultiply, token.SymDivide, token.SymRemainder}
)

// ParseExpression parses a full expression starting at the lowest
// precedence level.
func (p *Parser) ParseExpression() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	return p.parseWhile(assignOps, p.parseOr)
}

func (p *Parser) parseOr() ast.Expr {
	return p.parseWhile(orOps, p.parseAnd)
}

func (p *Parser) parseAnd() ast.Expr {
	return p.parseWhile(andOps, p.parseRelational)
}

// parseRelational compares additive results, or bare operands when the
// arithmetic flag is cleared by a guard.
func (p *Parser) parseRelational() ast.Expr {
	if p.arithmetic {
		return p.parseWhile(relationalOps, p.parseAdditive)
	}
	return p.parseWhile(relationalOps, p.parseNodeLiteral)
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseWhile(additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseWhile(multiplicativeOps, p.parseNodeLiteral)
}

// parseWhile folds operators of one level into left-associative nodes.
func (p *Parser) parseWhile(ops []string, next func() ast.Expr) ast.Expr {
	left := next()
	for p.isNextOperatorIn(ops) {
		op := p.Next()
		right := next()
		left = &ast.Binary{P: op.Pos, Op: op.Value, Left: left, Right: right}
	}
	return left
}

func (p *Parser) isNextOperatorIn(ops []string) bool {
	if !p.isNotEnd() {
		return false
	}
	tok := p.Peek()
	return tok.Kind == token.Operator && slices.Contains(ops, tok.Value)
}

// parseNodeLiteral parses one operand through the literal registries, then
// any trailing index suffixes.
func (p *Parser) parseNodeLiteral() ast.Expr {
	tok := p.Peek()

	var x ast.Expr
	if b, ok := p.g.Literals.Lookup(tok.Kind.String()); ok {
		x = b.BuildExpr(p)
	} else if b, ok := p.g.Punct.Lookup(tok.Value); ok && (tok.Kind == token.Punctuation || tok.Kind == token.Operator) {
		x = b.BuildExpr(p)
	} else {
		p.failUnexpected(tok)
	}

	for p.isNotEnd() && p.isPunct(token.SymLBracket) {
		open := p.Next()
		idx := p.parseInner()
		p.ExpectPunct(token.SymRBracket)
		x = &ast.Index{P: open.Pos, X: x, Idx: idx}
	}
	return x
}

// parseInner parses a nested expression with arithmetic re-enabled.
func (p *Parser) parseInner() ast.Expr {
	restore := p.withArithmetic(true)
	defer restore()
	return p.ParseExpression()
}

// parseGuard parses `( expr )` in boolean context.
func (p *Parser) parseGuard() ast.Expr {
	p.ExpectPunct(token.SymLParen)
	restore := p.withArithmetic(false)
	defer restore()
	cond := p.ParseExpression()
	p.ExpectPunct(token.SymRParen)
	return cond
}

func buildNumber(p *Parser) ast.Expr {
	tok := p.Next()
	n, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		p.failAt(tok, "invalid number %q", tok.Value)
	}
	return &ast.Literal{P: tok.Pos, Kind: ast.LitNum, N: n}
}

func buildString(p *Parser) ast.Expr {
	tok := p.Next()
	return &ast.Literal{P: tok.Pos, Kind: ast.LitStr, S: tok.Value}
}

func buildBoolean(p *Parser) ast.Expr {
	tok := p.Next()
	return &ast.Literal{P: tok.Pos, Kind: ast.LitBool, B: tok.Value == token.BoolTrue}
}

// buildVariable reads a name, which is a call when followed by "(".
func buildVariable(p *Parser) ast.Expr {
	name := p.Next()
	if p.isNotEnd() && p.isPunct(token.SymLParen) {
		return p.parseCall(name)
	}
	return &ast.Ident{P: name.Pos, Name: name.Value}
}

func buildParen(p *Parser) ast.Expr {
	p.ExpectPunct(token.SymLParen)
	x := p.parseInner()
	p.ExpectPunct(token.SymRParen)
	return x
}

func buildArray(p *Parser) ast.Expr {
	open := p.Peek()
	elems := ParseDelimited(p, token.SymLBracket, token.SymRBracket, token.SymComma, p.parseInner)
	return &ast.Array{P: open.Pos, Elems: elems}
}

func buildUnary(p *Parser) ast.Expr {
	op := p.Next()
	x := p.parseNodeLiteral()
	return &ast.Unary{P: op.Pos, Op: op.Value, X: x}
}
