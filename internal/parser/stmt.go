package parser

import (
	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/token"
)

// buildTi parses `ti name = expr;`. When the token after the name selects
// a registered assignment form (and is not a call paren) that form builds
// the statement instead.
func buildTi(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwTi)
	target := p.ParseVarname()

	next := p.Peek()
	if next.Value != token.SymLParen && next.Kind != token.EOF {
		if b, ok := p.g.AssignForms.Lookup(next.Value); ok {
			return b.BuildAssign(p, target)
		}
	}

	p.ExpectOperator(token.SymAssign)
	val := p.ParseExpression()
	p.ExpectPunct(token.SymTerminator)
	return &ast.Assign{P: kw.Pos, Name: target.Value, Val: val}
}

// buildIndexAssign parses the `[idx] = expr;` tail of `ti name[idx] = expr;`.
func buildIndexAssign(p *Parser, target token.Token) ast.Stmt {
	p.ExpectPunct(token.SymLBracket)
	idx := p.parseInner()
	p.ExpectPunct(token.SymRBracket)
	p.ExpectOperator(token.SymAssign)
	val := p.ParseExpression()
	p.ExpectPunct(token.SymTerminator)
	return &ast.IndexAssign{P: target.Pos, Name: target.Value, Idx: idx, Val: val}
}

func buildSe(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwSe)
	st := &ast.If{P: kw.Pos}
	cond := p.parseGuard()
	st.Branches = append(st.Branches, ast.Branch{P: kw.Pos, Cond: cond, Body: p.ParseBlock(BlockSe)})

	for p.isNotEnd() && p.isKeyword(token.KwTabi) {
		p.Next()
		if p.isKeyword(token.KwSe) {
			pos := p.Next().Pos
			cond := p.parseGuard()
			st.Branches = append(st.Branches, ast.Branch{P: pos, Cond: cond, Body: p.ParseBlock(BlockSe)})
			continue
		}
		st.Else = p.ParseBlock(BlockTabi)
		break
	}
	return st
}

func buildNigbati(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwNigbati)
	cond := p.parseGuard()
	body := p.ParseBlock(BlockNigbati)
	return &ast.While{P: kw.Pos, Cond: cond, Body: body}
}

// buildFun parses `fun (init; cond; post;) { body }`. The init and post
// clauses are full statements and carry their own terminators.
func buildFun(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwFun)
	p.ExpectPunct(token.SymLParen)
	init := p.ParseAst()
	cond := p.parseInner()
	p.ExpectPunct(token.SymTerminator)
	post := p.ParseAst()
	p.ExpectPunct(token.SymRParen)
	body := p.ParseBlock(BlockFun)
	return &ast.For{P: kw.Pos, Init: init, Cond: cond, Post: post, Body: body}
}

func buildIse(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwIse)
	name := p.ParseVarname()
	params := ParseDelimited(p, token.SymLParen, token.SymRParen, token.SymComma, func() string {
		return p.ParseVarname().Value
	})
	body := p.ParseBlock(BlockIse)
	return &ast.IseDef{P: kw.Pos, Name: name.Value, Params: params, Body: body}
}

func buildPada(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwPada)
	if !p.inRoutine() {
		p.failAt(kw, "%s outside %s", token.KwPada, token.KwIse)
	}
	if p.isPunct(token.SymTerminator) {
		p.Next()
		return &ast.Return{P: kw.Pos}
	}
	val := p.ParseExpression()
	p.ExpectPunct(token.SymTerminator)
	return &ast.Return{P: kw.Pos, Val: val}
}

func buildKuro(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwKuro)
	if !p.inLoop() {
		p.failAt(kw, "%s outside %s or %s", token.KwKuro, token.KwFun, token.KwNigbati)
	}
	p.ExpectPunct(token.SymTerminator)
	return &ast.Break{P: kw.Pos}
}

func buildSope(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwSope)
	val := p.ParseExpression()
	p.ExpectPunct(token.SymTerminator)
	return &ast.Print{P: kw.Pos, Val: val}
}

// buildYi parses
//
//	yi (subject) { iru a: stmts... iru b: stmts... padasi: stmts... }
func buildYi(p *Parser) ast.Stmt {
	kw := p.ExpectKeyword(token.KwYi)
	p.ExpectPunct(token.SymLParen)
	subject := p.parseInner()
	p.ExpectPunct(token.SymRParen)

	p.blocks = append(p.blocks, BlockYi)
	defer func() { p.blocks = p.blocks[:len(p.blocks)-1] }()

	st := &ast.Switch{P: kw.Pos, Subject: subject}
	p.ExpectPunct(token.SymLBrace)
	for p.isNotEnd() && p.isKeyword(token.KwIru) {
		pos := p.Next().Pos
		match := p.parseInner()
		p.ExpectPunct(token.SymColon)
		st.Cases = append(st.Cases, ast.Case{P: pos, Match: match, Stmts: p.parseCaseBody()})
	}
	if p.isNotEnd() && p.isKeyword(token.KwPadasi) {
		p.Next()
		p.ExpectPunct(token.SymColon)
		st.Default = p.parseCaseBody()
		if st.Default == nil {
			st.Default = []ast.Stmt{}
		}
	}
	p.ExpectPunct(token.SymRBrace)
	return st
}

func (p *Parser) parseCaseBody() []ast.Stmt {
	var out []ast.Stmt
	for p.isNotEnd() {
		if p.isKeyword(token.KwIru) || p.isKeyword(token.KwPadasi) || p.isPunct(token.SymRBrace) {
			break
		}
		out = append(out, p.ParseAst())
	}
	return out
}
