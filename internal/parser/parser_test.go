package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/yorlang/yorlang/internal/ast"
	"github.com/yorlang/yorlang/internal/errdef"
	"github.com/yorlang/yorlang/internal/lexer"
	"github.com/yorlang/yorlang/internal/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func parseErr(t *testing.T, src string) *errdef.SyntaxError {
	t.Helper()
	_, err := Parse("test", []byte(src))
	if err == nil {
		t.Fatalf("expected syntax error for %q", src)
	}
	var se *errdef.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *errdef.SyntaxError, got %T: %v", err, err)
	}
	return se
}

func assignVal(t *testing.T, prog *ast.Program, i int) ast.Expr {
	t.Helper()
	as, ok := prog.Stmts[i].(*ast.Assign)
	if !ok {
		t.Fatalf("stmt %d: expected assign, got %T", i, prog.Stmts[i])
	}
	return as.Val
}

func TestParseLeftAssociative(t *testing.T) {
	prog := parse(t, "ti x = a - b - c;")
	bin, ok := assignVal(t, prog, 0).(*ast.Binary)
	if !ok || bin.Op != "-" {
		t.Fatalf("expected binary -, got %#v", assignVal(t, prog, 0))
	}
	left, ok := bin.Left.(*ast.Binary)
	if !ok || left.Op != "-" {
		t.Fatalf("expected (a - b) on the left, got %#v", bin.Left)
	}
	if id, ok := bin.Right.(*ast.Ident); !ok || id.Name != "c" {
		t.Fatalf("expected c on the right, got %#v", bin.Right)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := parse(t, "ti x = 2 + 3 * 4;")
	bin := assignVal(t, prog, 0).(*ast.Binary)
	if bin.Op != "+" {
		t.Fatalf("expected + at the root, got %s", bin.Op)
	}
	if mul, ok := bin.Right.(*ast.Binary); !ok || mul.Op != "*" {
		t.Fatalf("expected 3 * 4 on the right, got %#v", bin.Right)
	}

	prog = parse(t, "ti x = (2 + 3) * 4;")
	bin = assignVal(t, prog, 0).(*ast.Binary)
	if bin.Op != "*" {
		t.Fatalf("expected * at the root, got %s", bin.Op)
	}
}

func TestParseLogicalLevels(t *testing.T) {
	prog := parse(t, "ti x = a < 1 || b == 2 && c;")
	or := assignVal(t, prog, 0).(*ast.Binary)
	if or.Op != "||" {
		t.Fatalf("expected || at the root, got %s", or.Op)
	}
	and, ok := or.Right.(*ast.Binary)
	if !ok || and.Op != "&&" {
		t.Fatalf("expected && under ||, got %#v", or.Right)
	}
}

func TestParseAssignExpression(t *testing.T) {
	prog := parse(t, "ti x = y = 3;")
	bin, ok := assignVal(t, prog, 0).(*ast.Binary)
	if !ok || bin.Op != "=" {
		t.Fatalf("expected assignment expression, got %#v", assignVal(t, prog, 0))
	}
}

func TestParseGuardIsBooleanContext(t *testing.T) {
	prog := parse(t, "se (a < b) { sope a; }")
	st := prog.Stmts[0].(*ast.If)
	if bin, ok := st.Branches[0].Cond.(*ast.Binary); !ok || bin.Op != "<" {
		t.Fatalf("expected a < b guard, got %#v", st.Branches[0].Cond)
	}

	se := parseErr(t, "se (a + 1 < b) { sope a; }")
	if se.Token != "+" {
		t.Fatalf("expected error at +, got %q", se.Token)
	}

	prog = parse(t, "nigbati ((a + 1) < b) { kuro; }")
	w := prog.Stmts[0].(*ast.While)
	cmp := w.Cond.(*ast.Binary)
	if add, ok := cmp.Left.(*ast.Binary); !ok || add.Op != "+" {
		t.Fatalf("expected parenthesized arithmetic inside guard, got %#v", cmp.Left)
	}
}

func TestParseArithmeticFlagRestored(t *testing.T) {
	p := New(lexer.New("test", []byte("se (a) { ti b = 1 + 2; }")))
	if _, err := p.ParseProgram(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.arithmetic {
		t.Fatalf("arithmetic flag not restored after guard")
	}

	p = New(lexer.New("test", []byte("se (a + b) { }")))
	if _, err := p.ParseProgram(); err == nil {
		t.Fatalf("expected syntax error")
	}
	if !p.arithmetic {
		t.Fatalf("arithmetic flag not restored after failed guard")
	}
	if len(p.blocks) != 0 {
		t.Fatalf("block stack not empty: %v", p.blocks)
	}
}

func TestParseArithmeticInsideGuardBlock(t *testing.T) {
	prog := parse(t, "se (a) { ti b = 1 + 2 * 3; }")
	body := prog.Stmts[0].(*ast.If).Branches[0].Body
	if _, ok := body.Stmts[0].(*ast.Assign).Val.(*ast.Binary); !ok {
		t.Fatalf("expected arithmetic in block body")
	}
}

func TestParseIfChain(t *testing.T) {
	src := heredoc.Doc(`
		se (a == 1) {
			sope "one";
		} tabi se (a == 2) {
			sope "two";
		} tabi {
			sope "many";
		}
	`)
	prog := parse(t, src)
	st, ok := prog.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected if, got %T", prog.Stmts[0])
	}
	if len(st.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(st.Branches))
	}
	if st.Else == nil || len(st.Else.Stmts) != 1 {
		t.Fatalf("expected else block")
	}
}

func TestParseFor(t *testing.T) {
	prog := parse(t, "fun (ti i = 0; i < 10; ti i = i + 1;) { sope i; }")
	f, ok := prog.Stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("expected for, got %T", prog.Stmts[0])
	}
	if _, ok := f.Init.(*ast.Assign); !ok {
		t.Fatalf("expected init assignment")
	}
	if _, ok := f.Post.(*ast.Assign); !ok {
		t.Fatalf("expected post assignment")
	}
	if len(f.Body.Stmts) != 1 || f.Body.Kind != BlockFun {
		t.Fatalf("unexpected body %+v", f.Body)
	}
}

func TestParseForConditionAllowsArithmetic(t *testing.T) {
	prog := parse(t, "fun (ti i = 0; i < n + 1; ti i = i + 1;) { sope i; }")
	f := prog.Stmts[0].(*ast.For)
	cmp, ok := f.Cond.(*ast.Binary)
	if !ok || cmp.Op != "<" {
		t.Fatalf("expected comparison, got %#v", f.Cond)
	}
	if add, ok := cmp.Right.(*ast.Binary); !ok || add.Op != "+" {
		t.Fatalf("expected arithmetic on the right, got %#v", cmp.Right)
	}
}

func TestParseIse(t *testing.T) {
	prog := parse(t, "ise fi(a, b,) { pada a + b; }")
	def, ok := prog.Stmts[0].(*ast.IseDef)
	if !ok {
		t.Fatalf("expected ise, got %T", prog.Stmts[0])
	}
	if def.Name != "fi" || strings.Join(def.Params, ",") != "a,b" {
		t.Fatalf("unexpected def %+v", def)
	}
	if _, ok := def.Body.Stmts[0].(*ast.Return); !ok {
		t.Fatalf("expected return in body")
	}
}

func TestParseCallStatement(t *testing.T) {
	prog := parse(t, "fi(1, [2, 3,],);")
	cs, ok := prog.Stmts[0].(*ast.CallStmt)
	if !ok {
		t.Fatalf("expected call statement, got %T", prog.Stmts[0])
	}
	if cs.Call.Name != "fi" || len(cs.Call.Args) != 2 {
		t.Fatalf("unexpected call %+v", cs.Call)
	}
	arr, ok := cs.Call.Args[1].(*ast.Array)
	if !ok || len(arr.Elems) != 2 {
		t.Fatalf("expected 2 element array, got %#v", cs.Call.Args[1])
	}
}

func TestParseDelimitedEmpty(t *testing.T) {
	prog := parse(t, "fi();")
	if n := len(prog.Stmts[0].(*ast.CallStmt).Call.Args); n != 0 {
		t.Fatalf("expected no args, got %d", n)
	}
}

func TestParseDelimitedUnterminated(t *testing.T) {
	se := parseErr(t, "fi(1, 2")
	if !se.Incomplete {
		t.Fatalf("expected incomplete error, got %v", se)
	}
}

func TestParseIndexAssign(t *testing.T) {
	prog := parse(t, "ti a[1] = 5;")
	ia, ok := prog.Stmts[0].(*ast.IndexAssign)
	if !ok {
		t.Fatalf("expected index assignment, got %T", prog.Stmts[0])
	}
	if ia.Name != "a" {
		t.Fatalf("unexpected target %q", ia.Name)
	}
}

func TestParseIndexAndUnary(t *testing.T) {
	prog := parse(t, "ti x = -a[0] * !b;")
	mul := assignVal(t, prog, 0).(*ast.Binary)
	neg, ok := mul.Left.(*ast.Unary)
	if !ok || neg.Op != "-" {
		t.Fatalf("expected unary -, got %#v", mul.Left)
	}
	if _, ok := neg.X.(*ast.Index); !ok {
		t.Fatalf("expected index under unary, got %#v", neg.X)
	}
}

func TestParseSwitch(t *testing.T) {
	src := heredoc.Doc(`
		yi (a) {
			iru 1:
				sope "one";
			iru 2:
				sope "two";
				sope "still two";
			padasi:
				sope "other";
		}
	`)
	prog := parse(t, src)
	sw, ok := prog.Stmts[0].(*ast.Switch)
	if !ok {
		t.Fatalf("expected switch, got %T", prog.Stmts[0])
	}
	if len(sw.Cases) != 2 || len(sw.Cases[1].Stmts) != 2 || len(sw.Default) != 1 {
		t.Fatalf("unexpected switch shape %+v", sw)
	}
}

func TestParseBreakPlacement(t *testing.T) {
	parse(t, "fun (ti i = 0; i < 3; ti i = i + 1;) { se (i == 1) { kuro; } }")
	parse(t, "nigbati (ooto) { yi (1) { iru 1: kuro; } }")

	se := parseErr(t, "se (a) { kuro; }")
	if se.Token != "kuro" {
		t.Fatalf("expected error at kuro, got %q", se.Token)
	}
	parseErr(t, "kuro;")
	parseErr(t, "nigbati (ooto) { ise f() { kuro; } }")
}

func TestParseReturnPlacement(t *testing.T) {
	parse(t, "ise f() { se (ooto) { pada 1; } pada; }")
	se := parseErr(t, "pada 1;")
	if se.Token != "pada" {
		t.Fatalf("expected error at pada, got %q", se.Token)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src   string
		token string
	}{
		{"ti = 3;", "="},
		{"ti a 3;", "3"},
		{"3;", "3"},
		{"tabi { }", "tabi"},
		{"sope 1 +;", ";"},
		{"ti a = 1", ""},
	}
	for _, tc := range cases {
		se := parseErr(t, tc.src)
		if se.Token != tc.token {
			t.Fatalf("%q: expected token %q, got %q (%v)", tc.src, tc.token, se.Token, se)
		}
		if !se.Pos.IsValid() {
			t.Fatalf("%q: expected position, got %v", tc.src, se.Pos)
		}
	}
}

func TestParseIllegalToken(t *testing.T) {
	se := parseErr(t, "ti a = @;")
	if se.Pos.Col != 8 {
		t.Fatalf("expected column 8, got %d", se.Pos.Col)
	}
}

func TestIsIncomplete(t *testing.T) {
	_, err := Parse("test", []byte("ise f() {\n  sope 1;\n"))
	if !IsIncomplete(err) {
		t.Fatalf("expected incomplete, got %v", err)
	}
	_, err = Parse("test", []byte("ise f() { sope 1 }"))
	if IsIncomplete(err) {
		t.Fatalf("did not expect incomplete for %v", err)
	}
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry[StmtBuilder]("statement")
	if err := r.Register("", StmtBuilderFunc(buildSope)); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error for empty key, got %v", err)
	}
	if err := r.Register("x", nil); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error for nil builder, got %v", err)
	}
	var nilFn StmtBuilderFunc
	if err := r.Register("x", nilFn); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error for nil func, got %v", err)
	}
	if err := r.Register("x", StmtBuilderFunc(buildSope)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("x", StmtBuilderFunc(buildSope)); errdef.CodeOf(err) != errdef.CodeStructural {
		t.Fatalf("expected structural error for duplicate, got %v", err)
	}
}

func TestCustomStatement(t *testing.T) {
	g := DefaultGrammar()
	err := g.Stmts.Register(token.KwTabi, StmtBuilderFunc(func(p *Parser) ast.Stmt {
		kw := p.ExpectKeyword(token.KwTabi)
		p.ExpectPunct(token.SymTerminator)
		return &ast.Print{P: kw.Pos, Val: &ast.Literal{P: kw.Pos, Kind: ast.LitStr, S: "tabi"}}
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	prog, err := Parse("test", []byte("tabi;"), WithGrammar(g))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := prog.Stmts[0].(*ast.Print); !ok {
		t.Fatalf("expected custom statement, got %T", prog.Stmts[0])
	}

	if _, err := Parse("test", []byte("tabi;")); err == nil {
		t.Fatalf("custom grammar leaked into default grammar")
	}
}

func TestDescribeShape(t *testing.T) {
	prog := parse(t, "ti a = 1 + b;")
	d := ast.Describe(prog.Stmts[0])
	if d["operation"] != "=" || d["left"] != "a" {
		t.Fatalf("unexpected describe %v", d)
	}
	right := d["right"].(map[string]any)
	if right["operation"] != "+" {
		t.Fatalf("unexpected right %v", right)
	}
}
