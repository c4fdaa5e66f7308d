package ast

// Describe renders n as a tree of maps keyed by "operation", the shape
// printed by the -dump-ast flag. Nil nodes render as nil.
func Describe(n Node) map[string]any {
	switch n := n.(type) {
	case nil:
		return nil
	case *Assign:
		return map[string]any{"operation": "=", "left": n.Name, "right": Describe(n.Val)}
	case *IndexAssign:
		return map[string]any{
			"operation": "[]=",
			"left":      n.Name,
			"index":     Describe(n.Idx),
			"right":     Describe(n.Val),
		}
	case *If:
		out := map[string]any{"operation": "se"}
		var branches []any
		for _, b := range n.Branches {
			branches = append(branches, map[string]any{
				"condition": Describe(b.Cond),
				"body":      describeBlock(b.Body),
			})
		}
		out["branches"] = branches
		if n.Else != nil {
			out["else"] = describeBlock(n.Else)
		}
		return out
	case *For:
		return map[string]any{
			"operation": "fun",
			"init":      Describe(n.Init),
			"condition": Describe(n.Cond),
			"increment": Describe(n.Post),
			"body":      describeBlock(n.Body),
		}
	case *While:
		return map[string]any{
			"operation": "nigbati",
			"condition": Describe(n.Cond),
			"body":      describeBlock(n.Body),
		}
	case *Switch:
		var cases []any
		for _, c := range n.Cases {
			cases = append(cases, map[string]any{
				"match": Describe(c.Match),
				"body":  describeStmts(c.Stmts),
			})
		}
		out := map[string]any{
			"operation": "yi",
			"subject":   Describe(n.Subject),
			"cases":     cases,
		}
		if n.Default != nil {
			out["default"] = describeStmts(n.Default)
		}
		return out
	case *IseDef:
		params := make([]any, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, p)
		}
		return map[string]any{
			"operation": "ise",
			"name":      n.Name,
			"params":    params,
			"body":      describeBlock(n.Body),
		}
	case *CallStmt:
		return Describe(n.Call)
	case *Print:
		return map[string]any{"operation": "sope", "body": Describe(n.Val)}
	case *Break:
		return map[string]any{"operation": "kuro"}
	case *Return:
		return map[string]any{"operation": "pada", "body": Describe(n.Val)}
	case *Ident:
		return map[string]any{"operation": "variable", "name": n.Name}
	case *Literal:
		out := map[string]any{"operation": "literal"}
		switch n.Kind {
		case LitNum:
			out["value"] = n.N
		case LitStr:
			out["value"] = n.S
		case LitBool:
			out["value"] = n.B
		}
		return out
	case *Array:
		return map[string]any{"operation": "array", "body": describeExprs(n.Elems)}
	case *Binary:
		return map[string]any{
			"operation": n.Op,
			"left":      Describe(n.Left),
			"right":     Describe(n.Right),
		}
	case *Unary:
		return map[string]any{"operation": "unary" + n.Op, "body": Describe(n.X)}
	case *Index:
		return map[string]any{
			"operation": "index",
			"left":      Describe(n.X),
			"index":     Describe(n.Idx),
		}
	case *Call:
		return map[string]any{
			"operation":   "callise",
			"name":        n.Name,
			"paramValues": describeExprs(n.Args),
		}
	default:
		return map[string]any{"operation": "unknown", "pos": n.Pos().String()}
	}
}

// DescribeProgram renders every top-level statement.
func DescribeProgram(p *Program) map[string]any {
	return map[string]any{
		"path":    p.Path,
		"astList": describeStmts(p.Stmts),
	}
}

func describeBlock(b *Block) []any {
	if b == nil {
		return nil
	}
	return describeStmts(b.Stmts)
}

func describeStmts(stmts []Stmt) []any {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, Describe(s))
	}
	return out
}

func describeExprs(exprs []Expr) []any {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, Describe(e))
	}
	return out
}
