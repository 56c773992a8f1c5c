package macro

import "zcc/pkg/ast"

// cloneStmt deep-clones a statement subtree so that repeat/unroll can
// emit independent copies without violating the exclusive-ownership
// invariant pkg/ast documents (no two parents may share a child).
// Type-specifier and declarator subtrees reachable from a clone (via
// casts, sizeof(type), compound literals) are shared rather than
// copied: they carry no per-iteration state and are never mutated
// after parsing, so aliasing them is safe. A cloned DeclStmt copies
// only the statement node and shares its Declaration with the original.
func cloneStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *ast.BlockStmt:
		c := *n
		c.Stmts = make([]ast.Stmt, len(n.Stmts))
		for i, sub := range n.Stmts {
			c.Stmts[i] = cloneStmt(sub)
		}
		return &c
	case *ast.ExprStmt:
		c := *n
		c.X = cloneExpr(n.X)
		return &c
	case *ast.DeclStmt:
		c := *n
		return &c
	case *ast.NullStmt:
		c := *n
		return &c
	case *ast.GotoStmt:
		c := *n
		return &c
	case *ast.ReturnStmt:
		c := *n
		c.Value = cloneExpr(n.Value)
		return &c
	case *ast.IfStmt:
		c := *n
		c.Cond = cloneExpr(n.Cond)
		c.Then = cloneStmt(n.Then)
		c.Else = cloneStmt(n.Else)
		return &c
	case *ast.WhileStmt:
		c := *n
		c.Cond = cloneExpr(n.Cond)
		c.Body = cloneStmt(n.Body)
		return &c
	case *ast.DoWhileStmt:
		c := *n
		c.Body = cloneStmt(n.Body)
		c.Cond = cloneExpr(n.Cond)
		return &c
	case *ast.ForStmt:
		c := *n
		c.Init = cloneStmt(n.Init)
		c.Cond = cloneExpr(n.Cond)
		c.Post = cloneExpr(n.Post)
		c.Body = cloneStmt(n.Body)
		return &c
	case *ast.SwitchStmt:
		c := *n
		c.Tag = cloneExpr(n.Tag)
		c.Body = cloneStmt(n.Body)
		return &c
	case *ast.CaseStmt:
		c := *n
		c.Value = cloneExpr(n.Value)
		return &c
	case *ast.LabelStmt:
		c := *n
		c.Stmt = cloneStmt(n.Stmt)
		return &c
	case *ast.LoopMacroStmt:
		c := *n
		c.Call = cloneExpr(n.Call).(*ast.CallExpr)
		c.Body = cloneStmt(n.Body)
		return &c
	case *ast.BreakStmt:
		c := *n
		return &c
	case *ast.ContinueStmt:
		c := *n
		return &c
	case *ast.AsmStmt:
		c := *n
		c.Outputs = append([]ast.AsmOperand(nil), n.Outputs...)
		c.Inputs = append([]ast.AsmOperand(nil), n.Inputs...)
		for i := range c.Outputs {
			c.Outputs[i].Expr = cloneExpr(n.Outputs[i].Expr)
		}
		for i := range c.Inputs {
			c.Inputs[i].Expr = cloneExpr(n.Inputs[i].Expr)
		}
		return &c
	default:
		return s
	}
}

func cloneExpr(x ast.Expr) ast.Expr {
	if x == nil {
		return nil
	}
	switch n := x.(type) {
	case *ast.IntLit:
		c := *n
		return &c
	case *ast.CharLit:
		c := *n
		return &c
	case *ast.StringLit:
		c := *n
		return &c
	case *ast.ConcatLit:
		c := *n
		c.Parts = make([]*ast.StringLit, len(n.Parts))
		for i, p := range n.Parts {
			pc := *p
			c.Parts[i] = &pc
		}
		return &c
	case *ast.Ident:
		c := *n
		return &c
	case *ast.ParenExpr:
		c := *n
		c.Inner = cloneExpr(n.Inner)
		return &c
	case *ast.CastExpr:
		c := *n
		c.Expr = cloneExpr(n.Expr)
		return &c
	case *ast.CompoundLit:
		c := *n
		c.Init = cloneInitList(n.Init)
		return &c
	case *ast.MemberExpr:
		c := *n
		c.Object = cloneExpr(n.Object)
		return &c
	case *ast.IndexExpr:
		c := *n
		c.Object = cloneExpr(n.Object)
		c.Index = cloneExpr(n.Index)
		return &c
	case *ast.CallExpr:
		c := *n
		c.Fn = cloneExpr(n.Fn)
		c.Args = make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = cloneExpr(a)
		}
		return &c
	case *ast.UnaryExpr:
		c := *n
		c.Operand = cloneExpr(n.Operand)
		return &c
	case *ast.PostfixExpr:
		c := *n
		c.Operand = cloneExpr(n.Operand)
		return &c
	case *ast.SizeofExpr:
		c := *n
		c.Operand = cloneExpr(n.Operand)
		return &c
	case *ast.SizeofType:
		c := *n
		return &c
	case *ast.BinaryExpr:
		c := *n
		c.Left = cloneExpr(n.Left)
		c.Right = cloneExpr(n.Right)
		return &c
	case *ast.TernaryExpr:
		c := *n
		c.Cond = cloneExpr(n.Cond)
		c.Then = cloneExpr(n.Then)
		c.Else = cloneExpr(n.Else)
		return &c
	case *ast.AssignExpr:
		c := *n
		c.Left = cloneExpr(n.Left)
		c.Right = cloneExpr(n.Right)
		return &c
	case *ast.CommaExpr:
		c := *n
		c.Exprs = make([]ast.Expr, len(n.Exprs))
		for i, e := range n.Exprs {
			c.Exprs[i] = cloneExpr(e)
		}
		return &c
	case *ast.NestedInitList:
		c := *n
		c.List = cloneInitList(n.List)
		return &c
	default:
		return x
	}
}

func cloneInitList(l *ast.InitList) *ast.InitList {
	if l == nil {
		return nil
	}
	c := *l
	c.Items = make([]ast.InitItem, len(l.Items))
	for i, it := range l.Items {
		c.Items[i] = ast.InitItem{Designator: it.Designator, Index: cloneExpr(it.Index), Value: cloneExpr(it.Value)}
	}
	return &c
}

// substituteIdent rewrites every Ident named `name` reachable from s
// into an IntLit carrying value, used by the unroll loop-macro to bind
// its induction variable into each cloned iteration. s must already
// be an exclusively-owned clone: substitution mutates it in place.
// Identifiers inside a DeclStmt's declaration (including its
// initializers), asm operands and initializer lists are not visited.
func substituteIdent(s ast.Stmt, name string, value int64) {
	subst := func(x ast.Expr) ast.Expr {
		if id, ok := x.(*ast.Ident); ok && id.Name == name {
			lit := &ast.IntLit{Text: formatInt(value)}
			lit.Span(id.Pos(), id.End())
			return lit
		}
		return x
	}
	var substStmt func(ast.Stmt)
	var substExpr func(ast.Expr)
	substExpr = func(x ast.Expr) {
		switch n := x.(type) {
		case *ast.ParenExpr:
			n.Inner = subst(n.Inner)
			substExpr(n.Inner)
		case *ast.CastExpr:
			n.Expr = subst(n.Expr)
			substExpr(n.Expr)
		case *ast.MemberExpr:
			n.Object = subst(n.Object)
			substExpr(n.Object)
		case *ast.IndexExpr:
			n.Object = subst(n.Object)
			n.Index = subst(n.Index)
			substExpr(n.Object)
			substExpr(n.Index)
		case *ast.CallExpr:
			n.Fn = subst(n.Fn)
			substExpr(n.Fn)
			for i, a := range n.Args {
				n.Args[i] = subst(a)
				substExpr(n.Args[i])
			}
		case *ast.UnaryExpr:
			n.Operand = subst(n.Operand)
			substExpr(n.Operand)
		case *ast.PostfixExpr:
			n.Operand = subst(n.Operand)
			substExpr(n.Operand)
		case *ast.SizeofExpr:
			n.Operand = subst(n.Operand)
			substExpr(n.Operand)
		case *ast.BinaryExpr:
			n.Left, n.Right = subst(n.Left), subst(n.Right)
			substExpr(n.Left)
			substExpr(n.Right)
		case *ast.TernaryExpr:
			n.Cond, n.Then, n.Else = subst(n.Cond), subst(n.Then), subst(n.Else)
			substExpr(n.Cond)
			substExpr(n.Then)
			substExpr(n.Else)
		case *ast.AssignExpr:
			n.Left, n.Right = subst(n.Left), subst(n.Right)
			substExpr(n.Left)
			substExpr(n.Right)
		case *ast.CommaExpr:
			for i, e := range n.Exprs {
				n.Exprs[i] = subst(e)
				substExpr(n.Exprs[i])
			}
		}
	}
	substStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.BlockStmt:
			for _, sub := range n.Stmts {
				substStmt(sub)
			}
		case *ast.ExprStmt:
			n.X = subst(n.X)
			substExpr(n.X)
		case *ast.ReturnStmt:
			if n.Value != nil {
				n.Value = subst(n.Value)
				substExpr(n.Value)
			}
		case *ast.IfStmt:
			n.Cond = subst(n.Cond)
			substExpr(n.Cond)
			substStmt(n.Then)
			substStmt(n.Else)
		case *ast.WhileStmt:
			n.Cond = subst(n.Cond)
			substExpr(n.Cond)
			substStmt(n.Body)
		case *ast.DoWhileStmt:
			substStmt(n.Body)
			n.Cond = subst(n.Cond)
			substExpr(n.Cond)
		case *ast.ForStmt:
			substStmt(n.Init)
			if n.Cond != nil {
				n.Cond = subst(n.Cond)
				substExpr(n.Cond)
			}
			if n.Post != nil {
				n.Post = subst(n.Post)
				substExpr(n.Post)
			}
			substStmt(n.Body)
		case *ast.SwitchStmt:
			n.Tag = subst(n.Tag)
			substExpr(n.Tag)
			substStmt(n.Body)
		case *ast.CaseStmt:
			if n.Value != nil {
				n.Value = subst(n.Value)
				substExpr(n.Value)
			}
		case *ast.LabelStmt:
			substStmt(n.Stmt)
		}
	}
	substStmt(s)
}

func formatInt(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
