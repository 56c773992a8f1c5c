package macro

import (
	"zcc/pkg/ast"
	"zcc/pkg/zerr"
)

// expandBlock walks b's statements in place, replacing every
// LoopMacroStmt with its expansion and recursing into every nested
// statement that can itself contain one.
func (e *Expander) expandBlock(b *ast.BlockStmt) error {
	var out []ast.Stmt
	for _, s := range b.Stmts {
		expanded, err := e.expandStmt(s)
		if err != nil {
			return err
		}
		out = append(out, expanded...)
	}
	b.Stmts = out
	return nil
}

func (e *Expander) expandStmt(s ast.Stmt) ([]ast.Stmt, error) {
	switch n := s.(type) {
	case *ast.LoopMacroStmt:
		return e.expandLoopMacro(n)
	case *ast.BlockStmt:
		if err := e.expandBlock(n); err != nil {
			return nil, err
		}
	case *ast.IfStmt:
		if err := e.expandNestedStmt(&n.Then); err != nil {
			return nil, err
		}
		if n.Else != nil {
			if err := e.expandNestedStmt(&n.Else); err != nil {
				return nil, err
			}
		}
	case *ast.WhileStmt:
		if err := e.expandNestedStmt(&n.Body); err != nil {
			return nil, err
		}
	case *ast.DoWhileStmt:
		if err := e.expandNestedStmt(&n.Body); err != nil {
			return nil, err
		}
	case *ast.ForStmt:
		if err := e.expandNestedStmt(&n.Body); err != nil {
			return nil, err
		}
	case *ast.SwitchStmt:
		if err := e.expandNestedStmt(&n.Body); err != nil {
			return nil, err
		}
	case *ast.LabelStmt:
		if err := e.expandNestedStmt(&n.Stmt); err != nil {
			return nil, err
		}
	}
	return []ast.Stmt{s}, nil
}

// expandNestedStmt replaces *slot if it's a single statement that
// expands to a single statement (control-flow bodies take exactly one
// Stmt, never a list); a loop-macro body that expands to more than
// one statement is wrapped in a synthetic braceless block.
func (e *Expander) expandNestedStmt(slot *ast.Stmt) error {
	expanded, err := e.expandStmt(*slot)
	if err != nil {
		return err
	}
	switch len(expanded) {
	case 1:
		*slot = expanded[0]
	default:
		*slot = &ast.BlockStmt{Stmts: expanded}
	}
	return nil
}

// expandLoopMacro implements two compile-time loop macros: `repeat(n)
// body` emits n clones of body, and `unroll(i, n) body` emits n clones
// with every Ident named i replaced by the iteration's integer
// literal. Any other name is reported as an unexpanded macro rather
// than silently dropped.
func (e *Expander) expandLoopMacro(n *ast.LoopMacroStmt) ([]ast.Stmt, error) {
	name := identName(n.Call.Fn)
	switch name {
	case "repeat":
		if len(n.Call.Args) != 1 {
			return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "repeat: expected 1 argument, got %d", len(n.Call.Args))
		}
		count, err := e.evalIntArg(n.Call.Args[0])
		if err != nil {
			return nil, err
		}
		var out []ast.Stmt
		for i := int64(0); i < count; i++ {
			body, err := e.expandClonedBody(n.Body)
			if err != nil {
				return nil, err
			}
			out = append(out, body)
		}
		return out, nil

	case "unroll":
		if len(n.Call.Args) != 2 {
			return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "unroll: expected 2 arguments (induction identifier, count), got %d", len(n.Call.Args))
		}
		ind, ok := n.Call.Args[0].(*ast.Ident)
		if !ok {
			return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "unroll: first argument must be an identifier")
		}
		count, err := e.evalIntArg(n.Call.Args[1])
		if err != nil {
			return nil, err
		}
		var out []ast.Stmt
		for i := int64(0); i < count; i++ {
			cloned := cloneStmt(n.Body)
			substituteIdent(cloned, ind.Name, i)
			expanded, err := e.expandStmt(cloned)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		}
		return out, nil

	default:
		return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "unexpanded loop macro %q", name)
	}
}

func (e *Expander) expandClonedBody(body ast.Stmt) (ast.Stmt, error) {
	cloned := cloneStmt(body)
	expanded, err := e.expandStmt(cloned)
	if err != nil {
		return nil, err
	}
	if len(expanded) == 1 {
		return expanded[0], nil
	}
	return &ast.BlockStmt{Stmts: expanded}, nil
}

func (e *Expander) evalIntArg(x ast.Expr) (int64, error) {
	switch n := x.(type) {
	case *ast.IntLit:
		return parseIntLit(n.Text), nil
	default:
		return 0, zerr.Semanticf(zerr.EINVAL, x.Pos(), "expected an integer literal")
	}
}

func identName(x ast.Expr) string {
	if id, ok := x.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
