package macro

import (
	"testing"

	"zcc/pkg/ast"
)

// callStmt builds an expression-statement calling the function named
// fn with args, used as a distinguishable loop body.
func callStmt(fn string, args ...ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: &ast.CallExpr{Fn: &ast.Ident{Name: fn}, Args: args}}
}

func loopMacro(name string, args []ast.Expr, body ast.Stmt) *ast.LoopMacroStmt {
	return &ast.LoopMacroStmt{
		Call: &ast.CallExpr{Fn: &ast.Ident{Name: name}, Args: args},
		Body: body,
	}
}

// TestExpandRepeat confirms `repeat(n) body` clones body exactly n
// times and that each clone is an independent AST node (no shared
// child pointers between iterations).
func TestExpandRepeat(t *testing.T) {
	e := New()
	defer e.Close()

	n := loopMacro("repeat", []ast.Expr{&ast.IntLit{Text: "3"}}, callStmt("tick"))
	out, err := e.expandLoopMacro(n)
	if err != nil {
		t.Fatalf("expandLoopMacro: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 expanded statements, got %d", len(out))
	}
	for i, s := range out {
		es, ok := s.(*ast.ExprStmt)
		if !ok {
			t.Fatalf("statement %d: expected *ast.ExprStmt, got %T", i, s)
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok {
			t.Fatalf("statement %d: expected *ast.CallExpr, got %T", i, es.X)
		}
		if call.Fn.(*ast.Ident).Name != "tick" {
			t.Fatalf("statement %d: expected call to tick, got %v", i, call.Fn)
		}
	}
	if out[0] == out[1] {
		t.Fatal("repeat must clone the body, not share one node across iterations")
	}
	if out[0].(*ast.ExprStmt).X == out[1].(*ast.ExprStmt).X {
		t.Fatal("repeat must clone the body's expression, not share it across iterations")
	}
}

// TestExpandUnroll confirms `unroll(i, n) body` clones body n times,
// substituting the induction identifier with each iteration's integer
// value.
func TestExpandUnroll(t *testing.T) {
	e := New()
	defer e.Close()

	body := callStmt("poke", &ast.Ident{Name: "i"})
	n := loopMacro("unroll", []ast.Expr{&ast.Ident{Name: "i"}, &ast.IntLit{Text: "4"}}, body)
	out, err := e.expandLoopMacro(n)
	if err != nil {
		t.Fatalf("expandLoopMacro: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 expanded statements, got %d", len(out))
	}
	for i, s := range out {
		es := s.(*ast.ExprStmt)
		call := es.X.(*ast.CallExpr)
		arg, ok := call.Args[0].(*ast.IntLit)
		if !ok {
			t.Fatalf("iteration %d: expected induction var replaced by *ast.IntLit, got %T", i, call.Args[0])
		}
		if arg.Text != formatInt(int64(i)) {
			t.Fatalf("iteration %d: expected induction literal %q, got %q", i, formatInt(int64(i)), arg.Text)
		}
	}
	// The macro's own body must be untouched by substitution.
	origArg := body.X.(*ast.CallExpr).Args[0]
	if _, ok := origArg.(*ast.Ident); !ok {
		t.Fatal("unroll must not mutate the original macro body in place")
	}
}

// TestExpandUnknownLoopMacroErrors confirms a loop-macro invocation
// naming anything other than repeat/unroll is reported rather than
// silently dropped.
func TestExpandUnknownLoopMacroErrors(t *testing.T) {
	e := New()
	defer e.Close()

	n := loopMacro("frobnicate", []ast.Expr{&ast.IntLit{Text: "1"}}, callStmt("noop"))
	if _, err := e.expandLoopMacro(n); err == nil {
		t.Fatal("expected an error for an unrecognized loop macro")
	}
}
