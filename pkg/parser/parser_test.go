package parser

import (
	"testing"

	"zcc/pkg/ast"
)

// TestPrecedence covers scenario A of the testable-properties list:
// parsing `int f(void) { return 1 + 2 * 3; }` yields a module with one
// function f whose body is a single return of a `+` whose right
// operand is a nested `*`, confirming precedence climbing binds `*`
// tighter than `+`.
func TestPrecedence(t *testing.T) {
	src := `int f(void) { return 1 + 2 * 3; }`
	file, err := ParseFile("test.c", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 top-level declaration, got %d", len(file.Decls))
	}
	decl, ok := file.Decls[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected *ast.Declaration, got %T", file.Decls[0])
	}
	if len(decl.Declarators) != 1 {
		t.Fatalf("expected 1 declarator, got %d", len(decl.Declarators))
	}
	body := decl.Declarators[0].Body
	if body == nil {
		t.Fatal("expected a function body")
	}
	if len(body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(body.Stmts))
	}
	ret, ok := body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", body.Stmts[0])
	}
	add, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level *ast.BinaryExpr, got %T", ret.Value)
	}
	if add.Op != ast.BinAdd {
		t.Fatalf("expected top-level op to be +, got %v", add.Op)
	}
	left, ok := add.Left.(*ast.IntLit)
	if !ok || left.Text != "1" {
		t.Fatalf("expected left operand eint(1), got %#v", add.Left)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected right operand to be *ast.BinaryExpr, got %T", add.Right)
	}
	if mul.Op != ast.BinMul {
		t.Fatalf("expected nested op to be *, got %v", mul.Op)
	}
	l2, ok := mul.Left.(*ast.IntLit)
	if !ok || l2.Text != "2" {
		t.Fatalf("expected nested left operand eint(2), got %#v", mul.Left)
	}
	r2, ok := mul.Right.(*ast.IntLit)
	if !ok || r2.Text != "3" {
		t.Fatalf("expected nested right operand eint(3), got %#v", mul.Right)
	}
}

// TestRoundTripIsomorphic covers testable property 8: parsing the same
// token source twice (independent ParseFile calls, since nothing here
// destroys and reuses a token stream) yields ASTs of the same shape.
func TestRoundTripIsomorphic(t *testing.T) {
	src := `
int add(int a, int b) {
	int c = a + b;
	if (c > 0) {
		return c;
	} else {
		return -c;
	}
}
`
	f1, err := ParseFile("a.c", []byte(src))
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	f2, err := ParseFile("a.c", []byte(src))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !sameShape(f1, f2) {
		t.Fatal("two parses of identical source produced differently-shaped ASTs")
	}
}

func sameShape(a, b ast.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !sameShape(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// TestDanglingElseBindsToNearestIf is a basic sanity check on the
// recursive-descent if/else-if chain parser.
func TestDanglingElseBindsToNearestIf(t *testing.T) {
	src := `int f(void) { if (1) if (2) return 1; else return 2; }`
	file, err := ParseFile("t.c", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	decl := file.Decls[0].(*ast.Declaration)
	body := decl.Declarators[0].Body
	outer := body.Stmts[0].(*ast.IfStmt)
	// An unbraced body is wrapped in a single-statement, non-braced block.
	then := outer.Then
	if blk, ok := then.(*ast.BlockStmt); ok && !blk.Braced && len(blk.Stmts) == 1 {
		then = blk.Stmts[0]
	}
	inner, ok := then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected nested if as Then, got %T", then)
	}
	if inner.Else == nil {
		t.Fatal("expected dangling else to bind to the inner if")
	}
	if outer.Else != nil {
		t.Fatal("outer if must not receive the dangling else")
	}
}
