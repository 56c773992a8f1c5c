package macro

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"zcc/pkg/ast"
)

// TestExpandMacroDeclarationSplicesGeneratedSource installs a stub Lua
// generator under the macro's name and confirms its returned source
// text is parsed and spliced in as the macro's expansion.
func TestExpandMacroDeclarationSplicesGeneratedSource(t *testing.T) {
	e := New()
	defer e.Close()

	e.L.SetGlobal("MAKE_CONST", e.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(lua.LString("int " + name + "(void) { return 42; }"))
		return 1
	}))

	n := &ast.MacroDeclaration{Name: "MAKE_CONST", Args: []ast.Expr{&ast.Ident{Name: "answer"}}}
	decls, err := e.expandMacroDeclaration(n)
	if err != nil {
		t.Fatalf("expandMacroDeclaration: %v", err)
	}
	if len(decls) != 1 {
		t.Fatalf("expected 1 generated declaration, got %d", len(decls))
	}
	decl, ok := decls[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected *ast.Declaration, got %T", decls[0])
	}
	if len(decl.Declarators) != 1 || ast.DeclaratorName(decl.Declarators[0].Declarator) != "answer" {
		t.Fatalf("expected a function named answer, got %+v", decl.Declarators)
	}
}

// TestExpandMacroDeclarationUnregisteredErrors confirms a macro name
// with no matching Lua global is reported rather than silently
// skipped.
func TestExpandMacroDeclarationUnregisteredErrors(t *testing.T) {
	e := New()
	defer e.Close()

	n := &ast.MacroDeclaration{Name: "NO_SUCH_MACRO"}
	if _, err := e.expandMacroDeclaration(n); err == nil {
		t.Fatal("expected an error for an unregistered macro generator")
	}
}
