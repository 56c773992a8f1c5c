package harness

import "testing"

func TestParseSplitsCommandsAndArgs(t *testing.T) {
	stmts, err := parse(`ldbin "prog.bin", $8000; call main; verify HL, 42`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %+v", len(stmts), stmts)
	}
	if stmts[0].cmd != "ldbin" || len(stmts[0].args) != 2 {
		t.Fatalf("statement 0: unexpected parse %+v", stmts[0])
	}
	if stmts[0].args[0] != `"prog.bin"` || stmts[0].args[1] != "$8000" {
		t.Fatalf("statement 0: unexpected args %+v", stmts[0].args)
	}
	if stmts[1].cmd != "call" || len(stmts[1].args) != 1 || stmts[1].args[0] != "main" {
		t.Fatalf("statement 1: unexpected parse %+v", stmts[1])
	}
	if stmts[2].cmd != "verify" || len(stmts[2].args) != 2 {
		t.Fatalf("statement 2: unexpected parse %+v", stmts[2])
	}
}

// TestParseIgnoresSemicolonInsideParens confirms a `;` inside a sized
// pointer expression's parens doesn't end the statement early.
func TestParseIgnoresSemicolonInsideParens(t *testing.T) {
	stmts, err := parse(`verify word ptr (HL + 1; 2), 99`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected the semicolon inside parens to not split the statement, got %d statements: %+v", len(stmts), stmts)
	}
}

// TestParseIgnoresCommaInsideParens confirms a `,` inside a
// parenthesized pointer expression doesn't split an argument early.
func TestParseIgnoresCommaInsideParens(t *testing.T) {
	stmts, err := parse(`verify word ptr (BC + 1, 2), 99`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 1 || len(stmts[0].args) != 2 {
		t.Fatalf("expected 2 top-level args with the inner comma preserved, got %+v", stmts)
	}
	if stmts[0].args[0] != "word ptr (BC + 1, 2)" {
		t.Fatalf("unexpected first arg %q", stmts[0].args[0])
	}
}

func TestParseRejectsUnknownCommand(t *testing.T) {
	if _, err := parse("frobnicate HL, 1"); err == nil {
		t.Fatal("expected an error for an unrecognized command")
	}
}

func TestParseIgnoresBlankStatements(t *testing.T) {
	stmts, err := parse("ld HL, 1;;  ; print HL")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected blank statements between semicolons to be skipped, got %d: %+v", len(stmts), stmts)
	}
}
