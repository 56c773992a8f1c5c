package emulator

import "testing"

// TestIndexedLoadRoundTrip confirms LD (IX+d),n followed by LD A,(IX+d)
// round-trips through the indexed addressing path the stack-frame
// allocator depends on for every local-variable access.
func TestIndexedLoadRoundTrip(t *testing.T) {
	z := New()
	z.IX = 0x9000
	code := []byte{
		0xDD, 0x21, 0x00, 0x90, // LD IX, 0x9000 (redundant, confirms LD IX,nn too)
		0xDD, 0x36, 0x05, 0x2A, // LD (IX+5), 0x2A
		0xDD, 0x7E, 0x05, // LD A, (IX+5)
		0xC9, // RET
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.A != 0x2A {
		t.Fatalf("expected A=0x2A after indexed load, got 0x%02X", z.A)
	}
	if z.ReadMemory(0x9005) != 0x2A {
		t.Fatalf("expected memory at IX+5 to hold 0x2A, got 0x%02X", z.ReadMemory(0x9005))
	}
}

// TestIndexedLoadNegativeDisplacement confirms a negative displacement
// addresses bytes below IX, as used for locals below the frame base.
func TestIndexedLoadNegativeDisplacement(t *testing.T) {
	z := New()
	z.IX = 0x9000
	z.WriteMemory(0x8FFE, 0x37)
	code := []byte{
		0xDD, 0x46, 0xFE, // LD B, (IX-2)
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.B != 0x37 {
		t.Fatalf("expected B=0x37 from (IX-2), got 0x%02X", z.B)
	}
}

// TestIndexedIncDec confirms INC/DEC (IX+d) read-modify-write through
// memory rather than a register, and that INC (IX+d) sets the zero
// flag on wraparound the way the allocator's carry-propagation code
// for 16-bit increments relies on.
func TestIndexedIncDec(t *testing.T) {
	z := New()
	z.IX = 0xA000
	z.WriteMemory(0xA000, 0xFF)
	z.WriteMemory(0xA001, 0x01)
	code := []byte{
		0xDD, 0x35, 0x01, // DEC (IX+1)
		0xDD, 0x34, 0x00, // INC (IX+0)
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if got := z.ReadMemory(0xA001); got != 0x00 {
		t.Fatalf("expected (IX+1) to decrement to 0x00, got 0x%02X", got)
	}
	if got := z.ReadMemory(0xA000); got != 0x00 {
		t.Fatalf("expected (IX+0) to wrap to 0x00, got 0x%02X", got)
	}
	if !z.getFlag(FLAG_Z) {
		t.Fatal("expected zero flag set after INC (IX+0) wraps to 0")
	}
}

// TestIndexedArithmetic confirms an ALU op against (IX+d) combines the
// accumulator with the addressed byte rather than the displacement
// itself.
func TestIndexedArithmetic(t *testing.T) {
	z := New()
	z.IX = 0xB000
	z.WriteMemory(0xB003, 10)
	z.A = 5
	code := []byte{
		0xDD, 0x86, 0x03, // ADD A, (IX+3)
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.A != 15 {
		t.Fatalf("expected A=15 after ADD A,(IX+3), got %d", z.A)
	}
}

// TestPushPopIX confirms PUSH IX / POP IX round-trip through the stack,
// the operation the frame prologue and epilogue rely on most directly.
func TestPushPopIX(t *testing.T) {
	z := New()
	z.SP = 0xFFF0
	z.IX = 0x1234
	code := []byte{
		0xDD, 0xE5, // PUSH IX
		0xDD, 0x21, 0x00, 0x00, // LD IX, 0
		0xDD, 0xE1, // POP IX
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.IX != 0x1234 {
		t.Fatalf("expected IX restored to 0x1234 after push/pop, got 0x%04X", z.IX)
	}
}

// TestConditionalJumpTakenOnZero confirms JP Z,nn and JR Z,n branch
// correctly off the zero flag, the mechanism comparison operators and
// if/while lowering both depend on.
func TestConditionalJumpTakenOnZero(t *testing.T) {
	z := New()
	code := []byte{
		0x3E, 0x00, // LD A, 0
		0xFE, 0x00, // CP 0
		0xCA, 0x09, 0x80, // JP Z, 0x8009
		0x3E, 0xFF, // LD A, 0xFF (skipped)
		0x06, 0x01, // LD B, 1     (landing site at 0x8009)
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.A == 0xFF {
		t.Fatal("expected the conditional jump to skip the LD A,0xFF branch")
	}
	if z.B != 1 {
		t.Fatalf("expected B=1 at the jump target, got %d", z.B)
	}
}

// TestFullRegisterMatrixLD spot-checks a few off-diagonal entries of
// the LD r,r' matrix beyond the handful the original interpreter
// supported.
func TestFullRegisterMatrixLD(t *testing.T) {
	z := New()
	z.D = 0x42
	z.H = 0x99
	code := []byte{
		0x53, // LD D, E  (E is 0, so D becomes 0)
		0x6A, // LD L, D  (L <- D, now 0)
		0xC9,
	}
	z.LoadAt(0x8000, code)
	z.Execute(0x8000)

	if z.D != 0 {
		t.Fatalf("expected D=0 after LD D,E, got %d", z.D)
	}
	if z.L != 0 {
		t.Fatalf("expected L=0 after LD L,D, got %d", z.L)
	}
	if z.H != 0x99 {
		t.Fatalf("expected H untouched by LD L,D, got 0x%02X", z.H)
	}
}
