package z80

import (
	"testing"

	"zcc/pkg/ir"
)

// addProc builds the IR procedure of scenario B: `return a + b` with
// a, b 16-bit, lowered to `%r = add a, b; retv %r`.
func addProc() *ir.Proc {
	return &ir.Proc{
		Name: "add16",
		Args: []ir.Arg{
			{Name: "a", Type: ir.Type{Kind: ir.TypeInt, Width: 16}},
			{Name: "b", Type: ir.Type{Kind: ir.TypeInt, Width: 16}},
		},
		Body: []ir.Labeled{
			{Instr: ir.Instr{Op: ir.OpAdd, Width: 16, Dest: ir.Var("%1"), Src1: ir.Var("a"), Src2: ir.Var("b")}},
			{Instr: ir.Instr{Op: ir.OpRetv, Width: 16, Src1: ir.Var("%1")}},
		},
	}
}

// TestSelectDenseVRRange covers quantified invariant 2: the selected
// procedure uses a dense, contiguous VR range of exactly
// vm.Count() byte-slots (args a, b plus pseudo-variable %1).
func TestSelectDenseVRRange(t *testing.T) {
	_, vm := Select(addProc())
	if vm.Count() != 6 {
		t.Fatalf("expected 6 VR byte-slots (a, b, %%1 at 2 bytes each), got %d", vm.Count())
	}
}

// TestAllocateEliminatesVirtualOperands covers quantified invariant 3:
// after register allocation, no operand anywhere in the emitted
// instruction stream is of virtual kind (OpndVR/OpndVRR).
func TestAllocateEliminatesVirtualOperands(t *testing.T) {
	vblock, vm := Select(addProc())
	pblock := Allocate(vblock, vm, 0)
	for _, e := range pblock.Entries {
		if e.Instr == nil {
			continue
		}
		for _, op := range e.Instr.Operands {
			if op.Kind == OpndVR || op.Kind == OpndVRR {
				t.Fatalf("instruction %q still has a virtual operand: %+v", e.Instr.Mnemonic, op)
			}
		}
	}
}

// TestFirstRetAfterEpilogue covers quantified invariant 5: the first
// `ret` emitted in a procedure appears after a complete epilogue
// (`ld SP,IX; pop IX`).
func TestFirstRetAfterEpilogue(t *testing.T) {
	vblock, vm := Select(addProc())
	pblock := Allocate(vblock, vm, 0)

	retIdx := -1
	for i, e := range pblock.Entries {
		if e.Instr != nil && e.Instr.Mnemonic == "RET" {
			retIdx = i
			break
		}
	}
	if retIdx < 2 {
		t.Fatalf("expected a RET preceded by at least 2 epilogue instructions, found RET at index %d", retIdx)
	}
	popIX := pblock.Entries[retIdx-1]
	ldSPIX := pblock.Entries[retIdx-2]
	if popIX.Instr == nil || popIX.Instr.Mnemonic != "POP" || popIX.Instr.Operands[0].Pair != PairIX {
		t.Fatalf("expected POP IX immediately before RET, got %+v", popIX.Instr)
	}
	if ldSPIX.Instr == nil || ldSPIX.Instr.Mnemonic != "LD_SP_IX" {
		t.Fatalf("expected LD_SP_IX immediately before POP IX, got %+v", ldSPIX.Instr)
	}
}
