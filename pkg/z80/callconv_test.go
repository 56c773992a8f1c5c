package z80

import (
	"testing"

	"zcc/pkg/ir"
)

func w16(n int) []ir.Type {
	out := make([]ir.Type, n)
	for i := range out {
		out[i] = ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	return out
}

// TestThreeArgsAllInRegisters covers scenario C: three 16-bit
// arguments land in HL, DE, BC in declaration order.
func TestThreeArgsAllInRegisters(t *testing.T) {
	locs := AssignArgLocations(w16(3), []string{"x", "y", "z"}, false)
	want := []Pair{PairHL, PairDE, PairBC}
	for i, loc := range locs {
		if len(loc.RegSlots) != 1 || loc.RegSlots[0].Pair != want[i] {
			t.Fatalf("arg %d (%s): want %s, got %+v", i, loc.Name, want[i], loc.RegSlots)
		}
		if loc.StackBytes != 0 {
			t.Fatalf("arg %d (%s): expected no stack bytes, got %d", i, loc.Name, loc.StackBytes)
		}
	}
}

// TestFourthArgSpillsToStack covers scenario D: a fourth 16-bit
// argument overflows to the stack once HL/DE/BC are exhausted.
func TestFourthArgSpillsToStack(t *testing.T) {
	locs := AssignArgLocations(w16(4), []string{"x", "y", "z", "w"}, false)
	for i, want := range []Pair{PairHL, PairDE, PairBC} {
		if len(locs[i].RegSlots) != 1 || locs[i].RegSlots[0].Pair != want {
			t.Fatalf("arg %d: want %s, got %+v", i, want, locs[i].RegSlots)
		}
	}
	w := locs[3]
	if len(w.RegSlots) != 0 {
		t.Fatalf("4th arg: expected no register slots, got %+v", w.RegSlots)
	}
	if w.StackBytes != 2 {
		t.Fatalf("4th arg: expected 2 stack bytes, got %d", w.StackBytes)
	}
	if w.StackOffset != 0 {
		t.Fatalf("4th arg: expected stack offset 0, got %d", w.StackOffset)
	}
}

// TestVariadicArgNeverSplits covers boundary invariant 9: a variadic
// call never places part of an argument in registers and part on the
// stack.
func TestVariadicArgNeverSplits(t *testing.T) {
	// Two 16-bit fixed args consume HL, DE; a 32-bit variadic arg
	// would need two more 16-bit slots but only BC remains -- it must
	// be placed entirely on the stack rather than split BC+stack.
	args := append(w16(2), ir.Type{Kind: ir.TypeInt, Width: 32})
	locs := AssignArgLocations(args, []string{"a", "b", "v"}, true)
	v := locs[2]
	if len(v.RegSlots) != 0 {
		t.Fatalf("variadic arg that doesn't fully fit must not use any register slots, got %+v", v.RegSlots)
	}
	if v.StackBytes != 4 {
		t.Fatalf("expected the whole 4-byte variadic argument on the stack, got %d bytes", v.StackBytes)
	}
}
