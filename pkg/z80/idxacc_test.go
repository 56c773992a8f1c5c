package z80

import "testing"

// TestIdxaccWithinSignedByteRange covers the "otherwise neither
// sequence appears" half of boundary invariant 10: offsets within
// [-128, 127] resolve directly, with no ADJ_IX/RESTORE_IX bracket.
func TestIdxaccWithinSignedByteRange(t *testing.T) {
	for _, off := range []int{-128, -1, 0, 1, 127} {
		ref := idxacc(off)
		if ref.Disp != off {
			t.Fatalf("offset %d: expected Disp %d, got %d", off, off, ref.Disp)
		}
		if len(ref.Setup) != 0 || len(ref.Teardown) != 0 {
			t.Fatalf("offset %d: expected no setup/teardown, got setup=%v teardown=%v", off, ref.Setup, ref.Teardown)
		}
	}
}

// TestIdxaccOutOfRange covers the other half of boundary invariant
// 10: an offset outside signed-byte reach emits the extended
// ADJ_IX/RESTORE_IX sequence, each flag-preserved by a surrounding
// PUSH AF/POP AF.
func TestIdxaccOutOfRange(t *testing.T) {
	for _, off := range []int{-129, 128, 1000, -1000} {
		ref := idxacc(off)
		if ref.Disp != 0 {
			t.Fatalf("offset %d: expected Disp 0 under the extended sequence, got %d", off, ref.Disp)
		}
		if len(ref.Setup) != 3 || len(ref.Teardown) != 3 {
			t.Fatalf("offset %d: expected a 3-instruction setup/teardown bracket, got setup=%d teardown=%d",
				off, len(ref.Setup), len(ref.Teardown))
		}
		if ref.Setup[0].Mnemonic != "PUSH" || ref.Setup[1].Mnemonic != "ADJ_IX" || ref.Setup[2].Mnemonic != "POP" {
			t.Fatalf("offset %d: unexpected setup sequence %+v", off, ref.Setup)
		}
		if ref.Teardown[0].Mnemonic != "PUSH" || ref.Teardown[1].Mnemonic != "RESTORE_IX" || ref.Teardown[2].Mnemonic != "POP" {
			t.Fatalf("offset %d: unexpected teardown sequence %+v", off, ref.Teardown)
		}
		if ref.Setup[1].Operands[0].Imm != off {
			t.Fatalf("offset %d: ADJ_IX should carry the original offset, got %d", off, ref.Setup[1].Operands[0].Imm)
		}
	}
}
