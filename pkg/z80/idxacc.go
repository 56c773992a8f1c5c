package z80

// idxRef is the result of resolving a frame-relative offset to an
// indexed addressing mode: either the offset fits a signed byte and
// Disp can be used directly against the procedure's own IX, or it
// doesn't and Setup/Teardown bracket the access with a temporary IX
// adjustment that preserves flags across itself.
type idxRef struct {
	Disp     int
	Setup    []*Instr
	Teardown []*Instr
}

const signedByteMin, signedByteMax = -128, 127

// idxacc resolves a desired (IX-relative) displacement. When it
// overflows a signed byte it emits an on-the-fly adjustment —
// `push AF; ld IX,offset@SP; add IX,SP; pop AF` — folded here into the
// single pseudo-instruction ADJ_IX for the symbolic printer to expand,
// so that every subsequent (IX+0) reaches the target; a matching
// RESTORE_IX teardown (also flag-preserving) undoes the adjustment.
func idxacc(offset int) idxRef {
	if offset >= signedByteMin && offset <= signedByteMax {
		return idxRef{Disp: offset}
	}
	return idxRef{
		Disp: 0,
		Setup: []*Instr{
			{Mnemonic: "PUSH", Operands: []Operand{RegPair(PairAF)}},
			{Mnemonic: "ADJ_IX", Operands: []Operand{Imm16(offset)}},
			{Mnemonic: "POP", Operands: []Operand{RegPair(PairAF)}},
		},
		Teardown: []*Instr{
			{Mnemonic: "PUSH", Operands: []Operand{RegPair(PairAF)}},
			{Mnemonic: "RESTORE_IX", Operands: nil},
			{Mnemonic: "POP", Operands: []Operand{RegPair(PairAF)}},
		},
	}
}

// emitAccess appends ref's setup, one user instruction built from
// build(ref.Disp), and ref's teardown.
func emitAccess(b *Block, ref idxRef, build func(disp int) *Instr) {
	for _, i := range ref.Setup {
		b.Entries = append(b.Entries, Entry{Instr: i})
	}
	b.Entries = append(b.Entries, Entry{Instr: build(ref.Disp)})
	for _, i := range ref.Teardown {
		b.Entries = append(b.Entries, Entry{Instr: i})
	}
}
