package z80

// Frame describes one procedure's stack-frame layout, addresses
// growing downward with IX as the frame pointer after the prologue:
//
//	local variable 0 ... local variable M   (lowest addresses)
//	VR pairCount-1, ..., VR 0                (2 bytes each)
//	saved previous IX                        (highest address below the return address)
type Frame struct {
	LocalsSize int // total bytes of procedure-local variables
	PairCount  int // number of 2-byte VR pair slots in use
}

// TotalSize is the frame size passed to the prologue's IX arithmetic.
func (f Frame) TotalSize() int { return f.LocalsSize + 2*f.PairCount }

// VROffset returns a VR pair's byte displacement from IX: pair k's low
// byte sits at -2*(k+1), its high byte one address higher.
func (f Frame) VROffset(pairIdx int, half Half) int {
	h := 0
	if half == HalfHigh {
		h = 1
	}
	return -2*(pairIdx+1) + h
}

// LocalOffset returns a local variable byte's displacement from IX,
// given its offset from the start of the locals region.
func (f Frame) LocalOffset(byteOffset int) int {
	return -2*f.PairCount - f.LocalsSize + byteOffset
}

// Prologue emits the frame-establishing sequence: push the caller's
// IX, compute the new stack top, then restore IX to point just past
// the end of the frame so every local and VR sits at a negative,
// typically signed-byte-sized displacement from IX.
func (f Frame) Prologue(b *Block) {
	size := f.TotalSize()
	b.emit("", "PUSH", RegPair(PairIX))
	b.emit("", "LDI16", RegPair(PairIX), Imm16(-size))
	b.emit("", "ADD_IX_SP")
	b.emit("", "LD_SP_IX")
	b.emit("", "LDI16", RegPair(PairIX), Imm16(size))
	b.emit("", "ADD_IX_SP")
}

// Epilogue emits the frame-release sequence used by an ordinary
// `ret`: restore SP from IX, pop the caller's IX, and return.
func (f Frame) Epilogue(b *Block) {
	b.emit("", "LD_SP_IX")
	b.emit("", "POP", RegPair(PairIX))
	b.emit("", "RET")
}
