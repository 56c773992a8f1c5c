package z80

import (
	"strconv"

	"zcc/pkg/ir"
)

// Selector translates one IR procedure into a virtual-register Z80
// instruction stream. It knows the calling convention (callconv.go)
// and the identifier-mangling scheme (mangle.go) but nothing about
// physical register allocation: every operand it emits that refers to
// an IR variable stays a virtual VR/VRR until the allocator
// (regalloc.go) rewrites it.
//
// The fill/spill split is made explicit here rather than left
// implicit: Select emits FILL8/FILL16 before an
// operation that needs a value in a physical working register, and
// SPILL8/SPILL16 after one that leaves a result there, except for the
// handful of 8-bit ALU opcodes (ADD_A, ADC_A, SUB, SBC_A, AND, OR,
// XOR, CP) that the allocator is able to address directly as
// `op A,(IX+d)` without a separate fill.
type Selector struct {
	proc   *ir.Proc
	vm     *VarMap
	block  *Block
	labelN int
	spAdj  int // bytes pushed since the last balancing pop/inc-sp, for call epilogues
}

// Select lowers one IR procedure to a virtual Z80 Block, along with
// the variable map it used -- including any scratch VRs tempVR
// allocated beyond BuildVarMap's initial pass -- so the caller can
// size the stack frame correctly before calling Allocate.
func Select(p *ir.Proc) (*Block, *VarMap) {
	s := &Selector{proc: p, vm: BuildVarMap(p), block: &Block{}}
	s.selectEntryArgs()
	for _, entry := range p.Body {
		if entry.Label != "" {
			s.block.Label(MangleLabel(fieldOr(p.Name, "@p"), entry.Label))
		}
		s.selectOne(&entry.Instr)
	}
	return s.block, s.vm
}

// selectEntryArgs resolves the calling convention at procedure entry:
// the same register/stack assignment rule applies symmetrically to
// call sites and to the callee, so this assigns the same register and
// stack locations a caller would compute for this signature, then
// moves each incoming argument out of those locations into the VR
// slot BuildVarMap gave
// it. Register-held bytes are spilled directly; stack-held bytes are
// read back through the frame pointer at a positive displacement past
// the saved IX and return address (LDARG8/LDARG16, lowered by the
// allocator through the same idxacc helper as every other frame
// access).
func (s *Selector) selectEntryArgs() {
	types := make([]ir.Type, len(s.proc.Args))
	names := make([]string, len(s.proc.Args))
	for i, a := range s.proc.Args {
		types[i] = a.Type
		names[i] = a.Name
	}
	locs := AssignArgLocations(types, names, s.proc.Variadic)
	for i, loc := range locs {
		slot, ok := s.vm.Lookup(s.proc.Args[i].Name)
		if !ok {
			continue
		}
		byteIdx := 0
		for _, rs := range loc.RegSlots {
			if rs.Pair == PairNone {
				s.emit("SPILL8", byteOperand(slot, byteIdx), Register(rs.Reg))
				byteIdx++
			} else {
				s.emit("SPILL16", vrrOperand(slot, byteIdx), RegPair(rs.Pair))
				byteIdx += 2
			}
		}
		for off := 0; off < loc.StackBytes; {
			if loc.StackBytes-off >= 2 {
				s.emit("LDARG16", vrrOperand(slot, byteIdx), Imm16(loc.StackOffset+off))
				byteIdx += 2
				off += 2
			} else {
				s.emit("LDARG8", byteOperand(slot, byteIdx), Imm16(loc.StackOffset+off))
				byteIdx++
				off++
			}
		}
	}
}

func fieldOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func (s *Selector) newLabel(pattern string) string {
	s.labelN++
	return "%" + pattern + strconv.Itoa(s.labelN)
}

func (s *Selector) mangledLabel(pattern string) string {
	return MangleLabel(s.proc.Name, s.newLabel(pattern))
}

// tempVR allocates a fresh scratch VR slot beyond every variable the
// variable map already knows about (shift counts, multiply
// accumulators and the like never correspond to a named IR variable).
func (s *Selector) tempVR(size int) VarSlot {
	slot := VarSlot{BaseVR: s.vm.next, Size: size}
	if size >= 2 && slot.BaseVR%2 != 0 {
		slot.BaseVR++
	}
	s.vm.next = slot.BaseVR + size
	return slot
}

func (s *Selector) slotOf(op ir.Operand) VarSlot {
	slot, ok := s.vm.Lookup(op.Name)
	if !ok {
		slot = s.tempVR(1)
	}
	return slot
}

func (s *Selector) emit(mnemonic string, ops ...Operand) {
	s.block.emit("", mnemonic, ops...)
}

func (s *Selector) selectOne(in *ir.Instr) {
	switch in.Op {
	case ir.OpNop:
		s.emit("NOP")
	case ir.OpAdd:
		s.selectAddSub(in, true)
	case ir.OpSub:
		s.selectAddSub(in, false)
	case ir.OpAnd:
		s.selectBitwise(in, "AND")
	case ir.OpOr:
		s.selectBitwise(in, "OR")
	case ir.OpXor:
		s.selectBitwise(in, "XOR")
	case ir.OpBNot:
		s.selectBNot(in)
	case ir.OpNeg:
		s.selectNeg(in)
	case ir.OpShl, ir.OpShra, ir.OpShrl:
		s.selectShift(in)
	case ir.OpMul:
		s.selectMul(in)
	case ir.OpEq, ir.OpNeq:
		s.selectEqNeq(in)
	case ir.OpLt, ir.OpLteq, ir.OpGt, ir.OpGteq:
		s.selectSignedCompare(in)
	case ir.OpLtu, ir.OpLteu, ir.OpGtu, ir.OpGteu:
		s.selectUnsignedCompare(in)
	case ir.OpImm:
		s.selectImm(in)
	case ir.OpJmp:
		s.emit("JP", Operand{Kind: OpndImm16, Sym: Symbol{Name: in.Label}})
	case ir.OpJz, ir.OpJnz:
		s.selectCondJump(in)
	case ir.OpCall:
		s.selectCall(in)
	case ir.OpRet:
		s.emit("RET")
	case ir.OpRetv:
		srcSlot := s.slotOf(in.Src1)
		s.emit("FILL16", RegPair(PairBC), vrrOperand(srcSlot, 0))
		s.emit("RET")
	case ir.OpRead:
		s.selectRead(in)
	case ir.OpWrite:
		s.selectWrite(in)
	case ir.OpVarptr:
		destSlot := s.slotOf(in.Dest)
		s.emit("LDSYM16", vrrOperand(destSlot, 0), SymRef(MangleGlobal(in.Src1.Name), 0))
	case ir.OpLvarptr:
		destSlot := s.slotOf(in.Dest)
		local := MangleLocal(s.proc.Name, in.Src1.Name)
		s.emit("LDSYM16", vrrOperand(destSlot, 0), SymRef(local+"@SP", 0))
	}
}

func (s *Selector) widthBytes(in *ir.Instr) int {
	n := in.Width / 8
	if n < 1 {
		n = 1
	}
	return n
}

// selectAddSub implements the "add"/"sub" byte-wise patterns: byte 0
// uses ADD_A/SUB, every following byte uses ADC_A/SBC_A.
func (s *Selector) selectAddSub(in *ir.Instr, add bool) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	op1Slot, op2Slot := s.operandSlot(in.Src1), s.operandSlot(in.Src2)
	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, op1Slot, b))
		mnem := "ADD_A"
		if !add {
			mnem = "SUB"
		}
		if b > 0 {
			if add {
				mnem = "ADC_A"
			} else {
				mnem = "SBC_A"
			}
		}
		s.emit(mnem, s.byteOrImm(in.Src2, op2Slot, b))
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
}

func (s *Selector) selectBitwise(in *ir.Instr, mnem string) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	op1Slot, op2Slot := s.operandSlot(in.Src1), s.operandSlot(in.Src2)
	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, op1Slot, b))
		s.emit(mnem, s.byteOrImm(in.Src2, op2Slot, b))
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
}

func (s *Selector) selectBNot(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	opSlot := s.operandSlot(in.Src1)
	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, opSlot, b))
		s.emit("CPL")
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
}

// selectNeg implements one's-complement-then-increment; the 16-bit
// case takes the INC_VRR fast path after the complement.
func (s *Selector) selectNeg(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	opSlot := s.operandSlot(in.Src1)
	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, opSlot, b))
		s.emit("CPL")
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
	if n == 2 {
		s.emit("INC_VRR", vrrOperand(destSlot, 0))
		return
	}
	for b := 0; b < n; b++ {
		mnem := "ADD_A"
		var imm Operand = Imm8(1)
		if b > 0 {
			mnem = "ADC_A"
			imm = Imm8(0)
		}
		s.emit("FILL8", Register(RegA), byteOperand(destSlot, b))
		s.emit(mnem, imm)
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
}

// selectShift implements the copy-then-loop pattern: copy src into
// dest, copy the count into a fresh VR, then decrement/shift until
// zero.
func (s *Selector) selectShift(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	srcSlot := s.operandSlot(in.Src1)
	cntSlot := s.tempVR(1)

	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, srcSlot, b))
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
	cntSrcSlot := s.operandSlot(in.Src2)
	s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src2, cntSrcSlot, 0))
	s.emit("SPILL8", byteOperand(cntSlot, 0), Register(RegA))

	rep := s.mangledLabel("shift_rep")
	end := s.mangledLabel("shift_end")
	s.block.Label(rep)
	s.emit("FILL8", Register(RegA), byteOperand(cntSlot, 0))
	s.emit("DEC", Register(RegA))
	s.emit("SPILL8", byteOperand(cntSlot, 0), Register(RegA))
	s.emit("JPC", Condition(CondM), Operand{Kind: OpndImm16, Sym: Symbol{Name: end}})

	switch in.Op {
	case ir.OpShl:
		s.emit("FILL8", Register(RegA), byteOperand(destSlot, 0))
		s.emit("SLA", Register(RegA))
		s.emit("SPILL8", byteOperand(destSlot, 0), Register(RegA))
		for b := 1; b < n; b++ {
			s.emit("FILL8", Register(RegA), byteOperand(destSlot, b))
			s.emit("RL", Register(RegA))
			s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
		}
	default: // shra, shrl
		top := n - 1
		s.emit("FILL8", Register(RegA), byteOperand(destSlot, top))
		if in.Op == ir.OpShra {
			s.emit("SRA", Register(RegA))
		} else {
			s.emit("SRL", Register(RegA))
		}
		s.emit("SPILL8", byteOperand(destSlot, top), Register(RegA))
		for b := top - 1; b >= 0; b-- {
			s.emit("FILL8", Register(RegA), byteOperand(destSlot, b))
			s.emit("RR", Register(RegA))
			s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
		}
	}
	s.emit("JP", Operand{Kind: OpndImm16, Sym: Symbol{Name: rep}})
	s.block.Label(end)
}

// selectMul implements the classic shift-and-add multiply: t := op1,
// dest := 0, u := op2, cnt := width; loop shifting u right, adding t
// into dest when the shifted-out bit was set, doubling t each round.
func (s *Selector) selectMul(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	op1Slot, op2Slot := s.operandSlot(in.Src1), s.operandSlot(in.Src2)
	tSlot := s.tempVR(n)
	uSlot := s.tempVR(n)
	cntSlot := s.tempVR(1)

	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, op1Slot, b))
		s.emit("SPILL8", byteOperand(tSlot, b), Register(RegA))
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src2, op2Slot, b))
		s.emit("SPILL8", byteOperand(uSlot, b), Register(RegA))
		s.emit("LDI8", byteOperand(destSlot, b), Imm8(0))
	}
	s.emit("LDI8", byteOperand(cntSlot, 0), Imm8(n*8))

	rep := s.mangledLabel("mul_rep")
	end := s.mangledLabel("mul_end")
	skip := s.mangledLabel("mul_skip")
	s.block.Label(rep)
	s.emit("FILL8", Register(RegA), byteOperand(cntSlot, 0))
	s.emit("DEC", Register(RegA))
	s.emit("SPILL8", byteOperand(cntSlot, 0), Register(RegA))
	s.emit("JPC", Condition(CondM), Operand{Kind: OpndImm16, Sym: Symbol{Name: end}})

	s.emit("FILL8", Register(RegA), byteOperand(uSlot, 0))
	s.emit("SRL", Register(RegA))
	s.emit("SPILL8", byteOperand(uSlot, 0), Register(RegA))
	for b := 1; b < n; b++ {
		s.emit("FILL8", Register(RegA), byteOperand(uSlot, b))
		s.emit("RR", Register(RegA))
		s.emit("SPILL8", byteOperand(uSlot, b), Register(RegA))
	}
	s.emit("JPC", Condition(CondNC), Operand{Kind: OpndImm16, Sym: Symbol{Name: skip}})

	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), byteOperand(destSlot, b))
		if b == 0 {
			s.emit("ADD_A", byteOperand(tSlot, b))
		} else {
			s.emit("ADC_A", byteOperand(tSlot, b))
		}
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
	}
	s.block.Label(skip)

	s.emit("FILL8", Register(RegA), byteOperand(tSlot, 0))
	s.emit("SLA", Register(RegA))
	s.emit("SPILL8", byteOperand(tSlot, 0), Register(RegA))
	for b := 1; b < n; b++ {
		s.emit("FILL8", Register(RegA), byteOperand(tSlot, b))
		s.emit("RL", Register(RegA))
		s.emit("SPILL8", byteOperand(tSlot, b), Register(RegA))
	}
	s.emit("JP", Operand{Kind: OpndImm16, Sym: Symbol{Name: rep}})
	s.block.Label(end)
}

func (s *Selector) selectEqNeq(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	op1Slot, op2Slot := s.operandSlot(in.Src1), s.operandSlot(in.Src2)
	falseLbl := s.mangledLabel("eq_false")
	doneLbl := s.mangledLabel("eq_done")

	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, op1Slot, b))
		s.emit("SUB", s.byteOrImm(in.Src2, op2Slot, b))
		s.emit("JPC", Condition(CondNZ), Operand{Kind: OpndImm16, Sym: Symbol{Name: falseLbl}})
	}
	want := 1
	if in.Op == ir.OpNeq {
		want = 0
	}
	s.emit("LDI8", byteOperand(destSlot, 0), Imm8(want))
	s.emit("LDI8", byteOperand(destSlot, 1), Imm8(0))
	s.emit("JP", Operand{Kind: OpndImm16, Sym: Symbol{Name: doneLbl}})
	s.block.Label(falseLbl)
	s.emit("LDI8", byteOperand(destSlot, 0), Imm8(1-want))
	s.emit("LDI8", byteOperand(destSlot, 1), Imm8(0))
	s.block.Label(doneLbl)
}

// selectSignedCompare implements the wide-subtract pattern for
// lt/lteq/gt/gteq, branching on M (minus) or its complement.
func (s *Selector) selectSignedCompare(in *ir.Instr) {
	s.selectCompareCommon(in, CondM)
}

// selectUnsignedCompare is the same shape branching on C (carry).
func (s *Selector) selectUnsignedCompare(in *ir.Instr) {
	s.selectCompareCommon(in, CondC)
}

func (s *Selector) selectCompareCommon(in *ir.Instr, trueCond Cond) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	// a > b and a <= b are evaluated as b < a and b >= a, so no zero check is needed.
	if in.Op == ir.OpGt || in.Op == ir.OpGtu || in.Op == ir.OpLteq || in.Op == ir.OpLteu {
		swapped := *in
		swapped.Src1, swapped.Src2 = in.Src2, in.Src1
		in = &swapped
	}
	op1Slot, op2Slot := s.operandSlot(in.Src1), s.operandSlot(in.Src2)

	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), s.byteOrImm(in.Src1, op1Slot, b))
		if b == 0 {
			s.emit("SUB", s.byteOrImm(in.Src2, op2Slot, b))
		} else {
			s.emit("SBC_A", s.byteOrImm(in.Src2, op2Slot, b))
		}
	}

	cond := trueCond
	switch in.Op {
	case ir.OpLteq, ir.OpGteq, ir.OpLteu, ir.OpGteu:
		if trueCond == CondM {
			cond = CondP
		} else {
			cond = CondNC
		}
	}
	trueLbl := s.mangledLabel("cmp_true")
	doneLbl := s.mangledLabel("cmp_done")
	s.emit("JPC", Condition(cond), Operand{Kind: OpndImm16, Sym: Symbol{Name: trueLbl}})
	s.emit("LDI8", byteOperand(destSlot, 0), Imm8(0))
	s.emit("LDI8", byteOperand(destSlot, 1), Imm8(0))
	s.emit("JP", Operand{Kind: OpndImm16, Sym: Symbol{Name: doneLbl}})
	s.block.Label(trueLbl)
	s.emit("LDI8", byteOperand(destSlot, 0), Imm8(1))
	s.emit("LDI8", byteOperand(destSlot, 1), Imm8(0))
	s.block.Label(doneLbl)
}

func (s *Selector) selectImm(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	for b := 0; b < n; b++ {
		byteVal := int((in.Src1.Value >> (8 * uint(b))) & 0xff)
		s.emit("LDI8", byteOperand(destSlot, b), Imm8(byteVal))
	}
}

// selectCondJump implements jz/jnz via `ld A,vr.high; or vr.low; jp
// Z/NZ,label`.
func (s *Selector) selectCondJump(in *ir.Instr) {
	slot := s.operandSlot(in.Src1)
	s.emit("FILL8", Register(RegA), byteOperand(slot, 1))
	s.emit("OR", byteOperand(slot, 0))
	cond := CondNZ
	if in.Op == ir.OpJz {
		cond = CondZ
	}
	s.emit("JPC", Condition(cond), Operand{Kind: OpndImm16, Sym: Symbol{Name: in.Label}})
}

// selectCall assigns argument locations, pushes stack arguments
// (last-to-first, high word to low word within an argument), loads
// register arguments (last-to-first), emits the call, retrieves the
// return value from BC, and balances the stack with INC_SP.
func (s *Selector) selectCall(in *ir.Instr) {
	args := in.Src2.List
	types := make([]ir.Type, len(args))
	for i := range args {
		types[i] = ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	locs := AssignArgLocations(types, nil, false)

	for i := len(args) - 1; i >= 0; i-- {
		loc := locs[i]
		if loc.StackBytes == 0 {
			continue
		}
		slot := s.operandSlot(args[i])
		words := loc.StackBytes / 2
		for w := words - 1; w >= 0; w-- {
			s.emit("FILL16", RegPair(PairHL), vrrOperand(slot, w*2))
			s.emit("PUSH", RegPair(PairHL))
			s.spAdj += 2
		}
	}
	for i := len(args) - 1; i >= 0; i-- {
		loc := locs[i]
		if len(loc.RegSlots) == 0 {
			continue
		}
		slot := s.operandSlot(args[i])
		for wi, rs := range loc.RegSlots {
			if rs.Pair != PairNone {
				s.emit("FILL16", RegPair(rs.Pair), vrrOperand(slot, wi*2))
			} else {
				s.emit("FILL8", Register(rs.Reg), byteOperand(slot, wi))
			}
		}
	}

	s.emit("CALL", Operand{Kind: OpndImm16, Sym: Symbol{Name: in.Label}})

	if in.Dest.Kind == ir.OperandVar {
		destSlot := s.slotOf(in.Dest)
		s.emit("SPILL16", vrrOperand(destSlot, 0), RegPair(PairBC))
	}

	stackBytes := 0
	for _, loc := range locs {
		stackBytes += loc.StackBytes
	}
	for i := 0; i < stackBytes; i++ {
		s.emit("INC_SP")
	}
	s.spAdj -= stackBytes
}

func (s *Selector) selectRead(in *ir.Instr) {
	n := s.widthBytes(in)
	destSlot := s.slotOf(in.Dest)
	addrSlot := s.operandSlot(in.Src1)
	s.emit("FILL16", RegPair(PairHL), vrrOperand(addrSlot, 0))
	for b := 0; b < n; b++ {
		s.emit("LD", Register(RegA), IndirectPair(PairHL))
		s.emit("SPILL8", byteOperand(destSlot, b), Register(RegA))
		if b != n-1 {
			s.emit("INC", RegPair(PairHL))
		}
	}
}

func (s *Selector) selectWrite(in *ir.Instr) {
	n := s.widthBytes(in)
	srcSlot := s.operandSlot(in.Src2)
	addrSlot := s.operandSlot(in.Src1)
	s.emit("FILL16", RegPair(PairHL), vrrOperand(addrSlot, 0))
	for b := 0; b < n; b++ {
		s.emit("FILL8", Register(RegA), byteOperand(srcSlot, b))
		s.emit("LD", IndirectPair(PairHL), Register(RegA))
		if b != n-1 {
			s.emit("INC", RegPair(PairHL))
		}
	}
}

// operandSlot resolves a source operand that is expected to be a
// variable reference to its VarSlot; immediates have no slot and
// byteOrImm handles them directly.
func (s *Selector) operandSlot(op ir.Operand) VarSlot {
	if op.Kind != ir.OperandVar {
		return VarSlot{}
	}
	return s.slotOf(op)
}

// byteOrImm returns the Operand for byte b of an IR operand: a VR
// reference for a variable, or an 8-bit immediate slice for a
// constant.
func (s *Selector) byteOrImm(op ir.Operand, slot VarSlot, b int) Operand {
	if op.Kind == ir.OperandImm {
		return Imm8(int((op.Value >> (8 * uint(b))) & 0xff))
	}
	return byteOperand(slot, b)
}
