package z80

import "strconv"

// Allocator rewrites a virtual instruction stream into physical Z80
// instructions, materializing every VR/VRR operand through the stack
// frame via idxacc and the fill/spill primitives. It never keeps a VR
// live in a physical register across instructions -- every virtual
// operand is re-filled or re-spilled at the point of use, trading
// code density for a single, uniform lowering rule. See DESIGN.md for
// why this departs from a shadow-register-aware allocator.
type Allocator struct {
	frame  Frame
	spAdj  int // bytes pushed since the last balancing pop/inc-sp; must be 0 at a ret
	labelN int
}

// Allocate lowers a virtual Block into a physical one for a procedure
// whose locals occupy localsSize bytes and whose variable map vm
// determines the VR-pair region's size.
func Allocate(vblock *Block, vm *VarMap, localsSize int) *Block {
	a := &Allocator{frame: Frame{LocalsSize: localsSize, PairCount: (vm.Count() + 1) / 2}}
	out := &Block{}
	a.frame.Prologue(out)
	for _, e := range vblock.Entries {
		if e.Instr == nil {
			out.Label(e.Label)
			continue
		}
		a.lower(out, e.Label, e.Instr)
	}
	return out
}

func (a *Allocator) newLabel(pattern string) string {
	a.labelN++
	return "alloc_" + pattern + "_" + strconv.Itoa(a.labelN)
}

func pairRegs(p Pair) (lo, hi Reg) {
	switch p {
	case PairHL:
		return RegL, RegH
	case PairDE:
		return RegE, RegD
	case PairBC:
		return RegC, RegB
	}
	return RegNone, RegNone
}

func (a *Allocator) vrDisp(op Operand) idxRef {
	return idxacc(a.frame.VROffset(op.VRNum, HalfWhole))
}

func (a *Allocator) vrByteDisp(op Operand) idxRef {
	return idxacc(a.frame.VROffset(op.VRNum, op.Half))
}

func (a *Allocator) vrrDisp(vrrNum int, half Half) idxRef {
	return idxacc(a.frame.VROffset(vrrNum, half))
}

// hasVirtual reports whether any operand still references a VR/VRR.
func hasVirtual(ops []Operand) bool {
	for _, o := range ops {
		if o.Kind == OpndVR || o.Kind == OpndVRR {
			return true
		}
	}
	return false
}

func (a *Allocator) lower(out *Block, label string, in *Instr) {
	if label != "" {
		out.Label(label)
	}

	switch in.Mnemonic {
	case "FILL8":
		dest, src := in.Operands[0], in.Operands[1]
		ref := a.vrByteDisp(src)
		emitAccess(out, ref, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{dest, indexedIX(d)}}
		})
	case "SPILL8":
		dest, src := in.Operands[0], in.Operands[1]
		ref := a.vrByteDisp(dest)
		emitAccess(out, ref, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), src}}
		})
	case "LDI8":
		dest, imm := in.Operands[0], in.Operands[1]
		ref := a.vrByteDisp(dest)
		emitAccess(out, ref, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), imm}}
		})
	case "LDSYM16":
		dest, sym := in.Operands[0], in.Operands[1]
		loRef := a.vrrDisp(dest.VRNum, HalfLow)
		hiRef := a.vrrDisp(dest.VRNum, HalfHigh)
		emitAccess(out, loRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), lowByteOf(sym)}}
		})
		emitAccess(out, hiRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), highByteOf(sym)}}
		})
	case "FILL16":
		dest, src := in.Operands[0], in.Operands[1]
		lo, hi := pairRegs(dest.Pair)
		loRef := a.vrrDisp(src.VRNum, HalfLow)
		hiRef := a.vrrDisp(src.VRNum, HalfHigh)
		emitAccess(out, loRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{Register(lo), indexedIX(d)}}
		})
		emitAccess(out, hiRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{Register(hi), indexedIX(d)}}
		})
	case "SPILL16":
		dest, src := in.Operands[0], in.Operands[1]
		lo, hi := pairRegs(src.Pair)
		loRef := a.vrrDisp(dest.VRNum, HalfLow)
		hiRef := a.vrrDisp(dest.VRNum, HalfHigh)
		emitAccess(out, loRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), Register(lo)}}
		})
		emitAccess(out, hiRef, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), Register(hi)}}
		})
	case "LDARG8":
		dest, off := in.Operands[0], in.Operands[1]
		ref := idxacc(4 + off.Imm)
		emitAccess(out, ref, func(d int) *Instr {
			return &Instr{Mnemonic: "LD", Operands: []Operand{dest, indexedIX(d)}}
		})
	case "LDARG16":
		dest, off := in.Operands[0], in.Operands[1]
		for i, half := range [2]Half{HalfLow, HalfHigh} {
			srcRef := idxacc(4 + off.Imm + i)
			emitAccess(out, srcRef, func(d int) *Instr {
				return &Instr{Mnemonic: "LD", Operands: []Operand{Register(RegA), indexedIX(d)}}
			})
			dstRef := a.vrrDisp(dest.VRNum, half)
			emitAccess(out, dstRef, func(d int) *Instr {
				return &Instr{Mnemonic: "LD", Operands: []Operand{indexedIX(d), Register(RegA)}}
			})
		}
	case "INC_VRR":
		vrr := in.Operands[0]
		nocarry := a.newLabel("nocarry")
		loRef := a.vrrDisp(vrr.VRNum, HalfLow)
		hiRef := a.vrrDisp(vrr.VRNum, HalfHigh)
		emitAccess(out, loRef, func(d int) *Instr {
			return &Instr{Mnemonic: "INC", Operands: []Operand{indexedIX(d)}}
		})
		out.emit("", "JPC", Condition(CondNZ), Operand{Kind: OpndImm16, Sym: Symbol{Name: nocarry}})
		emitAccess(out, hiRef, func(d int) *Instr {
			return &Instr{Mnemonic: "INC", Operands: []Operand{indexedIX(d)}}
		})
		out.Label(nocarry)
	case "ADD_A", "ADC_A", "SUB", "SBC_A", "AND", "OR", "XOR", "CP":
		if len(in.Operands) == 1 && in.Operands[0].Kind == OpndVR {
			ref := a.vrByteDisp(in.Operands[0])
			emitAccess(out, ref, func(d int) *Instr {
				return &Instr{Mnemonic: in.Mnemonic, Operands: []Operand{indexedIX(d)}}
			})
		} else {
			out.Entries = append(out.Entries, Entry{Instr: in})
		}
	case "RET":
		if a.spAdj == 0 {
			a.frame.Epilogue(out)
		} else {
			out.emit("", "RET")
			a.spAdj -= 4
		}
	case "PUSH":
		a.spAdj += 2
		out.Entries = append(out.Entries, Entry{Instr: in})
	case "POP":
		a.spAdj -= 2
		out.Entries = append(out.Entries, Entry{Instr: in})
	case "INC_SP":
		a.spAdj--
		out.emit("", "INC", RegPair(PairSP))
	default:
		out.Entries = append(out.Entries, Entry{Instr: in})
	}
}

func indexedIX(disp int) Operand {
	return Operand{Kind: OpndIndexedIX, Pair: PairIX, Disp: disp}
}

func lowByteOf(sym Operand) Operand {
	s := sym.Sym
	s.Name = "low(" + s.Name + ")"
	return Operand{Kind: OpndImm8, Sym: s}
}

func highByteOf(sym Operand) Operand {
	s := sym.Sym
	s.Name = "high(" + s.Name + ")"
	return Operand{Kind: OpndImm8, Sym: s}
}
