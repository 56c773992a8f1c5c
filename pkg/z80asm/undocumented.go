package z80asm

// Undocumented Z80 opcodes: SLL, the IX/IY half registers (IXH, IXL,
// IYH, IYL), the OUT (C),0 form, and the duplicate ED-prefixed NEG/NOP
// slots. None of these appear in Zilog's documented instruction set,
// but real Z80 silicon implements them and programs that target actual
// hardware (rather than a strict-mode emulator) rely on them.

// registerUndocumentedInstructions wires all of the above into
// oldInstructionTable. Called unconditionally from instructions.go's
// init(); processInstructionOld skips these definitions (marked
// InstructionDef.Undocumented) unless Assembler.AllowUndocumented is set.
func registerUndocumentedInstructions() {
	registerSLL()
	registerIXIYHalfOps(RegIXH, RegIXL, PrefixDD)
	registerIXIYHalfOps(RegIYH, RegIYL, PrefixFD)
	registerUndocumentedED()
	registerMiscUndocumented()
}

// registerSLL registers SLL r, the undocumented CB-prefixed "shift
// left logical" that shifts in a 1 rather than a 0.
func registerSLL() {
	registers := []struct {
		name string
		code byte
	}{
		{"B", 0x30}, {"C", 0x31}, {"D", 0x32}, {"E", 0x33},
		{"H", 0x34}, {"L", 0x35}, {"(HL)", 0x36}, {"A", 0x37},
	}

	for _, r := range registers {
		opnd := OpReg8
		if r.name == "(HL)" {
			opnd = OpRegIndirect
		}
		addInstruction("SLL", &InstructionDef{
			Mnemonic:     "SLL",
			Operands:     []OperandType{opnd},
			Undocumented: true,
			Size:         2,
			Encoder:      makeCBRegEncoder(r.code),
		})
	}

	addInstruction("SLL", &InstructionDef{
		Mnemonic:     "SLL",
		Operands:     []OperandType{OpIXOffset},
		Undocumented: true,
		Size:         4,
		Encoder:      encodeSLLIndex,
	})
	addInstruction("SLL", &InstructionDef{
		Mnemonic:     "SLL",
		Operands:     []OperandType{OpIYOffset},
		Undocumented: true,
		Size:         4,
		Encoder:      encodeSLLIndex,
	})
}

// encodeSLLIndex encodes SLL (IX+d) / SLL (IY+d).
func encodeSLLIndex(a *Assembler, line *Line, def *InstructionDef) ([]byte, error) {
	operand := line.Operands[0]

	if isIndexedOperand(operand, "IX") {
		offset, err := getIndexOffset(operand)
		if err != nil {
			return nil, err
		}
		return []byte{PrefixDD, PrefixCB, byte(offset), 0x36}, nil
	}
	if isIndexedOperand(operand, "IY") {
		offset, err := getIndexOffset(operand)
		if err != nil {
			return nil, err
		}
		return []byte{PrefixFD, PrefixCB, byte(offset), 0x36}, nil
	}

	return nil, a.errAt(line, "SLL requires an (IX+d) or (IY+d) operand, got %s", operand)
}

// registerIXIYHalfOps registers INC/DEC and the eight accumulator
// arithmetic ops (ADD/ADC/SUB/SBC/AND/XOR/OR/CP) against one pair of
// index-register halves. Called once for IXH/IXL under the DD prefix
// and once for IYH/IYL under the FD prefix; the Z80 encodes both pairs
// identically modulo that prefix byte, so one implementation covers
// both instead of the teacher's separate IX/IY copies.
func registerIXIYHalfOps(hi, lo Register, prefix byte) {
	addInstruction("INC", &InstructionDef{
		Mnemonic:     "INC",
		Operands:     []OperandType{OpReg8},
		Undocumented: true,
		Size:         2,
		Encoder:      makeHalfIncDecEncoder(hi, lo, prefix, 0x24, 0x2C),
	})
	addInstruction("DEC", &InstructionDef{
		Mnemonic:     "DEC",
		Operands:     []OperandType{OpReg8},
		Undocumented: true,
		Size:         2,
		Encoder:      makeHalfIncDecEncoder(hi, lo, prefix, 0x25, 0x2D),
	})

	for _, op := range []string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"} {
		enc := makeHalfArithEncoder(op, hi, lo, prefix)
		// Both the 1-operand form (SUB IXH) and the explicit
		// accumulator form (ADD A, IXH) share an encoding.
		addInstruction(op, &InstructionDef{
			Mnemonic:     op,
			Operands:     []OperandType{OpReg8},
			Undocumented: true,
			Size:         2,
			Encoder:      enc,
		})
		addInstruction(op, &InstructionDef{
			Mnemonic:     op,
			Operands:     []OperandType{OpReg8, OpReg8},
			Undocumented: true,
			Size:         2,
			Encoder:      enc,
		})
	}
}

// makeHalfIncDecEncoder builds the encoder shared by INC/DEC on an
// index-register half: hiOp/loOp are the opcodes for the high and low
// half (0x24/0x2C for INC, 0x25/0x2D for DEC). They are the same for
// IX and IY; only the prefix byte differs.
func makeHalfIncDecEncoder(hi, lo Register, prefix, hiOp, loOp byte) EncoderFunc {
	return func(a *Assembler, line *Line, def *InstructionDef) ([]byte, error) {
		reg, _ := parseRegister(line.Operands[0])
		switch reg {
		case hi:
			return []byte{prefix, hiOp}, nil
		case lo:
			return []byte{prefix, loOp}, nil
		}
		return nil, a.errAt(line, "%s requires an %v/%v operand, got %s", line.Mnemonic, hi, lo, line.Operands[0])
	}
}

var halfArithBaseOp = map[string]byte{
	"ADD": 0x80, "ADC": 0x88, "SUB": 0x90, "SBC": 0x98,
	"AND": 0xA0, "XOR": 0xA8, "OR": 0xB0, "CP": 0xB8,
}

// makeHalfArithEncoder builds the encoder for an accumulator
// arithmetic op against an index-register half. The half selects bits
// 0-2 of the opcode (0x04 for the high half, 0x05 for the low half,
// mirroring the documented H/L encoding) and the prefix byte selects
// IX vs IY.
func makeHalfArithEncoder(op string, hi, lo Register, prefix byte) EncoderFunc {
	return func(a *Assembler, line *Line, def *InstructionDef) ([]byte, error) {
		src := line.Operands[len(line.Operands)-1]
		srcReg, _ := parseRegister(src)

		var regCode byte
		switch srcReg {
		case hi:
			regCode = 0x04
		case lo:
			regCode = 0x05
		default:
			return nil, a.errAt(line, "%s requires an %v/%v operand, got %s", op, hi, lo, src)
		}

		return []byte{prefix, halfArithBaseOp[op] | regCode}, nil
	}
}

// registerUndocumentedED registers the ED-prefixed OUT (C),0 form and
// the duplicate NEG opcodes that alias the documented 0x44 slot.
func registerUndocumentedED() {
	addInstruction("OUT", &InstructionDef{
		Mnemonic:     "OUT",
		Operands:     []OperandType{OpAny, OpImm8},
		Undocumented: true,
		Size:         2,
		Encoder: func(a *Assembler, line *Line, def *InstructionDef) ([]byte, error) {
			if len(line.Operands) == 2 && line.Operands[0] == "(C)" && line.Operands[1] == "0" {
				return []byte{PrefixED, 0x71}, nil
			}
			return nil, a.errAt(line, "OUT (C), 0 is the only undocumented OUT form")
		},
	})

	for _, opcode := range []byte{0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C} {
		addInstruction("NEG", &InstructionDef{
			Mnemonic:     "NEG",
			Operands:     []OperandType{},
			Undocumented: true,
			Size:         2,
			Encoder:      encodeEDPrefix(opcode),
		})
	}
}

// registerMiscUndocumented registers the ED-prefixed opcodes in the
// 0x00-0x0F range, which the Z80 treats as undocumented two-byte NOPs.
func registerMiscUndocumented() {
	for opcode := byte(0x00); opcode <= 0x0F; opcode++ {
		addInstruction("NOP", &InstructionDef{
			Mnemonic:     "NOP",
			Operands:     []OperandType{},
			Undocumented: true,
			Size:         2,
			Encoder:      encodeEDPrefix(opcode),
		})
	}
}

// addInstruction appends a definition to oldInstructionTable under
// mnemonic. oldInstructionTable is already allocated by instructions.go's
// init() before any register* function runs.
func addInstruction(mnemonic string, def *InstructionDef) {
	oldInstructionTable[mnemonic] = append(oldInstructionTable[mnemonic], def)
}
