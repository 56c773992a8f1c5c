package emulator

const (
	MEMORY_SIZE = 65536
)

// Z80 represents a Z80 processor emulator
type Z80 struct {
	// Main registers
	A, F uint8 // Accumulator and Flags
	B, C uint8 // BC register pair
	D, E uint8 // DE register pair
	H, L uint8 // HL register pair

	// Alternate registers (never switched in by this interpreter; the
	// compiler's output has no EX AF,AF'/EXX, so these only exist for
	// register-dump symmetry)
	A_, F_ uint8
	B_, C_ uint8
	D_, E_ uint8
	H_, L_ uint8

	// Index registers
	IX, IY uint16

	// Special registers
	SP uint16 // Stack pointer
	PC uint16 // Program counter
	I  uint8  // Interrupt vector
	R  uint8  // Memory refresh

	// Memory
	memory [MEMORY_SIZE]byte

	// State
	cycles uint32
	halted bool
	iff1   bool  // Interrupt flip-flop 1
	iff2   bool  // Interrupt flip-flop 2
	im     uint8 // Interrupt mode

	// I/O handlers
	output  []byte
	ioRead  func(port uint8) uint8
	ioWrite func(port uint8, value uint8)
}

// Registers holds all Z80 registers for inspection
type Registers struct {
	A, F   uint8
	BC     uint16
	DE     uint16
	HL     uint16
	IX, IY uint16
	SP, PC uint16
}

// New creates a new Z80 emulator
func New() *Z80 {
	z := &Z80{}
	z.Reset()

	// Default I/O handlers
	z.ioWrite = func(port uint8, value uint8) {
		if port == 0x01 { // Simple console output port
			z.output = append(z.output, value)
		}
	}

	z.ioRead = func(port uint8) uint8 {
		return 0xFF // Default: all bits high
	}

	return z
}

// Reset resets the processor to initial state
func (z *Z80) Reset() {
	z.A, z.F = 0, 0
	z.B, z.C = 0, 0
	z.D, z.E = 0, 0
	z.H, z.L = 0, 0
	z.A_, z.F_ = 0, 0
	z.B_, z.C_ = 0, 0
	z.D_, z.E_ = 0, 0
	z.H_, z.L_ = 0, 0
	z.IX, z.IY = 0, 0
	z.SP = 0xFFFF
	z.PC = 0
	z.I, z.R = 0, 0
	z.cycles = 0
	z.halted = false
	z.iff1, z.iff2 = false, false
	z.im = 0
	z.output = []byte{}

	// Clear memory
	for i := range z.memory {
		z.memory[i] = 0
	}
}

// LoadAt loads code at specified address
func (z *Z80) LoadAt(address uint16, code []byte) {
	for i, b := range code {
		if int(address)+i < len(z.memory) {
			z.memory[int(address)+i] = b
		}
	}
}

// Execute runs code from specified address
func (z *Z80) Execute(address uint16) (string, uint32) {
	z.PC = address
	z.output = []byte{}
	startCycles := z.cycles

	// Execute until RET or HALT or max cycles
	maxCycles := uint32(1000000)
	for z.cycles-startCycles < maxCycles && !z.halted {
		z.step()

		// Check for RET at end of function
		if z.memory[z.PC] == 0xC9 { // RET instruction
			z.step() // Execute the RET
			break
		}
	}

	return string(z.output), z.cycles - startCycles
}

// step executes one instruction
func (z *Z80) step() {
	opcode := z.fetchByte()

	switch opcode {
	case 0xDD:
		z.stepIndexed(&z.IX)
		return
	case 0xFD:
		z.stepIndexed(&z.IY)
		return

	// NOP
	case 0x00:
		z.cycles += 4

	// LD r, r' -- the full 8-bit register matrix (0x40-0x7F minus HALT)
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6F,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7F:
		z.setReg8(regFromOpcodeHi(opcode), z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 4

	// LD r, (HL)
	case 0x46, 0x4E, 0x56, 0x5E, 0x66, 0x6E, 0x7E:
		z.setReg8(regFromOpcodeHi(opcode), z.readMem(z.hl()))
		z.cycles += 7

	// LD (HL), r
	case 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77:
		z.writeMem(z.hl(), z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 7

	// LD (HL), n
	case 0x36:
		z.writeMem(z.hl(), z.fetchByte())
		z.cycles += 10

	// LD r, n
	case 0x3E, 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E:
		z.setReg8(regFromOpcodeHi(opcode), z.fetchByte())
		z.cycles += 7

	// LD BC/DE/HL/SP, nn
	case 0x01:
		z.C, z.B = z.fetchByte(), z.fetchByte()
		z.cycles += 10
	case 0x11:
		z.E, z.D = z.fetchByte(), z.fetchByte()
		z.cycles += 10
	case 0x21:
		z.L, z.H = z.fetchByte(), z.fetchByte()
		z.cycles += 10
	case 0x31:
		z.SP = z.fetchWord()
		z.cycles += 10

	// LD (nn), HL / LD HL, (nn)
	case 0x22:
		z.writeWord(z.fetchWord(), z.hl())
		z.cycles += 16
	case 0x2A:
		z.setHL(z.readWord(z.fetchWord()))
		z.cycles += 16

	// LD (nn), A / LD A, (nn)
	case 0x32:
		z.writeMem(z.fetchWord(), z.A)
		z.cycles += 13
	case 0x3A:
		z.A = z.readMem(z.fetchWord())
		z.cycles += 13

	// LD (BC), A / LD (DE), A / LD A, (BC) / LD A, (DE)
	case 0x02:
		z.writeMem(z.bc(), z.A)
		z.cycles += 7
	case 0x12:
		z.writeMem(z.de(), z.A)
		z.cycles += 7
	case 0x0A:
		z.A = z.readMem(z.bc())
		z.cycles += 7
	case 0x1A:
		z.A = z.readMem(z.de())
		z.cycles += 7

	// ADD A, r / ADC A, r / SUB r / SBC A, r / AND r / XOR r / OR r / CP r
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x87:
		z.add(z.reg8(regFromOpcodeLo(opcode)), false)
		z.cycles += 4
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8F:
		z.add(z.reg8(regFromOpcodeLo(opcode)), z.getFlag(FLAG_C))
		z.cycles += 4
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x97:
		z.sub(z.reg8(regFromOpcodeLo(opcode)), false)
		z.cycles += 4
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9F:
		z.sub(z.reg8(regFromOpcodeLo(opcode)), z.getFlag(FLAG_C))
		z.cycles += 4
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA7:
		z.and(z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 4
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAF:
		z.xor(z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 4
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB7:
		z.or(z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 4
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBF:
		z.compare(z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 4

	// ADD A, (HL) etc.
	case 0x86:
		z.add(z.readMem(z.hl()), false)
		z.cycles += 7
	case 0x8E:
		z.add(z.readMem(z.hl()), z.getFlag(FLAG_C))
		z.cycles += 7
	case 0x96:
		z.sub(z.readMem(z.hl()), false)
		z.cycles += 7
	case 0x9E:
		z.sub(z.readMem(z.hl()), z.getFlag(FLAG_C))
		z.cycles += 7
	case 0xA6:
		z.and(z.readMem(z.hl()))
		z.cycles += 7
	case 0xAE:
		z.xor(z.readMem(z.hl()))
		z.cycles += 7
	case 0xB6:
		z.or(z.readMem(z.hl()))
		z.cycles += 7
	case 0xBE:
		z.compare(z.readMem(z.hl()))
		z.cycles += 7

	// ADD A, n / ADC A, n / SUB n / SBC A, n / AND n / XOR n / OR n / CP n
	case 0xC6:
		z.add(z.fetchByte(), false)
		z.cycles += 7
	case 0xCE:
		z.add(z.fetchByte(), z.getFlag(FLAG_C))
		z.cycles += 7
	case 0xD6:
		z.sub(z.fetchByte(), false)
		z.cycles += 7
	case 0xDE:
		z.sub(z.fetchByte(), z.getFlag(FLAG_C))
		z.cycles += 7
	case 0xE6:
		z.and(z.fetchByte())
		z.cycles += 7
	case 0xEE:
		z.xor(z.fetchByte())
		z.cycles += 7
	case 0xF6:
		z.or(z.fetchByte())
		z.cycles += 7
	case 0xFE:
		z.compare(z.fetchByte())
		z.cycles += 7

	// INC r / DEC r
	case 0x3C, 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C:
		r := regFromOpcodeHi(opcode)
		z.setReg8(r, z.inc(z.reg8(r)))
		z.cycles += 4
	case 0x3D, 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D:
		r := regFromOpcodeHi(opcode)
		z.setReg8(r, z.dec(z.reg8(r)))
		z.cycles += 4

	// INC (HL) / DEC (HL)
	case 0x34:
		z.writeMem(z.hl(), z.inc(z.readMem(z.hl())))
		z.cycles += 11
	case 0x35:
		z.writeMem(z.hl(), z.dec(z.readMem(z.hl())))
		z.cycles += 11

	// INC/DEC BC, DE, HL, SP
	case 0x03:
		z.setBC(z.bc() + 1)
		z.cycles += 6
	case 0x0B:
		z.setBC(z.bc() - 1)
		z.cycles += 6
	case 0x13:
		z.setDE(z.de() + 1)
		z.cycles += 6
	case 0x1B:
		z.setDE(z.de() - 1)
		z.cycles += 6
	case 0x23:
		z.setHL(z.hl() + 1)
		z.cycles += 6
	case 0x2B:
		z.setHL(z.hl() - 1)
		z.cycles += 6
	case 0x33:
		z.SP++
		z.cycles += 6
	case 0x3B:
		z.SP--
		z.cycles += 6

	// ADD HL, rr
	case 0x09:
		z.addHL(z.bc())
		z.cycles += 11
	case 0x19:
		z.addHL(z.de())
		z.cycles += 11
	case 0x29:
		z.addHL(z.hl())
		z.cycles += 11
	case 0x39:
		z.addHL(z.SP)
		z.cycles += 11

	// EX DE, HL
	case 0xEB:
		z.D, z.H = z.H, z.D
		z.E, z.L = z.L, z.E
		z.cycles += 4

	// CALL nn / CALL cc, nn
	case 0xCD:
		addr := z.fetchWord()
		z.push(z.PC)
		z.PC = addr
		z.cycles += 17
	case 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC:
		addr := z.fetchWord()
		if z.condition(opcode) {
			z.push(z.PC)
			z.PC = addr
			z.cycles += 17
		} else {
			z.cycles += 10
		}

	// RET / RET cc
	case 0xC9:
		z.PC = z.pop()
		z.cycles += 10
	case 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8:
		if z.condition(opcode) {
			z.PC = z.pop()
			z.cycles += 11
		} else {
			z.cycles += 5
		}

	// PUSH rr
	case 0xF5:
		z.push(uint16(z.A)<<8 | uint16(z.F))
		z.cycles += 11
	case 0xC5:
		z.push(z.bc())
		z.cycles += 11
	case 0xD5:
		z.push(z.de())
		z.cycles += 11
	case 0xE5:
		z.push(z.hl())
		z.cycles += 11

	// POP rr
	case 0xF1:
		af := z.pop()
		z.A = uint8(af >> 8)
		z.F = uint8(af & 0xFF)
		z.cycles += 10
	case 0xC1:
		z.setBC(z.pop())
		z.cycles += 10
	case 0xD1:
		z.setDE(z.pop())
		z.cycles += 10
	case 0xE1:
		z.setHL(z.pop())
		z.cycles += 10

	// JP nn / JP cc, nn
	case 0xC3:
		z.PC = z.fetchWord()
		z.cycles += 10
	case 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA:
		addr := z.fetchWord()
		if z.condition(opcode) {
			z.PC = addr
		}
		z.cycles += 10
	case 0xE9:
		z.PC = z.hl()
		z.cycles += 4

	// JR n / JR cc, n
	case 0x18:
		z.jumpRelative()
		z.cycles += 12
	case 0x20:
		if !z.getFlag(FLAG_Z) {
			z.jumpRelative()
			z.cycles += 12
		} else {
			z.PC++
			z.cycles += 7
		}
	case 0x28:
		if z.getFlag(FLAG_Z) {
			z.jumpRelative()
			z.cycles += 12
		} else {
			z.PC++
			z.cycles += 7
		}
	case 0x30:
		if !z.getFlag(FLAG_C) {
			z.jumpRelative()
			z.cycles += 12
		} else {
			z.PC++
			z.cycles += 7
		}
	case 0x38:
		if z.getFlag(FLAG_C) {
			z.jumpRelative()
			z.cycles += 12
		} else {
			z.PC++
			z.cycles += 7
		}

	// DJNZ n
	case 0x10:
		z.B--
		if z.B != 0 {
			z.jumpRelative()
			z.cycles += 13
		} else {
			z.PC++
			z.cycles += 8
		}

	// CPL
	case 0x2F:
		z.A = ^z.A
		z.setFlag(FLAG_N, true)
		z.setFlag(FLAG_H, true)
		z.cycles += 4

	// OUT (n), A
	case 0xD3:
		port := z.fetchByte()
		z.ioWrite(port, z.A)
		z.cycles += 11

	// IN A, (n)
	case 0xDB:
		port := z.fetchByte()
		z.A = z.ioRead(port)
		z.cycles += 11

	// HALT
	case 0x76:
		z.halted = true
		z.cycles += 4

	default:
		// Unrecognized opcode in the subset this interpreter covers.
		// Treated as a NOP rather than panicking so a harness script
		// that hits one fails its verify step instead of crashing.
		z.cycles += 4
	}
}

// stepIndexed decodes the 0xDD/0xFD-prefixed instruction family, which
// replaces every HL reference with the given index register (IX or IY)
// and adds an (rr+d) addressing mode for 8-bit loads, ALU ops, and
// INC/DEC. This is the family the stack-frame allocator depends on for
// essentially all local-variable and argument access, since every
// spilled VR is read and written through (ix+d).
func (z *Z80) stepIndexed(rr *uint16) {
	opcode := z.fetchByte()

	switch opcode {
	case 0x21: // LD IX/IY, nn
		lo, hi := z.fetchByte(), z.fetchByte()
		*rr = uint16(hi)<<8 | uint16(lo)
		z.cycles += 14
	case 0x22: // LD (nn), IX/IY
		z.writeWord(z.fetchWord(), *rr)
		z.cycles += 20
	case 0x2A: // LD IX/IY, (nn)
		*rr = z.readWord(z.fetchWord())
		z.cycles += 20
	case 0x23: // INC IX/IY
		*rr++
		z.cycles += 10
	case 0x2B: // DEC IX/IY
		*rr--
		z.cycles += 10
	case 0x09: // ADD IX/IY, BC
		z.addIndexed(rr, z.bc())
		z.cycles += 15
	case 0x19: // ADD IX/IY, DE
		z.addIndexed(rr, z.de())
		z.cycles += 15
	case 0x29: // ADD IX/IY, IX/IY
		z.addIndexed(rr, *rr)
		z.cycles += 15
	case 0x39: // ADD IX/IY, SP
		z.addIndexed(rr, z.SP)
		z.cycles += 15
	case 0xF9: // LD SP, IX/IY
		z.SP = *rr
		z.cycles += 10
	case 0xE5: // PUSH IX/IY
		z.push(*rr)
		z.cycles += 15
	case 0xE1: // POP IX/IY
		*rr = z.pop()
		z.cycles += 14
	case 0xE9: // JP (IX/IY)
		z.PC = *rr
		z.cycles += 8

	case 0x36: // LD (rr+d), n
		d := int8(z.fetchByte())
		n := z.fetchByte()
		z.writeMem(indexedAddr(*rr, d), n)
		z.cycles += 19
	case 0x34: // INC (rr+d)
		d := int8(z.fetchByte())
		addr := indexedAddr(*rr, d)
		z.writeMem(addr, z.inc(z.readMem(addr)))
		z.cycles += 23
	case 0x35: // DEC (rr+d)
		d := int8(z.fetchByte())
		addr := indexedAddr(*rr, d)
		z.writeMem(addr, z.dec(z.readMem(addr)))
		z.cycles += 23

	case 0x86:
		z.add(z.readIndexedOperand(rr), false)
		z.cycles += 19
	case 0x8E:
		z.add(z.readIndexedOperand(rr), z.getFlag(FLAG_C))
		z.cycles += 19
	case 0x96:
		z.sub(z.readIndexedOperand(rr), false)
		z.cycles += 19
	case 0x9E:
		z.sub(z.readIndexedOperand(rr), z.getFlag(FLAG_C))
		z.cycles += 19
	case 0xA6:
		z.and(z.readIndexedOperand(rr))
		z.cycles += 19
	case 0xAE:
		z.xor(z.readIndexedOperand(rr))
		z.cycles += 19
	case 0xB6:
		z.or(z.readIndexedOperand(rr))
		z.cycles += 19
	case 0xBE:
		z.compare(z.readIndexedOperand(rr))
		z.cycles += 19

	case 0x46, 0x4E, 0x56, 0x5E, 0x66, 0x6E, 0x7E: // LD r, (rr+d)
		d := int8(z.fetchByte())
		z.setReg8(regFromOpcodeHi(opcode), z.readMem(indexedAddr(*rr, d)))
		z.cycles += 19
	case 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77: // LD (rr+d), r
		d := int8(z.fetchByte())
		z.writeMem(indexedAddr(*rr, d), z.reg8(regFromOpcodeLo(opcode)))
		z.cycles += 19

	default:
		// Not every DD/FD-prefixed opcode in the full instruction set
		// (bit/rotate-on-(rr+d), DDCB-prefixed forms, half-register
		// IXH/IXL access) is reachable from this compiler's output;
		// unrecognized second bytes fall through as a NOP.
		z.cycles += 8
	}
}

func (z *Z80) readIndexedOperand(rr *uint16) uint8 {
	d := int8(z.fetchByte())
	return z.readMem(indexedAddr(*rr, d))
}

func indexedAddr(base uint16, disp int8) uint16 {
	return uint16(int32(base) + int32(disp))
}

// regFromOpcodeHi extracts the destination register field (bits 5-3)
// of a non-prefixed 8-bit LD/ALU/INC/DEC opcode.
func regFromOpcodeHi(opcode uint8) uint8 {
	return (opcode >> 3) & 0x07
}

// regFromOpcodeLo extracts the source register field (bits 2-0).
func regFromOpcodeLo(opcode uint8) uint8 {
	return opcode & 0x07
}

// reg8/setReg8 map the 3-bit register field encoding (B,C,D,E,H,L,-,A)
// used throughout the 0x40-0xBF opcode block onto the flat fields.
// Field value 6 ((HL)) is never passed here -- callers special-case it.
func (z *Z80) reg8(field uint8) uint8 {
	switch field {
	case 0:
		return z.B
	case 1:
		return z.C
	case 2:
		return z.D
	case 3:
		return z.E
	case 4:
		return z.H
	case 5:
		return z.L
	case 7:
		return z.A
	}
	return 0
}

func (z *Z80) setReg8(field uint8, value uint8) {
	switch field {
	case 0:
		z.B = value
	case 1:
		z.C = value
	case 2:
		z.D = value
	case 3:
		z.E = value
	case 4:
		z.H = value
	case 5:
		z.L = value
	case 7:
		z.A = value
	}
}

func (z *Z80) hl() uint16 { return uint16(z.H)<<8 | uint16(z.L) }
func (z *Z80) bc() uint16 { return uint16(z.B)<<8 | uint16(z.C) }
func (z *Z80) de() uint16 { return uint16(z.D)<<8 | uint16(z.E) }

func (z *Z80) setHL(v uint16) { z.H, z.L = uint8(v>>8), uint8(v) }
func (z *Z80) setBC(v uint16) { z.B, z.C = uint8(v>>8), uint8(v) }
func (z *Z80) setDE(v uint16) { z.D, z.E = uint8(v>>8), uint8(v) }

// condition evaluates the cc field (bits 5-3) shared by JP/CALL/RET cc
// opcodes against the flags register.
func (z *Z80) condition(opcode uint8) bool {
	switch (opcode >> 3) & 0x07 {
	case 0:
		return !z.getFlag(FLAG_Z)
	case 1:
		return z.getFlag(FLAG_Z)
	case 2:
		return !z.getFlag(FLAG_C)
	case 3:
		return z.getFlag(FLAG_C)
	case 4:
		return !z.getFlag(FLAG_P)
	case 5:
		return z.getFlag(FLAG_P)
	case 6:
		return !z.getFlag(FLAG_S)
	case 7:
		return z.getFlag(FLAG_S)
	}
	return false
}

func (z *Z80) jumpRelative() {
	offset := int8(z.fetchByte())
	z.PC = uint16(int32(z.PC) + int32(offset))
}

// Helper functions

func (z *Z80) fetchByte() uint8 {
	b := z.memory[z.PC]
	z.PC++
	return b
}

func (z *Z80) fetchWord() uint16 {
	l := z.fetchByte()
	h := z.fetchByte()
	return uint16(h)<<8 | uint16(l)
}

func (z *Z80) readMem(addr uint16) uint8  { return z.memory[addr] }
func (z *Z80) writeMem(addr uint16, v uint8) { z.memory[addr] = v }

func (z *Z80) readWord(addr uint16) uint16 {
	lo := z.memory[addr]
	hi := z.memory[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

func (z *Z80) writeWord(addr uint16, v uint16) {
	z.memory[addr] = uint8(v)
	z.memory[addr+1] = uint8(v >> 8)
}

func (z *Z80) push(value uint16) {
	z.SP--
	z.memory[z.SP] = uint8(value >> 8)
	z.SP--
	z.memory[z.SP] = uint8(value & 0xFF)
}

func (z *Z80) pop() uint16 {
	l := z.memory[z.SP]
	z.SP++
	h := z.memory[z.SP]
	z.SP++
	return uint16(h)<<8 | uint16(l)
}

func (z *Z80) add(value uint8, carryIn bool) {
	c := uint16(0)
	if carryIn {
		c = 1
	}
	result := uint16(z.A) + uint16(value) + c
	z.setFlag(FLAG_C, result > 0xFF)
	z.setFlag(FLAG_H, (z.A&0xF)+(value&0xF)+uint8(c) > 0xF)
	z.A = uint8(result)
	z.setFlag(FLAG_Z, z.A == 0)
	z.setFlag(FLAG_S, z.A&0x80 != 0)
	z.setFlag(FLAG_N, false)
}

func (z *Z80) sub(value uint8, carryIn bool) {
	c := int16(0)
	if carryIn {
		c = 1
	}
	result := int16(z.A) - int16(value) - c
	z.setFlag(FLAG_C, result < 0)
	z.setFlag(FLAG_H, int16(z.A&0xF)-int16(value&0xF)-c < 0)
	z.A = uint8(result)
	z.setFlag(FLAG_Z, z.A == 0)
	z.setFlag(FLAG_S, z.A&0x80 != 0)
	z.setFlag(FLAG_N, true)
}

func (z *Z80) and(value uint8) {
	z.A &= value
	z.setFlag(FLAG_C, false)
	z.setFlag(FLAG_H, true)
	z.setFlag(FLAG_N, false)
	z.setFlag(FLAG_Z, z.A == 0)
	z.setFlag(FLAG_S, z.A&0x80 != 0)
}

func (z *Z80) or(value uint8) {
	z.A |= value
	z.setFlag(FLAG_C, false)
	z.setFlag(FLAG_H, false)
	z.setFlag(FLAG_N, false)
	z.setFlag(FLAG_Z, z.A == 0)
	z.setFlag(FLAG_S, z.A&0x80 != 0)
}

func (z *Z80) xor(value uint8) {
	z.A ^= value
	z.setFlag(FLAG_C, false)
	z.setFlag(FLAG_H, false)
	z.setFlag(FLAG_N, false)
	z.setFlag(FLAG_Z, z.A == 0)
	z.setFlag(FLAG_S, z.A&0x80 != 0)
}

func (z *Z80) inc(value uint8) uint8 {
	result := value + 1
	z.setFlag(FLAG_Z, result == 0)
	z.setFlag(FLAG_S, result&0x80 != 0)
	z.setFlag(FLAG_H, (value&0xF) == 0xF)
	z.setFlag(FLAG_P, result == 0x80)
	z.setFlag(FLAG_N, false)
	return result
}

func (z *Z80) dec(value uint8) uint8 {
	result := value - 1
	z.setFlag(FLAG_Z, result == 0)
	z.setFlag(FLAG_S, result&0x80 != 0)
	z.setFlag(FLAG_H, (value&0xF) == 0)
	z.setFlag(FLAG_P, value == 0x80)
	z.setFlag(FLAG_N, true)
	return result
}

func (z *Z80) addHL(value uint16) {
	result := uint32(z.hl()) + uint32(value)
	z.setFlag(FLAG_C, result > 0xFFFF)
	z.setFlag(FLAG_H, (z.hl()&0xFFF)+(value&0xFFF) > 0xFFF)
	z.setFlag(FLAG_N, false)
	z.setHL(uint16(result))
}

func (z *Z80) addIndexed(rr *uint16, value uint16) {
	result := uint32(*rr) + uint32(value)
	z.setFlag(FLAG_C, result > 0xFFFF)
	z.setFlag(FLAG_H, (*rr&0xFFF)+(value&0xFFF) > 0xFFF)
	z.setFlag(FLAG_N, false)
	*rr = uint16(result)
}

func (z *Z80) compare(value uint8) {
	result := int16(z.A) - int16(value)
	z.setFlag(FLAG_Z, result == 0)
	z.setFlag(FLAG_S, result < 0)
	z.setFlag(FLAG_C, result < 0)
	z.setFlag(FLAG_N, true)
}

// Flag bit positions
const (
	FLAG_C = 0 // Carry
	FLAG_N = 1 // Add/Subtract
	FLAG_P = 2 // Parity/Overflow
	FLAG_H = 4 // Half Carry
	FLAG_Z = 6 // Zero
	FLAG_S = 7 // Sign
)

func (z *Z80) setFlag(flag uint8, value bool) {
	if value {
		z.F |= (1 << flag)
	} else {
		z.F &^= (1 << flag)
	}
}

func (z *Z80) getFlag(flag uint8) bool {
	return z.F&(1<<flag) != 0
}

// GetRegisters returns current register values
func (z *Z80) GetRegisters() Registers {
	return Registers{
		A:  z.A,
		F:  z.F,
		BC: z.bc(),
		DE: z.de(),
		HL: z.hl(),
		IX: z.IX,
		IY: z.IY,
		SP: z.SP,
		PC: z.PC,
	}
}

// GetIFF1 returns interrupt flip-flop 1 state
func (z *Z80) GetIFF1() bool {
	return z.iff1
}

// GetIFF2 returns interrupt flip-flop 2 state
func (z *Z80) GetIFF2() bool {
	return z.iff2
}

// GetIM returns interrupt mode
func (z *Z80) GetIM() uint8 {
	return z.im
}

// ReadMemory reads a byte from memory
func (z *Z80) ReadMemory(address uint16) uint8 {
	return z.memory[address]
}

// WriteMemory writes a byte to memory
func (z *Z80) WriteMemory(address uint16, value uint8) {
	z.memory[address] = value
}

// DumpMemory returns memory contents for debugging
func (z *Z80) DumpMemory(start uint16, length uint16) []byte {
	result := make([]byte, length)
	for i := uint16(0); i < length; i++ {
		addr := start + i
		// Check for overflow and bounds
		if addr >= start && int(addr) < MEMORY_SIZE {
			result[i] = z.memory[addr]
		}
	}
	return result
}

// IsHalted returns true if CPU is halted
func (z *Z80) IsHalted() bool {
	return z.halted
}

// SetHalted sets the halted state
func (z *Z80) SetHalted(halted bool) {
	z.halted = halted
}
