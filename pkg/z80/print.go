package z80

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a fully allocated (physical) Block as symbolic
// assembly text: one label or instruction per line, operands
// rendered with pending symbol references and byte-level addends left
// in place for the final assembler (pkg/z80asm) to resolve.
func Print(b *Block) string {
	var sb strings.Builder
	for _, e := range b.Entries {
		if e.Label != "" {
			sb.WriteString(e.Label)
			sb.WriteString(":\n")
		}
		if e.Instr == nil {
			continue
		}
		sb.WriteString("\t")
		sb.WriteString(renderInstr(e.Instr))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderInstr(in *Instr) string {
	mnem := in.Mnemonic
	var rendered []string
	for _, o := range in.Operands {
		rendered = append(rendered, renderOperand(o))
	}

	switch mnem {
	case "ADJ_IX":
		off := in.Operands[0].Imm
		return fmt.Sprintf("ld ix,%d\n\tadd ix,sp", off)
	case "RESTORE_IX":
		// SP still equals the frame base here (ADJ_IX/RESTORE_IX only
		// ever bracket a single access with balanced PUSH AF/POP AF in
		// between), so restoring IX is just re-deriving it from SP+0.
		return "ld ix,0\n\tadd ix,sp"
	case "ADD_IX_SP":
		return "add ix,sp"
	case "LD_SP_IX":
		return "ld sp,ix"
	case "LDI16":
		return fmt.Sprintf("ld %s,%s", rendered[0], rendered[1])
	case "JPC":
		return fmt.Sprintf("jp %s,%s", rendered[0], rendered[1])
	case "CALL":
		return fmt.Sprintf("call %s", rendered[0])
	case "ADD_A", "ADC_A", "SBC_A":
		return fmt.Sprintf("%s a,%s", strings.ToLower(strings.TrimSuffix(mnem, "_A")), rendered[0])
	case "SUB", "AND", "OR", "XOR", "CP":
		return fmt.Sprintf("%s %s", strings.ToLower(mnem), rendered[0])
	}

	if len(rendered) == 0 {
		return strings.ToLower(mnem)
	}
	return strings.ToLower(mnem) + " " + strings.Join(rendered, ",")
}

func renderOperand(o Operand) string {
	switch o.Kind {
	case OpndReg:
		return strings.ToLower(o.Reg.String())
	case OpndPair:
		return strings.ToLower(o.Pair.String())
	case OpndIndirectPair:
		return "(" + strings.ToLower(o.Pair.String()) + ")"
	case OpndIndexedIX:
		if o.Disp == 0 {
			return "(ix+0)"
		}
		if o.Disp < 0 {
			return fmt.Sprintf("(ix%d)", o.Disp)
		}
		return fmt.Sprintf("(ix+%d)", o.Disp)
	case OpndImm8, OpndImm16:
		if o.Sym.Name != "" {
			if o.Sym.Addend == 0 {
				return o.Sym.Name
			}
			return fmt.Sprintf("%s+%d", o.Sym.Name, o.Sym.Addend)
		}
		return strconv.Itoa(o.Imm)
	case OpndCond:
		return o.Cond.String()
	}
	return ""
}
