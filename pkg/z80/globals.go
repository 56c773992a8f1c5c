package z80

import "zcc/pkg/ir"

// EmitGlobal renders one IR global variable's data block as a labeled
// Z80 block: the mangled global symbol as a label, followed by one
// defb/defw/defdw/defqw directive per data entry, copied through
// unchanged -- byte/word/dword/qword entries (and word entries naming
// an unresolved symbol reference) pass straight through to the final
// assembler.
func EmitGlobal(v *ir.Var) *Block {
	b := &Block{}
	b.Label(MangleGlobal(v.Name))
	for _, d := range v.Data {
		switch d.Kind {
		case ir.DataInt8:
			b.emit("", "DEFB", Imm8(int(d.Value)))
		case ir.DataInt16:
			b.emit("", "DEFW", Imm16(int(d.Value)))
		case ir.DataInt32:
			b.emit("", "DEFDW", Imm16(int(d.Value)))
		case ir.DataInt64:
			b.emit("", "DEFQW", Imm16(int(d.Value)))
		case ir.DataSymbolRef:
			b.emit("", "DEFW", SymRef(MangleGlobal(d.Symbol), int(d.Value)))
		}
	}
	return b
}
