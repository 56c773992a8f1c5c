// Package ir defines the three-address intermediate representation
// produced by pkg/irgen and consumed by pkg/z80's instruction
// selector. Every instruction carries an explicit bit width and up to
// two source operands; destinations and sources referring to a
// variable name either a named argument/local/global or a numbered
// pseudo-variable "%N" standing for an SSA-like virtual value.
package ir

// Op enumerates the fixed IR opcode set.
type Op int

const (
	OpNop Op = iota
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpBNot
	OpNeg
	OpShl
	OpShra
	OpShrl
	OpEq
	OpNeq
	OpLt
	OpLtu
	OpLteq
	OpLteu
	OpGt
	OpGtu
	OpGteq
	OpGteu
	OpImm
	OpJmp
	OpJnz
	OpJz
	OpCall
	OpRet
	OpRetv
	OpRead
	OpWrite
	OpVarptr
	OpLvarptr
)

// OperandKind tags an Operand's concrete shape.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandVar              // a named argument/local/global, or "%N" pseudo-variable
	OperandImm              // an immediate constant
	OperandList             // a list of operands, used only by call's argument list
)

// Operand is a single IR operand.
type Operand struct {
	Kind  OperandKind
	Name  string    // set iff Kind == OperandVar
	Value int64     // set iff Kind == OperandImm
	List  []Operand // set iff Kind == OperandList
}

func Var(name string) Operand  { return Operand{Kind: OperandVar, Name: name} }
func Imm(v int64) Operand      { return Operand{Kind: OperandImm, Value: v} }
func List(ops ...Operand) Operand { return Operand{Kind: OperandList, List: ops} }

// Instr is one three-address IR instruction.
type Instr struct {
	Op       Op
	Width    int // in bits: 8, 16, 32, 64
	Dest     Operand
	Src1     Operand
	Src2     Operand
	Label    string // the jump/call target for Jmp/Jnz/Jz/Call; empty otherwise
}

// Labeled wraps an ordered sequence of instructions, each optionally
// preceded by a label, mirroring the Z80 labeled block shape one level
// up the pipeline.
type Labeled struct {
	Label string // empty if this entry carries no label
	Instr Instr
}

// TypeKind tags an IR type expression's concrete shape.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypePointer
	TypeArray
	TypeRecord
)

// Type is an IR type expression: integer of width N, pointer, array,
// or record (named field list).
type Type struct {
	Kind     TypeKind
	Width    int     // bits, set iff Kind == TypeInt
	Elem     *Type   // set iff Kind == TypePointer or TypeArray
	Count    int     // array element count, set iff Kind == TypeArray
	Fields   []Field // set iff Kind == TypeRecord
}

// Field is one named member of a record type.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

// Size returns the type's size in bytes, consistent with how
// sizeof is resolved at the IR builder boundary (§4.4).
func (t Type) Size() int {
	switch t.Kind {
	case TypeInt:
		return (t.Width + 7) / 8
	case TypePointer:
		return 2
	case TypeArray:
		if t.Elem == nil {
			return 0
		}
		return t.Elem.Size() * t.Count
	case TypeRecord:
		size := 0
		for _, f := range t.Fields {
			end := f.Offset + f.Type.Size()
			if end > size {
				size = end
			}
		}
		return size
	}
	return 0
}

// DataEntryKind tags one typed entry of a variable's data block.
type DataEntryKind int

const (
	DataInt8 DataEntryKind = iota
	DataInt16
	DataInt32
	DataInt64
	DataSymbolRef
)

// DataEntry is one typed data value (or unresolved symbol reference,
// for initialized pointer data) in an IR variable's data block.
type DataEntry struct {
	Kind   DataEntryKind
	Value  int64
	Symbol string // set iff Kind == DataSymbolRef
}

// Arg is a named, typed procedure argument.
type Arg struct {
	Name string
	Type Type
}

// Local is a named, typed procedure-local variable.
type Local struct {
	Name string
	Type Type
}

// Proc is an IR procedure: a name, its argument list, its locals, and
// an ordered, labeled instruction stream. Extern procedures have no
// body (Body is empty) and are declared only so call sites can
// resolve their signature.
type Proc struct {
	Name     string
	Args     []Arg
	Locals   []Local
	Body     []Labeled
	Extern   bool
	Variadic bool
	RetType  Type
}

// Var is an IR global variable: a name and a data block.
type Var struct {
	Name string
	Type Type
	Data []DataEntry
}

// Decl is either a Var or a Proc.
type Decl struct {
	Var  *Var
	Proc *Proc
}

// Module is an ordered list of declarations, the root IR entity
// consumed by the instruction selector.
type Module struct {
	Decls []Decl
}
