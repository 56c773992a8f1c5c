package ir

// Builder is the IR-builder collaborator interface consumed by the
// AST→IR lowerer (pkg/irgen): it creates modules, procedures,
// variables, and data entries, appends operands to a call's operand
// list, and resolves IR type-expression sizes consistently with
// Type.Size in ir.go. The instruction selector depends on this
// contract but never constructs a Builder itself.
type Builder struct {
	mod *Module
	cur *Proc
}

// NewBuilder starts a fresh module.
func NewBuilder() *Builder {
	return &Builder{mod: &Module{}}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module { return b.mod }

// DeclareVar appends a new global variable declaration.
func (b *Builder) DeclareVar(name string, typ Type, data []DataEntry) *Var {
	v := &Var{Name: name, Type: typ, Data: data}
	b.mod.Decls = append(b.mod.Decls, Decl{Var: v})
	return v
}

// DeclareProc appends a new procedure declaration and makes it the
// current procedure for subsequent Emit/AddLocal calls.
func (b *Builder) DeclareProc(name string, args []Arg, retType Type, extern, variadic bool) *Proc {
	p := &Proc{Name: name, Args: args, RetType: retType, Extern: extern, Variadic: variadic}
	b.mod.Decls = append(b.mod.Decls, Decl{Proc: p})
	b.cur = p
	return p
}

// AddLocal appends a local variable to the current procedure.
func (b *Builder) AddLocal(name string, typ Type) {
	b.cur.Locals = append(b.cur.Locals, Local{Name: name, Type: typ})
}

// Emit appends an instruction, optionally preceded by a label, to the
// current procedure's body.
func (b *Builder) Emit(label string, instr Instr) {
	b.cur.Body = append(b.cur.Body, Labeled{Label: label, Instr: instr})
}

// AppendCallArg appends one operand to a call instruction's
// already-emitted Src2 operand list (Src2 carries the argument list
// for OpCall).
func AppendCallArg(call *Instr, op Operand) {
	call.Src2.Kind = OperandList
	call.Src2.List = append(call.Src2.List, op)
}

// SizeOf resolves an IR type expression's size in bytes.
func SizeOf(t Type) int { return t.Size() }
