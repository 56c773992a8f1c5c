// Package irgen lowers a parsed translation unit (pkg/ast) into the
// three-address IR (pkg/ir) consumed by the Z80 instruction selector.
// It is a single-pass, tree-walking lowerer in the shape of the
// teacher's deleted semantic analyzer: one Lowerer carries the
// type environment and the ir.Builder collaborator, and every AST
// node kind gets its own lower* method rather than a generic visitor.
package irgen

import (
	"fmt"

	"zcc/pkg/ast"
	"zcc/pkg/ir"
)

// Lowerer walks a *ast.File and drives an ir.Builder. Non-nil errors
// collected along the way are returned together from Lower rather than
// aborting the first pass, mirroring pkg/parser's error-collection
// style for a friendlier batch diagnostic.
type Lowerer struct {
	b *ir.Builder

	typedefs map[string]ir.Type
	records  map[string]ir.Type

	globals    map[string]ir.Type
	locals     map[string]ir.Type
	enumConsts map[string]int64

	curProc *ir.Proc
	tempN   int
	labelN  int

	breakLabels    []string
	continueLabels []string

	errs []error
}

// Lower translates f into a fresh ir.Module. Errors are best-effort:
// a construct irgen cannot yet lower is skipped (with an error
// recorded) rather than aborting the whole translation unit.
func Lower(f *ast.File) (*ir.Module, []error) {
	l := &Lowerer{
		b:        ir.NewBuilder(),
		typedefs: map[string]ir.Type{},
		records:  map[string]ir.Type{},
		globals:  map[string]ir.Type{},
	}
	for _, d := range f.Decls {
		l.lowerTopDecl(d)
	}
	return l.b.Module(), l.errs
}

func (l *Lowerer) errorf(format string, args ...interface{}) {
	l.errs = append(l.errs, fmt.Errorf(format, args...))
}

func (l *Lowerer) newTemp() string {
	l.tempN++
	return fmt.Sprintf("%%%d", l.tempN)
}

func (l *Lowerer) newLabel(tag string) string {
	l.labelN++
	return fmt.Sprintf("%s_%d", tag, l.labelN)
}

func (l *Lowerer) lowerTopDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.Declaration:
		l.lowerDeclaration(n, true)
	case *ast.MacroDeclaration:
		// Macro-shaped top-level declarations (e.g. driver-registration
		// macros) are expanded by pkg/macro before irgen ever sees a
		// program; a bare macro surviving to here names nothing the IR
		// can represent, so it's recorded and dropped.
		l.errorf("irgen: unexpanded macro declaration %q at top level", n.Name)
	default:
		l.errorf("irgen: unsupported top-level declaration %T", d)
	}
}

// lowerDeclaration handles both global and block-scope declarations.
// A typedef only records its resolved type. Every function declarator,
// at either scope, goes to lowerFunc and becomes an ir.Proc (marked
// extern when it has the extern storage class or no body). Any other
// declarator becomes an ir.Var global at top level (isGlobal); at block
// scope it registers a local and emits its initializer.
func (l *Lowerer) lowerDeclaration(n *ast.Declaration, isGlobal bool) []ir.Instr {
	if n.Spec.HasStorageClass("typedef") {
		for _, id := range n.Declarators {
			name := ast.DeclaratorName(id.Declarator)
			if name == "" {
				continue
			}
			l.typedefs[name] = l.resolveDeclarator(n.Spec.TypeSpecifier(), id.Declarator)
		}
		return nil
	}
	if spec := n.Spec.TypeSpecifier(); spec != nil {
		if rt, ok := spec.(*ast.RecordType); ok && rt.HasBody && rt.Name != "" {
			l.records[rt.Name] = l.resolveRecordType(rt)
		}
		if et, ok := spec.(*ast.EnumType); ok {
			l.lowerEnum(et)
		}
	}

	var instrs []ir.Instr
	for _, id := range n.Declarators {
		if fd, ok := id.Declarator.(*ast.FuncDeclarator); ok {
			extern := n.Spec.HasStorageClass("extern") || id.Body == nil
			l.lowerFunc(n.Spec.TypeSpecifier(), fd, id.Body, extern)
			continue
		}
		name := ast.DeclaratorName(id.Declarator)
		if name == "" {
			continue
		}
		typ := l.resolveDeclarator(n.Spec.TypeSpecifier(), id.Declarator)
		if isGlobal {
			l.globals[name] = typ
			l.b.DeclareVar(name, typ, l.lowerGlobalInit(typ, id))
			continue
		}
		l.locals[name] = typ
		l.b.AddLocal(name, typ)
		if id.Init != nil {
			instrs = append(instrs, l.lowerAssignTo(ir.Var(name), typ, id.Init)...)
		}
	}
	return instrs
}

// lowerEnum assigns each enumerator a successive integer value and
// records it in l.enumConsts as a compile-time constant, which
// lowerExpr's identifier case and constEval consult; enums carry no IR
// type of their own --
// the IR's type expression has no enum kind, so constants lower
// straight to 16-bit immediates, matching the Z80 int width.
func (l *Lowerer) lowerEnum(et *ast.EnumType) {
	next := int64(0)
	if l.enumConsts == nil {
		l.enumConsts = map[string]int64{}
	}
	for _, e := range et.Enumerators {
		if e.Value != nil {
			if v, ok := l.constEval(e.Value); ok {
				next = v
			}
		}
		l.enumConsts[e.Name] = next
		next++
	}
}

func (l *Lowerer) lowerGlobalInit(typ ir.Type, id *ast.InitDeclarator) []ir.DataEntry {
	if id.Init == nil && id.InitList == nil {
		return zeroData(typ)
	}
	if v, ok := l.constEval(valueOf(id)); ok {
		return intData(typ, v)
	}
	// Non-constant or aggregate initializers (braced lists, string
	// literals assigned to char arrays) are not yet folded into a data
	// block; this is recorded as a simplification rather than silently
	// miscompiled.
	l.errorf("irgen: non-constant global initializer not yet lowered")
	return zeroData(typ)
}

func valueOf(id *ast.InitDeclarator) ast.Expr {
	if id.Init != nil {
		return id.Init
	}
	return nil
}

func zeroData(typ ir.Type) []ir.DataEntry {
	n := typ.Size()
	if n <= 0 {
		n = 1
	}
	out := make([]ir.DataEntry, n)
	for i := range out {
		out[i] = ir.DataEntry{Kind: ir.DataInt8}
	}
	return out
}

func intData(typ ir.Type, v int64) []ir.DataEntry {
	n := typ.Size()
	out := make([]ir.DataEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ir.DataEntry{Kind: ir.DataInt8, Value: (v >> (8 * uint(i))) & 0xff})
	}
	return out
}

// lowerFunc declares a procedure and, when it has a body, lowers it.
func (l *Lowerer) lowerFunc(retSpec ast.TypeSpec, fd *ast.FuncDeclarator, body *ast.BlockStmt, extern bool) {
	name := ast.DeclaratorName(fd)
	retType := l.resolveDeclarator(retSpec, fd.Inner)

	var args []ir.Arg
	for _, p := range fd.Params {
		pname := ast.DeclaratorName(p.Declarator)
		ptype := l.resolveDeclarator(p.Spec.TypeSpecifier(), p.Declarator)
		args = append(args, ir.Arg{Name: pname, Type: ptype})
	}

	proc := l.b.DeclareProc(name, args, retType, extern || body == nil, fd.Ellipsis)
	if body == nil {
		return
	}

	l.curProc = proc
	l.locals = map[string]ir.Type{}
	for _, a := range args {
		l.locals[a.Name] = a.Type
	}
	l.lowerBlock(body)
	// A function whose source falls off the end without an explicit
	// return still needs a ret for the selector's RET lowering rule.
	l.b.Emit("", ir.Instr{Op: ir.OpRet})
	l.curProc = nil
	l.locals = nil
}

func (l *Lowerer) lowerBlock(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		l.lowerStmt(s)
	}
}
