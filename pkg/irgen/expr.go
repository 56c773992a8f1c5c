package irgen

import (
	"zcc/pkg/ast"
	"zcc/pkg/ir"
)

// widthOf returns the bit width an IR instruction operating on values
// of type t should carry: an integer's own width, or 16 for anything
// that lowers to a pointer-sized quantity (pointers, and arrays via
// their usual decay to a pointer to their first element).
func widthOf(t ir.Type) int {
	switch t.Kind {
	case ir.TypeInt:
		if t.Width == 0 {
			return 8
		}
		return t.Width
	case ir.TypePointer, ir.TypeArray:
		return 16
	default:
		return 16
	}
}

func (l *Lowerer) lookupVar(name string) (ir.Type, bool) {
	if t, ok := l.locals[name]; ok {
		return t, true
	}
	if t, ok := l.globals[name]; ok {
		return t, true
	}
	return ir.Type{}, false
}

// emitCopy lowers `dest = src` using the IR's arithmetic opcodes:
// there is no dedicated move/assign opcode in this instruction set, so
// a plain copy is expressed as `dest = src + 0`, which the selector
// already knows how to lower byte-wise for any width.
func (l *Lowerer) emitCopy(dest ir.Operand, width int, src ir.Operand) {
	l.b.Emit("", ir.Instr{Op: ir.OpAdd, Width: width, Dest: dest, Src1: src, Src2: ir.Imm(0)})
}

// lowerExpr lowers e to an operand holding its value (materializing
// intermediate results into fresh temporaries as needed) together with
// its resolved type.
func (l *Lowerer) lowerExpr(e ast.Expr) (ir.Operand, ir.Type) {
	if v, ok := l.constEval(e); ok {
		if _, isIdent := e.(*ast.Ident); !isIdent {
			return ir.Imm(v), ir.Type{Kind: ir.TypeInt, Width: 16}
		}
	}

	switch n := e.(type) {
	case *ast.IntLit:
		return ir.Imm(parseIntLit(n.Text)), ir.Type{Kind: ir.TypeInt, Width: 16}
	case *ast.CharLit:
		return ir.Imm(parseCharLit(n.Text)), ir.Type{Kind: ir.TypeInt, Width: 8}
	case *ast.StringLit, *ast.ConcatLit:
		// String-literal data isn't yet pooled into its own global; this
		// is a recorded gap rather than a silent miscompile.
		l.errorf("irgen: string literal constants not yet lowered")
		return ir.Imm(0), ir.Type{Kind: ir.TypePointer, Elem: &ir.Type{Kind: ir.TypeInt, Width: 8}}
	case *ast.Ident:
		if v, ok := l.enumConsts[n.Name]; ok {
			return ir.Imm(v), ir.Type{Kind: ir.TypeInt, Width: 16}
		}
		t, ok := l.lookupVar(n.Name)
		if !ok {
			l.errorf("irgen: undeclared identifier %q", n.Name)
			return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
		}
		if t.Kind == ir.TypeArray {
			return l.addressOf(n)
		}
		return ir.Var(n.Name), t
	case *ast.ParenExpr:
		return l.lowerExpr(n.Inner)
	case *ast.CastExpr:
		v, _ := l.lowerExpr(n.Expr)
		return v, l.resolveDeclarator(n.Type.Spec, n.Type.Declarator)
	case *ast.UnaryExpr:
		return l.lowerUnary(n)
	case *ast.PostfixExpr:
		return l.lowerPostfix(n)
	case *ast.SizeofExpr, *ast.SizeofType:
		v, _ := l.constEval(e)
		return ir.Imm(v), ir.Type{Kind: ir.TypeInt, Width: 16}
	case *ast.BinaryExpr:
		return l.lowerBinary(n)
	case *ast.AssignExpr:
		return l.lowerAssignExpr(n)
	case *ast.TernaryExpr:
		return l.lowerTernary(n)
	case *ast.CommaExpr:
		var last ir.Operand
		var lastType ir.Type
		for _, x := range n.Exprs {
			last, lastType = l.lowerExpr(x)
		}
		return last, lastType
	case *ast.CallExpr:
		return l.lowerCall(n)
	case *ast.IndexExpr, *ast.MemberExpr:
		addr, elemType := l.addressOf(e)
		return l.loadFrom(addr, elemType)
	}
	l.errorf("irgen: unsupported expression %T", e)
	return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
}

// loadFrom reads elemType's value from the address operand addr,
// decaying arrays/records to their address instead of copying them.
func (l *Lowerer) loadFrom(addr ir.Operand, elemType ir.Type) (ir.Operand, ir.Type) {
	if elemType.Kind == ir.TypeArray || elemType.Kind == ir.TypeRecord {
		return addr, elemType
	}
	dest := l.newTemp()
	l.b.Emit("", ir.Instr{Op: ir.OpRead, Width: widthOf(elemType), Dest: ir.Var(dest), Src1: addr})
	return ir.Var(dest), elemType
}

// addressOf lowers e as an lvalue, returning an operand holding its
// address together with the type stored there.
func (l *Lowerer) addressOf(e ast.Expr) (ir.Operand, ir.Type) {
	switch n := e.(type) {
	case *ast.Ident:
		t, ok := l.lookupVar(n.Name)
		if !ok {
			l.errorf("irgen: undeclared identifier %q", n.Name)
			t = ir.Type{Kind: ir.TypeInt, Width: 16}
		}
		dest := l.newTemp()
		if _, isLocal := l.locals[n.Name]; isLocal {
			l.b.Emit("", ir.Instr{Op: ir.OpLvarptr, Dest: ir.Var(dest), Src1: ir.Var(n.Name)})
		} else {
			l.b.Emit("", ir.Instr{Op: ir.OpVarptr, Dest: ir.Var(dest), Src1: ir.Var(n.Name)})
		}
		return ir.Var(dest), t
	case *ast.ParenExpr:
		return l.addressOf(n.Inner)
	case *ast.UnaryExpr:
		if n.Op == ast.UnDeref {
			ptr, ptrType := l.lowerExpr(n.Operand)
			elem := ir.Type{Kind: ir.TypeInt, Width: 16}
			if ptrType.Elem != nil {
				elem = *ptrType.Elem
			}
			return ptr, elem
		}
	case *ast.IndexExpr:
		base, baseType := l.baseAddressOrValue(n.Object)
		elem := ir.Type{Kind: ir.TypeInt, Width: 16}
		if baseType.Elem != nil {
			elem = *baseType.Elem
		}
		idx, _ := l.lowerExpr(n.Index)
		size := elem.Size()
		if size <= 0 {
			size = 1
		}
		scaled := idx
		if size != 1 {
			scaled = ir.Var(l.newTemp())
			l.b.Emit("", ir.Instr{Op: ir.OpMul, Width: 16, Dest: scaled, Src1: idx, Src2: ir.Imm(int64(size))})
		}
		addr := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpAdd, Width: 16, Dest: addr, Src1: base, Src2: scaled})
		return addr, elem
	case *ast.MemberExpr:
		var base ir.Operand
		var baseType ir.Type
		if n.Arrow {
			base, baseType = l.lowerExpr(n.Object)
			if baseType.Elem != nil {
				baseType = *baseType.Elem
			}
		} else {
			base, baseType = l.addressOf(n.Object)
		}
		f, ok := fieldOffset(baseType, n.Name)
		if !ok {
			l.errorf("irgen: unknown member %q", n.Name)
			return base, ir.Type{Kind: ir.TypeInt, Width: 16}
		}
		if f.Offset == 0 {
			return base, f.Type
		}
		addr := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpAdd, Width: 16, Dest: addr, Src1: base, Src2: ir.Imm(int64(f.Offset))})
		return addr, f.Type
	}
	l.errorf("irgen: expression %T is not an lvalue", e)
	return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
}

// baseAddressOrValue resolves the base of an index expression: an
// array variable decays to its address without a Read, while a
// pointer-typed base is simply loaded.
func (l *Lowerer) baseAddressOrValue(e ast.Expr) (ir.Operand, ir.Type) {
	if id, ok := e.(*ast.Ident); ok {
		if t, ok := l.lookupVar(id.Name); ok && t.Kind == ir.TypeArray {
			return l.addressOf(id)
		}
	}
	return l.lowerExpr(e)
}

func (l *Lowerer) lowerUnary(n *ast.UnaryExpr) (ir.Operand, ir.Type) {
	switch n.Op {
	case ast.UnAddr:
		return l.addressOf(n.Operand)
	case ast.UnDeref:
		addr, elemType := l.addressOf(n)
		return l.loadFrom(addr, elemType)
	case ast.UnPlus:
		return l.lowerExpr(n.Operand)
	case ast.UnMinus:
		v, t := l.lowerExpr(n.Operand)
		dest := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpNeg, Width: widthOf(t), Dest: dest, Src1: v})
		return dest, t
	case ast.UnBitNot:
		v, t := l.lowerExpr(n.Operand)
		dest := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpBNot, Width: widthOf(t), Dest: dest, Src1: v})
		return dest, t
	case ast.UnNot:
		v, t := l.lowerExpr(n.Operand)
		dest := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpEq, Width: widthOf(t), Dest: dest, Src1: v, Src2: ir.Imm(0)})
		return dest, ir.Type{Kind: ir.TypeInt, Width: 16}
	case ast.UnPreInc, ast.UnPreDec:
		addr, t := l.addressOf(n.Operand)
		cur, _ := l.loadFrom(addr, t)
		delta := int64(1)
		if t.Elem != nil {
			delta = int64(t.Elem.Size())
		}
		if n.Op == ast.UnPreDec {
			delta = -delta
		}
		next := ir.Var(l.newTemp())
		l.b.Emit("", ir.Instr{Op: ir.OpAdd, Width: widthOf(t), Dest: next, Src1: cur, Src2: ir.Imm(delta)})
		l.storeTo(n.Operand, addr, t, next)
		return next, t
	}
	l.errorf("irgen: unsupported unary operator")
	return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
}

func (l *Lowerer) lowerPostfix(n *ast.PostfixExpr) (ir.Operand, ir.Type) {
	addr, t := l.addressOf(n.Operand)
	cur, _ := l.loadFrom(addr, t)
	old := ir.Var(l.newTemp())
	l.emitCopy(old, widthOf(t), cur)
	delta := int64(1)
	if t.Elem != nil {
		delta = int64(t.Elem.Size())
	}
	if n.Op == ast.PostDec {
		delta = -delta
	}
	next := ir.Var(l.newTemp())
	l.b.Emit("", ir.Instr{Op: ir.OpAdd, Width: widthOf(t), Dest: next, Src1: cur, Src2: ir.Imm(delta)})
	l.storeTo(n.Operand, addr, t, next)
	return old, t
}

var binOp = map[ast.BinaryOp]ir.Op{
	ast.BinAdd: ir.OpAdd, ast.BinSub: ir.OpSub, ast.BinMul: ir.OpMul,
	ast.BinAnd: ir.OpAnd, ast.BinOr: ir.OpOr, ast.BinXor: ir.OpXor,
	ast.BinShl: ir.OpShl, ast.BinShr: ir.OpShra,
	ast.BinEq: ir.OpEq, ast.BinNe: ir.OpNeq,
	ast.BinLt: ir.OpLt, ast.BinLe: ir.OpLteq,
	ast.BinGt: ir.OpGt, ast.BinGe: ir.OpGteq,
}

func (l *Lowerer) lowerBinary(n *ast.BinaryExpr) (ir.Operand, ir.Type) {
	switch n.Op {
	case ast.BinLAnd, ast.BinLOr:
		return l.lowerLogical(n)
	case ast.BinDiv, ast.BinMod:
		// Division has no dedicated IR opcode (the fixed opcode set
		// covers mul but not div/mod); a full implementation would call
		// a runtime helper procedure, not yet wired.
		l.errorf("irgen: division/modulo not yet lowered")
		return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	op, ok := binOp[n.Op]
	if !ok {
		l.errorf("irgen: unsupported binary operator")
		return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	lv, lt := l.lowerExpr(n.Left)
	rv, _ := l.lowerExpr(n.Right)
	width := widthOf(lt)
	resultType := lt
	switch n.Op {
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		resultType = ir.Type{Kind: ir.TypeInt, Width: 16}
	case ast.BinAdd, ast.BinSub:
		if lt.Kind == ir.TypePointer && lt.Elem != nil && lt.Elem.Size() > 1 {
			scaled := ir.Var(l.newTemp())
			l.b.Emit("", ir.Instr{Op: ir.OpMul, Width: 16, Dest: scaled, Src1: rv, Src2: ir.Imm(int64(lt.Elem.Size()))})
			rv = scaled
		}
	}
	dest := ir.Var(l.newTemp())
	l.b.Emit("", ir.Instr{Op: op, Width: width, Dest: dest, Src1: lv, Src2: rv})
	return dest, resultType
}

// lowerLogical implements short-circuit && / || by branching on the
// left operand's truth value before evaluating the right.
func (l *Lowerer) lowerLogical(n *ast.BinaryExpr) (ir.Operand, ir.Type) {
	lv, lt := l.lowerExpr(n.Left)
	lbool := ir.Var(l.newTemp())
	l.b.Emit("", ir.Instr{Op: ir.OpNeq, Width: widthOf(lt), Dest: lbool, Src1: lv, Src2: ir.Imm(0)})

	dest := ir.Var(l.newTemp())
	shortLbl := l.newLabel("logic_short")
	doneLbl := l.newLabel("logic_done")

	if n.Op == ast.BinLAnd {
		l.b.Emit("", ir.Instr{Op: ir.OpJz, Src1: lbool, Label: shortLbl})
	} else {
		l.b.Emit("", ir.Instr{Op: ir.OpJnz, Src1: lbool, Label: shortLbl})
	}

	rv, rt := l.lowerExpr(n.Right)
	rbool := ir.Var(l.newTemp())
	l.b.Emit("", ir.Instr{Op: ir.OpNeq, Width: widthOf(rt), Dest: rbool, Src1: rv, Src2: ir.Imm(0)})
	l.emitCopy(dest, 16, rbool)
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: doneLbl})

	l.b.Emit(shortLbl, ir.Instr{Op: ir.OpNop})
	shortVal := int64(0)
	if n.Op == ast.BinLOr {
		shortVal = 1
	}
	l.emitCopy(dest, 16, ir.Imm(shortVal))

	l.b.Emit(doneLbl, ir.Instr{Op: ir.OpNop})
	return dest, ir.Type{Kind: ir.TypeInt, Width: 16}
}

var compoundOp = map[ast.AssignOp]ir.Op{
	ast.AsgAdd: ir.OpAdd, ast.AsgSub: ir.OpSub, ast.AsgMul: ir.OpMul,
	ast.AsgAnd: ir.OpAnd, ast.AsgOr: ir.OpOr, ast.AsgXor: ir.OpXor,
	ast.AsgShl: ir.OpShl, ast.AsgShr: ir.OpShra,
}

func (l *Lowerer) lowerAssignExpr(n *ast.AssignExpr) (ir.Operand, ir.Type) {
	if n.Op == ast.AsgSimple {
		rv, rt := l.lowerExpr(n.Right)
		addr, t := l.addressOf(n.Left)
		l.storeTo(n.Left, addr, t, rv)
		return rv, rt
	}
	addr, t := l.addressOf(n.Left)
	cur, _ := l.loadFrom(addr, t)
	rv, _ := l.lowerExpr(n.Right)
	op, ok := compoundOp[n.Op]
	if !ok {
		l.errorf("irgen: unsupported compound assignment")
		return cur, t
	}
	next := ir.Var(l.newTemp())
	l.b.Emit("", ir.Instr{Op: op, Width: widthOf(t), Dest: next, Src1: cur, Src2: rv})
	l.storeTo(n.Left, addr, t, next)
	return next, t
}

// storeTo writes value into the lvalue target: a direct named-variable
// copy for a bare identifier naming a variable, otherwise an indirect
// write through addr. Callers compute addr with addressOf in both
// cases.
func (l *Lowerer) storeTo(target ast.Expr, addr ir.Operand, t ir.Type, value ir.Operand) {
	if id, ok := target.(*ast.Ident); ok {
		if _, isVar := l.lookupVar(id.Name); isVar {
			l.emitCopy(ir.Var(id.Name), widthOf(t), value)
			return
		}
	}
	l.b.Emit("", ir.Instr{Op: ir.OpWrite, Width: widthOf(t), Src1: addr, Src2: value})
}

// lowerAssignTo lowers a declarator's initializer directly into a
// fresh local/global, used by declaration processing where the target
// name is known without re-deriving an lvalue address.
func (l *Lowerer) lowerAssignTo(dest ir.Operand, t ir.Type, init ast.Expr) []ir.Instr {
	v, _ := l.lowerExpr(init)
	l.emitCopy(dest, widthOf(t), v)
	return nil
}

func (l *Lowerer) lowerTernary(n *ast.TernaryExpr) (ir.Operand, ir.Type) {
	cond, ct := l.lowerExpr(n.Cond)
	elseLbl := l.newLabel("tern_else")
	doneLbl := l.newLabel("tern_done")
	dest := ir.Var(l.newTemp())

	l.b.Emit("", ir.Instr{Op: ir.OpJz, Width: widthOf(ct), Src1: cond, Label: elseLbl})
	thenV, thenT := l.lowerExpr(n.Then)
	l.emitCopy(dest, widthOf(thenT), thenV)
	l.b.Emit("", ir.Instr{Op: ir.OpJmp, Label: doneLbl})
	l.b.Emit(elseLbl, ir.Instr{Op: ir.OpNop})
	elseV, _ := l.lowerExpr(n.Else)
	l.emitCopy(dest, widthOf(thenT), elseV)
	l.b.Emit(doneLbl, ir.Instr{Op: ir.OpNop})
	return dest, thenT
}

func (l *Lowerer) lowerCall(n *ast.CallExpr) (ir.Operand, ir.Type) {
	id, ok := n.Fn.(*ast.Ident)
	if !ok {
		l.errorf("irgen: indirect calls through function pointers not yet lowered")
		return ir.Imm(0), ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	call := &ir.Instr{Op: ir.OpCall, Width: 16, Label: id.Name}
	for _, a := range n.Args {
		v, _ := l.lowerExpr(a)
		ir.AppendCallArg(call, v)
	}
	dest := ir.Var(l.newTemp())
	call.Dest = dest
	l.b.Emit("", *call)
	return dest, ir.Type{Kind: ir.TypeInt, Width: 16}
}
