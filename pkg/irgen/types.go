package irgen

import (
	"strings"

	"zcc/pkg/ast"
	"zcc/pkg/ir"
)

// resolveDeclarator combines a decl-spec-list's base type with a
// declarator's pointer/array/function wrapping to produce the
// declared entity's full ir.Type, following the declarator inside-out
// the same way pkg/ast.DeclaratorName walks it for the name.
func (l *Lowerer) resolveDeclarator(spec ast.TypeSpec, d ast.Declarator) ir.Type {
	base := l.resolveSpec(spec)
	return l.wrapDeclarator(base, d)
}

func (l *Lowerer) wrapDeclarator(base ir.Type, d ast.Declarator) ir.Type {
	switch t := d.(type) {
	case nil, *ast.IdentDeclarator, *ast.AbstractDeclarator:
		return base
	case *ast.PointerDeclarator:
		inner := l.wrapDeclarator(base, t.Inner)
		return ir.Type{Kind: ir.TypePointer, Elem: &inner}
	case *ast.ArrayDeclarator:
		inner := l.wrapDeclarator(base, t.Inner)
		count := 0
		if t.Size != nil {
			if v, ok := l.constEval(t.Size); ok {
				count = int(v)
			}
		}
		return ir.Type{Kind: ir.TypeArray, Elem: &inner, Count: count}
	case *ast.FuncDeclarator:
		// A function declarator's "type" at a use site (e.g. a function
		// pointer) degrades to a code pointer; the return type proper is
		// resolved directly by lowerFunc from the outer declarator.
		inner := l.wrapDeclarator(base, t.Inner)
		return ir.Type{Kind: ir.TypePointer, Elem: &inner}
	case *ast.ParenDeclarator:
		return l.wrapDeclarator(base, t.Inner)
	}
	return base
}

// resolveSpec resolves a bare type-specifier (no declarator wrapping)
// to its ir.Type: basic integer keywords, typedef names, and
// struct/union bodies or references.
func (l *Lowerer) resolveSpec(spec ast.TypeSpec) ir.Type {
	switch t := spec.(type) {
	case nil:
		return ir.Type{Kind: ir.TypeInt, Width: 16}
	case *ast.BasicType:
		return resolveBasic(t.Keywords)
	case *ast.IdentType:
		if typ, ok := l.typedefs[t.Name]; ok {
			return typ
		}
		if typ, ok := l.records[t.Name]; ok {
			return typ
		}
		l.errorf("irgen: unknown type name %q", t.Name)
		return ir.Type{Kind: ir.TypeInt, Width: 16}
	case *ast.RecordType:
		if t.HasBody {
			rt := l.resolveRecordType(t)
			if t.Name != "" {
				l.records[t.Name] = rt
			}
			return rt
		}
		if rt, ok := l.records[t.Name]; ok {
			return rt
		}
		return ir.Type{Kind: ir.TypeRecord}
	case *ast.EnumType:
		return ir.Type{Kind: ir.TypeInt, Width: 16}
	}
	return ir.Type{Kind: ir.TypeInt, Width: 16}
}

// resolveBasic maps the C basic-type keyword combination to a width,
// following the convention fixed for this target: char is 8 bits,
// short/int are 16 bits (the Z80's natural word), long is 32 bits.
func resolveBasic(keywords []string) ir.Type {
	has := func(kw string) bool {
		for _, k := range keywords {
			if k == kw {
				return true
			}
		}
		return false
	}
	switch {
	case has("void"):
		return ir.Type{Kind: ir.TypeInt, Width: 0}
	case has("char"):
		return ir.Type{Kind: ir.TypeInt, Width: 8}
	case has("long"):
		return ir.Type{Kind: ir.TypeInt, Width: 32}
	case has("short"):
		return ir.Type{Kind: ir.TypeInt, Width: 16}
	default:
		return ir.Type{Kind: ir.TypeInt, Width: 16}
	}
}

func (l *Lowerer) resolveRecordType(rt *ast.RecordType) ir.Type {
	var fields []ir.Field
	offset := 0
	maxSize := 0
	for _, m := range rt.Members {
		mtype := l.resolveDeclarator(m.Spec.TypeSpecifier(), m.Declarator)
		name := ast.DeclaratorName(m.Declarator)
		fieldOffset := offset
		if rt.RecordKind == ast.RecordUnion {
			fieldOffset = 0
		}
		fields = append(fields, ir.Field{Name: name, Type: mtype, Offset: fieldOffset})
		size := mtype.Size()
		if rt.RecordKind == ast.RecordUnion {
			if size > maxSize {
				maxSize = size
			}
		} else {
			offset += size
		}
	}
	return ir.Type{Kind: ir.TypeRecord, Fields: fields}
}

// fieldOffset looks up a named field within a record type.
func fieldOffset(rec ir.Type, name string) (ir.Field, bool) {
	for _, f := range rec.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ir.Field{}, false
}

// constEval folds a compile-time-constant subset of expressions:
// integer literals, enum constants, sizeof, and the arithmetic/bitwise
// operators over them. Anything else reports ok == false so callers
// fall back to run-time lowering.
func (l *Lowerer) constEval(e ast.Expr) (int64, bool) {
	switch n := e.(type) {
	case nil:
		return 0, false
	case *ast.IntLit:
		return parseIntLit(n.Text), true
	case *ast.CharLit:
		return parseCharLit(n.Text), true
	case *ast.Ident:
		if v, ok := l.enumConsts[n.Name]; ok {
			return v, true
		}
		return 0, false
	case *ast.ParenExpr:
		return l.constEval(n.Inner)
	case *ast.UnaryExpr:
		v, ok := l.constEval(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.UnMinus:
			return -v, true
		case ast.UnPlus:
			return v, true
		case ast.UnBitNot:
			return ^v, true
		case ast.UnNot:
			if v == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	case *ast.SizeofType:
		return int64(l.resolveDeclarator(n.Type.Spec, n.Type.Declarator).Size()), true
	case *ast.SizeofExpr:
		// Without full expression-type inference only a narrow set of
		// shapes (a bare identifier) can be sized without evaluating it.
		if id, ok := n.Operand.(*ast.Ident); ok {
			if t, ok := l.locals[id.Name]; ok {
				return int64(t.Size()), true
			}
			if t, ok := l.globals[id.Name]; ok {
				return int64(t.Size()), true
			}
		}
		return 0, false
	case *ast.BinaryExpr:
		lv, ok1 := l.constEval(n.Left)
		rv, ok2 := l.constEval(n.Right)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch n.Op {
		case ast.BinAdd:
			return lv + rv, true
		case ast.BinSub:
			return lv - rv, true
		case ast.BinMul:
			return lv * rv, true
		case ast.BinDiv:
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case ast.BinMod:
			if rv == 0 {
				return 0, false
			}
			return lv % rv, true
		case ast.BinShl:
			return lv << uint(rv), true
		case ast.BinShr:
			return lv >> uint(rv), true
		case ast.BinAnd:
			return lv & rv, true
		case ast.BinOr:
			return lv | rv, true
		case ast.BinXor:
			return lv ^ rv, true
		}
		return 0, false
	}
	return 0, false
}

func parseIntLit(text string) int64 {
	t := strings.ToLower(text)
	t = strings.TrimRight(t, "ul")
	var v int64
	if strings.HasPrefix(t, "0x") {
		for _, c := range t[2:] {
			v = v*16 + int64(hexDigit(c))
		}
		return v
	}
	for _, c := range t {
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int64(c-'0')
	}
	return v
}

func hexDigit(c rune) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10
	}
	return 0
}

func parseCharLit(text string) int64 {
	s := strings.Trim(text, "'")
	if strings.HasPrefix(s, "\\") && len(s) > 1 {
		switch s[1] {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case '0':
			return 0
		default:
			return int64(s[1])
		}
	}
	if len(s) > 0 {
		return int64(s[0])
	}
	return 0
}
