package ast

import "zcc/pkg/token"

func (*IntLit) exprNode()       {}
func (*CharLit) exprNode()      {}
func (*StringLit) exprNode()    {}
func (*ConcatLit) exprNode()    {}
func (*Ident) exprNode()        {}
func (*ParenExpr) exprNode()    {}
func (*CastExpr) exprNode()     {}
func (*CompoundLit) exprNode()  {}
func (*MemberExpr) exprNode()   {}
func (*IndexExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*UnaryExpr) exprNode()    {}
func (*PostfixExpr) exprNode()  {}
func (*SizeofExpr) exprNode()   {}
func (*SizeofType) exprNode()   {}
func (*BinaryExpr) exprNode()   {}
func (*TernaryExpr) exprNode()  {}
func (*CommaExpr) exprNode()    {}
func (*AssignExpr) exprNode()   {}

// IntLit is an integer literal (decimal or hex -- the lexer keeps the
// lexeme, the lowerer parses its value and suffix).
type IntLit struct {
	base
	Text string // exact lexeme, e.g. "0x10", "42UL"
	Tok  token.Token
}

func (n *IntLit) Kind() Kind        { return KindIntLit }
func (n *IntLit) Children() []Node  { return nil }

// CharLit is a character literal.
type CharLit struct {
	base
	Text string
	Tok  token.Token
}

func (n *CharLit) Kind() Kind       { return KindCharLit }
func (n *CharLit) Children() []Node { return nil }

// StringLit is a single string literal.
type StringLit struct {
	base
	Text string
	Tok  token.Token
}

func (n *StringLit) Kind() Kind       { return KindStringLit }
func (n *StringLit) Children() []Node { return nil }

// ConcatLit is the concatenation of two or more adjacent string
// literals.
type ConcatLit struct {
	base
	Parts []*StringLit
}

func (n *ConcatLit) Kind() Kind { return KindConcatLit }
func (n *ConcatLit) Children() []Node {
	out := make([]Node, len(n.Parts))
	for i, p := range n.Parts {
		out[i] = p
	}
	return out
}

// Ident is an identifier used as an expression (a variable or
// function reference). The opaque UserData captured from its token is
// preserved unchanged for later passes.
type Ident struct {
	base
	Name string
	Tok  token.Token
}

func (n *Ident) Kind() Kind       { return KindIdent }
func (n *Ident) Children() []Node { return nil }

// ParenExpr is a parenthesized expression, kept explicit in the tree
// so that pretty-printing (out of scope) can reproduce source
// parenthesization; it has no semantic effect of its own.
type ParenExpr struct {
	base
	Inner Expr
}

func (n *ParenExpr) Kind() Kind       { return KindParenExpr }
func (n *ParenExpr) Children() []Node { return []Node{n.Inner} }

// CastExpr is `( Type ) Expr`.
type CastExpr struct {
	base
	Type TypeName
	Expr Expr
}

func (n *CastExpr) Kind() Kind { return KindCastExpr }
func (n *CastExpr) Children() []Node {
	return []Node{n.Type.Spec, n.Type.Declarator, n.Expr}
}

// CompoundLit is `( Type ) { Init, ... }`.
type CompoundLit struct {
	base
	Type TypeName
	Init *InitList
}

func (n *CompoundLit) Kind() Kind { return KindCompoundLit }
func (n *CompoundLit) Children() []Node {
	out := []Node{n.Type.Spec}
	if n.Type.Declarator != nil {
		out = append(out, n.Type.Declarator)
	}
	out = append(out, n.Init)
	return out
}

// MemberExpr is `a.b` or `a->b`.
type MemberExpr struct {
	base
	Object Expr
	Arrow  bool
	Name   string
}

func (n *MemberExpr) Kind() Kind       { return KindMemberExpr }
func (n *MemberExpr) Children() []Node { return []Node{n.Object} }

// IndexExpr is `a[b]`.
type IndexExpr struct {
	base
	Object Expr
	Index  Expr
}

func (n *IndexExpr) Kind() Kind       { return KindIndexExpr }
func (n *IndexExpr) Children() []Node { return []Node{n.Object, n.Index} }

// CallExpr is `f(args...)`.
type CallExpr struct {
	base
	Fn   Expr
	Args []Expr
}

func (n *CallExpr) Kind() Kind { return KindCallExpr }
func (n *CallExpr) Children() []Node {
	out := []Node{n.Fn}
	for _, a := range n.Args {
		out = append(out, a)
	}
	return out
}

// UnaryOp enumerates prefix unary operators.
type UnaryOp int

const (
	UnPreInc UnaryOp = iota
	UnPreDec
	UnPlus
	UnMinus
	UnNot
	UnBitNot
	UnAddr
	UnDeref
)

// UnaryExpr is a prefix unary operation.
type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() Kind       { return KindUnaryExpr }
func (n *UnaryExpr) Children() []Node { return []Node{n.Operand} }

// PostfixOp enumerates postfix unary operators.
type PostfixOp int

const (
	PostInc PostfixOp = iota
	PostDec
)

// PostfixExpr is a postfix ++/--.
type PostfixExpr struct {
	base
	Op      PostfixOp
	Operand Expr
}

func (n *PostfixExpr) Kind() Kind       { return KindPostfixExpr }
func (n *PostfixExpr) Children() []Node { return []Node{n.Operand} }

// SizeofExpr is `sizeof expr` or `sizeof(expr)`.
type SizeofExpr struct {
	base
	Operand Expr
}

func (n *SizeofExpr) Kind() Kind       { return KindSizeofExpr }
func (n *SizeofExpr) Children() []Node { return []Node{n.Operand} }

// SizeofType is `sizeof(type-name)`.
type SizeofType struct {
	base
	Type TypeName
}

func (n *SizeofType) Kind() Kind { return KindSizeofType }
func (n *SizeofType) Children() []Node {
	out := []Node{n.Type.Spec}
	if n.Type.Declarator != nil {
		out = append(out, n.Type.Declarator)
	}
	return out
}

// BinaryOp enumerates binary operators (arithmetic, shift, relational,
// equality, bitwise, logical).
type BinaryOp int

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinAnd
	BinXor
	BinOr
	BinLAnd
	BinLOr
)

// BinaryExpr is a left-to-right binary operation.
type BinaryExpr struct {
	base
	Op          BinaryOp
	Left, Right Expr
}

func (n *BinaryExpr) Kind() Kind       { return KindBinaryExpr }
func (n *BinaryExpr) Children() []Node { return []Node{n.Left, n.Right} }

// TernaryExpr is `cond ? then : els` (right-associative).
type TernaryExpr struct {
	base
	Cond, Then, Else Expr
}

func (n *TernaryExpr) Kind() Kind       { return KindTernaryExpr }
func (n *TernaryExpr) Children() []Node { return []Node{n.Cond, n.Then, n.Else} }

// AssignOp enumerates the `=` and compound-assignment operators.
type AssignOp int

const (
	AsgSimple AssignOp = iota
	AsgAdd
	AsgSub
	AsgMul
	AsgDiv
	AsgMod
	AsgShl
	AsgShr
	AsgAnd
	AsgOr
	AsgXor
)

// AssignExpr is a (compound) assignment, right-associative.
type AssignExpr struct {
	base
	Op          AssignOp
	Left, Right Expr
}

func (n *AssignExpr) Kind() Kind       { return KindAssignExpr }
func (n *AssignExpr) Children() []Node { return []Node{n.Left, n.Right} }

// CommaExpr is the lowest-precedence comma operator.
type CommaExpr struct {
	base
	Exprs []Expr
}

func (n *CommaExpr) Kind() Kind { return KindCommaExpr }
func (n *CommaExpr) Children() []Node {
	out := make([]Node, len(n.Exprs))
	for i, e := range n.Exprs {
		out[i] = e
	}
	return out
}

// TypeName is a type-specifier plus an optional abstract declarator --
// the production used in casts, compound literals, and sizeof(type).
type TypeName struct {
	Spec       TypeSpec
	Declarator Declarator // nil for an unadorned type
}

// InitList is the braced initializer list shared by compound literals
// and initializer declarators.
type InitList struct {
	base
	Items []InitItem
}

func (n *InitList) Kind() Kind { return KindInitList }
func (n *InitList) Children() []Node {
	out := make([]Node, 0, len(n.Items))
	for _, it := range n.Items {
		out = append(out, it.Value)
	}
	return out
}

// InitItem is one element of an initializer list, with an optional
// designator (`.field =` or `[index] =`).
type InitItem struct {
	Designator string // member name, empty if none
	Index      Expr   // array designator, nil if none
	Value      Expr
}

// NestedInitList lets a braced initializer sit inside another
// initializer list's item (an array-of-structs or struct-of-arrays
// element), since InitItem.Value is typed as Expr.
type NestedInitList struct {
	base
	List *InitList
}

func (*NestedInitList) exprNode()          {}
func (n *NestedInitList) Kind() Kind       { return KindInitList }
func (n *NestedInitList) Children() []Node { return []Node{n.List} }
