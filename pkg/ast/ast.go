// Package ast defines the abstract syntax tree produced by pkg/parser.
// Every node is a tagged sum: it carries a Kind and exposes its
// children generically through Children(), so that a single recursive
// Walk (iterator.go) can destroy, print, or fold over any subtree
// without a type switch at every call site. Concrete node types still
// support Go type switches for callers that need the specific shape.
//
// Children are owned exclusively by their parent. Go's garbage
// collector reclaims a subtree once nothing references it -- there is
// no explicit destroy step -- but the exclusive-ownership invariant
// still matters: no two parents ever share a child pointer, so a
// silent sub-parser that discards its partial tree on rollback simply
// drops the root reference and the whole subtree becomes unreachable.
package ast

import "zcc/pkg/token"

// Position aliases the token package's source position so AST nodes
// don't need to import token directly in most call sites.
type Position = token.Position

// Kind tags every node with its concrete shape.
type Kind int

const (
	KindInvalid Kind = iota

	// Expressions
	KindIntLit
	KindCharLit
	KindStringLit
	KindConcatLit
	KindIdent
	KindParenExpr
	KindCastExpr
	KindCompoundLit
	KindMemberExpr
	KindIndexExpr
	KindCallExpr
	KindUnaryExpr
	KindPostfixExpr
	KindSizeofExpr
	KindSizeofType
	KindBinaryExpr
	KindTernaryExpr
	KindCommaExpr
	KindAssignExpr
	KindInitList

	// Type specifiers
	KindBasicType
	KindIdentType
	KindRecordType
	KindEnumType

	// Declarators
	KindIdentDeclarator
	KindAbstractDeclarator
	KindParenDeclarator
	KindArrayDeclarator
	KindFuncDeclarator
	KindPointerDeclarator

	// Declarations
	KindDeclSpec
	KindInitDeclarator
	KindDeclaration
	KindMacroDeclaration
	KindParam
	KindMember
	KindEnumerator

	// Statements
	KindBlockStmt
	KindExprStmt
	KindDeclStmt
	KindNullStmt
	KindGotoStmt
	KindReturnStmt
	KindIfStmt
	KindWhileStmt
	KindDoWhileStmt
	KindForStmt
	KindSwitchStmt
	KindCaseStmt
	KindLabelStmt
	KindLoopMacroStmt
	KindBreakStmt
	KindContinueStmt
	KindAsmStmt

	KindFile
)

// Node is the base interface every AST node implements.
type Node interface {
	Kind() Kind
	Pos() Position
	End() Position
	Children() []Node
}

// base is embedded by every concrete node to carry its span. The
// fields are exported so that pkg/parser, which constructs nodes
// field-by-field as it recognizes each production, can stamp the span
// directly rather than going through a constructor per node type.
type base struct {
	Begin, Finish Position
}

func (b base) Pos() Position { return b.Begin }
func (b base) End() Position { return b.Finish }

// Span sets a node's source span. It is exported on base, and promoted
// through the embedding, so parser code can write `n.Span(begin, end)`
// once a production's extent is known, without needing a dedicated
// setter per node type.
func (b *base) Span(begin, end Position) {
	b.Begin, b.Finish = begin, end
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeSpec is implemented by every type-specifier node.
type TypeSpec interface {
	Node
	typeSpecNode()
}

// Declarator is implemented by every declarator node.
type Declarator interface {
	Node
	declaratorNode()
}

// Decl is implemented by every top-level or block-scope declaration.
type Decl interface {
	Node
	declNode()
}

// File is the root of a parsed translation unit: an ordered sequence
// of global declarations and global macro-based declarations.
type File struct {
	base
	Name  string
	Decls []Decl
}

func (f *File) Kind() Kind { return KindFile }
func (f *File) Children() []Node {
	out := make([]Node, len(f.Decls))
	for i, d := range f.Decls {
		out[i] = d
	}
	return out
}
