package ast

func (*Declaration) declNode()     {}
func (*MacroDeclaration) declNode() {}

// SpecItemKind tags one element of a declaration-specifier list.
type SpecItemKind int

const (
	SpecStorageClass SpecItemKind = iota
	SpecTypeQualifier
	SpecFunctionSpecifier
	SpecTypeSpecifier
	SpecAttribute
)

// SpecItem is one element of a heterogeneous declaration-specifier
// list. Storage-class/qualifier/function-specifier items carry their
// keyword in Keyword; a type-specifier item carries its parsed
// TypeSpec in Type instead.
type SpecItem struct {
	ItemKind SpecItemKind
	Keyword  string   // "static", "const", "inline", "__attribute__" name, ...
	Type     TypeSpec // set iff ItemKind == SpecTypeSpecifier
}

// DeclSpecList is the ordered, heterogeneous list of storage-class,
// type-qualifier, function-specifier, type-specifier and
// attribute-specifier items that precedes every declarator list.
type DeclSpecList struct {
	base
	Items []SpecItem
}

func (n *DeclSpecList) Kind() Kind { return KindDeclSpec }
func (n *DeclSpecList) Children() []Node {
	var out []Node
	for _, it := range n.Items {
		if it.ItemKind == SpecTypeSpecifier && it.Type != nil {
			out = append(out, it.Type)
		}
	}
	return out
}

// TypeSpecifier returns the single type-specifier item's TypeSpec, or
// nil if the list carries none (e.g. an implicit-int declaration).
func (n *DeclSpecList) TypeSpecifier() TypeSpec {
	for _, it := range n.Items {
		if it.ItemKind == SpecTypeSpecifier {
			return it.Type
		}
	}
	return nil
}

// HasStorageClass reports whether the list carries the named
// storage-class or function-specifier keyword (e.g. "typedef",
// "static", "extern", "inline").
func (n *DeclSpecList) HasStorageClass(kw string) bool {
	for _, it := range n.Items {
		if (it.ItemKind == SpecStorageClass || it.ItemKind == SpecFunctionSpecifier) && it.Keyword == kw {
			return true
		}
	}
	return false
}

// InitDeclarator is one `declarator [= initializer]` entry in a
// declaration's comma-separated declarator list. Body is non-nil only
// when the declarator is a function declarator followed by a function
// body rather than `;`.
type InitDeclarator struct {
	base
	Declarator  Declarator
	Init        Expr      // simple initializer, mutually exclusive with InitList
	InitList    *InitList // braced initializer
	Body        *BlockStmt
}

func (n *InitDeclarator) Kind() Kind { return KindInitDeclarator }
func (n *InitDeclarator) Children() []Node {
	out := []Node{n.Declarator}
	if n.Init != nil {
		out = append(out, n.Init)
	}
	if n.InitList != nil {
		out = append(out, n.InitList)
	}
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}

// Declaration is `declaration-specifiers init-declarator-list ;` --
// the production that yields both plain variable declarations and, by
// way of a single InitDeclarator whose Declarator is a FuncDeclarator
// with a Body, function definitions.
type Declaration struct {
	base
	Spec         DeclSpecList
	Declarators  []*InitDeclarator
}

func (n *Declaration) Kind() Kind { return KindDeclaration }
func (n *Declaration) Children() []Node {
	out := []Node{&n.Spec}
	for _, d := range n.Declarators {
		out = append(out, d)
	}
	return out
}

// MacroDeclaration is a call-like construct admitted in declarator
// position to accommodate function-like macros, e.g.
// `SOME_MACRO(x, y) int field;` inside a struct body, or a bare
// top-level `REGISTER_DRIVER(name);`. The parser records the macro
// name and argument expressions; expansion is performed by pkg/macro.
type MacroDeclaration struct {
	base
	Name string
	Args []Expr
	// Trailing holds a declaration the macro call decorates, when the
	// macro appears where an ordinary declarator was expected (e.g.
	// struct-member position); nil for a bare macro-as-declaration.
	Trailing *Declaration
}

func (n *MacroDeclaration) Kind() Kind { return KindMacroDeclaration }
func (n *MacroDeclaration) Children() []Node {
	out := make([]Node, 0, len(n.Args)+1)
	for _, a := range n.Args {
		out = append(out, a)
	}
	if n.Trailing != nil {
		out = append(out, n.Trailing)
	}
	return out
}
