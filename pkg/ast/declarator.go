package ast

func (*IdentDeclarator) declaratorNode()    {}
func (*AbstractDeclarator) declaratorNode() {}
func (*ParenDeclarator) declaratorNode()    {}
func (*ArrayDeclarator) declaratorNode()    {}
func (*FuncDeclarator) declaratorNode()     {}
func (*PointerDeclarator) declaratorNode()  {}

// IdentDeclarator is the leaf declarator carrying the declared name.
type IdentDeclarator struct {
	base
	Name string
}

func (n *IdentDeclarator) Kind() Kind       { return KindIdentDeclarator }
func (n *IdentDeclarator) Children() []Node { return nil }

// AbstractDeclarator is the explicit "no identifier here" leaf, valid
// in type-name position (casts, sizeof, parameters without a name) and
// rejected by the parser everywhere else.
type AbstractDeclarator struct {
	base
}

func (n *AbstractDeclarator) Kind() Kind       { return KindAbstractDeclarator }
func (n *AbstractDeclarator) Children() []Node { return nil }

// ParenDeclarator is `( Inner )`, used to escape the default
// left-to-right composition order, e.g. `(*f)(int)`: a pointer to a
// function, not a function returning a pointer.
type ParenDeclarator struct {
	base
	Inner Declarator
}

func (n *ParenDeclarator) Kind() Kind       { return KindParenDeclarator }
func (n *ParenDeclarator) Children() []Node { return []Node{n.Inner} }

// ArrayDeclarator is `Inner[Size]`; Size is nil for `Inner[]`.
type ArrayDeclarator struct {
	base
	Inner Declarator
	Size  Expr
}

func (n *ArrayDeclarator) Kind() Kind { return KindArrayDeclarator }
func (n *ArrayDeclarator) Children() []Node {
	if n.Size == nil {
		return []Node{n.Inner}
	}
	return []Node{n.Inner, n.Size}
}

// FuncDeclarator is `Inner(params...)`, with an optional trailing
// ellipsis for variadic functions.
type FuncDeclarator struct {
	base
	Inner    Declarator
	Params   []*Param
	Ellipsis bool
}

func (n *FuncDeclarator) Kind() Kind { return KindFuncDeclarator }
func (n *FuncDeclarator) Children() []Node {
	out := []Node{n.Inner}
	for _, p := range n.Params {
		out = append(out, p)
	}
	return out
}

// Param is one parameter in a function declarator's parameter list.
type Param struct {
	base
	Spec       DeclSpecList
	Declarator Declarator // may be nil (abstract) in a prototype
}

func (n *Param) Kind() Kind { return KindParam }
func (n *Param) Children() []Node {
	out := []Node{&n.Spec}
	if n.Declarator != nil {
		out = append(out, n.Declarator)
	}
	return out
}

// PointerDeclarator is `* qualifiers Inner`.
type PointerDeclarator struct {
	base
	Qualifiers []string
	Inner      Declarator
}

func (n *PointerDeclarator) Kind() Kind       { return KindPointerDeclarator }
func (n *PointerDeclarator) Children() []Node { return []Node{n.Inner} }

// DeclaratorName walks a declarator tree to find the identifier it
// declares, or "" for a purely abstract declarator.
func DeclaratorName(d Declarator) string {
	for d != nil {
		switch t := d.(type) {
		case *IdentDeclarator:
			return t.Name
		case *AbstractDeclarator:
			return ""
		case *ParenDeclarator:
			d = t.Inner
		case *ArrayDeclarator:
			d = t.Inner
		case *FuncDeclarator:
			d = t.Inner
		case *PointerDeclarator:
			d = t.Inner
		default:
			return ""
		}
	}
	return ""
}
