package ast

func (*BasicType) typeSpecNode()  {}
func (*IdentType) typeSpecNode()  {}
func (*RecordType) typeSpecNode() {}
func (*EnumType) typeSpecNode()   {}

// BasicType is a basic type specifier keyword (void, char, int,
// short, long, signed, unsigned, float, double, __int128 -- multiple
// keywords combine, e.g. "unsigned long int").
type BasicType struct {
	base
	Keywords []string
}

func (n *BasicType) Kind() Kind       { return KindBasicType }
func (n *BasicType) Children() []Node { return nil }

// IdentType is a type name introduced by a prior typedef.
type IdentType struct {
	base
	Name string
}

func (n *IdentType) Kind() Kind       { return KindIdentType }
func (n *IdentType) Children() []Node { return nil }

// RecordKind distinguishes struct from union.
type RecordKind int

const (
	RecordStruct RecordKind = iota
	RecordUnion
)

// RecordType is a struct/union specifier: `struct Name { members }`,
// `struct Name`, or `struct { members }` (anonymous).
type RecordType struct {
	base
	RecordKind RecordKind
	Name       string // empty if anonymous
	Members    []*Member
	HasBody    bool
	Attrs      []string
}

func (n *RecordType) Kind() Kind { return KindRecordType }
func (n *RecordType) Children() []Node {
	out := make([]Node, len(n.Members))
	for i, m := range n.Members {
		out[i] = m
	}
	return out
}

// Member is one struct/union member declaration, or an anonymous
// struct/union member when Declarator is nil and Spec is itself a
// RecordType with no following declarator.
type Member struct {
	base
	Spec       DeclSpecList
	Declarator Declarator // nil for an anonymous record member
	BitSize    Expr       // non-nil for a bit-field member
}

func (n *Member) Kind() Kind { return KindMember }
func (n *Member) Children() []Node {
	out := []Node{&n.Spec}
	if n.Declarator != nil {
		out = append(out, n.Declarator)
	}
	if n.BitSize != nil {
		out = append(out, n.BitSize)
	}
	return out
}

// EnumType is an enum specifier.
type EnumType struct {
	base
	Name       string
	Enumerators []*Enumerator
	HasBody    bool
}

func (n *EnumType) Kind() Kind { return KindEnumType }
func (n *EnumType) Children() []Node {
	out := make([]Node, len(n.Enumerators))
	for i, e := range n.Enumerators {
		out[i] = e
	}
	return out
}

// Enumerator is one `NAME` or `NAME = expr` enum element; anonymous
// enumerators with no explicit name never occur (the grammar requires
// an identifier) but the element itself may omit the initializer.
type Enumerator struct {
	base
	Name  string
	Value Expr // nil if implicit (previous + 1)
}

func (n *Enumerator) Kind() Kind { return KindEnumerator }
func (n *Enumerator) Children() []Node {
	if n.Value == nil {
		return nil
	}
	return []Node{n.Value}
}
