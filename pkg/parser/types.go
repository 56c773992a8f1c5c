package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

var basicTypeKeywords = map[token.Kind]bool{
	token.KwVoid: true, token.KwChar: true, token.KwShort: true,
	token.KwInt: true, token.KwLong: true, token.KwFloat: true,
	token.KwDouble: true, token.KwSigned: true, token.KwUnsigned: true,
	token.KwInt128: true,
}

// startsTypeSpecifier reports whether the current token can begin a
// type-specifier, without consuming anything.
func (p *Parser) startsTypeSpecifier() bool {
	t := p.tok()
	if basicTypeKeywords[t.Kind] || t.Kind == token.KwStruct || t.Kind == token.KwUnion || t.Kind == token.KwEnum {
		return true
	}
	return t.Kind == token.Ident && p.Typedefs[t.Text]
}

// parseTypeSpecifier parses exactly one type-specifier: a basic-type
// keyword run, a typedef identifier, or a struct/union/enum.
func (p *Parser) parseTypeSpecifier() (ast.TypeSpec, error) {
	begin := p.tok().Begin
	switch {
	case p.at(token.KwStruct) || p.at(token.KwUnion):
		return p.parseRecordType()
	case p.at(token.KwEnum):
		return p.parseEnumType()
	case p.at(token.Ident) && p.Typedefs[p.tok().Text]:
		t := p.advance()
		n := &ast.IdentType{Name: t.Text}
		n.Span(begin, t.End)
		return n, nil
	case basicTypeKeywords[p.tok().Kind]:
		var kws []string
		for basicTypeKeywords[p.tok().Kind] {
			kws = append(kws, p.advance().Text)
		}
		n := &ast.BasicType{Keywords: kws}
		n.Span(begin, p.tok().Begin)
		return n, nil
	}
	return nil, p.errf("type specifier")
}

func (p *Parser) parseRecordType() (*ast.RecordType, error) {
	begin := p.tok().Begin
	kind := ast.RecordStruct
	if p.at(token.KwUnion) {
		kind = ast.RecordUnion
	}
	p.advance()

	var attrs []string
	attrs = append(attrs, p.parseAttributeSpecifiers()...)

	name := ""
	if p.at(token.Ident) {
		name = p.advance().Text
	}
	attrs = append(attrs, p.parseAttributeSpecifiers()...)

	n := &ast.RecordType{RecordKind: kind, Name: name, Attrs: attrs}
	if p.accept("{") {
		n.HasBody = true
		for !p.atOp("}") && !p.at(token.EOF) {
			m, err := p.parseMember()
			if err != nil {
				return nil, err
			}
			n.Members = append(n.Members, m)
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseAttributeSpecifiers parses zero or more
// `__attribute__ ( ( ... ) )` specifiers, returning their raw token
// text (attribute contents are not interpreted by this compiler core).
func (p *Parser) parseAttributeSpecifiers() []string {
	var out []string
	for p.at(token.KwAttribute) {
		p.advance()
		depth := 0
		var text []byte
		for {
			t := p.tok()
			if t.Kind == token.EOF {
				break
			}
			if t.Text == "(" {
				depth++
			} else if t.Text == ")" {
				depth--
			}
			text = append(text, t.Text...)
			p.advance()
			if depth == 0 {
				break
			}
		}
		out = append(out, string(text))
	}
	return out
}

// parseMember parses one struct/union member-declaration: tried first
// as an ordinary specifier-qualifier-list + declarator list and, if
// that fails, as a macro-based declaration; a second failure reports
// the first error.
func (p *Parser) parseMember() (*ast.Member, error) {
	ordinary := p.Sub()
	m, err := ordinary.parseOrdinaryMember()
	if err == nil {
		p.Commit(ordinary)
		return m, nil
	}
	firstErr := err

	macro := p.Sub()
	if m, merr := macro.parseMacroMember(); merr == nil {
		p.Commit(macro)
		return m, nil
	}
	return nil, firstErr
}

func (p *Parser) parseOrdinaryMember() (*ast.Member, error) {
	begin := p.tok().Begin
	spec, err := p.parseDeclSpecList()
	if err != nil {
		return nil, err
	}

	// Anonymous struct/union member: the specifier is itself a record
	// and no declarator follows.
	if _, ok := spec.TypeSpecifier().(*ast.RecordType); ok && p.atOp(";") {
		p.advance()
		m := &ast.Member{Spec: *spec}
		m.Span(begin, p.tok().Begin)
		return m, nil
	}

	decl, err := p.parseDeclarator(false)
	if err != nil {
		return nil, err
	}
	m := &ast.Member{Spec: *spec, Declarator: decl}
	if p.accept(":") {
		bits, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		m.BitSize = bits
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	m.Span(begin, p.tok().Begin)
	return m, nil
}

func (p *Parser) parseMacroMember() (*ast.Member, error) {
	begin := p.tok().Begin
	decl, err := p.parseMacroDeclaration()
	if err != nil {
		return nil, err
	}
	m := &ast.Member{}
	m.Span(begin, p.tok().Begin)
	_ = decl
	return m, nil
}

func (p *Parser) parseEnumType() (*ast.EnumType, error) {
	begin := p.tok().Begin
	p.advance() // 'enum'
	name := ""
	if p.at(token.Ident) {
		name = p.advance().Text
	}
	n := &ast.EnumType{Name: name}
	if p.accept("{") {
		n.HasBody = true
		for !p.atOp("}") {
			if !p.at(token.Ident) {
				return nil, p.errf("enumerator name")
			}
			ebegin := p.tok().Begin
			ename := p.advance().Text
			e := &ast.Enumerator{Name: ename}
			if p.accept("=") {
				v, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				e.Value = v
			}
			e.Span(ebegin, p.tok().Begin)
			n.Enumerators = append(n.Enumerators, e)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseTypeName parses a type-name: a specifier-qualifier-list
// followed by an optional abstract declarator. Used by casts,
// compound literals, and sizeof(type).
func (p *Parser) parseTypeName() (ast.TypeName, error) {
	spec, err := p.parseDeclSpecList()
	if err != nil {
		return ast.TypeName{}, err
	}
	var decl ast.Declarator
	if p.atOp("*") || p.atOp("(") || p.atOp("[") {
		decl, err = p.parseDeclarator(true)
		if err != nil {
			return ast.TypeName{}, err
		}
	}
	return ast.TypeName{Spec: spec.TypeSpecifier(), Declarator: decl}, nil
}
