package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

// parseDeclarator implements a layered descent:
// pointer -> function -> array -> parenthesized -> identifier.
// Pointers are peeled first (they are the outermost syntactic layer,
// `* const * p` chains via recursion); what remains is a
// direct-declarator, whose base is either a parenthesized declarator
// or an identifier (or, when allowAbstract is true, nothing at all),
// extended left-to-right by any array/function suffixes.
func (p *Parser) parseDeclarator(allowAbstract bool) (ast.Declarator, error) {
	begin := p.tok().Begin
	if p.atOp("*") {
		p.advance()
		quals := p.parseQualifierList()
		inner, err := p.parseDeclarator(allowAbstract)
		if err != nil {
			return nil, err
		}
		n := &ast.PointerDeclarator{Qualifiers: quals, Inner: inner}
		n.Span(begin, p.tok().Begin)
		return n, nil
	}
	return p.parseDirectDeclarator(allowAbstract)
}

func (p *Parser) parseQualifierList() []string {
	var quals []string
	for p.at(token.KwConst) || p.at(token.KwVolatile) || p.at(token.KwRestrict) {
		quals = append(quals, p.advance().Text)
	}
	return quals
}

func (p *Parser) parseDirectDeclarator(allowAbstract bool) (ast.Declarator, error) {
	begin := p.tok().Begin
	var base ast.Declarator

	switch {
	case p.atOp("("):
		p.advance()
		inner, err := p.parseDeclarator(allowAbstract)
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		n := &ast.ParenDeclarator{Inner: inner}
		n.Span(begin, p.tok().Begin)
		base = n
	case p.at(token.Ident) && !p.Typedefs[p.tok().Text]:
		t := p.advance()
		n := &ast.IdentDeclarator{Name: t.Text}
		n.Span(begin, t.End)
		base = n
	case allowAbstract:
		n := &ast.AbstractDeclarator{}
		n.Span(begin, begin)
		base = n
	default:
		return nil, p.errf("identifier or '('")
	}

	for {
		switch {
		case p.atOp("["):
			p.advance()
			var size ast.Expr
			if !p.atOp("]") {
				e, err := p.ParseExpr()
				if err != nil {
					return nil, err
				}
				size = e
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			n := &ast.ArrayDeclarator{Inner: base, Size: size}
			n.Span(begin, p.tok().Begin)
			base = n
		case p.atOp("("):
			p.advance()
			params, ellipsis, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			n := &ast.FuncDeclarator{Inner: base, Params: params, Ellipsis: ellipsis}
			n.Span(begin, p.tok().Begin)
			base = n
		default:
			return base, nil
		}
	}
}

// parseParamList parses a function declarator's parameter list: a
// comma-separated list of `specifier-qualifier-list declarator?`
// entries, optionally terminated by a bare `...`. `(void)` is accepted
// as the zero-parameter form.
func (p *Parser) parseParamList() ([]*ast.Param, bool, error) {
	if p.atOp(")") {
		return nil, false, nil
	}
	if p.at(token.KwVoid) && p.peek(1).Kind == token.Punct && p.peek(1).Text == ")" {
		p.advance()
		return nil, false, nil
	}

	var params []*ast.Param
	for {
		if p.accept("...") {
			return params, true, nil
		}
		begin := p.tok().Begin
		spec, err := p.parseDeclSpecList()
		if err != nil {
			return nil, false, err
		}
		var decl ast.Declarator
		if p.atOp(",") || p.atOp(")") {
			// abstract: no declarator at all
		} else {
			decl, err = p.parseDeclarator(true)
			if err != nil {
				return nil, false, err
			}
		}
		prm := &ast.Param{Spec: *spec, Declarator: decl}
		prm.Span(begin, p.tok().Begin)
		params = append(params, prm)
		if !p.accept(",") {
			return params, false, nil
		}
	}
}
