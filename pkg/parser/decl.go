package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

var storageClassKeywords = map[token.Kind]bool{
	token.KwTypedef: true, token.KwExtern: true, token.KwStatic: true,
	token.KwAuto: true, token.KwRegister: true,
}

var qualifierKeywords = map[token.Kind]bool{
	token.KwConst: true, token.KwVolatile: true, token.KwRestrict: true,
}

// parseDeclSpecList parses the heterogeneous declaration-specifier
// list: storage-class, type-qualifier,
// function-specifier, type-specifier and attribute-specifier items in
// any order, stopping before a second identifier that could begin a
// declarator once a type specifier is already present -- with up to
// ExtraDeclIdents extra identifiers tolerated first, to accommodate
// macro decoration tokens (e.g. calling-convention macros) between the
// type and the declared name.
func (p *Parser) parseDeclSpecList() (*ast.DeclSpecList, error) {
	begin := p.tok().Begin
	spec := &ast.DeclSpecList{}
	hasTypeSpec := false
	extraIdents := 0

	for {
		t := p.tok()
		switch {
		case storageClassKeywords[t.Kind]:
			p.advance()
			spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecStorageClass, Keyword: t.Text})
		case qualifierKeywords[t.Kind]:
			p.advance()
			spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecTypeQualifier, Keyword: t.Text})
		case t.Kind == token.KwInline:
			p.advance()
			spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecFunctionSpecifier, Keyword: t.Text})
		case t.Kind == token.KwAttribute:
			for _, a := range p.parseAttributeSpecifiers() {
				spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecAttribute, Keyword: a})
			}
		case !hasTypeSpec && p.startsTypeSpecifier():
			ts, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			hasTypeSpec = true
			spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecTypeSpecifier, Type: ts})
		case hasTypeSpec && t.Kind == token.Ident && extraIdents < p.ExtraDeclIdents && !declaratorFollows(p):
			p.advance()
			extraIdents++
			spec.Items = append(spec.Items, ast.SpecItem{ItemKind: ast.SpecAttribute, Keyword: t.Text})
		default:
			spec.Span(begin, t.Begin)
			return spec, nil
		}
	}
}

// declaratorFollows is a one-token lookahead heuristic: when the
// current identifier is immediately followed by something that can
// only continue a declarator (`(`, `[`, `;`, `,`, `=`), we treat it as
// the declared name rather than another decoration token, even if the
// ExtraDeclIdents budget would otherwise allow consuming it.
func declaratorFollows(p *Parser) bool {
	switch p.peek(1).Text {
	case "(", "[", ";", ",", "=":
		return true
	}
	return false
}

// parseExternalDecl parses one top-level declaration: an ordinary
// declaration-specifiers + init-declarator-list (where a single
// declarator may be a function declarator followed by a body, i.e. a
// function definition), or a macro-based declaration.
func (p *Parser) parseExternalDecl() (ast.Decl, error) {
	if isMacroDeclStart(p) {
		return p.parseMacroDeclaration()
	}
	return p.parseDeclaration()
}

// isMacroDeclStart recognizes `IDENT (` at a position where a
// declaration-specifier could not otherwise begin -- the admission of
// a call-like macro declaration in declarator position.
func isMacroDeclStart(p *Parser) bool {
	t := p.tok()
	if t.Kind != token.Ident || p.Typedefs[t.Text] {
		return false
	}
	nxt := p.peek(1)
	return nxt.Kind == token.Punct && nxt.Text == "("
}

// parseMacroDeclaration parses `NAME ( args... ) [; | trailing-decl]`.
func (p *Parser) parseMacroDeclaration() (*ast.MacroDeclaration, error) {
	begin := p.tok().Begin
	name := p.advance().Text
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.atOp(")") {
		for {
			a, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.accept(",") {
				break
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	n := &ast.MacroDeclaration{Name: name, Args: args}
	if p.accept(";") {
		n.Span(begin, p.tok().Begin)
		return n, nil
	}
	// Decorated form: the macro call precedes an ordinary declaration,
	// e.g. a struct-member macro that expands to a typed field.
	decl, err := p.parseDeclaration()
	if err != nil {
		return nil, err
	}
	n.Trailing = decl
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseDeclaration parses `declaration-specifiers init-declarator-list
// ;`, recognizing a function-definition as the special case of a
// single declarator whose Declarator is a FuncDeclarator followed by a
// brace-delimited body instead of `;`.
func (p *Parser) parseDeclaration() (*ast.Declaration, error) {
	begin := p.tok().Begin
	spec, err := p.parseDeclSpecList()
	if err != nil {
		return nil, err
	}
	decl := &ast.Declaration{Spec: *spec}

	if p.accept(";") {
		decl.Span(begin, p.tok().Begin)
		return decl, nil
	}

	for {
		dbegin := p.tok().Begin
		d, err := p.parseDeclarator(false)
		if err != nil {
			return nil, err
		}
		id := &ast.InitDeclarator{Declarator: d}

		if _, isFunc := d.(*ast.FuncDeclarator); isFunc && p.atOp("{") {
			body, err := p.parseBlockStmt()
			if err != nil {
				return nil, err
			}
			id.Body = body
			id.Span(dbegin, p.tok().Begin)
			decl.Declarators = append(decl.Declarators, id)
			decl.Span(begin, p.tok().Begin)
			if spec.HasStorageClass("typedef") {
				p.Typedefs[ast.DeclaratorName(d)] = true
			}
			return decl, nil
		}

		if p.accept("=") {
			if p.atOp("{") {
				il, err := p.parseInitList()
				if err != nil {
					return nil, err
				}
				id.InitList = il
			} else {
				e, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				id.Init = e
			}
		}
		id.Span(dbegin, p.tok().Begin)
		decl.Declarators = append(decl.Declarators, id)

		if spec.HasStorageClass("typedef") {
			p.Typedefs[ast.DeclaratorName(d)] = true
		}

		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	decl.Span(begin, p.tok().Begin)
	return decl, nil
}

// parseInitList parses a braced initializer list, with optional
// `.member =` / `[index] =` designators on each element.
func (p *Parser) parseInitList() (*ast.InitList, error) {
	begin := p.tok().Begin
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	n := &ast.InitList{}
	for !p.atOp("}") && !p.at(token.EOF) {
		item, err := p.parseInitItem()
		if err != nil {
			return nil, err
		}
		n.Items = append(n.Items, item)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseInitItem() (ast.InitItem, error) {
	var item ast.InitItem
	if p.accept(".") {
		if !p.at(token.Ident) {
			return item, p.errf("member designator")
		}
		item.Designator = p.advance().Text
		if err := p.expect("="); err != nil {
			return item, err
		}
	} else if p.atOp("[") {
		p.advance()
		idx, err := p.parseAssignExpr()
		if err != nil {
			return item, err
		}
		if err := p.expect("]"); err != nil {
			return item, err
		}
		if err := p.expect("="); err != nil {
			return item, err
		}
		item.Index = idx
	}
	if p.atOp("{") {
		begin := p.tok().Begin
		il, err := p.parseInitList()
		if err != nil {
			return item, err
		}
		n := &ast.NestedInitList{List: il}
		n.Span(begin, p.tok().Begin)
		item.Value = n
		return item, nil
	}
	v, err := p.parseAssignExpr()
	if err != nil {
		return item, err
	}
	item.Value = v
	return item, nil
}
