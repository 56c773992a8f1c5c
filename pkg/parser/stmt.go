package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

// parseBlockStmt parses a brace-delimited statement list.
func (p *Parser) parseBlockStmt() (*ast.BlockStmt, error) {
	begin := p.tok().Begin
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	n := &ast.BlockStmt{Braced: true}
	for !p.atOp("}") && !p.at(token.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		n.Stmts = append(n.Stmts, s)
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// wrapStmt lifts a single dangling statement (an `if`/`while`/`for`
// body with no braces) into an unbraced BlockStmt of one element, so
// every control-flow body has the same node shape.
func wrapStmt(s ast.Stmt) *ast.BlockStmt {
	n := &ast.BlockStmt{Braced: false, Stmts: []ast.Stmt{s}}
	n.Span(s.Pos(), s.End())
	return n
}

// parseStmt dispatches on the current token to the statement
// production it introduces; a bare identifier followed by `:` is a
// label, and a declaration is distinguished from an expression
// statement by trial-parsing it in a silent sub-parser first.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tok().Kind {
	case token.Punct:
		if p.atOp("{") {
			return p.parseBlockStmt()
		}
		if p.atOp(";") {
			begin := p.tok().Begin
			p.advance()
			n := &ast.NullStmt{}
			n.Span(begin, p.tok().Begin)
			return n, nil
		}
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwSwitch:
		return p.parseSwitchStmt()
	case token.KwCase, token.KwDefault:
		return p.parseCaseStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwBreak:
		return p.parseBreakStmt()
	case token.KwContinue:
		return p.parseContinueStmt()
	case token.KwGoto:
		return p.parseGotoStmt()
	case token.KwAsm:
		return p.parseAsmStmt()
	case token.Ident:
		if p.peek(1).Kind == token.Punct && p.peek(1).Text == ":" {
			return p.parseLabelStmt()
		}
	}
	return p.parseDeclOrExprStmt()
}

func (p *Parser) parseBreakStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n := &ast.BreakStmt{}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseContinueStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n := &ast.ContinueStmt{}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseGotoStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if !p.at(token.Ident) {
		return nil, p.errf("label name")
	}
	label := p.advance().Text
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n := &ast.GotoStmt{Label: label}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseLabelStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	name := p.advance().Text
	p.advance() // ':'
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	n := &ast.LabelStmt{Name: name, Stmt: s}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	n := &ast.ReturnStmt{}
	if !p.atOp(";") {
		v, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		n.Value = v
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	n := &ast.IfStmt{Cond: cond, Then: then}
	if p.at(token.KwElse) {
		p.advance()
		els, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		n.Else = els
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseBody parses a control-flow statement body: a braced block as
// itself, or a single statement wrapped in an unbraced BlockStmt.
func (p *Parser) parseBody() (ast.Stmt, error) {
	if p.atOp("{") {
		return p.parseBlockStmt()
	}
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return wrapStmt(s), nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	n := &ast.WhileStmt{Cond: cond, Body: body}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseDoWhileStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if p.at(token.KwWhile) {
		p.advance()
	} else {
		return nil, p.errf("'while'")
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n := &ast.DoWhileStmt{Body: body, Cond: cond}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var init ast.Stmt
	if !p.atOp(";") {
		s, err := p.parseDeclOrExprStmt()
		if err != nil {
			return nil, err
		}
		init = s
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.atOp(";") {
		c, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	var post ast.Expr
	if !p.atOp(")") {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		post = e
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	n := &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseSwitchStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	tag, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	n := &ast.SwitchStmt{Tag: tag, Body: body}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseCaseStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	n := &ast.CaseStmt{}
	if p.at(token.KwDefault) {
		p.advance()
		n.Default = true
	} else {
		p.advance() // 'case'
		v, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		n.Value = v
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseDeclOrExprStmt resolves the statement-level ambiguity between a
// declaration and an expression statement by trial-parsing the
// declaration in a silent sub-parser first; on failure, it falls back
// to an expression statement, which also handles the loop-macro
// reinterpretation: a call expression not followed
// by `;` is treated as a loop-macro invocation whose body follows.
func (p *Parser) parseDeclOrExprStmt() (ast.Stmt, error) {
	if p.startsTypeSpecifier() || storageClassKeywords[p.tok().Kind] || qualifierKeywords[p.tok().Kind] || p.at(token.KwInline) {
		begin := p.tok().Begin
		sub := p.Sub()
		if decl, err := sub.parseDeclaration(); err == nil {
			p.Commit(sub)
			n := &ast.DeclStmt{Decl: decl}
			n.Span(begin, p.tok().Begin)
			return n, nil
		}
	}

	begin := p.tok().Begin
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}

	if call, ok := e.(*ast.CallExpr); ok && !p.atOp(";") {
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		n := &ast.LoopMacroStmt{Call: call, Body: body}
		n.Span(begin, p.tok().Begin)
		return n, nil
	}

	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n := &ast.ExprStmt{X: e}
	n.Span(begin, p.tok().Begin)
	return n, nil
}
