package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

// ParseExpr is the top-level, comma-operator entry point (precedence
// level 13, the lowest).
func (p *Parser) ParseExpr() (ast.Expr, error) { return p.parseCommaExpr() }

func (p *Parser) parseCommaExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	first, err := p.parseConcatExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	exprs := []ast.Expr{first}
	for p.accept(",") {
		e, err := p.parseConcatExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	n := &ast.CommaExpr{Exprs: exprs}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseConcatExpr implements precedence level 12: adjacent
// string literals (and an identifier immediately followed by a string,
// e.g. a wide-string prefix -- that form is not merged) concatenate
// left-associatively. It sits
// between the comma operator and assignment in the table, so its
// operand is an assignment-expression.
func (p *Parser) parseConcatExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	first, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	lit, ok := first.(*ast.StringLit)
	if !ok || !p.at(token.String) {
		return first, nil
	}
	parts := []*ast.StringLit{lit}
	for p.at(token.String) {
		t := p.advance()
		s := &ast.StringLit{Text: t.Text, Tok: t}
		s.Span(t.Begin, t.End)
		parts = append(parts, s)
	}
	n := &ast.ConcatLit{Parts: parts}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

var assignOps = map[string]ast.AssignOp{
	"=": ast.AsgSimple, "+=": ast.AsgAdd, "-=": ast.AsgSub,
	"*=": ast.AsgMul, "/=": ast.AsgDiv, "%=": ast.AsgMod,
	"<<=": ast.AsgShl, ">>=": ast.AsgShr,
	"&=": ast.AsgAnd, "|=": ast.AsgOr, "^=": ast.AsgXor,
}

// parseAssignExpr implements precedence level 11 (right-associative).
// It is also the production used for call arguments and initializer
// items, which in C take an assignment-expression, not a full
// comma-expression.
func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	left, err := p.parseTernaryExpr()
	if err != nil {
		return nil, err
	}
	t := p.tok()
	if t.Kind != token.Op {
		return left, nil
	}
	op, ok := assignOps[t.Text]
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	n := &ast.AssignExpr{Op: op, Left: left, Right: right}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parseTernaryExpr implements precedence level 10 (right-associative).
func (p *Parser) parseTernaryExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return cond, nil
	}
	then, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	n := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// binaryLevel is one row of the left-to-right binary-operator table
// (precedence levels 3 through 9), ordered loosest-binds-first so that
// parseBinary(0) is logical-or and the recursion bottoms out at
// multiplicative, then prefix/postfix/primary.
type binaryLevel struct {
	ops map[string]ast.BinaryOp
}

var binaryLevels = []binaryLevel{
	{ops: map[string]ast.BinaryOp{"||": ast.BinLOr}},
	{ops: map[string]ast.BinaryOp{"&&": ast.BinLAnd}},
	{ops: map[string]ast.BinaryOp{"|": ast.BinOr}},
	{ops: map[string]ast.BinaryOp{"^": ast.BinXor}},
	{ops: map[string]ast.BinaryOp{"&": ast.BinAnd}},
	{ops: map[string]ast.BinaryOp{"==": ast.BinEq, "!=": ast.BinNe}},
	{ops: map[string]ast.BinaryOp{"<": ast.BinLt, "<=": ast.BinLe, ">": ast.BinGt, ">=": ast.BinGe}},
	{ops: map[string]ast.BinaryOp{"<<": ast.BinShl, ">>": ast.BinShr}},
	{ops: map[string]ast.BinaryOp{"+": ast.BinAdd, "-": ast.BinSub}},
	{ops: map[string]ast.BinaryOp{"*": ast.BinMul, "/": ast.BinDiv, "%": ast.BinMod}},
}

// parseBinary climbs the left-to-right binary levels via a loop at
// each level, recursing into the next tighter level for each operand.
func (p *Parser) parseBinary(level int) (ast.Expr, error) {
	if level >= len(binaryLevels) {
		return p.parsePrefixExpr()
	}
	begin := p.tok().Begin
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	ops := binaryLevels[level].ops
	for {
		t := p.tok()
		if t.Kind != token.Op {
			break
		}
		op, ok := ops[t.Text]
		if !ok {
			break
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.Span(begin, p.tok().Begin)
		left = n
	}
	return left, nil
}

var prefixOps = map[string]ast.UnaryOp{
	"+": ast.UnPlus, "-": ast.UnMinus, "!": ast.UnNot, "~": ast.UnBitNot,
	"*": ast.UnDeref, "&": ast.UnAddr,
}

// parsePrefixExpr implements precedence level 2: prefix ++ -- + - ! ~
// * & sizeof. Recurses on itself so that e.g. `**p` and `!!x` compose.
func (p *Parser) parsePrefixExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	t := p.tok()

	if t.Kind == token.Op && (t.Text == "++" || t.Text == "--") {
		p.advance()
		operand, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		op := ast.UnPreInc
		if t.Text == "--" {
			op = ast.UnPreDec
		}
		n := &ast.UnaryExpr{Op: op, Operand: operand}
		n.Span(begin, p.tok().Begin)
		return n, nil
	}

	if t.Kind == token.Op {
		if op, ok := prefixOps[t.Text]; ok {
			p.advance()
			operand, err := p.parsePrefixExpr()
			if err != nil {
				return nil, err
			}
			n := &ast.UnaryExpr{Op: op, Operand: operand}
			n.Span(begin, p.tok().Begin)
			return n, nil
		}
	}

	if t.Kind == token.KwSizeof {
		return p.parseSizeof()
	}

	return p.parsePostfixExpr()
}

// parseSizeof disambiguates `sizeof ( type-name )` from
// `sizeof unary-expression` and from `sizeof ( expr )` with a silent
// sub-parser, following the same parenthesized-production strategy
// used elsewhere in this parser.
func (p *Parser) parseSizeof() (ast.Expr, error) {
	begin := p.tok().Begin
	p.advance() // consume 'sizeof'

	if p.atOp("(") {
		sub := p.Sub()
		sub.advance()
		if tn, err := sub.parseTypeName(); err == nil {
			if sub.accept(")") {
				p.Commit(sub)
				n := &ast.SizeofType{Type: tn}
				n.Span(begin, p.tok().Begin)
				return n, nil
			}
		}
	}

	operand, err := p.parsePrefixExpr()
	if err != nil {
		return nil, err
	}
	n := &ast.SizeofExpr{Operand: operand}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

// parsePostfixExpr implements precedence level 1: it parses a primary
// expression and then extends it left-to-right with any sequence of
// postfix operators.
func (p *Parser) parsePostfixExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	x, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("["):
			p.advance()
			idx, err := p.ParseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			n := &ast.IndexExpr{Object: x, Index: idx}
			n.Span(begin, p.tok().Begin)
			x = n
		case p.atOp("("):
			p.advance()
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
			n := &ast.CallExpr{Fn: x, Args: args}
			n.Span(begin, p.tok().Begin)
			x = n
		case p.atOp(".") || p.atOp("->"):
			arrow := p.atOp("->")
			p.advance()
			if !p.at(token.Ident) {
				return nil, p.errf("member name")
			}
			name := p.advance().Text
			n := &ast.MemberExpr{Object: x, Arrow: arrow, Name: name}
			n.Span(begin, p.tok().Begin)
			x = n
		case p.atOp("++") || p.atOp("--"):
			op := ast.PostInc
			if p.atOp("--") {
				op = ast.PostDec
			}
			p.advance()
			n := &ast.PostfixExpr{Op: op, Operand: x}
			n.Span(begin, p.tok().Begin)
			x = n
		default:
			return x, nil
		}
	}
}

// parsePrimaryExpr parses literals, identifiers, and parenthesized
// productions, disambiguating cast / compound-literal / parenthesized
// expression with silent sub-parsers: the first
// alternative that parses successfully wins; if all three fail, the
// error from the last attempt (the plain expression) surfaces.
func (p *Parser) parsePrimaryExpr() (ast.Expr, error) {
	begin := p.tok().Begin
	t := p.tok()

	switch t.Kind {
	case token.Number:
		p.advance()
		n := &ast.IntLit{Text: t.Text, Tok: t}
		n.Span(begin, t.End)
		return n, nil
	case token.Char:
		p.advance()
		n := &ast.CharLit{Text: t.Text, Tok: t}
		n.Span(begin, t.End)
		return n, nil
	case token.String:
		p.advance()
		n := &ast.StringLit{Text: t.Text, Tok: t}
		n.Span(begin, t.End)
		return n, nil
	case token.Ident:
		p.advance()
		n := &ast.Ident{Name: t.Text, Tok: t}
		n.Span(begin, t.End)
		return n, nil
	}

	if p.atOp("(") {
		return p.parseParenProduction()
	}

	return nil, p.errf("expression")
}

// parseParenProduction implements the three-way fork at `(`: cast,
// compound literal, or parenthesized expression.
func (p *Parser) parseParenProduction() (ast.Expr, error) {
	begin := p.tok().Begin

	if n, ok := p.tryCastOrCompoundLiteral(begin); ok {
		return n, nil
	}

	// Fall back to a plain parenthesized expression; its errors are
	// the ones that surface to the caller if this also fails.
	p.advance() // '('
	inner, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	n := &ast.ParenExpr{Inner: inner}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) tryCastOrCompoundLiteral(begin token.Position) (ast.Expr, bool) {
	sub := p.Sub()
	sub.advance() // '('
	tn, err := sub.parseTypeName()
	if err != nil || !sub.accept(")") {
		return nil, false
	}

	if sub.atOp("{") {
		init, err := sub.parseInitList()
		if err != nil {
			return nil, false
		}
		p.Commit(sub)
		n := &ast.CompoundLit{Type: tn, Init: init}
		n.Span(begin, p.tok().Begin)
		return n, true
	}

	// A cast must be followed by something that can start a
	// unary-expression; otherwise this was a parenthesized expression
	// whose inner expression merely happened to look like a type name
	// (e.g. `(x)` where x is also a typedef -- the grammar is genuinely
	// ambiguous here and we resolve it in favor of cast, matching the
	// spec's "first successful alternative wins" rule).
	operand, err := sub.parsePrefixExpr()
	if err != nil {
		return nil, false
	}
	p.Commit(sub)
	n := &ast.CastExpr{Type: tn, Expr: operand}
	n.Span(begin, p.tok().Begin)
	return n, true
}
