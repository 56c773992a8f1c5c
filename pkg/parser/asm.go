package parser

import (
	"zcc/pkg/ast"
	"zcc/pkg/token"
)

// parseAsmStmt parses a GCC-style inline asm statement: `asm [volatile]
// [goto] ( template [: outputs [: inputs [: clobbers [: labels]]]] ) ;`.
// Each of the four colon-separated sections is optional and, once
// omitted, ends the statement at the next `)`.
func (p *Parser) parseAsmStmt() (ast.Stmt, error) {
	begin := p.tok().Begin
	p.advance() // 'asm' / '__asm__'

	n := &ast.AsmStmt{}
	for {
		switch {
		case p.at(token.KwVolatile) || (p.at(token.Ident) && p.tok().Text == "__volatile__"):
			n.Volatile = true
			p.advance()
		case p.at(token.KwGoto):
			n.Goto = true
			p.advance()
		default:
			goto afterQualifiers
		}
	}
afterQualifiers:

	if err := p.expect("("); err != nil {
		return nil, err
	}
	if !p.at(token.String) {
		return nil, p.errf("asm template string")
	}
	n.Template = p.advance().Text

	if p.accept(":") {
		outs, err := p.parseAsmOperandList()
		if err != nil {
			return nil, err
		}
		n.Outputs = outs
	}
	if p.accept(":") {
		ins, err := p.parseAsmOperandList()
		if err != nil {
			return nil, err
		}
		n.Inputs = ins
	}
	if p.accept(":") {
		clobbers, err := p.parseAsmStringList()
		if err != nil {
			return nil, err
		}
		n.Clobbers = clobbers
	}
	if p.accept(":") {
		labels, err := p.parseAsmLabelList()
		if err != nil {
			return nil, err
		}
		n.Labels = labels
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	n.Span(begin, p.tok().Begin)
	return n, nil
}

func (p *Parser) parseAsmOperandList() ([]ast.AsmOperand, error) {
	if p.atOp(":") || p.atOp(")") {
		return nil, nil
	}
	var out []ast.AsmOperand
	for {
		var op ast.AsmOperand
		if p.accept("[") {
			if !p.at(token.Ident) {
				return nil, p.errf("operand name")
			}
			op.Symbolic = p.advance().Text
			if err := p.expect("]"); err != nil {
				return nil, err
			}
		}
		if !p.at(token.String) {
			return nil, p.errf("constraint string")
		}
		op.Constraint = p.advance().Text
		if err := p.expect("("); err != nil {
			return nil, err
		}
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		op.Expr = e
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		out = append(out, op)
		if !p.accept(",") {
			return out, nil
		}
	}
}

func (p *Parser) parseAsmStringList() ([]string, error) {
	if p.atOp(":") || p.atOp(")") {
		return nil, nil
	}
	var out []string
	for {
		if !p.at(token.String) {
			return nil, p.errf("clobber string")
		}
		out = append(out, p.advance().Text)
		if !p.accept(",") {
			return out, nil
		}
	}
}

func (p *Parser) parseAsmLabelList() ([]string, error) {
	if p.atOp(")") {
		return nil, nil
	}
	var out []string
	for {
		if !p.at(token.Ident) {
			return nil, p.errf("label name")
		}
		out = append(out, p.advance().Text)
		if !p.accept(",") {
			return out, nil
		}
	}
}
