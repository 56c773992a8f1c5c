// Package parser implements a recursive-descent C-dialect parser:
// predictive descent with a fixed 13-level precedence
// table, declarator layering, and bounded backtracking via "silent
// sub-parsers" for the grammar's genuine ambiguities (parenthesized
// cast/compound-literal/expression, declaration-vs-macro-declaration
// in struct bodies, declaration-vs-expression-statement).
//
// Mirrors the parser-factory idiom of keeping several
// interchangeable parsing strategies behind one entry point
// (pkg/parser/parser.go, parser_factory_test.go in the corpus); here
// narrowed to one bespoke recursive-descent engine, hand-written
// rather than grammar-generated.
package parser

import (
	"fmt"
	"os"

	"zcc/pkg/ast"
	"zcc/pkg/lexer"
	"zcc/pkg/token"
	"zcc/pkg/zerr"
)

// Parser is a value-typed cursor plus a suppressed-diagnostics flag.
// Cloning it (Sub) is a plain struct copy; committing a sub-parser's
// result (Commit) is a plain assignment. There is no hidden global
// state: every parse function takes and returns *Parser explicitly.
type Parser struct {
	File   string
	cur    lexer.Cursor
	silent bool
	stderr *os.File

	// ExtraDeclIdents bounds how many extra identifiers may precede a
	// declarator once a type specifier is already present, to
	// accommodate macro-decoration tokens.
	ExtraDeclIdents int

	// Typedefs is the set of identifiers introduced by a `typedef`
	// declaration seen so far. The spec treats a general symbol table
	// as an out-of-scope collaborator; this is the minimal bookkeeping
	// the declarator grammar itself cannot do without (the classic
	// "is this identifier a type name" ambiguity) and is shared across
	// every sub-parser cloned from this one, since it reflects
	// accumulated file scope rather than parse position.
	Typedefs map[string]bool
}

// New creates a Parser over a complete token stream.
func New(file string, toks []token.Token) *Parser {
	return &Parser{
		File: file, cur: lexer.NewCursor(toks), stderr: os.Stderr,
		ExtraDeclIdents: 1, Typedefs: make(map[string]bool),
	}
}

// Sub returns a silent sub-parser forked from p's current position:
// diagnostics it produces are suppressed, and on success the caller
// commits its cursor back with Commit; on failure the caller simply
// discards it and tries the next alternative.
func (p *Parser) Sub() *Parser {
	sub := *p
	sub.silent = true
	return &sub
}

// Commit adopts sub's cursor position as p's own, after a silent
// sub-parser alternative has succeeded.
func (p *Parser) Commit(sub *Parser) {
	p.cur = sub.cur
}

func (p *Parser) tok() token.Token      { return p.cur.Current() }
func (p *Parser) peek(n int) token.Token { return p.cur.Peek(n) }
func (p *Parser) advance() token.Token  { return p.cur.Next() }

func (p *Parser) at(k token.Kind) bool { return p.tok().Kind == k }

func (p *Parser) atOp(lexeme string) bool {
	t := p.tok()
	return (t.Kind == token.Op || t.Kind == token.Punct) && t.Text == lexeme
}

// accept consumes and returns true if the current token is an operator
// or punctuation with the given lexeme.
func (p *Parser) accept(lexeme string) bool {
	if p.atOp(lexeme) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token with the given lexeme or reports a syntax
// error naming what was expected.
func (p *Parser) expect(lexeme string) error {
	if p.accept(lexeme) {
		return nil
	}
	return p.errf("'%s'", lexeme)
}

// errf reports a syntax error at the current token: `<pos>: '<token>'
// unexpected, expected <expected>`. It is written to stderr exactly
// once unless the parser is a silent sub-parser.
func (p *Parser) errf(expectedFmt string, args ...interface{}) *zerr.Error {
	expected := fmt.Sprintf(expectedFmt, args...)
	t := p.tok()
	unexpected := t.Text
	if t.Kind == token.EOF {
		unexpected = "<eof>"
	}
	e := zerr.Syntaxf(p.File, t.Begin, unexpected, expected)
	if p.silent {
		e.Silenced = true
	} else {
		fmt.Fprintln(p.stderr, e.Error())
	}
	return e
}

// ParseFile parses a complete translation unit from source.
func ParseFile(file string, src []byte) (*ast.File, error) {
	toks := lexer.Scan(file, src)
	p := New(file, toks)
	return p.ParseTranslationUnit()
}

// ParseTranslationUnit parses the module production: an ordered
// sequence of global declarations and global macro-based
// declarations, until EOF.
func (p *Parser) ParseTranslationUnit() (*ast.File, error) {
	begin := p.tok().Begin
	f := &ast.File{Name: p.File}
	for !p.at(token.EOF) {
		d, err := p.parseExternalDecl()
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, d)
	}
	f.Span(begin, p.tok().End)
	return f, nil
}
