package lexer

import "zcc/pkg/token"

// Cursor is a restartable, value-typed cursor over a flat token slice.
// It is deliberately a small value (a slice header plus an int) so
// that cloning it -- the mechanism the parser's silent sub-parsers
// rely on -- is a plain assignment, never a deep copy.
type Cursor struct {
	toks []token.Token
	idx  int
}

// NewCursor builds a Cursor positioned at the first non-ignored token.
func NewCursor(toks []token.Token) Cursor {
	c := Cursor{toks: toks}
	c.skipIgnored()
	return c
}

func (c *Cursor) skipIgnored() {
	for c.idx < len(c.toks)-1 && token.Ignored(c.toks[c.idx].Kind) {
		c.idx++
	}
}

// Current implements token.Source.
func (c Cursor) Current() token.Token {
	return c.toks[c.idx]
}

// Next implements token.Source: advance past the current token and any
// ignored tokens that follow, then return the new current token.
func (c *Cursor) Next() token.Token {
	if c.idx < len(c.toks)-1 {
		c.idx++
	}
	c.skipIgnored()
	return c.Current()
}

// Peek implements token.Source by scanning forward from idx, skipping
// ignored tokens, without mutating the cursor.
func (c Cursor) Peek(n int) token.Token {
	idx := c.idx
	for remaining := n; remaining > 0 && idx < len(c.toks)-1; {
		idx++
		for idx < len(c.toks)-1 && token.Ignored(c.toks[idx].Kind) {
			idx++
		}
		remaining--
	}
	return c.toks[idx]
}
