// Package macro expands the two call-like metaprogramming constructs
// the grammar admits -- macro declarations and loop-macro invocations
// -- before pkg/irgen ever sees the tree.
//
// Declaration-position macros at file scope (e.g.
// `REGISTER_DRIVER(name);`) are expanded by calling into an embedded
// Lua state; a macro in struct-member position is discarded by the
// parser and never reaches the expander. Expansion mirrors
// pkg/meta.LuaEvaluator's shape: the macro name is looked up as a Lua global
// function, called with its arguments, and expected to return a
// string of generated source text that gets re-parsed and spliced in
// place of the macro node. Loop-macro invocations (`repeat(n) {...}`,
// `unroll(i, n) {...}`) are expanded directly in Go by cloning the
// body statement, since their shape -- a compile-time repetition
// count and an optional induction identifier -- doesn't need a
// general-purpose scripting language to resolve.
package macro

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"zcc/pkg/ast"
	"zcc/pkg/parser"
	"zcc/pkg/zerr"
)

// Expander owns the Lua state used to evaluate declaration macros. It
// is not safe for concurrent use, matching the single-pass,
// single-threaded pipeline it runs in.
type Expander struct {
	L *lua.LState
}

// New creates an Expander with the built-in code-generation API
// registered under the `zcc` Lua global.
func New() *Expander {
	e := &Expander{L: lua.NewState()}
	e.registerAPI()
	return e
}

// Close releases the Lua state.
func (e *Expander) Close() { e.L.Close() }

// ExpandFile rewrites f in place: every top-level MacroDeclaration is
// replaced by the declarations it expands to, and every function
// body is walked for loop-macro invocations.
func (e *Expander) ExpandFile(f *ast.File) error {
	var out []ast.Decl
	for _, d := range f.Decls {
		expanded, err := e.expandDecl(d)
		if err != nil {
			return err
		}
		out = append(out, expanded...)
	}
	f.Decls = out
	return nil
}

func (e *Expander) expandDecl(d ast.Decl) ([]ast.Decl, error) {
	switch n := d.(type) {
	case *ast.MacroDeclaration:
		return e.expandMacroDeclaration(n)
	case *ast.Declaration:
		for _, id := range n.Declarators {
			if id.Body != nil {
				if err := e.expandBlock(id.Body); err != nil {
					return nil, err
				}
			}
		}
		return []ast.Decl{n}, nil
	default:
		return []ast.Decl{d}, nil
	}
}

// expandMacroDeclaration calls the Lua global named after the macro
// into generated source text, parses that text as a sequence of
// external declarations, and returns them in place of n. A decorated
// macro (n.Trailing != nil) keeps the trailing declaration after the
// generated ones, mirroring a code-generating decorator rather than a
// full replacement.
func (e *Expander) expandMacroDeclaration(n *ast.MacroDeclaration) ([]ast.Decl, error) {
	fn := e.L.GetGlobal(n.Name)
	if fn == lua.LNil {
		return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "unexpanded macro declaration %q: no Lua generator registered", n.Name)
	}

	e.L.Push(fn)
	for _, a := range n.Args {
		v, err := e.evalArg(a)
		if err != nil {
			return nil, err
		}
		e.L.Push(v)
	}
	if err := e.L.PCall(len(n.Args), 1, nil); err != nil {
		return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "macro %q: %v", n.Name, err)
	}
	result := e.L.Get(-1)
	e.L.Pop(1)

	code, ok := result.(lua.LString)
	if !ok {
		return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "macro %q: Lua generator did not return a string", n.Name)
	}

	gen, err := parser.ParseFile(fmt.Sprintf("<macro %s>", n.Name), []byte(string(code)))
	if err != nil {
		return nil, zerr.Semanticf(zerr.EINVAL, n.Pos(), "macro %q: generated source does not parse: %v", n.Name, err)
	}

	decls := gen.Decls
	if n.Trailing != nil {
		if err := e.expandBlocksInDecl(n.Trailing); err != nil {
			return nil, err
		}
		decls = append(decls, n.Trailing)
	}
	return decls, nil
}

func (e *Expander) expandBlocksInDecl(d *ast.Declaration) error {
	for _, id := range d.Declarators {
		if id.Body != nil {
			if err := e.expandBlock(id.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

// evalArg converts a macro-call argument expression into a Lua value.
// Only the constant shapes that make sense as macro arguments are
// accepted -- integers, characters, strings, and bare identifiers
// (passed through as their name, for macros that generate code
// referencing them).
func (e *Expander) evalArg(x ast.Expr) (lua.LValue, error) {
	switch n := x.(type) {
	case *ast.IntLit:
		return lua.LNumber(parseIntLit(n.Text)), nil
	case *ast.CharLit:
		return lua.LString(n.Text), nil
	case *ast.StringLit:
		return lua.LString(n.Text), nil
	case *ast.Ident:
		return lua.LString(n.Name), nil
	default:
		return nil, zerr.Semanticf(zerr.EINVAL, x.Pos(), "macro argument must be a literal or identifier")
	}
}

func parseIntLit(text string) int64 {
	var v int64
	neg := false
	s := text
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	switch {
	case len(s) > 1 && (s[1] == 'x' || s[1] == 'X'):
		for _, c := range s[2:] {
			v = v*16 + int64(hexDigit(c))
		}
	default:
		for _, c := range s {
			if c < '0' || c > '9' {
				break
			}
			v = v*10 + int64(c-'0')
		}
	}
	if neg {
		v = -v
	}
	return v
}

func hexDigit(c rune) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int64(c-'A') + 10
	}
	return 0
}
