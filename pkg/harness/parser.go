package harness

import (
	"strings"

	"zcc/pkg/token"
	"zcc/pkg/zerr"
)

// stmt is one parsed harness statement: a command name and its
// comma-separated argument strings, already trimmed.
type stmt struct {
	cmd  string
	args []string
}

// parse splits a script into `;`-terminated statements and each
// statement into a command and comma-separated arguments. The
// grammar is small enough that this hand-rolled splitter -- rather
// than a token-stream recursive descent -- is in proportion to its
// size: the heavier machinery only pays for itself where the grammar
// is genuinely ambiguous.
func parse(script string) ([]stmt, error) {
	var stmts []stmt
	for _, raw := range splitStatements(script) {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		sp := strings.IndexAny(s, " \t")
		var cmd, rest string
		if sp < 0 {
			cmd, rest = s, ""
		} else {
			cmd, rest = s[:sp], strings.TrimSpace(s[sp+1:])
		}
		cmd = strings.ToLower(cmd)
		args := splitArgs(rest)
		if !validCommand(cmd) {
			return nil, zerr.Syntaxf("", token.Position{}, cmd, "ldbin, mapfile, ld, call, print, or verify")
		}
		stmts = append(stmts, stmt{cmd: cmd, args: args})
	}
	return stmts, nil
}

func validCommand(cmd string) bool {
	switch cmd {
	case "ldbin", "mapfile", "ld", "call", "print", "verify":
		return true
	}
	return false
}

// splitStatements breaks the script on top-level `;`, respecting
// quoted strings and parenthesized expressions so that a `;` inside a
// "file name" or a `(expr)` pointer operand doesn't end the statement
// early.
func splitStatements(script string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	inStr := false
	for _, r := range script {
		switch {
		case r == '"':
			inStr = !inStr
			cur.WriteRune(r)
		case inStr:
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case r == ';' && depth == 0:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, cur.String())
	}
	return out
}

// splitArgs splits a statement's operand list on top-level commas,
// with the same quote/paren awareness as splitStatements.
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	depth := 0
	inStr := false
	for _, r := range s {
		switch {
		case r == '"':
			inStr = !inStr
			cur.WriteRune(r)
		case inStr:
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case r == ',' && depth == 0:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out
}
