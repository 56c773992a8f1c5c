package z80

import "strings"

// MangleGlobal mangles an IR global identifier `@name` to its Z80
// symbol `_name`.
func MangleGlobal(name string) string {
	return "_" + strings.TrimPrefix(name, "@")
}

// MangleLabel mangles an IR label `%lbl` within procedure `@p` to
// `l_p_lbl`.
func MangleLabel(proc, label string) string {
	p := strings.TrimPrefix(proc, "@")
	l := strings.TrimPrefix(label, "%")
	return "l_" + p + "_" + l
}

// MangleLocal mangles an IR local `%v` within procedure `@p` to
// `v_p_v`; the internal end marker `%@end` mangles to `e_p_end`, and
// any embedded `@` in a local name is replaced with `_`.
func MangleLocal(proc, local string) string {
	p := strings.TrimPrefix(proc, "@")
	l := strings.TrimPrefix(local, "%")
	if l == "@end" {
		return "e_" + p + "_end"
	}
	l = strings.ReplaceAll(l, "@", "_")
	return "v_" + p + "_" + l
}
