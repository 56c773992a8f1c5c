// Package harness implements a small, script-driven test-harness
// language as one of the pipeline's external collaborators: a handful
// of commands (ldbin, mapfile, ld, call,
// print, verify) that load a compiled image into the Z80 emulator,
// poke registers and memory, run a routine, and assert on the result.
//
// The C-dialect front end gets a hand-written recursive-descent
// parser because its grammar is genuinely large; this script language
// is two orders of magnitude smaller, so it gets its own small
// statement/argument splitter (parser.go) rather than being shoehorned
// through pkg/parser or pkg/lexer.
package harness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"zcc/pkg/emulator"
	"zcc/pkg/token"
	"zcc/pkg/zerr"
)

// Harness owns one emulator instance and the symbol table a mapfile
// command loads into it; Run executes a whole script against them.
type Harness struct {
	CPU     *emulator.Z80
	Symbols map[string]uint16
	Out     io.Writer

	lastCycles uint32
	lastOutput string
}

// New creates a harness around a fresh emulator, writing print/verify
// output to out.
func New(out io.Writer) *Harness {
	return &Harness{CPU: emulator.New(), Symbols: map[string]uint16{}, Out: out}
}

// Run parses and executes every statement in script, in order, under
// a single-threaded, feed-forward execution model: each
// statement's effect is visible to every later statement, and a
// failing `verify` aborts the script immediately with an EINVAL error
// naming the mismatch.
func (h *Harness) Run(script string) error {
	stmts, err := parse(script)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := h.exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RunFile reads and runs a script file.
func (h *Harness) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return zerr.IOf("reading script %s: %v", path, err)
	}
	return h.Run(string(src))
}

func (h *Harness) exec(s stmt) error {
	switch s.cmd {
	case "ldbin":
		return h.doLdbin(s)
	case "mapfile":
		return h.doMapfile(s)
	case "ld":
		return h.doLd(s)
	case "call":
		return h.doCall(s)
	case "print":
		return h.doPrint(s)
	case "verify":
		return h.doVerify(s)
	}
	return zerr.Semanticf(zerr.EINVAL, token.Position{}, "unknown harness command %q", s.cmd)
}

func (h *Harness) doLdbin(s stmt) error {
	path := strings.Trim(s.args[0], `"`)
	addr, err := h.eval(s.args[1])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.IOf("ldbin %s: %v", path, err)
	}
	h.CPU.LoadAt(addr, data)
	return nil
}

func (h *Harness) doMapfile(s stmt) error {
	path := strings.Trim(s.args[0], `"`)
	f, err := os.Open(path)
	if err != nil {
		return zerr.IOf("mapfile %s: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		valStr := strings.TrimSpace(parts[1])
		if i := strings.IndexAny(valStr, " \t("); i >= 0 {
			valStr = valStr[:i]
		}
		v, err := parseNumber(valStr)
		if err != nil {
			continue
		}
		h.Symbols[name] = v
	}
	return sc.Err()
}

func (h *Harness) doLd(s stmt) error {
	val, err := h.eval(s.args[1])
	if err != nil {
		return err
	}
	return h.setTarget(s.args[0], val)
}

func (h *Harness) doCall(s stmt) error {
	addr, err := h.eval(s.args[0])
	if err != nil {
		return err
	}
	out, cycles := h.CPU.Execute(addr)
	h.lastOutput, h.lastCycles = out, cycles
	return nil
}

func (h *Harness) doPrint(s stmt) error {
	val, err := h.getTarget(s.args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "%s = $%04X (%d)\n", s.args[0], val, val)
	return nil
}

func (h *Harness) doVerify(s stmt) error {
	got, err := h.getTarget(s.args[0])
	if err != nil {
		return err
	}
	want, err := h.eval(s.args[1])
	if err != nil {
		return err
	}
	if got != want {
		return zerr.Semanticf(zerr.EINVAL, token.Position{}, "verify %s: got $%04X, want $%04X", s.args[0], got, want)
	}
	return nil
}

// setTarget writes val into a register or a sized memory pointer.
func (h *Harness) setTarget(target string, val uint16) error {
	if ptr, size, ok := parsePointer(target); ok {
		addr, err := h.eval(ptr)
		if err != nil {
			return err
		}
		h.pokeSized(addr, size, val)
		return nil
	}
	switch strings.ToUpper(target) {
	case "AF":
		h.CPU.A, h.CPU.F = byte(val>>8), byte(val)
	case "BC":
		h.CPU.B, h.CPU.C = byte(val>>8), byte(val)
	case "DE":
		h.CPU.D, h.CPU.E = byte(val>>8), byte(val)
	case "HL":
		h.CPU.H, h.CPU.L = byte(val>>8), byte(val)
	default:
		return zerr.Semanticf(zerr.EINVAL, token.Position{}, "ld: unknown register %q", target)
	}
	return nil
}

func (h *Harness) getTarget(target string) (uint16, error) {
	if ptr, size, ok := parsePointer(target); ok {
		addr, err := h.eval(ptr)
		if err != nil {
			return 0, err
		}
		return h.peekSized(addr, size), nil
	}
	regs := h.CPU.GetRegisters()
	switch strings.ToUpper(target) {
	case "AF":
		return uint16(regs.A)<<8 | uint16(regs.F), nil
	case "BC":
		return regs.BC, nil
	case "DE":
		return regs.DE, nil
	case "HL":
		return regs.HL, nil
	}
	return 0, zerr.Semanticf(zerr.EINVAL, token.Position{}, "verify/print: unknown register %q", target)
}

func (h *Harness) pokeSized(addr uint16, size string, val uint16) {
	switch size {
	case "byte":
		h.CPU.WriteMemory(addr, byte(val))
	case "word":
		h.CPU.WriteMemory(addr, byte(val))
		h.CPU.WriteMemory(addr+1, byte(val>>8))
	case "dword", "qword":
		h.CPU.WriteMemory(addr, byte(val))
		h.CPU.WriteMemory(addr+1, byte(val>>8))
		h.CPU.WriteMemory(addr+2, 0)
		h.CPU.WriteMemory(addr+3, 0)
	}
}

func (h *Harness) peekSized(addr uint16, size string) uint16 {
	switch size {
	case "byte":
		return uint16(h.CPU.ReadMemory(addr))
	default:
		lo := uint16(h.CPU.ReadMemory(addr))
		hi := uint16(h.CPU.ReadMemory(addr + 1))
		return lo | hi<<8
	}
}

// eval resolves a literal number or a mapfile symbol name to a value.
func (h *Harness) eval(expr string) (uint16, error) {
	if v, err := parseNumber(expr); err == nil {
		return v, nil
	}
	if v, ok := h.Symbols[expr]; ok {
		return v, nil
	}
	return 0, zerr.Semanticf(zerr.ENOENT, token.Position{}, "undefined symbol %q", expr)
}

func parseNumber(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "$"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return uint16(-int32(v)), nil
	}
	return uint16(v), nil
}

// parsePointer recognizes "byte|word|dword|qword ptr (expr)".
func parsePointer(s string) (expr, size string, ok bool) {
	for _, sz := range []string{"byte", "word", "dword", "qword"} {
		prefix := sz + " ptr"
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			rest := strings.TrimSpace(s[len(prefix):])
			rest = strings.TrimPrefix(rest, "(")
			rest = strings.TrimSuffix(rest, ")")
			return strings.TrimSpace(rest), sz, true
		}
	}
	return "", "", false
}

