package z80asm

import (
	"fmt"
	"os"
	"strings"

	"zcc/pkg/token"
	"zcc/pkg/zerr"
)

// Assembler is the main Z80 assembler
type Assembler struct {
	// Configuration options
	AllowUndocumented bool // Default: true
	Strict            bool // Sjasmplus compatibility mode
	CaseSensitive     bool // Case sensitivity for labels

	// Internal state
	pass        int
	currentAddr uint16
	origin      uint16
	symbols     map[string]*Symbol
	lines       []*Line
	output      []byte
	instructions []*AssembledInstruction
	errors      []AssemblerError

	// sourceFile names the file passed to AssembleFile, for zerr's
	// file:line diagnostic prefix. AssembleString leaves it empty.
	sourceFile string
}

// AssemblerError represents an assembly error, built from the
// underlying *zerr.Error so every diagnostic the assembler reports
// carries the same kind/position shape the rest of the pipeline uses.
type AssemblerError struct {
	Line    int
	Column  int
	Message string
}

func (e AssemblerError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// asAssemblerError narrows any error collected from a pass into the
// Result-facing AssemblerError shape. A *zerr.Error contributes its
// line/column; anything else (e.g. a wrapped os error) falls back to
// the line the failing source line was on.
func asAssemblerError(lineNum int, err error) AssemblerError {
	if ze, ok := err.(*zerr.Error); ok {
		return AssemblerError{Line: ze.Pos.Line, Column: ze.Pos.Column, Message: ze.Message}
	}
	return AssemblerError{Line: lineNum, Message: err.Error()}
}

// Result contains the assembled output
type Result struct {
	Binary      []byte
	Origin      uint16
	Size        uint16
	Symbols     map[string]uint16
	Listing     []ListingLine
	Errors      []AssemblerError
	Warnings    []string
}

// ListingLine represents a line in the assembly listing
type ListingLine struct {
	Address     uint16
	Bytes       []byte
	LineNumber  int
	SourceLine  string
	Label       string
}

// AssembledInstruction represents a fully assembled instruction
type AssembledInstruction struct {
	Address     uint16
	Line        *Line
	Bytes       []byte
	Fixups      []Fixup
}

// Fixup represents a forward reference that needs fixing
type Fixup struct {
	Offset      int    // Offset in instruction bytes
	Symbol      string // Symbol to resolve
	Type        FixupType
	Expression  string // For complex expressions
}

// FixupType indicates how to apply the fixup
type FixupType int

const (
	FixupByte FixupType = iota   // 8-bit value
	FixupWord                     // 16-bit value (little-endian)
	FixupRelative                 // Relative jump offset
)

// NewAssembler creates a new assembler instance
func NewAssembler() *Assembler {
	return &Assembler{
		AllowUndocumented: true,
		Strict:            false,
		CaseSensitive:     false,
		symbols:           make(map[string]*Symbol),
		origin:            0x8000, // Default origin
	}
}

// AssembleFile assembles a source file
func (a *Assembler) AssembleFile(filename string) (*Result, error) {
	// Read file
	source, err := ReadFile(filename)
	if err != nil {
		return nil, zerr.IOf("failed to read file: %s", err)
	}

	a.sourceFile = filename
	return a.AssembleString(source)
}

// AssembleString assembles source code from a string
func (a *Assembler) AssembleString(source string) (*Result, error) {
	// Reset state
	a.reset()

	// Parse source into lines
	lines, err := ParseSource(source)
	if err != nil {
		return nil, zerr.Semanticf(zerr.EINVAL, token.Position{}, "parse error: %s", err)
	}

	// Expand local (dot-prefixed) label references against their
	// enclosing global label before either pass sees them.
	lines, err = preprocessLocalLabels(lines)
	if err != nil {
		if ze, ok := err.(*zerr.Error); ok {
			ze.File = a.sourceFile
		}
		return nil, err
	}
	a.lines = lines

	// Pass 1: Build symbol table and calculate addresses
	a.pass = 1
	if err := a.performPass(); err != nil {
		return nil, err
	}

	// Pass 2: Generate code
	a.pass = 2
	a.currentAddr = a.origin
	a.output = make([]byte, 0, 65536)
	a.instructions = make([]*AssembledInstruction, 0)

	if err := a.performPass(); err != nil {
		return nil, err
	}
	
	// Build result
	result := &Result{
		Binary:  a.output,
		Origin:  a.origin,
		Size:    uint16(len(a.output)),
		Symbols: make(map[string]uint16),
		Listing: make([]ListingLine, 0),
		Errors:  a.errors,
	}
	
	// Copy symbols
	for name, sym := range a.symbols {
		if sym.Defined {
			result.Symbols[name] = sym.Value
		}
	}
	
	// Generate listing
	for _, inst := range a.instructions {
		listing := ListingLine{
			Address:    inst.Address,
			Bytes:      inst.Bytes,
			LineNumber: inst.Line.Number,
			SourceLine: formatSourceLine(inst.Line),
			Label:      inst.Line.Label,
		}
		result.Listing = append(result.Listing, listing)
	}
	
	return result, nil
}

// reset clears assembler state
func (a *Assembler) reset() {
	a.pass = 0
	a.currentAddr = a.origin
	a.symbols = make(map[string]*Symbol)
	a.output = nil
	a.instructions = nil
	a.errors = nil
}

// performPass executes one assembly pass
func (a *Assembler) performPass() error {
	a.currentAddr = a.origin
	
	for _, line := range a.lines {
		if err := a.processLine(line); err != nil {
			a.errors = append(a.errors, asAssemblerError(line.Number, err))
			if a.Strict {
				return err
			}
		}
	}
	
	return nil
}

// processLine processes a single line
func (a *Assembler) processLine(line *Line) error {
	// Skip blank lines
	if line.IsBlank {
		return nil
	}
	
	// Handle label
	if line.Label != "" {
		if err := a.defineLabel(line); err != nil {
			return err
		}
	}
	
	// Handle directive
	if line.Directive != "" {
		return a.processDirective(line)
	}
	
	// Handle instruction
	if line.Mnemonic != "" {
		return a.processInstruction(line)
	}
	
	return nil
}

// defineLabel defines a label at the current address
func (a *Assembler) defineLabel(line *Line) error {
	label := line.Label
	if !a.CaseSensitive {
		label = strings.ToUpper(label)
	}

	if a.pass == 1 {
		// Check for redefinition
		if sym, exists := a.symbols[label]; exists && sym.Defined {
			return a.errAt(line, "label '%s' already defined", label)
		}

		a.symbols[label] = &Symbol{
			Name:    label,
			Value:   a.currentAddr,
			Defined: true,
		}
	}

	return nil
}

// resolveSymbol resolves a symbol to its value. An undefined symbol on
// pass 2 reports zerr.ENOENT, matching the kind's meaning elsewhere in
// the pipeline.
func (a *Assembler) resolveSymbol(name string) (uint16, error) {
	if !a.CaseSensitive {
		name = strings.ToUpper(name)
	}

	if sym, exists := a.symbols[name]; exists && sym.Defined {
		return sym.Value, nil
	}

	// Try to parse as number
	if val, err := parseNumber(name); err == nil {
		return val, nil
	}

	if a.pass == 1 {
		// Create forward reference
		a.symbols[name] = &Symbol{
			Name:    name,
			Defined: false,
		}
		return 0, nil
	}
	
	e := zerr.Semanticf(zerr.ENOENT, token.Position{}, "undefined symbol: %s", name)
	e.File = a.sourceFile
	return 0, e
}

// formatSourceLine formats a line for listing output
func formatSourceLine(line *Line) string {
	var parts []string
	
	if line.Label != "" {
		parts = append(parts, line.Label+":")
	}
	
	if line.Directive != "" {
		parts = append(parts, line.Directive)
		if len(line.Operands) > 0 {
			parts = append(parts, strings.Join(line.Operands, ", "))
		}
	} else if line.Mnemonic != "" {
		parts = append(parts, line.Mnemonic)
		if len(line.Operands) > 0 {
			parts = append(parts, strings.Join(line.Operands, ", "))
		}
	}
	
	result := strings.Join(parts, " ")
	if line.Comment != "" {
		result += " ; " + line.Comment
	}
	
	return result
}

// ReadFile reads a source file
func ReadFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", zerr.IOf("failed to read file %s: %s", filename, err)
	}
	return string(content), nil
}

// EmitByte emits a byte to the output in pass 2
func (a *Assembler) EmitByte(b byte) {
	if a.pass == 2 {
		a.output = append(a.output, b)
	}
}

// EmitWord emits a word (little-endian) to the output in pass 2
func (a *Assembler) EmitWord(w uint16) {
	if a.pass == 2 {
		a.output = append(a.output, byte(w), byte(w>>8))
	}
}