// Command zcc is the driver for the compilation core: it reads one
// C-dialect source file and runs it through the whole pipeline --
// parse, lower to IR, select Z80 instructions, allocate the register
// file, assemble, and write the requested output -- in a single
// sequential, single-threaded pass.
//
// Mirrors cmd/minzc's CLI shape (github.com/spf13/cobra, one-shot
// RunE, -o/-S/-c/--dump-ast/--dump-ir flags) narrowed to the
// four-stage core this repository actually implements.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"zcc/pkg/ir"
	"zcc/pkg/irgen"
	"zcc/pkg/macro"
	"zcc/pkg/parser"
	"zcc/pkg/token"
	"zcc/pkg/version"
	"zcc/pkg/z80"
	"zcc/pkg/z80asm"
	"zcc/pkg/zerr"
)

var (
	outputFile  string
	emitAsmOnly bool
	assemble    bool
	dumpAST     bool
	dumpIR      bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "zcc [source file]",
	Short:   "zcc " + version.GetVersion() + " -- a retargetable C-to-Z80 compiler",
	Args:    cobra.ExactArgs(1),
	RunE:    runCompile,
	Version: version.GetVersion(),
}

func main() {
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: input basename with the right extension)")
	rootCmd.Flags().BoolVarP(&emitAsmOnly, "S", "S", false, "emit symbolic Z80 assembly only, skip the assembler")
	rootCmd.Flags().BoolVarP(&assemble, "c", "c", true, "assemble the generated code into a binary image")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST's top-level declaration kinds and exit")
	rootCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print the lowered IR module and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report each pipeline stage as it runs")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ze *zerr.Error
	if e, ok := err.(*zerr.Error); ok {
		ze = e
	}
	if ze == nil {
		return 1
	}
	switch ze.Kind {
	case zerr.ENOMEM:
		return 12
	case zerr.ENOENT:
		return 2
	case zerr.EIO:
		return 5
	default:
		return 1
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	srcFile := args[0]
	src, err := os.ReadFile(srcFile)
	if err != nil {
		return zerr.IOf("reading %s: %v", srcFile, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "zcc: parsing %s\n", srcFile)
	}
	file, err := parser.ParseFile(srcFile, src)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "zcc: expanding macros")
	}
	expander := macro.New()
	defer expander.Close()
	if err := expander.ExpandFile(file); err != nil {
		return err
	}

	if dumpAST {
		for _, d := range file.Decls {
			fmt.Printf("%s\n", d.Kind())
		}
		return nil
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "zcc: lowering to IR")
	}
	mod, errs := irgen.Lower(file)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %v\n", srcFile, e)
		}
		return zerr.Semanticf(zerr.EINVAL, token.Position{}, "%d error(s) lowering %s", len(errs), srcFile)
	}
	if dumpIR {
		printIR(mod)
		return nil
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "zcc: selecting instructions and allocating registers")
	}
	asm, err := compileModule(mod)
	if err != nil {
		return err
	}

	out := outputFile
	if out == "" {
		out = defaultOutput(srcFile)
	}

	if emitAsmOnly || !assemble {
		return os.WriteFile(out, []byte(asm), 0644)
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "zcc: assembling")
	}
	as := z80asm.NewAssembler()
	result, err := as.AssembleString(asm)
	if err != nil {
		return zerr.Semanticf(zerr.EINVAL, token.Position{}, "assembling %s: %v", srcFile, err)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return zerr.Semanticf(zerr.EINVAL, token.Position{}, "%d assembly error(s)", len(result.Errors))
	}
	if err := os.WriteFile(out, result.Binary, 0644); err != nil {
		return zerr.IOf("writing %s: %v", out, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "zcc: wrote %s (%d bytes at $%04X)\n", out, result.Size, result.Origin)
	}
	return nil
}

// compileModule runs every procedure in mod through the selector and
// allocator and renders the whole module -- globals first, then each
// procedure's code -- as one symbolic assembly listing.
func compileModule(mod *ir.Module) (string, error) {
	var sb strings.Builder
	sb.WriteString("\torg $8000\n")
	for _, d := range mod.Decls {
		switch {
		case d.Var != nil:
			sb.WriteString(z80.Print(z80.EmitGlobal(d.Var)))
		case d.Proc != nil && !d.Proc.Extern:
			localsSize := 0
			for _, l := range d.Proc.Locals {
				localsSize += l.Type.Size()
			}
			vblock, vm := z80.Select(d.Proc)
			pblock := z80.Allocate(vblock, vm, localsSize)
			entry := &z80.Block{}
			entry.Label(z80.MangleGlobal(d.Proc.Name))
			pblock.Entries = append(entry.Entries, pblock.Entries...)
			sb.WriteString(z80.Print(pblock))
		}
	}
	return sb.String(), nil
}

func printIR(mod *ir.Module) {
	for _, d := range mod.Decls {
		switch {
		case d.Var != nil:
			fmt.Printf("var %s: %d byte(s)\n", d.Var.Name, d.Var.Type.Size())
		case d.Proc != nil:
			fmt.Printf("proc %s(%d arg(s)) extern=%v\n", d.Proc.Name, len(d.Proc.Args), d.Proc.Extern)
			for _, e := range d.Proc.Body {
				if e.Label != "" {
					fmt.Printf("  %s:\n", e.Label)
				}
				fmt.Printf("    %+v\n", e.Instr)
			}
		}
	}
}

func defaultOutput(src string) string {
	ext := filepath.Ext(src)
	base := strings.TrimSuffix(src, ext)
	if emitAsmOnly || !assemble {
		return base + ".a80"
	}
	return base + ".bin"
}
