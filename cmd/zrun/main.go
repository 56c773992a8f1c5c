// Command zrun loads a compiled binary into the Z80 emulator and
// drives it with a test-harness script, per pkg/harness.
//
// Mirrors cmd/mze's cobra-based one-shot command shape (same
// verbose/load-address-flag conventions), narrowed to the
// harness-script execution model instead of mze's own platform-I/O
// emulation loop (RST-hook interception, BDOS calls, tape/disk
// images) -- the emulator here is driven entirely through
// pkg/harness's ldbin/mapfile/ld/call/print/verify commands instead.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"zcc/pkg/harness"
)

var (
	scriptFile string
	binaryFile string
	loadAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "zrun [script]",
	Short: "Z80 test-harness runner",
	Long: `zrun loads a compiled Z80 binary into the emulator and runs a
test-harness script against it: ldbin/mapfile load code and symbols,
ld/call drive execution, print/verify inspect and assert on the
result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptPath := args[0]

		h := harness.New(os.Stdout)

		if binaryFile != "" {
			addr, err := parseHexAddress(loadAddr)
			if err != nil {
				return fmt.Errorf("parsing --load: %w", err)
			}
			data, err := os.ReadFile(binaryFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", binaryFile, err)
			}
			h.CPU.LoadAt(addr, data)
			if verbose {
				fmt.Fprintf(os.Stderr, "loaded %d bytes at $%04X from %s\n", len(data), addr, binaryFile)
			}
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "running %s\n", scriptPath)
		}

		if err := h.RunFile(scriptPath); err != nil {
			return err
		}

		if verbose {
			fmt.Fprintln(os.Stderr, "script completed")
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&binaryFile, "bin", "", "binary image to preload before running the script (optional; scripts may ldbin their own)")
	rootCmd.Flags().StringVar(&loadAddr, "load", "0x8000", "load address for --bin ($ or 0x prefix for hex; a bare number is decimal, or hex if not valid decimal)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose execution info")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zrun: %v\n", err)
		os.Exit(1)
	}
}

func parseHexAddress(addr string) (uint16, error) {
	addr = strings.TrimSpace(addr)
	var hexStr string
	switch {
	case strings.HasPrefix(addr, "$"):
		hexStr = addr[1:]
	case strings.HasPrefix(addr, "0x"), strings.HasPrefix(addr, "0X"):
		hexStr = addr[2:]
	default:
		v, err := strconv.ParseUint(addr, 10, 16)
		if err == nil {
			return uint16(v), nil
		}
		hexStr = addr
	}
	v, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
