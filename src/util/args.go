package util

import (
	"fmt"
	"os"
	"strings"
)

// Options holds the parsed command line invocation, following spec.md §6's
// CLI contract: "<prog> <mode> <input_path> <anything> <output_path>", with a
// handful of ambient flags carried over from the teacher
// (vslc/src/util/args.go) for diagnostics.
type Options struct {
	Mode    string // "-koopa", "-riscv" or "-llvm".
	Src     string // Path to source file.
	Out     string // Path to output file.
	Verbose bool   // Print the generated IR to stdout; the AST is not printed.
	Tokens  bool   // Print the token stream and exit, bypassing compilation.
}

const appVersion = "sysyc 1.0"

// ParseArgs parses command line arguments against spec.md §6's positional
// contract, generalized from the teacher's flag-based ParseArgs to accept a
// leading mode flag and trailing positional input/output paths. "-vb" and
// "-ts" may appear anywhere among the leading flags, matching the teacher's
// habit of accepting flags before positional arguments.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]

	var positional []string
	for _, a := range args {
		switch a {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		case "-ts":
			opt.Tokens = true
		case "-koopa", "-riscv", "-llvm":
			if opt.Mode != "" {
				return opt, fmt.Errorf("mode given twice: %s and %s", opt.Mode, a)
			}
			opt.Mode = a
		default:
			if strings.HasPrefix(a, "-") {
				return opt, fmt.Errorf("unexpected flag: %s", a)
			}
			positional = append(positional, a)
		}
	}

	if opt.Tokens {
		// "-ts" only needs a source path; mode and output are ignored.
		if len(positional) < 1 {
			return opt, fmt.Errorf("expected source path")
		}
		opt.Src = positional[0]
		return opt, nil
	}

	if opt.Mode == "" {
		return opt, fmt.Errorf("missing mode: expected one of -koopa, -riscv, -llvm")
	}
	// spec.md §6: "<prog> <mode> <input_path> <anything> <output_path>" — the
	// third positional argument is accepted and ignored.
	switch len(positional) {
	case 2:
		opt.Src, opt.Out = positional[0], positional[1]
	case 3:
		opt.Src, opt.Out = positional[0], positional[2]
	default:
		return opt, fmt.Errorf("expected <input_path> [ignored] <output_path>, got %d positional arguments", len(positional))
	}
	return opt, nil
}

func printHelp() {
	fmt.Println("usage: sysyc [-vb] [-ts] <mode> <input_path> [ignored] <output_path>")
	fmt.Println()
	fmt.Println("  -koopa\tEmit textual Koopa-style IR.")
	fmt.Println("  -riscv\tEmit RISC-V 32-bit assembly.")
	fmt.Println("  -llvm\tEmit an object file via LLVM (additional to spec.md's two modes).")
	fmt.Println("  -vb\tVerbose: print the generated IR to stdout.")
	fmt.Println("  -ts\tPrint the token stream for <input_path> and exit.")
	fmt.Println("  -v, -version\tPrint the compiler version and exit.")
}
