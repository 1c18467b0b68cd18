package main

import (
	"fmt"
	"os"

	"sysyc/src/backend/llvm"
	"sysyc/src/backend/riscv"
	"sysyc/src/frontend"
	"sysyc/src/ir"
	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// run drives the compiler's pipeline end to end. Behaviour is fully
// determined by the parsed util.Options, per spec.md §6's CLI contract.
func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return err
	}

	if opt.Tokens {
		toks, err := frontend.TokenStream(src)
		if err != nil {
			return fmt.Errorf("syntax error: %w", err)
		}
		fmt.Println(toks)
		return nil
	}

	cu, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	text, err := ir.Emit(cu)
	if err != nil {
		return fmt.Errorf("ir emission error: %w", err)
	}
	if opt.Verbose {
		fmt.Println(text)
	}

	if opt.Mode == "-koopa" {
		return util.WriteOutput(opt, text)
	}

	prog, err := koopa.Parse(text)
	if err != nil {
		return fmt.Errorf("internal error, malformed IR: %w", err)
	}

	switch opt.Mode {
	case "-riscv":
		asm, err := riscv.Generate(prog)
		if err != nil {
			return fmt.Errorf("code generation error: %w", err)
		}
		return util.WriteOutput(opt, asm)
	case "-llvm":
		return llvm.Generate(prog, opt.Out)
	default:
		return fmt.Errorf("unsupported mode %q", opt.Mode)
	}
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("command line argument error: %s\n", err)
		os.Exit(1)
	}
	if err := run(opt); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}
