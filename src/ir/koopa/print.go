package koopa

import (
	"fmt"
	"strings"
)

// Print serializes p back into Koopa-style textual IR. Print(Parse(text)) is
// equivalent (up to whitespace) to text for any text originally produced by
// package ir's emitter — the round-trip property required by spec.md §8.5.
func Print(p *Program) string {
	var out strings.Builder
	for i, f := range p.Funcs {
		if i > 0 {
			out.WriteString("\n")
		}
		printFunc(&out, f)
	}
	return out.String()
}

func printFunc(out *strings.Builder, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	fmt.Fprintf(out, "fun @%s(%s): %s {\n", f.Name, strings.Join(params, ", "), f.Ret)
	for _, b := range f.Blocks {
		fmt.Fprintf(out, "%s:\n", b.Label)
		for _, instr := range b.Instrs {
			out.WriteString(printInstr(instr))
		}
	}
	out.WriteString("}\n")
}

func printInstr(instr Instruction) string {
	switch n := instr.(type) {
	case *Alloc:
		return fmt.Sprintf("%s = alloc %s\n", n.Dest, n.Type)
	case *Load:
		return fmt.Sprintf("%s = load %s\n", n.Dest, n.Src)
	case *Store:
		return fmt.Sprintf("store %s, %s\n", n.Value, n.Dest)
	case *Binary:
		return fmt.Sprintf("%s = %s %s, %s\n", n.Dest, n.Op, n.L, n.R)
	case *Branch:
		return fmt.Sprintf("br %s, %s, %s\n", n.Cond, n.True, n.False)
	case *Jump:
		return fmt.Sprintf("jump %s\n", n.Target)
	case *Call:
		args := strings.Join(n.Args, ", ")
		if n.Dest == "" {
			return fmt.Sprintf("call %s(%s)\n", n.Callee, args)
		}
		return fmt.Sprintf("%s = call %s(%s)\n", n.Dest, n.Callee, args)
	case *Return:
		if n.Value == "" {
			return "ret\n"
		}
		return fmt.Sprintf("ret %s\n", n.Value)
	default:
		return ""
	}
}
