package riscv

import (
	"fmt"
	"strings"

	"sysyc/src/ir/koopa"
)

// lowerInstr emits the RV32IM sequence for one IR instruction, per spec.md
// §4.4's instruction lowering table. Every operand is materialized into a
// scratch register immediately before use and every result is stored straight
// back to its slot; no value is ever kept live in a register across
// instructions.
func lowerInstr(out *strings.Builder, fr *frame, instr koopa.Instruction) error {
	switch n := instr.(type) {
	case *koopa.Alloc:
		// Storage is reserved lazily on first reference; nothing to emit.
		return nil

	case *koopa.Load:
		materialize(out, fr, t0, n.Src)
		fmt.Fprintf(out, "\tsw\t%s, %s\n", t0, fr.operand(n.Dest))
		return nil

	case *koopa.Store:
		// Dest is always a declared local ("@sym"); a parameter's incoming value
		// is stored into its own slot here exactly once, by emitFunc's prologue
		// code (see ir/emit.go), and read back like any other local thereafter.
		materialize(out, fr, t0, n.Value)
		fmt.Fprintf(out, "\tsw\t%s, %s\n", t0, fr.operand(n.Dest))
		return nil

	case *koopa.Binary:
		return lowerBinary(out, fr, n)

	case *koopa.Branch:
		materialize(out, fr, t0, n.Cond)
		fmt.Fprintf(out, "\tbnez\t%s, %s\n", t0, strings.TrimPrefix(n.True, "%"))
		fmt.Fprintf(out, "\tj\t%s\n", strings.TrimPrefix(n.False, "%"))
		return nil

	case *koopa.Jump:
		fmt.Fprintf(out, "\tj\t%s\n", strings.TrimPrefix(n.Target, "%"))
		return nil

	case *koopa.Call:
		return lowerCall(out, fr, n)

	case *koopa.Return:
		if n.Value != "" {
			materialize(out, fr, a0, n.Value)
		}
		epilogue(out, fr)
		return nil

	default:
		return fmt.Errorf("unhandled instruction %T", instr)
	}
}

// lowerBinary implements spec.md §4.4's opcode table, including the three
// comparison opcodes (le, eq, ne) that RV32IM has no single instruction for.
func lowerBinary(out *strings.Builder, fr *frame, n *koopa.Binary) error {
	materialize(out, fr, t0, n.L)
	materialize(out, fr, t1, n.R)
	switch n.Op {
	case "add":
		fmt.Fprintf(out, "\tadd\t%s, %s, %s\n", t0, t0, t1)
	case "sub":
		fmt.Fprintf(out, "\tsub\t%s, %s, %s\n", t0, t0, t1)
	case "mul":
		fmt.Fprintf(out, "\tmul\t%s, %s, %s\n", t0, t0, t1)
	case "div":
		fmt.Fprintf(out, "\tdiv\t%s, %s, %s\n", t0, t0, t1)
	case "mod":
		fmt.Fprintf(out, "\trem\t%s, %s, %s\n", t0, t0, t1)
	case "and":
		fmt.Fprintf(out, "\tand\t%s, %s, %s\n", t0, t0, t1)
	case "or":
		fmt.Fprintf(out, "\tor\t%s, %s, %s\n", t0, t0, t1)
	case "lt":
		fmt.Fprintf(out, "\tslt\t%s, %s, %s\n", t0, t0, t1)
	case "le":
		fmt.Fprintf(out, "\tslt\t%s, %s, %s\n", t0, t1, t0)
		fmt.Fprintf(out, "\txori\t%s, %s, 1\n", t0, t0)
	case "eq":
		fmt.Fprintf(out, "\txor\t%s, %s, %s\n", t0, t0, t1)
		fmt.Fprintf(out, "\tseqz\t%s, %s\n", t0, t0)
	case "ne":
		fmt.Fprintf(out, "\txor\t%s, %s, %s\n", t0, t0, t1)
		fmt.Fprintf(out, "\tsnez\t%s, %s\n", t0, t0)
	default:
		return fmt.Errorf("unhandled binary opcode %q", n.Op)
	}
	fmt.Fprintf(out, "\tsw\t%s, %s\n", t0, fr.operand(n.Dest))
	return nil
}

// lowerCall implements spec.md §4.4's literal argument-passing algorithm: every
// argument, with no exception for a fixed register window, is materialized into
// a scratch register and stored to this call's slice of the outgoing-argument
// area. The callee reads them back via materialize's "%argN" case at offset
// size+4*i into ITS OWN frame, which sits exactly at sp for the call about to
// execute.
func lowerCall(out *strings.Builder, fr *frame, n *koopa.Call) error {
	for i, arg := range n.Args {
		materialize(out, fr, t0, arg)
		fmt.Fprintf(out, "\tsw\t%s, %d(%s)\n", t0, i*4, sp)
	}
	fmt.Fprintf(out, "\tcall\t%s\n", strings.TrimPrefix(n.Callee, "@"))
	if n.Dest != "" {
		fmt.Fprintf(out, "\tsw\t%s, %s\n", a0, fr.operand(n.Dest))
	}
	return nil
}
