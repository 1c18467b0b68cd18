package riscv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sysyc/src/ir/koopa"
)

// argRef matches the pseudo-operand "%argN" package ir's emitter uses to denote
// an incoming function parameter (see ir/emit.go's emitFunc).
var argRef = regexp.MustCompile(`^%arg(\d+)$`)

// frame holds one function's stack-frame layout and its stack map: the mapping
// from each IR value needing storage to its "<offset>(sp)" operand, per spec.md
// §3's transient "stack map" data model and §4.4's spill-everywhere discipline.
type frame struct {
	size int

	slots    map[string]int // IR value name ("@sym" or "%N") -> offset from sp.
	nextSlot int
}

func (fr *frame) slot(name string) int {
	if off, ok := fr.slots[name]; ok {
		return off
	}
	off := fr.nextSlot
	fr.slots[name] = off
	fr.nextSlot += 4
	return off
}

// operand returns the "<offset>(sp)" textual operand for an IR value, allocating
// a fresh slot on first reference — "Alloc -> no code; slot reserved lazily"
// generalizes naturally to every value kind this backend spills.
func (fr *frame) operand(name string) string {
	return fmt.Sprintf("%d(%s)", fr.slot(name), sp)
}

// genFunc lowers one function's whole control-flow graph: frame layout, prologue,
// each basic block in layout order, and the epilogue emitted at every return.
func genFunc(out *strings.Builder, f *koopa.Function) error {
	argsArea := 4 * maxCalleeArgs(f)
	localsArea := 4 * countLocals(f)
	size := roundUp16(argsArea + localsArea + 4) // +4 for the ra slot.

	// Locals sit above the outgoing-argument area, per spec.md §4.4's frame
	// layout: args_area at the bottom, locals_area above it. Starting nextSlot
	// at argsArea keeps a local's slot from aliasing a 0(sp).. outgoing argument
	// slot that a call inside this function writes through lowerCall.
	fr := &frame{size: size, slots: make(map[string]int), nextSlot: argsArea}

	fmt.Fprintf(out, ".globl %s\n%s:\n", f.Name, f.Name)
	fmt.Fprintf(out, "\taddi\t%s, %s, -%d\n", sp, sp, size)
	fmt.Fprintf(out, "\tsw\t%s, %d(%s)\n", ra, size-4, sp)

	// Incoming parameters are read directly out of the caller's outgoing-argument
	// area via materialize's "%argN" case; they are never copied into a local slot.

	for bi, bb := range f.Blocks {
		if bi > 0 {
			fmt.Fprintf(out, "%s:\n", strings.TrimPrefix(bb.Label, "%"))
		}
		for _, instr := range bb.Instrs {
			if err := lowerInstr(out, fr, instr); err != nil {
				return err
			}
		}
	}
	return nil
}

// epilogue restores ra, deallocates the frame and returns.
func epilogue(out *strings.Builder, fr *frame) {
	fmt.Fprintf(out, "\tlw\t%s, %d(%s)\n", ra, fr.size-4, sp)
	fmt.Fprintf(out, "\taddi\t%s, %s, %d\n", sp, sp, fr.size)
	out.WriteString("\tret\n")
}

// materialize loads operand's value into register reg, distinguishing immediates,
// incoming-parameter references ("%argN", read from the caller's outgoing-argument
// area directly above this frame) and ordinary spilled values.
func materialize(out *strings.Builder, fr *frame, reg, operand string) {
	if v, err := strconv.Atoi(operand); err == nil {
		fmt.Fprintf(out, "\tli\t%s, %d\n", reg, v)
		return
	}
	if m := argRef.FindStringSubmatch(operand); m != nil {
		n, _ := strconv.Atoi(m[1])
		fmt.Fprintf(out, "\tlw\t%s, %d(%s)\n", reg, fr.size+4*n, sp)
		return
	}
	fmt.Fprintf(out, "\tlw\t%s, %s\n", reg, fr.operand(operand))
}

// maxCalleeArgs returns the largest argument count over every call instruction in
// f, sizing the outgoing-argument area of f's own frame (spec.md §4.4 args_area).
func maxCalleeArgs(f *koopa.Function) int {
	max := 0
	for _, bb := range f.Blocks {
		for _, instr := range bb.Instrs {
			if c, ok := instr.(*koopa.Call); ok && len(c.Args) > max {
				max = len(c.Args)
			}
		}
	}
	return max
}

// countLocals returns an upper bound on the number of distinct IR values needing
// a stack slot: every "@sym" alloc plus every instruction that produces a named
// result. This matches spec.md §4.4's "4 * (number of IR values in the function)"
// sizing rule; incoming parameters ("%argN") are excluded since they are read
// directly from the caller's frame rather than copied into a local slot.
func countLocals(f *koopa.Function) int {
	seen := make(map[string]bool)
	for _, bb := range f.Blocks {
		for _, instr := range bb.Instrs {
			switch n := instr.(type) {
			case *koopa.Alloc:
				seen[n.Dest] = true
			case *koopa.Load:
				seen[n.Dest] = true
			case *koopa.Binary:
				seen[n.Dest] = true
			case *koopa.Call:
				if n.Dest != "" {
					seen[n.Dest] = true
				}
			}
		}
	}
	return len(seen)
}

func roundUp16(n int) int {
	if rem := n % 16; rem != 0 {
		n += 16 - rem
	}
	return n
}
