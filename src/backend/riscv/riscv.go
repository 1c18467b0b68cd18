// Package riscv lowers the in-memory koopa IR model to RISC-V 32-bit (RV32IM)
// textual assembly. It follows a spill-everywhere discipline (spec.md §4.4,
// §9): every IR value with a result gets a stack slot, operands are loaded into
// scratch registers immediately before use, and results are stored back — there
// is no liveness analysis or register allocation, matching the teacher's own
// register-file bookkeeping style (vslc/src/backend/riscv/riscv.go) pared down to
// the two scratch registers the spill-everywhere discipline actually needs.
package riscv

import (
	"fmt"
	"strings"

	"sysyc/src/ir/koopa"
)

// Register name aliases, following the teacher's naming convention
// (vslc/src/backend/riscv/riscv.go) but limited to what spill-everywhere codegen
// needs: zero, ra, sp for frame bookkeeping, a0 for the return value, t0/t1 as the
// two scratch registers operands are always immediately loaded into and consumed
// from.
const (
	zero = "zero"
	ra   = "ra"
	sp   = "sp"
	a0   = "a0"
	t0   = "t0"
	t1   = "t1"
)

// Generate lowers an entire koopa.Program to RV32IM assembly text.
func Generate(p *koopa.Program) (string, error) {
	var out strings.Builder
	out.WriteString(".text\n")
	for _, f := range p.Funcs {
		if err := genFunc(&out, f); err != nil {
			return "", fmt.Errorf("function %q: %w", f.Name, err)
		}
	}
	return out.String(), nil
}
