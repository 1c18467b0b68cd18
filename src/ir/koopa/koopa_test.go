package koopa

import (
	"strings"
	"testing"
)

const sample = `fun @add(%arg0: i32, %arg1: i32): i32 {
%entry:
@a_0 = alloc i32
store %arg0, @a_0
@b_1 = alloc i32
store %arg1, @b_1
%0 = load @a_0
%1 = load @b_1
%2 = add %0, %1
ret %2
}
`

func TestParseFunctionHeader(t *testing.T) {
	p, err := Parse(sample)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(p.Funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(p.Funcs))
	}
	f := p.Funcs[0]
	if f.Name != "add" || f.Ret != "i32" {
		t.Fatalf("unexpected function shape: %+v", f)
	}
	if len(f.Params) != 2 || f.Params[0].Name != "%arg0" || f.Params[1].Type != "i32" {
		t.Fatalf("unexpected params: %+v", f.Params)
	}
}

func TestParseBlocksAndInstructions(t *testing.T) {
	p, err := Parse(sample)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	f := p.Funcs[0]
	if len(f.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(f.Blocks))
	}
	bb := f.Blocks[0]
	if bb.Label != "%entry" {
		t.Fatalf("got label %q, want %%entry", bb.Label)
	}
	if len(bb.Instrs) != 8 {
		t.Fatalf("got %d instructions, want 8", len(bb.Instrs))
	}
	if _, ok := bb.Instrs[0].(*Alloc); !ok {
		t.Errorf("instr 0: expected *Alloc, got %T", bb.Instrs[0])
	}
	add, ok := bb.Instrs[6].(*Binary)
	if !ok || add.Op != "add" {
		t.Fatalf("instr 6: expected add *Binary, got %+v", bb.Instrs[6])
	}
	ret, ok := bb.Instrs[7].(*Return)
	if !ok || ret.Value != "%2" {
		t.Fatalf("instr 7: expected ret %%2, got %+v", bb.Instrs[7])
	}
	if bb.Terminator() != ret {
		t.Errorf("Terminator() did not return the block's Return instruction")
	}
}

// TestRoundTrip checks that Print(Parse(text)) reproduces text, the property
// the textual IR / in-memory model pair must satisfy so the RISC-V backend
// (which only ever consumes the parsed model) sees exactly what the emitter
// wrote.
func TestRoundTrip(t *testing.T) {
	p, err := Parse(sample)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	got := Print(p)
	if strings.TrimSpace(got) != strings.TrimSpace(sample) {
		t.Fatalf("round trip mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, sample)
	}
}

func TestParseBranchAndJump(t *testing.T) {
	text := `fun @f(): void {
%entry:
%0 = ne 0, 1
br %0, %then_0, %end_0
%then_0:
jump %end_0
%end_0:
ret
}
`
	p, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	f := p.Funcs[0]
	if len(f.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(f.Blocks))
	}
	br, ok := f.Blocks[0].Instrs[1].(*Branch)
	if !ok || br.True != "%then_0" || br.False != "%end_0" {
		t.Fatalf("unexpected branch: %+v", f.Blocks[0].Instrs[1])
	}
	jmp, ok := f.Blocks[1].Instrs[0].(*Jump)
	if !ok || jmp.Target != "%end_0" {
		t.Fatalf("unexpected jump: %+v", f.Blocks[1].Instrs[0])
	}
}

func TestParseVoidCall(t *testing.T) {
	text := `fun @f(): void {
%entry:
call @g(1, 2)
ret
}
`
	p, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	call, ok := p.Funcs[0].Blocks[0].Instrs[0].(*Call)
	if !ok || call.Dest != "" || call.Callee != "@g" || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %+v", p.Funcs[0].Blocks[0].Instrs[0])
	}
}

func TestParseMalformedInstructionFails(t *testing.T) {
	text := "fun @f(): void {\n%entry:\nthis is not an instruction\n}\n"
	if _, err := Parse(text); err == nil {
		t.Fatalf("expected a parse error for malformed IR")
	}
}
