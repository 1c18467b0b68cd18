// Package koopa provides the in-memory graph model for the textual Koopa-style IR
// emitted by package ir: functions, basic blocks, and instructions, together with
// a parser (Parse) that reads the text back into this model and a printer (Print)
// that serializes it again. This is the "IR parser/model" component of spec.md §2,
// named after the Koopa IR dialect the spec describes and that original_source
// targets through the real koopa Rust crate.
package koopa

// Program is an ordered sequence of functions.
type Program struct {
	Funcs []*Function
}

// Param is one incoming function parameter, always of type "i32" in this
// language.
type Param struct {
	Name string // e.g. "%arg0"
	Type string
}

// Function is one function's control-flow graph: a name, return type, ordered
// parameter list and ordered basic blocks, always starting with "%entry".
type Function struct {
	Name   string
	Params []Param
	Ret    string // "i32" or "void"
	Blocks []*BasicBlock
}

// BasicBlock is a maximal straight-line instruction sequence with a single
// terminator as its last instruction.
type BasicBlock struct {
	Label  string // e.g. "%entry", "%while_end_0"
	Instrs []Instruction
}

// Terminator returns the block's terminating instruction, or nil if the block is
// (invalidly) empty or lacks one.
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	switch last.(type) {
	case *Return, *Branch, *Jump:
		return last
	default:
		return nil
	}
}

// Instruction is one IR instruction. The concrete types below mirror spec.md §3's
// instruction-kind enumeration exactly.
type Instruction interface {
	instrNode()
}

// Alloc reserves stack storage for a named pointer-like value.
type Alloc struct {
	Dest string // "@sym"
	Type string
}

func (*Alloc) instrNode() {}

// Load reads the value stored at Src into a fresh SSA temporary Dest.
type Load struct {
	Dest string // "%N"
	Src  string // "@sym"
}

func (*Load) instrNode() {}

// Store writes Value into the storage named by Dest.
type Store struct {
	Value string
	Dest  string // "@sym"
}

func (*Store) instrNode() {}

// Binary computes Op(L, R) into a fresh SSA temporary Dest.
type Binary struct {
	Dest string // "%N"
	Op   string
	L, R string
}

func (*Binary) instrNode() {}

// Branch transfers control to True if Cond is nonzero, else to False. It is
// always the last instruction of its basic block.
type Branch struct {
	Cond        string
	True, False string
}

func (*Branch) instrNode() {}

// Jump transfers control unconditionally to Target. It is always the last
// instruction of its basic block.
type Jump struct {
	Target string
}

func (*Jump) instrNode() {}

// Call invokes Callee with Args, binding the result to Dest. Dest is empty for a
// void-returning callee.
type Call struct {
	Dest   string // "%N", or "" for a void call
	Callee string
	Args   []string
}

func (*Call) instrNode() {}

// Return returns from the current function, optionally with Value. It is always
// the last instruction of its basic block.
type Return struct {
	Value string // "" for a bare "ret"
}

func (*Return) instrNode() {}
