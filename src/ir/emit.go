package ir

import (
	"fmt"
	"strings"

	"sysyc/src/ast"
)

// funcSig records the externally-visible shape of a function, gathered in a first
// pass over the compilation unit so that calls to functions declared later in the
// source (or mutually recursive calls) lower correctly without a second pass.
type funcSig struct {
	Ret       ast.RetType
	NumParams int
}

// emitter holds the state threaded through one pre-order walk of a single
// function's body: the shared Context (SSA/scope/label counters, valid across the
// whole compilation unit), the current symbol environment, the enclosing-loop
// label stacks for break/continue, and whether the block currently being built has
// already received a terminator.
type emitter struct {
	ctx        *Context
	env        *Env
	sigs       map[string]funcSig
	out        strings.Builder
	loopEntry  []string
	loopEnd    []string
	terminated bool
}

// Emit lowers a parsed compilation unit into Koopa-style textual SSA IR.
func Emit(cu *ast.CompUnit) (string, error) {
	ctx := NewContext()
	sigs := make(map[string]funcSig, len(cu.Funcs))
	for _, f := range cu.Funcs {
		if _, dup := sigs[f.Name]; dup {
			return "", fmt.Errorf("redefinition of function %q", f.Name)
		}
		sigs[f.Name] = funcSig{Ret: f.Ret, NumParams: len(f.Params)}
	}

	var out strings.Builder
	for i, f := range cu.Funcs {
		if i > 0 {
			out.WriteString("\n")
		}
		e := &emitter{ctx: ctx, env: NewEnv(ctx), sigs: sigs}
		if err := e.emitFunc(f); err != nil {
			return "", err
		}
		out.WriteString(e.out.String())
	}
	return out.String(), nil
}

func (e *emitter) emit(format string, args ...interface{}) {
	e.out.WriteString(fmt.Sprintf(format, args...))
}

func (e *emitter) emitFunc(f *ast.FuncDef) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%%arg%d: i32", i)
		_ = p
	}
	e.emit("fun @%s(%s): %s {\n", f.Name, strings.Join(params, ", "), retTypeName(f.Ret))
	e.emit("%%entry:\n")
	e.terminated = false

	for i, p := range f.Params {
		if err := e.env.DefineVar(p.Name); err != nil {
			return err
		}
		_, mangled, _ := e.env.Lookup(p.Name)
		e.emit("@%s = alloc i32\n", mangled)
		e.emit("store %%arg%d, @%s\n", i, mangled)
	}

	if err := e.emitBlockItems(f.Body.Items); err != nil {
		return err
	}
	e.ensureTerminated(f.Ret)
	e.emit("}\n")
	return nil
}

// retTypeName renders a function's declared return kind as the Koopa type
// name that belongs in an IR function header ("i32" or "void"), as opposed
// to ast.RetType.String()'s source-level spelling ("int" or "void") used in
// diagnostics.
func retTypeName(t ast.RetType) string {
	if t == ast.RetVoid {
		return "void"
	}
	return "i32"
}

// ensureTerminated closes a dangling final basic block with a default return, so
// that source programs whose control flow visibly covers every path (but where the
// last lexical statement was, say, an "if" without an "else") still produce valid
// IR under invariant 1 (every basic block ends in exactly one terminator).
func (e *emitter) ensureTerminated(ret ast.RetType) {
	if e.terminated {
		return
	}
	if ret == ast.RetVoid {
		e.emit("ret\n")
	} else {
		e.emit("ret 0\n")
	}
	e.terminated = true
}

// emitBlockItems lowers an ordered sequence of declarations/statements, stopping
// as soon as one of them terminates the current basic block: anything lexically
// following a return/break/continue in the same block is unreachable and must not
// be emitted (spec.md S5, invariant 1).
func (e *emitter) emitBlockItems(items []ast.BlockItem) error {
	for _, it := range items {
		term, err := e.emitBlockItem(it)
		if err != nil {
			return err
		}
		if term {
			e.terminated = true
			return nil
		}
	}
	return nil
}

func (e *emitter) emitBlockItem(item ast.BlockItem) (bool, error) {
	switch n := item.(type) {
	case *ast.ConstDecl:
		return false, e.emitConstDecl(n)
	case *ast.VarDecl:
		return false, e.emitVarDecl(n)
	case ast.Stmt:
		return e.emitStmt(n)
	default:
		return false, fmt.Errorf("unhandled block item %T", item)
	}
}

func (e *emitter) emitConstDecl(d *ast.ConstDecl) error {
	for _, def := range d.Defs {
		v, err := EvalConst(e.env, def.Value)
		if err != nil {
			return err
		}
		if err := e.env.DefineConst(def.Name, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitVarDecl(d *ast.VarDecl) error {
	for _, def := range d.Defs {
		if err := e.env.DefineVar(def.Name); err != nil {
			return err
		}
		_, mangled, _ := e.env.Lookup(def.Name)
		e.emit("@%s = alloc i32\n", mangled)
		if def.Init != nil {
			prelude, operand, err := e.emitExpr(def.Init)
			if err != nil {
				return err
			}
			e.out.WriteString(prelude)
			e.emit("store %s, @%s\n", operand, mangled)
		}
	}
	return nil
}

// emitStmt lowers a single statement and reports whether it unconditionally
// terminates the basic block it was emitted into.
func (e *emitter) emitStmt(s ast.Stmt) (bool, error) {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		if n.Value == nil {
			e.emit("ret\n")
			return true, nil
		}
		prelude, operand, err := e.emitExpr(n.Value)
		if err != nil {
			return false, err
		}
		e.out.WriteString(prelude)
		e.emit("ret %s\n", operand)
		return true, nil

	case *ast.AssignStmt:
		b, mangled, err := e.env.Lookup(n.Name)
		if err != nil {
			return false, err
		}
		if b.Kind != BindVar {
			return false, fmt.Errorf("assignment to non-variable %q", n.Name)
		}
		prelude, operand, err := e.emitExpr(n.Value)
		if err != nil {
			return false, err
		}
		e.out.WriteString(prelude)
		e.emit("store %s, @%s\n", operand, mangled)
		return false, nil

	case *ast.BlockStmt:
		e.env.Push()
		term, err := func() (bool, error) {
			for _, it := range n.Body.Items {
				t, err := e.emitBlockItem(it)
				if err != nil {
					return false, err
				}
				if t {
					return true, nil
				}
			}
			return false, nil
		}()
		e.env.Pop()
		return term, err

	case *ast.ExprStmt:
		if n.Value == nil {
			return false, nil
		}
		if call, ok := n.Value.(*ast.Call); ok {
			prelude, err := e.emitCallStmt(call)
			if err != nil {
				return false, err
			}
			e.out.WriteString(prelude)
			return false, nil
		}
		prelude, _, err := e.emitExpr(n.Value)
		if err != nil {
			return false, err
		}
		e.out.WriteString(prelude)
		return false, nil

	case *ast.IfStmt:
		return e.emitIf(n)

	case *ast.WhileStmt:
		return e.emitWhile(n)

	case *ast.BreakStmt:
		if len(e.loopEnd) == 0 {
			return false, fmt.Errorf("break outside loop")
		}
		e.emit("jump %s\n", e.loopEnd[len(e.loopEnd)-1])
		return true, nil

	case *ast.ContinueStmt:
		if len(e.loopEntry) == 0 {
			return false, fmt.Errorf("continue outside loop")
		}
		e.emit("jump %s\n", e.loopEntry[len(e.loopEntry)-1])
		return true, nil

	default:
		return false, fmt.Errorf("unhandled statement %T", s)
	}
}

func (e *emitter) emitIf(n *ast.IfStmt) (bool, error) {
	condPrelude, condOp, err := e.emitExpr(n.Cond)
	if err != nil {
		return false, err
	}
	e.out.WriteString(condPrelude)

	k := e.ctx.NextIfLabels()
	thenLbl := fmt.Sprintf("%%then_%d", k)
	endLbl := fmt.Sprintf("%%end_%d", k)

	if n.Else == nil {
		e.emit("br %s, %s, %s\n", condOp, thenLbl, endLbl)
		e.emit("%s:\n", thenLbl)
		thenTerm, err := e.emitStmt(n.Then)
		if err != nil {
			return false, err
		}
		if !thenTerm {
			e.emit("jump %s\n", endLbl)
		}
		e.emit("%s:\n", endLbl)
		return false, nil
	}

	elseLbl := fmt.Sprintf("%%else_%d", k)
	e.emit("br %s, %s, %s\n", condOp, thenLbl, elseLbl)
	e.emit("%s:\n", thenLbl)
	thenTerm, err := e.emitStmt(n.Then)
	if err != nil {
		return false, err
	}
	if !thenTerm {
		e.emit("jump %s\n", endLbl)
	}
	e.emit("%s:\n", elseLbl)
	elseTerm, err := e.emitStmt(n.Else)
	if err != nil {
		return false, err
	}
	if !elseTerm {
		e.emit("jump %s\n", endLbl)
	}
	if thenTerm && elseTerm {
		// Both branches terminate: the end block would have no predecessors, so
		// skip it rather than emit an unreachable, unterminated basic block.
		return true, nil
	}
	e.emit("%s:\n", endLbl)
	return false, nil
}

func (e *emitter) emitWhile(n *ast.WhileStmt) (bool, error) {
	k := e.ctx.NextWhileLabels()
	entryLbl := fmt.Sprintf("%%while_entry_%d", k)
	bodyLbl := fmt.Sprintf("%%while_body_%d", k)
	endLbl := fmt.Sprintf("%%while_end_%d", k)

	e.emit("jump %s\n", entryLbl)
	e.emit("%s:\n", entryLbl)

	condPrelude, condOp, err := e.emitExpr(n.Cond)
	if err != nil {
		return false, err
	}
	e.out.WriteString(condPrelude)
	e.emit("br %s, %s, %s\n", condOp, bodyLbl, endLbl)
	e.emit("%s:\n", bodyLbl)

	e.loopEntry = append(e.loopEntry, entryLbl)
	e.loopEnd = append(e.loopEnd, endLbl)
	bodyTerm, err := e.emitStmt(n.Body)
	e.loopEntry = e.loopEntry[:len(e.loopEntry)-1]
	e.loopEnd = e.loopEnd[:len(e.loopEnd)-1]
	if err != nil {
		return false, err
	}
	if !bodyTerm {
		e.emit("jump %s\n", entryLbl)
	}
	e.emit("%s:\n", endLbl)
	return false, nil
}

// emitCallStmt lowers a call used purely for its side effects: a void-returning
// callee's result is never captured into an SSA temporary.
func (e *emitter) emitCallStmt(n *ast.Call) (string, error) {
	prelude, args, err := e.emitArgs(n.Args)
	if err != nil {
		return "", err
	}
	sig, ok := e.sigs[n.Callee]
	if !ok {
		return "", fmt.Errorf("call to undeclared function %q", n.Callee)
	}
	if sig.Ret == ast.RetVoid {
		return prelude + fmt.Sprintf("call @%s(%s)\n", n.Callee, strings.Join(args, ", ")), nil
	}
	temp := e.ctx.NextTemp()
	return prelude + fmt.Sprintf("%s = call @%s(%s)\n", temp, n.Callee, strings.Join(args, ", ")), nil
}

func (e *emitter) emitArgs(argExprs []ast.Expr) (string, []string, error) {
	var prelude strings.Builder
	args := make([]string, len(argExprs))
	for i, a := range argExprs {
		p, op, err := e.emitExpr(a)
		if err != nil {
			return "", nil, err
		}
		prelude.WriteString(p)
		args[i] = op
	}
	return prelude.String(), args, nil
}

// emitExpr lowers e, returning the prelude text (instructions that must run before
// the expression's value is available) and the operand denoting its value: either
// an immediate integer or an SSA temporary name.
func (e *emitter) emitExpr(expr ast.Expr) (string, string, error) {
	switch n := expr.(type) {
	case *ast.Number:
		return "", fmt.Sprint(n.Value), nil

	case *ast.LVal:
		b, mangled, err := e.env.Lookup(n.Name)
		if err != nil {
			return "", "", err
		}
		if b.Kind == BindConst {
			return "", fmt.Sprint(b.Value), nil
		}
		temp := e.ctx.NextTemp()
		return fmt.Sprintf("%s = load @%s\n", temp, mangled), temp, nil

	case *ast.Call:
		prelude, args, err := e.emitArgs(n.Args)
		if err != nil {
			return "", "", err
		}
		if _, ok := e.sigs[n.Callee]; !ok {
			return "", "", fmt.Errorf("call to undeclared function %q", n.Callee)
		}
		temp := e.ctx.NextTemp()
		return prelude + fmt.Sprintf("%s = call @%s(%s)\n", temp, n.Callee, strings.Join(args, ", ")), temp, nil

	case *ast.Unary:
		return e.emitUnary(n)

	case *ast.Binary:
		if n.Op == ast.LAnd || n.Op == ast.LOr {
			return e.emitShortCircuit(n)
		}
		return e.emitBinary(n)

	default:
		return "", "", fmt.Errorf("unhandled expression %T", expr)
	}
}

func (e *emitter) emitUnary(n *ast.Unary) (string, string, error) {
	prelude, operand, err := e.emitExpr(n.X)
	if err != nil {
		return "", "", err
	}
	switch n.Op {
	case ast.UnaryPlus:
		return prelude, operand, nil
	case ast.UnaryMinus:
		temp := e.ctx.NextTemp()
		return prelude + fmt.Sprintf("%s = sub 0, %s\n", temp, operand), temp, nil
	case ast.UnaryNot:
		temp := e.ctx.NextTemp()
		return prelude + fmt.Sprintf("%s = eq 0, %s\n", temp, operand), temp, nil
	default:
		return "", "", fmt.Errorf("unknown unary operator %v", n.Op)
	}
}

// binOpcode maps a non-short-circuit ast.BinaryOp to its IR opcode and reports
// whether the two operands must be swapped: ">" and ">=" are lowered as "<" and
// "<=" with swapped operands rather than as dedicated "gt"/"ge" opcodes (spec.md
// §9 resolves this open question in favor of fewer IR opcodes).
func binOpcode(op ast.BinaryOp) (opcode string, swap bool) {
	switch op {
	case ast.Add:
		return "add", false
	case ast.Sub:
		return "sub", false
	case ast.Mul:
		return "mul", false
	case ast.Div:
		return "div", false
	case ast.Mod:
		return "mod", false
	case ast.Lt:
		return "lt", false
	case ast.Le:
		return "le", false
	case ast.Gt:
		return "lt", true
	case ast.Ge:
		return "le", true
	case ast.Eq:
		return "eq", false
	case ast.Ne:
		return "ne", false
	}
	return "", false
}

func (e *emitter) emitBinary(n *ast.Binary) (string, string, error) {
	lp, lop, err := e.emitExpr(n.L)
	if err != nil {
		return "", "", err
	}
	rp, rop, err := e.emitExpr(n.R)
	if err != nil {
		return "", "", err
	}
	opcode, swap := binOpcode(n.Op)
	if opcode == "" {
		return "", "", fmt.Errorf("unknown binary operator %v", n.Op)
	}
	if swap {
		lop, rop = rop, lop
	}
	temp := e.ctx.NextTemp()
	instr := fmt.Sprintf("%s = %s %s, %s\n", temp, opcode, lop, rop)
	return lp + rp + instr, temp, nil
}

// emitShortCircuit lowers "&&"/"||" to branching code over a stack-allocated i32
// slot, per spec.md §4.3: a pure IR "and"/"or" instruction would evaluate both
// operands, which is observably wrong once the right operand can have side
// effects (e.g. a function call).
func (e *emitter) emitShortCircuit(n *ast.Binary) (string, string, error) {
	lp, lop, err := e.emitExpr(n.L)
	if err != nil {
		return "", "", err
	}
	var out strings.Builder
	out.WriteString(lp)

	normL := e.ctx.NextTemp()
	out.WriteString(fmt.Sprintf("%s = ne 0, %s\n", normL, lop))

	k := e.ctx.NextIfLabels()
	// ".sc_<k>" can never collide with a mangled "<ident>_<offset>" user slot:
	// "." is not a valid identifier character, so no source identifier mangles
	// to a name starting with it.
	slot := fmt.Sprintf(".sc_%d", k)
	rhsLbl := fmt.Sprintf("%%sc_rhs_%d", k)
	endLbl := fmt.Sprintf("%%sc_end_%d", k)

	out.WriteString(fmt.Sprintf("@%s = alloc i32\n", slot))
	out.WriteString(fmt.Sprintf("store %s, @%s\n", normL, slot))

	if n.Op == ast.LAnd {
		out.WriteString(fmt.Sprintf("br %s, %s, %s\n", normL, rhsLbl, endLbl))
	} else {
		out.WriteString(fmt.Sprintf("br %s, %s, %s\n", normL, endLbl, rhsLbl))
	}

	out.WriteString(fmt.Sprintf("%s:\n", rhsLbl))
	rp, rop, err := e.emitExpr(n.R)
	if err != nil {
		return "", "", err
	}
	out.WriteString(rp)
	normR := e.ctx.NextTemp()
	out.WriteString(fmt.Sprintf("%s = ne 0, %s\n", normR, rop))
	out.WriteString(fmt.Sprintf("store %s, @%s\n", normR, slot))
	out.WriteString(fmt.Sprintf("jump %s\n", endLbl))

	out.WriteString(fmt.Sprintf("%s:\n", endLbl))
	result := e.ctx.NextTemp()
	out.WriteString(fmt.Sprintf("%s = load @%s\n", result, slot))

	return out.String(), result, nil
}
