// Package llvm lowers the koopa IR model to LLVM IR and emits an object file,
// via tinygo.org/x/go-llvm. This is the additive "-llvm" mode spec.md's two
// required modes don't name (see SPEC_FULL.md §10.3); it generalizes the
// teacher's ir/llvm/transform.go, which walked the teacher's own syntax tree
// directly, to instead walk this repo's koopa.Program — so the same backend
// library the teacher depends on gets a real, exercised home here too.
package llvm

import (
	"fmt"
	"io/ioutil"

	"tinygo.org/x/go-llvm"

	"sysyc/src/ir/koopa"
)

func writeFile(path string, data []byte) error {
	return ioutil.WriteFile(path, data, 0644)
}

var i32 = llvm.Int32Type()

// Generate lowers p to LLVM IR and writes a target object file to path.
func Generate(p *koopa.Program, path string) error {
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	mod := ctx.NewModule("sysyc")
	defer mod.Dispose()
	builder := ctx.NewBuilder()
	defer builder.Dispose()

	funcs := make(map[string]llvm.Value, len(p.Funcs))
	for _, f := range p.Funcs {
		funcs[f.Name] = declareFunc(mod, f)
	}
	for _, f := range p.Funcs {
		if err := genFunc(builder, funcs, f); err != nil {
			return fmt.Errorf("function %q: %w", f.Name, err)
		}
	}

	if err := llvm.VerifyModule(mod, llvm.PrintMessageAction); err != nil {
		return fmt.Errorf("module verification failed: %w", err)
	}

	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()
	target, err := llvm.GetTargetFromTriple(llvm.DefaultTargetTriple())
	if err != nil {
		return fmt.Errorf("resolving target: %w", err)
	}
	machine := target.CreateTargetMachine(llvm.DefaultTargetTriple(), "", "",
		llvm.CodeGenLevelNone, llvm.RelocDefault, llvm.CodeModelDefault)
	defer machine.Dispose()

	buf, err := machine.EmitToMemoryBuffer(mod, llvm.ObjectFile)
	if err != nil {
		return fmt.Errorf("emitting object code: %w", err)
	}
	defer buf.Dispose()
	return writeFile(path, buf.Bytes())
}

func retType(ret string) llvm.Type {
	if ret == "void" {
		return llvm.VoidType()
	}
	return i32
}

func declareFunc(mod llvm.Module, f *koopa.Function) llvm.Value {
	params := make([]llvm.Type, len(f.Params))
	for i := range f.Params {
		params[i] = i32
	}
	ft := llvm.FunctionType(retType(f.Ret), params, false)
	return llvm.AddFunction(mod, f.Name, ft)
}

// genFunc lowers one function body. Every koopa value (alloc destination or
// SSA temporary) maps to either an llvm.Value directly (temporaries, which are
// already in SSA form) or a stack slot produced by CreateAlloca (named
// storage), mirroring the distinction koopa.Alloc/koopa.Load/koopa.Store make
// explicit in the source IR.
func genFunc(b llvm.Builder, funcs map[string]llvm.Value, f *koopa.Function) error {
	fn := funcs[f.Name]
	blocks := make(map[string]llvm.BasicBlock, len(f.Blocks))
	for _, bb := range f.Blocks {
		blocks[bb.Label] = llvm.AddBasicBlock(fn, bb.Label)
	}

	vals := make(map[string]llvm.Value)
	slots := make(map[string]llvm.Value)
	for i, p := range f.Params {
		vals[p.Name] = fn.Param(i)
	}

	operand := func(name string) (llvm.Value, error) {
		if v, ok := vals[name]; ok {
			return v, nil
		}
		var n int64
		if _, err := fmt.Sscanf(name, "%d", &n); err == nil {
			return llvm.ConstInt(i32, uint64(n), true), nil
		}
		return llvm.Value{}, fmt.Errorf("unresolved operand %q", name)
	}

	for _, bb := range f.Blocks {
		b.SetInsertPointAtEnd(blocks[bb.Label])
		for _, instr := range bb.Instrs {
			switch n := instr.(type) {
			case *koopa.Alloc:
				slots[n.Dest] = b.CreateAlloca(i32, n.Dest)
			case *koopa.Load:
				vals[n.Dest] = b.CreateLoad(i32, slots[n.Src], n.Dest)
			case *koopa.Store:
				v, err := operand(n.Value)
				if err != nil {
					return err
				}
				b.CreateStore(v, slots[n.Dest])
			case *koopa.Binary:
				l, err := operand(n.L)
				if err != nil {
					return err
				}
				r, err := operand(n.R)
				if err != nil {
					return err
				}
				v, err := genBinary(b, n.Op, l, r)
				if err != nil {
					return err
				}
				vals[n.Dest] = v
			case *koopa.Call:
				callee, ok := funcs[trimSigil(n.Callee)]
				if !ok {
					return fmt.Errorf("call to undeclared function %q", n.Callee)
				}
				args := make([]llvm.Value, len(n.Args))
				for i, a := range n.Args {
					v, err := operand(a)
					if err != nil {
						return err
					}
					args[i] = v
				}
				name := n.Dest
				res := b.CreateCall(callee.GlobalValueType(), callee, args, name)
				if n.Dest != "" {
					vals[n.Dest] = res
				}
			case *koopa.Branch:
				c, err := operand(n.Cond)
				if err != nil {
					return err
				}
				cond := b.CreateICmp(llvm.IntNE, c, llvm.ConstInt(i32, 0, false), "")
				b.CreateCondBr(cond, blocks[n.True], blocks[n.False])
			case *koopa.Jump:
				b.CreateBr(blocks[n.Target])
			case *koopa.Return:
				if n.Value == "" {
					b.CreateRetVoid()
				} else {
					v, err := operand(n.Value)
					if err != nil {
						return err
					}
					b.CreateRet(v)
				}
			}
		}
	}
	return nil
}

func genBinary(b llvm.Builder, op string, l, r llvm.Value) (llvm.Value, error) {
	switch op {
	case "add":
		return b.CreateAdd(l, r, ""), nil
	case "sub":
		return b.CreateSub(l, r, ""), nil
	case "mul":
		return b.CreateMul(l, r, ""), nil
	case "div":
		return b.CreateSDiv(l, r, ""), nil
	case "mod":
		return b.CreateSRem(l, r, ""), nil
	case "and":
		return b.CreateAnd(l, r, ""), nil
	case "or":
		return b.CreateOr(l, r, ""), nil
	case "lt":
		return zext(b, b.CreateICmp(llvm.IntSLT, l, r, "")), nil
	case "le":
		return zext(b, b.CreateICmp(llvm.IntSLE, l, r, "")), nil
	case "eq":
		return zext(b, b.CreateICmp(llvm.IntEQ, l, r, "")), nil
	case "ne":
		return zext(b, b.CreateICmp(llvm.IntNE, l, r, "")), nil
	default:
		return llvm.Value{}, fmt.Errorf("unhandled binary opcode %q", op)
	}
}

func zext(b llvm.Builder, v llvm.Value) llvm.Value {
	return b.CreateZExt(v, i32, "")
}

func trimSigil(s string) string {
	if len(s) > 0 && s[0] == '@' {
		return s[1:]
	}
	return s
}
