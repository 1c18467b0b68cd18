package ir

import (
	"fmt"

	"sysyc/src/ast"
)

// EvalConst folds a constant expression over env, restricted to ast.Number,
// ast.Unary, ast.Binary, and ast.LVal bound to a BindConst binding. Semantics are
// those of 32-bit signed integer arithmetic; relational, equality and logical
// operators yield 0 or 1. An ast.LVal resolving to a BindVar binding, or any
// ast.Call, fails with a "non-constant in constant context" error.
func EvalConst(env *Env, e ast.Expr) (int32, error) {
	switch n := e.(type) {
	case *ast.Number:
		return n.Value, nil
	case *ast.LVal:
		b, _, err := env.Lookup(n.Name)
		if err != nil {
			return 0, err
		}
		if b.Kind != BindConst {
			return 0, fmt.Errorf("%q is not a constant in constant context", n.Name)
		}
		return b.Value, nil
	case *ast.Unary:
		x, err := EvalConst(env, n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case ast.UnaryPlus:
			return x, nil
		case ast.UnaryMinus:
			return -x, nil
		case ast.UnaryNot:
			return boolToI32(x == 0), nil
		}
	case *ast.Binary:
		l, err := EvalConst(env, n.L)
		if err != nil {
			return 0, err
		}
		r, err := EvalConst(env, n.R)
		if err != nil {
			return 0, err
		}
		return evalBinaryConst(n.Op, l, r)
	case *ast.Call:
		return 0, fmt.Errorf("call to %q is not a constant in constant context", n.Callee)
	}
	return 0, fmt.Errorf("expression is not constant")
}

func evalBinaryConst(op ast.BinaryOp, l, r int32) (int32, error) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Sub:
		return l - r, nil
	case ast.Mul:
		return l * r, nil
	case ast.Div:
		if r == 0 {
			return 0, fmt.Errorf("division by zero in constant expression")
		}
		return l / r, nil
	case ast.Mod:
		if r == 0 {
			return 0, fmt.Errorf("division by zero in constant expression")
		}
		return l % r, nil
	case ast.Lt:
		return boolToI32(l < r), nil
	case ast.Le:
		return boolToI32(l <= r), nil
	case ast.Gt:
		return boolToI32(l > r), nil
	case ast.Ge:
		return boolToI32(l >= r), nil
	case ast.Eq:
		return boolToI32(l == r), nil
	case ast.Ne:
		return boolToI32(l != r), nil
	case ast.LAnd:
		return boolToI32(l != 0 && r != 0), nil
	case ast.LOr:
		return boolToI32(l != 0 || r != 0), nil
	}
	return 0, fmt.Errorf("unknown binary operator %v", op)
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
