package ir

import (
	"testing"

	"sysyc/src/ast"
)

func TestEvalConstArithmetic(t *testing.T) {
	env := NewEnv(NewContext())
	// (2 + 3) * 4 == 20
	e := &ast.Binary{
		Op: ast.Mul,
		L:  &ast.Binary{Op: ast.Add, L: &ast.Number{Value: 2}, R: &ast.Number{Value: 3}},
		R:  &ast.Number{Value: 4},
	}
	v, err := EvalConst(env, e)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v != 20 {
		t.Fatalf("got %d, want 20", v)
	}
}

func TestEvalConstReferencesConst(t *testing.T) {
	env := NewEnv(NewContext())
	if err := env.DefineConst("N", 7); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	v, err := EvalConst(env, &ast.LVal{Name: "N"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}

func TestEvalConstRejectsVariable(t *testing.T) {
	env := NewEnv(NewContext())
	if err := env.DefineVar("x"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := EvalConst(env, &ast.LVal{Name: "x"}); err == nil {
		t.Fatalf("expected a non-constant error referencing a variable")
	}
}

func TestEvalConstRejectsCall(t *testing.T) {
	env := NewEnv(NewContext())
	if _, err := EvalConst(env, &ast.Call{Callee: "f"}); err == nil {
		t.Fatalf("expected a non-constant error for a call")
	}
}

func TestEvalConstDivisionByZero(t *testing.T) {
	env := NewEnv(NewContext())
	e := &ast.Binary{Op: ast.Div, L: &ast.Number{Value: 1}, R: &ast.Number{Value: 0}}
	if _, err := EvalConst(env, e); err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestEvalConstLogicalShortCircuitValues(t *testing.T) {
	env := NewEnv(NewContext())
	cases := []struct {
		op   ast.BinaryOp
		l, r int32
		want int32
	}{
		{ast.LAnd, 0, 5, 0},
		{ast.LAnd, 3, 5, 1},
		{ast.LOr, 0, 0, 0},
		{ast.LOr, 0, 5, 1},
	}
	for _, c := range cases {
		v, err := EvalConst(env, &ast.Binary{Op: c.op, L: &ast.Number{Value: c.l}, R: &ast.Number{Value: c.r}})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if v != c.want {
			t.Errorf("op %v (%d, %d): got %d, want %d", c.op, c.l, c.r, v, c.want)
		}
	}
}
