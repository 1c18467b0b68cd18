package ir

import "testing"

func TestEnvLookupInnermostWins(t *testing.T) {
	env := NewEnv(NewContext())
	if err := env.DefineConst("x", 1); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	env.Push()
	if err := env.DefineConst("x", 2); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	b, mangled, err := env.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.Value != 2 {
		t.Fatalf("got value %d, want 2 (innermost binding)", b.Value)
	}
	if mangled != "x_1" {
		t.Fatalf("got mangled name %q, want x_1", mangled)
	}

	env.Pop()
	b, mangled, err = env.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.Value != 1 {
		t.Fatalf("got value %d, want 1 (outer binding) after Pop", b.Value)
	}
	if mangled != "x_0" {
		t.Fatalf("got mangled name %q, want x_0", mangled)
	}
}

func TestEnvRedefinitionError(t *testing.T) {
	env := NewEnv(NewContext())
	if err := env.DefineVar("x"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := env.DefineVar("x"); err == nil {
		t.Fatalf("expected a redefinition error")
	}
	if err := env.DefineConst("x", 1); err == nil {
		t.Fatalf("expected a redefinition error across kinds")
	}
}

func TestEnvUndeclared(t *testing.T) {
	env := NewEnv(NewContext())
	if _, _, err := env.Lookup("nope"); err == nil {
		t.Fatalf("expected an undeclared identifier error")
	}
}

func TestEnvShadowingDeeplyNested(t *testing.T) {
	env := NewEnv(NewContext())
	for i := 0; i < 5; i++ {
		env.Push()
	}
	if err := env.DefineVar("y"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	_, mangled, err := env.Lookup("y")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if mangled != "y_5" {
		t.Fatalf("got mangled name %q, want y_5", mangled)
	}
}
