package ir

import (
	"fmt"

	"sysyc/src/util"
)

// BindKind distinguishes a compile-time constant binding from a runtime
// storage-slot binding.
type BindKind int

const (
	BindConst BindKind = iota
	BindVar
)

// Binding is what a scope maps a source identifier to.
type Binding struct {
	Kind  BindKind
	Value int32 // meaningful only when Kind == BindConst
}

// scope is one entry of the Env's scope stack: a set of bindings tagged with the
// globally-unique offset that was allocated when the scope was pushed.
type scope struct {
	offset   int
	bindings map[string]*Binding
}

// Env is the symbol environment: a stack of lexical scopes, each scope
// mapping unmangled identifiers to either a constant value or a variable slot.
// It is built on top of util.Stack (see vslc/src/util/stack.go), the same
// linked-list stack the teacher uses for its own scope-stack walk in
// ir/validate.go; here it holds *scope values instead of loop labels.
type Env struct {
	scopes *util.Stack
	ctx    *Context
}

// NewEnv returns an Env with a single, outermost scope already pushed.
func NewEnv(ctx *Context) *Env {
	e := &Env{scopes: &util.Stack{}, ctx: ctx}
	e.Push()
	return e
}

// Push opens a new, innermost scope, allocating a fresh globally-unique offset
// from the Env's Context.
func (e *Env) Push() {
	e.scopes.Push(&scope{offset: e.ctx.NextScope(), bindings: make(map[string]*Binding)})
}

// Pop closes the innermost scope.
func (e *Env) Pop() {
	e.scopes.Pop()
}

func (e *Env) top() *scope {
	return e.scopes.Peek().(*scope)
}

// DefineConst binds name to a constant value in the innermost scope. It fails
// with a *redefinition* error if name is already bound in that scope.
func (e *Env) DefineConst(name string, value int32) error {
	s := e.top()
	if _, ok := s.bindings[name]; ok {
		return fmt.Errorf("redefinition of %q in the same scope", name)
	}
	s.bindings[name] = &Binding{Kind: BindConst, Value: value}
	return nil
}

// DefineVar binds name to a runtime storage slot in the innermost scope. It
// fails with a *redefinition* error if name is already bound in that scope.
func (e *Env) DefineVar(name string) error {
	s := e.top()
	if _, ok := s.bindings[name]; ok {
		return fmt.Errorf("redefinition of %q in the same scope", name)
	}
	s.bindings[name] = &Binding{Kind: BindVar}
	return nil
}

// Lookup searches the scope stack from innermost to outermost for name,
// returning its binding and its mangled name ("<ident>_<offset>"). It fails
// with an *undeclared identifier* error if name is bound nowhere on the stack.
func (e *Env) Lookup(name string) (*Binding, string, error) {
	n := e.scopes.Size()
	for i := 1; i <= n; i++ {
		s := e.scopes.Get(i).(*scope)
		if b, ok := s.bindings[name]; ok {
			return b, fmt.Sprintf("%s_%d", name, s.offset), nil
		}
	}
	return nil, "", fmt.Errorf("undeclared identifier %q", name)
}
