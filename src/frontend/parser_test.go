package frontend

import (
	"testing"

	"sysyc/src/ast"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `int add(int a, int b) { return a + b; }`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(cu.Funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(cu.Funcs))
	}
	f := cu.Funcs[0]
	if f.Name != "add" || f.Ret != ast.RetInt || len(f.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", f)
	}
	if len(f.Body.Items) != 1 {
		t.Fatalf("got %d body items, want 1", len(f.Body.Items))
	}
	ret, ok := f.Body.Items[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", f.Body.Items[0])
	}
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected a+b, got %+v", ret.Value)
	}
}

func TestParseAssignVsExprStmt(t *testing.T) {
	src := `int main() { int x; x = 1; x; return 0; }`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	items := cu.Funcs[0].Body.Items
	if _, ok := items[0].(*ast.VarDecl); !ok {
		t.Fatalf("item 0: expected *ast.VarDecl, got %T", items[0])
	}
	if _, ok := items[1].(*ast.AssignStmt); !ok {
		t.Fatalf("item 1: expected *ast.AssignStmt, got %T", items[1])
	}
	es, ok := items[2].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("item 2: expected *ast.ExprStmt, got %T", items[2])
	}
	if _, ok := es.Value.(*ast.LVal); !ok {
		t.Fatalf("item 2: expected an LVal expression, got %T", es.Value)
	}
}

func TestParseIfElseDanglingElse(t *testing.T) {
	// The dangling else binds to the nearest unmatched if.
	src := `int main() { if (1) if (0) return 1; else return 2; return 3; }`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	outer, ok := cu.Funcs[0].Body.Items[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected outer *ast.IfStmt, got %T", cu.Funcs[0].Body.Items[0])
	}
	if outer.Else != nil {
		t.Fatalf("outer if should have no else")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected inner *ast.IfStmt, got %T", outer.Then)
	}
	if inner.Else == nil {
		t.Fatalf("inner if should capture the dangling else")
	}
}

func TestParsePrecedence(t *testing.T) {
	src := `int main() { return 1 + 2 * 3 < 4 && 5 || !6; }`
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	ret := cu.Funcs[0].Body.Items[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != ast.LOr {
		t.Fatalf("expected top-level ||, got %+v", ret.Value)
	}
}

func TestParseUnexpectedToken(t *testing.T) {
	if _, err := Parse(`int main() { return ; }`); err != nil {
		t.Fatalf("bare return should be legal: %s", err)
	}
	if _, err := Parse(`int main() { return 1 + ; }`); err == nil {
		t.Fatalf("expected a syntax error")
	}
}
