package mir

import (
	"testing"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// TestBuiltinsCollectedAsExterns is §4.2: the predefined scope
// (print/println/getInt/…) contributes external function descriptors even
// when the program's own source never references them.
func TestBuiltinsCollectedAsExterns(t *testing.T) {
	in := types.NewInterner()
	prog := &hir.Program{Builtins: hir.NewBuiltins(in)}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if len(mod.Functions) != 0 {
		t.Fatalf("expected no internal functions, got %d", len(mod.Functions))
	}

	want := map[string]bool{"print": false, "println": false, "getInt": false}
	for _, ext := range mod.Externs {
		if _, ok := want[ext.Name]; !ok {
			t.Fatalf("unexpected extern %q", ext.Name)
		}
		want[ext.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("expected an ExternalFunction descriptor for %q", name)
		}
	}

	for _, ext := range mod.Externs {
		if ext.Name == "getInt" && ext.Sig.Return.Kind != RetDirect {
			t.Fatalf("getInt: expected RetDirect, got %v", ext.Sig.Return.Kind)
		}
		if (ext.Name == "print" || ext.Name == "println") && ext.Sig.Return.Kind != RetVoid {
			t.Fatalf("%s: expected RetVoid, got %v", ext.Name, ext.Sig.Return.Kind)
		}
	}
}

// TestBuiltinCallLowersAsExternCall confirms a call to a builtin (no
// `fn println(..);` item in the program, only Program.Builtins) lowers
// exactly like a call to an explicit external declaration: the HIR call is
// built by hand against the NewBuiltins descriptor and must lower to a
// CallStatement that validates.
func TestBuiltinCallLowersAsExternCall(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)

	builtins := hir.NewBuiltins(in)
	var println *hir.FunctionItem
	for _, b := range builtins {
		if b.Name == "println" {
			println = b
		}
	}
	if println == nil {
		t.Fatal("NewBuiltins did not produce a println descriptor")
	}

	call := &hir.CallExpr{Target: hir.Callee{Function: println}, Args: []hir.Expr{intLit(1, i32)}}
	call.SetType(in.Unit(), false)

	fn := &hir.FunctionItem{Name: "main", Body: block(call), ReturnType: in.Unit()}
	prog := &hir.Program{Items: []hir.Item{fn}, Builtins: builtins}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	var sawCall bool
	for _, bb := range mod.Functions[0].Blocks {
		for _, s := range bb.Statements {
			if _, ok := s.(CallStatement); ok {
				sawCall = true
			}
		}
	}
	if !sawCall {
		t.Fatal("expected a CallStatement targeting the builtin")
	}
}
