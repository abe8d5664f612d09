package consteval

import (
	"testing"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

func intLit(mag uint64, t *types.Type) *hir.IntLiteral {
	lit := &hir.IntLiteral{Magnitude: mag}
	lit.SetType(t, false)
	return lit
}

func boolLit(v bool, t *types.Type) *hir.BoolLiteral {
	lit := &hir.BoolLiteral{Value: v}
	lit.SetType(t, false)
	return lit
}

func binary(op hir.BinaryOp, left, right hir.Expr, t *types.Type) *hir.BinaryExpr {
	e := &hir.BinaryExpr{Op: op, Left: left, Right: right}
	e.SetType(t, false)
	return e
}

func TestEvalFoldsArithmetic(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)

	expr := binary(hir.BinAdd, intLit(2, i32), intLit(3, i32), i32)
	v, err := Eval(in, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindInt || v.Int != 5 {
		t.Fatalf("got %+v, want Int(5)", v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)

	expr := binary(hir.BinDiv, intLit(1, i32), intLit(0, i32), i32)
	if _, err := Eval(in, expr); err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestEvalSignedComparison(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	boolT := in.Bool()

	lhs := intLit(1, i32)
	lhs.Negative = true // -1
	expr := binary(hir.BinLt, lhs, intLit(0, i32), boolT)

	v, err := Eval(in, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindBool || !v.Bool {
		t.Fatalf("got %+v, want Bool(true): -1 < 0 under signed comparison", v)
	}
}

func TestEvalUnaryNot(t *testing.T) {
	in := types.NewInterner()
	boolT := in.Bool()

	e := &hir.UnaryExpr{Op: hir.UnaryNot, Operand: boolLit(false, boolT)}
	e.SetType(boolT, false)

	v, err := Eval(in, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindBool || !v.Bool {
		t.Fatalf("got %+v, want Bool(true)", v)
	}
}

func TestEvalRejectsNonConstant(t *testing.T) {
	in := types.NewInterner()
	v := &hir.Variable{Name: "x"}

	if _, err := Eval(in, v); err == nil {
		t.Fatalf("expected an error evaluating a non-constant expression")
	}
}
