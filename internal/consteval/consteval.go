// Package consteval folds the constant expressions named constants (§4.9)
// are allowed to be built from: literals and unary/binary operations over
// other constants. It is the frontend collaborator the Constant Lowerer
// (C9) leans on instead of re-implementing arithmetic itself.
//
// Grounded on the teacher's internal/codegen/llvm/constant_folding.go, which
// folds the same shape of expression (literal / unary / binary over
// constants) ahead of codegen; the algorithm here is the same recursive
// descent, rehomed onto hir.Expr and this package's own Value instead of
// ast.Expr and llvm.Value (internal/mir converts a Value to a mir.Constant).
package consteval

import (
	"fmt"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// Value is a folded constant. Exactly one of the fields is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind
	Int  uint64
	Bool bool
	Char rune
	Str  string
}

type ValueKind int

const (
	KindInt ValueKind = iota
	KindBool
	KindChar
	KindString
	KindUnit
)

// Error reports that an expression is not a constant this evaluator
// supports.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return "consteval: " + e.Detail }

// Eval folds expr to a constant Value, or returns an *Error if expr is not
// built entirely out of literals and unary/binary operators over other
// constants.
func Eval(in *types.Interner, expr hir.Expr) (Value, error) {
	switch e := expr.(type) {
	case *hir.IntLiteral:
		v := e.Magnitude
		if e.Negative {
			v = uint64(-int64(v))
		}
		return Value{Kind: KindInt, Int: v}, nil

	case *hir.BoolLiteral:
		return Value{Kind: KindBool, Bool: e.Value}, nil

	case *hir.CharLiteral:
		return Value{Kind: KindChar, Char: e.Value}, nil

	case *hir.StringLiteral:
		return Value{Kind: KindString, Str: e.Value}, nil

	case *hir.UnitLiteral:
		return Value{Kind: KindUnit}, nil

	case *hir.EnumVariantExpr:
		d, ok := in.EnumDiscriminant(e.Type(), e.Variant)
		if !ok {
			return Value{}, &Error{Detail: fmt.Sprintf("unknown variant %q", e.Variant)}
		}
		return Value{Kind: KindInt, Int: d}, nil

	case *hir.ConstUseExpr:
		return Eval(in, e.Const.Init)

	case *hir.UnaryExpr:
		operand, err := Eval(in, e.Operand)
		if err != nil {
			return Value{}, err
		}
		return evalUnary(in, e, operand)

	case *hir.BinaryExpr:
		left, err := Eval(in, e.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := Eval(in, e.Right)
		if err != nil {
			return Value{}, err
		}
		return evalBinary(in, e, left, right)

	case *hir.CastExpr:
		operand, err := Eval(in, e.Operand)
		if err != nil {
			return Value{}, err
		}
		return evalCast(in, e.Target, operand)

	default:
		return Value{}, &Error{Detail: fmt.Sprintf("%T is not a constant expression", expr)}
	}
}

func evalUnary(in *types.Interner, e *hir.UnaryExpr, v Value) (Value, error) {
	switch e.Op {
	case hir.UnaryNeg:
		if v.Kind != KindInt {
			return Value{}, &Error{Detail: "unary - on non-integer constant"}
		}
		return Value{Kind: KindInt, Int: uint64(-int64(v.Int))}, nil
	case hir.UnaryNot:
		if v.Kind != KindBool {
			return Value{}, &Error{Detail: "unary ! on non-bool constant"}
		}
		return Value{Kind: KindBool, Bool: !v.Bool}, nil
	default:
		return Value{}, &Error{Detail: "unknown unary operator"}
	}
}

func evalBinary(in *types.Interner, e *hir.BinaryExpr, l, r Value) (Value, error) {
	if l.Kind != KindInt || r.Kind != KindInt {
		return Value{}, &Error{Detail: "binary constant operator on non-integer operand"}
	}
	// Signedness comes from the operands: a comparison's own type is bool.
	operandType := e.Left.Type()
	signed := in.IsInteger(operandType) && in.IsSigned(operandType)
	switch e.Op {
	case hir.BinAdd:
		return Value{Kind: KindInt, Int: l.Int + r.Int}, nil
	case hir.BinSub:
		return Value{Kind: KindInt, Int: l.Int - r.Int}, nil
	case hir.BinMul:
		return Value{Kind: KindInt, Int: l.Int * r.Int}, nil
	case hir.BinDiv:
		if r.Int == 0 {
			return Value{}, &Error{Detail: "constant division by zero"}
		}
		if signed {
			return Value{Kind: KindInt, Int: uint64(int64(l.Int) / int64(r.Int))}, nil
		}
		return Value{Kind: KindInt, Int: l.Int / r.Int}, nil
	case hir.BinRem:
		if r.Int == 0 {
			return Value{}, &Error{Detail: "constant modulo by zero"}
		}
		if signed {
			return Value{Kind: KindInt, Int: uint64(int64(l.Int) % int64(r.Int))}, nil
		}
		return Value{Kind: KindInt, Int: l.Int % r.Int}, nil
	case hir.BinBitAnd:
		return Value{Kind: KindInt, Int: l.Int & r.Int}, nil
	case hir.BinBitOr:
		return Value{Kind: KindInt, Int: l.Int | r.Int}, nil
	case hir.BinBitXor:
		return Value{Kind: KindInt, Int: l.Int ^ r.Int}, nil
	case hir.BinShl:
		return Value{Kind: KindInt, Int: l.Int << r.Int}, nil
	case hir.BinShr:
		return Value{Kind: KindInt, Int: l.Int >> r.Int}, nil
	case hir.BinEq:
		return Value{Kind: KindBool, Bool: l.Int == r.Int}, nil
	case hir.BinNotEq:
		return Value{Kind: KindBool, Bool: l.Int != r.Int}, nil
	case hir.BinLt, hir.BinLe, hir.BinGt, hir.BinGe:
		return evalCompare(e.Op, signed, l.Int, r.Int), nil
	default:
		return Value{}, &Error{Detail: "unknown binary operator"}
	}
}

func evalCompare(op hir.BinaryOp, signed bool, l, r uint64) Value {
	var cmp int
	if signed {
		li, ri := int64(l), int64(r)
		switch {
		case li < ri:
			cmp = -1
		case li > ri:
			cmp = 1
		}
	} else {
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}
	var b bool
	switch op {
	case hir.BinLt:
		b = cmp < 0
	case hir.BinLe:
		b = cmp <= 0
	case hir.BinGt:
		b = cmp > 0
	case hir.BinGe:
		b = cmp >= 0
	}
	return Value{Kind: KindBool, Bool: b}
}

func evalCast(in *types.Interner, target *types.Type, v Value) (Value, error) {
	if v.Kind != KindInt {
		return Value{}, &Error{Detail: "constant cast on non-integer operand"}
	}
	if !in.IsInteger(target) {
		return Value{}, &Error{Detail: "constant cast to non-integer type"}
	}
	return Value{Kind: KindInt, Int: truncate(in, target, v.Int)}, nil
}

func truncate(in *types.Interner, t *types.Type, v uint64) uint64 {
	bits := bitWidth(t.Kind())
	if bits >= 64 {
		return v
	}
	mask := uint64(1)<<bits - 1
	return v & mask
}

func bitWidth(k types.Kind) uint {
	switch k {
	case types.KindI8, types.KindU8:
		return 8
	case types.KindI16, types.KindU16:
		return 16
	case types.KindI32, types.KindU32:
		return 32
	default:
		return 64
	}
}
