package mir

import (
	"github.com/mirlang/mirc/internal/consteval"
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// lowerLiteral converts an HIR literal/path-const/enum-variant node directly
// to a Constant, with no statements emitted (§4.9, §4.3 "Literals /
// PathConst / EnumVariant -> Operand(Constant)").
func (fc *funcCtx) lowerLiteral(e hir.Expr) (Constant, error) {
	switch v := e.(type) {
	case *hir.IntLiteral:
		return IntConst{Val: v.Magnitude, Typ: v.Type()}, nil
	case *hir.BoolLiteral:
		return BoolConst{Val: v.Value, Typ: v.Type()}, nil
	case *hir.CharLiteral:
		return CharConst{Val: v.Value, Typ: v.Type()}, nil
	case *hir.StringLiteral:
		return StringConst{Val: v.Value, Typ: v.Type()}, nil
	case *hir.UnitLiteral:
		return UnitConst{Typ: v.Type()}, nil
	case *hir.EnumVariantExpr:
		enumType := v.Type()
		disc, ok := fc.l.in.EnumDiscriminant(enumType, v.Variant)
		if !ok {
			return nil, fc.errorf(KindUnresolvedTarget, "unknown enum variant %q", v.Variant)
		}
		return EnumDiscriminant{Variant: v.Variant, Val: disc, Typ: enumType}, nil
	case *hir.ConstUseExpr:
		return fc.lowerConstUse(v)
	default:
		return nil, fc.errorf(KindUnsupportedPattern, "%T is not a literal", e)
	}
}

// lowerConstUse invokes the frontend const-evaluator on the named
// constant's initializer and converts the resulting Value to a Constant
// (§4.9, §6.1: "const evaluator converts ... to a ConstVariant").
func (fc *funcCtx) lowerConstUse(use *hir.ConstUseExpr) (Constant, error) {
	v, err := consteval.Eval(fc.l.in, use.Const.Init)
	if err != nil {
		return nil, fc.errorf(KindTypeMismatch, "const %s: %s", use.Const.Name, err.Error())
	}
	t := use.Const.Type
	switch v.Kind {
	case consteval.KindInt:
		return IntConst{Val: v.Int, Typ: t}, nil
	case consteval.KindBool:
		return BoolConst{Val: v.Bool, Typ: t}, nil
	case consteval.KindChar:
		return CharConst{Val: v.Char, Typ: t}, nil
	case consteval.KindString:
		return StringConst{Val: v.Str, Typ: t}, nil
	default:
		return UnitConst{Typ: t}, nil
	}
}

func isLiteralExpr(e hir.Expr) bool {
	switch e.(type) {
	case *hir.IntLiteral, *hir.BoolLiteral, *hir.CharLiteral, *hir.StringLiteral,
		*hir.UnitLiteral, *hir.EnumVariantExpr, *hir.ConstUseExpr:
		return true
	default:
		return false
	}
}

// zeroOperandFor returns a placeholder unit constant. Nothing in the
// package calls it: call.go builds the RetVoid/RetNever call result
// (§4.5 step 5) as a UnitConst directly.
func zeroOperandFor(in *types.Interner) Operand {
	return UnitConst{Typ: in.Unit()}
}
