package mir

import (
	"github.com/mirlang/mirc/internal/hir"
)

// lowerNode is the single DPS entry point every expression goes through
// (§4.3). dest is a suggestion: aggregate-producing nodes and control flow
// that propagates a hint honor it; scalar nodes are free to ignore it.
func (fc *funcCtx) lowerNode(e hir.Expr, dest *Place) (LowerResult, error) {
	switch v := e.(type) {

	case *hir.IntLiteral, *hir.BoolLiteral, *hir.CharLiteral, *hir.StringLiteral,
		*hir.UnitLiteral, *hir.EnumVariantExpr, *hir.ConstUseExpr:
		c, err := fc.lowerLiteral(e)
		if err != nil {
			return LowerResult{}, err
		}
		return operandResult(c), nil

	case *hir.Variable, *hir.FieldAccess, *hir.IndexExpr, *hir.DerefExpr:
		p, err := fc.asPlace(v)
		if err != nil {
			return LowerResult{}, err
		}
		return placeResult(p), nil

	case *hir.RefExpr:
		return fc.lowerRef(v)

	case *hir.UnaryExpr:
		return fc.lowerUnary(v)

	case *hir.BinaryExpr:
		return fc.lowerBinary(v)

	case *hir.LogicalExpr:
		return fc.lowerLogical(v)

	case *hir.CastExpr:
		return fc.lowerCast(v)

	case *hir.AssignExpr:
		return fc.lowerAssign(v)

	case *hir.CallExpr:
		return fc.lowerCall(v.Target, v.Args, v.Type(), dest)

	case *hir.MethodCallExpr:
		callee := hir.Callee{Method: v.Method}
		args := append([]hir.Expr{v.Receiver}, v.Args...)
		return fc.lowerCall(callee, args, v.Type(), dest)

	case *hir.StructLiteralExpr:
		return fc.lowerStructLiteral(v, dest)

	case *hir.ArrayLiteralExpr:
		return fc.lowerArrayLiteral(v, dest)

	case *hir.ArrayRepeatExpr:
		return fc.lowerArrayRepeat(v, dest)

	case *hir.IfExpr:
		return fc.lowerIf(v, dest)

	case *hir.BlockExpr:
		return fc.lowerBlockExpr(v, dest)

	case *hir.LoopExpr:
		return fc.lowerLoop(v)

	case *hir.WhileExpr:
		return fc.lowerWhile(v)

	case *hir.BreakExpr:
		return fc.lowerBreak(v)

	case *hir.ContinueExpr:
		return fc.lowerContinue(v)

	case *hir.ReturnExpr:
		return fc.lowerReturn(v)

	default:
		return LowerResult{}, fc.errorf(KindNotImplemented, "no lowering defined for %T", e)
	}
}

func (fc *funcCtx) lowerRef(v *hir.RefExpr) (LowerResult, error) {
	p, err := fc.placeOf(v.Operand)
	if err != nil {
		return LowerResult{}, err
	}
	temp := fc.newTemp(v.Type())
	fc.emit(DefineStatement{Result: temp, RHS: RefRValue{Place: p, Mutable: v.Mutable}, Typ: v.Type()})
	return operandResult(TempOperand{Temp: temp, Typ: v.Type()}), nil
}

func (fc *funcCtx) lowerUnary(v *hir.UnaryExpr) (LowerResult, error) {
	operand, err := fc.lowerAsOperand(v.Operand)
	if err != nil {
		return LowerResult{}, err
	}
	op := OpNeg
	if v.Op == hir.UnaryNot {
		op = OpNot
	}
	temp := fc.newTemp(v.Type())
	fc.emit(DefineStatement{Result: temp, RHS: UnaryOpRValue{Op: op, Operand: operand, Typ: v.Type()}, Typ: v.Type()})
	return operandResult(TempOperand{Temp: temp, Typ: v.Type()}), nil
}

var binOpTable = map[hir.BinaryOp]BinOp{
	hir.BinAdd: OpAdd, hir.BinSub: OpSub, hir.BinMul: OpMul, hir.BinDiv: OpDiv, hir.BinRem: OpRem,
	hir.BinBitAnd: OpBitAnd, hir.BinBitOr: OpBitOr, hir.BinBitXor: OpBitXor,
	hir.BinShl: OpShl, hir.BinShr: OpShr,
	hir.BinEq: OpEq, hir.BinNotEq: OpNotEq,
	hir.BinLt: OpLt, hir.BinLe: OpLe, hir.BinGt: OpGt, hir.BinGe: OpGe,
}

// isComparisonOp reports whether a BinOp produces bool regardless of its
// operands' type (§4.3: "comparison requires lhs/rhs to share type and
// returns bool").
func isComparisonOp(op BinOp) bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

func (fc *funcCtx) lowerBinary(v *hir.BinaryExpr) (LowerResult, error) {
	lhs, err := fc.lowerAsOperand(v.Left)
	if err != nil {
		return LowerResult{}, err
	}
	rhs, err := fc.lowerAsOperand(v.Right)
	if err != nil {
		return LowerResult{}, err
	}
	op, ok := binOpTable[v.Op]
	if !ok {
		return LowerResult{}, fc.errorf(KindUnsupportedPattern, "unsupported binary operator %v", v.Op)
	}
	resultType := v.Type()
	temp := fc.newTemp(resultType)
	fc.emit(DefineStatement{
		Result: temp,
		RHS:    BinaryOpRValue{Op: op, Left: lhs, Right: rhs, Typ: resultType},
		Typ:    resultType,
	})
	return operandResult(TempOperand{Temp: temp, Typ: resultType}), nil
}

func (fc *funcCtx) lowerCast(v *hir.CastExpr) (LowerResult, error) {
	operand, err := fc.lowerAsOperand(v.Operand)
	if err != nil {
		return LowerResult{}, err
	}
	temp := fc.newTemp(v.Target)
	fc.emit(DefineStatement{Result: temp, RHS: CastRValue{Operand: operand, Target: v.Target}, Typ: v.Target})
	return operandResult(TempOperand{Temp: temp, Typ: v.Target}), nil
}

// lowerAssign lowers `target = value;` and the discard form `_ = value;`
// (§4.3: "_ as an assignment LHS means discard: evaluate RHS for side
// effects").
func (fc *funcCtx) lowerAssign(v *hir.AssignExpr) (LowerResult, error) {
	if v.Discard {
		if _, err := fc.lowerNode(v.Value, nil); err != nil {
			return LowerResult{}, err
		}
		return operandResult(UnitConst{Typ: v.Type()}), nil
	}

	target, err := fc.asPlace(v.Target)
	if err != nil {
		return LowerResult{}, err
	}
	r, err := fc.lowerNode(v.Value, &target)
	if err != nil {
		return LowerResult{}, err
	}
	fc.writeToDest(r, target)
	return operandResult(UnitConst{Typ: v.Type()}), nil
}

// lowerBlockExpr lowers every statement in order, then delegates the tail
// expression (if any) to dest, matching §4.3's block-expr rule.
func (fc *funcCtx) lowerBlockExpr(v *hir.BlockExpr, dest *Place) (LowerResult, error) {
	fc.pushScope()
	defer fc.popScope()

	for _, s := range v.Stmts {
		if err := fc.lowerStmt(s); err != nil {
			return LowerResult{}, err
		}
		if !fc.reachable() {
			break
		}
	}

	if !fc.reachable() {
		// Dead tail: nothing left to lower, but a value must still be
		// returned to satisfy the caller's expectations (it will never
		// observe it since control never reaches here).
		return operandResult(UnitConst{Typ: v.Type()}), nil
	}

	if v.Tail != nil {
		return fc.lowerNode(v.Tail, dest)
	}
	if dest != nil {
		fc.emit(AssignStatement{To: *dest, Value: UnitConst{Typ: fc.l.in.Unit()}})
		return writtenResult, nil
	}
	return operandResult(UnitConst{Typ: v.Type()}), nil
}
