package llvmbridge

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/mir"
)

// isComparisonOp mirrors mir.isComparisonOp (unexported there): a BinOp
// that produces bool regardless of its operands' type.
func isComparisonOp(op mir.BinOp) bool {
	switch op {
	case mir.OpEq, mir.OpNotEq, mir.OpLt, mir.OpLe, mir.OpGt, mir.OpGe:
		return true
	default:
		return false
	}
}

// lowerStatement translates one mir.Statement into the instructions it
// needs, appending them to block and recording any temp it defines.
func (fg *funcGen) lowerStatement(block *irBlock, stmt mir.Statement) error {
	switch s := stmt.(type) {
	case mir.DefineStatement:
		v, err := fg.lowerRValue(block, s.RHS)
		if err != nil {
			return err
		}
		fg.temps[s.Result] = v
		return nil

	case mir.LoadStatement:
		ptr, elemType, err := fg.resolvePlace(block, s.From)
		if err != nil {
			return err
		}
		fg.temps[s.Result] = block.NewLoad(elemType, ptr)
		return nil

	case mir.AssignStatement:
		ptr, _, err := fg.resolvePlace(block, s.To)
		if err != nil {
			return err
		}
		v, err := fg.resolveValueSource(block, s.Value)
		if err != nil {
			return err
		}
		block.NewStore(v, ptr)
		return nil

	case mir.InitStatement:
		return fg.lowerInit(block, s)

	case mir.CallStatement:
		return fg.lowerCallStatement(block, s)

	default:
		return errors.Errorf("llvmbridge: unhandled statement kind %T", stmt)
	}
}

// lowerInit writes every leaf of an aggregate InitStatement into its
// destination place (§4.6): scalar/aggregate field writes and array-element
// writes each become a store through a GEP off To, and the repeat form
// stores the same value Count times.
func (fg *funcGen) lowerInit(block *irBlock, s mir.InitStatement) error {
	switch {
	case s.Repeat != nil:
		v, err := fg.resolveValueSource(block, s.Repeat.Value)
		if err != nil {
			return err
		}
		for i := uint64(0); i < s.Repeat.Count; i++ {
			ptr, err := fg.indexInto(block, s.To, i)
			if err != nil {
				return err
			}
			block.NewStore(v, ptr)
		}
		return nil

	case s.Elems != nil:
		for i, e := range s.Elems {
			v, err := fg.resolveValueSource(block, e)
			if err != nil {
				return err
			}
			ptr, err := fg.indexInto(block, s.To, uint64(i))
			if err != nil {
				return err
			}
			block.NewStore(v, ptr)
		}
		return nil

	default:
		for _, f := range s.Fields {
			v, err := fg.resolveValueSource(block, f.Value)
			if err != nil {
				return err
			}
			ptr, err := fg.fieldInto(block, s.To, f.FieldIndex)
			if err != nil {
				return err
			}
			block.NewStore(v, ptr)
		}
		return nil
	}
}

// fieldInto GEPs to field i of the aggregate already addressed by p.
func (fg *funcGen) fieldInto(block *irBlock, p mir.Place, i int) (value.Value, error) {
	base, baseType, err := fg.resolvePlace(block, p)
	if err != nil {
		return nil, err
	}
	return block.NewGetElementPtr(baseType, base, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i))), nil
}

// indexInto GEPs to element i of the array already addressed by p.
func (fg *funcGen) indexInto(block *irBlock, p mir.Place, i uint64) (value.Value, error) {
	base, baseType, err := fg.resolvePlace(block, p)
	if err != nil {
		return nil, err
	}
	return block.NewGetElementPtr(baseType, base, constant.NewInt(types.I32, 0), constant.NewInt(types.I64, int64(i))), nil
}

// lowerCallStatement emits a call instruction, prepending the SRET pointer
// argument when the callee returns indirectly (§4.1, §4.5).
func (fg *funcGen) lowerCallStatement(block *irBlock, s mir.CallStatement) error {
	callee, ok := fg.g.funcs[s.Callee]
	if !ok {
		return errors.Errorf("llvmbridge: call to undeclared function f%d", s.Callee)
	}

	args := make([]value.Value, 0, len(s.Args)+1)
	if s.SretDest != nil {
		ptr, _, err := fg.resolvePlace(block, *s.SretDest)
		if err != nil {
			return err
		}
		args = append(args, ptr)
	}
	for _, a := range s.Args {
		v, err := fg.resolveValueSource(block, a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}

	call := block.NewCall(callee, args...)
	if s.Dest != nil {
		fg.temps[*s.Dest] = call
	}
	return nil
}

// lowerRValue translates the right-hand side of a DefineStatement.
func (fg *funcGen) lowerRValue(block *irBlock, rhs mir.RValue) (value.Value, error) {
	switch r := rhs.(type) {
	case mir.ConstantRValue:
		return fg.g.resolveConstant(r.Const)
	case mir.BinaryOpRValue:
		return fg.lowerBinaryOp(block, r)
	case mir.UnaryOpRValue:
		return fg.lowerUnaryOp(block, r)
	case mir.RefRValue:
		ptr, _, err := fg.resolvePlace(block, r.Place)
		return ptr, err
	case mir.CastRValue:
		return fg.lowerCast(block, r)
	case mir.ArrayRepeatRValue:
		return fg.lowerArrayRepeatValue(block, r)
	case mir.FieldAccessRValue:
		return fg.lowerFieldAccessValue(block, r)
	case mir.IndexAccessRValue:
		return fg.lowerIndexAccessValue(block, r)
	default:
		return nil, errors.Errorf("llvmbridge: unhandled rvalue kind %T", rhs)
	}
}

func (fg *funcGen) lowerBinaryOp(block *irBlock, r mir.BinaryOpRValue) (value.Value, error) {
	lhs, err := fg.resolveOperand(r.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := fg.resolveOperand(r.Right)
	if err != nil {
		return nil, err
	}
	operandType := operandMirType(r.Left)
	signed := operandType != nil && fg.g.in.IsSigned(operandType)

	if isComparisonOp(r.Op) {
		pred, err := icmpPredicate(r.Op, signed)
		if err != nil {
			return nil, err
		}
		return block.NewICmp(pred, lhs, rhs), nil
	}

	switch r.Op {
	case mir.OpAdd:
		return block.NewAdd(lhs, rhs), nil
	case mir.OpSub:
		return block.NewSub(lhs, rhs), nil
	case mir.OpMul:
		return block.NewMul(lhs, rhs), nil
	case mir.OpDiv:
		if signed {
			return block.NewSDiv(lhs, rhs), nil
		}
		return block.NewUDiv(lhs, rhs), nil
	case mir.OpRem:
		if signed {
			return block.NewSRem(lhs, rhs), nil
		}
		return block.NewURem(lhs, rhs), nil
	case mir.OpBitAnd:
		return block.NewAnd(lhs, rhs), nil
	case mir.OpBitOr:
		return block.NewOr(lhs, rhs), nil
	case mir.OpBitXor:
		return block.NewXor(lhs, rhs), nil
	case mir.OpShl:
		return block.NewShl(lhs, rhs), nil
	case mir.OpShr:
		if signed {
			return block.NewAShr(lhs, rhs), nil
		}
		return block.NewLShr(lhs, rhs), nil
	default:
		return nil, errors.Errorf("llvmbridge: unhandled binary operator %v", r.Op)
	}
}

func icmpPredicate(op mir.BinOp, signed bool) (enum.IPred, error) {
	switch op {
	case mir.OpEq:
		return enum.IPredEQ, nil
	case mir.OpNotEq:
		return enum.IPredNE, nil
	case mir.OpLt:
		if signed {
			return enum.IPredSLT, nil
		}
		return enum.IPredULT, nil
	case mir.OpLe:
		if signed {
			return enum.IPredSLE, nil
		}
		return enum.IPredULE, nil
	case mir.OpGt:
		if signed {
			return enum.IPredSGT, nil
		}
		return enum.IPredUGT, nil
	case mir.OpGe:
		if signed {
			return enum.IPredSGE, nil
		}
		return enum.IPredUGE, nil
	default:
		return 0, errors.Errorf("llvmbridge: %v is not a comparison operator", op)
	}
}

func (fg *funcGen) lowerUnaryOp(block *irBlock, r mir.UnaryOpRValue) (value.Value, error) {
	v, err := fg.resolveOperand(r.Operand)
	if err != nil {
		return nil, err
	}
	switch r.Op {
	case mir.OpNeg:
		it, ok := fg.g.llType(r.Typ).(*types.IntType)
		if !ok {
			return nil, errors.Errorf("llvmbridge: negation of a non-integer type %s", r.Typ)
		}
		return block.NewSub(constant.NewInt(it, 0), v), nil
	case mir.OpNot:
		return block.NewXor(v, constant.True), nil
	default:
		return nil, errors.Errorf("llvmbridge: unhandled unary operator %v", r.Op)
	}
}

// lowerCast converts between integer representations, truncating or
// extending by bit width and choosing sign- vs. zero-extension from the
// source type's signedness (§4.3: casts never change value count or
// aggregate shape, only integer width/signedness).
func (fg *funcGen) lowerCast(block *irBlock, r mir.CastRValue) (value.Value, error) {
	v, err := fg.resolveOperand(r.Operand)
	if err != nil {
		return nil, err
	}
	srcType := operandMirType(r.Operand)
	if srcType == nil {
		return nil, errors.Errorf("llvmbridge: cast source has no statically known type")
	}
	dstLL, ok := fg.g.llType(r.Target).(*types.IntType)
	if !ok {
		return nil, errors.Errorf("llvmbridge: cast target %s is not an integer type", r.Target)
	}
	srcLL, ok := fg.g.llType(srcType).(*types.IntType)
	if !ok {
		return nil, errors.Errorf("llvmbridge: cast source %s is not an integer type", srcType)
	}

	switch {
	case dstLL.BitSize == srcLL.BitSize:
		return v, nil
	case dstLL.BitSize > srcLL.BitSize:
		if fg.g.in.IsSigned(srcType) {
			return block.NewSExt(v, dstLL), nil
		}
		return block.NewZExt(v, dstLL), nil
	default:
		return block.NewTrunc(v, dstLL), nil
	}
}

// lowerArrayRepeatValue materializes a [v; n] array entirely in registers
// via successive insertvalue instructions, the register-resident
// counterpart to InitStatement's memory-resident Repeat form (the lowerer
// emits ArrayRepeatRValue whenever no destination hint is given, with no
// size threshold).
func (fg *funcGen) lowerArrayRepeatValue(block *irBlock, r mir.ArrayRepeatRValue) (value.Value, error) {
	v, err := fg.resolveOperand(r.Value)
	if err != nil {
		return nil, err
	}
	arrType, ok := fg.g.llType(r.Typ).(*types.ArrayType)
	if !ok {
		return nil, errors.Errorf("llvmbridge: array-repeat target %s is not an array type", r.Typ)
	}
	var agg value.Value = constant.NewZeroInitializer(arrType)
	for i := uint64(0); i < r.Count; i++ {
		agg = block.NewInsertValue(agg, v, i)
	}
	return agg, nil
}

func (fg *funcGen) lowerFieldAccessValue(block *irBlock, r mir.FieldAccessRValue) (value.Value, error) {
	base, err := fg.resolveValueSource(block, r.Base)
	if err != nil {
		return nil, err
	}
	return block.NewExtractValue(base, uint64(r.FieldIndex)), nil
}

func (fg *funcGen) lowerIndexAccessValue(block *irBlock, r mir.IndexAccessRValue) (value.Value, error) {
	base, err := fg.resolveValueSource(block, r.Base)
	if err != nil {
		return nil, err
	}
	idx, err := fg.resolveOperand(r.Index)
	if err != nil {
		return nil, err
	}
	ic, ok := idx.(*constant.Int)
	if !ok {
		return nil, errors.Errorf("llvmbridge: extracting from a register-resident array requires a constant index")
	}
	return block.NewExtractValue(base, uint64(ic.X.Int64())), nil
}
