package llvmbridge

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/mir"
	mirtypes "github.com/mirlang/mirc/internal/types"
)

// irBlock is a short local alias for *ir.Block, shared by operands.go,
// statements.go and terminators.go.
type irBlock = ir.Block

// resolveOperand produces the LLVM value for a TempOperand (looked up in the
// temps already materialized this function) or a Constant (built fresh).
func (fg *funcGen) resolveOperand(op mir.Operand) (value.Value, error) {
	switch o := op.(type) {
	case mir.TempOperand:
		v, ok := fg.temps[o.Temp]
		if !ok {
			return nil, errors.Errorf("llvmbridge: t%d used before it was defined", o.Temp)
		}
		return v, nil
	case mir.Constant:
		return fg.g.resolveConstant(o)
	default:
		return nil, errors.Errorf("llvmbridge: unhandled operand kind %T", op)
	}
}

// resolveValueSource produces the LLVM value for a ValueSource: an Operand
// resolves directly, a Place is read with a load (§3.6: "needs a
// LoadStatement to read" describes exactly this case).
func (fg *funcGen) resolveValueSource(block *irBlock, vs mir.ValueSource) (value.Value, error) {
	switch v := vs.(type) {
	case mir.Place:
		ptr, elemType, err := fg.resolvePlace(block, v)
		if err != nil {
			return nil, err
		}
		return block.NewLoad(elemType, ptr), nil
	case mir.Operand:
		return fg.resolveOperand(v)
	default:
		return nil, errors.Errorf("llvmbridge: unhandled value source kind %T", vs)
	}
}

// resolveConstant builds the LLVM constant for one mir.Constant. UnitConst
// has no runtime representation (unit lowers to void, and void is never a
// value), so reaching one here means an upstream pass handed a unit-typed
// value where a real operand was expected; that is a bug to surface, not a
// shape to guess at.
func (g *Generator) resolveConstant(c mir.Constant) (value.Value, error) {
	switch v := c.(type) {
	case mir.BoolConst:
		return constant.NewBool(v.Val), nil
	case mir.IntConst:
		it, ok := g.llType(v.Typ).(*types.IntType)
		if !ok {
			return nil, errors.Errorf("llvmbridge: int constant typed %s did not map to an LLVM integer", v.Typ)
		}
		return constant.NewInt(it, int64(v.Val)), nil
	case mir.CharConst:
		return constant.NewInt(types.I32, int64(v.Val)), nil
	case mir.StringConst:
		return g.resolveStringConst(v)
	case mir.EnumDiscriminant:
		it, ok := g.llType(g.in.EnumUnderlying(v.Typ)).(*types.IntType)
		if !ok {
			return nil, errors.Errorf("llvmbridge: enum %s's underlying type did not map to an LLVM integer", v.Typ)
		}
		return constant.NewInt(it, int64(v.Val)), nil
	case mir.UnitConst:
		return nil, errors.Errorf("llvmbridge: unit constant has no runtime value")
	default:
		return nil, errors.Errorf("llvmbridge: unhandled constant kind %T", c)
	}
}

// resolveStringConst builds the fixed-size [char; N] array constant a
// string literal lowers to (mir.go: "this language has no dedicated string
// primitive"). The rune count must match the array size the type carries;
// a mismatch means the lowerer and this package have drifted out of sync on
// what a string constant's type looks like.
func (g *Generator) resolveStringConst(v mir.StringConst) (value.Value, error) {
	n := g.in.ArraySize(v.Typ)
	runes := []rune(v.Val)
	if len(runes) != n {
		return nil, errors.Errorf("llvmbridge: string constant %q has %d runes, type declares %d", v.Val, len(runes), n)
	}
	elems := make([]constant.Constant, n)
	for i, r := range runes {
		elems[i] = constant.NewInt(types.I32, int64(r))
	}
	return constant.NewArray(types.NewArray(uint64(n), types.I32), elems...), nil
}

// operandMirType recovers the semantic type of an operand, the same
// information validate.go's operandType extracts, needed here to know a
// PointerPlace base's pointee type before a GEP can be built.
func operandMirType(op mir.Operand) *mirtypes.Type {
	switch o := op.(type) {
	case mir.TempOperand:
		return o.Typ
	case mir.Constant:
		return o.Type()
	default:
		return nil
	}
}

// resolvePlace computes the address a place refers to, returning that
// pointer along with the LLVM type it points to (needed by callers that
// load or store through it). A place with no projections resolves straight
// to its base; one with projections becomes a single GEP indexed [0, i1,
// i2, ...], mirroring how LLVM itself descends through nested
// aggregates in one instruction.
func (fg *funcGen) resolvePlace(block *irBlock, p mir.Place) (value.Value, types.Type, error) {
	basePtr, baseType, err := fg.resolvePlaceBase(p.Base)
	if err != nil {
		return nil, nil, err
	}
	if len(p.Projections) == 0 {
		return basePtr, baseType, nil
	}

	indices := make([]value.Value, 0, len(p.Projections)+1)
	indices = append(indices, constant.NewInt(types.I32, 0))
	for _, proj := range p.Projections {
		switch pr := proj.(type) {
		case mir.FieldProjection:
			indices = append(indices, constant.NewInt(types.I32, int64(pr.FieldIndex)))
		case mir.IndexProjection:
			idx, err := fg.resolveOperand(pr.Index)
			if err != nil {
				return nil, nil, err
			}
			indices = append(indices, idx)
		default:
			return nil, nil, errors.Errorf("llvmbridge: unhandled projection kind %T", proj)
		}
	}

	gep := block.NewGetElementPtr(baseType, basePtr, indices...)
	return gep, fg.g.llType(p.Typ), nil
}

// resolvePlaceBase resolves the address chain's root: a local's own slot,
// an operand holding a pointer value (the deref case), or a module-level
// global. GlobalPlace is part of the data model (§4.8) but the lowering
// passes in internal/mir never construct one — constants are folded at
// compile time (internal/consteval) rather than materialized as LLVM
// globals — so it is accepted here but reported as unimplemented rather
// than guessed at.
func (fg *funcGen) resolvePlaceBase(base mir.PlaceBase) (value.Value, types.Type, error) {
	switch b := base.(type) {
	case mir.LocalPlace:
		ptr, ok := fg.locals[b.Local]
		if !ok {
			return nil, nil, errors.Errorf("llvmbridge: local _%d has no storage", b.Local)
		}
		return ptr, fg.g.llType(fg.localType(b.Local)), nil
	case mir.PointerPlace:
		ptr, err := fg.resolveOperand(b.Pointer)
		if err != nil {
			return nil, nil, err
		}
		refType := operandMirType(b.Pointer)
		if refType == nil {
			return nil, nil, errors.Errorf("llvmbridge: pointer place has no statically known type")
		}
		return ptr, fg.g.llType(fg.g.in.Pointee(refType)), nil
	case mir.GlobalPlace:
		return nil, nil, errors.Errorf("llvmbridge: global place %q is not implemented", b.Name)
	default:
		return nil, nil, errors.Errorf("llvmbridge: unhandled place base kind %T", base)
	}
}
