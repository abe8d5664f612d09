package mir

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// abiParamForSemantic finds the AbiParam entry implementing semantic
// parameter i (the SRET entry, if any, has no semantic index and is
// skipped).
func abiParamForSemantic(sig *Signature, i int) (AbiParam, bool) {
	for _, p := range sig.AbiParams {
		if p.Kind != AbiSRet && int(p.SemanticIndex) == i {
			return p, true
		}
	}
	return AbiParam{}, false
}

// lowerCall implements the Call/ABI Mapper (§4.5) shared by free-function
// calls and method calls (the receiver is prepended as semantic arg 0 by
// the caller).
func (fc *funcCtx) lowerCall(callee hir.Callee, args []hir.Expr, resultType *types.Type, dest *Place) (LowerResult, error) {
	id, ok := fc.l.funcIDOf(callee)
	if !ok {
		return LowerResult{}, fc.errorf(KindUnresolvedTarget, "call target not registered")
	}
	sig := fc.l.sigOf(id)
	if sig == nil {
		return LowerResult{}, fc.errorf(KindUnresolvedTarget, "no signature recorded for call target")
	}
	if len(args) != len(sig.ParamTypes) {
		return LowerResult{}, fc.errorf(KindTypeMismatch, "call supplies %d arguments, callee expects %d", len(args), len(sig.ParamTypes))
	}

	// Argument evaluation order is strictly left-to-right (§4.5): earlier
	// side effects commit before later arguments are evaluated.
	argVals := make([]ValueSource, len(args))
	for i, argExpr := range args {
		abiParam, ok := abiParamForSemantic(sig, i)
		if !ok {
			return LowerResult{}, fc.errorf(KindSigInvariantError, "no ABI parameter for semantic index %d", i)
		}
		switch abiParam.Kind {
		case AbiDirect:
			op, err := fc.lowerAsOperand(argExpr)
			if err != nil {
				return LowerResult{}, err
			}
			argVals[i] = op

		case AbiByValCallerCopy:
			local := fc.declareLocal("", sig.ParamTypes[i], false)
			place := Place{Base: LocalPlace{Local: local}, Typ: sig.ParamTypes[i]}
			res, err := fc.lowerNode(argExpr, &place)
			if err != nil {
				return LowerResult{}, err
			}
			fc.writeToDest(res, place)
			argVals[i] = place

		default:
			return LowerResult{}, fc.errorf(KindSigInvariantError, "semantic parameter %d has an SRET ABI kind", i)
		}
	}

	switch sig.Return.Kind {
	case RetIndirectSRet:
		var sretDest Place
		var result LowerResult
		if dest != nil {
			sretDest = *dest
			result = writtenResult
		} else {
			local := fc.declareLocal("", sig.Return.Type, false)
			sretDest = Place{Base: LocalPlace{Local: local}, Typ: sig.Return.Type}
			result = placeResult(sretDest)
		}
		fc.emit(CallStatement{Callee: id, Args: argVals, SretDest: &sretDest})
		return result, nil

	case RetDirect:
		temp := fc.newTemp(sig.Return.Type)
		fc.emit(CallStatement{Callee: id, Args: argVals, Dest: &temp})
		return operandResult(TempOperand{Temp: temp, Typ: sig.Return.Type}), nil

	case RetVoid:
		fc.emit(CallStatement{Callee: id, Args: argVals})
		return operandResult(UnitConst{Typ: fc.l.in.Unit()}), nil

	case RetNever:
		fc.emit(CallStatement{Callee: id, Args: argVals})
		fc.terminate(UnreachableTerminator{})
		return operandResult(UnitConst{Typ: fc.l.in.Unit()}), nil

	default:
		return LowerResult{}, fc.errorf(KindSigInvariantError, "callee has an unrecognized return kind")
	}
}
