package mir

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// indexConst builds the compile-time-known element position used to
// project into an array place during literal construction. This is
// distinct from §4.8's "materialize the index expression into a temp"
// rule, which governs runtime `a[i]` indexing, not a literal's positional
// layout.
func (fc *funcCtx) indexConst(i int) Operand {
	return IntConst{Val: uint64(i), Typ: fc.l.in.Primitive(types.KindUSize)}
}

// lowerStructLiteral implements the dest-aware aggregate rule of §4.3/§4.6:
// with a hint, fields write directly into it and no synthetic temp is
// created (P9); without one, a synthetic local is allocated and its place
// returned.
func (fc *funcCtx) lowerStructLiteral(v *hir.StructLiteralExpr, dest *Place) (LowerResult, error) {
	structType := v.Type()
	if dest != nil {
		if err := fc.lowerStructFieldsInto(*dest, structType, v); err != nil {
			return LowerResult{}, err
		}
		return writtenResult, nil
	}
	local := fc.declareLocal("", structType, false)
	place := Place{Base: LocalPlace{Local: local}, Typ: structType}
	if err := fc.lowerStructFieldsInto(place, structType, v); err != nil {
		return LowerResult{}, err
	}
	return placeResult(place), nil
}

// lowerStructFieldsInto writes every field of v into target. A field whose
// type is itself an aggregate recurses directly into its sub-place (the
// "Omitted" leaf of §4.6 — some other statement already filled that
// sub-place, so it has no entry in the batched InitStatement below); every
// other field batches into one InitStatement.
func (fc *funcCtx) lowerStructFieldsInto(target Place, structType *types.Type, v *hir.StructLiteralExpr) error {
	var scalarFields []InitField
	for _, f := range v.Fields {
		idx, ok := fc.l.in.FieldIndex(structType, f.Name)
		if !ok {
			return fc.errorf(KindUnresolvedTarget, "unknown field %q on %s", f.Name, structType)
		}
		fieldType := fc.l.in.FieldType(structType, idx)
		subPlace := projectField(target, idx, f.Name, fieldType)

		if fc.l.in.IsAggregate(fieldType) {
			res, err := fc.lowerNode(f.Value, &subPlace)
			if err != nil {
				return err
			}
			fc.writeToDest(res, subPlace)
			continue
		}

		op, err := fc.lowerAsOperand(f.Value)
		if err != nil {
			return err
		}
		scalarFields = append(scalarFields, InitField{FieldIndex: idx, Value: op})
	}
	if len(scalarFields) > 0 {
		fc.emit(InitStatement{To: target, Fields: scalarFields})
	}
	return nil
}

func (fc *funcCtx) lowerArrayLiteral(v *hir.ArrayLiteralExpr, dest *Place) (LowerResult, error) {
	arrType := v.Type()
	if dest != nil {
		if err := fc.lowerArrayElementsInto(*dest, arrType, v); err != nil {
			return LowerResult{}, err
		}
		return writtenResult, nil
	}
	local := fc.declareLocal("", arrType, false)
	place := Place{Base: LocalPlace{Local: local}, Typ: arrType}
	if err := fc.lowerArrayElementsInto(place, arrType, v); err != nil {
		return LowerResult{}, err
	}
	return placeResult(place), nil
}

// lowerArrayElementsInto mirrors lowerStructFieldsInto, but InitStatement's
// Elems list is purely positional (no per-entry index tag the way
// InitField carries FieldIndex), so a mixed literal (any aggregate
// element) falls back entirely to elementwise placement rather than a
// partial batch.
func (fc *funcCtx) lowerArrayElementsInto(target Place, arrType *types.Type, v *hir.ArrayLiteralExpr) error {
	elemType := fc.l.in.ElementType(arrType)

	if fc.l.in.IsAggregate(elemType) {
		for i, elemExpr := range v.Elements {
			subPlace := projectIndex(target, fc.indexConst(i), elemType)
			res, err := fc.lowerNode(elemExpr, &subPlace)
			if err != nil {
				return err
			}
			fc.writeToDest(res, subPlace)
		}
		return nil
	}

	elems := make([]ValueSource, len(v.Elements))
	for i, elemExpr := range v.Elements {
		op, err := fc.lowerAsOperand(elemExpr)
		if err != nil {
			return err
		}
		elems[i] = op
	}
	fc.emit(InitStatement{To: target, Elems: elems})
	return nil
}

// lowerArrayRepeat exercises both representations the data model offers
// for `[v; n]` (§4.6): dest-aware construction emits an InitStatement leaf;
// dest-ignorant construction emits ArrayRepeatRValue directly into a
// register-sized temp, the value materializes exactly once regardless.
func (fc *funcCtx) lowerArrayRepeat(v *hir.ArrayRepeatExpr, dest *Place) (LowerResult, error) {
	arrType := v.Type()
	valOp, err := fc.lowerAsOperand(v.Value)
	if err != nil {
		return LowerResult{}, err
	}

	if dest != nil {
		fc.emit(InitStatement{To: *dest, Repeat: &InitRepeat{Value: valOp, Count: v.Count}})
		return writtenResult, nil
	}

	temp := fc.newTemp(arrType)
	fc.emit(DefineStatement{Result: temp, RHS: ArrayRepeatRValue{Value: valOp, Count: v.Count, Typ: arrType}, Typ: arrType})
	return operandResult(TempOperand{Temp: temp, Typ: arrType}), nil
}
