package mir

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// asPlace resolves an HIR expression known to satisfy IsPlace() into a
// Place: a variable, a field/index projection chain rooted at one, or a
// pointer dereference. Projections accumulate left to right (§4.8).
func (fc *funcCtx) asPlace(e hir.Expr) (Place, error) {
	switch v := e.(type) {
	case *hir.Variable:
		local, ok := fc.lookupLocal(v.Name)
		if !ok {
			return Place{}, fc.errorf(KindUnresolvedTarget, "undeclared variable %q", v.Name)
		}
		return Place{Base: LocalPlace{Local: local}, Typ: v.Type()}, nil

	case *hir.FieldAccess:
		base, err := fc.placeOf(v.Base)
		if err != nil {
			return Place{}, err
		}
		base.Projections = append(append([]Projection{}, base.Projections...), FieldProjection{
			FieldIndex: v.FieldIndex,
			FieldName:  v.FieldName,
		})
		base.Typ = v.Type()
		return base, nil

	case *hir.IndexExpr:
		base, err := fc.placeOf(v.Base)
		if err != nil {
			return Place{}, err
		}
		idxOp, err := fc.lowerAsOperand(v.Index)
		if err != nil {
			return Place{}, err
		}
		idxTemp := fc.materializeOperand(idxOp, v.Index.Type())
		base.Projections = append(append([]Projection{}, base.Projections...), IndexProjection{Index: idxTemp})
		base.Typ = v.Type()
		return base, nil

	case *hir.DerefExpr:
		ptr, err := fc.lowerAsOperand(v.Operand)
		if err != nil {
			return Place{}, err
		}
		return Place{Base: PointerPlace{Pointer: ptr}, Typ: v.Type()}, nil

	default:
		return Place{}, fc.errorf(KindUnsupportedPattern, "%T is not a place expression", e)
	}
}

// placeOf resolves e to a Place regardless of whether it is itself a place
// expression: a non-place base (e.g. the yet-unmaterialized result of a
// call) is first lowered to an operand and spilled to a synthetic local
// (§4.8: "forces materialization").
func (fc *funcCtx) placeOf(e hir.Expr) (Place, error) {
	if e.IsPlace() {
		return fc.asPlace(e)
	}
	res, err := fc.lowerNode(e, nil)
	if err != nil {
		return Place{}, err
	}
	return fc.asPlaceOf(res, e.Type()), nil
}

// projectField appends a FieldProjection to a copy of p.
func projectField(p Place, index int, name string, t *types.Type) Place {
	proj := append(append([]Projection{}, p.Projections...), FieldProjection{FieldIndex: index, FieldName: name})
	return Place{Base: p.Base, Projections: proj, Typ: t}
}

// projectIndex appends an IndexProjection to a copy of p. Used only by
// aggregate.go's lowerArrayElementsInto, with an indexConst index (a
// compiler-synthesized constant position for element-by-element aggregate
// construction, §4.3) rather than a lowered surface IndexExpr; asPlace's
// IndexExpr case builds its own IndexProjection from an index it has
// materialized to a temp (§4.8) and does not call this.
func projectIndex(p Place, index Operand, t *types.Type) Place {
	proj := append(append([]Projection{}, p.Projections...), IndexProjection{Index: index})
	return Place{Base: p.Base, Projections: proj, Typ: t}
}
