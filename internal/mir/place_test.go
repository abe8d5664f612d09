package mir

import (
	"testing"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// TestConstantIndexMaterializesToTemp is §4.8's invariant: a[2] must lower
// its index operand into a temp even though 2 is already a constant, so
// every IndexProjection built from an index expression carries a TempId.
func TestConstantIndexMaterializesToTemp(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	arrT := in.Array(i32, 4)

	a := hir.Param{Name: "a", Type: arrT}

	idx := intLit(2, i32)
	idxExpr := &hir.IndexExpr{Base: variable("a", arrT), Index: idx}
	idxExpr.SetType(i32, true)

	fn := &hir.FunctionItem{Name: "get", Params: []hir.Param{a}, ReturnType: i32, Body: block(idxExpr)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	var sawIndexDefine bool
	for _, bb := range mirFn.Blocks {
		for _, s := range bb.Statements {
			if ld, ok := s.(LoadStatement); ok {
				for _, proj := range ld.From.Projections {
					ip, ok := proj.(IndexProjection)
					if !ok {
						continue
					}
					if _, ok := ip.Index.(TempOperand); !ok {
						t.Fatalf("IndexProjection carries a %T, want TempOperand", ip.Index)
					}
				}
			}
		}
		_ = sawIndexDefine
	}

	var defines int
	for _, bb := range mirFn.Blocks {
		for _, s := range bb.Statements {
			if d, ok := s.(DefineStatement); ok {
				if _, ok := d.RHS.(ConstantRValue); ok {
					defines++
				}
			}
		}
	}
	if defines != 1 {
		t.Fatalf("expected exactly one DefineStatement materializing the constant index, got %d", defines)
	}
}
