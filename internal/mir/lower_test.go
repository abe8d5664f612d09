package mir

import (
	"testing"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

func variable(name string, t *types.Type) *hir.Variable {
	v := &hir.Variable{Name: name}
	v.SetType(t, true)
	return v
}

func intLit(mag uint64, t *types.Type) *hir.IntLiteral {
	l := &hir.IntLiteral{Magnitude: mag}
	l.SetType(t, false)
	return l
}

func boolLit(v bool, t *types.Type) *hir.BoolLiteral {
	l := &hir.BoolLiteral{Value: v}
	l.SetType(t, false)
	return l
}

func block(tail hir.Expr, stmts ...hir.Stmt) *hir.BlockExpr {
	b := &hir.BlockExpr{Stmts: stmts, Tail: tail}
	if tail != nil {
		b.SetType(tail.Type(), false)
	}
	return b
}

// TestScalarArithmeticReturn is S1: fn add(a: i32, b: i32) -> i32 { a + b }.
func TestScalarArithmeticReturn(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)

	a := hir.Param{Name: "a", Type: i32}
	b := hir.Param{Name: "b", Type: i32}

	add := hir.BinaryExpr{Op: hir.BinAdd, Left: variable("a", i32), Right: variable("b", i32)}
	add.SetType(i32, false)

	fn := &hir.FunctionItem{Name: "add", Params: []hir.Param{a, b}, ReturnType: i32, Body: block(&add)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	if mirFn.Sig.Return.Kind != RetDirect || mirFn.Sig.Return.Type != i32 {
		t.Fatalf("expected RetDirect{i32}, got %+v", mirFn.Sig.Return)
	}
	if len(mirFn.Sig.AbiParams) != 2 {
		t.Fatalf("expected 2 ABI params, got %d", len(mirFn.Sig.AbiParams))
	}
	for i, p := range mirFn.Sig.AbiParams {
		if p.Kind != AbiDirect {
			t.Fatalf("abi param %d: expected AbiDirect, got %v", i, p.Kind)
		}
	}

	if len(mirFn.Blocks) != 1 {
		t.Fatalf("expected a single block, got %d", len(mirFn.Blocks))
	}
	bb := mirFn.Blocks[0]

	var loads, defines int
	for _, s := range bb.Statements {
		switch st := s.(type) {
		case LoadStatement:
			loads++
			if st.Typ != i32 {
				t.Fatalf("load has wrong type: %s", st.Typ)
			}
		case DefineStatement:
			defines++
			if _, ok := st.RHS.(BinaryOpRValue); !ok {
				t.Fatalf("expected a BinaryOpRValue define, got %T", st.RHS)
			}
		}
	}
	if loads != 2 || defines != 1 {
		t.Fatalf("expected 2 loads and 1 define, got %d loads, %d defines", loads, defines)
	}

	ret, ok := bb.Terminator.(ReturnTerminator)
	if !ok {
		t.Fatalf("expected a ReturnTerminator, got %T", bb.Terminator)
	}
	if ret.Value == nil {
		t.Fatal("expected Return to carry a value")
	}
}

// TestAggregateReturnViaSRet is S2: a struct-returning function lowers to
// RetIndirectSRet with a synthetic aliased return slot.
func TestAggregateReturnViaSRet(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	pair := in.DefineStruct("Pair", []types.FieldDef{{Name: "x", Type: i32}, {Name: "y", Type: i32}})

	a := hir.Param{Name: "a", Type: i32}
	b := hir.Param{Name: "b", Type: i32}

	lit := &hir.StructLiteralExpr{Fields: []hir.FieldInit{
		{Name: "x", Value: variable("a", i32)},
		{Name: "y", Value: variable("b", i32)},
	}}
	lit.SetType(pair, false)

	fn := &hir.FunctionItem{Name: "make", Params: []hir.Param{a, b}, ReturnType: pair, Body: block(lit)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	if mirFn.Sig.Return.Kind != RetIndirectSRet {
		t.Fatalf("expected RetIndirectSRet, got %v", mirFn.Sig.Return.Kind)
	}
	if mirFn.Sig.AbiParams[0].Kind != AbiSRet {
		t.Fatalf("expected the first ABI param to be AbiSRet, got %v", mirFn.Sig.AbiParams[0].Kind)
	}
	if mirFn.Sig.Return.SretIndex != 0 {
		t.Fatalf("expected SretIndex 0, got %d", mirFn.Sig.Return.SretIndex)
	}

	var aliased *LocalInfo
	for i := range mirFn.Locals {
		if mirFn.Locals[i].IsAlias {
			aliased = &mirFn.Locals[i]
		}
	}
	if aliased == nil {
		t.Fatal("expected one local aliased to the SRET abi param")
	}
	if aliased.AliasTarget != mirFn.Sig.Return.SretIndex {
		t.Fatalf("return slot aliased to %d, want %d", aliased.AliasTarget, mirFn.Sig.Return.SretIndex)
	}

	bb := mirFn.Blocks[0]
	ret, ok := bb.Terminator.(ReturnTerminator)
	if !ok || ret.Value != nil {
		t.Fatalf("expected Return(None), got %#v", bb.Terminator)
	}

	wroteX, wroteY := false, false
	for _, s := range bb.Statements {
		switch st := s.(type) {
		case AssignStatement:
			if fp, ok := lastProjection(st.To); ok && fp.FieldIndex == 0 {
				wroteX = true
			}
			if fp, ok := lastProjection(st.To); ok && fp.FieldIndex == 1 {
				wroteY = true
			}
		case InitStatement:
			for _, f := range st.Fields {
				if f.FieldIndex == 0 {
					wroteX = true
				}
				if f.FieldIndex == 1 {
					wroteY = true
				}
			}
		}
	}
	if !wroteX || !wroteY {
		t.Fatalf("expected both fields written into the return slot (x=%v y=%v)", wroteX, wroteY)
	}
}

func lastProjection(p Place) (FieldProjection, bool) {
	if len(p.Projections) == 0 {
		return FieldProjection{}, false
	}
	fp, ok := p.Projections[len(p.Projections)-1].(FieldProjection)
	return fp, ok
}

// TestByValCallerCopy is S3: passing an aggregate argument allocates a
// caller-owned synthetic local and passes its Place, never a whole-struct
// Load.
func TestByValCallerCopy(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	pair := in.DefineStruct("Pair", []types.FieldDef{{Name: "x", Type: i32}, {Name: "y", Type: i32}})

	pParam := hir.Param{Name: "p", Type: pair}
	fieldX := &hir.FieldAccess{Base: variable("p", pair), FieldName: "x", FieldIndex: 0}
	fieldX.SetType(i32, true)
	consume := &hir.FunctionItem{Name: "consume", Params: []hir.Param{pParam}, ReturnType: i32, Body: block(fieldX)}

	lit := &hir.StructLiteralExpr{Fields: []hir.FieldInit{
		{Name: "x", Value: intLit(1, i32)},
		{Name: "y", Value: intLit(2, i32)},
	}}
	lit.SetType(pair, false)
	letP := &hir.LetStmt{Name: "p", Type: pair, Init: lit}

	call := &hir.CallExpr{Target: hir.Callee{Function: consume}, Args: []hir.Expr{variable("p", pair)}}
	call.SetType(i32, false)

	use := &hir.FunctionItem{Name: "use", ReturnType: i32, Body: block(call, letP)}
	prog := &hir.Program{Items: []hir.Item{consume, use}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	consumeSig := mod.Functions[0].Sig
	if consumeSig.AbiParams[0].Kind != AbiByValCallerCopy {
		t.Fatalf("expected consume's parameter to be AbiByValCallerCopy, got %v", consumeSig.AbiParams[0].Kind)
	}

	useFn := mod.Functions[1]
	var call1 CallStatement
	found := false
	for _, bb := range useFn.Blocks {
		for _, s := range bb.Statements {
			if cs, ok := s.(CallStatement); ok {
				call1, found = cs, true
			}
			if ld, ok := s.(LoadStatement); ok && ld.Typ == pair {
				t.Fatal("caller loaded the whole struct into an SSA temp; byval copy must use a Place")
			}
		}
	}
	if !found {
		t.Fatal("expected a CallStatement in use()")
	}
	if len(call1.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call1.Args))
	}
	if _, ok := call1.Args[0].(Place); !ok {
		t.Fatalf("expected the byval argument to be a Place, got %T", call1.Args[0])
	}
}

// TestShortCircuitAnd is S4: `a && b` builds a three-block CFG with a phi
// at the join, never a BinaryOpRValue.
func TestShortCircuitAnd(t *testing.T) {
	in := types.NewInterner()
	boolT := in.Bool()

	aParam := hir.Param{Name: "a", Type: boolT}
	bParam := hir.Param{Name: "b", Type: boolT}

	logical := &hir.LogicalExpr{Op: hir.LogicalAnd, Left: variable("a", boolT), Right: variable("b", boolT)}
	logical.SetType(boolT, false)

	fn := &hir.FunctionItem{Name: "f", Params: []hir.Param{aParam, bParam}, ReturnType: boolT, Body: block(logical)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	if len(mirFn.Blocks) != 3 {
		t.Fatalf("expected entry/rhs/join, got %d blocks", len(mirFn.Blocks))
	}

	entry := mirFn.Blocks[0]
	sw, ok := entry.Terminator.(SwitchIntTerminator)
	if !ok {
		t.Fatalf("expected entry to end in SwitchInt, got %T", entry.Terminator)
	}
	if len(sw.Cases) != 1 || sw.Cases[0].Value != 1 {
		t.Fatalf("expected a single true-case switch, got %+v", sw.Cases)
	}

	join := mirFn.Blocks[2]
	if len(join.Phis) != 1 {
		t.Fatalf("expected exactly one phi at the join, got %d", len(join.Phis))
	}
	phi := join.Phis[0]
	if len(phi.Inputs) != 2 {
		t.Fatalf("expected 2 phi inputs, got %d", len(phi.Inputs))
	}
	foundShortFalse := false
	for _, op := range phi.Inputs {
		if bc, ok := op.(BoolConst); ok && bc.Val == false {
			foundShortFalse = true
		}
	}
	if !foundShortFalse {
		t.Fatal("expected the short-circuit path to contribute a constant false")
	}
}

// TestLoopBreakValue is S6: `loop { if cond { break 42; } }` assembles the
// break value through a phi at the break block, fed only by reachable break
// sites.
func TestLoopBreakValue(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	boolT := in.Bool()

	condParam := hir.Param{Name: "cond", Type: boolT}

	loopExpr := &hir.LoopExpr{}
	breakExpr := &hir.BreakExpr{Loop: loopExpr, Value: intLit(42, i32)}
	breakExpr.SetType(in.Never(), false)

	ifExpr := &hir.IfExpr{
		Cond: variable("cond", boolT),
		Then: block(nil, &hir.ExprStmt{Expr: breakExpr}),
	}
	ifExpr.SetType(in.Unit(), false)

	loopExpr.Body = block(ifExpr)
	loopExpr.SetType(i32, false)

	fn := &hir.FunctionItem{Name: "f", Params: []hir.Param{condParam}, ReturnType: i32, Body: block(loopExpr)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	var breakBlock *BasicBlock
	for _, bb := range mirFn.Blocks {
		if len(bb.Phis) > 0 {
			breakBlock = bb
		}
	}
	if breakBlock == nil {
		t.Fatal("expected a phi at the loop's break block")
	}
	phi := breakBlock.Phis[0]
	if phi.Typ != i32 {
		t.Fatalf("expected the break phi to be typed i32, got %s", phi.Typ)
	}
	if len(phi.Inputs) != 1 {
		t.Fatalf("expected exactly one break site to reach the phi, got %d", len(phi.Inputs))
	}
	for _, op := range phi.Inputs {
		ic, ok := op.(IntConst)
		if !ok || ic.Val != 42 {
			t.Fatalf("expected the break value 42, got %#v", op)
		}
	}
}

// TestDuplicateCallableRejected exercises the DuplicateCallable failure
// mode of §4.2: two functions mangling to the same name abort the whole
// session with no partial MirModule delivered.
func TestDuplicateCallableRejected(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)

	fn1 := &hir.FunctionItem{Name: "dup", ReturnType: i32, Body: block(intLit(1, i32))}
	fn2 := &hir.FunctionItem{Name: "dup", ReturnType: i32, Body: block(intLit(2, i32))}
	prog := &hir.Program{Items: []hir.Item{fn1, fn2}}

	mod, err := NewLowerer(in).Lower(prog)
	if err == nil {
		t.Fatal("expected a DuplicateCallable error")
	}
	if mod != nil {
		t.Fatal("expected no partial MirModule on failure")
	}
	le, ok := asLowerError(err)
	if !ok {
		t.Fatalf("expected a *LowerError in the chain, got %v", err)
	}
	if le.Kind != KindDuplicateCallable {
		t.Fatalf("expected KindDuplicateCallable, got %s", le.Kind)
	}
}

func asLowerError(err error) (*LowerError, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if le, ok := err.(*LowerError); ok {
			return le, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

// TestIfDestHintEmitsNoPhi is B2: an if with an aggregate result type and a
// destination hint writes into the hint in both branches and emits no phi.
func TestIfDestHintEmitsNoPhi(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Primitive(types.KindI32)
	pair := in.DefineStruct("Pair", []types.FieldDef{{Name: "x", Type: i32}, {Name: "y", Type: i32}})
	boolT := in.Bool()

	mk := func(x, y uint64) *hir.StructLiteralExpr {
		lit := &hir.StructLiteralExpr{Fields: []hir.FieldInit{
			{Name: "x", Value: intLit(x, i32)},
			{Name: "y", Value: intLit(y, i32)},
		}}
		lit.SetType(pair, false)
		return lit
	}

	ifExpr := &hir.IfExpr{
		Cond: variable("cond", boolT),
		Then: block(mk(1, 2)),
		Else: block(mk(3, 4)),
	}
	ifExpr.SetType(pair, false)

	condParam := hir.Param{Name: "cond", Type: boolT}
	fn := &hir.FunctionItem{Name: "pick", Params: []hir.Param{condParam}, ReturnType: pair, Body: block(ifExpr)}
	prog := &hir.Program{Items: []hir.Item{fn}}

	mod, err := NewLowerer(in).Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if err := Validate(mod); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	mirFn := mod.Functions[0]
	for _, bb := range mirFn.Blocks {
		if len(bb.Phis) != 0 {
			t.Fatalf("expected no phi anywhere when lowering into a destination hint, found one in bb%d", bb.ID)
		}
	}
}
