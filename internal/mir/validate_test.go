package mir

import (
	"testing"

	"github.com/mirlang/mirc/internal/types"
)

// callModuleFixture wires a two-function module: callee(a: i32) -> i32, and
// a caller whose single CallStatement's Args the test supplies directly,
// bypassing the lowerer's own arity/ABI checks in call.go so the Validator's
// own checks can be exercised in isolation.
type callModuleFixture struct {
	in  *types.Interner
	i32 *types.Type
}

func newCallModuleFixture() *callModuleFixture {
	in := types.NewInterner()
	return &callModuleFixture{in: in, i32: in.Primitive(types.KindI32)}
}

func (f *callModuleFixture) build(callArgs []ValueSource) *MirModule {
	calleeSig := &Signature{
		ParamTypes: []*types.Type{f.i32},
		Return:     ReturnDesc{Kind: RetDirect, Type: f.i32},
		AbiParams:  []AbiParam{{Kind: AbiDirect, Type: f.i32, SemanticIndex: 0}},
	}
	callee := &MirFunction{
		ID: 0, Name: "callee", Sig: calleeSig,
		Blocks: []*BasicBlock{{ID: 0, Terminator: ReturnTerminator{Value: IntConst{Val: 1, Typ: f.i32}}}},
	}

	dest := TempId(0)
	caller := &MirFunction{
		ID: 1, Name: "caller", Sig: &Signature{Return: ReturnDesc{Kind: RetVoid}},
		NextTemp: 1,
		Blocks: []*BasicBlock{{
			ID:         0,
			Statements: []Statement{CallStatement{Callee: 0, Args: callArgs, Dest: &dest}},
			Terminator: ReturnTerminator{},
		}},
	}

	return &MirModule{Functions: []*MirFunction{callee, caller}}
}

func TestValidateCallArgCountMismatch(t *testing.T) {
	f := newCallModuleFixture()
	mod := f.build(nil)
	if err := Validate(mod); err == nil {
		t.Fatal("expected an error for a call supplying 0 arguments to a 1-parameter callee")
	}
}

func TestValidateCallArgTypeMismatch(t *testing.T) {
	f := newCallModuleFixture()
	boolT := f.in.Bool()
	mod := f.build([]ValueSource{BoolConst{Val: true, Typ: boolT}})
	if err := Validate(mod); err == nil {
		t.Fatal("expected an error for a bool argument passed to an i32 parameter")
	}
}

func TestValidateCallAbiSlotMismatch(t *testing.T) {
	f := newCallModuleFixture()
	local := LocalId(0)
	place := Place{Base: LocalPlace{Local: local}, Typ: f.i32}
	mod := f.build([]ValueSource{place})
	for _, fn := range mod.Functions {
		if fn.Name == "caller" {
			fn.Locals = append(fn.Locals, LocalInfo{ID: local, Type: f.i32})
		}
	}
	if err := Validate(mod); err == nil {
		t.Fatal("expected an error for a place argument passed to a direct ABI parameter")
	}
}

func TestValidateCallAgreementAccepted(t *testing.T) {
	f := newCallModuleFixture()
	mod := f.build([]ValueSource{IntConst{Val: 7, Typ: f.i32}})
	if err := Validate(mod); err != nil {
		t.Fatalf("expected a well-formed call to validate cleanly, got: %v", err)
	}
}
