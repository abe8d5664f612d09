// Package mir is the mid-level intermediate representation this subsystem
// lowers HIR into, and the lowering pipeline itself. The data model mirrors
// the teacher's internal/mir/mir.go shape (one marker method per node kind:
// stmtNode/terminatorNode/operandNode/rvalueNode, a Module of Functions each
// with a flat []*BasicBlock) but is rebuilt around the things this spec
// actually requires that the teacher's didn't: integer IDs instead of
// pointer identity for locals/blocks/functions (so a MIR function survives
// being serialized or diffed), an explicit ABI-aware Signature separate
// from the semantic parameter list, and destination-passing-style lowering
// instead of always-return-an-Operand.
package mir

import "github.com/mirlang/mirc/internal/types"

// TempId names an SSA temporary: written exactly once, for its whole
// lifetime, by exactly one statement.
type TempId int

// LocalId names a stack-resident local: a parameter, a `let` binding, or a
// compiler-synthesized slot (an SRET return slot, an aggregate literal
// staging area). Unlike a TempId, a LocalId may be written more than once.
type LocalId int

// BasicBlockId names a basic block within one function.
type BasicBlockId int

// FunctionId names a callable (free function or method) in collection
// order, stable for the lifetime of a Module.
type FunctionId int

// ParamIndex is a 0-based index into a function's semantic parameter list
// (post-self, pre-ABI-expansion).
type ParamIndex int

// AbiParamIndex is a 0-based index into a function's abi_params list
// (post-SRET-prepend, post-byval-expansion).
type AbiParamIndex int

// --- Constants (§3.3) ---

// Constant is a compile-time-known value. Every variant implements
// constantNode so a Constant can stand in anywhere an Operand is expected.
type Constant interface {
	operandNode()
	constantNode()
	Type() *types.Type
}

type BoolConst struct {
	Val bool
	Typ *types.Type
}

func (c BoolConst) operandNode()    {}
func (c BoolConst) constantNode()   {}
func (c BoolConst) Type() *types.Type { return c.Typ }

type IntConst struct {
	Val uint64
	Typ *types.Type
}

func (c IntConst) operandNode()    {}
func (c IntConst) constantNode()   {}
func (c IntConst) Type() *types.Type { return c.Typ }

type CharConst struct {
	Val rune
	Typ *types.Type
}

func (c CharConst) operandNode()    {}
func (c CharConst) constantNode()   {}
func (c CharConst) Type() *types.Type { return c.Typ }

// StringConst is a fixed-size array-of-char constant (§3.2/§9): this
// language has no dedicated string primitive, so a string literal is typed
// [char; N] and lowered exactly like any other array-typed constant.
type StringConst struct {
	Val string
	Typ *types.Type
}

func (c StringConst) operandNode()    {}
func (c StringConst) constantNode()   {}
func (c StringConst) Type() *types.Type { return c.Typ }

type UnitConst struct {
	Typ *types.Type
}

func (c UnitConst) operandNode()    {}
func (c UnitConst) constantNode()   {}
func (c UnitConst) Type() *types.Type { return c.Typ }

// EnumDiscriminant is the constant tag value of one named enum variant.
type EnumDiscriminant struct {
	Variant string
	Val     uint64
	Typ     *types.Type // the enum type
}

func (c EnumDiscriminant) operandNode()    {}
func (c EnumDiscriminant) constantNode()   {}
func (c EnumDiscriminant) Type() *types.Type { return c.Typ }

// --- Operands (§3.4) ---

// Operand is a value usable as an RValue operand: either a previously
// defined SSA temporary or a Constant.
type Operand interface {
	operandNode()
}

// TempOperand reads a previously-defined SSA temporary.
type TempOperand struct {
	Temp TempId
	Typ  *types.Type
}

func (TempOperand) operandNode() {}

// --- Places (§3.5, §4.8) ---

// PlaceBase is where a place's address chain starts.
type PlaceBase interface {
	placeBaseNode()
}

// LocalPlace roots a place at a stack-resident local.
type LocalPlace struct {
	Local LocalId
}

func (LocalPlace) placeBaseNode() {}

// GlobalPlace roots a place at a module-level constant/global.
type GlobalPlace struct {
	Name string
}

func (GlobalPlace) placeBaseNode() {}

// PointerPlace roots a place at the address held by a reference-typed
// operand (the result of a deref, §4.8).
type PointerPlace struct {
	Pointer Operand
}

func (PointerPlace) placeBaseNode() {}

// Projection narrows a place by one step: a field or an index.
type Projection interface {
	projectionNode()
}

type FieldProjection struct {
	FieldIndex int
	FieldName  string
}

func (FieldProjection) projectionNode() {}

type IndexProjection struct {
	Index Operand
}

func (IndexProjection) projectionNode() {}

// Place is an address computation: a base plus zero or more projections
// applied left to right.
type Place struct {
	Base        PlaceBase
	Projections []Projection
	Typ         *types.Type // the type of the place after all projections
}

// --- ValueSource (§3.6) ---

// ValueSource is either an Operand (already in SSA form) or a Place (needs
// a LoadStatement to read), the common input shape several RValues accept.
type ValueSource interface {
	valueSourceNode()
}

func (TempOperand) valueSourceNode() {}
func (Place) valueSourceNode()       {}

// wrap constant types as ValueSource/Operand-compatible too, since Constant
// embeds operandNode already; Go's structural interfaces make this free for
// any concrete Constant type used where Operand or ValueSource is expected.
func (BoolConst) valueSourceNode()        {}
func (IntConst) valueSourceNode()         {}
func (CharConst) valueSourceNode()        {}
func (StringConst) valueSourceNode()      {}
func (UnitConst) valueSourceNode()        {}
func (EnumDiscriminant) valueSourceNode() {}

// --- RValues (§3.7) ---

// RValue is the right-hand side of a DefineStatement: something that
// produces exactly one value.
type RValue interface {
	rvalueNode()
}

type ConstantRValue struct {
	Const Constant
}

func (ConstantRValue) rvalueNode() {}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNotEq
	OpLt
	OpLe
	OpGt
	OpGe
)

type BinaryOpRValue struct {
	Op          BinOp
	Left, Right Operand
	Typ         *types.Type
}

func (BinaryOpRValue) rvalueNode() {}

type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

type UnaryOpRValue struct {
	Op      UnOp
	Operand Operand
	Typ     *types.Type
}

func (UnaryOpRValue) rvalueNode() {}

// RefRValue takes the address of a place, producing a reference-typed
// value (§4.8).
type RefRValue struct {
	Place   Place
	Mutable bool
}

func (RefRValue) rvalueNode() {}

type CastRValue struct {
	Operand Operand
	Target  *types.Type
}

func (CastRValue) rvalueNode() {}

// ArrayRepeatRValue materializes [value; count] into a register-sized
// result. lowerArrayRepeat emits it whenever no destination hint is given,
// whatever the array's size; with a hint it emits an InitStatement Repeat
// instead (§4.6).
type ArrayRepeatRValue struct {
	Value Operand
	Count uint64
	Typ   *types.Type
}

func (ArrayRepeatRValue) rvalueNode() {}

type FieldAccessRValue struct {
	Base       ValueSource
	FieldIndex int
	Typ        *types.Type
}

func (FieldAccessRValue) rvalueNode() {}

type IndexAccessRValue struct {
	Base  ValueSource
	Index Operand
	Typ   *types.Type
}

func (IndexAccessRValue) rvalueNode() {}

// --- Statements (§3.8) ---

type Statement interface {
	stmtNode()
}

// DefineStatement introduces a fresh SSA temporary (the single-definition
// invariant, P1 in the testable-properties section).
type DefineStatement struct {
	Result TempId
	RHS    RValue
	Typ    *types.Type
}

func (DefineStatement) stmtNode() {}

// LoadStatement reads the current value out of a place into a fresh
// temporary.
type LoadStatement struct {
	Result TempId
	From   Place
	Typ    *types.Type
}

func (LoadStatement) stmtNode() {}

// AssignStatement writes a value into a place (not SSA: a place may be
// written more than once). Value is a ValueSource rather than a bare
// Operand so a place-to-place aggregate copy can be expressed without first
// loading the whole aggregate into an SSA register (§3.3, §3.5): the
// backend picks load-then-store vs. memcpy.
type AssignStatement struct {
	To    Place
	Value ValueSource
}

func (AssignStatement) stmtNode() {}

// InitStatement writes the listed leaves of an aggregate place (struct or
// array) in one statement rather than one store per field (§4.6). Fields
// that are themselves aggregates are written by their own statements and
// are not listed (see InitField).
type InitStatement struct {
	To     Place
	Fields []InitField  // struct literal: one entry per non-omitted field
	Elems  []ValueSource // array literal: one entry per element
	Repeat *InitRepeat  // set instead of Elems for [v; n] aggregates
}

// InitField is one leaf of a struct InitStatement. A field index with no
// entry in Fields is the "Omitted" case of §4.6: some other statement
// already wrote that sub-place (a nested aggregate recursion), and the
// backend must not overwrite it.
type InitField struct {
	FieldIndex int
	Value      ValueSource
}

type InitRepeat struct {
	Value ValueSource
	Count uint64
}

func (InitStatement) stmtNode() {}

// CallStatement invokes a callable. Dest is nil unless the callee's
// Return.Kind is RetDirect; when the callee returns indirectly via SRET,
// SretDest names the caller-provided return slot passed as the hidden
// first argument.
type CallStatement struct {
	Callee   FunctionId
	Args     []ValueSource
	Dest     *TempId // set when AbiReturn is RetDirect
	SretDest *Place  // set when AbiReturn is RetIndirectSRet
}

func (CallStatement) stmtNode() {}

// --- Terminators (§3.9) ---

type Terminator interface {
	terminatorNode()
}

type GotoTerminator struct {
	Target BasicBlockId
}

func (GotoTerminator) terminatorNode() {}

type SwitchIntTerminator struct {
	Discriminant Operand
	Cases        []SwitchCase
	Default      BasicBlockId
}

type SwitchCase struct {
	Value  uint64
	Target BasicBlockId
}

func (SwitchIntTerminator) terminatorNode() {}

// ReturnTerminator ends the function. Value is nil for RetVoid/RetNever
// functions and for RetIndirectSRet functions (the value already lives in
// the SRET slot by the time this terminator runs, §4.7).
type ReturnTerminator struct {
	Value Operand
}

func (ReturnTerminator) terminatorNode() {}

// UnreachableTerminator marks a block the lowerer proved can never execute
// (the tail of a `-> !` function, or the far side of an infinite loop with
// no reachable break, §4.4).
type UnreachableTerminator struct{}

func (UnreachableTerminator) terminatorNode() {}

// --- Phi nodes (§3.10) ---

// PhiNode merges SSA values from multiple predecessor blocks into one
// fresh temporary at the head of a join block.
type PhiNode struct {
	Result TempId
	Typ    *types.Type
	Inputs map[BasicBlockId]Operand
}

// --- Basic blocks, functions, module (§3.11-3.13) ---

type BasicBlock struct {
	ID         BasicBlockId
	Phis       []PhiNode
	Statements []Statement
	Terminator Terminator
}

// LocalInfo describes one LocalId's declared type and mutability. An
// aliased local (IsAlias) allocates no storage of its own: its place
// resolves to an ABI parameter pointer instead (the SRET slot, §4.7).
type LocalInfo struct {
	ID      LocalId
	Name    string
	Type    *types.Type
	Mutable bool

	IsAlias     bool
	AliasTarget AbiParamIndex
}

// MirFunction is a fully lowered function body plus its ABI signature.
type MirFunction struct {
	ID        FunctionId
	Name      string
	Sig       *Signature
	Locals    []LocalInfo
	Blocks    []*BasicBlock
	Entry     BasicBlockId
	NextTemp  TempId
	NextLocal LocalId
	NextBlock BasicBlockId
}

// ExternalFunction is a callable with no body known to this module (§4.2,
// "external" functions and trait-declared-but-unimplemented methods never
// reached through a concrete impl are out of scope here; this covers the
// `fn foo(..);` body-less declaration form and the predefined builtins of
// Program.Builtins).
type ExternalFunction struct {
	ID   FunctionId
	Name string
	Sig  *Signature
}

// MirModule is the top-level lowering output (§3.13).
type MirModule struct {
	Functions []*MirFunction
	Externs   []*ExternalFunction
}

func (m *MirModule) newBlock(fn *MirFunction) *BasicBlock {
	id := fn.NextBlock
	fn.NextBlock++
	bb := &BasicBlock{ID: id}
	fn.Blocks = append(fn.Blocks, bb)
	return bb
}

func (fn *MirFunction) block(id BasicBlockId) *BasicBlock {
	for _, bb := range fn.Blocks {
		if bb.ID == id {
			return bb
		}
	}
	return nil
}

func (fn *MirFunction) newTemp(t *types.Type) TempId {
	id := fn.NextTemp
	fn.NextTemp++
	return id
}

func (fn *MirFunction) newLocal(name string, t *types.Type, mutable bool) LocalId {
	id := fn.NextLocal
	fn.NextLocal++
	fn.Locals = append(fn.Locals, LocalInfo{ID: id, Name: name, Type: t, Mutable: mutable})
	return id
}

// aliasLocal marks an already-declared local as resolving to an ABI
// parameter pointer rather than its own stack storage (§3.8, §4.7).
func (fn *MirFunction) aliasLocal(id LocalId, target AbiParamIndex) {
	for i := range fn.Locals {
		if fn.Locals[i].ID == id {
			fn.Locals[i].IsAlias = true
			fn.Locals[i].AliasTarget = target
			return
		}
	}
}
