package mir

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// resultKind distinguishes the three shapes lower_node can hand back (§4.3).
type resultKind int

const (
	resOperand resultKind = iota
	resPlace
	resWritten
)

// LowerResult is the return shape of every lower_node call: a value already
// in SSA form, an addressable location, or confirmation that the value was
// written directly into the destination hint.
type LowerResult struct {
	kind    resultKind
	operand Operand
	place   Place
}

func operandResult(op Operand) LowerResult { return LowerResult{kind: resOperand, operand: op} }
func placeResult(p Place) LowerResult      { return LowerResult{kind: resPlace, place: p} }

var writtenResult = LowerResult{kind: resWritten}

// loopCtx tracks one enclosing loop's jump targets and, for loop (not
// while) expressions, the accumulating break-value phi (§4.4).
type loopCtx struct {
	key           hir.LoopLike
	continueBlock BasicBlockId
	breakBlock    BasicBlockId
	breakType     *types.Type
	breakPhiDest  *TempId
	breakIncoming map[BasicBlockId]Operand
}

// funcCtx is the per-function lowering session: current block, variable
// scopes, and loop stack. Mirrors the teacher's own Lowerer fields
// (localCounter/blockCounter/locals/loopStack) but scoped to one function
// and carrying a destination-passing result type instead of always
// returning a bare Operand.
type funcCtx struct {
	l    *Lowerer
	fn   *MirFunction
	name string

	cur *BasicBlockId // nil means unreachable since the last terminator

	scopes    []map[string]LocalId
	loopStack []*loopCtx

	// retPlace is the function's return destination, set once up front by
	// lowerBody for a RetIndirectSRet callable (§4.7) and threaded as the
	// dest_hint for the tail expression and every `return`.
	retPlace *Place
}

// returnPlace is the SRET return destination established by lowerBody.
// Only ever called for a RetIndirectSRet function, where lowerBody always
// sets retPlace before any statement is lowered.
func (fc *funcCtx) returnPlace() Place {
	if fc.retPlace == nil {
		panic("mir: returnPlace called on a function with no SRET destination")
	}
	return *fc.retPlace
}

func (fc *funcCtx) pushScope() { fc.scopes = append(fc.scopes, map[string]LocalId{}) }
func (fc *funcCtx) popScope()  { fc.scopes = fc.scopes[:len(fc.scopes)-1] }

func (fc *funcCtx) declareLocal(name string, t *types.Type, mutable bool) LocalId {
	id := fc.fn.newLocal(name, t, mutable)
	fc.scopes[len(fc.scopes)-1][name] = id
	return id
}

func (fc *funcCtx) lookupLocal(name string) (LocalId, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if id, ok := fc.scopes[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (fc *funcCtx) errorf(kind ErrorKind, format string, args ...any) error {
	return newErrorf(kind, fc.name, format, args...)
}

// reachable reports whether the current block can still accept statements.
func (fc *funcCtx) reachable() bool { return fc.cur != nil }

func (fc *funcCtx) block() *BasicBlock {
	if fc.cur == nil {
		return nil
	}
	return fc.fn.block(*fc.cur)
}

// emit appends a statement to the current block. A no-op while unreachable
// (§4.4: "appending statements while current_block is None is a silent
// no-op").
func (fc *funcCtx) emit(s Statement) {
	bb := fc.block()
	if bb == nil {
		return
	}
	bb.Statements = append(bb.Statements, s)
}

// terminate sets the current block's terminator and marks control
// unreachable until the caller switches to a new block.
func (fc *funcCtx) terminate(t Terminator) {
	bb := fc.block()
	if bb == nil {
		return
	}
	bb.Terminator = t
	fc.cur = nil
}

func (fc *funcCtx) newBlock() BasicBlockId {
	bb := fc.l.module.newBlock(fc.fn)
	return bb.ID
}

func (fc *funcCtx) switchTo(id BasicBlockId) {
	fc.cur = &id
}

func (fc *funcCtx) newTemp(t *types.Type) TempId {
	return fc.fn.newTemp(t)
}

// --- DPS adapters (§4.3) ---

// asOperand reconciles a LowerResult into a pure Operand, emitting a load
// if the result was a place. Calling this on a Written result is an
// internal logic error: the value has already been consumed by the caller
// that supplied the destination hint.
func (fc *funcCtx) asOperand(r LowerResult, t *types.Type) Operand {
	switch r.kind {
	case resOperand:
		return r.operand
	case resPlace:
		temp := fc.newTemp(t)
		fc.emit(LoadStatement{Result: temp, From: r.place, Typ: t})
		return TempOperand{Temp: temp, Typ: t}
	default:
		panic("mir: asOperand called on a Written LowerResult")
	}
}

// asPlaceOf reconciles a LowerResult into an addressable Place, spilling an
// operand to a fresh synthetic local if necessary.
func (fc *funcCtx) asPlaceOf(r LowerResult, t *types.Type) Place {
	switch r.kind {
	case resPlace:
		return r.place
	case resOperand:
		local := fc.declareLocal("", t, false)
		p := Place{Base: LocalPlace{Local: local}, Typ: t}
		fc.emit(AssignStatement{To: p, Value: r.operand})
		return p
	default:
		panic("mir: asPlace called on a Written LowerResult")
	}
}

// writeToDest finalizes a LowerResult into dest: a no-op if it was already
// Written, an AssignStatement otherwise.
func (fc *funcCtx) writeToDest(r LowerResult, dest Place) {
	switch r.kind {
	case resWritten:
		return
	case resOperand:
		fc.emit(AssignStatement{To: dest, Value: r.operand})
	case resPlace:
		fc.emit(AssignStatement{To: dest, Value: r.place})
	}
}

// materializeOperand forces op into a TempOperand, emitting a
// DefineStatement when op is a Constant. The index of an IndexProjection
// built from an index expression always carries a TempId, even for a
// literal index like arr[2] (§4.8); an operand that is already a
// TempOperand satisfies that on its own. (Array literal construction
// projects with a constant position instead; see aggregate.go's
// indexConst.)
func (fc *funcCtx) materializeOperand(op Operand, t *types.Type) TempOperand {
	if to, ok := op.(TempOperand); ok {
		return to
	}
	temp := fc.newTemp(t)
	fc.emit(DefineStatement{Result: temp, RHS: ConstantRValue{Const: op.(Constant)}, Typ: t})
	return TempOperand{Temp: temp, Typ: t}
}

// lowerAsOperand is the common case of lower_node followed by as_operand.
func (fc *funcCtx) lowerAsOperand(e hir.Expr) (Operand, error) {
	r, err := fc.lowerNode(e, nil)
	if err != nil {
		return nil, err
	}
	return fc.asOperand(r, e.Type()), nil
}
