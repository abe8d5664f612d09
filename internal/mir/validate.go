package mir

import (
	"fmt"

	"github.com/mirlang/mirc/internal/types"
	"github.com/pkg/errors"
)

// Validate runs the Validator (C10) over every internal function in m,
// reporting the first violation found (§4.10: "Report the first
// violation"). A module that passes is ready for a backend.
func Validate(m *MirModule) error {
	for _, fn := range m.Functions {
		if err := validateFunction(fn, m); err != nil {
			return err
		}
	}
	return nil
}

func validateFunction(fn *MirFunction, m *MirModule) error {
	v := &validator{fn: fn, module: m}
	return v.run()
}

type validator struct {
	fn     *MirFunction
	module *MirModule
}

// calleeSignature resolves a CallStatement.Callee to the Signature collected
// for it, searching both lowered functions and externs (§4.2: either may be
// a call target).
func (v *validator) calleeSignature(id FunctionId) (*Signature, string, bool) {
	for _, fn := range v.module.Functions {
		if fn.ID == id {
			return fn.Sig, fn.Name, true
		}
	}
	for _, ext := range v.module.Externs {
		if ext.ID == id {
			return ext.Sig, ext.Name, true
		}
	}
	return nil, "", false
}

func (v *validator) fail(kind ErrorKind, block BasicBlockId, format string, args ...any) error {
	b := block
	le := &LowerError{Kind: kind, Function: v.fn.Name, Block: &b, Detail: fmt.Sprintf(format, args...)}
	return errors.WithStack(le)
}

func (v *validator) run() error {
	if err := v.checkTerminators(); err != nil {
		return err
	}
	defBlock, defOrder, err := v.checkUniqueDefs()
	if err != nil {
		return err
	}
	doms := computeDominators(v.fn)
	if err := v.checkDominance(defBlock, defOrder, doms); err != nil {
		return err
	}
	if err := v.checkTypeAgreement(); err != nil {
		return err
	}
	return v.checkReturnShape()
}

// checkTerminators verifies every reachable block ends in exactly one
// terminator (§3.11: "exactly one terminator").
func (v *validator) checkTerminators() error {
	for _, bb := range v.fn.Blocks {
		if bb.Terminator == nil {
			return v.fail(KindInvariantViolation, bb.ID, "block has no terminator")
		}
	}
	return nil
}

// checkUniqueDefs verifies the single-definition invariant (P1): each TempId
// is produced by exactly one DefineStatement/LoadStatement/CallStatement.Dest
// /PhiNode across the whole function. It also records where (block, order)
// each temp is defined for the dominance pass; phis are considered defined
// at order -1 (the block's head, before its first statement).
func (v *validator) checkUniqueDefs() (map[TempId]BasicBlockId, map[TempId]int, error) {
	defBlock := map[TempId]BasicBlockId{}
	defOrder := map[TempId]int{}

	define := func(t TempId, block BasicBlockId, order int) error {
		if _, seen := defBlock[t]; seen {
			return v.fail(KindInvariantViolation, block, "temp t%d defined more than once", t)
		}
		defBlock[t] = block
		defOrder[t] = order
		return nil
	}

	for _, bb := range v.fn.Blocks {
		for _, phi := range bb.Phis {
			if err := define(phi.Result, bb.ID, -1); err != nil {
				return nil, nil, err
			}
		}
		for i, s := range bb.Statements {
			switch st := s.(type) {
			case DefineStatement:
				if err := define(st.Result, bb.ID, i); err != nil {
					return nil, nil, err
				}
			case LoadStatement:
				if err := define(st.Result, bb.ID, i); err != nil {
					return nil, nil, err
				}
			case CallStatement:
				if st.Dest != nil {
					if err := define(*st.Dest, bb.ID, i); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}
	return defBlock, defOrder, nil
}

// checkDominance verifies use-dominates-def for every temp reference: the
// block that defines a temp must dominate every block that reads it, and
// within the defining block itself the definition must precede the use
// textually. A phi input is checked against the end of its named
// predecessor block, since that is the point in the CFG the value is read.
func (v *validator) checkDominance(defBlock map[TempId]BasicBlockId, defOrder map[TempId]int, doms map[BasicBlockId]BasicBlockId) error {
	dominates := func(a, b BasicBlockId) bool {
		for {
			if a == b {
				return true
			}
			parent, ok := doms[b]
			if !ok || parent == b {
				return a == b
			}
			b = parent
		}
	}

	checkUse := func(t TempId, useBlock BasicBlockId, useOrder int) error {
		db, ok := defBlock[t]
		if !ok {
			return v.fail(KindInvariantViolation, useBlock, "use of t%d which is never defined", t)
		}
		if !dominates(db, useBlock) {
			return v.fail(KindInvariantViolation, useBlock, "use of t%d in bb%d is not dominated by its definition in bb%d", t, useBlock, db)
		}
		if db == useBlock && defOrder[t] >= useOrder {
			return v.fail(KindInvariantViolation, useBlock, "use of t%d precedes its own definition", t)
		}
		return nil
	}

	checkOperand := func(op Operand, block BasicBlockId, order int) error {
		if to, ok := op.(TempOperand); ok {
			return checkUse(to.Temp, block, order)
		}
		return nil
	}

	checkValueSource := func(vs ValueSource, block BasicBlockId, order int) error {
		switch x := vs.(type) {
		case TempOperand:
			return checkUse(x.Temp, block, order)
		case Place:
			return checkPlaceIndices(x, block, order, checkOperand)
		}
		return nil
	}

	for _, bb := range v.fn.Blocks {
		for i, s := range bb.Statements {
			switch st := s.(type) {
			case DefineStatement:
				for _, op := range rvalueOperands(st.RHS) {
					if err := checkOperand(op, bb.ID, i); err != nil {
						return err
					}
				}
			case LoadStatement:
				if err := checkPlaceIndices(st.From, bb.ID, i, checkOperand); err != nil {
					return err
				}
			case AssignStatement:
				if err := checkPlaceIndices(st.To, bb.ID, i, checkOperand); err != nil {
					return err
				}
				if err := checkValueSource(st.Value, bb.ID, i); err != nil {
					return err
				}
			case InitStatement:
				if err := checkPlaceIndices(st.To, bb.ID, i, checkOperand); err != nil {
					return err
				}
				for _, f := range st.Fields {
					if err := checkValueSource(f.Value, bb.ID, i); err != nil {
						return err
					}
				}
				for _, e := range st.Elems {
					if err := checkValueSource(e, bb.ID, i); err != nil {
						return err
					}
				}
				if st.Repeat != nil {
					if err := checkValueSource(st.Repeat.Value, bb.ID, i); err != nil {
						return err
					}
				}
			case CallStatement:
				for _, a := range st.Args {
					if err := checkValueSource(a, bb.ID, i); err != nil {
						return err
					}
				}
				if st.SretDest != nil {
					if err := checkPlaceIndices(*st.SretDest, bb.ID, i, checkOperand); err != nil {
						return err
					}
				}
			}
		}

		switch t := bb.Terminator.(type) {
		case SwitchIntTerminator:
			if err := checkOperand(t.Discriminant, bb.ID, len(bb.Statements)); err != nil {
				return err
			}
		case ReturnTerminator:
			if t.Value != nil {
				if err := checkOperand(t.Value, bb.ID, len(bb.Statements)); err != nil {
					return err
				}
			}
		}
	}

	// Phi inputs are read at the end of their named predecessor, not at the
	// phi's own block.
	for _, bb := range v.fn.Blocks {
		for _, phi := range bb.Phis {
			for pred, op := range phi.Inputs {
				if err := checkOperand(op, pred, 1<<30); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkPlaceIndices(p Place, block BasicBlockId, order int, checkOperand func(Operand, BasicBlockId, int) error) error {
	for _, proj := range p.Projections {
		if ip, ok := proj.(IndexProjection); ok {
			if err := checkOperand(ip.Index, block, order); err != nil {
				return err
			}
		}
	}
	return nil
}

func rvalueOperands(r RValue) []Operand {
	switch v := r.(type) {
	case BinaryOpRValue:
		return []Operand{v.Left, v.Right}
	case UnaryOpRValue:
		return []Operand{v.Operand}
	case CastRValue:
		return []Operand{v.Operand}
	case ArrayRepeatRValue:
		return []Operand{v.Value}
	case ConstantRValue:
		return nil
	default:
		return nil
	}
}

// checkTypeAgreement verifies every LoadStatement/AssignStatement/PhiNode
// agrees in type between its destination and source (§4.10).
func (v *validator) checkTypeAgreement() error {
	for _, bb := range v.fn.Blocks {
		for _, phi := range bb.Phis {
			for _, op := range phi.Inputs {
				if t := operandType(op); t != nil && t != phi.Typ {
					return v.fail(KindTypeMismatch, bb.ID, "phi t%d expects %s but an input supplies %s", phi.Result, phi.Typ, t)
				}
			}
		}
		for _, s := range bb.Statements {
			switch st := s.(type) {
			case LoadStatement:
				if st.From.Typ != nil && st.From.Typ != st.Typ {
					return v.fail(KindTypeMismatch, bb.ID, "load of %s into a temp typed %s", st.From.Typ, st.Typ)
				}
			case AssignStatement:
				if t := valueSourceType(st.Value); t != nil && st.To.Typ != nil && t != st.To.Typ {
					return v.fail(KindTypeMismatch, bb.ID, "assigning a %s value into a place typed %s", t, st.To.Typ)
				}
			case CallStatement:
				if err := v.checkCallAgreement(bb.ID, st); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkCallAgreement verifies a CallStatement against its callee's
// Signature (P6, §3.10, §4.10): arg count must match the callee's semantic
// parameter count, each arg's ABI slot kind (direct vs. byval place) must
// agree with the callee's AbiParams, and each arg's type must match the
// corresponding semantic parameter type.
func (v *validator) checkCallAgreement(block BasicBlockId, st CallStatement) error {
	sig, name, ok := v.calleeSignature(st.Callee)
	if !ok {
		return v.fail(KindUnresolvedTarget, block, "call to unregistered function id %d", st.Callee)
	}
	if len(st.Args) != len(sig.ParamTypes) {
		return v.fail(KindTypeMismatch, block, "call to %q supplies %d arguments, signature declares %d", name, len(st.Args), len(sig.ParamTypes))
	}
	for i, a := range st.Args {
		abiParam, ok := abiParamForSemantic(sig, i)
		if !ok {
			return v.fail(KindInvariantViolation, block, "call to %q: no ABI parameter for semantic index %d", name, i)
		}
		_, isPlace := a.(Place)
		switch abiParam.Kind {
		case AbiByValCallerCopy:
			if !isPlace {
				return v.fail(KindTypeMismatch, block, "call to %q: argument %d is byval but was passed as a bare operand", name, i)
			}
		default:
			if isPlace {
				return v.fail(KindTypeMismatch, block, "call to %q: argument %d is a direct ABI slot but was passed as a place", name, i)
			}
		}
		if t := valueSourceType(a); t != nil && sig.ParamTypes[i] != nil && t != sig.ParamTypes[i] {
			return v.fail(KindTypeMismatch, block, "call to %q: argument %d typed %s does not match parameter typed %s", name, i, t, sig.ParamTypes[i])
		}
	}
	return nil
}

func operandType(op Operand) *types.Type {
	if to, ok := op.(TempOperand); ok {
		return to.Typ
	}
	if c, ok := op.(Constant); ok {
		return c.Type()
	}
	return nil
}

func valueSourceType(vs ValueSource) *types.Type {
	switch x := vs.(type) {
	case TempOperand:
		return x.Typ
	case Place:
		return x.Typ
	case Constant:
		return x.Type()
	}
	return nil
}

// checkReturnShape verifies every ReturnTerminator agrees with the
// function's own ReturnDesc (§4.10, §3.9): RetVoid/RetIndirectSRet return
// None, RetDirect returns a value of the declared type.
func (v *validator) checkReturnShape() error {
	for _, bb := range v.fn.Blocks {
		ret, ok := bb.Terminator.(ReturnTerminator)
		if !ok {
			continue
		}
		switch v.fn.Sig.Return.Kind {
		case RetVoid, RetIndirectSRet:
			if ret.Value != nil {
				return v.fail(KindTypeMismatch, bb.ID, "function returns via %v but Return carries a value", v.fn.Sig.Return.Kind)
			}
		case RetDirect:
			if ret.Value == nil {
				return v.fail(KindTypeMismatch, bb.ID, "function must return a value")
			}
			if t := operandType(ret.Value); t != nil && t != v.fn.Sig.Return.Type {
				return v.fail(KindTypeMismatch, bb.ID, "returns %s, signature declares %s", t, v.fn.Sig.Return.Type)
			}
		}
	}
	return nil
}
