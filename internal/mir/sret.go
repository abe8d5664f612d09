package mir

import "github.com/mirlang/mirc/internal/hir"

// paramListOf returns a callable's semantic parameter list, receiver first
// (§4.1: "self occupies semantic parameter index 0").
func paramListOf(pc pendingCallable) []hir.Param {
	if pc.method != nil {
		if pc.method.Receiver != nil {
			all := make([]hir.Param, 0, len(pc.method.Params)+1)
			all = append(all, *pc.method.Receiver)
			all = append(all, pc.method.Params...)
			return all
		}
		return pc.method.Params
	}
	return pc.fn.Params
}

func bodyOf(pc pendingCallable) *hir.BlockExpr {
	if pc.method != nil {
		return pc.method.Body
	}
	return pc.fn.Body
}

// lowerBody is the entry point for one internal callable's body (§4.2-§4.7):
// bind parameters as locals, establish the SRET return destination if the
// signature calls for one, lower the body with that destination as the
// dest_hint, then apply the block-tail return rules for whatever is still
// reachable afterward.
//
// NRVO (§4.7 point 3, reusing a user local as the return slot) is never
// applied: the candidate-selection heuristic is conservative by the spec's
// own instruction ("disable NRVO when ambiguous, do not guess"), and
// proving a local is returned from every path without a borrow/move
// checker on hand is exactly that kind of guess, so every SRET function
// always gets the synthetic return slot.
func (l *Lowerer) lowerBody(fn *MirFunction, pc pendingCallable) error {
	body := bodyOf(pc)
	if body == nil {
		return newErrorf(KindNotImplemented, fn.Name, "no body to lower for an internal callable")
	}

	entry := l.module.newBlock(fn)
	fn.Entry = entry.ID

	fc := &funcCtx{l: l, fn: fn, name: fn.Name}
	fc.pushScope()
	fc.switchTo(entry.ID)

	params := paramListOf(pc)
	for i, p := range params {
		fc.declareLocal(p.Name, fn.Sig.ParamTypes[i], true)
	}

	var dest *Place
	if fn.Sig.Return.Kind == RetIndirectSRet {
		place := fc.makeReturnSlot(fn.Sig)
		dest = &place
		fc.retPlace = &place
	}

	res, err := fc.lowerNode(body, dest)
	if err != nil {
		return err
	}

	if fc.reachable() {
		switch fn.Sig.Return.Kind {
		case RetVoid:
			fc.terminate(ReturnTerminator{Value: nil})
		case RetNever:
			fc.terminate(UnreachableTerminator{})
		case RetDirect:
			op := fc.asOperand(res, fn.Sig.Return.Type)
			fc.terminate(ReturnTerminator{Value: op})
		case RetIndirectSRet:
			fc.writeToDest(res, *dest)
			fc.terminate(ReturnTerminator{Value: nil})
		}
	}

	fc.popScope()
	return nil
}

// makeReturnSlot creates the synthetic "return slot" local L_ret aliased to
// the signature's SRET ABI parameter (§4.7 point 2). It allocates no stack
// storage of its own; a backend resolves its place to the SRET pointer
// argument.
func (fc *funcCtx) makeReturnSlot(sig *Signature) Place {
	local := fc.declareLocal("return_slot", sig.Return.Type, true)
	fc.fn.aliasLocal(local, sig.Return.SretIndex)
	return Place{Base: LocalPlace{Local: local}, Typ: sig.Return.Type}
}
