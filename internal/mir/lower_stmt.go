package mir

import (
	"github.com/mirlang/mirc/internal/hir"
)

// lowerStmt lowers one statement inside a block body. A let introduces a
// local and optionally initializes it; an expr-stmt evaluates its
// expression and discards the value.
func (fc *funcCtx) lowerStmt(s hir.Stmt) error {
	switch v := s.(type) {
	case *hir.LetStmt:
		return fc.lowerLet(v)
	case *hir.ExprStmt:
		_, err := fc.lowerNode(v.Expr, nil)
		return err
	default:
		return fc.errorf(KindNotImplemented, "no lowering defined for statement %T", s)
	}
}

func (fc *funcCtx) lowerLet(v *hir.LetStmt) error {
	local := fc.declareLocal(v.Name, v.Type, v.Mutable)
	place := Place{Base: LocalPlace{Local: local}, Typ: v.Type}
	if v.Init == nil {
		return nil
	}
	res, err := fc.lowerNode(v.Init, &place)
	if err != nil {
		return err
	}
	fc.writeToDest(res, place)
	return nil
}

// lowerLogical lowers short-circuit && / || as a three-block CFG rather
// than a BinaryOpRValue (§4.3: "NOT a binary op").
func (fc *funcCtx) lowerLogical(v *hir.LogicalExpr) (LowerResult, error) {
	lhsOp, err := fc.lowerAsOperand(v.Left)
	if err != nil {
		return LowerResult{}, err
	}
	entry := *fc.cur

	rhsBlock := fc.newBlock()
	joinBlock := fc.newBlock()

	shortVal := v.Op == hir.LogicalOr
	thenTarget, elseTarget := rhsBlock, joinBlock
	if v.Op == hir.LogicalOr {
		thenTarget, elseTarget = joinBlock, rhsBlock
	}

	fc.terminate(SwitchIntTerminator{
		Discriminant: lhsOp,
		Cases:        []SwitchCase{{Value: 1, Target: thenTarget}},
		Default:      elseTarget,
	})

	incoming := map[BasicBlockId]Operand{entry: BoolConst{Val: shortVal, Typ: v.Type()}}

	fc.switchTo(rhsBlock)
	rhsOp, err := fc.lowerAsOperand(v.Right)
	if err != nil {
		return LowerResult{}, err
	}
	if fc.reachable() {
		incoming[*fc.cur] = rhsOp
		fc.terminate(GotoTerminator{Target: joinBlock})
	}

	fc.switchTo(joinBlock)
	temp := fc.newTemp(v.Type())
	bb := fc.fn.block(joinBlock)
	bb.Phis = append(bb.Phis, PhiNode{Result: temp, Typ: v.Type(), Inputs: incoming})
	return operandResult(TempOperand{Temp: temp, Typ: v.Type()}), nil
}

// lowerIf implements §4.4's two shapes: with a destination hint, both
// branches write directly into it and no phi is emitted (B2); without one,
// branch values merge through a phi in the join block.
func (fc *funcCtx) lowerIf(v *hir.IfExpr, dest *Place) (LowerResult, error) {
	condOp, err := fc.lowerAsOperand(v.Cond)
	if err != nil {
		return LowerResult{}, err
	}

	thenBlock := fc.newBlock()
	hasElse := v.Else != nil
	var elseBlock BasicBlockId
	if hasElse {
		elseBlock = fc.newBlock()
	}
	joinBlock := fc.newBlock()

	otherwise := joinBlock
	if hasElse {
		otherwise = elseBlock
	}

	fc.terminate(SwitchIntTerminator{
		Discriminant: condOp,
		Cases:        []SwitchCase{{Value: 1, Target: thenBlock}},
		Default:      otherwise,
	})

	type branchOutcome struct {
		reachable bool
		block     BasicBlockId
		operand   Operand
	}

	lowerBranch := func(blockID BasicBlockId, body hir.Expr) (branchOutcome, error) {
		fc.switchTo(blockID)
		res, err := fc.lowerNode(body, dest)
		if err != nil {
			return branchOutcome{}, err
		}
		if dest != nil {
			fc.writeToDest(res, *dest)
		}
		if !fc.reachable() {
			return branchOutcome{}, nil
		}
		final := *fc.cur
		var op Operand
		if dest == nil {
			op = fc.asOperand(res, v.Type())
		}
		fc.terminate(GotoTerminator{Target: joinBlock})
		return branchOutcome{reachable: true, block: final, operand: op}, nil
	}

	thenOut, err := lowerBranch(thenBlock, v.Then)
	if err != nil {
		return LowerResult{}, err
	}

	var elseOut branchOutcome
	if hasElse {
		elseOut, err = lowerBranch(elseBlock, v.Else)
		if err != nil {
			return LowerResult{}, err
		}
	}

	fc.switchTo(joinBlock)

	if dest != nil {
		return writtenResult, nil
	}
	if !hasElse {
		return operandResult(UnitConst{Typ: v.Type()}), nil
	}

	incoming := map[BasicBlockId]Operand{}
	if thenOut.reachable {
		incoming[thenOut.block] = thenOut.operand
	}
	if elseOut.reachable {
		incoming[elseOut.block] = elseOut.operand
	}
	if len(incoming) == 0 {
		fc.terminate(UnreachableTerminator{})
		return operandResult(UnitConst{Typ: v.Type()}), nil
	}

	temp := fc.newTemp(v.Type())
	bb := fc.fn.block(joinBlock)
	bb.Phis = append(bb.Phis, PhiNode{Result: temp, Typ: v.Type(), Inputs: incoming})
	return operandResult(TempOperand{Temp: temp, Typ: v.Type()}), nil
}

func (fc *funcCtx) lowerWhile(v *hir.WhileExpr) (LowerResult, error) {
	condBlock := fc.newBlock()
	bodyBlock := fc.newBlock()
	breakBlock := fc.newBlock()

	fc.terminate(GotoTerminator{Target: condBlock})

	ctx := &loopCtx{key: v, continueBlock: condBlock, breakBlock: breakBlock}
	fc.loopStack = append(fc.loopStack, ctx)

	fc.switchTo(condBlock)
	condOp, err := fc.lowerAsOperand(v.Cond)
	if err != nil {
		return LowerResult{}, err
	}
	fc.terminate(SwitchIntTerminator{
		Discriminant: condOp,
		Cases:        []SwitchCase{{Value: 1, Target: bodyBlock}},
		Default:      breakBlock,
	})

	fc.switchTo(bodyBlock)
	if _, err := fc.lowerNode(v.Body, nil); err != nil {
		return LowerResult{}, err
	}
	if fc.reachable() {
		fc.terminate(GotoTerminator{Target: condBlock})
	}

	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	fc.switchTo(breakBlock)
	return operandResult(UnitConst{Typ: fc.l.in.Unit()}), nil
}

func (fc *funcCtx) lowerLoop(v *hir.LoopExpr) (LowerResult, error) {
	bodyBlock := fc.newBlock()
	breakBlock := fc.newBlock()

	fc.terminate(GotoTerminator{Target: bodyBlock})

	ctx := &loopCtx{key: v, continueBlock: bodyBlock, breakBlock: breakBlock, breakType: v.Type()}
	fc.loopStack = append(fc.loopStack, ctx)

	fc.switchTo(bodyBlock)
	if _, err := fc.lowerNode(v.Body, nil); err != nil {
		return LowerResult{}, err
	}
	if fc.reachable() {
		fc.terminate(GotoTerminator{Target: bodyBlock})
	}

	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	fc.switchTo(breakBlock)

	if len(ctx.breakIncoming) == 0 {
		if !fc.l.in.IsUnit(v.Type()) {
			// no break ever supplied a value though the loop's type demands
			// one: the break block is unreachable (B1's sibling case).
			fc.terminate(UnreachableTerminator{})
		}
		return operandResult(UnitConst{Typ: v.Type()}), nil
	}

	temp := fc.newTemp(v.Type())
	bb := fc.fn.block(breakBlock)
	bb.Phis = append(bb.Phis, PhiNode{Result: temp, Typ: v.Type(), Inputs: ctx.breakIncoming})
	return operandResult(TempOperand{Temp: temp, Typ: v.Type()}), nil
}

func (fc *funcCtx) findLoop(key hir.LoopLike) *loopCtx {
	for i := len(fc.loopStack) - 1; i >= 0; i-- {
		if fc.loopStack[i].key == key {
			return fc.loopStack[i]
		}
	}
	return nil
}

func (fc *funcCtx) lowerBreak(v *hir.BreakExpr) (LowerResult, error) {
	ctx := fc.findLoop(v.Loop)
	if ctx == nil {
		panic("mir: break outside any tracked loop (the checker should have rejected this)")
	}
	if v.Value != nil && ctx.breakType != nil {
		op, err := fc.lowerAsOperand(v.Value)
		if err != nil {
			return LowerResult{}, err
		}
		pred := *fc.cur
		if ctx.breakIncoming == nil {
			ctx.breakIncoming = map[BasicBlockId]Operand{}
		}
		ctx.breakIncoming[pred] = op
	}
	fc.terminate(GotoTerminator{Target: ctx.breakBlock})
	return operandResult(UnitConst{Typ: fc.l.in.Unit()}), nil
}

func (fc *funcCtx) lowerContinue(v *hir.ContinueExpr) (LowerResult, error) {
	ctx := fc.findLoop(v.Loop)
	if ctx == nil {
		panic("mir: continue outside any tracked loop (the checker should have rejected this)")
	}
	fc.terminate(GotoTerminator{Target: ctx.continueBlock})
	return operandResult(UnitConst{Typ: fc.l.in.Unit()}), nil
}

// lowerReturn implements the four return shapes of §4.4, including
// treating `return` in a RetNever function as an Unreachable terminator
// after evaluating the expression for side effects (§9 open question).
func (fc *funcCtx) lowerReturn(v *hir.ReturnExpr) (LowerResult, error) {
	switch fc.fn.Sig.Return.Kind {
	case RetNever:
		if v.Value != nil {
			if _, err := fc.lowerNode(v.Value, nil); err != nil {
				return LowerResult{}, err
			}
		}
		fc.terminate(UnreachableTerminator{})

	case RetVoid:
		if v.Value != nil {
			return LowerResult{}, fc.errorf(KindInvalidReturn, "function returns unit but `return` carries a value")
		}
		fc.terminate(ReturnTerminator{Value: nil})

	case RetDirect:
		if v.Value == nil {
			return LowerResult{}, fc.errorf(KindMissingValue, "function must return a value")
		}
		op, err := fc.lowerAsOperand(v.Value)
		if err != nil {
			return LowerResult{}, err
		}
		fc.terminate(ReturnTerminator{Value: op})

	case RetIndirectSRet:
		if v.Value == nil {
			return LowerResult{}, fc.errorf(KindMissingValue, "function must return a value")
		}
		dest := fc.returnPlace()
		res, err := fc.lowerNode(v.Value, &dest)
		if err != nil {
			return LowerResult{}, err
		}
		fc.writeToDest(res, dest)
		fc.terminate(ReturnTerminator{Value: nil})
	}

	return operandResult(UnitConst{Typ: fc.l.in.Never()}), nil
}
