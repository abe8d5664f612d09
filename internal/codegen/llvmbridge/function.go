package llvmbridge

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/mir"
	mirtypes "github.com/mirlang/mirc/internal/types"
)

// pendingPhi pairs a mir.PhiNode with the *ir.InstPhi instantiated for it,
// so its incoming edges can be wired once every block in the function has
// been translated and every TempId has a value (§3.10: a phi may read a
// value defined in a block that comes later in source/creation order, a
// loop's own back edge being the common case).
type pendingPhi struct {
	node  mir.PhiNode
	block mir.BasicBlockId
	inst  *ir.InstPhi
}

// funcGen is the per-function translation session, mirroring the scoping
// the mir package's own funcCtx keeps (§4.3) but over *ir.Value instead of
// Operand/Place.
type funcGen struct {
	g    *Generator
	fn   *mir.MirFunction
	irFn *ir.Func

	blocks     map[mir.BasicBlockId]*ir.Block
	temps      map[mir.TempId]value.Value
	locals     map[mir.LocalId]value.Value // always a pointer value
	localTypes map[mir.LocalId]*mirtypes.Type

	phis []pendingPhi
}

// localType returns the semantic type declared for a local, used by
// resolvePlaceBase to know what a LocalPlace's slot points to.
func (fg *funcGen) localType(id mir.LocalId) *mirtypes.Type {
	return fg.localTypes[id]
}

// buildFunc translates one internal function's body: every basic block is
// created up front so forward branches and phi predecessors can reference
// them, a synthetic prologue block binds parameters to stack slots (or, for
// SRET/byval parameters, directly to the incoming pointer), every block's
// statements and terminator are then lowered in a single pass, and finally
// every phi's incoming edges are wired once all temps exist.
func (g *Generator) buildFunc(fn *mir.MirFunction) error {
	irFn := g.funcs[fn.ID]
	fg := &funcGen{
		g:          g,
		fn:         fn,
		irFn:       irFn,
		blocks:     make(map[mir.BasicBlockId]*ir.Block),
		temps:      make(map[mir.TempId]value.Value),
		locals:     make(map[mir.LocalId]value.Value),
		localTypes: make(map[mir.LocalId]*mirtypes.Type),
	}
	for _, local := range fn.Locals {
		fg.localTypes[local.ID] = local.Type
	}

	prologue := irFn.NewBlock("prologue")
	for _, bb := range fn.Blocks {
		fg.blocks[bb.ID] = irFn.NewBlock(fmt.Sprintf("bb%d", bb.ID))
	}
	for _, bb := range fn.Blocks {
		for _, phi := range bb.Phis {
			inst := fg.blocks[bb.ID].NewPhi()
			inst.Typ = g.llType(phi.Typ)
			fg.temps[phi.Result] = inst
			fg.phis = append(fg.phis, pendingPhi{node: phi, block: bb.ID, inst: inst})
		}
	}

	if err := fg.bindLocals(prologue); err != nil {
		return err
	}
	prologue.NewBr(fg.blocks[fn.Entry])

	for _, bb := range fn.Blocks {
		block := fg.blocks[bb.ID]
		for _, stmt := range bb.Statements {
			if err := fg.lowerStatement(block, stmt); err != nil {
				return err
			}
		}
		if err := fg.lowerTerminator(block, bb.Terminator); err != nil {
			return err
		}
	}

	for _, p := range fg.phis {
		for pred, op := range p.node.Inputs {
			val, err := fg.resolveOperand(op)
			if err != nil {
				return err
			}
			p.inst.Incs = append(p.inst.Incs, &ir.Incoming{X: val, Pred: fg.blocks[pred]})
		}
	}
	return nil
}

// abiParamIndexForSemantic finds the ABI parameter index implementing
// semantic parameter i, mirroring mir.abiParamForSemantic (§4.5) without
// exporting it: llvmbridge has no reason to reuse an unexported helper
// across a package boundary, and the lookup is two lines.
func abiParamIndexForSemantic(sig *mir.Signature, i int) int {
	for idx, p := range sig.AbiParams {
		if p.Kind != mir.AbiSRet && int(p.SemanticIndex) == i {
			return idx
		}
	}
	return -1
}

// bindLocals gives every LocalId a pointer value in the prologue block: an
// aliased local (the SRET return slot) resolves to the SRET parameter
// pointer directly with no storage of its own (§4.7); a by-value parameter
// resolves to its incoming pointer, since the caller already owns a private
// copy (§4.5); every other local, including direct-ABI parameters, gets its
// own alloca.
func (fg *funcGen) bindLocals(prologue *ir.Block) error {
	sig := fg.fn.Sig
	numParams := len(sig.ParamTypes)

	for i, local := range fg.fn.Locals {
		if local.IsAlias {
			fg.locals[local.ID] = fg.irFn.Params[local.AliasTarget]
			continue
		}

		if i < numParams {
			abiIdx := abiParamIndexForSemantic(sig, i)
			if abiIdx < 0 {
				return errors.Errorf("llvmbridge: no ABI parameter for semantic index %d", i)
			}
			if sig.AbiParams[abiIdx].Kind == mir.AbiByValCallerCopy {
				fg.locals[local.ID] = fg.irFn.Params[abiIdx]
				continue
			}
			slot := prologue.NewAlloca(fg.g.llType(local.Type))
			prologue.NewStore(fg.irFn.Params[abiIdx], slot)
			fg.locals[local.ID] = slot
			continue
		}

		fg.locals[local.ID] = prologue.NewAlloca(fg.g.llType(local.Type))
	}
	return nil
}
