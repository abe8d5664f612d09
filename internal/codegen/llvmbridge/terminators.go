package llvmbridge

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/mir"
)

// lowerTerminator closes a block with the LLVM terminator instruction that
// matches its mir.Terminator (§3.9).
func (fg *funcGen) lowerTerminator(block *irBlock, term mir.Terminator) error {
	switch t := term.(type) {
	case mir.GotoTerminator:
		block.NewBr(fg.blocks[t.Target])
		return nil

	case mir.SwitchIntTerminator:
		return fg.lowerSwitch(block, t)

	case mir.ReturnTerminator:
		if t.Value == nil {
			block.NewRet(nil)
			return nil
		}
		v, err := fg.resolveOperand(t.Value)
		if err != nil {
			return err
		}
		block.NewRet(v)
		return nil

	case mir.UnreachableTerminator:
		block.NewUnreachable()
		return nil

	default:
		return errors.Errorf("llvmbridge: unhandled terminator kind %T", term)
	}
}

// lowerSwitch translates a SwitchIntTerminator to an LLVM switch over the
// discriminant's own integer width (§4.4: short-circuit/if dispatch uses a
// 1-bit discriminant, enum matches use the enum's declared underlying
// width).
func (fg *funcGen) lowerSwitch(block *irBlock, t mir.SwitchIntTerminator) error {
	discType := operandMirType(t.Discriminant)
	if discType == nil {
		return errors.Errorf("llvmbridge: switch discriminant has no statically known type")
	}
	it, ok := fg.g.llType(discType).(*types.IntType)
	if !ok {
		return errors.Errorf("llvmbridge: switch discriminant type %s is not an integer type", discType)
	}

	cond, err := fg.resolveOperand(t.Discriminant)
	if err != nil {
		return err
	}

	cases := make([]*ir.Case, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = ir.NewCase(constant.NewInt(it, int64(c.Value)), fg.blocks[c.Target])
	}
	block.NewSwitch(cond, fg.blocks[t.Default], cases...)
	return nil
}
