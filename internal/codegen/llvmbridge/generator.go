package llvmbridge

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/mir"
	mirtypes "github.com/mirlang/mirc/internal/types"
)

// Generate translates a whole lowered module to LLVM IR. in must be the
// same interner the module was lowered with, the same requirement
// mir.NewLowerer places on its own caller.
func Generate(in *mirtypes.Interner, mod *mir.MirModule) (*ir.Module, error) {
	g := &Generator{
		in:          in,
		m:           ir.NewModule(),
		structTypes: make(map[*mirtypes.Type]*types.StructType),
		funcs:       make(map[mir.FunctionId]*ir.Func),
	}

	for _, ext := range mod.Externs {
		g.declareFunc(ext.ID, ext.Name, ext.Sig)
	}
	for _, fn := range mod.Functions {
		g.declareFunc(fn.ID, fn.Name, fn.Sig)
	}

	for _, fn := range mod.Functions {
		if err := g.buildFunc(fn); err != nil {
			return nil, errors.WithMessagef(err, "generating function %s", fn.Name)
		}
	}

	return g.m, nil
}

// declareFunc adds fn's signature to the module without a body: one
// parameter per ABI entry, in AbiParams order (so the SRET pointer, when
// present, is parameter 0), carrying `sret`/`byval` attributes where the
// signature calls for them (§4.1, §4.7).
func (g *Generator) declareFunc(id mir.FunctionId, name string, sig *mir.Signature) *ir.Func {
	retType := types.Type(types.Void)
	if sig.Return.Kind == mir.RetDirect {
		retType = g.llType(sig.Return.Type)
	}

	params := make([]*ir.Param, len(sig.AbiParams))
	for i, p := range sig.AbiParams {
		elemType := g.llType(p.Type)
		switch p.Kind {
		case mir.AbiSRet:
			param := ir.NewParam("ret", types.NewPointer(elemType))
			param.Attrs = append(param.Attrs, enum.ParamAttrSRet)
			params[i] = param
		case mir.AbiByValCallerCopy:
			param := ir.NewParam("", types.NewPointer(elemType))
			param.Attrs = append(param.Attrs, enum.ParamAttrByVal)
			params[i] = param
		default:
			params[i] = ir.NewParam("", elemType)
		}
	}

	fn := g.m.NewFunc(name, retType, params...)
	g.funcs[id] = fn
	return fn
}
