package mir

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// ReturnKind classifies how a callable returns its value (§4.1).
type ReturnKind int

const (
	RetNever ReturnKind = iota
	RetVoid
	RetDirect
	RetIndirectSRet
)

// ReturnDesc is the resolved return-value strategy for one signature.
type ReturnDesc struct {
	Kind      ReturnKind
	Type      *types.Type // nil for RetNever/RetVoid
	SretIndex AbiParamIndex
}

// AbiParamKind classifies how one ABI-level parameter is passed.
type AbiParamKind int

const (
	AbiDirect AbiParamKind = iota
	AbiByValCallerCopy
	AbiSRet
)

// AbiParam is one entry of the final, ABI-ordered parameter list: the
// hidden SRET pointer (if any) first, then one entry per semantic
// parameter in declaration order.
type AbiParam struct {
	Kind AbiParamKind
	Type *types.Type
	// SemanticIndex is the ParamIndex this entry lowers from, or -1 for
	// the synthetic SRET pointer.
	SemanticIndex ParamIndex
}

// Signature is the fully computed ABI shape of a callable (§4.1): the
// semantic parameter list (what the source declares) plus the derived
// return strategy and ABI parameter list (what a call site actually
// passes).
type Signature struct {
	ParamNames []string
	ParamTypes []*types.Type
	Return     ReturnDesc
	AbiParams  []AbiParam
}

// BuildSignature computes a Signature from a semantic parameter list and
// return type, following the five-step algorithm in §4.1:
//  1. canonicalize the return type
//  2. classify it into RetNever/RetVoid/RetDirect/RetIndirectSRet
//  3. classify each semantic parameter into AbiDirect/AbiByValCallerCopy
//  4. assemble the final AbiParams order: SRET pointer first if present,
//     then the per-parameter entries in declaration order
//  5. back-patch the Return's SretIndex now that the final order is known
func BuildSignature(in *types.Interner, params []hir.Param, retType *types.Type) *Signature {
	retType = in.Canonicalize(retType)

	sig := &Signature{}
	for _, p := range params {
		sig.ParamNames = append(sig.ParamNames, p.Name)
		sig.ParamTypes = append(sig.ParamTypes, in.Canonicalize(p.Type))
	}

	switch {
	case in.IsNever(retType):
		sig.Return = ReturnDesc{Kind: RetNever}
	case in.IsUnit(retType):
		sig.Return = ReturnDesc{Kind: RetVoid}
	case in.IsAggregate(retType):
		sig.Return = ReturnDesc{Kind: RetIndirectSRet, Type: retType}
	default:
		sig.Return = ReturnDesc{Kind: RetDirect, Type: retType}
	}

	if sig.Return.Kind == RetIndirectSRet {
		sig.AbiParams = append(sig.AbiParams, AbiParam{
			Kind: AbiSRet, Type: retType, SemanticIndex: -1,
		})
		sig.Return.SretIndex = 0
	}

	for i, t := range sig.ParamTypes {
		kind := AbiDirect
		if in.IsAggregate(t) {
			kind = AbiByValCallerCopy
		}
		sig.AbiParams = append(sig.AbiParams, AbiParam{
			Kind: kind, Type: t, SemanticIndex: ParamIndex(i),
		})
	}

	return sig
}

// ReceiverSignature builds the Signature for a method, prepending the
// receiver as semantic parameter 0 (§4.1: "self occupies semantic
// parameter index 0").
func ReceiverSignature(in *types.Interner, receiver *hir.Param, params []hir.Param, retType *types.Type) *Signature {
	if receiver == nil {
		return BuildSignature(in, params, retType)
	}
	all := make([]hir.Param, 0, len(params)+1)
	all = append(all, *receiver)
	all = append(all, params...)
	return BuildSignature(in, all, retType)
}
