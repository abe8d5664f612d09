package mir

import (
	"fmt"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/types"
)

// Lowerer drives the whole HIR→MIR pipeline for one program: function
// collection (C4), signature building (C3), then body lowering (C5-C9) for
// every internal callable. One Lowerer lowers exactly one hir.Program.
type Lowerer struct {
	in *types.Interner

	funcIDs   map[*hir.FunctionItem]FunctionId
	methodIDs map[*hir.MethodItem]FunctionId

	module *MirModule

	// callables indexed by FunctionId, in collection order, recording
	// whether body lowering is still owed (internal) or not (external).
	pending []pendingCallable
}

type pendingCallable struct {
	id       FunctionId
	name     string
	sig      *Signature
	fn       *hir.FunctionItem
	method   *hir.MethodItem
	external bool
}

// NewLowerer builds a Lowerer over the given type interner, which must be
// the same interner used to produce the program's HIR (§5, "the type
// interner is read-only during lowering").
func NewLowerer(in *types.Interner) *Lowerer {
	return &Lowerer{
		in:        in,
		funcIDs:   make(map[*hir.FunctionItem]FunctionId),
		methodIDs: make(map[*hir.MethodItem]FunctionId),
	}
}

// Lower runs the whole pipeline: collect + build signatures for every
// callable, then lower every internal function body. The first error aborts
// the whole session; no partial MirModule is ever returned (§5, §7).
func (l *Lowerer) Lower(prog *hir.Program) (*MirModule, error) {
	if err := l.collect(prog); err != nil {
		return nil, wrapStage("collecting callables", err)
	}

	l.module = &MirModule{}
	mangledSeen := make(map[string]bool)

	for _, pc := range l.pending {
		if mangledSeen[pc.name] {
			return nil, newErrorf(KindDuplicateCallable, pc.name, "callable %q already registered", pc.name)
		}
		mangledSeen[pc.name] = true

		if pc.external {
			l.module.Externs = append(l.module.Externs, &ExternalFunction{ID: pc.id, Name: pc.name, Sig: pc.sig})
			continue
		}
		l.module.Functions = append(l.module.Functions, &MirFunction{ID: pc.id, Name: pc.name, Sig: pc.sig})
	}

	for i, pc := range l.pending {
		if pc.external {
			continue
		}
		fn := l.module.Functions[indexByID(l.module.Functions, pc.id)]
		if err := l.lowerBody(fn, pc); err != nil {
			return nil, wrapStage(fmt.Sprintf("lowering function %s", pc.name), err)
		}
		_ = i
	}

	return l.module, nil
}

func indexByID(fns []*MirFunction, id FunctionId) int {
	for i, fn := range fns {
		if fn.ID == id {
			return i
		}
	}
	return -1
}

// collect walks the program in source order, assigning stable FunctionIds
// and building every Signature up front (§4.2: "Signatures are computed for
// EVERY callable BEFORE any function body is lowered"). The predefined
// builtin scope (print/println/getInt/…) is collected first, so its
// ExternalFunction descriptors exist before a single user item is even
// looked at, let alone lowered.
func (l *Lowerer) collect(prog *hir.Program) error {
	var nextID FunctionId

	for _, b := range prog.Builtins {
		sig := BuildSignature(l.in, b.Params, b.ReturnType)
		id := nextID
		nextID++
		l.funcIDs[b] = id
		l.pending = append(l.pending, pendingCallable{
			id: id, name: b.Name, sig: sig, fn: b, external: true,
		})
	}

	for _, item := range prog.Items {
		switch v := item.(type) {
		case *hir.FunctionItem:
			sig := BuildSignature(l.in, v.Params, v.ReturnType)
			id := nextID
			nextID++
			l.funcIDs[v] = id
			l.pending = append(l.pending, pendingCallable{
				id: id, name: v.Name, sig: sig, fn: v, external: v.External,
			})

		case *hir.ImplItem:
			for _, m := range v.Methods {
				sig := ReceiverSignature(l.in, m.Receiver, m.Params, m.ReturnType)
				id := nextID
				nextID++
				l.methodIDs[m] = id
				name := mangleMethod(v.Type, m.Name)
				l.pending = append(l.pending, pendingCallable{
					id: id, name: name, sig: sig, method: m, external: m.External,
				})
			}

		case *hir.StructItem, *hir.EnumItem, *hir.ConstItem, *hir.TraitItem:
			// Contribute no callables of their own (§4.2: traits declare
			// signatures only; impls supply the bodies).
		}
	}
	return nil
}

// mangleMethod names a method by its owner type, the way the teacher
// name-mangles impl methods by scope prefix (§4.2).
func mangleMethod(owner *types.Type, method string) string {
	return fmt.Sprintf("%s::%s", owner, method)
}

// funcIDOf resolves a CallExpr/MethodCallExpr target to the FunctionId
// collected for it.
func (l *Lowerer) funcIDOf(callee hir.Callee) (FunctionId, bool) {
	if callee.Function != nil {
		id, ok := l.funcIDs[callee.Function]
		return id, ok
	}
	if callee.Method != nil {
		id, ok := l.methodIDs[callee.Method]
		return id, ok
	}
	return 0, false
}

// sigOf fetches the Signature already built for id.
func (l *Lowerer) sigOf(id FunctionId) *Signature {
	for _, pc := range l.pending {
		if pc.id == id {
			return pc.sig
		}
	}
	return nil
}
