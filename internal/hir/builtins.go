package hir

import "github.com/mirlang/mirc/internal/types"

// NewBuiltins constructs the predefined scope's function descriptors
// (§4.2): print/println/getInt exist as external callables in every
// program, independent of whether the program's own source declares them.
// Grounded on the teacher's internal/types/checker.go, which pre-seeds its
// global scope with a println symbol in NewChecker before checking any
// user code; here the equivalent seeding produces real *FunctionItem nodes
// instead of scope symbols, so the rest of the pipeline treats a builtin
// exactly like any other external declaration.
func NewBuiltins(in *types.Interner) []*FunctionItem {
	i32 := in.Primitive(types.KindI32)
	unit := in.Unit()
	return []*FunctionItem{
		{Name: "print", Params: []Param{{Name: "value", Type: i32}}, ReturnType: unit, External: true},
		{Name: "println", Params: []Param{{Name: "value", Type: i32}}, ReturnType: unit, External: true},
		{Name: "getInt", ReturnType: i32, External: true},
	}
}
