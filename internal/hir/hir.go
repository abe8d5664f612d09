// Package hir defines the fully type-checked HIR tree this subsystem
// consumes (§6.1). It is intentionally thin: name resolution, type
// inference, and borrow/move checking are external collaborators per §1,
// so every node here already carries its resolved types.Type and, for
// expressions, whether it denotes a place (§6.1, "is_place flag").
//
// The node shapes follow the teacher's internal/ast package (marker
// interfaces plus one concrete struct per node kind, dispatched with a type
// switch rather than virtual methods — see spec.md §9 on replacing
// class-hierarchy visitors with tagged variants) but drop everything outside
// this language's subset: no generics, closures, channels, tuples, maps, or
// pattern matching.
package hir

import "github.com/mirlang/mirc/internal/types"

// Item is a top-level declaration.
type Item interface {
	isItem()
}

// Stmt is a statement inside a block.
type Stmt interface {
	isStmt()
}

// Expr is an expression. Every Expr carries its resolved type and whether
// it denotes an addressable place.
type Expr interface {
	isExpr()
	Type() *types.Type
	IsPlace() bool
}

type exprBase struct {
	typ   *types.Type
	place bool
}

func (b exprBase) isExpr()          {}
func (b exprBase) Type() *types.Type { return b.typ }
func (b exprBase) IsPlace() bool     { return b.place }

// NewExprBase builds the embedded type/place-ness part of a node being
// constructed.
func NewExprBase(t *types.Type, place bool) exprBase {
	return exprBase{typ: t, place: place}
}

// SetType stamps a node's resolved type and place-ness after it has been
// built; the parser calls it as it resolves names and annotations, and
// internal/check only reports nodes whose type is still nil.
func (b *exprBase) SetType(t *types.Type, place bool) {
	b.typ = t
	b.place = place
}

// Program is a whole compilation unit: every item collected from source,
// plus the predefined builtin scope every program implicitly has (§4.2).
// Builtins is populated once by whatever produces this Program (the parser,
// via NewBuiltins) and is disjoint from Items: a builtin is never written
// out by the source being compiled.
type Program struct {
	Items    []Item
	Builtins []*FunctionItem
}

// Param is one function/method parameter.
type Param struct {
	Name string
	Type *types.Type
}

// FunctionItem is a free function. Body is nil for external (body-less)
// functions: either an explicit `fn foo(..);` declaration, or one of the
// predefined builtins NewBuiltins constructs (Program.Builtins).
type FunctionItem struct {
	Name       string
	Params     []Param
	ReturnType *types.Type
	Body       *BlockExpr
	External   bool
}

func (*FunctionItem) isItem() {}

// MethodItem is a method inside an ImplItem. Receiver, if non-nil, is the
// implicit `self` parameter (index 0 per §4.1).
type MethodItem struct {
	Name       string
	OwnerType  *types.Type
	Receiver   *Param // nil for associated functions with no self
	Params     []Param
	ReturnType *types.Type
	Body       *BlockExpr
	External   bool
}

func (*MethodItem) isItem() {}

// ImplItem groups the methods implemented for a type, optionally for a
// named trait.
type ImplItem struct {
	TraitName string // "" if this is an inherent impl
	Type      *types.Type
	Methods   []*MethodItem
}

func (*ImplItem) isItem() {}

// StructItem declares a struct type. The canonical shape lives on Type;
// this node exists so function collection (C4) can see struct declarations
// in source order.
type StructItem struct {
	Name string
	Type *types.Type
}

func (*StructItem) isItem() {}

// EnumItem declares an enum type.
type EnumItem struct {
	Name string
	Type *types.Type
}

func (*EnumItem) isItem() {}

// ConstItem is a named constant (§4.9).
type ConstItem struct {
	Name string
	Type *types.Type
	Init Expr
}

func (*ConstItem) isItem() {}

// TraitMethodSig is one method signature required by a trait.
type TraitMethodSig struct {
	Name       string
	Params     []Param
	ReturnType *types.Type
}

// TraitItem declares a trait's method signatures. It contributes no
// callables of its own; ImplItem provides the bodies.
type TraitItem struct {
	Name    string
	Methods []TraitMethodSig
}

func (*TraitItem) isItem() {}

// LetStmt binds a local, with an optional initializer.
type LetStmt struct {
	Name    string
	Type    *types.Type
	Mutable bool
	Init    Expr // nil if uninitialized
}

func (*LetStmt) isStmt() {}

// ExprStmt evaluates an expression and discards its value.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) isStmt() {}

// --- Literals ---

type IntLiteral struct {
	exprBase
	Magnitude uint64
	Negative  bool
}

func (*IntLiteral) isExpr() {}

type BoolLiteral struct {
	exprBase
	Value bool
}

type CharLiteral struct {
	exprBase
	Value rune
}

type StringLiteral struct {
	exprBase
	Value string
}

type UnitLiteral struct {
	exprBase
}

// EnumVariantExpr names a variant of an enum type as a constant value.
type EnumVariantExpr struct {
	exprBase
	Variant string
}

// ConstUseExpr refers to a previously declared named constant.
type ConstUseExpr struct {
	exprBase
	Const *ConstItem
}

// --- Places ---

// Variable refers to a local or parameter by name.
type Variable struct {
	exprBase
	Name string
}

// FieldAccess projects a named field out of a struct-typed place or value.
type FieldAccess struct {
	exprBase
	Base       Expr
	FieldName  string
	FieldIndex int
}

// IndexExpr projects an element out of an array-typed place or value.
type IndexExpr struct {
	exprBase
	Base  Expr
	Index Expr
}

// DerefExpr dereferences a reference-typed operand: `*p`.
type DerefExpr struct {
	exprBase
	Operand Expr
}

// --- Operators ---

type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
)

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinEq
	BinNotEq
	BinLt
	BinLe
	BinGt
	BinGe
)

type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// RefExpr is address-of: `&x` or `&mut x`.
type RefExpr struct {
	exprBase
	Operand Expr
	Mutable bool
}

type UnaryExpr struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

type BinaryExpr struct {
	exprBase
	Op          BinaryOp
	Left, Right Expr
}

// LogicalExpr is short-circuit && / ||, deliberately not a BinaryExpr
// (§4.3: "NOT a binary op").
type LogicalExpr struct {
	exprBase
	Op          LogicalOp
	Left, Right Expr
}

type CastExpr struct {
	exprBase
	Operand Expr
	Target  *types.Type
}

// AssignExpr writes Value into the place denoted by Target. Target.IsPlace()
// must be true, or Target is the discard place `_`.
type AssignExpr struct {
	exprBase
	Target Expr
	Value  Expr
	Discard bool
}

// --- Calls ---

// Callee is resolved by the parser to exactly one of a free function or a
// method.
type Callee struct {
	Function *FunctionItem
	Method   *MethodItem
}

type CallExpr struct {
	exprBase
	Target Callee
	Args   []Expr
}

type MethodCallExpr struct {
	exprBase
	Receiver Expr
	Method   *MethodItem
	Args     []Expr // does not include the receiver
}

// --- Aggregate literals ---

type FieldInit struct {
	Name  string
	Value Expr
}

type StructLiteralExpr struct {
	exprBase
	Fields []FieldInit
}

type ArrayLiteralExpr struct {
	exprBase
	Elements []Expr
}

type ArrayRepeatExpr struct {
	exprBase
	Value Expr
	Count uint64
}

// --- Control flow ---

type BlockExpr struct {
	exprBase
	Stmts []Stmt
	Tail  Expr // nil if the block has no tail expression
}

type IfExpr struct {
	exprBase
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr, *IfExpr (else-if), or nil
}

// LoopLike is implemented by the two loop-producing node kinds so that
// Break/Continue can carry a back-pointer to the loop they target (§9:
// "never embed parent pointers in children" — the pointer runs the other
// way, from the jump to the loop header, which is acyclic).
type LoopLike interface {
	isLoop()
}

type LoopExpr struct {
	exprBase
	Body *BlockExpr
}

func (*LoopExpr) isLoop() {}

type WhileExpr struct {
	exprBase
	Cond Expr
	Body *BlockExpr
}

func (*WhileExpr) isLoop() {}

type BreakExpr struct {
	exprBase
	Loop  LoopLike
	Value Expr // nil unless the target loop has a break type
}

type ContinueExpr struct {
	exprBase
	Loop LoopLike
}

type ReturnExpr struct {
	exprBase
	Value Expr // nil for a bare `return;`
}
