// Package types is the type interner (C1): it canonicalizes semantic types
// so that equality is pointer identity, the way every consumer downstream
// (the place engine, the signature builder, the expression lowerer) expects
// to compare two TypeIDs with ==.
//
// The teacher's own internal/types package never interned anything — two
// structurally identical *types.Primitive values were simply two different
// pointers compared field-by-field. That shape doesn't survive contact with
// this spec, which requires TypeId equality to mean identity (§3.2), so this
// package is a new design: one typeEntry per distinct semantic type, built
// once by DefineStruct/DefineEnum/Array/MakeRef and cached so repeated requests
// for the same shape return the same pointer.
package types

import "fmt"

// Kind distinguishes the cases a TypeID can be.
type Kind int

const (
	KindInvalid Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindISize
	KindU8
	KindU16
	KindU32
	KindU64
	KindUSize
	KindBool
	KindChar
	KindUnit
	KindNever
	KindStruct
	KindEnum
	KindArray
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindISize:
		return "isize"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindUSize:
		return "usize"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}

var primitiveNames = map[string]Kind{
	"i8": KindI8, "i16": KindI16, "i32": KindI32, "i64": KindI64, "isize": KindISize,
	"u8": KindU8, "u16": KindU16, "u32": KindU32, "u64": KindU64, "usize": KindUSize,
	"bool": KindBool, "char": KindChar,
}

// LookupPrimitiveName resolves a bare identifier like "i32" or "bool" to its
// primitive Kind.
func LookupPrimitiveName(name string) (Kind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

// FieldDef is one field of a struct type, in declaration order.
type FieldDef struct {
	Name string
	Type *Type
}

// VariantDef is one enum variant and the discriminant it lowers to.
type VariantDef struct {
	Name         string
	Discriminant uint64
}

// Type is an interned, canonical semantic type. Two TypeIDs denote the same
// type iff they are the same pointer; the interner guarantees this for every
// type it hands out.
type Type struct {
	kind Kind

	// Struct
	structName   string
	structFields []FieldDef

	// Enum
	enumName    string
	variants    []VariantDef
	enumUnder   *Type // underlying integer primitive

	// Array
	elem *Type
	size uint64

	// Ref
	mutable bool
}

// Kind reports which case this type is.
func (t *Type) Kind() Kind {
	if t == nil {
		return KindInvalid
	}
	return t.kind
}

func (t *Type) String() string {
	switch t.kind {
	case KindStruct:
		return t.structName
	case KindEnum:
		return t.enumName
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.elem, t.size)
	case KindRef:
		if t.mutable {
			return "&mut " + t.elem.String()
		}
		return "&" + t.elem.String()
	default:
		return t.kind.String()
	}
}

type arrayKey struct {
	elem *Type
	size uint64
}

type refKey struct {
	elem    *Type
	mutable bool
}

// Interner owns the canonical table of every type reachable from the
// program. It is read-only to every consumer but the frontend that builds
// it (§5, "Shared resources"): a lowering session never mutates it.
type Interner struct {
	primitives map[Kind]*Type
	structs    map[string]*Type
	enums      map[string]*Type
	arrays     map[arrayKey]*Type
	refs       map[refKey]*Type
}

// NewInterner creates an interner pre-populated with every primitive kind,
// unit and never.
func NewInterner() *Interner {
	in := &Interner{
		primitives: make(map[Kind]*Type),
		structs:    make(map[string]*Type),
		enums:      make(map[string]*Type),
		arrays:     make(map[arrayKey]*Type),
		refs:       make(map[refKey]*Type),
	}
	for _, k := range []Kind{
		KindI8, KindI16, KindI32, KindI64, KindISize,
		KindU8, KindU16, KindU32, KindU64, KindUSize,
		KindBool, KindChar, KindUnit, KindNever,
	} {
		in.primitives[k] = &Type{kind: k}
	}
	return in
}

// Primitive returns the canonical TypeID for a primitive kind.
func (in *Interner) Primitive(k Kind) *Type {
	t, ok := in.primitives[k]
	if !ok {
		panic(fmt.Sprintf("types: %s is not a primitive kind", k))
	}
	return t
}

func (in *Interner) Unit() *Type  { return in.primitives[KindUnit] }
func (in *Interner) Never() *Type { return in.primitives[KindNever] }
func (in *Interner) Bool() *Type  { return in.primitives[KindBool] }
func (in *Interner) Char() *Type  { return in.primitives[KindChar] }

// DefineStruct registers a struct type by name. Re-defining the same name
// returns the original TypeID with its field list replaced by fields
// (supports forward-declared self references inside the field list being
// constructed by the caller).
func (in *Interner) DefineStruct(name string, fields []FieldDef) *Type {
	if existing, ok := in.structs[name]; ok {
		existing.structFields = fields
		return existing
	}
	t := &Type{kind: KindStruct, structName: name, structFields: fields}
	in.structs[name] = t
	return t
}

// DeclareStruct reserves a struct TypeID before its fields are known, so
// self-referential field types (via a reference) can resolve to it.
func (in *Interner) DeclareStruct(name string) *Type {
	if existing, ok := in.structs[name]; ok {
		return existing
	}
	t := &Type{kind: KindStruct, structName: name}
	in.structs[name] = t
	return t
}

// DeclareEnum reserves an enum TypeID before its variants are known, so a
// type annotation that names the enum can resolve before the enum's own
// declaration has been fully parsed.
func (in *Interner) DeclareEnum(name string) *Type {
	if existing, ok := in.enums[name]; ok {
		return existing
	}
	t := &Type{kind: KindEnum, enumName: name}
	in.enums[name] = t
	return t
}

// DefineEnum registers an enum type with its variant discriminants and
// underlying integer primitive.
func (in *Interner) DefineEnum(name string, variants []VariantDef, underlying *Type) *Type {
	if existing, ok := in.enums[name]; ok {
		existing.variants = variants
		existing.enumUnder = underlying
		return existing
	}
	t := &Type{kind: KindEnum, enumName: name, variants: variants, enumUnder: underlying}
	in.enums[name] = t
	return t
}

// Array returns the canonical TypeID for [elem; size].
func (in *Interner) Array(elem *Type, size uint64) *Type {
	key := arrayKey{elem, size}
	if t, ok := in.arrays[key]; ok {
		return t
	}
	t := &Type{kind: KindArray, elem: elem, size: size}
	in.arrays[key] = t
	return t
}

// MakeRef returns the canonical TypeID for &elem / &mut elem.
func (in *Interner) MakeRef(elem *Type, mutable bool) *Type {
	key := refKey{elem, mutable}
	if t, ok := in.refs[key]; ok {
		return t
	}
	t := &Type{kind: KindRef, elem: elem, mutable: mutable}
	in.refs[key] = t
	return t
}

// LookupNamed resolves a bare type name to an already declared or defined
// struct or enum TypeID. A name not seen yet yields (nil, false); nothing is
// forward-declared.
func (in *Interner) LookupNamed(name string) (*Type, bool) {
	if t, ok := in.structs[name]; ok {
		return t, true
	}
	if t, ok := in.enums[name]; ok {
		return t, true
	}
	return nil, false
}

// Canonicalize is the identity function over this interner's own TypeIDs.
// It exists because §4.1 calls for canonicalizing parameter/return-type
// annotations before use; every TypeID ever produced by this Interner is
// already canonical, so the call is a cheap no-op guard against a caller
// that (incorrectly) constructed a *Type by hand instead of going through
// the interner.
func (in *Interner) Canonicalize(t *Type) *Type {
	return t
}

// IsNever reports whether t is the never type.
func (in *Interner) IsNever(t *Type) bool { return t.Kind() == KindNever }

// IsUnit reports whether t is unit.
func (in *Interner) IsUnit(t *Type) bool { return t.Kind() == KindUnit }

// IsAggregate reports whether t lives in memory rather than a register
// (struct or array, per the glossary).
func (in *Interner) IsAggregate(t *Type) bool {
	switch t.Kind() {
	case KindStruct, KindArray:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether t is one of the scalar primitive kinds.
func (in *Interner) IsPrimitive(t *Type) bool {
	switch t.Kind() {
	case KindI8, KindI16, KindI32, KindI64, KindISize,
		KindU8, KindU16, KindU32, KindU64, KindUSize,
		KindBool, KindChar:
		return true
	default:
		return false
	}
}

// IsSigned reports whether a primitive integer kind is signed. Panics if t
// is not an integer primitive (bool and char included); callers are
// expected to have already checked IsInteger.
func (in *Interner) IsSigned(t *Type) bool {
	switch t.Kind() {
	case KindI8, KindI16, KindI32, KindI64, KindISize:
		return true
	case KindU8, KindU16, KindU32, KindU64, KindUSize:
		return false
	default:
		panic(fmt.Sprintf("types: IsSigned on non-integer kind %s", t.Kind()))
	}
}

// IsInteger reports whether t is one of the integer primitive kinds
// (signed or unsigned), excluding bool and char.
func (in *Interner) IsInteger(t *Type) bool {
	switch t.Kind() {
	case KindI8, KindI16, KindI32, KindI64, KindISize,
		KindU8, KindU16, KindU32, KindU64, KindUSize:
		return true
	default:
		return false
	}
}

// PrimitiveKind returns t's Kind and true if t is a primitive.
func (in *Interner) PrimitiveKind(t *Type) (Kind, bool) {
	if in.IsPrimitive(t) {
		return t.Kind(), true
	}
	return KindInvalid, false
}

// StructFields returns the ordered field list of a struct type.
func (in *Interner) StructFields(t *Type) []FieldDef {
	if t.Kind() != KindStruct {
		panic("types: StructFields on non-struct")
	}
	return t.structFields
}

// FieldType returns the type of the i-th declared field of a struct type.
func (in *Interner) FieldType(t *Type, index int) *Type {
	fields := in.StructFields(t)
	if index < 0 || index >= len(fields) {
		panic(fmt.Sprintf("types: field index %d out of range for %s", index, t))
	}
	return fields[index].Type
}

// FieldIndex resolves a field name to its declared index.
func (in *Interner) FieldIndex(t *Type, name string) (int, bool) {
	for i, f := range in.StructFields(t) {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ElementType returns the element type of an array type.
func (in *Interner) ElementType(t *Type) *Type {
	if t.Kind() != KindArray {
		panic("types: ElementType on non-array")
	}
	return t.elem
}

// ArraySize returns the declared element count of an array type.
func (in *Interner) ArraySize(t *Type) uint64 {
	if t.Kind() != KindArray {
		panic("types: ArraySize on non-array")
	}
	return t.size
}

// Pointee returns the referent type of a reference type.
func (in *Interner) Pointee(t *Type) *Type {
	if t.Kind() != KindRef {
		panic("types: Pointee on non-ref")
	}
	return t.elem
}

// IsMutableRef reports whether a reference type is `&mut`.
func (in *Interner) IsMutableRef(t *Type) bool {
	if t.Kind() != KindRef {
		panic("types: IsMutableRef on non-ref")
	}
	return t.mutable
}

// EnumUnderlying returns the integer primitive an enum's discriminant is
// typed as.
func (in *Interner) EnumUnderlying(t *Type) *Type {
	if t.Kind() != KindEnum {
		panic("types: EnumUnderlying on non-enum")
	}
	return t.enumUnder
}

// EnumVariants returns the ordered variant list of an enum type.
func (in *Interner) EnumVariants(t *Type) []VariantDef {
	if t.Kind() != KindEnum {
		panic("types: EnumVariants on non-enum")
	}
	return t.variants
}

// EnumDiscriminant resolves a variant name to its discriminant value.
func (in *Interner) EnumDiscriminant(t *Type, variant string) (uint64, bool) {
	for _, v := range in.EnumVariants(t) {
		if v.Name == variant {
			return v.Discriminant, true
		}
	}
	return 0, false
}
