package types

import "testing"

func TestPrimitivesAreSingletons(t *testing.T) {
	in := NewInterner()
	if in.Primitive(KindI32) != in.Primitive(KindI32) {
		t.Fatal("expected repeated Primitive(KindI32) calls to return the same TypeID")
	}
	if in.Primitive(KindI32) == in.Primitive(KindI64) {
		t.Fatal("expected distinct primitive kinds to be distinct TypeIDs")
	}
}

func TestArrayInterningByShape(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(KindI32)

	a1 := in.Array(i32, 4)
	a2 := in.Array(i32, 4)
	if a1 != a2 {
		t.Fatal("expected [i32; 4] to intern to the same TypeID both times")
	}

	a3 := in.Array(i32, 5)
	if a1 == a3 {
		t.Fatal("expected [i32; 4] and [i32; 5] to be distinct TypeIDs")
	}
}

func TestRefInterningByMutability(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(KindI32)

	shared := in.MakeRef(i32, false)
	mut := in.MakeRef(i32, true)
	if shared == mut {
		t.Fatal("expected &i32 and &mut i32 to be distinct TypeIDs")
	}
	if in.MakeRef(i32, false) != shared {
		t.Fatal("expected repeated &i32 to intern to the same TypeID")
	}
	if !in.IsMutableRef(mut) {
		t.Fatal("expected &mut i32 to report mutable")
	}
	if in.Pointee(shared) != i32 {
		t.Fatal("expected Pointee(&i32) == i32")
	}
}

func TestStructFieldsAndAggregateClassification(t *testing.T) {
	in := NewInterner()
	i32 := in.Primitive(KindI32)

	pair := in.DefineStruct("Pair", []FieldDef{
		{Name: "x", Type: i32},
		{Name: "y", Type: i32},
	})

	if !in.IsAggregate(pair) {
		t.Fatal("expected struct to be an aggregate")
	}
	if in.IsAggregate(i32) {
		t.Fatal("expected i32 to not be an aggregate")
	}
	idx, ok := in.FieldIndex(pair, "y")
	if !ok || idx != 1 {
		t.Fatalf("expected field y at index 1, got idx=%d ok=%v", idx, ok)
	}
	if in.FieldType(pair, 1) != i32 {
		t.Fatal("expected field 1 type == i32")
	}
}

func TestEnumDiscriminants(t *testing.T) {
	in := NewInterner()
	u8 := in.Primitive(KindU8)
	color := in.DefineEnum("Color", []VariantDef{
		{Name: "Red", Discriminant: 0},
		{Name: "Green", Discriminant: 1},
		{Name: "Blue", Discriminant: 2},
	}, u8)

	d, ok := in.EnumDiscriminant(color, "Green")
	if !ok || d != 1 {
		t.Fatalf("expected Green == 1, got %d ok=%v", d, ok)
	}
	if in.EnumUnderlying(color) != u8 {
		t.Fatal("expected enum underlying type == u8")
	}
}

func TestSignedness(t *testing.T) {
	in := NewInterner()
	if !in.IsSigned(in.Primitive(KindI32)) {
		t.Fatal("expected i32 to be signed")
	}
	if in.IsSigned(in.Primitive(KindU32)) {
		t.Fatal("expected u32 to be unsigned")
	}
}

func TestNeverAndUnit(t *testing.T) {
	in := NewInterner()
	if !in.IsNever(in.Never()) {
		t.Fatal("expected Never() to report IsNever")
	}
	if !in.IsUnit(in.Unit()) {
		t.Fatal("expected Unit() to report IsUnit")
	}
}
