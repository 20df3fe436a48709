package blink

import "testing"

func TestBuiltinType(t *testing.T) {
	tests := []struct {
		name string
		tag  TypeTag
	}{
		{"i8", I8}, {"u8", U8}, {"i16", I16}, {"u16", U16},
		{"i32", I32}, {"u32", U32}, {"i64", I64}, {"u64", U64},
		{"f32", F32}, {"f64", F64}, {"bool", BOOL}, {"string", STRING},
		{"nothing", NOTHING},
	}
	for _, tc := range tests {
		typ, err := builtinType(tc.name, false)
		if err != nil {
			t.Fatalf("builtinType(%q): unexpected error: %v", tc.name, err)
		}
		if typ.Tag != tc.tag {
			t.Errorf("builtinType(%q).Tag = %v, want %v", tc.name, typ.Tag, tc.tag)
		}
	}
}

func TestBuiltinTypeUnknown(t *testing.T) {
	if _, err := builtinType("bogus", false); err == nil {
		t.Fatal("expected an error for an unknown type name")
	}
}

func TestBuiltinTypeUnsignedFlag(t *testing.T) {
	u, _ := builtinType("u32", false)
	if !u.IsUnsigned {
		t.Error("u32 should be IsUnsigned")
	}
	i, _ := builtinType("i32", false)
	if i.IsUnsigned {
		t.Error("i32 should not be IsUnsigned")
	}
}

func TestTypeEqual(t *testing.T) {
	a, _ := builtinType("i32", false)
	b, _ := builtinType("i32", false)
	if !a.Equal(b) {
		t.Error("two identically-built Types should be Equal")
	}
	c := a
	c.IsConst = true
	if a.Equal(c) {
		t.Error("a const-qualified Type should not Equal its unqualified counterpart")
	}
}

func TestTypeString(t *testing.T) {
	i32, _ := builtinType("i32", false)
	if got, want := i32.String(), "i32"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	ptr, _ := builtinType("i32", true)
	if got, want := ptr.String(), "i32*"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	cnst, _ := builtinType("i32", false)
	cnst.IsConst = true
	if got, want := cnst.String(), "const i32"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCommonTypeIdentical(t *testing.T) {
	i32, _ := builtinType("i32", false)
	ct, err := commonType(i32, i32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ct.Equal(i32) {
		t.Errorf("commonType(i32, i32) = %v, want i32", ct)
	}
}

func TestCommonTypeWidening(t *testing.T) {
	i32, _ := builtinType("i32", false)
	i64, _ := builtinType("i64", false)

	ct, err := commonType(i32, i64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct.Tag != I64 {
		t.Errorf("commonType(i32, i64) = %v, want i64", ct)
	}

	// symmetric
	ct, err = commonType(i64, i32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct.Tag != I64 {
		t.Errorf("commonType(i64, i32) = %v, want i64", ct)
	}
}

func TestCommonTypeFloatDominates(t *testing.T) {
	i32, _ := builtinType("i32", false)
	f32, _ := builtinType("f32", false)

	ct, err := commonType(i32, f32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct.Tag != F32 {
		t.Errorf("commonType(i32, f32) = %v, want f32", ct)
	}
}

func TestCommonTypeUnsignedPair(t *testing.T) {
	u8, _ := builtinType("u8", false)
	u64, _ := builtinType("u64", false)

	ct, err := commonType(u8, u64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct.Tag != U64 {
		t.Errorf("commonType(u8, u64) = %v, want u64", ct)
	}
}

func TestCommonTypeStringIncompatible(t *testing.T) {
	i32, _ := builtinType("i32", false)
	str, _ := builtinType("string", false)

	if _, err := commonType(i32, str); err == nil {
		t.Fatal("expected an error unifying i32 and string")
	}
}

func TestCommonTypeBoolIncompatible(t *testing.T) {
	i32, _ := builtinType("i32", false)
	b, _ := builtinType("bool", false)

	if _, err := commonType(i32, b); err == nil {
		t.Fatal("expected an error unifying i32 and bool")
	}
}
