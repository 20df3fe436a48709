package blink

import "fmt"

// TypeTag is the closed set of type kinds. The numeric ordering matters: the
// semantic analyzer's common-type algorithm compares tags directly, so I8..F64
// must stay 0..5, U8..U64 must stay 6..9, and BOOL..ENUM must stay 10..14.
type TypeTag int

const (
	I8 TypeTag = iota
	I16
	I32
	I64
	F32
	F64
	U8
	U16
	U32
	U64
	BOOL
	STRING
	NOTHING
	CLASS
	ENUM
)

func (t TypeTag) String() string {
	switch t {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case BOOL:
		return "bool"
	case STRING:
		return "string"
	case NOTHING:
		return "nothing"
	case CLASS:
		return "class"
	case ENUM:
		return "enum"
	default:
		return "?"
	}
}

// Type is the AST/semantic representation of a blink type: a tag, its
// textual spelling, and the three qualifier flags. Two Types are equal iff
// every field matches (structural equality, no interning).
type Type struct {
	Tag        TypeTag
	Name       string
	IsConst    bool
	IsUnsigned bool
	IsPointer  bool
}

func (t Type) Equal(o Type) bool {
	return t.Tag == o.Tag && t.Name == o.Name &&
		t.IsConst == o.IsConst && t.IsUnsigned == o.IsUnsigned && t.IsPointer == o.IsPointer
}

// String renders a Type the way the diagnostics subsystem does: an optional
// "const " prefix, the base name, and a trailing "*" if it's a pointer.
func (t Type) String() string {
	s := ""
	if t.IsConst {
		s += "const "
	}
	switch t.Tag {
	case CLASS:
		s += "class " + t.Name
	case ENUM:
		s += "enum " + t.Name
	default:
		s += t.Name
	}
	if t.IsPointer {
		s += "*"
	}
	return s
}

func isUnsignedTag(tag TypeTag) bool {
	switch tag {
	case U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// builtinType builds a Type for one of the fixed builtin keywords.
func builtinType(name string, pointer bool) (Type, error) {
	var tag TypeTag
	switch name {
	case "i8":
		tag = I8
	case "u8":
		tag = U8
	case "i16":
		tag = I16
	case "u16":
		tag = U16
	case "i32":
		tag = I32
	case "u32":
		tag = U32
	case "i64":
		tag = I64
	case "u64":
		tag = U64
	case "f32":
		tag = F32
	case "f64":
		tag = F64
	case "bool":
		tag = BOOL
	case "string":
		tag = STRING
	case "nothing":
		tag = NOTHING
	default:
		return Type{}, fmt.Errorf("unknown builtin type '%s'", name)
	}
	return Type{Tag: tag, Name: name, IsUnsigned: isUnsignedTag(tag), IsPointer: pointer}, nil
}

// Value is a discriminated union carrying one concrete literal payload,
// used by the parser for literal AST nodes and by the semantic analyzer
// when it needs to reason about a literal's value (not its runtime value --
// blink has no interpreter; codegen lowers these straight to LLVM constants).
type Value struct {
	Type  Type
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func (v Value) String() string {
	switch v.Type.Tag {
	case F32, F64:
		return fmt.Sprintf("%g", v.Float)
	case BOOL:
		return fmt.Sprintf("%t", v.Bool)
	case STRING:
		return v.Str
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}
