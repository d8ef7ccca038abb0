// value.go — the tagged runtime value model.
//
// Every variable in a section memory is a Value: a payload plus a Tag naming
// which of the ten primitive types the payload carries. The canonical text
// form produced by Stringify is the *only* textual representation in the
// system: `$`-reference resolution, guard evaluation and the loop machinery
// all go through it, so its formatting rules (fixed six-digit floats, bare
// true/false, raw char/string bytes) are observable language semantics.
package verlight

import (
	"math"
	"strconv"
)

// Tag identifies the active payload of a Value.
type Tag uint8

const (
	TagI8 Tag = iota + 1
	TagI16
	TagI32
	TagI64
	TagF32
	TagF64
	TagFMax // extended precision; carried as float64, distinct identity
	TagBool
	TagChar
	TagString
)

func (t Tag) String() string {
	switch t {
	case TagI8:
		return "I8"
	case TagI16:
		return "I16"
	case TagI32:
		return "I32"
	case TagI64:
		return "I64"
	case TagF32:
		return "F32"
	case TagF64:
		return "F64"
	case TagFMax:
		return "FMAX"
	case TagBool:
		return "BOOL"
	case TagChar:
		return "CHAR"
	case TagString:
		return "STRING"
	}
	return "INVALID"
}

// IsNumeric reports whether the tag belongs to the numeric family.
func (t Tag) IsNumeric() bool {
	return t >= TagI8 && t <= TagFMax
}

// Value is a tagged scalar. Only the field matching Tag is meaningful; the
// constructors below are the supported way to build one.
type Value struct {
	Tag Tag
	I   int64   // I8..I64
	F   float64 // F32, F64, FMAX (F32 payloads are pre-rounded to float32)
	B   bool
	C   byte
	S   string
}

/* ---------- constructors ---------- */

func I8(v int8) Value      { return Value{Tag: TagI8, I: int64(v)} }
func I16(v int16) Value    { return Value{Tag: TagI16, I: int64(v)} }
func I32(v int32) Value    { return Value{Tag: TagI32, I: int64(v)} }
func I64(v int64) Value    { return Value{Tag: TagI64, I: v} }
func F32(v float32) Value  { return Value{Tag: TagF32, F: float64(v)} }
func F64(v float64) Value  { return Value{Tag: TagF64, F: v} }
func FMax(v float64) Value { return Value{Tag: TagFMax, F: v} }
func Bool(v bool) Value    { return Value{Tag: TagBool, B: v} }
func Char(v byte) Value    { return Value{Tag: TagChar, C: v} }
func Str(v string) Value   { return Value{Tag: TagString, S: v} }

// Stringify renders the canonical text form: decimal integers, fixed-point
// floats with exactly six fractional digits, true/false, the raw character
// byte, the raw string contents.
func (v Value) Stringify() string {
	switch v.Tag {
	case TagI8, TagI16, TagI32, TagI64:
		return strconv.FormatInt(v.I, 10)
	case TagF32, TagF64, TagFMax:
		return strconv.FormatFloat(v.F, 'f', 6, 64)
	case TagBool:
		if v.B {
			return "true"
		}
		return "false"
	case TagChar:
		return string([]byte{v.C})
	case TagString:
		return v.S
	}
	panic("verlight: Stringify on invalid tag")
}

/* ---------- narrowest-fit ---------- */

// narrowestInt picks the smallest signed integer tag that holds v.
func narrowestInt(v int64) Value {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return I8(int8(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return I16(int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return I32(int32(v))
	}
	return I64(v)
}

// narrowestFloat picks the smallest float tag whose range covers |v|.
func narrowestFloat(v float64) Value {
	if math.Abs(v) <= math.MaxFloat32 {
		return F32(float32(v))
	}
	if math.Abs(v) <= math.MaxFloat64 {
		return F64(v)
	}
	return FMax(v)
}
