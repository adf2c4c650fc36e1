package entities

import (
	"fmt"
	"strings"
)

// ValueKind identifies one representation of a dataref value.
// The numeric values match the host's type bits so a raw type mask can be
// converted with a plain cast.
type ValueKind int

const (
	// KindUnknown is reported for datarefs the host cannot type.
	KindUnknown ValueKind = 0
	// KindInt is a 32-bit signed integer.
	KindInt ValueKind = 1
	// KindFloat is a 32-bit float.
	KindFloat ValueKind = 2
	// KindDouble is a 64-bit float.
	KindDouble ValueKind = 4
	// KindFloatArray is an array of 32-bit floats.
	KindFloatArray ValueKind = 8
	// KindIntArray is an array of 32-bit signed integers.
	KindIntArray ValueKind = 16
	// KindBytes is an opaque byte block (often a C string).
	KindBytes ValueKind = 32
)

var kindNames = map[ValueKind]string{
	KindInt:        "int",
	KindFloat:      "float",
	KindDouble:     "double",
	KindFloatArray: "float_array",
	KindIntArray:   "int_array",
	KindBytes:      "bytes",
}

// String returns the kind name.
func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsArray reports whether the kind is addressed with offset and count.
func (k ValueKind) IsArray() bool {
	return k == KindFloatArray || k == KindIntArray || k == KindBytes
}

// ValueKinds is the immutable set of kinds a dataref supports.
// Many host datarefs support several scalar kinds at once (int|float|double).
type ValueKinds int

// KindsOf builds a set from individual kinds.
func KindsOf(kinds ...ValueKind) ValueKinds {
	var set ValueKinds
	for _, k := range kinds {
		set |= ValueKinds(k)
	}
	return set
}

// Has reports whether k is in the set.
func (s ValueKinds) Has(k ValueKind) bool {
	return k != KindUnknown && s&ValueKinds(k) != 0
}

// Preferred returns the most precise kind in the set, used by untyped reads.
func (s ValueKinds) Preferred() ValueKind {
	for _, k := range []ValueKind{KindDouble, KindFloat, KindInt, KindFloatArray, KindIntArray, KindBytes} {
		if s.Has(k) {
			return k
		}
	}
	return KindUnknown
}

// String returns the kinds joined by "|".
func (s ValueKinds) String() string {
	var parts []string
	for _, k := range []ValueKind{KindInt, KindFloat, KindDouble, KindFloatArray, KindIntArray, KindBytes} {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// Value is a tagged variant holding one dataref value.
// Exactly one payload field is meaningful, selected by Kind.
type Value struct {
	Floats []float32
	Ints   []int32
	Bytes  []byte
	Double float64
	Float  float32
	Int    int32
	Kind   ValueKind
}

// IntValue wraps an int.
func IntValue(v int32) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue wraps a float.
func FloatValue(v float32) Value { return Value{Kind: KindFloat, Float: v} }

// DoubleValue wraps a double.
func DoubleValue(v float64) Value { return Value{Kind: KindDouble, Double: v} }

// FloatArrayValue wraps a float array.
func FloatArrayValue(v []float32) Value { return Value{Kind: KindFloatArray, Floats: v} }

// IntArrayValue wraps an int array.
func IntArrayValue(v []int32) Value { return Value{Kind: KindIntArray, Ints: v} }

// BytesValue wraps a byte block.
func BytesValue(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }

// Len returns the element count for array kinds and 1 for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case KindFloatArray:
		return len(v.Floats)
	case KindIntArray:
		return len(v.Ints)
	case KindBytes:
		return len(v.Bytes)
	case KindUnknown:
		return 0
	default:
		return 1
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindDouble:
		return fmt.Sprintf("%g", v.Double)
	case KindFloatArray:
		return fmt.Sprintf("%v", v.Floats)
	case KindIntArray:
		return fmt.Sprintf("%v", v.Ints)
	case KindBytes:
		return fmt.Sprintf("%q", v.Bytes)
	default:
		return "<unknown>"
	}
}
