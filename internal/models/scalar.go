package models

import (
	"encoding/json"
	"strconv"
)

// ScalarKind identifies the type held by a Scalar.
type ScalarKind uint8

// Scalar kinds.
const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarBool
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	default:
		return "string"
	}
}

// Scalar is a single kind-specific value stored in Entity.Extra.
type Scalar struct {
	s    string
	f    float64
	i    int64
	b    bool
	kind ScalarKind
}

// StringScalar wraps a string.
func StringScalar(v string) Scalar { return Scalar{s: v, kind: ScalarString} }

// IntScalar wraps an integer.
func IntScalar(v int64) Scalar { return Scalar{i: v, kind: ScalarInt} }

// FloatScalar wraps a float.
func FloatScalar(v float64) Scalar { return Scalar{f: v, kind: ScalarFloat} }

// BoolScalar wraps a bool.
func BoolScalar(v bool) Scalar { return Scalar{b: v, kind: ScalarBool} }

// Kind returns the held type.
func (s Scalar) Kind() ScalarKind { return s.kind }

// Interface returns the held value as string, int64, float64 or bool.
func (s Scalar) Interface() any {
	switch s.kind {
	case ScalarInt:
		return s.i
	case ScalarFloat:
		return s.f
	case ScalarBool:
		return s.b
	default:
		return s.s
	}
}

// String renders the value as plain text.
func (s Scalar) String() string {
	switch s.kind {
	case ScalarInt:
		return strconv.FormatInt(s.i, 10)
	case ScalarFloat:
		return strconv.FormatFloat(s.f, 'f', -1, 64)
	case ScalarBool:
		return strconv.FormatBool(s.b)
	default:
		return s.s
	}
}

// MarshalJSON encodes the held value with its native JSON type.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Interface())
}
