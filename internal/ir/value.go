package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface over the values a state path can hold.
// Only Absent, String, Number, Bool and Composite implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Absent is returned when a state path does not resolve.
type Absent struct{}

func (Absent) irValue() {}

// MarshalJSON implements json.Marshaler for Absent.
func (Absent) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text value.
type String string

func (String) irValue() {}

// Number is a numeric value. All state quantities are float64 so that
// fractional costs (0.5 ALPHA) and ratings (0.85) share one representation.
type Number float64

func (Number) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// Composite wraps a map or list found at a state path. It can be read and
// written whole but never participates in a comparison.
type Composite struct {
	Raw any
}

func (Composite) irValue() {}

// MarshalJSON implements json.Marshaler for Composite.
func (c Composite) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Raw)
}

// IsAbsent reports whether v is missing.
func IsAbsent(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Absent)
	return ok
}

// FromAny converts a decoded JSON/YAML/CUE scalar into a Value.
// Integers of any width become Number; nil becomes Absent.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Absent{}
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(f)
	default:
		return Composite{Raw: x}
	}
}

// ToAny converts a Value back into its plain Go form.
func ToAny(v Value) any {
	switch x := v.(type) {
	case nil, Absent:
		return nil
	case String:
		return string(x)
	case Number:
		return float64(x)
	case Bool:
		return bool(x)
	case Composite:
		return x.Raw
	default:
		return nil
	}
}

// Format renders v for human-facing output.
func Format(v Value) string {
	switch x := v.(type) {
	case nil, Absent:
		return "<absent>"
	case String:
		return string(x)
	case Number:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(x))
	case Composite:
		b, err := json.Marshal(x.Raw)
		if err != nil {
			return fmt.Sprintf("%v", x.Raw)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal reports whether two scalar values are the same kind and value.
// Absent and Composite values are never equal to anything.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	default:
		return false
	}
}

// Same reports whether a and b hold the same content. It extends Equal
// to composites, which match when their JSON renderings match. Map keys
// render sorted, so key order does not matter.
func Same(a, b Value) bool {
	x, ok := a.(Composite)
	if !ok {
		return Equal(a, b)
	}
	y, ok := b.(Composite)
	if !ok {
		return false
	}
	xb, err := json.Marshal(x.Raw)
	if err != nil {
		return false
	}
	yb, err := json.Marshal(y.Raw)
	if err != nil {
		return false
	}
	return bytes.Equal(xb, yb)
}

// KindName returns a short name for the value's kind, used in error messages.
func KindName(v Value) string {
	switch v.(type) {
	case nil, Absent:
		return "absent"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Composite:
		return "composite"
	default:
		return "unknown"
	}
}
