package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Absent{}
	var _ Value = String("x")
	var _ Value = Number(1.5)
	var _ Value = Bool(true)
	var _ Value = Composite{Raw: map[string]any{}}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Absent{}},
		{"string", "abc", String("abc")},
		{"bool", true, Bool(true)},
		{"float", 0.85, Number(0.85)},
		{"int", 42, Number(42)},
		{"int64", int64(-3), Number(-3)},
		{"json number", json.Number("1e3"), Number(1000)},
		{"already value", String("v"), String("v")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAny(tt.in))
		})
	}

	c, ok := FromAny([]any{1.0}).(Composite)
	require.True(t, ok)
	assert.Equal(t, []any{1.0}, c.Raw)
}

func TestToAnyRoundTrip(t *testing.T) {
	for _, v := range []Value{String("a"), Number(2.5), Bool(false)} {
		assert.Equal(t, v, FromAny(ToAny(v)))
	}
	assert.Nil(t, ToAny(Absent{}))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(Number(1), Number(1)))
	assert.True(t, Equal(Bool(true), Bool(true)))

	assert.False(t, Equal(String("1"), Number(1)))
	assert.False(t, Equal(Absent{}, Absent{}))
	assert.False(t, Equal(Composite{Raw: 1.0}, Composite{Raw: 1.0}))
}

func TestSame(t *testing.T) {
	assert.True(t, Same(Number(1), Number(1)))
	assert.False(t, Same(Absent{}, Absent{}))

	stored := Composite{Raw: map[string]any{"b": []any{1.0, "x"}, "a": true}}
	written := Composite{Raw: map[string]any{"a": true, "b": []any{1, "x"}}}
	assert.True(t, Same(stored, written))
	assert.True(t, Same(written, stored))

	assert.False(t, Same(stored, Composite{Raw: map[string]any{"a": false}}))
	assert.False(t, Same(stored, String(`{"a":true}`)))
	assert.False(t, Same(String("a"), stored))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "50000", Format(Number(50000)))
	assert.Equal(t, "0.85", Format(Number(0.85)))
	assert.Equal(t, "true", Format(Bool(true)))
	assert.Equal(t, "<absent>", Format(Absent{}))
	assert.Equal(t, `["a"]`, Format(Composite{Raw: []any{"a"}}))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		actual    Value
		op        Operator
		threshold Value
		want      bool
	}{
		{"less true", Number(40000), OpLess, Number(50000), true},
		{"less false at boundary", Number(50000), OpLess, Number(50000), false},
		{"greater true", Number(10001), OpGreater, Number(10000), true},
		{"greater false at boundary", Number(10000), OpGreater, Number(10000), false},
		{"equal string", String("000000000000"), OpEqual, String("000000000000"), true},
		{"equal kind mismatch", String("1"), OpEqual, Number(1), false},
		{"absent never matches less", Absent{}, OpLess, Number(1), false},
		{"absent never matches equal", Absent{}, OpEqual, Absent{}, false},
		{"ordering on strings", String("a"), OpLess, String("b"), false},
		{"unknown operator", Number(1), Operator("!="), Number(2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.actual, tt.op, tt.threshold))
		})
	}
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator(">")
	require.NoError(t, err)
	assert.Equal(t, OpGreater, op)

	_, err = ParseOperator(">=")
	assert.Error(t, err)
}
