package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

func TestValidate_Valid(t *testing.T) {
	q := Select{
		From:    "audit_log",
		Columns: []string{"seq", "status"},
		Filter: And{Predicates: []Predicate{
			Equals{Field: "status", Value: ir.String("FAIL")},
			&Compare{Field: "seq", Op: ir.OpGreater, Value: ir.Number(3)},
			And{},
		}},
		Limit: 10,
	}

	res := Validate(q)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Problems)
	assert.NoError(t, res.Err())
}

func TestValidate_PointerSelect(t *testing.T) {
	res := Validate(&Select{From: "audit_log", Columns: []string{"seq"}})
	assert.True(t, res.Valid)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "nil query",
		},
		{
			name:  "injected table",
			query: Select{From: "audit_log; DROP TABLE x", Columns: []string{"seq"}},
			want:  "table",
		},
		{
			name:  "no columns",
			query: Select{From: "audit_log"},
			want:  "explicit column list",
		},
		{
			name:  "bad column",
			query: Select{From: "audit_log", Columns: []string{"*"}},
			want:  "column",
		},
		{
			name:  "negative limit",
			query: Select{From: "audit_log", Columns: []string{"seq"}, Limit: -1},
			want:  "negative limit",
		},
		{
			name: "bad field",
			query: Select{From: "audit_log", Columns: []string{"seq"},
				Filter: Equals{Field: "Status)", Value: ir.String("x")}},
			want: "field",
		},
		{
			name: "absent value",
			query: Select{From: "audit_log", Columns: []string{"seq"},
				Filter: Equals{Field: "status", Value: ir.Absent{}}},
			want: "absent value cannot be compared",
		},
		{
			name: "ordering against string",
			query: Select{From: "audit_log", Columns: []string{"seq"},
				Filter: Compare{Field: "seq", Op: ir.OpLess, Value: ir.String("5")}},
			want: "needs a number",
		},
		{
			name: "unknown operator",
			query: Select{From: "audit_log", Columns: []string{"seq"},
				Filter: Compare{Field: "seq", Op: "<=", Value: ir.Number(5)}},
			want: "unknown operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.query)
			require.False(t, res.Valid)
			require.NotEmpty(t, res.Problems)
			assert.Contains(t, res.Problems[0], tt.want)
			assert.Error(t, res.Err())
		})
	}
}
