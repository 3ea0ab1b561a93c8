package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "audit_log",
		Columns: []string{"seq", "status", "action"},
		Filter:  queryir.Equals{Field: "status", Value: ir.String("FAIL")},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT seq, status, action FROM audit_log WHERE status = ? ORDER BY id ASC", sql)
	assert.Equal(t, []any{"FAIL"}, params)
	assert.NotContains(t, sql, "FAIL")
}

func TestCompile_NoFilter(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(&queryir.Select{
		From:    "audit_log",
		Columns: []string{"seq"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT seq FROM audit_log ORDER BY id ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_AndCompareLimit(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "audit_log",
		Columns: []string{"seq", "act"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "act", Value: ir.String("TRANSFER")},
			queryir.Compare{Field: "seq", Op: ir.OpGreater, Value: ir.Number(4)},
			&queryir.Compare{Field: "seq", Op: ir.OpLess, Value: ir.Number(9)},
		}},
		Limit:  5,
		Newest: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT seq, act FROM audit_log WHERE act = ? AND seq > ? AND seq < ? ORDER BY id DESC LIMIT ?", sql)
	assert.Equal(t, []any{"TRANSFER", 4.0, 9.0, 5}, params)
}

func TestCompile_NestedAnd(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "audit_log",
		Columns: []string{"seq"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "status", Value: ir.String("FAIL")},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "reason", Value: ir.String("HALTED")},
				queryir.Compare{Field: "seq", Op: ir.OpEqual, Value: ir.Number(3)},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT seq FROM audit_log WHERE status = ? AND (reason = ? AND seq = ?) ORDER BY id ASC", sql)
	assert.Equal(t, []any{"FAIL", "HALTED", 3.0}, params)
}

func TestCompile_EmptyAnd(t *testing.T) {
	sql, _, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "audit_log",
		Columns: []string{"seq"},
		Filter:  queryir.And{},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1")
}

func TestCompile_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		query queryir.Query
	}{
		{"nil", nil},
		{"star", queryir.Select{From: "audit_log", Columns: []string{"*"}}},
		{"injection", queryir.Select{From: "audit_log", Columns: []string{"seq"},
			Filter: queryir.Equals{Field: "1=1 OR status", Value: ir.String("x")}}},
		{"composite", queryir.Select{From: "audit_log", Columns: []string{"seq"},
			Filter: queryir.Equals{Field: "detail", Value: ir.Composite{Raw: []any{1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewSQLCompiler().Compile(tt.query)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid query")
		})
	}
}

func TestValueToParam(t *testing.T) {
	tests := []struct {
		in   ir.Value
		want any
	}{
		{ir.String("a"), "a"},
		{ir.Number(1.5), 1.5},
		{ir.Bool(true), true},
	}
	for _, tt := range tests {
		got, err := valueToParam(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := valueToParam(ir.Absent{})
	assert.Error(t, err)
}
