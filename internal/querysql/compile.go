// Package querysql compiles queryir queries to parameterized SQLite
// statements.
package querysql

import (
	"fmt"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/queryir"
)

// SQLCompiler compiles queryir to SQL for SQLite.
//
// Every statement carries an ORDER BY on the row id so results are
// deterministic, and every literal is a ? parameter.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts q to (sql, params).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var (
		b      strings.Builder
		params []any
	)
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(q.Columns, ", "), q.From)

	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = append(params, whereParams...)
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(stableOrderKey(q))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params, nil
}

// stableOrderKey orders by insertion, which for the audit log is commit
// order.
func stableOrderKey(q queryir.Select) string {
	if q.Newest {
		return "id DESC"
	}
	return "id ASC"
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileComparison(pred.Field, ir.OpEqual, pred.Value)
	case *queryir.Equals:
		return c.compileComparison(pred.Field, ir.OpEqual, pred.Value)
	case queryir.Compare:
		return c.compileComparison(pred.Field, pred.Op, pred.Value)
	case *queryir.Compare:
		return c.compileComparison(pred.Field, pred.Op, pred.Value)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileComparison(field string, op ir.Operator, v ir.Value) (string, []any, error) {
	param, err := valueToParam(v)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", field, err)
	}
	sqlOp := string(op)
	if op == ir.OpEqual {
		sqlOp = "="
	}
	return fmt.Sprintf("%s %s ?", field, sqlOp), []any{param}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		switch pred.(type) {
		case queryir.And, *queryir.And:
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// valueToParam converts a scalar ir.Value to a driver parameter.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Number:
		return float64(val), nil
	case ir.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("%s value cannot be used as a SQL parameter", ir.KindName(v))
	}
}
