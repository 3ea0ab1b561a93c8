package queryir

import "github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"

// Query is a sealed interface for query nodes.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface for filter conditions.
type Predicate interface {
	predicateNode()
}

// Select reads Columns from a table, filtered by Filter.
//
//	Select{
//	  From:    "audit_log",
//	  Columns: []string{"seq", "status", "action"},
//	  Filter:  And{Predicates: []Predicate{
//	    Equals{Field: "status", Value: ir.String("FAIL")},
//	    Compare{Field: "seq", Op: ir.OpGreater, Value: ir.Number(10)},
//	  }},
//	  Limit: 50,
//	}
//
// translates to
//
//	SELECT seq, status, action FROM audit_log
//	WHERE status = ? AND seq > ? ORDER BY id ASC LIMIT ?
type Select struct {
	From    string
	Columns []string  // explicit column list, in output order
	Filter  Predicate // nil = no filter
	Limit   int       // 0 = unlimited

	// Newest reverses the row order, so Limit keeps the latest rows.
	Newest bool
}

func (Select) queryNode() {}

// Equals is field = value.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// Compare is field <op> value.
type Compare struct {
	Field string
	Op    ir.Operator
	Value ir.Value
}

func (Compare) predicateNode() {}

// And is a conjunction of predicates.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
