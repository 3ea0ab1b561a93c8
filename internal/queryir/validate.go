package queryir

import (
	"fmt"
	"regexp"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Err returns the problems as an error, or nil when the query is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %v", r.Problems)
}

// Validate checks that q only uses plain identifiers, explicit columns
// and scalar literals.
func Validate(q Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(q)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.add("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.add("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.checkIdent("table", sel.From)
	if len(sel.Columns) == 0 {
		v.add("select needs an explicit column list")
	}
	for _, c := range sel.Columns {
		v.checkIdent("column", c)
	}
	if sel.Limit < 0 {
		v.add("negative limit %d", sel.Limit)
	}
	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkIdent("field", pred.Field)
		v.checkScalar(pred.Field, pred.Value)
	case *Equals:
		v.validatePredicate(*pred)
	case Compare:
		v.checkIdent("field", pred.Field)
		v.checkScalar(pred.Field, pred.Value)
		if !ir.ValidOperators[pred.Op] {
			v.add("field %s: unknown operator %q", pred.Field, pred.Op)
		} else if pred.Op != ir.OpEqual {
			if _, ok := pred.Value.(ir.Number); !ok {
				v.add("field %s: operator %s needs a number", pred.Field, pred.Op)
			}
		}
	case *Compare:
		v.validatePredicate(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	default:
		v.add("unknown predicate type %T", p)
	}
}

func (v *validator) checkIdent(kind, name string) {
	if !identifier.MatchString(name) {
		v.add("%s %q is not a plain identifier", kind, name)
	}
}

func (v *validator) checkScalar(field string, value ir.Value) {
	switch value.(type) {
	case ir.String, ir.Number, ir.Bool:
	default:
		v.add("field %s: %s value cannot be compared", field, ir.KindName(value))
	}
}
