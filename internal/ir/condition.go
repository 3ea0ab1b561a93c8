package ir

import "fmt"

// Operator is a comparison operator usable in a rule trigger.
type Operator string

const (
	OpLess    Operator = "<"
	OpGreater Operator = ">"
	OpEqual   Operator = "=="
)

// ValidOperators defines the allowed comparison operators.
var ValidOperators = map[Operator]bool{
	OpLess:    true,
	OpGreater: true,
	OpEqual:   true,
}

// ParseOperator validates and converts a raw operator string.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !ValidOperators[op] {
		return "", fmt.Errorf("unknown operator %q (allowed: <, >, ==)", s)
	}
	return op, nil
}

// Condition is one trigger of a rule: the value at Path compared with
// Threshold using Op.
type Condition struct {
	Path      string   `json:"path"`
	Op        Operator `json:"op"`
	Threshold Value    `json:"threshold"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Path, c.Op, Format(c.Threshold))
}

// Compare evaluates actual Op threshold.
//
// Absent or composite values never match. Ordering operators only apply
// to numbers; equality applies to any scalar of the same kind.
func Compare(actual Value, op Operator, threshold Value) bool {
	switch op {
	case OpEqual:
		return Equal(actual, threshold)
	case OpLess, OpGreater:
		a, ok := actual.(Number)
		if !ok {
			return false
		}
		t, ok := threshold.(Number)
		if !ok {
			return false
		}
		if op == OpLess {
			return a < t
		}
		return a > t
	default:
		return false
	}
}
