package engine

import "fmt"

// DefaultMaxIterations is the default number of action batches one pass
// may execute.
const DefaultMaxIterations = 16

// IterationBudget counts the action batches of one pass and enforces the
// iteration cap.
//
// Check is called once per evaluation that found matching rules, before
// the batch executes. With a limit of N, exactly N batches run; the N+1th
// evaluation that still finds matches fails the check.
type IterationBudget struct {
	limit   int
	current int
}

// NewIterationBudget creates a budget with the given limit.
// A limit below 1 is treated as 1.
func NewIterationBudget(limit int) *IterationBudget {
	if limit < 1 {
		limit = 1
	}
	return &IterationBudget{limit: limit}
}

// Check consumes one iteration. Returns IterationsExceededError once the
// limit has been spent.
func (b *IterationBudget) Check(passID string) error {
	b.current++
	if b.current > b.limit {
		return &IterationsExceededError{
			PassID:     passID,
			Iterations: b.current,
			Limit:      b.limit,
		}
	}
	return nil
}

// Current returns the number of checks performed.
func (b *IterationBudget) Current() int {
	return b.current
}

// Limit returns the iteration cap.
func (b *IterationBudget) Limit() int {
	return b.limit
}

// IterationsExceededError is returned when a pass exhausts its budget.
type IterationsExceededError struct {
	PassID     string
	Iterations int
	Limit      int
}

// Error implements the error interface.
func (e *IterationsExceededError) Error() string {
	return fmt.Sprintf("pass %s exceeded max iterations (%d > %d)", e.PassID, e.Iterations, e.Limit)
}

// Unwrap exposes the equivalent RuntimeError.
func (e *IterationsExceededError) Unwrap() error {
	return NewCycleOverflowError(e.PassID, e.Limit)
}
