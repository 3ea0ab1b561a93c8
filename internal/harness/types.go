package harness

import (
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// StepOutcome is what one step did.
type StepOutcome struct {
	Index  int         `json:"index"`
	Kind   string      `json:"kind"`
	PassID string      `json:"pass_id,omitempty"`
	Status ir.Status   `json:"status"`
	Reason string      `json:"reason,omitempty"`
	Mode   string      `json:"mode"`
	Fired  []ir.RuleID `json:"fired,omitempty"`

	// Iterations is set for pass steps.
	Iterations int `json:"iterations,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Steps []StepOutcome `json:"steps"`

	// Trace is every entry the engine recorded, FAIL entries included,
	// in recording order.
	Trace []ir.LogEntry `json:"trace"`

	// State is the final state.
	State state.State `json:"-"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepOutcome{},
		Trace:  []ir.LogEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
