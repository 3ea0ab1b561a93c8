package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during engine execution.
//
// Runtime errors include:
//   - Cycle overflow: rules still match after the iteration budget
//   - Engine stopped: a request was submitted after Stop
//   - Not halted: a halt clear was requested while running
//   - State unreadable: rules could not be evaluated against a snapshot
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PassID identifies the affected pass.
	PassID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCycleOverflow indicates the pass hit its iteration cap.
	ErrCodeCycleOverflow RuntimeErrorCode = "RULE_CYCLE_OVERFLOW"

	// ErrCodeEngineStopped indicates the request queue is closed.
	ErrCodeEngineStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodeNotHalted indicates a halt clear with no halt to clear.
	ErrCodeNotHalted RuntimeErrorCode = "NOT_HALTED"

	// ErrCodeStateUnreadable indicates a snapshot that could not be
	// rendered for rule evaluation.
	ErrCodeStateUnreadable RuntimeErrorCode = "STATE_UNREADABLE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.PassID != "" {
		return fmt.Sprintf("%s: %s (pass=%s)", e.Code, e.Message, e.PassID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleOverflow returns true if the error reports an iteration overflow.
// Matches both RuntimeError with ErrCodeCycleOverflow and
// IterationsExceededError. Uses errors.As to handle wrapped errors.
func IsCycleOverflow(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCycleOverflow
	}
	var ie *IterationsExceededError
	return errors.As(err, &ie)
}

// IsEngineStopped returns true if the error reports a closed engine.
func IsEngineStopped(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeEngineStopped
}

// NewCycleOverflowError creates a RuntimeError for an iteration overflow.
func NewCycleOverflowError(passID string, limit int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCycleOverflow,
		Message: fmt.Sprintf("rules still matching after %d iterations", limit),
		PassID:  passID,
		Details: map[string]string{
			"max_iterations": fmt.Sprintf("%d", limit),
		},
	}
}

// IsStateUnreadable returns true if the error reports a pass halted on an
// unreadable snapshot.
func IsStateUnreadable(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeStateUnreadable
}

// NewStateUnreadableError creates a RuntimeError for a snapshot that
// could not be rendered.
func NewStateUnreadableError(passID string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStateUnreadable,
		Message: cause.Error(),
		PassID:  passID,
	}
}

// IsNotHalted returns true if the error reports a clear without a halt.
func IsNotHalted(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeNotHalted
}

var errNotHalted = &RuntimeError{
	Code:    ErrCodeNotHalted,
	Message: "engine is not halted",
}

var errStopped = &RuntimeError{
	Code:    ErrCodeEngineStopped,
	Message: "engine request queue is closed",
}
