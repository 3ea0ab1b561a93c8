package act

import (
	"errors"
	"fmt"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// Reason is the specific failure code recorded on a FAIL entry.
type Reason string

const (
	// ReasonUnknownAct indicates the act id is not in the catalog.
	ReasonUnknownAct Reason = "UNKNOWN_ACT"

	// ReasonMissingParam indicates a required parameter was not supplied.
	ReasonMissingParam Reason = "MISSING_PARAM"

	// ReasonInvalidParam indicates a parameter has the wrong type or
	// references something that does not exist.
	ReasonInvalidParam Reason = "INVALID_PARAM"

	// ReasonHalted indicates the halt gate rejected the act.
	ReasonHalted Reason = "HALTED"

	// ReasonInsufficientBalance indicates a balance could not cover a debit.
	ReasonInsufficientBalance Reason = "INSUFFICIENT_BALANCE"
)

// Kind is the failure taxonomy a caller branches on.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindHalted              Kind = "HALTED"
)

// Failure describes a rejected act execution.
type Failure struct {
	// Reason is the failure code.
	Reason Reason

	// Act is the requested act id.
	Act ir.ActID

	// Message is a human-readable description.
	Message string

	// Detail contains additional context copied onto the log entry.
	Detail map[string]any
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Act != "" {
		return fmt.Sprintf("%s: %s (act=%s)", f.Reason, f.Message, f.Act)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// Kind maps the reason onto the failure taxonomy.
func (f *Failure) Kind() Kind {
	switch f.Reason {
	case ReasonHalted:
		return KindHalted
	case ReasonInsufficientBalance:
		return KindInsufficientBalance
	default:
		return KindValidation
	}
}

// Entry renders the failure as a FAIL log entry.
func (f *Failure) Entry() ir.LogEntry {
	detail := map[string]any{"message": f.Message}
	for k, v := range f.Detail {
		detail[k] = v
	}
	return ir.LogEntry{
		Status: ir.StatusFail,
		Action: "ACT_REJECTED",
		Act:    f.Act,
		Reason: string(f.Reason),
		Detail: detail,
	}
}

// IsHalted returns true if err is a halt-gate failure.
// Uses errors.As to handle wrapped errors.
func IsHalted(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind() == KindHalted
}

// IsInsufficientBalance returns true if err is a balance failure.
func IsInsufficientBalance(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind() == KindInsufficientBalance
}

// IsValidation returns true if err is an unknown-act or parameter failure.
func IsValidation(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind() == KindValidation
}

func invalidParam(name, format string, args ...any) *Failure {
	return &Failure{
		Reason:  ReasonInvalidParam,
		Message: fmt.Sprintf(format, args...),
		Detail:  map[string]any{"param": name},
	}
}

func insufficient(what string, have, need float64) *Failure {
	return &Failure{
		Reason:  ReasonInsufficientBalance,
		Message: fmt.Sprintf("%s: have %v, need %v", what, have, need),
		Detail:  map[string]any{"balance": what, "have": have, "need": need},
	}
}
