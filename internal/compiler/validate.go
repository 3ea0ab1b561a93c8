package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Validation error codes (E100-E199)
const (
	// Rule errors (E101-E109)
	ErrDuplicateRuleID = "E101" // rule ids must be unique
	ErrEmptyWhen       = "E102" // a rule without triggers never fires
	ErrEmptyThen       = "E103" // a rule without actions does nothing

	// Trigger errors (E110-E119)
	ErrUnknownPathRoot   = "E110" // path does not start at a state root
	ErrOrderingThreshold = "E111" // < and > need a numeric threshold

	// Action errors (E120-E129)
	ErrUnknownAct     = "E120" // act id not in the catalog
	ErrMissingParam   = "E121" // required act parameter missing
	ErrUnknownParam   = "E122" // parameter not declared by the act
	ErrParamKind      = "E123" // parameter literal has the wrong kind
	ErrAuditPathWrite = "E124" // direct set targets the audit trail
)

// ValidationError represents a rule set validation error.
type ValidationError struct {
	Rule    ir.RuleID `json:"rule,omitempty"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    string    `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Rule, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled rules against the act catalog and the state
// shape. It returns every problem found (does not fail fast).
func Validate(rules []ir.Rule, cat *act.Catalog) []ValidationError {
	var errs []ValidationError
	seen := make(map[ir.RuleID]bool, len(rules))

	for _, r := range rules {
		if seen[r.ID] {
			errs = append(errs, ValidationError{
				Rule:    r.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate rule id %q", r.ID),
				Code:    ErrDuplicateRuleID,
			})
		}
		seen[r.ID] = true

		if len(r.When) == 0 {
			errs = append(errs, ValidationError{Rule: r.ID, Field: "when", Message: "at least one trigger is required", Code: ErrEmptyWhen})
		}
		if len(r.Then) == 0 {
			errs = append(errs, ValidationError{Rule: r.ID, Field: "then", Message: "at least one action is required", Code: ErrEmptyThen})
		}

		for i, c := range r.When {
			errs = append(errs, validateCondition(r.ID, i, c)...)
		}
		for i, a := range r.Then {
			errs = append(errs, validateAction(r.ID, i, a, cat)...)
		}
	}
	return errs
}

func validateCondition(id ir.RuleID, i int, c ir.Condition) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("when[%d]", i)

	if !knownRoot(c.Path) {
		errs = append(errs, ValidationError{
			Rule:    id,
			Field:   field + ".path",
			Message: fmt.Sprintf("unknown state path %q", c.Path),
			Code:    ErrUnknownPathRoot,
		})
	}
	if c.Op != ir.OpEqual {
		if _, ok := c.Threshold.(ir.Number); !ok {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".value",
				Message: fmt.Sprintf("operator %s needs a number, got %s", c.Op, ir.KindName(c.Threshold)),
				Code:    ErrOrderingThreshold,
			})
		}
	}
	return errs
}

func validateAction(id ir.RuleID, i int, a ir.Action, cat *act.Catalog) []ValidationError {
	field := fmt.Sprintf("then[%d]", i)

	switch a := a.(type) {
	case ir.SetState:
		var errs []ValidationError
		if !knownRoot(a.Path) {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".set",
				Message: fmt.Sprintf("unknown state path %q", a.Path),
				Code:    ErrUnknownPathRoot,
			})
		}
		if rootOf(a.Path) == "actLogs" {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".set",
				Message: "the audit trail is append-only",
				Code:    ErrAuditPathWrite,
			})
		}
		return errs

	case ir.ExecuteAct:
		d, err := cat.Lookup(a.Act)
		if err != nil {
			return []ValidationError{{
				Rule:    id,
				Field:   field + ".act",
				Message: fmt.Sprintf("unknown act %q", a.Act),
				Code:    ErrUnknownAct,
			}}
		}
		return validateParams(id, field, d, a.Params)
	}
	return nil
}

func validateParams(id ir.RuleID, field string, d act.Descriptor, p ir.Params) []ValidationError {
	var errs []ValidationError
	for _, decl := range d.Params {
		v, ok := p[decl.Name]
		if !ok {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".params." + decl.Name,
				Message: fmt.Sprintf("%s requires parameter %s", d.ID, decl.Name),
				Code:    ErrMissingParam,
			})
			continue
		}
		if !kindMatches(decl.Kind, v) {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".params." + decl.Name,
				Message: fmt.Sprintf("parameter %s must be a %s, got %s", decl.Name, decl.Kind, ir.KindName(v)),
				Code:    ErrParamKind,
			})
		}
	}
	for _, name := range p.SortedKeys() {
		if !d.HasParam(name) {
			errs = append(errs, ValidationError{
				Rule:    id,
				Field:   field + ".params." + name,
				Message: fmt.Sprintf("%s does not accept parameter %s", d.ID, name),
				Code:    ErrUnknownParam,
			})
		}
	}
	return errs
}

func kindMatches(k act.ParamKind, v ir.Value) bool {
	switch k {
	case act.ParamNumber:
		_, ok := v.(ir.Number)
		return ok
	case act.ParamString:
		_, ok := v.(ir.String)
		return ok
	}
	return false
}

func rootOf(path string) string {
	root, _, _ := strings.Cut(path, ".")
	return root
}

func knownRoot(path string) bool {
	return slices.Contains(state.RootKeys(), rootOf(path))
}
