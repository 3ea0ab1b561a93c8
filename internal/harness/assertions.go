package harness

import (
	"fmt"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []ir.LogEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] seq=%d %s %s", i+1, entry.Seq, entry.Status, entry.Action)
			if entry.Act != "" {
				fmt.Fprintf(&buf, " act=%s", entry.Act)
			}
			if entry.Rule != "" {
				fmt.Fprintf(&buf, " rule=%s", entry.Rule)
			}
			if entry.Reason != "" {
				fmt.Fprintf(&buf, " reason=%s", entry.Reason)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// matches reports whether entry carries every field set on a.
func matches(entry ir.LogEntry, a Assertion) bool {
	if a.Action != "" && entry.Action != a.Action {
		return false
	}
	if a.Act != "" && string(entry.Act) != a.Act {
		return false
	}
	if a.Rule != "" && string(entry.Rule) != a.Rule {
		return false
	}
	if a.Status != "" && string(entry.Status) != a.Status {
		return false
	}
	return true
}

func describe(a Assertion) string {
	var parts []string
	if a.Action != "" {
		parts = append(parts, "action="+a.Action)
	}
	if a.Act != "" {
		parts = append(parts, "act="+a.Act)
	}
	if a.Rule != "" {
		parts = append(parts, "rule="+a.Rule)
	}
	if a.Status != "" {
		parts = append(parts, "status="+a.Status)
	}
	return strings.Join(parts, " ")
}

// assertTraceContains checks that some entry matches the assertion.
func assertTraceContains(trace []ir.LogEntry, a Assertion) error {
	for _, entry := range trace {
		if matches(entry, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: "entry with " + describe(a),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the action tags appear in order.
// Other entries may sit between them.
func assertTraceOrder(trace []ir.LogEntry, a Assertion) error {
	next := 0
	for _, entry := range trace {
		if next < len(a.Actions) && entry.Action == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", a.Actions),
		Actual:   fmt.Sprintf("%s not found after %v", a.Actions[next], a.Actions[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the action tag appears exactly Count times.
func assertTraceCount(trace []ir.LogEntry, a Assertion) error {
	count := 0
	for _, entry := range trace {
		if entry.Action == a.Action {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState compares the scalar at Path with Equals. A missing
// Equals requires the path to be absent.
func assertFinalState(s state.State, a Assertion) error {
	actual := state.Read(s, a.Path)
	expected := ir.FromAny(a.Equals)

	if ir.IsAbsent(expected) {
		if ir.IsAbsent(actual) {
			return nil
		}
	} else if ir.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%s = %s", a.Path, ir.Format(expected)),
		Actual:   fmt.Sprintf("%s = %s (%s)", a.Path, ir.Format(actual), ir.KindName(actual)),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
