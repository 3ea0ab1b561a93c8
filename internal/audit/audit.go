// Package audit provides the append-only audit log: entry constructors,
// durable sinks and filters over recorded entries.
package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Action tags written by the engine itself (acts define their own).
const (
	ActionDirectSet         = "DIRECT_SET"
	ActionRuleCycleOverflow = "RULE_CYCLE_OVERFLOW"
	ActionUnknownCommand    = "UNKNOWN_COMMAND"
	ActionHaltCleared       = "HALT_CLEARED"
	ActionStateUnreadable   = "STATE_UNREADABLE"
)

// Sink receives every entry the engine produces, including FAIL entries
// that never reach state.actLogs.
type Sink interface {
	Record(ctx context.Context, entries []ir.LogEntry) error
}

// Append stamps entries with the state's current clock and appends them
// to actLogs in place. s must be a private clone.
func Append(s *state.State, entries ...ir.LogEntry) []ir.LogEntry {
	for i := range entries {
		entries[i].Seq = s.SystemState.LogicalClock
	}
	s.ActLogs = append(s.ActLogs, entries...)
	return entries
}

// DirectSet records a rule's SetState write.
func DirectSet(rule ir.RuleID, passID, path string, value ir.Value) ir.LogEntry {
	return ir.LogEntry{
		Status: ir.StatusSuccess,
		Action: ActionDirectSet,
		Rule:   rule,
		PassID: passID,
		Detail: map[string]any{"path": path, "value": ir.ToAny(value)},
	}
}

// DirectSetFailed records a SetState write the state store rejected.
func DirectSetFailed(rule ir.RuleID, passID, path string, err error) ir.LogEntry {
	return ir.LogEntry{
		Status: ir.StatusFail,
		Action: ActionDirectSet,
		Rule:   rule,
		PassID: passID,
		Reason: "INVALID_PATH",
		Detail: map[string]any{"path": path, "message": err.Error()},
	}
}

// CycleOverflow records the forced halt after the iteration cap.
func CycleOverflow(passID string, limit int, pending []ir.RuleID) ir.LogEntry {
	rules := make([]any, len(pending))
	for i, id := range pending {
		rules[i] = string(id)
	}
	return ir.LogEntry{
		Status: ir.StatusCriticalFailure,
		Action: ActionRuleCycleOverflow,
		PassID: passID,
		Reason: ActionRuleCycleOverflow,
		Detail: map[string]any{
			"max_iterations": float64(limit),
			"pending_rules":  rules,
			"message":        fmt.Sprintf("rules still matching after %d iterations; system halted", limit),
		},
	}
}

// StateUnreadable records the forced halt when a pass cannot render the
// snapshot for rule evaluation.
func StateUnreadable(passID string, err error) ir.LogEntry {
	return ir.LogEntry{
		Status: ir.StatusCriticalFailure,
		Action: ActionStateUnreadable,
		PassID: passID,
		Reason: ActionStateUnreadable,
		Detail: map[string]any{
			"message": fmt.Sprintf("%v; system halted", err),
		},
	}
}

// UnknownCommand records free text the command router could not map.
func UnknownCommand(input string, clock int64) ir.LogEntry {
	return ir.LogEntry{
		Seq:    clock,
		Status: ir.StatusFail,
		Action: ActionUnknownCommand,
		Reason: ActionUnknownCommand,
		Detail: map[string]any{"input": input},
	}
}

// HaltCleared records an operator clearing the halt flag.
func HaltCleared(passID, operator string) ir.LogEntry {
	return ir.LogEntry{
		Status: ir.StatusSuccess,
		Action: ActionHaltCleared,
		PassID: passID,
		Detail: map[string]any{"operator": operator},
	}
}

// MemorySink keeps entries in memory. Safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	entries []ir.LogEntry
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record implements Sink.
func (m *MemorySink) Record(_ context.Context, entries []ir.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *MemorySink) Entries() []ir.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ir.LogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MultiSink fans entries out to several sinks, stopping at the first error.
type MultiSink []Sink

// Record implements Sink.
func (ms MultiSink) Record(ctx context.Context, entries []ir.LogEntry) error {
	for _, s := range ms {
		if err := s.Record(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns the entries for which keep returns true.
func Filter(entries []ir.LogEntry, keep func(ir.LogEntry) bool) []ir.LogEntry {
	var out []ir.LogEntry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ByStatus keeps entries with the given status.
func ByStatus(st ir.Status) func(ir.LogEntry) bool {
	return func(e ir.LogEntry) bool { return e.Status == st }
}

// ByAction keeps entries with the given action tag.
func ByAction(action string) func(ir.LogEntry) bool {
	return func(e ir.LogEntry) bool { return e.Action == action }
}

// Actions lists the action tags of entries, in order.
func Actions(entries []ir.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}
