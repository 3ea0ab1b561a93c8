package engine

import (
	"log/slog"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/audit"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Mode is the engine's position in its state machine.
type Mode string

const (
	ModeIdle       Mode = "IDLE"
	ModeEvaluating Mode = "EVALUATING"
	ModeExecuting  Mode = "EXECUTING"
	ModeHalted     Mode = "HALTED"
)

// PassResult is the outcome of one rule pass.
type PassResult struct {
	PassID string
	State  state.State
	Log    []ir.LogEntry

	// Iterations is the number of action batches executed.
	Iterations int

	// Fired lists rule ids in firing order, one per rule per batch.
	Fired []ir.RuleID

	// Mode is ModeIdle when the pass reached a fixpoint, ModeHalted
	// otherwise.
	Mode Mode

	// Err is a *RuntimeError with ErrCodeCycleOverflow when the pass hit
	// its iteration cap, or ErrCodeStateUnreadable when the snapshot
	// could not be evaluated.
	Err error
}

// Overflowed reports whether the pass ended on the iteration cap.
func (r PassResult) Overflowed() bool {
	return IsCycleOverflow(r.Err)
}

// Scheduler drives the evaluate/execute fixpoint loop.
type Scheduler struct {
	rules         []ir.Rule
	exec          *act.Executor
	maxIterations int
}

// NewScheduler creates a scheduler. The rules slice is copied so its
// declaration order cannot change afterwards.
func NewScheduler(rules []ir.Rule, exec *act.Executor, maxIterations int) *Scheduler {
	cp := make([]ir.Rule, len(rules))
	copy(cp, rules)
	return &Scheduler{rules: cp, exec: exec, maxIterations: maxIterations}
}

// Rules returns the rule set in declaration order.
func (sc *Scheduler) Rules() []ir.Rule {
	out := make([]ir.Rule, len(sc.rules))
	copy(out, sc.rules)
	return out
}

// RunPass evaluates rules against s until no rule with an effect matches,
// the state halts, or the iteration budget is spent. s is not modified.
func (sc *Scheduler) RunPass(s state.State, passID string) PassResult {
	res := PassResult{PassID: passID, State: s, Mode: ModeIdle}
	budget := NewIterationBudget(sc.maxIterations)
	mode := ModeIdle

	transition := func(to Mode) {
		slog.Debug("engine mode", "pass", passID, "from", mode, "to", to)
		mode = to
	}
	transition(ModeEvaluating)

	for {
		if res.State.SystemState.IsHalted {
			transition(ModeHalted)
			res.Mode = ModeHalted
			return res
		}

		pending, err := pendingRules(sc.rules, res.State)
		if err != nil {
			next := res.State.Clone()
			next.SystemState.IsHalted = true
			entries := audit.Append(&next, audit.StateUnreadable(passID, err))
			res.State = next
			res.Log = append(res.Log, entries...)
			res.Err = NewStateUnreadableError(passID, err)
			transition(ModeHalted)
			res.Mode = ModeHalted

			slog.Error("state unreadable", "pass", passID, "error", err, "event", "state_unreadable")
			return res
		}
		if len(pending) == 0 {
			transition(ModeIdle)
			res.Mode = ModeIdle
			return res
		}

		if err := budget.Check(passID); err != nil {
			next := res.State.Clone()
			next.SystemState.IsHalted = true
			entries := audit.Append(&next, audit.CycleOverflow(passID, budget.Limit(), ruleIDs(pending)))
			res.State = next
			res.Log = append(res.Log, entries...)
			res.Err = NewCycleOverflowError(passID, budget.Limit())
			transition(ModeHalted)
			res.Mode = ModeHalted

			slog.Error("rule cycle overflow",
				"pass", passID,
				"limit", budget.Limit(),
				"pending", ruleIDs(pending),
				"event", "rule_cycle_overflow",
			)
			return res
		}

		transition(ModeExecuting)
		for _, rule := range pending {
			res.Fired = append(res.Fired, rule.ID)
			slog.Debug("rule fired", "pass", passID, "rule", rule.ID, "priority", rule.Priority)
			for _, action := range rule.Then {
				sc.apply(&res, rule.ID, action)
			}
		}
		res.Iterations++
		transition(ModeEvaluating)
	}
}

// apply runs one rule action against res.State, merging its log.
func (sc *Scheduler) apply(res *PassResult, rule ir.RuleID, action ir.Action) {
	switch a := action.(type) {
	case ir.SetState:
		next, err := state.Set(res.State, a.Path, a.Value)
		if err != nil {
			entry := audit.DirectSetFailed(rule, res.PassID, a.Path, err)
			entry.Seq = res.State.SystemState.LogicalClock
			res.Log = append(res.Log, entry)
			slog.Warn("direct set rejected", "rule", rule, "path", a.Path, "error", err)
			return
		}
		next.SystemState.LogicalClock++
		entries := audit.Append(&next, audit.DirectSet(rule, res.PassID, a.Path, a.Value))
		res.State = next
		res.Log = append(res.Log, entries...)

	case ir.ExecuteAct:
		r := sc.exec.Execute(res.State, act.Invocation{
			Act:    a.Act,
			Params: a.Params,
			PassID: res.PassID,
			Rule:   rule,
		})
		res.State = r.State
		res.Log = append(res.Log, r.Log...)

	default:
		slog.Warn("unknown rule action", "rule", rule, "kind", action.Kind())
	}
}
