package act

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Invocation is one request to run an act.
type Invocation struct {
	Act    ir.ActID
	Params ir.Params

	// PassID correlates the entries of one direct invocation or rule pass.
	PassID string

	// Rule is set when a rule action requested the act.
	Rule ir.RuleID
}

// Result is the outcome of Execute.
//
// On failure State is the input state, Log holds a single FAIL entry and
// Failure is non-nil. On success State carries the appended log batch and
// Status is the status of the batch's first entry.
type Result struct {
	State   state.State
	Log     []ir.LogEntry
	Status  ir.Status
	Failure *Failure
}

// OK reports whether the act ran.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Executor runs acts from a catalog.
type Executor struct {
	catalog *Catalog
	seed    uint64
}

// NewExecutor creates an executor. seed drives the deterministic random
// source handed to transitions.
func NewExecutor(catalog *Catalog, seed uint64) *Executor {
	return &Executor{catalog: catalog, seed: seed}
}

// Catalog returns the executor's catalog.
func (x *Executor) Catalog() *Catalog {
	return x.catalog
}

// Execute validates inv and runs it against s.
//
// Checks run in order: catalog lookup, required parameters, halt gate,
// cost. The transition then runs on a clone, charged before it runs
// unless the act defers its charge; its log batch is stamped
// with the advanced logical clock and appended to the clone's actLogs.
func (x *Executor) Execute(s state.State, inv Invocation) Result {
	d, err := x.catalog.Lookup(inv.Act)
	if err != nil {
		return x.fail(s, inv, err)
	}

	if err := checkParams(d, inv.Params); err != nil {
		return x.fail(s, inv, err)
	}

	if s.SystemState.IsHalted && inv.Act != x.catalog.Remediation() {
		return x.fail(s, inv, &Failure{
			Reason:  ReasonHalted,
			Message: "system is halted; only remediation may run",
		})
	}

	cost, err := d.Cost(s, inv.Params)
	if err != nil {
		return x.fail(s, inv, err)
	}

	next := s.Clone()
	if !d.ChargeAfter {
		if err := charge(&next, d, inv.Params, cost); err != nil {
			return x.fail(s, inv, err)
		}
	}

	clock := s.SystemState.LogicalClock + 1
	env := Env{
		Clock: clock,
		Cost:  cost,
		Rand:  rand.New(rand.NewPCG(x.seed, uint64(clock))),
	}
	batch, err := d.Transition(&next, inv.Params, env)
	if err != nil {
		return x.fail(s, inv, err)
	}
	if d.ChargeAfter {
		if err := charge(&next, d, inv.Params, cost); err != nil {
			return x.fail(s, inv, err)
		}
	}
	if err := state.Validate(next); err != nil {
		return x.fail(s, inv, &Failure{Reason: ReasonInsufficientBalance, Message: err.Error()})
	}

	next.SystemState.LogicalClock = clock
	for i := range batch {
		batch[i].Seq = clock
		batch[i].Act = d.ID
		batch[i].PassID = inv.PassID
		batch[i].Rule = inv.Rule
		if batch[i].Status == "" {
			batch[i].Status = ir.StatusSuccess
		}
	}
	if len(batch) > 0 {
		if batch[0].Detail == nil {
			batch[0].Detail = map[string]any{}
		}
		batch[0].Detail["cost"] = cost
		batch[0].Detail["metric"] = string(d.Metric)
	}
	next.ActLogs = append(next.ActLogs, batch...)

	status := ir.StatusSuccess
	if len(batch) > 0 {
		status = batch[0].Status
	}
	slog.Debug("act executed", "act", d.ID, "status", status, "cost", cost, "clock", clock)

	return Result{State: next, Log: batch, Status: status}
}

func (x *Executor) fail(s state.State, inv Invocation, err error) Result {
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{Reason: ReasonInvalidParam, Message: err.Error()}
	}
	f.Act = inv.Act

	entry := f.Entry()
	entry.Seq = s.SystemState.LogicalClock
	entry.PassID = inv.PassID
	entry.Rule = inv.Rule

	slog.Debug("act rejected", "act", inv.Act, "reason", f.Reason, "message", f.Message)

	return Result{State: s, Log: []ir.LogEntry{entry}, Status: ir.StatusFail, Failure: f}
}

func checkParams(d Descriptor, p ir.Params) error {
	var missing []any
	for _, decl := range d.Params {
		if !p.Has(decl.Name) {
			missing = append(missing, decl.Name)
		}
	}
	if len(missing) > 0 {
		return &Failure{
			Reason:  ReasonMissingParam,
			Message: fmt.Sprintf("missing required parameter %v", missing[0]),
			Detail:  map[string]any{"missing": missing},
		}
	}

	for _, decl := range d.Params {
		v := p[decl.Name]
		switch decl.Kind {
		case ParamNumber:
			n, ok := v.(ir.Number)
			if !ok {
				return invalidParam(decl.Name, "parameter %s must be a number, got %s", decl.Name, ir.KindName(v))
			}
			if f := float64(n); math.IsNaN(f) || math.IsInf(f, 0) {
				return invalidParam(decl.Name, "parameter %s must be finite, got %v", decl.Name, f)
			}
		case ParamString:
			if _, ok := v.(ir.String); !ok {
				return invalidParam(decl.Name, "parameter %s must be a string, got %s", decl.Name, ir.KindName(v))
			}
		}
	}
	return nil
}

func charge(s *state.State, d Descriptor, p ir.Params, cost float64) error {
	switch d.Metric {
	case MetricVibration:
		s.VibrationScore += cost
		return nil
	case MetricEnergy:
		if s.VM.TotalEnergy < cost {
			return insufficient("vm.totalEnergy", s.VM.TotalEnergy, cost)
		}
		s.VM.TotalEnergy -= cost
		return nil
	case MetricAlpha:
		payer, _ := p.Text(d.Payer)
		acc, ok := s.Accounts[payer]
		if !ok {
			return invalidParam(d.Payer, "unknown account %q", payer)
		}
		if acc.ALPHA < cost {
			return insufficient(payer+".ALPHA", acc.ALPHA, cost)
		}
		acc.ALPHA -= cost
		s.Accounts[payer] = acc
		return nil
	default:
		return fmt.Errorf("unknown cost metric %q", d.Metric)
	}
}
