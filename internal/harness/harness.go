package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/audit"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/dialogue"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/engine"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/rules"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/testutil"
)

// Harness drives one engine through a scenario.
type Harness struct {
	engine *engine.Engine
	sink   *audit.MemorySink
	passes *testutil.SequentialPassGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh engine, an in-memory audit sink and a pass id
// sequence starting at pass-0001. The returned error covers setup problems
// (bad rules directory, rejected state override); expectation and
// assertion failures are reported on the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.logger.Debug("scenario step", "scenario", scenario.Name, "index", i, "kind", step.Kind())
		if err := h.runStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Trace = h.sink.Entries()
	result.State = h.engine.State()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	cat := act.DefaultCatalog()
	rs, err := rules.Load(s.Rules, cat)
	if err != nil {
		return nil, err
	}

	initial := state.Default()
	if len(s.State) > 0 {
		initial, err = state.Apply(initial, testutil.Overrides(s.State))
		if err != nil {
			return nil, fmt.Errorf("state overrides: %w", err)
		}
	}

	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	maxIterations := s.MaxIterations
	if maxIterations == 0 {
		maxIterations = engine.DefaultMaxIterations
	}

	h := &Harness{
		sink:   audit.NewMemorySink(),
		passes: testutil.NewSequentialPassGenerator("pass"),
		logger: testutil.DiscardLogger(),
	}
	h.engine = engine.New(initial, cat, rs,
		engine.WithSink(h.sink),
		engine.WithPassIDGenerator(h.passes),
		engine.WithSeed(seed),
		engine.WithMaxIterations(maxIterations),
		engine.WithAutoPass(s.AutoPass),
	)
	return h, nil
}

func (h *Harness) runStep(ctx context.Context, index int, step Step, result *Result) error {
	before, err := state.Encode(h.engine.State())
	if err != nil {
		return err
	}

	out := StepOutcome{Index: index, Kind: step.Kind()}
	switch out.Kind {
	case StepInvoke:
		r := h.engine.InvokeAct(ctx, ir.ActID(step.Invoke), ir.ParamsFromMap(step.Params))
		out.fromInvoke(r)

	case StepSay:
		r, err := h.engine.Say(ctx, step.Say)
		var cmdErr *dialogue.CommandError
		if err != nil && !errors.As(err, &cmdErr) {
			return err
		}
		out.fromInvoke(r)
		if cmdErr != nil {
			out.Reason = audit.ActionUnknownCommand
		}

	case StepPass:
		p := h.engine.RunPass(ctx)
		out.PassID = p.PassID
		out.Status = ir.StatusSuccess
		if p.Overflowed() {
			out.Status = ir.StatusCriticalFailure
			out.Reason = audit.ActionRuleCycleOverflow
		}
		out.Fired = p.Fired
		out.Iterations = p.Iterations

	case StepClearHalt:
		entry, ok := h.engine.ClearHalt(ctx, step.ClearHalt)
		out.PassID = entry.PassID
		out.Status = ir.StatusSuccess
		if !ok {
			out.Status = ir.StatusFail
			out.Reason = "NOT_HALTED"
		}

	default:
		return fmt.Errorf("no request in step")
	}
	out.Mode = string(h.engine.Mode())
	result.Steps = append(result.Steps, out)

	if step.Expect == nil {
		return nil
	}
	after, err := state.Encode(h.engine.State())
	if err != nil {
		return err
	}
	for _, msg := range checkExpect(index, *step.Expect, out, bytes.Equal(before, after)) {
		result.AddError(msg)
	}
	return nil
}

func (o *StepOutcome) fromInvoke(r engine.InvokeResult) {
	o.PassID = r.PassID
	o.Status = r.Status
	if r.Failure != nil {
		o.Reason = string(r.Failure.Reason)
	}
	if r.Pass != nil {
		o.Fired = r.Pass.Fired
		o.Iterations = r.Pass.Iterations
	}
}

func checkExpect(index int, e Expect, out StepOutcome, unchanged bool) []string {
	var errs []string
	fail := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("steps[%d] (%s): expected %s %v, got %v", index, out.Kind, field, want, got))
	}

	if e.Status != "" && ir.Status(e.Status) != out.Status {
		fail("status", e.Status, out.Status)
	}
	if e.Reason != "" && e.Reason != out.Reason {
		fail("reason", e.Reason, out.Reason)
	}
	if e.Mode != "" && e.Mode != out.Mode {
		fail("mode", e.Mode, out.Mode)
	}
	if e.Fired != nil {
		got := make([]string, len(out.Fired))
		for i, id := range out.Fired {
			got[i] = string(id)
		}
		if !slices.Equal(e.Fired, got) {
			fail("fired", e.Fired, got)
		}
	}
	if e.Iterations != nil && *e.Iterations != out.Iterations {
		fail("iterations", *e.Iterations, out.Iterations)
	}
	if e.Unchanged && !unchanged {
		errs = append(errs, fmt.Sprintf("steps[%d] (%s): expected state unchanged", index, out.Kind))
	}
	return errs
}
