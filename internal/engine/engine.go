package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/audit"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/dialogue"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Engine owns the current state and serializes every invocation.
//
// Thread-safety model:
//   - InvokeAct, RunPass, ClearHalt, State, Load: safe from any goroutine;
//     each holds the engine mutex for the full invocation
//   - Submit: safe from any goroutine; requires a running Run loop
//   - Run: must be called from exactly one goroutine
//
// INVARIANTS:
//   - rule order NEVER changes after construction
//   - the act catalog and rule set are never mutated at runtime
type Engine struct {
	mu      sync.Mutex
	current state.State
	mode    Mode

	exec    *act.Executor
	sched   *Scheduler
	passGen PassIDGenerator
	sink    audit.Sink
	queue   *requestQueue

	seed          uint64
	maxIterations int
	autoPass      bool
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxIterations sets the iteration cap of a rule pass.
//
// Default: 16 (DefaultMaxIterations)
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithSeed sets the seed of the deterministic random source.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithSink sets where log entries are recorded, in addition to actLogs.
func WithSink(sink audit.Sink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithPassIDGenerator overrides the UUIDv7 pass id generator.
func WithPassIDGenerator(g PassIDGenerator) EngineOption {
	return func(e *Engine) {
		e.passGen = g
	}
}

// WithAutoPass runs a rule pass after every successful act invocation.
func WithAutoPass(enabled bool) EngineOption {
	return func(e *Engine) {
		e.autoPass = enabled
	}
}

// New creates an Engine holding initial. The catalog and rules are
// treated as immutable configuration.
func New(initial state.State, catalog *act.Catalog, rules []ir.Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		current:       initial.Clone(),
		passGen:       UUIDv7Generator{},
		queue:         newRequestQueue(),
		seed:          1,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = act.NewExecutor(catalog, e.seed)
	e.sched = NewScheduler(rules, e.exec, e.maxIterations)
	e.mode = modeOf(e.current)
	return e
}

// InvokeResult is the outcome of InvokeAct.
type InvokeResult struct {
	PassID  string
	State   state.State
	Log     []ir.LogEntry
	Status  ir.Status
	Failure *act.Failure

	// Pass is set when auto-pass ran after a successful act.
	Pass *PassResult
}

// OK reports whether the act ran.
func (r InvokeResult) OK() bool {
	return r.Failure == nil
}

// InvokeAct runs one act against the current state.
func (e *Engine) InvokeAct(ctx context.Context, id ir.ActID, params ir.Params) InvokeResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	passID := e.passGen.Generate()
	r := e.exec.Execute(e.current, act.Invocation{Act: id, Params: params, PassID: passID})
	e.current = r.State
	e.record(ctx, r.Log)

	res := InvokeResult{
		PassID:  passID,
		Log:     r.Log,
		Status:  r.Status,
		Failure: r.Failure,
	}
	if r.OK() {
		slog.Info("act invoked", "act", id, "status", r.Status, "pass", passID)
	} else {
		slog.Info("act rejected", "act", id, "reason", r.Failure.Reason, "pass", passID)
	}

	if r.OK() && e.autoPass {
		p := e.runPassLocked(ctx)
		res.Pass = &p
	}

	e.mode = modeOf(e.current)
	res.State = e.current.Clone()
	return res
}

// Say routes one line of operator dialogue to an act. Input that maps to
// no act is recorded as an UNKNOWN_COMMAND failure on the sink only; the
// state is not touched. The returned error is the *dialogue.CommandError.
func (e *Engine) Say(ctx context.Context, input string) (InvokeResult, error) {
	cmd, err := dialogue.Parse(input)
	if err == nil {
		return e.InvokeAct(ctx, cmd.Act, cmd.Params), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entry := audit.UnknownCommand(input, e.current.SystemState.LogicalClock)
	entry.PassID = e.passGen.Generate()
	e.record(ctx, []ir.LogEntry{entry})
	slog.Info("dialogue rejected", "input", input, "error", err)

	return InvokeResult{
		PassID: entry.PassID,
		State:  e.current.Clone(),
		Log:    []ir.LogEntry{entry},
		Status: ir.StatusFail,
	}, err
}

// RunPass runs one rule-evaluation pass against the current state.
func (e *Engine) RunPass(ctx context.Context) PassResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runPassLocked(ctx)
}

func (e *Engine) runPassLocked(ctx context.Context) PassResult {
	passID := e.passGen.Generate()
	res := e.sched.RunPass(e.current, passID)
	e.current = res.State
	e.mode = res.Mode
	e.record(ctx, res.Log)

	slog.Info("pass complete",
		"pass", passID,
		"iterations", res.Iterations,
		"fired", len(res.Fired),
		"mode", res.Mode,
	)

	res.State = e.current.Clone()
	return res
}

// ClearHalt lowers the halt flag. This is the operator action that ends
// the HALTED state; the engine never recovers on its own. Returns false if
// the engine was not halted.
func (e *Engine) ClearHalt(ctx context.Context, operator string) (ir.LogEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.current.SystemState.IsHalted {
		return ir.LogEntry{}, false
	}

	next := e.current.Clone()
	next.SystemState.IsHalted = false
	next.SystemState.LogicalClock++
	entries := audit.Append(&next, audit.HaltCleared(e.passGen.Generate(), operator))
	e.current = next
	e.mode = ModeIdle
	e.record(ctx, entries)

	slog.Warn("halt cleared", "operator", operator, "clock", next.SystemState.LogicalClock)
	return entries[0], true
}

// State returns a copy of the current state.
func (e *Engine) State() state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// Mode returns IDLE or HALTED; the transient modes are only observable
// inside a pass.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Load replaces the current state, e.g. after a restore or import.
func (e *Engine) Load(s state.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = s.Clone()
	e.mode = modeOf(e.current)
}

// Rules returns the engine's rule set in declaration order.
func (e *Engine) Rules() []ir.Rule {
	return e.sched.Rules()
}

// Catalog returns the engine's act catalog.
func (e *Engine) Catalog() *act.Catalog {
	return e.exec.Catalog()
}

func (e *Engine) record(ctx context.Context, entries []ir.LogEntry) {
	if e.sink == nil || len(entries) == 0 {
		return
	}
	// The in-memory state stays authoritative; a sink failure is logged
	// and the invocation still completes.
	if err := e.sink.Record(ctx, entries); err != nil {
		slog.Error("audit sink failed", "entries", len(entries), "error", err)
	}
}

func modeOf(s state.State) Mode {
	if s.SystemState.IsHalted {
		return ModeHalted
	}
	return ModeIdle
}
