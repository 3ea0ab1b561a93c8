package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/audit"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/engine"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/persist"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/rules"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/store"
)

// runtime is the engine wired to its persistence for one command.
type runtime struct {
	engine  *engine.Engine
	store   *store.Store // nil without --db
	saver   persist.Persister
	entries *audit.MemorySink
	outcome persist.Outcome
}

// loadRules compiles the rule set named by opts against the default catalog.
func loadRules(opts *RootOptions) (*act.Catalog, []ir.Rule, error) {
	cat := act.DefaultCatalog()
	rs, err := rules.Load(opts.RulesDir, cat)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading rules", err)
	}
	return cat, rs, nil
}

// openRuntime restores the last saved state and builds the engine.
//
// With --db the sqlite store is both the Persister and an audit sink.
// Without it an in-memory stub stands in, so every command starts from
// the default state.
func openRuntime(ctx context.Context, opts *RootOptions) (*runtime, error) {
	cat, rs, err := loadRules(opts)
	if err != nil {
		return nil, err
	}

	rt := &runtime{entries: audit.NewMemorySink()}
	sinks := audit.MultiSink{rt.entries}
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "opening database", err)
		}
		rt.store = st
		rt.saver = st
		sinks = append(sinks, st)
	} else {
		rt.saver = persist.NewStub()
	}

	initial, outcome := persist.Restore(ctx, rt.saver)
	rt.outcome = outcome

	rt.engine = engine.New(initial, cat, rs,
		engine.WithSink(sinks),
		engine.WithSeed(opts.Seed),
		engine.WithMaxIterations(opts.MaxIterations),
		engine.WithAutoPass(opts.AutoPass),
	)
	slog.Debug("runtime ready", "db", opts.DB, "restore", outcome, "rules", len(rs))
	return rt, nil
}

// save persists the engine's current state. A halted state is not saved.
func (rt *runtime) save(ctx context.Context) (persist.Ack, error) {
	ack, err := persist.Save(ctx, rt.saver, rt.engine.State())
	if err != nil {
		return ack, WrapExitError(ExitCommandError, "saving state", err)
	}
	return ack, nil
}

// requireStore fails commands that only make sense with a database.
func (rt *runtime) requireStore() error {
	if rt.store == nil {
		return NewExitError(ExitCommandError, "this command needs --db (or VIBE_DB)")
	}
	return nil
}

func (rt *runtime) Close() error {
	if rt.store == nil {
		return nil
	}
	return rt.store.Close()
}

// closeRuntime closes rt and folds a close error into err.
func closeRuntime(rt *runtime, err *error) {
	if cerr := rt.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}
