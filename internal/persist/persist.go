// Package persist is the boundary between the engine and durable storage.
//
// The engine never talks to a store directly. It hands snapshots to a
// Persister through Save, which refuses to write while the system is
// halted, and obtains its starting state through Restore, which never
// fails: an unreadable store yields the default state with the vibration
// score raised past the remediation threshold.
package persist

import (
	"context"
	"log/slog"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// RemediationThreshold is the vibration score above which LIL_ZZZ fires.
const RemediationThreshold = 10000

// RestoreSentinel is the vibration score of a state restored after a
// load failure. It sits just above the LIL_ZZZ trigger so the first pass
// runs remediation.
const RestoreSentinel = RemediationThreshold + 1

// RemediationPending reports whether s is over the remediation threshold
// and not yet halted. A halted state is never saved, so a process that
// halted leaves the last pre-halt snapshot behind; restoring it puts the
// next process in this position.
func RemediationPending(s state.State) bool {
	return !s.SystemState.IsHalted && s.VibrationScore > RemediationThreshold
}

// Persister is the external store contract.
type Persister interface {
	// Load returns the last saved state. found is false when nothing
	// has been saved yet.
	Load(ctx context.Context) (s state.State, found bool, err error)

	// Save stores s, replacing the previous snapshot.
	Save(ctx context.Context, s state.State) error
}

// Ack acknowledges a save request.
type Ack struct {
	Saved bool  `json:"saved"`
	Clock int64 `json:"clock"`

	// Skipped is set when the request was dropped because the system is
	// halted.
	Skipped bool `json:"skipped,omitempty"`
}

// Save writes s through p unless s is halted.
func Save(ctx context.Context, p Persister, s state.State) (Ack, error) {
	clock := s.SystemState.LogicalClock
	if s.SystemState.IsHalted {
		slog.Warn("save skipped: system halted", "clock", clock)
		return Ack{Clock: clock, Skipped: true}, nil
	}
	if err := p.Save(ctx, s); err != nil {
		return Ack{Clock: clock}, err
	}
	slog.Debug("state saved", "clock", clock)
	return Ack{Saved: true, Clock: clock}, nil
}

// Outcome describes how Restore obtained its state.
type Outcome string

const (
	OutcomeLoaded  Outcome = "LOADED"
	OutcomeDefault Outcome = "DEFAULT"
	OutcomeFailed  Outcome = "FAILED"
)

// Restore loads the starting state from p.
func Restore(ctx context.Context, p Persister) (state.State, Outcome) {
	s, found, err := p.Load(ctx)
	switch {
	case err != nil:
		slog.Error("restore failed; raising vibration sentinel", "error", err, "vibration", RestoreSentinel)
		fallback := state.Default()
		fallback.VibrationScore = RestoreSentinel
		return fallback, OutcomeFailed
	case !found:
		slog.Info("restored default state")
		return state.Default(), OutcomeDefault
	default:
		slog.Info("restored saved state", "clock", s.SystemState.LogicalClock, "halted", s.SystemState.IsHalted)
		if RemediationPending(s) {
			slog.Warn("restored snapshot is above the remediation threshold; the next rule pass will halt the system",
				"vibration", s.VibrationScore,
				"threshold", RemediationThreshold,
				"clock", s.SystemState.LogicalClock,
			)
		}
		return s, OutcomeLoaded
	}
}
