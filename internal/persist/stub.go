package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Stub is an in-memory Persister that logs every call. It holds the
// encoded snapshot, so loads return an independent copy.
type Stub struct {
	mu       sync.Mutex
	snapshot []byte
	saves    int
	loadErr  error
}

// NewStub returns an empty stub.
func NewStub() *Stub {
	return &Stub{}
}

// FailLoads makes every subsequent Load return err (nil restores normal
// behaviour).
func (p *Stub) FailLoads(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadErr = err
}

// Load implements Persister.
func (p *Stub) Load(_ context.Context) (state.State, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadErr != nil {
		slog.Info("stub load", "error", p.loadErr)
		return state.State{}, false, p.loadErr
	}
	if p.snapshot == nil {
		slog.Info("stub load", "found", false)
		return state.State{}, false, nil
	}
	s, err := state.Decode(p.snapshot)
	if err != nil {
		return state.State{}, false, err
	}
	slog.Info("stub load", "found", true, "clock", s.SystemState.LogicalClock)
	return s, true, nil
}

// Save implements Persister.
func (p *Stub) Save(_ context.Context, s state.State) error {
	data, err := state.Encode(s)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = data
	p.saves++
	slog.Info("stub save", "clock", s.SystemState.LogicalClock, "bytes", len(data))
	return nil
}

// Saves reports how many snapshots were written.
func (p *Stub) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
