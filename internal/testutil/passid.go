package testutil

import (
	"fmt"
	"sync"
)

// SequentialPassGenerator hands out pass ids "<prefix>-0001", "<prefix>-0002", ...
//
// Unlike engine.FixedGenerator it never runs out, and it can be reset so the
// same scenario yields byte-identical audit traces on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialPassGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialPassGenerator creates a generator. An empty prefix means "pass".
func NewSequentialPassGenerator(prefix string) *SequentialPassGenerator {
	if prefix == "" {
		prefix = "pass"
	}
	return &SequentialPassGenerator{prefix: prefix}
}

// Generate returns the next id.
//
// Implements engine.PassIDGenerator.
func (g *SequentialPassGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Issued returns how many ids have been generated since the last reset.
func (g *SequentialPassGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts the sequence at 1.
func (g *SequentialPassGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
