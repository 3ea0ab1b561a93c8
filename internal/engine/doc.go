// Package engine implements the LIL rule evaluator, the pass scheduler and
// the single-writer engine that owns the current state.
//
// ARCHITECTURE:
//
// Single-Writer:
// Exactly one invocation (a direct act or a full rule pass, including its
// fixpoint loop) runs at a time. Engine methods hold a mutex for the whole
// invocation; Run offers the same guarantee as a FIFO request loop for
// callers that prefer to submit work from several goroutines.
//
// Pass Flow:
//  1. MatchedRules scans every rule against one snapshot
//  2. Matches are ordered by priority, declaration order breaking ties
//  3. Each rule's actions run against the already-updated state
//  4. The loop re-evaluates until nothing fires, the state halts, or the
//     iteration budget is spent
//
// When the budget is spent with rules still matching, the scheduler
// forces isHalted and records RULE_CYCLE_OVERFLOW. A halted engine stays
// halted until an operator calls ClearHalt.
//
// Determinism:
// Rules evaluate in declaration order, the act executor draws randomness
// from a generator seeded with the engine seed and the logical clock, and
// log entries carry the logical clock, never wall-clock time.
package engine
