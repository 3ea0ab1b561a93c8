// Package act implements the act catalog and the act executor.
//
// An act is a named, deterministic state transition with a declared cost.
// The Catalog is built once at startup and never mutated; the Executor
// validates an invocation, enforces the halt gate and the cost, and runs
// the transition on a clone of the input state. A failed execution
// returns the input state untouched together with a FAIL log entry.
package act
