// Package ir provides the shared vocabulary types for the vibe engine.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. Rules, acts and log entries are
// expressed here so the evaluator, the act executor and the persistence
// layer agree on one representation.
//
// Key design constraints:
//   - Values are sealed: Absent, String, Number, Bool and Composite only
//   - An Absent value never satisfies a condition
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
