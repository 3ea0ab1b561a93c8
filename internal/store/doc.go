// Package store provides SQLite-backed durable storage for the audit
// engine.
//
// Two tables:
//   - snapshots: every saved state, newest last. Load returns the newest.
//   - audit_log: append-only copy of every committed log entry, in commit
//     order.
//
// Store implements persist.Persister and audit.Sink, so it plugs in at
// the persistence boundary and as the engine's audit sink.
//
// # Ordering
//
// Rows are read in insertion order (ORDER BY id). Entry order never
// depends on wall time; seq carries the logical clock of the commit.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Snapshots are verified against their stored digest on load; a mismatch
// is a load error, which the persistence boundary turns into a fail-safe
// restore.
package store
