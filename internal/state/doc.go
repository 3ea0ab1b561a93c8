// Package state holds the economy's state tree.
//
// A State is a plain value: every transition works on a Clone and returns
// a new snapshot, so a caller holding an older snapshot never observes a
// change. Paths are dot-separated and use the JSON field names
// ("accounts.ACCOUNT_BRIDGE.fiatBalance", "systemState.isHalted").
package state
