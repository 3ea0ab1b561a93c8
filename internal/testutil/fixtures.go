package testutil

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SilenceLogs routes the default logger to io.Discard for the duration of
// the test.
func SilenceLogs(t testing.TB) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(DiscardLogger())
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// Overrides converts path/value pairs into a Delta ordered by path.
func Overrides(values map[string]any) state.Delta {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	d := make(state.Delta, 0, len(paths))
	for _, p := range paths {
		d = append(d, state.Assignment{Path: p, Value: ir.FromAny(values[p])})
	}
	return d
}

// StateWith returns the default state with values written over it.
// Fails the test if any path is rejected by the state store.
func StateWith(t testing.TB, values map[string]any) state.State {
	t.Helper()
	s, err := state.Apply(state.Default(), Overrides(values))
	require.NoError(t, err, "apply fixture overrides")
	return s
}

// Halted returns the default state with the halt flag raised.
func Halted(t testing.TB) state.State {
	t.Helper()
	return StateWith(t, map[string]any{"systemState.isHalted": true})
}
