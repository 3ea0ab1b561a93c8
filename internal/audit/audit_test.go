package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

func TestAppendStampsClock(t *testing.T) {
	s := state.Default()
	s.SystemState.LogicalClock = 7

	out := Append(&s, DirectSet("LIL_402", "p1", "vm.speedFactor", ir.Number(0.1)))

	require.Len(t, s.ActLogs, 1)
	assert.Equal(t, int64(7), s.ActLogs[0].Seq)
	assert.Equal(t, out, s.ActLogs)
	assert.Equal(t, ActionDirectSet, s.ActLogs[0].Action)
	assert.Equal(t, 0.1, s.ActLogs[0].Detail["value"])
}

func TestCycleOverflowEntry(t *testing.T) {
	e := CycleOverflow("p1", 16, []ir.RuleID{"A", "B"})

	assert.Equal(t, ir.StatusCriticalFailure, e.Status)
	assert.Equal(t, ActionRuleCycleOverflow, e.Action)
	assert.Equal(t, 16.0, e.Detail["max_iterations"])
	assert.Equal(t, []any{"A", "B"}, e.Detail["pending_rules"])
}

func TestDirectSetFailed(t *testing.T) {
	e := DirectSetFailed("R", "p", "vm.turbo", errors.New("unknown field"))
	assert.True(t, e.IsFailure())
	assert.Equal(t, "unknown field", e.Detail["message"])
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, []ir.LogEntry{{Action: "A"}}))
	require.NoError(t, sink.Record(ctx, []ir.LogEntry{{Action: "B"}, {Action: "C"}}))

	assert.Equal(t, []string{"A", "B", "C"}, Actions(sink.Entries()))
}

type failingSink struct{}

func (failingSink) Record(context.Context, []ir.LogEntry) error { return errors.New("disk full") }

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	first, last := NewMemorySink(), NewMemorySink()
	ms := MultiSink{first, failingSink{}, last}

	err := ms.Record(context.Background(), []ir.LogEntry{{Action: "A"}})
	assert.EqualError(t, err, "disk full")
	assert.Len(t, first.Entries(), 1)
	assert.Empty(t, last.Entries())
}

func TestFilters(t *testing.T) {
	entries := []ir.LogEntry{
		{Status: ir.StatusSuccess, Action: "MINTED"},
		{Status: ir.StatusFail, Action: "ACT_REJECTED"},
		{Status: ir.StatusSuccess, Action: "TRANSFERRED"},
	}

	assert.Equal(t, []string{"MINTED", "TRANSFERRED"}, Actions(Filter(entries, ByStatus(ir.StatusSuccess))))
	assert.Equal(t, []string{"ACT_REJECTED"}, Actions(Filter(entries, ByAction("ACT_REJECTED"))))
	assert.Empty(t, Filter(entries, ByAction("NOPE")))
}
