package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// TraceSnapshot is the golden form of a scenario run: the full audit trace
// plus a short summary of the final state.
type TraceSnapshot struct {
	Scenario string        `json:"scenario"`
	Trace    []ir.LogEntry `json:"trace"`
	Final    FinalSummary  `json:"final"`
}

// FinalSummary is the part of the final state every golden file records.
type FinalSummary struct {
	LogicalClock   int64   `json:"logical_clock"`
	Halted         bool    `json:"halted"`
	VibrationScore float64 `json:"vibration_score"`
}

// Snapshot builds the golden form of result.
func Snapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		Scenario: name,
		Trace:    result.Trace,
		Final: FinalSummary{
			LogicalClock:   result.State.SystemState.LogicalClock,
			Halted:         result.State.SystemState.IsHalted,
			VibrationScore: result.State.VibrationScore,
		},
	}
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline. Detail maps serialize with sorted keys.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/<scenario.Name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(Snapshot(name, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
