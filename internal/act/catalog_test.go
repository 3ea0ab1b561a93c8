package act

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

func noop(*state.State, ir.Params, Env) ([]ir.LogEntry, error) { return nil, nil }

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Len(t, c.IDs(), 10)
	assert.Equal(t, Mint, c.IDs()[0])
	assert.Equal(t, ZRemediate, c.Remediation())

	d, err := c.Lookup(BridgeOut)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.BaseCost)
	assert.Equal(t, MetricVibration, d.Metric)
	assert.True(t, d.HasParam("sourceAccountId"))
	assert.False(t, d.HasParam("targetAccountId"))
}

func TestCatalogLookupUnknown(t *testing.T) {
	_, err := DefaultCatalog().Lookup("ACT_TELEPORT")
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, ReasonUnknownAct, f.Reason)
	assert.Equal(t, KindValidation, f.Kind())
	assert.True(t, IsValidation(err))
}

func TestNewCatalogErrors(t *testing.T) {
	ok := Descriptor{ID: "A", Metric: MetricVibration, Transition: noop}

	tests := []struct {
		name        string
		remediation ir.ActID
		descs       []Descriptor
	}{
		{"duplicate id", "A", []Descriptor{ok, ok}},
		{"missing remediation", "Z", []Descriptor{ok}},
		{"empty id", "A", []Descriptor{ok, {Metric: MetricVibration, Transition: noop}}},
		{"missing transition", "A", []Descriptor{ok, {ID: "B", Metric: MetricVibration}}},
		{"unknown metric", "A", []Descriptor{ok, {ID: "B", Metric: "BETA", Transition: noop}}},
		{"undeclared payer", "A", []Descriptor{ok, {ID: "B", Metric: MetricAlpha, Payer: "who", Transition: noop}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.remediation, tt.descs...)
			assert.Error(t, err)
		})
	}
}

func TestDescriptorCostScaling(t *testing.T) {
	c := DefaultCatalog()
	s := state.Default()

	energy, err := c.Lookup(RequestEnergy)
	require.NoError(t, err)
	cost, err := energy.Cost(s, ir.Params{"duration": ir.Number(30)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, cost)

	_, err = energy.Cost(s, ir.Params{"duration": ir.Number(0)})
	assert.Error(t, err)

	code, err := c.Lookup(ExecuteLogosCode)
	require.NoError(t, err)
	cost, err = code.Cost(s, ir.Params{"languageSpec": ir.String("javascript")})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, cost, 1e-9)
	cost, err = code.Cost(s, ir.Params{"languageSpec": ir.String("cobol")})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, cost, 1e-9)
}

func TestFailureError(t *testing.T) {
	f := &Failure{Reason: ReasonHalted, Act: Transfer, Message: "system is halted"}
	assert.Equal(t, "HALTED: system is halted (act=TRANSFER)", f.Error())
	assert.True(t, IsHalted(f))
	assert.False(t, IsInsufficientBalance(f))

	entry := f.Entry()
	assert.Equal(t, ir.StatusFail, entry.Status)
	assert.Equal(t, "HALTED", entry.Reason)
	assert.Equal(t, Transfer, entry.Act)
}
