package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil, act.DefaultCatalog()))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	rules := []ir.Rule{
		throttleRule(),
		{
			ID:       "HALT_ON_SLOW",
			Priority: 1,
			When:     []ir.Condition{{Path: "vm.speedFactor", Op: ir.OpLess, Threshold: ir.Number(0.5)}},
			Then:     []ir.Action{ir.SetState{Path: "systemState.isHalted", Value: ir.Bool(true)}},
		},
	}
	assert.Empty(t, AnalyzeCycles(rules, act.DefaultCatalog()))
}

func TestAnalyzeCycles_SelfLoopThroughAct(t *testing.T) {
	rules := []ir.Rule{
		throttleRule(),
		{
			ID:       "LIL_ZZZ",
			Priority: 100,
			When:     []ir.Condition{{Path: "vibrationScore", Op: ir.OpGreater, Threshold: ir.Number(10000)}},
			Then: []ir.Action{ir.ExecuteAct{Act: act.ZRemediate, Params: ir.Params{
				"triggeringLILId":   ir.String("LIL_ZZZ"),
				"remediationAction": ir.String("HALT_AND_RESTART"),
			}}},
		},
	}

	warnings := AnalyzeCycles(rules, act.DefaultCatalog())
	require.Len(t, warnings, 1)
	assert.Equal(t, []ir.RuleID{"LIL_ZZZ", "LIL_ZZZ"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "re-trigger itself")
}

func TestAnalyzeCycles_PrefixOverlap(t *testing.T) {
	// BRIDGE writes "accounts", which contains the trigger path.
	rules := []ir.Rule{{
		ID:       "BRIDGE",
		Priority: 95,
		When:     []ir.Condition{{Path: "accounts.ACCOUNT_BRIDGE.fiatBalance", Op: ir.OpLess, Threshold: ir.Number(50000)}},
		Then: []ir.Action{ir.ExecuteAct{Act: act.BridgeOut, Params: ir.Params{
			"sourceAccountId": ir.String("USER_AUDIT_B"),
			"amount":          ir.Number(50000),
		}}},
	}}

	warnings := AnalyzeCycles(rules, act.DefaultCatalog())
	require.Len(t, warnings, 1)
	assert.Equal(t, []ir.RuleID{"BRIDGE", "BRIDGE"}, warnings[0].Path)
}

func TestAnalyzeCycles_TwoRuleLoop(t *testing.T) {
	rules := []ir.Rule{
		{
			ID:       "B_ENERGY",
			Priority: 1,
			When:     []ir.Condition{{Path: "vm.speedFactor", Op: ir.OpLess, Threshold: ir.Number(0.5)}},
			Then: []ir.Action{ir.ExecuteAct{Act: act.RequestEnergy, Params: ir.Params{
				"deviceId": ir.String("USER_AUDIT_A"),
				"duration": ir.Number(1),
			}}},
		},
		throttleRule(),
	}

	warnings := AnalyzeCycles(rules, act.DefaultCatalog())
	require.Len(t, warnings, 1)
	assert.Equal(t, []ir.RuleID{"B_ENERGY", "LIL_402", "B_ENERGY"}, warnings[0].Path)
	assert.Equal(t, "potential feedback loop: B_ENERGY -> LIL_402 -> B_ENERGY", warnings[0].Message)
}

func TestAnalyzeCycles_UnknownActIgnored(t *testing.T) {
	rules := []ir.Rule{{
		ID:       "GHOST",
		Priority: 1,
		When:     []ir.Condition{{Path: "vibrationScore", Op: ir.OpGreater, Threshold: ir.Number(0)}},
		Then:     []ir.Action{ir.ExecuteAct{Act: "ACT_GHOST"}},
	}}
	assert.Empty(t, AnalyzeCycles(rules, act.DefaultCatalog()))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, overlaps("accounts", "accounts.USER_AUDIT_A.ALPHA"))
	assert.True(t, overlaps("vm.totalEnergy", "vm"))
	assert.True(t, overlaps("vibrationScore", "vibrationScore"))
	assert.False(t, overlaps("vm.totalEnergy", "vm.total"))
	assert.False(t, overlaps("store", "storeX"))
}
