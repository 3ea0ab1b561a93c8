package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/compiler"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

func TestDefault(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)
	require.Len(t, rules, 5)

	ids := make([]ir.RuleID, len(rules))
	prios := make([]int, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
		prios[i] = r.Priority
	}
	assert.Equal(t, []ir.RuleID{"LIL_XXL", "LIL_020", "LIL_401", "LIL_402", "LIL_ZZZ"}, ids)
	assert.Equal(t, []int{95, 80, 70, 65, 100}, prios)
}

func TestDefault_Contents(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	xxl := rules[0]
	assert.Equal(t, "Living threshold", xxl.Name)
	assert.Equal(t, []ir.Condition{{
		Path:      "accounts.ACCOUNT_BRIDGE.fiatBalance",
		Op:        ir.OpLess,
		Threshold: ir.Number(state.MinimumLivingThreshold),
	}}, xxl.When)
	assert.Equal(t, []ir.Action{ir.ExecuteAct{Act: act.BridgeOut, Params: ir.Params{
		"sourceAccountId": ir.String(state.AccountAuditB),
		"amount":          ir.Number(state.MinimumLivingThreshold),
	}}}, xxl.Then)

	integrity := rules[1]
	assert.Equal(t, ir.String("000000000000"), integrity.When[0].Threshold)
	assert.Equal(t, []ir.Action{ir.SetState{Path: "systemState.isHalted", Value: ir.Bool(true)}}, integrity.Then)

	assert.Equal(t, ir.Number(0.85), rules[2].When[0].Threshold)
	assert.Equal(t, []ir.Action{ir.SetState{Path: "vm.speedFactor", Value: ir.Number(0.1)}}, rules[3].Then)

	zzz := rules[4]
	assert.Equal(t, ir.Condition{Path: "vibrationScore", Op: ir.OpGreater, Threshold: ir.Number(10000)}, zzz.When[0])
	assert.Equal(t, ir.ExecuteAct{Act: act.ZRemediate, Params: ir.Params{
		"triggeringLILId":   ir.String("LIL_ZZZ"),
		"remediationAction": ir.String("HALT_AND_RESTART"),
	}}, zzz.Then[0])
}

func TestDefault_ValidAgainstCatalog(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)
	assert.Empty(t, compiler.Validate(rules, act.DefaultCatalog()))
}

func TestDefault_FeedbackLoops(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	warnings := compiler.AnalyzeCycles(rules, act.DefaultCatalog())
	require.Len(t, warnings, 2)
	assert.Equal(t, []ir.RuleID{"LIL_XXL", "LIL_XXL"}, warnings[0].Path)
	assert.Equal(t, []ir.RuleID{"LIL_ZZZ", "LIL_ZZZ"}, warnings[1].Path)
}

func TestLoad_EmptyDirUsesDefault(t *testing.T) {
	rules, err := Load("", act.DefaultCatalog())
	require.NoError(t, err)
	assert.Len(t, rules, 5)
}

func TestLoad_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lil.cue"), []byte(Source()), 0o644))

	rules, err := Load(dir, act.DefaultCatalog())
	require.NoError(t, err)
	want, err := Default()
	require.NoError(t, err)
	assert.Equal(t, want, rules)
}

func TestLoad_InvalidRuleSet(t *testing.T) {
	dir := t.TempDir()
	src := `package rules

rules: [{
	id:       "BAD"
	priority: 1
	when: [{path: "vibrationScore", op: ">", value: 1}]
	then: [{act: "ACT_TELEPORT"}]
}]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(src), 0o644))

	_, err := Load(dir, act.DefaultCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rule set")
	assert.Contains(t, err.Error(), compiler.ErrUnknownAct)

	var verr compiler.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, ir.RuleID("BAD"), verr.Rule)
}

func TestLoad_CompileError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("package rules\n\nrules: []\n"), 0o644))

	_, err := Load(dir, act.DefaultCatalog())
	require.Error(t, err)

	var ce *compiler.CompileError
	assert.ErrorAs(t, err, &ce)
}
