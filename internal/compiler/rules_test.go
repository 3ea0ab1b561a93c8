package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

const twoRules = `
rules: [
	{
		id:       "LIL_ZZZ"
		name:     "Z-Function trigger"
		priority: 100
		when: [{path: "vibrationScore", op: ">", value: 10000}]
		then: [{act: "ACT_Z_REMEDIATE", params: {triggeringLILId: "LIL_ZZZ", remediationAction: "HALT_AND_RESTART"}}]
	},
	{
		id:       "LIL_402"
		priority: 65
		when: [{path: "vm.totalEnergy", op: "<", value: 1000}]
		then: [{set: "vm.speedFactor", value: 0.1}]
	},
]
`

func TestCompileString(t *testing.T) {
	rules, err := CompileString(twoRules, "rules.cue")
	require.NoError(t, err)
	require.Len(t, rules, 2)

	zzz := rules[0]
	assert.Equal(t, ir.RuleID("LIL_ZZZ"), zzz.ID)
	assert.Equal(t, "Z-Function trigger", zzz.Name)
	assert.Equal(t, 100, zzz.Priority)
	require.Len(t, zzz.When, 1)
	assert.Equal(t, ir.Condition{Path: "vibrationScore", Op: ir.OpGreater, Threshold: ir.Number(10000)}, zzz.When[0])
	require.Len(t, zzz.Then, 1)
	assert.Equal(t, ir.ExecuteAct{Act: act.ZRemediate, Params: ir.Params{
		"triggeringLILId":   ir.String("LIL_ZZZ"),
		"remediationAction": ir.String("HALT_AND_RESTART"),
	}}, zzz.Then[0])

	throttle := rules[1]
	assert.Equal(t, "LIL_402", throttle.Name, "name defaults to the id")
	assert.Equal(t, ir.Condition{Path: "vm.totalEnergy", Op: ir.OpLess, Threshold: ir.Number(1000)}, throttle.When[0])
	assert.Equal(t, ir.SetState{Path: "vm.speedFactor", Value: ir.Number(0.1)}, throttle.Then[0])
}

func TestCompileString_ScalarKinds(t *testing.T) {
	rules, err := CompileString(`
rules: [{
	id:       "KINDS"
	priority: 1
	when: [
		{path: "store.contentHash", op: "==", value: "000000000000"},
		{path: "systemState.isHalted", op: "==", value: false},
	]
	then: [{act: "MINT", params: {targetAccountId: "USER_AUDIT_A", amount: 5, extra: {nested: true}}}]
}]
`, "kinds.cue")
	require.NoError(t, err)
	require.Len(t, rules, 1)

	assert.Equal(t, ir.String("000000000000"), rules[0].When[0].Threshold)
	assert.Equal(t, ir.Bool(false), rules[0].When[1].Threshold)

	exec, ok := rules[0].Then[0].(ir.ExecuteAct)
	require.True(t, ok)
	assert.Equal(t, ir.Number(5), exec.Params["amount"])
	assert.IsType(t, ir.Composite{}, exec.Params["extra"])
}

func TestCompileString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "missing rules list",
			src:   `other: 1`,
			field: "rules",
		},
		{
			name:  "empty rules list",
			src:   `rules: []`,
			field: "rules",
		},
		{
			name:  "missing id",
			src:   `rules: [{priority: 1, when: [], then: []}]`,
			field: "id",
		},
		{
			name:  "missing priority",
			src:   `rules: [{id: "R", when: [], then: []}]`,
			field: "priority",
		},
		{
			name:  "fractional priority",
			src:   `rules: [{id: "R", priority: 1.5, when: [], then: []}]`,
			field: "priority",
		},
		{
			name:  "missing when",
			src:   `rules: [{id: "R", priority: 1, then: []}]`,
			field: "when",
		},
		{
			name:  "unknown operator",
			src:   `rules: [{id: "R", priority: 1, when: [{path: "vibrationScore", op: "<=", value: 1}], then: []}]`,
			field: "when.op",
		},
		{
			name:  "condition without value",
			src:   `rules: [{id: "R", priority: 1, when: [{path: "vibrationScore", op: "<"}], then: []}]`,
			field: "value",
		},
		{
			name:  "action with act and set",
			src:   `rules: [{id: "R", priority: 1, when: [], then: [{act: "MINT", set: "vm.cycle", value: 1}]}]`,
			field: "then",
		},
		{
			name:  "action with neither",
			src:   `rules: [{id: "R", priority: 1, when: [], then: [{params: {}}]}]`,
			field: "then",
		},
		{
			name:  "null threshold",
			src:   `rules: [{id: "R", priority: 1, when: [{path: "vibrationScore", op: "==", value: null}], then: []}]`,
			field: "value",
		},
		{
			name:  "non-concrete value",
			src:   `rules: [{id: "R", priority: 1, when: [{path: "vibrationScore", op: "<", value: number}], then: []}]`,
			field: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src, "bad.cue")
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileString_SyntaxError(t *testing.T) {
	_, err := CompileString(`rules: [{id: "R"`, "broken.cue")
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	src := "package rules\n" + twoRules
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.cue"), []byte(src), 0o644))

	rules, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, ir.RuleID("LIL_ZZZ"), rules[0].ID)
	assert.Equal(t, ir.RuleID("LIL_402"), rules[1].ID)
}

func TestLoadDir_NotFound(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rules.cue")
	require.NoError(t, os.WriteFile(file, []byte("package rules\n"), 0o644))

	_, err := LoadDir(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDigest(t *testing.T) {
	rules, err := CompileString(twoRules, "rules.cue")
	require.NoError(t, err)

	d1, err := Digest(rules)
	require.NoError(t, err)
	d2, err := Digest(rules)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)

	rules[1].Priority = 66
	d3, err := Digest(rules)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestCompileError_Error(t *testing.T) {
	err := &CompileError{Field: "priority", Message: "priority is required"}
	assert.Equal(t, "priority: priority is required", err.Error())
}
