package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepl_HaltAndClear(t *testing.T) {
	db := tempDB(t)
	script := strings.Join([]string{
		"TRANSFER USER_AUDIT_A 100 USER_AUDIT_B",
		"REMEDIATE",
		"ATM_OUT 10",
		"clear-halt auditor",
		"clear-halt auditor",
		"state accounts.USER_AUDIT_B.ALPHA",
		"quit",
		"MINT USER_AUDIT_A 5",
	}, "\n")

	out, err := executeWithInput(t, strings.NewReader(script), "repl", "--db", db)
	require.NoError(t, err)

	assert.Contains(t, out, "TRANSFERRED")
	assert.Contains(t, out, "Z_REMEDIATE_EXECUTED")
	assert.Contains(t, out, "reason: HALTED")
	assert.Contains(t, out, "HALT_CLEARED")
	assert.Contains(t, out, "Error [NOT_HALTED]")
	assert.Contains(t, out, "50100\n")
	assert.NotContains(t, out, "MINTED", "lines after quit are ignored")

	// Saved after the transfer and after the clear; never while halted.
	out, err = execute(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)
	snaps := decode(t, out)["snapshots"].([]any)
	require.Len(t, snaps, 2)
	for _, s := range snaps {
		assert.Equal(t, false, s.(map[string]any)["halted"])
	}
	assert.Equal(t, float64(3), snaps[1].(map[string]any)["clock"])
}

func TestRepl_UnknownCommandAndPass(t *testing.T) {
	script := "HELLO WORLD\npass\nlog\nstate no.such.path\nclear-halt\n"

	out, err := executeWithInput(t, strings.NewReader(script), "repl")
	require.NoError(t, err, "the session ends at EOF")

	assert.Contains(t, out, "UNKNOWN_COMMAND")
	assert.Contains(t, out, "iteration(s)")
	assert.Contains(t, out, "Error [COMMAND]: no value at no.such.path")
	assert.Contains(t, out, "Error [USAGE]")
}
