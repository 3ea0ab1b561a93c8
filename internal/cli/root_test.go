package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "vibe", cmd.Use)
	assert.Contains(t, cmd.Long, "VIBE_*")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"invoke", "say", "pass", "state", "log", "history", "rules", "export", "import", "repl", "scenario"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestRulesSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"list", "check"} {
		sub, _, err := cmd.Find([]string{"rules", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	flags := cmd.PersistentFlags()

	verboseFlag := flags.Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	defaults := map[string]string{
		"format":         "text",
		"db":             "",
		"rules":          "",
		"max-iterations": "16",
		"seed":           "1",
		"auto-pass":      "false",
	}
	for name, def := range defaults {
		f := flags.Lookup(name)
		require.NotNil(t, f, "flag --%s", name)
		assert.Equal(t, def, f.DefValue, "flag --%s", name)
	}
}

func TestLogCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)

	for _, name := range []string{"status", "act", "action", "rule", "pass", "since-seq", "limit"} {
		assert.NotNil(t, logCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestInvokeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	invokeCmd, _, err := cmd.Find([]string{"invoke"})
	require.NoError(t, err)

	paramsFlag := invokeCmd.Flags().Lookup("params")
	require.NotNil(t, paramsFlag)
	assert.Equal(t, "", paramsFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "state", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestMaxIterationsMustBePositive(t *testing.T) {
	_, err := execute(t, "pass", "--max-iterations", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
