package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state [path]",
		Short: "Print the current state or the value at a path",
		Long: `Print the restored state, or the single value at a dotted path.

Examples:
  vibe state
  vibe state accounts.ACCOUNT_BRIDGE.fiatBalance
  vibe state systemState.isHalted --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return showState(cmd, rootOpts, path)
		},
	}
	return cmd
}

func showState(cmd *cobra.Command, opts *RootOptions, path string) (err error) {
	rt, err := openRuntime(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	f := newFormatter(cmd, opts)
	f.VerboseLog("restore: %s", rt.outcome)
	return printState(f, rt.engine.State(), path)
}

// printState prints s, or the single value at path when path is set.
func printState(f *OutputFormatter, s state.State, path string) error {
	if path == "" {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		return f.Success(textView{Text: string(data) + "\n", Data: s})
	}

	v := state.Read(s, path)
	if ir.IsAbsent(v) {
		return NewExitError(ExitCommandError, fmt.Sprintf("no value at %s", path))
	}
	return f.Success(textView{
		Text: ir.Format(v) + "\n",
		Data: map[string]any{"path": path, "value": ir.ToAny(v)},
	})
}
