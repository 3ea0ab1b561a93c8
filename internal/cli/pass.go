package cli

import (
	"github.com/spf13/cobra"
)

// NewPassCommand creates the pass command.
func NewPassCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pass",
		Short: "Evaluate the rule set until it settles",
		Long: `Run one rule pass: evaluate every rule against the current state,
execute the matching rules' actions in priority order, and repeat until
no rule has anything left to do.

A pass that still has matching rules after --max-iterations batches
halts the system with RULE_CYCLE_OVERFLOW and exits 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd, rootOpts)
		},
	}
	return cmd
}

func runPass(cmd *cobra.Command, opts *RootOptions) (err error) {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	p := rt.engine.RunPass(ctx)
	ack, err := rt.save(ctx)
	if err != nil {
		return err
	}

	view := passResultView{passView: newPassView(p), Save: ack}
	if err := newFormatter(cmd, opts).Success(view); err != nil {
		return err
	}
	if p.Overflowed() {
		return WrapExitError(ExitFailure, "pass halted", p.Err)
	}
	return nil
}
