package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/dialogue"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// NewSayCommand creates the say command.
func NewSayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "say <command...>",
		Short: "Route a line of operator dialogue to an act",
		Long: `Route a free-text operator command to an act.

Input that matches no route is recorded in the audit log as an
UNKNOWN_COMMAND failure; the state is not touched.

Accepted commands:
  ` + strings.Join(dialogue.Usage(), "\n  ") + `

Examples:
  vibe say TRANSFER USER_AUDIT_A 100 USER_AUDIT_B
  vibe say "ATM_OUT 5000"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return say(cmd, rootOpts, strings.Join(args, " "))
		},
	}
	return cmd
}

func say(cmd *cobra.Command, opts *RootOptions, input string) (err error) {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	r, sayErr := rt.engine.Say(ctx, input)
	var cmdErr *dialogue.CommandError
	if errors.As(sayErr, &cmdErr) {
		view := newInvokeView("", r)
		view.Reason = cmdErr.Message
		if err := newFormatter(cmd, opts).Success(view); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "command not routed", sayErr)
	}

	var id ir.ActID
	if c, perr := dialogue.Parse(input); perr == nil {
		id = c.Act
	}
	return reportInvoke(cmd, opts, rt, id, r)
}
