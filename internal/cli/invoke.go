package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/engine"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Params string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <act> [name=value ...]",
		Short: "Run one act against the current state",
		Long: `Run one act from the catalog against the current state.

Parameters are given as name=value pairs (numbers and true/false are
typed automatically) or as a JSON object with --params.

Exit codes:
  0 - act succeeded
  1 - act rejected (the state is unchanged)
  2 - command error

Examples:
  vibe invoke TRANSFER sourceAccountId=USER_AUDIT_A targetAccountId=USER_AUDIT_B amount=100
  vibe invoke MINT --params '{"targetAccountId":"USER_AUDIT_A","amount":500}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeAct(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&opts.Params, "params", "", "act parameters as a JSON object")

	return cmd
}

func invokeAct(cmd *cobra.Command, opts *InvokeOptions, actID string, pairs []string) (err error) {
	params, err := parseParams(opts.Params, pairs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	id := ir.ActID(ir.NormalizeID(actID))
	r := rt.engine.InvokeAct(ctx, id, params)
	return reportInvoke(cmd, opts.RootOptions, rt, id, r)
}

// reportInvoke saves, prints the outcome and maps a rejection to exit 1.
func reportInvoke(cmd *cobra.Command, opts *RootOptions, rt *runtime, id ir.ActID, r engine.InvokeResult) error {
	ctx := cmd.Context()
	ack, err := rt.save(ctx)
	if err != nil {
		return err
	}

	view := newInvokeView(id, r)
	view.Save = ack
	if err := newFormatter(cmd, opts).Success(view); err != nil {
		return err
	}

	if !r.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("act rejected: %s", r.Failure.Reason))
	}
	if r.Pass != nil && r.Pass.Overflowed() {
		return WrapExitError(ExitFailure, "auto-pass halted", r.Pass.Err)
	}
	return nil
}

// parseParams merges a JSON object and name=value pairs. Pairs win.
func parseParams(jsonParams string, pairs []string) (ir.Params, error) {
	params := ir.Params{}
	if jsonParams != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(jsonParams), &m); err != nil {
			return nil, fmt.Errorf("--params: %w", err)
		}
		params = ir.ParamsFromMap(m)
	}

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		params[name] = parseScalar(raw)
	}
	return params, nil
}

func parseScalar(raw string) ir.Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return ir.Number(f)
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return ir.Bool(b)
	}
	return ir.String(raw)
}
