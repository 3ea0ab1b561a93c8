package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the snapshots saved in the database",
		Long: `List the snapshots saved in the database, oldest first.

Examples:
  vibe history --db vibe.db
  vibe history --db vibe.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, rootOpts)
		},
	}
	return cmd
}

type historyView struct {
	Snapshots []store.SnapshotInfo `json:"snapshots"`
}

func (v historyView) String() string {
	if len(v.Snapshots) == 0 {
		return "(no snapshots)\n"
	}
	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLOCK\tHALTED\tDIGEST")
	for _, s := range v.Snapshots {
		fmt.Fprintf(tw, "%d\t%d\t%t\t%s\n", s.ID, s.Clock, s.Halted, s.Digest)
	}
	tw.Flush()
	return buf.String()
}

func showHistory(cmd *cobra.Command, opts *RootOptions) (err error) {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	if err := rt.requireStore(); err != nil {
		return err
	}
	snaps, err := rt.store.Snapshots(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing snapshots", err)
	}
	if snaps == nil {
		snaps = []store.SnapshotInfo{}
	}
	return newFormatter(cmd, opts).Success(historyView{Snapshots: snaps})
}
