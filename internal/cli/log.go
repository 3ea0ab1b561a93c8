package cli

import (
	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/audit"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Status   string
	Act      string
	Action   string
	Rule     string
	PassID   string
	SinceSeq int64
	Limit    int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Query the audit log",
		Long: `Query the audit log.

With --db the durable log is queried, FAIL and UNKNOWN_COMMAND entries
included. Without it the actLogs of the restored state are filtered.

Examples:
  vibe log --db vibe.db --status FAIL
  vibe log --db vibe.db --act TRANSFER --since-seq 10 --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showLog(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "only entries with this status (SUCCESS, FAIL, CRITICAL_SUCCESS, CRITICAL_FAILURE)")
	cmd.Flags().StringVar(&opts.Act, "act", "", "only entries of this act")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only entries with this action tag")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "only entries caused by this rule")
	cmd.Flags().StringVar(&opts.PassID, "pass", "", "only entries of this pass id")
	cmd.Flags().Int64Var(&opts.SinceSeq, "since-seq", 0, "only entries with a greater seq")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "keep only the newest N entries (0 = all)")

	return cmd
}

func (o *LogOptions) filter() store.AuditFilter {
	return store.AuditFilter{
		Status:   ir.Status(o.Status),
		Act:      ir.ActID(o.Act),
		Action:   o.Action,
		Rule:     ir.RuleID(o.Rule),
		PassID:   o.PassID,
		SinceSeq: o.SinceSeq,
		Limit:    o.Limit,
	}
}

func showLog(cmd *cobra.Command, opts *LogOptions) (err error) {
	if opts.Status != "" && !ir.ValidStatuses[ir.Status(opts.Status)] {
		return NewExitError(ExitCommandError, "unknown --status "+opts.Status)
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must be >= 0")
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	f := opts.filter()
	var entries []ir.LogEntry
	if rt.store != nil {
		entries, err = rt.store.QueryAudit(ctx, f)
		if err != nil {
			return WrapExitError(ExitCommandError, "querying audit log", err)
		}
	} else {
		entries = filterEntries(rt.engine.State().ActLogs, f)
	}
	if entries == nil {
		entries = []ir.LogEntry{}
	}
	return newFormatter(cmd, opts.RootOptions).Success(entriesView{Entries: entries})
}

// filterEntries applies f to in-memory entries the way the store applies
// it in SQL.
func filterEntries(entries []ir.LogEntry, f store.AuditFilter) []ir.LogEntry {
	out := audit.Filter(entries, func(e ir.LogEntry) bool {
		switch {
		case f.Status != "" && e.Status != f.Status:
			return false
		case f.Act != "" && e.Act != f.Act:
			return false
		case f.Action != "" && e.Action != f.Action:
			return false
		case f.Rule != "" && e.Rule != f.Rule:
			return false
		case f.PassID != "" && e.PassID != f.PassID:
			return false
		case f.SinceSeq > 0 && e.Seq <= f.SinceSeq:
			return false
		}
		return true
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
