package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/queryir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/querysql"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// SnapshotInfo describes one stored snapshot without its body.
type SnapshotInfo struct {
	ID     int64  `json:"id"`
	Clock  int64  `json:"clock"`
	Halted bool   `json:"halted"`
	Digest string `json:"digest"`
}

// Load returns the newest snapshot. It implements persist.Persister.
func (s *Store) Load(ctx context.Context) (state.State, bool, error) {
	var body, digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT state, digest FROM snapshots ORDER BY id DESC LIMIT 1
	`).Scan(&body, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return state.State{}, false, nil
	}
	if err != nil {
		return state.State{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	if got := ir.StateDigest([]byte(body)); got != digest {
		return state.State{}, false, fmt.Errorf("load snapshot: digest mismatch: stored %s, computed %s", digest, got)
	}
	st, err := state.Decode([]byte(body))
	if err != nil {
		return state.State{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	return st, true, nil
}

// Snapshots lists stored snapshots, oldest first.
func (s *Store) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, clock, halted, digest FROM snapshots ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info   SnapshotInfo
			halted int
		)
		if err := rows.Scan(&info.ID, &info.Clock, &halted, &info.Digest); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		info.Halted = halted != 0
		out = append(out, info)
	}
	return out, rows.Err()
}

// AuditFilter selects audit entries. Zero fields match everything.
type AuditFilter struct {
	Status   ir.Status
	Act      ir.ActID
	Action   string
	Rule     ir.RuleID
	PassID   string
	SinceSeq int64 // entries with seq strictly greater
	Limit    int   // keep only the newest Limit entries
}

var auditColumns = []string{"seq", "status", "action", "act", "rule", "pass_id", "reason", "detail"}

// Query builds the queryir form of f.
func (f AuditFilter) Query() queryir.Select {
	var preds []queryir.Predicate
	eq := func(field, value string) {
		if value != "" {
			preds = append(preds, queryir.Equals{Field: field, Value: ir.String(value)})
		}
	}
	eq("status", string(f.Status))
	eq("act", string(f.Act))
	eq("action", f.Action)
	eq("rule", string(f.Rule))
	eq("pass_id", f.PassID)
	if f.SinceSeq > 0 {
		preds = append(preds, queryir.Compare{Field: "seq", Op: ir.OpGreater, Value: ir.Number(f.SinceSeq)})
	}

	q := queryir.Select{From: "audit_log", Columns: auditColumns, Limit: f.Limit, Newest: f.Limit > 0}
	if len(preds) > 0 {
		q.Filter = queryir.And{Predicates: preds}
	}
	return q
}

// QueryAudit returns the entries matching f in commit order.
func (s *Store) QueryAudit(ctx context.Context, f AuditFilter) ([]ir.LogEntry, error) {
	q := f.Query()
	query, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var out []ir.LogEntry
	for rows.Next() {
		var e ir.LogEntry
		var status, act, rule, detailJSON string
		if err := rows.Scan(&e.Seq, &status, &e.Action, &act, &rule, &e.PassID, &e.Reason, &detailJSON); err != nil {
			return nil, fmt.Errorf("query audit: %w", err)
		}
		e.Status = ir.Status(status)
		e.Act = ir.ActID(act)
		e.Rule = ir.RuleID(rule)
		if e.Detail, err = unmarshalDetail(detailJSON); err != nil {
			return nil, fmt.Errorf("query audit: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}

	if q.Newest {
		// newest-first from the limit; hand back in commit order
		slices.Reverse(out)
	}
	return out, nil
}
