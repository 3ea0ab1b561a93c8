package store

import (
	"context"
	"fmt"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Save appends a snapshot of st. It implements persist.Persister; callers
// go through persist.Save, which refuses halted states before they reach
// the store.
func (s *Store) Save(ctx context.Context, st state.State) error {
	encoded, err := state.Encode(st)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots
		(clock, halted, digest, state, state_version, engine_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		st.SystemState.LogicalClock,
		boolToInt(st.SystemState.IsHalted),
		ir.StateDigest(encoded),
		string(encoded),
		ir.StateVersion,
		ir.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Record appends entries to the audit log in one transaction. It
// implements audit.Sink.
func (s *Store) Record(ctx context.Context, entries []ir.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record audit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_log
		(seq, status, action, act, rule, pass_id, reason, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record audit: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		detail, err := marshalDetail(e.Detail)
		if err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.Seq,
			string(e.Status),
			e.Action,
			string(e.Act),
			string(e.Rule),
			e.PassID,
			e.Reason,
			detail,
		); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record audit: commit: %w", err)
	}
	return nil
}
