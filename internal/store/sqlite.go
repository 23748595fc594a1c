package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/auricmart/agent-api/internal/model"
)

// Snapshot persists the viewer's caches and the reconciler journal in a
// local SQLite database so a restarted agent warm-starts its views and
// does not lose journaled best-effort operations.
type Snapshot struct {
	db *sqlx.DB
}

// OpenSnapshot opens (or creates) the snapshot database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func OpenSnapshot(dbPath string) (*Snapshot, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Snapshot{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Snapshot) Close() error {
	return s.db.Close()
}

func (s *Snapshot) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// SaveRequests replaces the persisted request snapshot for a viewer.
func (s *Snapshot) SaveRequests(ctx context.Context, viewerID string, requests []model.Request) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM requests WHERE viewer_id = ?", viewerID); err != nil {
		return fmt.Errorf("clearing request snapshot: %w", err)
	}
	for i := range requests {
		payload, err := json.Marshal(requests[i])
		if err != nil {
			return fmt.Errorf("encoding request %s: %w", requests[i].ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO requests (id, viewer_id, payload, updated_at) VALUES (?, ?, ?, ?)",
			requests[i].ID, viewerID, string(payload), int64(requests[i].UpdatedAt))
		if err != nil {
			return fmt.Errorf("saving request %s: %w", requests[i].ID, err)
		}
	}
	return tx.Commit()
}

func (s *Snapshot) LoadRequests(ctx context.Context, viewerID string) ([]model.Request, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows,
		"SELECT payload FROM requests WHERE viewer_id = ? ORDER BY updated_at DESC", viewerID)
	if err != nil {
		return nil, fmt.Errorf("loading request snapshot: %w", err)
	}
	out := make([]model.Request, 0, len(rows))
	for _, raw := range rows {
		var r model.Request
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decoding request snapshot: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveNotifications replaces the persisted notification snapshot for a viewer.
func (s *Snapshot) SaveNotifications(ctx context.Context, viewerID string, list []model.Notification) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE viewer_id = ?", viewerID); err != nil {
		return fmt.Errorf("clearing notification snapshot: %w", err)
	}
	for i := range list {
		payload, err := json.Marshal(list[i])
		if err != nil {
			return fmt.Errorf("encoding notification %s: %w", list[i].ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO notifications (id, viewer_id, payload, timestamp) VALUES (?, ?, ?, ?)",
			list[i].ID, viewerID, string(payload), int64(list[i].Timestamp))
		if err != nil {
			return fmt.Errorf("saving notification %s: %w", list[i].ID, err)
		}
	}
	return tx.Commit()
}

func (s *Snapshot) LoadNotifications(ctx context.Context, viewerID string) ([]model.Notification, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows,
		"SELECT payload FROM notifications WHERE viewer_id = ? ORDER BY timestamp DESC", viewerID)
	if err != nil {
		return nil, fmt.Errorf("loading notification snapshot: %w", err)
	}
	out := make([]model.Notification, 0, len(rows))
	for _, raw := range rows {
		var n model.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("decoding notification snapshot: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// --- reconciler journal ---

func (s *Snapshot) EnqueuePendingOp(ctx context.Context, op PendingOp) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO pending_ops (id, kind, target_id, payload, attempts, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		op.ID, string(op.Kind), op.TargetID, op.Payload, op.Attempts, int64(op.CreatedAt))
	if err != nil {
		return fmt.Errorf("enqueueing pending op: %w", err)
	}
	return nil
}

// PendingOps returns journaled operations oldest first, up to limit.
func (s *Snapshot) PendingOps(ctx context.Context, limit int) ([]PendingOp, error) {
	var ops []PendingOp
	err := s.db.SelectContext(ctx, &ops,
		"SELECT id, kind, target_id, payload, attempts, created_at FROM pending_ops ORDER BY created_at ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending ops: %w", err)
	}
	return ops, nil
}

func (s *Snapshot) PendingOpCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM pending_ops"); err != nil {
		return 0, fmt.Errorf("counting pending ops: %w", err)
	}
	return count, nil
}

func (s *Snapshot) DeletePendingOp(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_ops WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting pending op: %w", err)
	}
	return nil
}

// BumpPendingOp records one more failed replay attempt.
func (s *Snapshot) BumpPendingOp(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE pending_ops SET attempts = attempts + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("bumping pending op: %w", err)
	}
	return nil
}
