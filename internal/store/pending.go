package store

import (
	"github.com/auricmart/agent-api/internal/model"
)

// PendingOpKind names a best-effort remote operation whose remote leg
// failed and is awaiting replay.
type PendingOpKind string

const (
	OpMarkRead           PendingOpKind = "mark_read"
	OpMarkAllRead        PendingOpKind = "mark_all_read"
	OpDeleteNotification PendingOpKind = "delete_notification"
	OpCreateNotification PendingOpKind = "create_notification"
)

// PendingOp is one journaled best-effort operation. The local view has
// already been updated optimistically; the journal closes the gap with
// the backend of record.
type PendingOp struct {
	ID        string        `db:"id"`
	Kind      PendingOpKind `db:"kind"`
	TargetID  string        `db:"target_id"`
	Payload   string        `db:"payload"`
	Attempts  int           `db:"attempts"`
	CreatedAt model.Millis  `db:"created_at"`
}
