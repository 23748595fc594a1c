// Package reconciler replays journaled best-effort operations against
// the backend. Mark-read, mark-all, delete, and notification create are
// applied locally before the remote outcome is known; this worker closes
// the resulting inconsistency window instead of letting it linger.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/metrics"
)

type Config struct {
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
}

// Refresher re-pulls the notification list after a reconcile pass so the
// local view converges on the backend of record.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Reconciler struct {
	snapshot  *store.Snapshot
	api       api.NotificationAPI
	refresher Refresher
	config    Config
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func New(snapshot *store.Snapshot, notifAPI api.NotificationAPI, refresher Refresher, config Config, log *logger.Logger, m *metrics.Metrics) *Reconciler {
	if config.BatchSize <= 0 {
		config.BatchSize = 20
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	return &Reconciler{
		snapshot:  snapshot,
		api:       notifAPI,
		refresher: refresher,
		config:    config,
		logger:    log,
		metrics:   m,
	}
}

// Start runs the reconcile loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.logger.Info("starting reconciler", "interval", r.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down reconciler")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error(err, "reconcile pass failed")
			}
		}
	}
}

// Pending reports the current inconsistency window: the number of
// journaled operations the backend has not yet confirmed.
func (r *Reconciler) Pending(ctx context.Context) (int, error) {
	return r.snapshot.PendingOpCount(ctx)
}

// RunOnce executes a single reconcile pass: replay the journal, then
// refresh the notification view when anything was replayed.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	timer := prometheus.NewTimer(r.metrics.ReconcileLatency)
	defer timer.ObserveDuration()

	ops, err := r.snapshot.PendingOps(ctx, r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("loading pending ops: %w", err)
	}
	r.metrics.ReconcileQueueSize.Set(float64(len(ops)))
	if len(ops) == 0 {
		return nil
	}

	replayed := 0
	for _, op := range ops {
		if err := r.replay(ctx, op); err != nil {
			r.handleFailure(ctx, op, err)
			continue
		}
		if err := r.snapshot.DeletePendingOp(ctx, op.ID); err != nil {
			r.logger.Error(err, "failed to dequeue replayed op", "op_id", op.ID)
			continue
		}
		r.metrics.ReconcileOpsReplayed.Inc()
		replayed++
	}

	if replayed > 0 && r.refresher != nil {
		if err := r.refresher.Refresh(ctx); err != nil {
			r.logger.Warn("post-reconcile refresh failed", "error", err.Error())
		}
	}

	count, err := r.snapshot.PendingOpCount(ctx)
	if err == nil {
		r.metrics.ReconcileQueueSize.Set(float64(count))
	}
	return nil
}

func (r *Reconciler) replay(ctx context.Context, op store.PendingOp) error {
	switch op.Kind {
	case store.OpMarkRead:
		return r.api.MarkNotificationRead(ctx, op.TargetID)
	case store.OpMarkAllRead:
		return r.api.MarkAllNotificationsRead(ctx)
	case store.OpDeleteNotification:
		return r.api.DeleteNotification(ctx, op.TargetID)
	case store.OpCreateNotification:
		var input api.CreateNotificationInput
		if err := json.Unmarshal([]byte(op.Payload), &input); err != nil {
			return fmt.Errorf("undecodable journal payload: %w", err)
		}
		return r.api.CreateNotification(ctx, input)
	default:
		return fmt.Errorf("unknown pending op kind %q", op.Kind)
	}
}

func (r *Reconciler) handleFailure(ctx context.Context, op store.PendingOp, err error) {
	// A gone resource means the backend already converged; the op is
	// done, not failed.
	if apperrors.Is(err, apperrors.ErrNotFound) {
		if delErr := r.snapshot.DeletePendingOp(ctx, op.ID); delErr != nil {
			r.logger.Error(delErr, "failed to drop stale op", "op_id", op.ID)
		}
		r.metrics.ReconcileOpsReplayed.Inc()
		return
	}

	if op.Attempts+1 >= r.config.MaxAttempts {
		r.logger.Warn("dropping pending op after max attempts",
			"op_id", op.ID, "kind", string(op.Kind), "error", err.Error())
		if delErr := r.snapshot.DeletePendingOp(ctx, op.ID); delErr != nil {
			r.logger.Error(delErr, "failed to drop exhausted op", "op_id", op.ID)
		}
		r.metrics.ReconcileOpsDropped.Inc()
		return
	}

	if bumpErr := r.snapshot.BumpPendingOp(ctx, op.ID); bumpErr != nil {
		r.logger.Error(bumpErr, "failed to bump pending op", "op_id", op.ID)
	}
	r.logger.Debug("pending op replay failed, will retry",
		"op_id", op.ID, "kind", string(op.Kind), "attempts", op.Attempts+1)
}
