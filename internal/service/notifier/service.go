package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/internal/store"
	"github.com/auricmart/agent-api/pkg/event"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/messaging"
	"github.com/auricmart/agent-api/pkg/metrics"
)

// Journal receives best-effort operations whose remote leg failed, for
// later replay by the reconciler. Optional; a nil journal keeps the
// original log-and-continue behavior.
type Journal interface {
	EnqueuePendingOp(ctx context.Context, op store.PendingOp) error
}

// Service is the notification fan-out router. It subscribes to request
// lifecycle events and turns each one into exactly one notification for
// the counterpart actor, and it owns the viewer's notification list:
// refresh, unread derivation, mark-read, and delete.
type Service struct {
	api     api.NotificationAPI
	store   *store.Store
	journal Journal
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(notifAPI api.NotificationAPI, st *store.Store, journal Journal, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		api:     notifAPI,
		store:   st,
		journal: journal,
		logger:  log,
		metrics: m,
	}
}

// Start subscribes to the request event topic and routes events until
// ctx is cancelled.
func (s *Service) Start(ctx context.Context, broker messaging.Broker) error {
	events, err := broker.Subscribe(ctx, event.Topic)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", event.Topic, err)
	}

	go func() {
		for payload := range events {
			ev, err := event.Decode(payload)
			if err != nil {
				s.logger.Error(err, "dropping undecodable request event")
				continue
			}
			s.handle(ctx, ev)
		}
	}()
	return nil
}

func (s *Service) handle(ctx context.Context, ev *event.RequestEvent) {
	n, ok := buildNotification(ev)
	if !ok {
		s.logger.Warn("ignoring request event with unknown type", "type", string(ev.Type))
		return
	}

	status := "ok"
	if err := s.create(ctx, n); err != nil {
		status = "fallback"
	}
	if s.metrics != nil {
		s.metrics.EventsHandled.WithLabelValues(string(ev.Type), status).Inc()
	}
}

// create pushes the notification to the backend and refreshes the local
// list from it. When the remote create fails, a client-only notification
// is synthesized instead: it never reaches the backend and disappears on
// the next full refresh, which is the intended soft-failure mode.
func (s *Service) create(ctx context.Context, n model.Notification) error {
	input := api.CreateNotificationInput{
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		Data:        n.Data,
		IsGlobal:    n.Global(),
		Priority:    "normal",
	}

	err := s.api.CreateNotification(ctx, input)
	if err == nil {
		if s.metrics != nil {
			s.metrics.NotificationsCreated.Inc()
		}
		if refreshErr := s.Refresh(ctx); refreshErr != nil {
			s.logger.Warn("notification refresh after create failed", "error", refreshErr.Error())
		}
		return nil
	}

	s.logger.Warn("remote notification create failed, synthesizing local copy",
		"type", string(n.Type), "error", err.Error())

	n.ID = localID()
	n.Read = false
	if n.Timestamp.IsZero() {
		n.Timestamp = model.Now()
	}
	s.store.AddNotification(n)
	if s.metrics != nil {
		s.metrics.NotificationFallbacks.Inc()
		s.metrics.UnreadCount.Set(float64(s.store.Unread()))
	}
	s.enqueue(ctx, store.PendingOp{
		Kind:    store.OpCreateNotification,
		Payload: encodeCreateInput(input),
	})
	return err
}

// Refresh replaces the notification list with the backend's current
// view and rederives the unread badge. Not an incremental patch.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.api.UserNotifications(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceNotifications(list)
	if s.metrics != nil {
		s.metrics.UnreadCount.Set(float64(s.store.Unread()))
	}
	return nil
}

// MarkRead marks one notification read. Remote first, best-effort: the
// local view updates even when the remote call fails, trading strict
// consistency for a responsive badge; the journal closes the gap later.
func (s *Service) MarkRead(ctx context.Context, id string) {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.logger.Warn("remote mark-read failed", "id", id, "error", err.Error())
		s.enqueue(ctx, store.PendingOp{Kind: store.OpMarkRead, TargetID: id})
	}
	s.store.MarkNotificationRead(id)
	if s.metrics != nil {
		s.metrics.UnreadCount.Set(float64(s.store.Unread()))
	}
}

// MarkAllRead marks every notification visible to the viewer read, in
// one pass. Idempotent.
func (s *Service) MarkAllRead(ctx context.Context) {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Warn("remote mark-all-read failed", "error", err.Error())
		s.enqueue(ctx, store.PendingOp{Kind: store.OpMarkAllRead})
	}
	s.store.MarkAllNotificationsRead()
	if s.metrics != nil {
		s.metrics.UnreadCount.Set(float64(s.store.Unread()))
	}
}

// Delete removes one notification. Same best-effort contract as MarkRead.
func (s *Service) Delete(ctx context.Context, id string) {
	if err := s.api.DeleteNotification(ctx, id); err != nil {
		s.logger.Warn("remote delete failed", "id", id, "error", err.Error())
		s.enqueue(ctx, store.PendingOp{Kind: store.OpDeleteNotification, TargetID: id})
	}
	s.store.RemoveNotification(id)
	if s.metrics != nil {
		s.metrics.UnreadCount.Set(float64(s.store.Unread()))
	}
}

// Notifications returns the viewer-visible list.
func (s *Service) Notifications() []model.Notification {
	return s.store.Notifications()
}

// Unread returns the derived unread count for the current viewer.
func (s *Service) Unread() int {
	return s.store.Unread()
}

func (s *Service) enqueue(ctx context.Context, op store.PendingOp) {
	if s.journal == nil {
		return
	}
	op.ID = uuid.NewString()
	op.CreatedAt = model.Now()
	if err := s.journal.EnqueuePendingOp(ctx, op); err != nil {
		s.logger.Error(err, "failed to journal pending op", "kind", string(op.Kind))
	}
}

// localID builds a client-only notification id from the current time,
// suffixed to stay unique within the same millisecond.
func localID() string {
	return "local-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
