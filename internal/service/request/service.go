package request

import (
	"context"
	"math"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/event"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/messaging"
	"github.com/auricmart/agent-api/pkg/metrics"
)

// Result is the structured outcome of a coordinator operation. Callers
// branch on Success and render Error inline; coordinator operations do
// not return Go errors to the caller.
type Result struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Request *model.Request `json:"request,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// CreateInput carries everything the create transition needs. The item
// snapshot comes from the inventory cache; the captured amount from the
// rates service at submission time.
type CreateInput struct {
	Item           model.Item
	RequestType    model.RequestType
	Quantity       string
	Message        string
	CapturedAmount float64
	CapturedAt     model.Millis
}

// Service coordinates the request lifecycle: it validates transitions,
// executes them against the backend in two phases (remote call first,
// local cache mutation only on success), and publishes one domain event
// per successful transition. Notification fan-out is the notifier's
// subscription, not this service's concern.
type Service struct {
	api     api.RequestAPI
	store   *store.Store
	broker  messaging.Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(requestAPI api.RequestAPI, st *store.Store, broker messaging.Broker, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		api:     requestAPI,
		store:   st,
		broker:  broker,
		logger:  log,
		metrics: m,
	}
}

// Create validates locally, then submits the request. Validation
// failures return before any network call is made.
func (s *Service) Create(ctx context.Context, input CreateInput) Result {
	sess, ok := s.store.Session()
	if !ok {
		return failure("sign in to send a request")
	}
	if input.Item.ID == "" {
		return failure("item is required")
	}
	if !input.RequestType.Valid() {
		return failure("request type must be buy or sell")
	}
	if math.IsNaN(input.CapturedAmount) {
		return failure("captured amount is invalid")
	}
	if input.CapturedAmount <= 0 {
		return failure("captured amount must be positive")
	}

	created, err := s.api.CreateRequest(ctx, api.CreateRequestInput{
		ItemID:         input.Item.ID,
		RequestType:    input.RequestType,
		Quantity:       input.Quantity,
		Message:        input.Message,
		CapturedAmount: input.CapturedAmount,
	})
	if err != nil {
		return failure(apperrors.Message(err))
	}
	if created == nil {
		return failure(apperrors.Message(apperrors.NewInternal(nil)))
	}

	if created.ItemName == "" {
		created.ItemName = input.Item.Name
	}
	if created.SellerID == "" {
		created.SellerID = input.Item.SellerID
	}
	s.store.UpsertRequest(*created)

	s.publish(ctx, &event.RequestEvent{
		Type:    event.RequestCreated,
		Request: *created,
		Customer: event.ActorSnapshot{
			ID:    sess.User.ID,
			Name:  sess.User.DisplayName(),
			Email: sess.User.Email,
		},
		Seller: event.ActorSnapshot{
			ID:   input.Item.SellerID,
			Name: input.Item.SellerName,
		},
		Item: event.ItemSnapshot{
			ID:          input.Item.ID,
			Name:        input.Item.Name,
			BuyPremium:  input.Item.BuyPremium,
			SellPremium: input.Item.SellPremium,
		},
		OccurredAt: model.Now(),
	})

	return Result{Success: true, Request: created}
}

// Accept moves a pending request to accepted.
func (s *Service) Accept(ctx context.Context, id string) Result {
	return s.transition(ctx, id, true)
}

// Decline moves a pending request to declined.
func (s *Service) Decline(ctx context.Context, id string) Result {
	return s.transition(ctx, id, false)
}

func (s *Service) transition(ctx context.Context, id string, accept bool) Result {
	sess, ok := s.store.Session()
	if !ok {
		return failure("sign in to manage requests")
	}
	if id == "" {
		return failure("request id is required")
	}

	// Terminal states are final; a cached non-pending request fails
	// fast without a network call. Uncached requests still go remote
	// and rely on the backend's own precondition check.
	if cached, ok := s.store.Request(id); ok {
		if err := cached.CanTransition(); err != nil {
			return failure("request already processed")
		}
	}

	var (
		updated *model.Request
		err     error
	)
	if accept {
		updated, err = s.api.AcceptRequest(ctx, id)
	} else {
		updated, err = s.api.DeclineRequest(ctx, id)
	}
	if err != nil {
		return failure(apperrors.Message(err))
	}
	if updated == nil {
		return failure(apperrors.Message(apperrors.NewInternal(nil)))
	}

	s.store.UpsertRequest(*updated)

	eventType := event.RequestAccepted
	if !accept {
		eventType = event.RequestDeclined
	}
	s.publish(ctx, &event.RequestEvent{
		Type:    eventType,
		Request: *updated,
		Customer: event.ActorSnapshot{
			ID:    updated.CustomerID,
			Name:  updated.CustomerName,
			Email: updated.CustomerEmail,
		},
		Seller: event.ActorSnapshot{
			ID:   sess.User.ID,
			Name: sess.User.DisplayName(),
		},
		Item: event.ItemSnapshot{
			ID:   updated.ItemID,
			Name: updated.ItemName,
		},
		OccurredAt: model.Now(),
	})

	return Result{Success: true, Request: updated}
}

// RefreshSeller replaces the cache with the seller-view result set.
func (s *Service) RefreshSeller(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	requests, err := s.api.SellerRequests(ctx, status)
	if err != nil {
		return nil, err
	}
	s.store.ReplaceRequests(requests)
	return requests, nil
}

// RefreshCustomer replaces the cache with the customer-view result set.
func (s *Service) RefreshCustomer(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	requests, err := s.api.CustomerRequests(ctx, status)
	if err != nil {
		return nil, err
	}
	s.store.ReplaceRequests(requests)
	return requests, nil
}

// publish emits the domain event. Fan-out is best-effort: a publish
// failure is logged, never surfaced to the transition's caller.
func (s *Service) publish(ctx context.Context, e *event.RequestEvent) {
	if err := s.broker.Publish(ctx, event.Topic, e); err != nil {
		s.logger.Error(err, "failed to publish request event",
			"type", string(e.Type), "request_id", e.Request.ID)
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
	}
}
