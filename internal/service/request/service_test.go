package request

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/event"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/messaging"
	"github.com/auricmart/agent-api/pkg/messaging/memory"
	"github.com/auricmart/agent-api/pkg/metrics"
)

// fakeRequestAPI counts calls so tests can assert which operations went
// over the wire.
type fakeRequestAPI struct {
	calls int

	createFn  func(api.CreateRequestInput) (*model.Request, error)
	acceptFn  func(id string) (*model.Request, error)
	declineFn func(id string) (*model.Request, error)
	listFn    func() ([]model.Request, error)
}

func (f *fakeRequestAPI) CreateRequest(ctx context.Context, input api.CreateRequestInput) (*model.Request, error) {
	f.calls++
	return f.createFn(input)
}

func (f *fakeRequestAPI) AcceptRequest(ctx context.Context, id string) (*model.Request, error) {
	f.calls++
	return f.acceptFn(id)
}

func (f *fakeRequestAPI) DeclineRequest(ctx context.Context, id string) (*model.Request, error) {
	f.calls++
	return f.declineFn(id)
}

func (f *fakeRequestAPI) SellerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	f.calls++
	return f.listFn()
}

func (f *fakeRequestAPI) CustomerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	f.calls++
	return f.listFn()
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func signIn(st *store.Store, id, name string) {
	st.SetSession(&model.Session{
		User:  model.User{ID: id, Name: name, Email: id + "@example.com"},
		Token: "tok-" + id,
	})
}

// collectEvents subscribes to the request topic and returns a drain
// function that waits for the expected number of events.
func collectEvents(t *testing.T, ctx context.Context, broker messaging.Broker) func(n int) []*event.RequestEvent {
	t.Helper()
	ch, err := broker.Subscribe(ctx, event.Topic)
	require.NoError(t, err)

	return func(n int) []*event.RequestEvent {
		out := make([]*event.RequestEvent, 0, n)
		for len(out) < n {
			select {
			case payload := <-ch:
				ev, err := event.Decode(payload)
				require.NoError(t, err)
				out = append(out, ev)
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for event %d of %d", len(out)+1, n)
			}
		}
		return out
	}
}

func newFixture(t *testing.T, fake *fakeRequestAPI) (*Service, *store.Store, messaging.Broker) {
	t.Helper()
	st := store.New()
	broker := memory.NewBroker()
	t.Cleanup(func() { broker.Close() })
	svc := NewService(fake, st, broker, testLogger(), metrics.NewTestMetrics())
	return svc, st, broker
}

func validInput() CreateInput {
	return CreateInput{
		Item:           model.Item{ID: "i1", Name: "1oz Gold Bar", SellerID: "s1", SellerName: "Aurum Traders"},
		RequestType:    model.RequestTypeBuy,
		Quantity:       "2",
		CapturedAmount: 4210.50,
		CapturedAt:     model.Now(),
	}
}

func TestCreateValidationGateSkipsNetwork(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		signOut bool
		wantErr string
	}{
		{"signed out", nil, true, "sign in to send a request"},
		{"missing item", func(in *CreateInput) { in.Item = model.Item{} }, false, "item is required"},
		{"bad type", func(in *CreateInput) { in.RequestType = "trade" }, false, "request type must be buy or sell"},
		{"nan amount", func(in *CreateInput) { in.CapturedAmount = math.NaN() }, false, "captured amount is invalid"},
		{"zero amount", func(in *CreateInput) { in.CapturedAmount = 0 }, false, "captured amount must be positive"},
		{"negative amount", func(in *CreateInput) { in.CapturedAmount = -5 }, false, "captured amount must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequestAPI{}
			svc, st, _ := newFixture(t, fake)
			if !tt.signOut {
				signIn(st, "c1", "Casey")
			}

			in := validInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			res := svc.Create(context.Background(), in)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Nil(t, res.Request)
			// The gate rejects before any backend call.
			assert.Zero(t, fake.calls)
		})
	}
}

func TestCreateSuccessCachesAndPublishes(t *testing.T) {
	fake := &fakeRequestAPI{
		createFn: func(input api.CreateRequestInput) (*model.Request, error) {
			assert.Equal(t, "i1", input.ItemID)
			assert.Equal(t, 4210.50, input.CapturedAmount)
			return &model.Request{
				ID: "r1", ItemID: input.ItemID, CustomerID: "c1",
				RequestType: input.RequestType, Status: model.RequestStatusPending,
				CapturedAmount: input.CapturedAmount,
			}, nil
		},
	}
	svc, st, broker := newFixture(t, fake)
	signIn(st, "c1", "Casey")

	ctx := context.Background()
	drain := collectEvents(t, ctx, broker)

	res := svc.Create(ctx, validInput())
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Request)
	assert.Equal(t, "r1", res.Request.ID)

	cached, ok := st.Request("r1")
	require.True(t, ok)
	assert.Equal(t, model.RequestStatusPending, cached.Status)
	// Denormalized fields fall back to the item snapshot.
	assert.Equal(t, "1oz Gold Bar", cached.ItemName)
	assert.Equal(t, "s1", cached.SellerID)

	events := drain(1)
	assert.Equal(t, event.RequestCreated, events[0].Type)
	assert.Equal(t, "c1", events[0].Customer.ID)
	assert.Equal(t, "Casey", events[0].Customer.Name)
	assert.Equal(t, "s1", events[0].Seller.ID)
	assert.Equal(t, "1oz Gold Bar", events[0].Item.Name)
}

func TestCreateRemoteFailureLeavesCacheUntouched(t *testing.T) {
	fake := &fakeRequestAPI{
		createFn: func(api.CreateRequestInput) (*model.Request, error) {
			return nil, apperrors.NewUnavailable("network unavailable, please try again", nil)
		},
	}
	svc, st, _ := newFixture(t, fake)
	signIn(st, "c1", "Casey")

	res := svc.Create(context.Background(), validInput())
	assert.False(t, res.Success)
	assert.Equal(t, "network unavailable, please try again", res.Error)
	assert.Empty(t, st.Requests())
}

func TestTransitionTerminalStateFailsFastLocally(t *testing.T) {
	fake := &fakeRequestAPI{}
	svc, st, _ := newFixture(t, fake)
	signIn(st, "s1", "Aurum Traders")
	st.UpsertRequest(model.Request{ID: "r1", Status: model.RequestStatusAccepted})

	res := svc.Decline(context.Background(), "r1")
	assert.False(t, res.Success)
	assert.Equal(t, "request already processed", res.Error)
	// Cached terminal state short-circuits before the backend.
	assert.Zero(t, fake.calls)

	cached, _ := st.Request("r1")
	assert.Equal(t, model.RequestStatusAccepted, cached.Status)
}

func TestTransitionRemoteConflict(t *testing.T) {
	// Request not cached locally: the backend's precondition check is the
	// authority and its conflict surfaces as the structured failure.
	fake := &fakeRequestAPI{
		acceptFn: func(id string) (*model.Request, error) {
			return nil, apperrors.NewConflict("request already processed", nil)
		},
	}
	svc, st, _ := newFixture(t, fake)
	signIn(st, "s1", "Aurum Traders")

	res := svc.Accept(context.Background(), "r9")
	assert.False(t, res.Success)
	assert.Equal(t, "request already processed", res.Error)
	assert.Equal(t, 1, fake.calls)
}

func TestTransitionRemoteFailureLeavesCachePending(t *testing.T) {
	fake := &fakeRequestAPI{
		acceptFn: func(id string) (*model.Request, error) {
			return nil, apperrors.NewUnavailable("server error, please try again later", nil)
		},
	}
	svc, st, _ := newFixture(t, fake)
	signIn(st, "s1", "Aurum Traders")
	st.UpsertRequest(model.Request{ID: "r1", Status: model.RequestStatusPending})

	res := svc.Accept(context.Background(), "r1")
	assert.False(t, res.Success)

	cached, _ := st.Request("r1")
	assert.Equal(t, model.RequestStatusPending, cached.Status)
}

func TestAcceptSuccessPublishesOutcomeEvent(t *testing.T) {
	fake := &fakeRequestAPI{
		acceptFn: func(id string) (*model.Request, error) {
			return &model.Request{
				ID: id, Status: model.RequestStatusAccepted,
				RequestType: model.RequestTypeBuy,
				CustomerID:  "c1", CustomerName: "Casey", CustomerEmail: "c1@example.com",
				ItemID: "i1", ItemName: "1oz Gold Bar",
			}, nil
		},
	}
	svc, st, broker := newFixture(t, fake)
	signIn(st, "s1", "Aurum Traders")
	st.UpsertRequest(model.Request{ID: "r1", Status: model.RequestStatusPending})

	ctx := context.Background()
	drain := collectEvents(t, ctx, broker)

	res := svc.Accept(ctx, "r1")
	require.True(t, res.Success, res.Error)

	cached, _ := st.Request("r1")
	assert.Equal(t, model.RequestStatusAccepted, cached.Status)

	events := drain(1)
	assert.Equal(t, event.RequestAccepted, events[0].Type)
	assert.Equal(t, "c1", events[0].Customer.ID)
	assert.Equal(t, "Aurum Traders", events[0].Seller.Name)

	// A second transition on the now-terminal request fails locally.
	res = svc.Decline(ctx, "r1")
	assert.False(t, res.Success)
	assert.Equal(t, "request already processed", res.Error)
	assert.Equal(t, 1, fake.calls)
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fake := &fakeRequestAPI{
		listFn: func() ([]model.Request, error) {
			return []model.Request{{ID: "r7", Status: model.RequestStatusPending}}, nil
		},
	}
	svc, st, _ := newFixture(t, fake)
	st.ReplaceRequests([]model.Request{{ID: "stale"}})

	got, err := svc.RefreshSeller(context.Background(), model.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, ok := st.Request("stale")
	assert.False(t, ok)
	_, ok = st.Request("r7")
	assert.True(t, ok)
}

func TestRefreshFailurePreservesCache(t *testing.T) {
	fake := &fakeRequestAPI{
		listFn: func() ([]model.Request, error) {
			return nil, apperrors.NewUnavailable("network unavailable, please try again", nil)
		},
	}
	svc, st, _ := newFixture(t, fake)
	st.ReplaceRequests([]model.Request{{ID: "r1"}})

	_, err := svc.RefreshCustomer(context.Background(), "")
	require.Error(t, err)
	assert.Len(t, st.Requests(), 1)
}
