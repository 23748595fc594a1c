package rates

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/pkg/logger"
)

const boardKey = "rate_board"

// Service serves the live rate board from a TTL cache and computes the
// price snapshot captured on a request at creation time.
//
// The captured amount is computed client-side from the live feed and
// sent to the backend as-is. Whether the backend re-validates it against
// its own rate source is a backend concern; this layer only guarantees
// the snapshot reflects the board the customer was looking at.
type Service struct {
	api    api.MarketAPI
	cache  *gocache.Cache
	logger *logger.Logger
}

func NewService(marketAPI api.MarketAPI, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		api:    marketAPI,
		cache:  gocache.New(ttl, 2*ttl),
		logger: log,
	}
}

// Board returns the current rate board, hitting the backend only when
// the cached snapshot has expired.
func (s *Service) Board(ctx context.Context) (*model.RateBoard, error) {
	if cached, ok := s.cache.Get(boardKey); ok {
		board := cached.(model.RateBoard)
		return &board, nil
	}

	board, err := s.api.Rates(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(boardKey, *board)
	s.logger.Debug("rate board refreshed", "rates", len(board.Rates))
	return board, nil
}

// Capture computes the amount snapshot for a request against the given
// item: base price per gram at the item's metal and purity, times the
// item weight, plus the direction's premium.
func (s *Service) Capture(ctx context.Context, item *model.Item, requestType model.RequestType) (float64, model.Millis, error) {
	board, err := s.Board(ctx)
	if err != nil {
		return 0, 0, err
	}

	rate, ok := board.Lookup(item.Metal, item.Purity)
	if !ok {
		return 0, 0, fmt.Errorf("no live rate for %s %s", item.Metal, item.Purity)
	}

	amount := rate.PricePerGram*item.WeightGrams + item.Premium(requestType)
	return amount, model.Now(), nil
}

// Invalidate drops the cached board so the next read refetches. Used
// after the backend signals a rate change.
func (s *Service) Invalidate() {
	s.cache.Delete(boardKey)
}
