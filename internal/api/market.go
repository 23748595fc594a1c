package api

import (
	"context"

	"github.com/auricmart/agent-api/internal/model"
)

type rateResponse struct {
	envelope
	Rates []model.Rate `json:"rates"`
}

type itemListResponse struct {
	envelope
	Items []model.Item `json:"items"`
}

func (c *Client) Rates(ctx context.Context) (*model.RateBoard, error) {
	var resp rateResponse
	if err := c.get(ctx, "rates", "/rates", &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return &model.RateBoard{
		Rates:     resp.Rates,
		FetchedAt: model.Now(),
	}, nil
}

func (c *Client) Items(ctx context.Context) ([]model.Item, error) {
	var resp itemListResponse
	if err := c.get(ctx, "items", "/items", &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
