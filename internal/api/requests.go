package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/auricmart/agent-api/internal/model"
)

type requestResponse struct {
	envelope
	Request *model.Request `json:"request"`
}

type requestListResponse struct {
	envelope
	Requests []model.Request `json:"requests"`
}

func (c *Client) CreateRequest(ctx context.Context, input CreateRequestInput) (*model.Request, error) {
	var resp requestResponse
	if err := c.post(ctx, "create_request", "/requests", input, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return resp.Request, nil
}

func (c *Client) AcceptRequest(ctx context.Context, id string) (*model.Request, error) {
	return c.transitionRequest(ctx, "accept_request", id, "accept")
}

func (c *Client) DeclineRequest(ctx context.Context, id string) (*model.Request, error) {
	return c.transitionRequest(ctx, "decline_request", id, "decline")
}

func (c *Client) transitionRequest(ctx context.Context, op, id, action string) (*model.Request, error) {
	var resp requestResponse
	path := fmt.Sprintf("/requests/%s/%s", url.PathEscape(id), action)
	if err := c.patch(ctx, op, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return resp.Request, nil
}

func (c *Client) SellerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	return c.listRequests(ctx, "seller_requests", "/requests/seller", status)
}

func (c *Client) CustomerRequests(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	return c.listRequests(ctx, "customer_requests", "/requests/customer", status)
}

func (c *Client) listRequests(ctx context.Context, op, path string, status model.RequestStatus) ([]model.Request, error) {
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var resp requestListResponse
	if err := c.get(ctx, op, path, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}
