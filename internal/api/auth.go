package api

import (
	"context"

	"github.com/auricmart/agent-api/internal/model"
)

type loginResponse struct {
	envelope
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp loginResponse
	if err := c.post(ctx, "login", "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.envelope); err != nil {
		return nil, err
	}
	return &model.Session{
		User:  resp.User,
		Token: resp.Token,
	}, nil
}

// Logout is best-effort on the backend; the local session is cleared by
// the caller regardless.
func (c *Client) Logout(ctx context.Context) error {
	var resp struct {
		envelope
	}
	return c.post(ctx, "logout", "/auth/logout", nil, &resp)
}
