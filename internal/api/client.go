package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/auricmart/agent-api/pkg/circuitbreaker"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/metrics"
)

// TokenSource supplies the current bearer token. Empty means no session.
type TokenSource func() string

// Client is a thin JSON client for the marketplace backend. It handles
// bearer authentication, the backend's {success, message} envelope, and
// maps transport failures to the user-facing error taxonomy. Calls are
// never retried here; retry policy belongs to the reconciler.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond bounds outbound call rate; zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
}

func NewClient(cfg Config, token TokenSource, log *logger.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 5
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "backend",
			MaxFailures: 5,
			Timeout:     15 * time.Second,
		}),
		limiter: limiter,
		logger:  log,
		metrics: m,
	}
}

// envelope is the backend's standard response wrapper. Endpoints embed
// their payload next to it, so callers decode into structs that include
// envelope plus their own fields.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c *Client) get(ctx context.Context, op, path string, result interface{}) error {
	return c.do(ctx, op, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, op, path string, body, result interface{}) error {
	return c.do(ctx, op, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, op, path string, body, result interface{}) error {
	return c.do(ctx, op, http.MethodPatch, path, body, result)
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.NewUnavailable("network unavailable, please try again", err)
		}
	}

	start := time.Now()
	err := c.cb.Execute(func() error {
		return c.doOnce(ctx, method, path, body, result)
	})
	if c.metrics != nil {
		c.metrics.APILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.APIRequests.WithLabelValues(op, status).Inc()
	}
	if err != nil {
		c.logger.Debug("backend call failed", "operation", op, "error", err.Error())
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternal(fmt.Errorf("marshaling request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apperrors.NewInternal(fmt.Errorf("creating request: %w", err))
	}

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailable("network unavailable, please try again", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUnavailable("network unavailable, please try again", err)
	}

	if err := mapStatus(resp.StatusCode, data); err != nil {
		return err
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return apperrors.NewInternal(fmt.Errorf("decoding %s %s response: %w", method, path, err))
		}
	}
	return nil
}

// mapStatus converts backend HTTP statuses to the error taxonomy. The
// backend's body message, when present, wins over the generic one so
// precondition failures ("request already processed") survive the trip.
func mapStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var env envelope
	_ = json.Unmarshal(body, &env)
	cause := fmt.Errorf("backend returned %d: %s", status, env.Message)

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.NewUnauthorized(cause)
	case status == http.StatusNotFound:
		return apperrors.NewNotFound("resource", cause)
	case status == http.StatusConflict:
		msg := env.Message
		if msg == "" {
			msg = "request already processed"
		}
		return apperrors.NewConflict(msg, cause)
	case status == http.StatusBadRequest:
		msg := env.Message
		if msg == "" {
			msg = "invalid request"
		}
		return apperrors.NewValidation(msg)
	case status >= 500:
		return apperrors.NewUnavailable("server error, please try again later", cause)
	default:
		return apperrors.NewInternal(cause)
	}
}

// checkEnvelope enforces the success flag on 2xx responses that still
// report failure in-band.
func checkEnvelope(env envelope) error {
	if env.Success {
		return nil
	}
	msg := env.Message
	if msg == "" {
		msg = "operation failed"
	}
	if strings.Contains(strings.ToLower(msg), "already") {
		return apperrors.NewConflict(msg, nil)
	}
	return apperrors.NewValidation(msg)
}
