// Package api is the transport core shared by every protocol client: it
// attaches the auth token, speaks JSON both ways, and converts failures into
// the error taxonomy the dashboards surface to users.
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

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/metrics"
)

// TokenSource supplies the bearer token and is told when the backend
// rejects it.
type TokenSource interface {
	Token() string
	Invalidate() error
}

type Client struct {
	baseURL string
	httpc   *http.Client
	session TokenSource
	logger  *zap.Logger
}

func New(baseURL string, session TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		session: session,
		logger:  logger,
	}
}

// WithHTTPClient swaps the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(httpc *http.Client) *Client {
	c.httpc = httpc
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resource := firstSegment(path)

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(resource, "network_error").Inc()
		return fmt.Errorf("connection error, check that the backend is running: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.APIRequestsTotal.WithLabelValues(resource, "ok").Inc()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
		return nil
	}

	metrics.APIRequestsTotal.WithLabelValues(resource, "error").Inc()
	apiErr := c.decodeError(resp)

	c.logger.Warn("api request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", apiErr.Reason),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.Invalidate(); err != nil {
			c.logger.Error("failed to invalidate session", zap.Error(err))
		}
	}

	return apiErr
}

// decodeError extracts the server-supplied reason. Error bodies carry one of
// detail/error/message; anything else (an HTML error page, an empty body)
// degrades to a status-based message.
func (c *Client) decodeError(resp *http.Response) *Error {
	apiErr := &Error{
		Status: resp.StatusCode,
		Reason: fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var parsed struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiErr
	}

	switch {
	case parsed.Detail != "":
		apiErr.Reason = parsed.Detail
	case parsed.Error != "":
		apiErr.Reason = parsed.Error
	case parsed.Message != "":
		apiErr.Reason = parsed.Message
	}
	return apiErr
}

func firstSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}
