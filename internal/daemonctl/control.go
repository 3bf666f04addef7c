// Package daemonctl is the HTTP client the CLI uses to talk to a
// running paperflow daemon.
package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"paperflow/internal/api"
)

// Client issues requests against the daemon API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New constructs a client for the given daemon bind address. The
// address may be host:port or a full http URL.
func New(addr string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return nil, errors.New("daemon address is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}

	client := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		// Trigger and resume block for the length of an advance, so
		// the transport carries no overall timeout; callers bound the
		// wait through the request context.
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Trigger submits a paper source and waits for the run to suspend or
// finish.
func (c *Client) Trigger(ctx context.Context, sourceURL, kind string) (api.OutcomeResponse, error) {
	var out api.OutcomeResponse
	err := c.post(ctx, "/api/trigger", api.TriggerRequest{SourceURL: sourceURL, Kind: kind}, &out)
	return out, err
}

// Resume submits a human decision for a suspended run.
func (c *Client) Resume(ctx context.Context, req api.ResumeRequest) (api.OutcomeResponse, error) {
	var out api.OutcomeResponse
	err := c.post(ctx, "/api/resume", req, &out)
	return out, err
}

// Status fetches a single run by key.
func (c *Client) Status(ctx context.Context, runKey string) (api.RunSummary, error) {
	var out api.RunSummary
	err := c.get(ctx, "/api/status/"+url.PathEscape(runKey), &out)
	return out, err
}

// Runs lists runs, optionally filtered by status.
func (c *Client) Runs(ctx context.Context, statuses ...string) ([]api.RunSummary, error) {
	path := "/api/runs"
	if len(statuses) > 0 {
		query := url.Values{}
		for _, status := range statuses {
			query.Add("status", status)
		}
		path += "?" + query.Encode()
	}
	var out api.RunListResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// ClearRuns removes finished runs and reports how many were swept.
func (c *Client) ClearRuns(ctx context.Context) (int64, error) {
	var out api.ClearResponse
	if err := c.post(ctx, "/api/runs/clear", nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

// Health fetches daemon health.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.get(ctx, "/api/health", &out)
	return out, err
}

// WaitReady polls the health endpoint until the daemon answers or the
// timeout elapses.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if _, err := c.Health(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for daemon")
	}
	return fmt.Errorf("daemon not ready: %w", lastErr)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, base string) error {
	var netErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || (errors.As(err, &netErr) && netErr.Op == "dial") {
		return fmt.Errorf("connect to daemon at %s: %w (start it with `paperflow serve`)", base, err)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
