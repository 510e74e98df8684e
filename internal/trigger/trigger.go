// Package trigger forwards admin update requests to the external scraping
// backend's webhook.
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of an upstream failure body is propagated.
const maxErrorBody = 4 << 10

// BasicAuth carries optional credentials for the external service. These are
// the webhook's own credentials, unrelated to the admin session.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) provided() bool {
	return a.Username != "" && a.Password != ""
}

// StatusError reports a non-2xx response from the webhook, carrying the
// upstream status and body text verbatim.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

// Client fires the configured webhook. It performs no retries; a failed
// trigger surfaces to the caller, who may resubmit manually.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a Client for the webhook URL with the given timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Fire POSTs the trigger payload to the webhook, attaching Basic auth when
// credentials are provided. A non-2xx response comes back as a *StatusError;
// transport failures come back wrapped.
func (c *Client) Fire(ctx context.Context, auth BasicAuth) error {
	if c.url == "" {
		return fmt.Errorf("webhook url is not configured")
	}

	payload, err := json.Marshal(map[string]string{"trigger": "admin_manual"})
	if err != nil {
		return fmt.Errorf("marshal trigger payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth.provided() {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}
