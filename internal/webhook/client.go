// Package webhook posts user messages to a business's configured workflow
// endpoint. The endpoint is an opaque collaborator: the request shape below
// is frozen, the response shape is not guaranteed at all.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadStatus wraps non-2xx webhook responses.
var ErrBadStatus = errors.New("webhook returned non-success status")

// Payload is the frozen outbound wire shape.
type Payload struct {
	Message      string `json:"message"`
	UserID       string `json:"userId"`
	SessionID    string `json:"sessionId"`
	BusinessID   string `json:"businessId"`
	BusinessName string `json:"businessName"`
	Timestamp    string `json:"timestamp"`
}

// Sender abstracts the outbound call so the chat service can be tested
// without a network.
type Sender interface {
	Send(ctx context.Context, url string, payload Payload) ([]byte, error)
}

// Client posts payloads with a bounded timeout.
type Client struct {
	http *http.Client
}

// NewClient builds a client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Send posts the payload and returns the raw response body. Transport
// failures and non-2xx statuses are both errors; interpreting the body is
// the caller's problem.
func (c *Client) Send(ctx context.Context, url string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return raw, nil
}
