package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client fetches roadmap data from a roadmap-generation backend. A failed
// fetch surfaces the error to the caller; there are no retries, the caller
// re-triggers by reselecting the exam.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a roadmap client for the given backend base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the roadmap for an exam. The payload is validated against
// Schema; a payload without a subjects array decodes to an empty roadmap.
func (c *Client) Fetch(ctx context.Context, examID string) (Roadmap, error) {
	if examID == "" {
		return Roadmap{}, fmt.Errorf("exam id is empty")
	}

	u := c.baseURL + "/roadmap?exam=" + url.QueryEscape(examID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Roadmap{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Roadmap{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Roadmap{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Roadmap{}, fmt.Errorf("roadmap backend error (status %d): %s", resp.StatusCode, string(body))
	}

	return Decode(body)
}

// Decode parses and validates a raw roadmap payload. A missing subjects array
// yields an empty roadmap rather than an error.
func Decode(data []byte) (Roadmap, error) {
	if err := ValidatePayload(data); err != nil {
		return Roadmap{}, err
	}
	var r Roadmap
	if err := json.Unmarshal(data, &r); err != nil {
		return Roadmap{}, fmt.Errorf("unmarshal roadmap: %w", err)
	}
	if r.Subjects == nil {
		r.Subjects = []Subject{}
	}
	return r, nil
}
