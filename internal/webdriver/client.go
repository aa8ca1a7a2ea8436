package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Capabilities is the alwaysMatch capability set sent on session creation.
type Capabilities map[string]any

// Status is the reply of GET /status.
type Status struct {
	Ready   bool
	Message string
}

// Client talks to one WebDriver remote end.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint (e.g. "http://localhost:4444").
// A nil httpClient uses a client without timeout; print replies for large
// documents can take a long time.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     httpClient,
	}
}

// Endpoint returns the base URL of the remote end.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Status queries the readiness of the remote end.
func (c *Client) Status(ctx context.Context) (Status, error) {
	value, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Ready:   value.Get("ready").Bool(),
		Message: value.Get("message").String(),
	}, nil
}

// NewSession performs the capabilities handshake and returns a live session.
func (c *Client) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	if caps == nil {
		caps = Capabilities{}
	}
	body := map[string]any{
		"capabilities": map[string]any{"alwaysMatch": caps},
	}

	value, err := c.do(ctx, http.MethodPost, "/session", body)
	if err != nil {
		return nil, err
	}

	id := value.Get("sessionId").String()
	if id == "" {
		return nil, fmt.Errorf("%w: new session reply has no sessionId", ErrMalformedResponse)
	}

	return &Session{
		client:       c,
		id:           id,
		capabilities: value.Get("capabilities"),
	}, nil
}

// do sends one command and unwraps the reply envelope.
// A nil body sends no payload; a non-nil body is JSON-encoded.
func (c *Client) do(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading %s %s reply: %w", method, path, err)
	}

	return unwrap(resp.StatusCode, data)
}

// unwrap extracts the value member of a reply, turning error replies into *Error.
func unwrap(status int, data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: HTTP %d: %s", ErrMalformedResponse, status, snippet(data))
	}

	value := gjson.GetBytes(data, "value")
	if !value.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: HTTP %d: no value member", ErrMalformedResponse, status)
	}

	if status < 200 || status >= 300 {
		code := value.Get("error").String()
		if code == "" {
			code = "unknown error"
		}
		return gjson.Result{}, &Error{
			Status:  status,
			Code:    code,
			Message: value.Get("message").String(),
		}
	}

	return value, nil
}

// snippet shortens a reply body for error messages.
func snippet(data []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(data))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
