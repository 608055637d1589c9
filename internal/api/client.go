// Package api is the typed client for the taskboard REST backend. Every
// operation validates its request locally, then makes exactly one round
// trip. Failures are returned as *Error or *ValidationError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UserHeader carries the acting user on every request.
const UserHeader = "X-User-ID"

// Client is a thin HTTP client for the taskboard REST API v1.
// It handles Bearer token authentication and JSON marshaling. It never
// retries and sets no timeout beyond the transport default.
type Client struct {
	baseURL    string
	userID     string
	token      string
	httpClient *http.Client
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the Bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a new API client. The baseURL should be the root URL
// of the backend (e.g., http://localhost:8080). userID is sent as the
// acting user.
func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		userID:     userID,
		httpClient: &http.Client{},
		validate:   newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the acting user.
func (c *Client) UserID() string { return c.userID }

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do is the core HTTP method that builds the request, handles auth, and
// JSON (de)serialization. Every failure is returned as *Error.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Method: method, Path: path, Message: "encoding request failed: " + err.Error()}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "building request failed: " + rootCause(err)}
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set(UserHeader, c.userID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "network error: " + rootCause(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Message: "reading response failed"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(method, path, resp.StatusCode, respBody)
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: "malformed response from server",
		}
	}
	return nil
}

// escape builds a path from segments, escaping each one.
func escape(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// rootCause strips url.Error wrapping from transport errors.
func rootCause(err error) string {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err.Error()
	}
	return err.Error()
}
