// Package client talks to the Inkwell API over HTTP and the live feed
// websocket. The signed-in session comes from an injected session.Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

// DefaultTimeout bounds every HTTP call unless WithHTTPClient overrides it.
const DefaultTimeout = 15 * time.Second

// ErrNotSignedIn is returned by authenticated calls when no session exists.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response translated from the server envelope.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  []models.FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is safe for concurrent use.
type Client struct {
	base     *url.URL
	http     *http.Client
	sessions session.Store
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the API rooted at baseURL, e.g.
// "http://localhost:5000". A nil store keeps the session in memory.
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if store == nil {
		store = session.NewMemoryStore(nil)
	}

	c := &Client{
		base:     u,
		http:     &http.Client{Timeout: DefaultTimeout},
		sessions: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the stored session, or nil when signed out.
func (c *Client) Session() (*session.Session, error) {
	return c.sessions.Load()
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + "/api" + path
}

func (c *Client) token() (string, error) {
	s, err := c.sessions.Load()
	if err != nil {
		return "", err
	}
	if !s.Valid() {
		return "", ErrNotSignedIn
	}
	return s.Token, nil
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := c.token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var envelope models.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		apiErr.Code = envelope.Code
		apiErr.Fields = envelope.Errors
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
