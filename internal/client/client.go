// Package client talks to the board HTTP API and converts posts into
// board items.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/auth"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 15 * time.Second

// Session is the signed-in identity a Client sends with each request.
type Session struct {
	Token    string
	UserID   int64
	Username string
	Role     string
}

// SignedIn reports whether the session carries a token.
func (s *Session) SignedIn() bool {
	return s != nil && s.Token != ""
}

// Client is a board API client. It is safe for concurrent use as long as
// the session is not replaced concurrently.
type Client struct {
	base    *url.URL
	session *Session
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the server at baseURL. A nil session starts
// signed out.
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}
	if session == nil {
		session = &Session{}
	}

	c := &Client{
		base:    u,
		session: session,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the client's current session.
func (c *Client) Session() *Session {
	return c.session
}

// ImageURL resolves a post's imagePath against the server URL.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.session.SignedIn() {
		req.Header.Set("Authorization", auth.BearerHeader(c.session.Token))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, contentType, body, out)
}

func (c *Client) requireSession() error {
	if !c.session.SignedIn() {
		return ErrNotSignedIn
	}
	return nil
}
