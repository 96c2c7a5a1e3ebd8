package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	defaultTimeout = 2 * time.Minute
	pulpPrefix     = "pulp/api/v3"
	uiPrefix       = "_ui/v1"
)

// Client is an authenticated hub API client. One Client talks to both the
// galaxy API (v3/, _ui/v1/) and the Pulp API (pulp/api/v3/) under the same
// base URL.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client with the given token and API base URL, e.g.
// "https://hub.example.com/api/galaxy".
func New(token, apiBase string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		apiBase: strings.TrimRight(apiBase, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIBase returns the base URL the client was built with.
func (c *Client) APIBase() string { return c.apiBase }

// do executes the request with standard hub headers.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", req.URL.Redacted(), "request_id", reqID, "err", err)
		return nil, NetworkError(fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
	}
	c.logger.Debug("request", "method", req.Method, "url", req.URL.Redacted(),
		"status", resp.StatusCode, "request_id", reqID, "elapsed", time.Since(start))
	return resp, nil
}

// doJSON sends a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return NetworkError("decoding response", err)
		}
	}
	return nil
}

// url builds a galaxy API URL from path segments. A trailing slash is always
// added; the hub redirects slash-less paths.
func (c *Client) url(parts ...string) string {
	return c.apiBase + "/" + strings.Join(parts, "/") + "/"
}

// pulpURL builds a Pulp API URL from path segments.
func (c *Client) pulpURL(parts ...string) string {
	return c.url(append([]string{pulpPrefix}, parts...)...)
}

// withQuery appends encoded params to u.
func withQuery(u string, params url.Values) string {
	if len(params) == 0 {
		return u
	}
	return u + "?" + params.Encode()
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return statusError(resp.StatusCode, strings.TrimSpace(string(body)))
}

// ParsePulpID returns the trailing identifier of a Pulp href such as
// "/api/galaxy/pulp/api/v3/tasks/0188e3.../".
func ParsePulpID(href string) string {
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	return parts[len(parts)-1]
}
