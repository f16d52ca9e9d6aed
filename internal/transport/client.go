// Package transport provides the authenticated HTTP client used for all
// calls to the admin backend. It owns the session cookie jar, attaches the
// CSRF token to state-changing requests and normalizes server errors into
// messages suitable for display.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/tancool/adminx-console/pkg/logger"
)

const (
	// DefaultCSRFCookie is the cookie the backend stores its CSRF token in.
	DefaultCSRFCookie = "csrftoken"

	csrfHeader      = "X-CSRFToken"
	requestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
	maxBody      = 8 << 20
)

// Error is a normalized server-side failure carrying the human-readable
// message extracted from the response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Client performs authenticated requests against the admin backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	csrfCookie string
	log        *logger.Logger
}

// Config configures the client. Zero values pick sensible defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CSRFCookie string
	Logger     *logger.Logger
}

// New creates a client with a fresh cookie jar. The jar holds the session
// cookie for the lifetime of the process; a new process starts anonymous.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("transport: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	csrfCookie := cfg.CSRFCookie
	if csrfCookie == "" {
		csrfCookie = DefaultCSRFCookie
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("transport")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: create cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		csrfCookie: csrfCookie,
		log:        log,
	}, nil
}

// Send executes a request and returns the raw JSON payload. Server errors
// (status >= 400) are returned as *Error with the message extracted from
// the body's detail or message field.
func (c *Client) Send(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, uuid.New().String())

	// State-changing methods carry the CSRF token sourced from the cookie.
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		if token := c.csrfToken(req.URL); token != "" {
			req.Header.Set(csrfHeader, token)
		} else {
			c.log.WithField("path", path).Warn("CSRF token not found; request may be rejected")
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.normalizeError(resp)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return payload, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodGet, path, params, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodPut, path, nil, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodPatch, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Send(ctx, http.MethodDelete, path, nil, nil)
}

// csrfToken reads the CSRF cookie from the jar for the request URL.
func (c *Client) csrfToken(u *url.URL) string {
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == c.csrfCookie {
			return cookie.Value
		}
	}
	return ""
}

// normalizeError turns an error response into an *Error with the best
// available human-readable message: the JSON detail field, then message,
// then the raw body, then the HTTP status text.
func (c *Client) normalizeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	message := ""
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if detail := parsed.Get("detail"); detail.Exists() {
			message = detail.String()
		} else if msg := parsed.Get("message"); msg.Exists() {
			message = msg.String()
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: message}
}
