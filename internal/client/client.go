// Package client talks to the OpenVault REST API.
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

	"github.com/google/uuid"

	"github.com/bobmcallan/openvault-portal/internal/cache"
	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

var (
	// ErrNetwork wraps every transport-level failure.
	ErrNetwork = errors.New("openvault api unreachable")
	// ErrUnauthorized matches an *APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openvault api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("openvault api returned %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, bool)
}

// SessionStream is the subscription side of session.Manager.
type SessionStream interface {
	Subscribe(fn func(*session.Session)) (unsubscribe func())
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCache enables GET response caching.
func WithCache(rc *cache.ResponseCache) Option {
	return func(c *Client) { c.cache = rc }
}

// Client is an OpenVault API client. One HTTP request per call, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	cache      *cache.ResponseCache
	logger     *common.Logger
}

// New creates a client for baseURL, which includes the /api prefix.
func New(baseURL string, tokens TokenSource, logger *common.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WatchSession flushes the response cache on every session transition.
func (c *Client) WatchSession(stream SessionStream) (unsubscribe func()) {
	return stream.Subscribe(func(*session.Session) {
		if c.cache != nil {
			c.cache.Flush()
		}
	})
}

// errorBody is the error envelope the API returns.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs one request. query may be nil; body and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	token, hasToken := "", false
	if c.tokens != nil && !strings.HasPrefix(path, "/auth/") {
		token, hasToken = c.tokens.CurrentToken(ctx)
	}

	var cacheKey string
	if method == http.MethodGet && c.cache != nil && hasToken {
		cacheKey = cache.MakeKey(cacheUser(token), method, target)
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.logger.Debug().Str("path", target).Msg("api cache hit")
			return decode(cached.Body, out)
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("api request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if method != http.MethodGet && c.cache != nil {
		c.cache.Flush()
	}
	if cacheKey != "" {
		c.cache.Set(cacheKey, &cache.CachedResponse{StatusCode: resp.StatusCode, Body: data})
	}

	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func newAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
	} else if text := strings.TrimSpace(string(data)); text != "" && len(text) < 256 {
		apiErr.Message = text
	}
	return apiErr
}

// cacheUser scopes cache entries to the token's user. Undecodable tokens share bucket 0.
func cacheUser(token string) int64 {
	claims, err := session.Decode(token)
	if err != nil {
		return 0
	}
	return claims.UserID
}
