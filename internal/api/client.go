// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/microstep-tui/internal/session"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:5000/api"

	// maxErrorBody caps how much of an error response is read.
	// SECURITY: a misbehaving server cannot exhaust memory through error bodies.
	maxErrorBody = 64 * 1024

	// RequestIDHeader carries a per-call correlation id.
	RequestIDHeader = "X-Request-ID"
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Without it, or with d <= 0, a request
// waits as long as the transport and the caller's context allow.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. Callers wait for a slot; nothing is dropped or retried.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithUnauthorizedHandler registers fn to run after a 401 has cleared the session.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues JSON requests against the API.
//
// The Client is safe for concurrent use; the session store it reads the
// token from does its own locking.
type Client struct {
	baseURL        string
	store          *session.Store
	httpClient     *http.Client
	onUnauthorized func()
	limiter        *rate.Limiter // nil means unlimited
}

// New creates a client bound to baseURL. store may be nil for the
// single-user variant, in which case no Authorization header is sent.
func New(baseURL string, store *session.Store, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		store:      store,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the injected session store, which may be nil.
func (c *Client) Session() *session.Store {
	return c.store
}

// Do sends a request and decodes a 2xx JSON body into out (nil discards it).
// fallback is the message used when a failure carries no server message.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, fallback string) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Message: fallback, Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: fallback, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	if c.store != nil {
		if token := c.store.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindNetwork, Op: op, Message: fallback, Cause: err}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("API_ERROR | id=%s op=%q kind=network error=%v", reqID, op, err)
		return &Error{Kind: KindNetwork, Op: op, Message: fallback, Cause: err}
	}
	defer resp.Body.Close()

	log.Printf("API_REQUEST | id=%s op=%q status=%d latency=%dms", reqID, op, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.errorFromResponse(op, resp, fallback)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(reqID)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Message: fallback, Cause: err}
	}
	return nil
}

// errorFromResponse builds the HTTP error, preferring the body's "message".
func (c *Client) errorFromResponse(op string, resp *http.Response, fallback string) *Error {
	apiErr := &Error{Kind: KindHTTP, Op: op, Status: resp.StatusCode, Message: fallback}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) != nil {
		return apiErr
	}
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg = strings.TrimSpace(msg); msg != "" {
		apiErr.Message = msg
		apiErr.ServerMessage = true
	}
	return apiErr
}

// handleUnauthorized tears the session down. Clearing the store emits the
// logout event that sends the TUI back to its login route.
func (c *Client) handleUnauthorized(reqID string) {
	if c.store != nil {
		if err := c.store.Clear(); err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Printf("SESSION_CLEAR_FAILED | id=%s error=%v", reqID, err)
		}
	}
	log.Printf("SESSION_INVALIDATED | id=%s reason=http_401", reqID)
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
