// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/metonline/hesap-paylas/apperr"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Client talks to the Hesap Paylaş backend API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRate limits outbound requests to rps per second with the given burst.
// rps <= 0 disables limiting.
func WithRate(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a client for the API rooted at baseURL (for example
// https://hesap-paylas-api.onrender.com/api).
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// clientFor returns a client that attaches token as a bearer credential.
// An empty token yields the plain client.
func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.httpClient.Timeout
	return hc
}

// errorBody is the shape the backend uses for failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// do sends one JSON request and decodes a 2xx response into out.
// Transport failures become NETWORK_FAILURE; non-2xx statuses go through
// mapStatus.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	if err := c.wait(ctx); err != nil {
		return apperr.ErrNetworkFailure.WithCause(fmt.Errorf("rate limit: %w", err))
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(ctx, token).Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return apperr.ErrNetworkFailure.WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return mapStatus(resp.StatusCode, eb.text())
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.CodeBackend, "unreadable backend response", err)
	}
	return nil
}

// mapStatus turns a failed backend response into a join-flow error.
func mapStatus(status int, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusUnauthorized:
		return withMessage(apperr.ErrUnauthorized, msg)
	case status == http.StatusNotFound,
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "bulunamadı"),
		strings.Contains(lower, "invalid group code"):
		return withMessage(apperr.ErrJoinNotFound, msg)
	case strings.Contains(lower, "already"), strings.Contains(lower, "zaten"):
		return withMessage(apperr.ErrJoinAlreadyMember, msg)
	case status >= 500:
		return apperr.Wrap(apperr.CodeBackend, "backend unavailable", fmt.Errorf("status %d: %s", status, msg))
	default:
		if msg == "" {
			msg = fmt.Sprintf("backend returned status %d", status)
		}
		return apperr.New(apperr.CodeBackend, msg)
	}
}

func withMessage(base *apperr.Error, msg string) error {
	if msg == "" {
		return base
	}
	return apperr.New(base.Code, msg)
}
