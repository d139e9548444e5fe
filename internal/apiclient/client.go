// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the HTTP adapter for the SOSLAW REST API.
// It attaches the caller's bearer token, bounds every call with a timeout
// and reports 401 responses to a hook so the session can be ended.
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
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// APIPrefix is prepended to every resource path.
const APIPrefix = "/api/v1"

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 << 20

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger

	// HTTPClient overrides the transport (tests). Its Timeout is ignored;
	// Timeout above bounds each call through the context instead.
	HTTPClient *http.Client

	// OnUnauthorized runs for every 401, after any per-request hook.
	OnUnauthorized func(ctx context.Context)
}

// Client calls the backend API.
type Client struct {
	baseURL        string
	timeout        time.Duration
	userAgent      string
	http           *http.Client
	logger         *slog.Logger
	onUnauthorized func(ctx context.Context)
}

// New creates a Client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "soslaw-web"
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		timeout:        timeout,
		userAgent:      ua,
		http:           hc,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do performs one API call. path is relative to /api/v1. body, when non-nil,
// is sent as JSON. out may be nil, a *[]byte for the raw body, or any value
// json can decode into.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + APIPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", reqID)
	if lang := LanguageFromContext(ctx); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resource := resourceLabel(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	RequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues(resource, method, "error").Inc()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("api request timed out", "method", method, "path", path, "timeout", c.timeout)
			return fmt.Errorf("%s %s: %w: %w", method, path, ErrTimeout, err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	RequestsTotal.WithLabelValues(resource, method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx, method, path)
		} else if resp.StatusCode >= 500 {
			c.logger.Warn("api server error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		}
		return apiErr
	}

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	return decodeInto(data, out)
}

func (c *Client) handleUnauthorized(ctx context.Context, method, path string) {
	UnauthorizedTotal.Inc()
	c.logger.Info("api returned 401, ending session", "method", method, "path", path)
	NotifyUnauthorized(ctx)
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func decodeInto(data []byte, out any) error {
	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = data
		return nil
	case *json.RawMessage:
		*v = data
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// resourceLabel keeps metric cardinality bounded: "/roles/42/status" -> "roles".
func resourceLabel(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}
