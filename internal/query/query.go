// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package query caches read calls to the backend API. Concurrent requests
// for the same key share one upstream call, results stay fresh for a stale
// time, and mutations invalidate a whole resource.
package query

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/cache"
)

// PublicScope is used for queries that do not depend on who is asking.
const PublicScope = "public"

const keyPrefix = "q:"

// Client is the query cache.
type Client struct {
	store     cache.Cacher
	group     singleflight.Group
	staleTime time.Duration
	scopeKey  []byte
	logger    *slog.Logger
}

// New creates a query cache over store. scopeKey authenticates the
// per-token scope so tokens never appear in cache keys.
func New(store cache.Cacher, staleTime time.Duration, scopeKey []byte, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		store:     store,
		staleTime: staleTime,
		scopeKey:  scopeKey,
		logger:    logger,
	}
}

// Key identifies one cached query.
type Key struct {
	Resource string
	Public   bool
	Params   url.Values
}

// Scope returns the cache scope for the caller in ctx.
func (c *Client) Scope(ctx context.Context, public bool) string {
	token := apiclient.TokenFromContext(ctx)
	if public || token == "" {
		return PublicScope
	}
	mac := hmac.New(sha256.New, c.scopeKey)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))[:24]
}

// String renders the key as q:<resource>:<scope>:<params>.
func (c *Client) String(ctx context.Context, k Key) string {
	return keyPrefix + k.Resource + ":" + c.Scope(ctx, k.Public) + ":" + k.Params.Encode()
}

// Fetch returns the cached value for k, or calls fn once for all concurrent
// callers and caches its result. Errors are never cached.
func Fetch[T any](ctx context.Context, c *Client, k Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	key := c.String(ctx, k)

	if data, err := c.store.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		_ = c.store.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("query cache read failed", "key_resource", k.Resource, "error", err)
	}

	// The shared call outlives the first caller's cancellation. apiclient
	// still bounds it with its own timeout.
	var led bool
	res, err, _ := c.group.Do(key, func() (any, error) {
		led = true
		shared := context.WithoutCancel(ctx)
		v, err := fn(shared)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s query: %w", k.Resource, err)
		}
		if err := c.store.Set(shared, key, data, c.staleTime); err != nil {
			c.logger.Warn("query cache write failed", "key_resource", k.Resource, "error", err)
		}
		return v, nil
	})
	if err != nil {
		// The upstream call only carried the leader's 401 hook.
		if !led && errors.Is(err, apiclient.ErrUnauthorized) {
			apiclient.NotifyUnauthorized(ctx)
		}
		return zero, err
	}
	return res.(T), nil
}

// Invalidate drops every cached query for the resources, across all scopes.
func (c *Client) Invalidate(ctx context.Context, resources ...string) {
	for _, r := range resources {
		if err := c.store.DeleteByPrefix(ctx, keyPrefix+r+":"); err != nil {
			c.logger.Warn("query cache invalidation failed", "resource", r, "error", err)
		}
	}
}

// Stats exposes the backing cache's statistics when it has them.
func (c *Client) Stats() (cache.Stats, bool) {
	sp, ok := c.store.(cache.StatsProvider)
	if !ok {
		return cache.Stats{}, false
	}
	return sp.Stats(), true
}
