// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/cache"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	return New(store, time.Minute, []byte("scope-key-for-tests-0123456789ab"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetch_CachesWithinStaleTime(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	var calls int

	fn := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	k := Key{Resource: "roles", Public: true}
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, k, fn)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	}
	assert.Equal(t, 1, calls)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	boom := errors.New("boom")
	var calls int

	fn := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	k := Key{Resource: "stats"}
	_, err := Fetch(ctx, c, k, fn)
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, c, k, fn)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	k := Key{Resource: "faqs", Public: true}
	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, k, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Let the goroutines pile up on the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "v", r)
	}
}

func TestFetch_SharedCallSurvivesCallerCancel(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Fetch(ctx, c, Key{Resource: "r"}, func(ctx context.Context) (string, error) {
		return "ok", ctx.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestFetch_SharedUnauthorizedEndsEverySession(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	t.Cleanup(srv.Close)

	api := apiclient.New(apiclient.Config{BaseURL: srv.URL, Logger: slog.New(slog.DiscardHandler)})
	c := newTestClient(t)
	fn := func(ctx context.Context) (string, error) {
		var out string
		err := api.Get(ctx, "/users/profile", nil, &out)
		return out, err
	}

	var expired [2]atomic.Int32
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		ctx := apiclient.WithToken(context.Background(), "same-token")
		ctx = apiclient.WithUnauthorizedHook(ctx, func() { expired[i].Add(1) })
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = Fetch(ctx, c, Key{Resource: "profile"}, fn)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load(), "callers share one upstream call")
	for i := range 2 {
		assert.ErrorIs(t, errs[i], apiclient.ErrUnauthorized)
		assert.Equal(t, int32(1), expired[i].Load(), "caller %d session not ended", i)
	}
}

func TestFetch_OtherErrorsDoNotRunHook(t *testing.T) {
	c := newTestClient(t)
	var hooked bool
	ctx := apiclient.WithUnauthorizedHook(context.Background(), func() { hooked = true })

	_, err := Fetch(ctx, c, Key{Resource: "r"}, func(context.Context) (int, error) {
		return 0, &apiclient.APIError{Status: http.StatusBadGateway}
	})

	require.Error(t, err)
	assert.False(t, hooked)
}

func TestScope_SeparatesTokens(t *testing.T) {
	c := newTestClient(t)

	anon := context.Background()
	alice := apiclient.WithToken(anon, "token-alice")
	bob := apiclient.WithToken(anon, "token-bob")

	assert.Equal(t, PublicScope, c.Scope(anon, false))
	assert.Equal(t, PublicScope, c.Scope(alice, true))
	assert.NotEqual(t, c.Scope(alice, false), c.Scope(bob, false))
	assert.Equal(t, c.Scope(alice, false), c.Scope(alice, false))
	assert.NotContains(t, c.Scope(alice, false), "token-alice")

	var calls int
	fn := func(ctx context.Context) (string, error) {
		calls++
		return apiclient.TokenFromContext(ctx), nil
	}
	k := Key{Resource: "my-requests"}
	a, _ := Fetch(alice, c, k, fn)
	b, _ := Fetch(bob, c, k, fn)
	assert.Equal(t, "token-alice", a)
	assert.Equal(t, "token-bob", b)
	assert.Equal(t, 2, calls)
}

func TestKeyString(t *testing.T) {
	c := newTestClient(t)
	k := Key{Resource: "service-requests", Params: url.Values{"offset": {"10"}, "limit": {"10"}}}

	got := c.String(context.Background(), k)
	assert.Equal(t, "q:service-requests:public:limit=10&offset=10", got)
	assert.True(t, strings.HasPrefix(c.String(apiclient.WithToken(context.Background(), "t"), k), "q:service-requests:"))
}

func TestInvalidate(t *testing.T) {
	c := newTestClient(t)
	ctx := apiclient.WithToken(context.Background(), "t")
	var roleCalls, userCalls int

	roles := func(context.Context) (int, error) { roleCalls++; return roleCalls, nil }
	users := func(context.Context) (int, error) { userCalls++; return userCalls, nil }

	_, _ = Fetch(ctx, c, Key{Resource: "roles", Params: url.Values{"page": {"1"}}}, roles)
	_, _ = Fetch(ctx, c, Key{Resource: "roles", Public: true}, roles)
	_, _ = Fetch(ctx, c, Key{Resource: "users"}, users)

	c.Invalidate(ctx, "roles")

	_, _ = Fetch(ctx, c, Key{Resource: "roles", Params: url.Values{"page": {"1"}}}, roles)
	_, _ = Fetch(ctx, c, Key{Resource: "roles", Public: true}, roles)
	_, _ = Fetch(ctx, c, Key{Resource: "users"}, users)

	assert.Equal(t, 4, roleCalls, "both role queries refetched")
	assert.Equal(t, 1, userCalls, "users untouched")
}

func TestStats(t *testing.T) {
	c := newTestClient(t)
	_, _ = Fetch(context.Background(), c, Key{Resource: "x"}, func(context.Context) (int, error) { return 1, nil })

	s, ok := c.Stats()
	require.True(t, ok)
	assert.Equal(t, "memory", s.Backend)
	assert.Equal(t, 1, s.Items)
}
