// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestDo_AttachesBearerTokenAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotQuery, gotLang string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"7","name":"x"}`)
	})

	ctx := WithLanguage(WithToken(context.Background(), "tok123"), "fr")
	var out struct {
		ID string `json:"id"`
	}
	err := c.Get(ctx, "/users/7", url.Values{"a": {"1"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "/api/v1/users/7", gotPath)
	assert.Equal(t, "a=1", gotQuery)
	assert.Equal(t, "fr", gotLang)
	assert.Equal(t, "7", out.ID)
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Get(context.Background(), "/public/roles", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestDo_SendsJSONBody(t *testing.T) {
	var got map[string]string
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})

	err := c.Post(context.Background(), "/contact-requests", map[string]string{"name": "Amina"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Amina", got["name"])
}

func TestDo_RawOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[1,2,3]`)
	})

	var raw []byte
	require.NoError(t, c.Get(context.Background(), "/x", nil, &raw))
	assert.Equal(t, `[1,2,3]`, string(raw))
}

func TestDo_ValidationErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"message":"Validation failed","errors":[
			{"field":"email","message":"Email is invalid"},
			{"path":"phone","msg":"Phone is required"},
			{"field":"email","message":"second message ignored"}]}`)
	})

	err := c.Post(context.Background(), "/auth/register", map[string]string{}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Equal(t, map[string]string{
		"email": "Email is invalid",
		"phone": "Phone is required",
	}, FieldErrors(err))
	assert.Equal(t, "Validation failed", Message(err, "fallback"))
}

func TestDo_ServerErrorUsesFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.Get(context.Background(), "/users", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "fallback", Message(err, "fallback"))
	assert.False(t, IsNotFound(err))
}

func TestDo_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Role not found"}`)
	})

	err := c.Get(context.Background(), "/public/roles/nope", nil, nil)
	assert.True(t, IsNotFound(err))
}

func TestDo_UnauthorizedRunsHooks(t *testing.T) {
	var global atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"jwt expired"}`)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		BaseURL:        srv.URL,
		OnUnauthorized: func(context.Context) { global.Add(1) },
	})

	var local int
	ctx := WithUnauthorizedHook(context.Background(), func() { local++ })

	// Any endpoint triggers the hook, not only auth ones.
	err := c.Get(ctx, "/roles/stats", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, local)
	assert.Equal(t, int32(1), global.Load())
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	err := c.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_CallerCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestResourceLabel(t *testing.T) {
	tests := map[string]string{
		"/roles/42/status":   "roles",
		"/users":             "users",
		"/public/roles/slug": "public",
		"/":                  "root",
		"":                   "root",
	}
	for in, want := range tests {
		if got := resourceLabel(in); got != want {
			t.Errorf("resourceLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	got, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}
