// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/model"
)

// backend answers every call with status.
func backend(t *testing.T, status int) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"x","data":[]}`))
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL})
}

// protectedPage makes one API call, then renders a page.
func protectedPage(api *apiclient.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = api.Get(r.Context(), "/users", nil, nil)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("secret table"))
	})
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "tok"})
	return req
}

func middlewareManager() *Manager {
	return newTestManager(&fakeAuth{profile: &model.UserProfile{ID: "u1", Role: model.RoleAdmin}})
}

func TestMiddleware_PassesThrough(t *testing.T) {
	m := middlewareManager()
	var seen Session
	var token string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).Snapshot()
		token = apiclient.TokenFromContext(r.Context())
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodGet, "/dashboard"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.True(t, seen.IsAuthenticated)
	assert.Equal(t, "tok", token)
}

func TestMiddleware_UnauthorizedRedirectsToLogin(t *testing.T) {
	m := middlewareManager()
	h := m.Middleware(protectedPage(backend(t, http.StatusUnauthorized)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodGet, "/dashboard/users?page=2"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/dashboard/users?page=2"), rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "secret")

	c := findCookie(rec, TokenCookieName)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestMiddleware_UnauthorizedHTMX(t *testing.T) {
	m := middlewareManager()
	h := m.Middleware(protectedPage(backend(t, http.StatusUnauthorized)))

	req := authedRequest(http.MethodGet, "/dashboard/users")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Redirect"), "/login?next=")
	assert.Empty(t, rec.Body.String())
}

func TestMiddleware_UnauthorizedJSON(t *testing.T) {
	m := middlewareManager()
	h := m.Middleware(protectedPage(backend(t, http.StatusUnauthorized)))

	req := authedRequest(http.MethodGet, "/dashboard/roles/check-slug?slug=x")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
	assert.Contains(t, body["redirect"], "/login")
}

func TestMiddleware_UnauthorizedWithoutWrite(t *testing.T) {
	m := middlewareManager()
	api := backend(t, http.StatusUnauthorized)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = api.Get(r.Context(), "/users", nil, nil)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodGet, "/client/requests"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login")
}

func TestMiddleware_OtherErrorsDoNotLogout(t *testing.T) {
	m := middlewareManager()
	h := m.Middleware(protectedPage(backend(t, http.StatusForbidden)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodGet, "/dashboard/users"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, findCookie(rec, TokenCookieName))
}

func TestFromContext_Default(t *testing.T) {
	st := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Equal(t, StatusUnauthenticated, st.Snapshot().Status())
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		referer string
		want    string
	}{
		{"get keeps path", http.MethodGet, "/client/library", "", "/login?next=%2Fclient%2Flibrary"},
		{"root has no next", http.MethodGet, "/", "", "/login"},
		{"login page has no next", http.MethodGet, "/login?next=%2Fx", "", "/login"},
		{"post uses referer", http.MethodPost, "/dashboard/users/1/delete", "http://example.com/dashboard/users", "/login?next=%2Fdashboard%2Fusers"},
		{"post foreign referer", http.MethodPost, "/dashboard/users/1/delete", "http://evil.test/x", "/login"},
		{"post no referer", http.MethodPost, "/dashboard/users/1/delete", "", "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, LoginURL("/login", req))
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"/dashboard":           "/dashboard",
		"/client/requests?x=1": "/client/requests?x=1",
		"https://evil.test":    "",
		"//evil.test":          "",
		"/\\evil.test":         "",
		"dashboard":            "",
		"/a\r\nSet-Cookie: x":  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeNext(in), "SafeNext(%q)", in)
	}
}
