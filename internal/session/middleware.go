// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/soslaw/soslaw-web/internal/apiclient"
)

type contextKey string

const stateKey contextKey = "session_state"

// FromContext returns the request's session state. Outside the middleware
// it returns a fresh Unauthenticated state.
func FromContext(ctx context.Context) *State {
	if st, ok := ctx.Value(stateKey).(*State); ok && st != nil {
		return st
	}
	st := NewState()
	st.Dispatch(Action{Type: SetUser, User: nil})
	return st
}

// WithState stores st in ctx.
func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

// Middleware bootstraps the session from the jwt cookie and makes every
// API call in the request carry the token. If any call gets a 401, the
// response is replaced by a redirect to the login page.
// It must run inside the scs LoadAndSave middleware.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := NewState()
		iw := &interceptWriter{ResponseWriter: w, req: r, st: st, m: m}

		var token string
		if c, err := r.Cookie(TokenCookieName); err == nil {
			token = c.Value
		}

		m.Bootstrap(r.Context(), iw, st, token)
		m.restoreError(r.Context(), st)

		ctx := WithState(r.Context(), st)
		ctx = apiclient.WithToken(ctx, st.Token())
		ctx = apiclient.WithUnauthorizedHook(ctx, st.Expire)

		next.ServeHTTP(iw, r.WithContext(ctx))
		iw.finish()
	})
}

// interceptWriter holds back the response once the session has expired and
// sends the login redirect instead. Handlers render into a buffer before
// writing, so API calls finish before the first byte goes out.
type interceptWriter struct {
	http.ResponseWriter
	req         *http.Request
	st          *State
	m           *Manager
	wroteHeader bool
	redirected  bool
}

func (w *interceptWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if w.st.Expired() {
		w.redirect()
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *interceptWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.redirected {
		// Discarded: the client is being sent to the login page.
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *interceptWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *interceptWriter) finish() {
	if !w.wroteHeader && w.st.Expired() {
		w.wroteHeader = true
		w.redirect()
	}
}

func (w *interceptWriter) redirect() {
	w.redirected = true
	h := w.ResponseWriter.Header()
	for _, k := range []string{"Content-Type", "Content-Length", "Content-Encoding", "Location", "HX-Redirect"} {
		h.Del(k)
	}
	w.m.clearTokenCookie(w.ResponseWriter)
	target := LoginURL(w.m.loginPath, w.req)

	switch {
	case w.req.Header.Get("HX-Request") == "true":
		h.Set("HX-Redirect", target)
		w.ResponseWriter.WriteHeader(http.StatusUnauthorized)
	case strings.Contains(w.req.Header.Get("Accept"), "application/json"):
		h.Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w.ResponseWriter).Encode(map[string]string{"error": "unauthorized", "redirect": target})
	default:
		h.Set("Location", target)
		w.ResponseWriter.WriteHeader(http.StatusSeeOther)
	}
}

// LoginURL builds the login redirect, remembering where the user was going.
// For non-GET requests the referring page is used instead of the form target.
func LoginURL(loginPath string, r *http.Request) string {
	next := ""
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		next = r.URL.RequestURI()
	} else if ref, err := url.Parse(r.Referer()); err == nil && (ref.Host == "" || ref.Host == r.Host) {
		next = ref.RequestURI()
	}
	next = SafeNext(next)
	if next == "" || next == "/" || strings.HasPrefix(next, loginPath) {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local path, otherwise "".
// It rejects absolute URLs and protocol-relative "//host" forms.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") || strings.ContainsAny(next, "\r\n") {
		return ""
	}
	return next
}
