// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware shared by every SOSLAW
// route group: language resolution, security headers, CSRF, rate limiting,
// timeouts and log context.
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/soslaw/soslaw-web/internal/logging"
	"github.com/soslaw/soslaw-web/internal/session"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// ClientIP returns the caller's address. X-Real-IP wins over the first
// X-Forwarded-For hop, which wins over RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// StripTrailingSlash answers /path/ with a 301 to /path, keeping the query.
// The root path is left alone.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if len(p) > 1 && strings.HasSuffix(p, "/") {
			target := "/" + strings.Trim(p, "/")
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LogContext attaches path, language and, once the session is known, the
// user ID and role to every log record written while serving r. Mount it
// after session.Manager.Middleware and Language.
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.With(r.Context(), "path", r.URL.Path, "lang", Lang(r.Context()))
		if u := session.FromContext(ctx).Snapshot().User; u != nil {
			ctx = logging.With(ctx, "user_id", u.ID, "role", u.Role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
