// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard gates routes behind authentication, role and email
// verification checks.
package guard

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/session"
)

// Options configures one guarded route group.
type Options struct {
	RequireAuth              bool
	AllowedRoles             []string // empty means any role
	RedirectTo               string   // defaults to /login
	RequireEmailVerification bool
}

// FallbackPolicy says where a signed-in user goes when their role is not
// allowed on a route.
type FallbackPolicy struct {
	ByRole  map[string]string
	Default string
}

// DefaultFallback sends admins to the dashboard and everyone else home.
var DefaultFallback = FallbackPolicy{
	ByRole:  map[string]string{"admin": "/dashboard"},
	Default: "/",
}

// Target returns the fallback path for role.
func (p FallbackPolicy) Target(role string) string {
	if t, ok := p.ByRole[role]; ok {
		return t
	}
	if p.Default == "" {
		return "/"
	}
	return p.Default
}

// VerifyEmailPath is where unverified users are sent.
const VerifyEmailPath = "/verify-email"

// Outcome is what the guard decided.
type Outcome int

const (
	Allow Outcome = iota
	ShowLoading
	Redirect
)

// Decision is an Outcome plus the redirect target, if any.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide applies opts to the session for a request to requestURI.
func Decide(s session.Session, opts Options, policy FallbackPolicy, requestURI string) Decision {
	if s.Status() == session.StatusLoading {
		return Decision{Outcome: ShowLoading}
	}
	if !opts.RequireAuth {
		return Decision{Outcome: Allow}
	}
	if !s.IsAuthenticated {
		return Decision{Outcome: Redirect, Target: loginTarget(opts.RedirectTo, requestURI)}
	}
	if len(opts.AllowedRoles) > 0 && !slices.Contains(opts.AllowedRoles, s.User.Role) {
		return Decision{Outcome: Redirect, Target: policy.Target(s.User.Role)}
	}
	if opts.RequireEmailVerification && !s.User.IsEmailVerified {
		return Decision{Outcome: Redirect, Target: VerifyEmailPath}
	}
	return Decision{Outcome: Allow}
}

func loginTarget(redirectTo, requestURI string) string {
	if redirectTo == "" {
		redirectTo = "/login"
	}
	next := session.SafeNext(requestURI)
	if next == "" || next == "/" {
		return redirectTo
	}
	if strings.HasPrefix(next, redirectTo) {
		return redirectTo
	}
	return redirectTo + "?next=" + url.QueryEscape(next)
}

// Guard builds route middleware.
type Guard struct {
	loading  http.Handler
	fallback FallbackPolicy
}

// New creates a Guard. loading renders the page shown while the session
// cannot be resolved yet.
func New(loading http.Handler) *Guard {
	return &Guard{loading: loading, fallback: DefaultFallback}
}

// WithFallback replaces the role fallback policy.
func (g *Guard) WithFallback(p FallbackPolicy) *Guard {
	g.fallback = p
	return g
}

// Require returns middleware enforcing opts. It must run after the session
// middleware.
func (g *Guard) Require(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context()).Snapshot()
			d := Decide(s, opts, g.fallback, r.URL.RequestURI())

			switch d.Outcome {
			case ShowLoading:
				w.Header().Set("Cache-Control", "no-store")
				g.loading.ServeHTTP(w, r)
			case Redirect:
				if middleware.IsHTMX(r) {
					w.Header().Set("HX-Redirect", d.Target)
					w.WriteHeader(http.StatusNoContent)
					return
				}
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
