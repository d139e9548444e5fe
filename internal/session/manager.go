// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/model"
)

// TokenCookieName is the cookie holding the bearer token.
const TokenCookieName = "jwt"

// TokenLifetime is how long the jwt cookie lives after login or register.
const TokenLifetime = 7 * 24 * time.Hour

// Authenticator is the part of the auth service the session needs.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Register(ctx context.Context, data model.RegisterData) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*model.UserProfile, error)
}

// ProfileFunc loads the profile for the token in ctx. It lets callers put a
// cache in front of Authenticator.Profile.
type ProfileFunc func(ctx context.Context) (*model.UserProfile, error)

// Config configures a Manager.
type Config struct {
	Auth          Authenticator
	Store         *scs.SessionManager // optional; persists the auth error across redirects
	Profile       ProfileFunc         // optional; defaults to Auth.Profile
	SecureCookie  bool
	LogoutTimeout time.Duration
	LoginPath     string
	Logger        *slog.Logger
}

// Manager runs the session lifecycle operations.
type Manager struct {
	auth          Authenticator
	store         *scs.SessionManager
	profile       ProfileFunc
	secure        bool
	logoutTimeout time.Duration
	loginPath     string
	logger        *slog.Logger
	now           func() time.Time
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		auth:          cfg.Auth,
		store:         cfg.Store,
		profile:       cfg.Profile,
		secure:        cfg.SecureCookie,
		logoutTimeout: cfg.LogoutTimeout,
		loginPath:     cfg.LoginPath,
		logger:        cfg.Logger,
		now:           time.Now,
	}
	if m.profile == nil {
		m.profile = cfg.Auth.Profile
	}
	if m.logoutTimeout <= 0 {
		m.logoutTimeout = 5 * time.Second
	}
	if m.loginPath == "" {
		m.loginPath = "/login"
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Result is what Login and Register return. They never return an error;
// failures are reported here.
type Result struct {
	Success     bool
	User        *model.UserProfile
	Error       string
	FieldErrors map[string]string
}

// Bootstrap checks the persisted token and moves st out of Loading.
//
//   - no token: Unauthenticated.
//   - profile fetched: Authenticated.
//   - profile fetch failed for any reason: Unauthenticated, and the cookie
//     is deleted.
func (m *Manager) Bootstrap(ctx context.Context, w http.ResponseWriter, st *State, token string) {
	if token == "" {
		st.Dispatch(Action{Type: SetUser, User: nil})
		return
	}

	// A 401 here is the expected "stale token" outcome, not a forced logout.
	ctx = apiclient.WithUnauthorizedHook(apiclient.WithToken(ctx, token), nil)

	user, err := m.profile(ctx)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			m.logger.Info("stored token rejected, clearing", "status", apiErr.Status)
		} else {
			m.logger.Warn("session bootstrap failed, clearing token", "error", err)
		}
		m.clearTokenCookie(w)
		st.Dispatch(Action{Type: SetUser, User: nil})
		return
	}

	st.setToken(token)
	st.Dispatch(Action{Type: SetUser, User: user})
}

// Login authenticates with the backend and persists the token.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, st *State, creds model.Credentials) Result {
	return m.authenticate(ctx, w, st, func(ctx context.Context) (*model.AuthResponse, error) {
		return m.auth.Login(ctx, creds)
	})
}

// Register creates an account and persists the token. The caller should
// send the user to email verification next.
func (m *Manager) Register(ctx context.Context, w http.ResponseWriter, st *State, data model.RegisterData) Result {
	return m.authenticate(ctx, w, st, func(ctx context.Context) (*model.AuthResponse, error) {
		return m.auth.Register(ctx, data)
	})
}

func (m *Manager) authenticate(ctx context.Context, w http.ResponseWriter, st *State, call func(context.Context) (*model.AuthResponse, error)) Result {
	st.Dispatch(Action{Type: SetLoading, Loading: true})

	// Bad credentials come back as 401; that must not trigger the forced
	// logout, and no old token is sent along.
	callCtx := apiclient.WithUnauthorizedHook(apiclient.WithToken(ctx, ""), nil)

	resp, err := call(callCtx)
	if err != nil || resp.User == nil {
		msg := apiclient.Message(err, "auth.failed")
		if err == nil {
			msg = "auth.failed"
		}
		st.Dispatch(Action{Type: SetError, Error: msg})
		m.persistError(ctx, msg)
		if err != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
			m.logger.Warn("authentication failed", "error", err)
		}
		return Result{Success: false, Error: msg, FieldErrors: apiclient.FieldErrors(err)}
	}

	m.setTokenCookie(w, resp.Token)
	st.setToken(resp.Token)
	st.Dispatch(Action{Type: SetUser, User: resp.User})

	// New privilege level, new session token.
	m.renewStore(ctx)

	return Result{Success: true, User: resp.User}
}

// Logout ends the session. The backend call is best effort with a bounded
// timeout; its failure is logged and otherwise ignored. The cookie and the
// state are cleared regardless.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, st *State) {
	if token := st.Token(); token != "" {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.logoutTimeout)
		callCtx = apiclient.WithUnauthorizedHook(apiclient.WithToken(callCtx, token), nil)
		if err := m.auth.Logout(callCtx); err != nil {
			m.logger.Info("backend logout failed, clearing local session anyway", "error", err)
		}
		cancel()
	}

	m.clearTokenCookie(w)
	st.Dispatch(Action{Type: Logout})
	st.setToken("")

	m.renewStore(ctx)
}

// ClearError drops the displayed auth error. Idempotent.
func (m *Manager) ClearError(ctx context.Context, st *State) {
	st.Dispatch(Action{Type: ClearError})
	m.withStore(func(sm *scs.SessionManager) { sm.Remove(ctx, keyAuthError) })
}

func (m *Manager) persistError(ctx context.Context, msg string) {
	m.withStore(func(sm *scs.SessionManager) { sm.Put(ctx, keyAuthError, msg) })
}

// restoreError loads a persisted auth error into st.
func (m *Manager) restoreError(ctx context.Context, st *State) {
	m.withStore(func(sm *scs.SessionManager) {
		if msg := sm.GetString(ctx, keyAuthError); msg != "" {
			st.Dispatch(Action{Type: SetError, Error: msg})
		}
	})
}

func (m *Manager) renewStore(ctx context.Context) {
	m.withStore(func(sm *scs.SessionManager) {
		if err := sm.RenewToken(ctx); err != nil {
			m.logger.Warn("renewing session token failed", "error", err)
		}
		sm.Remove(ctx, keyAuthError)
	})
}

// withStore runs fn against the server-side session, if there is one.
// scs panics when the context was not loaded by LoadAndSave.
func (m *Manager) withStore(fn func(sm *scs.SessionManager)) {
	if m.store == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debug("no server-side session in context", "panic", r)
		}
	}()
	fn(m.store)
}

func (m *Manager) setTokenCookie(w http.ResponseWriter, token string) {
	expires := m.now().Add(TokenLifetime)
	if exp, ok := apiclient.TokenExpiry(token); ok && exp.Before(expires) && exp.After(m.now()) {
		expires = exp
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(m.now()).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
