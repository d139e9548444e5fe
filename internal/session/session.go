// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns "who is logged in". The bearer token lives in the
// jwt cookie; a per-request State is bootstrapped from it and changed only
// through reducer actions. Flash messages and the last auth error live in
// a server-side scs session.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// NewStore creates the server-side session manager backed by SQLite.
func NewStore(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-soslaw_session"
	}

	return sm
}

// keyAuthError holds the last login or register error across the redirect.
const keyAuthError = "auth_error"
