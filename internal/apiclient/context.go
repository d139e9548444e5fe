// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	tokenKey        contextKey = "bearer_token"
	unauthorizedKey contextKey = "unauthorized_hook"
	languageKey     contextKey = "language"
)

// WithToken returns a context whose API calls carry token as a bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithUnauthorizedHook registers fn to run when any call made with ctx gets a 401.
func WithUnauthorizedHook(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, unauthorizedKey, fn)
}

func unauthorizedHookFromContext(ctx context.Context) func() {
	fn, _ := ctx.Value(unauthorizedKey).(func())
	return fn
}

// NotifyUnauthorized runs the hook registered on ctx, if any. It is for
// callers that got ErrUnauthorized from a call made with another context,
// such as a de-duplicated query.
func NotifyUnauthorized(ctx context.Context) {
	if hook := unauthorizedHookFromContext(ctx); hook != nil {
		hook()
	}
}

// WithLanguage makes API calls send lang as Accept-Language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

// LanguageFromContext returns the language stored by WithLanguage.
func LanguageFromContext(ctx context.Context) string {
	lang, _ := ctx.Value(languageKey).(string)
	return lang
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The site never trusts the claim; it only uses it to avoid keeping a cookie
// longer than the token is valid.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
