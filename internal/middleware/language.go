// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/i18n"
)

// ContextKeyLanguage holds the resolved language code.
const ContextKeyLanguage ContextKey = "language"

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "soslaw_lang"

const languageCookieMaxAge = 365 * 24 * 60 * 60

// CountryHinter suggests a language from the client IP. geoip.Lookup
// implements it.
type CountryHinter interface {
	Language(ip string) string
}

// Language resolves the request language and stores it in the context, also
// as the Accept-Language of outgoing API calls. Priority order:
//  1. ?lang=xx (explicit switch, also updates the cookie)
//  2. the language cookie
//  3. the Accept-Language header
//  4. the country of the client IP, when hints is non-nil
//  5. the default language
func Language(hints CountryHinter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLanguage(w, r, hints)
			ctx := WithLang(r.Context(), lang)
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(w http.ResponseWriter, r *http.Request, hints CountryHinter) string {
	if q := strings.ToLower(r.URL.Query().Get("lang")); q != "" && i18n.IsSupported(q) {
		SetLanguageCookie(w, q)
		return q
	}

	if c, err := r.Cookie(LanguageCookieName); err == nil {
		if code := strings.ToLower(c.Value); i18n.IsSupported(code) {
			return code
		}
	}

	if accept := r.Header.Get("Accept-Language"); strings.TrimSpace(accept) != "" {
		return i18n.MatchLanguage(accept)
	}

	if hints != nil {
		if code := hints.Language(ClientIP(r)); code != "" && i18n.IsSupported(code) {
			return code
		}
	}

	return i18n.Default()
}

// WithLang stores lang in ctx for templates and for the API client.
func WithLang(ctx context.Context, lang string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyLanguage, lang)
	return apiclient.WithLanguage(ctx, lang)
}

// Lang returns the language stored by Language, or the default language.
func Lang(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.Default()
}

// SetLanguageCookie remembers langCode for a year.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   languageCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
