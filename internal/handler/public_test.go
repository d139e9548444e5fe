// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/mail"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/store"
	"github.com/soslaw/soslaw-web/internal/testutil"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) (mail.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return mail.Receipt{MessageID: "m1"}, nil
}

func newPublicHandler(t *testing.T) (*PublicHandler, *testEnv, *recordingSender) {
	t.Helper()
	env := newTestEnv(t)
	sender := &recordingSender{}
	return NewPublicHandler(env.deps, store.NewConferences(testutil.TestDB(t)), sender), env, sender
}

func TestHome_SkipsFailingSections(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusOK, envelope([]model.Role{
		{ID: "2", Slug: "tax", TitleEn: "Tax law", Order: 2},
		{ID: "1", Slug: "family", TitleEn: "Family law", Order: 1},
	}))
	env.api.Handle(http.MethodGet, "/faqs", http.StatusInternalServerError, map[string]string{"message": "boom"})
	env.api.Handle(http.MethodGet, "/service-requests/services", http.StatusOK, []model.Service{{ID: "s1", NameEn: "Drafting"}})

	rec := serve(h.Home, get("/"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "page=public/home")
	assert.Contains(t, body, "Drafting")
	assert.Less(t, strings.Index(body, "Family law"), strings.Index(body, "Tax law"), "roles are sorted by order")
}

func TestHome_CachesPublicQueries(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusOK, []model.Role{{ID: "1", TitleEn: "Family law"}})
	env.api.Handle(http.MethodGet, "/faqs", http.StatusOK, []model.FAQ{})
	env.api.Handle(http.MethodGet, "/service-requests/services", http.StatusOK, []model.Service{})

	serve(h.Home, get("/"))
	serve(h.Home, get("/"))

	assert.Equal(t, 1, env.api.Count(http.MethodGet, "/public/roles"))
}

func TestRole_NotFound(t *testing.T) {
	h, _, _ := newPublicHandler(t)

	rec := serve(h.Role, withParams(get("/roles/missing"), "slug", "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page=errors/error")
}

func TestRole_RendersLocalizedTitle(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodGet, "/public/roles/family", http.StatusOK,
		envelope(model.Role{ID: "1", Slug: "family", TitleAr: "قانون الأسرة", TitleEn: "Family law"}))

	rec := serve(h.Role, withParams(get("/roles/family"), "slug", "family"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "title=Family law")
}

func TestContact_ValidationErrors(t *testing.T) {
	h, env, _ := newPublicHandler(t)

	rec := serve(h.Contact, postForm("/contact", url.Values{"name": {"A"}, "email": {"not-an-email"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "err[email]=")
	assert.Contains(t, body, "err[subject]=")
	assert.Equal(t, 0, env.api.Count(http.MethodPost, "/contact-requests"))
}

func TestContact_Submits(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodPost, "/contact-requests", http.StatusCreated, envelope(map[string]string{"id": "c1"}))

	rec := serve(h.Contact, postForm("/contact", url.Values{
		"name":    {"Amina Benali"},
		"email":   {"amina@example.com"},
		"subject": {"Inheritance"},
		"message": {"I need advice about an inheritance case."},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact", rec.Header().Get("Location"))
	call, ok := env.api.Last(http.MethodPost, "/contact-requests")
	require.True(t, ok)
	assert.Equal(t, "Inheritance", call.Body["subject"])
}

func TestContact_BackendFieldErrorsShownOnForm(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodPost, "/contact-requests", http.StatusBadRequest, map[string]any{
		"message": "Validation failed",
		"errors":  []map[string]string{{"field": "email", "message": "Email is blocked"}},
	})

	rec := serve(h.Contact, postForm("/contact", url.Values{
		"name":    {"Amina Benali"},
		"email":   {"amina@example.com"},
		"subject": {"Inheritance"},
		"message": {"I need advice about an inheritance case."},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "err[email]=Email is blocked")
}

func TestConference_RegistersOnceAndEmails(t *testing.T) {
	h, _, sender := newPublicHandler(t)
	form := url.Values{
		"fullName":   {"Karim Haddad"},
		"email":      {"Karim@Example.com"},
		"phone":      {"+213 555 000 000"},
		"profession": {"Lawyer"},
	}

	rec := serve(h.Conference, postForm("/conference", form))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"karim@example.com"}, sender.sent[0].To)

	rec = serve(h.Conference, postForm("/conference", form))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "err[email]=")
	assert.Len(t, sender.sent, 1)
}

func TestSetLanguage(t *testing.T) {
	h, _, _ := newPublicHandler(t)

	rec := serve(h.SetLanguage, withParams(get("/lang/fr?next=/about"), "lang", "fr"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/about", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "=fr")

	rec = serve(h.SetLanguage, withParams(get("/lang/fr?next=https://evil.example"), "lang", "fr"))
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = serve(h.SetLanguage, withParams(get("/lang/de"), "lang", "de"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWarm_RefetchesPublicQueries(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusOK, []model.Role{{ID: "1"}})
	env.api.Handle(http.MethodGet, "/faqs", http.StatusOK, []model.FAQ{})
	env.api.Handle(http.MethodGet, "/service-requests/services", http.StatusOK, []model.Service{})

	require.NoError(t, h.Warm(t.Context()))
	require.NoError(t, h.Warm(t.Context()))

	assert.Equal(t, 2, env.api.Count(http.MethodGet, "/public/roles"))
	assert.Equal(t, 2, env.api.Count(http.MethodGet, "/faqs"))
}

func TestWarm_ReportsBackendFailure(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusInternalServerError, map[string]string{"message": "boom"})
	env.api.Handle(http.MethodGet, "/faqs", http.StatusOK, []model.FAQ{})
	env.api.Handle(http.MethodGet, "/service-requests/services", http.StatusOK, []model.Service{})

	assert.Error(t, h.Warm(t.Context()))
}

func TestRobots(t *testing.T) {
	h, _, _ := newPublicHandler(t)
	h.SetSite("https://soslaw.com/", false)

	rec := serve(h.Robots, get("/robots.txt"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /dashboard")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://soslaw.com/sitemap.xml")

	h.SetSite("https://staging.soslaw.com", true)
	rec = serve(h.Robots, get("/robots.txt"))
	assert.Equal(t, "User-agent: *\nDisallow: /\n", rec.Body.String())
}

func TestSitemap_ListsRoles(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	h.SetSite("https://soslaw.com", false)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusOK, envelope([]model.Role{{ID: "1", Slug: "family"}, {ID: "2"}}))

	rec := serve(h.Sitemap, get("/sitemap.xml"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://soslaw.com/about</loc>")
	assert.Contains(t, body, "<loc>https://soslaw.com/roles/family</loc>")
	assert.Equal(t, 5, strings.Count(body, "<url>"))
}

func TestSitemap_BackendDownKeepsStaticPages(t *testing.T) {
	h, env, _ := newPublicHandler(t)
	h.SetSite("https://soslaw.com", false)
	env.api.Handle(http.MethodGet, "/public/roles", http.StatusBadGateway, map[string]string{"message": "down"})

	rec := serve(h.Sitemap, get("/sitemap.xml"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, strings.Count(rec.Body.String(), "<url>"))
}
