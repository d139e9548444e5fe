// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/mail"
	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/seo"
	"github.com/soslaw/soslaw-web/internal/session"
	"github.com/soslaw/soslaw-web/internal/store"
)

// PublicHandler serves the public site.
type PublicHandler struct {
	Deps
	conferences *store.Conferences
	mailer      mail.Sender
	siteURL     string
	noIndex     bool
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(deps Deps, conferences *store.Conferences, mailer mail.Sender) *PublicHandler {
	return &PublicHandler{Deps: deps, conferences: conferences, mailer: mailer}
}

// SetSite configures the public URL used by robots.txt and the sitemap.
// With noIndex set, robots.txt blocks every crawler.
func (h *PublicHandler) SetSite(siteURL string, noIndex bool) {
	h.siteURL = strings.TrimSuffix(siteURL, "/")
	h.noIndex = noIndex
}

// HomeData holds the landing page content.
type HomeData struct {
	Roles    []model.Role
	FAQs     []model.FAQ
	Services []model.Service
}

// Home renders the landing page. Sections whose backend call fails are
// left out rather than failing the page.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := HomeData{}

	if roles, err := h.publicRoles(ctx); err != nil {
		h.logger().WarnContext(ctx, "loading roles for home page", "error", err)
	} else {
		data.Roles = roles
	}
	if faqs, err := h.activeFAQs(ctx); err != nil {
		h.logger().WarnContext(ctx, "loading faqs for home page", "error", err)
	} else {
		data.FAQs = faqs
	}
	if services, err := h.serviceCatalog(ctx); err != nil {
		h.logger().WarnContext(ctx, "loading services for home page", "error", err)
	} else {
		data.Services = services
	}

	h.render(w, r, "public/home", render.TemplateData{Title: "nav.home", Data: data})
}

// About renders the firm presentation.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "public/about", render.TemplateData{Title: "nav.about"})
}

// Role renders one practice area by slug.
func (h *PublicHandler) Role(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	role, err := query.Fetch(r.Context(), h.Queries,
		query.Key{Resource: resRoles, Public: true, Params: url.Values{"slug": {slug}}},
		func(ctx context.Context) (*model.Role, error) { return h.Services.Roles.PublicGet(ctx, slug) })
	if err != nil {
		h.apiFailure(w, r, err, "public role")
		return
	}
	if role == nil {
		h.Renderer.Error(w, r, http.StatusNotFound)
		return
	}

	h.render(w, r, "public/role", render.TemplateData{
		Title: role.Title(lang(r)),
		Data:  role,
	})
}

// ContactForm renders the contact form.
func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{Title: "nav.contact"}
	if user := session.FromContext(r.Context()).Snapshot().User; user != nil {
		data.Form = url.Values{"name": {user.FullName}, "email": {user.Email}, "phone": {user.Phone}}
	}
	h.render(w, r, "public/contact", data)
}

// Contact submits the contact form.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/contact") {
		return
	}
	in := model.ContactInput{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}

	data := render.TemplateData{Title: "nav.contact", Form: r.PostForm}
	if errs := checkForm(r, in, nil); errs != nil {
		data.Errors = errs
		h.render(w, r, "public/contact", data)
		return
	}

	if err := h.Services.ContactRequests.Create(r.Context(), in); err != nil {
		if fields := h.mutationFailure(w, r, err, "/contact"); fields != nil {
			data.Errors = fields
			h.render(w, r, "public/contact", data)
		}
		return
	}

	h.Queries.Invalidate(r.Context(), resContacts, resStats)
	h.flashSuccess(w, r, "/contact", "contact.sent")
}

// ConferenceForm renders the conference registration form.
func (h *PublicHandler) ConferenceForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "public/conference", render.TemplateData{Title: "nav.conference"})
}

// Conference records a registration and emails a confirmation.
func (h *PublicHandler) Conference(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/conference") {
		return
	}
	reg := model.ConferenceRegistration{
		FullName:     strings.TrimSpace(r.PostFormValue("fullName")),
		Email:        strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Phone:        strings.TrimSpace(r.PostFormValue("phone")),
		Organization: strings.TrimSpace(r.PostFormValue("organization")),
		Profession:   strings.TrimSpace(r.PostFormValue("profession")),
		Lang:         lang(r),
	}

	data := render.TemplateData{Title: "nav.conference", Form: r.PostForm}
	if errs := checkForm(r, reg, nil); errs != nil {
		data.Errors = errs
		h.render(w, r, "public/conference", data)
		return
	}

	saved, err := h.conferences.Create(r.Context(), reg)
	if errors.Is(err, store.ErrDuplicate) {
		data.Errors = map[string]string{"email": i18n.T(lang(r), "conference.duplicate")}
		h.render(w, r, "public/conference", data)
		return
	}
	if err != nil {
		h.logAndInternalError(w, r, "saving conference registration", "error", err)
		return
	}

	// The registration stands even if the email cannot be sent.
	if msg, err := mail.ConferenceConfirmation(saved); err != nil {
		h.logger().ErrorContext(r.Context(), "building confirmation email", "error", err)
	} else if _, err := h.mailer.Send(r.Context(), msg); err != nil {
		h.logger().WarnContext(r.Context(), "sending confirmation email", "registration_id", saved.ID, "error", err)
	}

	h.flashSuccess(w, r, "/conference", "conference.registered")
}

// SetLanguage switches the UI language and goes back where the user was.
func (h *PublicHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	code := strings.ToLower(chi.URLParam(r, "lang"))
	if !i18n.IsSupported(code) {
		h.Renderer.Error(w, r, http.StatusNotFound)
		return
	}
	middleware.SetLanguageCookie(w, code)

	next := session.SafeNext(r.URL.Query().Get("next"))
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// publicRoles returns the roles the public endpoint lists, in display order.
func (d Deps) publicRoles(ctx context.Context) ([]model.Role, error) {
	list, err := query.Fetch(ctx, d.Queries, query.Key{Resource: resRoles, Public: true},
		func(ctx context.Context) (model.List[model.Role], error) { return d.Services.Roles.PublicList(ctx) })
	if err != nil {
		return nil, err
	}
	roles := slices.Clone(list.Items)
	slices.SortStableFunc(roles, func(a, b model.Role) int { return cmp.Compare(a.Order, b.Order) })
	return roles, nil
}

// allFAQs returns every FAQ in display order.
func (d Deps) allFAQs(ctx context.Context) ([]model.FAQ, error) {
	list, err := query.Fetch(ctx, d.Queries, query.Key{Resource: resFAQs, Public: true},
		func(ctx context.Context) (model.List[model.FAQ], error) { return d.Services.FAQs.List(ctx) })
	if err != nil {
		return nil, err
	}
	faqs := slices.Clone(list.Items)
	slices.SortStableFunc(faqs, func(a, b model.FAQ) int { return cmp.Compare(a.Order, b.Order) })
	return faqs, nil
}

func (d Deps) activeFAQs(ctx context.Context) ([]model.FAQ, error) {
	faqs, err := d.allFAQs(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(faqs, func(f model.FAQ) bool { return !f.IsActive }), nil
}

// serviceCatalog returns the services clients can request.
func (d Deps) serviceCatalog(ctx context.Context) ([]model.Service, error) {
	list, err := query.Fetch(ctx, d.Queries, query.Key{Resource: resServices, Public: true},
		func(ctx context.Context) (model.List[model.Service], error) { return d.Services.ServiceRequests.Services(ctx) })
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// Warm refetches the public roles, FAQs and service catalog so visitors
// hit a fresh cache. It runs as a scheduled job.
func (h *PublicHandler) Warm(ctx context.Context) error {
	h.Queries.Invalidate(ctx, resRoles, resFAQs, resServices)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := h.publicRoles(ctx); return err })
	g.Go(func() error { _, err := h.allFAQs(ctx); return err })
	g.Go(func() error { _, err := h.serviceCatalog(ctx); return err })
	return g.Wait()
}

// Robots serves robots.txt.
func (h *PublicHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{SiteURL: h.siteURL, DisallowAll: h.noIndex})))
}

// Sitemap lists the public pages and every public role. If the roles cannot
// be loaded the static pages are still listed.
func (h *PublicHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.siteURL, i18n.SupportedLanguages)
	b.Add("/", seo.ChangeFreqDaily, "1.0")
	b.Add("/about", seo.ChangeFreqMonthly, "0.6")
	b.Add("/contact", seo.ChangeFreqMonthly, "0.6")
	b.Add("/conference", seo.ChangeFreqWeekly, "0.5")

	roles, err := h.publicRoles(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "loading roles for sitemap", "error", err)
	}
	for _, role := range roles {
		if role.Slug != "" {
			b.AddRole(role.Slug)
		}
	}

	out, err := b.Build()
	if err != nil {
		h.logAndInternalError(w, r, "building sitemap", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}
