// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/cache"
	"github.com/soslaw/soslaw-web/internal/datatable"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/scheduler"
	"github.com/soslaw/soslaw-web/internal/session"
	"github.com/soslaw/soslaw-web/internal/store"
	"github.com/soslaw/soslaw-web/internal/version"
)

// DashboardHandler serves the staff dashboard.
type DashboardHandler struct {
	Deps
	scheduler   *scheduler.Scheduler
	conferences *store.Conferences
	now         func() time.Time
}

// NewDashboardHandler creates a DashboardHandler. sched may be nil.
func NewDashboardHandler(deps Deps, sched *scheduler.Scheduler, conferences *store.Conferences) *DashboardHandler {
	return &DashboardHandler{Deps: deps, scheduler: sched, conferences: conferences, now: time.Now}
}

// DashboardStats holds the overview cards. A nil section failed to load or
// is not visible to the user's role.
type DashboardStats struct {
	Users    *model.UserStats
	Requests *model.ServiceRequestStats
	Contacts *model.ContactStats
	Roles    *model.RoleStats
}

// Index renders the statistics overview. The stat calls run concurrently.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isAdmin := session.FromContext(ctx).Snapshot().IsAdmin()

	var stats DashboardStats
	var g errgroup.Group
	g.Go(func() error {
		return h.loadStat(ctx, "requests", func(ctx context.Context) error {
			s, err := cachedStat(ctx, h.Queries, "requests", h.Services.ServiceRequests.Statistics)
			stats.Requests = s
			return err
		})
	})
	g.Go(func() error {
		return h.loadStat(ctx, "contacts", func(ctx context.Context) error {
			s, err := cachedStat(ctx, h.Queries, "contacts", h.Services.ContactRequests.Stats)
			stats.Contacts = s
			return err
		})
	})
	if isAdmin {
		g.Go(func() error {
			return h.loadStat(ctx, "users", func(ctx context.Context) error {
				s, err := cachedStat(ctx, h.Queries, "users", h.Services.Users.Stats)
				stats.Users = s
				return err
			})
		})
		g.Go(func() error {
			return h.loadStat(ctx, "roles", func(ctx context.Context) error {
				s, err := cachedStat(ctx, h.Queries, "roles", h.Services.Roles.Stats)
				stats.Roles = s
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		// Only a 401 gets here; the session middleware redirects.
		return
	}

	h.render(w, r, "dashboard/index", render.TemplateData{Title: "nav.dashboard", Data: stats})
}

// loadStat runs fn and swallows every error except a 401, which must stop
// the page.
func (h *DashboardHandler) loadStat(ctx context.Context, name string, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	h.logger().WarnContext(ctx, "loading dashboard stat", "stat", name, "error", err)
	return nil
}

func cachedStat[T any](ctx context.Context, q *query.Client, name string, fn func(context.Context) (*T, error)) (*T, error) {
	return query.Fetch(ctx, q, query.Key{Resource: resStats, Params: url.Values{"kind": {name}}}, fn)
}

// NotificationsData feeds the notifications page.
type NotificationsData struct {
	Items  []model.Notification
	Unread int
}

// Notifications renders the notification feed. The feed is static sample
// data until the backend provides one.
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	items := model.MockNotifications(h.now())
	data := NotificationsData{Items: items}
	for _, n := range items {
		if !n.Read {
			data.Unread++
		}
	}
	h.render(w, r, "dashboard/notifications", render.TemplateData{Title: "nav.notifications", Data: data})
}

// SettingsData feeds the settings page.
type SettingsData struct {
	Version    version.Info
	Jobs       []scheduler.JobInfo
	CacheStats cache.Stats
	HasStats   bool
	IsAdmin    bool
}

func (h *DashboardHandler) settingsData(r *http.Request) SettingsData {
	data := SettingsData{
		Version: version.Get(),
		IsAdmin: session.FromContext(r.Context()).Snapshot().IsAdmin(),
	}
	if data.IsAdmin {
		if h.scheduler != nil {
			data.Jobs = h.scheduler.Jobs()
		}
		data.CacheStats, data.HasStats = h.Queries.Stats()
	}
	return data
}

// Settings renders the settings page: password change for everyone, jobs
// and cache for admins.
func (h *DashboardHandler) Settings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard/settings", render.TemplateData{Title: "nav.settings", Data: h.settingsData(r)})
}

// ChangePassword updates the signed-in staff member's password.
func (h *DashboardHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	changePassword(h.Deps, w, r, "dashboard/settings", "/dashboard/settings", h.settingsData(r))
}

// RunJob triggers a scheduled job now.
func (h *DashboardHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.scheduler == nil {
		h.flashError(w, r, "/dashboard/settings", "settings.job_unknown")
		return
	}
	if err := h.scheduler.Trigger(name); err != nil {
		h.logger().WarnContext(r.Context(), "triggering job", "job", name, "error", err)
		h.flashError(w, r, "/dashboard/settings", "settings.job_unknown")
		return
	}
	h.logger().InfoContext(r.Context(), "job triggered from dashboard", "job", name)
	h.flashSuccess(w, r, "/dashboard/settings", "settings.job_started")
}

// ClearCache drops every cached query.
func (h *DashboardHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Queries.Invalidate(r.Context(), allResources...)
	h.logger().InfoContext(r.Context(), "query cache cleared from dashboard")
	h.flashSuccess(w, r, "/dashboard/settings", "settings.cache_cleared")
}

// ConferenceData feeds the registrations page.
type ConferenceData struct {
	TableData
	Total int
}

// Conferences lists the locally stored conference registrations.
func (h *DashboardHandler) Conferences(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	total, err := h.conferences.Count(r.Context())
	if err != nil {
		h.logAndInternalError(w, r, "counting conference registrations", "error", err)
		return
	}
	regs, err := h.conferences.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		h.logAndInternalError(w, r, "listing conference registrations", "error", err)
		return
	}

	cols := conferenceColumns()
	view := buildTable(r, regs, cols, "", &total, p)
	h.render(w, r, "dashboard/conferences", render.TemplateData{
		Title: "nav.conference",
		Data:  ConferenceData{TableData: TableData{Table: view}, Total: total},
	})
}

func conferenceColumns() []datatable.Column[model.ConferenceRegistration] {
	return []datatable.Column[model.ConferenceRegistration]{
		datatable.TextColumn[model.ConferenceRegistration]("fullName", "col.name", true),
		datatable.TextColumn[model.ConferenceRegistration]("email", "col.email", true),
		datatable.TextColumn[model.ConferenceRegistration]("phone", "col.phone", false),
		datatable.TextColumn[model.ConferenceRegistration]("profession", "col.profession", true),
		datatable.TextColumn[model.ConferenceRegistration]("organization", "col.organization", true),
		datatable.TextColumn[model.ConferenceRegistration]("lang", "col.language", true),
		datatable.DateColumn[model.ConferenceRegistration]("createdAt", "col.created"),
	}
}
