// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the public site, the auth pages, the client area
// and the staff dashboard. Handlers read through the query cache, write
// through the API services and render with the render package.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/service"
)

// Cached resources. Mutations invalidate by these names.
const (
	resRoles           = "roles"
	resFAQs            = "faqs"
	resServices        = "services"
	resUsers           = "users"
	resContacts        = "contact-requests"
	resServiceRequests = "service-requests"
	resConsultations   = "consultations"
	resStats           = "stats"
)

// allResources is every cached resource, for a full cache clear.
var allResources = []string{
	resRoles, resFAQs, resServices, resUsers, resContacts,
	resServiceRequests, resConsultations, resStats,
}

// Deps is what every area handler shares.
type Deps struct {
	Renderer *render.Renderer
	Services *service.Services
	Queries  *query.Client
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func lang(r *http.Request) string {
	return middleware.Lang(r.Context())
}
