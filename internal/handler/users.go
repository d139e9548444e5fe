// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soslaw/soslaw-web/internal/datatable"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/service"
	"github.com/soslaw/soslaw-web/internal/session"
)

// UsersHandler handles user management routes.
type UsersHandler struct {
	Deps
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(deps Deps) *UsersHandler {
	return &UsersHandler{Deps: deps}
}

// UserFormData holds data for the user form template.
type UserFormData struct {
	User  *model.UserProfile
	Roles []string
	IsNew bool
}

// List handles GET /dashboard/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	h.renderList(w, r, p, "dashboard/users", "nav.users")
}

// Consultants handles GET /dashboard/consultants: the user list fixed to
// the consultant role.
func (h *UsersHandler) Consultants(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	p.Role = model.RoleConsultant
	h.renderList(w, r, p, "dashboard/consultants", "nav.consultants")
}

func (h *UsersHandler) renderList(w http.ResponseWriter, r *http.Request, p service.ListParams, page, title string) {
	list, err := h.users(r.Context(), p)
	if err != nil {
		h.apiFailure(w, r, err, "users")
		return
	}

	canManage := session.FromContext(r.Context()).Snapshot().IsAdmin()
	view := buildTable(r, list.Items, userColumns(lang(r), canManage), p.Search, list.Total, p)
	h.render(w, r, page, render.TemplateData{
		Title: title,
		Data: TableData{
			Table:   view,
			Search:  p.Search,
			Filter:  p.Role,
			Filters: model.AllRoles,
			Action:  r.URL.Path,
		},
	})
}

// users lists one page of users through the query cache.
func (d Deps) users(ctx context.Context, p service.ListParams) (model.List[model.UserProfile], error) {
	return query.Fetch(ctx, d.Queries, query.Key{Resource: resUsers, Params: p.Values()},
		func(ctx context.Context) (model.List[model.UserProfile], error) { return d.Services.Users.List(ctx, p) })
}

func userColumns(l string, canManage bool) []datatable.Column[model.UserProfile] {
	cols := []datatable.Column[model.UserProfile]{
		datatable.TextColumn[model.UserProfile]("fullName", "col.name", true),
		datatable.TextColumn[model.UserProfile]("email", "col.email", true),
		datatable.BadgeColumn[model.UserProfile]("role", "col.role", roleBadges(model.AllRoles)),
		datatable.BadgeColumn[model.UserProfile]("isActive", "col.active", map[string]datatable.Badge{
			"true":  {Label: "status.active", Class: "badge-success"},
			"false": {Label: "status.inactive", Class: "badge-muted"},
		}),
		datatable.BadgeColumn[model.UserProfile]("isEmailVerified", "col.verified", map[string]datatable.Badge{
			"true":  {Label: "common.yes", Class: "badge-success"},
			"false": {Label: "common.no", Class: "badge-warning"},
		}),
		datatable.DateColumn[model.UserProfile]("createdAt", "col.created"),
	}
	if !canManage {
		return cols
	}
	return append(cols, datatable.ActionsColumn("col.actions", func(u model.UserProfile) template.HTML {
		base := "/dashboard/users/" + url.PathEscape(u.ID)
		toggle := actionForm(base+"/activate", i18n.T(l, "btn.deactivate"), "btn-warning", "")
		if !u.IsActive {
			toggle = actionForm(base+"/activate?active=1", i18n.T(l, "btn.activate"), "btn-success", "")
		}
		return joinHTML(
			actionLink(base+"/edit", i18n.T(l, "btn.edit")),
			toggle,
			actionForm(base+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete")),
		)
	}))
}

// NewForm handles GET /dashboard/users/new.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard/user_form", render.TemplateData{
		Title: "users.new",
		Data:  UserFormData{Roles: model.AllRoles, IsNew: true},
		Form:  url.Values{"role": {model.RoleClient}, "isActive": {"on"}},
	})
}

// Create handles POST /dashboard/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/users/new") {
		return
	}
	in := userInput(r)
	td := render.TemplateData{Title: "users.new", Data: UserFormData{Roles: model.AllRoles, IsNew: true}, Form: r.PostForm}

	var extra map[string]string
	if in.Password == "" {
		extra = map[string]string{"password": i18n.T(lang(r), "validation.required")}
	}
	if errs := checkForm(r, in, extra); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/user_form", td)
		return
	}

	created, err := h.Services.Users.Create(r.Context(), in)
	if err != nil {
		if fields := h.mutationFailure(w, r, err, "/dashboard/users/new"); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/user_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "user created", "user_id", created.ID, "role", created.Role)
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	h.flashSuccess(w, r, "/dashboard/users", "users.created")
}

// EditForm handles GET /dashboard/users/{id}/edit.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.Services.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.apiFailure(w, r, err, "user")
		return
	}

	form := url.Values{
		"fullName": {user.FullName},
		"email":    {user.Email},
		"phone":    {user.Phone},
		"role":     {user.Role},
	}
	if user.IsActive {
		form.Set("isActive", "on")
	}
	h.render(w, r, "dashboard/user_form", render.TemplateData{
		Title: "users.edit",
		Data:  UserFormData{User: user, Roles: model.AllRoles},
		Form:  form,
	})
}

// Update handles POST /dashboard/users/{id}. An empty password keeps the
// current one.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	self := "/dashboard/users/" + url.PathEscape(id) + "/edit"
	if !h.parseFormOrRedirect(w, r, self) {
		return
	}
	in := userInput(r)
	user := &model.UserProfile{ID: id, FullName: in.FullName, Email: in.Email, Role: in.Role}
	td := render.TemplateData{Title: "users.edit", Data: UserFormData{User: user, Roles: model.AllRoles}, Form: r.PostForm}

	if errs := checkForm(r, in, nil); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/user_form", td)
		return
	}

	if _, err := h.Services.Users.Update(r.Context(), id, in); err != nil {
		if fields := h.mutationFailure(w, r, err, self); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/user_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "user updated", "user_id", id)
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	h.flashSuccess(w, r, "/dashboard/users", "users.updated")
}

// Delete handles POST /dashboard/users/{id}/delete. Admins cannot delete
// their own account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if me := session.FromContext(r.Context()).Snapshot().User; me != nil && me.ID == id {
		h.flashError(w, r, "/dashboard/users", "users.cannot_delete_self")
		return
	}

	if err := h.Services.Users.Delete(r.Context(), id); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/users")
		return
	}

	h.logger().InfoContext(r.Context(), "user deleted", "user_id", id)
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	h.flashSuccess(w, r, "/dashboard/users", "users.deleted")
}

// Activate handles POST /dashboard/users/{id}/activate. ?active=1
// activates, anything else deactivates.
func (h *UsersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	active := r.URL.Query().Get("active") == "1"

	if err := h.Services.Users.Activate(r.Context(), id, active); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/users")
		return
	}

	h.logger().InfoContext(r.Context(), "user activation changed", "user_id", id, "active", active)
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	key := "users.deactivated"
	if active {
		key = "users.activated"
	}
	h.flashSuccess(w, r, "/dashboard/users", key)
}

func userInput(r *http.Request) model.UserInput {
	return model.UserInput{
		FullName: strings.TrimSpace(r.PostFormValue("fullName")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Role:     r.PostFormValue("role"),
		Password: r.PostFormValue("password"),
		IsActive: formBool(r, "isActive"),
	}
}
