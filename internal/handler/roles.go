// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soslaw/soslaw-web/internal/datatable"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/service"
	"github.com/soslaw/soslaw-web/internal/util"
)

// RolesHandler manages the practice areas shown on the public site.
type RolesHandler struct {
	Deps
}

// NewRolesHandler creates a RolesHandler.
func NewRolesHandler(deps Deps) *RolesHandler {
	return &RolesHandler{Deps: deps}
}

// RoleFormData holds data for the role form template.
type RoleFormData struct {
	Role  *model.Role
	IsNew bool
}

// List handles GET /dashboard/roles. All roles fit in one call, so the
// table pages in memory.
func (h *RolesHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := query.Fetch(r.Context(), h.Queries, query.Key{Resource: resRoles, Params: url.Values{"all": {"1"}}},
		func(ctx context.Context) (model.List[model.Role], error) {
			return h.Services.Roles.List(ctx, service.ListParams{})
		})
	if err != nil {
		h.apiFailure(w, r, err, "roles")
		return
	}

	view := datatable.Build(list.Items, roleColumns(lang(r)), roleTableState(r), tableOptions(r, search, nil))
	h.render(w, r, "dashboard/roles", render.TemplateData{
		Title: "nav.roles",
		Data:  TableData{Table: view, Search: search, Action: r.URL.Path},
	})
}

// roleTableState defaults to display order.
func roleTableState(r *http.Request) datatable.State {
	st := datatable.StateFromQuery(r.URL.Query())
	if st.SortKey == "" {
		st.SortKey = "order"
	}
	return st
}

func roleColumns(l string) []datatable.Column[model.Role] {
	return []datatable.Column[model.Role]{
		datatable.CustomColumn("order", "col.order", func(role model.Role) template.HTML {
			return template.HTML(fmt.Sprintf(
				`<form method="post" action="/dashboard/roles/%s/order" class="inline"><input type="number" name="order" min="0" value="%d" class="input-xs" data-autosubmit></form>`,
				template.HTMLEscapeString(url.PathEscape(role.ID)), role.Order))
		}),
		datatable.CustomColumn("title", "col.title", func(role model.Role) template.HTML {
			return template.HTML(template.HTMLEscapeString(role.Title(l)))
		}),
		datatable.TextColumn[model.Role]("slug", "col.slug", true),
		datatable.BadgeColumn[model.Role]("isActive", "col.active", map[string]datatable.Badge{
			"true":  {Label: "status.active", Class: "badge-success"},
			"false": {Label: "status.inactive", Class: "badge-muted"},
		}),
		datatable.ActionsColumn("col.actions", func(role model.Role) template.HTML {
			base := "/dashboard/roles/" + url.PathEscape(role.ID)
			toggle := actionForm(base+"/status", i18n.T(l, "btn.deactivate"), "btn-warning", "")
			if !role.IsActive {
				toggle = actionForm(base+"/status?active=1", i18n.T(l, "btn.activate"), "btn-success", "")
			}
			return joinHTML(
				actionLink(base+"/edit", i18n.T(l, "btn.edit")),
				toggle,
				actionForm(base+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete")),
			)
		}),
	}
}

// NewForm handles GET /dashboard/roles/new.
func (h *RolesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard/role_form", render.TemplateData{
		Title: "roles.new",
		Data:  RoleFormData{IsNew: true},
		Form:  url.Values{"isActive": {"on"}, "order": {"0"}},
	})
}

// Create handles POST /dashboard/roles.
func (h *RolesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/roles/new") {
		return
	}
	in := roleInput(r)
	td := render.TemplateData{Title: "roles.new", Data: RoleFormData{IsNew: true}, Form: r.PostForm}

	if errs := h.checkRole(r, in, ""); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/role_form", td)
		return
	}

	created, err := h.Services.Roles.Create(r.Context(), in)
	if err != nil {
		if fields := h.mutationFailure(w, r, err, "/dashboard/roles/new"); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/role_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "role created", "role_id", created.ID, "slug", created.Slug)
	h.Queries.Invalidate(r.Context(), resRoles, resStats)
	h.flashSuccess(w, r, "/dashboard/roles", "roles.created")
}

// EditForm handles GET /dashboard/roles/{id}/edit.
func (h *RolesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	role, err := h.Services.Roles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.apiFailure(w, r, err, "role")
		return
	}

	form := url.Values{
		"slug":          {role.Slug},
		"titleAr":       {role.TitleAr},
		"titleEn":       {role.TitleEn},
		"titleFr":       {role.TitleFr},
		"descriptionAr": {role.DescriptionAr},
		"descriptionEn": {role.DescriptionEn},
		"descriptionFr": {role.DescriptionFr},
		"icon":          {role.Icon},
		"order":         {strconv.Itoa(role.Order)},
	}
	if role.IsActive {
		form.Set("isActive", "on")
	}
	h.render(w, r, "dashboard/role_form", render.TemplateData{
		Title: "roles.edit",
		Data:  RoleFormData{Role: role},
		Form:  form,
	})
}

// Update handles POST /dashboard/roles/{id}.
func (h *RolesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	self := "/dashboard/roles/" + url.PathEscape(id) + "/edit"
	if !h.parseFormOrRedirect(w, r, self) {
		return
	}
	in := roleInput(r)
	td := render.TemplateData{Title: "roles.edit", Data: RoleFormData{Role: &model.Role{ID: id}}, Form: r.PostForm}

	if errs := h.checkRole(r, in, id); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/role_form", td)
		return
	}

	if _, err := h.Services.Roles.Update(r.Context(), id, in); err != nil {
		if fields := h.mutationFailure(w, r, err, self); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/role_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "role updated", "role_id", id)
	h.Queries.Invalidate(r.Context(), resRoles, resStats)
	h.flashSuccess(w, r, "/dashboard/roles", "roles.updated")
}

// Delete handles POST /dashboard/roles/{id}/delete.
func (h *RolesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Services.Roles.Delete(r.Context(), id); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/roles")
		return
	}
	h.logger().InfoContext(r.Context(), "role deleted", "role_id", id)
	h.Queries.Invalidate(r.Context(), resRoles, resStats)
	h.flashSuccess(w, r, "/dashboard/roles", "roles.deleted")
}

// SetStatus handles POST /dashboard/roles/{id}/status. ?active=1 activates.
func (h *RolesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	active := r.URL.Query().Get("active") == "1"
	if err := h.Services.Roles.SetStatus(r.Context(), id, active); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/roles")
		return
	}
	h.Queries.Invalidate(r.Context(), resRoles, resStats)
	h.flashSuccess(w, r, "/dashboard/roles", "common.updated")
}

// SetOrder handles POST /dashboard/roles/{id}/order.
func (h *RolesHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/roles") {
		return
	}
	order := formInt(r, "order", -1)
	if order < 0 {
		h.flashError(w, r, "/dashboard/roles", "roles.invalid_order")
		return
	}
	if err := h.Services.Roles.SetOrder(r.Context(), chi.URLParam(r, "id"), order); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/roles")
		return
	}
	h.Queries.Invalidate(r.Context(), resRoles)
	h.flashSuccess(w, r, "/dashboard/roles", "common.updated")
}

// SlugCheckResult is the JSON answer of the slug check.
type SlugCheckResult struct {
	Slug      string `json:"slug"`
	Valid     bool   `json:"valid"`
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// CheckSlug handles GET /dashboard/roles/slug-check. Without a slug it
// suggests one from the titles, transliterating Arabic and French.
func (h *RolesHandler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slug := strings.TrimSpace(q.Get("slug"))
	if slug == "" {
		slug = util.SlugFromTitles(q.Get("titleEn"), q.Get("titleFr"), q.Get("titleAr"))
	}

	res := SlugCheckResult{Slug: slug, Valid: util.IsValidSlug(slug)}
	if !res.Valid {
		res.Message = i18n.T(lang(r), "roles.slug_invalid")
		writeJSON(w, http.StatusOK, res)
		return
	}

	available, err := h.Services.Roles.CheckSlug(r.Context(), slug, q.Get("exclude"))
	if err != nil {
		h.logger().WarnContext(r.Context(), "checking role slug", "slug", slug, "error", err)
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	res.Available = available
	if !available {
		res.Message = i18n.T(lang(r), "roles.slug_taken")
	}
	writeJSON(w, http.StatusOK, res)
}

// checkRole validates the form, fills an empty slug from the titles and
// checks the slug is free.
func (h *RolesHandler) checkRole(r *http.Request, in model.RoleInput, excludeID string) map[string]string {
	errs := checkForm(r, in, nil)
	if _, bad := errs["slug"]; bad {
		return errs
	}
	if !util.IsValidSlug(in.Slug) {
		return mergeErr(errs, "slug", i18n.T(lang(r), "roles.slug_invalid"))
	}
	available, err := h.Services.Roles.CheckSlug(r.Context(), in.Slug, excludeID)
	if err != nil {
		// The backend enforces uniqueness on save as well.
		h.logger().WarnContext(r.Context(), "checking role slug", "slug", in.Slug, "error", err)
		return errs
	}
	if !available {
		return mergeErr(errs, "slug", i18n.T(lang(r), "roles.slug_taken"))
	}
	return errs
}

func mergeErr(errs map[string]string, field, msg string) map[string]string {
	if errs == nil {
		errs = map[string]string{}
	}
	errs[field] = msg
	return errs
}

func roleInput(r *http.Request) model.RoleInput {
	in := model.RoleInput{
		Slug:          strings.TrimSpace(r.PostFormValue("slug")),
		TitleAr:       strings.TrimSpace(r.PostFormValue("titleAr")),
		TitleEn:       strings.TrimSpace(r.PostFormValue("titleEn")),
		TitleFr:       strings.TrimSpace(r.PostFormValue("titleFr")),
		DescriptionAr: strings.TrimSpace(r.PostFormValue("descriptionAr")),
		DescriptionEn: strings.TrimSpace(r.PostFormValue("descriptionEn")),
		DescriptionFr: strings.TrimSpace(r.PostFormValue("descriptionFr")),
		Icon:          strings.TrimSpace(r.PostFormValue("icon")),
		Order:         formInt(r, "order", 0),
		IsActive:      formBool(r, "isActive"),
	}
	if in.Slug == "" {
		in.Slug = util.SlugFromTitles(in.TitleEn, in.TitleFr, in.TitleAr)
	}
	return in
}
