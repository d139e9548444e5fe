// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
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

// RequestsHandler handles contact requests, service requests and
// consultations in the dashboard.
type RequestsHandler struct {
	Deps
}

// NewRequestsHandler creates a RequestsHandler.
func NewRequestsHandler(deps Deps) *RequestsHandler {
	return &RequestsHandler{Deps: deps}
}

func statusLabel(l string) func(string) string {
	return func(s string) string { return i18n.T(l, "status."+s) }
}

// Contacts handles GET /dashboard/contacts.
func (h *RequestsHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	list, err := query.Fetch(r.Context(), h.Queries, query.Key{Resource: resContacts, Params: p.Values()},
		func(ctx context.Context) (model.List[model.ContactRequest], error) {
			return h.Services.ContactRequests.List(ctx, p)
		})
	if err != nil {
		h.apiFailure(w, r, err, "contact requests")
		return
	}

	view := buildTable(r, list.Items, contactColumns(lang(r)), p.Search, list.Total, p)
	h.render(w, r, "dashboard/contacts", render.TemplateData{
		Title: "nav.contacts",
		Data:  TableData{Table: view, Search: p.Search, Filter: p.Status, Filters: model.ContactStatuses, Action: r.URL.Path},
	})
}

func contactColumns(l string) []datatable.Column[model.ContactRequest] {
	return []datatable.Column[model.ContactRequest]{
		datatable.TextColumn[model.ContactRequest]("name", "col.name", true),
		datatable.TextColumn[model.ContactRequest]("email", "col.email", true),
		datatable.TextColumn[model.ContactRequest]("subject", "col.subject", true),
		datatable.CustomColumn("status", "col.status", func(c model.ContactRequest) template.HTML {
			return selectForm("/dashboard/contacts/"+url.PathEscape(c.ID)+"/status", "status", c.Status, model.ContactStatuses, statusLabel(l))
		}),
		datatable.DateColumn[model.ContactRequest]("createdAt", "col.created"),
		datatable.ActionsColumn("col.actions", func(c model.ContactRequest) template.HTML {
			base := "/dashboard/contacts/" + url.PathEscape(c.ID)
			return joinHTML(
				replyBox(base+"/reply", c, l),
				actionForm(base+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete")),
			)
		}),
	}
}

// replyBox shows the message with an inline reply form.
func replyBox(action string, c model.ContactRequest, l string) template.HTML {
	esc := template.HTMLEscapeString
	var b strings.Builder
	fmt.Fprintf(&b, `<details class="reply"><summary class="btn btn-sm">%s</summary><blockquote>%s</blockquote>`,
		esc(i18n.T(l, "btn.reply")), esc(c.Message))
	if c.Reply != "" {
		fmt.Fprintf(&b, `<p class="muted">%s</p>`, esc(c.Reply))
	}
	fmt.Fprintf(&b, `<form method="post" action="%s"><textarea name="message" rows="3" required></textarea><button type="submit" class="btn btn-sm btn-primary">%s</button></form></details>`,
		esc(action), esc(i18n.T(l, "btn.send")))
	return template.HTML(b.String())
}

// ContactStatus handles POST /dashboard/contacts/{id}/status.
func (h *RequestsHandler) ContactStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "/dashboard/contacts", model.ContactStatuses, resContacts, h.Services.ContactRequests.SetStatus)
}

// ContactReply handles POST /dashboard/contacts/{id}/reply.
func (h *RequestsHandler) ContactReply(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/contacts") {
		return
	}
	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		h.flashError(w, r, "/dashboard/contacts", "contacts.reply_empty")
		return
	}
	if err := h.Services.ContactRequests.Reply(r.Context(), chi.URLParam(r, "id"), message); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/contacts")
		return
	}
	h.Queries.Invalidate(r.Context(), resContacts, resStats)
	h.flashSuccess(w, r, "/dashboard/contacts", "contacts.replied")
}

// ContactDelete handles POST /dashboard/contacts/{id}/delete.
func (h *RequestsHandler) ContactDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/dashboard/contacts", resContacts, h.Services.ContactRequests.Delete)
}

// ServiceRequestsData adds the assignable staff to the table data.
type ServiceRequestsData struct {
	TableData
	Consultants []model.UserProfile
}

// ServiceRequests handles GET /dashboard/service-requests. The table is
// paged by the backend; a search term goes to the search endpoint.
func (h *RequestsHandler) ServiceRequests(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	list, err := query.Fetch(r.Context(), h.Queries, query.Key{Resource: resServiceRequests, Params: p.Values()},
		func(ctx context.Context) (model.List[model.ServiceRequest], error) {
			if p.Search != "" {
				return h.Services.ServiceRequests.Search(ctx, p)
			}
			return h.Services.ServiceRequests.List(ctx, p)
		})
	if err != nil {
		h.apiFailure(w, r, err, "service requests")
		return
	}

	consultants := h.consultants(r)
	cols := serviceRequestColumns(lang(r), h.catalogByID(r.Context()), consultants)
	view := buildTable(r, list.Items, cols, p.Search, list.Total, p)
	h.render(w, r, "dashboard/service_requests", render.TemplateData{
		Title: "nav.service_requests",
		Data: ServiceRequestsData{
			TableData:   TableData{Table: view, Search: p.Search, Filter: p.Status, Filters: model.ServiceStatuses, Action: r.URL.Path},
			Consultants: consultants,
		},
	})
}

// consultants lists the staff a request can be assigned to. Only admins can
// list users; others get none and the assign control is hidden.
func (h *RequestsHandler) consultants(r *http.Request) []model.UserProfile {
	if !session.FromContext(r.Context()).Snapshot().IsAdmin() {
		return nil
	}
	list, err := h.users(r.Context(), service.ListParams{Role: model.RoleConsultant, Limit: maxPageSize})
	if err != nil {
		h.logger().WarnContext(r.Context(), "loading consultants", "error", err)
		return nil
	}
	return list.Items
}

func serviceRequestColumns(l string, catalog map[string]model.Service, consultants []model.UserProfile) []datatable.Column[model.ServiceRequest] {
	staffIDs := make([]string, 0, len(consultants)+1)
	names := map[string]string{"": i18n.T(l, "requests.unassigned")}
	staffIDs = append(staffIDs, "")
	for _, c := range consultants {
		staffIDs = append(staffIDs, c.ID)
		names[c.ID] = c.FullName
	}

	cols := []datatable.Column[model.ServiceRequest]{
		datatable.TextColumn[model.ServiceRequest]("clientName", "col.client", true),
		datatable.CustomColumn("serviceId", "col.service", func(sr model.ServiceRequest) template.HTML {
			name := sr.ServiceID
			if s, ok := catalog[sr.ServiceID]; ok {
				name = s.Name(l)
			}
			return template.HTML(template.HTMLEscapeString(name))
		}),
		datatable.CustomColumn("status", "col.status", func(sr model.ServiceRequest) template.HTML {
			return selectForm("/dashboard/service-requests/"+url.PathEscape(sr.ID)+"/status", "status", sr.Status, model.ServiceStatuses, statusLabel(l))
		}),
		datatable.CustomColumn("paymentStatus", "col.payment", func(sr model.ServiceRequest) template.HTML {
			return selectForm("/dashboard/service-requests/"+url.PathEscape(sr.ID)+"/payment-status", "paymentStatus", sr.PaymentStatus, model.PaymentStatuses, statusLabel(l))
		}),
		datatable.CustomColumn("amount", "col.amount", func(sr model.ServiceRequest) template.HTML {
			return template.HTML(template.HTMLEscapeString(render.FormatMoney(sr.Amount)))
		}),
		datatable.DateColumn[model.ServiceRequest]("createdAt", "col.created"),
	}
	if len(consultants) > 0 {
		cols = append(cols, datatable.CustomColumn("assignedTo", "col.assigned", func(sr model.ServiceRequest) template.HTML {
			options := staffIDs
			if sr.AssignedTo != "" && !slices.Contains(staffIDs, sr.AssignedTo) {
				options = append(slices.Clone(staffIDs), sr.AssignedTo)
			}
			return selectForm("/dashboard/service-requests/"+url.PathEscape(sr.ID)+"/assign", "userId", sr.AssignedTo, options,
				func(id string) string {
					if n, ok := names[id]; ok {
						return n
					}
					return id
				})
		}))
	}
	return append(cols, datatable.ActionsColumn("col.actions", func(sr model.ServiceRequest) template.HTML {
		return actionForm("/dashboard/service-requests/"+url.PathEscape(sr.ID)+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete"))
	}))
}

// ServiceRequestStatus handles POST /dashboard/service-requests/{id}/status.
func (h *RequestsHandler) ServiceRequestStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "/dashboard/service-requests", model.ServiceStatuses, resServiceRequests, h.Services.ServiceRequests.SetStatus)
}

// ServiceRequestPaymentStatus handles POST /dashboard/service-requests/{id}/payment-status.
func (h *RequestsHandler) ServiceRequestPaymentStatus(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/service-requests") {
		return
	}
	status := r.PostFormValue("paymentStatus")
	if !slices.Contains(model.PaymentStatuses, status) {
		h.flashError(w, r, "/dashboard/service-requests", "error.invalid_status")
		return
	}
	if err := h.Services.ServiceRequests.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/service-requests")
		return
	}
	h.Queries.Invalidate(r.Context(), resServiceRequests, resStats)
	h.flashSuccess(w, r, "/dashboard/service-requests", "common.updated")
}

// ServiceRequestAssign handles POST /dashboard/service-requests/{id}/assign.
func (h *RequestsHandler) ServiceRequestAssign(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/service-requests") {
		return
	}
	userID := r.PostFormValue("userId")
	if userID == "" {
		h.flashError(w, r, "/dashboard/service-requests", "requests.pick_consultant")
		return
	}
	if err := h.Services.ServiceRequests.Assign(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/service-requests")
		return
	}
	h.Queries.Invalidate(r.Context(), resServiceRequests)
	h.flashSuccess(w, r, "/dashboard/service-requests", "requests.assigned")
}

// ServiceRequestDelete handles POST /dashboard/service-requests/{id}/delete.
func (h *RequestsHandler) ServiceRequestDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/dashboard/service-requests", resServiceRequests, h.Services.ServiceRequests.Delete)
}

// Consultations handles GET /dashboard/consultations.
func (h *RequestsHandler) Consultations(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	list, err := query.Fetch(r.Context(), h.Queries, query.Key{Resource: resConsultations, Params: p.Values()},
		func(ctx context.Context) (model.List[model.Consultation], error) {
			return h.Services.Consultations.List(ctx, p)
		})
	if err != nil {
		h.apiFailure(w, r, err, "consultations")
		return
	}

	l := lang(r)
	cols := []datatable.Column[model.Consultation]{
		datatable.TextColumn[model.Consultation]("fullName", "col.name", true),
		datatable.TextColumn[model.Consultation]("email", "col.email", true),
		datatable.TextColumn[model.Consultation]("type", "col.type", true),
		datatable.TextColumn[model.Consultation]("subject", "col.subject", true),
		datatable.CustomColumn("status", "col.status", func(c model.Consultation) template.HTML {
			return selectForm("/dashboard/consultations/"+url.PathEscape(c.ID)+"/status", "status", c.Status, model.ConsultationStatuses, statusLabel(l))
		}),
		datatable.DateColumn[model.Consultation]("createdAt", "col.created"),
		datatable.ActionsColumn("col.actions", func(c model.Consultation) template.HTML {
			return actionForm("/dashboard/consultations/"+url.PathEscape(c.ID)+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete"))
		}),
	}

	view := buildTable(r, list.Items, cols, p.Search, list.Total, p)
	h.render(w, r, "dashboard/consultations", render.TemplateData{
		Title: "nav.consultations",
		Data:  TableData{Table: view, Search: p.Search, Filter: p.Status, Filters: model.ConsultationStatuses, Action: r.URL.Path},
	})
}

// ConsultationStatus handles POST /dashboard/consultations/{id}/status.
func (h *RequestsHandler) ConsultationStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "/dashboard/consultations", model.ConsultationStatuses, resConsultations, h.Services.Consultations.SetStatus)
}

// ConsultationDelete handles POST /dashboard/consultations/{id}/delete.
func (h *RequestsHandler) ConsultationDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/dashboard/consultations", resConsultations, h.Services.Consultations.Delete)
}

// setStatus reads "status", checks it against allowed and applies it.
func (h *RequestsHandler) setStatus(w http.ResponseWriter, r *http.Request, back string, allowed []string, resource string,
	apply func(ctx context.Context, id, status string) error) {
	if !h.parseFormOrRedirect(w, r, back) {
		return
	}
	status := r.PostFormValue("status")
	if !slices.Contains(allowed, status) {
		h.flashError(w, r, back, "error.invalid_status")
		return
	}
	id := chi.URLParam(r, "id")
	if err := apply(r.Context(), id, status); err != nil {
		h.mutationFailure(w, r, err, back)
		return
	}
	h.logger().InfoContext(r.Context(), "status changed", "resource", resource, "id", id, "status", status)
	h.Queries.Invalidate(r.Context(), resource, resStats)
	h.flashSuccess(w, r, back, "common.updated")
}

func (h *RequestsHandler) delete(w http.ResponseWriter, r *http.Request, back, resource string,
	del func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "id")
	if err := del(r.Context(), id); err != nil {
		h.mutationFailure(w, r, err, back)
		return
	}
	h.logger().InfoContext(r.Context(), "deleted", "resource", resource, "id", id)
	h.Queries.Invalidate(r.Context(), resource, resStats)
	h.flashSuccess(w, r, back, "common.deleted")
}
