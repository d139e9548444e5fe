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
)

// paymentMethods are the methods a client can declare.
var paymentMethods = []string{"bank_transfer", "card", "cash"}

// ClientHandler serves the client area.
type ClientHandler struct {
	Deps
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(deps Deps) *ClientHandler {
	return &ClientHandler{Deps: deps}
}

// ClientOverview summarises the client's requests.
type ClientOverview struct {
	Total   int
	Open    int
	Unpaid  int
	Recent  []model.ServiceRequest
	Catalog map[string]model.Service
}

// Overview renders the client home.
func (h *ClientHandler) Overview(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.myRequests(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "my service requests")
		return
	}

	data := ClientOverview{Total: len(reqs), Catalog: h.catalogByID(r.Context())}
	for _, sr := range reqs {
		if sr.Status == model.ServiceStatusPending || sr.Status == model.ServiceStatusInProgress {
			data.Open++
		}
		if sr.PaymentStatus == model.PaymentUnpaid {
			data.Unpaid++
		}
	}
	data.Recent = reqs[:min(len(reqs), 5)]

	h.render(w, r, "client/index", render.TemplateData{Title: "nav.client", Data: data})
}

// Requests lists the client's service requests. The table pages, sorts and
// searches in memory.
func (h *ClientHandler) Requests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.myRequests(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "my service requests")
		return
	}

	l := lang(r)
	catalog := h.catalogByID(r.Context())
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	cols := []datatable.Column[model.ServiceRequest]{
		datatable.CustomColumn("serviceId", "col.service", func(sr model.ServiceRequest) template.HTML {
			name := sr.ServiceID
			if s, ok := catalog[sr.ServiceID]; ok {
				name = s.Name(l)
			}
			return template.HTML(template.HTMLEscapeString(name))
		}),
		datatable.TextColumn[model.ServiceRequest]("description", "col.description", false),
		datatable.BadgeColumn[model.ServiceRequest]("status", "col.status", statusBadges(model.ServiceStatuses)),
		datatable.BadgeColumn[model.ServiceRequest]("paymentStatus", "col.payment", statusBadges(model.PaymentStatuses)),
		datatable.CustomColumn("amount", "col.amount", func(sr model.ServiceRequest) template.HTML {
			return template.HTML(template.HTMLEscapeString(render.FormatMoney(sr.Amount)))
		}),
		datatable.DateColumn[model.ServiceRequest]("createdAt", "col.created"),
		datatable.ActionsColumn("col.actions", func(sr model.ServiceRequest) template.HTML {
			if sr.PaymentStatus != model.PaymentUnpaid {
				return ""
			}
			return actionLink("/client/requests/"+url.PathEscape(sr.ID)+"/payment", i18n.T(l, "client.pay"))
		}),
	}

	view := datatable.Build(reqs, cols, datatable.StateFromQuery(r.URL.Query()), tableOptions(r, search, nil))
	h.render(w, r, "client/requests", render.TemplateData{
		Title: "nav.my_requests",
		Data:  TableData{Table: view, Search: search, Action: r.URL.Path},
	})
}

// NewRequestData feeds the new request form.
type NewRequestData struct {
	Services []model.Service
}

// NewRequestForm renders the new service request form.
func (h *ClientHandler) NewRequestForm(w http.ResponseWriter, r *http.Request) {
	services, err := h.serviceCatalog(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "service catalog")
		return
	}
	data := render.TemplateData{Title: "client.new_request", Data: NewRequestData{Services: services}}
	if id := r.URL.Query().Get("service"); id != "" {
		data.Form = url.Values{"serviceId": {id}}
	}
	h.render(w, r, "client/request_new", data)
}

// CreateRequest submits a new service request.
func (h *ClientHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/client/requests/new") {
		return
	}
	in := model.ServiceRequestInput{
		ServiceID:   r.PostFormValue("serviceId"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}

	renderForm := func(errs map[string]string) {
		services, err := h.serviceCatalog(r.Context())
		if err != nil {
			h.apiFailure(w, r, err, "service catalog")
			return
		}
		h.render(w, r, "client/request_new", render.TemplateData{
			Title:  "client.new_request",
			Data:   NewRequestData{Services: services},
			Form:   r.PostForm,
			Errors: errs,
		})
	}

	if errs := checkForm(r, in, nil); errs != nil {
		renderForm(errs)
		return
	}

	created, err := h.Services.ServiceRequests.Create(r.Context(), in)
	if err != nil {
		if fields := h.mutationFailure(w, r, err, "/client/requests/new"); fields != nil {
			renderForm(fields)
		}
		return
	}

	h.Queries.Invalidate(r.Context(), resServiceRequests, resStats)
	h.logger().InfoContext(r.Context(), "service request created", "request_id", created.ID)
	h.flashSuccess(w, r, "/client/requests/"+url.PathEscape(created.ID)+"/payment", "client.request_created")
}

// PaymentData feeds the payment page.
type PaymentData struct {
	Request     model.ServiceRequest
	ServiceName string
	Methods     []string
}

// PaymentForm renders the payment details for one of the client's requests.
func (h *ClientHandler) PaymentForm(w http.ResponseWriter, r *http.Request) {
	data, ok := h.paymentData(w, r)
	if !ok {
		return
	}
	h.render(w, r, "client/payment", render.TemplateData{Title: "client.payment", Data: data})
}

// Pay declares a payment.
func (h *ClientHandler) Pay(w http.ResponseWriter, r *http.Request) {
	data, ok := h.paymentData(w, r)
	if !ok {
		return
	}
	self := "/client/requests/" + url.PathEscape(data.Request.ID) + "/payment"
	if !h.parseFormOrRedirect(w, r, self) {
		return
	}
	if data.Request.PaymentStatus != model.PaymentUnpaid {
		h.flashError(w, r, "/client/requests", "client.already_paid")
		return
	}

	in := model.PaymentInput{
		Method:    r.PostFormValue("paymentMethod"),
		Reference: strings.TrimSpace(r.PostFormValue("paymentReference")),
	}
	td := render.TemplateData{Title: "client.payment", Data: data, Form: r.PostForm}
	if errs := checkForm(r, in, nil); errs != nil {
		td.Errors = errs
		h.render(w, r, "client/payment", td)
		return
	}

	if err := h.Services.ServiceRequests.Pay(r.Context(), data.Request.ID, in); err != nil {
		if fields := h.mutationFailure(w, r, err, self); fields != nil {
			td.Errors = fields
			h.render(w, r, "client/payment", td)
		}
		return
	}

	h.Queries.Invalidate(r.Context(), resServiceRequests, resStats)
	h.flashSuccess(w, r, "/client/requests", "client.payment_sent")
}

// paymentData finds the request named in the URL among the client's own.
func (h *ClientHandler) paymentData(w http.ResponseWriter, r *http.Request) (PaymentData, bool) {
	id := chi.URLParam(r, "id")
	reqs, err := h.myRequests(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "my service requests")
		return PaymentData{}, false
	}
	for _, sr := range reqs {
		if sr.ID != id {
			continue
		}
		data := PaymentData{Request: sr, ServiceName: sr.ServiceID, Methods: paymentMethods}
		if s, ok := h.catalogByID(r.Context())[sr.ServiceID]; ok {
			data.ServiceName = s.Name(lang(r))
		}
		return data, true
	}
	h.Renderer.Error(w, r, http.StatusNotFound)
	return PaymentData{}, false
}

// Library renders the document library placeholder.
func (h *ClientHandler) Library(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "client/library", render.TemplateData{Title: "nav.library"})
}

// SettingsForm renders the account settings page.
func (h *ClientHandler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "client/settings", render.TemplateData{Title: "nav.settings"})
}

// ChangePassword updates the password of the signed-in user.
func (h *ClientHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	changePassword(h.Deps, w, r, "client/settings", "/client/settings", nil)
}

// changePassword is shared by the client and dashboard settings pages.
// pageData is passed back to the page when the form is shown again.
func changePassword(d Deps, w http.ResponseWriter, r *http.Request, page, self string, pageData any) {
	if !d.parseFormOrRedirect(w, r, self) {
		return
	}
	in := model.ChangePassword{
		CurrentPassword: r.PostFormValue("currentPassword"),
		NewPassword:     r.PostFormValue("newPassword"),
	}
	var extra map[string]string
	if r.PostFormValue("confirmPassword") != in.NewPassword {
		extra = map[string]string{"confirmPassword": i18n.T(lang(r), "validation.match")}
	}
	if errs := checkForm(r, in, extra); errs != nil {
		d.render(w, r, page, render.TemplateData{Title: "nav.settings", Data: pageData, Errors: errs})
		return
	}

	if err := d.Services.Auth.ChangePassword(r.Context(), in); err != nil {
		if fields := d.mutationFailure(w, r, err, self); fields != nil {
			d.render(w, r, page, render.TemplateData{Title: "nav.settings", Data: pageData, Errors: fields})
		}
		return
	}
	d.flashSuccess(w, r, self, "settings.password_changed")
}

// myRequests returns the signed-in client's requests, cached per token.
func (d Deps) myRequests(ctx context.Context) ([]model.ServiceRequest, error) {
	list, err := query.Fetch(ctx, d.Queries, query.Key{Resource: resServiceRequests, Params: url.Values{"mine": {"1"}}},
		func(ctx context.Context) (model.List[model.ServiceRequest], error) { return d.Services.ServiceRequests.Mine(ctx) })
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// catalogByID indexes the service catalog. A failed load gives an empty map
// and the tables fall back to service IDs.
func (d Deps) catalogByID(ctx context.Context) map[string]model.Service {
	services, err := d.serviceCatalog(ctx)
	if err != nil {
		d.logger().WarnContext(ctx, "loading service catalog", "error", err)
	}
	out := make(map[string]model.Service, len(services))
	for _, s := range services {
		out[s.ID] = s
	}
	return out
}
