// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soslaw/soslaw-web/internal/datatable"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/markdown"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/render"
)

// FAQsHandler manages the FAQ shown on the home page. Answers are Markdown.
type FAQsHandler struct {
	Deps
}

// NewFAQsHandler creates a FAQsHandler.
func NewFAQsHandler(deps Deps) *FAQsHandler {
	return &FAQsHandler{Deps: deps}
}

// FAQFormData holds data for the FAQ form template.
type FAQFormData struct {
	FAQ   *model.FAQ
	IsNew bool
}

// List handles GET /dashboard/faqs.
func (h *FAQsHandler) List(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.allFAQs(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "faqs")
		return
	}

	l := lang(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	cols := []datatable.Column[model.FAQ]{
		datatable.TextColumn[model.FAQ]("order", "col.order", true),
		datatable.CustomColumn("question", "col.question", func(f model.FAQ) template.HTML {
			return template.HTML(template.HTMLEscapeString(f.Question(l)))
		}),
		datatable.CustomColumn("answer", "col.answer", func(f model.FAQ) template.HTML {
			return template.HTML(template.HTMLEscapeString(render.Truncate(f.Answer(l), 80)))
		}),
		datatable.BadgeColumn[model.FAQ]("isActive", "col.active", map[string]datatable.Badge{
			"true":  {Label: "status.active", Class: "badge-success"},
			"false": {Label: "status.inactive", Class: "badge-muted"},
		}),
		datatable.ActionsColumn("col.actions", func(f model.FAQ) template.HTML {
			base := "/dashboard/faqs/" + url.PathEscape(f.ID)
			return joinHTML(
				actionLink(base+"/edit", i18n.T(l, "btn.edit")),
				actionForm(base+"/delete", i18n.T(l, "btn.delete"), "btn-danger", i18n.T(l, "confirm.delete")),
			)
		}),
	}

	view := datatable.Build(faqs, cols, datatable.StateFromQuery(r.URL.Query()), tableOptions(r, search, nil))
	h.render(w, r, "dashboard/faqs", render.TemplateData{
		Title: "nav.faqs",
		Data:  TableData{Table: view, Search: search, Action: r.URL.Path},
	})
}

// NewForm handles GET /dashboard/faqs/new.
func (h *FAQsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dashboard/faq_form", render.TemplateData{
		Title: "faqs.new",
		Data:  FAQFormData{IsNew: true},
		Form:  url.Values{"isActive": {"on"}, "order": {"0"}},
	})
}

// Create handles POST /dashboard/faqs.
func (h *FAQsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/dashboard/faqs/new") {
		return
	}
	in := faqInput(r)
	td := render.TemplateData{Title: "faqs.new", Data: FAQFormData{IsNew: true}, Form: r.PostForm}

	if errs := checkForm(r, in, nil); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/faq_form", td)
		return
	}

	created, err := h.Services.FAQs.Create(r.Context(), in)
	if err != nil {
		if fields := h.mutationFailure(w, r, err, "/dashboard/faqs/new"); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/faq_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "faq created", "faq_id", created.ID)
	h.Queries.Invalidate(r.Context(), resFAQs)
	h.flashSuccess(w, r, "/dashboard/faqs", "faqs.created")
}

// EditForm handles GET /dashboard/faqs/{id}/edit. There is no single-FAQ
// endpoint, so the entry is looked up in the cached list.
func (h *FAQsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	faqs, err := h.allFAQs(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "faqs")
		return
	}
	var faq *model.FAQ
	for i := range faqs {
		if faqs[i].ID == id {
			faq = &faqs[i]
			break
		}
	}
	if faq == nil {
		h.Renderer.Error(w, r, http.StatusNotFound)
		return
	}

	form := url.Values{
		"questionAr": {faq.QuestionAr},
		"questionEn": {faq.QuestionEn},
		"questionFr": {faq.QuestionFr},
		"answerAr":   {faq.AnswerAr},
		"answerEn":   {faq.AnswerEn},
		"answerFr":   {faq.AnswerFr},
		"order":      {strconv.Itoa(faq.Order)},
	}
	if faq.IsActive {
		form.Set("isActive", "on")
	}
	h.render(w, r, "dashboard/faq_form", render.TemplateData{
		Title: "faqs.edit",
		Data:  FAQFormData{FAQ: faq},
		Form:  form,
	})
}

// Update handles POST /dashboard/faqs/{id}.
func (h *FAQsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	self := "/dashboard/faqs/" + url.PathEscape(id) + "/edit"
	if !h.parseFormOrRedirect(w, r, self) {
		return
	}
	in := faqInput(r)
	td := render.TemplateData{Title: "faqs.edit", Data: FAQFormData{FAQ: &model.FAQ{ID: id}}, Form: r.PostForm}

	if errs := checkForm(r, in, nil); errs != nil {
		td.Errors = errs
		h.render(w, r, "dashboard/faq_form", td)
		return
	}

	if _, err := h.Services.FAQs.Update(r.Context(), id, in); err != nil {
		if fields := h.mutationFailure(w, r, err, self); fields != nil {
			td.Errors = fields
			h.render(w, r, "dashboard/faq_form", td)
		}
		return
	}

	h.logger().InfoContext(r.Context(), "faq updated", "faq_id", id)
	h.Queries.Invalidate(r.Context(), resFAQs)
	h.flashSuccess(w, r, "/dashboard/faqs", "faqs.updated")
}

// Delete handles POST /dashboard/faqs/{id}/delete.
func (h *FAQsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Services.FAQs.Delete(r.Context(), id); err != nil {
		h.mutationFailure(w, r, err, "/dashboard/faqs")
		return
	}
	h.logger().InfoContext(r.Context(), "faq deleted", "faq_id", id)
	h.Queries.Invalidate(r.Context(), resFAQs)
	h.flashSuccess(w, r, "/dashboard/faqs", "faqs.deleted")
}

// Preview handles POST /dashboard/faqs/preview and returns the rendered
// answer as an HTML fragment.
func (h *FAQsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, i18n.T(lang(r), "error.invalid_form"), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, markdown.Render(r.PostFormValue("source")))
}

func faqInput(r *http.Request) model.FAQInput {
	return model.FAQInput{
		QuestionAr: strings.TrimSpace(r.PostFormValue("questionAr")),
		QuestionEn: strings.TrimSpace(r.PostFormValue("questionEn")),
		QuestionFr: strings.TrimSpace(r.PostFormValue("questionFr")),
		AnswerAr:   strings.TrimSpace(r.PostFormValue("answerAr")),
		AnswerEn:   strings.TrimSpace(r.PostFormValue("answerEn")),
		AnswerFr:   strings.TrimSpace(r.PostFormValue("answerFr")),
		Order:      formInt(r, "order", 0),
		IsActive:   formBool(r, "isActive"),
	}
}
