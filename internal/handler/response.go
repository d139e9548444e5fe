// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/validation"
)

// flashAndRedirect sets a translated flash message and redirects with 303.
func (d Deps) flashAndRedirect(w http.ResponseWriter, r *http.Request, url, key, messageType string) {
	d.Renderer.SetFlash(r, i18n.T(lang(r), key), messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects.
func (d Deps) flashError(w http.ResponseWriter, r *http.Request, url, key string) {
	d.flashAndRedirect(w, r, url, key, render.FlashError)
}

// flashSuccess sets a success flash message and redirects.
func (d Deps) flashSuccess(w http.ResponseWriter, r *http.Request, url, key string) {
	d.flashAndRedirect(w, r, url, key, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form. On failure it flashes an
// error, redirects and returns false.
func (d Deps) parseFormOrRedirect(w http.ResponseWriter, r *http.Request, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		d.flashError(w, r, redirectURL, "error.invalid_form")
		return false
	}
	return true
}

// render renders a page and logs failures as a 500.
func (d Deps) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	status := http.StatusOK
	if len(data.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	if err := d.Renderer.RenderStatus(w, r, status, name, data); err != nil {
		d.logAndInternalError(w, r, "failed to render template", "template", name, "error", err)
	}
}

// logAndInternalError logs an error and writes a 500 response.
func (d Deps) logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	d.logger().ErrorContext(r.Context(), logMsg, args...)
	http.Error(w, i18n.T(lang(r), "error.500"), http.StatusInternalServerError)
}

// apiFailure handles an error from a backend call made while serving a page.
// A 401 has already expired the session, so nothing is written and the
// session middleware sends the login redirect. A 404 renders the not found
// page, a 403 the forbidden page, anything else the error page for 502.
func (d Deps) apiFailure(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return
	}
	var apiErr *apiclient.APIError
	switch {
	case apiclient.IsNotFound(err):
		d.Renderer.Error(w, r, http.StatusNotFound)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden:
		d.Renderer.Error(w, r, http.StatusForbidden)
	default:
		d.logger().ErrorContext(r.Context(), "backend call failed", "what", what, "error", err)
		d.Renderer.Error(w, r, http.StatusBadGateway)
	}
}

// mutationFailure handles an error from a backend write made by a form post.
// It returns field errors when the backend reported any, so the form can be
// shown again. Otherwise it flashes the backend's message and redirects, and
// returns nil.
func (d Deps) mutationFailure(w http.ResponseWriter, r *http.Request, err error, redirectURL string) map[string]string {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return nil
	}
	if fields := apiclient.FieldErrors(err); len(fields) > 0 {
		return fields
	}
	d.logger().WarnContext(r.Context(), "backend rejected write", "path", r.URL.Path, "error", err)
	msg := apiclient.Message(err, i18n.T(lang(r), "error.generic"))
	d.Renderer.SetFlash(r, msg, render.FlashError)
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	return nil
}

// checkForm validates v and merges the result with any extra errors.
func checkForm(r *http.Request, v any, extra map[string]string) map[string]string {
	errs := validation.Merge(map[string]string(validation.Struct(lang(r), v)), extra)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// formInt reads an integer form value, returning def when absent or invalid.
func formInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.FormValue(key))
	if err != nil {
		return def
	}
	return n
}

// formBool reads a checkbox.
func formBool(r *http.Request, key string) bool {
	switch r.FormValue(key) {
	case "on", "true", "1":
		return true
	}
	return false
}
