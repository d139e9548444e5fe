// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/url"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/session"
)

// TemplateData holds data passed to templates. Title is a message key.
// Lang, Dir, Languages, Session, Path, CurrentYear and Version are filled in
// by the renderer.
type TemplateData struct {
	Title       string
	Data        any
	Form        url.Values
	Errors      map[string]string // field name to translated message
	Breadcrumbs []Breadcrumb

	Flash     string
	FlashType string

	Lang        string
	Dir         string
	Languages   []i18n.Language
	Session     session.Session
	Path        string
	CurrentYear int
	Version     string
}

// Breadcrumb is one step of the dashboard trail. Label is a message key.
type Breadcrumb struct {
	Label  string
	URL    string
	Active bool
}

// HasErrors reports whether any field failed validation.
func (d TemplateData) HasErrors() bool {
	return len(d.Errors) > 0
}

// Value returns the submitted form value for field.
func (d TemplateData) Value(field string) string {
	if d.Form == nil {
		return ""
	}
	return d.Form.Get(field)
}
