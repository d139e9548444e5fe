// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soslaw/soslaw-web/internal/render"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	sub, err := fs.Sub(Templates, "templates")
	require.NoError(t, err)
	r, err := render.New(render.Config{TemplatesFS: sub, Version: "test"})
	require.NoError(t, err)
	return r
}

func TestTemplates_EveryPageParses(t *testing.T) {
	r := newRenderer(t)

	for _, dir := range []string{"public", "errors", "auth", "client", "dashboard"} {
		entries, err := fs.ReadDir(Templates, "templates/"+dir)
		require.NoError(t, err)
		for _, e := range entries {
			name := dir + "/" + strings.TrimSuffix(path.Base(e.Name()), ".html")
			assert.True(t, r.Has(name), "page %s was not parsed", name)
		}
	}
}

func TestTemplates_RenderErrorPage(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	r.Error(rec, httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "404")
}

func TestTemplates_RenderLoginKeepsNext(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/login", nil), "auth/login", render.TemplateData{
		Title:  "auth.login",
		Form:   url.Values{"next": {"/client/requests"}, "email": {"a@b.test"}},
		Errors: map[string]string{"password": "too short"},
	})

	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `name="next" value="/client/requests"`)
	assert.Contains(t, body, `value="a@b.test"`)
	assert.Contains(t, body, "too short")
}

func TestStaticAssetsEmbedded(t *testing.T) {
	for _, name := range []string{"static/dist/css/app.css", "static/dist/js/app.js"} {
		_, err := fs.Stat(Static, name)
		assert.NoError(t, err, name)
	}
}
