// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the embedded html/template pages. Each page
// directory is bound to a layout: public pages use the site layout, and the
// auth, client and dashboard areas have their own.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/session"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
	baseLayout   = "layouts/base.html"
)

// layouts maps a page directory to its layout file.
var layouts = map[string]string{
	"public":    "layouts/site.html",
	"errors":    "layouts/site.html",
	"auth":      "layouts/auth.html",
	"client":    "layouts/client.html",
	"dashboard": "layouts/dashboard.html",
}

// blankLinesRegex collapses runs of blank lines left by template actions.
var blankLinesRegex = regexp.MustCompile(`\r?\n\s*\n`)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
	version        string
	extraFuncs     template.FuncMap
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
	Version        string
}

// New parses every page under the layout directories.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		version:        cfg.Version,
		now:            time.Now,
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// AddTemplateFuncs registers extra functions. Call it before parsing, or on
// a zero Renderer in tests.
func (r *Renderer) AddTemplateFuncs(funcs template.FuncMap) {
	if r.extraFuncs == nil {
		r.extraFuncs = make(template.FuncMap, len(funcs))
	}
	for k, v := range funcs {
		r.extraFuncs[k] = v
	}
}

func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	funcs := r.TemplateFuncs()
	for dir, layout := range layouts {
		pages, err := templateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}
		for _, page := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{baseLayout, layout}, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	return nil
}

// templateFiles lists the .html files in dir. A missing dir is not an error.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render renders page name with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders the full page name inside its layout.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	return r.execute(w, req, status, name, "base", data)
}

// RenderFragment executes one named template from page name, without the
// layout. htmx swaps use it for table bodies and form fragments.
func (r *Renderer) RenderFragment(w http.ResponseWriter, req *http.Request, name, block string, data TemplateData) error {
	return r.execute(w, req, http.StatusOK, name, block, data)
}

func (r *Renderer) execute(w http.ResponseWriter, req *http.Request, status int, name, block string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	r.fill(req, &data)

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, block, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	out := buf.Bytes()
	if !r.isDev {
		out = blankLinesRegex.ReplaceAll(out, []byte("\n"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(out)
	return err
}

// fill sets the fields every page needs from the request.
func (r *Renderer) fill(req *http.Request, data *TemplateData) {
	ctx := req.Context()
	data.Lang = middleware.Lang(ctx)
	data.Dir = i18n.Direction(data.Lang)
	data.Languages = i18n.Languages()
	data.Session = session.FromContext(ctx).Snapshot()
	data.Path = req.URL.Path
	data.CurrentYear = r.now().Year()
	data.Version = r.version
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}

	if data.Flash == "" && r.sessionManager != nil {
		if flash := r.popString(req, flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.popString(req, flashTypeKey)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}
}

// popString reads a session value. Requests outside LoadAndSave have no
// session data and make scs panic; those get "".
func (r *Renderer) popString(req *http.Request, key string) (s string) {
	defer func() {
		if rec := recover(); rec != nil {
			s = ""
		}
	}()
	return r.sessionManager.PopString(req.Context(), key)
}

// SetFlash sets a flash message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.WarnContext(req.Context(), "flash dropped: no session", "path", req.URL.Path)
		}
	}()
	r.sessionManager.Put(req.Context(), flashKey, message)
	r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
}

// Loading is shown while the session cannot be resolved because the backend
// is unreachable. The page refreshes itself.
func (r *Renderer) Loading() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data := TemplateData{Title: "page.loading"}
		if err := r.Render(w, req, "public/loading", data); err != nil {
			slog.ErrorContext(req.Context(), "rendering loading page", "error", err)
			http.Error(w, i18n.T(middleware.Lang(req.Context()), "page.loading"), http.StatusServiceUnavailable)
		}
	})
}

// Error renders the error page for status.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int) {
	data := TemplateData{
		Title: fmt.Sprintf("error.%d", status),
		Data:  map[string]any{"Status": status},
	}
	if err := r.RenderStatus(w, req, status, "errors/error", data); err != nil {
		slog.ErrorContext(req.Context(), "rendering error page", "status", status, "error", err)
		http.Error(w, http.StatusText(status), status)
	}
}
