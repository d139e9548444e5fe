// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/soslaw/soslaw-web/internal/datatable"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/service"
)

// adminPageSize is the server page size for dashboard lists.
const adminPageSize = 20

const maxPageSize = 100

// TableData is what list pages pass to the datatable partial.
type TableData struct {
	Table   datatable.View
	Search  string
	Filter  string   // current status or role filter
	Filters []string // values offered in the filter select
	Action  string   // form action for the search box
}

// listParams reads the search box, filters and server page from the query.
func listParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	p := service.ListParams{
		Limit:  adminPageSize,
		Search: strings.TrimSpace(q.Get("q")),
		Status: q.Get("status"),
		Role:   q.Get("role"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, maxPageSize)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

// tableOptions builds datatable options for the current request.
func tableOptions(r *http.Request, search string, pg *datatable.Pagination) datatable.Options {
	return datatable.Options{
		BaseURL:    r.URL.Path,
		Query:      r.URL.Query(),
		Search:     search,
		Pagination: pg,
		Mobile:     datatable.IsMobile(r),
		RTL:        i18n.Direction(lang(r)) == "rtl",
	}
}

// buildTable builds a table for one server page of rows. A nil total means
// the backend did not report one, and the table pages in memory instead.
func buildTable[T any](r *http.Request, rows []T, cols []datatable.Column[T], search string, total *int, p service.ListParams) datatable.View {
	st := datatable.StateFromQuery(r.URL.Query())
	return datatable.Build(rows, cols, st, tableOptions(r, search, datatable.External(total, p.Limit, p.Offset)))
}

// statusBadges maps each status value to its label key and badge class.
func statusBadges(values []string) map[string]datatable.Badge {
	out := make(map[string]datatable.Badge, len(values))
	for _, v := range values {
		out[v] = datatable.Badge{Label: "status." + v, Class: render.StatusClass(v)}
	}
	return out
}

// roleBadges labels account roles.
func roleBadges(values []string) map[string]datatable.Badge {
	out := make(map[string]datatable.Badge, len(values))
	for _, v := range values {
		out[v] = datatable.Badge{Label: "role." + v, Class: "badge-" + v}
	}
	return out
}

// actionLink renders a row link.
func actionLink(href, label string) template.HTML {
	return template.HTML(fmt.Sprintf(`<a class="btn btn-sm" href="%s">%s</a>`,
		template.HTMLEscapeString(href), template.HTMLEscapeString(label)))
}

// actionForm renders a one-button POST form. confirm, when set, asks first.
func actionForm(action, label, class, confirm string) template.HTML {
	confirmAttr := ""
	if confirm != "" {
		confirmAttr = fmt.Sprintf(` data-confirm="%s"`, template.HTMLEscapeString(confirm))
	}
	return template.HTML(fmt.Sprintf(`<form method="post" action="%s" class="inline"%s><button type="submit" class="btn btn-sm %s">%s</button></form>`,
		template.HTMLEscapeString(action), confirmAttr, template.HTMLEscapeString(class), template.HTMLEscapeString(label)))
}

// selectForm renders a POST form that submits a new value for field when the
// select changes.
func selectForm(action, field, current string, options []string, labelFor func(string) string) template.HTML {
	var b strings.Builder
	fmt.Fprintf(&b, `<form method="post" action="%s" class="inline"><select name="%s" data-autosubmit>`,
		template.HTMLEscapeString(action), template.HTMLEscapeString(field))
	for _, o := range options {
		sel := ""
		if o == current {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
			template.HTMLEscapeString(o), sel, template.HTMLEscapeString(labelFor(o)))
	}
	b.WriteString(`</select><noscript><button type="submit" class="btn btn-sm">OK</button></noscript></form>`)
	return template.HTML(b.String())
}

func joinHTML(parts ...template.HTML) template.HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return template.HTML(b.String())
}
