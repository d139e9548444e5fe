// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package datatable turns a slice of rows and a column list into a sorted,
// searched and paginated table view for the templates.
//
// A table runs in one of two modes. In internal mode it holds every row and
// does search and pagination itself, ten rows per page. In external mode the
// backend has already filtered and paged the rows; the table shows what it
// was given and links page buttons to the matching offset. Sorting always
// happens here, so in external mode it only orders the current page.
package datatable

import (
	"html/template"
	"net/url"
	"strconv"
)

// DefaultPageSize is the internal-mode page size.
const DefaultPageSize = 10

// Empty-state message keys.
const (
	MsgNoResults = "table.no_results"
	MsgNoData    = "table.no_data"
)

// SortDir is a sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// State is the user-controlled part of a table: sort and page.
// It lives in the query string and is never persisted.
type State struct {
	SortKey string
	SortDir SortDir
	Page    int
}

// StateFromQuery reads sort, dir and page.
func StateFromQuery(q url.Values) State {
	st := State{SortKey: q.Get("sort"), SortDir: Asc, Page: 1}
	if SortDir(q.Get("dir")) == Desc {
		st.SortDir = Desc
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		st.Page = p
	}
	return st
}

// ToggleSort is a header click: the same column flips direction, a new
// column starts ascending.
func (s State) ToggleSort(key string) State {
	if s.SortKey == key && s.SortDir == Asc {
		s.SortDir = Desc
	} else {
		s.SortKey = key
		s.SortDir = Asc
	}
	return s
}

// Kind selects how a column renders its cells.
type Kind int

const (
	KindText Kind = iota
	KindBadge
	KindDate
	KindCustom
)

// Badge is a styled label for one value of a badge column.
type Badge struct {
	Label string // message key
	Class string
}

// Column describes one table column. Key is the row's JSON field name; it
// drives both the default cell text and sorting.
type Column[T any] struct {
	Key      string
	Label    string // message key
	Sortable bool
	Kind     Kind
	Badges   map[string]Badge
	Render   func(row T) template.HTML
	NoSearch bool // skipped by the search filter
}

// TextColumn prints the raw field value.
func TextColumn[T any](key, label string, sortable bool) Column[T] {
	return Column[T]{Key: key, Label: label, Sortable: sortable, Kind: KindText}
}

// BadgeColumn maps field values to badges. Unknown values print as-is.
func BadgeColumn[T any](key, label string, badges map[string]Badge) Column[T] {
	return Column[T]{Key: key, Label: label, Sortable: true, Kind: KindBadge, Badges: badges}
}

// DateColumn formats an RFC 3339 timestamp as a date.
func DateColumn[T any](key, label string) Column[T] {
	return Column[T]{Key: key, Label: label, Sortable: true, Kind: KindDate}
}

// CustomColumn renders cells with fn. The output is trusted HTML, so fn must
// escape anything it takes from the row.
func CustomColumn[T any](key, label string, fn func(row T) template.HTML) Column[T] {
	return Column[T]{Key: key, Label: label, Kind: KindCustom, Render: fn}
}

// ActionsColumn renders row controls. Its labels never match a search.
func ActionsColumn[T any](label string, fn func(row T) template.HTML) Column[T] {
	return Column[T]{Key: "actions", Label: label, Kind: KindCustom, Render: fn, NoSearch: true}
}

// Pagination describes a server-paged result. A non-nil Total, even zero,
// switches the table to external mode.
type Pagination struct {
	Total  *int
	Limit  int
	Offset int
}

// External builds a Pagination from list metadata. It returns nil when the
// backend did not report a total.
func External(total *int, limit, offset int) *Pagination {
	if total == nil {
		return nil
	}
	return &Pagination{Total: total, Limit: limit, Offset: offset}
}

// Options carries the request context a table needs to build its links.
type Options struct {
	BaseURL    string
	Query      url.Values // current query; preserved in every link
	Search     string
	Pagination *Pagination
	Mobile     bool
	RTL        bool
}

// View is what the datatable template renders.
type View struct {
	Headers  []Header
	Rows     []Row
	Empty    bool
	EmptyKey string
	ColSpan  int
	External bool
	Search   string
	Pager    Pager
}

// Header is one column heading.
type Header struct {
	Key      string
	Label    string
	Sortable bool
	Active   bool
	Dir      SortDir
	URL      string
}

// Row is one rendered row.
type Row struct {
	Cells []Cell
}

// Cell is one rendered cell. Text is always set; HTML only for custom columns.
type Cell struct {
	Kind  Kind
	Text  string
	HTML  template.HTML
	Class string
}
