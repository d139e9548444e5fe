// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package datatable

import (
	"cmp"
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// record is a row together with its fields as seen through JSON.
type record[T any] struct {
	item   T
	fields map[string]any
}

// Build produces the view for rows. It never fails: rows that cannot be
// inspected are dropped and an empty input renders the empty state.
func Build[T any](rows []T, cols []Column[T], st State, opts Options) View {
	recs := toRecords(rows)

	if st.SortKey != "" {
		sortRecords(recs, st.SortKey, st.SortDir)
	}

	external := opts.Pagination != nil && opts.Pagination.Total != nil
	links := newLinker(opts.BaseURL, opts.Query)

	var (
		pageRecs []record[T]
		pager    Pager
	)
	if external {
		pageRecs = recs
		pager = externalPager(*opts.Pagination, len(recs), links)
	} else {
		if opts.Search != "" {
			recs = filterRecords(recs, cols, opts.Search)
		}
		pager = internalPager(st.Page, len(recs), links)
		from := (pager.Current - 1) * DefaultPageSize
		pageRecs = recs[min(from, len(recs)):min(from+DefaultPageSize, len(recs))]
	}
	pager.finish(opts.Mobile, opts.RTL)

	v := View{
		External: external,
		Search:   opts.Search,
		ColSpan:  max(len(cols), 1),
		Pager:    pager,
	}

	for _, c := range cols {
		h := Header{Key: c.Key, Label: c.Label, Sortable: c.Sortable}
		if c.Sortable {
			next := st.ToggleSort(c.Key)
			h.URL = links.with("sort", next.SortKey, "dir", string(next.SortDir))
			if st.SortKey == c.Key {
				h.Active = true
				h.Dir = st.SortDir
			}
		}
		v.Headers = append(v.Headers, h)
	}

	for _, r := range pageRecs {
		row := Row{Cells: make([]Cell, 0, len(cols))}
		for _, c := range cols {
			row.Cells = append(row.Cells, renderCell(c, r))
		}
		v.Rows = append(v.Rows, row)
	}

	if len(v.Rows) == 0 {
		v.Empty = true
		v.EmptyKey = MsgNoData
		if opts.Search != "" {
			v.EmptyKey = MsgNoResults
		}
	}

	return v
}

func toRecords[T any](rows []T) []record[T] {
	recs := make([]record[T], 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			// Not an object; keep the row with no fields.
			fields = map[string]any{}
		}
		recs = append(recs, record[T]{item: row, fields: fields})
	}
	return recs
}

func sortRecords[T any](recs []record[T], key string, dir SortDir) {
	slices.SortStableFunc(recs, func(a, b record[T]) int {
		c := compareValues(a.fields[key], b.fields[key])
		if dir == Desc {
			return -c
		}
		return c
	})
}

// compareValues orders JSON values. Missing values sort first; values of
// different types compare by their string form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(stringify(a), stringify(b))
}

// filterRecords keeps rows where any visible column contains term,
// ignoring case.
func filterRecords[T any](recs []record[T], cols []Column[T], term string) []record[T] {
	needle := strings.ToLower(term)
	out := recs[:0:0]
	for _, r := range recs {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(searchText(c, r)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

var plainText = bluemonday.StrictPolicy()

// searchText is what a search term is matched against in one cell: the
// rendered text of custom cells, the raw field value otherwise.
func searchText[T any](c Column[T], r record[T]) string {
	if c.NoSearch {
		return ""
	}
	if c.Kind == KindCustom && c.Render != nil {
		return html.UnescapeString(plainText.Sanitize(string(c.Render(r.item))))
	}
	return stringify(r.fields[c.Key])
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

func renderCell[T any](c Column[T], r record[T]) Cell {
	raw := stringify(r.fields[c.Key])
	cell := Cell{Kind: c.Kind, Text: raw}

	switch c.Kind {
	case KindBadge:
		if b, ok := c.Badges[raw]; ok {
			cell.Text = b.Label
			cell.Class = b.Class
		}
	case KindDate:
		cell.Text = formatDate(raw)
	case KindCustom:
		if c.Render != nil {
			cell.HTML = c.Render(r.item)
		}
	}
	return cell
}

// formatDate shortens an RFC 3339 timestamp to its date. Anything else is
// returned unchanged.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
