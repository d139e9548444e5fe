// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package datatable

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/mileusna/useragent"
)

// Pager holds the pagination controls.
type Pager struct {
	Show    bool // more than one page
	Compact bool // prev/next only
	RTL     bool

	Current    int
	TotalPages int
	Total      int
	From       int // 1-based index of the first row shown
	To         int

	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
	Pages   []PageLink

	// Chevrons point the reading direction's way.
	PrevIcon string
	NextIcon string
}

// PageLink is one entry in the numbered strip.
type PageLink struct {
	Number   int
	URL      string
	Current  bool
	Ellipsis bool
}

// IsMobile reports whether the request comes from a phone, which gets the
// compact controls.
func IsMobile(r *http.Request) bool {
	return useragent.Parse(r.UserAgent()).Mobile
}

func internalPager(page, total int, links linker) Pager {
	totalPages := max((total+DefaultPageSize-1)/DefaultPageSize, 1)
	page = min(max(page, 1), totalPages)

	p := Pager{Current: page, TotalPages: totalPages, Total: total}
	if total > 0 {
		p.From = (page-1)*DefaultPageSize + 1
		p.To = min(page*DefaultPageSize, total)
	}
	p.links(func(n int) string { return links.with("page", strconv.Itoa(n)) })
	return p
}

func externalPager(pg Pagination, shown int, links linker) Pager {
	total := max(*pg.Total, 0)
	limit := pg.Limit
	if limit <= 0 {
		limit = max(shown, DefaultPageSize)
	}
	offset := max(pg.Offset, 0)

	totalPages := max((total+limit-1)/limit, 1)
	page := min(offset/limit+1, totalPages)

	p := Pager{Current: page, TotalPages: totalPages, Total: total}
	if total > 0 && shown > 0 {
		p.From = offset + 1
		p.To = min(offset+shown, total)
	}
	lim := strconv.Itoa(limit)
	p.links(func(n int) string {
		return links.with("offset", strconv.Itoa((n-1)*limit), "limit", lim)
	})
	return p
}

// links fills prev/next and a strip of up to five numbers around the
// current page, with the first and last page always reachable.
func (p *Pager) links(pageURL func(int) string) {
	p.HasPrev = p.Current > 1
	p.HasNext = p.Current < p.TotalPages
	if p.HasPrev {
		p.PrevURL = pageURL(p.Current - 1)
	}
	if p.HasNext {
		p.NextURL = pageURL(p.Current + 1)
	}

	start, end := p.Current-2, p.Current+2
	if start < 1 {
		start, end = 1, 5
	}
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		p.Pages = append(p.Pages, PageLink{Number: 1, URL: pageURL(1)})
		if start > 2 {
			p.Pages = append(p.Pages, PageLink{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, PageLink{Number: i, URL: pageURL(i), Current: i == p.Current})
	}
	if end < p.TotalPages {
		if end < p.TotalPages-1 {
			p.Pages = append(p.Pages, PageLink{Ellipsis: true})
		}
		p.Pages = append(p.Pages, PageLink{Number: p.TotalPages, URL: pageURL(p.TotalPages)})
	}
}

func (p *Pager) finish(mobile, rtl bool) {
	p.Show = p.TotalPages > 1
	p.Compact = mobile
	p.RTL = rtl
	p.PrevIcon, p.NextIcon = "‹", "›"
	if rtl {
		p.PrevIcon, p.NextIcon = p.NextIcon, p.PrevIcon
	}
}

// linker builds table links that keep the rest of the query intact.
type linker struct {
	base  string
	query url.Values
}

func newLinker(base string, q url.Values) linker {
	return linker{base: base, query: q}
}

// with returns the link with the given key/value pairs replaced.
func (l linker) with(kv ...string) string {
	q := make(url.Values, len(l.query)+len(kv)/2)
	for k, v := range l.query {
		q[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			q.Del(kv[i])
			continue
		}
		q.Set(kv[i], kv[i+1])
	}
	if len(q) == 0 {
		return l.base
	}
	return l.base + "?" + q.Encode()
}
