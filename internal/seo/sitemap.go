// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds robots.txt and the sitemap for the public site.
package seo

import (
	"encoding/xml"
	"net/url"
	"strings"
)

// Sitemap XML namespaces.
const (
	XMLNamespace   = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XHTMLNamespace = "http://www.w3.org/1999/xhtml"
)

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// Alternate points crawlers at the same page in another language.
type Alternate struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string      `xml:"loc"`
	ChangeFreq ChangeFreq  `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Alternates []Alternate `xml:"xhtml:link"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder collects public pages. Every page is listed once with an
// alternate link per UI language, selected through the lang query parameter.
type SitemapBuilder struct {
	siteURL   string
	languages []string
	urls      []SitemapURL
}

// NewSitemapBuilder creates a builder for siteURL.
func NewSitemapBuilder(siteURL string, languages []string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL:   strings.TrimSuffix(siteURL, "/"),
		languages: languages,
	}
}

// Add lists path with the given crawl hints.
func (b *SitemapBuilder) Add(path string, freq ChangeFreq, priority string) {
	loc := b.siteURL + path
	entry := SitemapURL{Loc: loc, ChangeFreq: freq, Priority: priority}
	for _, lang := range b.languages {
		entry.Alternates = append(entry.Alternates, Alternate{
			Rel:      "alternate",
			HrefLang: lang,
			Href:     loc + "?lang=" + url.QueryEscape(lang),
		})
	}
	b.urls = append(b.urls, entry)
}

// AddRole lists a practice-area page.
func (b *SitemapBuilder) AddRole(slug string) {
	b.Add("/roles/"+url.PathEscape(slug), ChangeFreqWeekly, "0.7")
}

// Len returns the number of listed URLs.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		XHTML: XHTMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
