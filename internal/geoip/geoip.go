// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip maps visitor IPs to countries with a MaxMind GeoLite2-Country
// database, so first-time visitors get a sensible default language.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// privateCIDRs holds the private ranges, parsed once.
var privateCIDRs []*net.IPNet

func init() {
	for _, block := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",  // IPv6 unique local
		"fe80::/10", // IPv6 link-local
	} {
		if _, cidr, err := net.ParseCIDR(block); err == nil {
			privateCIDRs = append(privateCIDRs, cidr)
		}
	}
}

// Local is returned for private and loopback addresses.
const Local = "LOCAL"

// Lookup resolves IPs to ISO country codes. A Lookup without a database
// answers "" for public addresses.
type Lookup struct {
	mu        sync.RWMutex
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
}

type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a Lookup with no database.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init opens the database at dbPath. An empty path disables lookups.
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dbPath = dbPath
	if dbPath == "" {
		return nil
	}
	return g.load()
}

// load opens or reopens the database when the file changed.
// Caller holds g.mu.
func (g *Lookup) load() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		return fmt.Errorf("geoip database %s: %w", g.dbPath, err)
	}
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		return fmt.Errorf("opening geoip database: %w", err)
	}
	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	return nil
}

// Reload picks up a replaced database file. The scheduler calls it.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.load()
}

// Country returns the ISO code for ip, Local for private addresses, or ""
// when unknown.
func (g *Lookup) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || isPrivate(parsed) {
		return Local
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db == nil {
		return ""
	}

	var rec geoRecord
	if err := g.db.Lookup(parsed, &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}

// Language suggests a site language for ip, or "" for no opinion.
func (g *Lookup) Language(ip string) string {
	return LanguageForCountry(g.Country(ip))
}

// Enabled reports whether a database is loaded.
func (g *Lookup) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// Close releases the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

func isPrivate(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// Arab League members. Maghreb states are listed here too: Arabic is the
// official language there even where French is common.
var arabic = map[string]bool{
	"DZ": true, "BH": true, "KM": true, "DJ": true, "EG": true, "IQ": true,
	"JO": true, "KW": true, "LB": true, "LY": true, "MR": true, "MA": true,
	"OM": true, "PS": true, "QA": true, "SA": true, "SO": true, "SD": true,
	"SY": true, "TN": true, "AE": true, "YE": true,
}

var french = map[string]bool{
	"FR": true, "BE": true, "LU": true, "MC": true, "CH": true, "SN": true,
	"CI": true, "ML": true, "BF": true, "NE": true, "TG": true, "BJ": true,
	"CM": true, "GA": true, "CG": true, "CD": true, "MG": true, "HT": true,
}

// LanguageForCountry maps an ISO country code to ar, fr or en. Local and
// unknown codes give "".
func LanguageForCountry(code string) string {
	switch {
	case code == "" || code == Local:
		return ""
	case arabic[code]:
		return "ar"
	case french[code]:
		return "fr"
	default:
		return "en"
	}
}
