// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"html/template"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/markdown"
)

var monthsAr = []string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

var monthsFr = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// statusClasses styles request, payment and consultation statuses.
var statusClasses = map[string]string{
	"new":         "badge-info",
	"pending":     "badge-warning",
	"scheduled":   "badge-info",
	"in_progress": "badge-primary",
	"resolved":    "badge-success",
	"completed":   "badge-success",
	"paid":        "badge-success",
	"closed":      "badge-muted",
	"cancelled":   "badge-danger",
	"unpaid":      "badge-danger",
	"refunded":    "badge-muted",
}

// TemplateFuncs returns the functions available to every template.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := template.FuncMap{
		"T":        i18n.T,
		"dir":      i18n.Direction,
		"langName": func(code string) string { return i18n.Info(code).Name },
		"markdown": markdown.Render,

		"date":        func(t any, lang string) string { return applyTime(t, lang, FormatDate) },
		"dateTime":    func(t any, lang string) string { return applyTime(t, lang, FormatDateTime) },
		"money":       FormatMoney,
		"statusClass": StatusClass,

		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"contains":  func(list []string, s string) bool { return slices.Contains(list, s) },
		"navActive": NavActive,

		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var out []int
			for i := start; i <= end; i++ {
				out = append(out, i)
			}
			return out
		},
		"dict": dict,
		"itoa": strconv.Itoa,
	}
	for k, v := range r.extraFuncs {
		funcs[k] = v
	}
	return funcs
}

// FormatDate formats t for lang: "5 مارس 2026", "5 mars 2026" or "Mar 5, 2026".
func FormatDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch lang {
	case "ar":
		return fmt.Sprintf("%d %s %d", t.Day(), monthsAr[t.Month()-1], t.Year())
	case "fr":
		return fmt.Sprintf("%d %s %d", t.Day(), monthsFr[t.Month()-1], t.Year())
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FormatDateTime is FormatDate with a 24-hour time.
func FormatDateTime(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	return FormatDate(t, lang) + " " + t.Format("15:04")
}

func applyTime(t any, lang string, format func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		return format(v, lang)
	case *time.Time:
		if v == nil {
			return ""
		}
		return format(*v, lang)
	default:
		return ""
	}
}

// FormatMoney prints an amount with two decimals and the currency code.
func FormatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + " MAD"
}

// StatusClass returns the badge class for a status value.
func StatusClass(status string) string {
	if c, ok := statusClasses[status]; ok {
		return c
	}
	return "badge-muted"
}

// Truncate shortens s to n runes, adding an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// NavActive reports whether the current path is inside section. The root
// section only matches itself.
func NavActive(current, section string) bool {
	if section == "/" || section == "/dashboard" || section == "/client" {
		return current == section
	}
	return current == section || strings.HasPrefix(current, section+"/")
}

func dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		m[key] = values[i+1]
	}
	return m
}
