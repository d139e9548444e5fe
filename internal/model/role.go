// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Role is a legal-service role shown on the public site (e.g. "Lawyer",
// "Legal advisor"). Titles and descriptions are stored per language.
type Role struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	TitleAr       string `json:"titleAr"`
	TitleEn       string `json:"titleEn"`
	TitleFr       string `json:"titleFr"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`
	DescriptionFr string `json:"descriptionFr"`
	Icon          string `json:"icon,omitempty"`
	Order         int    `json:"order"`
	IsActive      bool   `json:"isActive"`
}

// Title returns the title in lang, falling back to Arabic.
func (r Role) Title(lang string) string {
	return pick(lang, r.TitleAr, r.TitleEn, r.TitleFr)
}

// Description returns the description in lang, falling back to Arabic.
func (r Role) Description(lang string) string {
	return pick(lang, r.DescriptionAr, r.DescriptionEn, r.DescriptionFr)
}

// RoleInput is the create/update payload for roles.
type RoleInput struct {
	Slug          string `json:"slug" validate:"required,max=80"`
	TitleAr       string `json:"titleAr" validate:"required"`
	TitleEn       string `json:"titleEn" validate:"required"`
	TitleFr       string `json:"titleFr"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`
	DescriptionFr string `json:"descriptionFr"`
	Icon          string `json:"icon,omitempty"`
	Order         int    `json:"order" validate:"gte=0"`
	IsActive      bool   `json:"isActive"`
}

// RoleStats is returned by GET /roles/stats.
type RoleStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// pick chooses the value for lang. Empty values fall back to Arabic, then English.
func pick(lang, ar, en, fr string) string {
	var v string
	switch lang {
	case "en":
		v = en
	case "fr":
		v = fr
	default:
		v = ar
	}
	if v != "" {
		return v
	}
	if ar != "" {
		return ar
	}
	return en
}
