// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Legal Consultant", "legal-consultant"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"numbers", "Level 2 Advisor", "level-2-advisor"},
		{"accents", "Conseiller juridique spécialisé", "conseiller-juridique-specialise"},
		{"multiple spaces", "Family   Law", "family-law"},
		{"hyphen with spaces", "Tax - Law", "tax-law"},
		{"leading and trailing", "  -Trim me-  ", "trim-me"},
		{"empty", "", ""},
		{"only symbols", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Arabic(t *testing.T) {
	slug := Slugify("مستشار قانوني")

	assert.NotEmpty(t, slug)
	assert.True(t, IsValidSlug(slug), "slug %q", slug)
}

func TestSlugify_Truncates(t *testing.T) {
	slug := Slugify(strings.Repeat("word ", 40))

	assert.LessOrEqual(t, len(slug), MaxSlugLength)
	assert.True(t, IsValidSlug(slug))
}

func TestSlugFromTitles(t *testing.T) {
	assert.Equal(t, "consultant", SlugFromTitles("", "!!", "Consultant"))
	assert.Equal(t, "", SlugFromTitles())
}

func TestIsValidSlug(t *testing.T) {
	tests := map[string]bool{
		"legal-consultant": true,
		"a1":               true,
		"":                 false,
		"Upper":            false,
		"-lead":            false,
		"trail-":           false,
		"double--hyphen":   false,
		"space here":       false,
		"arabic-مستشار":    false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsValidSlug(in), in)
	}
}
