// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountry_WithoutDatabase(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))

	assert.False(t, g.Enabled())
	assert.Equal(t, Local, g.Country("127.0.0.1"))
	assert.Equal(t, Local, g.Country("192.168.1.20"))
	assert.Equal(t, Local, g.Country("fe80::1"))
	assert.Equal(t, "", g.Country("8.8.8.8"))
	assert.Equal(t, "", g.Country("not-an-ip"))
	assert.Equal(t, "", g.Language("8.8.8.8"))
	assert.NoError(t, g.Reload())
	assert.NoError(t, g.Close())
}

func TestInit_MissingFile(t *testing.T) {
	g := NewLookup()
	err := g.Init(filepath.Join(t.TempDir(), "missing.mmdb"))

	assert.Error(t, err)
	assert.False(t, g.Enabled())
}

func TestLanguageForCountry(t *testing.T) {
	tests := map[string]string{
		"SA":  "ar",
		"MA":  "ar",
		"DZ":  "ar",
		"FR":  "fr",
		"SN":  "fr",
		"US":  "en",
		"DE":  "en",
		"":    "",
		Local: "",
	}
	for code, want := range tests {
		assert.Equal(t, want, LanguageForCountry(code), code)
	}
}
