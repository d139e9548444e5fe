package i18n

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(nil, "ar"))

	for _, lang := range SupportedLanguages {
		if TranslationCount(lang) == 0 {
			t.Errorf("expected %s translations to be loaded", lang)
		}
	}
	assert.Equal(t, "ar", Default())
}

func TestInit_UnsupportedDefaultFallsBack(t *testing.T) {
	require.NoError(t, Init(nil, "de"))
	assert.Equal(t, DefaultLanguage, Default())
}

func TestT(t *testing.T) {
	require.NoError(t, Init(nil, "ar"))

	tests := []struct {
		lang     string
		key      string
		args     []any
		expected string
	}{
		{"en", "btn.save", nil, "Save"},
		{"fr", "btn.save", nil, "Enregistrer"},
		{"ar", "btn.save", nil, "حفظ"},
		{"en", "nav.dashboard", nil, "Dashboard"},
		{"en", "table.showing", []any{1, 10, 42}, "Showing 1–10 of 42"},
		// Unknown language falls back to the default
		{"de", "btn.save", nil, "حفظ"},
		// Unknown key returns the key
		{"en", "nonexistent.key", nil, "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			result := T(tt.lang, tt.key, tt.args...)
			if result != tt.expected {
				t.Errorf("T(%q, %q, %v) = %q, want %q", tt.lang, tt.key, tt.args, result, tt.expected)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	require.NoError(t, Init(nil, "ar"))

	assert.Equal(t, "rtl", Direction("ar"))
	assert.Equal(t, "ltr", Direction("en"))
	assert.Equal(t, "ltr", Direction("fr"))
	assert.Equal(t, "rtl", Direction("xx"), "unknown language uses the default's direction")
	assert.True(t, Info("ar").IsRTL())
}

func TestMatchLanguage(t *testing.T) {
	require.NoError(t, Init(nil, "ar"))

	tests := []struct {
		input string
		want  string
	}{
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "fr"},
		{"ar-EG,ar;q=0.9,en;q=0.5", "ar"},
		{"de-DE", "ar"},
		{"", "ar"},
		{"en", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MatchLanguage(tt.input); got != tt.want {
				t.Errorf("MatchLanguage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("AR"))
	assert.True(t, IsSupported("fr"))
	assert.False(t, IsSupported("ru"))
	assert.False(t, IsSupported(""))
}

// Every key present in the default catalog must exist in the others.
func TestCatalogsHaveSameKeys(t *testing.T) {
	keys := func(lang string) map[string]bool {
		data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s/messages.json", lang))
		require.NoError(t, err)
		var f MessageFile
		require.NoError(t, json.Unmarshal(data, &f))
		out := make(map[string]bool, len(f.Messages))
		for _, m := range f.Messages {
			out[m.ID] = true
		}
		return out
	}

	base := keys("ar")
	for _, lang := range []string{"en", "fr"} {
		other := keys(lang)
		for k := range base {
			if !other[k] {
				t.Errorf("%s catalog is missing %q", lang, k)
			}
		}
	}
}
