// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SOSLAW_SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 5*time.Second, cfg.LogoutTimeout)
	assert.Equal(t, "./data/soslaw.db", cfg.DBPath)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ar", cfg.DefaultLang)
	assert.Equal(t, 5*time.Minute, cfg.QueryStaleTime)
	assert.False(t, cfg.UseRedisCache())
	assert.False(t, cfg.GeoIPEnabled())
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SOSLAW_SESSION_SECRET", testSecret)
	setEnv(t, "SOSLAW_API_BASE_URL", "https://api.soslaw.com/")
	setEnv(t, "SOSLAW_API_TIMEOUT", "3s")
	setEnv(t, "SOSLAW_SERVER_HOST", "0.0.0.0")
	setEnv(t, "SOSLAW_SERVER_PORT", "3000")
	setEnv(t, "SOSLAW_ENV", "production")
	setEnv(t, "SOSLAW_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "SOSLAW_RESEND_API_KEY", "re_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.soslaw.com", cfg.APIBaseURL, "trailing slash is trimmed")
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "0.0.0.0:3000", cfg.ServerAddr())
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.UseRedisCache())
	assert.True(t, cfg.MailEnabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SOSLAW_SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestLoad_RejectsWeakSecret(t *testing.T) {
	for _, weak := range knownWeakSecrets {
		os.Clearenv()
		setEnv(t, "SOSLAW_SESSION_SECRET", weak)

		_, err := Load()
		require.Error(t, err, "secret %q", weak)
		assert.Contains(t, err.Error(), "known default value")
	}
}

func TestLoad_RejectsBadAPIBaseURL(t *testing.T) {
	tests := []string{"not a url", "ftp://api.soslaw.com", "/api"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "SOSLAW_SESSION_SECRET", testSecret)
			setEnv(t, "SOSLAW_API_BASE_URL", raw)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDerivedKeys(t *testing.T) {
	cfg := Config{SessionSecret: testSecret}

	csrf := cfg.CSRFKey()
	scope := cfg.QueryScopeKey()

	assert.Len(t, csrf, 32)
	assert.Len(t, scope, 32)
	assert.NotEqual(t, csrf, scope)
	assert.Equal(t, csrf, cfg.CSRFKey(), "derivation is deterministic")
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAAAAAA", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAA1234", true},
		{testSecret, true},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
