// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads SOSLAW web settings from the environment.
package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/hkdf"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL    string        `env:"SOSLAW_API_BASE_URL" envDefault:"http://localhost:5000"`
	APITimeout    time.Duration `env:"SOSLAW_API_TIMEOUT" envDefault:"15s"`
	LogoutTimeout time.Duration `env:"SOSLAW_LOGOUT_TIMEOUT" envDefault:"5s"`
	SessionSecret string        `env:"SOSLAW_SESSION_SECRET,required"`
	DBPath        string        `env:"SOSLAW_DB_PATH" envDefault:"./data/soslaw.db"`
	ServerHost    string        `env:"SOSLAW_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"SOSLAW_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"SOSLAW_ENV" envDefault:"development"`
	LogLevel      string        `env:"SOSLAW_LOG_LEVEL" envDefault:"info"`
	DefaultLang   string        `env:"SOSLAW_DEFAULT_LANG" envDefault:"ar"`
	SiteURL       string        `env:"SOSLAW_SITE_URL" envDefault:"http://localhost:8080"` // Public URL for the sitemap

	// Query cache configuration
	RedisURL       string        `env:"SOSLAW_REDIS_URL"`                          // Optional Redis URL for a shared query cache
	CachePrefix    string        `env:"SOSLAW_CACHE_PREFIX" envDefault:"soslaw:"`  // Redis key prefix
	QueryStaleTime time.Duration `env:"SOSLAW_QUERY_STALE_TIME" envDefault:"5m"`   // How long a fetched query stays fresh
	CacheMaxSize   int           `env:"SOSLAW_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries
	WarmupSchedule string        `env:"SOSLAW_WARMUP_SCHEDULE" envDefault:"@every 4m"`

	// GeoIP configuration
	GeoIPDBPath string `env:"SOSLAW_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Conference confirmation email
	ResendAPIKey string `env:"SOSLAW_RESEND_API_KEY"`
	MailFrom     string `env:"SOSLAW_MAIL_FROM" envDefault:"SOSLAW <no-reply@soslaw.com>"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MailEnabled returns true if confirmation emails can be sent.
func (c Config) MailEnabled() bool {
	return c.ResendAPIKey != ""
}

// CSRFKey derives the 32-byte key used to authenticate CSRF tokens.
func (c Config) CSRFKey() []byte {
	return c.deriveKey("soslaw csrf")
}

// QueryScopeKey derives the key used to scope cached queries per bearer token.
func (c Config) QueryScopeKey() []byte {
	return c.deriveKey("soslaw query scope")
}

func (c Config) deriveKey(info string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.SessionSecret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255*HashLen bytes of output.
		panic(err)
	}
	return key
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SOSLAW_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("SOSLAW_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SOSLAW_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SOSLAW_API_BASE_URL must be an absolute http(s) URL, got %q", cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("SOSLAW_API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
