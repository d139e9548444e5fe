// Package i18n provides translations for the public site, client area and dashboard.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language  string    `json:"language"`
	Name      string    `json:"name"`
	Direction string    `json:"direction"`
	Messages  []Message `json:"messages"`
}

// Language describes a supported UI language.
type Language struct {
	Code      string
	Name      string
	Direction string
}

// IsRTL reports whether the language is written right to left.
func (l Language) IsRTL() bool {
	return l.Direction == "rtl"
}

// Catalog holds all translations for all supported languages.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	languages    map[string]Language
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// SupportedLanguages lists the UI languages in display order. Arabic comes first.
var SupportedLanguages = []string{"ar", "en", "fr"}

// DefaultLanguage is used when nothing else matches.
const DefaultLanguage = "ar"

// Init loads every embedded catalog. defaultLang falls back to DefaultLanguage
// when empty or unsupported.
func Init(logger *slog.Logger, defaultLang string) error {
	if !IsSupported(defaultLang) {
		defaultLang = DefaultLanguage
	}

	c := &Catalog{
		translations: make(map[string]map[string]string),
		languages:    make(map[string]Language),
		defaultLang:  defaultLang,
		logger:       logger,
	}

	// The matcher falls back to its first tag, so the default goes first.
	tags := []language.Tag{language.MustParse(defaultLang)}
	for _, lang := range SupportedLanguages {
		if lang != defaultLang {
			tags = append(tags, language.MustParse(lang))
		}
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := c.loadLanguage(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	catalog = c

	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages, "default", defaultLang)
	}

	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}

	dir := msgFile.Direction
	if dir != "rtl" {
		dir = "ltr"
	}
	c.languages[lang] = Language{Code: lang, Name: msgFile.Name, Direction: dir}

	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgFile.Messages))
	}

	return nil
}

// T translates a message key to the specified language.
// Missing keys fall back to the default language, then to the key itself.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	translation, ok := catalog.translations[lang][key]
	if !ok && lang != catalog.defaultLang {
		translation, ok = catalog.translations[catalog.defaultLang][key]
		if ok && catalog.logger != nil {
			catalog.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}
	if !ok {
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// Default returns the configured default language code.
func Default() string {
	if catalog == nil {
		return DefaultLanguage
	}
	return catalog.defaultLang
}

// Direction returns "rtl" or "ltr" for the language.
func Direction(lang string) string {
	return Info(lang).Direction
}

// Info returns the language description, falling back to the default language.
func Info(lang string) Language {
	if catalog == nil {
		if lang == "ar" {
			return Language{Code: "ar", Name: "العربية", Direction: "rtl"}
		}
		return Language{Code: lang, Direction: "ltr"}
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	if l, ok := catalog.languages[lang]; ok {
		return l
	}
	return catalog.languages[catalog.defaultLang]
}

// Languages returns all supported languages in display order.
func Languages() []Language {
	out := make([]Language, 0, len(SupportedLanguages))
	for _, code := range SupportedLanguages {
		out = append(out, Info(code))
	}
	return out
}

// MatchLanguage finds the best matching supported language for an
// Accept-Language header or a bare language code.
func MatchLanguage(acceptLang string) string {
	def := Default()
	if catalog == nil || strings.TrimSpace(acceptLang) == "" {
		return def
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return def
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	if idx >= 0 && idx < len(catalog.supported) {
		base, _ := catalog.supported[idx].Base()
		return base.String()
	}

	return def
}

// IsSupported checks if a language code is supported.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// TranslationCount returns the number of translations loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	return len(catalog.translations[lang])
}
