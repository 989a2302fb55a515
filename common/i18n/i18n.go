package i18n

import (
	"embed"
	"fmt"
	"maps"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locale/*
var localesFS embed.FS

const defaultLang = "en"

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init loads the embedded locale files and selects lang as the active
// language. An unknown tag falls back to English.
func Init(lang string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	files, err := localesFS.ReadDir("locale")
	if err != nil {
		return fmt.Errorf("failed to read locale directory: %w", err)
	}
	for _, file := range files {
		if _, err := b.LoadMessageFileFS(localesFS, "locale/"+file.Name()); err != nil {
			return fmt.Errorf("failed to load message file %s: %w", file.Name(), err)
		}
	}
	if lang == "" {
		lang = defaultLang
	}
	if _, err := language.Parse(lang); err != nil {
		lang = defaultLang
	}
	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, defaultLang)
	mu.Unlock()
	return nil
}

// T renders key with the merged template data. The key itself is returned
// when no translation exists.
func T(key i18nk.Key, templateData ...map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		if err := Init(defaultLang); err != nil {
			return string(key)
		}
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}
	data := make(map[string]any)
	for _, d := range templateData {
		maps.Copy(data, d)
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    string(key),
		TemplateData: data,
	})
	if err != nil {
		return string(key)
	}
	return msg
}

// Languages lists the tags of all loaded locale files.
func Languages() []string {
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		return nil
	}
	tags := bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}
