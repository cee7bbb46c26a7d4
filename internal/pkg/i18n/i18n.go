// Package i18n translates UI strings for the supported locales.
package i18n

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

type Locale string

const (
	English Locale = "en"
	Thai    Locale = "th"
)

var supported = []Locale{English, Thai}

//go:embed locales/*.yaml
var localesFS embed.FS

var dictionaries = mustLoad()

func mustLoad() map[Locale]map[string]string {
	dicts := make(map[Locale]map[string]string, len(supported))
	for _, locale := range supported {
		data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s.yaml", locale))
		if err != nil {
			panic(err)
		}
		dict := make(map[string]string)
		if err := yaml.Unmarshal(data, &dict); err != nil {
			panic(fmt.Sprintf("i18n: parsing %s dictionary: %v", locale, err))
		}
		dicts[locale] = dict
	}
	return dicts
}

// ParseLocale accepts only the supported language codes.
func ParseLocale(code string) (Locale, bool) {
	for _, locale := range supported {
		if string(locale) == code {
			return locale, true
		}
	}
	return "", false
}

func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Translate looks key up in locale's dictionary and returns the key itself
// on a miss. Unsupported locales read the English dictionary.
func Translate(locale Locale, key string) string {
	dict, ok := dictionaries[locale]
	if !ok {
		dict = dictionaries[English]
	}
	if text, ok := dict[key]; ok {
		return text
	}
	return key
}
