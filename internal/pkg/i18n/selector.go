package i18n

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// PreferenceStore persists the chosen language code.
type PreferenceStore interface {
	Language() (code string, found bool, err error)
	SetLanguage(code string) error
}

// Selector is one origin's current language.
type Selector struct {
	store PreferenceStore

	mu     sync.RWMutex
	locale Locale
}

// NewSelector starts from the stored language, or fallback when nothing
// valid is stored.
func NewSelector(store PreferenceStore, fallback Locale) *Selector {
	s := &Selector{store: store, locale: fallback}

	code, found, err := store.Language()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read language preference")
		return s
	}
	if locale, ok := ParseLocale(code); found && ok {
		s.locale = locale
	}
	return s
}

func (s *Selector) Locale() Locale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

func (s *Selector) SetLocale(locale Locale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetLanguage(string(locale)); err != nil {
		return err
	}
	s.locale = locale
	return nil
}

// T translates key in the current language.
func (s *Selector) T(key string) string {
	return Translate(s.Locale(), key)
}
