package repositories

import "keyportal/internal/platform/storage"

const languageKey = "language"

// PreferenceRepository holds UI preferences that live independently of
// the signed-in identity.
type PreferenceRepository struct {
	kv storage.KV
}

func NewPreferenceRepository(kv storage.KV) *PreferenceRepository {
	return &PreferenceRepository{kv: kv}
}

func (r *PreferenceRepository) Language() (string, bool, error) {
	return r.kv.Get(languageKey)
}

func (r *PreferenceRepository) SetLanguage(code string) error {
	return r.kv.Set(languageKey, code)
}
