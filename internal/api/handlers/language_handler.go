package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	apiContext "keyportal/internal/api/context"
	"keyportal/internal/api/middleware"
	"keyportal/internal/pkg/errors"
	"keyportal/internal/pkg/i18n"
)

type LanguageHandler struct{}

func NewLanguageHandler() *LanguageHandler {
	return &LanguageHandler{}
}

type languageResponse struct {
	Language  i18n.Locale   `json:"language"`
	Supported []i18n.Locale `json:"supported"`
}

func (h *LanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, languageResponse{
		Language:  middleware.StateFrom(r).Language.Locale(),
		Supported: i18n.Supported(),
	})
}

func (h *LanguageHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	locale, ok := i18n.ParseLocale(req.Language)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unsupported language",
			map[string]interface{}{"supported": i18n.Supported()})
		return
	}

	selector := middleware.StateFrom(r).Language
	if err := selector.SetLocale(locale); err != nil {
		log.Error().Err(err).Str("language", string(locale)).Msg("failed to store language")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store language", nil)
		return
	}
	errors.WriteJSON(w, http.StatusOK, languageResponse{Language: selector.Locale(), Supported: i18n.Supported()})
}

// Translate looks key up in the origin's language, or in the language
// named by the locale query parameter.
func (h *LanguageHandler) Translate(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	key := params.ByName("key")

	locale := middleware.StateFrom(r).Language.Locale()
	if q := r.URL.Query().Get("locale"); q != "" {
		parsed, ok := i18n.ParseLocale(q)
		if !ok {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unsupported language", nil)
			return
		}
		locale = parsed
	}

	errors.WriteJSON(w, http.StatusOK, map[string]string{
		"key":      key,
		"language": string(locale),
		"text":     i18n.Translate(locale, key),
	})
}
