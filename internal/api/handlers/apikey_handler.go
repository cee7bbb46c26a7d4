package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"keyportal/internal/api/middleware"
	"keyportal/internal/engine/dashboard"
	"keyportal/internal/pkg/errors"
)

type APIKeyHandler struct{}

func NewAPIKeyHandler() *APIKeyHandler {
	return &APIKeyHandler{}
}

// keyResponse never carries the raw key unless the panel is revealed.
type keyResponse struct {
	ID           string     `json:"id"`
	Display      string     `json:"display"`
	Revealed     bool       `json:"revealed"`
	Regenerating bool       `json:"regenerating"`
	Created      time.Time  `json:"created"`
	LastUsed     *time.Time `json:"lastUsed"`
	Requests     int64      `json:"requests"`
	Status       string     `json:"status"`
}

func newKeyResponse(panel *dashboard.KeyPanel) keyResponse {
	record := panel.Record()
	return keyResponse{
		ID:           record.ID,
		Display:      panel.Display(),
		Revealed:     panel.Revealed(),
		Regenerating: panel.Regenerating(),
		Created:      record.Created,
		LastUsed:     record.LastUsed,
		Requests:     record.Requests,
		Status:       string(record.Status),
	}
}

func (h *APIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, newKeyResponse(middleware.StateFrom(r).Dashboard()))
}

func (h *APIKeyHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	panel := middleware.StateFrom(r).Dashboard()
	if _, err := panel.Regenerate(r.Context()); err != nil {
		writeKeyError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, newKeyResponse(panel))
}

func (h *APIKeyHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	panel := middleware.StateFrom(r).Dashboard()
	if err := panel.Reveal(); err != nil {
		writeKeyError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, newKeyResponse(panel))
}

func (h *APIKeyHandler) Mask(w http.ResponseWriter, r *http.Request) {
	panel := middleware.StateFrom(r).Dashboard()
	panel.Mask()
	errors.WriteJSON(w, http.StatusOK, newKeyResponse(panel))
}

// responseClipboard hands the copied text back to the client, which owns
// the real clipboard.
type responseClipboard struct {
	text string
}

func (c *responseClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func (h *APIKeyHandler) Copy(w http.ResponseWriter, r *http.Request) {
	clip := &responseClipboard{}
	if err := middleware.StateFrom(r).Dashboard().Copy(clip); err != nil {
		writeKeyError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, map[string]string{"text": clip.text})
}

func writeKeyError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, dashboard.ErrSignInRequired):
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeSignInRequired, "Sign in to continue", nil)
	case stderrors.Is(err, dashboard.ErrBusy):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeBusy, "A regeneration is already in progress", nil)
	default:
		log.Error().Err(err).Msg("api key operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "API key operation failed", nil)
	}
}
