package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"keyportal/internal/api/middleware"
	"keyportal/internal/engine/session"
	"keyportal/internal/pkg/errors"
	"keyportal/internal/pkg/validator"
	"keyportal/internal/platform/models"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionResponse struct {
	State    string           `json:"state"`
	Identity *models.Identity `json:"identity,omitempty"`
}

func writeSession(w http.ResponseWriter, status int, s *session.Store) {
	resp := sessionResponse{State: s.State().String()}
	if identity, ok := s.Current(); ok {
		resp.Identity = &identity
	}
	errors.WriteJSON(w, status, resp)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeSession(w, http.StatusOK, middleware.StateFrom(r).Session)
}

func (h *SessionHandler) SignInEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Email(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	s := middleware.StateFrom(r).Session
	if _, err := s.SignInEmail(r.Context(), req.Email, req.Password); err != nil {
		writeSessionError(w, err)
		return
	}
	writeSession(w, http.StatusCreated, s)
}

func (h *SessionHandler) SignInGoogle(w http.ResponseWriter, r *http.Request) {
	s := middleware.StateFrom(r).Session
	if _, err := s.SignInGoogle(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeSession(w, http.StatusCreated, s)
}

func (h *SessionHandler) SignInLine(w http.ResponseWriter, r *http.Request) {
	s := middleware.StateFrom(r).Session
	if _, err := s.SignInLine(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeSession(w, http.StatusCreated, s)
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	s := middleware.StateFrom(r).Session
	if err := s.SignOut(); err != nil {
		log.Error().Err(err).Msg("sign out failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to sign out", nil)
		return
	}
	writeSession(w, http.StatusOK, s)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, session.ErrBusy):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeBusy, "A sign-in is already in progress", nil)
	case stderrors.Is(err, session.ErrAlreadySignedIn):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeAlreadySigned, "Already signed in", nil)
	case stderrors.Is(err, session.ErrInterrupted):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeInterrupted, "Signed out before sign-in completed", nil)
	case stderrors.Is(err, session.ErrNotAuthenticated):
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeSignInRequired, "Sign in to continue", nil)
	default:
		log.Error().Err(err).Msg("session operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Session operation failed", nil)
	}
}
