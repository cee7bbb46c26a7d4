package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	apiContext "keyportal/internal/api/context"
	"keyportal/internal/app"
	"keyportal/internal/platform/config"
)

// OriginMiddleware gives every client a stable origin ID in a cookie and
// resolves that origin's State for the handlers behind it.
type OriginMiddleware struct {
	registry *app.Registry
	cfg      config.SessionConfig
}

func NewOriginMiddleware(registry *app.Registry, cfg config.SessionConfig) *OriginMiddleware {
	return &OriginMiddleware{registry: registry, cfg: cfg}
}

func (m *OriginMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := ""
		minted := false
		if cookie, err := r.Cookie(m.cfg.CookieName); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				origin = id.String()
			}
		}

		if origin == "" {
			origin = uuid.NewString()
			minted = true
			http.SetCookie(w, &http.Cookie{
				Name:     m.cfg.CookieName,
				Value:    origin,
				Path:     "/",
				MaxAge:   int(m.cfg.CookieMaxAge / time.Second),
				HttpOnly: true,
				Secure:   m.cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		// A fresh origin is only registered once the client sends its
		// cookie back.
		var state *app.State
		if minted {
			state = m.registry.Detached(origin)
		} else {
			state = m.registry.Get(origin)
		}

		ctx := context.WithValue(r.Context(), apiContext.State, state)
		next(w, r.WithContext(ctx))
	}
}

// StateFrom returns the State placed by OriginMiddleware.
func StateFrom(r *http.Request) *app.State {
	state, _ := r.Context().Value(apiContext.State).(*app.State)
	return state
}
