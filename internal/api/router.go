package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "keyportal/internal/api/context"
	"keyportal/internal/api/handlers"
	"keyportal/internal/api/middleware"
)

type Dependencies struct {
	PageHandler      *handlers.PageHandler
	SessionHandler   *handlers.SessionHandler
	APIKeyHandler    *handlers.APIKeyHandler
	LanguageHandler  *handlers.LanguageHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	OriginMiddleware *middleware.OriginMiddleware
	MetricsPath      string
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	origin := deps.OriginMiddleware.Handle

	// Pages
	router.GET("/", chain(deps.PageHandler.Landing, origin, middleware.RedirectSignedIn("/dashboard")))
	router.GET("/dashboard", chain(deps.PageHandler.Dashboard, origin))
	router.GET("/profile", chain(deps.PageHandler.Profile, origin, middleware.RedirectSignedOut("/")))

	// Session
	router.GET("/api/v1/session", chain(deps.SessionHandler.Get, origin))
	router.POST("/api/v1/session/email", chain(deps.SessionHandler.SignInEmail, origin))
	router.POST("/api/v1/session/google", chain(deps.SessionHandler.SignInGoogle, origin))
	router.POST("/api/v1/session/line", chain(deps.SessionHandler.SignInLine, origin))
	router.DELETE("/api/v1/session", chain(deps.SessionHandler.SignOut, origin))

	// API key
	router.GET("/api/v1/apikey", chain(deps.APIKeyHandler.Get, origin))
	router.POST("/api/v1/apikey/regenerate",
		chain(deps.APIKeyHandler.Regenerate, origin, middleware.RequireSignIn))
	router.POST("/api/v1/apikey/reveal",
		chain(deps.APIKeyHandler.Reveal, origin, middleware.RequireSignIn))
	router.POST("/api/v1/apikey/mask", chain(deps.APIKeyHandler.Mask, origin))
	router.POST("/api/v1/apikey/copy",
		chain(deps.APIKeyHandler.Copy, origin, middleware.RequireSignIn))

	// Language
	router.GET("/api/v1/language", chain(deps.LanguageHandler.Get, origin))
	router.PUT("/api/v1/language", chain(deps.LanguageHandler.Set, origin))
	router.GET("/api/v1/translations/:key", chain(deps.LanguageHandler.Translate, origin))

	// Operations
	router.GET("/health", wrap(deps.HealthHandler.Check))
	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, wrap(deps.MetricsHandler.Export))
	}

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
