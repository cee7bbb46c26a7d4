package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"keyportal/internal/api/middleware"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/engine/dashboard"
	"keyportal/internal/pkg/errors"
	"keyportal/internal/pkg/i18n"
)

// PageHandler serves the view models the three pages render from, with
// labels already translated into the origin's language.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type signInOption struct {
	Provider string `json:"provider"`
	Label    string `json:"label"`
	Path     string `json:"path"`
}

type landingView struct {
	Language      i18n.Locale       `json:"language"`
	Labels        map[string]string `json:"labels"`
	SignInOptions []signInOption    `json:"signInOptions"`
}

type dashboardView struct {
	Language i18n.Locale         `json:"language"`
	SignedIn bool                `json:"signedIn"`
	Name     string              `json:"name,omitempty"`
	Labels   map[string]string   `json:"labels"`
	APIKey   keyResponse         `json:"apiKey"`
	Examples []dashboard.Example `json:"examples"`
}

type profileView struct {
	Language      i18n.Locale       `json:"language"`
	Labels        map[string]string `json:"labels"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Avatar        string            `json:"avatar,omitempty"`
	UserID        string            `json:"userId"`
	APIKey        string            `json:"apiKey"`
	Provider      string            `json:"provider"`
	ProviderLabel string            `json:"providerLabel"`
}

var (
	landingLabels = []string{
		"landing.title", "landing.subtitle", "landing.getStarted", "landing.login",
		"landing.getapikey", "landing.tryit", "landing.logindetails",
		"landing.getapikeydetails", "landing.tryitdetails", "landing.welcome",
		"landing.chooseSignIn", "landing.continueWithEmail", "landing.emailAddress",
		"landing.password", "landing.enterEmail", "landing.enterPassword",
		"landing.signingIn", "nav.signIn",
	}
	dashboardLabels = []string{
		"dashboard.welcomeBack", "dashboard.subtitle", "dashboard.totalRequests",
		"dashboard.status", "dashboard.active", "dashboard.lastUsed", "dashboard.never",
		"dashboard.yourApiKey", "dashboard.regenerate", "dashboard.regenerating",
		"dashboard.created", "dashboard.requests", "dashboard.important",
		"dashboard.securityNote", "dashboard.quickStart", "dashboard.step1",
		"dashboard.step1Desc", "dashboard.step2", "dashboard.step2Desc",
		"dashboard.step3", "dashboard.step3Desc", "nav.profile", "nav.logout",
		"nav.documentation",
	}
	profileLabels = []string{
		"profile.accountInfo", "profile.emailAddress", "profile.verified",
		"profile.uid", "profile.apitoken", "profile.authMethod", "profile.signIn",
		"nav.logout",
	}
)

func labels(selector *i18n.Selector, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = selector.T(key)
	}
	return out
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	lang := middleware.StateFrom(r).Language

	errors.WriteJSON(w, http.StatusOK, landingView{
		Language: lang.Locale(),
		Labels:   labels(lang, landingLabels),
		SignInOptions: []signInOption{
			{Provider: "google", Label: lang.T("landing.continueWithGoogle"), Path: "/api/v1/session/google"},
			{Provider: "line", Label: lang.T("landing.continueWithLine"), Path: "/api/v1/session/line"},
			{Provider: "email", Label: lang.T("landing.continueWithEmail"), Path: "/api/v1/session/email"},
		},
	})
}

// Dashboard renders signed out too, with a placeholder key in the examples.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := middleware.StateFrom(r)
	panel := state.Dashboard()

	examples, err := panel.CodeExamples()
	if err != nil {
		log.Error().Err(err).Msg("failed to render code examples")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to render dashboard", nil)
		return
	}

	identity, signedIn := state.Session.Current()
	errors.WriteJSON(w, http.StatusOK, dashboardView{
		Language: state.Language.Locale(),
		SignedIn: signedIn,
		Name:     identity.Name,
		Labels:   labels(state.Language, dashboardLabels),
		APIKey:   newKeyResponse(panel),
		Examples: examples,
	})
}

// profileMaskRun is shorter than the dashboard's mask.
const profileMaskRun = 12

func profileAPIKey(key string, lang *i18n.Selector) string {
	if key == "" {
		return lang.T("profile.noApiKey")
	}
	return credentials.MaskWith(key, profileMaskRun)
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	state := middleware.StateFrom(r)
	identity, ok := state.Session.Current()
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeSignInRequired, "Sign in to continue", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, profileView{
		Language:      state.Language.Locale(),
		Labels:        labels(state.Language, profileLabels),
		Name:          identity.Name,
		Email:         identity.Email,
		Avatar:        identity.Avatar,
		UserID:        identity.UserID,
		APIKey:        profileAPIKey(identity.APIKey, state.Language),
		Provider:      string(identity.Provider),
		ProviderLabel: string(identity.Provider) + " " + state.Language.T("profile.signIn"),
	})
}
