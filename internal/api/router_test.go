package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"keyportal/internal/api/handlers"
	"keyportal/internal/api/middleware"
	"keyportal/internal/app"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/pkg/metrics"
	"keyportal/internal/platform/config"
	"keyportal/internal/platform/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	registry, err := app.NewRegistry(storage.NewMemoryBackend(), app.Options{
		Issuer:  credentials.NewMockIssuer(),
		Metrics: metrics.NewCollector(reg),
	})
	require.NoError(t, err)
	t.Cleanup(registry.CloseAll)

	return NewRouter(&Dependencies{
		PageHandler:      handlers.NewPageHandler(),
		SessionHandler:   handlers.NewSessionHandler(),
		APIKeyHandler:    handlers.NewAPIKeyHandler(),
		LanguageHandler:  handlers.NewLanguageHandler(),
		HealthHandler:    handlers.NewHealthHandler(nil),
		MetricsHandler:   handlers.NewMetricsHandler(reg),
		OriginMiddleware: middleware.NewOriginMiddleware(registry, config.SessionConfig{CookieName: "origin", CookieMaxAge: time.Hour}),
	})
}

// client replays the origin cookie it was issued, like a browser tab.
type client struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "origin" {
			c.cookie = cookie
		}
	}
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestRouter_SignInFlow(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	rr := c.do("GET", "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, c.cookie, "landing should issue an origin cookie")
	landing := decode(t, rr)
	assert.Equal(t, "en", landing["language"])
	assert.Len(t, landing["signInOptions"], 3)

	rr = c.do("GET", "/profile", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = c.do("POST", "/api/v1/session/email", `{"email":"jane@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sess := decode(t, rr)
	assert.Equal(t, "authenticated", sess["state"])
	identity := sess["identity"].(map[string]interface{})
	assert.Equal(t, "jane", identity["name"])
	assert.Equal(t, "email", identity["provider"])
	apiKey := identity["apiKey"].(string)

	rr = c.do("GET", "/", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = c.do("POST", "/api/v1/session/google", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "ALREADY_SIGNED_IN", decode(t, rr)["code"])

	rr = c.do("GET", "/profile", "")
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode(t, rr)
	assert.Equal(t, credentials.MaskWith(apiKey, 12), profile["apiKey"])
	assert.Equal(t, "email Sign-in", profile["providerLabel"])

	rr = c.do("DELETE", "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unauthenticated", decode(t, rr)["state"])

	rr = c.do("DELETE", "/api/v1/session", "")
	assert.Equal(t, http.StatusOK, rr.Code, "sign out is idempotent")
}

func TestRouter_SignInBadRequest(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	rr := c.do("POST", "/api/v1/session/email", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, rr)["code"])

	rr = c.do("POST", "/api/v1/session/email", `{"password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do("POST", "/api/v1/session/email", `{"email":"jane","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do("GET", "/api/v1/session", "")
	assert.Equal(t, "unauthenticated", decode(t, rr)["state"])
}

func TestRouter_APIKeyLifecycle(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	rr := c.do("POST", "/api/v1/apikey/regenerate", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "SIGN_IN_REQUIRED", decode(t, rr)["code"])

	rr = c.do("GET", "/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode(t, rr)
	assert.Equal(t, false, view["signedIn"])
	examples := view["examples"].([]interface{})
	require.Len(t, examples, 3)
	assert.Contains(t, examples[0].(map[string]interface{})["body"], "YOUR_API_KEY")

	rr = c.do("POST", "/api/v1/session/line", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	key := decode(t, rr)["identity"].(map[string]interface{})["apiKey"].(string)

	rr = c.do("GET", "/api/v1/apikey", "")
	require.Equal(t, http.StatusOK, rr.Code)
	record := decode(t, rr)
	assert.Equal(t, credentials.Mask(key), record["display"])
	assert.Equal(t, false, record["revealed"])
	assert.Equal(t, float64(1247), record["requests"])

	rr = c.do("POST", "/api/v1/apikey/copy", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, key, decode(t, rr)["text"])

	rr = c.do("POST", "/api/v1/apikey/reveal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, key, decode(t, rr)["display"])

	rr = c.do("POST", "/api/v1/apikey/mask", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, credentials.Mask(key), decode(t, rr)["display"])

	rr = c.do("POST", "/api/v1/apikey/regenerate", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	regenerated := decode(t, rr)
	newKey := regenerated["display"].(string)
	assert.NotEqual(t, key, newKey)
	assert.Equal(t, true, regenerated["revealed"])
	assert.Equal(t, float64(0), regenerated["requests"])

	rr = c.do("GET", "/api/v1/session", "")
	assert.Equal(t, newKey, decode(t, rr)["identity"].(map[string]interface{})["apiKey"])
}

func TestRouter_Language(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	rr := c.do("GET", "/api/v1/language", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "en", decode(t, rr)["language"])

	rr = c.do("PUT", "/api/v1/language", `{"language":"fr"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do("PUT", "/api/v1/language", `{"language":"th"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "th", decode(t, rr)["language"])

	rr = c.do("GET", "/api/v1/translations/nav.signIn", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "เข้าสู่ระบบ", decode(t, rr)["text"])

	rr = c.do("GET", "/api/v1/translations/nav.signIn?locale=en", "")
	assert.Equal(t, "Sign In", decode(t, rr)["text"])

	rr = c.do("GET", "/api/v1/translations/no.such.key", "")
	assert.Equal(t, "no.such.key", decode(t, rr)["text"])

	rr = c.do("GET", "/api/v1/translations/nav.signIn?locale=xx", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_OriginsAreIsolated(t *testing.T) {
	router := newTestRouter(t)
	a := &client{t: t, router: router}
	b := &client{t: t, router: router}

	rr := a.do("POST", "/api/v1/session/google", "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = b.do("GET", "/api/v1/session", "")
	assert.Equal(t, "unauthenticated", decode(t, rr)["state"])
}

func TestRouter_Operations(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	rr := c.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode(t, rr)["status"])
	assert.Nil(t, c.cookie, "health checks do not mint origins")

	c.do("POST", "/api/v1/session/google", "")

	rr = c.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `keyportal_sign_ins_total{provider="google"} 1`)
}
