package server

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventos-web/internal/config"
	"eventos-web/internal/middleware"
	"eventos-web/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers the handful of backend endpoints the flow below uses
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/attender/login":
			w.Write([]byte(`{"id":"att-1","jwtoken":"tok-1"}`))
		case "/attender/validate":
			w.Write([]byte(`{"id":"att-1"}`))
		case "/event/get_all":
			w.Write([]byte(`[]`))
		case "/purchase_ticket/attender":
			assert.Equal(t, "att-1", r.URL.Query().Get("id"))
			w.Write([]byte(`[]`))
		case "/payphone_transaction/pending/by_attender/att-1":
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Env: "development"},
		Backend: config.BackendConfig{URL: backendURL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			Secret:   "0123456789abcdef0123456789abcdef",
			Name:     "eventos_state",
			StateTTL: time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

// newTestSite serves the full router over a cookie-backed state provider
func newTestSite(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	cfg := testConfig(fakeBackend(t).URL)
	limiter := middleware.NewLoginRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Close)

	router := NewRouter(RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Provider:       storage.NewCookieProvider(newSessionStore(cfg), cfg.Session.Name),
		LoginLimiter:   limiter,
	}, NewServices(cfg))

	site := httptest.NewServer(router)
	t.Cleanup(site.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return site, &http.Client{Jar: jar}
}

func doRequest(t *testing.T, client *http.Client, method, url, csrf, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrf != "" {
		req.Header.Set(middleware.CSRFHeader, csrf)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Health(t *testing.T) {
	site, client := newTestSite(t)

	resp := doRequest(t, client, http.MethodGet, site.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	site, client := newTestSite(t)

	resp := doRequest(t, client, http.MethodGet, site.URL+"/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_PrivateRoutesRequireSession(t *testing.T) {
	site, client := newTestSite(t)

	resp := doRequest(t, client, http.MethodGet, site.URL+"/api/my-tickets", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/login", body.Redirect)
}

func TestRouter_RejectsPostWithoutCSRFToken(t *testing.T) {
	site, client := newTestSite(t)

	resp := doRequest(t, client, http.MethodPost, site.URL+"/api/auth/attender/login", "", `{"email":"ana@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_SignInAndOut(t *testing.T) {
	site, client := newTestSite(t)

	// The first visit issues the CSRF token
	resp := doRequest(t, client, http.MethodGet, site.URL+"/api/auth/session", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	csrf := resp.Header.Get(middleware.CSRFHeader)
	require.NotEmpty(t, csrf)

	var session struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.False(t, session.Authenticated)

	resp = doRequest(t, client, http.MethodPost, site.URL+"/api/auth/attender/login", csrf, `{"email":"ana@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, client, http.MethodGet, site.URL+"/api/auth/session", "", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.True(t, session.Authenticated)

	resp = doRequest(t, client, http.MethodGet, site.URL+"/api/my-tickets", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, client, http.MethodPost, site.URL+"/api/auth/logout", csrf, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, client, http.MethodGet, site.URL+"/api/my-tickets", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ViewModeToggle(t *testing.T) {
	site, client := newTestSite(t)

	resp := doRequest(t, client, http.MethodGet, site.URL+"/api/preferences/view", "", "")
	csrf := resp.Header.Get(middleware.CSRFHeader)

	var mode struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mode))
	assert.Equal(t, storage.ViewModeGallery, mode.Mode)

	resp = doRequest(t, client, http.MethodPost, site.URL+"/api/preferences/view/toggle", csrf, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mode))
	assert.Equal(t, storage.ViewModeList, mode.Mode)

	resp = doRequest(t, client, http.MethodGet, site.URL+"/api/preferences/view", "", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mode))
	assert.Equal(t, storage.ViewModeList, mode.Mode)
}
