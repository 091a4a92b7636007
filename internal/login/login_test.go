package login

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store/memory"
)

type testDeps struct {
	sessions *memory.SessionStore
	profiles *memory.ProfileStore
	cookies  *auth.CookieSessions
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()

	sessions := memory.NewSessionStore()
	cookies, err := auth.NewCookieSessions(sessions, []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	return testDeps{
		sessions: sessions,
		profiles: memory.NewProfileStore(),
		cookies:  cookies,
	}
}

func newTestGithub(t *testing.T, deps testDeps) *Github {
	t.Helper()

	gh, err := NewGithub("test-client-id", "test-client-secret", "http://localhost/callback", deps.sessions, deps.cookies, deps.profiles, 24*time.Hour)
	require.NoError(t, err)
	return gh
}

// createTestSession writes a session and returns the signed cookie for it.
func createTestSession(t *testing.T, deps testDeps, email string) (*http.Cookie, *models.Session) {
	t.Helper()

	now := time.Now()
	session := &models.Session{
		SessionID:   uuid.Must(uuid.NewV7()),
		PrincipalID: PrincipalID(email),
		Email:       email,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
		LastUsedAt:  now,
	}
	require.NoError(t, deps.sessions.Create(context.Background(), session))

	rec := httptest.NewRecorder()
	deps.cookies.IssueCookie(rec, session)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0], session
}

func TestNewGithub(t *testing.T) {
	deps := newTestDeps(t)
	gh := newTestGithub(t, deps)

	require.NotNil(t, gh.config)
	require.Equal(t, "test-client-id", gh.config.ClientID)
	require.Equal(t, "test-client-secret", gh.config.ClientSecret)
	require.Equal(t, "http://localhost/callback", gh.config.RedirectURL)
	require.Equal(t, []string{"user:email"}, gh.config.Scopes)
	require.Equal(t, 24*time.Hour, gh.sessionTTL)
}

func TestNewGithub_missingCredentials(t *testing.T) {
	deps := newTestDeps(t)

	_, err := NewGithub("", "secret", "http://localhost/callback", deps.sessions, deps.cookies, deps.profiles, 24*time.Hour)
	require.Error(t, err)
	require.Contains(t, err.Error(), "client ID")
}

func TestNewGithub_invalidTTL(t *testing.T) {
	deps := newTestDeps(t)

	_, err := NewGithub("id", "secret", "http://localhost/callback", deps.sessions, deps.cookies, deps.profiles, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "TTL")
}

func TestPrincipalID_deterministic(t *testing.T) {
	a := PrincipalID("alice@example.com")
	b := PrincipalID("alice@example.com")
	c := PrincipalID("bob@example.com")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestGithub_saveState(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	state := gh.saveState(w, r)

	require.NotEmpty(t, state)
	require.Greater(t, len(state), 10)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	require.Equal(t, "state", cookie.Name)
	require.Equal(t, state, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
}

func TestGithub_saveState_randomness(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	states := make(map[string]bool)
	for range 10 {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		states[gh.saveState(w, r)] = true
	}

	// All states should be unique
	require.Len(t, states, 10)
}

func TestGithub_LoginHandler(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/login", nil)

	gh.LoginHandler(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	require.Contains(t, location, "github.com/login/oauth/authorize")
	require.Contains(t, location, "client_id=test-client-id")
	require.Contains(t, location, "scope=user%3Aemail")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "state", cookies[0].Name)
}

func TestGithub_CallbackHandler_invalidRequest(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	tests := []struct {
		name  string
		state string
		code  string
	}{
		{"missing state", "", "some-code"},
		{"missing code", "some-state", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+tt.state+"&code="+tt.code, nil)

			gh.CallbackHandler(w, r)

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, w.Body.String(), "Authentication failed")
		})
	}
}

func TestGithub_CallbackHandler_missingStateCookie(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=some-state&code=some-code", nil)

	gh.CallbackHandler(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Authentication failed")
}

func TestGithub_CallbackHandler_stateMismatch(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=wrong-state&code=some-code", nil)
	r.AddCookie(&http.Cookie{
		Name:  "state",
		Value: "correct-state",
	})

	gh.CallbackHandler(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Authentication failed")
}

func TestGithub_createSession_auditFields(t *testing.T) {
	deps := newTestDeps(t)
	gh := newTestGithub(t, deps)

	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	r.Header.Set("User-Agent", "test-agent/1.0")

	session, err := gh.createSession(r, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, PrincipalID("alice@example.com"), session.PrincipalID)
	require.Equal(t, "alice@example.com", session.Email)
	require.Equal(t, "test-agent/1.0", session.UserAgent)
	require.True(t, session.ExpiresAt.After(time.Now()))

	stored, err := deps.sessions.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, session.PrincipalID, stored.PrincipalID)
}

func TestGithub_postLoginTarget(t *testing.T) {
	deps := newTestDeps(t)
	gh := newTestGithub(t, deps)

	_, session := createTestSession(t, deps, "alice@example.com")

	// No profile yet: onboarding
	require.Equal(t, onboardingURL, gh.postLoginTarget(context.Background(), session))

	// Workspace-bound profile: dashboard
	workspaceID := uuid.Must(uuid.NewV7())
	require.NoError(t, deps.profiles.Create(context.Background(), &models.Profile{
		ProfileID:   uuid.Must(uuid.NewV7()),
		PrincipalID: session.PrincipalID,
		WorkspaceID: &workspaceID,
		Username:    "alice",
		Email:       session.Email,
		Role:        models.RoleMember,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}))

	require.Equal(t, dashboardURL, gh.postLoginTarget(context.Background(), session))
}

func TestGithub_LogoutHandler(t *testing.T) {
	deps := newTestDeps(t)
	gh := newTestGithub(t, deps)

	cookie, session := createTestSession(t, deps, "alice@example.com")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(cookie)

	gh.LogoutHandler(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "_session", cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Equal(t, -1, cookies[0].MaxAge)

	_, err := deps.sessions.Get(context.Background(), session.SessionID)
	require.Error(t, err)
}

func TestGithub_LogoutHandler_noSession(t *testing.T) {
	gh := newTestGithub(t, newTestDeps(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)

	gh.LogoutHandler(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "_session", cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)
}
