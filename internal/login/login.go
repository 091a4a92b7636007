package login

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/teamspace-io/teamspace/internal/auth"
	httpx "github.com/teamspace-io/teamspace/internal/http"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

const (
	signInURL     = "/"
	onboardingURL = "/onboarding"
	dashboardURL  = "/dashboard"
)

// principalNamespace makes principal IDs a pure function of the
// IdP-verified email, so repeated logins resolve to the same principal.
var principalNamespace = uuid.MustParse("3c7a5f6e-9d42-4b8a-a1e0-52b60c6e2f11")

// PrincipalID derives the stable principal ID for an email address.
func PrincipalID(email string) uuid.UUID {
	return uuid.NewSHA1(principalNamespace, []byte(email))
}

// Github drives the GitHub OAuth flow. A successful callback creates a
// server-side session and sets the signed session cookie; everything after
// that goes through the session resolver.
type Github struct {
	config     *oauth2.Config
	sessions   store.SessionStore
	cookies    *auth.CookieSessions
	profiles   store.ProfileStore
	sessionTTL time.Duration
}

func NewGithub(clientID, clientSecret, callbackURL string, sessions store.SessionStore, cookies *auth.CookieSessions, profiles store.ProfileStore, sessionTTL time.Duration) (*Github, error) {
	if clientID == "" || clientSecret == "" || callbackURL == "" {
		return nil, fmt.Errorf("client ID, client secret, and callback URL are required")
	}

	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}

	return &Github{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		sessions:   sessions,
		cookies:    cookies,
		profiles:   profiles,
		sessionTTL: sessionTTL,
	}, nil
}

func (g *Github) saveState(w http.ResponseWriter, r *http.Request) string {
	// generate random state
	state := rand.Text()

	cookie := &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes - enough time for OAuth flow
	}
	http.SetCookie(w, cookie)

	return state
}

func (g *Github) LoginHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug().Msg("Initiating GitHub OAuth flow")

	state := g.saveState(w, r)

	// redirect to github
	http.Redirect(w, r, g.config.AuthCodeURL(state), http.StatusFound)
}

func (g *Github) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug().Msg("OAuth callback received")

	state := r.FormValue("state")
	code := r.FormValue("code")

	if state == "" || code == "" {
		log.Warn().Msg("OAuth callback missing state or code")
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie("state")
	if err != nil {
		log.Warn().Err(err).Msg("OAuth callback missing state cookie")
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	if state != cookie.Value {
		log.Warn().Msg("OAuth callback state mismatch")
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	log.Debug().Msg("OAuth state validated successfully")

	// Clear the state cookie after validation
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	// exchange code for token
	token, err := g.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to exchange OAuth code for token")
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	log.Debug().Msg("OAuth token exchange successful")

	// get user info
	userInfo, err := g.getUserInfo(r.Context(), token)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch user info from GitHub")
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	// Verify we got an email
	if userInfo.Email == "" {
		log.Warn().Msg("GitHub user info missing email address")
		http.Error(w, "Email address required", http.StatusBadRequest)
		return
	}

	log.Info().Str("user", userInfo.Email).Msg("User authenticated successfully")

	session, err := g.createSession(r, userInfo.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	g.cookies.IssueCookie(w, session)

	telemetry.GetMetrics().SessionsIssuedTotal.Add(r.Context(), 1)

	http.Redirect(w, r, g.postLoginTarget(r.Context(), session), http.StatusFound)
}

// createSession writes the server-side session record, including the audit
// fields from the request.
func (g *Github) createSession(r *http.Request, email string) (*models.Session, error) {
	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		SessionID:   sessionID,
		PrincipalID: PrincipalID(email),
		Email:       email,
		CreatedAt:   now,
		ExpiresAt:   now.Add(g.sessionTTL),
		LastUsedAt:  now,
		UserAgent:   r.UserAgent(),
		IPAddress:   httpx.ClientIPFromContext(r.Context()),
	}

	if err := g.sessions.Create(r.Context(), session); err != nil {
		return nil, err
	}

	return session, nil
}

// postLoginTarget decides where the browser lands after the callback. A
// principal without a workspace-bound profile goes to onboarding, everyone
// else to the dashboard.
func (g *Github) postLoginTarget(ctx context.Context, session *models.Session) string {
	principal := &auth.Principal{PrincipalID: session.PrincipalID, Email: session.Email}

	profile, err := g.profiles.GetByPrincipal(ctx, session.PrincipalID, nil)
	if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		log.Warn().Err(err).Msg("Post-login profile lookup failed")
	}

	machine := auth.NewStateMachine()
	machine.Resolve(principal, profile)

	if target, ok := machine.RedirectTarget(signInURL, onboardingURL); ok {
		return target
	}
	return dashboardURL
}

// LogoutHandler deletes the server-side session and clears the cookie. An
// already-invalid session still clears the cookie and redirects.
func (g *Github) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := g.cookies.DeleteSession(r); err != nil {
		log.Debug().Err(err).Msg("Logout with no valid session")
	}

	g.cookies.ClearCookie(w)
	http.Redirect(w, r, signInURL, http.StatusFound)
}

func (g *Github) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

func (g *Github) getUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	// Add timeout to prevent hanging on slow GitHub API
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := g.config.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	// Validate HTTP status code
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned HTTP %d", resp.StatusCode)
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	// If email is not available from /user endpoint, fetch from /user/emails
	if userInfo.Email == "" {
		emails, err := g.getUserEmails(ctx, token)
		if err != nil {
			return nil, err
		}
		// Get the primary email
		for _, email := range emails {
			if email.Primary {
				userInfo.Email = email.Email
				break
			}
		}
	}

	return &userInfo, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *Github) getUserEmails(ctx context.Context, token *oauth2.Token) ([]githubEmail, error) {
	// Add timeout to prevent hanging on slow GitHub API
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := g.config.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user/emails")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user emails: %w", err)
	}
	defer resp.Body.Close()

	// Validate HTTP status code
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned HTTP %d for emails endpoint", resp.StatusCode)
	}

	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return nil, fmt.Errorf("failed to decode user emails: %w", err)
	}

	return emails, nil
}

type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
