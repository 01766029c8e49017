// package auth owns the OAuth credential lifecycle: acquisition through the
// local redirect listener, persistent caching, and silent refresh before
// expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"vibes/internal/models"
	"vibes/internal/repositories"
	"vibes/internal/server"
	"vibes/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// refreshMargin is the safety margin subtracted from the token's true
	// expiry: EnsureFresh refreshes proactively, never reactively.
	refreshMargin = 60 * time.Second

	callbackTimeout = 2 * time.Minute

	refreshAttempts = 3
)

// scopes requested during authorization. Playback control, queueing, library,
// and playlist reads.
var scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-library-read",
	"user-library-modify",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-read-private",
}

// State enumerates the credential lifecycle states.
type State int

const (
	Unauthenticated State = iota
	Authorizing           // waiting for the local callback
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Authorizing:
		return "authorizing"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

// CredentialStore is the persistence boundary the manager writes through.
// Implemented by [repositories.CredentialRepository].
type CredentialStore interface {
	Get(key string) (*models.Credential, error)
	Set(key string, cred models.Credential) error
	Delete(key string) error
}

var _ CredentialStore = (*repositories.CredentialRepository)(nil)

// Manager guarantees every outgoing API call uses a non-expired token.
//
// It is called from gateway goroutines, so all credential access is guarded
// by a mutex; the store itself is local and fast, never a suspension point.
type Manager struct {
	config      *oauth2.Config
	store       CredentialStore
	logger      *log.Logger
	openBrowser func(string) error
	now         func() time.Time
	margin      time.Duration

	mu    sync.Mutex
	state State
	cred  *models.Credential
}

// NewManager creates a Manager for the given Spotify app credentials.
func NewManager(cfg shared.SpotifyConfig, store CredentialStore, logger *log.Logger) (*Manager, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id must be set", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:8989/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Manager{
		config:      config,
		store:       store,
		logger:      logger,
		openBrowser: shared.OpenBrowser,
		now:         time.Now,
		margin:      refreshMargin,
	}, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the in-memory credential, or nil when unauthenticated.
func (m *Manager) Current() *models.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	c := *m.cred
	return &c
}

// Acquire blocks until a valid credential exists, performing the
// browser-redirect flow only when no cached credential exists or it is
// irrecoverably invalid.
func (m *Manager) Acquire(ctx context.Context) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred == nil {
		cached, err := m.store.Get(repositories.CredentialKey)
		if err != nil {
			return models.Credential{}, fmt.Errorf("failed to read credential cache: %w", err)
		}
		if cached != nil {
			m.cred = cached
			m.state = Authenticated
			m.logger.Debug("loaded cached credential", "expires_at", cached.ExpiresAt)
		}
	}

	if m.cred != nil {
		if m.cred.Fresh(m.margin, m.now()) {
			return *m.cred, nil
		}

		if err := m.refreshLocked(ctx); err == nil {
			return *m.cred, nil
		} else if !errors.Is(err, shared.ErrAuthInvalid) {
			return models.Credential{}, err
		}

		// Irrecoverable: discard and fall through to the full flow.
		m.logger.Warn("cached credential rejected, re-authorizing")
		m.cred = nil
		m.state = Unauthenticated
		if err := m.store.Delete(repositories.CredentialKey); err != nil {
			m.logger.Warn("failed to clear credential cache", "error", err)
		}
	}

	if err := m.authorizeLocked(ctx); err != nil {
		return models.Credential{}, err
	}

	return *m.cred, nil
}

// EnsureFresh returns immediately when the credential is outside the safety
// margin; otherwise it performs exactly one refresh request and persists the
// result. An irrecoverably invalid credential is discarded and surfaced as
// [shared.ErrAuthInvalid]; the caller decides when to re-run Acquire.
func (m *Manager) EnsureFresh(ctx context.Context) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred == nil {
		return models.Credential{}, shared.ErrNotAuthenticated
	}

	if m.cred.Fresh(m.margin, m.now()) {
		return *m.cred, nil
	}

	if err := m.refreshLocked(ctx); err != nil {
		if errors.Is(err, shared.ErrAuthInvalid) {
			m.cred = nil
			m.state = Unauthenticated
			if derr := m.store.Delete(repositories.CredentialKey); derr != nil {
				m.logger.Warn("failed to clear credential cache", "error", derr)
			}
		}
		return models.Credential{}, err
	}

	return *m.cred, nil
}

// Token implements the gateway's token source: it returns a bearer token
// guaranteed to be outside the safety margin.
func (m *Manager) Token(ctx context.Context) (string, error) {
	cred, err := m.EnsureFresh(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Invalidate marks the access token expired so the next Token call forces a
// refresh. Called by the gateway after an authorization rejection.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred != nil {
		m.cred.ExpiresAt = time.Time{}
	}
}

// Logout discards the in-memory credential and removes it from the cache.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	m.state = Unauthenticated
	return m.store.Delete(repositories.CredentialKey)
}

// refreshLocked exchanges the refresh token for a new access token.
//
// Transient errors are retried with exponential backoff without discarding
// the credential; an authorization rejection from the token endpoint is
// surfaced as [shared.ErrAuthInvalid]. Callers hold m.mu.
func (m *Manager) refreshLocked(ctx context.Context) error {
	if m.cred.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token", shared.ErrAuthInvalid)
	}

	m.state = Refreshing

	var lastErr error
	for attempt := 0; attempt < refreshAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(500<<(attempt-1)) * time.Millisecond
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				m.state = Authenticated
				return ctx.Err()
			}
		}

		src := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: m.cred.RefreshToken})
		token, err := src.Token()
		if err == nil {
			m.adoptTokenLocked(token)
			m.logger.Debug("token refreshed", "expires_at", m.cred.ExpiresAt)
			return nil
		}

		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) && retrieve.Response != nil &&
			retrieve.Response.StatusCode >= 400 && retrieve.Response.StatusCode < 500 {
			m.state = Unauthenticated
			return fmt.Errorf("%w: token endpoint rejected refresh: %v", shared.ErrAuthInvalid, err)
		}

		lastErr = err
		m.logger.Warn("token refresh failed, retrying", "attempt", attempt+1, "error", err)
	}

	m.state = Authenticated
	return fmt.Errorf("%w: token refresh: %v", shared.ErrRetriesExhausted, lastErr)
}

// authorizeLocked runs the full browser-redirect flow. Callers hold m.mu.
func (m *Manager) authorizeLocked(ctx context.Context) error {
	m.state = Authorizing

	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()
	authURL := m.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	addr, err := callbackAddr(m.config.RedirectURL)
	if err != nil {
		m.state = Unauthenticated
		return err
	}

	handler := server.NewOAuthHandler(m.config, state, verifier)
	router := server.NewBasicRouter()
	router.Handler(handler)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		m.state = Unauthenticated
		return fmt.Errorf("failed to bind %s for OAuth redirect: %w", addr, err)
	}

	srv := &http.Server{Handler: router}
	go srv.Serve(listener)
	defer srv.Close()

	m.logger.Info("waiting for authorization", "url", authURL)
	if err := m.openBrowser(authURL); err != nil {
		m.logger.Warn("could not open browser, visit the URL manually", "error", err)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			m.state = Unauthenticated
			return result.Error()
		}
		m.adoptTokenLocked(result.Token)
		m.logger.Info("authorization successful", "expires_at", m.cred.ExpiresAt)
		return nil
	case <-time.After(callbackTimeout):
		m.state = Unauthenticated
		return shared.ErrAuthTimeout
	case <-ctx.Done():
		m.state = Unauthenticated
		return ctx.Err()
	}
}

// adoptTokenLocked converts an oauth2 token into the persisted credential,
// preserving the old refresh token when the provider omits it. Callers hold
// m.mu.
func (m *Manager) adoptTokenLocked(token *oauth2.Token) {
	cred := models.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		Scopes:       scopes,
	}
	if cred.RefreshToken == "" && m.cred != nil {
		cred.RefreshToken = m.cred.RefreshToken
	}

	m.cred = &cred
	m.state = Authenticated

	if err := m.store.Set(repositories.CredentialKey, cred); err != nil {
		m.logger.Warn("failed to persist credential", "error", err)
	}
}

// callbackAddr extracts host:port from the configured redirect URI.
func callbackAddr(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}
	return host, nil
}
