package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/rylenlobo/blog-app-client/internal/adapters/blogapi"
	"github.com/rylenlobo/blog-app-client/internal/domain"
	"github.com/rylenlobo/blog-app-client/internal/ports"
)

const (
	accessTokenKey    = "blog/access_token"
	refreshCookiesKey = "blog/refresh_cookies"

	// Grace applied when deciding whether a persisted token is still worth
	// installing; a token this close to expiry goes through a fresh login.
	tokenExpirySkew = 30 * time.Second
)

// DefaultProtectedRoutes are the view prefixes that require an
// authenticated principal.
var DefaultProtectedRoutes = []string{"create-post", "my-posts", "edit-post"}

type SessionConfig struct {
	ProtectedRoutes []string
	HomeRoute       string
	LoginRoute      string
}

func (c *SessionConfig) applyDefaults() {
	if len(c.ProtectedRoutes) == 0 {
		c.ProtectedRoutes = DefaultProtectedRoutes
	}
	if c.HomeRoute == "" {
		c.HomeRoute = "/"
	}
	if c.LoginRoute == "" {
		c.LoginRoute = "/login"
	}
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        domain.User `json:"user"`
}

// SessionService owns the authenticated-principal lifecycle: restoration
// from persisted storage, login/register/logout, and the redirect policy
// for protected views. All state transitions are serialized on an internal
// mutex; user and access token are always mutated together.
type SessionService struct {
	client   *blogapi.Client
	sessions ports.SessionRepository
	secrets  ports.SecretStore
	nav      ports.Navigator
	clock    ports.Clock
	logger   zerolog.Logger
	config   SessionConfig

	mu             sync.Mutex
	user           *domain.User
	accessToken    string
	authChecked    bool
	loggingIn      bool
	registering    bool
	loggingOut     bool
	loginErr       error
	registerErr    error
	redirectedPath string
}

func NewSessionService(client *blogapi.Client, sessions ports.SessionRepository, secrets ports.SecretStore, nav ports.Navigator, clock ports.Clock, logger zerolog.Logger, config SessionConfig) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	config.applyDefaults()

	s := &SessionService{
		client:   client,
		sessions: sessions,
		secrets:  secrets,
		nav:      nav,
		clock:    clock,
		logger:   logger,
		config:   config,
	}

	// The client owns the refresh protocol; the session store keeps
	// persisted storage in sync with its outcomes.
	client.OnTokenRefreshed(s.handleTokenRefreshed)
	client.OnSessionExpired(s.handleSessionExpired)

	return s
}

// Restore loads the persisted session once per process. With a stored user
// record and a usable token it installs the default auth header and enters
// the authenticated state; otherwise it wipes any partial leftovers and
// stays anonymous. AuthChecked flips to true exactly once and never
// reverts.
func (s *SessionService) Restore(ctx context.Context) error {
	s.mu.Lock()
	if s.authChecked {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	session, sessionErr := s.sessions.Get(ctx)
	token, tokenErr := s.secrets.Get(ctx, accessTokenKey)

	usable := sessionErr == nil && tokenErr == nil && token != "" && !tokenExpired(token, s.clock.Now())

	if usable {
		s.restoreCookies(ctx)
		s.client.SetAuthToken(token)
		s.mu.Lock()
		user := session.User
		s.user = &user
		s.accessToken = token
		s.authChecked = true
		s.mu.Unlock()
		return nil
	}

	if sessionErr != nil && !errors.Is(sessionErr, domain.ErrSessionNotFound) {
		s.logger.Warn().Err(sessionErr).Msg("read persisted session")
	}

	s.clearLocalSession(ctx)
	s.mu.Lock()
	s.authChecked = true
	s.mu.Unlock()
	return nil
}

// Login exchanges credentials for a token and principal, persisting and
// installing both atomically. Failures are recorded as structured error
// state and returned; the session stays anonymous.
func (s *SessionService) Login(ctx context.Context, credentials domain.Credentials) (domain.User, error) {
	s.mu.Lock()
	s.loggingIn = true
	s.loginErr = nil
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loggingIn = false
		s.mu.Unlock()
	}()

	user, err := s.authenticate(ctx, "/auth/login", credentials, credentials.Validate)
	if err != nil {
		s.mu.Lock()
		s.loginErr = err
		s.mu.Unlock()
		return domain.User{}, err
	}
	return user, nil
}

// Register creates an account and signs the new principal in, with the
// same persistence semantics as Login.
func (s *SessionService) Register(ctx context.Context, registration domain.Registration) (domain.User, error) {
	s.mu.Lock()
	s.registering = true
	s.registerErr = nil
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.registering = false
		s.mu.Unlock()
	}()

	user, err := s.authenticate(ctx, "/auth/register", registration, registration.Validate)
	if err != nil {
		s.mu.Lock()
		s.registerErr = err
		s.mu.Unlock()
		return domain.User{}, err
	}
	return user, nil
}

func (s *SessionService) authenticate(ctx context.Context, path string, payload any, validate func() error) (domain.User, error) {
	if err := validate(); err != nil {
		return domain.User{}, err
	}

	var response authResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, path, payload, &response); err != nil {
		return domain.User{}, err
	}
	if response.AccessToken == "" {
		return domain.User{}, errors.New("auth response missing access token")
	}

	if err := s.installSession(ctx, response.User, response.AccessToken); err != nil {
		return domain.User{}, err
	}

	s.nav.Redirect(s.config.HomeRoute)
	return response.User, nil
}

func (s *SessionService) installSession(ctx context.Context, user domain.User, token string) error {
	if err := s.secrets.Put(ctx, accessTokenKey, token); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.sessions.Save(ctx, domain.Session{User: user, LoggedInAt: s.clock.Now()}); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	s.persistCookies(ctx)

	s.client.SetAuthToken(token)
	s.mu.Lock()
	stored := user
	s.user = &stored
	s.accessToken = token
	s.redirectedPath = ""
	s.mu.Unlock()
	return nil
}

// Logout invalidates the server-side session best-effort and then
// unconditionally clears local state, storage, the default header, and
// navigates to the login view.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.loggingOut = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loggingOut = false
		s.mu.Unlock()
	}()

	if _, err := s.client.Do(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		s.logger.Error().Err(err).Msg("logout request failed")
	}

	s.clearLocalSession(ctx)
	s.nav.Redirect(s.config.LoginRoute)
	return nil
}

// GuardRoute applies the protected-route policy: once the initial auth
// check has completed, an anonymous visit to a protected path redirects to
// the login view exactly once per path.
func (s *SessionService) GuardRoute(path string) {
	s.mu.Lock()
	checked := s.authChecked
	anonymous := s.user == nil
	alreadyRedirected := s.redirectedPath == path
	s.mu.Unlock()

	if !checked || !anonymous || alreadyRedirected {
		return
	}
	if !s.isProtected(path) {
		return
	}

	s.mu.Lock()
	s.redirectedPath = path
	s.mu.Unlock()
	s.nav.Redirect(s.config.LoginRoute)
}

func (s *SessionService) isProtected(path string) bool {
	for _, route := range s.config.ProtectedRoutes {
		if strings.Contains(path, route) {
			return true
		}
	}
	return false
}

func (s *SessionService) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *SessionService) AuthChecked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authChecked
}

func (s *SessionService) IsLoggingIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggingIn
}

func (s *SessionService) IsRegistering() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registering
}

func (s *SessionService) IsLoggingOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggingOut
}

func (s *SessionService) LoginError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginErr
}

func (s *SessionService) RegisterError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerErr
}

func (s *SessionService) handleTokenRefreshed(token string) {
	ctx := context.Background()
	if err := s.secrets.Put(ctx, accessTokenKey, token); err != nil {
		s.logger.Error().Err(err).Msg("persist refreshed access token")
	}
	s.persistCookies(ctx)

	s.mu.Lock()
	if s.user != nil {
		s.accessToken = token
	}
	s.mu.Unlock()
}

func (s *SessionService) handleSessionExpired(err error) {
	s.logger.Warn().Err(err).Msg("session expired, clearing local state")
	s.clearLocalSession(context.Background())
}

func (s *SessionService) clearLocalSession(ctx context.Context) {
	if err := s.secrets.Delete(ctx, accessTokenKey); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		s.logger.Warn().Err(err).Msg("delete persisted access token")
	}
	if err := s.secrets.Delete(ctx, refreshCookiesKey); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		s.logger.Warn().Err(err).Msg("delete persisted refresh cookies")
	}
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clear persisted session")
	}

	s.client.SetAuthToken("")
	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.mu.Unlock()
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// The refresh credential is an httpOnly cookie; a browser persists it for
// free, a CLI has to snapshot the jar between processes.
func (s *SessionService) persistCookies(ctx context.Context) {
	cookies := s.client.Cookies()
	if len(cookies) == 0 {
		return
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, cookie := range cookies {
		stored = append(stored, storedCookie{Name: cookie.Name, Value: cookie.Value})
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode refresh cookies")
		return
	}
	if err := s.secrets.Put(ctx, refreshCookiesKey, string(payload)); err != nil {
		s.logger.Warn().Err(err).Msg("persist refresh cookies")
	}
}

func (s *SessionService) restoreCookies(ctx context.Context) {
	payload, err := s.secrets.Get(ctx, refreshCookiesKey)
	if err != nil {
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		s.logger.Warn().Err(err).Msg("decode persisted refresh cookies")
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, cookie := range stored {
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	s.client.SetCookies(cookies)
}

// tokenExpired inspects the exp claim without verifying the signature;
// opaque (non-JWT) tokens are trusted until the server rejects them.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}

	return !expiry.After(now.Add(tokenExpirySkew))
}
