package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/rylenlobo/blog-app-client/internal/adapters/blogapi"
	tomlrepo "github.com/rylenlobo/blog-app-client/internal/adapters/repo/toml"
	chainstore "github.com/rylenlobo/blog-app-client/internal/adapters/secrets/chain"
	"github.com/rylenlobo/blog-app-client/internal/application"
	"github.com/rylenlobo/blog-app-client/internal/domain"
	"github.com/rylenlobo/blog-app-client/internal/ports"
)

const defaultBaseURL = "https://blog-app-server-oyzn.onrender.com/api"

type app struct {
	client  *blogapi.Client
	session *application.SessionService
	blog    *application.BlogService
	nav     *redirectRecorder
	logger  zerolog.Logger
}

func wireApp() (*app, error) {
	sessionRepo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".blogctl", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	logger := newLogger()

	client, err := blogapi.New(blogapi.Config{
		BaseURL: envOrDefault("BLOG_API_BASE_URL", defaultBaseURL),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	nav := &redirectRecorder{}
	session := application.NewSessionService(client, sessionRepo, secretStore, nav, ports.SystemClock{}, logger, application.SessionConfig{})

	return &app{
		client:  client,
		session: session,
		blog:    application.NewBlogService(client),
		nav:     nav,
		logger:  logger,
	}, nil
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(envOrDefault("BLOG_LOG_LEVEL", "warn"))
	if err != nil {
		level = zerolog.WarnLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// redirectRecorder is the CLI's Navigator: view changes requested by the
// session store are recorded and translated into messages or errors by the
// command that triggered them.
type redirectRecorder struct {
	mu     sync.Mutex
	target string
}

var _ ports.Navigator = (*redirectRecorder)(nil)

func (r *redirectRecorder) Redirect(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = route
}

// Consume returns the last redirect target and resets it.
func (r *redirectRecorder) Consume() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := r.target
	r.target = ""
	return target
}

// requireLogin enforces the protected-route policy for a command: if the
// session store redirected the route to the login view, the command fails
// with a pointer at the login command instead.
func requireLogin(app *app, route string) error {
	app.session.GuardRoute(route)
	if target := app.nav.Consume(); target != "" {
		return fmt.Errorf("%w: login required for %s: run `blogctl auth login --email <email> --password <password>`", domain.ErrNotAuthenticated, route)
	}
	return nil
}
