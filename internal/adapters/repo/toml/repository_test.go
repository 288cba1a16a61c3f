package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rylenlobo/blog-app-client/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	t.Setenv("HOME", t.TempDir())

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	return repo
}

func TestGetWithoutSessionFile(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSaveGetClearRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	loggedInAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	session := domain.Session{
		User: domain.User{
			ID:        "u1",
			Email:     "ada@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
		},
		LoggedInAt: loggedInAt,
	}

	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.User, loaded.User)
	assert.True(t, loaded.LoggedInAt.Equal(loggedInAt))

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Clearing an already-absent session is not an error.
	require.NoError(t, repo.Clear(ctx))
}

func TestSessionFilePermissions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Session{User: domain.User{ID: "u1"}}))

	info, err := os.Stat(repo.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadsExistingSessionFixture(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sessionDir := filepath.Join(home, ".blogctl")
	require.NoError(t, os.MkdirAll(sessionDir, 0o700))
	fixture := `version = 1

[principal]
id = "u1"
email = "ada@example.com"
first_name = "Ada"
last_name = "Lovelace"
logged_in_at = "2026-08-20T10:30:00Z"
`
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "session.toml"), []byte(fixture), 0o600))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	session, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), session.User.ID)
	assert.Equal(t, "Ada Lovelace", session.User.DisplayName())
	assert.Equal(t, 2026, session.LoggedInAt.Year())
}

func TestRejectsUnsupportedSchemaVersion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sessionDir := filepath.Join(home, ".blogctl")
	require.NoError(t, os.MkdirAll(sessionDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "session.toml"), []byte("version = 99\n"), 0o600))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	_, err = repo.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestConfigOverridesSessionPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	customPath := filepath.Join(home, "custom", "state.toml")
	configDir := filepath.Join(home, ".blogctl")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	config := "[session]\npath = \"" + customPath + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	assert.Equal(t, customPath, repo.sessionPath)

	require.NoError(t, repo.Save(context.Background(), domain.Session{User: domain.User{ID: "u1"}}))
	_, err = os.Stat(customPath)
	require.NoError(t, err)
}
