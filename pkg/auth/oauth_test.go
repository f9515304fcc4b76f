package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/eisen/pkg/logger"
)

func TestRedirectURL(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace the out-of-band URI", func(t *testing.T) {
		assert.Equal(t, "http://localhost:6789/oauth2callback", redirectURL(ctx, "urn:ietf:wg:oauth:2.0:oob"))
	})

	t.Run("Should add the port to a bare localhost", func(t *testing.T) {
		assert.Equal(t, "http://localhost:6789", redirectURL(ctx, "http://localhost"))
	})

	t.Run("Should force the expected port", func(t *testing.T) {
		assert.Equal(t, "http://127.0.0.1:6789/cb", redirectURL(ctx, "http://127.0.0.1:9999/cb"))
	})

	t.Run("Should keep remote redirects", func(t *testing.T) {
		assert.Equal(t, "https://example.com/cb", redirectURL(ctx, "https://example.com/cb"))
	})
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenFile)
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, saveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(tok.Expiry))
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old"}
	fresh := &oauth2.Token{AccessToken: "new"}

	t.Run("Should not write an unchanged token", func(t *testing.T) {
		s := &savingSource{base: staticSource{old}, path: path, last: old, log: logger.NewLogger(logger.TestConfig())}
		_, err := s.Token()
		require.NoError(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("Should write a refreshed token", func(t *testing.T) {
		s := &savingSource{base: staticSource{fresh}, path: path, last: old, log: logger.NewLogger(logger.TestConfig())}
		got, err := s.Token()
		require.NoError(t, err)
		assert.Equal(t, "new", got.AccessToken)

		saved, err := tokenFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", saved.AccessToken)
	})
}
