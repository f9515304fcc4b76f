package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	t.Run("Should return defaults when the file is missing", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Should overlay the file on the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		content := `{"source": "taskwarrior", "areas": {"Work": "Esteem"}, "throttle_max_ms": 2000}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "taskwarrior", cfg.Source)
		assert.Equal(t, map[string]string{"Work": "Esteem"}, cfg.Areas)
		assert.Equal(t, 800, cfg.ThrottleMinMS)
		assert.Equal(t, 2000, cfg.ThrottleMaxMS)
		assert.Equal(t, "Maslow Level", cfg.AreaSchema.Level)
	})

	t.Run("Should reject malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"NOTION_API_KEY":     "secret",
		"NOTION_DATABASE_ID": "db",
		"EISEN_MODEL":        "gpt-4o",
		"EISEN_SOURCE":       "  ",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "secret", cfg.NotionAPIKey)
	assert.Equal(t, "db", cfg.NotionDatabaseID)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "notion", cfg.Source)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Should require Notion credentials for the notion source", func(t *testing.T) {
		err := Default().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NotionAPIKey")
		assert.Contains(t, err.Error(), "NotionDatabaseID")
	})

	t.Run("Should accept a complete notion config", func(t *testing.T) {
		cfg := Default()
		cfg.NotionAPIKey, cfg.NotionDatabaseID = "secret", "db"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should require org files for the orgmode source", func(t *testing.T) {
		cfg := Default()
		cfg.Source = "orgmode"
		require.Error(t, cfg.Validate())

		cfg.OrgFiles = []string{"~/org/inbox.org"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should reject unknown sources", func(t *testing.T) {
		cfg := Default()
		cfg.Source = "jira"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject inverted throttle bounds", func(t *testing.T) {
		cfg := Default()
		cfg.Source = "taskwarrior"
		cfg.ThrottleMinMS, cfg.ThrottleMaxMS = 500, 100
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_Throttle(t *testing.T) {
	lo, hi := Default().Throttle()
	assert.Equal(t, 800*time.Millisecond, lo)
	assert.Equal(t, 1200*time.Millisecond, hi)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)
	t.Setenv("NOTION_API_KEY", "from-env")

	cfg := Default()
	cfg.Source = "gtasks"
	cfg.TaskLists = []string{"Inbox"}
	require.NoError(t, Save(cfg))

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gtasks", loaded.Source)
	assert.Equal(t, []string{"Inbox"}, loaded.TaskLists)
	assert.Equal(t, "from-env", loaded.NotionAPIKey)
	assert.Equal(t, filepath.Join(dir, "advice.json"), loaded.AdviceCache)
}
