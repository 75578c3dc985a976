package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.CatalogPath)
	assert.Equal(t, 10, cfg.ReportLimit)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/votes.db")
	t.Setenv("CATALOG_PATH", "/deck/images.csv")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("REPORT_LIMIT", "25")
	t.Setenv("SESSION_TTL", "30m")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/votes.db", cfg.DBPath)
	assert.Equal(t, "/deck/images.csv", cfg.CatalogPath)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, 25, cfg.ReportLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REPORT_LIMIT", "ten")
	t.Setenv("SESSION_TTL", "-5m")

	cfg := Load()

	assert.Equal(t, 10, cfg.ReportLimit)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MEDIA_DIR=/srv/media\n"), 0o600))
	t.Chdir(dir)
	// Registered so the variable godotenv sets is restored after the test.
	t.Setenv("MEDIA_DIR", "")
	require.NoError(t, os.Unsetenv("MEDIA_DIR"))

	cfg := Load()

	assert.Equal(t, "/srv/media", cfg.MediaDir)
}
