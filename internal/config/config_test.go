package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "BACKEND_SERVER", "SERVER_URL", "SUBMIT_TIMEOUT", "DATA_DIR",
	"COURSE_HOST", "COURSE_PATH_PREFIX", "EXPAND_POLL_INTERVAL", "EXPAND_TIMEOUT",
	"RENDER_SETTLE", "WATERMARK", "ID_STRATEGY", "OPEN_BROWSER", "BROWSER_HEADLESS",
	"BROWSER_BIN", "MAX_BODY_BYTES", "CORS_ORIGINS", "COURSEMAP_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.BackendServer)
	assert.Empty(t, cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "www.udemy.com", cfg.CourseHost)
	assert.Equal(t, "/course/", cfg.CoursePathPrefix)
	assert.Equal(t, 100*time.Millisecond, cfg.ExpandPollInterval)
	assert.Equal(t, 5*time.Second, cfg.ExpandTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RenderSettle)
	assert.Equal(t, "map-my-udemy", cfg.Watermark)
	assert.Equal(t, "short", cfg.IDStrategy)
	assert.True(t, cfg.OpenBrowser)
	assert.True(t, cfg.BrowserHeadless)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, ":3000", cfg.ListenAddr())
	assert.Equal(t, "http://localhost:3000/screenshot", cfg.ScreenshotURL())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_URL", "https://maps.example.com/")
	t.Setenv("EXPAND_TIMEOUT", "2s")
	t.Setenv("ID_STRATEGY", "UUID")
	t.Setenv("OPEN_BROWSER", "false")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("MAX_BODY_BYTES", "-5")

	cfg := Load()
	assert.Equal(t, "http://localhost:8081", cfg.BackendServer)
	assert.Equal(t, "https://maps.example.com", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.ExpandTimeout)
	assert.Equal(t, "uuid", cfg.IDStrategy)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes, "non-positive values fall back")
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXPAND_POLL_INTERVAL", "soon")
	t.Setenv("SUBMIT_TIMEOUT", "0s")
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg := Load()
	assert.Equal(t, 100*time.Millisecond, cfg.ExpandPollInterval)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.True(t, cfg.BrowserHeadless)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := Load()

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"port", func(c *Config) { c.Port = "http" }},
		{"backend", func(c *Config) { c.BackendServer = "localhost:3000" }},
		{"server url", func(c *Config) { c.ServerURL = "ftp://x" }},
		{"data dir", func(c *Config) { c.DataDir = "" }},
		{"prefix", func(c *Config) { c.CoursePathPrefix = "course/" }},
		{"id strategy", func(c *Config) { c.IDStrategy = "sequential" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mut(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WATERMARK", "from-env")
	os.Unsetenv("PORT")
	t.Cleanup(func() { os.Unsetenv("PORT") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4000\nWATERMARK=from-file\n"), 0o600))
	require.NoError(t, LoadDotEnv(path))

	cfg := Load()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "from-env", cfg.Watermark, "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
