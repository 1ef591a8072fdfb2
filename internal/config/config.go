package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/coursemap/internal/mindmap"
)

type Config struct {
	Port string

	// BackendServer is the public origin of this server, used for the
	// page the browser opens after a submission.
	BackendServer string

	// ServerURL is the remote collaborator outlines are submitted to.
	// Empty disables submission.
	ServerURL     string
	SubmitTimeout time.Duration

	DataDir string

	// Course page shape
	CourseHost       string
	CoursePathPrefix string

	// Expansion wait
	ExpandPollInterval time.Duration
	ExpandTimeout      time.Duration

	// Rendering
	RenderSettle time.Duration
	Watermark    string
	IDStrategy   string

	// Browser
	OpenBrowser     bool
	BrowserHeadless bool
	BrowserBin      string

	// HTTP
	MaxBodyBytes int64
	CORSOrigins  []string
	APIKey       string
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	port := envOr("PORT", "3000")
	cfg := Config{
		Port: port,

		BackendServer: strings.TrimRight(envOr("BACKEND_SERVER", "http://localhost:"+port), "/"),

		ServerURL:     strings.TrimRight(os.Getenv("SERVER_URL"), "/"),
		SubmitTimeout: envDuration("SUBMIT_TIMEOUT", 30*time.Second),

		DataDir: envOr("DATA_DIR", "./data"),

		CourseHost:       envOr("COURSE_HOST", "www.udemy.com"),
		CoursePathPrefix: envOr("COURSE_PATH_PREFIX", "/course/"),

		ExpandPollInterval: envDuration("EXPAND_POLL_INTERVAL", 100*time.Millisecond),
		ExpandTimeout:      envDuration("EXPAND_TIMEOUT", 5*time.Second),

		RenderSettle: envDuration("RENDER_SETTLE", 500*time.Millisecond),
		Watermark:    envOr("WATERMARK", "map-my-udemy"),
		IDStrategy:   strings.ToLower(envOr("ID_STRATEGY", mindmap.StrategyShort)),

		OpenBrowser:     envBool("OPEN_BROWSER", true),
		BrowserHeadless: envBool("BROWSER_HEADLESS", true),
		BrowserBin:      os.Getenv("BROWSER_BIN"),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 1<<20),
		CORSOrigins:  envList("CORS_ORIGINS", []string{"*"}),
		APIKey:       os.Getenv("COURSEMAP_API_KEY"),
	}

	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	if cfg.ExpandPollInterval <= 0 {
		cfg.ExpandPollInterval = 100 * time.Millisecond
	}
	if cfg.ExpandTimeout <= 0 {
		cfg.ExpandTimeout = 5 * time.Second
	}
	if cfg.RenderSettle < 0 {
		cfg.RenderSettle = 500 * time.Millisecond
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func (c Config) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("PORT must be a TCP port, got %q", c.Port)
	}
	if err := checkURL("BACKEND_SERVER", c.BackendServer); err != nil {
		return err
	}
	if c.ServerURL != "" {
		if err := checkURL("SERVER_URL", c.ServerURL); err != nil {
			return err
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if !strings.HasPrefix(c.CoursePathPrefix, "/") {
		return fmt.Errorf("COURSE_PATH_PREFIX must start with /, got %q", c.CoursePathPrefix)
	}
	if _, err := mindmap.NewIDGenerator(c.IDStrategy); err != nil {
		return fmt.Errorf("ID_STRATEGY: %w", err)
	}
	return nil
}

// ListenAddr is the address the HTTP server binds.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

// ScreenshotURL is where the rendered page is served.
func (c Config) ScreenshotURL() string {
	return c.BackendServer + "/screenshot"
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
