// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Storage backend selectors for the subscription store.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	GitHubRepo  string

	AdminToken string

	ListenAddr string
	DataDir    string
	Storage    string
	DBPath     string

	ReportInterval time.Duration

	ResendAPIKey string
	FromEmail    string
	FromName     string
	SiteURL      string

	XBearerToken    string
	NostrPrivateKey string
	NostrRelays     []string

	LumaAPIKey  string
	LumaBaseURL string
}

// HasGitHubCredentials returns true when a GitHub token is configured.
// Without one the report builder fails with a configuration error before
// making any network call.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. The GitHub token (BUILDERD_GITHUB_TOKEN) and all third-party
// credentials are optional; features degrade individually when their
// credentials are absent. Optional variables with defaults:
// BUILDERD_LISTEN_ADDR (127.0.0.1:8080), BUILDERD_DATA_DIR (data),
// BUILDERD_STORAGE (file), BUILDERD_DB_PATH (builderd.db),
// BUILDERD_REPORT_INTERVAL (168h, 0 disables the scheduler).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:     os.Getenv("BUILDERD_GITHUB_TOKEN"),
		GitHubRepo:      getDefault("BUILDERD_GITHUB_REPO", "buildervan/builder-site"),
		AdminToken:      os.Getenv("BUILDERD_ADMIN_TOKEN"),
		ListenAddr:      getDefault("BUILDERD_LISTEN_ADDR", "127.0.0.1:8080"),
		DataDir:         getDefault("BUILDERD_DATA_DIR", "data"),
		Storage:         getDefault("BUILDERD_STORAGE", StorageFile),
		DBPath:          getDefault("BUILDERD_DB_PATH", "builderd.db"),
		ResendAPIKey:    os.Getenv("BUILDERD_RESEND_API_KEY"),
		FromEmail:       getDefault("BUILDERD_FROM_EMAIL", "newsletter@builder.van"),
		FromName:        getDefault("BUILDERD_FROM_NAME", "Builder Vancouver"),
		SiteURL:         getDefault("BUILDERD_SITE_URL", "https://builder.van"),
		XBearerToken:    os.Getenv("BUILDERD_X_BEARER_TOKEN"),
		NostrPrivateKey: os.Getenv("BUILDERD_NOSTR_PRIVATE_KEY"),
		LumaAPIKey:      os.Getenv("BUILDERD_LUMA_API_KEY"),
		LumaBaseURL:     getDefault("BUILDERD_LUMA_BASE_URL", "https://public-api.luma.com"),
	}

	if cfg.Storage != StorageFile && cfg.Storage != StorageSQLite {
		return nil, fmt.Errorf("BUILDERD_STORAGE must be %q or %q, got %q", StorageFile, StorageSQLite, cfg.Storage)
	}

	cfg.ReportInterval = 168 * time.Hour
	if v, ok := os.LookupEnv("BUILDERD_REPORT_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BUILDERD_REPORT_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("BUILDERD_REPORT_INTERVAL must not be negative, got %q", v)
		}
		cfg.ReportInterval = parsed
	}

	var relays []string
	if v, ok := os.LookupEnv("BUILDERD_NOSTR_RELAYS"); ok && v != "" {
		for _, relay := range strings.Split(v, ",") {
			relay = strings.TrimSpace(relay)
			if relay != "" {
				relays = append(relays, relay)
			}
		}
	}
	if relays == nil {
		relays = []string{}
	}
	cfg.NostrRelays = relays

	return cfg, nil
}

func getDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
