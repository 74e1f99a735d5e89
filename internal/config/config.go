package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment selects where the browser engine lives.
const (
	EnvLocal    = "local"
	EnvDeployed = "deployed"
)

// Config holds all runtime settings. Values come from environment variables
// (optionally seeded from a .env file by main) with defaults suited to local
// development.
type Config struct {
	Port        int
	Environment string

	// Browser engine location. BrowserBin points at an explicit Chrome
	// binary; RemoteURL attaches to an already-running CDP endpoint;
	// UseDocker launches a browserless/chrome container in deployed mode.
	BrowserBin string
	RemoteURL  string
	UseDocker  bool

	ProfileURLTemplate string
	UserAgent          string
	AcceptLanguage     string

	CacheTTL     time.Duration
	Attempts     int
	RetryDelay   time.Duration
	NavTimeout   time.Duration
	ProbeTimeout time.Duration
	MaxPages     int64

	RatePerHour int
	RateBurst   int
}

// Load builds a Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:               envInt("PORT", 3000),
		Environment:        envString("ENVIRONMENT", EnvLocal),
		BrowserBin:         os.Getenv("BROWSER_BIN"),
		RemoteURL:          os.Getenv("BROWSER_REMOTE_URL"),
		UseDocker:          envBool("BROWSER_USE_DOCKER", false),
		ProfileURLTemplate: envString("PROFILE_URL_TEMPLATE", "https://codeforces.com/profile/%s"),
		UserAgent:          envString("USER_AGENT", defaultUserAgent),
		AcceptLanguage:     envString("ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		CacheTTL:           envDuration("CACHE_TTL", 10*time.Minute),
		Attempts:           envInt("SCRAPE_ATTEMPTS", 3),
		RetryDelay:         envDuration("SCRAPE_RETRY_DELAY", 3*time.Second),
		NavTimeout:         envDuration("NAV_TIMEOUT", 30*time.Second),
		ProbeTimeout:       envDuration("PROBE_TIMEOUT", 5*time.Second),
		MaxPages:           int64(envInt("MAX_PAGES", 4)),
		RatePerHour:        envInt("RATE_LIMIT_PER_HOUR", 300),
		RateBurst:          envInt("RATE_LIMIT_BURST", 10),
	}

	if cfg.Environment != EnvLocal && cfg.Environment != EnvDeployed {
		return Config{}, fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvLocal, EnvDeployed, cfg.Environment)
	}
	if cfg.Attempts < 1 {
		return Config{}, fmt.Errorf("SCRAPE_ATTEMPTS must be at least 1, got %d", cfg.Attempts)
	}
	if cfg.MaxPages < 1 {
		return Config{}, fmt.Errorf("MAX_PAGES must be at least 1, got %d", cfg.MaxPages)
	}

	return cfg, nil
}

// A desktop Chrome UA keeps the profile page from serving the bot wall.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
