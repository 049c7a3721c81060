// ABOUTME: Configuration loader for the storefront client
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend the original deployment listens on
const DefaultAPIURL = "http://localhost:5000"

type Config struct {
	// Backend
	APIURL    string
	Timeout   time.Duration // per request (default 30s)
	Retries   uint          // extra attempts for idempotent reads (default 2)
	RateLimit float64       // client-side requests per second, 0 disables (default 10)
	CacheTTL  time.Duration // reference data such as category names (default 5m)

	// Local state
	ConfigDir string // session entries and log file live here

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string // path, or "-" for stderr
}

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	configDir := getEnv("STOREFRONT_CONFIG_DIR", DefaultConfigDir())

	cfg := &Config{
		APIURL:    ensureScheme(getEnv("STOREFRONT_API_URL", DefaultAPIURL)),
		Timeout:   time.Duration(getEnvInt("STOREFRONT_TIMEOUT", 30)) * time.Second,
		Retries:   uint(getEnvInt("STOREFRONT_RETRIES", 2)),
		RateLimit: getEnvFloat("STOREFRONT_RATE_LIMIT", 10),
		CacheTTL:  time.Duration(getEnvInt("STOREFRONT_CACHE_TTL", 300)) * time.Second,
		ConfigDir: configDir,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("LOG_FILE", defaultLogFile(configDir)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges after overrides have been applied
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.Timeout < time.Second || c.Timeout > 10*time.Minute {
		return fmt.Errorf("STOREFRONT_TIMEOUT must be between 1 and 600 seconds, got %s", c.Timeout)
	}
	if c.Retries > 10 {
		return fmt.Errorf("STOREFRONT_RETRIES must be between 0 and 10, got %d", c.Retries)
	}
	if c.RateLimit < 0 || c.RateLimit > 1000 {
		return fmt.Errorf("STOREFRONT_RATE_LIMIT must be between 0 and 1000, got %g", c.RateLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("STOREFRONT_CACHE_TTL must not be negative")
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("cannot determine config directory; set STOREFRONT_CONFIG_DIR")
	}
	return nil
}

// OverrideAPIURL replaces the backend URL with a command-line value
func (c *Config) OverrideAPIURL(raw string) error {
	c.APIURL = ensureScheme(raw)
	return c.Validate()
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/storefront, falling back to ~/.config/storefront
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storefront")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "storefront")
}

func defaultLogFile(configDir string) string {
	if configDir == "" {
		return "-"
	}
	return filepath.Join(configDir, "storefront.log")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureScheme adds a scheme if the URL has none. Loopback hosts get
// plain http since the backend is usually run locally without TLS.
func ensureScheme(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return strings.TrimRight(raw, "/")
	}
	host := raw
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "http://" + strings.TrimRight(raw, "/")
	}
	return "https://" + strings.TrimRight(raw, "/")
}
