package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// ParentPanelAPIURL is the base URL of the upstream parent-panel backend.
	ParentPanelAPIURL string
	// DefaultAuthToken is the build-time token used when the browser session
	// has not stored one of its own.
	DefaultAuthToken string
	UpstreamTimeout  time.Duration

	RedisURL          string
	SessionTTL        time.Duration
	SessionCookieName string

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	// PDFProxyAllowedHosts lists the hosts (and their subdomains) the
	// PDF proxy may fetch from. Empty means the proxy refuses everything.
	PDFProxyAllowedHosts []string

	JoinFirstPollDelay time.Duration
	JoinPollInterval   time.Duration
	ClassLocation      *time.Location

	VerifyRateLimit int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "pretty"),
		ParentPanelAPIURL:    strings.TrimRight(getEnv("PARENT_PANEL_API_URL", "http://localhost:8000"), "/"),
		DefaultAuthToken:     getEnv("PARENT_PANEL_AUTH_TOKEN", ""),
		UpstreamTimeout:      time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:           time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*30)) * time.Hour,
		SessionCookieName:    getEnv("SESSION_COOKIE_NAME", "pp_session"),
		AllowedOrigins:       parseList(getEnv("ALLOWED_ORIGINS", "")),
		PDFProxyAllowedHosts: parseList(getEnv("PDF_PROXY_ALLOWED_HOSTS", "")),
		JoinFirstPollDelay:   time.Duration(getEnvInt("JOIN_FIRST_POLL_MS", 5000)) * time.Millisecond,
		JoinPollInterval:     time.Duration(getEnvInt("JOIN_POLL_INTERVAL_MS", 15000)) * time.Millisecond,
		ClassLocation:        loadLocation(getEnv("CLASS_TIMEZONE", "Asia/Kolkata")),
		VerifyRateLimit:      getEnvInt("VERIFY_RATE_LIMIT_PER_MINUTE", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

// parseList splits a comma-separated string into a trimmed slice.
// Returns nil if the input is empty.
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
