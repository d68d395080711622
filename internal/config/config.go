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

	// APIBaseURL is the origin of the remote learning-platform backend.
	APIBaseURL    string
	APITimeout    time.Duration
	UploadTimeout time.Duration

	// SessionSecret signs the session cookie; SessionEncryptionKey (16, 24
	// or 32 bytes) encrypts it. An empty encryption key leaves it signed only.
	SessionSecret        string
	SessionEncryptionKey string
	CookieSecure         bool

	// RedisURL backs the credential relay. Empty keeps it in memory.
	RedisURL      string
	CredentialTTL time.Duration

	MaxVideoBytes int64
	MaxImageBytes int64

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	// AuthRateLimit is the number of auth form posts allowed per minute per IP.
	AuthRateLimit int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:           getEnv("API_BASE_URL", "https://abotl-backend.vercel.app"),
		APITimeout:           time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		UploadTimeout:        time.Duration(getEnvInt("UPLOAD_TIMEOUT_MINUTES", 30)) * time.Minute,
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		CookieSecure:         getEnvBool("COOKIE_SECURE", false),
		RedisURL:             getEnv("REDIS_URL", ""),
		CredentialTTL:        time.Duration(getEnvInt("CREDENTIAL_TTL_HOURS", 24)) * time.Hour,
		MaxVideoBytes:        int64(getEnvInt("MAX_VIDEO_SIZE_MB", 500)) * 1024 * 1024,
		MaxImageBytes:        int64(getEnvInt("MAX_IMAGE_SIZE_MB", 5)) * 1024 * 1024,
		AllowedOrigins:       parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		AuthRateLimit:        getEnvInt("AUTH_RATE_LIMIT", 30),
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

func getEnvBool(key string, fallback bool) bool {
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

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
