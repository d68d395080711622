package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_BASE_URL", "REDIS_URL", "MAX_VIDEO_SIZE_MB", "MAX_IMAGE_SIZE_MB", "COOKIE_SECURE", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "https://abotl-backend.vercel.app", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, int64(500*1024*1024), cfg.MaxVideoBytes)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxImageBytes)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.CookieSecure)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CREDENTIAL_TTL_HOURS", "2")
	t.Setenv("AUTH_RATE_LIMIT", "nope")

	cfg := Load()

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 2*time.Hour, cfg.CredentialTTL)
	assert.Equal(t, 30, cfg.AuthRateLimit)
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, parseOrigins(" http://a, ,http://b "))
	assert.Nil(t, parseOrigins(""))
}

func TestVisitorCookiesKey(t *testing.T) {
	assert.Equal(t, "visitor:abc:cookies", CacheKey.VisitorCookiesKey("abc"))
}
