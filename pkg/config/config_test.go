package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "darte_session", cfg.SessionCookieName)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.True(t, cfg.SessionStartLoggedIn)
	assert.Equal(t, time.Second, cfg.AutoReplyDelay)
	assert.Equal(t, CatalogSourceFile, cfg.CatalogSource)
	assert.Empty(t, cfg.CatalogFile)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTO_REPLY_DELAY", "250ms")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90")
	t.Setenv("SESSION_START_LOGGED_IN", "no")
	t.Setenv("CATALOG_SOURCE", CatalogSourceMySQL)
	t.Setenv("DB_NAME", "shop")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://darte.shop, ,http://localhost:3000")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.GetAppPortInt())
	assert.Equal(t, 250*time.Millisecond, cfg.AutoReplyDelay)
	assert.Equal(t, 90*time.Second, cfg.SessionIdleTimeout)
	assert.False(t, cfg.SessionStartLoggedIn)
	assert.Equal(t, CatalogSourceMySQL, cfg.CatalogSource)
	assert.Contains(t, cfg.GetDSN(), "@tcp(localhost:3306)/shop?")
	assert.Equal(t, []string{"https://darte.shop", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestGetEnvDurationInvalidFallsBack(t *testing.T) {
	t.Setenv("AUTO_REPLY_DELAY", "soon")
	assert.Equal(t, 5*time.Second, getEnvDuration("AUTO_REPLY_DELAY", 5*time.Second))
}

func TestGetAppPortIntInvalid(t *testing.T) {
	cfg := &Config{AppPort: "http"}
	assert.Equal(t, 8080, cfg.GetAppPortInt())
}
