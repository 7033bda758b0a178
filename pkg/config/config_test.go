package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 5, cfg.Pagination.DefaultSize)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, 15*time.Minute, cfg.Uploads.SignedURLTTL)
	assert.Equal(t, 3*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 11, cfg.Security.BcryptCost)
	assert.False(t, cfg.LoginProtection.Enabled)
	assert.Equal(t, []string{"http://localhost:4200", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	t.Setenv("API_PREFIX", "/v2")
	t.Setenv("PAGINATION_DEFAULT_SIZE", "0")
	t.Setenv("UPLOADS_MAX_FILE_SIZE", "1024")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOGIN_PROTECTION_ENABLED", "true")
	t.Setenv("LOGIN_PROTECTION_LIMIT", "3")
	t.Setenv("LOGIN_PROTECTION_WINDOW", "bogus")
	t.Setenv("LOGIN_PROTECTION_BLOCK", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, 5, cfg.Pagination.DefaultSize)
	assert.Equal(t, int64(1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.LoginProtection.Enabled)
	assert.Equal(t, 3, cfg.LoginProtection.Limit)
	assert.Equal(t, 5*time.Minute, cfg.LoginProtection.Window)
	assert.Equal(t, time.Hour, cfg.LoginProtection.Block)
}
