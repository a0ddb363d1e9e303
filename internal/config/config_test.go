package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://www.goodjob.life", cfg.SiteURL)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.InDelta(t, 2.0, cfg.RateLimitRPS, 0.0001)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidateAPIListsMissingSettings(t *testing.T) {
	cfg := &Config{JWTSecret: "x"}
	err := cfg.ValidateAPI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "VERIFY_EMAIL_JWT_SECRET")
	assert.NotContains(t, err.Error(), "JWT_SECRET,")

	cfg = &Config{DatabaseURL: "memory://", JWTSecret: "a", VerifyEmailJWTSecret: "b"}
	assert.NoError(t, cfg.ValidateAPI())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	assert.Empty(t, (&Config{}).AllowedOrigins())
}
