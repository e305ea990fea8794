package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://demo.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SUPABASE_SERVICE_KEY", "service")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/learnmate")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MAX_DB_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://demo.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "secret", cfg.SupabaseJWTSecret)
	assert.Equal(t, "authenticated", cfg.JWTAudience)
	assert.Equal(t, int32(16), cfg.MaxDBConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "  ")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")
	assert.Contains(t, err.Error(), "SUPABASE_SERVICE_KEY")
	assert.NotContains(t, err.Error(), "DATABASE_URL")
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "auth:revoked:abc", CacheKey.RevokedSessionKey("abc"))
	assert.Equal(t, "class:42:events", CacheKey.ClassEventsChannel(42))
}
