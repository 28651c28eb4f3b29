package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("FE_URL", "http://localhost:5173")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=woodify")
	assert.False(t, cfg.DevOverrideEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.PostgresDSN())
}

// 本番ではoverrideが立っていても無効
func TestLoad_DevOverrideIgnoredInProd(t *testing.T) {
	setRequired(t)
	t.Setenv("GO_ENV", "prod")
	t.Setenv("DEV_ADMIN_OVERRIDE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DevAdminOverride)
	assert.False(t, cfg.DevOverrideEnabled())
}

func TestLoad_DevOverrideInDev(t *testing.T) {
	setRequired(t)
	t.Setenv("DEV_ADMIN_OVERRIDE", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevOverrideEnabled())
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	assert.EqualError(t, err, "S3_BUCKET is required")
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	assert.Error(t, err)
}
