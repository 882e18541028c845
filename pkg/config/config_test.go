package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "blogspace", cfg.Mongo.Database)
	assert.False(t, cfg.Mongo.Transactions)
	assert.Equal(t, 5*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, 72*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.Empty(t, cfg.Postgres.ConnStr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017/?replicaSet=rs0")
	t.Setenv("SECRET_ACCESS_KEY", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("RECONCILE_INTERVAL", "15m")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.Mongo.Transactions)
	assert.Equal(t, 2*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.EqualValues(t, 1024, cfg.Media.MaxUploadSize)
	assert.Equal(t, 72*time.Hour, cfg.Auth.AccessTokenTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("SECRET_ACCESS_KEY", "secret")
	_, err := Load()
	assert.EqualError(t, err, "MONGO_URI is required")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SECRET_ACCESS_KEY", "")
	_, err = Load()
	assert.EqualError(t, err, "SECRET_ACCESS_KEY is required")

	t.Setenv("SECRET_ACCESS_KEY", "secret")
	t.Setenv("RECONCILE_INTERVAL", "-1m")
	_, err = Load()
	assert.EqualError(t, err, "RECONCILE_INTERVAL must not be negative")
}
