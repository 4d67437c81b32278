package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Contains(t, cfg.Database.DSN, "postgres://")
	assert.Equal(t, 100, cfg.Migration.ProgressEvery)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "-4")
	t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/tasks")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TOKEN", "header.payload.signature")
	t.Setenv("MIGRATION_PROGRESS_EVERY", "25")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "postgres://u:p@db:5432/tasks", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, "header.payload.signature", cfg.Session.Token)
	assert.Equal(t, 25, cfg.Migration.ProgressEvery)
}

func TestNewConfig_InvalidValue(t *testing.T) {
	t.Setenv("MIGRATION_PROGRESS_EVERY", "lots")

	_, err := NewConfig()
	assert.Error(t, err)
}
