package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".cogmem", cfg.Scope.ProjectDataDir)
	assert.Contains(t, cfg.Scope.UserDataDir, ".cogmem")
	assert.Equal(t, 0.65, cfg.Scope.ClassifierThreshold)

	assert.Equal(t, 0.15, cfg.Decay.ReinforceBoost)
	assert.Equal(t, 24*time.Hour, cfg.Decay.ApplyDecayInterval)
	assert.Equal(t, 0.01, cfg.Decay.FactConfidenceDecayRate)
	assert.Equal(t, 0.05, cfg.Decay.WaypointMinWeight)

	assert.Equal(t, "memory", cfg.Vector.Backend)
	assert.Equal(t, "localhost", cfg.Vector.QdrantHost)
	assert.Equal(t, 6334, cfg.Vector.QdrantPort)
	assert.Equal(t, "lru", cfg.Vector.CacheBackend)
	assert.Equal(t, 2000, cfg.Vector.CacheSize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfig_OverridesFromEnv(t *testing.T) {
	t.Setenv("COGMEM_VECTOR_BACKEND", "qdrant")
	t.Setenv("COGMEM_CACHE_BACKEND", "redis")
	t.Setenv("COGMEM_SCOPE_THRESHOLD", "0.8")
	t.Setenv("COGMEM_QDRANT_PORT", "7000")
	t.Setenv("COGMEM_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "qdrant", cfg.Vector.Backend)
	assert.Equal(t, "redis", cfg.Vector.CacheBackend)
	assert.Equal(t, 0.8, cfg.Scope.ClassifierThreshold)
	assert.Equal(t, 7000, cfg.Vector.QdrantPort)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_IgnoresMissingDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	_, err = LoadConfig()
	require.NoError(t, err)
}

func TestValidate_RejectsUnknownVectorBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vector.Backend = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownCacheBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vector.CacheBackend = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scope.ClassifierThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}
