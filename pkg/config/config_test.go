package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "fs")
	t.Setenv("STORAGE_FS_ROOT", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 50, cfg.Generation.WaveSize)
	assert.Equal(t, 10, cfg.Generation.Concurrency)
	assert.Equal(t, 5, cfg.Generation.PrecheckConcurrency)
	assert.Equal(t, 12, cfg.Generation.Lookback)
	assert.Equal(t, "COMPOSITE", cfg.Generation.Benchmark)
	assert.Equal(t, "datasets/", cfg.Generation.DatasetPrefix)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "fs")
	t.Setenv("STORAGE_FS_ROOT", t.TempDir())
	t.Setenv("GEN_WAVE_SIZE", "20")
	t.Setenv("GEN_CONCURRENCY", "4")
	t.Setenv("GEN_BENCHMARK", "LQ45")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rrg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Generation.WaveSize)
	assert.Equal(t, 4, cfg.Generation.Concurrency)
	assert.Equal(t, "LQ45", cfg.Generation.Benchmark)
	assert.True(t, cfg.Database.Enabled)
}

func TestValidate_ZeroPrecheckConcurrency(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "fs")
	t.Setenv("STORAGE_FS_ROOT", t.TempDir())
	t.Setenv("GEN_PRECHECK_CONCURRENCY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEN_PRECHECK_CONCURRENCY")
}

func TestValidate_BadBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "azure")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestValidate_SupabaseRequiresBaseURL(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "supabase")
	t.Setenv("STORAGE_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_BadGenerationKnobs(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "fs")
	t.Setenv("STORAGE_FS_ROOT", t.TempDir())
	t.Setenv("GEN_WAVE_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEN_WAVE_SIZE")
}
