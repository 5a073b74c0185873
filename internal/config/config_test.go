package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{configPathEnv, dbPathEnv, patternsEnv, logLevelEnv} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.4, cfg.Scoring.Baseline)
	assert.Contains(t, cfg.Ingest.Include, "**/*.md")
	assert.True(t, filepath.IsAbs(cfg.DBPath))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/x.db
log_level: DEBUG
workers: 3
scoring:
  baseline: 0.5
  marker_reward_cap: 0.3
ingest:
  include: ["**/*.md"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 0.5, cfg.Scoring.Baseline)
	require.NotNil(t, cfg.Scoring.MarkerRewardCap)
	assert.Equal(t, 0.3, *cfg.Scoring.MarkerRewardCap)
	assert.Equal(t, -0.15, cfg.Scoring.RedFlagPenaltyDefault, "unset tunables keep defaults")
	assert.Equal(t, []string{"**/*.md"}, cfg.Ingest.Include)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [not a number"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(dbPathEnv, "/data/memory.db")
	t.Setenv(patternsEnv, "/etc/patterns.yaml")
	t.Setenv(logLevelEnv, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/memory.db", cfg.DBPath)
	assert.Equal(t, "/etc/patterns.yaml", cfg.PatternsPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 7\n"), 0o644))
	t.Setenv(configPathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)

	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load("")
	assert.Error(t, err, "a configured path must exist")
}
