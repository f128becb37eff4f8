package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ZipTales/internal/credibility"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, credibility.DefaultWeights(), cfg.Scoring.Weights)
	assert.Equal(t, credibility.DefaultHeuristics(), cfg.Scoring.Heuristics)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ziptales.yaml")
	raw := `
server:
  addr: ":8080"
database:
  dsn: "postgres://file/db"
redis:
  ttl: 5m
scoring:
  defaultReputation: 40
  weights:
    sourceReliability: 0.4
    factualAccuracy: 0.2
    biasLevel: 0.2
    userVotes: 0.1
    attestation: 0.1
scheduler:
  timezone: Europe/Berlin
  interval: 30m
sites:
  - name: wire
    scanner: rss
    urls: ["https://example.org/feed.xml"]
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env/db")
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(attestationKeyEnv, "secret")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	require.NotNil(t, cfg.Scoring.DefaultReputation)
	assert.Equal(t, 40, *cfg.Scoring.DefaultReputation)
	assert.InDelta(t, 0.4, cfg.Scoring.Weights.SourceReliability, 1e-9)
	assert.Equal(t, credibility.DefaultHeuristics(), cfg.Scoring.Heuristics)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "secret", cfg.Attestation.APIKey)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
}

func TestLoad_PartialScoringTablesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ziptales.yaml")
	raw := `
scoring:
  heuristics:
    sensationalPenalty: 5
  weights:
    attestation: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	want := credibility.DefaultHeuristics()
	want.Sensational = 5
	assert.Equal(t, want, cfg.Scoring.Heuristics)
	assert.Equal(t, 50, cfg.Scoring.Heuristics.Base)
	assert.Equal(t, credibility.DefaultWeights(), cfg.Scoring.Weights)
	assert.InDelta(t, 1.0, cfg.Scoring.Weights.Sum(), 1e-9)

	engine := credibility.NewEngine(credibility.Options{
		Weights:    &cfg.Scoring.Weights,
		Heuristics: &cfg.Scoring.Heuristics,
	})
	assert.Equal(t, 50, engine.FactualAccuracyOf(""))
	assert.Equal(t, 50, engine.BiasLevelOf(""))
}

func TestLoad_UnreadableFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	assert.Equal(t, ":5000", cfg.Server.Addr)
}
