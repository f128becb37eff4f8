package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ZipTales/internal/credibility"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "ZIPTALES_CONFIG"
	httpAddrEnv       = "HTTP_ADDR"
	databaseDSNEnv    = "DATABASE_DSN"
	redisURLEnv       = "REDIS_URL"
	attestationURLEnv = "ATTESTATION_URL"
	attestationKeyEnv = "ATTESTATION_API_KEY"
	reputationFileEnv = "REPUTATION_FILE"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Attestation AttestationConfig `yaml:"attestation"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Logging     LoggingConfig     `yaml:"logging"`
	Sites       []SiteConfig      `yaml:"sites"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RateLimit       float64       `yaml:"rateLimit"`
	RateBurst       int           `yaml:"rateBurst"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables storage.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
}

// RedisConfig describes the result cache. An empty URL disables caching.
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// AttestationConfig points at the external attestation gateway. An empty URL disables lookups.
type AttestationConfig struct {
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"apiKey"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cacheSize"`
}

// ScoringConfig carries the engine tables.
type ScoringConfig struct {
	ReputationFile    string                 `yaml:"reputationFile"`
	DefaultReputation *int                   `yaml:"defaultReputation"`
	Weights           credibility.Weights    `yaml:"weights"`
	Heuristics        credibility.Heuristics `yaml:"heuristics"`
	StrictWeights     bool                   `yaml:"strictWeights"`
}

// SchedulerConfig defines when stored articles are rescored.
type SchedulerConfig struct {
	Interval    time.Duration  `yaml:"interval"`
	Timezone    string         `yaml:"timezone"`
	BatchSize   int            `yaml:"batchSize"`
	Concurrency int            `yaml:"concurrency"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig selects verbosity and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URLs    []string          `yaml:"urls"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := Config{Scoring: ScoringConfig{
				Weights:    cfg.Scoring.Weights,
				Heuristics: cfg.Scoring.Heuristics,
			}}
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(redisURLEnv); v != "" {
		c.Redis.URL = v
	}

	if v := os.Getenv(attestationURLEnv); v != "" {
		c.Attestation.URL = v
	}

	if v := os.Getenv(attestationKeyEnv); v != "" {
		c.Attestation.APIKey = v
	}

	if v := os.Getenv(reputationFileEnv); v != "" {
		c.Scoring.ReputationFile = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.RateLimit > 0 {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.RateBurst > 0 {
		base.Server.RateBurst = override.Server.RateBurst
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxConns > 0 {
		base.Database.MaxConns = override.Database.MaxConns
	}

	if override.Redis.URL != "" {
		base.Redis.URL = override.Redis.URL
	}
	if override.Redis.TTL > 0 {
		base.Redis.TTL = override.Redis.TTL
	}

	if override.Attestation.URL != "" {
		base.Attestation.URL = override.Attestation.URL
	}
	if override.Attestation.APIKey != "" {
		base.Attestation.APIKey = override.Attestation.APIKey
	}
	if override.Attestation.Timeout > 0 {
		base.Attestation.Timeout = override.Attestation.Timeout
	}
	if override.Attestation.CacheSize > 0 {
		base.Attestation.CacheSize = override.Attestation.CacheSize
	}

	if override.Scoring.ReputationFile != "" {
		base.Scoring.ReputationFile = override.Scoring.ReputationFile
	}
	if override.Scoring.DefaultReputation != nil {
		base.Scoring.DefaultReputation = override.Scoring.DefaultReputation
	}
	// Tables are decoded over the defaults, so a partial block keeps the untouched fields.
	if override.Scoring.Weights != (credibility.Weights{}) {
		base.Scoring.Weights = override.Scoring.Weights
	}
	if override.Scoring.Heuristics != (credibility.Heuristics{}) {
		base.Scoring.Heuristics = override.Scoring.Heuristics
	}
	base.Scoring.StrictWeights = base.Scoring.StrictWeights || override.Scoring.StrictWeights

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.BatchSize > 0 {
		base.Scheduler.BatchSize = override.Scheduler.BatchSize
	}
	if override.Scheduler.Concurrency > 0 {
		base.Scheduler.Concurrency = override.Scheduler.Concurrency
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server: ServerConfig{
			Addr:            ":5000",
			RateLimit:       20,
			RateBurst:       40,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{DSN: "", MaxConns: 10},
		Redis:    RedisConfig{URL: "", TTL: 15 * time.Minute},
		Attestation: AttestationConfig{
			URL:       "",
			Timeout:   3 * time.Second,
			CacheSize: 1024,
		},
		Scoring: ScoringConfig{
			Weights:    credibility.DefaultWeights(),
			Heuristics: credibility.DefaultHeuristics(),
		},
		Scheduler: SchedulerConfig{
			Interval:    6 * time.Hour,
			Timezone:    defaultTimezone,
			BatchSize:   200,
			Concurrency: 4,
			location:    tz,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
