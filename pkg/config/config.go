// Package config handles loading and managing safetyscore configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // embedded zone database for report.timezone

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for safetyscore.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Scoring ScoringConfig `yaml:"scoring"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRangeDays    int           `yaml:"max_range_days"` // cap on ad-hoc incident range queries
}

// Storage backends.
const (
	BackendNone = "none"
	BackendS3   = "s3"
	BackendGCS  = "gcs"
)

// StorageConfig controls where incident CSVs and clips are read from.
type StorageConfig struct {
	Backend          string        `yaml:"backend"` // none, s3, gcs
	Bucket           string        `yaml:"bucket"`
	Region           string        `yaml:"region"`
	Endpoint         string        `yaml:"endpoint"` // S3-compatible endpoint, e.g. MinIO
	AccessKey        string        `yaml:"access_key"`
	SecretKey        string        `yaml:"secret_key"`
	IncidentsPrefix  string        `yaml:"incidents_prefix"`
	PresignExpiry    time.Duration `yaml:"presign_expiry"`
	Timeout          time.Duration `yaml:"timeout"` // per remote call
	MaxAttempts      int           `yaml:"max_attempts"`
	LocalDir         string        `yaml:"local_dir"` // checked before the remote store
	FetchConcurrency int           `yaml:"fetch_concurrency"`
}

// CacheConfig controls the in-process cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, gocache
	TTL     time.Duration `yaml:"ttl"`
}

// ScoringConfig overrides the built-in rule table.
type ScoringConfig struct {
	RuleVersion string             `yaml:"rule_version"`
	Deductions  map[string]float64 `yaml:"deductions"`
}

// ReportConfig controls the safety score report.
type ReportConfig struct {
	Timezone    string  `yaml:"timezone"` // IANA name or "Local"
	UKMarketAvg float64 `yaml:"uk_market_avg"`
	SiteRank    int     `yaml:"site_rank"`
	TotalSites  int     `yaml:"total_sites"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigin:      "*",
			ShutdownTimeout: 10 * time.Second,
			MaxRangeDays:    92,
		},
		Storage: StorageConfig{
			Backend:          BackendNone,
			Region:           "eu-west-2",
			IncidentsPrefix:  "incidents/",
			PresignExpiry:    time.Hour,
			Timeout:          10 * time.Second,
			LocalDir:         filepath.Join("data", "incidents"),
			FetchConcurrency: 8,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     5 * time.Minute,
		},
		Scoring: ScoringConfig{
			Deductions: map[string]float64{},
		},
		Report: ReportConfig{
			Timezone:    "UTC",
			UKMarketAvg: 74,
			SiteRank:    3,
			TotalSites:  12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &c.Server.Port)
	str("AWS_REGION", &c.Storage.Region)
	str("S3_ENDPOINT", &c.Storage.Endpoint)
	str("S3_INCIDENTS_PREFIX", &c.Storage.IncidentsPrefix)
	str("LOCAL_INCIDENTS_DIR", &c.Storage.LocalDir)
	str("REPORT_TIMEZONE", &c.Report.Timezone)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	// A bucket in the environment selects its backend.
	if v, ok := lookup("S3_BUCKET_NAME"); ok && v != "" {
		c.Storage.Backend = BackendS3
		c.Storage.Bucket = v
	} else if v, ok := lookup("GCS_BUCKET"); ok && v != "" {
		c.Storage.Backend = BackendGCS
		c.Storage.Bucket = v
	}

	if v, ok := lookup("S3_CLIPS_PRESIGN_EXPIRES"); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("S3_CLIPS_PRESIGN_EXPIRES: %w", err)
		}
		c.Storage.PresignExpiry = time.Duration(secs) * time.Second
	}
	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	return nil
}

// Validate checks the config for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", BackendNone:
	case BackendS3, BackendGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for backend %q", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "", "memory", "gocache":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Storage.PresignExpiry <= 0 {
		return fmt.Errorf("storage.presign_expiry must be positive, got %s", c.Storage.PresignExpiry)
	}
	if c.Storage.FetchConcurrency < 1 {
		return fmt.Errorf("storage.fetch_concurrency must be at least 1")
	}
	for key, d := range c.Scoring.Deductions {
		if d < 0 {
			return fmt.Errorf("scoring.deductions[%s]: negative deduction %v", key, d)
		}
	}
	if len(c.Scoring.Deductions) > 0 && c.Scoring.RuleVersion == "" {
		return fmt.Errorf("scoring.rule_version is required when overriding deductions")
	}
	if c.Report.UKMarketAvg <= 0 || c.Report.UKMarketAvg >= 100 {
		return fmt.Errorf("report.uk_market_avg must be in (0, 100), got %v", c.Report.UKMarketAvg)
	}
	if _, err := c.Report.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the report timezone.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report.timezone: %w", err)
	}
	return loc, nil
}

// FindConfigFile looks for .safetyscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".safetyscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
