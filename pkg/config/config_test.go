package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendNone, cfg.Storage.Backend)
	assert.Equal(t, "incidents/", cfg.Storage.IncidentsPrefix)
	assert.Equal(t, time.Hour, cfg.Storage.PresignExpiry)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 74.0, cfg.Report.UKMarketAvg)
	assert.NotNil(t, cfg.Scoring.Deductions)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "non-existent file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "valid YAML overrides defaults",
			yaml: `
storage:
  backend: s3
  bucket: node-safety-data
  incidents_prefix: logs/incidents/
  presign_expiry: 15m
  timeout: 3s
cache:
  backend: gocache
  ttl: 1m
scoring:
  rule_version: site-b-1
  deductions:
    walkway-exit: 2
report:
  timezone: Europe/London
  total_sites: 20
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendS3, cfg.Storage.Backend)
				assert.Equal(t, "node-safety-data", cfg.Storage.Bucket)
				assert.Equal(t, "logs/incidents/", cfg.Storage.IncidentsPrefix)
				assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
				assert.Equal(t, 3*time.Second, cfg.Storage.Timeout)
				assert.Equal(t, "gocache", cfg.Cache.Backend)
				assert.Equal(t, time.Minute, cfg.Cache.TTL)
				assert.Equal(t, 2.0, cfg.Scoring.Deductions["walkway-exit"])
				assert.Equal(t, 20, cfg.Report.TotalSites)
				// untouched fields keep defaults
				assert.Equal(t, 3, cfg.Report.SiteRank)
				assert.Equal(t, "eu-west-2", cfg.Storage.Region)
				require.NoError(t, cfg.Validate())
			},
		},
		{
			name:    "invalid YAML returns error",
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if !tc.noFile {
				require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			}

			cfg, err := Load(path)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"S3_BUCKET_NAME":           "node-safety-data",
		"S3_INCIDENTS_PREFIX":      "daily/",
		"S3_CLIPS_PRESIGN_EXPIRES": "600",
		"AWS_REGION":               "us-east-1",
		"PORT":                     "9090",
		"CACHE_TTL":                "30s",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, BackendS3, cfg.Storage.Backend)
	assert.Equal(t, "node-safety-data", cfg.Storage.Bucket)
	assert.Equal(t, "daily/", cfg.Storage.IncidentsPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Storage.PresignExpiry)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)

	t.Run("gcs bucket", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
			return map[string]string{"GCS_BUCKET": "clips"}[k], k == "GCS_BUCKET"
		}))
		assert.Equal(t, BackendGCS, cfg.Storage.Backend)
		assert.Equal(t, "clips", cfg.Storage.Bucket)
	})

	t.Run("bad presign seconds", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(func(k string) (string, bool) {
			return "soon", k == "S3_CLIPS_PRESIGN_EXPIRES"
		})
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown storage backend", mutate: func(c *Config) { c.Storage.Backend = "ftp" }},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = BackendS3 }},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "redis" }},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "zero presign expiry", mutate: func(c *Config) { c.Storage.PresignExpiry = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.Storage.FetchConcurrency = 0 }},
		{name: "negative deduction", mutate: func(c *Config) {
			c.Scoring.RuleVersion = "v2"
			c.Scoring.Deductions["walkway-exit"] = -1
		}},
		{name: "override without version", mutate: func(c *Config) { c.Scoring.Deductions["walkway-exit"] = 3 }},
		{name: "market average out of range", mutate: func(c *Config) { c.Report.UKMarketAvg = 100 }},
		{name: "bad timezone", mutate: func(c *Config) { c.Report.Timezone = "Mars/Olympus" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestReportLocation(t *testing.T) {
	loc, err := ReportConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = ReportConfig{Timezone: "Europe/London"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestFindConfigFile(t *testing.T) {
	t.Run("found in parent directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".safetyscore")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		configPath := filepath.Join(configDir, "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0o644))

		sub := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		assert.Equal(t, configPath, FindConfigFile(sub))
	})

	t.Run("not found", func(t *testing.T) {
		assert.Equal(t, "", FindConfigFile(t.TempDir()))
	})
}
