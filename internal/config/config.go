package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxCacheTTLSeconds caps how stale a cached availability view may get.
const MaxCacheTTLSeconds = 30

type Config struct {
	HTTP struct {
		Port            int     `yaml:"port"`
		WriteRatePerSec float64 `yaml:"write_rate_per_sec"`
		WriteBurst      int     `yaml:"write_burst"`
	} `yaml:"http"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Availability struct {
		DefaultTimezone string `yaml:"default_timezone"`
	} `yaml:"availability"`

	Audit struct {
		Enabled          bool   `yaml:"enabled"`
		ReportDir        string `yaml:"report_dir"`
		LogRetentionDays int    `yaml:"log_retention_days"`
	} `yaml:"audit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.WriteRatePerSec <= 0 {
		cfg.HTTP.WriteRatePerSec = 10
	}
	if cfg.HTTP.WriteBurst <= 0 {
		cfg.HTTP.WriteBurst = 20
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/dastarkhan.db"
	}
	// A cached availability read defers reconciliation by up to the TTL, so
	// it must stay inside the freshness window clients poll at.
	if cfg.Cache.TTLSeconds > MaxCacheTTLSeconds {
		cfg.Cache.TTLSeconds = MaxCacheTTLSeconds
	}
	if cfg.Audit.ReportDir == "" {
		cfg.Audit.ReportDir = "data/reports"
	}
	if cfg.Audit.LogRetentionDays <= 0 {
		cfg.Audit.LogRetentionDays = 180
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) LogRetention() time.Duration {
	return time.Duration(c.Audit.LogRetentionDays) * 24 * time.Hour
}
