// Package config loads the tool configuration: registrar credentials and
// tuning, chain defaults, and bulk-run limits.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// ChainConfig holds the SPF chain defaults applied when flags are absent.
type ChainConfig struct {
	Length         int    `yaml:"length"`
	FinalDirective string `yaml:"final_directive"`
	MinLabelLength int    `yaml:"min_label_length"`
}

// BulkConfig bounds concurrent domain tasks and locates pre-change backups.
type BulkConfig struct {
	Concurrency int    `yaml:"concurrency"`
	BackupDir   string `yaml:"backup_dir"`
}

// RetryConfig tunes the registrar adapter's retry loop.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// Config is the full configuration file.
type Config struct {
	Registrar string                       `yaml:"registrar"`
	Settings  map[string]string            `yaml:"settings"`
	Profiles  map[string]map[string]string `yaml:"profiles"`
	Chain     ChainConfig                  `yaml:"chain"`
	Bulk      BulkConfig                   `yaml:"bulk"`
	Retry     RetryConfig                  `yaml:"retry"`
}

// Load reads the configuration from the path in the YK_DNS_BULK_CONFIG
// environment variable, defaulting to "configs/yk-dns-bulk.yaml".
func Load() (*Config, error) {
	path := os.Getenv("YK_DNS_BULK_CONFIG")
	if path == "" {
		path = "configs/yk-dns-bulk.yaml"
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from the given file path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Registrar == "" {
		cfg.Registrar = "porkbun"
	}
	if cfg.Chain.Length == 0 {
		cfg.Chain.Length = 4
	}
	if cfg.Bulk.Concurrency == 0 {
		cfg.Bulk.Concurrency = 5
	}
	if cfg.Bulk.BackupDir == "" {
		cfg.Bulk.BackupDir = "backups"
	}

	// Expand ${ENV_VAR} references in setting values so credentials can
	// stay out of the file.
	expand := func(m map[string]string) {
		for k, v := range m {
			m[k] = os.ExpandEnv(v)
		}
	}
	expand(cfg.Settings)
	for _, profile := range cfg.Profiles {
		expand(profile)
	}

	return &cfg, nil
}

// ResolveSettings returns the registrar settings for the named profile, or
// the top-level settings when profile is empty. Retry tuning is merged in
// so the registrar picks it up without a separate wiring path.
func (c *Config) ResolveSettings(profile string) (map[string]string, error) {
	base := c.Settings
	if profile != "" {
		p, ok := c.Profiles[profile]
		if !ok {
			return nil, fmt.Errorf("config: unknown profile %q", profile)
		}
		base = p
	}

	settings := make(map[string]string, len(base)+2)
	for k, v := range base {
		settings[k] = v
	}
	if c.Retry.Attempts > 0 {
		settings["max_attempts"] = fmt.Sprintf("%d", c.Retry.Attempts)
	}
	if c.Retry.Backoff > 0 {
		settings["backoff"] = c.Retry.Backoff.String()
	}
	return settings, nil
}
