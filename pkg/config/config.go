// Package config loads greport's layered configuration: an optional YAML
// file provides defaults, environment variables (prefixed GREPORT_) override
// them, and a .env file may be used in local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address" env:"GREPORT_SERVER_BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"GREPORT_SERVER_PORT"`
}

// DatabaseConfig controls the warehouse connection.
type DatabaseConfig struct {
	URL             string `yaml:"url" env:"GREPORT_DATABASE_URL"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"GREPORT_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"GREPORT_DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds" env:"GREPORT_DATABASE_CONN_MAX_LIFETIME"`
}

// LoggingConfig controls the domain logger (pkg/logger).
type LoggingConfig struct {
	Level      string `yaml:"level" env:"GREPORT_LOG_LEVEL"`
	Format     string `yaml:"format" env:"GREPORT_LOG_FORMAT"`
	Output     string `yaml:"output" env:"GREPORT_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"GREPORT_LOG_FILE_PREFIX"`
}

// GitHubConfig is the default credential and endpoints (lowest precedence
// below per-organization entries, §4.1).
type GitHubConfig struct {
	Token   string `yaml:"token" env:"GREPORT_GITHUB_TOKEN"`
	BaseURL string `yaml:"base_url" env:"GREPORT_GITHUB_BASE_URL"`
	WebURL  string `yaml:"web_url" env:"GREPORT_GITHUB_WEB_URL"`
}

// OrganizationConfig is a per-organization credential/endpoint override,
// highest precedence in the registry's resolution order (§4.1).
type OrganizationConfig struct {
	Name            string `yaml:"name"`
	Token           string `yaml:"token"`
	BaseURL         string `yaml:"base_url"`
	WebURL          string `yaml:"web_url"`
	VaultSecretName string `yaml:"vault_secret_name"`
}

// DefaultsConfig holds CLI-facing defaults; the CLI itself is out of scope
// but the engine still resolves these for any caller that asks for them.
type DefaultsConfig struct {
	Repo   string `yaml:"repo"`
	Format string `yaml:"format"`
}

// PriorityOverride is a per-label SLA override (§6.2,
// `sla.priority.<label>.{response,resolution}_time_hours`).
type PriorityOverride struct {
	ResponseTimeHours   float64 `yaml:"response_time_hours"`
	ResolutionTimeHours float64 `yaml:"resolution_time_hours"`
}

// SLAConfig holds SLA policy defaults and per-priority-label overrides.
type SLAConfig struct {
	ResponseTimeHours   float64                     `yaml:"response_time_hours" env:"GREPORT_SLA_RESPONSE_TIME_HOURS"`
	ResolutionTimeHours float64                     `yaml:"resolution_time_hours" env:"GREPORT_SLA_RESOLUTION_TIME_HOURS"`
	Priority            map[string]PriorityOverride `yaml:"priority"`
}

// SyncConfig holds the sync settings (§4.4, §6.2). StaleDays sets the HTTP
// Surface's stale threshold. OverlapHours is loaded but not read anywhere:
// the Sync Coordinator always uses its fixed one-hour overlap.
type SyncConfig struct {
	OverlapHours float64 `yaml:"overlap_hours" env:"GREPORT_SYNC_OVERLAP_HOURS"`
	StaleDays    int     `yaml:"stale_days" env:"GREPORT_SYNC_STALE_DAYS"`
}

// SchedulerConfig controls the optional periodic batch-sync trigger.
type SchedulerConfig struct {
	BatchSyncInterval string `yaml:"batch_sync_interval" env:"GREPORT_SCHEDULER_BATCH_SYNC_INTERVAL"`
}

// RedisConfig configures the optional validation-result cache (§4.1).
type RedisConfig struct {
	Addr string `yaml:"addr" env:"GREPORT_REDIS_ADDR"`
}

// Config is greport's top-level configuration structure.
type Config struct {
	Server        ServerConfig         `yaml:"server"`
	Database      DatabaseConfig       `yaml:"database"`
	Logging       LoggingConfig        `yaml:"logging"`
	GitHub        GitHubConfig         `yaml:"github"`
	Organizations []OrganizationConfig `yaml:"organizations"`
	Defaults      DefaultsConfig       `yaml:"defaults"`
	SLA           SLAConfig            `yaml:"sla"`
	Sync          SyncConfig           `yaml:"sync"`
	Scheduler     SchedulerConfig      `yaml:"scheduler"`
	Redis         RedisConfig          `yaml:"redis"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress: "0.0.0.0",
			Port:        8080,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    16,
			MaxIdleConns:    4,
			ConnMaxLifetime: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
			WebURL:  "https://github.com",
		},
		Defaults: DefaultsConfig{
			Format: "table",
		},
		SLA: SLAConfig{
			ResponseTimeHours:   24,
			ResolutionTimeHours: 168,
		},
		Sync: SyncConfig{
			OverlapHours: 1,
			StaleDays:    30,
		},
	}
}

// Load builds a Config by applying, in precedence order: compiled-in
// defaults, an optional YAML file at path (skipped if empty or missing),
// a .env file in the working directory (if present), then environment
// variables decoded via struct tags.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.Organizations = append(cfg.Organizations, orgsFromEnv()...)

	return cfg, nil
}

// orgsFromEnv discovers GREPORT_ORG_<NAME>_TOKEN environment variables and
// synthesizes an OrganizationConfig for each, per spec §6.3. Organizations
// already named in the YAML file are left untouched by Load's append; the
// registry itself dedupes case-insensitively on owner at resolution time.
func orgsFromEnv() []OrganizationConfig {
	const prefix = "GREPORT_ORG_"
	const suffix = "_TOKEN"

	var out []OrganizationConfig
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), suffix)
		if name == "" || value == "" {
			continue
		}
		out = append(out, OrganizationConfig{Name: name, Token: value})
	}
	return out
}
