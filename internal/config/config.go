package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Engine    EngineConfig    `yaml:"engine"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// SchedulerConfig controls the background horizon refresh job.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"` // cron expression, default "0 3 * * *"
}

// EngineConfig names the planning policy knobs. Zero values are replaced
// with defaults in Load so a config file only has to mention what it changes.
type EngineConfig struct {
	HorizonDays         int     `yaml:"horizon_days"`           // default 30
	AvailableMinutes    int     `yaml:"available_minutes"`      // default 60, capped at 120
	DefaultIncrementKg  float64 `yaml:"default_increment_kg"`   // default 2.5
	FirstWeekWindowDays int     `yaml:"first_week_window_days"` // default 7
	FirstWeekLoadFactor float64 `yaml:"first_week_load_factor"` // default 0.75
	RedundancyLimit     float64 `yaml:"redundancy_limit"`       // selection cutoff, default 0.7
	RedundancyWarn      float64 `yaml:"redundancy_warn"`        // session warning, default 0.8
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix IRONPLAN_ and underscore-separated paths:
//
//	IRONPLAN_SERVER_HOST, IRONPLAN_SERVER_PORT,
//	IRONPLAN_DB_HOST, IRONPLAN_DB_PORT, IRONPLAN_DB_NAME,
//	IRONPLAN_DB_USER, IRONPLAN_DB_PASSWORD, IRONPLAN_DB_SSLMODE,
//	IRONPLAN_AUTH_API_KEY, IRONPLAN_TS_HOSTNAME, IRONPLAN_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyEngineDefaults(&cfg.Engine)
	if cfg.Scheduler.Enabled && cfg.Scheduler.Cron == "" {
		cfg.Scheduler.Cron = "0 3 * * *"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRONPLAN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("IRONPLAN_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IRONPLAN_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("IRONPLAN_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("IRONPLAN_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("IRONPLAN_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("IRONPLAN_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("IRONPLAN_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("IRONPLAN_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("IRONPLAN_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("IRONPLAN_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func applyEngineDefaults(e *EngineConfig) {
	if e.HorizonDays == 0 {
		e.HorizonDays = 30
	}
	if e.AvailableMinutes == 0 {
		e.AvailableMinutes = 60
	}
	if e.DefaultIncrementKg == 0 {
		e.DefaultIncrementKg = 2.5
	}
	if e.FirstWeekWindowDays == 0 {
		e.FirstWeekWindowDays = 7
	}
	if e.FirstWeekLoadFactor == 0 {
		e.FirstWeekLoadFactor = 0.75
	}
	if e.RedundancyLimit == 0 {
		e.RedundancyLimit = 0.7
	}
	if e.RedundancyWarn == 0 {
		e.RedundancyWarn = 0.8
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Engine.RedundancyLimit <= 0 || c.Engine.RedundancyLimit > 1 {
		return fmt.Errorf("engine.redundancy_limit must be in (0, 1]")
	}
	return nil
}
