package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// Config holds all configuration for the PM scheduling engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (the database password) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Scheduler configuration for weekly PM generation
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cmms"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cmms"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// SchedulerConfig holds the weekly PM generation settings.
type SchedulerConfig struct {
	// WeeklyTarget bounds the number of assignments produced per week.
	WeeklyTarget int `yaml:"weekly_target" env:"PM_WEEKLY_TARGET" env-default:"25"`

	// CompletionWindowDays is how far back completion history is loaded.
	// 400 days safely covers an annual cycle plus slack.
	CompletionWindowDays int `yaml:"completion_window_days" env:"PM_COMPLETION_WINDOW_DAYS" env-default:"400"`

	// Technicians is the ordered roster assignments are distributed over.
	Technicians []string `yaml:"technicians" env:"PM_TECHNICIANS" env-separator:","`

	// PriorityTiers maps equipment identifiers to criticality tiers
	// (1 most critical .. 3). Unmapped equipment defaults to tier 99.
	PriorityTiers map[string]int `yaml:"priority_tiers"`

	// CronSpec drives daemon mode: when to generate the upcoming week.
	CronSpec string `yaml:"cron" env:"PM_CRON" env-default:"0 6 * * MON"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks the scheduler section for values the engine cannot run with.
func (c *Config) validate() error {
	if c.Scheduler.WeeklyTarget < 0 {
		return fmt.Errorf("weekly_target must not be negative, got %d", c.Scheduler.WeeklyTarget)
	}
	if c.Scheduler.CompletionWindowDays <= 0 {
		return fmt.Errorf("completion_window_days must be positive, got %d", c.Scheduler.CompletionWindowDays)
	}

	for i, tech := range c.Scheduler.Technicians {
		c.Scheduler.Technicians[i] = strings.TrimSpace(tech)
		if c.Scheduler.Technicians[i] == "" {
			return fmt.Errorf("technician roster entry %d is blank", i)
		}
	}

	for id, tier := range c.Scheduler.PriorityTiers {
		if tier < 1 || tier > 3 {
			return fmt.Errorf("priority tier for %q must be 1, 2 or 3, got %d", id, tier)
		}
	}

	return nil
}

// TierFor returns the configured criticality tier for an equipment
// identifier, or the default tier when unmapped.
func (s *SchedulerConfig) TierFor(equipmentID string) int {
	if tier, ok := s.PriorityTiers[equipmentID]; ok {
		return tier
	}
	return models.DefaultPriorityTier
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
