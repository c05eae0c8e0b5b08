// Package app assembles the bot from configuration: storage, session
// backend, engines and the telegram runtime options.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/hamrahbot/sabt/core/config"
	coredatabase "github.com/hamrahbot/sabt/core/database"
	"github.com/hamrahbot/sabt/internal/payment"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Settings holds the application-level tunables.
type Settings struct {
	// AuthExpirationDays is how long a contact verification stays
	// fresh before the user is challenged again.
	AuthExpirationDays int `yaml:"auth_expiration_days" envconfig:"AUTH_EXPIRATION_DAYS"`
	// ReferralReward is the credit granted per referred registration,
	// in tomans. Zero disables rewarding.
	ReferralReward int64 `yaml:"referral_reward" envconfig:"REFERRAL_REWARD"`
	// MinChargeAmount is the smallest accepted top-up, in tomans.
	MinChargeAmount int64  `yaml:"min_charge_amount" envconfig:"MIN_CHARGE_AMOUNT"`
	SupportContact  string `yaml:"support_contact" envconfig:"SUPPORT_CONTACT"`
}

// SessionConfig selects and configures the conversation session store.
type SessionConfig struct {
	Backend       string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	RedisAddr     string `yaml:"redis_addr" envconfig:"SESSION_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" envconfig:"SESSION_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" envconfig:"SESSION_REDIS_DB"`
	TTLHours      int    `yaml:"ttl_hours" envconfig:"SESSION_TTL_HOURS"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	App      Settings            `yaml:"app"`
	Session  SessionConfig       `yaml:"session"`
	Payment  payment.Config      `yaml:"payment"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads the YAML file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if cfg.App.AuthExpirationDays <= 0 {
		cfg.App.AuthExpirationDays = 30
	}
	if cfg.App.MinChargeAmount <= 0 {
		cfg.App.MinChargeAmount = 1000
	}
	if cfg.App.ReferralReward < 0 {
		return fmt.Errorf("app.referral_reward must be >= 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendMemory
	}
	switch backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return fmt.Errorf("session.redis_addr is required when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend

	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	return nil
}
