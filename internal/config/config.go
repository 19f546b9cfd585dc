package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port              int     `env:"PORT" envDefault:"8080"`
	DatabaseURL       string  `env:"DATABASE_URL,required"`
	RedisURL          string  `env:"REDIS_URL,required"`
	JWTSecret         string  `env:"JWT_SECRET,required"`
	TokenTTLMinutes   int     `env:"TOKEN_TTL_MINUTES" envDefault:"1440"`
	DefaultHourlyRate float64 `env:"DEFAULT_HOURLY_RATE" envDefault:"500"`
	ReportTimezone    string  `env:"REPORT_TIMEZONE" envDefault:"UTC"`
	AdminUsername     string  `env:"ADMIN_USERNAME"`
	AdminPasswordHash string  `env:"ADMIN_PASSWORD_HASH"`
	RateLimitPerMin   int     `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	LogLevel          string  `env:"LOG_LEVEL" envDefault:"info"`
	AutoMigrate       bool    `env:"AUTO_MIGRATE" envDefault:"true"`
	Environment       string  `env:"APP_ENV" envDefault:"development"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DefaultRate is the hourly rate billed when no rate setting is active.
func (c *Config) DefaultRate() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultHourlyRate).Round(2)
}

// Location resolves ReportTimezone, which decides where report days start.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("load REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminPasswordHash != "" {
		if !strings.HasPrefix(c.AdminPasswordHash, "$2a$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2b$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2y$") {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
		if c.AdminUsername == "" {
			return fmt.Errorf("ADMIN_USERNAME is required when ADMIN_PASSWORD_HASH is set")
		}
	}

	if c.DefaultHourlyRate <= 0 {
		return fmt.Errorf("DEFAULT_HOURLY_RATE must be greater than zero")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
