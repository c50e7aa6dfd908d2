// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr        string        `env:"APP_ADDR" envDefault:":8080"`
	Environment string        `env:"APP_ENV" envDefault:"development"`
	DatabaseURL string        `env:"DATABASE_URL"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	RunSeed       bool   `env:"RUN_SEED" envDefault:"true"`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:""`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:""`

	MaxBodyBytes       int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	PushEndpoint string `env:"PUSH_ENDPOINT" envDefault:""`

	EmailEnabled bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"no-reply@example.com"`
	SMTPHost     string `env:"SMTP_HOST" envDefault:""`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"true"`

	// VacationCapRefunds guards the ledger invariant that cumulative
	// cancellation refunds cannot exceed the original deduction. Off by
	// default for parity with the historical behavior.
	VacationCapRefunds bool `env:"VACATION_CAP_REFUNDS" envDefault:"false"`

	DailyReportInterval  time.Duration `env:"DAILY_REPORT_INTERVAL" envDefault:"24h"`
	TokenCleanupInterval time.Duration `env:"TOKEN_CLEANUP_INTERVAL" envDefault:"24h"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
