package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Base64-encoded service account JSON (project_id, client_email, private_key).
	GoogleServiceAccountB64 string `envconfig:"GOOGLE_SERVICE_ACCOUNT_B64" required:"true"`
	GoogleTokenURL          string `envconfig:"GOOGLE_TOKEN_URL" default:"https://oauth2.googleapis.com/token"`
	GooglePubSubSub         string `envconfig:"GOOGLE_PUBSUB_SUBSCRIPTION"`

	ReminderTimezone    string `envconfig:"REMINDER_TIMEZONE" default:"UTC"`
	ReminderSchedule    string `envconfig:"REMINDER_SCHEDULE"`
	DispatchConcurrency int    `envconfig:"DISPATCH_CONCURRENCY" default:"4"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.GoogleServiceAccountB64 = strings.TrimSpace(cfg.GoogleServiceAccountB64)
	if cfg.DispatchConcurrency < 1 {
		return nil, fmt.Errorf("DISPATCH_CONCURRENCY must be >= 1, got %d", cfg.DispatchConcurrency)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves ReminderTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", c.ReminderTimezone, err)
	}
	return loc, nil
}
