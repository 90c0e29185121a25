// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server, worker and seeder read from the
// environment.
type Config struct {
	Address string `env:"ADDRESS" envDefault:":8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME"`

	AdminPassword       string        `env:"ADMIN_PASSWORD"`
	AdminPasswordBcrypt string        `env:"ADMIN_PASSWORD_BCRYPT"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	Timezone       string `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	AggregateLimit int    `env:"AGGREGATE_LIMIT" envDefault:"500"`
	ExportLimit    int    `env:"EXPORT_LIMIT" envDefault:"5000"`
	TopN           int    `env:"TOP_N" envDefault:"5"`

	GeoLookupURL     string        `env:"GEO_LOOKUP_URL"`
	GeoLookupTimeout time.Duration `env:"GEO_LOOKUP_TIMEOUT" envDefault:"2s"`

	AMQPURL     string `env:"AMQP_URL"`
	EventsQueue string `env:"EVENTS_QUEUE" envDefault:"submission_events"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks what the HTTP server needs on top of Parse.
func (c *Config) Validate() error {
	if c.AdminPassword == "" && c.AdminPasswordBcrypt == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_BCRYPT must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location is the zone "today" is computed in for campaign windows.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN prefers DATABASE_URL and falls back to the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}
