// config/config.go - Environment-backed application configuration
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretLength = 32

// Config holds every setting the server reads from the environment.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	Database DatabaseConfig

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	RateLimit RateLimitConfig

	ElasticsearchURLs []string      `env:"ELASTICSEARCH_URLS" envSeparator:","`
	SyncInterval      time.Duration `env:"SYNC_INTERVAL" envDefault:"1s"`
	SyncBatchSize     int           `env:"SYNC_BATCH_SIZE" envDefault:"100"`

	RedisURL            string        `env:"REDIS_URL"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"5m"`

	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	CleanupRetention time.Duration `env:"CLEANUP_RETENTION" envDefault:"720h"`

	Admin AdminSeed
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"hackmatrix"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"hackmatrix.db"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RateLimitConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxRequests     int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	Window          time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	AuthMaxRequests int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"20"`
	AuthWindow      time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"5m"`
}

// AdminSeed describes the bootstrap administrator. Seeding is skipped when Email is empty.
type AdminSeed struct {
	Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long (current: %d)", minSecretLength, len(c.JWTSecret))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.SyncBatchSize <= 0 {
		c.SyncBatchSize = 100
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) SearchEnabled() bool {
	for _, u := range c.ElasticsearchURLs {
		if strings.TrimSpace(u) != "" {
			return true
		}
	}
	return false
}

// LoadDatabase parses only the database settings. Used by tools that never serve HTTP.
func LoadDatabase() (DatabaseConfig, error) {
	cfg, err := env.ParseAs[DatabaseConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
