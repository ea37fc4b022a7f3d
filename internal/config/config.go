package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// Backend provider defaults
	Provider ProviderConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"sho"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"sho"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// ProviderConfig holds the environment default for the backend provider
// layer. Organizations without a stored override fall back to this.
type ProviderConfig struct {
	// DefaultKind selects the fallback backend: postgres, notion,
	// airtable or sanity.
	DefaultKind string `env:"PROVIDER_DEFAULT_KIND" envDefault:"postgres"`

	// TestTimeout bounds a single connection probe.
	TestTimeout time.Duration `env:"PROVIDER_TEST_TIMEOUT" envDefault:"10s"`

	// SwitchTimeout bounds the whole validate/test/save switch pipeline.
	SwitchTimeout time.Duration `env:"PROVIDER_SWITCH_TIMEOUT" envDefault:"30s"`

	// Entity cache defaults applied when a stored config does not set
	// its own.
	CacheEnabled bool          `env:"PROVIDER_CACHE_ENABLED" envDefault:"false"`
	CacheTTL     time.Duration `env:"PROVIDER_CACHE_TTL" envDefault:"60s"`

	// Credentials for non-postgres default kinds. Only read when
	// DefaultKind selects the matching backend.
	NotionAPIKey    string `env:"NOTION_API_KEY" envDefault:""`
	AirtableAPIKey  string `env:"AIRTABLE_API_KEY" envDefault:""`
	AirtableBaseID  string `env:"AIRTABLE_BASE_ID" envDefault:""`
	SanityAPIURL    string `env:"SANITY_API_URL" envDefault:""`
	SanityProjectID string `env:"SANITY_PROJECT_ID" envDefault:""`
	SanityDataset   string `env:"SANITY_DATASET" envDefault:"production"`
	SanityToken     string `env:"SANITY_API_TOKEN" envDefault:""`
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.String("default_provider", cfg.Provider.DefaultKind),
	)

	return cfg, nil
}
