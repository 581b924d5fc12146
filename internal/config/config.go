package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// SportsDataIO API (team stats, schedules, injuries)
	SportsDataAPIKey     string        `envconfig:"SPORTSDATA_API_KEY" required:"true"`
	SportsDataNBABaseURL string        `envconfig:"SPORTSDATA_NBA_BASE_URL" default:"https://api.sportsdata.io/v3/nba"`
	SportsDataNFLBaseURL string        `envconfig:"SPORTSDATA_NFL_BASE_URL" default:"https://api.sportsdata.io/v3/nfl"`
	SportsDataTimeout    time.Duration `envconfig:"SPORTSDATA_TIMEOUT" default:"30s"`

	// Odds feed
	OddsAPIKey         string        `envconfig:"ODDS_API_KEY" required:"true"`
	OddsBaseURL        string        `envconfig:"ODDS_BASE_URL" default:"https://api.sportsdata.io/v3"`
	OddsTimeout        time.Duration `envconfig:"ODDS_TIMEOUT" default:"30s"`
	PreferredBookmaker string        `envconfig:"PREFERRED_BOOKMAKER" default:"consensus"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"scoreline"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"scoreline_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP API
	ServerPort int `envconfig:"SERVER_PORT" default:"8080"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`
	OddsPollInterval   int    `envconfig:"ODDS_POLL_INTERVAL" default:"300"` // seconds

	// API Rate Limiting
	APIRateLimit  int `envconfig:"API_RATE_LIMIT" default:"100"`
	APIBurstLimit int `envconfig:"API_BURST_LIMIT" default:"20"`

	// Caching TTL (in seconds)
	CacheTTLTeams       int `envconfig:"CACHE_TTL_TEAMS" default:"86400"`     // 24 hours
	CacheTTLSnapshots   int `envconfig:"CACHE_TTL_SNAPSHOTS" default:"3600"`  // 1 hour
	CacheTTLOdds        int `envconfig:"CACHE_TTL_ODDS" default:"300"`        // 5 minutes
	CacheTTLPredictions int `envconfig:"CACHE_TTL_PREDICTIONS" default:"600"` // 10 minutes

	// Alerts
	EnableAlerts  bool   `envconfig:"ENABLE_ALERTS" default:"true"`
	AlertsListKey string `envconfig:"ALERTS_LIST_KEY" default:"scoreline:alerts"`
	AlertsMaxLen  int64  `envconfig:"ALERTS_MAX_LEN" default:"500"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportsDataAPIKey == "" {
		return fmt.Errorf("SPORTSDATA_API_KEY is required")
	}

	if c.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.OddsPollInterval <= 0 {
		return fmt.Errorf("ODDS_POLL_INTERVAL must be positive")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// SportsDataBaseURL returns the stats feed base URL for a sport key
// ("nba" or "nfl").
func (c *Config) SportsDataBaseURL(sport string) string {
	if sport == "nfl" {
		return c.SportsDataNFLBaseURL
	}
	return c.SportsDataNBABaseURL
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
