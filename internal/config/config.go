package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Cache    CacheConfig
	Services ServicesConfig
	Bonus    BonusConfig
	ClaimLog ClaimLogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"daily-bonus-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	AdminKey    string `envconfig:"ADMIN_KEY" default:""` // Admin endpoints key
}

// CacheConfig holds cache settings. The cache is the only claim-state storage.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"redis"` // redis or memory

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ServicesConfig holds the collaborating microservice endpoints.
type ServicesConfig struct {
	PlayerURL   string        `envconfig:"PLAYER_SERVICE_URL" default:"http://player-ms:3000"`
	CurrencyURL string        `envconfig:"CURRENCY_SERVICE_URL" default:"http://currency-ms:3000"`
	Timeout     time.Duration `envconfig:"SERVICE_TIMEOUT" default:"10s"`
}

// BonusConfig holds daily bonus settings.
type BonusConfig struct {
	// ClaimTTL is how long a claim record stays readable. 48h keeps
	// yesterday's record visible for the whole of today and no longer.
	ClaimTTL time.Duration `envconfig:"BONUS_CLAIM_TTL" default:"48h"`

	// RewardMultiplier scales the payout amount: amount = multiplier * streak.
	RewardMultiplier int `envconfig:"BONUS_REWARD_MULTIPLIER" default:"128"`

	// IdentityCacheTTL bounds how long token resolutions are memoized.
	IdentityCacheTTL time.Duration `envconfig:"IDENTITY_CACHE_TTL" default:"1m"`
}

// ClaimLogConfig holds claim audit log settings.
type ClaimLogConfig struct {
	Type string `envconfig:"CLAIM_LOG_TYPE" default:"sqlite"` // sqlite, postgres, mysql, or none
	Path string `envconfig:"CLAIM_LOG_PATH" default:"./data/claims.db"`

	// PostgreSQL settings
	Host     string `envconfig:"CLAIM_LOG_HOST" default:"localhost"`
	Port     int    `envconfig:"CLAIM_LOG_PORT" default:"5432"`
	Name     string `envconfig:"CLAIM_LOG_NAME" default:"daily_bonus"`
	User     string `envconfig:"CLAIM_LOG_USER" default:"postgres"`
	Password string `envconfig:"CLAIM_LOG_PASS" default:""`
	SSLMode  string `envconfig:"CLAIM_LOG_SSLMODE" default:"disable"`

	// Retention settings
	Retention       time.Duration `envconfig:"CLAIM_LOG_RETENTION" default:"720h"`
	CleanupInterval time.Duration `envconfig:"CLAIM_LOG_CLEANUP_INTERVAL" default:"24h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *ClaimLogConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (c *ClaimLogConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
