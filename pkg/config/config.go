package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for gaitguard-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional, used for check-in send dedupe)
	Redis RedisConfig `yaml:"redis"`

	// Vision model endpoint (OpenAI-compatible VLM)
	Vision VisionConfig `yaml:"vision"`

	// Coaching model (Anthropic)
	Coach CoachConfig `yaml:"coach"`

	// Poke messaging configuration
	Poke PokeConfig `yaml:"poke"`

	// MigrationsPath is the directory containing SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// SessionSecret signs the consultation session cookie.
	// Server will fail to start if this is not set.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWTSecret is the HMAC key for locally issued tokens.
	JWTSecret string `yaml:"-" env:"AUTH_JWT_SECRET"` // Secret - not in YAML

	// JWKSURL, when set, verifies tokens against a remote JWKS instead of
	// the HMAC secret.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL" env-default:""`

	// Issuer is the expected token issuer when verification is enabled.
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:"https://auth.gaitguard.app"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"gaitguard"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"gaitguard_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis configuration. An empty host disables Redis.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// VisionConfig holds the OpenAI-compatible vision model endpoint settings.
type VisionConfig struct {
	Endpoint string `yaml:"endpoint" env:"VISION_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"VISION_MODEL" env-default:"gpt-4o"`
	APIKey   string `yaml:"-" env:"VISION_API_KEY"` // Secret - not in YAML
}

// CoachConfig holds the Anthropic coaching model settings.
type CoachConfig struct {
	Model     string `yaml:"model" env:"COACH_MODEL" env-default:"claude-sonnet-4-20250514"`
	MaxTokens int    `yaml:"max_tokens" env:"COACH_MAX_TOKENS" env-default:"4096"`
	APIKey    string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// PokeConfig holds the Poke messaging API settings.
type PokeConfig struct {
	BaseURL string `yaml:"base_url" env:"POKE_BASE_URL" env-default:"https://poke.com/api/v1"`
	APIKey  string `yaml:"-" env:"POKE_API_KEY"` // Secret - not in YAML

	// MockMode logs messages instead of sending them. Also implied when no
	// API key is configured.
	MockMode bool `yaml:"mock_mode" env:"POKE_MOCK_MODE" env-default:"false"`
}

// IsAvailable returns true if Poke sending is configured for real delivery.
func (c *PokeConfig) IsAvailable() bool {
	return c.APIKey != "" && !c.MockMode
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Environment variables override YAML values. Secrets (PGPASSWORD, API keys,
// SESSION_SECRET) must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// A missing file is fine: env vars and defaults cover everything.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns a postgres:// connection URL for pgxpool and golang-migrate.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.SSLMode)
}
