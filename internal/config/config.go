package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries all runtime settings, read from environment variables with
// a DENIALDESK_ prefix (or a local .env file in development).
type Config struct {
	ListenAddr     string  `mapstructure:"LISTEN_ADDR"`
	Env            string  `mapstructure:"ENV"`
	DatabaseURL    string  `mapstructure:"DATABASE_URL"`
	SessionSecret  string  `mapstructure:"SESSION_SECRET"`
	SessionTTL     string  `mapstructure:"SESSION_TTL"`
	TokenIssuer    string  `mapstructure:"TOKEN_ISSUER"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	MaxUploadBytes int64   `mapstructure:"MAX_UPLOAD_BYTES"`
	MigrationsDir  string  `mapstructure:"MIGRATIONS_DIR"`
	SeedsDir       string  `mapstructure:"SEEDS_DIR"`
	CookieSecure   bool    `mapstructure:"COOKIE_SECURE"`
}

const envPrefix = "DENIALDESK"

var keys = []string{
	"LISTEN_ADDR", "ENV", "DATABASE_URL", "SESSION_SECRET", "SESSION_TTL",
	"TOKEN_ISSUER", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_UPLOAD_BYTES",
	"MIGRATIONS_DIR", "SEEDS_DIR", "COOKIE_SECURE",
}

// Load reads configuration from the environment, falling back to a .env file
// when present.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("TOKEN_ISSUER", "denialdesk")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("MAX_UPLOAD_BYTES", 16<<20)
	v.SetDefault("MIGRATIONS_DIR", "ops/migrations/sql")
	v.SetDefault("SEEDS_DIR", "ops/seeds")
	v.SetDefault("COOKIE_SECURE", false)

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	// .env is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionDuration parses the configured session TTL.
func (c *Config) SessionDuration() (time.Duration, error) {
	return time.ParseDuration(c.SessionTTL)
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s_DATABASE_URL is required", envPrefix)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("%s_SESSION_SECRET is required", envPrefix)
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return fmt.Errorf("%s_SESSION_SECRET must be at least 32 bytes in production", envPrefix)
	}
	if _, err := c.SessionDuration(); err != nil {
		return fmt.Errorf("%s_SESSION_TTL is not a valid duration: %w", envPrefix, err)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%s_MAX_UPLOAD_BYTES must be positive", envPrefix)
	}
	return nil
}
