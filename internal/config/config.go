// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN (pgx stdlib driver).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the configured signing secret. The HS256 key is the SHA-256
	// digest of this string, so any length works; still, do not ship defaults.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTExpirationMs is the session token lifetime in milliseconds.
	JWTExpirationMs int64 `mapstructure:"JWT_EXPIRATION_MS"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// GoogleClientID / GoogleClientSecret are the OAuth2 client credentials for
	// the Google federated login flow.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	// OAuth2CallbackURL is the callback this server registers with the provider
	// (e.g. https://api.example.com/oauth2/callback/google).
	OAuth2CallbackURL string `mapstructure:"OAUTH2_CALLBACK_URL"`
	// OAuth2RedirectURI is the authorized post-login redirect base. The issued
	// token is appended as a query parameter to this URL.
	OAuth2RedirectURI string `mapstructure:"OAUTH2_REDIRECT_URI"`
	// OTLPEndpoint is the OTLP gRPC endpoint for telemetry export; empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_MS", 86_400_000) // 24h
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("OAUTH2_CALLBACK_URL", "")
	v.SetDefault("OAUTH2_REDIRECT_URI", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.JWTExpirationMs <= 0 {
		return nil, errors.New("config: JWT_EXPIRATION_MS must be positive")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL returns the session token lifetime as a time.Duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationMs) * time.Millisecond
}
