package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StorageConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetAPIPrefix() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Storage
}

var _ Config = mainConfig{}

// Load reads an optional .env file and then parses the process environment
// into a Config. It is called once from main; nothing else reads the environment.
func Load() (Config, error) {
	// The .env file is optional
	_ = godotenv.Load()

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config Load] failed to parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects configurations that must never reach production.
func (c mainConfig) Validate() error {
	var errs []error
	if c.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	if c.IsProduction() {
		errs = append(errs, c.Security.validateForProduction()...)
	}
	return errors.Join(errs...)
}
