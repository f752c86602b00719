package config

import (
	"errors"
	"time"
)

// Development-only signing secrets. Validate refuses them when ENV=PROD.
const (
	DefaultAccessTokenSecret  = "infonow-dev-access-secret"
	DefaultRefreshTokenSecret = "infonow-dev-refresh-secret"
)

type SecurityConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	UsesDefaultSecrets() bool
	GetMaxSessionsPerUser() int
	GetRefreshSweepInterval() time.Duration
}

type Security struct {
	AccessTokenSecret    string        `env:"ACCESS_TOKEN_SECRET" envDefault:"infonow-dev-access-secret"`
	RefreshTokenSecret   string        `env:"REFRESH_TOKEN_SECRET" envDefault:"infonow-dev-refresh-secret"`
	MaxSessionsPerUser   int           `env:"MAX_SESSIONS_PER_USER" envDefault:"10"`
	RefreshSweepInterval time.Duration `env:"REFRESH_SWEEP_INTERVAL" envDefault:"1h"`
}

var _ SecurityConfig = Security{}

func (s Security) GetAccessTokenSecret() string {
	return s.AccessTokenSecret
}

func (s Security) GetRefreshTokenSecret() string {
	return s.RefreshTokenSecret
}

func (s Security) UsesDefaultSecrets() bool {
	return s.AccessTokenSecret == DefaultAccessTokenSecret || s.RefreshTokenSecret == DefaultRefreshTokenSecret
}

// GetMaxSessionsPerUser caps the refresh tokens kept per user. Zero or less disables the cap.
func (s Security) GetMaxSessionsPerUser() int {
	return s.MaxSessionsPerUser
}

func (s Security) GetRefreshSweepInterval() time.Duration {
	return s.RefreshSweepInterval
}

func (s Security) validateForProduction() []error {
	var errs []error
	if s.AccessTokenSecret == "" || s.AccessTokenSecret == DefaultAccessTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET must be set in production"))
	}
	if s.RefreshTokenSecret == "" || s.RefreshTokenSecret == DefaultRefreshTokenSecret {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET must be set in production"))
	}
	if s.AccessTokenSecret != "" && s.AccessTokenSecret == s.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	return errs
}
