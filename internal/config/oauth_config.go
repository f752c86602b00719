package config

import "time"

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type OAuth struct {
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `env:"GOOGLE_REDIRECT_URL" envDefault:"postmessage"` // popup code flow of the Google JS client
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"168h"` // 7 days
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGoogleClientID() string {
	return o.GoogleClientID
}

// GetGoogleClientSecret is optional. When empty the authorization-code login is disabled.
func (o OAuth) GetGoogleClientSecret() string {
	return o.GoogleClientSecret
}

func (o OAuth) GetGoogleRedirectURL() string {
	return o.GoogleRedirectURL
}

func (o OAuth) GetAccessTokenExpiry() time.Duration {
	return o.AccessTokenExpiry
}

func (o OAuth) GetRefreshTokenExpiry() time.Duration {
	return o.RefreshTokenExpiry
}
