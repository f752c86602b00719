package identity

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"golang.org/x/oauth2"
)

// GoogleEndpoint is Google's OAuth2 endpoint.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// CodeExchanger trades an authorization code from the browser popup flow for
// an ID token and verifies it.
type CodeExchanger struct {
	conf     *oauth2.Config
	verifier Verifier
}

type ExchangerOption func(*oauth2.Config)

// WithEndpoint points the exchanger at another token endpoint.
func WithEndpoint(e oauth2.Endpoint) ExchangerOption {
	return func(c *oauth2.Config) {
		c.Endpoint = e
	}
}

func NewCodeExchanger(clientID, clientSecret, redirectURL string, verifier Verifier, opts ...ExchangerOption) *CodeExchanger {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     GoogleEndpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	for _, opt := range opts {
		opt(conf)
	}
	return &CodeExchanger{conf: conf, verifier: verifier}
}

func (c *CodeExchanger) Exchange(ctx context.Context, code string) (*Claims, error) {
	if code == "" {
		return nil, apperrors.Kindf(apperrors.ErrBadRequest, nil, "No code")
	}

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, err, "token exchange failed")
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, nil, "no id_token in token response")
	}
	return c.verifier.Verify(ctx, rawIDToken)
}
