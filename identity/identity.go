// Package identity verifies Google ID tokens and exchanges authorization codes
// for them.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
)

const (
	GoogleIssuer  = "https://accounts.google.com"
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// UnverifiedEmailErr rejects ID tokens whose email Google has not verified.
var UnverifiedEmailErr = errors.New("google email address is not verified")

// Claims are the verified identity facts taken from an ID token.
type Claims struct {
	Subject       string
	Issuer        string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Verifier validates an externally issued identity token.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Claims, error)
}

type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ Verifier = (*GoogleVerifier)(nil)

type verifierOptions struct {
	keySet oidc.KeySet
	issuer string
	now    func() time.Time
}

type VerifierOption func(*verifierOptions)

// WithKeySet replaces Google's remote JWKS, mainly for tests.
func WithKeySet(ks oidc.KeySet) VerifierOption {
	return func(o *verifierOptions) {
		o.keySet = ks
	}
}

func WithNowTime(now func() time.Time) VerifierOption {
	return func(o *verifierOptions) {
		o.now = now
	}
}

// NewGoogleVerifier checks signature, expiry, audience == clientID and the
// Google issuer. Both "https://accounts.google.com" and the scheme-less form
// are accepted.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...VerifierOption) *GoogleVerifier {
	o := verifierOptions{issuer: GoogleIssuer}
	for _, opt := range opts {
		opt(&o)
	}
	if o.keySet == nil {
		o.keySet = oidc.NewRemoteKeySet(ctx, GoogleJWKSURL)
	}

	return &GoogleVerifier{
		verifier: oidc.NewVerifier(o.issuer, o.keySet, &oidc.Config{
			ClientID: clientID,
			Now:      o.now,
		}),
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	if rawIDToken == "" {
		return nil, apperrors.Kindf(apperrors.ErrBadRequest, nil, "No token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, err, "verify google id token")
	}

	var payload struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, err, "no user payload in google token")
	}
	if payload.Email == "" {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, nil, "no email in google token")
	}
	// Email is the login key, so an unverified address must not reach the directory.
	if !payload.EmailVerified {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, UnverifiedEmailErr, "[Verify]")
	}

	return &Claims{
		Subject:       idToken.Subject,
		Issuer:        idToken.Issuer,
		Email:         payload.Email,
		EmailVerified: payload.EmailVerified,
		Name:          payload.Name,
		Picture:       payload.Picture,
	}, nil
}
