// Package token issues and verifies the access and refresh tokens that back a
// browser session. Both are HS256 JWTs carrying {userId, email}; they differ in
// secret and lifetime.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Payload is the identity bound into every session token.
type Payload struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// Claims is the decoded form of a session token.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Config supplies the secrets and lifetimes. It is satisfied by config.Config.
type Config interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Manager struct {
	accessSigner       Signer
	refreshSigner      Signer
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

func NewManager(cfg Config) *Manager {
	m := &Manager{
		accessSigner:       NewHMACSigner(cfg.GetAccessTokenSecret()),
		refreshSigner:      NewHMACSigner(cfg.GetRefreshTokenSecret()),
		accessTokenExpiry:  cfg.GetAccessTokenExpiry(),
		refreshTokenExpiry: cfg.GetRefreshTokenExpiry(),
	}
	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}

// GenerateAccessToken signs a short-lived token with the access secret.
func (m *Manager) GenerateAccessToken(p Payload) (string, error) {
	return m.generate(p, m.accessSigner, m.accessTokenExpiry)
}

// GenerateRefreshToken signs a long-lived token with the refresh secret.
// Every call yields a distinct token because of the jti claim.
func (m *Manager) GenerateRefreshToken(p Payload) (string, error) {
	return m.generate(p, m.refreshSigner, m.refreshTokenExpiry)
}

// VerifyAccessToken fails with ErrInvalidOrExpiredToken when the signature does
// not match the access secret or the token has expired.
func (m *Manager) VerifyAccessToken(rawToken string) (Payload, error) {
	return m.verify(rawToken, m.accessSigner)
}

// VerifyRefreshToken is VerifyAccessToken against the refresh secret.
func (m *Manager) VerifyRefreshToken(rawToken string) (Payload, error) {
	return m.verify(rawToken, m.refreshSigner)
}

func (m *Manager) generate(p Payload, signer Signer, expiry time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		UserID: p.UserID,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("[token generate] %w", err)
	}
	return signed, nil
}

func (m *Manager) verify(rawToken string, signer Signer) (Payload, error) {
	if rawToken == "" {
		return Payload{}, apperrors.Kindf(apperrors.ErrInvalidOrExpiredToken, nil, "empty token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		return Payload{}, apperrors.Kindf(apperrors.ErrInvalidOrExpiredToken, err, "verify token")
	}
	if !parsed.Valid {
		return Payload{}, apperrors.Kindf(apperrors.ErrInvalidOrExpiredToken, nil, "verify token")
	}
	return Payload{UserID: claims.UserID, Email: claims.Email}, nil
}
