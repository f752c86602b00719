package auth

import (
	"context"

	"github.com/jrsteele09/infonow-server/identity"
	"github.com/jrsteele09/infonow-server/token"
	"github.com/jrsteele09/infonow-server/token/refresh"
	"github.com/jrsteele09/infonow-server/users"
)

// Repos holds the storage dependencies of the Service
type Repos struct {
	Users         users.Repo
	RefreshTokens *refresh.Store
}

// TokenManager issues and verifies session tokens. *token.Manager satisfies it.
type TokenManager interface {
	GenerateAccessToken(p token.Payload) (string, error)
	GenerateRefreshToken(p token.Payload) (string, error)
	VerifyRefreshToken(rawToken string) (token.Payload, error)
}

// CodeExchanger turns a Google authorization code into verified claims.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*identity.Claims, error)
}
