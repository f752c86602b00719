// Package auth runs the session flows: Google login, access-token refresh and
// logout. HTTP concerns such as cookies live in the server package.
package auth

import (
	"context"
	"errors"

	"github.com/jrsteele09/infonow-server/identity"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token"
	"github.com/jrsteele09/infonow-server/users"
	"github.com/rs/zerolog/log"
)

// Client redirect hints returned with a login.
const (
	RedirectOnboarding = "/home?modal=preferences"
	RedirectHome       = "/home"
	RedirectEntry      = "/"
)

const (
	MessageUserCreated  = "User created successfully"
	MessageUserLoggedIn = "User logged in successfully"
)

// LoginResult is a completed login: the user, a fresh token pair and where
// the client should go next.
type LoginResult struct {
	User         *users.User
	Created      bool
	Message      string
	Redirect     string
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repos     Repos
	tokens    TokenManager
	verifier  identity.Verifier
	exchanger CodeExchanger
}

type ServiceOption func(*Service)

// WithCodeExchanger enables LoginWithCode.
func WithCodeExchanger(ex CodeExchanger) ServiceOption {
	return func(s *Service) {
		s.exchanger = ex
	}
}

func NewService(repos Repos, tokens TokenManager, verifier identity.Verifier, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[NewService] RefreshTokens store is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewService] identity verifier is required")
	}

	s := &Service{
		repos:    repos,
		tokens:   tokens,
		verifier: verifier,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// CodeLoginEnabled reports whether an authorization-code exchanger is configured.
func (s *Service) CodeLoginEnabled() bool {
	return s.exchanger != nil
}

// Login verifies a Google ID token, finds or creates the user by email and
// issues a session. Every failure after the empty-token check is reported as
// ErrAuthenticationFailed.
func (s *Service) Login(ctx context.Context, rawIDToken string) (*LoginResult, error) {
	if rawIDToken == "" {
		return nil, apperrors.Kindf(apperrors.ErrBadRequest, NoTokenErr, "[Login]")
	}
	log.Info().Int("tokenLength", len(rawIDToken)).Msg("Got Google token for authentication")

	claims, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, loginFailed(err)
	}
	return s.completeLogin(ctx, claims)
}

// LoginWithCode exchanges an authorization code for an ID token and then
// behaves like Login.
func (s *Service) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	if s.exchanger == nil {
		return nil, apperrors.Kindf(apperrors.ErrUnsupported, CodeLoginDisabledErr, "[LoginWithCode]")
	}
	if code == "" {
		return nil, apperrors.Kindf(apperrors.ErrBadRequest, NoCodeErr, "[LoginWithCode]")
	}

	claims, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, loginFailed(err)
	}
	return s.completeLogin(ctx, claims)
}

func (s *Service) completeLogin(ctx context.Context, claims *identity.Claims) (*LoginResult, error) {
	if claims == nil || claims.Email == "" {
		return nil, loginFailed(MissingIdentityClaimsErr)
	}
	email := users.NormalizeEmail(claims.Email)
	log.Info().Str("email", email).Msg("Successfully verified user")

	user, err := s.repos.Users.GetByEmail(ctx, email)
	created := false
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		user, created, err = s.repos.Users.CreateOrGet(ctx, &users.User{
			Email:      email,
			Name:       claims.Name,
			PictureURL: claims.Picture,
		})
		if err != nil {
			return nil, loginFailed(err)
		}
	case err != nil:
		return nil, loginFailed(err)
	}

	result := &LoginResult{
		User:     user,
		Created:  created,
		Message:  MessageUserLoggedIn,
		Redirect: RedirectHome,
	}
	if created {
		result.Message = MessageUserCreated
		result.Redirect = RedirectOnboarding
		log.Info().Str("email", user.Email).Int64("userId", user.ID).Msg("Created new user")
	}

	payload := token.Payload{UserID: user.ID, Email: user.Email}
	if result.AccessToken, err = s.tokens.GenerateAccessToken(payload); err != nil {
		return nil, loginFailed(err)
	}
	if result.RefreshToken, err = s.tokens.GenerateRefreshToken(payload); err != nil {
		return nil, loginFailed(err)
	}
	if err := s.repos.RefreshTokens.StoreRefreshToken(ctx, user.ID, result.RefreshToken); err != nil {
		return nil, loginFailed(err)
	}
	return result, nil
}

// Refresh issues a new access token for a refresh token that is both
// signature-valid and still present in the store. The refresh token itself is
// not rotated.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (string, error) {
	if rawRefreshToken == "" {
		return "", apperrors.Kindf(apperrors.ErrAuthenticationFailed, RefreshTokenNotFoundErr, "[Refresh]")
	}

	payload, err := s.tokens.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		return "", refreshFailed(err)
	}

	stored, err := s.repos.RefreshTokens.FindRefreshToken(ctx, rawRefreshToken)
	if err != nil {
		log.Err(err).Int64("userId", payload.UserID).Msg("Refresh token lookup failed")
		return "", refreshFailed(err)
	}
	if stored == nil {
		return "", refreshFailed(InvalidRefreshTokenErr)
	}
	if stored.UserID != payload.UserID {
		return "", refreshFailed(RefreshTokenMismatchErr)
	}

	access, err := s.tokens.GenerateAccessToken(payload)
	if err != nil {
		return "", apperrors.Kindf(apperrors.ErrInternal, err, "[Refresh]")
	}
	return access, nil
}

// Logout revokes the presented refresh token. A missing or already revoked
// token is not an error.
func (s *Service) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}
	err := s.repos.RefreshTokens.DeleteRefreshToken(ctx, rawRefreshToken)
	if err == nil || apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return apperrors.Kindf(apperrors.ErrInternal, err, "[Logout]")
}

// LogoutEverywhere revokes every refresh token of the user.
func (s *Service) LogoutEverywhere(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repos.RefreshTokens.DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return 0, apperrors.Kindf(apperrors.ErrInternal, err, "[LogoutEverywhere]")
	}
	log.Info().Int64("userId", userID).Int64("revoked", n).Msg("Revoked all sessions")
	return n, nil
}

// loginFailed collapses any failure into ErrAuthenticationFailed. Identity
// verification messages are kept; storage and signing failures are logged and
// replaced by LoginUnavailableErr.
func loginFailed(err error) error {
	if apperrors.Is(err, apperrors.ErrAuthenticationFailed) || apperrors.Is(err, MissingIdentityClaimsErr) {
		return apperrors.Kindf(apperrors.ErrAuthenticationFailed, nil, "[Login] %v", err)
	}
	log.Err(err).Msg("Login could not be completed")
	return apperrors.Kindf(apperrors.ErrAuthenticationFailed, LoginUnavailableErr, "[Login]")
}

// refreshFailed never carries the cause text; it is logged instead.
func refreshFailed(err error) error {
	log.Debug().Err(err).Msg("Refresh rejected")
	return apperrors.Kindf(apperrors.ErrAuthenticationFailed, InvalidRefreshTokenErr, "[Refresh]")
}
