package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/infonow-server/auth"
	"github.com/jrsteele09/infonow-server/identity"
	"github.com/jrsteele09/infonow-server/identity/identityfake"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token"
	"github.com/jrsteele09/infonow-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/infonow-server/token/refresh/repofake"
	"github.com/jrsteele09/infonow-server/users"
	fakeuserrepo "github.com/jrsteele09/infonow-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	newUserToken      = "google-id-token-new-user"
	existingUserToken = "google-id-token-existing"
	newUserEmail      = "new-user@example.com"
	existingEmail     = "existing@example.com"
)

type testConfig struct{}

func (testConfig) GetAccessTokenSecret() string         { return "access-secret" }
func (testConfig) GetRefreshTokenSecret() string        { return "refresh-secret" }
func (testConfig) GetAccessTokenExpiry() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenExpiry() time.Duration { return 7 * 24 * time.Hour }
func (testConfig) GetMaxSessionsPerUser() int           { return 0 }

// testFixture holds all test dependencies
type testFixture struct {
	userRepo    *fakeuserrepo.FakeUserRepo
	refreshRepo *refreshrepofake.FakeRefreshTokenRepo
	tokens      *token.Manager
	verifier    *identityfake.FakeVerifier
	service     *auth.Service
}

type fakeExchanger struct {
	verifier identity.Verifier
}

func (e fakeExchanger) Exchange(ctx context.Context, code string) (*identity.Claims, error) {
	return e.verifier.Verify(ctx, "code:"+code)
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, opts ...auth.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		refreshRepo: refreshrepofake.NewFakeRefreshTokenRepo(),
		tokens:      token.NewManager(testConfig{}),
		verifier:    identityfake.NewFakeVerifier(),
	}
	f.verifier.Add(newUserToken, identity.Claims{Subject: "sub-new", Email: newUserEmail, Name: "New User", Picture: "https://pic/new"})
	f.verifier.Add(existingUserToken, identity.Claims{Subject: "sub-existing", Email: existingEmail, Name: "Existing"})

	svc, err := auth.NewService(auth.Repos{
		Users:         f.userRepo,
		RefreshTokens: refresh.NewStore(f.refreshRepo, testConfig{}),
	}, f.tokens, f.verifier, opts...)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *testFixture) createUser(t *testing.T, email string) *users.User {
	t.Helper()
	u, created, err := f.userRepo.CreateOrGet(context.Background(), &users.User{Email: email, Name: "Existing"})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(auth.Repos{}, nil, nil)
	require.Error(t, err)
}

func TestLogin_NewUser(t *testing.T) {
	f := setupTestFixture(t)

	res, err := f.service.Login(context.Background(), newUserToken)
	require.NoError(t, err)

	require.True(t, res.Created)
	require.Equal(t, newUserEmail, res.User.Email)
	require.Equal(t, "New User", res.User.Name)
	require.Equal(t, "https://pic/new", res.User.PictureURL)
	require.Equal(t, auth.RedirectOnboarding, res.Redirect)
	require.Equal(t, auth.MessageUserCreated, res.Message)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	require.Equal(t, 1, f.userRepo.Count())
	require.Equal(t, 1, f.refreshRepo.Count(res.User.ID))

	payload, err := f.tokens.VerifyAccessToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, token.Payload{UserID: res.User.ID, Email: newUserEmail}, payload)
}

func TestLogin_ExistingUser(t *testing.T) {
	f := setupTestFixture(t)
	existing := f.createUser(t, existingEmail)

	first, err := f.service.Login(context.Background(), existingUserToken)
	require.NoError(t, err)
	second, err := f.service.Login(context.Background(), existingUserToken)
	require.NoError(t, err)

	for _, res := range []*auth.LoginResult{first, second} {
		require.False(t, res.Created)
		require.Equal(t, existing, res.User)
		require.Equal(t, auth.RedirectHome, res.Redirect)
	}
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, 1, f.userRepo.Count())
	require.Equal(t, 2, f.refreshRepo.Count(existing.ID))
}

func TestLogin_NoToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	require.ErrorIs(t, err, auth.NoTokenErr)
}

func TestLogin_FailuresAreAuthenticationFailures(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "forged-token")
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)

	f.userRepo.Err = apperrors.Kindf(apperrors.ErrPersistence, errors.New("db down"), "select user")
	_, err = f.service.Login(context.Background(), newUserToken)
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
	require.NotErrorIs(t, err, apperrors.ErrPersistence)
	require.ErrorIs(t, err, auth.LoginUnavailableErr)
	require.NotContains(t, err.Error(), "db down")
}

func TestLogin_VerifierMessageIsKept(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "forged-token")
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
	require.NotErrorIs(t, err, auth.LoginUnavailableErr)
	require.Contains(t, err.Error(), "unknown id token")
}

func TestRefresh_StoreFailureHidesCause(t *testing.T) {
	f := setupTestFixture(t)
	res, err := f.service.Login(context.Background(), newUserToken)
	require.NoError(t, err)

	f.refreshRepo.GetErr = apperrors.Kindf(apperrors.ErrPersistence, errors.New("connection to 10.0.3.7:5432 refused"), "get refresh token")
	_, err = f.service.Refresh(context.Background(), res.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
	require.ErrorIs(t, err, auth.InvalidRefreshTokenErr)
	require.NotErrorIs(t, err, apperrors.ErrPersistence)
	require.NotContains(t, err.Error(), "10.0.3.7")
}

func TestLoginWithCode(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.LoginWithCode(context.Background(), "abc")
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
	require.False(t, f.service.CodeLoginEnabled())

	f = setupTestFixture(t)
	f.service, err = auth.NewService(auth.Repos{
		Users:         f.userRepo,
		RefreshTokens: refresh.NewStore(f.refreshRepo, testConfig{}),
	}, f.tokens, f.verifier, auth.WithCodeExchanger(fakeExchanger{verifier: f.verifier}))
	require.NoError(t, err)
	f.verifier.Add("code:abc", identity.Claims{Email: "coder@example.com"})

	res, err := f.service.LoginWithCode(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, "coder@example.com", res.User.Email)

	_, err = f.service.LoginWithCode(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = f.service.LoginWithCode(context.Background(), "unknown")
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
}

func TestRefresh(t *testing.T) {
	f := setupTestFixture(t)
	res, err := f.service.Login(context.Background(), newUserToken)
	require.NoError(t, err)

	access, err := f.service.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)

	payload, err := f.tokens.VerifyAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, payload.UserID)
}

func TestRefresh_RevokedTokenFailsDespiteValidSignature(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	res, err := f.service.Login(ctx, newUserToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, res.RefreshToken))

	_, err = f.tokens.VerifyRefreshToken(res.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
	require.ErrorIs(t, err, auth.InvalidRefreshTokenErr)
}

func TestRefresh_MissingAndInvalid(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Refresh(context.Background(), "")
	require.ErrorIs(t, err, auth.RefreshTokenNotFoundErr)
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)

	_, err = f.service.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, auth.InvalidRefreshTokenErr)

	access, err := f.tokens.GenerateAccessToken(token.Payload{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)
	_, err = f.service.Refresh(context.Background(), access)
	require.ErrorIs(t, err, auth.InvalidRefreshTokenErr)
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	res, err := f.service.Login(ctx, newUserToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, res.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, res.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, ""))
	require.Equal(t, 0, f.refreshRepo.Count(0))
}

func TestLogoutEverywhere(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	var last *auth.LoginResult
	for range 3 {
		res, err := f.service.Login(ctx, newUserToken)
		require.NoError(t, err)
		last = res
	}

	n, err := f.service.LogoutEverywhere(ctx, last.User.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	_, err = f.service.Refresh(ctx, last.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
}
