package refresh_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/infonow-server/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	maxPerUser int
}

func (c testConfig) GetRefreshTokenExpiry() time.Duration { return 7 * 24 * time.Hour }
func (c testConfig) GetMaxSessionsPerUser() int           { return c.maxPerUser }

type testFixture struct {
	repo  *refreshrepofake.FakeRefreshTokenRepo
	store *refresh.Store
	now   time.Time
}

func setupTestFixture(t *testing.T, maxPerUser int) *testFixture {
	t.Helper()

	f := &testFixture{
		repo: refreshrepofake.NewFakeRefreshTokenRepo(),
		now:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.store = refresh.NewStore(f.repo, testConfig{maxPerUser: maxPerUser})

	original := refresh.NowTimeFunc
	refresh.NowTimeFunc = func() time.Time { return f.now }
	t.Cleanup(func() { refresh.NowTimeFunc = original })
	return f
}

func TestHashToken(t *testing.T) {
	h := refresh.HashToken("token-a")
	require.Len(t, h, 64)
	require.Equal(t, h, refresh.HashToken("token-a"))
	require.NotEqual(t, h, refresh.HashToken("token-b"))
	require.NotContains(t, h, "token-a")
}

func TestStoreAndFind(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "raw-token"))

	rt, err := f.store.FindRefreshToken(ctx, "raw-token")
	require.NoError(t, err)
	require.NotNil(t, rt)
	require.Equal(t, int64(1), rt.UserID)
	require.Equal(t, f.now.Add(7*24*time.Hour), rt.ExpiresAt)
	require.Equal(t, refresh.HashToken("raw-token"), rt.TokenHash)
}

func TestFind_UnknownTokenIsNil(t *testing.T) {
	f := setupTestFixture(t, 0)

	rt, err := f.store.FindRefreshToken(context.Background(), "never-stored")
	require.NoError(t, err)
	require.Nil(t, rt)
}

func TestFind_StoredExpiryIsAuthoritative(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "raw-token"))

	f.now = f.now.Add(7*24*time.Hour + time.Second)
	rt, err := f.store.FindRefreshToken(ctx, "raw-token")
	require.NoError(t, err)
	require.Nil(t, rt)
}

func TestDelete_ThenFindAndDeleteAgain(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "raw-token"))

	require.NoError(t, f.store.DeleteRefreshToken(ctx, "raw-token"))

	rt, err := f.store.FindRefreshToken(ctx, "raw-token")
	require.NoError(t, err)
	require.Nil(t, rt)

	err = f.store.DeleteRefreshToken(ctx, "raw-token")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUserRefreshTokens(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "a"))
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "b"))
	require.NoError(t, f.store.StoreRefreshToken(ctx, 2, "c"))

	n, err := f.store.DeleteUserRefreshTokens(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Equal(t, 0, f.repo.Count(1))
	require.Equal(t, 1, f.repo.Count(2))
}

func TestStore_EvictsOldestBeyondCap(t *testing.T) {
	f := setupTestFixture(t, 2)
	ctx := context.Background()

	for _, tok := range []string{"first", "second", "third"} {
		require.NoError(t, f.store.StoreRefreshToken(ctx, 1, tok))
		f.now = f.now.Add(time.Minute)
	}

	require.Equal(t, 2, f.repo.Count(1))
	rt, err := f.store.FindRefreshToken(ctx, "first")
	require.NoError(t, err)
	require.Nil(t, rt)

	for _, tok := range []string{"second", "third"} {
		rt, err := f.store.FindRefreshToken(ctx, tok)
		require.NoError(t, err)
		require.NotNil(t, rt, tok)
	}
}

func TestSweepExpired(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "old"))
	f.now = f.now.Add(3 * 24 * time.Hour)
	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "new"))

	f.now = f.now.Add(5 * 24 * time.Hour)
	n, err := f.store.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, 1, f.repo.Count(0))
}

func TestStartSweeper(t *testing.T) {
	f := setupTestFixture(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.store.StoreRefreshToken(ctx, 1, "a"))
	require.NoError(t, f.store.StoreRefreshToken(ctx, 2, "b"))
	f.now = f.now.Add(8 * 24 * time.Hour)

	done := f.store.StartSweeper(ctx, 10*time.Millisecond)
	require.Eventually(t, func() bool { return f.repo.Count(0) == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
