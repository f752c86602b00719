package refreshrepopg_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token/refresh"
	refreshrepopg "github.com/jrsteele09/infonow-server/token/refresh/repopg"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*refreshrepopg.RefreshTokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	return refreshrepopg.New(conn), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rt := &refresh.StoredRefreshToken{TokenHash: "h1", UserID: 4, ExpiresAt: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectExec(`INSERT INTO refresh_tokens \(token_hash, user_id, expires_at, created_at\)`).
		WithArgs("h1", int64(4), rt.ExpiresAt, rt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), rt))
}

func TestCreate_MapsDriverErrors(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rt := &refresh.StoredRefreshToken{TokenHash: "h1", UserID: 4}

	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, repo.Create(context.Background(), rt), apperrors.ErrAlreadyExists)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(&pgconn.PgError{Code: "23503"})
	require.ErrorIs(t, repo.Create(context.Background(), rt), apperrors.ErrNotFound)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(errors.New("db down"))
	require.ErrorIs(t, repo.Create(context.Background(), rt), apperrors.ErrPersistence)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT token_hash, user_id, expires_at, created_at\s+FROM refresh_tokens\s+WHERE token_hash = \$1`).
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at", "created_at"}).
			AddRow("h1", int64(4), now.Add(time.Hour), now))

	rt, err := repo.Get(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, int64(4), rt.UserID)
	require.Equal(t, now.Add(time.Hour), rt.ExpiresAt)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM refresh_tokens`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at", "created_at"}))

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "h1"))

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "h1"), apperrors.ErrNotFound)
}

func TestBulkDeletes(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteByUserID(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 5))
	n, err = repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)

	mock.ExpectExec(`(?s)DELETE FROM refresh_tokens\s+WHERE user_id = \$1\s+AND token_hash NOT IN.*LIMIT \$2`).
		WithArgs(int64(4), 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err = repo.TrimUser(context.Background(), 4, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestBulkDeletes_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id`).WillReturnError(errors.New("db down"))
	_, err := repo.DeleteByUserID(context.Background(), 4)
	require.ErrorIs(t, err, apperrors.ErrPersistence)
}
