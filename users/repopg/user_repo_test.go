package userrepopg_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/users"
	userrepopg "github.com/jrsteele09/infonow-server/users/repopg"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "name", "picture_url", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*userrepopg.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	return userrepopg.New(conn), mock
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "a@example.com", "Alice", "https://pic", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, &users.User{ID: 1, Email: "a@example.com", Name: "Alice", PictureURL: "https://pic", CreatedAt: now, UpdatedAt: now}, u)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 7)
	require.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestCreateOrGet_Inserts(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO NOTHING")).
		WithArgs("new-user@example.com", "New User", "https://pic").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(10), "new-user@example.com", "New User", "https://pic", now, now))

	u, created, err := repo.CreateOrGet(context.Background(), &users.User{Email: "new-user@example.com", Name: "New User", PictureURL: "https://pic"})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(10), u.ID)
}

func TestCreateOrGet_ConflictFallsBackToSelect(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO NOTHING")).
		WithArgs("race@example.com", "", "").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("race@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(3), "race@example.com", "", "", now, now))

	u, created, err := repo.CreateOrGet(context.Background(), &users.User{Email: "race@example.com"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, int64(3), u.ID)
}

func TestUpdateName(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = $2")).
		WithArgs(int64(3), "Bob").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(3), "b@example.com", "Bob", "", now, now))

	u, err := repo.UpdateName(context.Background(), 3, "Bob")
	require.NoError(t, err)
	require.Equal(t, "Bob", u.Name)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = $2")).
		WithArgs(int64(4), "Nobody").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = repo.UpdateName(context.Background(), 4, "Nobody")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
