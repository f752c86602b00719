// Package userrepopg is the Postgres user directory.
package userrepopg

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/infonow-server/internal/db"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/users"
)

var _ users.Repo = (*UserRepo)(nil)

const userColumns = `id, email, COALESCE(name, ''), COALESCE(picture_url, ''), created_at, updated_at`

type UserRepo struct {
	db db.DBTX
}

func New(conn db.DBTX) *UserRepo {
	return &UserRepo{db: conn}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepo) CreateOrGet(ctx context.Context, u *users.User) (*users.User, bool, error) {
	query := `
		INSERT INTO users (email, name, picture_url)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query, u.Email, u.Name, u.PictureURL))
	if err == nil {
		return created, true, nil
	}
	if !db.IsNotFoundError(err) {
		return nil, false, apperrors.Kindf(apperrors.ErrPersistence, err, "insert user %s", u.Email)
	}

	// The insert lost the race for this email; read the winner.
	existing, err := r.GetByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, id int64, name string) (*users.User, error) {
	query := `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, query, id, name)
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if db.IsNotFoundError(err) {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "user")
	}
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user")
	}
	return u, nil
}

func scanUser(row *sql.Row) (*users.User, error) {
	u := &users.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PictureURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
