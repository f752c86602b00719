// Package refreshrepopg stores refresh-token records in Postgres.
package refreshrepopg

import (
	"context"
	"time"

	"github.com/jrsteele09/infonow-server/internal/db"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token/refresh"
)

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

type RefreshTokenRepo struct {
	db db.DBTX
}

func New(conn db.DBTX) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: conn}
}

func (r *RefreshTokenRepo) Create(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, rt.TokenHash, rt.UserID, rt.ExpiresAt, rt.CreatedAt); err != nil {
		switch {
		case db.IsDuplicateKeyError(err):
			return apperrors.Kindf(apperrors.ErrAlreadyExists, err, "insert refresh token")
		case db.IsForeignKeyViolationError(err):
			return apperrors.Kindf(apperrors.ErrNotFound, err, "insert refresh token for user %d", rt.UserID)
		}
		return apperrors.Kindf(apperrors.ErrPersistence, err, "insert refresh token")
	}
	return nil
}

func (r *RefreshTokenRepo) Get(ctx context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	const query = `
		SELECT token_hash, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	rt := &refresh.StoredRefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&rt.TokenHash, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if db.IsNotFoundError(err) {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "refresh token")
	}
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select refresh token")
	}
	return rt, nil
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	n, err := r.exec(ctx, query, tokenHash)
	if err != nil {
		return apperrors.Kindf(apperrors.ErrPersistence, err, "delete refresh token")
	}
	if n == 0 {
		return apperrors.Kindf(apperrors.ErrNotFound, nil, "refresh token")
	}
	return nil
}

func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`

	n, err := r.exec(ctx, query, userID)
	if err != nil {
		return 0, apperrors.Kindf(apperrors.ErrPersistence, err, "delete refresh tokens for user %d", userID)
	}
	return n, nil
}

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= $1`

	n, err := r.exec(ctx, query, now)
	if err != nil {
		return 0, apperrors.Kindf(apperrors.ErrPersistence, err, "delete expired refresh tokens")
	}
	return n, nil
}

func (r *RefreshTokenRepo) TrimUser(ctx context.Context, userID int64, keep int) (int64, error) {
	const query = `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
		  AND token_hash NOT IN (
			SELECT token_hash FROM refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at DESC, token_hash
			LIMIT $2
		  )`

	n, err := r.exec(ctx, query, userID, keep)
	if err != nil {
		return 0, apperrors.Kindf(apperrors.ErrPersistence, err, "trim refresh tokens for user %d", userID)
	}
	return n, nil
}

func (r *RefreshTokenRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
