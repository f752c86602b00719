// Package refresh keeps the server-side list of live refresh tokens so a
// signature-valid token can still be revoked.
package refresh

import (
	"context"
	"encoding/hex"
	"time"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type Config interface {
	GetRefreshTokenExpiry() time.Duration
	GetMaxSessionsPerUser() int
}

// Store handles refresh token persistence, lookup and revocation
type Store struct {
	repo       Repo
	expiry     time.Duration
	maxPerUser int
}

func NewStore(repo Repo, cfg Config) *Store {
	return &Store{
		repo:       repo,
		expiry:     cfg.GetRefreshTokenExpiry(),
		maxPerUser: cfg.GetMaxSessionsPerUser(),
	}
}

// HashToken returns the hex BLAKE2b-256 digest stored in place of the token.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StoreRefreshToken records token for userID with expiry now + refresh lifetime.
// When a per-user cap is configured the oldest records beyond it are evicted.
func (s *Store) StoreRefreshToken(ctx context.Context, userID int64, token string) error {
	now := NowTimeFunc()
	rt := &StoredRefreshToken{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return apperrors.Wrapf(err, "failed to store refresh token")
	}

	if s.maxPerUser > 0 {
		trimmed, err := s.repo.TrimUser(ctx, userID, s.maxPerUser)
		if err != nil {
			log.Warn().Err(err).Int64("userId", userID).Msg("Failed to trim refresh tokens")
		} else if trimmed > 0 {
			log.Debug().Int64("userId", userID).Int64("evicted", trimmed).Msg("Evicted oldest sessions")
		}
	}
	return nil
}

// DeleteRefreshToken removes exactly this token. It returns ErrNotFound when
// the token was never stored or is already gone.
func (s *Store) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, HashToken(token)); err != nil {
		return apperrors.Wrapf(err, "failed to delete refresh token")
	}
	return nil
}

// DeleteUserRefreshTokens revokes every session of a user.
func (s *Store) DeleteUserRefreshTokens(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, apperrors.Wrapf(err, "failed to delete refresh tokens for user %d", userID)
	}
	return n, nil
}

// FindRefreshToken returns nil without error when the token is unknown or its
// stored expiry has passed.
func (s *Store) FindRefreshToken(ctx context.Context, token string) (*StoredRefreshToken, error) {
	rt, err := s.repo.Get(ctx, HashToken(token))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to find refresh token")
	}
	if s.IsExpired(rt) {
		return nil, nil
	}
	return rt, nil
}

// IsExpired checks the stored expiry against the current time
func (s *Store) IsExpired(rt *StoredRefreshToken) bool {
	return !NowTimeFunc().Before(rt.ExpiresAt)
}

// SweepExpired deletes every record whose expiry has passed.
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, NowTimeFunc())
	if err != nil {
		return 0, apperrors.Wrapf(err, "failed to sweep expired refresh tokens")
	}
	return n, nil
}
