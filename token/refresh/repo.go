package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record of an issued refresh token.
// Only a digest of the token is kept; the client holds the token itself.
type StoredRefreshToken struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repo persists refresh-token records keyed by token digest.
// Get and Delete return errors.ErrNotFound when no record matches.
type Repo interface {
	Create(ctx context.Context, rt *StoredRefreshToken) error
	Get(ctx context.Context, tokenHash string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// TrimUser keeps the newest keep records for a user and deletes the rest.
	TrimUser(ctx context.Context, userID int64, keep int) (int64, error)
}
