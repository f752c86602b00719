package refreshrepofake

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	// GetErr, when set, is returned by Get.
	GetErr error
	tokens map[string]refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Create(_ context.Context, rt *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[rt.TokenHash]; ok {
		return apperrors.Kindf(apperrors.ErrAlreadyExists, nil, "refresh token")
	}
	tr.tokens[rt.TokenHash] = *rt
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	if tr.GetErr != nil {
		return nil, tr.GetErr
	}
	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "refresh token")
	}
	return &rt, nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, tokenHash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[tokenHash]; !ok {
		return apperrors.Kindf(apperrors.ErrNotFound, nil, "refresh token")
	}
	delete(tr.tokens, tokenHash)
	return nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	var n int64
	for hash, rt := range tr.tokens {
		if rt.UserID == userID {
			delete(tr.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (tr *FakeRefreshTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	var n int64
	for hash, rt := range tr.tokens {
		if !now.Before(rt.ExpiresAt) {
			delete(tr.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (tr *FakeRefreshTokenRepo) TrimUser(_ context.Context, userID int64, keep int) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	owned := make([]refresh.StoredRefreshToken, 0)
	for _, rt := range tr.tokens {
		if rt.UserID == userID {
			owned = append(owned, rt)
		}
	}
	if len(owned) <= keep {
		return 0, nil
	}

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].TokenHash < owned[j].TokenHash
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	var n int64
	for _, rt := range owned[keep:] {
		delete(tr.tokens, rt.TokenHash)
		n++
	}
	return n, nil
}

// Count returns the number of stored records, optionally for one user.
func (tr *FakeRefreshTokenRepo) Count(userID int64) int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	n := 0
	for _, rt := range tr.tokens {
		if userID == 0 || rt.UserID == userID {
			n++
		}
	}
	return n
}
