package identityfake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/identity"
)

var _ identity.Verifier = (*FakeVerifier)(nil)

// FakeVerifier accepts only the raw tokens registered with Add.
type FakeVerifier struct {
	tokens map[string]identity.Claims
	lock   sync.RWMutex
}

func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{tokens: make(map[string]identity.Claims)}
}

func (v *FakeVerifier) Add(rawIDToken string, claims identity.Claims) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.tokens[rawIDToken] = claims
}

func (v *FakeVerifier) Verify(_ context.Context, rawIDToken string) (*identity.Claims, error) {
	v.lock.RLock()
	defer v.lock.RUnlock()

	if rawIDToken == "" {
		return nil, apperrors.Kindf(apperrors.ErrBadRequest, nil, "No token")
	}
	c, ok := v.tokens[rawIDToken]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrAuthenticationFailed, nil, "unknown id token")
	}
	return &c, nil
}
