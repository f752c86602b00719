package fakeuserrepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[int64]*users.User
	emailIds map[string]int64 // email to user id
	nextID   int64
	lock     sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int64]*users.User),
		emailIds: make(map[string]int64),
	}
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	id, ok := ur.emailIds[email]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "user %s", email)
	}
	u := *ur.users[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "user %d", id)
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) CreateOrGet(_ context.Context, u *users.User) (*users.User, bool, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.Err != nil {
		return nil, false, ur.Err
	}
	if id, ok := ur.emailIds[u.Email]; ok {
		existing := *ur.users[id]
		return &existing, false, nil
	}

	ur.nextID++
	now := users.NowTimeFunc()
	stored := &users.User{
		ID:         ur.nextID,
		Email:      u.Email,
		Name:       u.Name,
		PictureURL: u.PictureURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ur.users[stored.ID] = stored
	ur.emailIds[stored.Email] = stored.ID

	created := *stored
	return &created, true, nil
}

func (ur *FakeUserRepo) UpdateName(_ context.Context, id int64, name string) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "user %d", id)
	}
	u.Name = name
	u.UpdatedAt = users.NowTimeFunc()
	cp := *u
	return &cp, nil
}

// Count returns the number of stored users.
func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users)
}
