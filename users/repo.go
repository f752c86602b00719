package users

import "context"

// Repo is the user directory. Lookups return errors.ErrNotFound when no user
// matches.
type Repo interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// CreateOrGet inserts u unless a user with the same email exists, in
	// which case the existing user is returned. created reports which
	// happened. Concurrent calls for one email never fail on the unique key.
	CreateOrGet(ctx context.Context, u *User) (user *User, created bool, err error)
	UpdateName(ctx context.Context, id int64, name string) (*User, error)
}
