package users

import "context"

// UserRepo stores directory users. Get methods return
// errors.ErrIdentityNotFound when nothing matches.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
}

// Directory verifies credentials and resolves identities.
type Directory interface {
	// Authenticate returns the user for a username/password pair, or a
	// KindAuthentication error carrying a client safe message.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	// Lookup returns the user with the given id, or ErrIdentityNotFound.
	Lookup(ctx context.Context, id int64) (*User, error)
}
