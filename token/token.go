package token

import (
	"context"

	"github.com/jrsteele09/go-ems-server/users"
)

// Service issues and validates the bearer tokens handed to mobile clients.
type Service interface {
	// Issue returns a new token naming the identity.
	Issue(ctx context.Context, identityID int64) (string, error)
	// Validate returns the identity id a token names. Failures are
	// KindAuthorization errors.
	Validate(ctx context.Context, raw string) (int64, error)
	// Revoke invalidates a token before it expires, where the format allows it.
	Revoke(ctx context.Context, raw string) error
}

// IdentityLookup resolves the subject of a token. users.Directory satisfies it.
type IdentityLookup interface {
	Lookup(ctx context.Context, id int64) (*users.User, error)
}
