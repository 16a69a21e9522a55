package users

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-ems-server/internal/errors"
)

var (
	ErrUnknownUsername   = errors.Authentication("Unknown username")
	ErrIncorrectPassword = errors.Authentication("The password you entered is incorrect")
)

// LocalDirectory authenticates against bcrypt hashes held in a UserRepo.
type LocalDirectory struct {
	repo UserRepo
}

var _ Directory = (*LocalDirectory)(nil)

func NewLocalDirectory(repo UserRepo) *LocalDirectory {
	return &LocalDirectory{repo: repo}
}

func (d *LocalDirectory) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := d.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, errors.ErrIdentityNotFound) {
		return nil, ErrUnknownUsername
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[LocalDirectory Authenticate] GetByUsername")
	}
	if user.PasswordHash == "" || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

func (d *LocalDirectory) Lookup(ctx context.Context, id int64) (*User, error) {
	return d.repo.GetByID(ctx, id)
}
