package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/users"
)

type userRepo struct {
	db *DB
}

var _ users.UserRepo = (*userRepo)(nil)

// Users returns the directory user repository.
func (db *DB) Users() users.UserRepo {
	return &userRepo{db: db}
}

const userColumns = "id, username, email, display_name, first_name, last_name, password_hash, roles, external_id, created_at"

// Upsert inserts the user, or updates the row with the same id or username.
func (r *userRepo) Upsert(ctx context.Context, u *users.User) error {
	if u.ID == 0 {
		existing, err := r.GetByUsername(ctx, u.Username)
		switch {
		case err == nil:
			u.ID = existing.ID
			u.CreatedAt = existing.CreatedAt
		case !errors.Is(err, errors.ErrIdentityNotFound):
			return err
		}
	}

	externalID := sql.NullString{String: u.ExternalID, Valid: u.ExternalID != ""}
	roles := users.JoinRoles(u.Roles)

	if u.ID != 0 {
		res, err := r.db.conn.ExecContext(ctx,
			`UPDATE users SET username = ?, email = ?, display_name = ?, first_name = ?, last_name = ?,
				password_hash = ?, roles = ?, external_id = ? WHERE id = ?`,
			u.Username, u.Email, u.DisplayName, u.FirstName, u.LastName, u.PasswordHash, roles, externalID, u.ID,
		)
		if err != nil {
			return r.conflict(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.db.nowFunc()
	}
	id := sql.NullInt64{Int64: u.ID, Valid: u.ID != 0}
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.Username, u.Email, u.DisplayName, u.FirstName, u.LastName, u.PasswordHash, roles, externalID, formatTime(u.CreatedAt),
	)
	if err != nil {
		return r.conflict(err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = newID
	return nil
}

func (r *userRepo) conflict(err error) error {
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrConflict, "user: %v", err)
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.get(ctx, "username = ?", username)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	if externalID == "" {
		return nil, errors.ErrIdentityNotFound
	}
	return r.get(ctx, "external_id = ?", externalID)
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *userRepo) get(ctx context.Context, where string, arg any) (*users.User, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, errors.ErrIdentityNotFound)
	}
	return u, nil
}

func scanUser(s scanner) (*users.User, error) {
	var (
		u          users.User
		roles      string
		externalID sql.NullString
		createdAt  string
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.FirstName, &u.LastName,
		&u.PasswordHash, &roles, &externalID, &createdAt); err != nil {
		return nil, err
	}
	u.Roles = users.ParseRoles(roles)
	u.ExternalID = externalID.String
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}
