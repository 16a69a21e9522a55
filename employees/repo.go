package employees

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repo persists employees. Lookups return errors.ErrEmployeeNotFound on a
// miss; Create returns errors.ErrConflict when the user id or code is taken.
type Repo interface {
	Create(ctx context.Context, e *Employee) error
	// Update rewrites everything except the id, user id and code.
	Update(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	// List returns employees ordered by id.
	List(ctx context.Context) ([]*Employee, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	CountActive(ctx context.Context) (int, error)
	// ActivePayroll sums the salary of active employees.
	ActivePayroll(ctx context.Context) (decimal.Decimal, error)
}
