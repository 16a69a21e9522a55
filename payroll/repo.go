package payroll

import "context"

// Repo persists salary records. Lookups return errors.ErrSalaryNotFound on a miss.
type Repo interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	// ListForEmployee orders by year then month, most recent first.
	ListForEmployee(ctx context.Context, employeeID int64) ([]*Record, error)
	MarkPaid(ctx context.Context, id int64, paymentDate string) error
}
