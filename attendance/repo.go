package attendance

import "context"

type Repo interface {
	Insert(ctx context.Context, r *Record) error
	// InsertIfNoneOpen inserts r unless the employee already holds an open
	// record on r.Date, in which case it returns errors.ErrAlreadyCheckedIn.
	// The check and the insert are a single atomic step.
	InsertIfNoneOpen(ctx context.Context, r *Record) error
	// Latest returns the record with the highest id for the employee on date,
	// or errors.ErrNotFound.
	Latest(ctx context.Context, employeeID int64, date string) (*Record, error)
	CountOpen(ctx context.Context, employeeID int64, date string) (int, error)
	// UpdateCheckOut stores r.CheckOut and r.HoursWorked only while the stored
	// version still equals r.Version, then advances r.Version. A stale
	// version yields errors.ErrConflict.
	UpdateCheckOut(ctx context.Context, r *Record) error
	// ListForEmployee returns records dated within [from, to], newest first.
	// Empty bounds are open.
	ListForEmployee(ctx context.Context, employeeID int64, from, to string) ([]*Record, error)
	ListForDate(ctx context.Context, date string) ([]*Record, error)
}
