package leaves

import "context"

// Repo persists leave requests. Lookups return errors.ErrLeaveNotFound on a miss.
type Repo interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	// ListForEmployee returns the employee's requests newest first.
	ListForEmployee(ctx context.Context, employeeID int64) ([]*Request, error)
	// List returns all requests newest first, optionally restricted to status.
	List(ctx context.Context, status *Status) ([]*Request, error)
	CountPending(ctx context.Context) (int, error)
	// Resolve moves a pending request to status. A request that is no longer
	// pending yields errors.ErrConflict.
	Resolve(ctx context.Context, id int64, status Status, approverID int64) error
}
