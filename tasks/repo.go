package tasks

import "context"

type Repo interface {
	Create(ctx context.Context, t *Task) error
	// ListForAssignee orders by due date ascending, undated tasks last.
	ListForAssignee(ctx context.Context, employeeID int64) ([]*Task, error)
	// UpdateStatus changes a task only when it is assigned to employeeID.
	// Zero matching rows yields errors.ErrTaskNotFound.
	UpdateStatus(ctx context.Context, id, employeeID int64, status Status) error
	CountDueOn(ctx context.Context, date string) (int, error)
}
