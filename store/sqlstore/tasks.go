package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/tasks"
)

type taskRepo struct {
	db *DB
}

var _ tasks.Repo = (*taskRepo)(nil)

func (db *DB) Tasks() tasks.Repo {
	return &taskRepo{db: db}
}

const taskColumns = "id, title, description, assigned_to, assigned_by, due_date, priority, status, created_at, updated_at"

func (r *taskRepo) Create(ctx context.Context, t *tasks.Task) error {
	now := r.db.now()
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO tasks (title, description, assigned_to, assigned_by, due_date, priority, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.AssignedTo, t.AssignedBy, nullString(t.DueDate), string(t.Priority), string(t.Status), now, now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	t.CreatedAt, _ = parseTime(now)
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (r *taskRepo) ListForAssignee(ctx context.Context, employeeID int64) ([]*tasks.Task, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assigned_to = ?
		ORDER BY due_date IS NULL, due_date ASC, id ASC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*tasks.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id, employeeID int64, status tasks.Status) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND assigned_to = ?`,
		string(status), r.db.now(), id, employeeID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepo) CountDueOn(ctx context.Context, date string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE due_date = ?`, date).Scan(&count)
	return count, err
}

func scanTask(s scanner) (*tasks.Task, error) {
	var (
		t                    tasks.Task
		dueDate              sql.NullString
		priority, status     string
		createdAt, updatedAt string
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.AssignedBy, &dueDate,
		&priority, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.DueDate = stringPtr(dueDate)
	t.Priority = tasks.Priority(priority)
	t.Status = tasks.Status(status)
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
