package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/leaves"
)

type leaveRepo struct {
	db *DB
}

var _ leaves.Repo = (*leaveRepo)(nil)

func (db *DB) Leaves() leaves.Repo {
	return &leaveRepo{db: db}
}

const leaveColumns = "id, employee_id, leave_type, start_date, end_date, reason, status, approved_by, created_at, updated_at"

func (r *leaveRepo) Create(ctx context.Context, l *leaves.Request) error {
	now := r.db.now()
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO leaves (employee_id, leave_type, start_date, end_date, reason, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.EmployeeID, string(l.Type), l.StartDate, l.EndDate, l.Reason, string(l.Status), now, now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	l.CreatedAt, _ = parseTime(now)
	l.UpdatedAt = l.CreatedAt
	return nil
}

func (r *leaveRepo) GetByID(ctx context.Context, id int64) (*leaves.Request, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = ?`, id)
	l, err := scanLeave(row)
	if err != nil {
		return nil, notFound(err, errors.ErrLeaveNotFound)
	}
	return l, nil
}

func (r *leaveRepo) ListForEmployee(ctx context.Context, employeeID int64) ([]*leaves.Request, error) {
	return r.list(ctx, "WHERE employee_id = ?", employeeID)
}

func (r *leaveRepo) List(ctx context.Context, status *leaves.Status) ([]*leaves.Request, error) {
	if status != nil {
		return r.list(ctx, "WHERE status = ?", string(*status))
	}
	return r.list(ctx, "")
}

func (r *leaveRepo) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaves WHERE status = ?`, string(leaves.StatusPending)).Scan(&count)
	return count, err
}

func (r *leaveRepo) Resolve(ctx context.Context, id int64, status leaves.Status, approverID int64) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE leaves SET status = ?, approved_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(status), approverID, r.db.now(), id, string(leaves.StatusPending),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return errors.ErrConflict
}

func (r *leaveRepo) list(ctx context.Context, where string, args ...any) ([]*leaves.Request, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leaves `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*leaves.Request, 0)
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLeave(s scanner) (*leaves.Request, error) {
	var (
		l                    leaves.Request
		leaveType, status    string
		approvedBy           sql.NullInt64
		createdAt, updatedAt string
	)
	if err := s.Scan(&l.ID, &l.EmployeeID, &leaveType, &l.StartDate, &l.EndDate, &l.Reason, &status,
		&approvedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Type = leaves.Type(leaveType)
	l.Status = leaves.Status(status)
	if approvedBy.Valid {
		v := approvedBy.Int64
		l.ApprovedBy = &v
	}
	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
