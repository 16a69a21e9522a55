package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/internal/errors"
)

type attendanceRepo struct {
	db *DB
}

var _ attendance.Repo = (*attendanceRepo)(nil)

func (db *DB) Attendance() attendance.Repo {
	return &attendanceRepo{db: db}
}

const attendanceColumns = "id, employee_id, check_in, check_out, hours_worked, date, location, notes, version, created_at"

func (r *attendanceRepo) Insert(ctx context.Context, rec *attendance.Record) error {
	now := r.db.now()
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO attendance (employee_id, check_in, date, location, notes, version, created_at) VALUES (?, ?, ?, ?, ?, 1, ?)`,
		rec.EmployeeID, formatTime(rec.CheckIn), rec.Date, rec.Location, rec.Notes, now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	rec.Version = 1
	rec.CreatedAt, _ = parseTime(now)
	return nil
}

// InsertIfNoneOpen runs the open-record test and the insert as one statement.
func (r *attendanceRepo) InsertIfNoneOpen(ctx context.Context, rec *attendance.Record) error {
	now := r.db.now()
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO attendance (employee_id, check_in, date, location, notes, version, created_at)
		SELECT ?, ?, ?, ?, ?, 1, ?
		WHERE NOT EXISTS (SELECT 1 FROM attendance WHERE employee_id = ? AND date = ? AND check_out IS NULL)`,
		rec.EmployeeID, formatTime(rec.CheckIn), rec.Date, rec.Location, rec.Notes, now,
		rec.EmployeeID, rec.Date,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrAlreadyCheckedIn
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	rec.Version = 1
	rec.CreatedAt, _ = parseTime(now)
	return nil
}

func (r *attendanceRepo) Latest(ctx context.Context, employeeID int64, date string) (*attendance.Record, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE employee_id = ? AND date = ? ORDER BY id DESC LIMIT 1`,
		employeeID, date)
	rec, err := scanAttendance(row)
	if err != nil {
		return nil, notFound(err, errors.ErrNotFound)
	}
	return rec, nil
}

func (r *attendanceRepo) CountOpen(ctx context.Context, employeeID int64, date string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE employee_id = ? AND date = ? AND check_out IS NULL`,
		employeeID, date).Scan(&count)
	return count, err
}

func (r *attendanceRepo) UpdateCheckOut(ctx context.Context, rec *attendance.Record) error {
	var checkOut sql.NullString
	if rec.CheckOut != nil {
		checkOut = sql.NullString{String: formatTime(*rec.CheckOut), Valid: true}
	}
	var hours sql.NullFloat64
	if rec.HoursWorked != nil {
		hours = sql.NullFloat64{Float64: *rec.HoursWorked, Valid: true}
	}

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE attendance SET check_out = ?, hours_worked = ?, version = version + 1 WHERE id = ? AND version = ?`,
		checkOut, hours, rec.ID, rec.Version,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrConflict
	}
	rec.Version++
	return nil
}

func (r *attendanceRepo) ListForEmployee(ctx context.Context, employeeID int64, from, to string) ([]*attendance.Record, error) {
	where := []string{"employee_id = ?"}
	args := []any{employeeID}
	if from != "" {
		where = append(where, "date >= ?")
		args = append(args, from)
	}
	if to != "" {
		where = append(where, "date <= ?")
		args = append(args, to)
	}
	return r.list(ctx, strings.Join(where, " AND "), args...)
}

func (r *attendanceRepo) ListForDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	return r.list(ctx, "date = ?", date)
}

func (r *attendanceRepo) list(ctx context.Context, where string, args ...any) ([]*attendance.Record, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE `+where+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*attendance.Record, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanAttendance(s scanner) (*attendance.Record, error) {
	var (
		rec                attendance.Record
		checkIn, createdAt string
		checkOut           sql.NullString
		hours              sql.NullFloat64
	)
	if err := s.Scan(&rec.ID, &rec.EmployeeID, &checkIn, &checkOut, &hours, &rec.Date,
		&rec.Location, &rec.Notes, &rec.Version, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if rec.CheckIn, err = parseTime(checkIn); err != nil {
		return nil, err
	}
	if rec.CheckOut, err = parseNullTime(checkOut); err != nil {
		return nil, err
	}
	if hours.Valid {
		h := hours.Float64
		rec.HoursWorked = &h
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
