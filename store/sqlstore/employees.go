package sqlstore

import (
	"context"

	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/shopspring/decimal"
)

type employeeRepo struct {
	db *DB
}

var _ employees.Repo = (*employeeRepo)(nil)

func (db *DB) Employees() employees.Repo {
	return &employeeRepo{db: db}
}

const employeeColumns = "id, user_id, employee_id, department, position, salary, hire_date, phone, address, status, created_at, updated_at"

func (r *employeeRepo) Create(ctx context.Context, e *employees.Employee) error {
	now := r.db.now()
	if e.Status == "" {
		e.Status = employees.StatusActive
	}
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO employees (user_id, employee_id, department, position, salary, hire_date, phone, address, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Code, e.Department, e.Position, e.Salary.StringFixed(2), e.HireDate, e.Phone, e.Address, string(e.Status), now, now,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrConflict, "employee for user %d", e.UserID)
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt, _ = parseTime(now)
	e.UpdatedAt = e.CreatedAt
	return nil
}

func (r *employeeRepo) Update(ctx context.Context, e *employees.Employee) error {
	now := r.db.now()
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE employees SET department = ?, position = ?, salary = ?, hire_date = ?, phone = ?, address = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		e.Department, e.Position, e.Salary.StringFixed(2), e.HireDate, e.Phone, e.Address, string(e.Status), now, e.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrEmployeeNotFound
	}
	e.UpdatedAt, _ = parseTime(now)
	return nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id int64) (*employees.Employee, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *employeeRepo) GetByUserID(ctx context.Context, userID int64) (*employees.Employee, error) {
	return r.get(ctx, "user_id = ?", userID)
}

func (r *employeeRepo) List(ctx context.Context) ([]*employees.Employee, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*employees.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *employeeRepo) SetStatus(ctx context.Context, id int64, status employees.Status) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE employees SET status = ?, updated_at = ? WHERE id = ?`, string(status), r.db.now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE status = ?`, string(employees.StatusActive)).Scan(&count)
	return count, err
}

func (r *employeeRepo) ActivePayroll(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT salary FROM employees WHERE status = ?`, string(employees.StatusActive))
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var salary decimal.Decimal
		if err := rows.Scan(&salary); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(salary)
	}
	return total, rows.Err()
}

func (r *employeeRepo) get(ctx context.Context, where string, arg any) (*employees.Employee, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, arg)
	e, err := scanEmployee(row)
	if err != nil {
		return nil, notFound(err, errors.ErrEmployeeNotFound)
	}
	return e, nil
}

func scanEmployee(s scanner) (*employees.Employee, error) {
	var (
		e                    employees.Employee
		status               string
		createdAt, updatedAt string
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Code, &e.Department, &e.Position, &e.Salary, &e.HireDate,
		&e.Phone, &e.Address, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Status = employees.Status(status)
	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
