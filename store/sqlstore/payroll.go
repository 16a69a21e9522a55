package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/payroll"
)

type payrollRepo struct {
	db *DB
}

var _ payroll.Repo = (*payrollRepo)(nil)

func (db *DB) Payroll() payroll.Repo {
	return &payrollRepo{db: db}
}

const salaryColumns = "id, employee_id, month, year, basic_salary, allowances, deductions, net_salary, payment_date, status, created_at"

func (r *payrollRepo) Create(ctx context.Context, s *payroll.Record) error {
	now := r.db.now()
	if s.Status == "" {
		s.Status = payroll.StatusPending
	}
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO salary (employee_id, month, year, basic_salary, allowances, deductions, net_salary, payment_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.EmployeeID, s.Month, s.Year, s.Basic.StringFixed(2), s.Allowances.StringFixed(2), s.Deductions.StringFixed(2),
		s.Net.StringFixed(2), nullString(s.PaymentDate), string(s.Status), now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	s.CreatedAt, _ = parseTime(now)
	return nil
}

func (r *payrollRepo) GetByID(ctx context.Context, id int64) (*payroll.Record, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+salaryColumns+` FROM salary WHERE id = ?`, id)
	s, err := scanSalary(row)
	if err != nil {
		return nil, notFound(err, errors.ErrSalaryNotFound)
	}
	return s, nil
}

func (r *payrollRepo) ListForEmployee(ctx context.Context, employeeID int64) ([]*payroll.Record, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+salaryColumns+` FROM salary WHERE employee_id = ? ORDER BY year DESC, month DESC, id DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*payroll.Record, 0)
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *payrollRepo) MarkPaid(ctx context.Context, id int64, paymentDate string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE salary SET status = ?, payment_date = ? WHERE id = ?`, string(payroll.StatusPaid), paymentDate, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrSalaryNotFound
	}
	return nil
}

func scanSalary(sc scanner) (*payroll.Record, error) {
	var (
		s           payroll.Record
		paymentDate sql.NullString
		status      string
		createdAt   string
	)
	if err := sc.Scan(&s.ID, &s.EmployeeID, &s.Month, &s.Year, &s.Basic, &s.Allowances, &s.Deductions, &s.Net,
		&paymentDate, &status, &createdAt); err != nil {
		return nil, err
	}
	s.PaymentDate = stringPtr(paymentDate)
	s.Status = payroll.Status(status)
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = t
	return &s, nil
}
