package pgstore

import (
	"context"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// users

type userRepo struct{ db *DB }

func (db *DB) Users() users.UserRepo { return &userRepo{db: db} }

func (r *userRepo) Upsert(ctx context.Context, u *users.User) error {
	if u.ID == 0 || u.CreatedAt.IsZero() {
		existing, err := r.find(ctx, "username = ?", u.Username)
		switch {
		case err == nil:
			if u.ID == 0 {
				u.ID = existing.ID
			}
			u.CreatedAt = existing.CreatedAt
		case !errors.Is(err, errors.ErrIdentityNotFound):
			return err
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.db.gorm.NowFunc()
	}

	row := toUserRow(u)
	if err := r.db.gorm.WithContext(ctx).Save(row).Error; err != nil {
		return r.db.conflict(err, "user "+u.Username)
	}
	u.ID = row.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.find(ctx, "username = ?", username)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	if externalID == "" {
		return nil, errors.ErrIdentityNotFound
	}
	return r.find(ctx, "external_id = ?", externalID)
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []userRow
	if err := r.db.gorm.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*users.User, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toUser())
	}
	return list, nil
}

func (r *userRepo) find(ctx context.Context, where string, arg any) (*users.User, error) {
	var row userRow
	if err := r.db.gorm.WithContext(ctx).Where(where, arg).First(&row).Error; err != nil {
		return nil, notFound(err, errors.ErrIdentityNotFound)
	}
	return row.toUser(), nil
}

// employees

type employeeRepo struct{ db *DB }

func (db *DB) Employees() employees.Repo { return &employeeRepo{db: db} }

func (r *employeeRepo) Create(ctx context.Context, e *employees.Employee) error {
	if e.Status == "" {
		e.Status = employees.StatusActive
	}
	row := toEmployeeRow(e)
	if err := r.db.gorm.WithContext(ctx).Create(row).Error; err != nil {
		return r.db.conflict(err, "employee "+e.Code)
	}
	e.ID, e.CreatedAt, e.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *employeeRepo) Update(ctx context.Context, e *employees.Employee) error {
	res := r.db.gorm.WithContext(ctx).Model(&employeeRow{}).Where("id = ?", e.ID).Updates(map[string]any{
		"department": e.Department,
		"position":   e.Position,
		"salary":     e.Salary.Round(2),
		"hire_date":  e.HireDate,
		"phone":      e.Phone,
		"address":    e.Address,
		"status":     string(e.Status),
		"updated_at": r.db.gorm.NowFunc(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id int64) (*employees.Employee, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *employeeRepo) GetByUserID(ctx context.Context, userID int64) (*employees.Employee, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *employeeRepo) List(ctx context.Context) ([]*employees.Employee, error) {
	var rows []employeeRow
	if err := r.db.gorm.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*employees.Employee, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toEmployee())
	}
	return list, nil
}

func (r *employeeRepo) SetStatus(ctx context.Context, id int64, status employees.Status) error {
	res := r.db.gorm.WithContext(ctx).Model(&employeeRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": r.db.gorm.NowFunc(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepo) CountActive(ctx context.Context) (int, error) {
	var count int64
	err := r.db.gorm.WithContext(ctx).Model(&employeeRow{}).Where("status = ?", string(employees.StatusActive)).Count(&count).Error
	return int(count), err
}

func (r *employeeRepo) ActivePayroll(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.gorm.WithContext(ctx).Model(&employeeRow{}).
		Where("status = ?", string(employees.StatusActive)).
		Select("SUM(salary)").Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *employeeRepo) find(ctx context.Context, where string, arg any) (*employees.Employee, error) {
	var row employeeRow
	if err := r.db.gorm.WithContext(ctx).Where(where, arg).First(&row).Error; err != nil {
		return nil, notFound(err, errors.ErrEmployeeNotFound)
	}
	return row.toEmployee(), nil
}

// attendance

type attendanceRepo struct{ db *DB }

func (db *DB) Attendance() attendance.Repo { return &attendanceRepo{db: db} }

func (r *attendanceRepo) Insert(ctx context.Context, rec *attendance.Record) error {
	row := &attendanceRow{
		EmployeeID: rec.EmployeeID,
		CheckIn:    rec.CheckIn,
		Date:       rec.Date,
		Location:   rec.Location,
		Notes:      rec.Notes,
		Version:    1,
	}
	if err := r.db.gorm.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	rec.ID, rec.Version, rec.CreatedAt = row.ID, row.Version, row.CreatedAt
	return nil
}

// InsertIfNoneOpen serialises check-ins per employee with a transaction
// scoped advisory lock, then checks for an open record before inserting.
func (r *attendanceRepo) InsertIfNoneOpen(ctx context.Context, rec *attendance.Record) error {
	return r.db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", rec.EmployeeID).Error; err != nil {
			return err
		}
		var open int64
		err := tx.Model(&attendanceRow{}).
			Where("employee_id = ? AND date = ? AND check_out IS NULL", rec.EmployeeID, rec.Date).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return errors.ErrAlreadyCheckedIn
		}
		return (&attendanceRepo{db: &DB{gorm: tx}}).Insert(ctx, rec)
	})
}

func (r *attendanceRepo) Latest(ctx context.Context, employeeID int64, date string) (*attendance.Record, error) {
	var row attendanceRow
	err := r.db.gorm.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		Order("id DESC").First(&row).Error
	if err != nil {
		return nil, notFound(err, errors.ErrNotFound)
	}
	return row.toRecord(), nil
}

func (r *attendanceRepo) CountOpen(ctx context.Context, employeeID int64, date string) (int, error) {
	var count int64
	err := r.db.gorm.WithContext(ctx).Model(&attendanceRow{}).
		Where("employee_id = ? AND date = ? AND check_out IS NULL", employeeID, date).
		Count(&count).Error
	return int(count), err
}

func (r *attendanceRepo) UpdateCheckOut(ctx context.Context, rec *attendance.Record) error {
	res := r.db.gorm.WithContext(ctx).Model(&attendanceRow{}).
		Where("id = ? AND version = ?", rec.ID, rec.Version).
		Updates(map[string]any{
			"check_out":    rec.CheckOut,
			"hours_worked": rec.HoursWorked,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrConflict
	}
	rec.Version++
	return nil
}

func (r *attendanceRepo) ListForEmployee(ctx context.Context, employeeID int64, from, to string) ([]*attendance.Record, error) {
	q := r.db.gorm.WithContext(ctx).Where("employee_id = ?", employeeID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	return r.list(q)
}

func (r *attendanceRepo) ListForDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	return r.list(r.db.gorm.WithContext(ctx).Where("date = ?", date))
}

func (r *attendanceRepo) list(q *gorm.DB) ([]*attendance.Record, error) {
	var rows []attendanceRow
	if err := q.Order("date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*attendance.Record, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toRecord())
	}
	return list, nil
}

// leaves

type leaveRepo struct{ db *DB }

func (db *DB) Leaves() leaves.Repo { return &leaveRepo{db: db} }

func (r *leaveRepo) Create(ctx context.Context, l *leaves.Request) error {
	row := &leaveRow{
		EmployeeID: l.EmployeeID,
		LeaveType:  string(l.Type),
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		Reason:     l.Reason,
		Status:     string(l.Status),
	}
	if err := r.db.gorm.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	l.ID, l.CreatedAt, l.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *leaveRepo) GetByID(ctx context.Context, id int64) (*leaves.Request, error) {
	var row leaveRow
	if err := r.db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, errors.ErrLeaveNotFound)
	}
	return row.toRequest(), nil
}

func (r *leaveRepo) ListForEmployee(ctx context.Context, employeeID int64) ([]*leaves.Request, error) {
	return r.list(r.db.gorm.WithContext(ctx).Where("employee_id = ?", employeeID))
}

func (r *leaveRepo) List(ctx context.Context, status *leaves.Status) ([]*leaves.Request, error) {
	q := r.db.gorm.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	return r.list(q)
}

func (r *leaveRepo) CountPending(ctx context.Context) (int, error) {
	var count int64
	err := r.db.gorm.WithContext(ctx).Model(&leaveRow{}).Where("status = ?", string(leaves.StatusPending)).Count(&count).Error
	return int(count), err
}

func (r *leaveRepo) Resolve(ctx context.Context, id int64, status leaves.Status, approverID int64) error {
	res := r.db.gorm.WithContext(ctx).Model(&leaveRow{}).
		Where("id = ? AND status = ?", id, string(leaves.StatusPending)).
		Updates(map[string]any{
			"status":      string(status),
			"approved_by": approverID,
			"updated_at":  r.db.gorm.NowFunc(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return errors.ErrConflict
}

func (r *leaveRepo) list(q *gorm.DB) ([]*leaves.Request, error) {
	var rows []leaveRow
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*leaves.Request, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toRequest())
	}
	return list, nil
}

// tasks

type taskRepo struct{ db *DB }

func (db *DB) Tasks() tasks.Repo { return &taskRepo{db: db} }

func (r *taskRepo) Create(ctx context.Context, t *tasks.Task) error {
	row := &taskRow{
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  t.AssignedTo,
		AssignedBy:  t.AssignedBy,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
	}
	if err := r.db.gorm.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	t.ID, t.CreatedAt, t.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *taskRepo) ListForAssignee(ctx context.Context, employeeID int64) ([]*tasks.Task, error) {
	var rows []taskRow
	err := r.db.gorm.WithContext(ctx).Where("assigned_to = ?", employeeID).
		Order("due_date ASC NULLS LAST").Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	list := make([]*tasks.Task, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toTask())
	}
	return list, nil
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id, employeeID int64, status tasks.Status) error {
	res := r.db.gorm.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND assigned_to = ?", id, employeeID).
		Updates(map[string]any{"status": string(status), "updated_at": r.db.gorm.NowFunc()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepo) CountDueOn(ctx context.Context, date string) (int, error) {
	var count int64
	err := r.db.gorm.WithContext(ctx).Model(&taskRow{}).Where("due_date = ?", date).Count(&count).Error
	return int(count), err
}

// payroll

type payrollRepo struct{ db *DB }

func (db *DB) Payroll() payroll.Repo { return &payrollRepo{db: db} }

func (r *payrollRepo) Create(ctx context.Context, s *payroll.Record) error {
	if s.Status == "" {
		s.Status = payroll.StatusPending
	}
	row := &salaryRow{
		EmployeeID:  s.EmployeeID,
		Month:       s.Month,
		Year:        s.Year,
		BasicSalary: s.Basic,
		Allowances:  s.Allowances,
		Deductions:  s.Deductions,
		NetSalary:   s.Net,
		PaymentDate: s.PaymentDate,
		Status:      string(s.Status),
	}
	if err := r.db.gorm.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	s.ID, s.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *payrollRepo) GetByID(ctx context.Context, id int64) (*payroll.Record, error) {
	var row salaryRow
	if err := r.db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, errors.ErrSalaryNotFound)
	}
	return row.toRecord(), nil
}

func (r *payrollRepo) ListForEmployee(ctx context.Context, employeeID int64) ([]*payroll.Record, error) {
	var rows []salaryRow
	err := r.db.gorm.WithContext(ctx).Where("employee_id = ?", employeeID).
		Order("year DESC").Order("month DESC").Order("id DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	list := make([]*payroll.Record, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toRecord())
	}
	return list, nil
}

func (r *payrollRepo) MarkPaid(ctx context.Context, id int64, paymentDate string) error {
	res := r.db.gorm.WithContext(ctx).Model(&salaryRow{}).Where("id = ?", id).
		Updates(map[string]any{"status": string(payroll.StatusPaid), "payment_date": paymentDate})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrSalaryNotFound
	}
	return nil
}
