package pgstore

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/shopspring/decimal"
)

type userRow struct {
	ID           int64   `gorm:"primaryKey"`
	Username     string  `gorm:"size:191;uniqueIndex;not null"`
	Email        string  `gorm:"size:191"`
	DisplayName  string  `gorm:"size:191"`
	FirstName    string  `gorm:"size:100"`
	LastName     string  `gorm:"size:100"`
	PasswordHash string  `gorm:"size:100"`
	Roles        string  `gorm:"size:191"`
	ExternalID   *string `gorm:"size:191;uniqueIndex"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "ems_users" }

func toUserRow(u *users.User) *userRow {
	r := &userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Roles:        users.JoinRoles(u.Roles),
		CreatedAt:    u.CreatedAt,
	}
	if strings.TrimSpace(u.ExternalID) != "" {
		ext := u.ExternalID
		r.ExternalID = &ext
	}
	return r
}

func (r *userRow) toUser() *users.User {
	u := &users.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Roles:        users.ParseRoles(r.Roles),
		CreatedAt:    r.CreatedAt,
	}
	if r.ExternalID != nil {
		u.ExternalID = *r.ExternalID
	}
	return u
}

type employeeRow struct {
	ID         int64           `gorm:"primaryKey"`
	UserID     int64           `gorm:"uniqueIndex;not null"`
	Code       string          `gorm:"column:employee_id;size:100;uniqueIndex;not null"`
	Department string          `gorm:"size:100"`
	Position   string          `gorm:"size:100"`
	Salary     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	HireDate   string          `gorm:"size:10"`
	Phone      string          `gorm:"size:20"`
	Address    string          `gorm:"type:text"`
	Status     string          `gorm:"size:20;not null;default:active;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (employeeRow) TableName() string { return "ems_employees" }

func toEmployeeRow(e *employees.Employee) *employeeRow {
	return &employeeRow{
		ID:         e.ID,
		UserID:     e.UserID,
		Code:       e.Code,
		Department: e.Department,
		Position:   e.Position,
		Salary:     e.Salary.Round(2),
		HireDate:   e.HireDate,
		Phone:      e.Phone,
		Address:    e.Address,
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (r *employeeRow) toEmployee() *employees.Employee {
	return &employees.Employee{
		ID:         r.ID,
		UserID:     r.UserID,
		Code:       r.Code,
		Department: r.Department,
		Position:   r.Position,
		Salary:     r.Salary,
		HireDate:   r.HireDate,
		Phone:      r.Phone,
		Address:    r.Address,
		Status:     employees.Status(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type attendanceRow struct {
	ID          int64 `gorm:"primaryKey"`
	EmployeeID  int64 `gorm:"index:idx_attendance_employee_date;not null"`
	CheckIn     time.Time
	CheckOut    *time.Time
	HoursWorked *float64 `gorm:"type:double precision"`
	Date        string   `gorm:"size:10;index:idx_attendance_employee_date;not null"`
	Location    string   `gorm:"size:255"`
	Notes       string   `gorm:"type:text"`
	Version     int64    `gorm:"not null;default:1"`
	CreatedAt   time.Time
}

func (attendanceRow) TableName() string { return "ems_attendance" }

func (r *attendanceRow) toRecord() *attendance.Record {
	return &attendance.Record{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		HoursWorked: r.HoursWorked,
		Date:        r.Date,
		Location:    r.Location,
		Notes:       r.Notes,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
	}
}

type leaveRow struct {
	ID         int64  `gorm:"primaryKey"`
	EmployeeID int64  `gorm:"index;not null"`
	LeaveType  string `gorm:"size:20;not null"`
	StartDate  string `gorm:"size:10;not null"`
	EndDate    string `gorm:"size:10;not null"`
	Reason     string `gorm:"type:text"`
	Status     string `gorm:"size:20;not null;default:pending;index"`
	ApprovedBy *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (leaveRow) TableName() string { return "ems_leaves" }

func (r *leaveRow) toRequest() *leaves.Request {
	return &leaves.Request{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Type:       leaves.Type(r.LeaveType),
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     r.Reason,
		Status:     leaves.Status(r.Status),
		ApprovedBy: r.ApprovedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type taskRow struct {
	ID          int64   `gorm:"primaryKey"`
	Title       string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text"`
	AssignedTo  int64   `gorm:"index;not null"`
	AssignedBy  int64   `gorm:"not null;default:0"`
	DueDate     *string `gorm:"size:10;index"`
	Priority    string  `gorm:"size:10;not null;default:medium"`
	Status      string  `gorm:"size:20;not null;default:pending"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRow) TableName() string { return "ems_tasks" }

func (r *taskRow) toTask() *tasks.Task {
	return &tasks.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		AssignedBy:  r.AssignedBy,
		DueDate:     r.DueDate,
		Priority:    tasks.Priority(r.Priority),
		Status:      tasks.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type salaryRow struct {
	ID          int64           `gorm:"primaryKey"`
	EmployeeID  int64           `gorm:"index;not null"`
	Month       int             `gorm:"not null"`
	Year        int             `gorm:"not null"`
	BasicSalary decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Allowances  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Deductions  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	NetSalary   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentDate *string         `gorm:"size:10"`
	Status      string          `gorm:"size:20;not null;default:pending"`
	CreatedAt   time.Time
}

func (salaryRow) TableName() string { return "ems_salary" }

func (r *salaryRow) toRecord() *payroll.Record {
	return &payroll.Record{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Month:       r.Month,
		Year:        r.Year,
		Basic:       r.BasicSalary,
		Allowances:  r.Allowances,
		Deductions:  r.Deductions,
		Net:         r.NetSalary,
		PaymentDate: r.PaymentDate,
		Status:      payroll.Status(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}
