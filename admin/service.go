package admin

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Employees employees.Repo
	Leaves    leaves.Repo
	Tasks     tasks.Repo
	Payroll   payroll.Repo
}

// Service backs the admin console routes. Callers are expected to have
// checked the manager role already.
type Service struct {
	repos     Repos
	directory users.Directory
	engine    *attendance.Engine
}

type DashboardStats struct {
	TotalEmployees int    `json:"total_employees"`
	PendingLeaves  int    `json:"pending_leaves"`
	TodayTasks     int    `json:"today_tasks"`
	Payroll        string `json:"payroll"`
}

// EmployeeView pairs an employee with the directory identity it belongs to.
type EmployeeView struct {
	Employee *employees.Employee `json:"employee"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
}

// EmployeeInput creates an employee when ID is zero and updates it otherwise.
type EmployeeInput struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Code       string `json:"employee_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Salary     string `json:"salary"`
	HireDate   string `json:"hire_date"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Status     string `json:"status"`
}

type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  int64  `json:"assigned_to"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

type SalaryInput struct {
	EmployeeID int64  `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Basic      string `json:"basic_salary"`
	Allowances string `json:"allowances"`
	Deductions string `json:"deductions"`
}

func NewService(repos Repos, directory users.Directory, engine *attendance.Engine) (*Service, error) {
	if repos.Employees == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] Employees repo is required")
	}
	if repos.Leaves == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] Leaves repo is required")
	}
	if repos.Tasks == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] Tasks repo is required")
	}
	if repos.Payroll == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] Payroll repo is required")
	}
	if directory == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] directory is required")
	}
	if engine == nil {
		return nil, errors.New(errors.KindInternal, "[admin.NewService] attendance engine is required")
	}
	return &Service{repos: repos, directory: directory, engine: engine}, nil
}

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	active, err := s.repos.Employees.CountActive(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[DashboardStats] CountActive")
	}
	pending, err := s.repos.Leaves.CountPending(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[DashboardStats] CountPending")
	}
	due, err := s.repos.Tasks.CountDueOn(ctx, s.engine.Today())
	if err != nil {
		return nil, errors.Wrapf(err, "[DashboardStats] CountDueOn")
	}
	total, err := s.repos.Employees.ActivePayroll(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[DashboardStats] ActivePayroll")
	}
	return &DashboardStats{
		TotalEmployees: active,
		PendingLeaves:  pending,
		TodayTasks:     due,
		Payroll:        total.StringFixed(2),
	}, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]*EmployeeView, error) {
	list, err := s.repos.Employees.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[ListEmployees] List")
	}
	views := make([]*EmployeeView, 0, len(list))
	for _, e := range list {
		v := &EmployeeView{Employee: e, Name: "Unknown"}
		u, err := s.directory.Lookup(ctx, e.UserID)
		switch {
		case err == nil:
			if name := u.Name(); name != "" {
				v.Name = name
			}
			v.Email = u.Email
		case !errors.Is(err, errors.ErrIdentityNotFound):
			return nil, errors.Wrapf(err, "[ListEmployees] Lookup %d", e.UserID)
		}
		views = append(views, v)
	}
	return views, nil
}

// SaveEmployee creates or updates an employee. The employee code cannot be
// changed once assigned.
func (s *Service) SaveEmployee(ctx context.Context, in EmployeeInput) (*employees.Employee, error) {
	salary, err := payroll.ParseAmount(in.Salary)
	if err != nil {
		return nil, err
	}

	if in.ID > 0 {
		e, err := s.repos.Employees.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if code := strings.TrimSpace(in.Code); code != "" && code != e.Code {
			return nil, errors.Validation("employee_id cannot be changed")
		}
		if in.UserID != 0 && in.UserID != e.UserID {
			return nil, errors.Validation("user_id cannot be changed")
		}
		e.Department = strings.TrimSpace(in.Department)
		e.Position = strings.TrimSpace(in.Position)
		e.Salary = salary
		e.HireDate = strings.TrimSpace(in.HireDate)
		e.Phone = strings.TrimSpace(in.Phone)
		e.Address = strings.TrimSpace(in.Address)
		if in.Status != "" {
			e.Status = employees.Status(strings.TrimSpace(in.Status))
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if err := s.repos.Employees.Update(ctx, e); err != nil {
			return nil, err
		}
		return e, nil
	}

	if in.UserID <= 0 {
		return nil, errors.Validation("user_id is required")
	}
	if _, err := s.directory.Lookup(ctx, in.UserID); err != nil {
		return nil, err
	}
	e := &employees.Employee{
		UserID:     in.UserID,
		Code:       strings.TrimSpace(in.Code),
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Salary:     salary,
		HireDate:   strings.TrimSpace(in.HireDate),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		Status:     employees.Status(strings.TrimSpace(in.Status)),
	}
	if e.Code == "" {
		e.Code = employees.CodeFor(e.UserID)
	}
	if e.HireDate == "" {
		e.HireDate = s.engine.Today()
	}
	if e.Status == "" {
		e.Status = employees.StatusActive
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	err = s.repos.Employees.Create(ctx, e)
	if errors.Is(err, errors.ErrConflict) {
		return nil, errors.State("An employee record already exists for this user or code")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[SaveEmployee] Create")
	}
	log.Info().Int64("employee", e.ID).Str("code", e.Code).Msg("employee created")
	return e, nil
}

// DeleteEmployee deactivates the employee; records are never removed.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.repos.Employees.SetStatus(ctx, id, employees.StatusInactive)
}

// Attendance lists the records for date, or today when date is empty.
func (s *Service) Attendance(ctx context.Context, date string) ([]*attendance.Record, error) {
	return s.engine.ForDate(ctx, strings.TrimSpace(date))
}

// EmployeeAttendance lists one employee's records between two dates.
func (s *Service) EmployeeAttendance(ctx context.Context, employeeID int64, from, to string) ([]*attendance.Record, error) {
	if _, err := s.repos.Employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.engine.History(ctx, employeeID, strings.TrimSpace(from), strings.TrimSpace(to))
}

func (s *Service) Leaves(ctx context.Context, status string) ([]*leaves.Request, error) {
	if strings.TrimSpace(status) == "" {
		return s.repos.Leaves.List(ctx, nil)
	}
	st, err := leaves.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.repos.Leaves.List(ctx, &st)
}

// ResolveLeave approves or rejects a pending request on behalf of approverID.
func (s *Service) ResolveLeave(ctx context.Context, id int64, approve bool, approverID int64) (*leaves.Request, error) {
	status := leaves.StatusRejected
	if approve {
		status = leaves.StatusApproved
	}
	err := s.repos.Leaves.Resolve(ctx, id, status, approverID)
	if errors.Is(err, errors.ErrConflict) {
		return nil, errors.State("Leave request already resolved")
	}
	if err != nil {
		return nil, err
	}
	return s.repos.Leaves.GetByID(ctx, id)
}

func (s *Service) CreateTask(ctx context.Context, assignerID int64, in TaskInput) (*tasks.Task, error) {
	t, err := tasks.NewTask(in.Title, in.Description, in.AssignedTo, assignerID, in.DueDate, in.Priority)
	if err != nil {
		return nil, err
	}
	emp, err := s.repos.Employees.GetByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}
	if !emp.Active() {
		return nil, errors.ErrEmployeeInactive
	}
	if err := s.repos.Tasks.Create(ctx, t); err != nil {
		return nil, errors.Wrapf(err, "[CreateTask] Create")
	}
	return t, nil
}

func (s *Service) CreateSalary(ctx context.Context, in SalaryInput) (*payroll.Record, error) {
	basic, err := payroll.ParseAmount(in.Basic)
	if err != nil {
		return nil, err
	}
	allowances, err := payroll.ParseAmount(in.Allowances)
	if err != nil {
		return nil, err
	}
	deductions, err := payroll.ParseAmount(in.Deductions)
	if err != nil {
		return nil, err
	}
	r, err := payroll.NewRecord(in.EmployeeID, in.Month, in.Year, basic, allowances, deductions)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Employees.GetByID(ctx, in.EmployeeID); err != nil {
		return nil, err
	}
	if err := s.repos.Payroll.Create(ctx, r); err != nil {
		return nil, errors.Wrapf(err, "[CreateSalary] Create")
	}
	return r, nil
}

// MarkSalaryPaid records payment, dated today when paymentDate is empty.
func (s *Service) MarkSalaryPaid(ctx context.Context, id int64, paymentDate string) (*payroll.Record, error) {
	date := strings.TrimSpace(paymentDate)
	if date == "" {
		date = s.engine.Today()
	} else {
		var err error
		if date, err = payroll.ValidPaymentDate(date); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Payroll.MarkPaid(ctx, id, date); err != nil {
		return nil, err
	}
	return s.repos.Payroll.GetByID(ctx, id)
}
