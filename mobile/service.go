package mobile

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Employees employees.Repo // Employee records, one per identity
	Tasks     tasks.Repo     // Task assignments
	Leaves    leaves.Repo    // Leave applications
	Payroll   payroll.Repo   // Monthly salary records
}

// Service implements the operations behind the mobile endpoints. Every
// authenticated call names the caller by identity id; the employee record is
// resolved, or created, from it.
type Service struct {
	repos     Repos
	directory users.Directory
	tokens    token.Service
	engine    *attendance.Engine
}

// Profile is the employee summary returned at login and by the profile endpoint.
type Profile struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	HireDate   string `json:"hire_date"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// LeaveApplication is the body of a leave request.
type LeaveApplication struct {
	Type      string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func NewService(repos Repos, directory users.Directory, tokens token.Service, engine *attendance.Engine) (*Service, error) {
	if repos.Employees == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] Employees repo is required")
	}
	if repos.Tasks == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] Tasks repo is required")
	}
	if repos.Leaves == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] Leaves repo is required")
	}
	if repos.Payroll == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] Payroll repo is required")
	}
	if directory == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] directory is required")
	}
	if tokens == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] tokens is required")
	}
	if engine == nil {
		return nil, errors.New(errors.KindInternal, "[NewService] attendance engine is required")
	}
	return &Service{
		repos:     repos,
		directory: directory,
		tokens:    tokens,
		engine:    engine,
	}, nil
}

// Login authenticates against the directory and returns a bearer token with
// the caller's profile. First logins provision an employee record.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.ErrMissingCredentials
	}

	user, err := s.directory.Authenticate(ctx, username, password)
	if err != nil {
		if errors.KindOf(err) == errors.KindAuthentication {
			return nil, err
		}
		return nil, errors.Wrapf(err, "[Login] Authenticate")
	}

	emp, err := s.EnsureEmployee(ctx, user.ID)
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("could not provision employee record")
			return nil, errors.ErrEmployeeNotFound
		}
		return nil, err
	}
	if !emp.Active() {
		return nil, errors.ErrEmployeeInactive
	}

	tok, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "[Login] Issue")
	}
	return &LoginResult{Token: tok, User: newProfile(user, emp)}, nil
}

// Logout revokes the caller's token where the token format allows it.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	return s.tokens.Revoke(ctx, rawToken)
}

// EnsureEmployee returns the identity's employee record, creating the default
// one when none exists.
func (s *Service) EnsureEmployee(ctx context.Context, identityID int64) (*employees.Employee, error) {
	emp, err := s.repos.Employees.GetByUserID(ctx, identityID)
	if err == nil {
		return emp, nil
	}
	if !errors.Is(err, errors.ErrEmployeeNotFound) {
		return nil, errors.Wrapf(err, "[EnsureEmployee] GetByUserID")
	}

	emp = employees.NewProvisioned(identityID, s.engine.Today())
	err = s.repos.Employees.Create(ctx, emp)
	if errors.Is(err, errors.ErrConflict) {
		// provisioned by a concurrent request
		return s.repos.Employees.GetByUserID(ctx, identityID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[EnsureEmployee] Create")
	}
	log.Info().Int64("user_id", identityID).Str("employee_id", emp.Code).Msg("provisioned employee record")
	return emp, nil
}

// employee resolves the active employee record behind an authenticated call.
func (s *Service) employee(ctx context.Context, identityID int64) (*employees.Employee, error) {
	emp, err := s.EnsureEmployee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if !emp.Active() {
		return nil, errors.ErrEmployeeInactive
	}
	return emp, nil
}

func (s *Service) CheckIn(ctx context.Context, identityID int64, location, notes string) (*attendance.Record, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.engine.CheckIn(ctx, emp.ID, strings.TrimSpace(location), strings.TrimSpace(notes))
}

func (s *Service) CheckOut(ctx context.Context, identityID int64) (*attendance.Record, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.engine.CheckOut(ctx, emp.ID)
}

func (s *Service) Tasks(ctx context.Context, identityID int64) ([]*tasks.Task, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.repos.Tasks.ListForAssignee(ctx, emp.ID)
}

// UpdateTaskStatus changes the status of one of the caller's own tasks.
func (s *Service) UpdateTaskStatus(ctx context.Context, identityID, taskID int64, status string) error {
	st, err := tasks.ParseStatus(status)
	if err != nil {
		return err
	}
	if taskID <= 0 {
		return errors.Validation("task_id is required")
	}
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return err
	}
	return s.repos.Tasks.UpdateStatus(ctx, taskID, emp.ID, st)
}

// ApplyLeave files a pending leave request for the caller.
func (s *Service) ApplyLeave(ctx context.Context, identityID int64, app LeaveApplication) (*leaves.Request, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	req, err := leaves.NewRequest(emp.ID, app.Type, app.StartDate, app.EndDate, app.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Leaves.Create(ctx, req); err != nil {
		return nil, errors.Wrapf(err, "[ApplyLeave] Create")
	}
	return req, nil
}

func (s *Service) LeaveHistory(ctx context.Context, identityID int64) ([]*leaves.Request, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.repos.Leaves.ListForEmployee(ctx, emp.ID)
}

func (s *Service) Salary(ctx context.Context, identityID int64) ([]*payroll.Record, error) {
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.repos.Payroll.ListForEmployee(ctx, emp.ID)
}

func (s *Service) Profile(ctx context.Context, identityID int64) (*Profile, error) {
	user, err := s.directory.Lookup(ctx, identityID)
	if err != nil {
		return nil, errors.Wrapf(err, "[Profile] Lookup")
	}
	emp, err := s.employee(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return newProfile(user, emp), nil
}

func newProfile(user *users.User, emp *employees.Employee) *Profile {
	p := &Profile{
		ID:         emp.ID,
		Name:       "Unknown",
		EmployeeID: emp.Code,
		Department: emp.Department,
		Position:   emp.Position,
		Phone:      emp.Phone,
		HireDate:   emp.HireDate,
	}
	if user != nil {
		if name := user.Name(); name != "" {
			p.Name = name
		}
		p.Email = user.Email
	}
	return p
}
