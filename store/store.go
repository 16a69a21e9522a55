package store

import (
	"context"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/users"
)

// Store is the entity store backing every service.
type Store interface {
	Users() users.UserRepo
	Employees() employees.Repo
	Attendance() attendance.Repo
	Leaves() leaves.Repo
	Tasks() tasks.Repo
	Payroll() payroll.Repo
	Ping(ctx context.Context) error
	Close() error
}
