// Package storetest holds the behaviour every store.Store implementation
// must share. Store packages run it from their own tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/leaves"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/store"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Suite runs against a fresh store for every test.
type Suite struct {
	suite.Suite

	// Open returns an empty store.
	Open func() (store.Store, error)

	store store.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	st, err := s.Open()
	require.NoError(s.T(), err, "failed to open test store")
	s.store = st
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *Suite) createUser(username string) *users.User {
	u := &users.User{Username: username, Email: username + "@example.com", DisplayName: username, Roles: []users.RoleType{users.RoleEmployee}}
	require.NoError(s.T(), s.store.Users().Upsert(s.ctx, u))
	return u
}

func (s *Suite) createEmployee(username string) *employees.Employee {
	u := s.createUser(username)
	e := employees.NewProvisioned(u.ID, "2024-03-04")
	require.NoError(s.T(), s.store.Employees().Create(s.ctx, e))
	return e
}

func (s *Suite) TestUsers_UpsertAndGet() {
	repo := s.store.Users()

	u := &users.User{Username: "demo", Email: "demo@example.com", DisplayName: "Demo Employee", PasswordHash: "hash",
		Roles: []users.RoleType{users.RoleEmployee, users.RoleManager}}
	require.NoError(s.T(), repo.Upsert(s.ctx, u))
	require.NotZero(s.T(), u.ID)

	found, err := repo.GetByUsername(s.ctx, "demo")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u.ID, found.ID)
	assert.Equal(s.T(), "Demo Employee", found.DisplayName)
	assert.Equal(s.T(), "hash", found.PasswordHash)
	assert.True(s.T(), found.HasRole(users.RoleManager))

	again := &users.User{Username: "demo", Email: "new@example.com"}
	require.NoError(s.T(), repo.Upsert(s.ctx, again))
	assert.Equal(s.T(), u.ID, again.ID, "upsert by username keeps the id")

	byID, err := repo.GetByID(s.ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new@example.com", byID.Email)

	_, err = repo.GetByID(s.ctx, 999)
	assert.ErrorIs(s.T(), err, errors.ErrIdentityNotFound)
	_, err = repo.GetByUsername(s.ctx, "nobody")
	assert.ErrorIs(s.T(), err, errors.ErrIdentityNotFound)
}

func (s *Suite) TestUsers_ExternalIDAndList() {
	repo := s.store.Users()

	ext := &users.User{Username: "jane", ExternalID: "sub-123"}
	require.NoError(s.T(), repo.Upsert(s.ctx, ext))
	s.createUser("local1")
	s.createUser("local2")

	found, err := repo.GetByExternalID(s.ctx, "sub-123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), ext.ID, found.ID)

	_, err = repo.GetByExternalID(s.ctx, "")
	assert.ErrorIs(s.T(), err, errors.ErrIdentityNotFound)

	all, err := repo.List(s.ctx, 0, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)

	page, err := repo.List(s.ctx, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), all[1].ID, page[0].ID)
}

func (s *Suite) TestEmployees_CreateGetUpdate() {
	repo := s.store.Employees()
	e := s.createEmployee("demo")

	byUser, err := repo.GetByUserID(s.ctx, e.UserID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), e.ID, byUser.ID)
	assert.Equal(s.T(), employees.CodeFor(e.UserID), byUser.Code)
	assert.Equal(s.T(), "0.00", byUser.Salary.StringFixed(2))
	assert.Equal(s.T(), employees.StatusActive, byUser.Status)

	dup := employees.NewProvisioned(e.UserID, "2024-03-04")
	err = repo.Create(s.ctx, dup)
	assert.ErrorIs(s.T(), err, errors.ErrConflict, "one employee per identity")

	byUser.Department = "IT"
	byUser.Salary = decimal.RequireFromString("5000.00")
	byUser.Code = "CHANGED"
	require.NoError(s.T(), repo.Update(s.ctx, byUser))

	updated, err := repo.GetByID(s.ctx, e.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "IT", updated.Department)
	assert.Equal(s.T(), "5000.00", updated.Salary.StringFixed(2))
	assert.Equal(s.T(), e.Code, updated.Code, "code is immutable")

	_, err = repo.GetByUserID(s.ctx, 999)
	assert.ErrorIs(s.T(), err, errors.ErrEmployeeNotFound)
	assert.ErrorIs(s.T(), repo.Update(s.ctx, &employees.Employee{ID: 999, Status: employees.StatusActive}), errors.ErrEmployeeNotFound)
}

func (s *Suite) TestEmployees_StatusCountsAndPayroll() {
	repo := s.store.Employees()
	a := s.createEmployee("a")
	b := s.createEmployee("b")
	c := s.createEmployee("c")

	for e, salary := range map[*employees.Employee]string{a: "1000.10", b: "2000.20", c: "4000.00"} {
		e.Salary = decimal.RequireFromString(salary)
		require.NoError(s.T(), repo.Update(s.ctx, e))
	}
	require.NoError(s.T(), repo.SetStatus(s.ctx, c.ID, employees.StatusInactive))

	count, err := repo.CountActive(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, count)

	total, err := repo.ActivePayroll(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "3000.30", total.StringFixed(2))

	list, err := repo.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), a.ID, list[0].ID)
	assert.Equal(s.T(), employees.StatusInactive, list[2].Status)

	assert.ErrorIs(s.T(), repo.SetStatus(s.ctx, 999, employees.StatusInactive), errors.ErrEmployeeNotFound)
}

func (s *Suite) TestAttendance_LatestAndVersioning() {
	repo := s.store.Attendance()
	e := s.createEmployee("demo")
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	_, err := repo.Latest(s.ctx, e.ID, "2024-03-04")
	assert.ErrorIs(s.T(), err, errors.ErrNotFound)

	first := &attendance.Record{EmployeeID: e.ID, CheckIn: in, Date: "2024-03-04", Location: "Office"}
	require.NoError(s.T(), repo.Insert(s.ctx, first))
	second := &attendance.Record{EmployeeID: e.ID, CheckIn: in.Add(time.Hour), Date: "2024-03-04"}
	require.NoError(s.T(), repo.Insert(s.ctx, second))

	open, err := repo.CountOpen(s.ctx, e.ID, "2024-03-04")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, open)

	latest, err := repo.Latest(s.ctx, e.ID, "2024-03-04")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), second.ID, latest.ID)
	assert.True(s.T(), latest.CheckIn.Equal(in.Add(time.Hour)))
	assert.True(s.T(), latest.Open())

	stale := *latest
	out := in.Add(9 * time.Hour)
	hours := 8.0
	latest.CheckOut, latest.HoursWorked = &out, &hours
	require.NoError(s.T(), repo.UpdateCheckOut(s.ctx, latest))

	stale.CheckOut, stale.HoursWorked = &out, &hours
	assert.ErrorIs(s.T(), repo.UpdateCheckOut(s.ctx, &stale), errors.ErrConflict)

	closed, err := repo.Latest(s.ctx, e.ID, "2024-03-04")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), closed.CheckOut)
	assert.True(s.T(), closed.CheckOut.Equal(out))
	assert.Equal(s.T(), 8.0, *closed.HoursWorked)
	assert.Equal(s.T(), latest.Version, closed.Version)
}

func (s *Suite) TestAttendance_ConcurrentCheckOutOneWins() {
	repo := s.store.Attendance()
	e := s.createEmployee("demo")
	rec := &attendance.Record{EmployeeID: e.ID, CheckIn: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), Date: "2024-03-04"}
	require.NoError(s.T(), repo.Insert(s.ctx, rec))

	const writers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := *rec
			out := rec.CheckIn.Add(time.Duration(i+1) * time.Hour)
			h := float64(i + 1)
			r.CheckOut, r.HoursWorked = &out, &h
			if err := repo.UpdateCheckOut(s.ctx, &r); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(s.T(), 1, wins)
}

func (s *Suite) TestAttendance_ConcurrentCheckInOneOpen() {
	repo := s.store.Attendance()
	e := s.createEmployee("demo")
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	const writers = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := &attendance.Record{EmployeeID: e.ID, CheckIn: in.Add(time.Duration(i) * time.Second), Date: "2024-03-04"}
			err := repo.InsertIfNoneOpen(s.ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, errors.ErrAlreadyCheckedIn):
				rejected++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(s.T(), 1, wins)
	assert.Equal(s.T(), writers-1, rejected)

	open, err := repo.CountOpen(s.ctx, e.ID, "2024-03-04")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, open)

	other := &attendance.Record{EmployeeID: e.ID, CheckIn: in, Date: "2024-03-05"}
	require.NoError(s.T(), repo.InsertIfNoneOpen(s.ctx, other))
	assert.NotZero(s.T(), other.ID)
	assert.Equal(s.T(), int64(1), other.Version)
}

func (s *Suite) TestAttendance_Lists() {
	repo := s.store.Attendance()
	a := s.createEmployee("a")
	b := s.createEmployee("b")
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	for i, date := range []string{"2024-03-01", "2024-03-04", "2024-03-04"} {
		require.NoError(s.T(), repo.Insert(s.ctx, &attendance.Record{EmployeeID: a.ID, CheckIn: base.Add(time.Duration(i) * time.Minute), Date: date}))
	}
	require.NoError(s.T(), repo.Insert(s.ctx, &attendance.Record{EmployeeID: b.ID, CheckIn: base, Date: "2024-03-04"}))

	history, err := repo.ListForEmployee(s.ctx, a.ID, "", "")
	require.NoError(s.T(), err)
	require.Len(s.T(), history, 3)
	assert.Equal(s.T(), "2024-03-04", history[0].Date)
	assert.Greater(s.T(), history[0].ID, history[1].ID)

	ranged, err := repo.ListForEmployee(s.ctx, a.ID, "2024-03-02", "2024-03-31")
	require.NoError(s.T(), err)
	assert.Len(s.T(), ranged, 2)

	day, err := repo.ListForDate(s.ctx, "2024-03-04")
	require.NoError(s.T(), err)
	assert.Len(s.T(), day, 3)
}

func (s *Suite) TestLeaves() {
	repo := s.store.Leaves()
	e := s.createEmployee("demo")
	approver := s.createUser("boss")

	first, err := leaves.NewRequest(e.ID, "sick", "2024-03-01", "2024-03-01", "flu")
	require.NoError(s.T(), err)
	require.NoError(s.T(), repo.Create(s.ctx, first))
	second, err := leaves.NewRequest(e.ID, "vacation", "2024-07-01", "2024-07-05", "")
	require.NoError(s.T(), err)
	require.NoError(s.T(), repo.Create(s.ctx, second))

	history, err := repo.ListForEmployee(s.ctx, e.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), history, 2)
	assert.Equal(s.T(), second.ID, history[0].ID, "newest first")
	assert.Equal(s.T(), leaves.StatusPending, history[0].Status)

	pending, err := repo.CountPending(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, pending)

	require.NoError(s.T(), repo.Resolve(s.ctx, first.ID, leaves.StatusApproved, approver.ID))
	assert.ErrorIs(s.T(), repo.Resolve(s.ctx, first.ID, leaves.StatusRejected, approver.ID), errors.ErrConflict)
	assert.ErrorIs(s.T(), repo.Resolve(s.ctx, 999, leaves.StatusRejected, approver.ID), errors.ErrLeaveNotFound)

	got, err := repo.GetByID(s.ctx, first.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), leaves.StatusApproved, got.Status)
	require.NotNil(s.T(), got.ApprovedBy)
	assert.Equal(s.T(), approver.ID, *got.ApprovedBy)

	status := leaves.StatusPending
	onlyPending, err := repo.List(s.ctx, &status)
	require.NoError(s.T(), err)
	require.Len(s.T(), onlyPending, 1)
	assert.Equal(s.T(), second.ID, onlyPending[0].ID)

	all, err := repo.List(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)
}

func (s *Suite) TestTasks() {
	repo := s.store.Tasks()
	e := s.createEmployee("demo")
	other := s.createEmployee("other")

	mk := func(title, due string) *tasks.Task {
		t, err := tasks.NewTask(title, "", e.ID, 1, due, "")
		require.NoError(s.T(), err)
		require.NoError(s.T(), repo.Create(s.ctx, t))
		return t
	}
	undated := mk("undated", "")
	late := mk("late", "2024-03-10")
	early := mk("early", "2024-03-05")

	list, err := repo.ListForAssignee(s.ctx, e.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), []int64{early.ID, late.ID, undated.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(s.T(), tasks.PriorityMedium, list[0].Priority)

	require.NoError(s.T(), repo.UpdateStatus(s.ctx, late.ID, e.ID, tasks.StatusCompleted))
	assert.ErrorIs(s.T(), repo.UpdateStatus(s.ctx, late.ID, other.ID, tasks.StatusPending), errors.ErrTaskNotFound)
	assert.ErrorIs(s.T(), repo.UpdateStatus(s.ctx, 999, e.ID, tasks.StatusPending), errors.ErrTaskNotFound)

	list, err = repo.ListForAssignee(s.ctx, e.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), tasks.StatusCompleted, list[1].Status)

	due, err := repo.CountDueOn(s.ctx, "2024-03-05")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, due)
}

func (s *Suite) TestPayroll() {
	repo := s.store.Payroll()
	e := s.createEmployee("demo")
	d := decimal.RequireFromString

	for _, ym := range [][2]int{{2023, 12}, {2024, 2}, {2024, 1}} {
		r, err := payroll.NewRecord(e.ID, ym[1], ym[0], d("5000"), d("100.50"), d("50.25"))
		require.NoError(s.T(), err)
		require.NoError(s.T(), repo.Create(s.ctx, r))
	}

	list, err := repo.ListForEmployee(s.ctx, e.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), [2]int{2024, 2}, [2]int{list[0].Year, list[0].Month})
	assert.Equal(s.T(), [2]int{2024, 1}, [2]int{list[1].Year, list[1].Month})
	assert.Equal(s.T(), [2]int{2023, 12}, [2]int{list[2].Year, list[2].Month})
	assert.Equal(s.T(), "5050.25", list[0].Net.StringFixed(2))

	require.NoError(s.T(), repo.MarkPaid(s.ctx, list[0].ID, "2024-02-28"))
	paid, err := repo.GetByID(s.ctx, list[0].ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), payroll.StatusPaid, paid.Status)
	require.NotNil(s.T(), paid.PaymentDate)
	assert.Equal(s.T(), "2024-02-28", *paid.PaymentDate)

	assert.ErrorIs(s.T(), repo.MarkPaid(s.ctx, 999, "2024-02-28"), errors.ErrSalaryNotFound)
	_, err = repo.GetByID(s.ctx, 999)
	assert.ErrorIs(s.T(), err, errors.ErrSalaryNotFound)
}

func (s *Suite) TestPing() {
	assert.NoError(s.T(), s.store.Ping(s.ctx))
}
