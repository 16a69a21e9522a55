package mobile_test

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/mobile"
	"github.com/jrsteele09/go-ems-server/payroll"
	"github.com/jrsteele09/go-ems-server/store/sqlstore"
	"github.com/jrsteele09/go-ems-server/tasks"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "1234"
	testUsername     = "demo"
	testUserPassword = "demo"
)

type testFixture struct {
	db      *sqlstore.DB
	tokens  token.Service
	engine  *attendance.Engine
	service *mobile.Service
	user    *users.User
	now     time.Time
	ctx     context.Context
}

func setupTestFixture(t *testing.T, legacy bool) *testFixture {
	t.Helper()

	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &testFixture{db: db, now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), ctx: context.Background()}
	clock := func() time.Time { return f.now }

	dir := users.NewLocalDirectory(db.Users())
	if legacy {
		f.tokens = token.NewLegacyCodec(dir, token.WithLegacyNowFunc(clock))
	} else {
		f.tokens = token.New(token.NewHMACSigner(secretStr), dir, token.WithNowFunc(clock))
	}

	f.engine, err = attendance.NewEngine(db.Attendance(), attendance.WithNowFunc(clock), attendance.WithLocation(time.UTC))
	require.NoError(t, err)

	f.service, err = mobile.NewService(mobile.Repos{
		Employees: db.Employees(),
		Tasks:     db.Tasks(),
		Leaves:    db.Leaves(),
		Payroll:   db.Payroll(),
	}, dir, f.tokens, f.engine)
	require.NoError(t, err)

	f.user = f.createUser(t, testUsername, testUserPassword, "Demo Employee")
	return f
}

func (f *testFixture) createUser(t *testing.T, username, password, displayName string) *users.User {
	t.Helper()

	hash, err := users.HashPassword(password)
	require.NoError(t, err)
	u := &users.User{
		Username:     username,
		Email:        username + "@example.com",
		DisplayName:  displayName,
		PasswordHash: hash,
		Roles:        []users.RoleType{users.RoleEmployee},
	}
	require.NoError(t, f.db.Users().Upsert(f.ctx, u))
	return u
}

func (f *testFixture) login(t *testing.T) *mobile.LoginResult {
	t.Helper()
	res, err := f.service.Login(f.ctx, testUsername, testUserPassword)
	require.NoError(t, err)
	return res
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := mobile.NewService(mobile.Repos{}, nil, nil, nil)
	require.Error(t, err)
}

func TestLogin_RoundTrip(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		name := "jwt"
		if legacy {
			name = "legacy"
		}
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t, legacy)

			res := f.login(t)
			require.NotEmpty(t, res.Token)

			id, err := f.tokens.Validate(f.ctx, res.Token)
			require.NoError(t, err)
			require.Equal(t, f.user.ID, id)
		})
	}
}

func TestLogin_Errors(t *testing.T) {
	f := setupTestFixture(t, false)

	_, err := f.service.Login(f.ctx, "", "x")
	require.ErrorIs(t, err, errors.ErrMissingCredentials)
	_, err = f.service.Login(f.ctx, "demo", "")
	require.ErrorIs(t, err, errors.ErrMissingCredentials)

	_, err = f.service.Login(f.ctx, "demo", "wrong")
	require.Equal(t, errors.KindAuthentication, errors.KindOf(err))
	require.Equal(t, "The password you entered is incorrect", errors.MessageOf(err))

	_, err = f.service.Login(f.ctx, "ghost", "x")
	require.Equal(t, errors.KindAuthentication, errors.KindOf(err))
}

func TestLogin_AutoProvisions(t *testing.T) {
	f := setupTestFixture(t, false)

	_, err := f.db.Employees().GetByUserID(f.ctx, f.user.ID)
	require.ErrorIs(t, err, errors.ErrEmployeeNotFound)

	res := f.login(t)
	p := res.User
	require.Equal(t, "EMP001", p.EmployeeID)
	require.Equal(t, "General", p.Department)
	require.Equal(t, "Employee", p.Position)
	require.Equal(t, "2024-03-04", p.HireDate)
	require.Equal(t, "Demo Employee", p.Name)
	require.Equal(t, "demo@example.com", p.Email)

	emp, err := f.db.Employees().GetByUserID(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, "0.00", emp.Salary.StringFixed(2))
	require.Equal(t, employees.StatusActive, emp.Status)
	require.Equal(t, emp.ID, p.ID)

	again := f.login(t)
	require.Equal(t, p.ID, again.User.ID, "second login reuses the record")
}

func TestEnsureEmployee_Concurrent(t *testing.T) {
	f := setupTestFixture(t, false)

	var wg sync.WaitGroup
	ids := make([]int64, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emp, err := f.service.EnsureEmployee(f.ctx, f.user.ID)
			if err == nil {
				ids[i] = emp.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	list, err := f.db.Employees().List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDemoScenario_ProfileMatchesLogin(t *testing.T) {
	f := setupTestFixture(t, false)

	emp := &employees.Employee{
		UserID:     f.user.ID,
		Code:       "EMP001",
		Department: "IT",
		Position:   "Software Developer",
		Salary:     decimal.RequireFromString("5000.00"),
		HireDate:   "2023-01-15",
		Phone:      "+1234567890",
		Status:     employees.StatusActive,
	}
	require.NoError(t, f.db.Employees().Create(f.ctx, emp))

	res := f.login(t)
	require.Equal(t, "EMP001", res.User.EmployeeID)
	require.Equal(t, "IT", res.User.Department)

	id, err := f.tokens.Validate(f.ctx, res.Token)
	require.NoError(t, err)
	profile, err := f.service.Profile(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, *res.User, *profile)
	require.Equal(t, "+1234567890", profile.Phone)
	require.Equal(t, "2023-01-15", profile.HireDate)
}

func TestProfile_UnknownName(t *testing.T) {
	f := setupTestFixture(t, false)
	nameless := f.createUser(t, "nameless", "pw", "")
	nameless.Email = ""
	require.NoError(t, f.db.Users().Upsert(f.ctx, nameless))

	p, err := f.service.Profile(f.ctx, nameless.ID)
	require.NoError(t, err)
	require.Equal(t, "Unknown", p.Name)
	require.Equal(t, "", p.Email)
}

func TestAttendance_CheckInOut(t *testing.T) {
	f := setupTestFixture(t, false)

	_, err := f.service.CheckOut(f.ctx, f.user.ID)
	require.ErrorIs(t, err, errors.ErrNoCheckIn)

	in, err := f.service.CheckIn(f.ctx, f.user.ID, " Office ", "")
	require.NoError(t, err)
	require.Equal(t, "Office", in.Location)

	f.now = time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	out, err := f.service.CheckOut(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, 9.0, *out.HoursWorked)

	f.now = f.now.Add(30 * time.Minute)
	again, err := f.service.CheckOut(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, out.ID, again.ID)
	require.Equal(t, 9.5, *again.HoursWorked)
}

func TestTasks_ListAndUpdate(t *testing.T) {
	f := setupTestFixture(t, false)
	emp, err := f.service.EnsureEmployee(f.ctx, f.user.ID)
	require.NoError(t, err)

	other := f.createUser(t, "other", "pw", "Other")
	otherEmp, err := f.service.EnsureEmployee(f.ctx, other.ID)
	require.NoError(t, err)

	mine, err := tasks.NewTask("Mine", "", emp.ID, 1, "2024-03-05", "")
	require.NoError(t, err)
	require.NoError(t, f.db.Tasks().Create(f.ctx, mine))
	theirs, err := tasks.NewTask("Theirs", "", otherEmp.ID, 1, "", "")
	require.NoError(t, err)
	require.NoError(t, f.db.Tasks().Create(f.ctx, theirs))

	list, err := f.service.Tasks(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	require.NoError(t, f.service.UpdateTaskStatus(f.ctx, f.user.ID, mine.ID, "in_progress"))
	require.ErrorIs(t, f.service.UpdateTaskStatus(f.ctx, f.user.ID, theirs.ID, "completed"), errors.ErrTaskNotFound)
	require.Equal(t, errors.KindValidation, errors.KindOf(f.service.UpdateTaskStatus(f.ctx, f.user.ID, mine.ID, "done")))

	list, err = f.service.Tasks(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, tasks.StatusInProgress, list[0].Status)
}

func TestLeaves_ApplyAndHistory(t *testing.T) {
	f := setupTestFixture(t, false)

	first, err := f.service.ApplyLeave(f.ctx, f.user.ID, mobile.LeaveApplication{Type: "sick", StartDate: "2024-03-01", EndDate: "2024-03-02", Reason: "flu"})
	require.NoError(t, err)
	require.Equal(t, "pending", string(first.Status))

	second, err := f.service.ApplyLeave(f.ctx, f.user.ID, mobile.LeaveApplication{Type: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-05"})
	require.NoError(t, err)

	_, err = f.service.ApplyLeave(f.ctx, f.user.ID, mobile.LeaveApplication{Type: "sabbatical", StartDate: "2024-07-01", EndDate: "2024-07-05"})
	require.Equal(t, errors.KindValidation, errors.KindOf(err))

	history, err := f.service.LeaveHistory(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, second.ID, history[0].ID)
	require.Equal(t, first.ID, history[1].ID)
}

func TestSalary_NewestFirst(t *testing.T) {
	f := setupTestFixture(t, false)
	emp, err := f.service.EnsureEmployee(f.ctx, f.user.ID)
	require.NoError(t, err)

	for _, month := range []int{1, 3, 2} {
		r, err := payroll.NewRecord(emp.ID, month, 2024, decimal.NewFromInt(1000), decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, f.db.Payroll().Create(f.ctx, r))
	}

	list, err := f.service.Salary(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []int{3, 2, 1}, []int{list[0].Month, list[1].Month, list[2].Month})
}

func TestInactiveEmployee_IsRejected(t *testing.T) {
	f := setupTestFixture(t, false)
	res := f.login(t)
	require.NoError(t, f.db.Employees().SetStatus(f.ctx, res.User.ID, employees.StatusInactive))

	_, err := f.service.Login(f.ctx, testUsername, testUserPassword)
	require.ErrorIs(t, err, errors.ErrEmployeeInactive)
	_, err = f.service.CheckIn(f.ctx, f.user.ID, "", "")
	require.ErrorIs(t, err, errors.ErrEmployeeInactive)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, false)
	res := f.login(t)

	require.NoError(t, f.service.Logout(f.ctx, res.Token))
	_, err := f.tokens.Validate(f.ctx, res.Token)
	require.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestLegacyToken_RejectsMalformed(t *testing.T) {
	f := setupTestFixture(t, true)
	forged := base64.StdEncoding.EncodeToString([]byte(strings.Join([]string{"1", "2"}, ":")))
	_, err := f.tokens.Validate(f.ctx, forged)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}
