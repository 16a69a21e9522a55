package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/jrsteele09/go-ems-server/server"
	"github.com/jrsteele09/go-ems-server/store/sqlstore"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Adm1n-password"

type testFixture struct {
	db     *sqlstore.DB
	server *server.Server
	now    time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return setupTestFixtureWithSigner(t, token.NewHMACSigner("test-secret"), nil)
}

func setupTestFixtureWithSigner(t *testing.T, signer token.Signer, jwks *token.JWKS) *testFixture {
	t.Helper()
	t.Setenv("ENV", "DEV")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("DIRECTORY", "local")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", adminPassword)
	t.Setenv("ALLOWED_ORIGINS", "*")

	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &testFixture{db: db, now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	nowFunc := func() time.Time { return f.now }

	directory := users.NewLocalDirectory(db.Users())
	tokens := token.New(signer, directory, token.WithNowFunc(nowFunc))
	engine, err := attendance.NewEngine(db.Attendance(), attendance.WithNowFunc(nowFunc), attendance.WithLocation(time.UTC))
	require.NoError(t, err)

	f.server, err = server.New(config.New(), server.Deps{
		Store:     db,
		Directory: directory,
		Tokens:    tokens,
		Engine:    engine,
		JWKS:      jwks,
	})
	require.NoError(t, err)
	return f
}

func (f *testFixture) do(t *testing.T, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (f *testFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/mobile/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	tok, ok := body["token"].(string)
	require.True(t, ok)
	return tok
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := server.New(config.New(), server.Deps{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	status, body := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "ok", body["status"])
}

func TestLogin_DemoProfile(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, "/mobile/login", "", map[string]string{"username": "demo", "password": "demo"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	require.Equal(t, "EMP001", user["employee_id"])
	require.Equal(t, "Demo Employee", user["name"])
	require.Equal(t, "IT", user["department"])

	status, body = f.do(t, http.MethodGet, "/mobile/profile", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, user, body["profile"])
}

func TestLogin_Failures(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{"missing password", map[string]string{"username": "demo"}, http.StatusBadRequest, "Username and password are required"},
		{"missing username", map[string]string{"password": "demo"}, http.StatusBadRequest, "Username and password are required"},
		{"wrong password", map[string]string{"username": "demo", "password": "nope"}, http.StatusUnauthorized, "The password you entered is incorrect"},
		{"unknown user", map[string]string{"username": "ghost", "password": "x"}, http.StatusUnauthorized, "Unknown username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, http.MethodPost, "/mobile/login", "", tt.body)
			require.Equal(t, tt.status, status)
			require.Equal(t, false, body["success"])
			require.Equal(t, tt.message, body["message"])
		})
	}
}

func TestBearer(t *testing.T) {
	f := setupTestFixture(t)
	tok := f.login(t, "demo", "demo")

	status, body := f.do(t, http.MethodGet, "/mobile/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Missing bearer token", body["message"])

	status, _ = f.do(t, http.MethodGet, "/mobile/tasks", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/mobile/tasks", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "scheme is case-insensitive")

	req = httptest.NewRequest(http.MethodGet, "/mobile/tasks", nil)
	req.Header.Set("Authorization", "Basic "+tok)
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceFlow(t *testing.T) {
	f := setupTestFixture(t)
	tok := f.login(t, "demo", "demo")

	status, body := f.do(t, http.MethodPost, "/mobile/attendance/checkout", tok, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "No check-in record found", body["message"])

	status, body = f.do(t, http.MethodPost, "/mobile/attendance/checkin", tok, map[string]string{"location": "Office"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Checked in successfully", body["message"])
	require.Equal(t, "2024-03-04 09:00:00", body["check_in_time"])

	f.now = f.now.Add(9 * time.Hour)
	status, body = f.do(t, http.MethodPost, "/mobile/attendance/checkout", tok, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Checked out successfully", body["message"])
	require.Equal(t, 9.0, body["hours_worked"])
}

func TestLegacyPrefix(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, "/wp-json/ems/v1/mobile/login", "", map[string]string{"username": "demo", "password": "demo"})
	require.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodGet, "/wp-json/ems/v1/mobile/profile", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "EMP001", body["profile"].(map[string]any)["employee_id"])
}

func TestTasksAndLeaves(t *testing.T) {
	f := setupTestFixture(t)
	tok := f.login(t, "demo", "demo")

	status, body := f.do(t, http.MethodGet, "/mobile/tasks", tok, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{}, body["tasks"])

	status, body = f.do(t, http.MethodPost, "/mobile/tasks/update", tok, map[string]any{"task_id": 42, "status": "completed"})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Task not found", body["message"])

	status, _ = f.do(t, http.MethodPost, "/mobile/tasks/update", tok, map[string]any{"task_id": 42, "status": "done"})
	require.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodPost, "/mobile/leaves/apply", tok, map[string]string{
		"leave_type": "vacation", "start_date": "2024-04-01", "end_date": "2024-04-03", "reason": "trip", "status": "approved",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Leave application submitted", body["message"])
	require.Equal(t, "pending", body["leave"].(map[string]any)["status"])

	status, body = f.do(t, http.MethodGet, "/mobile/leaves/history", tok, nil)
	require.Equal(t, http.StatusOK, status)
	history := body["leaves"].([]any)
	require.Len(t, history, 1)
	require.Equal(t, "pending", history[0].(map[string]any)["status"])

	status, body = f.do(t, http.MethodGet, "/mobile/salary", tok, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{}, body["salary"])
}

func TestLogout_RevokesToken(t *testing.T) {
	f := setupTestFixture(t)
	tok := f.login(t, "demo", "demo")

	status, _ := f.do(t, http.MethodPost, "/mobile/logout", tok, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/mobile/profile", tok, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token revoked", body["message"])
}

func TestAdmin_RequiresManager(t *testing.T) {
	f := setupTestFixture(t)
	tok := f.login(t, "demo", "demo")

	status, body := f.do(t, http.MethodGet, "/admin/dashboard/stats", tok, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Insufficient permissions", body["message"])

	status, _ = f.do(t, http.MethodGet, "/admin/dashboard/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAdmin_Workflow(t *testing.T) {
	f := setupTestFixture(t)
	demo := f.login(t, "demo", "demo")
	admin := f.login(t, "admin", adminPassword)

	status, body := f.do(t, http.MethodGet, "/admin/employees", admin, nil)
	require.Equal(t, http.StatusOK, status)
	list := body["employees"].([]any)
	var demoEmployeeID float64
	for _, item := range list {
		view := item.(map[string]any)
		emp := view["employee"].(map[string]any)
		if emp["employee_id"] == "EMP001" {
			demoEmployeeID = emp["id"].(float64)
			require.Equal(t, "5000.00", emp["salary"])
		}
	}
	require.NotZero(t, demoEmployeeID)

	status, body = f.do(t, http.MethodPost, "/admin/tasks", admin, map[string]any{
		"title": "Quarterly report", "assigned_to": demoEmployeeID, "due_date": "2024-03-04", "priority": "high",
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.do(t, http.MethodGet, "/mobile/tasks", demo, nil)
	require.Equal(t, http.StatusOK, status)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 1)
	taskID := tasks[0].(map[string]any)["id"].(float64)

	status, _ = f.do(t, http.MethodPost, "/mobile/tasks/update", demo, map[string]any{"task_id": taskID, "status": "in_progress"})
	require.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodPost, "/mobile/leaves/apply", demo, map[string]string{
		"leave_type": "sick", "start_date": "2024-03-05", "end_date": "2024-03-05",
	})
	require.Equal(t, http.StatusOK, status)
	leaveID := body["leave"].(map[string]any)["id"].(float64)

	status, body = f.do(t, http.MethodGet, "/admin/dashboard/stats", admin, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]any)
	require.Equal(t, 1.0, stats["pending_leaves"])
	require.Equal(t, 1.0, stats["today_tasks"])

	path := "/admin/leaves/" + jsonID(leaveID) + "/approve"
	status, body = f.do(t, http.MethodPost, path, admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "approved", body["leave"].(map[string]any)["status"])

	status, body = f.do(t, http.MethodPost, path, admin, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Leave request already resolved", body["message"])

	status, body = f.do(t, http.MethodPost, "/admin/salary", admin, map[string]any{
		"employee_id": demoEmployeeID, "month": 2, "year": 2024, "basic_salary": "5000", "allowances": "250.50", "deductions": "100",
	})
	require.Equal(t, http.StatusOK, status)
	salaryID := body["salary"].(map[string]any)["id"].(float64)
	require.Equal(t, "5150.50", body["salary"].(map[string]any)["net_salary"])

	status, body = f.do(t, http.MethodPost, "/admin/salary/"+jsonID(salaryID)+"/paid", admin, map[string]string{"payment_date": "2024-02-29"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "paid", body["salary"].(map[string]any)["status"])

	status, body = f.do(t, http.MethodGet, "/mobile/salary", demo, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["salary"].([]any), 1)

	status, _ = f.do(t, http.MethodDelete, "/admin/employees/"+jsonID(demoEmployeeID), admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodGet, "/mobile/profile", demo, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Employee account is inactive", body["message"])

	status, _ = f.do(t, http.MethodDelete, "/admin/employees/abc", admin, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAdmin_Attendance(t *testing.T) {
	f := setupTestFixture(t)
	demo := f.login(t, "demo", "demo")
	admin := f.login(t, "admin", adminPassword)

	status, _ := f.do(t, http.MethodPost, "/mobile/attendance/checkin", demo, map[string]string{"location": "Office"})
	require.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/admin/attendance", admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["attendance"].([]any), 1)

	status, body = f.do(t, http.MethodGet, "/admin/attendance?date=2024-03-03", admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{}, body["attendance"])

	status, _ = f.do(t, http.MethodGet, "/admin/attendance?date=yesterday", admin, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCors_Preflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/mobile/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestUnknownRoute(t *testing.T) {
	f := setupTestFixture(t)
	status, body := f.do(t, http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, false, body["success"])
}

func TestRequestID(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	handler := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, f.server.APIMiddleware()...)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Internal server error", body["message"])
}

func TestInitialiseSystem_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.server.InitialiseSystem(context.Background()))

	list, err := f.db.Users().List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "demo", list[0].Username, "demo account takes the first identity")
}

func jsonID(id float64) string {
	raw, _ := json.Marshal(int64(id))
	return string(raw)
}

func TestJWKS(t *testing.T) {
	f := setupTestFixture(t)
	status, _ := f.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusNotFound, status, "not published for HMAC tokens")

	kp, err := token.GenerateECDSAKeyPair("ec-1")
	require.NoError(t, err)
	signer := token.NewKeyPairSigner(kp)
	jwks, err := signer.JWKS()
	require.NoError(t, err)

	f = setupTestFixtureWithSigner(t, signer, jwks)
	status, body := f.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, status)
	keys := body["keys"].([]any)
	require.Len(t, keys, 1)
	require.Equal(t, "ec-1", keys[0].(map[string]any)["kid"])

	tok := f.login(t, "demo", "demo")
	status, _ = f.do(t, http.MethodGet, "/mobile/profile", tok, nil)
	require.Equal(t, http.StatusOK, status)
}
