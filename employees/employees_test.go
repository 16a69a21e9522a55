package employees_test

import (
	"testing"

	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCodeFor(t *testing.T) {
	require.Equal(t, "EMP001", employees.CodeFor(1))
	require.Equal(t, "EMP042", employees.CodeFor(42))
	require.Equal(t, "EMP1234", employees.CodeFor(1234))
}

func TestNewProvisioned(t *testing.T) {
	e := employees.NewProvisioned(7, "2024-03-04")
	require.Equal(t, int64(7), e.UserID)
	require.Equal(t, "EMP007", e.Code)
	require.Equal(t, "General", e.Department)
	require.Equal(t, "Employee", e.Position)
	require.Equal(t, "0.00", e.Salary.StringFixed(2))
	require.Equal(t, "2024-03-04", e.HireDate)
	require.True(t, e.Active())
	require.NoError(t, e.Validate())
}

func TestEmployee_Validate(t *testing.T) {
	valid := func() *employees.Employee {
		return &employees.Employee{
			UserID:   1,
			Code:     "EMP001",
			Salary:   decimal.RequireFromString("5000.005"),
			HireDate: "2023-01-15",
			Status:   employees.StatusActive,
		}
	}

	e := valid()
	require.NoError(t, e.Validate())
	require.Equal(t, "5000.01", e.Salary.StringFixed(2))

	tests := []struct {
		name   string
		mutate func(*employees.Employee)
	}{
		{"missing user", func(e *employees.Employee) { e.UserID = 0 }},
		{"missing code", func(e *employees.Employee) { e.Code = " " }},
		{"negative salary", func(e *employees.Employee) { e.Salary = decimal.NewFromInt(-1) }},
		{"bad hire date", func(e *employees.Employee) { e.HireDate = "15/01/2023" }},
		{"bad status", func(e *employees.Employee) { e.Status = "fired" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			require.Error(t, err)
			require.Equal(t, errors.KindValidation, errors.KindOf(err))
		})
	}
}
