package employees

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", errors.Validation("Invalid employee status")
}

// Defaults applied to records created on an identity's first mobile login.
const (
	DefaultDepartment = "General"
	DefaultPosition   = "Employee"
)

// Employee is the HR record attached to exactly one directory identity.
type Employee struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Code       string          `json:"employee_id"`
	Department string          `json:"department"`
	Position   string          `json:"position"`
	Salary     decimal.Decimal `json:"salary"`
	HireDate   string          `json:"hire_date"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MarshalJSON renders the salary with exactly two decimal places.
func (e Employee) MarshalJSON() ([]byte, error) {
	type plain Employee
	return json.Marshal(struct {
		plain
		Salary string `json:"salary"`
	}{
		plain:  plain(e),
		Salary: e.Salary.StringFixed(2),
	})
}

// CodeFor derives the employee code for an identity: EMP followed by the id
// padded to at least three digits.
func CodeFor(identityID int64) string {
	return fmt.Sprintf("EMP%03d", identityID)
}

// NewProvisioned builds the default record for an identity that logs in
// without one.
func NewProvisioned(identityID int64, today string) *Employee {
	return &Employee{
		UserID:     identityID,
		Code:       CodeFor(identityID),
		Department: DefaultDepartment,
		Position:   DefaultPosition,
		Salary:     decimal.Zero,
		HireDate:   today,
		Status:     StatusActive,
	}
}

func (e *Employee) Active() bool {
	return e.Status == StatusActive
}

// Validate checks the fields an administrator can set.
func (e *Employee) Validate() error {
	if e.UserID <= 0 {
		return errors.Validation("user_id is required")
	}
	if strings.TrimSpace(e.Code) == "" {
		return errors.Validation("employee_id is required")
	}
	if e.Salary.IsNegative() {
		return errors.Validation("Salary cannot be negative")
	}
	if e.HireDate != "" {
		if _, err := utils.ParseDate(e.HireDate); err != nil {
			return errors.Validation("Invalid hire_date, expected YYYY-MM-DD")
		}
	}
	if _, err := ParseStatus(string(e.Status)); err != nil {
		return err
	}
	e.Salary = e.Salary.Round(2)
	return nil
}
