package payroll

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Record is one month's salary for an employee. Net is fixed when the record
// is created and never recomputed.
type Record struct {
	ID          int64           `json:"id"`
	EmployeeID  int64           `json:"employee_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Basic       decimal.Decimal `json:"basic_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Net         decimal.Decimal `json:"net_salary"`
	PaymentDate *string         `json:"payment_date"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MarshalJSON renders amounts with exactly two decimal places.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Basic      string `json:"basic_salary"`
		Allowances string `json:"allowances"`
		Deductions string `json:"deductions"`
		Net        string `json:"net_salary"`
	}{
		plain:      plain(r),
		Basic:      r.Basic.StringFixed(2),
		Allowances: r.Allowances.StringFixed(2),
		Deductions: r.Deductions.StringFixed(2),
		Net:        r.Net.StringFixed(2),
	})
}

// NewRecord validates the amounts and derives net = basic + allowances - deductions.
func NewRecord(employeeID int64, month, year int, basic, allowances, deductions decimal.Decimal) (*Record, error) {
	if employeeID <= 0 {
		return nil, errors.Validation("employee_id is required")
	}
	if month < 1 || month > 12 {
		return nil, errors.Validation("month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return nil, errors.Validation("Invalid year")
	}
	for _, amount := range []decimal.Decimal{basic, allowances, deductions} {
		if amount.IsNegative() {
			return nil, errors.Validation("Amounts cannot be negative")
		}
	}
	basic, allowances, deductions = basic.Round(2), allowances.Round(2), deductions.Round(2)
	return &Record{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Basic:      basic,
		Allowances: allowances,
		Deductions: deductions,
		Net:        basic.Add(allowances).Sub(deductions),
		Status:     StatusPending,
	}, nil
}

// ParseAmount reads a money value, treating an empty string as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Validation("Invalid amount %q", s)
	}
	return d, nil
}

// ValidPaymentDate checks a YYYY-MM-DD payment date.
func ValidPaymentDate(s string) (string, error) {
	d, err := utils.ParseDate(s)
	if err != nil {
		return "", errors.Validation("Invalid payment_date, expected YYYY-MM-DD")
	}
	return d, nil
}
