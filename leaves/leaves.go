package leaves

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
)

type Type string

const (
	TypeSick     Type = "sick"
	TypeVacation Type = "vacation"
	TypePersonal Type = "personal"
	TypeOther    Type = "other"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeSick, TypeVacation, TypePersonal, TypeOther:
		return t, nil
	}
	return "", errors.Validation("Invalid leave type")
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", errors.Validation("Invalid leave status")
}

// Request is a leave application. ApprovedBy names the identity that
// approved or rejected it.
type Request struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Type       Type      `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Reason     string    `json:"reason"`
	Status     Status    `json:"status"`
	ApprovedBy *int64    `json:"approved_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewRequest validates an application. The result is always pending.
func NewRequest(employeeID int64, leaveType, startDate, endDate, reason string) (*Request, error) {
	t, err := ParseType(leaveType)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, errors.Validation("Invalid start_date, expected YYYY-MM-DD")
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, errors.Validation("Invalid end_date, expected YYYY-MM-DD")
	}
	if end < start {
		return nil, errors.Validation("end_date must not be before start_date")
	}
	return &Request{
		EmployeeID: employeeID,
		Type:       t,
		StartDate:  start,
		EndDate:    end,
		Reason:     strings.TrimSpace(reason),
		Status:     StatusPending,
	}, nil
}

// Days counts the calendar days the request covers, inclusive.
func (r *Request) Days() int {
	start, err1 := time.Parse(utils.DateLayout, r.StartDate)
	end, err2 := time.Parse(utils.DateLayout, r.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
