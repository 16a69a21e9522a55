package attendance

import (
	"time"

	"github.com/jrsteele09/go-ems-server/internal/utils"
)

// Record is one check-in, and possibly its check-out, for an employee on a
// calendar date.
type Record struct {
	ID          int64      `json:"id"`
	EmployeeID  int64      `json:"employee_id"`
	CheckIn     time.Time  `json:"check_in"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	HoursWorked *float64   `json:"hours_worked,omitempty"`
	Date        string     `json:"date"`
	Location    string     `json:"location"`
	Notes       string     `json:"notes"`
	Version     int64      `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r *Record) Open() bool {
	return r.CheckOut == nil
}

// HoursWorked is the elapsed time between in and out in hours, rounded to
// two decimal places. A check-out before the check-in counts as zero.
func HoursWorked(in, out time.Time) float64 {
	if out.Before(in) {
		return 0
	}
	return utils.Round2(out.Sub(in).Hours())
}
