package attendance

import (
	"context"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/rs/zerolog/log"
)

const defaultMaxAttempts = 3

// Engine applies the per employee, per day check-in/check-out rules.
type Engine struct {
	repo             Repo
	nowFunc          func() time.Time
	location         *time.Location
	singleOpen       bool
	rejectRecheckout bool
	maxAttempts      int
}

type Option func(*Engine)

func WithNowFunc(now func() time.Time) Option {
	return func(e *Engine) {
		e.nowFunc = now
	}
}

// WithLocation sets the zone that decides which calendar day "now" falls on.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.location = loc
	}
}

// WithSingleOpenCheckIn rejects a check-in while an earlier one today is
// still open.
func WithSingleOpenCheckIn(enabled bool) Option {
	return func(e *Engine) {
		e.singleOpen = enabled
	}
}

// WithRejectRepeatCheckOut rejects a check-out when today's latest record is
// already closed, instead of overwriting it.
func WithRejectRepeatCheckOut(enabled bool) Option {
	return func(e *Engine) {
		e.rejectRecheckout = enabled
	}
}

func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.maxAttempts = n
	}
}

func NewEngine(repo Repo, options ...Option) (*Engine, error) {
	if repo == nil {
		return nil, errors.New(errors.KindInternal, "[NewEngine] repo is required")
	}
	e := &Engine{
		repo:        repo,
		nowFunc:     time.Now,
		location:    time.Local,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.location == nil {
		e.location = time.Local
	}
	if e.maxAttempts < 1 {
		e.maxAttempts = 1
	}
	return e, nil
}

// Now returns the engine clock in its configured location.
func (e *Engine) Now() time.Time {
	return e.nowFunc().In(e.location)
}

// Today returns the current calendar date as YYYY-MM-DD.
func (e *Engine) Today() string {
	return e.Now().Format(utils.DateLayout)
}

func (e *Engine) Location() *time.Location {
	return e.location
}

func (e *Engine) CheckIn(ctx context.Context, employeeID int64, location, notes string) (*Record, error) {
	now := e.Now()
	date := now.Format(utils.DateLayout)

	r := &Record{
		EmployeeID: employeeID,
		CheckIn:    now,
		Date:       date,
		Location:   location,
		Notes:      notes,
	}
	if e.singleOpen {
		if err := e.repo.InsertIfNoneOpen(ctx, r); err != nil {
			if errors.Is(err, errors.ErrAlreadyCheckedIn) {
				return nil, err
			}
			return nil, errors.Wrapf(err, "[Engine CheckIn] InsertIfNoneOpen")
		}
		return r, nil
	}
	if err := e.repo.Insert(ctx, r); err != nil {
		return nil, errors.Wrapf(err, "[Engine CheckIn] Insert")
	}
	return r, nil
}

// CheckOut closes the most recent record dated today, whether or not it was
// already closed.
func (e *Engine) CheckOut(ctx context.Context, employeeID int64) (*Record, error) {
	now := e.Now()
	date := now.Format(utils.DateLayout)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		r, err := e.repo.Latest(ctx, employeeID, date)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrNoCheckIn
		}
		if err != nil {
			return nil, errors.Wrapf(err, "[Engine CheckOut] Latest")
		}
		if !r.Open() && e.rejectRecheckout {
			return nil, errors.ErrAlreadyCheckedOut
		}

		hours := HoursWorked(r.CheckIn, now)
		r.CheckOut = &now
		r.HoursWorked = &hours

		err = e.repo.UpdateCheckOut(ctx, r)
		if errors.Is(err, errors.ErrConflict) {
			log.Debug().Int64("employee_id", employeeID).Int64("record_id", r.ID).Int("attempt", attempt).Msg("attendance check-out lost a race, retrying")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "[Engine CheckOut] UpdateCheckOut")
		}
		return r, nil
	}
	return nil, errors.ErrConflict
}

// History lists an employee's records between two dates, newest first.
func (e *Engine) History(ctx context.Context, employeeID int64, from, to string) ([]*Record, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return nil, errors.Validation("Invalid date, expected YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && from > to {
		return nil, errors.Validation("from must not be after to")
	}
	return e.repo.ListForEmployee(ctx, employeeID, from, to)
}

// ForDate lists every record dated date, or today when date is empty.
func (e *Engine) ForDate(ctx context.Context, date string) ([]*Record, error) {
	if date == "" {
		date = e.Today()
	} else if _, err := utils.ParseDate(date); err != nil {
		return nil, errors.Validation("Invalid date, expected YYYY-MM-DD")
	}
	return e.repo.ListForDate(ctx, date)
}
