package fakeattendancerepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/internal/errors"
)

var _ attendance.Repo = (*FakeAttendanceRepo)(nil)

type FakeAttendanceRepo struct {
	records map[int64]*attendance.Record
	nextID  int64
	lock    sync.RWMutex

	// BeforeUpdate, when set, runs ahead of every UpdateCheckOut with the
	// repo unlocked. Tests use it to interleave a competing writer.
	BeforeUpdate func(r *attendance.Record)
}

func NewFakeAttendanceRepo() *FakeAttendanceRepo {
	return &FakeAttendanceRepo{
		records: make(map[int64]*attendance.Record),
	}
}

func (ar *FakeAttendanceRepo) Insert(_ context.Context, r *attendance.Record) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	ar.insert(r)
	return nil
}

func (ar *FakeAttendanceRepo) InsertIfNoneOpen(_ context.Context, r *attendance.Record) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	for _, existing := range ar.records {
		if existing.EmployeeID == r.EmployeeID && existing.Date == r.Date && existing.Open() {
			return errors.ErrAlreadyCheckedIn
		}
	}
	ar.insert(r)
	return nil
}

func (ar *FakeAttendanceRepo) insert(r *attendance.Record) {
	ar.nextID++
	r.ID = ar.nextID
	r.Version = 1
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	ar.records[r.ID] = clone(r)
}

func (ar *FakeAttendanceRepo) Latest(_ context.Context, employeeID int64, date string) (*attendance.Record, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	var latest *attendance.Record
	for _, r := range ar.records {
		if r.EmployeeID == employeeID && r.Date == date && (latest == nil || r.ID > latest.ID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, errors.ErrNotFound
	}
	return clone(latest), nil
}

func (ar *FakeAttendanceRepo) CountOpen(_ context.Context, employeeID int64, date string) (int, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	n := 0
	for _, r := range ar.records {
		if r.EmployeeID == employeeID && r.Date == date && r.Open() {
			n++
		}
	}
	return n, nil
}

func (ar *FakeAttendanceRepo) UpdateCheckOut(_ context.Context, r *attendance.Record) error {
	if ar.BeforeUpdate != nil {
		ar.BeforeUpdate(r)
	}

	ar.lock.Lock()
	defer ar.lock.Unlock()

	stored, ok := ar.records[r.ID]
	if !ok || stored.Version != r.Version {
		return errors.ErrConflict
	}
	r.Version++
	ar.records[r.ID] = clone(r)
	return nil
}

func (ar *FakeAttendanceRepo) ListForEmployee(_ context.Context, employeeID int64, from, to string) ([]*attendance.Record, error) {
	return ar.filter(func(r *attendance.Record) bool {
		return r.EmployeeID == employeeID && (from == "" || r.Date >= from) && (to == "" || r.Date <= to)
	}), nil
}

func (ar *FakeAttendanceRepo) ListForDate(_ context.Context, date string) ([]*attendance.Record, error) {
	return ar.filter(func(r *attendance.Record) bool { return r.Date == date }), nil
}

// Touch bumps a stored record's version as a concurrent writer would.
func (ar *FakeAttendanceRepo) Touch(id int64) {
	ar.lock.Lock()
	defer ar.lock.Unlock()
	if r, ok := ar.records[id]; ok {
		r.Version++
	}
}

func (ar *FakeAttendanceRepo) filter(keep func(*attendance.Record) bool) []*attendance.Record {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	out := make([]*attendance.Record, 0)
	for _, r := range ar.records {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func clone(r *attendance.Record) *attendance.Record {
	c := *r
	if r.CheckOut != nil {
		out := *r.CheckOut
		c.CheckOut = &out
	}
	if r.HoursWorked != nil {
		h := *r.HoursWorked
		c.HoursWorked = &h
	}
	return &c
}
