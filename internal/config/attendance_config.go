package config

type AttendanceConfig interface {
	GetSingleOpenCheckIn() bool
	GetRejectRepeatCheckOut() bool
}

type Attendance struct{}

var _ AttendanceConfig = Attendance{}

// GetSingleOpenCheckIn rejects a check-in while today's latest record is still open.
func (Attendance) GetSingleOpenCheckIn() bool {
	return GetBool("ATTENDANCE_SINGLE_OPEN", false)
}

// GetRejectRepeatCheckOut rejects a checkout when today's latest record is already closed.
func (Attendance) GetRejectRepeatCheckOut() bool {
	return GetBool("ATTENDANCE_REJECT_RECHECKOUT", false)
}
