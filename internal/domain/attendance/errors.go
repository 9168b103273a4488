package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNoActiveCheckIn   = errors.New("no active check-in found for today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)

// AlreadyCheckedInError is returned when a check-in is attempted while an
// open session already exists for the day. It carries the existing record
// so the handler can include it in the rejection response.
type AlreadyCheckedInError struct {
	Existing Attendance
}

func (e *AlreadyCheckedInError) Error() string {
	return ErrAlreadyCheckedIn.Error()
}

func (e *AlreadyCheckedInError) Unwrap() error {
	return ErrAlreadyCheckedIn
}
