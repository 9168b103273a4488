package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens a new session with photo and resolved location
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the active session and fixes hours worked
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetToday reports the caller's attendance state for the current work date
	GetToday(ctx context.Context, userID string) (TodayResponse, error)

	// GetMyAttendance retrieves the caller's attendance history
	GetMyAttendance(ctx context.Context, userID string, filter MyAttendanceFilter) ([]AttendanceResponse, error)

	// GetByDate retrieves all records for one day (admin)
	GetByDate(ctx context.Context, date string) (DateAttendanceResponse, error)

	// GetUserAttendance retrieves one user's full history (admin)
	GetUserAttendance(ctx context.Context, userID string, filter MyAttendanceFilter) ([]AttendanceResponse, error)

	// UpdateLocation appends a new point to the caller's open session
	UpdateLocation(ctx context.Context, req UpdateLocationRequest) (AttendanceResponse, error)

	// GetLocationHistory retrieves the movement trail of a record
	GetLocationHistory(ctx context.Context, userID string, isAdmin bool, attendanceID string) ([]LocationEntry, error)
}
