package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records
type AttendanceRepository interface {
	// Create inserts a new attendance record. A second open session for the
	// same user and work date fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByID retrieves an attendance record by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate retrieves the record for a user on a work date,
	// or nil when the user has no record that day
	GetByUserAndDate(ctx context.Context, userID string, workDate time.Time) (*Attendance, error)

	// GetActiveByUser retrieves the user's open session on a work date.
	// Returns ErrNoActiveCheckIn when none exists.
	GetActiveByUser(ctx context.Context, userID string, workDate time.Time) (Attendance, error)

	// Checkout applies the checkout patch to a record that is still
	// checked-in. Returns ErrAlreadyCheckedOut when the record was
	// already closed.
	Checkout(ctx context.Context, patch CheckoutPatch) (Attendance, error)

	// AppendLocation replaces the record's current location and appends
	// the entry to its history
	AppendLocation(ctx context.Context, id string, loc Location, entry LocationEntry) (Attendance, error)

	// ListByUser retrieves a user's records, newest first, optionally
	// bounded by a work date range
	ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]Attendance, error)

	// ListByDate retrieves all records for one work date with user info joined
	ListByDate(ctx context.Context, workDate time.Time) ([]Attendance, error)

	// ListByDateRange retrieves all records whose work date falls in
	// [start, end] with user info joined, ordered by date then user name
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Attendance, error)
}
