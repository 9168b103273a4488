package attendance

import (
	"time"
)

type Status string

const (
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is the last known position of the employee for an attendance
// record, including the human-readable address resolved at capture time.
type Location struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
	LastUpdated time.Time   `json:"last_updated"`
}

// LocationEntry is one point in an attendance record's movement trail.
type LocationEntry struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
	Timestamp   time.Time   `json:"timestamp"`
}

type Attendance struct {
	ID               string
	UserID           string
	WorkDate         time.Time
	CheckInTime      time.Time
	CheckInPhotoURL  string
	CheckOutTime     *time.Time
	CheckOutPhotoURL *string
	Status           Status
	HoursWorked      *float64
	Location         Location
	LocationHistory  []LocationEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// LocationUnavailable marks a record whose stored location payload
	// could not be decoded; the record itself is still served.
	LocationUnavailable bool

	// DTO / Join
	UserName  *string
	UserEmail *string
}

// IsActive reports whether the record is still an open session
func (a *Attendance) IsActive() bool {
	return a.Status == StatusCheckedIn
}

// CheckoutPatch carries the only fields a checkout is allowed to set.
// The repository applies it solely to a record that is still checked-in.
type CheckoutPatch struct {
	ID           string
	CheckOutTime time.Time
	HoursWorked  float64
	Location     Location
	PhotoURL     *string
}
