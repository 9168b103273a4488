package attendance

import (
	"mime/multipart"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// CheckInRequest opens a new attendance session. The photo travels as a
// multipart file next to the JSON payload and never round-trips through it.
type CheckInRequest struct {
	UserID     string                `json:"-"`
	Latitude   *float64              `json:"latitude"`
	Longitude  *float64              `json:"longitude"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.File == nil || r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo is required",
		})
	} else if !validator.IsAllowedImageExt(r.FileHeader.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo must be a jpg, jpeg, or png file",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CheckOutRequest closes the active session. The photo is optional.
type CheckOutRequest struct {
	UserID     string                `json:"-"`
	Latitude   *float64              `json:"latitude"`
	Longitude  *float64              `json:"longitude"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.FileHeader != nil && !validator.IsAllowedImageExt(r.FileHeader.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo must be a jpg, jpeg, or png file",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateLocationRequest appends a new point to an open session's trail
type UpdateLocationRequest struct {
	UserID    string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *UpdateLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MyAttendanceFilter filters an employee's own attendance listing
type MyAttendanceFilter struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != "" && !validator.IsValidDate(f.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if f.EndDate != "" && !validator.IsValidDate(f.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UserSummary is the joined user info on admin-facing responses
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttendanceResponse represents an attendance record in API responses
type AttendanceResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	WorkDate        string          `json:"work_date"`
	CheckInTime     string          `json:"check_in_time"`
	CheckOutTime    *string         `json:"check_out_time,omitempty"`
	PhotoURL        string          `json:"photo_url"`
	CheckOutPhoto   *string         `json:"check_out_photo_url,omitempty"`
	Status          string          `json:"status"`
	HoursWorked     *float64        `json:"hours_worked,omitempty"`
	Location        Location        `json:"location"`
	LocationHistory []LocationEntry `json:"location_history,omitempty"`
	User            *UserSummary    `json:"user,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// ToResponse converts an Attendance entity to its API representation
func (a *Attendance) ToResponse() AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		WorkDate:        a.WorkDate.Format("2006-01-02"),
		CheckInTime:     a.CheckInTime.Format(time.RFC3339),
		PhotoURL:        a.CheckInPhotoURL,
		Status:          string(a.Status),
		HoursWorked:     a.HoursWorked,
		Location:        a.Location,
		LocationHistory: a.LocationHistory,
	}

	if a.CheckOutTime != nil {
		t := a.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &t
	}
	resp.CheckOutPhoto = a.CheckOutPhotoURL

	if a.UserName != nil && a.UserEmail != nil {
		resp.User = &UserSummary{Name: *a.UserName, Email: *a.UserEmail}
	}

	if a.LocationUnavailable {
		resp.Note = "Error processing location data"
	}

	return resp
}

// TodayResponse reports whether the caller has an attendance record today
type TodayResponse struct {
	CheckedIn  bool                `json:"checked_in"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

// DateAttendanceResponse is the admin view of all records for one day
type DateAttendanceResponse struct {
	Date    string               `json:"date"`
	Count   int                  `json:"count"`
	Records []AttendanceResponse `json:"records"`
	Note    string               `json:"note,omitempty"`
}
