package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geocode"
	"github.com/geoattend/attendance-backend-go/internal/service/file"
)

type AttendanceServiceImpl struct {
	repo        attendance.AttendanceRepository
	geocoder    geocode.Geocoder
	fileService file.FileService
	loc         *time.Location
	now         func() time.Time
}

func NewAttendanceService(
	repo attendance.AttendanceRepository,
	geocoder geocode.Geocoder,
	fileService file.FileService,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		repo:        repo,
		geocoder:    geocoder,
		fileService: fileService,
		loc:         loc,
		now:         time.Now,
	}
}

// workDate truncates t to the start of its day in the configured timezone
func (a *AttendanceServiceImpl) workDate(t time.Time) time.Time {
	local := t.In(a.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.loc)
}

// resolveAddress never blocks a check-in on geocoding problems; any
// failure degrades to the raw coordinate string
func (a *AttendanceServiceImpl) resolveAddress(ctx context.Context, lat, lon float64) string {
	address, err := a.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil || address == "" {
		return geocode.CoordinateString(lat, lon)
	}
	return address
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().In(a.loc)
	workDate := a.workDate(now)

	// Reject early when an open session already exists; the unique index
	// still guards the race between this read and the insert below
	if existing, err := a.repo.GetActiveByUser(ctx, req.UserID, workDate); err == nil {
		return attendance.AttendanceResponse{}, &attendance.AlreadyCheckedInError{Existing: existing}
	} else if !errors.Is(err, attendance.ErrNoActiveCheckIn) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check for active session: %w", err)
	}

	address := a.resolveAddress(ctx, *req.Latitude, *req.Longitude)

	photoPath, err := a.fileService.UploadAttendancePhoto(ctx, req.UserID, workDate, req.File, req.FileHeader.Filename, "checkin")
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to upload check-in photo: %w", err)
	}

	record := attendance.Attendance{
		UserID:          req.UserID,
		WorkDate:        workDate,
		CheckInTime:     now,
		CheckInPhotoURL: photoPath,
		Status:          attendance.StatusCheckedIn,
		Location: attendance.Location{
			Coordinates: attendance.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
			Address:     address,
			LastUpdated: now,
		},
		LocationHistory: []attendance.LocationEntry{
			{
				Coordinates: attendance.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
				Address:     address,
				Timestamp:   now,
			},
		},
	}

	created, err := a.repo.Create(ctx, record)
	if err != nil {
		// The photo must not outlive a failed insert
		if delErr := a.fileService.DeleteFile(ctx, photoPath); delErr != nil {
			err = fmt.Errorf("%w (photo cleanup also failed: %v)", err, delErr)
		}

		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			if existing, getErr := a.repo.GetActiveByUser(ctx, req.UserID, workDate); getErr == nil {
				return attendance.AttendanceResponse{}, &attendance.AlreadyCheckedInError{Existing: existing}
			}
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return created.ToResponse(), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().In(a.loc)
	workDate := a.workDate(now)

	active, err := a.repo.GetActiveByUser(ctx, req.UserID, workDate)
	if err != nil {
		if errors.Is(err, attendance.ErrNoActiveCheckIn) {
			return attendance.AttendanceResponse{}, attendance.ErrNoActiveCheckIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get active session: %w", err)
	}

	address := a.resolveAddress(ctx, *req.Latitude, *req.Longitude)

	var photoPath *string
	if req.File != nil && req.FileHeader != nil {
		path, err := a.fileService.UploadAttendancePhoto(ctx, req.UserID, workDate, req.File, req.FileHeader.Filename, "checkout")
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to upload check-out photo: %w", err)
		}
		photoPath = &path
	}

	hours := now.Sub(active.CheckInTime).Hours()
	hoursWorked := math.Round(hours*100) / 100

	patch := attendance.CheckoutPatch{
		ID:           active.ID,
		CheckOutTime: now,
		HoursWorked:  hoursWorked,
		Location: attendance.Location{
			Coordinates: attendance.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
			Address:     address,
			LastUpdated: now,
		},
		PhotoURL: photoPath,
	}

	updated, err := a.repo.Checkout(ctx, patch)
	if err != nil {
		if photoPath != nil {
			if delErr := a.fileService.DeleteFile(ctx, *photoPath); delErr != nil {
				err = fmt.Errorf("%w (photo cleanup also failed: %v)", err, delErr)
			}
		}
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	return updated.ToResponse(), nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	workDate := a.workDate(a.now())

	record, err := a.repo.GetByUserAndDate(ctx, userID, workDate)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return attendance.TodayResponse{CheckedIn: false}, nil
	}

	resp := record.ToResponse()
	return attendance.TodayResponse{
		CheckedIn:  record.IsActive(),
		Attendance: &resp,
	}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var start, end *time.Time
	if filter.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", filter.StartDate, a.loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_date: %w", err)
		}
		start = &t
	}
	if filter.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", filter.EndDate, a.loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end_date: %w", err)
		}
		end = &t
	}

	records, err := a.repo.ListByUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}
	return responses, nil
}

// GetUserAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetUserAttendance(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	return a.GetMyAttendance(ctx, userID, filter)
}

// GetByDate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetByDate(ctx context.Context, date string) (attendance.DateAttendanceResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, a.loc)
	if err != nil {
		return attendance.DateAttendanceResponse{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}

	records, err := a.repo.ListByDate(ctx, day)
	if err != nil {
		return attendance.DateAttendanceResponse{}, fmt.Errorf("failed to list attendance by date: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}

	return attendance.DateAttendanceResponse{
		Date:    day.Format("2006-01-02"),
		Count:   len(responses),
		Records: responses,
		Note:    "Locations reflect the most recent update reported by each employee and may lag their actual position.",
	}, nil
}

// UpdateLocation implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateLocation(ctx context.Context, req attendance.UpdateLocationRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().In(a.loc)
	workDate := a.workDate(now)

	active, err := a.repo.GetActiveByUser(ctx, req.UserID, workDate)
	if err != nil {
		if errors.Is(err, attendance.ErrNoActiveCheckIn) {
			return attendance.AttendanceResponse{}, attendance.ErrNoActiveCheckIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get active session: %w", err)
	}

	address := a.resolveAddress(ctx, *req.Latitude, *req.Longitude)

	loc := attendance.Location{
		Coordinates: attendance.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
		Address:     address,
		LastUpdated: now,
	}
	entry := attendance.LocationEntry{
		Coordinates: loc.Coordinates,
		Address:     address,
		Timestamp:   now,
	}

	updated, err := a.repo.AppendLocation(ctx, active.ID, loc, entry)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update location: %w", err)
	}

	return updated.ToResponse(), nil
}

// GetLocationHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetLocationHistory(ctx context.Context, userID string, isAdmin bool, attendanceID string) ([]attendance.LocationEntry, error) {
	record, err := a.repo.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if !isAdmin && record.UserID != userID {
		return nil, attendance.ErrUnauthorized
	}

	return record.LocationHistory, nil
}
