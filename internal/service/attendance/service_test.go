package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAttendanceRepo is an in-memory AttendanceRepository for service tests
type memoryAttendanceRepo struct {
	records     map[string]*attendance.Attendance
	nextID      int
	failCreate  error
	createCalls int

	// raceWinner simulates a concurrent check-in that lands between the
	// active-session pre-check and the insert: GetActiveByUser misses it
	// until Create has been attempted
	raceWinner *attendance.Attendance
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{records: make(map[string]*attendance.Attendance)}
}

func (m *memoryAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	m.createCalls++
	if m.failCreate != nil {
		return attendance.Attendance{}, m.failCreate
	}
	for _, r := range m.records {
		if r.UserID == att.UserID && r.WorkDate.Equal(att.WorkDate) && r.Status == attendance.StatusCheckedIn {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	m.nextID++
	att.ID = fmt.Sprintf("att-%d", m.nextID)
	att.CreatedAt = att.CheckInTime
	att.UpdatedAt = att.CheckInTime
	stored := att
	m.records[att.ID] = &stored
	return att, nil
}

func (m *memoryAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if r, ok := m.records[id]; ok {
		return *r, nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memoryAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, workDate time.Time) (*attendance.Attendance, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.WorkDate.Equal(workDate) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryAttendanceRepo) GetActiveByUser(ctx context.Context, userID string, workDate time.Time) (attendance.Attendance, error) {
	if m.raceWinner != nil && m.createCalls > 0 {
		return *m.raceWinner, nil
	}
	for _, r := range m.records {
		if r.UserID == userID && r.WorkDate.Equal(workDate) && r.Status == attendance.StatusCheckedIn {
			return *r, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNoActiveCheckIn
}

func (m *memoryAttendanceRepo) Checkout(ctx context.Context, patch attendance.CheckoutPatch) (attendance.Attendance, error) {
	r, ok := m.records[patch.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if r.Status == attendance.StatusCheckedOut {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	r.CheckOutTime = &patch.CheckOutTime
	r.CheckOutPhotoURL = patch.PhotoURL
	r.HoursWorked = &patch.HoursWorked
	r.Status = attendance.StatusCheckedOut
	r.Location = patch.Location
	r.LocationHistory = append(r.LocationHistory, attendance.LocationEntry{
		Coordinates: patch.Location.Coordinates,
		Address:     patch.Location.Address,
		Timestamp:   patch.CheckOutTime,
	})
	return *r, nil
}

func (m *memoryAttendanceRepo) AppendLocation(ctx context.Context, id string, loc attendance.Location, entry attendance.LocationEntry) (attendance.Attendance, error) {
	r, ok := m.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	r.Location = loc
	r.LocationHistory = append(r.LocationHistory, entry)
	return *r, nil
}

func (m *memoryAttendanceRepo) ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range m.records {
		if r.UserID != userID {
			continue
		}
		if start != nil && r.WorkDate.Before(*start) {
			continue
		}
		if end != nil && r.WorkDate.After(*end) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *memoryAttendanceRepo) ListByDate(ctx context.Context, workDate time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range m.records {
		if r.WorkDate.Equal(workDate) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryAttendanceRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range m.records {
		if !r.WorkDate.Before(start) && !r.WorkDate.After(end) {
			out = append(out, *r)
		}
	}
	return out, nil
}

// fakeFileService records uploads and deletes without touching disk
type fakeFileService struct {
	uploads []string
	deletes []string
	failAll bool
}

func (f *fakeFileService) UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, file io.Reader, filename string, phase string) (string, error) {
	if f.failAll {
		return "", errors.New("storage unavailable")
	}
	path := fmt.Sprintf("attendance/%s/%s-%s.jpg", date.Format("2006-01-02"), userID, phase)
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, path string) error {
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeFileService) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://localhost:8080/uploads/" + path, nil
}

type erroringGeocoder struct{}

func (erroringGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", errors.New("geocoder down")
}

type photoFile struct{ *bytes.Reader }

func (photoFile) Close() error { return nil }

func newPhoto() (multipart.File, *multipart.FileHeader) {
	return photoFile{bytes.NewReader([]byte("jpeg-bytes"))}, &multipart.FileHeader{Filename: "selfie.jpg"}
}

func floatPtr(v float64) *float64 { return &v }

func newTestService(repo attendance.AttendanceRepository, files *fakeFileService, geocoder geocode.Geocoder, loc *time.Location, now time.Time) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		repo:        repo,
		geocoder:    geocoder,
		fileService: files,
		loc:         loc,
		now:         func() time.Time { return now },
	}
}

func checkInRequest(userID string) attendance.CheckInRequest {
	file, header := newPhoto()
	return attendance.CheckInRequest{
		UserID:     userID,
		Latitude:   floatPtr(12.9716),
		Longitude:  floatPtr(77.5946),
		File:       file,
		FileHeader: header,
	}
}

func TestCheckIn_OpensSession(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	files := &fakeFileService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, now)

	resp, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusCheckedIn), resp.Status)
	assert.Equal(t, "2025-03-10", resp.WorkDate)
	assert.Equal(t, "12.9716, 77.5946", resp.Location.Address)
	assert.Len(t, resp.LocationHistory, 1)
	assert.Nil(t, resp.CheckOutTime)
	assert.Nil(t, resp.HoursWorked)
	assert.Len(t, files.uploads, 1)
}

func TestCheckIn_SecondAttemptReturnsExistingRecord(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	files := &fakeFileService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, now)

	first, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, checkInRequest("user-1"))
	require.Error(t, err)

	var dup *attendance.AlreadyCheckedInError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.Existing.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	// The rejected attempt never uploaded a photo
	assert.Len(t, files.uploads, 1)
}

func TestCheckIn_DifferentUsersSameDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	files := &fakeFileService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, checkInRequest("user-2"))
	require.NoError(t, err)
}

func TestCheckIn_InsertFailureDeletesPhoto(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	repo.failCreate = errors.New("connection reset")
	files := &fakeFileService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.Error(t, err)

	require.Len(t, files.uploads, 1)
	require.Len(t, files.deletes, 1)
	assert.Equal(t, files.uploads[0], files.deletes[0])
}

func TestCheckIn_LostInsertRaceReturnsWinningRecord(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	repo := newMemoryAttendanceRepo()
	repo.failCreate = attendance.ErrAlreadyCheckedIn
	repo.raceWinner = &attendance.Attendance{
		ID:          "att-winner",
		UserID:      "user-1",
		WorkDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckInTime: now.Add(-time.Minute),
		Status:      attendance.StatusCheckedIn,
	}
	files := &fakeFileService{}
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.Error(t, err)

	// The duplicate carries the record that won the insert
	var dup *attendance.AlreadyCheckedInError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "att-winner", dup.Existing.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	// The losing photo is rolled back
	require.Len(t, files.uploads, 1)
	require.Len(t, files.deletes, 1)
	assert.Equal(t, files.uploads[0], files.deletes[0])
}

func TestCheckIn_GeocoderFailureFallsBackToCoordinates(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	files := &fakeFileService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, erroringGeocoder{}, time.UTC, now)

	resp, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "12.9716, 77.5946", resp.Location.Address)
}

func TestCheckIn_MissingFieldsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryAttendanceRepo(), &fakeFileService{}, geocode.NewStatic(), time.UTC, time.Now())

	req := attendance.CheckInRequest{UserID: "user-1"}
	_, err := svc.CheckIn(ctx, req)
	require.Error(t, err)
}

func TestCheckOut_RoundsHoursToTwoDecimals(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	files := &fakeFileService{}
	checkInAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, files, geocode.NewStatic(), time.UTC, checkInAt)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	// 8h35m later: 8.5833... hours rounds to 8.58
	svc.now = func() time.Time { return checkInAt.Add(8*time.Hour + 35*time.Minute) }

	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{
		UserID:    "user-1",
		Latitude:  floatPtr(12.98),
		Longitude: floatPtr(77.60),
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusCheckedOut), resp.Status)
	require.NotNil(t, resp.HoursWorked)
	assert.Equal(t, 8.58, *resp.HoursWorked)
	require.NotNil(t, resp.CheckOutTime)
	// Checkout position is appended to the trail
	assert.Len(t, resp.LocationHistory, 2)
}

func TestCheckOut_WithoutActiveSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryAttendanceRepo(), &fakeFileService{}, geocode.NewStatic(), time.UTC, time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))

	_, err := svc.CheckOut(ctx, attendance.CheckOutRequest{
		UserID:    "user-1",
		Latitude:  floatPtr(12.98),
		Longitude: floatPtr(77.60),
	})
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestCheckOut_TwiceRejected(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	checkInAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, checkInAt)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	svc.now = func() time.Time { return checkInAt.Add(8 * time.Hour) }

	out := attendance.CheckOutRequest{UserID: "user-1", Latitude: floatPtr(12.98), Longitude: floatPtr(77.60)}
	_, err = svc.CheckOut(ctx, out)
	require.NoError(t, err)

	// The session is closed now, so there is nothing left to check out
	_, err = svc.CheckOut(ctx, out)
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestWorkDate_UsesConfiguredTimezone(t *testing.T) {
	ctx := context.Background()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	repo := newMemoryAttendanceRepo()
	// 20:00 UTC on March 9 is already 01:30 on March 10 in Kolkata
	now := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), kolkata, now)

	resp, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.WorkDate)

	today, err := svc.GetToday(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, today.CheckedIn)
}

func TestGetToday_NoRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryAttendanceRepo(), &fakeFileService{}, geocode.NewStatic(), time.UTC, time.Now())

	today, err := svc.GetToday(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, today.CheckedIn)
	assert.Nil(t, today.Attendance)
}

func TestUpdateLocation_AppendsToHistory(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	resp, err := svc.UpdateLocation(ctx, attendance.UpdateLocationRequest{
		UserID:    "user-1",
		Latitude:  floatPtr(13.01),
		Longitude: floatPtr(77.55),
	})
	require.NoError(t, err)

	assert.Equal(t, 13.01, resp.Location.Coordinates.Latitude)
	require.Len(t, resp.LocationHistory, 2)
	assert.Equal(t, "13.01, 77.55", resp.LocationHistory[1].Address)
}

func TestUpdateLocation_RequiresActiveSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryAttendanceRepo(), &fakeFileService{}, geocode.NewStatic(), time.UTC, time.Now())

	_, err := svc.UpdateLocation(ctx, attendance.UpdateLocationRequest{
		UserID:    "user-1",
		Latitude:  floatPtr(13.01),
		Longitude: floatPtr(77.55),
	})
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestGetLocationHistory_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, now)

	created, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	// Owner sees their own trail
	history, err := svc.GetLocationHistory(ctx, "user-1", false, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Another regular user does not
	_, err = svc.GetLocationHistory(ctx, "user-2", false, created.ID)
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	// An admin does
	_, err = svc.GetLocationHistory(ctx, "user-2", true, created.ID)
	assert.NoError(t, err)
}

func TestGetUserAttendance_FiltersByDate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	records, err := svc.GetUserAttendance(ctx, "user-1", attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = svc.GetUserAttendance(ctx, "user-1", attendance.MyAttendanceFilter{
		StartDate: "2025-03-11",
	})
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.GetUserAttendance(ctx, "user-1", attendance.MyAttendanceFilter{StartDate: "bad"})
	require.Error(t, err)
}

func TestGetByDate_IncludesAdvisoryNote(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, now)

	_, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	resp, err := svc.GetByDate(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.NotEmpty(t, resp.Note)

	empty, err := svc.GetByDate(ctx, "2025-03-11")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
}

func TestGetByDate_CorruptLocationRowStillServed(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAttendanceRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &fakeFileService{}, geocode.NewStatic(), time.UTC, now)

	healthy, err := svc.CheckIn(ctx, checkInRequest("user-1"))
	require.NoError(t, err)

	// A record whose stored location payload failed to decode
	repo.records["att-bad"] = &attendance.Attendance{
		ID:                  "att-bad",
		UserID:              "user-2",
		WorkDate:            time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckInTime:         now,
		Status:              attendance.StatusCheckedIn,
		LocationUnavailable: true,
	}

	resp, err := svc.GetByDate(ctx, "2025-03-10")
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	notes := map[string]string{}
	for _, rec := range resp.Records {
		notes[rec.ID] = rec.Note
	}
	assert.Empty(t, notes[healthy.ID])
	assert.Equal(t, "Error processing location data", notes["att-bad"])
}
