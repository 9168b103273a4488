package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, user_id, work_date, check_in_time, check_in_photo_url,
	   check_out_time, check_out_photo_url, status, hours_worked,
	   location, location_history, created_at, updated_at`

// decodeLocations fills the location fields from their JSONB payloads.
// A payload that does not decode marks the record instead of failing it,
// so a single corrupt row cannot take down a whole listing.
func decodeLocations(att *attendance.Attendance, locationJSON, historyJSON []byte) {
	if err := json.Unmarshal(locationJSON, &att.Location); err != nil {
		att.Location = attendance.Location{}
		att.LocationUnavailable = true
	}
	if err := json.Unmarshal(historyJSON, &att.LocationHistory); err != nil {
		att.LocationHistory = nil
		att.LocationUnavailable = true
	}
}

// scanAttendance scans one row in attendanceColumns order
func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var locationJSON, historyJSON []byte

	err := row.Scan(
		&att.ID, &att.UserID, &att.WorkDate, &att.CheckInTime, &att.CheckInPhotoURL,
		&att.CheckOutTime, &att.CheckOutPhotoURL, &att.Status, &att.HoursWorked,
		&locationJSON, &historyJSON, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	decodeLocations(&att, locationJSON, historyJSON)
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	locationJSON, err := json.Marshal(att.Location)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location: %w", err)
	}
	historyJSON, err := json.Marshal(att.LocationHistory)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location history: %w", err)
	}

	query := `
		INSERT INTO attendances (
			user_id, work_date, check_in_time, check_in_photo_url,
			status, location, location_history
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		att.UserID,
		att.WorkDate,
		att.CheckInTime,
		att.CheckInPhotoURL,
		att.Status,
		locationJSON,
		historyJSON,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		// The partial unique index on (user_id, work_date) for open
		// sessions turns a double check-in race into a constraint hit
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, workDate time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND work_date = $2
		ORDER BY check_in_time DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// GetActiveByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetActiveByUser(ctx context.Context, userID string, workDate time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND work_date = $2 AND status = $3
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, workDate, attendance.StatusCheckedIn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoActiveCheckIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get active session: %w", err)
	}

	return att, nil
}

// Checkout implements attendance.AttendanceRepository.
// The status guard in the WHERE clause makes the checkout fields write-once.
func (a *attendanceRepository) Checkout(ctx context.Context, patch attendance.CheckoutPatch) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	locationJSON, err := json.Marshal(patch.Location)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location: %w", err)
	}
	entryJSON, err := json.Marshal(attendance.LocationEntry{
		Coordinates: patch.Location.Coordinates,
		Address:     patch.Location.Address,
		Timestamp:   patch.CheckOutTime,
	})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location entry: %w", err)
	}

	query := `
		UPDATE attendances
		SET check_out_time = $2,
			check_out_photo_url = $3,
			hours_worked = $4,
			status = $5,
			location = $6,
			location_history = location_history || $7::jsonb,
			updated_at = NOW()
		WHERE id = $1 AND status = $8
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		patch.ID,
		patch.CheckOutTime,
		patch.PhotoURL,
		patch.HoursWorked,
		attendance.StatusCheckedOut,
		locationJSON,
		entryJSON,
		attendance.StatusCheckedIn,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a closed session from a missing record
			var status attendance.Status
			stErr := q.QueryRow(ctx, `SELECT status FROM attendances WHERE id = $1`, patch.ID).Scan(&status)
			if stErr == nil && status == attendance.StatusCheckedOut {
				return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
			}
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check out: %w", err)
	}

	return att, nil
}

// AppendLocation implements attendance.AttendanceRepository.
func (a *attendanceRepository) AppendLocation(ctx context.Context, id string, loc attendance.Location, entry attendance.LocationEntry) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	locationJSON, err := json.Marshal(loc)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location: %w", err)
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode location entry: %w", err)
	}

	query := `
		UPDATE attendances
		SET location = $2,
			location_history = location_history || $3::jsonb,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id, locationJSON, entryJSON))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to append location: %w", err)
	}

	return att, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, userID)
	argIdx++

	if start != nil {
		conditions = append(conditions, fmt.Sprintf("work_date >= $%d", argIdx))
		args = append(args, *start)
		argIdx++
	}
	if end != nil {
		conditions = append(conditions, fmt.Sprintf("work_date <= $%d", argIdx))
		args = append(args, *end)
		argIdx++
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY work_date DESC, check_in_time DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}

// scanAttendanceWithUser scans one row with joined user columns appended
func scanAttendanceWithUser(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var locationJSON, historyJSON []byte

	err := row.Scan(
		&att.ID, &att.UserID, &att.WorkDate, &att.CheckInTime, &att.CheckInPhotoURL,
		&att.CheckOutTime, &att.CheckOutPhotoURL, &att.Status, &att.HoursWorked,
		&locationJSON, &historyJSON, &att.CreatedAt, &att.UpdatedAt,
		&att.UserName, &att.UserEmail,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	decodeLocations(&att, locationJSON, historyJSON)
	return att, nil
}

const attendanceWithUserColumns = `a.id, a.user_id, a.work_date, a.check_in_time, a.check_in_photo_url,
	   a.check_out_time, a.check_out_photo_url, a.status, a.hours_worked,
	   a.location, a.location_history, a.created_at, a.updated_at,
	   u.name, u.email`

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, workDate time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceWithUserColumns + `
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.work_date = $1
		ORDER BY a.check_in_time ASC
	`

	rows, err := q.Query(ctx, query, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendanceWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}

// ListByDateRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceWithUserColumns + `
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.work_date BETWEEN $1 AND $2
		ORDER BY a.work_date ASC, u.name ASC
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by range: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendanceWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}
