package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/auth"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleErr(t *testing.T, err error) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	HandleError(rec, err)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"revoked refresh token", auth.ErrRefreshTokenRevoked, http.StatusUnauthorized},
		{"blocked account", user.ErrAccountBlocked, http.StatusForbidden},
		{"admin required", user.ErrAdminPrivilegeRequired, http.StatusForbidden},
		{"demote self", user.ErrCannotDemoteSelf, http.StatusBadRequest},
		{"delete self", user.ErrCannotDeleteSelf, http.StatusBadRequest},
		{"duplicate email", user.ErrUserEmailExists, http.StatusConflict},
		{"user not found", user.ErrUserNotFound, http.StatusNotFound},
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusBadRequest},
		{"no active check-in", attendance.ErrNoActiveCheckIn, http.StatusBadRequest},
		{"attendance not found", attendance.ErrAttendanceNotFound, http.StatusNotFound},
		{"foreign attendance record", attendance.ErrUnauthorized, http.StatusForbidden},
		{"empty export", report.ErrNoDataFound, http.StatusNotFound},
		{"wrapped domain error", fmt.Errorf("context: %w", user.ErrUserNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := handleErr(t, tc.err)
			assert.Equal(t, tc.code, code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	errs := validator.ValidationErrors{
		{Field: "latitude", Message: "latitude is required"},
	}

	code, body := handleErr(t, errs)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "latitude is required", body.Error.Details["latitude"])
}

func TestHandleError_DuplicateCheckInCarriesExistingRecord(t *testing.T) {
	existing := attendance.Attendance{
		ID:          "att-1",
		UserID:      "user-1",
		WorkDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckInTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:      attendance.StatusCheckedIn,
	}

	code, body := handleErr(t, &attendance.AlreadyCheckedInError{Existing: existing})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, body.Error)
	require.NotNil(t, body.Error.Data)

	record, ok := body.Error.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "att-1", record["id"])
	assert.Equal(t, "checked-in", record["status"])
}

func TestHandleError_InternalDetailsNotLeaked(t *testing.T) {
	_, body := handleErr(t, errors.New("pq: connection refused"))
	require.NotNil(t, body.Error)
	assert.NotContains(t, body.Error.Message, "connection refused")
}
