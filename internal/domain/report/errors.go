package report

import "errors"

var (
	ErrInvalidDateRange       = errors.New("end date must be after start date")
	ErrNoDataFound            = errors.New("no attendance records found for the specified range")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
