package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// ExportAttendance builds an xlsx workbook of attendance records in
	// the requested work date range
	ExportAttendance(ctx context.Context, req ExportRequest) (ExportResult, error)
}
