package report

import (
	"context"
	"fmt"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

var exportHeaders = []string{
	"Employee Name",
	"Email",
	"Check In Time",
	"Check Out Time",
	"Status",
	"Hours Worked",
	"Location",
}

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	loc            *time.Location
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, loc *time.Location) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		loc:            loc,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.ExportRequest) (report.ExportResult, error) {
	if err := req.Validate(); err != nil {
		return report.ExportResult{}, err
	}

	start, _ := time.ParseInLocation("2006-01-02", req.StartDate, s.loc)
	end, _ := time.ParseInLocation("2006-01-02", req.EndDate, s.loc)

	records, err := s.attendanceRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return report.ExportResult{}, fmt.Errorf("failed to query attendance range: %w", err)
	}
	if len(records) == 0 {
		return report.ExportResult{}, report.ErrNoDataFound
	}

	content, err := s.buildWorkbook(records)
	if err != nil {
		return report.ExportResult{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.ExportResult{
		Filename:    fmt.Sprintf("attendance_%s_to_%s.xlsx", req.StartDate, req.EndDate),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *ReportServiceImpl) buildWorkbook(records []attendance.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, rec := range records {
		values := s.exportRow(rec)
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Reasonable default widths so timestamps and addresses stay readable
	if err := f.SetColWidth(sheetName, "A", "B", 25); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "C", "D", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "G", "G", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportServiceImpl) exportRow(rec attendance.Attendance) []interface{} {
	name := ""
	email := ""
	if rec.UserName != nil {
		name = *rec.UserName
	}
	if rec.UserEmail != nil {
		email = *rec.UserEmail
	}

	checkOut := "-"
	if rec.CheckOutTime != nil {
		checkOut = rec.CheckOutTime.In(s.loc).Format("2006-01-02 15:04:05")
	}

	var hours interface{} = "-"
	if rec.HoursWorked != nil {
		hours = *rec.HoursWorked
	}

	return []interface{}{
		name,
		email,
		rec.CheckInTime.In(s.loc).Format("2006-01-02 15:04:05"),
		checkOut,
		string(rec.Status),
		hours,
		rec.Location.Address,
	}
}
