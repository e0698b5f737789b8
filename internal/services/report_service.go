package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	guard  *AccessGuard
	stats  StatsService
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, guard *AccessGuard, stats StatsService, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		guard:  guard,
		stats:  stats,
		logger: logger,
	}
}

// ExportStatistics renders the admin overview as an xlsx workbook
func (s *reportService) ExportStatistics(ctx context.Context, callerID string) ([]byte, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin {
		return nil, NewPermissionError(callerID, "", "report", "export_statistics", "insufficient role permissions")
	}

	stats, err := s.stats.GetStatistics(ctx, callerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Statistics"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Courses", stats.Admin.TotalCourses},
		{"Total Enrollments", stats.Admin.TotalEnrollments},
		{"Enrollment Rate (%)", stats.Admin.EnrollmentRate},
		{"Students", stats.Admin.ProfilesByRole[models.RoleStudent]},
		{"Lecturers", stats.Admin.ProfilesByRole[models.RoleLecturer]},
		{"Admins", stats.Admin.ProfilesByRole[models.RoleAdmin]},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render statistics workbook: %w", err)
	}

	s.logger.Info("Statistics exported", "exported_by", callerID)
	return buf.Bytes(), nil
}

// ExportCourseRoster renders the active roster of one course as xlsx
func (s *reportService) ExportCourseRoster(ctx context.Context, courseID string, callerID string) ([]byte, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		return nil, translateNotFound(err, ErrCourseNotFound)
	}

	// The roster exposes enrollment rows, so enrollment read rules apply
	if caller.Role != models.RoleAdmin {
		owns, err := s.guard.instructorOwnsCourse(ctx, caller.ID, courseID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, NewPermissionError(callerID, courseID, "report", "export_roster", "course not instructed by caller")
		}
	}

	status := models.EnrollmentActive
	enrollments, err := s.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{
		CourseID: &courseID,
		Status:   &status,
	})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Roster"
	f.SetSheetName("Sheet1", sheet)

	header := []interface{}{"Student ID", "Name", "Email", "Program", "Enrolled At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, enrollment := range enrollments {
		student, err := s.repo.Profile().GetByID(ctx, enrollment.StudentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}

		program := ""
		if student.Program != nil {
			program = *student.Program
		}
		studentNumber := student.ID
		if student.StudentID != nil && *student.StudentID != "" {
			studentNumber = *student.StudentID
		}

		row := []interface{}{
			studentNumber,
			student.DisplayName,
			student.Email,
			program,
			enrollment.EnrolledAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render roster workbook: %w", err)
	}

	s.logger.Info("Roster exported", "course_id", course.ID, "exported_by", callerID)
	return buf.Bytes(), nil
}
