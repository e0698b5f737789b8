package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

// referenceCapacity is the fixed per-course seat figure used only for the
// admin enrollment-rate headline. It is an approximation, not an average of
// real capacities.
const referenceCapacity = 30

// gpaUnavailable is reported when a student has no stored GPA and no grades
const gpaUnavailable = "N/A"

// ComputeStatistics derives the role-scoped metrics from an in-memory
// snapshot. It is a pure function: no store access, no side effects. Missing
// numeric fields count as zero and every ratio guards its denominator.
func ComputeStatistics(role models.UserRole, callerID string, snap Snapshot) *Statistics {
	stats := &Statistics{Role: role}

	switch role {
	case models.RoleStudent:
		stats.Student = computeStudentStatistics(callerID, snap)
	case models.RoleLecturer:
		stats.Lecturer = computeLecturerStatistics(callerID, snap)
	case models.RoleAdmin:
		stats.Admin = computeAdminStatistics(snap)
	}

	return stats
}

func computeStudentStatistics(studentID string, snap Snapshot) *StudentStatistics {
	enrolledCourses := make(map[string]bool)
	for _, e := range snap.Enrollments {
		if e.StudentID == studentID && e.IsActive() {
			enrolledCourses[e.CourseID] = true
		}
	}

	totalCredits := 0
	for _, c := range snap.Courses {
		if enrolledCourses[c.ID] {
			totalCredits += c.Credits
		}
	}

	gradeCount := 0
	gradeSum := 0.0
	for _, g := range snap.Grades {
		if g.StudentID == studentID {
			gradeCount++
			gradeSum += g.Value
		}
	}

	// Stored GPA wins; the grade average is a fallback and "N/A" covers the
	// zero-grade case instead of a division by zero.
	gpa := gpaUnavailable
	var profile *models.Profile
	for _, p := range snap.Profiles {
		if p.ID == studentID {
			profile = p
			break
		}
	}
	switch {
	case profile != nil && profile.GPA != nil:
		gpa = fmt.Sprintf("%.2f", *profile.GPA)
	case gradeCount > 0:
		gpa = fmt.Sprintf("%.1f", gradeSum/float64(gradeCount))
	}

	return &StudentStatistics{
		EnrolledCourses: len(enrolledCourses),
		TotalCredits:    totalCredits,
		GradeCount:      gradeCount,
		GPA:             gpa,
	}
}

func computeLecturerStatistics(lecturerID string, snap Snapshot) *LecturerStatistics {
	instructed := make(map[string]bool)
	totalStudents := 0
	for _, c := range snap.Courses {
		if c.InstructorID != nil && *c.InstructorID == lecturerID {
			instructed[c.ID] = true
			totalStudents += c.EnrolledCount
		}
	}

	materialCount := 0
	for _, m := range snap.Materials {
		if instructed[m.CourseID] {
			materialCount++
		}
	}

	gradeCount := 0
	for _, g := range snap.Grades {
		if instructed[g.CourseID] {
			gradeCount++
		}
	}

	return &LecturerStatistics{
		CourseCount:   len(instructed),
		TotalStudents: totalStudents,
		MaterialCount: materialCount,
		GradeCount:    gradeCount,
	}
}

func computeAdminStatistics(snap Snapshot) *AdminStatistics {
	byRole := make(map[models.UserRole]int)
	for _, p := range snap.Profiles {
		byRole[p.Role]++
	}

	totalCourses := len(snap.Courses)
	totalEnrollments := 0
	for _, c := range snap.Courses {
		totalEnrollments += c.EnrolledCount
	}

	rate := 0
	if totalCourses > 0 {
		rate = int(math.Round(float64(totalEnrollments) / float64(totalCourses*referenceCapacity) * 100))
	}

	return &AdminStatistics{
		ProfilesByRole:   byRole,
		TotalCourses:     totalCourses,
		TotalEnrollments: totalEnrollments,
		EnrollmentRate:   rate,
	}
}

// statsService snapshots the caller-visible collections and delegates to the
// pure aggregation functions.
type statsService struct {
	repo   repositories.Repository
	guard  *AccessGuard
	logger *slog.Logger
}

func NewStatsService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		guard:  guard,
		logger: logger,
	}
}

func (s *statsService) GetStatistics(ctx context.Context, callerID string) (*Statistics, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshotFor(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot collections: %w", err)
	}

	return ComputeStatistics(caller.Role, caller.ID, *snap), nil
}

// snapshotFor fetches only the collections the role's metrics consume.
func (s *statsService) snapshotFor(ctx context.Context, caller *models.Profile) (*Snapshot, error) {
	snap := &Snapshot{}

	switch caller.Role {
	case models.RoleStudent:
		snap.Profiles = []*models.Profile{caller}
		studentID := caller.ID
		enrollments, err := s.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{StudentID: &studentID})
		if err != nil {
			return nil, err
		}
		snap.Enrollments = enrollments
		courses, err := s.repo.Course().List(ctx, repositories.CourseFilters{})
		if err != nil {
			return nil, err
		}
		snap.Courses = courses
		grades, err := s.repo.Grade().List(ctx, repositories.GradeFilters{StudentID: &studentID})
		if err != nil {
			return nil, err
		}
		snap.Grades = grades

	case models.RoleLecturer:
		// Only instructed courses feed the lecturer metrics, so the snapshot
		// stays bounded by the lecturer's own catalog instead of scanning
		// every material and grade in the store.
		instructorID := caller.ID
		courses, err := s.repo.Course().List(ctx, repositories.CourseFilters{InstructorID: &instructorID})
		if err != nil {
			return nil, err
		}
		snap.Courses = courses
		for _, course := range courses {
			courseID := course.ID
			materials, err := s.repo.Material().List(ctx, repositories.MaterialFilters{CourseID: &courseID})
			if err != nil {
				return nil, err
			}
			snap.Materials = append(snap.Materials, materials...)
			grades, err := s.repo.Grade().List(ctx, repositories.GradeFilters{CourseID: &courseID})
			if err != nil {
				return nil, err
			}
			snap.Grades = append(snap.Grades, grades...)
		}

	case models.RoleAdmin:
		profiles, err := s.repo.Profile().List(ctx, repositories.ProfileFilters{})
		if err != nil {
			return nil, err
		}
		snap.Profiles = profiles
		courses, err := s.repo.Course().List(ctx, repositories.CourseFilters{})
		if err != nil {
			return nil, err
		}
		snap.Courses = courses

	default:
		return nil, ErrInvalidRole
	}

	return snap, nil
}
