package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// AccessGuard is the single authorization point for every engine operation.
// Decisions use the stored role, never anything derived from the email; the
// email heuristic in the profile bootstrapper is a bootstrap default only.
type AccessGuard struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAccessGuard(repo repositories.Repository, logger *slog.Logger) *AccessGuard {
	return &AccessGuard{
		repo:   repo,
		logger: logger,
	}
}

// CallerProfile resolves the caller's stored profile
func (g *AccessGuard) CallerProfile(ctx context.Context, callerID string) (*models.Profile, error) {
	profile, err := g.repo.Profile().GetByID(ctx, callerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load caller profile: %w", err)
	}
	return profile, nil
}

// Authorize decides whether caller may perform op on record. record is one of
// the five entity pointers; denial returns a PermissionError.
func (g *AccessGuard) Authorize(ctx context.Context, caller *models.Profile, op Operation, record interface{}) error {
	if caller.Role == models.RoleAdmin {
		return nil
	}

	switch rec := record.(type) {
	case *models.Profile:
		return g.authorizeProfile(caller, op, rec)
	case *models.Course:
		return g.authorizeCourse(caller, op, rec)
	case *models.Enrollment:
		return g.authorizeEnrollment(ctx, caller, op, rec)
	case *models.Material:
		return g.authorizeMaterial(ctx, caller, op, rec)
	case *models.Grade:
		return g.authorizeGrade(ctx, caller, op, rec)
	default:
		return fmt.Errorf("unknown record type %T", record)
	}
}

func (g *AccessGuard) authorizeProfile(caller *models.Profile, op Operation, profile *models.Profile) error {
	// Non-admins only see and edit themselves
	if profile.ID == caller.ID && (op == OpRead || op == OpUpdate) {
		return nil
	}
	return NewPermissionError(caller.ID, profile.ID, "profile", string(op), "not own profile")
}

func (g *AccessGuard) authorizeCourse(caller *models.Profile, op Operation, course *models.Course) error {
	// Catalog browsing is open to every role
	if op == OpRead {
		return nil
	}

	if caller.Role == models.RoleLecturer {
		if op == OpCreate && course.CreatedBy == caller.ID {
			return nil
		}
		if course.InstructorID != nil && *course.InstructorID == caller.ID {
			return nil
		}
		return NewPermissionError(caller.ID, course.ID, "course", string(op), "not the course instructor")
	}

	return NewPermissionError(caller.ID, course.ID, "course", string(op), "insufficient role permissions")
}

func (g *AccessGuard) authorizeEnrollment(ctx context.Context, caller *models.Profile, op Operation, enrollment *models.Enrollment) error {
	if caller.Role == models.RoleStudent {
		if enrollment.StudentID == caller.ID {
			return nil
		}
		return NewPermissionError(caller.ID, enrollment.ID, "enrollment", string(op), "not own enrollment")
	}

	if caller.Role == models.RoleLecturer && op == OpRead {
		owns, err := g.instructorOwnsCourse(ctx, caller.ID, enrollment.CourseID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
	}

	return NewPermissionError(caller.ID, enrollment.ID, "enrollment", string(op), "course not instructed by caller")
}

func (g *AccessGuard) authorizeMaterial(ctx context.Context, caller *models.Profile, op Operation, material *models.Material) error {
	if caller.Role == models.RoleLecturer {
		owns, err := g.instructorOwnsCourse(ctx, caller.ID, material.CourseID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
		return NewPermissionError(caller.ID, material.ID, "material", string(op), "course not instructed by caller")
	}

	if caller.Role == models.RoleStudent && op == OpRead {
		enrolled, err := g.studentEnrolled(ctx, caller.ID, material.CourseID)
		if err != nil {
			return err
		}
		if enrolled {
			return nil
		}
	}

	return NewPermissionError(caller.ID, material.ID, "material", string(op), "not enrolled in course")
}

func (g *AccessGuard) authorizeGrade(ctx context.Context, caller *models.Profile, op Operation, grade *models.Grade) error {
	if caller.Role == models.RoleLecturer {
		owns, err := g.instructorOwnsCourse(ctx, caller.ID, grade.CourseID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
		return NewPermissionError(caller.ID, grade.ID, "grade", string(op), "course not instructed by caller")
	}

	if caller.Role == models.RoleStudent && op == OpRead && grade.StudentID == caller.ID {
		return nil
	}

	return NewPermissionError(caller.ID, grade.ID, "grade", string(op), "not own grade")
}

// ListAccessible returns the role-filtered record set for one collection.
func (g *AccessGuard) ListAccessible(ctx context.Context, caller *models.Profile, collection models.Collection) (*AccessibleRecords, error) {
	if !collection.Valid() {
		return nil, ErrInvalidCollection
	}

	out := &AccessibleRecords{Collection: collection}

	switch collection {
	case models.CollectionUsers:
		if caller.Role == models.RoleAdmin {
			profiles, err := g.repo.Profile().List(ctx, repositories.ProfileFilters{})
			if err != nil {
				return nil, err
			}
			out.Profiles = profiles
		} else {
			out.Profiles = []*models.Profile{caller}
		}

	case models.CollectionCourses:
		// The catalog is browsable by every role
		courses, err := g.repo.Course().List(ctx, repositories.CourseFilters{})
		if err != nil {
			return nil, err
		}
		out.Courses = courses

	case models.CollectionEnrollments:
		switch caller.Role {
		case models.RoleAdmin:
			enrollments, err := g.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{})
			if err != nil {
				return nil, err
			}
			out.Enrollments = enrollments
		case models.RoleLecturer:
			courseIDs, err := g.instructedCourseIDs(ctx, caller.ID)
			if err != nil {
				return nil, err
			}
			for _, courseID := range courseIDs {
				id := courseID
				enrollments, err := g.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{CourseID: &id})
				if err != nil {
					return nil, err
				}
				out.Enrollments = append(out.Enrollments, enrollments...)
			}
		default:
			studentID := caller.ID
			enrollments, err := g.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{StudentID: &studentID})
			if err != nil {
				return nil, err
			}
			out.Enrollments = enrollments
		}

	case models.CollectionMaterials:
		switch caller.Role {
		case models.RoleAdmin:
			materials, err := g.repo.Material().List(ctx, repositories.MaterialFilters{})
			if err != nil {
				return nil, err
			}
			out.Materials = materials
		case models.RoleLecturer:
			courseIDs, err := g.instructedCourseIDs(ctx, caller.ID)
			if err != nil {
				return nil, err
			}
			for _, courseID := range courseIDs {
				id := courseID
				materials, err := g.repo.Material().List(ctx, repositories.MaterialFilters{CourseID: &id})
				if err != nil {
					return nil, err
				}
				out.Materials = append(out.Materials, materials...)
			}
		default:
			courseIDs, err := g.enrolledCourseIDs(ctx, caller.ID)
			if err != nil {
				return nil, err
			}
			for _, courseID := range courseIDs {
				id := courseID
				materials, err := g.repo.Material().List(ctx, repositories.MaterialFilters{CourseID: &id})
				if err != nil {
					return nil, err
				}
				out.Materials = append(out.Materials, materials...)
			}
		}

	case models.CollectionGrades:
		switch caller.Role {
		case models.RoleAdmin:
			grades, err := g.repo.Grade().List(ctx, repositories.GradeFilters{})
			if err != nil {
				return nil, err
			}
			out.Grades = grades
		case models.RoleLecturer:
			courseIDs, err := g.instructedCourseIDs(ctx, caller.ID)
			if err != nil {
				return nil, err
			}
			for _, courseID := range courseIDs {
				id := courseID
				grades, err := g.repo.Grade().List(ctx, repositories.GradeFilters{CourseID: &id})
				if err != nil {
					return nil, err
				}
				out.Grades = append(out.Grades, grades...)
			}
		default:
			studentID := caller.ID
			grades, err := g.repo.Grade().List(ctx, repositories.GradeFilters{StudentID: &studentID})
			if err != nil {
				return nil, err
			}
			out.Grades = grades
		}
	}

	return out, nil
}

// ===== OWNERSHIP HELPERS =====

func (g *AccessGuard) instructorOwnsCourse(ctx context.Context, lecturerID, courseID string) (bool, error) {
	course, err := g.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return course.InstructorID != nil && *course.InstructorID == lecturerID, nil
}

func (g *AccessGuard) studentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	_, err := g.repo.Enrollment().GetActive(ctx, studentID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *AccessGuard) instructedCourseIDs(ctx context.Context, lecturerID string) ([]string, error) {
	courses, err := g.repo.Course().List(ctx, repositories.CourseFilters{InstructorID: &lecturerID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (g *AccessGuard) enrolledCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	status := models.EnrollmentActive
	enrollments, err := g.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{
		StudentID: &studentID,
		Status:    &status,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	return ids, nil
}
