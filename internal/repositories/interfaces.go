package repositories

import (
	"context"

	"github.com/scms-platform/records-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// Filters are equality predicates on top-level document fields, matching the
// store boundary in the external interface contract.

type ProfileFilters struct {
	Role  *models.UserRole `json:"role"`
	Email *string          `json:"email"`
}

type CourseFilters struct {
	InstructorID *string `json:"instructor_id"`
	CreatedBy    *string `json:"created_by"`
	Code         *string `json:"code"`
}

type EnrollmentFilters struct {
	StudentID *string                  `json:"student_id"`
	CourseID  *string                  `json:"course_id"`
	Status    *models.EnrollmentStatus `json:"status"`
}

type MaterialFilters struct {
	CourseID  *string              `json:"course_id"`
	Type      *models.MaterialType `json:"type"`
	CreatedBy *string              `json:"created_by"`
}

type GradeFilters struct {
	StudentID *string `json:"student_id"`
	CourseID  *string `json:"course_id"`
}

// ===== ENTITY REPOSITORIES =====

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	List(ctx context.Context, filters ProfileFilters) ([]*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	// GetActive returns the single active enrollment for the pair, or
	// ErrNotFound when the student is not actively enrolled.
	GetActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	List(ctx context.Context, filters EnrollmentFilters) ([]*models.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID string) (int64, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id string) (*models.Material, error)
	List(ctx context.Context, filters MaterialFilters) ([]*models.Material, error)
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	GetByID(ctx context.Context, id string) (*models.Grade, error)
	List(ctx context.Context, filters GradeFilters) ([]*models.Grade, error)
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}
