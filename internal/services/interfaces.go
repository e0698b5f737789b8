package services

import (
	"context"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Identity is the opaque identity supplied by the authentication collaborator
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Use business validator types
type SignupRequest = validator.SignupRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type AddMaterialRequest = validator.MaterialCreateRequest
type AddGradeRequest = validator.GradeCreateRequest
type UpdateGradeRequest = validator.GradeUpdateRequest

type CourseResponse struct {
	*models.Course
	SeatsLeft int  `json:"seats_left"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanEnroll bool `json:"can_enroll"`
}

type EnrollmentResponse struct {
	*models.Enrollment
	Course *models.Course `json:"course,omitempty"`
}

// AccessibleRecords is the role-filtered view of one collection. Exactly one
// field is populated, matching the requested collection.
type AccessibleRecords struct {
	Collection  models.Collection    `json:"collection"`
	Profiles    []*models.Profile    `json:"profiles,omitempty"`
	Courses     []*models.Course     `json:"courses,omitempty"`
	Enrollments []*models.Enrollment `json:"enrollments,omitempty"`
	Materials   []*models.Material   `json:"materials,omitempty"`
	Grades      []*models.Grade      `json:"grades,omitempty"`
}

// ===== STATISTICS DTOs =====

// Snapshot is an in-memory view of the collections the aggregator consumes.
// ComputeStatistics is a pure function of a snapshot; it never touches the
// store.
type Snapshot struct {
	Profiles    []*models.Profile
	Courses     []*models.Course
	Enrollments []*models.Enrollment
	Grades      []*models.Grade
	Materials   []*models.Material
}

type StudentStatistics struct {
	EnrolledCourses int    `json:"enrolled_courses"`
	TotalCredits    int    `json:"total_credits"`
	GradeCount      int    `json:"grade_count"`
	GPA             string `json:"gpa"`
}

type LecturerStatistics struct {
	CourseCount   int `json:"course_count"`
	TotalStudents int `json:"total_students"`
	MaterialCount int `json:"material_count"`
	GradeCount    int `json:"grade_count"`
}

type AdminStatistics struct {
	ProfilesByRole   map[models.UserRole]int `json:"profiles_by_role"`
	TotalCourses     int                     `json:"total_courses"`
	TotalEnrollments int                     `json:"total_enrollments"`
	EnrollmentRate   int                     `json:"enrollment_rate"`
}

// Statistics carries the role-scoped metrics; only the block matching Role is
// populated.
type Statistics struct {
	Role     models.UserRole     `json:"role"`
	Student  *StudentStatistics  `json:"student,omitempty"`
	Lecturer *LecturerStatistics `json:"lecturer,omitempty"`
	Admin    *AdminStatistics    `json:"admin,omitempty"`
}

// ===== SERVICE INTERFACES =====

type ProfileService interface {
	// EnsureProfile materializes the profile for an authenticated identity
	// exactly once. Safe to call concurrently for the same identity.
	EnsureProfile(ctx context.Context, identity Identity, signup *SignupRequest) (*models.Profile, error)
	GetByID(ctx context.Context, id string, callerID string) (*models.Profile, error)
	Update(ctx context.Context, id string, req *UpdateProfileRequest, callerID string) (*models.Profile, error)
	List(ctx context.Context, filters repositories.ProfileFilters, callerID string) ([]*models.Profile, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, creatorID string) (*CourseResponse, error)
	GetByID(ctx context.Context, id string, callerID string) (*CourseResponse, error)
	List(ctx context.Context, filters repositories.CourseFilters, callerID string) ([]*CourseResponse, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, callerID string) (*CourseResponse, error)
	// Delete removes the course and every enrollment, material and grade
	// referencing it, inside one transaction.
	Delete(ctx context.Context, id string, callerID string) error
	AssignInstructor(ctx context.Context, courseID string, instructorID string, callerID string) (*CourseResponse, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID string, callerID string) (*EnrollmentResponse, error)
	Withdraw(ctx context.Context, studentID, courseID string, callerID string) error
	List(ctx context.Context, filters repositories.EnrollmentFilters, callerID string) ([]*EnrollmentResponse, error)
}

type MaterialService interface {
	Add(ctx context.Context, req *AddMaterialRequest, callerID string) (*models.Material, error)
	Delete(ctx context.Context, id string, callerID string) error
	ListByCourse(ctx context.Context, courseID string, callerID string) ([]*models.Material, error)
}

type GradeService interface {
	Add(ctx context.Context, req *AddGradeRequest, callerID string) (*models.Grade, error)
	Update(ctx context.Context, id string, req *UpdateGradeRequest, callerID string) (*models.Grade, error)
	List(ctx context.Context, filters repositories.GradeFilters, callerID string) ([]*models.Grade, error)
}

type StatsService interface {
	// GetStatistics snapshots the caller-visible collections and computes the
	// role-scoped metrics.
	GetStatistics(ctx context.Context, callerID string) (*Statistics, error)
}

type ReportService interface {
	// ExportStatistics renders the admin statistics overview as an xlsx
	// workbook.
	ExportStatistics(ctx context.Context, callerID string) ([]byte, error)
	// ExportCourseRoster renders the active roster of one course as xlsx.
	ExportCourseRoster(ctx context.Context, courseID string, callerID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Profile() ProfileService
	Course() CourseService
	Enrollment() EnrollmentService
	Material() MaterialService
	Grade() GradeService
	Stats() StatsService
	Report() ReportService
	Guard() *AccessGuard

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
