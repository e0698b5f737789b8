package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/repositories/memory"
	"github.com/scms-platform/records-service/internal/validator"
)

// testEnv wires the full service stack over the in-memory store
type testEnv struct {
	repo      repositories.Repository
	guard     *AccessGuard
	publisher *events.MockEventPublisher

	profiles    ProfileService
	courses     CourseService
	enrollments EnrollmentService
	materials   MaterialService
	grades      GradeService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testLogger()
	repo := memory.NewMemoryRepository()
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)
	guard := NewAccessGuard(repo, logger)

	return &testEnv{
		repo:        repo,
		guard:       guard,
		publisher:   publisher,
		profiles:    NewProfileService(repo, guard, logger, v, publisher),
		courses:     NewCourseService(repo, guard, logger, v, publisher),
		enrollments: NewEnrollmentService(repo, guard, logger, v, publisher),
		materials:   NewMaterialService(repo, guard, logger, v),
		grades:      NewGradeService(repo, guard, logger, v, publisher),
	}
}

func (e *testEnv) seedProfile(t *testing.T, role models.UserRole, email string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: emailLocalPart(email),
		Role:        role,
	}
	if role == models.RoleStudent {
		profile.Program = strPtr("Applied Computer Technology")
		profile.StudentID = strPtr("651395")
		profile.YearLabel = strPtr("3rd Year")
	}
	if err := e.repo.Profile().Create(context.Background(), profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func (e *testEnv) seedCourse(t *testing.T, capacity int, instructorID *string, createdBy string) *models.Course {
	t.Helper()

	course := &models.Course{
		ID:           uuid.New().String(),
		Name:         "Distributed Systems",
		Code:         "CS-401",
		InstructorID: instructorID,
		Credits:      3,
		Capacity:     capacity,
		CreatedBy:    createdBy,
	}
	if err := e.repo.Course().Create(context.Background(), course); err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

func (e *testEnv) seedEnrollment(t *testing.T, studentID, courseID string) *models.Enrollment {
	t.Helper()

	enrollment := &models.Enrollment{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     models.EnrollmentActive,
		EnrolledAt: time.Now().UTC(),
	}
	if err := e.repo.Enrollment().Create(context.Background(), enrollment); err != nil {
		t.Fatalf("failed to seed enrollment: %v", err)
	}
	return enrollment
}

func (e *testEnv) seedMaterial(t *testing.T, courseID, createdBy string) *models.Material {
	t.Helper()

	material := &models.Material{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		Title:     "Lecture Notes Week 1",
		Type:      models.MaterialDocument,
		URL:       "https://files.example.com/notes-week1.pdf",
		CreatedBy: createdBy,
	}
	if err := e.repo.Material().Create(context.Background(), material); err != nil {
		t.Fatalf("failed to seed material: %v", err)
	}
	return material
}

func (e *testEnv) seedGrade(t *testing.T, studentID, courseID string, value float64) *models.Grade {
	t.Helper()

	grade := &models.Grade{
		ID:              uuid.New().String(),
		StudentID:       studentID,
		CourseID:        courseID,
		AssignmentLabel: "Midterm",
		Value:           value,
		CreatedBy:       "seed",
	}
	if err := e.repo.Grade().Create(context.Background(), grade); err != nil {
		t.Fatalf("failed to seed grade: %v", err)
	}
	return grade
}

// activeCount reads the live active-enrollment count for a course
func (e *testEnv) activeCount(t *testing.T, courseID string) int64 {
	t.Helper()

	count, err := e.repo.Enrollment().CountActiveByCourse(context.Background(), courseID)
	if err != nil {
		t.Fatalf("failed to count enrollments: %v", err)
	}
	return count
}

// enrolledCounter reads the cached counter on the course row
func (e *testEnv) enrolledCounter(t *testing.T, courseID string) int {
	t.Helper()

	course, err := e.repo.Course().GetByID(context.Background(), courseID)
	if err != nil {
		t.Fatalf("failed to load course: %v", err)
	}
	return course.EnrolledCount
}
