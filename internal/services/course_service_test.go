package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Lecturer_Becomes_Instructor_By_Default", func(t *testing.T) {
		env := newTestEnv(t)
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")

		resp, err := env.courses.Create(ctx, &CreateCourseRequest{
			Name:     "Linear Algebra",
			Code:     "MATH-201",
			Credits:  3,
			Capacity: 40,
		}, lecturer.ID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.InstructorID == nil || *resp.InstructorID != lecturer.ID {
			t.Errorf("Lecturer not assigned as instructor")
		}
		if !resp.CanEdit || !resp.CanDelete {
			t.Errorf("Instructor should be able to manage own course")
		}
	})

	t.Run("Student_Cannot_Create", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")

		_, err := env.courses.Create(ctx, &CreateCourseRequest{
			Name:     "Hacking 101",
			Code:     "HCK-101",
			Credits:  3,
			Capacity: 10,
		}, student.ID)
		if !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
	})

	t.Run("Validation_Rejects_Nonpositive_Capacity", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")

		_, err := env.courses.Create(ctx, &CreateCourseRequest{
			Name:     "Broken",
			Code:     "BRK-1",
			Credits:  3,
			Capacity: 0,
		}, admin.ID)
		if err == nil {
			t.Fatal("Expected validation error for zero capacity")
		}
	})
}

func TestCourseService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Cascade_Removes_All_Dependents", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, &lecturer.ID, admin.ID)

		enrollment := env.seedEnrollment(t, student.ID, course.ID)
		material := env.seedMaterial(t, course.ID, lecturer.ID)
		grade := env.seedGrade(t, student.ID, course.ID, 88)

		if err := env.courses.Delete(ctx, course.ID, admin.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := env.repo.Course().GetByID(ctx, course.ID); !repositories.IsNotFoundError(err) {
			t.Errorf("Course still present after delete: %v", err)
		}
		if _, err := env.repo.Enrollment().GetByID(ctx, enrollment.ID); !repositories.IsNotFoundError(err) {
			t.Errorf("Enrollment survived cascade: %v", err)
		}
		if _, err := env.repo.Material().GetByID(ctx, material.ID); !repositories.IsNotFoundError(err) {
			t.Errorf("Material survived cascade: %v", err)
		}
		if _, err := env.repo.Grade().GetByID(ctx, grade.ID); !repositories.IsNotFoundError(err) {
			t.Errorf("Grade survived cascade: %v", err)
		}
	})

	t.Run("Delete_Publishes_Event_With_Counts", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, admin.ID)
		env.seedEnrollment(t, student.ID, course.ID)
		env.seedGrade(t, student.ID, course.ID, 75)

		env.publisher.ClearEvents()
		if err := env.courses.Delete(ctx, course.ID, admin.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventCourseDeleted {
			t.Errorf("Expected course.deleted event, got %s", published[0].Type)
		}
		data, ok := published[0].Data.(events.CourseDeletedData)
		if !ok {
			t.Fatalf("Unexpected event payload type %T", published[0].Data)
		}
		if data.EnrollmentsRemoved != 1 || data.GradesRemoved != 1 || data.MaterialsRemoved != 0 {
			t.Errorf("Wrong cascade counts: %+v", data)
		}
	})

	t.Run("Missing_Course", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")

		err := env.courses.Delete(ctx, "missing", admin.ID)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("Expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("Lecturer_Cannot_Delete_Foreign_Course", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedProfile(t, models.RoleLecturer, "lecturer.owner@university.edu")
		other := env.seedProfile(t, models.RoleLecturer, "lecturer.other@university.edu")
		course := env.seedCourse(t, 10, &owner.ID, owner.ID)

		err := env.courses.Delete(ctx, course.ID, other.ID)
		if !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
		if _, err := env.repo.Course().GetByID(ctx, course.ID); err != nil {
			t.Errorf("Course gone after denied delete: %v", err)
		}
	})
}

func TestCourseService_AssignInstructor(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin_Assigns_Lecturer", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")
		course := env.seedCourse(t, 10, nil, admin.ID)

		resp, err := env.courses.AssignInstructor(ctx, course.ID, lecturer.ID, admin.ID)
		if err != nil {
			t.Fatalf("AssignInstructor failed: %v", err)
		}
		if resp.InstructorID == nil || *resp.InstructorID != lecturer.ID {
			t.Errorf("Instructor not assigned")
		}
		if resp.InstructorName != lecturer.DisplayName {
			t.Errorf("Instructor name not synced: %s", resp.InstructorName)
		}
	})

	t.Run("Rejects_Non_Lecturer", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, admin.ID)

		_, err := env.courses.AssignInstructor(ctx, course.ID, student.ID, admin.ID)
		if !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("Expected ErrInvalidRole, got %v", err)
		}
	})

	t.Run("Lecturer_Cannot_Assign", func(t *testing.T) {
		env := newTestEnv(t)
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")
		course := env.seedCourse(t, 10, nil, lecturer.ID)

		_, err := env.courses.AssignInstructor(ctx, course.ID, lecturer.ID, lecturer.ID)
		if !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
	})
}
