package services

import (
	"context"
	"testing"

	"github.com/scms-platform/records-service/internal/models"
)

func TestAccessGuard_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin_Allowed_Everything", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")
		course := env.seedCourse(t, 10, &lecturer.ID, admin.ID)
		material := env.seedMaterial(t, course.ID, lecturer.ID)

		for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
			if err := env.guard.Authorize(ctx, admin, op, material); err != nil {
				t.Errorf("Admin denied %s on material: %v", op, err)
			}
		}
	})

	t.Run("Lecturer_Denied_On_Foreign_Material", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedProfile(t, models.RoleLecturer, "lecturer.owner@university.edu")
		other := env.seedProfile(t, models.RoleLecturer, "lecturer.other@university.edu")
		course := env.seedCourse(t, 10, &owner.ID, owner.ID)
		material := env.seedMaterial(t, course.ID, owner.ID)

		if err := env.guard.Authorize(ctx, other, OpDelete, material); !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError for foreign material delete, got %v", err)
		}
		if err := env.guard.Authorize(ctx, owner, OpDelete, material); err != nil {
			t.Errorf("Owner denied on own material: %v", err)
		}
	})

	t.Run("Student_Grade_Scope", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		bob := env.seedProfile(t, models.RoleStudent, "bob@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")
		aliceGrade := env.seedGrade(t, alice.ID, course.ID, 90)
		bobGrade := env.seedGrade(t, bob.ID, course.ID, 70)

		if err := env.guard.Authorize(ctx, alice, OpRead, aliceGrade); err != nil {
			t.Errorf("Student denied own grade: %v", err)
		}
		if err := env.guard.Authorize(ctx, alice, OpRead, bobGrade); !IsPermissionError(err) {
			t.Errorf("Student allowed to read foreign grade")
		}
		if err := env.guard.Authorize(ctx, alice, OpUpdate, aliceGrade); !IsPermissionError(err) {
			t.Errorf("Student allowed to update own grade")
		}
	})

	t.Run("Student_Material_Requires_Enrollment", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")
		material := env.seedMaterial(t, course.ID, "lecturer-1")

		if err := env.guard.Authorize(ctx, alice, OpRead, material); !IsPermissionError(err) {
			t.Errorf("Unenrolled student allowed to read material")
		}

		env.seedEnrollment(t, alice.ID, course.ID)
		if err := env.guard.Authorize(ctx, alice, OpRead, material); err != nil {
			t.Errorf("Enrolled student denied material: %v", err)
		}
	})

	t.Run("Course_Browsing_Open_To_All", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		if err := env.guard.Authorize(ctx, student, OpRead, course); err != nil {
			t.Errorf("Student denied course browsing: %v", err)
		}
		if err := env.guard.Authorize(ctx, student, OpUpdate, course); !IsPermissionError(err) {
			t.Errorf("Student allowed to update course")
		}
	})
}

func TestAccessGuard_ListAccessible(t *testing.T) {
	ctx := context.Background()

	t.Run("Student_Sees_Own_Rows", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		bob := env.seedProfile(t, models.RoleStudent, "bob@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")
		env.seedEnrollment(t, alice.ID, course.ID)
		env.seedEnrollment(t, bob.ID, course.ID)
		env.seedGrade(t, alice.ID, course.ID, 90)
		env.seedGrade(t, bob.ID, course.ID, 70)

		enrollments, err := env.guard.ListAccessible(ctx, alice, models.CollectionEnrollments)
		if err != nil {
			t.Fatalf("ListAccessible enrollments failed: %v", err)
		}
		if len(enrollments.Enrollments) != 1 || enrollments.Enrollments[0].StudentID != alice.ID {
			t.Errorf("Student sees foreign enrollments: %d rows", len(enrollments.Enrollments))
		}

		grades, err := env.guard.ListAccessible(ctx, alice, models.CollectionGrades)
		if err != nil {
			t.Fatalf("ListAccessible grades failed: %v", err)
		}
		if len(grades.Grades) != 1 || grades.Grades[0].StudentID != alice.ID {
			t.Errorf("Student sees foreign grades: %d rows", len(grades.Grades))
		}
	})

	t.Run("Lecturer_Scoped_To_Instructed_Courses", func(t *testing.T) {
		env := newTestEnv(t)
		lecturer := env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		mine := env.seedCourse(t, 10, &lecturer.ID, lecturer.ID)
		foreign := env.seedCourse(t, 10, nil, "admin-1")
		env.seedMaterial(t, mine.ID, lecturer.ID)
		env.seedMaterial(t, foreign.ID, "someone-else")
		env.seedEnrollment(t, student.ID, mine.ID)
		env.seedEnrollment(t, student.ID, foreign.ID)

		materials, err := env.guard.ListAccessible(ctx, lecturer, models.CollectionMaterials)
		if err != nil {
			t.Fatalf("ListAccessible materials failed: %v", err)
		}
		if len(materials.Materials) != 1 || materials.Materials[0].CourseID != mine.ID {
			t.Errorf("Lecturer sees foreign materials: %d rows", len(materials.Materials))
		}

		enrollments, err := env.guard.ListAccessible(ctx, lecturer, models.CollectionEnrollments)
		if err != nil {
			t.Fatalf("ListAccessible enrollments failed: %v", err)
		}
		if len(enrollments.Enrollments) != 1 || enrollments.Enrollments[0].CourseID != mine.ID {
			t.Errorf("Lecturer sees foreign enrollments: %d rows", len(enrollments.Enrollments))
		}
	})

	t.Run("Admin_Sees_All_Users", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")
		env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		env.seedProfile(t, models.RoleLecturer, "lecturer@university.edu")

		users, err := env.guard.ListAccessible(ctx, admin, models.CollectionUsers)
		if err != nil {
			t.Fatalf("ListAccessible users failed: %v", err)
		}
		if len(users.Profiles) != 3 {
			t.Errorf("Expected 3 profiles, got %d", len(users.Profiles))
		}
	})

	t.Run("Unknown_Collection", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.seedProfile(t, models.RoleAdmin, "admin@university.edu")

		if _, err := env.guard.ListAccessible(ctx, admin, models.Collection("bogus")); err != ErrInvalidCollection {
			t.Fatalf("Expected ErrInvalidCollection, got %v", err)
		}
	})
}
