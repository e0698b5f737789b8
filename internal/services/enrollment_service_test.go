package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/scms-platform/records-service/internal/models"
)

func TestEnrollmentService_Enroll(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Updates_Counter", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		resp, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID)
		if err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		if resp.Enrollment.Status != models.EnrollmentActive {
			t.Errorf("Expected active status, got %s", resp.Enrollment.Status)
		}
		if got := env.enrolledCounter(t, course.ID); got != 1 {
			t.Errorf("Expected enrolled count 1, got %d", got)
		}
		if got := env.activeCount(t, course.ID); got != 1 {
			t.Errorf("Expected 1 active enrollment, got %d", got)
		}
	})

	t.Run("Duplicate_Rejected_Counter_Unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		if _, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID); err != nil {
			t.Fatalf("first Enroll failed: %v", err)
		}
		_, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID)
		if !errors.Is(err, ErrAlreadyEnrolled) {
			t.Fatalf("Expected ErrAlreadyEnrolled, got %v", err)
		}
		if got := env.enrolledCounter(t, course.ID); got != 1 {
			t.Errorf("Counter changed on rejected enroll: %d", got)
		}
	})

	t.Run("Capacity_One_Second_Student_Rejected", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		bob := env.seedProfile(t, models.RoleStudent, "bob@university.edu")
		course := env.seedCourse(t, 1, nil, "admin-1")

		if _, err := env.enrollments.Enroll(ctx, alice.ID, course.ID, alice.ID); err != nil {
			t.Fatalf("Alice's Enroll failed: %v", err)
		}
		if got := env.enrolledCounter(t, course.ID); got != 1 {
			t.Fatalf("Expected enrolled count 1 after Alice, got %d", got)
		}

		_, err := env.enrollments.Enroll(ctx, bob.ID, course.ID, bob.ID)
		if !errors.Is(err, ErrCourseFull) {
			t.Fatalf("Expected ErrCourseFull for Bob, got %v", err)
		}
		if got := env.activeCount(t, course.ID); got != 1 {
			t.Errorf("Expected 1 active enrollment, got %d", got)
		}
	})

	t.Run("Concurrent_Enroll_One_Seat_One_Winner", func(t *testing.T) {
		env := newTestEnv(t)
		course := env.seedCourse(t, 1, nil, "admin-1")

		const contenders = 8
		students := make([]*models.Profile, contenders)
		for i := range students {
			students[i] = env.seedProfile(t, models.RoleStudent, "student"+string(rune('a'+i))+"@university.edu")
		}

		var wg sync.WaitGroup
		results := make([]error, contenders)
		for i := 0; i < contenders; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = env.enrollments.Enroll(ctx, students[i].ID, course.ID, students[i].ID)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
			} else if !errors.Is(err, ErrCourseFull) {
				t.Errorf("Unexpected error from contender: %v", err)
			}
		}
		if winners != 1 {
			t.Fatalf("Expected exactly 1 winner, got %d", winners)
		}
		if got := env.enrolledCounter(t, course.ID); got != 1 {
			t.Errorf("Counter exceeds capacity: %d", got)
		}
		if got := env.activeCount(t, course.ID); got != 1 {
			t.Errorf("Active enrollments exceed capacity: %d", got)
		}
	})

	t.Run("Course_Not_Found", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")

		_, err := env.enrollments.Enroll(ctx, student.ID, "missing-course", student.ID)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("Expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("Student_Cannot_Enroll_Someone_Else", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		bob := env.seedProfile(t, models.RoleStudent, "bob@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		_, err := env.enrollments.Enroll(ctx, bob.ID, course.ID, alice.ID)
		if !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
		if got := env.activeCount(t, course.ID); got != 0 {
			t.Errorf("Rejected enroll left %d enrollments", got)
		}
	})
}

func TestEnrollmentService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("Withdraw_Decrements_And_Keeps_History", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		resp, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID)
		if err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}

		if err := env.enrollments.Withdraw(ctx, student.ID, course.ID, student.ID); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if got := env.enrolledCounter(t, course.ID); got != 0 {
			t.Errorf("Expected enrolled count 0 after withdraw, got %d", got)
		}

		// Row survives with withdrawn status
		row, err := env.repo.Enrollment().GetByID(ctx, resp.Enrollment.ID)
		if err != nil {
			t.Fatalf("Enrollment row gone after withdraw: %v", err)
		}
		if row.Status != models.EnrollmentWithdrawn {
			t.Errorf("Expected withdrawn status, got %s", row.Status)
		}
	})

	t.Run("Reenroll_After_Withdraw", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		if _, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		if err := env.enrollments.Withdraw(ctx, student.ID, course.ID, student.ID); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if _, err := env.enrollments.Enroll(ctx, student.ID, course.ID, student.ID); err != nil {
			t.Fatalf("Re-enroll after withdraw failed: %v", err)
		}
		if got := env.enrolledCounter(t, course.ID); got != 1 {
			t.Errorf("Expected enrolled count 1 after re-enroll, got %d", got)
		}
	})

	t.Run("Withdraw_Without_Active_Enrollment", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.seedProfile(t, models.RoleStudent, "alice@university.edu")
		course := env.seedCourse(t, 10, nil, "admin-1")

		err := env.enrollments.Withdraw(ctx, student.ID, course.ID, student.ID)
		if !errors.Is(err, ErrEnrollmentNotFound) {
			t.Fatalf("Expected ErrEnrollmentNotFound, got %v", err)
		}
	})

	t.Run("Counter_Invariant_After_Sequence", func(t *testing.T) {
		env := newTestEnv(t)
		course := env.seedCourse(t, 5, nil, "admin-1")
		students := []*models.Profile{
			env.seedProfile(t, models.RoleStudent, "a@university.edu"),
			env.seedProfile(t, models.RoleStudent, "b@university.edu"),
			env.seedProfile(t, models.RoleStudent, "c@university.edu"),
		}

		for _, s := range students {
			if _, err := env.enrollments.Enroll(ctx, s.ID, course.ID, s.ID); err != nil {
				t.Fatalf("Enroll failed: %v", err)
			}
		}
		if err := env.enrollments.Withdraw(ctx, students[1].ID, course.ID, students[1].ID); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if _, err := env.enrollments.Enroll(ctx, students[1].ID, course.ID, students[1].ID); err != nil {
			t.Fatalf("Re-enroll failed: %v", err)
		}

		counter := env.enrolledCounter(t, course.ID)
		active := env.activeCount(t, course.ID)
		if int64(counter) != active {
			t.Errorf("Counter %d diverged from active count %d", counter, active)
		}
	})
}
