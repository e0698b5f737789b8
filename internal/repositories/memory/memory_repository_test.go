package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

func seedCourse(t *testing.T, repo *MemoryRepository, id string, capacity int) {
	t.Helper()
	err := repo.Course().Create(context.Background(), &models.Course{
		ID:       id,
		Name:     "Operating Systems",
		Code:     "CS-301",
		Credits:  3,
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
}

func TestMemoryRepository_WithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit_Makes_Writes_Visible", func(t *testing.T) {
		repo := NewMemoryRepository()

		err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			return tx.Course().Create(ctx, &models.Course{ID: "c1", Name: "X", Code: "X-1", Credits: 1, Capacity: 5})
		})
		if err != nil {
			t.Fatalf("transaction failed: %v", err)
		}

		if _, err := repo.Course().GetByID(ctx, "c1"); err != nil {
			t.Errorf("committed row not visible: %v", err)
		}
	})

	t.Run("Error_Discards_All_Writes", func(t *testing.T) {
		repo := NewMemoryRepository()
		seedCourse(t, repo, "c1", 5)

		boom := errors.New("boom")
		err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			course, err := tx.Course().GetByID(ctx, "c1")
			if err != nil {
				return err
			}
			course.EnrolledCount = 99
			if err := tx.Course().Update(ctx, course); err != nil {
				return err
			}
			if err := tx.Enrollment().Create(ctx, &models.Enrollment{
				ID: "e1", StudentID: "s1", CourseID: "c1",
				Status: models.EnrollmentActive, EnrolledAt: time.Now(),
			}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		course, err := repo.Course().GetByID(ctx, "c1")
		if err != nil {
			t.Fatalf("course lookup failed: %v", err)
		}
		if course.EnrolledCount != 0 {
			t.Errorf("aborted write escaped: enrolled count %d", course.EnrolledCount)
		}
		if _, err := repo.Enrollment().GetByID(ctx, "e1"); !repositories.IsNotFoundError(err) {
			t.Errorf("aborted enrollment escaped: %v", err)
		}
	})

	t.Run("Nested_Transaction_Joins_Outer", func(t *testing.T) {
		repo := NewMemoryRepository()

		err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			return tx.WithTransaction(ctx, func(inner repositories.Repository) error {
				return inner.Course().Create(ctx, &models.Course{ID: "c1", Name: "X", Code: "X-1", Credits: 1, Capacity: 5})
			})
		})
		if err != nil {
			t.Fatalf("nested transaction failed: %v", err)
		}
		if _, err := repo.Course().GetByID(ctx, "c1"); err != nil {
			t.Errorf("nested write not committed: %v", err)
		}
	})

	t.Run("Expired_Context_Maps_To_Timeout", func(t *testing.T) {
		repo := NewMemoryRepository()

		expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()

		err := repo.WithTransaction(expired, func(tx repositories.Repository) error { return nil })
		if !repositories.IsTimeoutError(err) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}

		_, err = repo.Course().GetByID(expired, "c1")
		if !repositories.IsTimeoutError(err) {
			t.Fatalf("expected ErrTimeout on read, got %v", err)
		}
	})

	t.Run("Transaction_Isolated_From_Later_Readers", func(t *testing.T) {
		repo := NewMemoryRepository()
		seedCourse(t, repo, "c1", 5)

		read := make(chan int)
		release := make(chan struct{})

		go func() {
			_ = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
				course, err := tx.Course().GetByID(ctx, "c1")
				if err != nil {
					return err
				}
				course.EnrolledCount = 3
				if err := tx.Course().Update(ctx, course); err != nil {
					return err
				}
				<-release
				return nil
			})
			close(read)
		}()

		// The concurrent reader blocks on the store mutex until commit, so it
		// can never observe the in-flight value.
		release <- struct{}{}
		<-read

		course, err := repo.Course().GetByID(ctx, "c1")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if course.EnrolledCount != 3 {
			t.Errorf("expected committed value 3, got %d", course.EnrolledCount)
		}
	})
}

func TestMemoryRepository_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seedCourse(t, repo, "c1", 5)

	// Mutating a returned record must not leak into the store
	course, err := repo.Course().GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	course.EnrolledCount = 42

	fresh, err := repo.Course().GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if fresh.EnrolledCount != 0 {
		t.Errorf("caller mutation leaked into store: %d", fresh.EnrolledCount)
	}
}
