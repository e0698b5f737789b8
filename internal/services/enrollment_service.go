package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	guard     *AccessGuard
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		guard:     guard,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Enroll creates an active enrollment for (studentID, courseID) while
// enforcing capacity. The whole check-then-create runs inside one
// transaction: concurrent enrollers for the last open seat cannot both
// commit, and EnrolledCount only ever moves together with the enrollment
// write it accounts for.
func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID string, callerID string) (*EnrollmentResponse, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Profile().GetByID(ctx, studentID)
	if err != nil {
		return nil, translateNotFound(err, ErrProfileNotFound)
	}
	if student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: %s is not a student", ErrInvalidRole, studentID)
	}

	var (
		enrollment *models.Enrollment
		course     *models.Course
	)
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err = tx.Course().GetByID(ctx, courseID)
		if err != nil {
			return translateNotFound(err, ErrCourseNotFound)
		}

		if _, err := tx.Enrollment().GetActive(ctx, studentID, courseID); err == nil {
			return ErrAlreadyEnrolled
		} else if !repositories.IsNotFoundError(err) {
			return err
		}

		active, err := tx.Enrollment().CountActiveByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if active >= int64(course.Capacity) {
			return ErrCourseFull
		}

		enrollment = &models.Enrollment{
			ID:         uuid.New().String(),
			StudentID:  studentID,
			CourseID:   courseID,
			Status:     models.EnrollmentActive,
			EnrolledAt: time.Now().UTC(),
		}

		if err := s.guard.Authorize(ctx, caller, OpCreate, enrollment); err != nil {
			return err
		}

		if err := tx.Enrollment().Create(ctx, enrollment); err != nil {
			return err
		}

		course.EnrolledCount = int(active) + 1
		return tx.Course().Update(ctx, course)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled",
		"enrollment_id", enrollment.ID,
		"student_id", studentID,
		"course_id", courseID,
		"enrolled_count", course.EnrolledCount,
	)
	publishEvent(ctx, s.publisher, s.logger, events.EventEnrollmentCreated, events.EnrollmentCreatedData{
		EnrollmentID: enrollment.ID,
		StudentID:    studentID,
		CourseID:     courseID,
		SeatsLeft:    course.SeatsLeft(),
	})

	return &EnrollmentResponse{Enrollment: enrollment, Course: course}, nil
}

// Withdraw flips the active enrollment to withdrawn and moves the course
// counter in the same transaction. The row is kept, so history survives and
// a later re-enroll creates a fresh active row.
func (s *enrollmentService) Withdraw(ctx context.Context, studentID, courseID string, callerID string) error {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return err
	}

	var enrollment *models.Enrollment
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		enrollment, err = tx.Enrollment().GetActive(ctx, studentID, courseID)
		if err != nil {
			return translateNotFound(err, ErrEnrollmentNotFound)
		}

		if err := s.guard.Authorize(ctx, caller, OpUpdate, enrollment); err != nil {
			return err
		}

		enrollment.Status = models.EnrollmentWithdrawn
		if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
			return err
		}

		course, err := tx.Course().GetByID(ctx, courseID)
		if err != nil {
			return translateNotFound(err, ErrCourseNotFound)
		}

		// Recount rather than decrement: equivalent inside the transaction
		// and self-correcting if the counter ever drifted.
		active, err := tx.Enrollment().CountActiveByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		course.EnrolledCount = int(active)
		return tx.Course().Update(ctx, course)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Student withdrawn", "enrollment_id", enrollment.ID, "student_id", studentID, "course_id", courseID)
	publishEvent(ctx, s.publisher, s.logger, events.EventEnrollmentWithdrawn, events.EnrollmentWithdrawnData{
		EnrollmentID: enrollment.ID,
		StudentID:    studentID,
		CourseID:     courseID,
	})
	return nil
}

func (s *enrollmentService) List(ctx context.Context, filters repositories.EnrollmentFilters, callerID string) ([]*EnrollmentResponse, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// Non-admins are scoped to their own view regardless of the filter
	switch caller.Role {
	case models.RoleStudent:
		filters.StudentID = strPtr(caller.ID)
	case models.RoleLecturer:
		if filters.CourseID == nil {
			accessible, err := s.guard.ListAccessible(ctx, caller, models.CollectionEnrollments)
			if err != nil {
				return nil, err
			}
			return s.toResponses(ctx, accessible.Enrollments)
		}
		owns, err := s.guard.instructorOwnsCourse(ctx, caller.ID, *filters.CourseID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, NewPermissionError(callerID, *filters.CourseID, "enrollment", "list", "course not instructed by caller")
		}
	}

	enrollments, err := s.repo.Enrollment().List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, enrollments)
}

func (s *enrollmentService) toResponses(ctx context.Context, enrollments []*models.Enrollment) ([]*EnrollmentResponse, error) {
	responses := make([]*EnrollmentResponse, 0, len(enrollments))
	courses := make(map[string]*models.Course)

	for _, enrollment := range enrollments {
		course, ok := courses[enrollment.CourseID]
		if !ok {
			var err error
			course, err = s.repo.Course().GetByID(ctx, enrollment.CourseID)
			if err != nil {
				if !repositories.IsNotFoundError(err) {
					return nil, err
				}
				course = nil
			}
			courses[enrollment.CourseID] = course
		}
		responses = append(responses, &EnrollmentResponse{Enrollment: enrollment, Course: course})
	}
	return responses, nil
}
