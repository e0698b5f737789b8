package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	guard     *AccessGuard
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		guard:     guard,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, creatorID string) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if caller.Role == models.RoleStudent {
		return nil, NewPermissionError(creatorID, "", "course", "create", "insufficient role permissions")
	}

	course := &models.Course{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Code:           req.Code,
		InstructorName: req.InstructorName,
		InstructorID:   req.InstructorID,
		Credits:        req.Credits,
		ScheduleText:   req.ScheduleText,
		Capacity:       req.Capacity,
		EnrolledCount:  0,
		CreatedBy:      creatorID,
	}

	// A lecturer creating a course instructs it unless told otherwise
	if caller.Role == models.RoleLecturer && course.InstructorID == nil {
		course.InstructorID = strPtr(caller.ID)
		if course.InstructorName == "" {
			course.InstructorName = caller.DisplayName
		}
	}

	if err := s.guard.Authorize(ctx, caller, OpCreate, course); err != nil {
		return nil, err
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "code", course.Code, "created_by", creatorID)
	return s.toResponse(caller, course), nil
}

func (s *courseService) GetByID(ctx context.Context, id string, callerID string) (*CourseResponse, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrCourseNotFound)
	}

	if err := s.guard.Authorize(ctx, caller, OpRead, course); err != nil {
		return nil, err
	}
	return s.toResponse(caller, course), nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, callerID string) ([]*CourseResponse, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, err
	}

	responses := make([]*CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, s.toResponse(caller, course))
	}
	return responses, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, callerID string) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var course *models.Course
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err = tx.Course().GetByID(ctx, id)
		if err != nil {
			return translateNotFound(err, ErrCourseNotFound)
		}

		if err := s.guard.Authorize(ctx, caller, OpUpdate, course); err != nil {
			return err
		}

		if req.Name != nil {
			course.Name = *req.Name
		}
		if req.Code != nil {
			course.Code = *req.Code
		}
		if req.InstructorName != nil {
			course.InstructorName = *req.InstructorName
		}
		if req.Credits != nil {
			course.Credits = *req.Credits
		}
		if req.ScheduleText != nil {
			course.ScheduleText = *req.ScheduleText
		}
		if req.Capacity != nil {
			course.Capacity = *req.Capacity
		}

		return tx.Course().Update(ctx, course)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course updated", "course_id", course.ID, "updated_by", callerID)
	return s.toResponse(caller, course), nil
}

// Delete removes the course together with every enrollment, material and
// grade referencing it. Dependents go strictly before the course row and the
// whole cascade runs in one transaction, so a failure at any step aborts the
// operation and no orphaned references survive a successful delete.
func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return err
	}

	var removed events.CourseDeletedData
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err := tx.Course().GetByID(ctx, id)
		if err != nil {
			return translateNotFound(err, ErrCourseNotFound)
		}

		if err := s.guard.Authorize(ctx, caller, OpDelete, course); err != nil {
			return err
		}

		enrollments, err := tx.Enrollment().List(ctx, repositories.EnrollmentFilters{CourseID: &id})
		if err != nil {
			return fmt.Errorf("failed to collect enrollments: %w", err)
		}
		materials, err := tx.Material().List(ctx, repositories.MaterialFilters{CourseID: &id})
		if err != nil {
			return fmt.Errorf("failed to collect materials: %w", err)
		}
		grades, err := tx.Grade().List(ctx, repositories.GradeFilters{CourseID: &id})
		if err != nil {
			return fmt.Errorf("failed to collect grades: %w", err)
		}

		if err := tx.Enrollment().DeleteByCourse(ctx, id); err != nil {
			return fmt.Errorf("failed to delete enrollments: %w", err)
		}
		if err := tx.Material().DeleteByCourse(ctx, id); err != nil {
			return fmt.Errorf("failed to delete materials: %w", err)
		}
		if err := tx.Grade().DeleteByCourse(ctx, id); err != nil {
			return fmt.Errorf("failed to delete grades: %w", err)
		}

		if err := tx.Course().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}

		removed = events.CourseDeletedData{
			CourseID:           id,
			EnrollmentsRemoved: len(enrollments),
			MaterialsRemoved:   len(materials),
			GradesRemoved:      len(grades),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Course deleted",
		"course_id", id,
		"deleted_by", callerID,
		"enrollments_removed", removed.EnrollmentsRemoved,
		"materials_removed", removed.MaterialsRemoved,
		"grades_removed", removed.GradesRemoved,
	)
	publishEvent(ctx, s.publisher, s.logger, events.EventCourseDeleted, removed)
	return nil
}

func (s *courseService) AssignInstructor(ctx context.Context, courseID string, instructorID string, callerID string) (*CourseResponse, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin {
		return nil, NewPermissionError(callerID, courseID, "course", "assign_instructor", "insufficient role permissions")
	}

	instructor, err := s.repo.Profile().GetByID(ctx, instructorID)
	if err != nil {
		return nil, translateNotFound(err, ErrProfileNotFound)
	}
	if instructor.Role != models.RoleLecturer {
		return nil, fmt.Errorf("%w: %s is not a lecturer", ErrInvalidRole, instructorID)
	}

	var course *models.Course
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err = tx.Course().GetByID(ctx, courseID)
		if err != nil {
			return translateNotFound(err, ErrCourseNotFound)
		}

		course.InstructorID = strPtr(instructor.ID)
		course.InstructorName = instructor.DisplayName
		return tx.Course().Update(ctx, course)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Instructor assigned", "course_id", courseID, "instructor_id", instructorID, "assigned_by", callerID)
	return s.toResponse(caller, course), nil
}

func (s *courseService) toResponse(caller *models.Profile, course *models.Course) *CourseResponse {
	isInstructor := course.InstructorID != nil && *course.InstructorID == caller.ID
	canManage := caller.Role == models.RoleAdmin || (caller.Role == models.RoleLecturer && isInstructor)

	return &CourseResponse{
		Course:    course,
		SeatsLeft: course.SeatsLeft(),
		CanEdit:   canManage,
		CanDelete: canManage,
		CanEnroll: caller.Role == models.RoleStudent && course.SeatsLeft() > 0,
	}
}
