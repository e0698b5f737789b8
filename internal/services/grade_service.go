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

type gradeService struct {
	repo      repositories.Repository
	guard     *AccessGuard
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewGradeService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) GradeService {
	return &gradeService{
		repo:      repo,
		guard:     guard,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *gradeService) Add(ctx context.Context, req *AddGradeRequest, callerID string) (*models.Grade, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Course().GetByID(ctx, req.CourseID); err != nil {
		return nil, translateNotFound(err, ErrCourseNotFound)
	}
	student, err := s.repo.Profile().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, translateNotFound(err, ErrProfileNotFound)
	}
	if student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: %s is not a student", ErrInvalidRole, req.StudentID)
	}

	grade := &models.Grade{
		ID:              uuid.New().String(),
		StudentID:       req.StudentID,
		CourseID:        req.CourseID,
		AssignmentLabel: req.AssignmentLabel,
		Value:           req.Value,
		CreatedBy:       callerID,
	}

	if err := s.guard.Authorize(ctx, caller, OpCreate, grade); err != nil {
		return nil, err
	}

	if err := s.repo.Grade().Create(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}

	s.logger.Info("Grade recorded",
		"grade_id", grade.ID,
		"student_id", grade.StudentID,
		"course_id", grade.CourseID,
		"created_by", callerID,
	)
	publishEvent(ctx, s.publisher, s.logger, events.EventGradeRecorded, events.GradeRecordedData{
		GradeID:   grade.ID,
		StudentID: grade.StudentID,
		CourseID:  grade.CourseID,
		Value:     grade.Value,
	})
	return grade, nil
}

func (s *gradeService) Update(ctx context.Context, id string, req *UpdateGradeRequest, callerID string) (*models.Grade, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// Authorize before opening the transaction: the lecturer branch of the
	// guard reads the owning course through the outer repository, which must
	// not run while a transaction holds the store. The grade's student/course
	// pair is immutable, so the decision stays valid for the re-read below.
	grade, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrGradeNotFound)
	}
	if err := s.guard.Authorize(ctx, caller, OpUpdate, grade); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		grade, err = tx.Grade().GetByID(ctx, id)
		if err != nil {
			return translateNotFound(err, ErrGradeNotFound)
		}

		if req.AssignmentLabel != nil {
			grade.AssignmentLabel = *req.AssignmentLabel
		}
		if req.Value != nil {
			grade.Value = *req.Value
		}

		return tx.Grade().Update(ctx, grade)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Grade updated", "grade_id", id, "updated_by", callerID)
	return grade, nil
}

func (s *gradeService) List(ctx context.Context, filters repositories.GradeFilters, callerID string) ([]*models.Grade, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleStudent:
		filters.StudentID = strPtr(caller.ID)
	case models.RoleLecturer:
		if filters.CourseID == nil {
			accessible, err := s.guard.ListAccessible(ctx, caller, models.CollectionGrades)
			if err != nil {
				return nil, err
			}
			return accessible.Grades, nil
		}
		owns, err := s.guard.instructorOwnsCourse(ctx, caller.ID, *filters.CourseID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, NewPermissionError(callerID, *filters.CourseID, "grade", "list", "course not instructed by caller")
		}
	}

	return s.repo.Grade().List(ctx, filters)
}
