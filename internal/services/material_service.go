package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

type materialService struct {
	repo      repositories.Repository
	guard     *AccessGuard
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMaterialService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger, validator *validator.Validator) MaterialService {
	return &materialService{
		repo:      repo,
		guard:     guard,
		logger:    logger,
		validator: validator,
	}
}

func (s *materialService) Add(ctx context.Context, req *AddMaterialRequest, callerID string) (*models.Material, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// The referenced course must exist at creation time
	if _, err := s.repo.Course().GetByID(ctx, req.CourseID); err != nil {
		return nil, translateNotFound(err, ErrCourseNotFound)
	}

	material := &models.Material{
		ID:        uuid.New().String(),
		CourseID:  req.CourseID,
		Title:     req.Title,
		Type:      req.Type,
		URL:       req.URL,
		CreatedBy: callerID,
	}
	if len(req.Metadata) > 0 {
		material.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.guard.Authorize(ctx, caller, OpCreate, material); err != nil {
		return nil, err
	}

	if err := s.repo.Material().Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("Material added", "material_id", material.ID, "course_id", material.CourseID, "created_by", callerID)
	return material, nil
}

func (s *materialService) Delete(ctx context.Context, id string, callerID string) error {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return err
	}

	material, err := s.repo.Material().GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrMaterialNotFound)
	}

	if err := s.guard.Authorize(ctx, caller, OpDelete, material); err != nil {
		return err
	}

	if err := s.repo.Material().Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrMaterialNotFound)
	}

	s.logger.Info("Material deleted", "material_id", id, "deleted_by", callerID)
	return nil
}

func (s *materialService) ListByCourse(ctx context.Context, courseID string, callerID string) ([]*models.Material, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	materials, err := s.repo.Material().List(ctx, repositories.MaterialFilters{CourseID: &courseID})
	if err != nil {
		return nil, err
	}

	if caller.Role == models.RoleAdmin {
		return materials, nil
	}
	for _, material := range materials {
		if err := s.guard.Authorize(ctx, caller, OpRead, material); err != nil {
			return nil, err
		}
	}
	return materials, nil
}
