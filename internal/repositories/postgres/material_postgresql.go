package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type MaterialPostgreSQL struct {
	db *gorm.DB
}

func NewMaterialPostgreSQL(db *gorm.DB) repositories.MaterialRepository {
	return &MaterialPostgreSQL{db: db}
}

func (m *MaterialPostgreSQL) Create(ctx context.Context, material *models.Material) error {
	if err := m.db.WithContext(ctx).Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", mapError(err))
	}
	return nil
}

func (m *MaterialPostgreSQL) GetByID(ctx context.Context, id string) (*models.Material, error) {
	var material models.Material
	err := m.db.WithContext(ctx).First(&material, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &material, nil
}

func (m *MaterialPostgreSQL) List(ctx context.Context, filters repositories.MaterialFilters) ([]*models.Material, error) {
	query := m.db.WithContext(ctx).Model(&models.Material{})
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var materials []*models.Material
	if err := query.Order("created_at ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", mapError(err))
	}
	return materials, nil
}

func (m *MaterialPostgreSQL) Delete(ctx context.Context, id string) error {
	result := m.db.WithContext(ctx).Delete(&models.Material{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete material: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (m *MaterialPostgreSQL) DeleteByCourse(ctx context.Context, courseID string) error {
	tx := m.db.WithContext(ctx).Delete(&models.Material{}, "course_id = ?", courseID)
	return deleteAffected(tx, "materials by course")
}
