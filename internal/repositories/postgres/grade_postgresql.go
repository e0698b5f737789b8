package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type GradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &GradePostgreSQL{db: db}
}

func (g *GradePostgreSQL) Create(ctx context.Context, grade *models.Grade) error {
	if err := g.db.WithContext(ctx).Create(grade).Error; err != nil {
		return fmt.Errorf("failed to create grade: %w", mapError(err))
	}
	return nil
}

func (g *GradePostgreSQL) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	var grade models.Grade
	err := g.db.WithContext(ctx).First(&grade, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &grade, nil
}

func (g *GradePostgreSQL) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, error) {
	query := g.db.WithContext(ctx).Model(&models.Grade{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	var grades []*models.Grade
	if err := query.Order("created_at ASC").Find(&grades).Error; err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", mapError(err))
	}
	return grades, nil
}

func (g *GradePostgreSQL) Update(ctx context.Context, grade *models.Grade) error {
	result := g.db.WithContext(ctx).Model(&models.Grade{}).
		Where("id = ?", grade.ID).
		Select("*").Omit("id", "created_at").
		Updates(grade)
	if result.Error != nil {
		return fmt.Errorf("failed to update grade: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (g *GradePostgreSQL) Delete(ctx context.Context, id string) error {
	result := g.db.WithContext(ctx).Delete(&models.Grade{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete grade: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (g *GradePostgreSQL) DeleteByCourse(ctx context.Context, courseID string) error {
	tx := g.db.WithContext(ctx).Delete(&models.Grade{}, "course_id = ?", courseID)
	return deleteAffected(tx, "grades by course")
}
