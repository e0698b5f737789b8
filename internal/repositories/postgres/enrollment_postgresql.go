package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := e.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", mapError(err))
	}
	return nil
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.db.WithContext(ctx).First(&enrollment, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, models.EnrollmentActive).
		First(&enrollment).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, error) {
	query := e.db.WithContext(ctx).Model(&models.Enrollment{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var enrollments []*models.Enrollment
	if err := query.Order("enrolled_at ASC").Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", mapError(err))
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) CountActiveByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", mapError(err))
	}
	return count, nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, enrollment *models.Enrollment) error {
	result := e.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Select("*").Omit("id", "created_at").
		Updates(enrollment)
	if result.Error != nil {
		return fmt.Errorf("failed to update enrollment: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (e *EnrollmentPostgreSQL) DeleteByCourse(ctx context.Context, courseID string) error {
	tx := e.db.WithContext(ctx).Delete(&models.Enrollment{}, "course_id = ?", courseID)
	return deleteAffected(tx, "enrollments by course")
}
