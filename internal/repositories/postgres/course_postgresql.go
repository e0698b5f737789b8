package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/cache"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	touched      *txTouched
}

// NewCoursePostgreSQL creates the course repository. cacheManager may be a
// nil-client manager; inside transactions it must be, so reads always hit the
// transactional snapshot and never a stale cache entry.
func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// invalidate drops the cached course, or records the ID for a post-commit
// flush when the repository runs inside a transaction.
func (c *CoursePostgreSQL) invalidate(ctx context.Context, id string) {
	if c.touched != nil {
		c.touched.course(id)
		return
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", mapError(err))
	}
	c.invalidate(ctx, course.ID)
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id string) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := c.db.WithContext(ctx).First(&dbCourse, "id = ?", id).Error; err != nil {
			return nil, mapError(err)
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Code != nil {
		query = query.Where("code = ?", *filters.Code)
	}

	var courses []*models.Course
	if err := query.Order("code ASC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", mapError(err))
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	result := c.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ?", course.ID).
		Select("*").Omit("id", "created_at").
		Updates(course)
	if result.Error != nil {
		return fmt.Errorf("failed to update course: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	c.invalidate(ctx, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CoursePostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", mapError(err))
	}
	return count, nil
}
