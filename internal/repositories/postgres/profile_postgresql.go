package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/cache"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	touched      *txTouched
}

// NewProfilePostgreSQL creates the profile repository. Profiles are resolved
// on every authenticated request, so GetByID reads through the cache; inside
// transactions the cacheManager must carry a nil client.
func NewProfilePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ProfileRepository {
	return &ProfilePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// invalidate drops the cached profile, or records the ID for a post-commit
// flush when the repository runs inside a transaction.
func (p *ProfilePostgreSQL) invalidate(ctx context.Context, id string) {
	if p.touched != nil {
		p.touched.profile(id)
		return
	}
	cache.InvalidateProfileCache(ctx, p.cacheManager, id)
}

func (p *ProfilePostgreSQL) Create(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", mapError(err))
	}
	p.invalidate(ctx, profile.ID)
	return nil
}

func (p *ProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var profile models.Profile

	err := p.cacheManager.Profile.CacheOrExecute(ctx, cacheKey, &profile, cache.ProfileCacheConfig.TTL, func() (interface{}, error) {
		var dbProfile models.Profile
		if err := p.db.WithContext(ctx).First(&dbProfile, "id = ?", id).Error; err != nil {
			return nil, mapError(err)
		}
		return &dbProfile, nil
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (p *ProfilePostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := p.db.WithContext(ctx).First(&profile, "email = ?", email).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, error) {
	query := p.db.WithContext(ctx).Model(&models.Profile{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Email != nil {
		query = query.Where("email = ?", *filters.Email)
	}

	var profiles []*models.Profile
	if err := query.Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", mapError(err))
	}
	return profiles, nil
}

func (p *ProfilePostgreSQL) Update(ctx context.Context, profile *models.Profile) error {
	result := p.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Select("*").Omit("id", "created_at").
		Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", mapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	p.invalidate(ctx, profile.ID)
	return nil
}

func (p *ProfilePostgreSQL) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Profile{}).
		Where("role = ?", role).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", mapError(err))
	}
	return count, nil
}
