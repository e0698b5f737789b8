package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/cache"
	"github.com/scms-platform/records-service/internal/repositories"
)

// txMaxAttempts bounds the serialization-failure retry loop inside
// WithTransaction; when exhausted the caller sees ErrTxConflict.
const txMaxAttempts = 3

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	profile    repositories.ProfileRepository
	course     repositories.CourseRepository
	enrollment repositories.EnrollmentRepository
	material   repositories.MaterialRepository
	grade      repositories.GradeRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.profile = NewProfilePostgreSQL(config.DB, cacheManager)
	repo.course = NewCoursePostgreSQL(config.DB, cacheManager)
	repo.enrollment = NewEnrollmentPostgreSQL(config.DB)
	repo.material = NewMaterialPostgreSQL(config.DB)
	repo.grade = NewGradePostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository {
	return r.profile
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository {
	return r.enrollment
}

func (r *PostgreSQLRepository) Material() repositories.MaterialRepository {
	return r.material
}

func (r *PostgreSQLRepository) Grade() repositories.GradeRepository {
	return r.grade
}

// WithTransaction executes fn within a serializable database transaction,
// retrying the whole body on serialization failure up to txMaxAttempts.
// Serializable isolation is what makes the enrollment capacity check
// race-free: two concurrent enrollers for the last seat cannot both commit.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	var lastErr error

	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		touched := newTxTouched()
		lastErr = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Transactional sub-repositories bypass the cache so every read
			// sees the transaction snapshot, never a stale cached document.
			// Writes record the touched IDs; the cache entries are dropped
			// only once the transaction commits.
			txRepo := &PostgreSQLRepository{
				db:           tx,
				redisClient:  r.redisClient,
				cacheManager: r.cacheManager,
			}
			noCache := cache.NewCacheManager(nil)
			txRepo.profile = &ProfilePostgreSQL{db: tx, cacheManager: noCache, touched: touched}
			txRepo.course = &CoursePostgreSQL{db: tx, cacheManager: noCache, touched: touched}
			txRepo.enrollment = NewEnrollmentPostgreSQL(tx)
			txRepo.material = NewMaterialPostgreSQL(tx)
			txRepo.grade = NewGradePostgreSQL(tx)

			return fn(txRepo)
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})

		if lastErr == nil {
			touched.flush(ctx, r.cacheManager)
			return nil
		}
		if !isSerializationFailure(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", repositories.ErrTxConflict, lastErr)
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
