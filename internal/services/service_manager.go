package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// DefaultTimeout bounds every operation started through WithTimeout
	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	guard             *AccessGuard
	profileService    ProfileService
	courseService     CourseService
	enrollmentService EnrollmentService
	materialService   MaterialService
	gradeService      GradeService
	statsService      StatsService
	reportService     ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     30 * time.Second,
	}
	return NewServiceManager(repo, logger, validator, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.guard = NewAccessGuard(sm.repo, sm.logger)

	sm.profileService = NewProfileService(sm.repo, sm.guard, sm.logger, sm.validator, sm.publisher)
	sm.courseService = NewCourseService(sm.repo, sm.guard, sm.logger, sm.validator, sm.publisher)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.guard, sm.logger, sm.validator, sm.publisher)
	sm.materialService = NewMaterialService(sm.repo, sm.guard, sm.logger, sm.validator)
	sm.gradeService = NewGradeService(sm.repo, sm.guard, sm.logger, sm.validator, sm.publisher)
	sm.statsService = NewStatsService(sm.repo, sm.guard, sm.logger)
	sm.reportService = NewReportService(sm.repo, sm.guard, sm.statsService, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.profileService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.enrollmentService
}

func (sm *serviceManager) Material() MaterialService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.materialService
}

func (sm *serviceManager) Grade() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.gradeService
}

func (sm *serviceManager) Stats() StatsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.statsService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) Guard() *AccessGuard {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.guard
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
