package repositories

import "context"

// Repository aggregates the per-collection repositories behind one store
// adapter. Engine components are written exclusively against this interface
// so the backing store can be swapped (Postgres, in-memory fake for tests)
// without change.
type Repository interface {
	Profile() ProfileRepository
	Course() CourseRepository
	Enrollment() EnrollmentRepository
	Material() MaterialRepository
	Grade() GradeRepository

	// WithTransaction executes fn with a snapshot-consistent view of the
	// store and commits atomically or not at all. Implementations retry a
	// bounded number of times on write conflict and surface ErrTxConflict
	// when retries are exhausted.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
