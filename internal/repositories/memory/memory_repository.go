// Package memory provides an in-memory implementation of the store adapter.
// It is used by service tests and as a standalone backend for local
// development. A single mutex serializes transactions, so every transaction
// body observes a snapshot-consistent view and commits atomically.
package memory

import (
	"context"
	"sync"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

// dataset holds every collection keyed by document id.
type dataset struct {
	profiles    map[string]*models.Profile
	courses     map[string]*models.Course
	enrollments map[string]*models.Enrollment
	materials   map[string]*models.Material
	grades      map[string]*models.Grade
}

func newDataset() *dataset {
	return &dataset{
		profiles:    make(map[string]*models.Profile),
		courses:     make(map[string]*models.Course),
		enrollments: make(map[string]*models.Enrollment),
		materials:   make(map[string]*models.Material),
		grades:      make(map[string]*models.Grade),
	}
}

// clone deep-copies the dataset so an aborted transaction leaves the
// committed state untouched.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, p := range d.profiles {
		c.profiles[id] = cloneProfile(p)
	}
	for id, course := range d.courses {
		c.courses[id] = cloneCourse(course)
	}
	for id, e := range d.enrollments {
		c.enrollments[id] = cloneEnrollment(e)
	}
	for id, m := range d.materials {
		c.materials[id] = cloneMaterial(m)
	}
	for id, g := range d.grades {
		c.grades[id] = cloneGrade(g)
	}
	return c
}

// MemoryRepository implements repositories.Repository over process memory.
type MemoryRepository struct {
	mu   *sync.Mutex
	data *dataset

	// locked is true for the repository handed to a transaction body; its
	// operations run under the already-held mutex against the working copy.
	locked bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:   &sync.Mutex{},
		data: newDataset(),
	}
}

// run executes op against the current dataset, taking the mutex unless the
// repository is already inside a transaction.
func (r *MemoryRepository) run(ctx context.Context, op func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return repositories.ErrTimeout
		}
		return err
	}
	if !r.locked {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return op(r.data)
}

func (r *MemoryRepository) Profile() repositories.ProfileRepository {
	return &profileMemory{repo: r}
}

func (r *MemoryRepository) Course() repositories.CourseRepository {
	return &courseMemory{repo: r}
}

func (r *MemoryRepository) Enrollment() repositories.EnrollmentRepository {
	return &enrollmentMemory{repo: r}
}

func (r *MemoryRepository) Material() repositories.MaterialRepository {
	return &materialMemory{repo: r}
}

func (r *MemoryRepository) Grade() repositories.GradeRepository {
	return &gradeMemory{repo: r}
}

// WithTransaction runs fn against a working copy of the dataset under the
// store mutex and swaps the copy in on success. An error from fn discards
// the copy, so no partial writes escape a failed transaction.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.locked {
		// Nested transaction joins the outer one.
		return fn(r)
	}

	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return repositories.ErrTimeout
		}
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	working := r.data.clone()
	txRepo := &MemoryRepository{
		mu:     r.mu,
		data:   working,
		locked: true,
	}

	if err := fn(txRepo); err != nil {
		return err
	}

	r.data = working
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}
