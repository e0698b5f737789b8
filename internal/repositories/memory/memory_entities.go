package memory

import (
	"context"
	"sort"
	"time"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
)

// ===== CLONE HELPERS =====

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// stampNew fills timestamps on create the way the gorm backend would
func stampNew(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Program = clonePtr(p.Program)
	c.StudentID = clonePtr(p.StudentID)
	c.YearLabel = clonePtr(p.YearLabel)
	c.GPA = clonePtr(p.GPA)
	return &c
}

func cloneCourse(course *models.Course) *models.Course {
	c := *course
	c.InstructorID = clonePtr(course.InstructorID)
	return &c
}

func cloneEnrollment(e *models.Enrollment) *models.Enrollment {
	c := *e
	return &c
}

func cloneMaterial(m *models.Material) *models.Material {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func cloneGrade(g *models.Grade) *models.Grade {
	c := *g
	return &c
}

// ===== PROFILE =====

type profileMemory struct {
	repo *MemoryRepository
}

func (p *profileMemory) Create(ctx context.Context, profile *models.Profile) error {
	return p.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.profiles[profile.ID]; ok {
			return repositories.ErrDuplicate
		}
		for _, existing := range d.profiles {
			if existing.Email == profile.Email {
				return repositories.ErrDuplicate
			}
		}
		stampNew(&profile.CreatedAt, &profile.UpdatedAt)
		d.profiles[profile.ID] = cloneProfile(profile)
		return nil
	})
}

func (p *profileMemory) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var out *models.Profile
	err := p.repo.run(ctx, func(d *dataset) error {
		profile, ok := d.profiles[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = cloneProfile(profile)
		return nil
	})
	return out, err
}

func (p *profileMemory) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var out *models.Profile
	err := p.repo.run(ctx, func(d *dataset) error {
		for _, profile := range d.profiles {
			if profile.Email == email {
				out = cloneProfile(profile)
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (p *profileMemory) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, error) {
	var out []*models.Profile
	err := p.repo.run(ctx, func(d *dataset) error {
		for _, profile := range d.profiles {
			if filters.Role != nil && profile.Role != *filters.Role {
				continue
			}
			if filters.Email != nil && profile.Email != *filters.Email {
				continue
			}
			out = append(out, cloneProfile(profile))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (p *profileMemory) Update(ctx context.Context, profile *models.Profile) error {
	return p.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.profiles[profile.ID]; !ok {
			return repositories.ErrNotFound
		}
		d.profiles[profile.ID] = cloneProfile(profile)
		return nil
	})
}

func (p *profileMemory) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := p.repo.run(ctx, func(d *dataset) error {
		for _, profile := range d.profiles {
			if profile.Role == role {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ===== COURSE =====

type courseMemory struct {
	repo *MemoryRepository
}

func (c *courseMemory) Create(ctx context.Context, course *models.Course) error {
	return c.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.courses[course.ID]; ok {
			return repositories.ErrDuplicate
		}
		stampNew(&course.CreatedAt, &course.UpdatedAt)
		d.courses[course.ID] = cloneCourse(course)
		return nil
	})
}

func (c *courseMemory) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var out *models.Course
	err := c.repo.run(ctx, func(d *dataset) error {
		course, ok := d.courses[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = cloneCourse(course)
		return nil
	})
	return out, err
}

func (c *courseMemory) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	var out []*models.Course
	err := c.repo.run(ctx, func(d *dataset) error {
		for _, course := range d.courses {
			if filters.InstructorID != nil && (course.InstructorID == nil || *course.InstructorID != *filters.InstructorID) {
				continue
			}
			if filters.CreatedBy != nil && course.CreatedBy != *filters.CreatedBy {
				continue
			}
			if filters.Code != nil && course.Code != *filters.Code {
				continue
			}
			out = append(out, cloneCourse(course))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (c *courseMemory) Update(ctx context.Context, course *models.Course) error {
	return c.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.courses[course.ID]; !ok {
			return repositories.ErrNotFound
		}
		d.courses[course.ID] = cloneCourse(course)
		return nil
	})
}

func (c *courseMemory) Delete(ctx context.Context, id string) error {
	return c.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.courses[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.courses, id)
		return nil
	})
}

func (c *courseMemory) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.repo.run(ctx, func(d *dataset) error {
		count = int64(len(d.courses))
		return nil
	})
	return count, err
}

// ===== ENROLLMENT =====

type enrollmentMemory struct {
	repo *MemoryRepository
}

func (e *enrollmentMemory) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return e.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.enrollments[enrollment.ID]; ok {
			return repositories.ErrDuplicate
		}
		stampNew(&enrollment.CreatedAt, &enrollment.UpdatedAt)
		d.enrollments[enrollment.ID] = cloneEnrollment(enrollment)
		return nil
	})
}

func (e *enrollmentMemory) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var out *models.Enrollment
	err := e.repo.run(ctx, func(d *dataset) error {
		enrollment, ok := d.enrollments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = cloneEnrollment(enrollment)
		return nil
	})
	return out, err
}

func (e *enrollmentMemory) GetActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	var out *models.Enrollment
	err := e.repo.run(ctx, func(d *dataset) error {
		for _, enrollment := range d.enrollments {
			if enrollment.StudentID == studentID && enrollment.CourseID == courseID && enrollment.IsActive() {
				out = cloneEnrollment(enrollment)
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (e *enrollmentMemory) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	err := e.repo.run(ctx, func(d *dataset) error {
		for _, enrollment := range d.enrollments {
			if filters.StudentID != nil && enrollment.StudentID != *filters.StudentID {
				continue
			}
			if filters.CourseID != nil && enrollment.CourseID != *filters.CourseID {
				continue
			}
			if filters.Status != nil && enrollment.Status != *filters.Status {
				continue
			}
			out = append(out, cloneEnrollment(enrollment))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, err
}

func (e *enrollmentMemory) CountActiveByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := e.repo.run(ctx, func(d *dataset) error {
		for _, enrollment := range d.enrollments {
			if enrollment.CourseID == courseID && enrollment.IsActive() {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (e *enrollmentMemory) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return e.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.enrollments[enrollment.ID]; !ok {
			return repositories.ErrNotFound
		}
		d.enrollments[enrollment.ID] = cloneEnrollment(enrollment)
		return nil
	})
}

func (e *enrollmentMemory) DeleteByCourse(ctx context.Context, courseID string) error {
	return e.repo.run(ctx, func(d *dataset) error {
		for id, enrollment := range d.enrollments {
			if enrollment.CourseID == courseID {
				delete(d.enrollments, id)
			}
		}
		return nil
	})
}

// ===== MATERIAL =====

type materialMemory struct {
	repo *MemoryRepository
}

func (m *materialMemory) Create(ctx context.Context, material *models.Material) error {
	return m.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.materials[material.ID]; ok {
			return repositories.ErrDuplicate
		}
		stampNew(&material.CreatedAt, &material.UpdatedAt)
		d.materials[material.ID] = cloneMaterial(material)
		return nil
	})
}

func (m *materialMemory) GetByID(ctx context.Context, id string) (*models.Material, error) {
	var out *models.Material
	err := m.repo.run(ctx, func(d *dataset) error {
		material, ok := d.materials[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = cloneMaterial(material)
		return nil
	})
	return out, err
}

func (m *materialMemory) List(ctx context.Context, filters repositories.MaterialFilters) ([]*models.Material, error) {
	var out []*models.Material
	err := m.repo.run(ctx, func(d *dataset) error {
		for _, material := range d.materials {
			if filters.CourseID != nil && material.CourseID != *filters.CourseID {
				continue
			}
			if filters.Type != nil && material.Type != *filters.Type {
				continue
			}
			if filters.CreatedBy != nil && material.CreatedBy != *filters.CreatedBy {
				continue
			}
			out = append(out, cloneMaterial(material))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (m *materialMemory) Delete(ctx context.Context, id string) error {
	return m.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.materials[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.materials, id)
		return nil
	})
}

func (m *materialMemory) DeleteByCourse(ctx context.Context, courseID string) error {
	return m.repo.run(ctx, func(d *dataset) error {
		for id, material := range d.materials {
			if material.CourseID == courseID {
				delete(d.materials, id)
			}
		}
		return nil
	})
}

// ===== GRADE =====

type gradeMemory struct {
	repo *MemoryRepository
}

func (g *gradeMemory) Create(ctx context.Context, grade *models.Grade) error {
	return g.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.grades[grade.ID]; ok {
			return repositories.ErrDuplicate
		}
		stampNew(&grade.CreatedAt, &grade.UpdatedAt)
		d.grades[grade.ID] = cloneGrade(grade)
		return nil
	})
}

func (g *gradeMemory) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	var out *models.Grade
	err := g.repo.run(ctx, func(d *dataset) error {
		grade, ok := d.grades[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = cloneGrade(grade)
		return nil
	})
	return out, err
}

func (g *gradeMemory) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, error) {
	var out []*models.Grade
	err := g.repo.run(ctx, func(d *dataset) error {
		for _, grade := range d.grades {
			if filters.StudentID != nil && grade.StudentID != *filters.StudentID {
				continue
			}
			if filters.CourseID != nil && grade.CourseID != *filters.CourseID {
				continue
			}
			out = append(out, cloneGrade(grade))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (g *gradeMemory) Update(ctx context.Context, grade *models.Grade) error {
	return g.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.grades[grade.ID]; !ok {
			return repositories.ErrNotFound
		}
		d.grades[grade.ID] = cloneGrade(grade)
		return nil
	})
}

func (g *gradeMemory) Delete(ctx context.Context, id string) error {
	return g.repo.run(ctx, func(d *dataset) error {
		if _, ok := d.grades[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.grades, id)
		return nil
	})
}

func (g *gradeMemory) DeleteByCourse(ctx context.Context, courseID string) error {
	return g.repo.run(ctx, func(d *dataset) error {
		for id, grade := range d.grades {
			if grade.CourseID == courseID {
				delete(d.grades, id)
			}
		}
		return nil
	})
}
