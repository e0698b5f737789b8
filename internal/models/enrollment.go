package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
)

// Enrollment links a student to a course. At most one active enrollment may
// exist per (StudentID, CourseID) pair; withdrawal flips the status instead
// of deleting the row, so history survives and a later re-enroll creates a
// fresh active row.
type Enrollment struct {
	ID         string           `json:"id" gorm:"primaryKey;size:255"`
	StudentID  string           `json:"student_id" gorm:"not null;size:255;index:idx_enrollment_pair"`
	CourseID   string           `json:"course_id" gorm:"not null;size:255;index:idx_enrollment_pair;index"`
	Status     EnrollmentStatus `json:"status" gorm:"not null;size:20;index"`
	EnrolledAt time.Time        `json:"enrolled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}
