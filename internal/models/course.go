package models

import (
	"time"
)

// Course is a catalog entry. EnrolledCount caches the number of active
// enrollments referencing the course and is only ever mutated together with
// an enrollment write in the same transaction.
type Course struct {
	ID             string  `json:"id" gorm:"primaryKey;size:255"`
	Name           string  `json:"name" gorm:"not null;size:200"`
	Code           string  `json:"code" gorm:"not null;size:50;index"`
	InstructorName string  `json:"instructor_name" gorm:"size:100"`
	InstructorID   *string `json:"instructor_id" gorm:"size:255;index"`
	Credits        int     `json:"credits" gorm:"not null"`
	ScheduleText   string  `json:"schedule_text" gorm:"size:200"`
	Capacity       int     `json:"capacity" gorm:"not null"`
	EnrolledCount  int     `json:"enrolled_count" gorm:"not null;default:0"`
	CreatedBy      string  `json:"created_by" gorm:"not null;size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// SeatsLeft returns the number of seats still open on the cached counter.
func (c *Course) SeatsLeft() int {
	left := c.Capacity - c.EnrolledCount
	if left < 0 {
		return 0
	}
	return left
}
