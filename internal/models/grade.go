package models

import (
	"time"
)

// Grade records a numeric result for one assignment of one student in one
// course. Student deletion does not cascade here; grades only go away with
// their course.
type Grade struct {
	ID              string  `json:"id" gorm:"primaryKey;size:255"`
	StudentID       string  `json:"student_id" gorm:"not null;size:255;index"`
	CourseID        string  `json:"course_id" gorm:"not null;size:255;index"`
	AssignmentLabel string  `json:"assignment_label" gorm:"not null;size:200"`
	Value           float64 `json:"value" gorm:"not null"`
	CreatedBy       string  `json:"created_by" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Grade) TableName() string {
	return "grades"
}
