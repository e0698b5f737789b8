package models

import (
	"time"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent  UserRole = "student"
	RoleLecturer UserRole = "lecturer"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether the role is one of the three known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// Profile is the per-identity user record. Program, StudentID, YearLabel and
// GPA are only meaningful for the student role; for other roles they are nil.
type Profile struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	DisplayName string   `json:"display_name" gorm:"not null;size:100"`
	Role        UserRole `json:"role" gorm:"not null;size:20;index"`

	// Student-only fields
	Program   *string  `json:"program" gorm:"size:200"`
	StudentID *string  `json:"student_id" gorm:"size:50"`
	YearLabel *string  `json:"year_label" gorm:"size:20"`
	GPA       *float64 `json:"gpa"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "users"
}
