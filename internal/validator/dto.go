package validator

import (
	"github.com/scms-platform/records-service/internal/models"
)

// SignupRequest carries caller-supplied profile data at explicit signup.
// Students must supply a student id and program; ConfirmPassword must match
// Password (the credential pair itself is forwarded to the auth collaborator,
// never stored here).
type SignupRequest struct {
	FullName        string          `json:"full_name" validate:"required,min=1,max=100"`
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required,min=8"`
	ConfirmPassword string          `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            models.UserRole `json:"role" validate:"required,user_role"`
	StudentID       string          `json:"student_id" validate:"required_if=Role student,omitempty,max=50"`
	Program         string          `json:"program" validate:"required_if=Role student,omitempty,max=200"`
}

// ProfileUpdateRequest is a partial profile edit
type ProfileUpdateRequest struct {
	DisplayName *string  `json:"display_name" validate:"omitempty,min=1,max=100"`
	Program     *string  `json:"program" validate:"omitempty,max=200"`
	StudentID   *string  `json:"student_id" validate:"omitempty,max=50"`
	YearLabel   *string  `json:"year_label" validate:"omitempty,max=20"`
	GPA         *float64 `json:"gpa" validate:"omitempty,min=0,max=5"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	Code           string  `json:"code" validate:"required,min=1,max=50"`
	InstructorName string  `json:"instructor_name" validate:"omitempty,max=100"`
	InstructorID   *string `json:"instructor_id"`
	Credits        int     `json:"credits" validate:"required,gt=0"`
	ScheduleText   string  `json:"schedule_text" validate:"omitempty,max=200"`
	Capacity       int     `json:"capacity" validate:"required,gt=0"`
}

// CourseUpdateRequest is a partial course edit; the enrolled counter is
// deliberately absent, it only moves with enrollment transactions.
type CourseUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code           *string `json:"code" validate:"omitempty,min=1,max=50"`
	InstructorName *string `json:"instructor_name" validate:"omitempty,max=100"`
	Credits        *int    `json:"credits" validate:"omitempty,gt=0"`
	ScheduleText   *string `json:"schedule_text" validate:"omitempty,max=200"`
	Capacity       *int    `json:"capacity" validate:"omitempty,gt=0"`
}

// MaterialCreateRequest represents the request structure for adding materials
type MaterialCreateRequest struct {
	CourseID string                 `json:"course_id" validate:"required"`
	Title    string                 `json:"title" validate:"required,min=1,max=200"`
	Type     models.MaterialType    `json:"type" validate:"required,material_type"`
	URL      string                 `json:"url" validate:"required,url,max=500"`
	Metadata map[string]interface{} `json:"metadata"`
}

// GradeCreateRequest represents the request structure for recording grades
type GradeCreateRequest struct {
	StudentID       string  `json:"student_id" validate:"required"`
	CourseID        string  `json:"course_id" validate:"required"`
	AssignmentLabel string  `json:"assignment_label" validate:"required,min=1,max=200"`
	Value           float64 `json:"value" validate:"grade_value"`
}

// GradeUpdateRequest is a partial grade edit
type GradeUpdateRequest struct {
	AssignmentLabel *string  `json:"assignment_label" validate:"omitempty,min=1,max=200"`
	Value           *float64 `json:"value" validate:"omitempty,grade_value"`
}

// EnrollRequest represents an enrollment attempt
type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}
