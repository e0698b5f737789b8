package validator

import (
	"errors"
	"testing"

	"github.com/scms-platform/records-service/internal/models"
)

func validSignup() SignupRequest {
	return SignupRequest{
		FullName:        "Alice Nguyen",
		Email:           "alice@university.edu",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Role:            models.RoleStudent,
		StudentID:       "651395",
		Program:         "Applied Computer Technology",
	}
}

func fieldErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	return ve
}

func hasFieldError(ve ValidationErrors, field string) bool {
	for _, fe := range ve {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidator_Signup(t *testing.T) {
	v := New()

	t.Run("Valid_Request_Passes", func(t *testing.T) {
		if err := v.Validate(validSignup()); err != nil {
			t.Fatalf("valid signup rejected: %v", err)
		}
	})

	t.Run("Password_Mismatch_Rejected", func(t *testing.T) {
		req := validSignup()
		req.ConfirmPassword = "different"

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "ConfirmPassword") {
			t.Errorf("expected ConfirmPassword error, got %v", ve)
		}
	})

	t.Run("Student_Requires_StudentID_And_Program", func(t *testing.T) {
		req := validSignup()
		req.StudentID = ""
		req.Program = ""

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "StudentID") || !hasFieldError(ve, "Program") {
			t.Errorf("expected StudentID and Program errors, got %v", ve)
		}
	})

	t.Run("Lecturer_Needs_No_Student_Fields", func(t *testing.T) {
		req := validSignup()
		req.Role = models.RoleLecturer
		req.StudentID = ""
		req.Program = ""

		if err := v.Validate(req); err != nil {
			t.Fatalf("lecturer signup rejected: %v", err)
		}
	})

	t.Run("Unknown_Role_Rejected", func(t *testing.T) {
		req := validSignup()
		req.Role = "superuser"

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "Role") {
			t.Errorf("expected Role error, got %v", ve)
		}
	})
}

func TestValidator_DomainRules(t *testing.T) {
	v := New()

	t.Run("Material_Type_Checked", func(t *testing.T) {
		req := MaterialCreateRequest{
			CourseID: "c1",
			Title:    "Week 1",
			Type:     "podcast",
			URL:      "https://files.example.com/week1.pdf",
		}

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "Type") {
			t.Errorf("expected Type error, got %v", ve)
		}
	})

	t.Run("Negative_Grade_Rejected", func(t *testing.T) {
		req := GradeCreateRequest{
			StudentID:       "s1",
			CourseID:        "c1",
			AssignmentLabel: "Final",
			Value:           -0.5,
		}

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "Value") {
			t.Errorf("expected Value error, got %v", ve)
		}
	})

	t.Run("Zero_Grade_Allowed", func(t *testing.T) {
		req := GradeCreateRequest{
			StudentID:       "s1",
			CourseID:        "c1",
			AssignmentLabel: "Final",
			Value:           0,
		}

		if err := v.Validate(req); err != nil {
			t.Fatalf("zero grade rejected: %v", err)
		}
	})

	t.Run("Zero_Capacity_Course_Rejected", func(t *testing.T) {
		req := CourseCreateRequest{
			Name:     "Databases",
			Code:     "CS-305",
			Credits:  3,
			Capacity: 0,
		}

		ve := fieldErrors(t, v.Validate(req))
		if !hasFieldError(ve, "Capacity") {
			t.Errorf("expected Capacity error, got %v", ve)
		}
	})
}
