package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/scms-platform/records-service/internal/models"
)

// ValidationError represents a single failed field rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground/validator with the domain rules registered.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

// Validate validates struct tags and returns typed field errors
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerDomainRules() {
	// user_role: one of the three known roles
	_ = v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	// material_type: one of document, video, link, assignment
	_ = v.validate.RegisterValidation("material_type", func(fl validator.FieldLevel) bool {
		return models.MaterialType(fl.Field().String()).Valid()
	})

	// grade_value: non-negative numeric grade
	_ = v.validate.RegisterValidation("grade_value", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() >= 0
	})
}

// ToValidationErrors converts library errors into the typed slice
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "user_role":
		return "must be one of student, lecturer, admin"
	case "material_type":
		return "must be one of document, video, link, assignment"
	case "grade_value":
		return "must be a non-negative number"
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}
