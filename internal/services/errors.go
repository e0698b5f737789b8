package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the service layer. Repository-level errors are
// translated into these before they reach a handler.
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrGradeNotFound      = errors.New("grade not found")

	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrCourseFull      = errors.New("course is at capacity")

	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidCollection = errors.New("unknown collection")
)

// PermissionError is returned when the access guard denies an operation
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is (or wraps) a PermissionError
func IsPermissionError(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

// IsNotFoundError reports whether err is one of the service not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrMaterialNotFound) ||
		errors.Is(err, ErrGradeNotFound)
}
