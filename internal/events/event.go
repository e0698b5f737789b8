package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the records service
const (
	EventProfileCreated      = "profile.created"
	EventEnrollmentCreated   = "enrollment.created"
	EventEnrollmentWithdrawn = "enrollment.withdrawn"
	EventCourseDeleted       = "course.deleted"
	EventGradeRecorded       = "grade.recorded"
)

// DefaultTopic is the broker topic all record events are published to
const DefaultTopic = "records.events"

const (
	eventSource  = "records-service"
	eventVersion = "1.0"
)

// Event is the envelope published to the message broker. Data carries the
// type-specific payload.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with identity and timing filled in
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ProfileCreatedData is the payload for profile.created
type ProfileCreatedData struct {
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// EnrollmentCreatedData is the payload for enrollment.created
type EnrollmentCreatedData struct {
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	SeatsLeft    int    `json:"seats_left"`
}

// EnrollmentWithdrawnData is the payload for enrollment.withdrawn
type EnrollmentWithdrawnData struct {
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
}

// CourseDeletedData is the payload for course.deleted; the counts record how
// many dependent documents the cascade removed.
type CourseDeletedData struct {
	CourseID           string `json:"course_id"`
	EnrollmentsRemoved int    `json:"enrollments_removed"`
	MaterialsRemoved   int    `json:"materials_removed"`
	GradesRemoved      int    `json:"grades_removed"`
}

// GradeRecordedData is the payload for grade.recorded
type GradeRecordedData struct {
	GradeID   string  `json:"grade_id"`
	StudentID string  `json:"student_id"`
	CourseID  string  `json:"course_id"`
	Value     float64 `json:"value"`
}
