package models

import (
	"time"

	"gorm.io/datatypes"
)

type MaterialType string

const (
	MaterialDocument   MaterialType = "document"
	MaterialVideo      MaterialType = "video"
	MaterialLink       MaterialType = "link"
	MaterialAssignment MaterialType = "assignment"
)

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialDocument, MaterialVideo, MaterialLink, MaterialAssignment:
		return true
	}
	return false
}

// Material is a course resource. URL points at a durable location returned by
// the file transport collaborator; this service never handles the bytes.
// Metadata carries free-form upload attributes (content type, size, uploader
// client) and has no schema beyond being a flat map.
type Material struct {
	ID        string            `json:"id" gorm:"primaryKey;size:255"`
	CourseID  string            `json:"course_id" gorm:"not null;size:255;index"`
	Title     string            `json:"title" gorm:"not null;size:200"`
	Type      MaterialType      `json:"type" gorm:"not null;size:20"`
	URL       string            `json:"url" gorm:"not null;size:500"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedBy string            `json:"created_by" gorm:"not null;size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "materials"
}
