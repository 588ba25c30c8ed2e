package models

import (
	"strings"
	"time"
)

// Student is owned by the wider application; this service only reads it.
type Student struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	ExternalID   *int64       `json:"external_id" gorm:"uniqueIndex"`
	FirstName    string       `json:"first_name" gorm:"size:100"`
	LastName     string       `json:"last_name" gorm:"size:100"`
	GradeLevel   *string      `json:"grade_level" gorm:"size:50;index"`
	ReadingLevel ReadingLevel `json:"reading_level" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) HasGradeLevel() bool {
	return s.GradeLevel != nil && strings.TrimSpace(*s.GradeLevel) != ""
}

// CurrentReadingLevel falls back to Not Assessed for blank values.
func (s *Student) CurrentReadingLevel() ReadingLevel {
	if s.ReadingLevel == "" {
		return ReadingLevelNotAssessed
	}
	return s.ReadingLevel
}
