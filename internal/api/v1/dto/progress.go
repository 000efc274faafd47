package dto

import "time"

// MarkCompleteDTO is the incoming completion marker
type MarkCompleteDTO struct {
	CourseID   string `json:"course_id" validate:"required"`
	SubtopicID string `json:"subtopic_id" validate:"required"`
}

// ProgressEntryDTO is one completion tuple in API responses
type ProgressEntryDTO struct {
	CourseID    string    `json:"course_id"`
	SubtopicID  string    `json:"subtopic_id"`
	CompletedAt time.Time `json:"completed_at"`
}
