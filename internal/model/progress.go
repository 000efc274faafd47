package model

import "time"

// UserProgress marks one subtopic as completed by a user. Presence of the
// tuple is the completion fact; writing it twice is a no-op.
type UserProgress struct {
	UserID      string    `db:"user_id" json:"user_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	SubtopicID  string    `db:"subtopic_id" json:"subtopic_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
