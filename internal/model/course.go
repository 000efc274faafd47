package model

import (
	"strings"
	"time"
)

// TempCourseIDPrefix marks course IDs that live only in memory and are never
// written to storage.
const TempCourseIDPrefix = "temp-"

// Course is a persisted course owned by the user who generated it.
type Course struct {
	CourseID    string     `db:"id" json:"course_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Subtopics   []Subtopic `json:"subtopics"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Subtopic is one ordered unit of course content. Position is 1-based and
// defines the navigation order.
type Subtopic struct {
	SubtopicID  string `db:"id" json:"subtopic_id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Position    int    `db:"position" json:"position"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Content     string `db:"content" json:"content"`
}

// IsTemporary reports whether the course ID denotes an in-memory course.
func (c *Course) IsTemporary() bool {
	return IsTempCourseID(c.CourseID)
}

// IsTempCourseID reports whether an ID denotes an in-memory course.
func IsTempCourseID(id string) bool {
	return strings.HasPrefix(id, TempCourseIDPrefix)
}

// SubtopicByID returns the subtopic with the given ID, or nil.
func (c *Course) SubtopicByID(subtopicID string) *Subtopic {
	for i := range c.Subtopics {
		if c.Subtopics[i].SubtopicID == subtopicID {
			return &c.Subtopics[i]
		}
	}
	return nil
}
