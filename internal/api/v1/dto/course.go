package dto

import "time"

// GenerateCourseDTO is the incoming course-generation request
type GenerateCourseDTO struct {
	Topic string `json:"topic" validate:"required,min=1"`
}

// SubtopicDTO is one subtopic in API responses
type SubtopicDTO struct {
	SubtopicID  string `json:"subtopic_id"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// CourseResponseDTO is returned in API responses for courses
type CourseResponseDTO struct {
	CourseID    string        `json:"course_id"`
	UserID      string        `json:"user_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Temporary   bool          `json:"temporary"`
	Subtopics   []SubtopicDTO `json:"subtopics,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CourseViewDTO is the per-view render decision for a course. Course is
// populated only when State is "granted".
type CourseViewDTO struct {
	State         string             `json:"state"`
	Course        *CourseResponseDTO `json:"course,omitempty"`
	CanAccess     bool               `json:"can_access"`
	PaymentResult string             `json:"payment_result,omitempty"`
}

// AccessDecisionDTO mirrors the server-side access decision
type AccessDecisionDTO struct {
	CanAccess       bool `json:"can_access"`
	FreeCoursesUsed int  `json:"free_courses_used"`
}
