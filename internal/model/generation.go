package model

// GeneratedCourse is the validated result of a course-generation call, before
// it is persisted or parked in the temporary store.
type GeneratedCourse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Subtopics   []SubtopicDraft `json:"subtopics"`
}

// SubtopicDraft is one generated subtopic. Order in the slice is significant
// and becomes the persisted position.
type SubtopicDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// QuizQuestion is a generated multiple-choice question. CorrectAnswer indexes
// into Options and is validated before the question reaches any caller.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// ChatTurn is one prior exchange in a subtopic chat, oldest first.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
