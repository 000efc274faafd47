package dto

// SuggestedQuestionsResponseDTO carries generated study questions
type SuggestedQuestionsResponseDTO struct {
	Questions []string `json:"questions"`
}

// QuizQuestionDTO is one multiple-choice question
type QuizQuestionDTO struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// QuizResponseDTO carries a generated quiz
type QuizResponseDTO struct {
	Questions []QuizQuestionDTO `json:"questions"`
}

// ChatTurnDTO is one prior turn in a subtopic chat
type ChatTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AskQuestionDTO is the incoming chat request for a subtopic
type AskQuestionDTO struct {
	Question string        `json:"question" validate:"required,min=1"`
	History  []ChatTurnDTO `json:"history" validate:"dive"`
}

// AnswerResponseDTO carries the tutor answer
type AnswerResponseDTO struct {
	Answer string `json:"answer"`
}
