package service

import (
	"fmt"
	"unicode/utf8"

	"app/internal/model"
)

// Prompt-embedding limits. Subtopic content is cut to a bounded prefix before
// it is placed in a prompt so a long subtopic cannot blow the token budget.
const (
	suggestedQuestionsContentLimit = 1000
	quizContentLimit               = 1500
	answerContextLimit             = 1500

	// answerHistoryWindow bounds how many prior chat turns are forwarded to
	// the provider on an answer request, oldest dropped first.
	answerHistoryWindow = 12
)

// chatMessage is one message in a chat-completion request body.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the provider wire format for a completion call.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// promptBuilder produces task-specific chat-completion request bodies. All
// builders are pure: same input, same output.
type promptBuilder struct {
	model string
}

func newPromptBuilder(modelName string) *promptBuilder {
	return &promptBuilder{model: modelName}
}

func (b *promptBuilder) courseRequest(topic string) chatCompletionRequest {
	prompt := fmt.Sprintf(`Create a comprehensive educational course about "%s".
The response should be in JSON format with the following structure:
{
  "title": "Course title",
  "description": "A brief overview of what the course covers",
  "subtopics": [
    {
      "title": "Subtopic title",
      "description": "A brief description of the subtopic",
      "content": "Detailed content for this subtopic (at least 3-4 paragraphs of informative text)"
    }
  ]
}

Generate 4-5 logical subtopics that would make sense for this subject.
Ensure content is educational, accurate, and comprehensive.`, topic)

	return chatCompletionRequest{
		Model: b.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an educational content creator specializing in creating structured courses on various topics. Respond only with the requested JSON structure.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   3000,
	}
}

func (b *promptBuilder) suggestedQuestionsRequest(subtopicTitle, subtopicContent string) chatCompletionRequest {
	prompt := fmt.Sprintf(`Based on the following subtopic in a course:

Title: %s
Content: %s

Generate 4 insightful questions that a student might ask about this topic.
Return just the questions as a JSON array of strings, without any additional text.`,
		subtopicTitle, truncate(subtopicContent, suggestedQuestionsContentLimit))

	return chatCompletionRequest{
		Model: b.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an educational assistant that generates insightful questions about academic topics. Respond only with a JSON array of questions.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   800,
	}
}

func (b *promptBuilder) quizRequest(subtopicTitle, subtopicContent string) chatCompletionRequest {
	prompt := fmt.Sprintf(`Based on the following subtopic in a course:

Title: %s
Content: %s

Generate exactly 3 multiple-choice questions that test understanding of this topic.
The response should be a JSON array with the following structure:
[
  {
    "question": "The question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0
  }
]

Each question must have exactly 4 options, and correctAnswer must be the zero-based
index of the correct option. Respond only with the JSON array.`,
		subtopicTitle, truncate(subtopicContent, quizContentLimit))

	return chatCompletionRequest{
		Model: b.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an educational assessment creator. Respond only with the requested JSON array of quiz questions.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	}
}

func (b *promptBuilder) answerRequest(subtopicTitle, subtopicContent, question string, history []model.ChatTurn) chatCompletionRequest {
	system := fmt.Sprintf(`You are a helpful tutor answering questions about the course subtopic "%s".
Use the following subtopic content as context for your answers:

%s

Answer clearly and concisely, suitable for a learner studying this material.`,
		subtopicTitle, truncate(subtopicContent, answerContextLimit))

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, turn := range windowHistory(history, answerHistoryWindow) {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: question})

	return chatCompletionRequest{
		Model:       b.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// truncate returns at most limit bytes of s, backing off to a rune boundary
// so the cut never leaves invalid UTF-8 in a prompt.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// windowHistory keeps the most recent max turns.
func windowHistory(history []model.ChatTurn, max int) []model.ChatTurn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
