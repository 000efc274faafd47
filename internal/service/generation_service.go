package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/model"

	"github.com/rs/zerolog"
)

const (
	chatCompletionEndpoint = "/chat/completions"
	generationTimeout      = 120 * time.Second
)

// ErrMissingAPIKey is returned when no OpenAI API key is configured. It is
// recoverable by user action and handlers surface it as such.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

// ProviderError carries a structured error payload returned by the provider.
// A present error payload is a failure regardless of HTTP status code.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s", e.Message)
}

// fallbackQuestions is served whenever suggested-question generation cannot
// complete. Suggested questions are a soft enhancement; they never error.
var fallbackQuestions = []string{
	"What are the key principles of this topic?",
	"How can I apply this knowledge practically?",
	"What are common misconceptions about this subject?",
	"How has this field evolved over time?",
}

// chatCompletionResponse is the provider wire format for a completion result.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CourseGenerationService runs the four LLM-backed tasks. Course, quiz and
// answer generation fail loudly; only suggested questions degrade silently.
type CourseGenerationService interface {
	GenerateCourse(ctx context.Context, topic string) (*model.GeneratedCourse, error)
	GenerateSuggestedQuestions(ctx context.Context, subtopicTitle, subtopicContent string) []string
	GenerateQuiz(ctx context.Context, subtopicTitle, subtopicContent string) ([]model.QuizQuestion, error)
	AnswerQuestion(ctx context.Context, subtopicTitle, subtopicContent, question string, history []model.ChatTurn) (string, error)
}

type courseGenerationService struct {
	credentials CredentialProvider
	prompts     *promptBuilder
	client      *http.Client
	baseURL     string
	logger      zerolog.Logger
}

// NewCourseGenerationService creates a CourseGenerationService calling the
// chat-completion endpoint at baseURL with the given model.
func NewCourseGenerationService(credentials CredentialProvider, baseURL, modelName string, logger zerolog.Logger) CourseGenerationService {
	return &courseGenerationService{
		credentials: credentials,
		prompts:     newPromptBuilder(modelName),
		client:      &http.Client{Timeout: generationTimeout},
		baseURL:     baseURL,
		logger:      logger.With().Str("service", "CourseGenerationService").Logger(),
	}
}

// complete sends one chat-completion request and returns the raw message
// content. The credential is read fresh per call. No retries.
func (s *courseGenerationService) complete(ctx context.Context, req chatCompletionRequest) (string, error) {
	apiKey, err := s.credentials.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("reading credential: %w", err)
	}
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	bodyJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+chatCompletionEndpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("chat completion failed: HTTP %d", resp.StatusCode)
		}
		return "", fmt.Errorf("invalid response format from provider: %w", err)
	}
	if completion.Error != nil {
		return "", &ProviderError{Message: completion.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion failed: HTTP %d", resp.StatusCode)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("provider returned no completion content")
	}
	return completion.Choices[0].Message.Content, nil
}

// GenerateCourse produces a full course for a topic. There is no fallback
// content for failures here; an invented course has no safe default.
func (s *courseGenerationService) GenerateCourse(ctx context.Context, topic string) (*model.GeneratedCourse, error) {
	content, err := s.complete(ctx, s.prompts.courseRequest(topic))
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Course generation failed")
		return nil, fmt.Errorf("generating course: %w", err)
	}

	course, err := decodeCourse(content)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to extract course from model output")
		return nil, fmt.Errorf("generating course: %w", err)
	}
	return course, nil
}

// GenerateSuggestedQuestions returns up to four question strings for a
// subtopic. Any failure, including a missing credential, yields the fixed
// fallback set instead of an error.
func (s *courseGenerationService) GenerateSuggestedQuestions(ctx context.Context, subtopicTitle, subtopicContent string) []string {
	content, err := s.complete(ctx, s.prompts.suggestedQuestionsRequest(subtopicTitle, subtopicContent))
	if err != nil {
		if !errors.Is(err, ErrMissingAPIKey) {
			s.logger.Warn().Err(err).Str("subtopic", subtopicTitle).Msg("Suggested questions call failed, using fallback set")
		}
		return fallbackQuestions
	}

	questions, err := decodeQuestions(content)
	if err != nil {
		s.logger.Warn().Err(err).Str("subtopic", subtopicTitle).Msg("Suggested questions extraction failed, using fallback set")
		return fallbackQuestions
	}
	if len(questions) > 4 {
		questions = questions[:4]
	}
	return questions
}

// GenerateQuiz produces multiple-choice questions for a subtopic. A fabricated
// quiz with wrong answers is worse than no quiz, so failures propagate.
func (s *courseGenerationService) GenerateQuiz(ctx context.Context, subtopicTitle, subtopicContent string) ([]model.QuizQuestion, error) {
	content, err := s.complete(ctx, s.prompts.quizRequest(subtopicTitle, subtopicContent))
	if err != nil {
		s.logger.Error().Err(err).Str("subtopic", subtopicTitle).Msg("Quiz generation failed")
		return nil, fmt.Errorf("generating quiz: %w", err)
	}

	questions, err := decodeQuiz(content)
	if err != nil {
		s.logger.Error().Err(err).Str("subtopic", subtopicTitle).Msg("Failed to extract quiz from model output")
		return nil, fmt.Errorf("generating quiz: %w", err)
	}
	return questions, nil
}

// AnswerQuestion answers a free-form question about a subtopic, with the
// prior chat turns as conversational context. No fallback text.
func (s *courseGenerationService) AnswerQuestion(ctx context.Context, subtopicTitle, subtopicContent, question string, history []model.ChatTurn) (string, error) {
	content, err := s.complete(ctx, s.prompts.answerRequest(subtopicTitle, subtopicContent, question, history))
	if err != nil {
		s.logger.Error().Err(err).Str("subtopic", subtopicTitle).Msg("Answer generation failed")
		return "", fmt.Errorf("answering question: %w", err)
	}
	return content, nil
}
