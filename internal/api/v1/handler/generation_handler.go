package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// GenerationHandler handles subtopic-level LLM operations: suggested
// questions, quizzes and answering questions about the content.
type GenerationHandler struct {
	generationService service.CourseGenerationService
	validate          *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(generationService service.CourseGenerationService, validate *validator.Validate) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		validate:          validate,
	}
}

// HandleSubtopicOp dispatches one subtopic operation. Access control has
// already happened upstream; the subtopic is resolved and owned content.
func (h *GenerationHandler) HandleSubtopicOp(w http.ResponseWriter, r *http.Request, subtopic *model.Subtopic, op string) {
	switch op {
	case "questions":
		h.suggestedQuestions(w, r, subtopic)
	case "quiz":
		h.quiz(w, r, subtopic)
	case "chat":
		h.chat(w, r, subtopic)
	default:
		http.NotFound(w, r)
	}
}

// suggestedQuestions godoc
// @Summary Suggest starter questions for a subtopic
// @Description Generates four starter questions. Falls back to a generic list when generation fails, so this endpoint never errors on provider trouble.
// @Tags generation
// @Produce json
// @Param courseId path string true "Course ID"
// @Param subtopicId path string true "Subtopic ID"
// @Success 200 {object} dto.SuggestedQuestionsResponseDTO
// @Router /courses/{courseId}/subtopics/{subtopicId}/questions [post]
func (h *GenerationHandler) suggestedQuestions(w http.ResponseWriter, r *http.Request, subtopic *model.Subtopic) {
	questions := h.generationService.GenerateSuggestedQuestions(r.Context(), subtopic.Title, subtopic.Content)
	writeJSON(w, http.StatusOK, dto.SuggestedQuestionsResponseDTO{Questions: questions})
}

// quiz godoc
// @Summary Generate a quiz for a subtopic
// @Description Generates three multiple-choice questions with four options each.
// @Tags generation
// @Produce json
// @Param courseId path string true "Course ID"
// @Param subtopicId path string true "Subtopic ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 422 {string} string "No API key configured"
// @Failure 502 {string} string "Generation failed"
// @Router /courses/{courseId}/subtopics/{subtopicId}/quiz [post]
func (h *GenerationHandler) quiz(w http.ResponseWriter, r *http.Request, subtopic *model.Subtopic) {
	questions, err := h.generationService.GenerateQuiz(r.Context(), subtopic.Title, subtopic.Content)
	if err != nil {
		if errors.Is(err, service.ErrMissingAPIKey) {
			http.Error(w, "OpenAI API key is missing. Please add it in settings.", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Failed to generate quiz: "+err.Error(), http.StatusBadGateway)
		return
	}
	resp := dto.QuizResponseDTO{Questions: make([]dto.QuizQuestionDTO, 0, len(questions))}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, dto.QuizQuestionDTO{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// chat godoc
// @Summary Answer a question about a subtopic
// @Description Answers the user's question grounded in the subtopic content, with the recent conversation supplied by the client.
// @Tags generation
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param subtopicId path string true "Subtopic ID"
// @Param request body dto.AskQuestionDTO true "Question and prior conversation"
// @Success 200 {object} dto.AnswerResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 422 {string} string "No API key configured"
// @Failure 502 {string} string "Generation failed"
// @Router /courses/{courseId}/subtopics/{subtopicId}/chat [post]
func (h *GenerationHandler) chat(w http.ResponseWriter, r *http.Request, subtopic *model.Subtopic) {
	var req dto.AskQuestionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	history := make([]model.ChatTurn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, model.ChatTurn{Role: t.Role, Content: t.Content})
	}

	answer, err := h.generationService.AnswerQuestion(r.Context(), subtopic.Title, subtopic.Content, req.Question, history)
	if err != nil {
		if errors.Is(err, service.ErrMissingAPIKey) {
			http.Error(w, "OpenAI API key is missing. Please add it in settings.", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Failed to answer question: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, dto.AnswerResponseDTO{Answer: answer})
}
