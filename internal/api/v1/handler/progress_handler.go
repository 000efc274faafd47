package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// ProgressHandler handles subtopic completion tracking
type ProgressHandler struct {
	progressService service.ProgressService
	validate        *validator.Validate
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progressService service.ProgressService, validate *validator.Validate) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		validate:        validate,
	}
}

// RegisterRoutes mounts progress routes
func (h *ProgressHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/progress", authMw(http.HandlerFunc(h.handleProgress)))
}

func (h *ProgressHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut, http.MethodPost:
		h.markComplete(w, r)
	case http.MethodGet:
		h.listProgress(w, r)
	default:
		http.NotFound(w, r)
	}
}

// markComplete godoc
// @Summary Mark a subtopic as completed
// @Description Records completion for the authenticated user. Marking an already-completed subtopic is a no-op.
// @Tags progress
// @Accept json
// @Produce json
// @Param request body dto.MarkCompleteDTO true "Subtopic to mark complete"
// @Success 204 {string} string "Recorded"
// @Failure 400 {string} string "Invalid JSON payload, validation failed, or temporary course"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Course or subtopic not found"
// @Router /progress [put]
func (h *ProgressHandler) markComplete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.MarkCompleteDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := h.progressService.MarkComplete(r.Context(), userID, req.CourseID, req.SubtopicID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemporaryCourse):
			http.Error(w, "Progress is not tracked for temporary courses", http.StatusBadRequest)
		case errors.Is(err, repository.ErrCourseNotFound):
			http.Error(w, "Course or subtopic not found", http.StatusNotFound)
		case errors.Is(err, service.ErrUnauthorized):
			http.Error(w, "Course or subtopic not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to record progress: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listProgress godoc
// @Summary List completed subtopics
// @Description Returns the authenticated user's completed subtopics, optionally filtered by course.
// @Tags progress
// @Produce json
// @Param course_id query string false "Filter by course"
// @Success 200 {array} dto.ProgressEntryDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /progress [get]
func (h *ProgressHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	entries, err := h.progressService.ListProgress(r.Context(), userID, r.URL.Query().Get("course_id"))
	if err != nil {
		http.Error(w, "Failed to list progress: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.ProgressEntryDTO, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.ProgressEntryDTO{
			CourseID:    e.CourseID,
			SubtopicID:  e.SubtopicID,
			CompletedAt: e.CompletedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
