package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// CourseHandler handles course generation, listing and viewing
type CourseHandler struct {
	courseService     service.CourseService
	accessService     service.AccessService
	generationHandler *GenerationHandler
	validate          *validator.Validate
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(courseService service.CourseService, accessService service.AccessService, generationHandler *GenerationHandler, validate *validator.Validate) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		accessService:     accessService,
		generationHandler: generationHandler,
		validate:          validate,
	}
}

// RegisterRoutes mounts course routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw, optionalAuthMw func(http.Handler) http.Handler) {
	mux.Handle("/courses/generate", optionalAuthMw(http.HandlerFunc(h.generateCourse)))
	mux.Handle("/courses", authMw(http.HandlerFunc(h.listCourses)))
	mux.Handle("/courses/", optionalAuthMw(http.HandlerFunc(h.handleCourse)))
}

// generateCourse godoc
// @Summary Generate a course from a topic
// @Description Runs LLM course generation. Authenticated users get a persisted course; anonymous users get a temporary one.
// @Tags courses
// @Accept json
// @Produce json
// @Param request body dto.GenerateCourseDTO true "Generation request"
// @Success 201 {object} dto.CourseResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 422 {string} string "No API key configured"
// @Failure 502 {string} string "Generation failed"
// @Router /courses/generate [post]
func (h *CourseHandler) generateCourse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req dto.GenerateCourseDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r.Context())
	course, err := h.courseService.Generate(r.Context(), userID, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTopic):
			http.Error(w, "Topic must not be empty", http.StatusBadRequest)
		case errors.Is(err, service.ErrMissingAPIKey):
			http.Error(w, "OpenAI API key is missing. Please add it in settings.", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to generate course: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusCreated, courseToDTO(course, true))
}

// listCourses godoc
// @Summary List the user's courses
// @Description Returns the authenticated user's courses, newest first, without subtopic content.
// @Tags courses
// @Produce json
// @Success 200 {array} dto.CourseResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/courses" {
		http.NotFound(w, r)
		return
	}
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	courses, err := h.courseService.ListCourses(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list courses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.CourseResponseDTO, 0, len(courses))
	for i := range courses {
		resp = append(resp, courseToDTO(&courses[i], false))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CourseHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/courses/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	courseID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getCourse(w, r, courseID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteTemporary(w, r, courseID)
	case len(parts) == 2 && parts[1] == "view" && r.Method == http.MethodGet:
		h.viewCourse(w, r, courseID)
	case len(parts) == 2 && parts[1] == "access" && r.Method == http.MethodGet:
		h.courseAccess(w, r, courseID)
	case len(parts) == 4 && parts[1] == "subtopics" && r.Method == http.MethodPost:
		h.handleSubtopicOp(w, r, courseID, parts[2], parts[3])
	default:
		http.NotFound(w, r)
	}
}

// getCourse returns course metadata (no subtopic content). Content is served
// only through the gated view endpoint.
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := h.courseService.GetCourse(r.Context(), courseID)
	if err != nil {
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if course == nil {
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}
	if !course.IsTemporary() && course.UserID != middleware.UserID(r.Context()) {
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, courseToDTO(course, false))
}

func (h *CourseHandler) deleteTemporary(w http.ResponseWriter, r *http.Request, courseID string) {
	if !model.IsTempCourseID(courseID) {
		http.Error(w, "Only temporary courses can be discarded", http.StatusBadRequest)
		return
	}
	h.courseService.DeleteTemporary(courseID)
	w.WriteHeader(http.StatusNoContent)
}

// viewCourse godoc
// @Summary Resolve the render path for a course view
// @Description Returns the view state (granted, payment_required, sign_in_required, not_found) and, when granted, the full course content. The payment query parameter is echoed once as a one-shot signal.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payment query string false "Checkout result passthrough (success or canceled)"
// @Success 200 {object} dto.CourseViewDTO
// @Failure 401 {object} dto.CourseViewDTO "Sign-in required"
// @Failure 402 {object} dto.CourseViewDTO "Payment required"
// @Failure 404 {object} dto.CourseViewDTO "Course not found"
// @Router /courses/{courseId}/view [get]
func (h *CourseHandler) viewCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	userID := middleware.UserID(r.Context())
	paymentResult := r.URL.Query().Get("payment")

	course, err := h.courseService.GetCourse(r.Context(), courseID)
	if err != nil {
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}

	in := service.CourseViewInput{
		CourseFound:   course != nil,
		Authenticated: userID != "",
	}
	if course != nil {
		in.Temporary = course.IsTemporary()
		// A persisted course is visible only to its owner.
		if !in.Temporary && userID != "" && course.UserID != userID {
			in.CourseFound = false
		}
	}

	if in.CourseFound && !in.Temporary && in.Authenticated {
		decision, err := h.accessService.CheckAccess(r.Context(), userID, courseID)
		// Fail closed: a failed access check never grants.
		in.AccessResolved = true
		in.CanAccess = err == nil && decision.CanAccess
	}

	state := service.ResolveCourseView(in)
	resp := dto.CourseViewDTO{
		State:         string(state),
		CanAccess:     state == service.ViewStateGranted,
		PaymentResult: paymentResult,
	}

	status := http.StatusOK
	switch state {
	case service.ViewStateGranted:
		full := courseToDTO(course, true)
		resp.Course = &full
	case service.ViewStateNotFound:
		status = http.StatusNotFound
	case service.ViewStateSignInRequired:
		status = http.StatusUnauthorized
	case service.ViewStatePaymentRequired:
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, resp)
}

// courseAccess godoc
// @Summary Check course access
// @Description Returns the authoritative access decision for the authenticated user and course.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.AccessDecisionDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /courses/{courseId}/access [get]
func (h *CourseHandler) courseAccess(w http.ResponseWriter, r *http.Request, courseID string) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	if model.IsTempCourseID(courseID) {
		// Temporary courses are never gated.
		writeJSON(w, http.StatusOK, dto.AccessDecisionDTO{CanAccess: true})
		return
	}
	decision, err := h.accessService.CheckAccess(r.Context(), userID, courseID)
	if err != nil {
		// Fail closed on lookup failure.
		writeJSON(w, http.StatusOK, dto.AccessDecisionDTO{CanAccess: false, FreeCoursesUsed: decision.FreeCoursesUsed})
		return
	}
	writeJSON(w, http.StatusOK, dto.AccessDecisionDTO{CanAccess: decision.CanAccess, FreeCoursesUsed: decision.FreeCoursesUsed})
}

// handleSubtopicOp gates subtopic-level generation the same way the view
// endpoint gates content, then delegates to the generation handler.
func (h *CourseHandler) handleSubtopicOp(w http.ResponseWriter, r *http.Request, courseID, subtopicID, op string) {
	userID := middleware.UserID(r.Context())
	course, err := h.courseService.GetCourse(r.Context(), courseID)
	if err != nil {
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if course == nil {
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}
	if !course.IsTemporary() {
		if userID == "" {
			http.Error(w, "Sign in to continue", http.StatusUnauthorized)
			return
		}
		if course.UserID != userID {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		decision, err := h.accessService.CheckAccess(r.Context(), userID, courseID)
		if err != nil || !decision.CanAccess {
			http.Error(w, "Payment required for this course", http.StatusPaymentRequired)
			return
		}
	}

	subtopic := course.SubtopicByID(subtopicID)
	if subtopic == nil {
		http.Error(w, "Subtopic not found", http.StatusNotFound)
		return
	}
	h.generationHandler.HandleSubtopicOp(w, r, subtopic, op)
}

func courseToDTO(c *model.Course, includeContent bool) dto.CourseResponseDTO {
	resp := dto.CourseResponseDTO{
		CourseID:    c.CourseID,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		Temporary:   c.IsTemporary(),
		CreatedAt:   c.CreatedAt,
	}
	if includeContent {
		for _, st := range c.Subtopics {
			resp.Subtopics = append(resp.Subtopics, dto.SubtopicDTO{
				SubtopicID:  st.SubtopicID,
				Position:    st.Position,
				Title:       st.Title,
				Description: st.Description,
				Content:     st.Content,
			})
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
