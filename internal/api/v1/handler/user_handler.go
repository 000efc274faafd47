package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// UserHandler handles user profile and per-user OpenAI key settings
type UserHandler struct {
	userService     service.UserService
	openAIValidator service.OpenAIValidator
	credentialStore service.CredentialStore // nil when no secret backend is configured
	validate        *validator.Validate
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, openAIValidator service.OpenAIValidator, credentialStore service.CredentialStore, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		userService:     userService,
		openAIValidator: openAIValidator,
		credentialStore: credentialStore,
		validate:        validate,
	}
}

// RegisterRoutes mounts user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.getMe)))
	mux.Handle("/settings/openai-key", authMw(http.HandlerFunc(h.handleAPIKey)))
}

// getMe godoc
// @Summary Get the authenticated user's profile
// @Description Returns the profile, creating it on first sight of the user.
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) getMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	email, _ := r.Context().Value(middleware.EmailContextKey).(string)

	user, err := h.userService.EnsureUser(r.Context(), userID, email)
	if err != nil {
		http.Error(w, "Failed to load user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserResponseDTO{
		UserID:    user.UserID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (h *UserHandler) handleAPIKey(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut, http.MethodPost:
		h.setAPIKey(w, r)
	case http.MethodDelete:
		h.deleteAPIKey(w, r)
	default:
		http.NotFound(w, r)
	}
}

// setAPIKey godoc
// @Summary Store the OpenAI API key
// @Description Validates the key against the OpenAI API, then stores it in the secret backend.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.SetAPIKeyDTO true "API key"
// @Success 204 {string} string "Stored"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 422 {string} string "Key rejected by OpenAI"
// @Failure 501 {string} string "No secret backend configured"
// @Router /settings/openai-key [put]
func (h *UserHandler) setAPIKey(w http.ResponseWriter, r *http.Request) {
	if h.credentialStore == nil {
		http.Error(w, "API key storage is not configured on this deployment", http.StatusNotImplemented)
		return
	}
	var req dto.SetAPIKeyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.openAIValidator.ValidateAPIKey(r.Context(), req.APIKey); err != nil {
		http.Error(w, "API key validation failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := h.credentialStore.StoreAPIKey(r.Context(), req.APIKey); err != nil {
		http.Error(w, "Failed to store API key: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteAPIKey godoc
// @Summary Remove the stored OpenAI API key
// @Tags users
// @Success 204 {string} string "Removed"
// @Failure 501 {string} string "No secret backend configured"
// @Router /settings/openai-key [delete]
func (h *UserHandler) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if h.credentialStore == nil {
		http.Error(w, "API key storage is not configured on this deployment", http.StatusNotImplemented)
		return
	}
	if err := h.credentialStore.DeleteAPIKey(r.Context()); err != nil {
		http.Error(w, "Failed to delete API key: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
