package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// PaymentHandler handles checkout session creation and Stripe webhooks
type PaymentHandler struct {
	paymentService *service.PaymentService
	validate       *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// RegisterRoutes mounts payment routes. The webhook stays outside auth:
// Stripe signs its requests instead of carrying a user token.
func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/payments/checkout", authMw(http.HandlerFunc(h.createCheckout)))
	mux.HandleFunc("/payments/webhook", h.paymentService.HandleWebhook)
}

// createCheckout godoc
// @Summary Start a checkout for one course
// @Description Creates a Stripe Checkout session for the given course and records a pending payment. Returns the hosted checkout URL.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.CheckoutCreateDTO true "Course to purchase"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized"
// @Router /payments/checkout [post]
func (h *PaymentHandler) createCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CheckoutCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	url, err := h.paymentService.CreateCheckoutSession(r.Context(), userID, req.CourseID)
	if err != nil {
		http.Error(w, "Failed to create checkout session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: url})
}
