package dto

// CheckoutCreateDTO is the incoming payment-initiation request
type CheckoutCreateDTO struct {
	CourseID string `json:"course_id" validate:"required"`
}

// CheckoutResponseDTO carries the Stripe Checkout redirect target
type CheckoutResponseDTO struct {
	URL string `json:"url"`
}
