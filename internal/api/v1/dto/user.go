package dto

import "time"

// UserResponseDTO is returned for the authenticated user's profile
type UserResponseDTO struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SetAPIKeyDTO is the incoming OpenAI key update request
type SetAPIKeyDTO struct {
	APIKey string `json:"api_key" validate:"required,min=20"`
}
