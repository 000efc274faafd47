package model

import "time"

// Payment statuses. Transitions to completed/failed happen only through the
// Stripe webhook; the rest of the system only reads them.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment is a per-course payment record for a user.
type Payment struct {
	PaymentID       string    `db:"id" json:"payment_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	Status          string    `db:"status" json:"status"`
	StripeSessionID string    `db:"stripe_session_id" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AccessDecision is the derived answer to "may this user access this course".
type AccessDecision struct {
	CanAccess       bool `json:"can_access"`
	FreeCoursesUsed int  `json:"free_courses_used"`
}
