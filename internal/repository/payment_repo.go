package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository stores per-course payment records. Status transitions are
// written only from the Stripe webhook path.
type PaymentRepository interface {
	// CreatePending records a payment in the pending state for a new
	// Checkout session.
	CreatePending(ctx context.Context, userID, courseID, stripeSessionID string) (*model.Payment, error)
	// UpdateStatusBySession moves the payment for a Checkout session to the
	// given status.
	UpdateStatusBySession(ctx context.Context, stripeSessionID, status string) error
	// ListByUserAndCourse returns all payment records for a (user, course).
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]model.Payment, error)
	// HasCompletedPayment reports whether a completed payment exists for the
	// (user, course).
	HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error)
}

type paymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepo creates a new PaymentRepository
func NewPaymentRepo(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) CreatePending(ctx context.Context, userID, courseID, stripeSessionID string) (*model.Payment, error) {
	const q = `
		INSERT INTO user_payments (user_id, course_id, status, stripe_session_id)
		VALUES ($1, $2, 'pending', $3)
		RETURNING id, user_id, course_id, status, stripe_session_id, created_at, updated_at
	`
	var p model.Payment
	err := r.pool.QueryRow(ctx, q, userID, courseID, stripeSessionID).Scan(
		&p.PaymentID,
		&p.UserID,
		&p.CourseID,
		&p.Status,
		&p.StripeSessionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating pending payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) UpdateStatusBySession(ctx context.Context, stripeSessionID, status string) error {
	const q = `
		UPDATE user_payments
		SET status = $1, updated_at = NOW()
		WHERE stripe_session_id = $2
	`
	tag, err := r.pool.Exec(ctx, q, status, stripeSessionID)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no payment found for session %s", stripeSessionID)
	}
	return nil
}

func (r *paymentRepo) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]model.Payment, error) {
	const q = `
		SELECT id, user_id, course_id, status, stripe_session_id, created_at, updated_at
		FROM user_payments
		WHERE user_id = $1 AND course_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, q, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.PaymentID, &p.UserID, &p.CourseID, &p.Status, &p.StripeSessionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepo) HasCompletedPayment(ctx context.Context, userID, courseID string) (bool, error) {
	const q = `
		SELECT 1
		FROM user_payments
		WHERE user_id = $1 AND course_id = $2 AND status = 'completed'
		LIMIT 1
	`
	var one int
	err := r.pool.QueryRow(ctx, q, userID, courseID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking completed payment: %w", err)
	}
	return true, nil
}
