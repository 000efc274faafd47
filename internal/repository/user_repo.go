package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// UpsertUser creates the profile row on first sight of a user and
	// refreshes the email on subsequent calls.
	UpsertUser(ctx context.Context, u *model.User) error
	// GetUserByID returns (nil, nil) when the user has no profile row yet.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) UpsertUser(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO user_profiles (user_id, email)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING user_id, email, stripe_customer_id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, q, u.UserID, u.Email).
		Scan(&u.UserID, &u.Email, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	const q = `SELECT user_id, email, stripe_customer_id, created_at, updated_at FROM user_profiles WHERE user_id = $1`
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.UserID, &u.Email, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const q = `UPDATE user_profiles SET stripe_customer_id = $1, updated_at = NOW() WHERE user_id = $2`
	if _, err := r.pool.Exec(ctx, q, customerID, userID); err != nil {
		return fmt.Errorf("updating stripe customer id: %w", err)
	}
	return nil
}
