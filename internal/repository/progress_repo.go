package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressRepository stores subtopic completion markers.
type ProgressRepository interface {
	// MarkComplete records completion of a subtopic. Marking the same tuple
	// twice is a no-op, not an error.
	MarkComplete(ctx context.Context, userID, courseID, subtopicID string) error
	// ListProgress returns the user's completion tuples, optionally filtered
	// to one course (courseID == "" means all).
	ListProgress(ctx context.Context, userID, courseID string) ([]model.UserProgress, error)
}

type progressRepo struct {
	pool *pgxpool.Pool
}

// NewProgressRepo creates a new ProgressRepository
func NewProgressRepo(pool *pgxpool.Pool) ProgressRepository {
	return &progressRepo{pool: pool}
}

func (r *progressRepo) MarkComplete(ctx context.Context, userID, courseID, subtopicID string) error {
	const q = `
		INSERT INTO user_progress (user_id, course_id, subtopic_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id, subtopic_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, q, userID, courseID, subtopicID); err != nil {
		return fmt.Errorf("marking subtopic complete: %w", err)
	}
	return nil
}

func (r *progressRepo) ListProgress(ctx context.Context, userID, courseID string) ([]model.UserProgress, error) {
	q := `
		SELECT user_id, course_id, subtopic_id, completed_at
		FROM user_progress
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	if courseID != "" {
		q += ` AND course_id = $2`
		args = append(args, courseID)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	progress := []model.UserProgress{}
	for rows.Next() {
		var p model.UserProgress
		if err := rows.Scan(&p.UserID, &p.CourseID, &p.SubtopicID, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning progress: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading progress: %w", err)
	}
	return progress, nil
}
