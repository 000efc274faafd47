package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	// CreateCourse inserts a course and its subtopics in one transaction.
	// Subtopic positions are assigned 1..N from slice order.
	CreateCourse(ctx context.Context, c *model.Course) error
	// GetCourseByID retrieves a course with its subtopics ordered by
	// position. Returns (nil, nil) when no such course exists.
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	// ListCoursesByUser returns the user's courses ordered by recency.
	ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error)
	// CountCoursesByUser returns how many courses the user has created.
	CountCoursesByUser(ctx context.Context, userID string) (int, error)
	// GetCreationIndex returns the zero-based position of the course among
	// all courses the user has created, ordered by creation time. This is
	// the authoritative input to the free-tier decision.
	GetCreationIndex(ctx context.Context, userID, courseID string) (int, error)
}

// ErrCourseNotFound is returned when a creation index is requested for a
// course the user does not own.
var ErrCourseNotFound = errors.New("course not found")

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction for course insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const courseQ = `
		INSERT INTO courses (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, courseQ, c.UserID, c.Title, c.Description).
		Scan(&c.CourseID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}

	const subtopicQ = `
		INSERT INTO subtopics (course_id, position, title, description, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range c.Subtopics {
		st := &c.Subtopics[i]
		st.CourseID = c.CourseID
		st.Position = i + 1
		if err := tx.QueryRow(ctx, subtopicQ, c.CourseID, st.Position, st.Title, st.Description, st.Content).
			Scan(&st.SubtopicID); err != nil {
			return fmt.Errorf("inserting subtopic %d: %w", st.Position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing course insert: %w", err)
	}
	return nil
}

func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	const courseQ = `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	var c model.Course
	err := r.pool.QueryRow(ctx, courseQ, courseID).Scan(
		&c.CourseID,
		&c.UserID,
		&c.Title,
		&c.Description,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting course: %w", err)
	}

	const subtopicQ = `
		SELECT id, course_id, position, title, description, content
		FROM subtopics
		WHERE course_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, subtopicQ, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying subtopics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st model.Subtopic
		if err := rows.Scan(&st.SubtopicID, &st.CourseID, &st.Position, &st.Title, &st.Description, &st.Content); err != nil {
			return nil, fmt.Errorf("scanning subtopic: %w", err)
		}
		c.Subtopics = append(c.Subtopics, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading subtopics: %w", err)
	}

	return &c, nil
}

func (r *courseRepo) ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error) {
	const q = `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM courses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.CourseID, &c.UserID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepo) CountCoursesByUser(ctx context.Context, userID string) (int, error) {
	var count int
	const q = `SELECT COUNT(*) FROM courses WHERE user_id = $1`
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting courses for user %s: %w", userID, err)
	}
	return count, nil
}

func (r *courseRepo) GetCreationIndex(ctx context.Context, userID, courseID string) (int, error) {
	// Ties on created_at are broken by id so the index is stable.
	const q = `
		SELECT idx FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY created_at ASC, id ASC) - 1 AS idx
			FROM courses
			WHERE user_id = $1
		) ordered
		WHERE id = $2
	`
	var idx int
	err := r.pool.QueryRow(ctx, q, userID, courseID).Scan(&idx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCourseNotFound
		}
		return 0, fmt.Errorf("resolving creation index for course %s: %w", courseID, err)
	}
	return idx, nil
}
