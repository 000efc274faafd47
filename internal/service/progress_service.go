package service

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ErrTemporaryCourse is returned for progress operations on temporary
// courses, which are never persisted.
var ErrTemporaryCourse = errors.New("temporary courses do not track progress")

// ProgressService records and lists subtopic completion.
type ProgressService interface {
	// MarkComplete records that the user finished a subtopic. Idempotent.
	MarkComplete(ctx context.Context, userID, courseID, subtopicID string) error
	// ListProgress returns the user's completion tuples, optionally scoped
	// to one course.
	ListProgress(ctx context.Context, userID, courseID string) ([]model.UserProgress, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	courseRepo   repository.CourseRepository
	logger       zerolog.Logger
}

// NewProgressService creates a ProgressService with a scoped logger.
func NewProgressService(progressRepo repository.ProgressRepository, courseRepo repository.CourseRepository, logger zerolog.Logger) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
		logger:       logger.With().Str("service", "ProgressService").Logger(),
	}
}

func (s *progressService) MarkComplete(ctx context.Context, userID, courseID, subtopicID string) error {
	if model.IsTempCourseID(courseID) {
		return ErrTemporaryCourse
	}

	// Verify course exists and user owns it
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("fetching course: %w", err)
	}
	if course == nil {
		return repository.ErrCourseNotFound
	}
	if course.UserID != userID {
		return ErrUnauthorized
	}
	if course.SubtopicByID(subtopicID) == nil {
		return fmt.Errorf("subtopic %s does not belong to course %s", subtopicID, courseID)
	}

	if err := s.progressRepo.MarkComplete(ctx, userID, courseID, subtopicID); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("subtopic_id", subtopicID).Msg("Failed to mark subtopic complete")
		return err
	}
	return nil
}

func (s *progressService) ListProgress(ctx context.Context, userID, courseID string) ([]model.UserProgress, error) {
	progress, err := s.progressRepo.ListProgress(ctx, userID, courseID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list progress")
		return nil, err
	}
	return progress, nil
}
