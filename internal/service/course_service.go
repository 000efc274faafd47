package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyTopic   = errors.New("topic must not be empty")
	ErrUnauthorized = errors.New("unauthorized access")
)

// CourseService orchestrates generation and persistence of courses. An empty
// userID means the caller is unauthenticated and the course stays temporary.
type CourseService interface {
	Generate(ctx context.Context, userID, topic string) (*model.Course, error)
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context, userID string) ([]model.Course, error)
	DeleteTemporary(courseID string)
}

type courseService struct {
	generation CourseGenerationService
	courseRepo repository.CourseRepository
	tempStore  *repository.TempCourseStore
	publisher  pubsub.Publisher
	eventTopic string
	logger     zerolog.Logger
}

// NewCourseService creates a CourseService. publisher may be nil; events are
// best-effort and never affect the request path.
func NewCourseService(
	generation CourseGenerationService,
	courseRepo repository.CourseRepository,
	tempStore *repository.TempCourseStore,
	publisher pubsub.Publisher,
	eventTopic string,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		generation: generation,
		courseRepo: courseRepo,
		tempStore:  tempStore,
		publisher:  publisher,
		eventTopic: eventTopic,
		logger:     logger.With().Str("service", "CourseService").Logger(),
	}
}

// Generate runs course generation for a topic. Authenticated users get a
// persisted course; anonymous users get a temporary one that is never stored.
func (s *courseService) Generate(ctx context.Context, userID, topic string) (*model.Course, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	gen, err := s.generation.GenerateCourse(ctx, topic)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		course := s.tempStore.Put(gen)
		s.logger.Info().Str("course_id", course.CourseID).Str("topic", topic).Msg("Generated temporary course")
		return course, nil
	}

	course := &model.Course{
		UserID:      userID,
		Title:       gen.Title,
		Description: gen.Description,
	}
	for _, draft := range gen.Subtopics {
		course.Subtopics = append(course.Subtopics, model.Subtopic{
			Title:       draft.Title,
			Description: draft.Description,
			Content:     draft.Content,
		})
	}
	if err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to persist generated course")
		return nil, fmt.Errorf("saving course: %w", err)
	}

	s.publishEvent(ctx, "course.created", map[string]string{
		"course_id": course.CourseID,
		"user_id":   userID,
	})
	return course, nil
}

// GetCourse fetches a course by ID, serving temp-prefixed IDs from memory.
// Returns (nil, nil) when no course exists for the ID.
func (s *courseService) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	if model.IsTempCourseID(courseID) {
		return s.tempStore.Get(courseID), nil
	}
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to fetch course")
		return nil, fmt.Errorf("getting course: %w", err)
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, userID string) ([]model.Course, error) {
	courses, err := s.courseRepo.ListCoursesByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list courses")
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// DeleteTemporary drops a temporary course when its session ends.
func (s *courseService) DeleteTemporary(courseID string) {
	if model.IsTempCourseID(courseID) {
		s.tempStore.Delete(courseID)
	}
}

func (s *courseService) publishEvent(ctx context.Context, eventType string, fields map[string]string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}{Type: eventType, Data: fields})
	if err != nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, s.eventTopic, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}
