package repository

import (
	"sync"
	"time"

	"app/internal/model"

	"github.com/google/uuid"
)

// TempCourseStore holds courses generated by unauthenticated users. They live
// only in memory for the session TTL and are never written to the database.
type TempCourseStore struct {
	mu      sync.Mutex
	courses map[string]tempEntry
	ttl     time.Duration
	now     func() time.Time
}

type tempEntry struct {
	course    model.Course
	expiresAt time.Time
}

// NewTempCourseStore creates a store whose entries expire after ttl.
func NewTempCourseStore(ttl time.Duration) *TempCourseStore {
	return &TempCourseStore{
		courses: make(map[string]tempEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores a generated course under a fresh temp-prefixed ID and returns
// the stored copy.
func (s *TempCourseStore) Put(gen *model.GeneratedCourse) *model.Course {
	now := s.now()
	course := model.Course{
		CourseID:    model.TempCourseIDPrefix + uuid.NewString(),
		Title:       gen.Title,
		Description: gen.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, draft := range gen.Subtopics {
		course.Subtopics = append(course.Subtopics, model.Subtopic{
			SubtopicID:  model.TempCourseIDPrefix + uuid.NewString(),
			CourseID:    course.CourseID,
			Position:    i + 1,
			Title:       draft.Title,
			Description: draft.Description,
			Content:     draft.Content,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(now)
	s.courses[course.CourseID] = tempEntry{course: course, expiresAt: now.Add(s.ttl)}
	return &course
}

// Get returns the temporary course with the given ID, or nil if it has
// expired or never existed.
func (s *TempCourseStore) Get(courseID string) *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.courses[courseID]
	if !ok {
		return nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.courses, courseID)
		return nil
	}
	course := entry.course
	return &course
}

// Delete drops a temporary course, e.g. when the session ends.
func (s *TempCourseStore) Delete(courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, courseID)
}

func (s *TempCourseStore) evictExpiredLocked(now time.Time) {
	for id, entry := range s.courses {
		if now.After(entry.expiresAt) {
			delete(s.courses, id)
		}
	}
}
