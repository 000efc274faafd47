package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

type progressKey struct {
	userID, courseID, subtopicID string
}

// fakeProgressRepo records tuples in a set, mirroring the upsert semantics of
// the real table.
type fakeProgressRepo struct {
	entries map[progressKey]bool
	writes  int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{entries: make(map[progressKey]bool)}
}

func (r *fakeProgressRepo) MarkComplete(ctx context.Context, userID, courseID, subtopicID string) error {
	r.writes++
	r.entries[progressKey{userID, courseID, subtopicID}] = true
	return nil
}

func (r *fakeProgressRepo) ListProgress(ctx context.Context, userID, courseID string) ([]model.UserProgress, error) {
	var out []model.UserProgress
	for k := range r.entries {
		if k.userID != userID {
			continue
		}
		if courseID != "" && k.courseID != courseID {
			continue
		}
		out = append(out, model.UserProgress{UserID: k.userID, CourseID: k.courseID, SubtopicID: k.subtopicID})
	}
	return out, nil
}

func newTestProgressService(t *testing.T) (ProgressService, *fakeProgressRepo, *model.Course) {
	t.Helper()
	courseRepo := &fakeCourseRepo{}
	course := &model.Course{
		UserID: "user-1",
		Title:  "Go",
	}
	course.Subtopics = []model.Subtopic{{Title: "Basics", Content: "c"}}
	if err := courseRepo.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("seeding course: %v", err)
	}
	progressRepo := newFakeProgressRepo()
	return NewProgressService(progressRepo, courseRepo, zerolog.Nop()), progressRepo, course
}

func TestMarkCompleteIdempotent(t *testing.T) {
	svc, repo, course := newTestProgressService(t)
	subtopicID := course.Subtopics[0].SubtopicID

	for i := 0; i < 3; i++ {
		if err := svc.MarkComplete(context.Background(), "user-1", course.CourseID, subtopicID); err != nil {
			t.Fatalf("MarkComplete attempt %d returned error: %v", i, err)
		}
	}

	entries, err := svc.ListProgress(context.Background(), "user-1", course.CourseID)
	if err != nil {
		t.Fatalf("ListProgress returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion after repeated marks, got %d", len(entries))
	}
	if repo.writes != 3 {
		t.Fatalf("expected 3 writes through to repo, got %d", repo.writes)
	}
}

func TestMarkCompleteRejectsTemporaryCourse(t *testing.T) {
	svc, _, _ := newTestProgressService(t)
	err := svc.MarkComplete(context.Background(), "user-1", "temp-abc", "st-1")
	if !errors.Is(err, ErrTemporaryCourse) {
		t.Fatalf("expected ErrTemporaryCourse, got %v", err)
	}
}

func TestMarkCompleteUnknownCourse(t *testing.T) {
	svc, _, _ := newTestProgressService(t)
	err := svc.MarkComplete(context.Background(), "user-1", "course-404", "st-1")
	if !errors.Is(err, repository.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestMarkCompleteWrongOwner(t *testing.T) {
	svc, _, course := newTestProgressService(t)
	err := svc.MarkComplete(context.Background(), "user-2", course.CourseID, course.Subtopics[0].SubtopicID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMarkCompleteForeignSubtopic(t *testing.T) {
	svc, repo, course := newTestProgressService(t)
	if err := svc.MarkComplete(context.Background(), "user-1", course.CourseID, "st-other"); err == nil {
		t.Fatal("expected error marking a subtopic outside the course")
	}
	if repo.writes != 0 {
		t.Fatal("no write should happen for a foreign subtopic")
	}
}

func TestListProgressFiltersByCourse(t *testing.T) {
	svc, repo, course := newTestProgressService(t)
	subtopicID := course.Subtopics[0].SubtopicID
	if err := svc.MarkComplete(context.Background(), "user-1", course.CourseID, subtopicID); err != nil {
		t.Fatalf("MarkComplete returned error: %v", err)
	}
	repo.entries[progressKey{"user-1", "other-course", "st-x"}] = true

	scoped, err := svc.ListProgress(context.Background(), "user-1", course.CourseID)
	if err != nil {
		t.Fatalf("ListProgress returned error: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("expected 1 scoped entry, got %d", len(scoped))
	}

	all, err := svc.ListProgress(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("ListProgress returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries unscoped, got %d", len(all))
	}
}
