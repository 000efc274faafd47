package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// fakeGeneration returns a canned course without touching the network.
type fakeGeneration struct {
	course *model.GeneratedCourse
	err    error
}

func (f *fakeGeneration) GenerateCourse(ctx context.Context, topic string) (*model.GeneratedCourse, error) {
	return f.course, f.err
}

func (f *fakeGeneration) GenerateSuggestedQuestions(ctx context.Context, subtopicTitle, subtopicContent string) []string {
	return nil
}

func (f *fakeGeneration) GenerateQuiz(ctx context.Context, subtopicTitle, subtopicContent string) ([]model.QuizQuestion, error) {
	return nil, nil
}

func (f *fakeGeneration) AnswerQuestion(ctx context.Context, subtopicTitle, subtopicContent, question string, history []model.ChatTurn) (string, error) {
	return "", nil
}

// fakeCourseRepo keeps courses in a slice in insertion order.
type fakeCourseRepo struct {
	courses []model.Course
	nextID  int
}

func (r *fakeCourseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	r.nextID++
	c.CourseID = fmt.Sprintf("course-%d", r.nextID)
	c.CreatedAt = time.Now()
	for i := range c.Subtopics {
		c.Subtopics[i].CourseID = c.CourseID
		c.Subtopics[i].SubtopicID = fmt.Sprintf("%s-st-%d", c.CourseID, i+1)
		c.Subtopics[i].Position = i + 1
	}
	r.courses = append(r.courses, *c)
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	for i := range r.courses {
		if r.courses[i].CourseID == courseID {
			c := r.courses[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCourseRepo) ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range r.courses {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) CountCoursesByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, c := range r.courses {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCourseRepo) GetCreationIndex(ctx context.Context, userID, courseID string) (int, error) {
	index := 0
	for _, c := range r.courses {
		if c.UserID != userID {
			continue
		}
		if c.CourseID == courseID {
			return index, nil
		}
		index++
	}
	return 0, repository.ErrCourseNotFound
}

var testGeneratedCourse = &model.GeneratedCourse{
	Title:       "Intro to Go",
	Description: "A short course",
	Subtopics: []model.SubtopicDraft{
		{Title: "Basics", Description: "d", Content: "c1"},
		{Title: "Concurrency", Description: "d", Content: "c2"},
	},
}

func newTestCourseService(gen CourseGenerationService, repo repository.CourseRepository) (CourseService, *repository.TempCourseStore) {
	store := repository.NewTempCourseStore(time.Hour)
	svc := NewCourseService(gen, repo, store, nil, "course_events", zerolog.Nop())
	return svc, store
}

func TestGenerateAuthenticatedPersists(t *testing.T) {
	repo := &fakeCourseRepo{}
	svc, _ := newTestCourseService(&fakeGeneration{course: testGeneratedCourse}, repo)

	course, err := svc.Generate(context.Background(), "user-1", "Go")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if course.IsTemporary() {
		t.Fatal("authenticated generation must not produce a temporary course")
	}
	if len(repo.courses) != 1 {
		t.Fatalf("expected 1 persisted course, got %d", len(repo.courses))
	}
	for i, st := range course.Subtopics {
		if st.Position != i+1 {
			t.Fatalf("subtopic %d has position %d, want %d", i, st.Position, i+1)
		}
	}
}

func TestGenerateAnonymousIsTemporary(t *testing.T) {
	repo := &fakeCourseRepo{}
	svc, store := newTestCourseService(&fakeGeneration{course: testGeneratedCourse}, repo)

	course, err := svc.Generate(context.Background(), "", "Go")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(course.CourseID, model.TempCourseIDPrefix) {
		t.Fatalf("expected temp-prefixed ID, got %q", course.CourseID)
	}
	if len(repo.courses) != 0 {
		t.Fatal("temporary courses must never be persisted")
	}
	if store.Get(course.CourseID) == nil {
		t.Fatal("temporary course missing from store")
	}
}

func TestGenerateEmptyTopic(t *testing.T) {
	svc, _ := newTestCourseService(&fakeGeneration{course: testGeneratedCourse}, &fakeCourseRepo{})
	if _, err := svc.Generate(context.Background(), "user-1", "   "); !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("expected ErrEmptyTopic, got %v", err)
	}
}

func TestGeneratePropagatesGenerationFailure(t *testing.T) {
	genErr := errors.New("provider down")
	repo := &fakeCourseRepo{}
	svc, _ := newTestCourseService(&fakeGeneration{err: genErr}, repo)

	if _, err := svc.Generate(context.Background(), "user-1", "Go"); !errors.Is(err, genErr) {
		t.Fatalf("expected generation error to propagate, got %v", err)
	}
	if len(repo.courses) != 0 {
		t.Fatal("nothing should be persisted when generation fails")
	}
}

func TestGetCourseRoutesTempIDsToStore(t *testing.T) {
	repo := &fakeCourseRepo{}
	svc, _ := newTestCourseService(&fakeGeneration{course: testGeneratedCourse}, repo)

	temp, err := svc.Generate(context.Background(), "", "Go")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	got, err := svc.GetCourse(context.Background(), temp.CourseID)
	if err != nil {
		t.Fatalf("GetCourse returned error: %v", err)
	}
	if got == nil || got.CourseID != temp.CourseID {
		t.Fatal("temporary course not served from the store")
	}

	missing, err := svc.GetCourse(context.Background(), "temp-nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for unknown temp ID, got (%v, %v)", missing, err)
	}
}

func TestDeleteTemporary(t *testing.T) {
	svc, store := newTestCourseService(&fakeGeneration{course: testGeneratedCourse}, &fakeCourseRepo{})

	temp, _ := svc.Generate(context.Background(), "", "Go")
	svc.DeleteTemporary(temp.CourseID)
	if store.Get(temp.CourseID) != nil {
		t.Fatal("temporary course still present after delete")
	}

	// Persisted IDs are ignored.
	svc.DeleteTemporary("course-1")
}
