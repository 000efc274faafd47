package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// fakeCourseService serves canned courses keyed by ID.
type fakeCourseService struct {
	courses map[string]*model.Course
	err     error
}

func (f *fakeCourseService) Generate(ctx context.Context, userID, topic string) (*model.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := "course-new"
	if userID == "" {
		id = "temp-new"
	}
	return &model.Course{CourseID: id, UserID: userID, Title: topic}, nil
}

func (f *fakeCourseService) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.courses[courseID], nil
}

func (f *fakeCourseService) ListCourses(ctx context.Context, userID string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseService) DeleteTemporary(courseID string) {
	delete(f.courses, courseID)
}

// fakeAccessService returns a fixed decision or error.
type fakeAccessService struct {
	decision model.AccessDecision
	err      error
}

func (f *fakeAccessService) CheckAccess(ctx context.Context, userID, courseID string) (model.AccessDecision, error) {
	return f.decision, f.err
}

// asUser injects a user ID the way the auth middleware would.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != "" {
				ctx := context.WithValue(r.Context(), middleware.UserContextKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newViewTestServer(t *testing.T, courses map[string]*model.Course, access *fakeAccessService, userID string) *httptest.Server {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	courseSvc := &fakeCourseService{courses: courses}
	genHandler := NewGenerationHandler(nil, validate)
	h := NewCourseHandler(courseSvc, access, genHandler, validate)

	mux := http.NewServeMux()
	mw := asUser(userID)
	h.RegisterRoutes(mux, mw, mw)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeView(t *testing.T, resp *http.Response) dto.CourseViewDTO {
	t.Helper()
	defer resp.Body.Close()
	var view dto.CourseViewDTO
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding view response: %v", err)
	}
	return view
}

func ownedCourse() map[string]*model.Course {
	return map[string]*model.Course{
		"course-1": {
			CourseID: "course-1",
			UserID:   "user-1",
			Title:    "Go",
			Subtopics: []model.Subtopic{
				{SubtopicID: "st-1", Position: 1, Title: "Basics", Content: "secret content"},
			},
		},
	}
}

func TestViewUnknownCourse(t *testing.T) {
	srv := newViewTestServer(t, nil, &fakeAccessService{}, "user-1")

	resp, err := http.Get(srv.URL + "/courses/course-404/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != string(service.ViewStateNotFound) {
		t.Fatalf("expected not_found state, got %s", view.State)
	}
}

func TestViewSignInRequired(t *testing.T) {
	srv := newViewTestServer(t, ownedCourse(), &fakeAccessService{}, "")

	resp, err := http.Get(srv.URL + "/courses/course-1/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != string(service.ViewStateSignInRequired) {
		t.Fatalf("expected sign_in_required, got %s", view.State)
	}
	if view.Course != nil {
		t.Fatal("content must not leak before sign-in")
	}
}

func TestViewPaymentRequired(t *testing.T) {
	access := &fakeAccessService{decision: model.AccessDecision{CanAccess: false, FreeCoursesUsed: 4}}
	srv := newViewTestServer(t, ownedCourse(), access, "user-1")

	resp, err := http.Get(srv.URL + "/courses/course-1/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != string(service.ViewStatePaymentRequired) {
		t.Fatalf("expected payment_required, got %s", view.State)
	}
	if view.Course != nil {
		t.Fatal("content must not leak behind the payment wall")
	}
}

func TestViewGranted(t *testing.T) {
	access := &fakeAccessService{decision: model.AccessDecision{CanAccess: true}}
	srv := newViewTestServer(t, ownedCourse(), access, "user-1")

	resp, err := http.Get(srv.URL + "/courses/course-1/view?payment=success")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != string(service.ViewStateGranted) || !view.CanAccess {
		t.Fatalf("expected granted, got %+v", view)
	}
	if view.Course == nil || len(view.Course.Subtopics) != 1 {
		t.Fatal("granted view should include full course content")
	}
	if view.PaymentResult != "success" {
		t.Fatalf("expected payment result passthrough, got %q", view.PaymentResult)
	}
}

func TestViewFailsClosedOnAccessError(t *testing.T) {
	access := &fakeAccessService{err: errors.New("db down")}
	srv := newViewTestServer(t, ownedCourse(), access, "user-1")

	resp, err := http.Get(srv.URL + "/courses/course-1/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 when the access check fails, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.Course != nil {
		t.Fatal("content must not leak when the access check fails")
	}
}

func TestViewTemporaryCourseAnonymous(t *testing.T) {
	courses := map[string]*model.Course{
		"temp-1": {
			CourseID:  "temp-1",
			Title:     "Go",
			Subtopics: []model.Subtopic{{SubtopicID: "st-1", Title: "Basics", Content: "c"}},
		},
	}
	srv := newViewTestServer(t, courses, &fakeAccessService{}, "")

	resp, err := http.Get(srv.URL + "/courses/temp-1/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a temporary course, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != string(service.ViewStateGranted) || view.Course == nil {
		t.Fatalf("expected granted temporary view, got %+v", view)
	}
}

func TestViewForeignCourseReads404(t *testing.T) {
	// Someone else's course is indistinguishable from a missing one.
	srv := newViewTestServer(t, ownedCourse(), &fakeAccessService{decision: model.AccessDecision{CanAccess: true}}, "user-2")

	resp, err := http.Get(srv.URL + "/courses/course-1/view")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign course, got %d", resp.StatusCode)
	}
}

func TestGetCourseOmitsContent(t *testing.T) {
	srv := newViewTestServer(t, ownedCourse(), &fakeAccessService{}, "user-1")

	resp, err := http.Get(srv.URL + "/courses/course-1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var course dto.CourseResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		t.Fatalf("decoding course: %v", err)
	}
	if len(course.Subtopics) != 0 {
		t.Fatal("metadata endpoint must not include subtopic content")
	}
}

func TestGenerateCourseValidation(t *testing.T) {
	srv := newViewTestServer(t, nil, &fakeAccessService{}, "user-1")

	resp, err := http.Post(srv.URL+"/courses/generate", "application/json", strings.NewReader(`{"topic": ""}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty topic, got %d", resp.StatusCode)
	}
}

func TestGenerateCourseAnonymousGetsTempID(t *testing.T) {
	srv := newViewTestServer(t, nil, &fakeAccessService{}, "")

	resp, err := http.Post(srv.URL+"/courses/generate", "application/json", strings.NewReader(`{"topic": "Go"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var course dto.CourseResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		t.Fatalf("decoding course: %v", err)
	}
	if !course.Temporary || !strings.HasPrefix(course.CourseID, model.TempCourseIDPrefix) {
		t.Fatalf("expected temporary course, got %+v", course)
	}
}
