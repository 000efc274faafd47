package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultFreeCourseLimit is how many courses a user gets before the payment
// wall, counted by creation order.
const DefaultFreeCourseLimit = 3

// ClassifyFreeness reports whether a course at the given zero-based creation
// index falls inside the free tier.
func ClassifyFreeness(creationIndex, freeLimit int) bool {
	return creationIndex < freeLimit
}

// ResolveAccess answers "may this user access this specific course" from
// already-fetched state: the course's authoritative creation index, the
// payment records for the (user, course) pair, and the user's total course
// count. The boundary is per-course and index-based; a later course never
// becomes free because an earlier one was deleted from a local list.
func ResolveAccess(creationIndex int, payments []model.Payment, freeCoursesUsed, freeLimit int) model.AccessDecision {
	canAccess := ClassifyFreeness(creationIndex, freeLimit)
	if !canAccess {
		for _, p := range payments {
			if p.Status == model.PaymentStatusCompleted {
				canAccess = true
				break
			}
		}
	}
	return model.AccessDecision{CanAccess: canAccess, FreeCoursesUsed: freeCoursesUsed}
}

// ClassifyCourseMode reports whether a freshly generated course should be
// persisted or held as a temporary in-memory course. Unauthenticated users
// always get temporary courses, which are never payment-gated.
func ClassifyCourseMode(isAuthenticated bool) string {
	if isAuthenticated {
		return CourseModePersisted
	}
	return CourseModeTemporary
}

const (
	CourseModePersisted = "persisted"
	CourseModeTemporary = "temporary"
)

// CourseViewState is the render path for one course view.
type CourseViewState string

const (
	ViewStateLoading         CourseViewState = "loading"
	ViewStateNotFound        CourseViewState = "not_found"
	ViewStateSignInRequired  CourseViewState = "sign_in_required"
	ViewStateCheckingAccess  CourseViewState = "checking_access"
	ViewStatePaymentRequired CourseViewState = "payment_required"
	ViewStateGranted         CourseViewState = "granted"
)

// CourseViewInput is the resolved state feeding one view decision.
type CourseViewInput struct {
	CourseFound   bool
	Temporary     bool
	Authenticated bool
	// AccessResolved is false while the access lookup is in flight or has
	// failed; the absence of a definitive answer never grants access.
	AccessResolved bool
	CanAccess      bool
}

// ResolveCourseView maps view inputs to a render state. Temporary courses are
// always viewable; persisted courses require a signed-in user and a positive
// access decision.
func ResolveCourseView(in CourseViewInput) CourseViewState {
	if !in.CourseFound {
		return ViewStateNotFound
	}
	if in.Temporary {
		return ViewStateGranted
	}
	if !in.Authenticated {
		return ViewStateSignInRequired
	}
	if !in.AccessResolved {
		return ViewStateCheckingAccess
	}
	if !in.CanAccess {
		return ViewStatePaymentRequired
	}
	return ViewStateGranted
}

// AccessService is the authoritative per-course access oracle. The decision
// is computed once, server-side, from the creation index and payment records;
// it is never re-derived from a possibly stale client-side course list.
type AccessService interface {
	CheckAccess(ctx context.Context, userID, courseID string) (model.AccessDecision, error)
}

type accessService struct {
	courseRepo  repository.CourseRepository
	paymentRepo repository.PaymentRepository
	freeLimit   int
	logger      zerolog.Logger
}

// NewAccessService creates an AccessService with the given free-course limit.
func NewAccessService(courseRepo repository.CourseRepository, paymentRepo repository.PaymentRepository, freeLimit int, logger zerolog.Logger) AccessService {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeCourseLimit
	}
	return &accessService{
		courseRepo:  courseRepo,
		paymentRepo: paymentRepo,
		freeLimit:   freeLimit,
		logger:      logger.With().Str("service", "AccessService").Logger(),
	}
}

// CheckAccess resolves the access decision for one (user, course). Lookup
// failures propagate as errors so callers fail closed.
func (s *accessService) CheckAccess(ctx context.Context, userID, courseID string) (model.AccessDecision, error) {
	index, err := s.courseRepo.GetCreationIndex(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return model.AccessDecision{}, err
		}
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to resolve creation index")
		return model.AccessDecision{}, err
	}

	count, err := s.courseRepo.CountCoursesByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to count courses")
		return model.AccessDecision{}, err
	}

	payments, err := s.paymentRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to list payments")
		return model.AccessDecision{}, err
	}

	return ResolveAccess(index, payments, count, s.freeLimit), nil
}
