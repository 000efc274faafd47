package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// PaymentService manages Stripe integration for per-course purchases.
type PaymentService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	courseRepo  repository.CourseRepository
	publisher   pubsub.Publisher
	logger      zerolog.Logger
}

// NewPaymentService initializes the Stripe key and returns the service with a
// scoped logger. publisher may be nil.
func NewPaymentService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	courseRepo repository.CourseRepository,
	publisher pubsub.Publisher,
	logger zerolog.Logger,
) *PaymentService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "PaymentService").Logger()
	return &PaymentService{
		cfg:         cfg,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		courseRepo:  courseRepo,
		publisher:   publisher,
		logger:      lg,
	}
}

// GetOrCreateCustomer ensures a Stripe Customer exists for a user.
func (s *PaymentService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Metadata: map[string]string{"user_id": user.UserID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.UserID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession opens a Stripe Checkout session for one course and
// records a pending payment. A duplicate initiate simply opens a second
// session; completion via webhook settles whichever session finishes.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, courseID string) (string, error) {
	if model.IsTempCourseID(courseID) {
		return "", fmt.Errorf("temporary courses cannot be purchased")
	}
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to fetch course for checkout")
		return "", fmt.Errorf("fetch course: %w", err)
	}
	if course == nil {
		return "", fmt.Errorf("course not found: %s", courseID)
	}
	if course.UserID != userID {
		return "", ErrUnauthorized
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user for checkout session")
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user not found: %s", userID)
	}
	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	returnURL := s.cfg.CheckoutReturnURL + "/courses/" + courseID
	sessParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(s.cfg.StripePriceCourse), Quantity: stripe.Int64(1)}},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(returnURL + "?payment=success"),
		CancelURL:          stripe.String(returnURL + "?payment=canceled"),
		Metadata:           map[string]string{"user_id": userID, "course_id": courseID},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	if _, err := s.paymentRepo.CreatePending(ctx, userID, courseID, sess.ID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to record pending payment")
		return "", fmt.Errorf("record pending payment: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook processes Stripe webhook events. This is the only writer of
// payment status transitions.
func (s *PaymentService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		if err := s.paymentRepo.UpdateStatusBySession(ctx, cs.ID, model.PaymentStatusCompleted); err != nil {
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to complete payment")
			http.Error(w, "failed to update payment", http.StatusInternalServerError)
			return
		}
		s.publishEvent(ctx, "payment.completed", cs.Metadata)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		if err := s.paymentRepo.UpdateStatusBySession(ctx, cs.ID, model.PaymentStatusFailed); err != nil {
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to mark payment failed")
			http.Error(w, "failed to update payment", http.StatusInternalServerError)
			return
		}
	default:
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Ignoring unhandled webhook event")
	}

	w.WriteHeader(http.StatusOK)
}

func (s *PaymentService) publishEvent(ctx context.Context, eventType string, fields map[string]string) {
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
	if _, err := s.publisher.Publish(ctx, s.cfg.EventsTopic, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}
