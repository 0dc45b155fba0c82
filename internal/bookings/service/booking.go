package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "medibook/internal/bookings/errors"
	"medibook/internal/bookings/events"
	"medibook/internal/bookings/repository"
	"medibook/internal/bookings/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	prefixAppointment = "APT"
	prefixTest        = "LAB"

	idSuffixLength = 10
	idMaxAttempts  = 5
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Transition(ctx context.Context, bookingID string, target model.BookingStatus, actor string, reason string) (*model.Booking, error)
	SearchByReference(ctx context.Context, referenceID string, date string, limit int, offset int64) ([]*model.Booking, int64, error)
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.InvalidPatientInfo("Booking request failed validation", validationDetails(validationErrs))
		}
		return nil, apperrors.Internal("Failed to validate booking request", err)
	}

	booking := &model.Booking{
		Kind:          req.Kind,
		PatientName:   req.PatientName,
		PatientMobile: req.PatientMobile,
		PatientEmail:  req.PatientEmail,
		ReferenceID:   req.ReferenceID,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Status:        model.StatusPending,
		CreatedBy:     req.CreatedBy,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		bookingID, err := s.reserveBookingID(sessCtx, req.Kind)
		if err != nil {
			return err
		}
		booking.BookingID = bookingID

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Storage("Failed to store booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Storage("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.BookingID,
		"kind", booking.Kind,
		"reference_id", booking.ReferenceID,
		"scheduled_date", booking.ScheduledDate,
		"created_by", booking.CreatedBy,
	)

	s.emit(model.BookingEvent{
		BookingID:  booking.BookingID,
		Kind:       booking.Kind,
		NewStatus:  booking.Status,
		OccurredAt: booking.CreatedAt,
	})

	return booking, nil
}

func (s *bookingService) GetByBookingID(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		s.cfg.Log.Error("Failed to fetch booking", "booking_id", bookingID, "error", err)
		return nil, apperrors.Storage("Failed to fetch booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	bookings, err := s.repo.FindAll(ctx, limit, int(offset))
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, 0, apperrors.Storage("Failed to list bookings", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "error", err)
		return nil, 0, apperrors.Storage("Failed to count bookings", err)
	}

	return bookings, total, nil
}

// Transition moves a booking to the target status. The legality check runs
// against a fresh read, then the write re-checks the status so a concurrent
// transition surfaces as a conflict instead of silently winning.
func (s *bookingService) Transition(ctx context.Context, bookingID string, target model.BookingStatus, actor string, reason string) (*model.Booking, error) {
	if err := s.validator.ValidateTransition(&model.TransitionRequest{
		Status: target,
		Actor:  actor,
		Reason: reason,
	}); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Transition request failed validation", validationDetails(validationErrs))
		}
		return nil, apperrors.Internal("Failed to validate transition request", err)
	}
	reason = sanitizer.NormalizeReason(reason)

	current, err := s.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(current.Kind, current.Status, target) {
		return nil, apperrors.InvalidTransition(string(current.Status), string(target))
	}

	updated, err := s.repo.UpdateStatus(ctx, bookingID, current.Status, target, actor, reason)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrStatusConflict):
			// Lost the race: someone moved the booking first.
			return nil, apperrors.InvalidTransition(string(current.Status), string(target))
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		default:
			s.cfg.Log.Error("Failed to transition booking", "booking_id", bookingID, "error", err)
			return nil, apperrors.Storage("Failed to transition booking", err)
		}
	}

	s.cfg.Log.Info("Booking transitioned",
		"booking_id", bookingID,
		"from", current.Status,
		"to", updated.Status,
		"actor", actor,
	)

	s.emit(model.BookingEvent{
		BookingID:      updated.BookingID,
		Kind:           updated.Kind,
		PreviousStatus: current.Status,
		NewStatus:      updated.Status,
		OccurredAt:     updated.UpdatedAt,
	})

	return updated, nil
}

func (s *bookingService) SearchByReference(ctx context.Context, referenceID string, date string, limit int, offset int64) ([]*model.Booking, int64, error) {
	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		return nil, 0, apperrors.InvalidInput("reference_id is required")
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, 0, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
		}
	}

	bookings, err := s.repo.FindByReference(ctx, referenceID, date, limit, int(offset))
	if err != nil {
		s.cfg.Log.Error("Failed to search bookings", "reference_id", referenceID, "error", err)
		return nil, 0, apperrors.Storage("Failed to search bookings", err)
	}

	total, err := s.repo.CountByReference(ctx, referenceID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "reference_id", referenceID, "error", err)
		return nil, 0, apperrors.Storage("Failed to count bookings", err)
	}

	return bookings, total, nil
}

// ExpirePending cancels pending bookings that were never confirmed within
// the retention window. Each booking goes through Transition so the state
// machine stays the single authority on legality.
func (s *bookingService) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	stale, err := s.repo.FindStalePending(ctx, cutoff, config.DefaultPaginationLimit)
	if err != nil {
		return 0, apperrors.Storage("Failed to scan stale pending bookings", err)
	}

	expired := 0
	for _, b := range stale {
		_, err := s.Transition(ctx, b.BookingID, model.StatusCancelled, "system", "booking expired")
		if err != nil {
			appErr := apperrors.AsAppError(err)
			if appErr != nil && appErr.Code == apperrors.CodeInvalidTransition {
				// Confirmed or cancelled between the scan and the write.
				continue
			}
			s.cfg.Log.Error("Failed to expire booking", "booking_id", b.BookingID, "error", err)
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *bookingService) sanitizeRequest(req *model.BookingRequest) {
	req.PatientName = sanitizer.NormalizeName(req.PatientName)
	req.PatientMobile = sanitizer.NormalizeMobile(req.PatientMobile)
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)
	req.ReferenceID = strings.TrimSpace(req.ReferenceID)
	req.ScheduledDate = strings.TrimSpace(req.ScheduledDate)
	req.ScheduledTime = strings.TrimSpace(req.ScheduledTime)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
}

// reserveBookingID generates a candidate ID and re-checks uniqueness inside
// the caller's transaction. The suffix carries enough entropy that a retry
// is practically unreachable, but the unique index is still the backstop.
func (s *bookingService) reserveBookingID(ctx context.Context, kind model.BookingKind) (string, error) {
	for attempt := 0; attempt < idMaxAttempts; attempt++ {
		candidate := newBookingID(kind)

		exists, err := s.repo.ExistsByBookingID(ctx, candidate)
		if err != nil {
			return "", apperrors.Storage("Failed to check booking ID uniqueness", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.Internal("Failed to generate a unique booking ID", bookingserrors.ErrDuplicateBookingID)
}

func newBookingID(kind model.BookingKind) string {
	prefix := prefixAppointment
	if kind == model.KindTest {
		prefix = prefixTest
	}

	id := uuid.New()
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:idSuffixLength]
	return fmt.Sprintf("%s-%s", prefix, suffix)
}

// emit publishes the event without blocking the request. Publish failures
// are logged and never roll back the state change.
func (s *bookingService) emit(event model.BookingEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.EventPublishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.cfg.Log.Error("Failed to publish booking event",
				"booking_id", event.BookingID,
				"new_status", event.NewStatus,
				"error", err,
			)
		}
	}()
}

func validationDetails(errs validator.ValidationErrors) map[string]any {
	details := make(map[string]any, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}
