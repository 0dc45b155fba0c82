package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "medibook/internal/bookings/errors"
	"medibook/internal/bookings/validator"
	"medibook/pkg/config"
	mongotx "medibook/pkg/db/mongo"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/logger"
	"medibook/pkg/model"
)

type mockBookingRepository struct {
	insertFn            func(ctx context.Context, b *model.Booking) error
	findByBookingIDFn   func(ctx context.Context, bookingID string) (*model.Booking, error)
	existsByBookingIDFn func(ctx context.Context, bookingID string) (bool, error)
	findAllFn           func(ctx context.Context, limit int, offset int) ([]*model.Booking, error)
	countFn             func(ctx context.Context) (int64, error)
	findByReferenceFn   func(ctx context.Context, referenceID string, date string, limit int, offset int) ([]*model.Booking, error)
	countByReferenceFn  func(ctx context.Context, referenceID string, date string) (int64, error)
	updateStatusFn      func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error)
	findStalePendingFn  func(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error)
}

func (m *mockBookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	return m.insertFn(ctx, b)
}

func (m *mockBookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Booking, error) {
	return m.findByBookingIDFn(ctx, bookingID)
}

func (m *mockBookingRepository) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	if m.existsByBookingIDFn != nil {
		return m.existsByBookingIDFn(ctx, bookingID)
	}
	return false, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int) ([]*model.Booking, error) {
	return m.findAllFn(ctx, limit, offset)
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

func (m *mockBookingRepository) FindByReference(ctx context.Context, referenceID string, date string, limit int, offset int) ([]*model.Booking, error) {
	return m.findByReferenceFn(ctx, referenceID, date, limit, offset)
}

func (m *mockBookingRepository) CountByReference(ctx context.Context, referenceID string, date string) (int64, error) {
	return m.countByReferenceFn(ctx, referenceID, date)
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
	return m.updateStatusFn(ctx, bookingID, expected, next, actor, reason)
}

func (m *mockBookingRepository) FindStalePending(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	return m.findStalePendingFn(ctx, before, limit)
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	ch     chan model.BookingEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ch: make(chan model.BookingEvent, 16)}
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.ch <- event
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) wait(t *testing.T) model.BookingEvent {
	t.Helper()
	select {
	case e := <-p.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return model.BookingEvent{}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                 logger.New(logger.Config{Level: "error", Service: "test"}),
		EventPublishTimeout: time.Second,
		PendingExpiryAge:    72 * time.Hour,
	}
}

func newTestService(repo *mockBookingRepository, pub *recordingPublisher) BookingService {
	cfg := testConfig()
	v := validator.NewBookingValidator(cfg.Log)
	return NewBookingService(repo, v, pub, cfg)
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		Kind:          model.KindAppointment,
		PatientName:   "Asha Rao",
		PatientMobile: "9876543210",
		ReferenceID:   "507f1f77bcf86cd799439011",
		ScheduledDate: "2026-06-01",
		ScheduledTime: "09:30",
		CreatedBy:     "patient",
	}
}

func storedBooking(kind model.BookingKind, status model.BookingStatus) *model.Booking {
	bookingID := "APT-1A2B3C4D5E"
	if kind == model.KindTest {
		bookingID = "LAB-1A2B3C4D5E"
	}
	return &model.Booking{
		BookingID:     bookingID,
		Kind:          kind,
		PatientName:   "Asha Rao",
		PatientMobile: "9876543210",
		ReferenceID:   "507f1f77bcf86cd799439011",
		ScheduledDate: "2026-06-01",
		ScheduledTime: "09:30",
		Status:        status,
		CreatedBy:     "patient",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestCreate_StartsPending(t *testing.T) {
	var inserted *model.Booking
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error {
			b.CreatedAt = time.Now().UTC()
			inserted = b
			return nil
		},
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	booking, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("expected new booking to be pending, got %s", booking.Status)
	}
	if inserted == nil {
		t.Fatal("expected booking to reach the repository")
	}
	if booking.BookingID == "" {
		t.Fatal("expected a booking ID to be assigned")
	}
	if booking.BookingID[:4] != "APT-" {
		t.Errorf("expected APT- prefix for appointment, got %s", booking.BookingID)
	}

	event := pub.wait(t)
	if event.PreviousStatus != "" || event.NewStatus != model.StatusPending {
		t.Errorf("unexpected creation event: %+v", event)
	}
}

func TestCreate_TestKindGetsLabPrefix(t *testing.T) {
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error { return nil },
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	req := validRequest()
	req.Kind = model.KindTest

	booking, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if booking.BookingID[:4] != "LAB-" {
		t.Errorf("expected LAB- prefix for test order, got %s", booking.BookingID)
	}
	pub.wait(t)
}

func TestCreate_SanitizesInput(t *testing.T) {
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error { return nil },
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	req := validRequest()
	req.PatientName = "  Asha   Rao  "
	req.PatientMobile = "98765 432-10"

	booking, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if booking.PatientName != "Asha Rao" {
		t.Errorf("expected normalized name, got %q", booking.PatientName)
	}
	if booking.PatientMobile != "9876543210" {
		t.Errorf("expected normalized mobile, got %q", booking.PatientMobile)
	}
	pub.wait(t)
}

func TestCreate_RejectsInvalidPatientInfo(t *testing.T) {
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error {
			t.Fatal("invalid request must not reach the repository")
			return nil
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	req := validRequest()
	req.PatientMobile = "12345"

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidPatientInfo {
		t.Fatalf("expected INVALID_PATIENT_INFO, got %v", err)
	}
	if appErr.StatusCode() != 422 {
		t.Errorf("expected 422, got %d", appErr.StatusCode())
	}
}

func TestCreate_RetriesOnDuplicateID(t *testing.T) {
	calls := 0
	repo := &mockBookingRepository{
		existsByBookingIDFn: func(ctx context.Context, bookingID string) (bool, error) {
			calls++
			return calls == 1, nil
		},
		insertFn: func(ctx context.Context, b *model.Booking) error { return nil },
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	booking, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a second ID attempt after collision, got %d checks", calls)
	}
	if booking.BookingID == "" {
		t.Error("expected a booking ID despite the first collision")
	}
	pub.wait(t)
}

func TestCreate_StorageFailure(t *testing.T) {
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error {
			return errors.New("connection reset")
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	_, err := svc.Create(context.Background(), validRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeStorageFailure {
		t.Fatalf("expected STORAGE_FAILURE, got %v", err)
	}
}

func TestCreate_ConcurrentIDsAreDistinct(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)

	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, b *model.Booking) error {
			mu.Lock()
			defer mu.Unlock()
			if seen[b.BookingID] {
				return fmt.Errorf("duplicate booking ID %s", b.BookingID)
			}
			seen[b.BookingID] = true
			return nil
		},
	}
	pub := newRecordingPublisher()
	pub.ch = make(chan model.BookingEvent, 64)
	svc := newTestService(repo, pub)

	const n = 50
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), validRequest()); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("concurrent create failed: %v", err)
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct booking IDs, got %d", n, len(seen))
	}
}

func TestTransition_ConfirmPending(t *testing.T) {
	current := storedBooking(model.KindAppointment, model.StatusPending)
	repo := &mockBookingRepository{
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return current, nil
		},
		updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
			if expected != model.StatusPending {
				t.Errorf("expected CAS against pending, got %s", expected)
			}
			updated := *current
			updated.Status = next
			updated.UpdatedBy = actor
			updated.UpdatedAt = time.Now().UTC()
			return &updated, nil
		},
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	updated, err := svc.Transition(context.Background(), current.BookingID, model.StatusConfirmed, "receptionist", "")
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if updated.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}

	event := pub.wait(t)
	if event.PreviousStatus != model.StatusPending || event.NewStatus != model.StatusConfirmed {
		t.Errorf("unexpected transition event: %+v", event)
	}
}

func TestTransition_IllegalMoves(t *testing.T) {
	tests := []struct {
		name   string
		kind   model.BookingKind
		status model.BookingStatus
		target model.BookingStatus
		actor  string
		reason string
	}{
		{"cancelled is terminal", model.KindAppointment, model.StatusCancelled, model.StatusConfirmed, "admin", ""},
		{"completed is terminal", model.KindAppointment, model.StatusCompleted, model.StatusCancelled, "admin", "late cancel"},
		{"pending cannot complete", model.KindAppointment, model.StatusPending, model.StatusCompleted, "admin", ""},
		{"appointment has no sample stage", model.KindAppointment, model.StatusConfirmed, model.StatusSampleCollected, "admin", ""},
		{"test cannot skip sample stage", model.KindTest, model.StatusConfirmed, model.StatusCompleted, "admin", ""},
		{"sample_collected cannot be cancelled", model.KindTest, model.StatusSampleCollected, model.StatusCancelled, "admin", "changed mind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
					return storedBooking(tt.kind, tt.status), nil
				},
				updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
					t.Fatal("illegal transition must not reach the repository")
					return nil, nil
				},
			}
			svc := newTestService(repo, newRecordingPublisher())

			_, err := svc.Transition(context.Background(), "APT-1A2B3C4D5E", tt.target, tt.actor, tt.reason)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
				t.Fatalf("expected INVALID_TRANSITION, got %v", err)
			}
			if appErr.StatusCode() != 409 {
				t.Errorf("expected 409, got %d", appErr.StatusCode())
			}
		})
	}
}

func TestTransition_TestOrderFullLifecycle(t *testing.T) {
	current := storedBooking(model.KindTest, model.StatusConfirmed)
	repo := &mockBookingRepository{
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			copied := *current
			return &copied, nil
		},
		updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
			if current.Status != expected {
				return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusConflict, bookingID)
			}
			current.Status = next
			copied := *current
			return &copied, nil
		},
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	for _, target := range []model.BookingStatus{model.StatusSampleCollected, model.StatusCompleted} {
		if _, err := svc.Transition(context.Background(), current.BookingID, target, "receptionist", ""); err != nil {
			t.Fatalf("Transition(%s) error = %v", target, err)
		}
		pub.wait(t)
	}

	if current.Status != model.StatusCompleted {
		t.Errorf("expected completed after full lifecycle, got %s", current.Status)
	}
}

func TestTransition_LostRaceIsConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return storedBooking(model.KindAppointment, model.StatusPending), nil
		},
		updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusConflict, bookingID)
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	_, err := svc.Transition(context.Background(), "APT-1A2B3C4D5E", model.StatusConfirmed, "receptionist", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION on lost race, got %v", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	repo := &mockBookingRepository{
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, bookingID)
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	_, err := svc.Transition(context.Background(), "APT-MISSING", model.StatusConfirmed, "admin", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTransition_CancelRequiresReason(t *testing.T) {
	repo := &mockBookingRepository{
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			t.Fatal("invalid request must not reach the repository")
			return nil, nil
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	_, err := svc.Transition(context.Background(), "APT-1A2B3C4D5E", model.StatusCancelled, "admin", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestExpirePending(t *testing.T) {
	stale := []*model.Booking{
		storedBooking(model.KindAppointment, model.StatusPending),
		storedBooking(model.KindTest, model.StatusPending),
	}
	stale[1].BookingID = "LAB-9Z8Y7X6W5V"

	cancelled := map[string]string{}
	repo := &mockBookingRepository{
		findStalePendingFn: func(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
			return stale, nil
		},
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			for _, b := range stale {
				if b.BookingID == bookingID {
					copied := *b
					return &copied, nil
				}
			}
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, bookingID)
		},
		updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
			cancelled[bookingID] = reason
			updated := storedBooking(model.KindAppointment, next)
			updated.BookingID = bookingID
			updated.UpdatedBy = actor
			return updated, nil
		},
	}
	pub := newRecordingPublisher()
	svc := newTestService(repo, pub)

	expired, err := svc.ExpirePending(context.Background(), 72*time.Hour)
	if err != nil {
		t.Fatalf("ExpirePending() error = %v", err)
	}
	if expired != 2 {
		t.Errorf("expected 2 expired bookings, got %d", expired)
	}
	for id, reason := range cancelled {
		if reason != "booking expired" {
			t.Errorf("booking %s expired with reason %q", id, reason)
		}
	}
}

func TestExpirePending_SkipsConcurrentlyConfirmed(t *testing.T) {
	stale := []*model.Booking{storedBooking(model.KindAppointment, model.StatusPending)}

	repo := &mockBookingRepository{
		findStalePendingFn: func(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
			return stale, nil
		},
		findByBookingIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			// Confirmed between the scan and the transition.
			return storedBooking(model.KindAppointment, model.StatusConfirmed), nil
		},
		updateStatusFn: func(ctx context.Context, bookingID string, expected, next model.BookingStatus, actor, reason string) (*model.Booking, error) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusConflict, bookingID)
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	expired, err := svc.ExpirePending(context.Background(), 72*time.Hour)
	if err != nil {
		t.Fatalf("ExpirePending() error = %v", err)
	}
	if expired != 0 {
		t.Errorf("expected 0 expired, got %d", expired)
	}
}

func TestSearchByReference(t *testing.T) {
	repo := &mockBookingRepository{
		findByReferenceFn: func(ctx context.Context, referenceID string, date string, limit int, offset int) ([]*model.Booking, error) {
			return []*model.Booking{storedBooking(model.KindAppointment, model.StatusConfirmed)}, nil
		},
		countByReferenceFn: func(ctx context.Context, referenceID string, date string) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, newRecordingPublisher())

	bookings, total, err := svc.SearchByReference(context.Background(), "507f1f77bcf86cd799439011", "2026-06-01", 20, 0)
	if err != nil {
		t.Fatalf("SearchByReference() error = %v", err)
	}
	if total != 1 || len(bookings) != 1 {
		t.Errorf("expected one result, got %d (total %d)", len(bookings), total)
	}
}

func TestSearchByReference_InvalidInput(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, newRecordingPublisher())

	if _, _, err := svc.SearchByReference(context.Background(), "  ", "", 20, 0); err == nil {
		t.Error("expected error for blank reference_id")
	}
	if _, _, err := svc.SearchByReference(context.Background(), "507f1f77bcf86cd799439011", "01/06/2026", 20, 0); err == nil {
		t.Error("expected error for malformed date")
	}
}
