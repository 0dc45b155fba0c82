package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	catalogerrors "medibook/internal/catalog/errors"
	"medibook/internal/catalog/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/logger"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

type mockProviderRepository struct {
	createFn   func(ctx context.Context, p *model.Provider) error
	findByIDFn func(ctx context.Context, id string) (*model.Provider, error)
	findAllFn  func(ctx context.Context, specialty string, limit int, offset int) ([]*model.Provider, error)
	countFn    func(ctx context.Context, specialty string) (int64, error)
	updateFn   func(ctx context.Context, id string, updates bson.M) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockProviderRepository) Create(ctx context.Context, p *model.Provider) error {
	return m.createFn(ctx, p)
}

func (m *mockProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockProviderRepository) FindAll(ctx context.Context, specialty string, limit int, offset int) ([]*model.Provider, error) {
	return m.findAllFn(ctx, specialty, limit, offset)
}

func (m *mockProviderRepository) Count(ctx context.Context, specialty string) (int64, error) {
	return m.countFn(ctx, specialty)
}

func (m *mockProviderRepository) Update(ctx context.Context, id string, updates bson.M) error {
	return m.updateFn(ctx, id, updates)
}

func (m *mockProviderRepository) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Service: "test"}),
	}
}

func newTestService(repo *mockProviderRepository) ProviderService {
	cfg := testConfig()
	return NewProviderService(repo, validator.NewCatalogValidator(cfg.Log), cfg)
}

func storedProvider() *model.Provider {
	return &model.Provider{
		ID:        "507f1f77bcf86cd799439011",
		Name:      "Dr. Meera Iyer",
		Specialty: "Cardiology",
		Fee:       700,
		Windows: []model.ScheduleWindow{
			{Day: "Monday", StartTime: "09:00", EndTime: "13:00", SlotDurationMinutes: 30},
		},
	}
}

func TestProviderCreate_Sanitizes(t *testing.T) {
	var created *model.Provider
	repo := &mockProviderRepository{
		createFn: func(ctx context.Context, p *model.Provider) error {
			created = p
			return nil
		},
	}
	svc := newTestService(repo)

	p := storedProvider()
	p.ID = ""
	p.Name = "  Dr.  Meera   Iyer "

	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Name != "Dr. Meera Iyer" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
}

func TestProviderCreate_RejectsOverlap(t *testing.T) {
	repo := &mockProviderRepository{
		createFn: func(ctx context.Context, p *model.Provider) error {
			t.Fatal("invalid provider must not reach the repository")
			return nil
		},
	}
	svc := newTestService(repo)

	p := storedProvider()
	p.ID = ""
	p.Windows = append(p.Windows, model.ScheduleWindow{
		Day: "Monday", StartTime: "12:00", EndTime: "15:00", SlotDurationMinutes: 30,
	})

	err := svc.Create(context.Background(), p)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestResolveSlots(t *testing.T) {
	repo := &mockProviderRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Provider, error) {
			return storedProvider(), nil
		},
	}
	svc := newTestService(repo)

	// 2026-06-01 is a Monday.
	slots, err := svc.ResolveSlots(context.Background(), "507f1f77bcf86cd799439011", "2026-06-01")
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("ResolveSlots() = %v, want %v", slots, want)
	}
}

func TestResolveSlots_EmptyDay(t *testing.T) {
	repo := &mockProviderRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Provider, error) {
			return storedProvider(), nil
		},
	}
	svc := newTestService(repo)

	// 2026-06-02 is a Tuesday; the provider only works Mondays.
	slots, err := svc.ResolveSlots(context.Background(), "507f1f77bcf86cd799439011", "2026-06-02")
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on an off day, got %v", slots)
	}
}

func TestResolveSlots_BadDate(t *testing.T) {
	svc := newTestService(&mockProviderRepository{})

	_, err := svc.ResolveSlots(context.Background(), "507f1f77bcf86cd799439011", "01-06-2026")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestResolveSlots_NotFound(t *testing.T) {
	repo := &mockProviderRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Provider, error) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
		},
	}
	svc := newTestService(repo)

	_, err := svc.ResolveSlots(context.Background(), "507f1f77bcf86cd799439011", "2026-06-01")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolveSlots_MalformedStoredWindow(t *testing.T) {
	repo := &mockProviderRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Provider, error) {
			p := storedProvider()
			// Bypassed write-time validation, e.g. a legacy document.
			p.Windows[0].StartTime = "9:00"
			return p, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.ResolveSlots(context.Background(), "507f1f77bcf86cd799439011", "2026-06-01")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidScheduleWindow {
		t.Fatalf("expected INVALID_SCHEDULE_WINDOW, got %v", err)
	}
	if appErr.StatusCode() != 422 {
		t.Errorf("expected 422, got %d", appErr.StatusCode())
	}
}

func TestProviderUpdate_NoFields(t *testing.T) {
	svc := newTestService(&mockProviderRepository{})

	err := svc.Update(context.Background(), "507f1f77bcf86cd799439011", &model.ProviderUpdate{})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestProviderDelete_InvalidID(t *testing.T) {
	repo := &mockProviderRepository{
		deleteFn: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "not-an-oid")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestProviderGetAll_StorageFailure(t *testing.T) {
	repo := &mockProviderRepository{
		findAllFn: func(ctx context.Context, specialty string, limit int, offset int) ([]*model.Provider, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.GetAll(context.Background(), "", 20, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeStorageFailure {
		t.Fatalf("expected STORAGE_FAILURE, got %v", err)
	}
	if appErr.StatusCode() != 503 {
		t.Errorf("expected 503, got %d", appErr.StatusCode())
	}
}
