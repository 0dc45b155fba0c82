package service

import (
	"context"
	"errors"
	"time"

	"medibook/internal/availability"
	catalogerrors "medibook/internal/catalog/errors"
	"medibook/internal/catalog/repository"
	"medibook/internal/catalog/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

type ProviderService interface {
	Create(ctx context.Context, p *model.Provider) error
	GetByID(ctx context.Context, id string) (*model.Provider, error)
	GetAll(ctx context.Context, specialty string, limit int, offset int64) ([]*model.Provider, int64, error)
	Update(ctx context.Context, id string, updates *model.ProviderUpdate) error
	Delete(ctx context.Context, id string) error
	ResolveSlots(ctx context.Context, id string, date string) ([]string, error)
}

type providerService struct {
	repo      repository.ProviderRepository
	validator *validator.CatalogValidator
	cfg       *config.Config
}

func NewProviderService(repo repository.ProviderRepository, v *validator.CatalogValidator, cfg *config.Config) ProviderService {
	return &providerService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *providerService) Create(ctx context.Context, p *model.Provider) error {
	s.sanitize(p)
	if err := s.validator.ValidateProvider(p); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Provider failed validation", validationDetails(validationErrs))
		}
		return apperrors.Internal("Failed to validate provider", err)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Error("Failed to create provider", "error", err)
		return apperrors.Storage("Failed to create provider", err)
	}

	s.cfg.Log.Info("Provider created", "id", p.ID, "specialty", p.Specialty)
	return nil
}

func (s *providerService) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateCatalogError(err, "Provider", id, s.cfg)
	}
	return p, nil
}

func (s *providerService) GetAll(ctx context.Context, specialty string, limit int, offset int64) ([]*model.Provider, int64, error) {
	specialty = sanitizer.TrimAndNormalize(specialty)

	providers, err := s.repo.FindAll(ctx, specialty, limit, int(offset))
	if err != nil {
		s.cfg.Log.Error("Failed to list providers", "error", err)
		return nil, 0, apperrors.Storage("Failed to list providers", err)
	}

	total, err := s.repo.Count(ctx, specialty)
	if err != nil {
		s.cfg.Log.Error("Failed to count providers", "error", err)
		return nil, 0, apperrors.Storage("Failed to count providers", err)
	}

	return providers, total, nil
}

func (s *providerService) Update(ctx context.Context, id string, updates *model.ProviderUpdate) error {
	if err := s.validator.ValidateProviderUpdate(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Provider update failed validation", validationDetails(validationErrs))
		}
		return apperrors.Internal("Failed to validate provider update", err)
	}

	set := bson.M{}
	if updates.Name != "" {
		set["name"] = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Specialty != "" {
		set["specialty"] = sanitizer.TrimAndNormalize(updates.Specialty)
	}
	if updates.Degree != "" {
		set["degree"] = sanitizer.TrimAndNormalize(updates.Degree)
	}
	if updates.Fee != nil {
		set["fee"] = *updates.Fee
	}
	if updates.Windows != nil {
		set["windows"] = *updates.Windows
	}
	if len(set) == 0 {
		return apperrors.InvalidInput("update contains no fields")
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		return translateCatalogError(err, "Provider", id, s.cfg)
	}

	s.cfg.Log.Info("Provider updated", "id", id)
	return nil
}

func (s *providerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateCatalogError(err, "Provider", id, s.cfg)
	}
	s.cfg.Log.Info("Provider deleted", "id", id)
	return nil
}

// ResolveSlots computes the bookable start times for a provider on a date.
// The result is derived purely from the stored windows; nothing is persisted.
func (s *providerService) ResolveSlots(ctx context.Context, id string, date string) ([]string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slots, err := availability.Resolve(p.Windows, day)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidWindow) {
			s.cfg.Log.Error("Provider has a malformed schedule window", "id", id, "error", err)
			return nil, apperrors.InvalidScheduleWindow("Provider schedule contains a malformed window", err)
		}
		return nil, apperrors.Internal("Failed to resolve slots", err)
	}

	return slots, nil
}

func (s *providerService) sanitize(p *model.Provider) {
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Specialty = sanitizer.TrimAndNormalize(p.Specialty)
	p.Degree = sanitizer.TrimAndNormalize(p.Degree)
}

func translateCatalogError(err error, resource string, id string, cfg *config.Config) error {
	switch {
	case errors.Is(err, catalogerrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, catalogerrors.ErrInvalidID):
		return apperrors.InvalidInput("id must be a valid object ID: " + id)
	default:
		cfg.Log.Error("Storage operation failed", "resource", resource, "id", id, "error", err)
		return apperrors.Storage("Storage operation failed", err)
	}
}

func validationDetails(errs validator.ValidationErrors) map[string]any {
	details := make(map[string]any, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}
