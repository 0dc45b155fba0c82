package service

import (
	"context"
	"errors"

	"medibook/internal/catalog/repository"
	"medibook/internal/catalog/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

type TestItemService interface {
	Create(ctx context.Context, item *model.TestItem) error
	GetByID(ctx context.Context, id string) (*model.TestItem, error)
	GetAll(ctx context.Context, category string, limit int, offset int64) ([]*model.TestItem, int64, error)
	Update(ctx context.Context, id string, updates *model.TestItemUpdate) error
	Delete(ctx context.Context, id string) error
}

type testItemService struct {
	repo      repository.TestItemRepository
	validator *validator.CatalogValidator
	cfg       *config.Config
}

func NewTestItemService(repo repository.TestItemRepository, v *validator.CatalogValidator, cfg *config.Config) TestItemService {
	return &testItemService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *testItemService) Create(ctx context.Context, item *model.TestItem) error {
	item.Name = sanitizer.NormalizeName(item.Name)
	item.Category = sanitizer.TrimAndNormalize(item.Category)
	item.Description = sanitizer.TrimAndNormalize(item.Description)

	if err := s.validator.ValidateTestItem(item); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Test item failed validation", validationDetails(validationErrs))
		}
		return apperrors.Internal("Failed to validate test item", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create test item", "error", err)
		return apperrors.Storage("Failed to create test item", err)
	}

	s.cfg.Log.Info("Test item created", "id", item.ID, "category", item.Category)
	return nil
}

func (s *testItemService) GetByID(ctx context.Context, id string) (*model.TestItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateCatalogError(err, "Test item", id, s.cfg)
	}
	return item, nil
}

func (s *testItemService) GetAll(ctx context.Context, category string, limit int, offset int64) ([]*model.TestItem, int64, error) {
	category = sanitizer.TrimAndNormalize(category)

	items, err := s.repo.FindAll(ctx, category, limit, int(offset))
	if err != nil {
		s.cfg.Log.Error("Failed to list test items", "error", err)
		return nil, 0, apperrors.Storage("Failed to list test items", err)
	}

	total, err := s.repo.Count(ctx, category)
	if err != nil {
		s.cfg.Log.Error("Failed to count test items", "error", err)
		return nil, 0, apperrors.Storage("Failed to count test items", err)
	}

	return items, total, nil
}

func (s *testItemService) Update(ctx context.Context, id string, updates *model.TestItemUpdate) error {
	if err := s.validator.ValidateTestItemUpdate(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Test item update failed validation", validationDetails(validationErrs))
		}
		return apperrors.Internal("Failed to validate test item update", err)
	}

	set := bson.M{}
	if updates.Name != "" {
		set["name"] = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Category != "" {
		set["category"] = sanitizer.TrimAndNormalize(updates.Category)
	}
	if updates.Description != "" {
		set["description"] = sanitizer.TrimAndNormalize(updates.Description)
	}
	if updates.Price != nil {
		set["price"] = *updates.Price
	}
	if len(set) == 0 {
		return apperrors.InvalidInput("update contains no fields")
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		return translateCatalogError(err, "Test item", id, s.cfg)
	}

	s.cfg.Log.Info("Test item updated", "id", id)
	return nil
}

func (s *testItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateCatalogError(err, "Test item", id, s.cfg)
	}
	s.cfg.Log.Info("Test item deleted", "id", id)
	return nil
}
