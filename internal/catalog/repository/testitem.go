package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "medibook/internal/catalog/errors"
	"medibook/pkg/config"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TestItemCollectionName = "Tests"
)

type mongoTestItemRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type TestItemRepository interface {
	Create(ctx context.Context, item *model.TestItem) error
	FindByID(ctx context.Context, id string) (*model.TestItem, error)
	FindAll(ctx context.Context, category string, limit int, offset int) ([]*model.TestItem, error)
	Count(ctx context.Context, category string) (int64, error)
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
}

func NewMongoTestItemRepository(cfg *config.Config) TestItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTestItemRepository{
		cfg:        cfg,
		collection: db.Collection(TestItemCollectionName),
	}
}

func (r *mongoTestItemRepository) Create(ctx context.Context, item *model.TestItem) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	item.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create test item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTestItemRepository) FindByID(ctx context.Context, id string) (*model.TestItem, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var item model.TestItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find test item: %w", err)
	}

	return &item, nil
}

func categoryFilter(category string) bson.M {
	if category == "" {
		return bson.M{}
	}
	return bson.M{"category": category}
}

func (r *mongoTestItemRepository) FindAll(ctx context.Context, category string, limit int, offset int) ([]*model.TestItem, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, categoryFilter(category), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list test items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.TestItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode test items: %w", err)
	}
	return items, nil
}

func (r *mongoTestItemRepository) Count(ctx context.Context, category string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, categoryFilter(category))
	if err != nil {
		return 0, fmt.Errorf("failed to count test items: %w", err)
	}
	return count, nil
}

func (r *mongoTestItemRepository) Update(ctx context.Context, id string, updates bson.M) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update test item: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoTestItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete test item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}
