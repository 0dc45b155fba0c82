package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "medibook/internal/bookings/errors"
	"medibook/pkg/config"
	mongotx "medibook/pkg/db/mongo"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Insert(ctx context.Context, b *model.Booking) error
	FindByBookingID(ctx context.Context, bookingID string) (*model.Booking, error)
	ExistsByBookingID(ctx context.Context, bookingID string) (bool, error)
	FindAll(ctx context.Context, limit int, offset int) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	FindByReference(ctx context.Context, referenceID string, date string, limit int, offset int) ([]*model.Booking, error)
	CountByReference(ctx context.Context, referenceID string, date string) (int64, error)
	UpdateStatus(ctx context.Context, bookingID string, expected model.BookingStatus, next model.BookingStatus, actor string, reason string) (*model.Booking, error)
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are already inside
// a transaction; a SessionContext must be passed through untouched.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	b.CreatedAt = now
	b.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateBookingID, b.BookingID)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var b model.Booking
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &b, nil
}

func (r *mongoBookingRepository) ExistsByBookingID(ctx context.Context, bookingID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"booking_id": bookingID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking ID: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func referenceFilter(referenceID string, date string) bson.M {
	filter := bson.M{"reference_id": referenceID}
	if date != "" {
		filter["scheduled_date"] = date
	}
	return filter
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, referenceID string, date string, limit int, offset int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "scheduled_date", Value: 1}, {Key: "scheduled_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, referenceFilter(referenceID, date), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByReference(ctx context.Context, referenceID string, date string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, referenceFilter(referenceID, date))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus performs a compare-and-set: the write only matches when the
// booking still holds the expected status, so two racing transitions cannot
// both succeed. Returns the booking as it is after the update.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, bookingID string, expected model.BookingStatus, next model.BookingStatus, actor string, reason string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"booking_id": bookingID,
		"status":     expected,
	}
	set := bson.M{
		"status":     next,
		"updated_by": actor,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if reason != "" {
		set["reason"] = reason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			exists, existsErr := r.ExistsByBookingID(ctx, bookingID)
			if existsErr != nil {
				return nil, existsErr
			}
			if exists {
				return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusConflict, bookingID)
			}
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &b, nil
}

func (r *mongoBookingRepository) FindStalePending(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.StatusPending,
		"created_at": bson.M{"$lt": before},
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
