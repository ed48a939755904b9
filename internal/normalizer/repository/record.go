package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldnorm/pkg/model"
	"fieldnorm/pkg/uuidv7"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type RecordRepository interface {
	Upsert(ctx context.Context, rec *model.NormalizedRecord) error
	FindByID(ctx context.Context, id string) (*model.NormalizedRecord, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.NormalizedRecord, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type mongoRecordRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoRecordRepository(client *mongo.Client, database, collection string, timeout time.Duration) RecordRepository {
	return &mongoRecordRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
		timeout:    timeout,
	}
}

// withTimeout applies the repository timeout unless ctx already expires sooner.
func (r *mongoRecordRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < r.timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Upsert replaces the record stored under rec.ID, inserting it when absent.
// Redelivered pipeline messages therefore land on the same document.
func (r *mongoRecordRepository) Upsert(ctx context.Context, rec *model.NormalizedRecord) error {
	id, err := CanonicalID(rec.ID)
	if err != nil {
		return err
	}
	rec.ID = id

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rec.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *mongoRecordRepository) FindByID(ctx context.Context, id string) (*model.NormalizedRecord, error) {
	id, err := CanonicalID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec model.NormalizedRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return &rec, nil
}

// FindAll pages through records newest first. Version 7 IDs sort by
// creation time, so _id order is creation order.
func (r *mongoRecordRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.NormalizedRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*model.NormalizedRecord, 0, limit)
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	return records, nil
}

func (r *mongoRecordRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *mongoRecordRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.client.Ping(ctx, readpref.Primary())
}

// CanonicalID parses id as a version 7 UUID and returns its lowercase
// hyphenated form, the form records are stored under.
func CanonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || uuidv7.VersionOf(parsed) != uuidv7.Version {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return parsed.String(), nil
}
