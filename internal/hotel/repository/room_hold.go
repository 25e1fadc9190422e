package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	hotelerrors "innkeep/internal/hotel/errors"
	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	HoldCollectionName = "Room_holds"
)

type mongoRoomHoldRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RoomHoldRepository interface {
	Create(ctx context.Context, hold *model.RoomHold) error
	FindByRequestID(ctx context.Context, requestID string) (*model.RoomHold, error)
	// ExistsActiveOverlap reports whether any active hold on the room
	// overlaps the half-open range [start, end).
	ExistsActiveOverlap(ctx context.Context, roomID string, start, end time.Time) (bool, error)
	UpdateStatus(ctx context.Context, requestID, status string) error
	CountActiveByRoom(ctx context.Context, roomID string) (int64, error)
}

func NewMongoRoomHoldRepository(cfg *config.Config) RoomHoldRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoRoomHoldRepository{
		cfg:        cfg,
		collection: db.Collection(HoldCollectionName),
	}
}

func (r *mongoRoomHoldRepository) Create(ctx context.Context, hold *model.RoomHold) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if hold.ID == "" {
		hold.ID = primitive.NewObjectID().Hex()
	}
	hold.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, hold); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The unique index on request_id caught a concurrent retry.
			return fmt.Errorf("duplicate hold for request %s: %w", hold.RequestID, err)
		}
		return fmt.Errorf("failed to create hold: %w", err)
	}

	return nil
}

func (r *mongoRoomHoldRepository) FindByRequestID(ctx context.Context, requestID string) (*model.RoomHold, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hold model.RoomHold
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&hold)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", hotelerrors.ErrHoldNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find hold: %w", err)
	}
	return &hold, nil
}

func (r *mongoRoomHoldRepository) ExistsActiveOverlap(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"status":     model.HoldActive,
		"start_date": bson.M{"$lt": end},
		"end_date":   bson.M{"$gt": start},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping holds: %w", err)
	}
	return count > 0, nil
}

func (r *mongoRoomHoldRepository) UpdateStatus(ctx context.Context, requestID, status string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"request_id": requestID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update hold status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", hotelerrors.ErrHoldNotFound, requestID)
	}
	return nil
}

func (r *mongoRoomHoldRepository) CountActiveByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"room_id": roomID,
		"status":  model.HoldActive,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active holds: %w", err)
	}
	return count, nil
}
