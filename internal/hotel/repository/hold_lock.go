package repository

import (
	"context"
	"fmt"
	"time"

	hotelerrors "innkeep/internal/hotel/errors"
	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Hold_locks"

	lockIDPrefix = "hold_lock_"
)

type mongoHoldLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// HoldLockRepository is a per-room advisory lock backed by a unique _id.
// Acquire inserts a document keyed by the room id; a duplicate key error
// means someone else holds the lock. A TTL index on expires_at reaps locks
// abandoned by crashed holders.
type HoldLockRepository interface {
	Acquire(ctx context.Context, roomID string) error
	Release(ctx context.Context, roomID string) error
}

func NewMongoHoldLockRepository(cfg *config.Config) HoldLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoHoldLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func lockID(roomID string) string {
	return lockIDPrefix + roomID
}

func (r *mongoHoldLockRepository) Acquire(ctx context.Context, roomID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.HoldLock{
		ID:        lockID(roomID),
		ExpiresAt: now.Add(r.cfg.HoldLockTTL),
		CreatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: room %s", hotelerrors.ErrLockHeld, roomID)
		}
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}

	return nil
}

func (r *mongoHoldLockRepository) Release(ctx context.Context, roomID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID(roomID)}); err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}

	return nil
}
