package model

import "time"

const (
	HoldActive   = "active"
	HoldReleased = "released"
)

// RoomHold reserves a room for a half-open date range. Exactly one hold
// exists per request id ever received; holds are never deleted, only
// transitioned active -> released.
type RoomHold struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID string    `json:"request_id" bson:"request_id"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// HoldLock is a per-room advisory lock. Its _id uniqueness in Mongo is what
// serializes overlap-check-then-insert across processes; ExpiresAt backs a
// TTL index that reaps locks left behind by crashed holders.
type HoldLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
