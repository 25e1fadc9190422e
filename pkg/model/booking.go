package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// DateLayout is the wire format for stay dates. Ranges are half-open:
// a booking for [start, end) occupies the nights start..end-1.
const DateLayout = "2006-01-02"

type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the create-booking payload. Dates travel as ISO date
// strings and are parsed by the validator. When AutoSelect is set, RoomID
// is ignored and the orchestrator picks a room from the ranked list.
type BookingRequest struct {
	RoomID     string `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	AutoSelect bool   `json:"auto_select"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
