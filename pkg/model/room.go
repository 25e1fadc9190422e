package model

type Room struct {
	ID     string `json:"id,omitempty" bson:"_id,omitempty"`
	Number string `json:"number" bson:"number" validate:"required,min=1,max=20"`
	// Available administratively disables a room regardless of holds.
	Available bool `json:"available" bson:"available"`
	// TimesBooked is a monotonic popularity counter used only for ranking.
	// Releases never decrement it.
	TimesBooked int64 `json:"times_booked" bson:"times_booked"`
}

type RoomStats struct {
	RoomID      string `json:"room_id"`
	Number      string `json:"number"`
	Available   bool   `json:"available"`
	TimesBooked int64  `json:"times_booked"`
	ActiveHolds int64  `json:"active_holds"`
}
