package errors

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")

	ErrHoldNotFound = errors.New("hold not found")

	// ErrLockHeld means another request currently holds the per-room lock.
	ErrLockHeld = errors.New("room lock is held")

	ErrInvalidID = errors.New("invalid room ID format")
)
