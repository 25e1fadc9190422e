package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	hotelerrors "innkeep/internal/hotel/errors"
	"innkeep/internal/hotel/repository"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// AvailabilityService owns the hold state machine. Holds are keyed by the
// caller's request id and transition active -> released exactly once;
// repeating either operation with the same request id is a no-op.
type AvailabilityService struct {
	cfg   *config.Config
	rooms repository.RoomRepository
	holds repository.RoomHoldRepository
	locks repository.HoldLockRepository
	log   *logger.Logger
}

func NewAvailabilityService(
	cfg *config.Config,
	rooms repository.RoomRepository,
	holds repository.RoomHoldRepository,
	locks repository.HoldLockRepository,
	log *logger.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		cfg:   cfg,
		rooms: rooms,
		holds: holds,
		locks: locks,
		log:   log,
	}
}

// Confirm places a hold on the room for the half-open range [start, end).
// The overlap check and the hold insert run under a per-room lock inside a
// transaction, so two overlapping requests cannot both succeed regardless
// of which process handles them.
func (s *AvailabilityService) Confirm(ctx context.Context, roomID, requestID string, start, end time.Time) (*model.RoomHold, error) {
	if existing, err := s.findHold(ctx, requestID); err != nil {
		return nil, err
	} else if existing != nil {
		return s.replayConfirm(existing, roomID)
	}

	if err := s.acquireLock(ctx, roomID); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, roomID)

	var hold *model.RoomHold
	err := s.rooms.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// Someone may have recorded this request id between the fast
		// check above and lock acquisition.
		existing, err := s.findHold(txCtx, requestID)
		if err != nil {
			return err
		}
		if existing != nil {
			replay, err := s.replayConfirm(existing, roomID)
			hold = replay
			return err
		}

		room, err := s.rooms.FindByID(txCtx, roomID)
		if err != nil {
			if errors.Is(err, hotelerrors.ErrRoomNotFound) || errors.Is(err, hotelerrors.ErrInvalidID) {
				return apperrors.NotFoundWithID("room", roomID)
			}
			return apperrors.Internal("room lookup failed", err)
		}
		if !room.Available {
			return apperrors.Conflict(fmt.Sprintf("room %s is not open for booking", roomID))
		}

		overlaps, err := s.holds.ExistsActiveOverlap(txCtx, roomID, start, end)
		if err != nil {
			return apperrors.Internal("overlap check failed", err)
		}
		if overlaps {
			return apperrors.Conflict("room is not available for the requested dates")
		}

		hold = &model.RoomHold{
			RequestID: requestID,
			RoomID:    roomID,
			StartDate: start,
			EndDate:   end,
			Status:    model.HoldActive,
		}
		if err := s.holds.Create(txCtx, hold); err != nil {
			return apperrors.Internal("failed to record hold", err)
		}

		if err := s.rooms.IncrementTimesBooked(txCtx, roomID); err != nil {
			return apperrors.Internal("failed to update room popularity", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Hold confirmed",
		"request_id", requestID,
		"room_id", roomID,
		"start_date", start.Format(model.DateLayout),
		"end_date", end.Format(model.DateLayout),
	)
	return hold, nil
}

// Release frees the hold recorded for the request id. Releasing an already
// released hold succeeds, and so does releasing a request id that never
// confirmed: release is a no-op whenever there is nothing to free. The
// room's popularity counter is never decremented.
func (s *AvailabilityService) Release(ctx context.Context, roomID, requestID string) (*model.RoomHold, error) {
	hold, err := s.findHold(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if hold == nil {
		return &model.RoomHold{
			RequestID: requestID,
			RoomID:    roomID,
			Status:    model.HoldReleased,
		}, nil
	}
	if hold.RoomID != roomID {
		return nil, apperrors.Conflict(fmt.Sprintf("hold %s belongs to a different room", requestID))
	}

	if hold.Status == model.HoldReleased {
		return hold, nil
	}

	if err := s.holds.UpdateStatus(ctx, requestID, model.HoldReleased); err != nil {
		return nil, apperrors.Internal("failed to release hold", err)
	}
	hold.Status = model.HoldReleased

	s.log.Info("Hold released",
		"request_id", requestID,
		"room_id", roomID,
	)
	return hold, nil
}

// replayConfirm handles a confirm for a request id we have already seen.
func (s *AvailabilityService) replayConfirm(existing *model.RoomHold, roomID string) (*model.RoomHold, error) {
	if existing.RoomID != roomID {
		return nil, apperrors.Conflict(fmt.Sprintf("request %s was already confirmed for a different room", existing.RequestID))
	}
	if existing.Status == model.HoldReleased {
		return nil, apperrors.Conflict(fmt.Sprintf("hold for request %s was already released", existing.RequestID))
	}
	return existing, nil
}

func (s *AvailabilityService) findHold(ctx context.Context, requestID string) (*model.RoomHold, error) {
	hold, err := s.holds.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, hotelerrors.ErrHoldNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("hold lookup failed", err)
	}
	return hold, nil
}

// acquireLock takes the per-room advisory lock, retrying briefly so that a
// non-overlapping request queued behind a short critical section is not
// spuriously rejected.
func (s *AvailabilityService) acquireLock(ctx context.Context, roomID string) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.HoldLockRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.cfg.HoldLockBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return apperrors.Timeout("room lock acquisition cancelled")
			}
		}

		err := s.locks.Acquire(ctx, roomID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, hotelerrors.ErrLockHeld) {
			return apperrors.Internal("room lock acquisition failed", err)
		}
		lastErr = err
	}

	s.log.Warn("Room lock contention, rejecting request",
		"room_id", roomID,
		"error", lastErr,
	)
	return apperrors.Conflict(fmt.Sprintf("room %s is busy, try again", roomID))
}

func (s *AvailabilityService) releaseLock(ctx context.Context, roomID string) {
	if err := s.locks.Release(ctx, roomID); err != nil {
		// The TTL index will reap the orphaned lock.
		s.log.Warn("Failed to release room lock", "room_id", roomID, "error", err)
	}
}
