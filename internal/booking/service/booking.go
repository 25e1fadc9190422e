package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "innkeep/internal/booking/errors"
	"innkeep/internal/booking/events"
	"innkeep/internal/booking/repository"
	"innkeep/internal/booking/validator"
	"innkeep/pkg/client"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/google/uuid"
)

// HotelGateway is the slice of the hotel service the orchestrator needs.
type HotelGateway interface {
	Recommend(ctx context.Context, auth client.Auth) ([]model.Room, error)
	ConfirmAvailability(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error
	Release(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error
}

type BookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	hotel     HotelGateway
	events    events.Publisher
	log       *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	v *validator.BookingValidator,
	hotel HotelGateway,
	publisher events.Publisher,
	log *logger.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		validator: v,
		hotel:     hotel,
		events:    publisher,
		log:       log,
	}
}

// Create runs the booking flow end to end: validate, pick a room, persist a
// pending booking, then ask the hotel service to confirm the hold using the
// booking id as the idempotency key. A confirm rejection cancels the booking
// rather than failing the request; the caller reads the outcome from the
// returned status.
func (s *BookingService) Create(ctx context.Context, userID string, req *model.BookingRequest, auth client.Auth) (*model.Booking, error) {
	start, end, err := s.validator.Validate(req)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	roomID := req.RoomID
	if req.AutoSelect {
		roomID, err = s.selectRoom(ctx, start, end, auth)
		if err != nil {
			return nil, err
		}
	}

	booking := &model.Booking{
		UserID:    userID,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
		Status:    model.BookingPending,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to persist booking", err)
	}
	s.events.BookingCreated(ctx, booking)

	availReq := client.AvailabilityRequest{
		RequestID: booking.ID,
		StartDate: start.Format(model.DateLayout),
		EndDate:   end.Format(model.DateLayout),
	}

	if err := s.hotel.ConfirmAvailability(ctx, roomID, availReq, auth); err != nil {
		s.log.Warn("Availability confirmation failed, cancelling booking",
			"booking_id", booking.ID,
			"room_id", roomID,
			"error", err,
		)
		return s.compensate(ctx, booking, roomID, availReq, auth)
	}

	confirmed, err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingConfirmed)
	if err != nil {
		// The hold is confirmed but the local update failed. Release the
		// hold so inventory is not stranded, then surface the error.
		s.log.Error("Failed to confirm booking after successful hold",
			"booking_id", booking.ID,
			"error", err,
		)
		s.releaseBestEffort(ctx, roomID, availReq, auth)
		return nil, apperrors.Internal("failed to confirm booking", err)
	}

	s.events.BookingConfirmed(ctx, confirmed)
	s.log.Info("Booking confirmed",
		"booking_id", confirmed.ID,
		"room_id", roomID,
		"user_id", userID,
	)
	return confirmed, nil
}

// compensate persists the cancelled status first, then releases any hold
// the hotel side may have taken. Release failures are swallowed: the hold
// is keyed by the booking id, so a later retry of the release is always
// safe.
func (s *BookingService) compensate(ctx context.Context, booking *model.Booking, roomID string, availReq client.AvailabilityRequest, auth client.Auth) (*model.Booking, error) {
	cancelled, err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingCancelled)
	if err != nil {
		// The hold must not stay active just because the local update
		// failed.
		s.releaseBestEffort(ctx, roomID, availReq, auth)
		return nil, apperrors.Internal("failed to cancel booking", err)
	}

	s.releaseBestEffort(ctx, roomID, availReq, auth)

	s.events.BookingCancelled(ctx, cancelled)
	return cancelled, nil
}

func (s *BookingService) releaseBestEffort(ctx context.Context, roomID string, availReq client.AvailabilityRequest, auth client.Auth) {
	if err := s.hotel.Release(ctx, roomID, availReq, auth); err != nil {
		s.log.Warn("Compensating release failed",
			"request_id", availReq.RequestID,
			"room_id", roomID,
			"error", err,
		)
	}
}

// selectRoom probes the ranked room list with a throwaway hold per room. A
// conflict moves on to the next candidate; any other failure aborts. The
// probe hold is released immediately, so the room can still be lost to a
// competing booking before the real confirm. That race is resolved by the
// confirm itself.
func (s *BookingService) selectRoom(ctx context.Context, start, end time.Time, auth client.Auth) (string, error) {
	rooms, err := s.hotel.Recommend(ctx, auth)
	if err != nil {
		return "", err
	}
	if len(rooms) == 0 {
		return "", apperrors.Conflict("no rooms available")
	}

	for _, room := range rooms {
		probeReq := client.AvailabilityRequest{
			RequestID: fmt.Sprintf("probe-%s", uuid.NewString()),
			StartDate: start.Format(model.DateLayout),
			EndDate:   end.Format(model.DateLayout),
		}

		err := s.hotel.ConfirmAvailability(ctx, room.ID, probeReq, auth)
		if err != nil {
			if apperrors.IsConflict(err) {
				s.log.Debug("Room unavailable for requested range, trying next",
					"room_id", room.ID,
					"request_id", probeReq.RequestID,
				)
				continue
			}
			return "", err
		}

		s.releaseBestEffort(ctx, room.ID, probeReq, auth)
		return room.ID, nil
	}

	return "", apperrors.Conflict("no rooms available for the requested dates")
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("booking", id)
	case errors.Is(err, bookingerrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid booking id: %s", id))
	default:
		return apperrors.Internal("booking lookup failed", err)
	}
}

func (s *BookingService) GetByID(ctx context.Context, id, userID string) (*model.Booking, error) {
	booking, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	bookings, err := s.repo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list bookings", err)
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to count bookings", err)
	}

	return bookings, total, nil
}

// Cancel marks the booking cancelled locally. Cancelling an already
// cancelled booking is a no-op. The inventory hold is not released here;
// hold cleanup for abandoned bookings is an operational task keyed by the
// booking id.
func (s *BookingService) Cancel(ctx context.Context, id, userID string) (*model.Booking, error) {
	booking, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	if booking.Status == model.BookingCancelled {
		return booking, nil
	}

	if booking.Status == model.BookingConfirmed {
		s.log.Warn("Cancelling confirmed booking, hold remains active",
			"booking_id", booking.ID,
			"room_id", booking.RoomID,
		)
	}

	cancelled, err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingCancelled)
	if err != nil {
		return nil, apperrors.Internal("failed to cancel booking", err)
	}

	s.events.BookingCancelled(ctx, cancelled)
	return cancelled, nil
}
