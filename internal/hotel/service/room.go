package service

import (
	"context"
	"errors"
	"sort"

	hotelerrors "innkeep/internal/hotel/errors"
	"innkeep/internal/hotel/repository"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type RoomService struct {
	rooms repository.RoomRepository
	holds repository.RoomHoldRepository
	log   *logger.Logger
}

func NewRoomService(rooms repository.RoomRepository, holds repository.RoomHoldRepository, log *logger.Logger) *RoomService {
	return &RoomService{
		rooms: rooms,
		holds: holds,
		log:   log,
	}
}

// Recommend returns open rooms ranked for auto-selection: least booked
// first, ties broken by id so the order is stable across calls.
func (s *RoomService) Recommend(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.rooms.FindAvailable(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list available rooms", err)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].TimesBooked != rooms[j].TimesBooked {
			return rooms[i].TimesBooked < rooms[j].TimesBooked
		}
		return rooms[i].ID < rooms[j].ID
	})

	return rooms, nil
}

func (s *RoomService) List(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	rooms, err := s.rooms.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list rooms", err)
	}

	total, err := s.rooms.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to count rooms", err)
	}

	return rooms, total, nil
}

func (s *RoomService) Create(ctx context.Context, room *model.Room) error {
	if err := s.rooms.Create(ctx, room); err != nil {
		return apperrors.Internal("failed to create room", err)
	}

	s.log.Info("Room created", "room_id", room.ID, "number", room.Number)
	return nil
}

func (s *RoomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, hotelerrors.ErrRoomNotFound), errors.Is(err, hotelerrors.ErrInvalidID):
			return nil, apperrors.NotFoundWithID("room", id)
		default:
			return nil, apperrors.Internal("room lookup failed", err)
		}
	}
	return room, nil
}

// Stats reports per-room occupancy counters for operators.
func (s *RoomService) Stats(ctx context.Context) ([]*model.RoomStats, error) {
	rooms, err := s.rooms.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, apperrors.Internal("failed to list rooms", err)
	}

	stats := make([]*model.RoomStats, 0, len(rooms))
	for _, room := range rooms {
		active, err := s.holds.CountActiveByRoom(ctx, room.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count active holds", err)
		}
		stats = append(stats, &model.RoomStats{
			RoomID:      room.ID,
			Number:      room.Number,
			Available:   room.Available,
			TimesBooked: room.TimesBooked,
			ActiveHolds: active,
		})
	}

	return stats, nil
}
