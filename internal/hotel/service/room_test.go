package service

import (
	"context"
	"io"
	"testing"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

func newRoomService(rooms *fakeRoomRepository, holds *fakeHoldRepository) *RoomService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	return NewRoomService(rooms, holds, log)
}

func TestRecommend_RanksByTimesBookedThenID(t *testing.T) {
	rooms := newFakeRoomRepository(
		&model.Room{ID: "room-c", Available: true, TimesBooked: 2},
		&model.Room{ID: "room-a", Available: true, TimesBooked: 5},
		&model.Room{ID: "room-b", Available: true, TimesBooked: 2},
	)
	svc := newRoomService(rooms, newFakeHoldRepository())

	ranked, err := svc.Recommend(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"room-b", "room-c", "room-a"}
	if len(ranked) != len(want) {
		t.Fatalf("got %d rooms, want %d", len(ranked), len(want))
	}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].ID, id)
		}
	}
}

func TestRecommend_ExcludesClosedRooms(t *testing.T) {
	rooms := newFakeRoomRepository(
		&model.Room{ID: "room-a", Available: true},
		&model.Room{ID: "room-b", Available: false},
	)
	svc := newRoomService(rooms, newFakeHoldRepository())

	ranked, err := svc.Recommend(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ranked) != 1 || ranked[0].ID != "room-a" {
		t.Errorf("closed rooms must not be recommended, got %v", ranked)
	}
}

func TestCreate_AssignsID(t *testing.T) {
	rooms := newFakeRoomRepository()
	svc := newRoomService(rooms, newFakeHoldRepository())

	room := &model.Room{ID: "room-1", Number: "204", Available: true}
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stored, err := rooms.FindByID(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("room was not stored: %v", err)
	}
	if stored.Number != "204" {
		t.Errorf("number = %s, want 204", stored.Number)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newRoomService(newFakeRoomRepository(), newFakeHoldRepository())

	_, err := svc.GetByID(context.Background(), "missing")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected %s, got %v", apperrors.CodeNotFound, err)
	}
}

func TestStats_CountsActiveHoldsOnly(t *testing.T) {
	rooms := newFakeRoomRepository(&model.Room{ID: "room-1", Number: "101", Available: true})
	holds := newFakeHoldRepository()
	availability := newAvailabilityService(rooms, holds, newFakeLockRepository())
	svc := newRoomService(rooms, holds)

	if _, err := availability.Confirm(context.Background(), "room-1", "req-1", date(10), date(12)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := availability.Confirm(context.Background(), "room-1", "req-2", date(12), date(14)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := availability.Release(context.Background(), "room-1", "req-2"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d stats entries, want 1", len(stats))
	}

	entry := stats[0]
	if entry.ActiveHolds != 1 {
		t.Errorf("active_holds = %d, want 1", entry.ActiveHolds)
	}
	if entry.TimesBooked != 2 {
		t.Errorf("times_booked = %d, want 2", entry.TimesBooked)
	}
}
