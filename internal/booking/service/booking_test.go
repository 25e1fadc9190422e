package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	bookingerrors "innkeep/internal/booking/errors"
	"innkeep/internal/booking/events"
	"innkeep/internal/booking/validator"
	"innkeep/pkg/client"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int

	createFunc       func(ctx context.Context, booking *model.Booking) error
	updateStatusFunc func(ctx context.Context, id, status string) (*model.Booking, error)
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	booking.ID = fmt.Sprintf("booking-%d", m.nextID)
	booking.CreatedAt = time.Now().UTC()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrNotFound, id)
	}
	copy := *booking
	return &copy, nil
}

func (m *mockBookingRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Booking, error) {
	booking, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrNotFound, id)
	}
	return booking, nil
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	bookings, _ := m.FindByUser(ctx, userID, 0, 0)
	return int64(len(bookings)), nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrNotFound, id)
	}
	booking.Status = status
	copy := *booking
	return &copy, nil
}

// ────────────────────────────────────────────────
// Mock hotel gateway
// ────────────────────────────────────────────────

type mockHotelGateway struct {
	mu           sync.Mutex
	confirmCalls []string
	releaseCalls []string

	recommendFunc func(ctx context.Context, auth client.Auth) ([]model.Room, error)
	confirmFunc   func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error
	releaseFunc   func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error
}

func (m *mockHotelGateway) Recommend(ctx context.Context, auth client.Auth) ([]model.Room, error) {
	if m.recommendFunc != nil {
		return m.recommendFunc(ctx, auth)
	}
	return nil, nil
}

func (m *mockHotelGateway) ConfirmAvailability(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
	m.mu.Lock()
	m.confirmCalls = append(m.confirmCalls, roomID+":"+req.RequestID)
	m.mu.Unlock()
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, roomID, req, auth)
	}
	return nil
}

func (m *mockHotelGateway) Release(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
	m.mu.Lock()
	m.releaseCalls = append(m.releaseCalls, roomID+":"+req.RequestID)
	m.mu.Unlock()
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, roomID, req, auth)
	}
	return nil
}

func newTestService(repo *mockBookingRepository, hotel *mockHotelGateway) *BookingService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	publisher, _ := events.NewKafkaPublisher(nil, "booking-events", log)
	return NewBookingService(repo, validator.NewBookingValidator(), hotel, publisher, log)
}

const testRoomID = "507f1f77bcf86cd799439011"

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		RoomID:    testRoomID,
		StartDate: "2026-03-10",
		EndDate:   "2026-03-12",
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_ConfirmedOnSuccess(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if booking.Status != model.BookingConfirmed {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingConfirmed)
	}
	if booking.RoomID != testRoomID {
		t.Errorf("room_id = %s, want %s", booking.RoomID, testRoomID)
	}

	if len(hotel.confirmCalls) != 1 {
		t.Fatalf("expected 1 confirm call, got %d", len(hotel.confirmCalls))
	}
	if hotel.confirmCalls[0] != testRoomID+":"+booking.ID {
		t.Errorf("confirm was not keyed by the booking id: %s", hotel.confirmCalls[0])
	}
	if len(hotel.releaseCalls) != 0 {
		t.Errorf("unexpected release calls: %v", hotel.releaseCalls)
	}
}

func TestCreate_CancelledOnConflict(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		confirmFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Conflict("room is not available for the requested dates")
		},
	}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("a rejected confirm should cancel, not fail: %v", err)
	}

	if booking.Status != model.BookingCancelled {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingCancelled)
	}
	if len(hotel.releaseCalls) != 1 {
		t.Fatalf("expected a compensating release, got %d calls", len(hotel.releaseCalls))
	}
}

func TestCreate_CancelPersistedBeforeRelease(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		confirmFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Conflict("room is not available for the requested dates")
		},
	}

	releasesAtCancel := -1
	repo.updateStatusFunc = func(ctx context.Context, id, status string) (*model.Booking, error) {
		hotel.mu.Lock()
		releasesAtCancel = len(hotel.releaseCalls)
		hotel.mu.Unlock()
		repo.updateStatusFunc = nil
		return repo.UpdateStatus(ctx, id, status)
	}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("a rejected confirm should cancel, not fail: %v", err)
	}
	if booking.Status != model.BookingCancelled {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingCancelled)
	}
	if releasesAtCancel != 0 {
		t.Errorf("the cancelled status must be persisted before the hold is released, saw %d prior releases", releasesAtCancel)
	}
	if len(hotel.releaseCalls) != 1 {
		t.Errorf("expected a compensating release after cancellation, got %v", hotel.releaseCalls)
	}
}

func TestCreate_ReleaseFailureIsSwallowed(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		confirmFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Unavailable("hotel service")
		},
		releaseFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Unavailable("hotel service")
		},
	}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("release failure must not fail the request: %v", err)
	}
	if booking.Status != model.BookingCancelled {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingCancelled)
	}
}

func TestCreate_ValidationError(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{}
	svc := newTestService(repo, hotel)

	req := validRequest()
	req.EndDate = req.StartDate

	_, err := svc.Create(context.Background(), "user-1", req, client.Auth{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
	}
	if len(hotel.confirmCalls) != 0 {
		t.Errorf("no remote calls expected for invalid input, got %v", hotel.confirmCalls)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("no booking should be persisted for invalid input")
	}
}

// ────────────────────────────────────────────────
// Auto-select
// ────────────────────────────────────────────────

func TestCreate_AutoSelectSkipsConflictedRooms(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		recommendFunc: func(ctx context.Context, auth client.Auth) ([]model.Room, error) {
			return []model.Room{
				{ID: "room-a", TimesBooked: 1},
				{ID: "room-b", TimesBooked: 2},
			}, nil
		},
	}
	hotel.confirmFunc = func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
		if roomID == "room-a" && strings.HasPrefix(req.RequestID, "probe-") {
			return apperrors.Conflict("room is not available for the requested dates")
		}
		return nil
	}
	svc := newTestService(repo, hotel)

	req := &model.BookingRequest{
		AutoSelect: true,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	}

	booking, err := svc.Create(context.Background(), "user-1", req, client.Auth{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if booking.RoomID != "room-b" {
		t.Errorf("room_id = %s, want room-b", booking.RoomID)
	}
	if booking.Status != model.BookingConfirmed {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingConfirmed)
	}

	// Probe holds use a synthetic request id and are released right away.
	probeReleases := 0
	for _, call := range hotel.releaseCalls {
		if strings.Contains(call, ":probe-") {
			probeReleases++
		}
	}
	if probeReleases != 1 {
		t.Errorf("expected 1 probe release, got %d (%v)", probeReleases, hotel.releaseCalls)
	}
}

func TestCreate_AutoSelectNoRooms(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		recommendFunc: func(ctx context.Context, auth client.Auth) ([]model.Room, error) {
			return []model.Room{}, nil
		},
	}
	svc := newTestService(repo, hotel)

	req := &model.BookingRequest{
		AutoSelect: true,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	}

	_, err := svc.Create(context.Background(), "user-1", req, client.Auth{})
	if !apperrors.IsConflict(err) {
		t.Fatalf("expected conflict when no rooms exist, got %v", err)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("no booking should be persisted when selection fails")
	}
}

func TestCreate_AutoSelectAllCandidatesConflicted(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		recommendFunc: func(ctx context.Context, auth client.Auth) ([]model.Room, error) {
			return []model.Room{
				{ID: "room-a", TimesBooked: 1},
				{ID: "room-b", TimesBooked: 2},
			}, nil
		},
		confirmFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Conflict("room is not available for the requested dates")
		},
	}
	svc := newTestService(repo, hotel)

	req := &model.BookingRequest{
		AutoSelect: true,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	}

	_, err := svc.Create(context.Background(), "user-1", req, client.Auth{})
	if !apperrors.IsConflict(err) {
		t.Fatalf("expected conflict when every candidate is taken, got %v", err)
	}
	if len(hotel.confirmCalls) != 2 {
		t.Errorf("expected every candidate to be probed once, got %v", hotel.confirmCalls)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("no booking should be persisted when every candidate conflicts")
	}
}

func TestCreate_AutoSelectAbortsOnRemoteFailure(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{
		recommendFunc: func(ctx context.Context, auth client.Auth) ([]model.Room, error) {
			return []model.Room{
				{ID: "room-a"},
				{ID: "room-b"},
			}, nil
		},
		confirmFunc: func(ctx context.Context, roomID string, req client.AvailabilityRequest, auth client.Auth) error {
			return apperrors.Unavailable("hotel service")
		},
	}
	svc := newTestService(repo, hotel)

	req := &model.BookingRequest{
		AutoSelect: true,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	}

	_, err := svc.Create(context.Background(), "user-1", req, client.Auth{})
	if err == nil {
		t.Fatal("expected error")
	}
	// A non-conflict probe failure aborts instead of trying the next room.
	if len(hotel.confirmCalls) != 1 {
		t.Errorf("expected probing to stop after the first failure, got %v", hotel.confirmCalls)
	}
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_Idempotent(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	first, err := svc.Cancel(context.Background(), booking.ID, "user-1")
	if err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if first.Status != model.BookingCancelled {
		t.Errorf("status = %s, want %s", first.Status, model.BookingCancelled)
	}

	second, err := svc.Cancel(context.Background(), booking.ID, "user-1")
	if err != nil {
		t.Fatalf("repeated cancel must succeed: %v", err)
	}
	if second.Status != model.BookingCancelled {
		t.Errorf("status = %s, want %s", second.Status, model.BookingCancelled)
	}
}

func TestCancel_OtherUsersBookingNotFound(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = svc.Cancel(context.Background(), booking.ID, "user-2")
	if err == nil {
		t.Fatal("expected not found for another user's booking")
	}
}

func TestCancel_DoesNotCallInventory(t *testing.T) {
	repo := newMockBookingRepository()
	hotel := &mockHotelGateway{}
	svc := newTestService(repo, hotel)

	booking, err := svc.Create(context.Background(), "user-1", validRequest(), client.Auth{})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	releasesAfterCreate := len(hotel.releaseCalls)

	if _, err := svc.Cancel(context.Background(), booking.ID, "user-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if len(hotel.releaseCalls) != releasesAfterCreate {
		t.Errorf("local cancel must not release the hold, got %v", hotel.releaseCalls)
	}
}
