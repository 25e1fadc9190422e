package validator

import (
	"testing"
	"time"

	"innkeep/pkg/model"
)

func TestValidate_ValidRequest(t *testing.T) {
	v := NewBookingValidator()

	req := &model.BookingRequest{
		RoomID:    "507f1f77bcf86cd799439011",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-12",
	}

	start, end, err := v.Validate(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end date: %v", end)
	}
}

func TestValidate_AutoSelectWithoutRoomID(t *testing.T) {
	v := NewBookingValidator()

	req := &model.BookingRequest{
		AutoSelect: true,
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	}

	if _, _, err := v.Validate(req); err != nil {
		t.Fatalf("auto_select request should not require room_id, got %v", err)
	}
}

func TestValidate_MissingRoomID(t *testing.T) {
	v := NewBookingValidator()

	req := &model.BookingRequest{
		StartDate: "2026-03-10",
		EndDate:   "2026-03-12",
	}

	_, _, err := v.Validate(req)
	if err == nil {
		t.Fatal("expected validation error for missing room_id")
	}
}

func TestValidate_EndNotAfterStart(t *testing.T) {
	v := NewBookingValidator()

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"equal dates", "2026-03-10", "2026-03-10"},
		{"end before start", "2026-03-12", "2026-03-10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &model.BookingRequest{
				RoomID:    "507f1f77bcf86cd799439011",
				StartDate: tc.start,
				EndDate:   tc.end,
			}
			if _, _, err := v.Validate(req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_MalformedDate(t *testing.T) {
	v := NewBookingValidator()

	req := &model.BookingRequest{
		RoomID:    "507f1f77bcf86cd799439011",
		StartDate: "10-03-2026",
		EndDate:   "2026-03-12",
	}

	_, _, err := v.Validate(req)
	if err == nil {
		t.Fatal("expected validation error for malformed start_date")
	}
}

func TestValidate_InvalidRoomIDFormat(t *testing.T) {
	v := NewBookingValidator()

	req := &model.BookingRequest{
		RoomID:    "not-an-object-id",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-12",
	}

	_, _, err := v.Validate(req)
	if err == nil {
		t.Fatal("expected validation error for malformed room_id")
	}
}
