package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func newTestInternalHandler() *RoomInternalHandler {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	// A nil service is fine here: every case below must be rejected
	// before the service is consulted.
	return NewRoomInternalHandler(nil, log)
}

func TestConfirmAvailability_RejectsBadInput(t *testing.T) {
	h := newTestInternalHandler()
	router := httprouter.New()
	h.RegisterRoutes(router)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing request_id", `{"start_date":"2026-03-10","end_date":"2026-03-12"}`},
		{"malformed start_date", `{"request_id":"req-1","start_date":"10-03-2026","end_date":"2026-03-12"}`},
		{"malformed end_date", `{"request_id":"req-1","start_date":"2026-03-10","end_date":"tomorrow"}`},
		{"equal dates", `{"request_id":"req-1","start_date":"2026-03-10","end_date":"2026-03-10"}`},
		{"end before start", `{"request_id":"req-1","start_date":"2026-03-12","end_date":"2026-03-10"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/internal/rooms/507f1f77bcf86cd799439011/confirm-availability",
				strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}

			var resp httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if resp.Error == "" {
				t.Error("error response has no message")
			}
		})
	}
}

func TestRelease_RejectsBadInput(t *testing.T) {
	h := newTestInternalHandler()
	router := httprouter.New()
	h.RegisterRoutes(router)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `not json`},
		{"missing request_id", `{"start_date":"2026-03-10","end_date":"2026-03-12"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/internal/rooms/507f1f77bcf86cd799439011/release",
				strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}
