package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"innkeep/internal/hotel/service"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// AvailabilityRequest is the payload of the internal hold endpoints. The
// request id is the caller's idempotency key.
type AvailabilityRequest struct {
	RequestID string `json:"request_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RoomInternalHandler serves the service-to-service hold endpoints. They sit
// behind the same identity middleware as the public routes; callers forward
// the end user's headers unchanged.
type RoomInternalHandler struct {
	service *service.AvailabilityService
	log     *logger.Logger
}

func NewRoomInternalHandler(service *service.AvailabilityService, log *logger.Logger) *RoomInternalHandler {
	return &RoomInternalHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomInternalHandler) decode(w http.ResponseWriter, r *http.Request, handlerName string) (string, time.Time, time.Time, bool) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, handlerName, apperrors.InvalidInput("invalid request body"))
		return "", time.Time{}, time.Time{}, false
	}

	if req.RequestID == "" {
		h.writeError(w, handlerName, apperrors.InvalidInput("request_id is required"))
		return "", time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		h.writeError(w, handlerName, apperrors.InvalidInput("start_date must be a valid date in YYYY-MM-DD format"))
		return "", time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil {
		h.writeError(w, handlerName, apperrors.InvalidInput("end_date must be a valid date in YYYY-MM-DD format"))
		return "", time.Time{}, time.Time{}, false
	}
	if !start.Before(end) {
		h.writeError(w, handlerName, apperrors.InvalidInput("end_date must be after start_date"))
		return "", time.Time{}, time.Time{}, false
	}

	return req.RequestID, start, end, true
}

func (h *RoomInternalHandler) ConfirmAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")

	requestID, start, end, ok := h.decode(w, r, "ConfirmAvailability")
	if !ok {
		return
	}

	hold, err := h.service.Confirm(r.Context(), roomID, requestID, start, end)
	if err != nil {
		h.writeError(w, "ConfirmAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, hold); err != nil {
		h.log.Error("failed to write success response", "handler", "ConfirmAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomInternalHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")

	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Release", apperrors.InvalidInput("invalid request body"))
		return
	}
	if req.RequestID == "" {
		h.writeError(w, "Release", apperrors.InvalidInput("request_id is required"))
		return
	}

	hold, err := h.service.Release(r.Context(), roomID, req.RequestID)
	if err != nil {
		h.writeError(w, "Release", err)
		return
	}

	if err := httputil.WriteSuccess(w, hold); err != nil {
		h.log.Error("failed to write success response", "handler", "Release", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomInternalHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomInternalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/internal/rooms/:id/confirm-availability", h.ConfirmAvailability)
	router.POST("/api/v1/internal/rooms/:id/release", h.Release)
}
