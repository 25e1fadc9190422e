package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// Auth carries the caller's credential, forwarded unchanged to the hotel
// service. The booking service never mints its own identity; the hotel
// service authorizes the forwarded credential itself.
type Auth struct {
	Authorization string
	UserID        string
}

func (a Auth) headers() map[string]string {
	h := map[string]string{}
	if a.Authorization != "" {
		h["Authorization"] = a.Authorization
	}
	if a.UserID != "" {
		h["X-User-ID"] = a.UserID
	}
	return h
}

// AvailabilityRequest is the confirm/release payload. RequestID is the
// idempotency key; the same id must be used for a confirm and its matching
// release.
type AvailabilityRequest struct {
	RequestID string `json:"request_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type HotelClient struct {
	httpClient *HttpClient
	caller     *Caller
}

func NewHotelClient(baseURL string, policy RetryPolicy, log *logger.Logger) *HotelClient {
	return &HotelClient{
		httpClient: NewHttpClient(baseURL),
		caller:     NewCaller(policy, log),
	}
}

func (c *HotelClient) Recommend(ctx context.Context, auth Auth) ([]model.Room, error) {
	resp, err := c.caller.Do(ctx, "rooms.recommend", func(ctx context.Context) (*Response, error) {
		return c.httpClient.GET(ctx, "/api/v1/rooms/recommend", auth.headers())
	})
	if err != nil {
		return nil, err
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Internal("could not decode recommended rooms", err)
	}
	var rooms []model.Room
	if err := json.Unmarshal(wrapper.Data, &rooms); err != nil {
		return nil, apperrors.Internal("could not decode recommended rooms", err)
	}
	return rooms, nil
}

func (c *HotelClient) ConfirmAvailability(ctx context.Context, roomID string, req AvailabilityRequest, auth Auth) error {
	path := fmt.Sprintf("/api/v1/internal/rooms/%s/confirm-availability", url.PathEscape(roomID))
	resp, err := c.caller.Do(ctx, "rooms.confirm-availability", func(ctx context.Context) (*Response, error) {
		return c.httpClient.POST(ctx, path, req, auth.headers())
	})
	if err != nil {
		return err
	}
	return statusError(resp)
}

func (c *HotelClient) Release(ctx context.Context, roomID string, req AvailabilityRequest, auth Auth) error {
	path := fmt.Sprintf("/api/v1/internal/rooms/%s/release", url.PathEscape(roomID))
	resp, err := c.caller.Do(ctx, "rooms.release", func(ctx context.Context) (*Response, error) {
		return c.httpClient.POST(ctx, path, req, auth.headers())
	})
	if err != nil {
		return err
	}
	return statusError(resp)
}

func statusError(resp *Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(GetErrorMessage(resp))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, GetErrorMessage(resp), http.StatusNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(GetErrorMessage(resp))
	case resp.StatusCode >= 500:
		return apperrors.Unavailable("hotel service")
	default:
		return apperrors.InvalidInput(GetErrorMessage(resp))
	}
}
