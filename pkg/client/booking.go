package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"innkeep/pkg/model"
)

// BookingClient talks to the booking service. Used by the integration suite.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *BookingClient) Create(ctx context.Context, req *model.BookingRequest, auth Auth) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/booking", req, auth.headers())
}

func (c *BookingClient) GetByID(ctx context.Context, id string, auth Auth) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/booking/"+url.PathEscape(id), auth.headers())
}

func (c *BookingClient) List(ctx context.Context, limit int, offset int64, auth Auth) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(ctx, path, auth.headers())
}

func (c *BookingClient) Cancel(ctx context.Context, id string, auth Auth) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/booking/"+url.PathEscape(id), auth.headers())
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json:\n%+v\n%s", resp.ToString(), err)
	}

	return &booking, nil
}
