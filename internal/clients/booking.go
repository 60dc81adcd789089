package clients

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/models"

	"github.com/sirupsen/logrus"
)

// BookingClient wraps the booking endpoints: book, history and cancel.
type BookingClient struct {
	backend     *Backend
	listTimeout time.Duration
}

// NewBookingClient creates a new booking client
func NewBookingClient(cfg *config.BackendConfig, logger *logrus.Logger, tokenSource TokenSource) *BookingClient {
	return &BookingClient{
		backend:     NewBackend("bookings", cfg.BaseURL, logger, tokenSource),
		listTimeout: cfg.ListTimeout,
	}
}

// Book reserves seats on a flight and returns the PNR confirmation.
func (c *BookingClient) Book(ctx context.Context, req *models.BookingRequest) (*models.BookingResponse, error) {
	var booking models.BookingResponse
	if err := c.backend.post(ctx, "/api/bookings/book", req, &booking,
		"Booking failed. Please try again."); err != nil {
		return nil, err
	}
	return &booking, nil
}

// History returns the passenger's bookings in the order the backend delivers
// them; no reordering happens here. The call is bounded so a stuck backend
// fails with a timeout instead of hanging.
func (c *BookingClient) History(ctx context.Context, email string) ([]models.BookingResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	var bookings []models.BookingResponse
	if err := c.backend.get(ctx, "/api/bookings/history/"+url.PathEscape(email), nil, &bookings,
		"Failed to load booking history."); err != nil {
		return nil, retimeout(err, "Loading booking history timed out. Please try again.")
	}
	return bookings, nil
}

// Cancel cancels a booking by PNR and returns the record with its new status.
func (c *BookingClient) Cancel(ctx context.Context, pnr string) (*models.BookingResponse, error) {
	var booking models.BookingResponse
	if err := c.backend.delete(ctx, fmt.Sprintf("/api/bookings/cancel/%s", url.PathEscape(pnr)), &booking,
		"Unable to cancel booking. Please try again."); err != nil {
		return nil, err
	}
	return &booking, nil
}
