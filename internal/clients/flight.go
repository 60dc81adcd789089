package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/models"

	"github.com/sirupsen/logrus"
)

// FlightClient wraps the flight search and inventory endpoints. It is
// stateless; every result comes straight from the backend.
type FlightClient struct {
	backend     *Backend
	listTimeout time.Duration
}

// NewFlightClient creates a new flight client
func NewFlightClient(cfg *config.BackendConfig, logger *logrus.Logger, tokenSource TokenSource) *FlightClient {
	return &FlightClient{
		backend:     NewBackend("flights", cfg.BaseURL, logger, tokenSource),
		listTimeout: cfg.ListTimeout,
	}
}

// Search returns flights matching origin, destination and travel date.
func (c *FlightClient) Search(ctx context.Context, req *models.FlightSearchRequest) ([]models.Flight, error) {
	var flights []models.Flight
	if err := c.backend.post(ctx, "/api/flights/search", req, &flights,
		"Flight search failed. Please try again."); err != nil {
		return nil, err
	}
	return flights, nil
}

// ListInventory returns the full flight inventory (admin view). The call is
// bounded so a stuck backend fails with a timeout instead of hanging.
func (c *FlightClient) ListInventory(ctx context.Context) ([]models.Flight, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	var flights []models.Flight
	if err := c.backend.get(ctx, "/api/flights/inventory", nil, &flights,
		"Failed to load flight inventory."); err != nil {
		return nil, retimeout(err, "Loading flights timed out. Please try again.")
	}
	return flights, nil
}

// Add creates a new flight in the backend inventory.
func (c *FlightClient) Add(ctx context.Context, req *models.FlightInventoryRequest) (*models.Flight, error) {
	var flight models.Flight
	if err := c.backend.post(ctx, "/api/flights/add", req, &flight,
		"Failed to add flight. Please try again."); err != nil {
		return nil, err
	}
	return &flight, nil
}

// GetByID fetches a single flight record.
func (c *FlightClient) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	var flight models.Flight
	if err := c.backend.get(ctx, fmt.Sprintf("/api/flights/inventory/%d", id), nil, &flight,
		"Flight not found."); err != nil {
		return nil, err
	}
	return &flight, nil
}
