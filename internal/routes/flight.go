package routes

import (
	"strconv"

	"github.com/flightdeck/gateway-api/internal/clients"
	"github.com/flightdeck/gateway-api/internal/models"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// FlightHandler handles flight search and inventory endpoints
type FlightHandler struct {
	flights *clients.FlightClient
	logger  *logrus.Logger
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(flights *clients.FlightClient, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{flights: flights, logger: logger}
}

// Search returns flights for an origin/destination/date query.
// @Summary Search flights
// @Tags Flights
// @Accept json
// @Produce json
// @Router /api/flights/search [post]
func (h *FlightHandler) Search(c *fiber.Ctx) error {
	var req models.FlightSearchRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	flights, err := h.flights.Search(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return c.JSON(flights)
}

// Inventory lists all flights (admin view).
// @Summary List flight inventory
// @Tags Flights
// @Produce json
// @Router /api/flights/inventory [get]
func (h *FlightHandler) Inventory(c *fiber.Ctx) error {
	flights, err := h.flights.ListInventory(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(flights)
}

// Add creates a new flight in the inventory (admin only).
// @Summary Add flight
// @Tags Flights
// @Accept json
// @Produce json
// @Router /api/flights/add [post]
func (h *FlightHandler) Add(c *fiber.Ctx) error {
	var req models.FlightInventoryRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	flight, err := h.flights.Add(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(flight)
}

// GetByID fetches a single flight.
// @Summary Get flight by ID
// @Tags Flights
// @Produce json
// @Router /api/flights/inventory/{id} [get]
func (h *FlightHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid flight ID", err)
	}

	flight, err := h.flights.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(flight)
}
