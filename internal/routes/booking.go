package routes

import (
	"net/url"

	"github.com/flightdeck/gateway-api/internal/clients"
	"github.com/flightdeck/gateway-api/internal/models"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookings *clients.BookingClient
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *clients.BookingClient, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// Book reserves seats on a flight.
// @Summary Book a flight
// @Tags Bookings
// @Accept json
// @Produce json
// @Router /api/bookings/book [post]
func (h *BookingHandler) Book(c *fiber.Ctx) error {
	var req models.BookingRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Book(c.UserContext(), &req)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"pnr":    booking.PNR,
		"flight": booking.FlightNumber,
		"seats":  booking.NumberOfSeats,
	}).Info("Flight booked")

	return c.JSON(booking)
}

// History lists the passenger's bookings, in the order the backend delivers
// them.
// @Summary Booking history
// @Tags Bookings
// @Produce json
// @Router /api/bookings/history/{email} [get]
func (h *BookingHandler) History(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil || email == "" {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid email", err)
	}

	bookings, err := h.bookings.History(c.UserContext(), email)
	if err != nil {
		return err
	}

	return c.JSON(bookings)
}

// Cancel cancels a booking by PNR.
// @Summary Cancel booking
// @Tags Bookings
// @Produce json
// @Router /api/bookings/cancel/{pnr} [delete]
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	pnr := c.Params("pnr")
	if pnr == "" {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "PNR is required", nil)
	}

	booking, err := h.bookings.Cancel(c.UserContext(), pnr)
	if err != nil {
		return err
	}

	h.logger.WithField("pnr", booking.PNR).Info("Booking cancelled")

	return c.JSON(booking)
}
