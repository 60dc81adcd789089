package models

// Booking statuses as reported by the backend.
const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// BookingRequest represents a seat booking payload
type BookingRequest struct {
	FlightID       int64  `json:"flightId" validate:"required"`
	PassengerName  string `json:"passengerName" validate:"required"`
	PassengerEmail string `json:"passengerEmail" validate:"required,email"`
	PassengerPhone string `json:"passengerPhone" validate:"required"`
	NumberOfSeats  int    `json:"numberOfSeats" validate:"required,min=1,max=9"`
}

// BookingResponse mirrors the backend's booking record. PNR is the
// confirmation code generated by the booking backend.
type BookingResponse struct {
	PNR           string  `json:"pnr"`
	FlightNumber  string  `json:"flightNumber"`
	PassengerName string  `json:"passengerName"`
	NumberOfSeats int     `json:"numberOfSeats"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
	BookingDate   string  `json:"bookingDate"`
	Message       string  `json:"message"`
}
