package models

// FlightSearchRequest represents a flight search query
type FlightSearchRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	TravelDate  string `json:"travelDate" validate:"required"`
}

// FlightInventoryRequest represents a new flight added by an admin
type FlightInventoryRequest struct {
	FlightNumber   string  `json:"flightNumber" validate:"required"`
	Airline        string  `json:"airline" validate:"required"`
	Origin         string  `json:"origin" validate:"required"`
	Destination    string  `json:"destination" validate:"required"`
	DepartureTime  string  `json:"departureTime" validate:"required"`
	ArrivalTime    string  `json:"arrivalTime" validate:"required"`
	AvailableSeats int     `json:"availableSeats" validate:"required,min=1"`
	Price          float64 `json:"price" validate:"required,gt=0"`
}

// Flight mirrors the backend's flight record. The gateway holds no
// authoritative copy and never mutates it.
type Flight struct {
	ID             int64   `json:"id"`
	FlightNumber   string  `json:"flightNumber"`
	Airline        string  `json:"airline"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departureTime"`
	ArrivalTime    string  `json:"arrivalTime"`
	AvailableSeats int     `json:"availableSeats"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}
