package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flightdeck/gateway-api/internal/models"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/bookings/book", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))

		var req models.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(7), req.FlightID)
		assert.Equal(t, 2, req.NumberOfSeats)

		json.NewEncoder(w).Encode(models.BookingResponse{
			PNR:           "ABC123",
			FlightNumber:  "FL700",
			PassengerName: req.PassengerName,
			NumberOfSeats: req.NumberOfSeats,
			TotalAmount:   599.98,
			Status:        models.BookingStatusConfirmed,
		})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken("tok123"))

	booking, err := client.Book(context.Background(), &models.BookingRequest{
		FlightID:       7,
		PassengerName:  "Alice Smith",
		PassengerEmail: "alice@test.com",
		PassengerPhone: "555-0100",
		NumberOfSeats:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", booking.PNR)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestBookSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not enough seats available"})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken(""))

	_, err := client.Book(context.Background(), &models.BookingRequest{})
	require.Error(t, err)
	assert.Equal(t, "Not enough seats available", apperrors.AsAppError(err).Message)
}

func TestHistoryPreservesBackendOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/bookings/history/alice@test.com", r.URL.Path)

		json.NewEncoder(w).Encode([]models.BookingResponse{
			{PNR: "NEW999", Status: models.BookingStatusConfirmed},
			{PNR: "OLD111", Status: models.BookingStatusCancelled},
		})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken(""))

	bookings, err := client.History(context.Background(), "alice@test.com")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "NEW999", bookings[0].PNR)
	assert.Equal(t, "OLD111", bookings[1].PNR)
}

func TestHistoryTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	cfg := backendConfig(server.URL)
	cfg.ListTimeout = 50 * time.Millisecond
	client := NewBookingClient(cfg, testLogger(), staticToken(""))

	_, err := client.History(context.Background(), "alice@test.com")
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
	assert.Equal(t, "Loading booking history timed out. Please try again.", apperrors.AsAppError(err).Message)
}

func TestHistoryEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.BookingResponse{})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken(""))

	bookings, err := client.History(context.Background(), "nobody@test.com")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/bookings/cancel/ABC123", r.URL.Path)

		json.NewEncoder(w).Encode(models.BookingResponse{
			PNR:    "ABC123",
			Status: models.BookingStatusCancelled,
		})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken(""))

	booking, err := client.Cancel(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
}

func TestCancelUnknownPNR(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Booking not found"})
	}))
	defer server.Close()

	client := NewBookingClient(backendConfig(server.URL), testLogger(), staticToken(""))

	_, err := client.Cancel(context.Background(), "NOPE")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, "Booking not found", appErr.Message)
}
