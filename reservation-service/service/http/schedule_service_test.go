package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arunvm123/busreservation/reservation-service/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthSecret = "internal-secret"

func TestGetAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trips/trip-1/availability", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"trip_id":         "trip-1",
			"seats_available": 17,
		})
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	available, err := client.GetAvailability("trip-1")
	require.NoError(t, err)
	assert.Equal(t, 17, available)
}

func TestGetAvailabilityNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.GetAvailability("trip-1")
	assert.ErrorIs(t, err, service.ErrTripNotFound)
}

func TestAllocateSeats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trips/trip-1/allocate", r.URL.Path)
		assert.Equal(t, testAuthSecret, r.Header.Get("X-Service-Auth"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3, body["count"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"trip_id":         "trip-1",
			"allocated":       3,
			"seats_available": 14,
		})
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	result, err := client.AllocateSeats("trip-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Allocated)
	assert.Equal(t, 14, result.SeatsAvailable)
}

func TestAllocateSeatsConflictCarriesAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":     "insufficient_seats",
			"available": 2,
		})
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.AllocateSeats("trip-1", 5)

	var insufficientErr *service.InsufficientSeatsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 2, insufficientErr.Available)
}

func TestAllocateSeatsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.AllocateSeats("trip-1", 1)
	assert.ErrorIs(t, err, service.ErrTripNotFound)
}

func TestAllocateSeatsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.AllocateSeats("trip-1", 1)

	var upstreamErr *service.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.Status)
}

func TestAllocateSeatsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.AllocateSeats("trip-1", 1)

	// The request never completed, so the outcome is ambiguous and Status
	// stays zero
	var upstreamErr *service.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 0, upstreamErr.Status)
}

func TestReleaseSeats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trips/trip-1/release", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"trip_id":         "trip-1",
			"released":        2,
			"seats_available": 16,
		})
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	result, err := client.ReleaseSeats("trip-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Released)
	assert.Equal(t, 16, result.SeatsAvailable)
}

func TestReleaseSeatsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPScheduleService(server.URL, testAuthSecret)
	_, err := client.ReleaseSeats("trip-1", 2)
	assert.ErrorIs(t, err, service.ErrTripNotFound)
}
