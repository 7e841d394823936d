package model

import (
	"time"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Route represents an origin/destination pair served by the operator
type Route struct {
	ID          string `gorm:"type:text;primary_key;default:gen_random_uuid()"`
	Origin      string `gorm:"not null;index"`
	Destination string `gorm:"not null;index"`
	CreatedAt   time.Time
}

// Trip represents a scheduled departure on a route. SeatsAvailable is the
// authoritative seat counter and is only ever mutated through the
// repository's AllocateSeats/ReleaseSeats operations.
type Trip struct {
	ID             string    `gorm:"type:text;primary_key;default:gen_random_uuid()"`
	RouteID        string    `gorm:"type:text;not null;index"`
	DepartureTime  time.Time `gorm:"not null;index"`
	SeatsTotal     int       `gorm:"not null"`
	SeatsAvailable int       `gorm:"not null"`
	CreatedAt      time.Time

	Route Route `gorm:"foreignKey:RouteID"`
}

// Conversion methods to API DTOs
func (r *Route) ToRouteResponse() *RouteResponse {
	return &RouteResponse{
		RouteID:     r.ID,
		Origin:      r.Origin,
		Destination: r.Destination,
		CreatedAt:   r.CreatedAt,
	}
}

func (t *Trip) ToTripResponse() *TripResponse {
	return &TripResponse{
		TripID:         t.ID,
		Route:          *t.Route.ToRouteResponse(),
		DepartureTime:  t.DepartureTime,
		SeatsTotal:     t.SeatsTotal,
		SeatsAvailable: t.SeatsAvailable,
		CreatedAt:      t.CreatedAt,
	}
}

// ===============================
// Repository DTOs (Internal)
// ===============================

// CreateRouteRequest represents input for creating a route
type CreateRouteRequest struct {
	Origin      string
	Destination string
}

// CreateTripRequest represents input for creating a trip
type CreateTripRequest struct {
	RouteID       string
	DepartureTime time.Time
	SeatsTotal    int
}

// TripFilter represents the search criteria for trips
type TripFilter struct {
	Origin      string
	Destination string
	Date        time.Time
}

// ===============================
// API DTOs (External)
// ===============================

// CreateRouteAPIRequest represents the route creation request from API
type CreateRouteAPIRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// CreateTripAPIRequest represents the trip creation request from API
type CreateTripAPIRequest struct {
	RouteID       string    `json:"route_id" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	SeatsTotal    int       `json:"seats_total" binding:"required,gt=0"`
}

// SeatCountRequest represents the body of allocate/release requests
type SeatCountRequest struct {
	Count int `json:"count" binding:"required,gt=0"`
}

// RouteResponse represents route data in API responses
type RouteResponse struct {
	RouteID     string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripResponse represents trip data in API responses
type TripResponse struct {
	TripID         string        `json:"id"`
	Route          RouteResponse `json:"route"`
	DepartureTime  time.Time     `json:"departure_time"`
	SeatsTotal     int           `json:"seats_total"`
	SeatsAvailable int           `json:"seats_available"`
	CreatedAt      time.Time     `json:"created_at"`
}

// AvailabilityResponse represents the advisory seat availability read.
// Callers must not treat it as a guarantee that an allocate will succeed.
type AvailabilityResponse struct {
	TripID         string `json:"trip_id"`
	SeatsAvailable int    `json:"seats_available"`
}

// AllocateResponse represents a successful seat allocation
type AllocateResponse struct {
	TripID         string `json:"trip_id"`
	Allocated      int    `json:"allocated"`
	SeatsAvailable int    `json:"seats_available"`
}

// ReleaseResponse represents a successful seat release. Released may be
// lower than the requested count when the trip was already fully released.
type ReleaseResponse struct {
	TripID         string `json:"trip_id"`
	Released       int    `json:"released"`
	SeatsAvailable int    `json:"seats_available"`
}

// InsufficientSeatsResponse is the conflict payload returned when an
// allocation asks for more seats than are available
type InsufficientSeatsResponse struct {
	Error     string `json:"error"`
	Available int    `json:"available"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}
