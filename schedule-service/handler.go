package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/arunvm123/busreservation/schedule-service/cache"
	"github.com/arunvm123/busreservation/schedule-service/model"
	"github.com/arunvm123/busreservation/schedule-service/repository"
	"github.com/gin-gonic/gin"
)

const (
	tripCacheTTL = 5 * time.Minute
	// Availability changes on every booking, so it only stays cacheable
	// for a short window
	availabilityCacheTTL = 30 * time.Second
)

type ScheduleHandler struct {
	repo  repository.ScheduleRepository
	cache cache.CacheRepository
}

func NewScheduleHandler(repo repository.ScheduleRepository, cache cache.CacheRepository) *ScheduleHandler {
	return &ScheduleHandler{
		repo:  repo,
		cache: cache,
	}
}

// CreateRoute handles route creation
func (h *ScheduleHandler) CreateRoute(c *gin.Context) {
	var req model.CreateRouteAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	route, err := h.repo.CreateRoute(model.CreateRouteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create route",
		})
		return
	}

	c.JSON(http.StatusCreated, route.ToRouteResponse())
}

// ListRoutes returns all routes
func (h *ScheduleHandler) ListRoutes(c *gin.Context) {
	routes, err := h.repo.ListRoutes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve routes",
		})
		return
	}

	responses := make([]*model.RouteResponse, 0, len(routes))
	for i := range routes {
		responses = append(responses, routes[i].ToRouteResponse())
	}

	c.JSON(http.StatusOK, responses)
}

// CreateTrip handles trip creation. Availability starts at the trip's total.
func (h *ScheduleHandler) CreateTrip(c *gin.Context) {
	var req model.CreateTripAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	trip, err := h.repo.CreateTrip(model.CreateTripRequest{
		RouteID:       req.RouteID,
		DepartureTime: req.DepartureTime,
		SeatsTotal:    req.SeatsTotal,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Route not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create trip",
		})
		return
	}

	c.JSON(http.StatusCreated, trip.ToTripResponse())
}

// SearchTrips returns trips for a route on a given day
func (h *ScheduleHandler) SearchTrips(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	dateStr := c.Query("date")

	if origin == "" || destination == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "origin, destination, and date are required",
		})
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "date must be formatted as YYYY-MM-DD",
		})
		return
	}

	trips, err := h.repo.SearchTrips(model.TripFilter{
		Origin:      origin,
		Destination: destination,
		Date:        date,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to search trips",
		})
		return
	}

	responses := make([]*model.TripResponse, 0, len(trips))
	for i := range trips {
		responses = append(responses, trips[i].ToTripResponse())
	}

	c.JSON(http.StatusOK, responses)
}

// GetTrip handles retrieving a single trip by ID
func (h *ScheduleHandler) GetTrip(c *gin.Context) {
	tripID := c.Param("id")

	// Try cache first
	trip, err := h.cache.GetTrip(tripID)
	if err != nil || trip == nil {
		trip, err = h.repo.GetTripByID(tripID)
		if err != nil {
			if errors.Is(err, repository.ErrTripNotFound) {
				c.JSON(http.StatusNotFound, model.ErrorResponse{
					Error:   "not_found",
					Message: "Trip not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to retrieve trip",
			})
			return
		}

		h.cache.SetTrip(tripID, trip, tripCacheTTL)
	}

	response := trip.ToTripResponse()

	// Trip details cache longer than the seat counter, so refresh the
	// availability separately
	if available, err := h.lookupAvailability(tripID); err == nil {
		response.SeatsAvailable = available
	}

	c.JSON(http.StatusOK, response)
}

// GetAvailability returns the advisory seat availability for a trip. A 200
// here is never a promise that a subsequent allocation will succeed.
func (h *ScheduleHandler) GetAvailability(c *gin.Context) {
	tripID := c.Param("id")

	available, err := h.lookupAvailability(tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Trip not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve availability",
		})
		return
	}

	c.JSON(http.StatusOK, model.AvailabilityResponse{
		TripID:         tripID,
		SeatsAvailable: available,
	})
}

func (h *ScheduleHandler) lookupAvailability(tripID string) (int, error) {
	if available, err := h.cache.GetAvailability(tripID); err == nil && available >= 0 {
		return available, nil
	}

	available, err := h.repo.GetAvailability(tripID)
	if err != nil {
		return 0, err
	}

	h.cache.SetAvailability(tripID, available, availabilityCacheTTL)
	return available, nil
}

// AllocateSeats atomically claims seats on a trip. This is the authoritative
// path: the decision happens inside the repository's per-trip critical
// section, never against cached reads.
func (h *ScheduleHandler) AllocateSeats(c *gin.Context) {
	tripID := c.Param("id")

	var req model.SeatCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "count must be a positive integer",
		})
		return
	}

	available, err := h.repo.AllocateSeats(tripID, req.Count)
	if err != nil {
		var insufficientErr *repository.InsufficientSeatsError
		switch {
		case errors.Is(err, repository.ErrTripNotFound):
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Trip not found",
			})
		case errors.As(err, &insufficientErr):
			c.JSON(http.StatusConflict, model.InsufficientSeatsResponse{
				Error:     "insufficient_seats",
				Available: insufficientErr.Available,
			})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to allocate seats",
			})
		}
		return
	}

	h.invalidateTripCaches(tripID)

	c.JSON(http.StatusOK, model.AllocateResponse{
		TripID:         tripID,
		Allocated:      req.Count,
		SeatsAvailable: available,
	})
}

// ReleaseSeats returns seats to a trip, clamped at the trip's total. The
// response reports the increase actually applied, so duplicate compensations
// surface as released=0 rather than an error.
func (h *ScheduleHandler) ReleaseSeats(c *gin.Context) {
	tripID := c.Param("id")

	var req model.SeatCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "count must be a positive integer",
		})
		return
	}

	released, available, err := h.repo.ReleaseSeats(tripID, req.Count)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Trip not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to release seats",
		})
		return
	}

	h.invalidateTripCaches(tripID)

	c.JSON(http.StatusOK, model.ReleaseResponse{
		TripID:         tripID,
		Released:       released,
		SeatsAvailable: available,
	})
}

func (h *ScheduleHandler) invalidateTripCaches(tripID string) {
	h.cache.InvalidateAvailability(tripID)
	h.cache.InvalidateTrip(tripID)
}

// HealthCheck handles health check endpoint
func (h *ScheduleHandler) HealthCheck(c *gin.Context) {
	if err := h.repo.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Database ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Service:   "schedule-service",
		Timestamp: time.Now(),
	})
}
