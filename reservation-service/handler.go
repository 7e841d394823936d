package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"github.com/arunvm123/busreservation/reservation-service/saga"
	"github.com/arunvm123/busreservation/reservation-service/service"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	orchestrator *saga.Orchestrator
	repo         repository.ReservationRepository
	jwtService   *JWTService
}

func NewReservationHandler(orchestrator *saga.Orchestrator, repo repository.ReservationRepository, jwtService *JWTService) *ReservationHandler {
	return &ReservationHandler{
		orchestrator: orchestrator,
		repo:         repo,
		jwtService:   jwtService,
	}
}

// CreateReservation handles booking submission through the saga
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req model.BookReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	bookedBy, _ := userID.(string)

	reservation, err := h.orchestrator.CreateReservation(model.CreateReservationRequest{
		TripID:        req.TripID,
		PassengerName: req.PassengerName,
		SeatsBooked:   req.Seats,
		BookedBy:      bookedBy,
	})
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation.ToReservationResponse())
}

// CancelReservation handles reservation cancellation. Cancelling an already
// cancelled reservation returns the unchanged record.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservationID := c.Param("id")

	reservation, err := h.orchestrator.CancelReservation(reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Reservation not found",
			})
			return
		}
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation.ToReservationResponse())
}

// GetReservation returns a single reservation by ID
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservation, err := h.orchestrator.GetReservation(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "not_found",
				Message: "Reservation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve reservation",
		})
		return
	}

	c.JSON(http.StatusOK, reservation.ToReservationResponse())
}

// ListReservations returns the authenticated user's reservations
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	userID, _ := c.Get("user_id")
	bookedBy, _ := userID.(string)

	reservations, err := h.orchestrator.ListReservations(bookedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve reservations",
		})
		return
	}

	responses := make([]*model.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToReservationResponse())
	}

	c.JSON(http.StatusOK, responses)
}

// renderBookingError maps saga failures to wire responses. Inventory
// rejections pass through with their payload so the caller sees the true
// cause, including the availability observed upstream.
func (h *ReservationHandler) renderBookingError(c *gin.Context, err error) {
	var insufficientErr *service.InsufficientSeatsError
	var upstreamErr *service.UpstreamError

	switch {
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusConflict, model.InsufficientSeatsResponse{
			Error:     "insufficient_seats",
			Available: insufficientErr.Available,
		})
	case errors.Is(err, service.ErrTripNotFound):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "trip_not_found_or_service_unavailable",
			Message: "Trip not found on schedule service",
		})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "upstream_unavailable",
			Message: upstreamErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

// RegisterUser handles user registration
func (h *ReservationHandler) RegisterUser(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.repo.CreateUser(model.CreateUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: "Email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create user",
		})
		return
	}

	c.JSON(http.StatusCreated, user.ToUserResponse())
}

// LoginUser handles user authentication
func (h *ReservationHandler) LoginUser(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.repo.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid email or password",
		})
		return
	}

	if !h.repo.ValidatePassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid email or password",
		})
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		AccessToken: token,
		ExpiresIn:   3600, // 1 hour in seconds
		User:        *user.ToUserResponse(),
	})
}

// HealthCheck handles health check endpoint
func (h *ReservationHandler) HealthCheck(c *gin.Context) {
	if err := h.repo.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Database ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Service:   "reservation-service",
		Timestamp: time.Now(),
	})
}
