package repository

import (
	"errors"

	"github.com/arunvm123/busreservation/reservation-service/model"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
)

// ReservationRepository defines the interface for reservation data
// operations. The repository is plain keyed storage: status transition
// legality is enforced by the orchestrator, not here.
type ReservationRepository interface {
	// Reservation operations
	CreateReservation(req model.CreateReservationRequest) (*model.Reservation, error)
	GetReservationByID(reservationID string) (*model.Reservation, error)
	ListReservations(bookedBy string) ([]model.Reservation, error)
	UpdateReservationStatus(reservationID, status string) (*model.Reservation, error)

	// User operations
	CreateUser(req model.CreateUserRequest) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	ValidatePassword(user *model.User, password string) bool

	// Health check
	Ping() error
}
