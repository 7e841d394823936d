package model

import (
	"time"
)

// Reservation status values. The only legal transition is
// StatusBooked -> StatusCancelled; records are never deleted.
const (
	StatusBooked    = "BOOKED"
	StatusCancelled = "CANCELLED"
)

// ===============================
// Database Entities (Internal)
// ===============================

// Reservation represents a booking held against a trip. TripID is an opaque
// reference owned by the schedule service and is never validated locally.
// SeatsBooked is immutable after creation.
type Reservation struct {
	ID            string `gorm:"type:text;primary_key;default:gen_random_uuid()"`
	TripID        string `gorm:"type:text;not null;index"`
	PassengerName string `gorm:"type:varchar(120);not null"`
	SeatsBooked   int    `gorm:"not null"`
	Status        string `gorm:"type:varchar(20);not null;default:'BOOKED'"`
	BookedBy      string `gorm:"type:text;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User represents a passenger account
type User struct {
	ID           string `gorm:"type:text;primary_key;default:gen_random_uuid()"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Conversion methods to API DTOs
func (r *Reservation) ToReservationResponse() *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID,
		TripID:        r.TripID,
		PassengerName: r.PassengerName,
		SeatsBooked:   r.SeatsBooked,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

func (u *User) ToUserResponse() *UserResponse {
	return &UserResponse{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// ===============================
// Repository DTOs (Internal)
// ===============================

// CreateReservationRequest represents input for persisting a reservation
type CreateReservationRequest struct {
	TripID        string
	PassengerName string
	SeatsBooked   int
	BookedBy      string
}

// CreateUserRequest represents input for creating a user. Password arrives
// in plain text and is hashed inside the repository.
type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ===============================
// API DTOs (External)
// ===============================

// BookReservationRequest represents the reservation creation request from API
type BookReservationRequest struct {
	TripID        string `json:"trip_id" binding:"required"`
	PassengerName string `json:"passenger_name" binding:"required"`
	Seats         int    `json:"seats" binding:"required,gt=0"`
}

// ReservationResponse represents reservation data in API responses
type ReservationResponse struct {
	ID            string    `json:"id"`
	TripID        string    `json:"trip_id"`
	PassengerName string    `json:"passenger_name"`
	SeatsBooked   int       `json:"seats_booked"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// InsufficientSeatsResponse is the conflict payload passed through from the
// schedule service when a booking asks for more seats than remain
type InsufficientSeatsResponse struct {
	Error     string `json:"error"`
	Available int    `json:"available"`
}

// RegisterRequest represents the user registration request from API
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// LoginRequest represents the user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse represents the response for user login
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
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
