package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryReservationRepository is an in-memory ReservationRepository used for
// tests and local development.
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*model.Reservation
	usersByEmail map[string]*model.User
}

func NewReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		reservations: make(map[string]*model.Reservation),
		usersByEmail: make(map[string]*model.User),
	}
}

// Reservation operations
func (r *MemoryReservationRepository) CreateReservation(req model.CreateReservationRequest) (*model.Reservation, error) {
	reservation := &model.Reservation{
		ID:            uuid.New().String(),
		TripID:        req.TripID,
		PassengerName: req.PassengerName,
		SeatsBooked:   req.SeatsBooked,
		Status:        model.StatusBooked,
		BookedBy:      req.BookedBy,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	r.mu.Lock()
	r.reservations[reservation.ID] = reservation
	r.mu.Unlock()

	copied := *reservation
	return &copied, nil
}

func (r *MemoryReservationRepository) GetReservationByID(reservationID string) (*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.reservations[reservationID]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}

	copied := *reservation
	return &copied, nil
}

func (r *MemoryReservationRepository) ListReservations(bookedBy string) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reservations []model.Reservation
	for _, reservation := range r.reservations {
		if bookedBy != "" && reservation.BookedBy != bookedBy {
			continue
		}
		reservations = append(reservations, *reservation)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (r *MemoryReservationRepository) UpdateReservationStatus(reservationID, status string) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reservation, ok := r.reservations[reservationID]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}

	reservation.Status = status
	reservation.UpdatedAt = time.Now().UTC()

	copied := *reservation
	return &copied, nil
}

// User operations
func (r *MemoryReservationRepository) CreateUser(req model.CreateUserRequest) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[req.Email]; exists {
		return nil, repository.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	r.usersByEmail[user.Email] = user

	copied := *user
	return &copied, nil
}

func (r *MemoryReservationRepository) GetUserByEmail(email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *MemoryReservationRepository) ValidatePassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

func (r *MemoryReservationRepository) Ping() error {
	return nil
}
