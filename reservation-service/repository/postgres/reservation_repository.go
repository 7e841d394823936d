package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(databaseURL string) (*PostgresReservationRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate reservation and user tables
	if err := db.AutoMigrate(&model.Reservation{}, &model.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connected and Reservation tables migrated successfully")

	return &PostgresReservationRepository{db: db}, nil
}

// Reservation operations
func (r *PostgresReservationRepository) CreateReservation(req model.CreateReservationRequest) (*model.Reservation, error) {
	reservation := &model.Reservation{
		TripID:        req.TripID,
		PassengerName: req.PassengerName,
		SeatsBooked:   req.SeatsBooked,
		Status:        model.StatusBooked,
		BookedBy:      req.BookedBy,
	}

	if err := r.db.Create(reservation).Error; err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return reservation, nil
}

func (r *PostgresReservationRepository) GetReservationByID(reservationID string) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.Where("id = ?", reservationID).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *PostgresReservationRepository) ListReservations(bookedBy string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	query := r.db.Order("created_at DESC")
	if bookedBy != "" {
		query = query.Where("booked_by = ?", bookedBy)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *PostgresReservationRepository) UpdateReservationStatus(reservationID, status string) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.Where("id = ?", reservationID).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	reservation.Status = status
	if err := r.db.Model(&reservation).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return &reservation, nil
}

// User operations
func (r *PostgresReservationRepository) CreateUser(req model.CreateUserRequest) (*model.User, error) {
	var existingUser model.User
	if err := r.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if err := r.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (r *PostgresReservationRepository) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresReservationRepository) ValidatePassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

func (r *PostgresReservationRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
