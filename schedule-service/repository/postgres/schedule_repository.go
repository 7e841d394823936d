package postgres

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arunvm123/busreservation/schedule-service/model"
	"github.com/arunvm123/busreservation/schedule-service/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(databaseURL string) (*PostgresScheduleRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate route and trip tables
	if err := db.AutoMigrate(&model.Route{}, &model.Trip{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connected and Schedule tables migrated successfully")

	return &PostgresScheduleRepository{db: db}, nil
}

// Route operations
func (r *PostgresScheduleRepository) CreateRoute(req model.CreateRouteRequest) (*model.Route, error) {
	route := model.Route{
		Origin:      req.Origin,
		Destination: req.Destination,
	}

	if err := r.db.Create(&route).Error; err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return &route, nil
}

func (r *PostgresScheduleRepository) ListRoutes() ([]model.Route, error) {
	var routes []model.Route
	if err := r.db.Order("origin ASC, destination ASC").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// Trip operations
func (r *PostgresScheduleRepository) CreateTrip(req model.CreateTripRequest) (*model.Trip, error) {
	var route model.Route
	if err := r.db.Where("id = ?", req.RouteID).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to look up route: %w", err)
	}

	trip := model.Trip{
		RouteID:        req.RouteID,
		DepartureTime:  req.DepartureTime,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
	}

	if err := r.db.Create(&trip).Error; err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	trip.Route = route
	return &trip, nil
}

func (r *PostgresScheduleRepository) GetTripByID(tripID string) (*model.Trip, error) {
	var trip model.Trip
	if err := r.db.Preload("Route").Where("id = ?", tripID).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

func (r *PostgresScheduleRepository) SearchTrips(filter model.TripFilter) ([]model.Trip, error) {
	dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	var trips []model.Trip
	err := r.db.Preload("Route").
		Joins("JOIN routes ON routes.id = trips.route_id").
		Where("routes.origin = ? AND routes.destination = ?", filter.Origin, filter.Destination).
		Where("trips.departure_time BETWEEN ? AND ?", dayStart, dayEnd).
		Order("trips.departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}

	return trips, nil
}

// Seat inventory operations
//
// Both mutators run inside a transaction holding a SELECT ... FOR UPDATE
// row lock on the trip, so concurrent allocate/release calls against the
// same trip are strictly serialized. Trips lock independently.
func (r *PostgresScheduleRepository) AllocateSeats(tripID string, count int) (int, error) {
	var seatsAvailable int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var trip model.Trip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tripID).First(&trip).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrTripNotFound
			}
			return fmt.Errorf("failed to lock trip: %w", err)
		}

		if trip.SeatsAvailable < count {
			return &repository.InsufficientSeatsError{Available: trip.SeatsAvailable}
		}

		trip.SeatsAvailable -= count
		if err := tx.Model(&model.Trip{}).Where("id = ?", tripID).
			Update("seats_available", trip.SeatsAvailable).Error; err != nil {
			return fmt.Errorf("failed to update availability: %w", err)
		}

		seatsAvailable = trip.SeatsAvailable
		return nil
	})
	if err != nil {
		return 0, err
	}

	return seatsAvailable, nil
}

func (r *PostgresScheduleRepository) ReleaseSeats(tripID string, count int) (int, int, error) {
	var released, seatsAvailable int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var trip model.Trip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tripID).First(&trip).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrTripNotFound
			}
			return fmt.Errorf("failed to lock trip: %w", err)
		}

		// Clamp at the trip's total so duplicate releases cannot create
		// seats that never existed
		newAvailable := trip.SeatsAvailable + count
		if newAvailable > trip.SeatsTotal {
			newAvailable = trip.SeatsTotal
		}
		released = newAvailable - trip.SeatsAvailable

		if err := tx.Model(&model.Trip{}).Where("id = ?", tripID).
			Update("seats_available", newAvailable).Error; err != nil {
			return fmt.Errorf("failed to update availability: %w", err)
		}

		seatsAvailable = newAvailable
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return released, seatsAvailable, nil
}

func (r *PostgresScheduleRepository) GetAvailability(tripID string) (int, error) {
	var trip model.Trip
	if err := r.db.Select("seats_available").Where("id = ?", tripID).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, repository.ErrTripNotFound
		}
		return 0, fmt.Errorf("failed to get availability: %w", err)
	}
	return trip.SeatsAvailable, nil
}

// SeedIfEmpty populates a demo schedule on first boot: three route pairs,
// each with departures 2, 6 and 10 hours out and 40 seats per trip.
func (r *PostgresScheduleRepository) SeedIfEmpty() error {
	var count int64
	if err := r.db.Model(&model.Route{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count routes: %w", err)
	}
	if count > 0 {
		return nil
	}

	routePairs := [][2]string{
		{"City A", "City B"},
		{"City A", "City C"},
		{"City B", "City C"},
	}
	now := time.Now().UTC().Truncate(time.Hour)

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, pair := range routePairs {
			route := model.Route{Origin: pair[0], Destination: pair[1]}
			if err := tx.Create(&route).Error; err != nil {
				return fmt.Errorf("failed to seed route: %w", err)
			}
			for _, h := range []int{2, 6, 10} {
				trip := model.Trip{
					RouteID:        route.ID,
					DepartureTime:  now.Add(time.Duration(h) * time.Hour),
					SeatsTotal:     40,
					SeatsAvailable: 40,
				}
				if err := tx.Create(&trip).Error; err != nil {
					return fmt.Errorf("failed to seed trip: %w", err)
				}
			}
		}
		return nil
	})
}

func (r *PostgresScheduleRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
