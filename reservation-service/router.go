package main

import (
	"log"

	"github.com/arunvm123/busreservation/reservation-service/config"
	"github.com/arunvm123/busreservation/reservation-service/events"
	kafkaEvents "github.com/arunvm123/busreservation/reservation-service/events/kafka"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"github.com/arunvm123/busreservation/reservation-service/repository/memory"
	"github.com/arunvm123/busreservation/reservation-service/repository/postgres"
	"github.com/arunvm123/busreservation/reservation-service/saga"
	httpservice "github.com/arunvm123/busreservation/reservation-service/service/http"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	var repo repository.ReservationRepository

	if cfg.UseMemoryStore {
		log.Println("Using in-memory reservation store")
		repo = memory.NewReservationRepository()
	} else {
		pgRepo, err := postgres.NewReservationRepository(cfg.Database.GetDatabaseURL())
		if err != nil {
			log.Fatal("Failed to initialize repository:", err)
		}
		repo = pgRepo
	}

	// Initialize Schedule Service client with connection pooling
	scheduleService := httpservice.NewHTTPScheduleServiceWithConfig(&cfg.ScheduleService, cfg.JWTSecret)

	// Initialize event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = kafkaEvents.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReservationTopic)
	} else {
		publisher = events.NewNoopPublisher()
	}

	// Initialize saga orchestrator
	orchestrator := saga.NewOrchestrator(repo, scheduleService, publisher)

	// Initialize JWT service
	jwtService := NewJWTService(cfg.JWTSecret)

	// Initialize handlers
	reservationHandler := NewReservationHandler(orchestrator, repo, jwtService)

	// Setup Gin router
	r := gin.Default()

	// Add middleware
	r.Use(CORSMiddleware())
	r.Use(LoggingMiddleware())

	// Health check endpoint (no auth required)
	r.GET("/health", reservationHandler.HealthCheck)

	// User endpoints
	r.POST("/register", reservationHandler.RegisterUser)
	r.POST("/login", reservationHandler.LoginUser)

	// Protected reservation endpoints (require authentication)
	protected := r.Group("")
	protected.Use(AuthMiddleware(jwtService))
	protected.POST("/reservations", reservationHandler.CreateReservation)
	protected.POST("/reservations/:id/cancel", reservationHandler.CancelReservation)
	protected.GET("/reservations", reservationHandler.ListReservations)
	protected.GET("/reservations/:id", reservationHandler.GetReservation)

	return r
}
