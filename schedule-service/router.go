package main

import (
	"log"

	"github.com/arunvm123/busreservation/schedule-service/cache"
	redisCache "github.com/arunvm123/busreservation/schedule-service/cache/redis"
	"github.com/arunvm123/busreservation/schedule-service/config"
	"github.com/arunvm123/busreservation/schedule-service/repository"
	"github.com/arunvm123/busreservation/schedule-service/repository/memory"
	"github.com/arunvm123/busreservation/schedule-service/repository/postgres"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	var repo repository.ScheduleRepository
	var cacheRepo cache.CacheRepository

	if cfg.UseMemoryStore {
		log.Println("Using in-memory schedule store")
		repo = memory.NewScheduleRepository()
		cacheRepo = cache.NewNoopCache()
	} else {
		pgRepo, err := postgres.NewScheduleRepository(cfg.Database.GetDatabaseURL())
		if err != nil {
			log.Fatal("Failed to initialize repository:", err)
		}
		repo = pgRepo

		cacheRepo, err = redisCache.NewRedisCacheRepository(cfg.Redis.GetRedisURL(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to initialize cache:", err)
		}
	}

	if cfg.SeedOnStart {
		if err := repo.SeedIfEmpty(); err != nil {
			log.Fatal("Failed to seed schedule data:", err)
		}
	}

	// Initialize JWT service
	jwtService := NewJWTService(cfg.JWTSecret)

	// Initialize handlers
	scheduleHandler := NewScheduleHandler(repo, cacheRepo)

	// Setup Gin router
	r := gin.Default()

	// Add middleware
	r.Use(CORSMiddleware())
	r.Use(LoggingMiddleware())

	// Health check endpoint (no auth required)
	r.GET("/health", scheduleHandler.HealthCheck)

	// Public read endpoints
	r.GET("/routes", scheduleHandler.ListRoutes)
	r.GET("/trips/search", scheduleHandler.SearchTrips)
	r.GET("/trips/:id", scheduleHandler.GetTrip)
	r.GET("/trips/:id/availability", scheduleHandler.GetAvailability)

	// Administrative endpoints (require authentication)
	admin := r.Group("")
	admin.Use(AuthMiddleware(jwtService))
	admin.POST("/routes", scheduleHandler.CreateRoute)
	admin.POST("/trips", scheduleHandler.CreateTrip)

	// Internal seat inventory endpoints (service-to-service only)
	internal := r.Group("")
	internal.Use(ServiceAuthMiddleware(cfg.JWTSecret))
	internal.POST("/trips/:id/allocate", scheduleHandler.AllocateSeats)
	internal.POST("/trips/:id/release", scheduleHandler.ReleaseSeats)

	return r
}
