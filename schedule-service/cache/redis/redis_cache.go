package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/arunvm123/busreservation/schedule-service/model"
	"github.com/redis/go-redis/v9"
)

type RedisCacheRepository struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCacheRepository(redisURL, password string, db int) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheRepository{
		client: client,
		ctx:    ctx,
	}, nil
}

// Cache key generators
func (r *RedisCacheRepository) tripKey(tripID string) string {
	return fmt.Sprintf("trip:%s:details", tripID)
}

func (r *RedisCacheRepository) availabilityKey(tripID string) string {
	return fmt.Sprintf("trip:%s:seats:available", tripID)
}

// Trip detail caching
func (r *RedisCacheRepository) GetTrip(tripID string) (*model.Trip, error) {
	key := r.tripKey(tripID)
	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip model.Trip
	if err := json.Unmarshal([]byte(data), &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *RedisCacheRepository) SetTrip(tripID string, trip *model.Trip, ttl time.Duration) error {
	key := r.tripKey(tripID)
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, data, ttl).Err()
}

func (r *RedisCacheRepository) InvalidateTrip(tripID string) error {
	return r.client.Del(r.ctx, r.tripKey(tripID)).Err()
}

// Availability caching
func (r *RedisCacheRepository) GetAvailability(tripID string) (int, error) {
	key := r.availabilityKey(tripID)
	value, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil // Cache miss
		}
		return -1, err
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return -1, err
	}
	return count, nil
}

func (r *RedisCacheRepository) SetAvailability(tripID string, seatsAvailable int, ttl time.Duration) error {
	key := r.availabilityKey(tripID)
	return r.client.Set(r.ctx, key, strconv.Itoa(seatsAvailable), ttl).Err()
}

func (r *RedisCacheRepository) InvalidateAvailability(tripID string) error {
	return r.client.Del(r.ctx, r.availabilityKey(tripID)).Err()
}
