package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arunvm123/busreservation/reservation-service/config"
	"github.com/arunvm123/busreservation/reservation-service/service"
)

type HTTPScheduleService struct {
	baseURL    string
	httpClient *http.Client
	authSecret string
}

func NewHTTPScheduleService(baseURL, authSecret string) *HTTPScheduleService {
	return &HTTPScheduleService{
		baseURL:    baseURL,
		authSecret: authSecret,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NewHTTPScheduleServiceWithConfig creates a new HTTP schedule service with connection pooling
func NewHTTPScheduleServiceWithConfig(cfg *config.ScheduleService, authSecret string) *HTTPScheduleService {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     time.Duration(cfg.IdleConnTimeout) * time.Second,
		DisableKeepAlives:   false,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPScheduleService{
		baseURL:    cfg.BaseURL,
		authSecret: authSecret,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
			Transport: transport,
		},
	}
}

// GetAvailability returns the current advisory seat count for a trip
func (s *HTTPScheduleService) GetAvailability(tripID string) (int, error) {
	url := fmt.Sprintf("%s/trips/%s/availability", s.baseURL, tripID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, &service.UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, service.ErrTripNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, &service.UpstreamError{Status: resp.StatusCode, Message: string(body)}
	}

	var payload struct {
		TripID         string `json:"trip_id"`
		SeatsAvailable int    `json:"seats_available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.SeatsAvailable, nil
}

// AllocateSeats atomically claims seats on a trip
func (s *HTTPScheduleService) AllocateSeats(tripID string, count int) (*service.AllocationResult, error) {
	url := fmt.Sprintf("%s/trips/%s/allocate", s.baseURL, tripID)

	resp, err := s.postSeatCount(url, count)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result service.AllocationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &result, nil

	case http.StatusNotFound:
		return nil, service.ErrTripNotFound

	case http.StatusConflict:
		var conflict struct {
			Error     string `json:"error"`
			Available int    `json:"available"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
			return nil, fmt.Errorf("failed to decode conflict response: %w", err)
		}
		return nil, &service.InsufficientSeatsError{Available: conflict.Available}

	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, &service.UpstreamError{Status: resp.StatusCode, Message: string(body)}
	}
}

// ReleaseSeats returns seats to a trip
func (s *HTTPScheduleService) ReleaseSeats(tripID string, count int) (*service.ReleaseResult, error) {
	url := fmt.Sprintf("%s/trips/%s/release", s.baseURL, tripID)

	resp, err := s.postSeatCount(url, count)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, service.ErrTripNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &service.UpstreamError{Status: resp.StatusCode, Message: string(body)}
	}

	var result service.ReleaseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (s *HTTPScheduleService) postSeatCount(url string, count int) (*http.Response, error) {
	payload, err := json.Marshal(map[string]int{"count": count})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add internal service authentication header
	req.Header.Set("X-Service-Auth", s.authSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Includes timeouts: the mutation may or may not have been applied
		return nil, &service.UpstreamError{Message: err.Error()}
	}

	return resp, nil
}
