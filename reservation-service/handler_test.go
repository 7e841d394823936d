package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/arunvm123/busreservation/reservation-service/events"
	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository/memory"
	"github.com/arunvm123/busreservation/reservation-service/saga"
	"github.com/arunvm123/busreservation/reservation-service/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScheduleService serves a single trip with real allocate/release
// semantics
type stubScheduleService struct {
	mu             sync.Mutex
	tripID         string
	seatsTotal     int
	seatsAvailable int
	releaseCalls   int
}

func (s *stubScheduleService) GetAvailability(tripID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tripID != s.tripID {
		return 0, service.ErrTripNotFound
	}
	return s.seatsAvailable, nil
}

func (s *stubScheduleService) AllocateSeats(tripID string, count int) (*service.AllocationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tripID != s.tripID {
		return nil, service.ErrTripNotFound
	}
	if s.seatsAvailable < count {
		return nil, &service.InsufficientSeatsError{Available: s.seatsAvailable}
	}
	s.seatsAvailable -= count
	return &service.AllocationResult{TripID: tripID, Allocated: count, SeatsAvailable: s.seatsAvailable}, nil
}

func (s *stubScheduleService) ReleaseSeats(tripID string, count int) (*service.ReleaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCalls++
	if tripID != s.tripID {
		return nil, service.ErrTripNotFound
	}
	newAvailable := s.seatsAvailable + count
	if newAvailable > s.seatsTotal {
		newAvailable = s.seatsTotal
	}
	released := newAvailable - s.seatsAvailable
	s.seatsAvailable = newAvailable
	return &service.ReleaseResult{TripID: tripID, Released: released, SeatsAvailable: newAvailable}, nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *memory.MemoryReservationRepository
	schedule *stubScheduleService
	token    string
}

func newTestEnv(t *testing.T, seats int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewReservationRepository()
	schedule := &stubScheduleService{tripID: "trip-1", seatsTotal: seats, seatsAvailable: seats}
	orchestrator := saga.NewOrchestrator(repo, schedule, events.NewNoopPublisher())
	jwtService := NewJWTService("test-secret")
	handler := NewReservationHandler(orchestrator, repo, jwtService)

	r := gin.New()
	r.POST("/register", handler.RegisterUser)
	r.POST("/login", handler.LoginUser)

	protected := r.Group("")
	protected.Use(AuthMiddleware(jwtService))
	protected.POST("/reservations", handler.CreateReservation)
	protected.POST("/reservations/:id/cancel", handler.CancelReservation)
	protected.GET("/reservations", handler.ListReservations)
	protected.GET("/reservations/:id", handler.GetReservation)

	user, err := repo.CreateUser(model.CreateUserRequest{
		Email:     "jane@example.com",
		Password:  "password123",
		FirstName: "Jane",
		LastName:  "Passenger",
	})
	require.NoError(t, err)

	token, err := jwtService.GenerateToken(user)
	require.NoError(t, err)

	return &testEnv{router: r, repo: repo, schedule: schedule, token: token}
}

func (e *testEnv) do(method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) book(t *testing.T, seats int) model.ReservationResponse {
	t.Helper()
	w := e.do(http.MethodPost, "/reservations", model.BookReservationRequest{
		TripID:        "trip-1",
		PassengerName: "Jane Passenger",
		Seats:         seats,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp model.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateReservationEndpoint(t *testing.T) {
	env := newTestEnv(t, 40)

	resp := env.book(t, 3)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "trip-1", resp.TripID)
	assert.Equal(t, "Jane Passenger", resp.PassengerName)
	assert.Equal(t, 3, resp.SeatsBooked)
	assert.Equal(t, model.StatusBooked, resp.Status)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestCreateReservationValidation(t *testing.T) {
	env := newTestEnv(t, 40)

	w := env.do(http.MethodPost, "/reservations", map[string]interface{}{
		"trip_id": "trip-1",
		"seats":   0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/reservations", map[string]interface{}{
		"passenger_name": "Jane",
		"seats":          2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationInsufficientSeats(t *testing.T) {
	env := newTestEnv(t, 2)

	w := env.do(http.MethodPost, "/reservations", model.BookReservationRequest{
		TripID:        "trip-1",
		PassengerName: "Jane Passenger",
		Seats:         3,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp model.InsufficientSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_seats", resp.Error)
	assert.Equal(t, 2, resp.Available)

	// No record may exist for the failed attempt
	reservations, err := env.repo.ListReservations("")
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestCreateReservationUnknownTrip(t *testing.T) {
	env := newTestEnv(t, 40)

	w := env.do(http.MethodPost, "/reservations", model.BookReservationRequest{
		TripID:        "ghost-trip",
		PassengerName: "Jane Passenger",
		Seats:         1,
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCancelReservationEndpoint(t *testing.T) {
	env := newTestEnv(t, 40)
	booked := env.book(t, 3)

	w := env.do(http.MethodPost, "/reservations/"+booked.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.StatusCancelled, resp.Status)
	assert.Equal(t, booked.ID, resp.ID)
	assert.Equal(t, 1, env.schedule.releaseCalls)

	// Cancelling again returns the unchanged record without another release
	w = env.do(http.MethodPost, "/reservations/"+booked.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var second model.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, resp, second)
	assert.Equal(t, 1, env.schedule.releaseCalls)
}

func TestCancelReservationNotFound(t *testing.T) {
	env := newTestEnv(t, 40)

	w := env.do(http.MethodPost, "/reservations/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAndListReservations(t *testing.T) {
	env := newTestEnv(t, 40)
	booked := env.book(t, 2)

	w := env.do(http.MethodGet, "/reservations/"+booked.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/reservations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/reservations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []model.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, booked.ID, list[0].ID)
}

func TestReservationsRequireAuth(t *testing.T) {
	env := newTestEnv(t, 40)

	req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, 40)

	w := env.do(http.MethodPost, "/register", model.RegisterRequest{
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "New",
		LastName:  "User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate registration is rejected
	w = env.do(http.MethodPost, "/register", model.RegisterRequest{
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "New",
		LastName:  "User",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/login", model.LoginRequest{
		Email:    "new@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "new@example.com", login.User.Email)

	w = env.do(http.MethodPost, "/login", model.LoginRequest{
		Email:    "new@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
