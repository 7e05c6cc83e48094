package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour-booking/internal/config"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/middleware"
	"tour-booking/internal/realtime"
	"tour-booking/internal/usecase/booking"
	"tour-booking/internal/usecase/review"
	"tour-booking/internal/usecase/tour"
	"tour-booking/internal/usecase/user"
	appErrors "tour-booking/pkg/errors"
)

type tokenGate map[string]*domainUser.User

func (g tokenGate) Authenticate(_ context.Context, token string) (*domainUser.User, error) {
	if u, ok := g[token]; ok {
		return u, nil
	}
	return nil, appErrors.ErrNotLoggedIn
}

func newRouter(t *testing.T, health func() error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Server.MaxRequestBytes = 10 << 10
	cfg.CORS.AllowedOrigins = []string{"*"}

	limiter := middleware.NewRateLimiter(100, 100)
	t.Cleanup(limiter.Close)

	gate := tokenGate{
		"member": {ID: uuid.New(), Name: "Max Smith", Role: domainUser.RoleUser, Active: true},
	}

	router, err := SetupRoutes(cfg, &Services{
		Gate:     gate,
		Users:    user.NewService(nil, nil, nil, nil, cfg),
		Admin:    user.NewAdminService(nil, 0),
		Tours:    tour.NewService(nil, nil, 0),
		Reviews:  review.NewService(nil, nil, 0),
		Bookings: booking.NewService(nil, nil, nil, 0),
		Live:     realtime.NewHub(nil),
		Limiter:  limiter,
		Health:   health,
	})
	require.NoError(t, err)
	return router
}

func request(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := request(newRouter(t, func() error { return nil }), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = request(newRouter(t, func() error { return errors.New("down") }), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouteGuards(t *testing.T) {
	r := newRouter(t, func() error { return nil })

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nowhere", status: http.StatusNotFound},
		{name: "profile needs a session", method: http.MethodGet, path: "/api/v1/users/me", status: http.StatusUnauthorized},
		{name: "reviews need a session", method: http.MethodGet, path: "/api/v1/reviews", status: http.StatusUnauthorized},
		{name: "monthly plan is for guides", method: http.MethodGet, path: "/api/v1/tours/monthly-plan/2021", token: "member", status: http.StatusForbidden},
		{name: "tour writes are for staff", method: http.MethodPost, path: "/api/v1/tours", token: "member", status: http.StatusForbidden},
		{name: "user admin is for admins", method: http.MethodGet, path: "/api/v1/users", token: "member", status: http.StatusForbidden},
		{name: "live feed is for staff", method: http.MethodGet, path: "/api/v1/bookings/live", token: "member", status: http.StatusForbidden},
		{name: "account page needs a session", method: http.MethodGet, path: "/me", status: http.StatusUnauthorized},
		{name: "account form needs a session", method: http.MethodPost, path: "/submit-user-data", status: http.StatusUnauthorized},
		{name: "login page", method: http.MethodGet, path: "/login", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
