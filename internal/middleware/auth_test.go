package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

func newTestAuth(t *testing.T) *auth.Service {
	t.Helper()
	st := store.NewFileStore(
		filepath.Join(t.TempDir(), "state.json"),
		store.Bootstrap{AdminUsername: "admin", AdminPassword: "admin@123"},
	)
	return auth.NewService("test-secret", time.Hour, st, registry.New(st), auth.NewSessionTable())
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestAuthenticate_SkipsOpenPaths(t *testing.T) {
	mw := NewAuthMiddleware(newTestAuth(t))
	next, called := okHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(newTestAuth(t))
	next, called := okHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/driver/route", nil)
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(newTestAuth(t))
	next, called := okHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/driver/route", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	service := newTestAuth(t)
	mw := NewAuthMiddleware(service)

	resp, err := service.Register(httptest.NewRequest(http.MethodPost, "/", nil).Context(), models.RegisterRequest{
		VehicleNo: "KA01AB1234",
		RangeKm:   300,
	})
	require.NoError(t, err)

	var got *models.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/driver/route", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "KA01AB1234", got.Identity)
	assert.Equal(t, models.RoleDriver, got.Role)
}

func TestRequireRole(t *testing.T) {
	service := newTestAuth(t)
	mw := NewAuthMiddleware(service)
	next, called := okHandler()

	resp, err := service.Register(httptest.NewRequest(http.MethodPost, "/", nil).Context(), models.RegisterRequest{
		VehicleNo: "KA01AB1234",
		RangeKm:   300,
	})
	require.NoError(t, err)

	handler := mw.Authenticate(mw.RequireRole(models.RoleAdmin)(next))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	next, _ := okHandler()
	handler := limiter.Limit(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
