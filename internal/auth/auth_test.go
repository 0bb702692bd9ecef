package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

func newTestService(t *testing.T) (*Service, *SessionTable) {
	t.Helper()
	st := store.NewFileStore(
		filepath.Join(t.TempDir(), "state.json"),
		store.Bootstrap{AdminUsername: "admin", AdminPassword: "admin@123"},
	)
	sessions := NewSessionTable()
	return NewService("test-secret", time.Hour, st, registry.New(st), sessions), sessions
}

func registerTestDriver(t *testing.T, s *Service, vehicleNo string) *models.LoginResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), models.RegisterRequest{
		VehicleNo: vehicleNo,
		Company:   "Tata",
		Model:     "Nexon EV",
		RangeKm:   312,
	})
	require.NoError(t, err)
	return resp
}

func TestService_AdminLogin(t *testing.T) {
	service, _ := newTestService(t)

	resp, err := service.AdminLogin(context.Background(), "admin", "admin@123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, "admin", resp.Identity)
	assert.NotEmpty(t, resp.Token)
}

func TestService_AdminLogin_WrongPassword(t *testing.T) {
	service, sessions := newTestService(t)

	_, err := service.AdminLogin(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A failed login must not leave a session behind.
	_, ok := sessions.FindByIdentity("admin")
	assert.False(t, ok)
}

func TestService_AdminLogin_ExactMatchRequired(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	// Admin credentials are not normalized, unlike driver lookups.
	_, err := service.AdminLogin(ctx, "ADMIN", "admin@123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.AdminLogin(ctx, " admin", "admin@123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_DriverLogin(t *testing.T) {
	service, _ := newTestService(t)
	registerTestDriver(t, service, "KA01AB1234")

	// No password: possession of the vehicle number is the credential,
	// and lookups are case/whitespace-insensitive.
	resp, err := service.DriverLogin(context.Background(), "  ka01ab1234 ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDriver, resp.Role)
	assert.Equal(t, "KA01AB1234", resp.Identity)
}

func TestService_DriverLogin_Unknown(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.DriverLogin(context.Background(), "MH12XY9999")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Register_AutoLogin(t *testing.T) {
	service, sessions := newTestService(t)

	resp := registerTestDriver(t, service, "KA01AB1234")
	assert.Equal(t, models.RoleDriver, resp.Role)

	claims, err := service.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", claims.Identity)

	_, ok := sessions.FindByIdentity("KA01AB1234")
	assert.True(t, ok)
}

func TestService_Register_Duplicate(t *testing.T) {
	service, _ := newTestService(t)
	registerTestDriver(t, service, "KA01AB1234")

	_, err := service.Register(context.Background(), models.RegisterRequest{
		VehicleNo: "ka01ab1234",
		RangeKm:   100,
	})
	assert.ErrorIs(t, err, registry.ErrDuplicateDriver)
}

func TestService_Logout_InvalidatesToken(t *testing.T) {
	service, _ := newTestService(t)
	resp := registerTestDriver(t, service, "KA01AB1234")

	claims, err := service.Authenticate(resp.Token)
	require.NoError(t, err)

	service.Logout(claims.SessionID)

	_, err = service.Authenticate(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Authenticate_BadToken(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Authenticate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Authenticate_BearerPrefix(t *testing.T) {
	service, _ := newTestService(t)
	resp := registerTestDriver(t, service, "KA01AB1234")

	claims, err := service.Authenticate("Bearer " + resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", claims.Identity)
}

func TestAuthorizeAdmin(t *testing.T) {
	assert.NoError(t, AuthorizeAdmin(&models.Claims{Role: models.RoleAdmin}))
	assert.ErrorIs(t, AuthorizeAdmin(&models.Claims{Role: models.RoleDriver}), ErrUnauthorized)
	assert.ErrorIs(t, AuthorizeAdmin(nil), ErrUnauthorized)
}

func TestAuthorizeDriver(t *testing.T) {
	claims := &models.Claims{Role: models.RoleDriver, Identity: "KA01AB1234"}

	assert.NoError(t, AuthorizeDriver(claims, "KA01AB1234"))
	assert.NoError(t, AuthorizeDriver(claims, " ka01ab1234"))
	assert.ErrorIs(t, AuthorizeDriver(claims, "MH12XY9999"), ErrUnauthorized)
	assert.ErrorIs(t, AuthorizeDriver(&models.Claims{Role: models.RoleAdmin, Identity: "KA01AB1234"}, "KA01AB1234"), ErrUnauthorized)
	assert.ErrorIs(t, AuthorizeDriver(nil, "KA01AB1234"), ErrUnauthorized)
}
