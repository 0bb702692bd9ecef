package handlers

import (
	"net/http"

	"github.com/evroutex/fleet-dispatch/internal/middleware"
)

// NewRouter wires the HTTP surface. Handlers stay unaware of how the
// concrete store or broker were composed; this is the API composition
// root.
func NewRouter(
	authHandler *AuthHandler,
	assignHandler *AssignHandler,
	driverHandler *DriverHandler,
	adminHandler *AdminHandler,
	authMW *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Credential endpoints sit behind the rate limiter to slow down
	// guessing against the id-only driver login.
	mux.Handle("/api/auth/login", limiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("/api/auth/register", limiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)

	mux.HandleFunc("/api/admin/assign", assignHandler.Assign)
	mux.HandleFunc("/api/admin/summary", adminHandler.Summary)

	mux.HandleFunc("/api/driver/route", driverHandler.Route)
	mux.HandleFunc("/api/driver/stats", driverHandler.Stats)

	return authMW.Authenticate(mux)
}
