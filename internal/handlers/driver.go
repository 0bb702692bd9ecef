package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/middleware"
	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/view"
)

// DriverHandler serves the driver-facing view: the driver's order list
// plus the current telemetry snapshot.
type DriverHandler struct {
	View *view.View
}

// routeResponse is the driver route view payload.
type routeResponse struct {
	VehicleNo string               `json:"vehicle_no"`
	Orders    []models.Order       `json:"orders"`
	Stats     *models.VehicleStats `json:"stats,omitempty"`
}

// Route returns the caller's assigned stops and declared vehicle stats.
// A vehicle_no query parameter, if present, must match the caller's own
// vehicle; drivers cannot read each other's routes.
func (h *DriverHandler) Route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	vehicleNo := r.URL.Query().Get("vehicle_no")
	if vehicleNo == "" && claims != nil {
		vehicleNo = claims.Identity
	}
	if err := auth.AuthorizeDriver(claims, vehicleNo); err != nil {
		writeError(w, err)
		return
	}

	orders, err := h.View.Orders(r.Context(), vehicleNo)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := routeResponse{VehicleNo: claims.Identity, Orders: orders}
	if stats, ok := h.View.Stats(claims.SessionID); ok {
		resp.Stats = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats records a telemetry submission against the caller's session,
// replacing any previous snapshot.
func (h *DriverHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Role != models.RoleDriver {
		writeError(w, auth.ErrUnauthorized)
		return
	}

	var req models.StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	stats, err := h.View.SetStats(claims.SessionID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
