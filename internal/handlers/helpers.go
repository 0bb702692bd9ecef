package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evroutex/fleet-dispatch/internal/assign"
	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
	"github.com/evroutex/fleet-dispatch/internal/view"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps typed failures to HTTP statuses. Each error kind stays
// distinguishable to the caller through the status and message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, registry.ErrDuplicateDriver):
		status = http.StatusConflict
	case errors.Is(err, registry.ErrInvalidDriver),
		errors.Is(err, assign.ErrMalformedInput),
		errors.Is(err, view.ErrMalformedStats):
		status = http.StatusBadRequest
	case errors.Is(err, assign.ErrNoDrivers),
		errors.Is(err, assign.ErrEmptyInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrPersistence):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
