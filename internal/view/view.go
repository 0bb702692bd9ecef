package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

// ErrMalformedStats indicates a telemetry submission with non-numeric
// values.
var ErrMalformedStats = errors.New("malformed vehicle stats")

// View reads a driver's slice of the current assignment and merges it
// with the driver-declared telemetry held on the session.
type View struct {
	store    store.Store
	sessions *auth.SessionTable
}

// New creates a driver view adapter.
func New(st store.Store, sessions *auth.SessionTable) *View {
	return &View{store: st, sessions: sessions}
}

// Orders returns the driver's current order list. A vehicle with no
// assignment entry gets an empty list; "no orders yet" is a valid,
// common state, never an error.
func (v *View) Orders(ctx context.Context, vehicleNo string) ([]models.Order, error) {
	doc, err := v.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	orders, ok := doc.Assignments[registry.Normalize(vehicleNo)]
	if !ok {
		return []models.Order{}, nil
	}
	return orders, nil
}

// SetStats validates and stores a telemetry submission on the session,
// overwriting any previous snapshot wholesale.
func (v *View) SetStats(sessionID string, req models.StatsRequest) (*models.VehicleStats, error) {
	temp, err := parseStat("temp", req.Temp)
	if err != nil {
		return nil, err
	}
	load, err := parseStat("load", req.Load)
	if err != nil {
		return nil, err
	}
	battery, err := parseStat("battery", req.Battery)
	if err != nil {
		return nil, err
	}

	stats := models.VehicleStats{Temp: temp, Load: load, Battery: battery}
	if !v.sessions.SetStats(sessionID, stats) {
		return nil, auth.ErrUnauthorized
	}
	return &stats, nil
}

// Stats returns the session's current telemetry snapshot, if any.
func (v *View) Stats(sessionID string) (*models.VehicleStats, bool) {
	return v.sessions.Stats(sessionID)
}

// Summary describes the fleet for the admin dashboard: how many drivers
// are registered and how many have a non-empty assignment.
type Summary struct {
	Drivers  int `json:"drivers"`
	Assigned int `json:"assigned"`
	Orders   int `json:"orders"`
}

// Summarize computes driver count and assignment coverage.
func (v *View) Summarize(ctx context.Context) (*Summary, error) {
	doc, err := v.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{Drivers: len(doc.Drivers)}
	for _, orders := range doc.Assignments {
		if len(orders) > 0 {
			s.Assigned++
			s.Orders += len(orders)
		}
	}
	return s, nil
}

func parseStat(name, raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric %s %q", ErrMalformedStats, name, raw)
	}
	return value, nil
}
