package assign

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

var (
	// ErrNoDrivers indicates an assignment run was attempted with an
	// empty driver pool.
	ErrNoDrivers = errors.New("no drivers registered")

	// ErrEmptyInput indicates the order table contains no rows.
	ErrEmptyInput = errors.New("order table is empty")

	// ErrMalformedInput indicates a row is missing a coordinate column or
	// carries a non-numeric coordinate value.
	ErrMalformedInput = errors.New("malformed order table")
)

// Engine partitions an order table into per-driver batches by spatial
// proximity and commits the result to the document store.
type Engine struct {
	store store.Store
}

// NewEngine creates an assignment engine backed by the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// Assign partitions orders across drivers. The order table is clustered
// into k = min(len(drivers), len(orders)) geographic groups and cluster
// i goes to drivers[i]; drivers beyond k receive empty lists
// (under-subscription is not redistributed). Row order within each
// driver's list follows the input table.
func Assign(ctx context.Context, orders []models.Order, drivers []models.Driver) (models.Assignment, error) {
	if len(drivers) == 0 {
		return nil, ErrNoDrivers
	}
	if len(orders) == 0 {
		return nil, ErrEmptyInput
	}

	points := make([]point, len(orders))
	for i, order := range orders {
		lat, lon, err := order.Coordinates()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, i+1, err)
		}
		points[i] = point{lat: lat, lon: lon}
	}

	k := len(drivers)
	if len(orders) < k {
		k = len(orders)
	}

	labels, err := cluster(ctx, points, k)
	if err != nil {
		return nil, err
	}

	assignment := make(models.Assignment, len(drivers))
	for _, d := range drivers {
		assignment[d.VehicleNo] = []models.Order{}
	}
	for i, label := range labels {
		vehicleNo := drivers[label].VehicleNo
		assignment[vehicleNo] = append(assignment[vehicleNo], orders[i])
	}
	return assignment, nil
}

// Run clusters orders against the driver pool read from the store and
// commits the result as a full replacement of the current assignments.
// Reading the driver snapshot and writing the assignment happen inside a
// single store update, so a registration racing the run cannot produce a
// key outside the driver set.
func (e *Engine) Run(ctx context.Context, orders []models.Order) (models.Assignment, error) {
	var assignment models.Assignment
	err := e.store.Update(ctx, func(doc *models.Document) error {
		a, err := Assign(ctx, orders, doc.Drivers)
		if err != nil {
			return err
		}
		doc.Assignments = a
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"orders":  len(orders),
		"drivers": len(assignment),
	}).Info("Committed assignment run")
	return assignment, nil
}
