package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

var (
	// ErrDuplicateDriver indicates a vehicle number is already registered.
	ErrDuplicateDriver = errors.New("driver already registered")

	// ErrDriverNotFound indicates no driver matches the vehicle number.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrInvalidDriver indicates a registration request failed validation.
	ErrInvalidDriver = errors.New("invalid driver")
)

// Normalize canonicalizes a vehicle identifier. Every comparison and
// storage key uses the normalized form so matching is case- and
// whitespace-insensitive end to end.
func Normalize(vehicleNo string) string {
	return strings.ToUpper(strings.TrimSpace(vehicleNo))
}

// Registry manages driver records in the document store.
type Registry struct {
	store store.Store
}

// New creates a registry backed by the given store.
func New(st store.Store) *Registry {
	return &Registry{store: st}
}

// Register appends a new driver. Registration is exclusive: a duplicate
// normalized vehicle number fails with ErrDuplicateDriver and leaves the
// store untouched.
func (r *Registry) Register(ctx context.Context, req models.RegisterRequest) (*models.Driver, error) {
	vehicleNo := Normalize(req.VehicleNo)
	if vehicleNo == "" {
		return nil, fmt.Errorf("%w: vehicle number is required", ErrInvalidDriver)
	}
	if req.RangeKm <= 0 {
		return nil, fmt.Errorf("%w: range must be a positive number", ErrInvalidDriver)
	}

	driver := models.Driver{
		VehicleNo: vehicleNo,
		Company:   req.Company,
		Model:     req.Model,
		RangeKm:   req.RangeKm,
	}

	err := r.store.Update(ctx, func(doc *models.Document) error {
		for _, d := range doc.Drivers {
			if Normalize(d.VehicleNo) == vehicleNo {
				return fmt.Errorf("%w: %s", ErrDuplicateDriver, vehicleNo)
			}
		}
		doc.Drivers = append(doc.Drivers, driver)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"vehicle_no": driver.VehicleNo,
		"company":    driver.Company,
		"model":      driver.Model,
	}).Info("Registered driver")
	return &driver, nil
}

// Find looks up a driver by normalized vehicle number.
func (r *Registry) Find(ctx context.Context, vehicleNo string) (*models.Driver, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	target := Normalize(vehicleNo)
	for _, d := range doc.Drivers {
		if Normalize(d.VehicleNo) == target {
			driver := d
			return &driver, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDriverNotFound, target)
}

// Drivers returns a snapshot of all registered drivers.
func (r *Registry) Drivers(ctx context.Context) ([]models.Driver, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Drivers, nil
}
