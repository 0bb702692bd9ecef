package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	st := store.NewFileStore(
		filepath.Join(t.TempDir(), "state.json"),
		store.Bootstrap{AdminUsername: "admin", AdminPassword: "admin@123"},
	)
	return New(st), st
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "KA01AB1234", Normalize("  ka01ab1234 "))
	assert.Equal(t, "KA01AB1234", Normalize("KA01AB1234"))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, id := range []string{"ka01ab1234", "  MH 12 xy 99 ", "", "TN-07-aa-0001"} {
		assert.Equal(t, Normalize(id), Normalize(Normalize(id)))
	}
}

func TestRegistry_Register(t *testing.T) {
	reg, _ := newTestRegistry(t)

	driver, err := reg.Register(context.Background(), models.RegisterRequest{
		VehicleNo: " ka01ab1234 ",
		Company:   "Tata",
		Model:     "Nexon EV",
		RangeKm:   312,
	})
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", driver.VehicleNo)
	assert.Equal(t, "Tata", driver.Company)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg, st := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, models.RegisterRequest{VehicleNo: "KA01AB1234", RangeKm: 300})
	require.NoError(t, err)

	// Case and whitespace variants collide with the stored key, and a
	// rejected registration must not mutate the store.
	_, err = reg.Register(ctx, models.RegisterRequest{VehicleNo: " ka01ab1234", RangeKm: 250})
	assert.ErrorIs(t, err, ErrDuplicateDriver)

	doc, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Drivers, 1)
	assert.Equal(t, 300.0, doc.Drivers[0].RangeKm)
}

func TestRegistry_Register_Invalid(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, models.RegisterRequest{VehicleNo: "  ", RangeKm: 300})
	assert.ErrorIs(t, err, ErrInvalidDriver)

	_, err = reg.Register(ctx, models.RegisterRequest{VehicleNo: "KA01AB1234", RangeKm: 0})
	assert.ErrorIs(t, err, ErrInvalidDriver)
}

func TestRegistry_Find(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, models.RegisterRequest{VehicleNo: "KA01AB1234", RangeKm: 300})
	require.NoError(t, err)

	driver, err := reg.Find(ctx, "ka01ab1234  ")
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", driver.VehicleNo)

	_, err = reg.Find(ctx, "MH12XY9999")
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestRegistry_Drivers(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	drivers, err := reg.Drivers(ctx)
	require.NoError(t, err)
	assert.Empty(t, drivers)

	_, err = reg.Register(ctx, models.RegisterRequest{VehicleNo: "KA01AB1234", RangeKm: 300})
	require.NoError(t, err)
	_, err = reg.Register(ctx, models.RegisterRequest{VehicleNo: "MH12XY9999", RangeKm: 420})
	require.NoError(t, err)

	drivers, err = reg.Drivers(ctx)
	require.NoError(t, err)
	assert.Len(t, drivers, 2)
}
