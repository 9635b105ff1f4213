package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/testutil"
)

func newCylinderService(store *testutil.MemStore) *CylinderService {
	return NewCylinderService(store, store, time.Second, logx.Nop())
}

func seedCylinder(store *testutil.MemStore, status domain.CylinderStatus) domain.Cylinder {
	c := domain.Cylinder{
		ID:           uuid.New(),
		SerialNumber: "CYL-" + uuid.NewString()[:8],
		SizeKg:       decimal.NewFromInt(9),
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	store.Cylinders[c.ID] = c
	return c
}

func TestCylinderService_RecordMovement_Genesis(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderFilled)

	depot := domain.Location{Type: domain.LocationDepot, ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}

	m, err := s.RecordMovement(context.Background(), c.ID, depot, vehicle, uuid.New())
	require.NoError(t, err)
	require.True(t, m.From.Equal(depot))
	require.True(t, m.To.Equal(vehicle))

	loc, err := s.CurrentLocation(context.Background(), c.ID)
	require.NoError(t, err)
	require.True(t, loc.Equal(vehicle))
}

func TestCylinderService_RecordMovement_StaleFromRejected(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderFilled)

	depot := domain.Location{Type: domain.LocationDepot, ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}
	customer := domain.Location{Type: domain.LocationCustomer, ID: uuid.New()}

	_, err := s.RecordMovement(context.Background(), c.ID, depot, vehicle, uuid.New())
	require.NoError(t, err)

	// claims the cylinder is still at the depot; the ledger says vehicle
	_, err = s.RecordMovement(context.Background(), c.ID, depot, customer, uuid.New())
	require.ErrorIs(t, err, apperr.ErrLocationMismatch)

	history, err := s.History(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "rejected move must append nothing")
}

func TestCylinderService_RecordMovement_StatusFollowsDestination(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderFilled)

	depot := domain.Location{Type: domain.LocationDepot, ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}
	customer := domain.Location{Type: domain.LocationCustomer, ID: uuid.New()}

	_, err := s.RecordMovement(context.Background(), c.ID, depot, vehicle, uuid.New())
	require.NoError(t, err)
	require.Equal(t, domain.CylinderInTransit, store.Cylinders[c.ID].Status)

	_, err = s.RecordMovement(context.Background(), c.ID, vehicle, customer, uuid.New())
	require.NoError(t, err)
	require.Equal(t, domain.CylinderWithCustomer, store.Cylinders[c.ID].Status)

	// back to the depot keeps whatever status the unit had
	_, err = s.RecordMovement(context.Background(), c.ID, customer, depot, uuid.New())
	require.NoError(t, err)
	require.Equal(t, domain.CylinderWithCustomer, store.Cylinders[c.ID].Status)
}

func TestCylinderService_RecordMovement_CondemnedRejected(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderCondemned)

	depot := domain.Location{Type: domain.LocationDepot, ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}

	_, err := s.RecordMovement(context.Background(), c.ID, depot, vehicle, uuid.New())
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCylinderService_RecordMovement_UnknownCylinder(t *testing.T) {
	t.Parallel()

	s := newCylinderService(testutil.NewMemStore())

	depot := domain.Location{Type: domain.LocationDepot, ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}

	_, err := s.RecordMovement(context.Background(), uuid.New(), depot, vehicle, uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCylinderService_RecordMovement_InvalidLocationType(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderFilled)

	bad := domain.Location{Type: domain.LocationType("warehouse"), ID: uuid.New()}
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: uuid.New()}

	_, err := s.RecordMovement(context.Background(), c.ID, bad, vehicle, uuid.New())
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCylinderService_CurrentLocation_NoHistory(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	s := newCylinderService(store)
	c := seedCylinder(store, domain.CylinderNew)

	_, err := s.CurrentLocation(context.Background(), c.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCylinderService_History_UnknownCylinder(t *testing.T) {
	t.Parallel()

	s := newCylinderService(testutil.NewMemStore())

	_, err := s.History(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
