package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

func TestCreateDriver(t *testing.T) {
	t.Parallel()

	f := newFixture()
	d, err := f.svc.CreateDriver(context.Background(), CreateDriverParams{
		Name:  "  Sipho Dlamini ",
		Phone: "+27821234567",
	})
	require.NoError(t, err)

	require.Equal(t, "Sipho Dlamini", d.Name)
	require.Equal(t, domain.DriverOffline, d.Status, "new drivers start offline")
	require.Equal(t, testNow, d.HiredAt)
	require.NotNil(t, d.LastSeenAt)

	_, ok := f.store.Drivers[d.ID]
	require.True(t, ok)
}

func TestCreateDriver_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "  ", Phone: "+27821234567"})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "Sipho", Phone: "0821234567"})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCreateDriver_DuplicatePhone(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "Sipho", Phone: "+27821234567"})
	require.NoError(t, err)

	_, err = f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "Thabo", Phone: "+27821234567"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Len(t, f.store.Drivers, 1)
}

func TestUpdateDriverStatus_OnlineAndBack(t *testing.T) {
	t.Parallel()

	f := newFixture()
	d, err := f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "Sipho", Phone: "+27821234567"})
	require.NoError(t, err)

	got, err := f.svc.UpdateDriverStatus(context.Background(), d.ID, domain.DriverOnline)
	require.NoError(t, err)
	require.Equal(t, domain.DriverOnline, got.Status)

	got, err = f.svc.UpdateDriverStatus(context.Background(), d.ID, domain.DriverOffline)
	require.NoError(t, err)
	require.Equal(t, domain.DriverOffline, got.Status)
}

func TestUpdateDriverStatus_OnDeliveryNeverSetDirectly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.UpdateDriverStatus(context.Background(), uuid.New(), domain.DriverOnDelivery)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateDriverStatus_UnknownStatus(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.UpdateDriverStatus(context.Background(), uuid.New(), domain.DriverStatus("sleeping"))
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateDriverStatus_CannotGoOfflineMidDelivery(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, d := f.inTransitOrder(t, domain.PayCash)

	_, err := f.svc.UpdateDriverStatus(context.Background(), d.ID, domain.DriverOffline)
	require.ErrorIs(t, err, apperr.ErrConflict)

	require.Equal(t, domain.DriverOnDelivery, f.store.Drivers[d.ID].Status)
}

func TestUpdateDriverStatus_OfflineForfeitsOpenOffers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(context.Background(), o.ID)
	require.NoError(t, err)

	d := f.seedOnlineDriver()
	require.NoError(t, f.dispatch.Dispatch(context.Background(), o.ID))

	_, err = f.svc.UpdateDriverStatus(context.Background(), d.ID, domain.DriverOffline)
	require.NoError(t, err)

	for _, offer := range f.store.Offers {
		require.NotEqual(t, domain.OfferPending, offer.State, "going offline must forfeit open offers")
	}
}

func TestUpdateDriverStatus_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.UpdateDriverStatus(context.Background(), uuid.New(), domain.DriverOnline)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateDriverLocation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	d, err := f.svc.CreateDriver(context.Background(), CreateDriverParams{Name: "Sipho", Phone: "+27821234567"})
	require.NoError(t, err)

	loc := domain.Point{Lat: -26.21, Lng: 28.05}
	require.NoError(t, f.svc.UpdateDriverLocation(context.Background(), d.ID, loc))

	stored := f.store.Drivers[d.ID]
	require.NotNil(t, stored.Location)
	require.Equal(t, loc, *stored.Location)
}

func TestUpdateDriverLocation_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.svc.UpdateDriverLocation(context.Background(), uuid.New(), domain.Point{})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetDriver_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.GetDriver(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
