//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/repository"
)

type DriverRepositorySuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	store *repository.Store
}

func (s *DriverRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")

	s.pool = tcPool
	s.store = repository.NewStore(tcPool)
}

func (s *DriverRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE drivers CASCADE`)
	s.Require().NoError(err)
}

var driverSeq int

func (s *DriverRepositorySuite) newDriver(status domain.DriverStatus) *domain.Driver {
	driverSeq++
	seen := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Driver{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("Driver %d", driverSeq),
		Phone:      fmt.Sprintf("+2782%07d", driverSeq),
		Status:     status,
		HiredAt:    seen.Add(-24 * time.Hour),
		LastSeenAt: &seen,
	}
}

func (s *DriverRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	in := s.newDriver(domain.DriverOnline)
	in.Location = &domain.Point{Lat: -26.2041, Lng: 28.0473}
	s.Require().NoError(s.store.InsertDriver(ctx, in))

	got, err := s.store.GetDriver(ctx, in.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(in.Name, got.Name)
	s.Equal(in.Phone, got.Phone)
	s.Equal(domain.DriverOnline, got.Status)
	s.Require().NotNil(got.Location)
	s.InDelta(-26.2041, got.Location.Lat, 1e-9)
	s.Require().NotNil(got.LastSeenAt)
}

func (s *DriverRepositorySuite) TestInsert_DuplicatePhone() {
	ctx := context.Background()
	first := s.newDriver(domain.DriverOffline)
	s.Require().NoError(s.store.InsertDriver(ctx, first))

	second := s.newDriver(domain.DriverOffline)
	second.Phone = first.Phone
	err := s.store.InsertDriver(ctx, second)
	s.Error(err)
	s.True(repository.IsDuplicate(err))
	s.ErrorIs(err, apperr.ErrConflict, "duplicate phones must surface as a conflict")
}

func (s *DriverRepositorySuite) TestGetNotFound() {
	got, err := s.store.GetDriver(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *DriverRepositorySuite) TestUpdateUnderTx() {
	ctx := context.Background()
	in := s.newDriver(domain.DriverOnline)
	s.Require().NoError(s.store.InsertDriver(ctx, in))

	err := s.store.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		d, err := tx.GetDriverForUpdate(ctx, in.ID)
		if err != nil {
			return err
		}
		d.Status = domain.DriverOnDelivery
		d.ActiveOrders = 1
		d.Location = &domain.Point{Lat: -25.7479, Lng: 28.2293}
		return tx.UpdateDriver(ctx, d)
	})
	s.Require().NoError(err)

	got, err := s.store.GetDriver(ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(domain.DriverOnDelivery, got.Status)
	s.Equal(1, got.ActiveOrders)
	s.Require().NotNil(got.Location)
	s.InDelta(28.2293, got.Location.Lng, 1e-9)
}

func (s *DriverRepositorySuite) TestListOrderedByHireDate() {
	ctx := context.Background()

	veteran := s.newDriver(domain.DriverOffline)
	veteran.HiredAt = time.Now().UTC().AddDate(-2, 0, 0).Truncate(time.Microsecond)
	rookie := s.newDriver(domain.DriverOffline)

	s.Require().NoError(s.store.InsertDriver(ctx, rookie))
	s.Require().NoError(s.store.InsertDriver(ctx, veteran))

	list, err := s.store.ListDrivers(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(veteran.ID, list[0].ID)
	s.Equal(rookie.ID, list[1].ID)
}

func (s *DriverRepositorySuite) TestListDispatchCandidates() {
	ctx := context.Background()

	located := s.newDriver(domain.DriverOnline)
	located.Location = &domain.Point{Lat: -26.2, Lng: 28.0}
	busy := s.newDriver(domain.DriverOnDelivery)
	busy.Location = &domain.Point{Lat: -26.3, Lng: 28.1}
	offline := s.newDriver(domain.DriverOffline)
	offline.Location = &domain.Point{Lat: -26.4, Lng: 28.2}
	noLocation := s.newDriver(domain.DriverOnline)

	for _, d := range []*domain.Driver{located, busy, offline, noLocation} {
		s.Require().NoError(s.store.InsertDriver(ctx, d))
	}

	var got []domain.Driver
	err := s.store.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		var err error
		got, err = tx.ListDispatchCandidates(ctx)
		return err
	})
	s.Require().NoError(err)

	ids := make(map[uuid.UUID]bool, len(got))
	for _, d := range got {
		ids[d.ID] = true
	}
	s.Len(got, 2)
	s.True(ids[located.ID])
	s.True(ids[busy.ID])
}

func TestDriverRepositorySuite(t *testing.T) {
	suite.Run(t, new(DriverRepositorySuite))
}
