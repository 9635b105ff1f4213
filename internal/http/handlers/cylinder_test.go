package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
)

type stubCylinderUsecase struct {
	registerFn func(ctx context.Context, p fulfillment.RegisterCylinderParams) (*domain.Cylinder, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error)
}

func (s *stubCylinderUsecase) RegisterCylinder(ctx context.Context, p fulfillment.RegisterCylinderParams) (*domain.Cylinder, error) {
	return s.registerFn(ctx, p)
}

func (s *stubCylinderUsecase) GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	return s.getFn(ctx, id)
}

type stubMovementUsecase struct {
	recordFn   func(ctx context.Context, cylinderID uuid.UUID, from, to domain.Location, actorID uuid.UUID) (*domain.CylinderMovement, error)
	historyFn  func(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error)
	locationFn func(ctx context.Context, cylinderID uuid.UUID) (domain.Location, error)
}

func (s *stubMovementUsecase) RecordMovement(ctx context.Context, cylinderID uuid.UUID, from, to domain.Location, actorID uuid.UUID) (*domain.CylinderMovement, error) {
	return s.recordFn(ctx, cylinderID, from, to, actorID)
}

func (s *stubMovementUsecase) History(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error) {
	return s.historyFn(ctx, cylinderID)
}

func (s *stubMovementUsecase) CurrentLocation(ctx context.Context, cylinderID uuid.UUID) (domain.Location, error) {
	return s.locationFn(ctx, cylinderID)
}

func sampleCylinder() *domain.Cylinder {
	return &domain.Cylinder{
		ID:           uuid.New(),
		SerialNumber: "CYL-0001",
		SizeKg:       decimal.NewFromInt(9),
		Status:       domain.CylinderFilled,
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCylinderHandler_Create_OK(t *testing.T) {
	t.Parallel()

	cyl := sampleCylinder()
	depotID, actorID := uuid.New(), uuid.New()
	uc := &stubCylinderUsecase{
		registerFn: func(_ context.Context, p fulfillment.RegisterCylinderParams) (*domain.Cylinder, error) {
			require.Equal(t, "CYL-0001", p.SerialNumber)
			require.Equal(t, domain.LocationDepot, p.Location.Type)
			require.Equal(t, depotID, p.Location.ID)
			require.Equal(t, actorID, p.ActorID)
			return cyl, nil
		},
	}

	body := `{
		"serial_number": "CYL-0001",
		"size_kg": 9,
		"location": {"type": "depot", "id": "` + depotID.String() + `"},
		"actor_id": "` + actorID.String() + `"
	}`
	req := httptest.NewRequest(http.MethodPost, "/cylinders", strings.NewReader(body))
	rr := httptest.NewRecorder()

	NewCylinderHandler(uc, &stubMovementUsecase{}).Create(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/cylinders/"+cyl.ID.String(), rr.Header().Get("Location"))
}

func TestCylinderHandler_Create_BadLocation(t *testing.T) {
	t.Parallel()

	body := `{"serial_number": "CYL-0001", "size_kg": 9, "location": {"type": "depot", "id": "nope"}, "actor_id": "` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/cylinders", strings.NewReader(body))
	rr := httptest.NewRecorder()

	NewCylinderHandler(&stubCylinderUsecase{}, &stubMovementUsecase{}).Create(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error": "invalid location"}`, rr.Body.String())
}

func TestCylinderHandler_GetByID_IncludesDerivedLocation(t *testing.T) {
	t.Parallel()

	cyl := sampleCylinder()
	depotID := uuid.New()
	uc := &stubCylinderUsecase{
		getFn: func(context.Context, uuid.UUID) (*domain.Cylinder, error) { return cyl, nil },
	}
	movements := &stubMovementUsecase{
		locationFn: func(context.Context, uuid.UUID) (domain.Location, error) {
			return domain.Location{Type: domain.LocationDepot, ID: depotID}, nil
		},
	}

	id := cyl.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cylinders/"+id, nil), "id", id)
	rr := httptest.NewRecorder()

	NewCylinderHandler(uc, movements).GetByID(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"location":{"type":"depot","id":"`+depotID.String()+`"}`)
}

func TestCylinderHandler_GetByID_NoLedgerNoLocation(t *testing.T) {
	t.Parallel()

	cyl := sampleCylinder()
	uc := &stubCylinderUsecase{
		getFn: func(context.Context, uuid.UUID) (*domain.Cylinder, error) { return cyl, nil },
	}
	movements := &stubMovementUsecase{
		locationFn: func(context.Context, uuid.UUID) (domain.Location, error) {
			return domain.Location{}, apperr.ErrNotFound
		},
	}

	id := cyl.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cylinders/"+id, nil), "id", id)
	rr := httptest.NewRecorder()

	NewCylinderHandler(uc, movements).GetByID(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"location"`)
}

func TestCylinderHandler_Move_LocationMismatch(t *testing.T) {
	t.Parallel()

	movements := &stubMovementUsecase{
		recordFn: func(context.Context, uuid.UUID, domain.Location, domain.Location, uuid.UUID) (*domain.CylinderMovement, error) {
			return nil, apperr.ErrLocationMismatch
		},
	}

	id := uuid.New().String()
	body := `{
		"from": {"type": "depot", "id": "` + uuid.New().String() + `"},
		"to": {"type": "vehicle", "id": "` + uuid.New().String() + `"},
		"actor_id": "` + uuid.New().String() + `"
	}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/cylinders/"+id+"/move", strings.NewReader(body)), "id", id)
	rr := httptest.NewRecorder()

	NewCylinderHandler(&stubCylinderUsecase{}, movements).Move(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error": "cylinder location mismatch"}`, rr.Body.String())
}

func TestCylinderHandler_Move_OK(t *testing.T) {
	t.Parallel()

	cylID, vehicleID, depotID, actorID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	movements := &stubMovementUsecase{
		recordFn: func(_ context.Context, gotCyl uuid.UUID, from, to domain.Location, gotActor uuid.UUID) (*domain.CylinderMovement, error) {
			require.Equal(t, cylID, gotCyl)
			require.Equal(t, domain.LocationDepot, from.Type)
			require.Equal(t, domain.LocationVehicle, to.Type)
			require.Equal(t, actorID, gotActor)
			return &domain.CylinderMovement{
				ID:         uuid.New(),
				CylinderID: cylID,
				From:       from,
				To:         to,
				ActorID:    gotActor,
				RecordedAt: time.Now().UTC(),
			}, nil
		},
	}

	id := cylID.String()
	body := `{
		"from": {"type": "depot", "id": "` + depotID.String() + `"},
		"to": {"type": "vehicle", "id": "` + vehicleID.String() + `"},
		"actor_id": "` + actorID.String() + `"
	}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/cylinders/"+id+"/move", strings.NewReader(body)), "id", id)
	rr := httptest.NewRecorder()

	NewCylinderHandler(&stubCylinderUsecase{}, movements).Move(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), cylID.String())
}

func TestCylinderHandler_Movements(t *testing.T) {
	t.Parallel()

	cylID := uuid.New()
	movements := &stubMovementUsecase{
		historyFn: func(_ context.Context, gotID uuid.UUID) ([]domain.CylinderMovement, error) {
			require.Equal(t, cylID, gotID)
			return []domain.CylinderMovement{}, nil
		},
	}

	id := cylID.String()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cylinders/"+id+"/movements", nil), "id", id)
	rr := httptest.NewRecorder()

	NewCylinderHandler(&stubCylinderUsecase{}, movements).Movements(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
