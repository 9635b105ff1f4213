package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
)

// CylinderHandler serves HTTP endpoints for cylinder resources and their
// movement ledger.
type CylinderHandler struct {
	uc        cylinderUsecase
	movements movementUsecase
}

// NewCylinderHandler wires the cylinder usecases into HTTP handlers.
func NewCylinderHandler(uc cylinderUsecase, movements movementUsecase) *CylinderHandler {
	return &CylinderHandler{uc: uc, movements: movements}
}

type cylinderDTO struct {
	ID              string          `json:"id"`
	SerialNumber    string          `json:"serial_number"`
	SizeKg          decimal.Decimal `json:"size_kg"`
	Status          string          `json:"status"`
	FillCount       int             `json:"fill_count"`
	LastInspectedAt *time.Time      `json:"last_inspected_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type locationDTO struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type movementDTO struct {
	ID         string      `json:"id"`
	CylinderID string      `json:"cylinder_id"`
	From       locationDTO `json:"from"`
	To         locationDTO `json:"to"`
	ActorID    string      `json:"actor_id"`
	RecordedAt time.Time   `json:"recorded_at"`
}

type registerCylinderRequest struct {
	SerialNumber string          `json:"serial_number"`
	SizeKg       decimal.Decimal `json:"size_kg"`
	Location     locationDTO     `json:"location"`
	ActorID      string          `json:"actor_id"`
}

type moveCylinderRequest struct {
	From    locationDTO `json:"from"`
	To      locationDTO `json:"to"`
	ActorID string      `json:"actor_id"`
}

func cylinderToResponse(c *domain.Cylinder) cylinderDTO {
	return cylinderDTO{
		ID:              c.ID.String(),
		SerialNumber:    c.SerialNumber,
		SizeKg:          c.SizeKg,
		Status:          string(c.Status),
		FillCount:       c.FillCount,
		LastInspectedAt: c.LastInspectedAt,
		CreatedAt:       c.CreatedAt,
	}
}

func movementToResponse(m *domain.CylinderMovement) movementDTO {
	return movementDTO{
		ID:         m.ID.String(),
		CylinderID: m.CylinderID.String(),
		From:       locationDTO{Type: string(m.From.Type), ID: m.From.ID.String()},
		To:         locationDTO{Type: string(m.To.Type), ID: m.To.ID.String()},
		ActorID:    m.ActorID.String(),
		RecordedAt: m.RecordedAt,
	}
}

func (dto locationDTO) toModel() (domain.Location, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return domain.Location{}, err
	}
	return domain.Location{Type: domain.LocationType(dto.Type), ID: id}, nil
}

// Create handles POST /cylinders.
func (h *CylinderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req registerCylinderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	loc, err := req.Location.toModel()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid location")
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid actor_id")
		return
	}

	c, err := h.uc.RegisterCylinder(r.Context(), fulfillment.RegisterCylinderParams{
		SerialNumber: req.SerialNumber,
		SizeKg:       req.SizeKg,
		Location:     loc,
		ActorID:      actorID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/cylinders/"+c.ID.String())
	writeJSON(w, r, http.StatusCreated, cylinderToResponse(c))
}

// GetByID handles GET /cylinders/{id} and includes the derived current
// location when the ledger has one.
func (h *CylinderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := h.uc.GetCylinder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := struct {
		cylinderDTO
		Location *locationDTO `json:"location,omitempty"`
	}{cylinderDTO: cylinderToResponse(c)}
	if loc, err := h.movements.CurrentLocation(r.Context(), id); err == nil {
		resp.Location = &locationDTO{Type: string(loc.Type), ID: loc.ID.String()}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Move handles POST /cylinders/{id}/move.
func (h *CylinderHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req moveCylinderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	from, err := req.From.toModel()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid from location")
		return
	}
	to, err := req.To.toModel()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid to location")
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid actor_id")
		return
	}

	m, err := h.movements.RecordMovement(r.Context(), id, from, to, actorID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, movementToResponse(m))
}

// Movements handles GET /cylinders/{id}/movements.
func (h *CylinderHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	history, err := h.movements.History(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]movementDTO, 0, len(history))
	for i := range history {
		out = append(out, movementToResponse(&history[i]))
	}
	writeJSON(w, r, http.StatusOK, out)
}
