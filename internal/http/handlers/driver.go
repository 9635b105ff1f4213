package handlers

import (
	"net/http"
	"time"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
)

// DriverHandler serves HTTP endpoints for driver resources.
type DriverHandler struct{ uc driverUsecase }

// NewDriverHandler wires a driverUsecase into HTTP handlers.
func NewDriverHandler(uc driverUsecase) *DriverHandler { return &DriverHandler{uc: uc} }

type driverDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	Lat             *float64   `json:"lat,omitempty"`
	Lng             *float64   `json:"lng,omitempty"`
	ActiveOrders    int        `json:"active_orders"`
	RatingAvg       float64    `json:"rating_avg"`
	RatingCount     int        `json:"rating_count"`
	TotalDeliveries int        `json:"total_deliveries"`
	HiredAt         time.Time  `json:"hired_at"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
}

type createDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type updateDriverStatusRequest struct {
	Status string `json:"status"`
}

type updateDriverLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func driverToResponse(d *domain.Driver) driverDTO {
	dto := driverDTO{
		ID:              d.ID.String(),
		Name:            d.Name,
		Phone:           d.Phone,
		Status:          string(d.Status),
		ActiveOrders:    d.ActiveOrders,
		RatingAvg:       d.RatingAvg,
		RatingCount:     d.RatingCount,
		TotalDeliveries: d.TotalDeliveries,
		HiredAt:         d.HiredAt,
		LastSeenAt:      d.LastSeenAt,
	}
	if d.Location != nil {
		dto.Lat, dto.Lng = &d.Location.Lat, &d.Location.Lng
	}
	return dto
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	d, err := h.uc.CreateDriver(r.Context(), fulfillment.CreateDriverParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/drivers/"+d.ID.String())
	writeJSON(w, r, http.StatusCreated, driverToResponse(d))
}

// GetByID handles GET /drivers/{id}.
func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	d, err := h.uc.GetDriver(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, driverToResponse(d))
}

// List handles GET /drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListDrivers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]driverDTO, 0, len(list))
	for i := range list {
		out = append(out, driverToResponse(&list[i]))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// UpdateStatus handles POST /drivers/{id}/status.
func (h *DriverHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateDriverStatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	d, err := h.uc.UpdateDriverStatus(r.Context(), id, domain.DriverStatus(req.Status))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, driverToResponse(d))
}

// UpdateLocation handles POST /drivers/{id}/location.
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateDriverLocationRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	err = h.uc.UpdateDriverLocation(r.Context(), id, domain.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
