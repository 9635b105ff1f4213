package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// OfferHandler serves HTTP endpoints for dispatch offer responses.
type OfferHandler struct{ uc offerUsecase }

// NewOfferHandler wires an offerUsecase into HTTP handlers.
func NewOfferHandler(uc offerUsecase) *OfferHandler { return &OfferHandler{uc: uc} }

type offerResponseRequest struct {
	DriverID string `json:"driver_id"`
}

func (h *OfferHandler) offerAndDriver(w http.ResponseWriter, r *http.Request) (offerID, driverID uuid.UUID, ok bool) {
	offerID, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	var req offerResponseRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	driverID, err = uuid.Parse(req.DriverID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driver_id")
		return uuid.Nil, uuid.Nil, false
	}
	return offerID, driverID, true
}

// Accept handles POST /offers/{id}/accept.
func (h *OfferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	offerID, driverID, ok := h.offerAndDriver(w, r)
	if !ok {
		return
	}
	o, err := h.uc.AcceptOffer(r.Context(), offerID, driverID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// Reject handles POST /offers/{id}/reject.
func (h *OfferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	offerID, driverID, ok := h.offerAndDriver(w, r)
	if !ok {
		return
	}
	if err := h.uc.RejectOffer(r.Context(), offerID, driverID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "rejected"})
}
