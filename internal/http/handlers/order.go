package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// OrderHandler serves HTTP endpoints for order resources.
type OrderHandler struct{ uc orderUsecase }

// NewOrderHandler wires an orderUsecase into HTTP handlers.
func NewOrderHandler(uc orderUsecase) *OrderHandler { return &OrderHandler{uc: uc} }

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.uc.CreateOrder(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID.String())
	writeJSON(w, r, http.StatusCreated, orderToResponse(o))
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	o, err := h.uc.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// List handles GET /orders with optional status, customer_id and driver_id
// filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var f fulfillmenttx.OrderFilter
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		st := domain.OrderStatus(s)
		if !st.Valid() {
			writeError(w, r, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = &st
	}
	if s := q.Get("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid customer_id")
			return
		}
		f.CustomerID = &id
	}
	if s := q.Get("driver_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid driver_id")
			return
		}
		f.DriverID = &id
	}

	list, err := h.uc.ListOrders(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ordersToResponse(list))
}

// Confirm handles POST /orders/{id}/confirm.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	o, err := h.uc.ConfirmOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// Assign handles POST /orders/{id}/assign. Without a driver_id in the body
// the order goes through the offer flow.
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req assignOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	var driverID *uuid.UUID
	if req.DriverID != nil {
		parsed, err := uuid.Parse(*req.DriverID)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid driver_id")
			return
		}
		driverID = &parsed
	}

	o, err := h.uc.AssignDriver(r.Context(), id, driverID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// UpdateStatus handles POST /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	st := domain.OrderStatus(req.Status)
	if !st.Valid() {
		writeError(w, r, http.StatusBadRequest, "invalid status")
		return
	}

	o, err := h.uc.UpdateOrderStatus(r.Context(), id, st, req.CancelReason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// Complete handles POST /orders/{id}/complete.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req completeDeliveryRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	o, err := h.uc.CompleteDelivery(r.Context(), id, req.toParams())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}

// Rate handles POST /orders/{id}/rating.
func (h *OrderHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req rateOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	o, err := h.uc.RateOrder(r.Context(), id, req.Rating)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderToResponse(o))
}
