package handlers

import (
	"errors"
	"net/http"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
)

// writeDomainError maps a service error onto an HTTP status. Every handler
// funnels its fallthrough cases here so the taxonomy maps the same way
// everywhere.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var it apperr.InvalidTransitionError
	switch {
	case errors.As(err, &it):
		writeError(w, r, http.StatusConflict, it.Error())
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, "invalid transition")
	case errors.Is(err, apperr.ErrInsufficientFunds):
		writeError(w, r, http.StatusPaymentRequired, "insufficient funds")
	case errors.Is(err, apperr.ErrLocationMismatch):
		writeError(w, r, http.StatusConflict, "cylinder location mismatch")
	case errors.Is(err, apperr.ErrProofMissing):
		writeError(w, r, http.StatusUnprocessableEntity, "delivery proof missing")
	case errors.Is(err, apperr.ErrProofMismatch):
		writeError(w, r, http.StatusUnprocessableEntity, "delivery proof mismatch")
	case errors.Is(err, apperr.ErrNoDriverAvailable):
		writeError(w, r, http.StatusConflict, "no driver available")
	case errors.Is(err, apperr.ErrCapacityExceeded):
		writeError(w, r, http.StatusConflict, "driver at capacity")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
