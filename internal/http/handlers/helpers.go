package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/internal/scheduling"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps pipeline errors onto HTTP statuses: lookup misses are
// 404, booking a non-available slot is 409, everything else is a 500.
func writeDomainError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, patients.ErrPatientNotFound),
		errors.Is(err, insurance.ErrInsuranceNotFound),
		errors.Is(err, scheduling.ErrSlotNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, scheduling.ErrInvalidStateTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, scheduling.ErrNotBooked):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
