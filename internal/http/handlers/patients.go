package handlers

import (
	"net/http"

	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

// PatientsHandler serves the patient roster.
type PatientsHandler struct {
	repo   patients.Repository
	logger *logging.Logger
}

// NewPatientsHandler creates a patients handler.
func NewPatientsHandler(repo patients.Repository, logger *logging.Logger) *PatientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientsHandler{repo: repo, logger: logger}
}

// List handles GET /patients?query= requests.
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	query := r.URL.Query().Get("query")
	matched := make([]patients.Patient, 0, len(all))
	for _, p := range all {
		if p.MatchesQuery(query) {
			matched = append(matched, p)
		}
	}
	respondJSON(w, http.StatusOK, matched)
}
