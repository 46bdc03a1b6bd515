package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/internal/scheduling"
	"github.com/beamhealth/clinic-triage/internal/triage"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

// TriageHandler serves risk previews and intake structuring.
type TriageHandler struct {
	svc      *scheduling.Service
	intake   *triage.IntakeEngine
	patients patients.Repository
	logger   *logging.Logger
}

// NewTriageHandler creates a triage handler.
func NewTriageHandler(svc *scheduling.Service, intake *triage.IntakeEngine, patientRepo patients.Repository, logger *logging.Logger) *TriageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TriageHandler{svc: svc, intake: intake, patients: patientRepo, logger: logger}
}

// RiskPreviewRequest is the body for POST /risk/preview.
type RiskPreviewRequest struct {
	PatientID      int    `json:"patient_id"`
	ReasonForVisit string `json:"reason_for_visit"`
}

// RiskPreviewResponse wraps the computed judgment.
type RiskPreviewResponse struct {
	Risk triage.ClinicalRisk `json:"risk"`
}

// PreviewRisk handles POST /risk/preview requests.
func (h *TriageHandler) PreviewRisk(w http.ResponseWriter, r *http.Request) {
	var req RiskPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID <= 0 || strings.TrimSpace(req.ReasonForVisit) == "" {
		http.Error(w, "patient_id and reason_for_visit are required", http.StatusBadRequest)
		return
	}

	risk, err := h.svc.PreviewRisk(r.Context(), req.PatientID, req.ReasonForVisit)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, RiskPreviewResponse{Risk: *risk})
}

// IntakeRequest is the body for POST /intake/structure.
type IntakeRequest struct {
	PatientID int    `json:"patient_id"`
	Narrative string `json:"narrative"`
}

// StructureIntake handles POST /intake/structure requests.
func (h *TriageHandler) StructureIntake(w http.ResponseWriter, r *http.Request) {
	var req IntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID <= 0 || strings.TrimSpace(req.Narrative) == "" {
		http.Error(w, "patient_id and narrative are required", http.StatusBadRequest)
		return
	}

	patient, err := h.patients.FindByID(r.Context(), req.PatientID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	result := h.intake.Structure(r.Context(), *patient, req.Narrative)
	respondJSON(w, http.StatusOK, result)
}
