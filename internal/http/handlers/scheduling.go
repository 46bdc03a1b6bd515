package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beamhealth/clinic-triage/internal/scheduling"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

// SchedulingHandler serves slot recommendation, booking, and schedule views.
type SchedulingHandler struct {
	svc    *scheduling.Service
	logger *logging.Logger
}

// NewSchedulingHandler creates a scheduling handler.
func NewSchedulingHandler(svc *scheduling.Service, logger *logging.Logger) *SchedulingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchedulingHandler{svc: svc, logger: logger}
}

// AvailableSlotsRequest is the body for POST /appointments/available.
type AvailableSlotsRequest struct {
	PatientID      int    `json:"patient_id"`
	ReasonForVisit string `json:"reason_for_visit"`
	ProviderID     *int   `json:"provider_id,omitempty"`
}

// AvailableSlots handles POST /appointments/available requests.
func (h *SchedulingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	var req AvailableSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID <= 0 || strings.TrimSpace(req.ReasonForVisit) == "" {
		http.Error(w, "patient_id and reason_for_visit are required", http.StatusBadRequest)
		return
	}

	availability, err := h.svc.AvailableSlots(r.Context(), req.PatientID, req.ReasonForVisit, req.ProviderID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, availability)
}

// BookAppointmentRequest is the body for POST /appointments/book.
type BookAppointmentRequest struct {
	PatientID      int    `json:"patient_id"`
	AppointmentID  int    `json:"appointment_id"`
	ReasonForVisit string `json:"reason_for_visit"`
}

// Book handles POST /appointments/book requests.
func (h *SchedulingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID <= 0 || req.AppointmentID <= 0 || strings.TrimSpace(req.ReasonForVisit) == "" {
		http.Error(w, "patient_id, appointment_id, and reason_for_visit are required", http.StatusBadRequest)
		return
	}

	summary, err := h.svc.Book(r.Context(), req.PatientID, req.AppointmentID, req.ReasonForVisit)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.logger.Info("booking committed", "slot_id", req.AppointmentID, "patient_id", req.PatientID)
	respondJSON(w, http.StatusOK, summary)
}

// Details handles GET /appointments/{appointmentID}/details requests.
func (h *SchedulingHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.BookingDetails(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// PatientAppointmentsResponse lists a patient's booked slots.
type PatientAppointmentsResponse struct {
	Appointments []scheduling.Slot `json:"appointments"`
}

// PatientAppointments handles GET /patients/{patientID}/appointments requests.
func (h *SchedulingHandler) PatientAppointments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	booked, err := h.svc.PatientAppointments(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientAppointmentsResponse{Appointments: booked})
}

// ClinicianSchedule handles GET /clinician/schedule?provider_id=&date= requests.
func (h *SchedulingHandler) ClinicianSchedule(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.Atoi(r.URL.Query().Get("provider_id"))
	if err != nil || providerID <= 0 {
		http.Error(w, "provider_id is required", http.StatusBadRequest)
		return
	}

	var day *time.Time
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = &parsed
	}

	items, err := h.svc.ClinicianSchedule(r.Context(), providerID, day)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// PrepSummary handles GET /prep-summary/{appointmentID} requests.
func (h *SchedulingHandler) PrepSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	packet, err := h.svc.PrepSummary(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, packet)
}

// HealthCheck handles GET /health requests.
func (h *SchedulingHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
