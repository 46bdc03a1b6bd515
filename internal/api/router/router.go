package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/beamhealth/clinic-triage/internal/http/handlers"
	httpmiddleware "github.com/beamhealth/clinic-triage/internal/http/middleware"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Patients           *handlers.PatientsHandler
	Triage             *handlers.TriageHandler
	Scheduling         *handlers.SchedulingHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Scheduling.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/patients", cfg.Patients.List)
	r.Get("/patients/{patientID}/appointments", cfg.Scheduling.PatientAppointments)

	r.Post("/risk/preview", cfg.Triage.PreviewRisk)
	r.Post("/intake/structure", cfg.Triage.StructureIntake)

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/available", cfg.Scheduling.AvailableSlots)
		r.Post("/book", cfg.Scheduling.Book)
		r.Get("/{appointmentID}/details", cfg.Scheduling.Details)
	})

	r.Get("/prep-summary/{appointmentID}", cfg.Scheduling.PrepSummary)
	r.Get("/clinician/schedule", cfg.Scheduling.ClinicianSchedule)

	return r
}
