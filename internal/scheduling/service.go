package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/observability/metrics"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/internal/prep"
	"github.com/beamhealth/clinic-triage/internal/triage"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var tracer = otel.Tracer("clinictriage.internal.scheduling")

// Availability is the risk judgment plus the partitioned candidate pool.
type Availability struct {
	Risk             triage.ClinicalRisk `json:"risk"`
	RecommendedSlots []RecommendedSlot   `json:"recommended_slots"`
	OtherSlots       []Slot              `json:"other_slots"`
}

// BookingSummary bundles a booked slot with the context a clinician reviews.
type BookingSummary struct {
	Appointment Slot                 `json:"appointment"`
	Patient     *patients.Patient    `json:"patient,omitempty"`
	Insurance   *insurance.Insurance `json:"insurance,omitempty"`
	Risk        triage.ClinicalRisk  `json:"risk"`
	PrepSummary prep.Packet          `json:"prep_summary"`
}

// ScheduleItem is one row of a clinician's day view.
type ScheduleItem struct {
	AppointmentID     int                  `json:"appointment_id"`
	Start             time.Time            `json:"start"`
	PatientName       string               `json:"patient_name"`
	PatientAge        int                  `json:"patient_age"`
	ClinicalRisk      *triage.ClinicalRisk `json:"clinical_risk,omitempty"`
	PrepSummaryStatus string               `json:"prep_summary_status"`
}

// Service orchestrates the risk-to-urgency-to-slot pipeline over the stores.
// Each invocation works on its own copy of the input collections; the slot
// store is the only shared mutable resource and owns its booking critical
// section.
type Service struct {
	slots      SlotStore
	patients   patients.Repository
	insurances insurance.Repository
	triage     *triage.Service
	prep       *prep.Builder
	window     triage.WindowPolicy
	metrics    *metrics.TriageMetrics
	logger     *logging.Logger

	// Now is the reference clock for partitioning and schedule filtering.
	Now func() time.Time
}

// NewService wires the pipeline together.
func NewService(
	slots SlotStore,
	patientRepo patients.Repository,
	insuranceRepo insurance.Repository,
	triageSvc *triage.Service,
	prepBuilder *prep.Builder,
	window triage.WindowPolicy,
	m *metrics.TriageMetrics,
	logger *logging.Logger,
) *Service {
	if slots == nil {
		panic("scheduling: slot store required")
	}
	if patientRepo == nil || insuranceRepo == nil {
		panic("scheduling: patient and insurance repositories required")
	}
	if triageSvc == nil {
		panic("scheduling: triage service required")
	}
	if prepBuilder == nil {
		panic("scheduling: prep builder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		slots:      slots,
		patients:   patientRepo,
		insurances: insuranceRepo,
		triage:     triageSvc,
		prep:       prepBuilder,
		window:     window,
		metrics:    m,
		logger:     logger,
		Now:        time.Now,
	}
}

// visitContext is the per-request snapshot of patient, coverage, and pool.
type visitContext struct {
	patient   *patients.Patient
	insurance *insurance.Insurance
	pool      []Slot
}

func (s *Service) loadContext(ctx context.Context, patientID int) (*visitContext, error) {
	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	ins, err := s.insurances.FindByID(ctx, patient.InsuranceID)
	if err != nil {
		return nil, err
	}
	pool, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduling: load slot pool: %w", err)
	}
	return &visitContext{patient: patient, insurance: ins, pool: pool}, nil
}

// PreviewRisk scores a proposed visit without touching any slot.
func (s *Service) PreviewRisk(ctx context.Context, patientID int, reason string) (*triage.ClinicalRisk, error) {
	ctx, span := tracer.Start(ctx, "scheduling.preview_risk")
	defer span.End()
	span.SetAttributes(attribute.Int("clinic.patient_id", patientID))

	vc, err := s.loadContext(ctx, patientID)
	if err != nil {
		return nil, err
	}
	risk := s.triage.PreviewRisk(ctx, triage.AssessmentInput{
		Patient:        *vc.patient,
		Insurance:      *vc.insurance,
		ProposedReason: reason,
		History:        VisitRecords(vc.pool),
	})
	return &risk, nil
}

// AvailableSlots scores the visit, maps urgency to a horizon, and partitions
// the open pool into recommended and other slots.
func (s *Service) AvailableSlots(ctx context.Context, patientID int, reason string, providerID *int) (*Availability, error) {
	ctx, span := tracer.Start(ctx, "scheduling.available_slots")
	defer span.End()
	span.SetAttributes(attribute.Int("clinic.patient_id", patientID))

	vc, err := s.loadContext(ctx, patientID)
	if err != nil {
		return nil, err
	}

	risk := s.triage.CalculateRisk(ctx, triage.AssessmentInput{
		Patient:        *vc.patient,
		Insurance:      *vc.insurance,
		ProposedReason: reason,
		History:        VisitRecords(vc.pool),
	})

	horizon := s.window.HorizonDays(risk.RecommendedUrgency)
	partition := PartitionSlots(s.Now().UTC(), vc.pool, providerID, horizon)
	span.SetAttributes(
		attribute.String("clinic.urgency", string(risk.RecommendedUrgency)),
		attribute.Int("clinic.horizon_days", horizon),
		attribute.Int("clinic.recommended", len(partition.Recommended)),
	)

	return &Availability{
		Risk:             risk,
		RecommendedSlots: partition.Recommended,
		OtherSlots:       partition.Other,
	}, nil
}

// Book transitions an available slot to booked, attaching the patient, the
// reason, a freshly computed risk judgment, and a preparation packet. The
// slot store's compare-and-swap keeps the transition atomic; a losing racer
// gets ErrInvalidStateTransition and no side effects.
func (s *Service) Book(ctx context.Context, patientID, slotID int, reason string) (*BookingSummary, error) {
	ctx, span := tracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int("clinic.patient_id", patientID),
		attribute.Int("clinic.slot_id", slotID),
	)

	vc, err := s.loadContext(ctx, patientID)
	if err != nil {
		s.metrics.ObserveBooking("lookup_failed")
		return nil, err
	}

	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		s.metrics.ObserveBooking("lookup_failed")
		return nil, err
	}
	if slot.Status != StatusAvailable {
		s.metrics.ObserveBooking("invalid_state")
		return nil, ErrInvalidStateTransition
	}

	risk := s.triage.CalculateRisk(ctx, triage.AssessmentInput{
		Patient:        *vc.patient,
		Insurance:      *vc.insurance,
		ProposedReason: reason,
		History:        VisitRecords(vc.pool),
	})

	booked := *slot
	booked.Status = StatusBooked
	booked.PatientID = &vc.patient.ID
	booked.ReasonForVisit = reason
	booked.ClinicalRisk = &risk

	packet := s.prep.Build(ctx, prep.BuildInput{
		Patient:        *vc.patient,
		Insurance:      *vc.insurance,
		Risk:           risk,
		Start:          booked.Start,
		Location:       booked.Location,
		VisitType:      booked.VisitType,
		ReasonForVisit: booked.ReasonForVisit,
	})
	booked.PrepSummary = &packet

	if err := s.slots.Book(ctx, booked); err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("store_rejected")
		return nil, err
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("slot booked",
		"slot_id", booked.ID,
		"patient_id", vc.patient.ID,
		"risk_level", risk.Level,
		"urgency", risk.RecommendedUrgency,
	)
	return &BookingSummary{
		Appointment: booked,
		Risk:        risk,
		PrepSummary: packet,
	}, nil
}

// BookingDetails replays a booked slot's stored risk and packet without any
// new oracle calls.
func (s *Service) BookingDetails(ctx context.Context, slotID int) (*BookingSummary, error) {
	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != StatusBooked || slot.PatientID == nil {
		return nil, ErrNotBooked
	}
	patient, err := s.patients.FindByID(ctx, *slot.PatientID)
	if err != nil {
		return nil, err
	}
	ins, err := s.insurances.FindByID(ctx, patient.InsuranceID)
	if err != nil {
		return nil, err
	}

	summary := &BookingSummary{
		Appointment: *slot,
		Patient:     patient,
		Insurance:   ins,
	}
	if slot.ClinicalRisk != nil {
		summary.Risk = *slot.ClinicalRisk
	}
	if slot.PrepSummary != nil {
		summary.PrepSummary = *slot.PrepSummary
	}
	return summary, nil
}

// PrepSummary regenerates a preparation packet for a slot on demand. The
// stored risk judgment is reused when present; otherwise a fresh one is
// computed. The regenerated packet is returned without being persisted.
func (s *Service) PrepSummary(ctx context.Context, slotID int) (*prep.Packet, error) {
	ctx, span := tracer.Start(ctx, "scheduling.prep_summary")
	defer span.End()
	span.SetAttributes(attribute.Int("clinic.slot_id", slotID))

	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.PatientID == nil {
		return nil, ErrNotBooked
	}
	vc, err := s.loadContext(ctx, *slot.PatientID)
	if err != nil {
		return nil, err
	}

	var risk triage.ClinicalRisk
	if slot.ClinicalRisk != nil {
		risk = *slot.ClinicalRisk
	} else {
		risk = s.triage.CalculateRisk(ctx, triage.AssessmentInput{
			Patient:        *vc.patient,
			Insurance:      *vc.insurance,
			ProposedReason: slot.ReasonForVisit,
			History:        VisitRecords(vc.pool),
		})
	}

	packet := s.prep.Build(ctx, prep.BuildInput{
		Patient:        *vc.patient,
		Insurance:      *vc.insurance,
		Risk:           risk,
		Start:          slot.Start,
		Location:       slot.Location,
		VisitType:      slot.VisitType,
		ReasonForVisit: slot.ReasonForVisit,
	})
	return &packet, nil
}

// PatientAppointments lists a patient's booked slots in chronological order.
func (s *Service) PatientAppointments(ctx context.Context, patientID int) ([]Slot, error) {
	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		return nil, err
	}
	pool, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduling: load slot pool: %w", err)
	}
	booked := make([]Slot, 0)
	for _, slot := range pool {
		if slot.Status == StatusBooked && slot.PatientID != nil && *slot.PatientID == patientID {
			booked = append(booked, slot)
		}
	}
	sortSlots(booked)
	return booked, nil
}

// ClinicianSchedule lists a provider's booked slots, optionally filtered to a
// single calendar day, with patient name, age, and risk attached.
func (s *Service) ClinicianSchedule(ctx context.Context, providerID int, day *time.Time) ([]ScheduleItem, error) {
	pool, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduling: load slot pool: %w", err)
	}

	matched := make([]Slot, 0)
	for _, slot := range pool {
		if slot.Status != StatusBooked {
			continue
		}
		if slot.ProviderID == nil || *slot.ProviderID != providerID {
			continue
		}
		if day != nil {
			y, m, d := slot.Start.UTC().Date()
			dy, dm, dd := day.UTC().Date()
			if y != dy || m != dm || d != dd {
				continue
			}
		}
		matched = append(matched, slot)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Start.Before(matched[j].Start) })

	now := s.Now().UTC()
	items := make([]ScheduleItem, 0, len(matched))
	for _, slot := range matched {
		if slot.PatientID == nil {
			continue
		}
		patient, err := s.patients.FindByID(ctx, *slot.PatientID)
		if err != nil {
			// Orphaned patient reference; skip the row rather than fail the view.
			continue
		}
		status := "not_generated"
		if slot.PrepSummary != nil {
			status = "ready"
		}
		items = append(items, ScheduleItem{
			AppointmentID:     slot.ID,
			Start:             slot.Start,
			PatientName:       patient.FullName(),
			PatientAge:        patients.AgeAt(patient.DOB, now),
			ClinicalRisk:      slot.ClinicalRisk,
			PrepSummaryStatus: status,
		})
	}
	return items, nil
}
