// Package prep assembles pre-visit preparation packets for clinicians. The
// packet skeleton is rule-based; the to-do list and note template are
// optionally enriched through the oracle and fall back to static defaults
// silently.
package prep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/internal/triage"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var tracer = otel.Tracer("clinictriage.internal.prep")

const prepSystemPrompt = `You are an experienced primary care clinician helping prepare for a visit. Given structured patient, appointment, and insurance context, generate:
- A brief to-do list for the clinical team before the visit.
- A concise SOAP-style note template tailored to the patient's risk factors and reason for visit.
You MUST respond with a single valid JSON object with keys 'todo_for_clinic' (list of strings) and 'note_template' (object with keys subjective, objective, assessment, plan).`

// PatientSnapshot summarizes the patient for the packet header.
type PatientSnapshot struct {
	Name            string   `json:"name"`
	Age             int      `json:"age"`
	Gender          string   `json:"gender"`
	Conditions      []string `json:"conditions"`
	Medications     []string `json:"medications"`
	Allergies       []string `json:"allergies"`
	PrimaryLanguage string   `json:"primary_language"`
}

// VisitDetails describes the booked slot.
type VisitDetails struct {
	Datetime       time.Time `json:"datetime"`
	Location       string    `json:"location,omitempty"`
	VisitType      string    `json:"visit_type,omitempty"`
	ReasonForVisit string    `json:"reason_for_visit,omitempty"`
}

// InsuranceSummary carries the coverage fields front desk needs at check-in.
type InsuranceSummary struct {
	Payer               string   `json:"payer"`
	Plan                string   `json:"plan"`
	CoPay               *float64 `json:"coPay,omitempty"`
	EligibilityStatus   string   `json:"eligibility_status"`
	RequiresReferral    bool     `json:"requires_referral"`
	DeductibleRemaining *float64 `json:"deductible_remaining,omitempty"`
}

// NoteTemplate is a SOAP-style skeleton for the visit note.
type NoteTemplate struct {
	Subjective []string `json:"subjective"`
	Objective  []string `json:"objective"`
	Assessment []string `json:"assessment"`
	Plan       []string `json:"plan"`
}

// Packet is the pre-visit bundle attached to a booked slot. Downstream
// consumers treat it as opaque output; nothing here is re-validated.
type Packet struct {
	PatientSnapshot  PatientSnapshot     `json:"patient_snapshot"`
	VisitDetails     VisitDetails        `json:"visit_details"`
	InsuranceSummary InsuranceSummary    `json:"insurance_summary"`
	RiskAssessment   triage.ClinicalRisk `json:"risk_assessment"`
	TodoForClinic    []string            `json:"todo_for_clinic"`
	NoteTemplate     NoteTemplate        `json:"note_template"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// BuildInput collects everything the packet needs without coupling prep to
// the scheduling package.
type BuildInput struct {
	Patient        patients.Patient
	Insurance      insurance.Insurance
	Risk           triage.ClinicalRisk
	Start          time.Time
	Location       string
	VisitType      string
	ReasonForVisit string
}

// Builder produces preparation packets.
type Builder struct {
	client *oracle.Client
	logger *logging.Logger

	// Now is injectable for deterministic timestamps and age in tests.
	Now func() time.Time
}

// NewBuilder constructs a packet builder.
func NewBuilder(client *oracle.Client, logger *logging.Logger) *Builder {
	if client == nil {
		panic("prep: oracle client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{client: client, logger: logger, Now: time.Now}
}

// Build assembles the packet. Oracle trouble never fails the build; the
// static to-do list and note template stand in.
func (b *Builder) Build(ctx context.Context, input BuildInput) Packet {
	now := b.Now().UTC()

	allergies := input.Patient.Allergies
	if len(allergies) == 0 {
		allergies = []string{"None documented"}
	}

	packet := Packet{
		PatientSnapshot: PatientSnapshot{
			Name:            input.Patient.FullName(),
			Age:             patients.AgeAt(input.Patient.DOB, now),
			Gender:          input.Patient.Gender,
			Conditions:      input.Patient.ChronicConditions,
			Medications:     input.Patient.Medications,
			Allergies:       allergies,
			PrimaryLanguage: input.Patient.PrimaryLanguage,
		},
		VisitDetails: VisitDetails{
			Datetime:       input.Start,
			Location:       input.Location,
			VisitType:      input.VisitType,
			ReasonForVisit: input.ReasonForVisit,
		},
		InsuranceSummary: InsuranceSummary{
			Payer:               input.Insurance.Payer,
			Plan:                input.Insurance.Plan,
			CoPay:               input.Insurance.CoPay,
			EligibilityStatus:   input.Insurance.EligibilityStatus,
			RequiresReferral:    input.Insurance.RequiresReferral,
			DeductibleRemaining: input.Insurance.DeductibleRemaining,
		},
		RiskAssessment: input.Risk,
		TodoForClinic:  defaultTodoList(),
		NoteTemplate:   defaultNoteTemplate(),
		GeneratedAt:    now,
	}

	if !b.client.Available() {
		return packet
	}
	b.enrich(ctx, &packet)
	return packet
}

// enrich asks the oracle for a tailored to-do list and note template. Any
// failure keeps the defaults already in place.
func (b *Builder) enrich(ctx context.Context, packet *Packet) {
	ctx, span := tracer.Start(ctx, "prep.enrich")
	defer span.End()

	userContext := struct {
		PatientSnapshot  PatientSnapshot     `json:"patient_snapshot"`
		VisitDetails     VisitDetails        `json:"visit_details"`
		InsuranceSummary InsuranceSummary    `json:"insurance_summary"`
		RiskAssessment   triage.ClinicalRisk `json:"risk_assessment"`
	}{packet.PatientSnapshot, packet.VisitDetails, packet.InsuranceSummary, packet.RiskAssessment}

	data, err := json.Marshal(userContext)
	if err != nil {
		span.RecordError(err)
		return
	}
	userPrompt := fmt.Sprintf("Here is the visit context as JSON:\n%s\n\nReturn a JSON object with keys 'todo_for_clinic' (list of strings) and 'note_template' (object with keys subjective, objective, assessment, plan).", data)

	rawText, err := b.client.Complete(ctx, prepSystemPrompt, userPrompt)
	if err != nil {
		span.RecordError(err)
		b.logger.Warn("prep enrichment failed", "error", err)
		return
	}

	var parsed struct {
		TodoForClinic []string      `json:"todo_for_clinic"`
		NoteTemplate  *NoteTemplate `json:"note_template"`
	}
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		span.RecordError(err)
		return
	}
	if len(parsed.TodoForClinic) > 0 {
		packet.TodoForClinic = parsed.TodoForClinic
	}
	if parsed.NoteTemplate != nil {
		packet.NoteTemplate = *parsed.NoteTemplate
	}
}

func defaultTodoList() []string {
	return []string{
		"Verify that medication list is up to date.",
		"Confirm allergies and update EMR if needed.",
		"Collect any external lab or imaging results relevant to this visit.",
	}
}

func defaultNoteTemplate() NoteTemplate {
	return NoteTemplate{
		Subjective: []string{"Chief complaint and duration", "Relevant history of present illness"},
		Objective:  []string{"Vital signs and focused exam"},
		Assessment: []string{"Working diagnosis / differential"},
		Plan:       []string{"Diagnostics, treatment changes, follow-up"},
	}
}
