package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var assessorTracer = otel.Tracer("clinictriage.internal.triage.assessor")

const riskSystemPrompt = `You are a clinical triage assistant helping a small outpatient clinic prioritize patients.

You receive structured JSON with:
- patient: demographics, chronic_conditions, risk_flags, no_show_count
- insurance: eligibility info, plan, requires_referral, etc.
- proposed_reason: free-text reason for the upcoming visit
- existing_appointments: recent appointment history (including statuses like 'no_show' or 'cancelled').

Use these heuristic principles (you can weigh them, not just add them):
- Older age increases risk: especially >=75, then 65-74, then 50-64.
- High-risk chronic conditions (e.g., heart failure, CAD, COPD, diabetes, asthma) increase risk.
- Risk flags like high_cardiac_risk, behavioral_health, frequent_no_show increase risk.
- More no_show_count or many recent missed/cancelled appointments increase 'operational' risk.
- Insurance issues (not eligible, unclear eligibility, requires_referral) increase risk somewhat.
- Concerning reasons (chest pain, shortness of breath, suicidal ideation, overdose, psych crisis, recent ED/ER follow-up) should push risk to high.
- Routine/annual/wellness visits with few risk factors should be low.

OUTPUT SCHEMA (very important):
Respond with a SINGLE JSON object:
{
  "risk_score": <int between 0 and 100>,
  "risk_level": "low" | "medium" | "high",
  "factors": ["short_snake_case_reasons"],
  "recommended_urgency": "routine" | "within_7_days" | "within_48_hours" | "within_24_hours",
  "reason": "Short natural-language explanation"
}

Consistency rules:
- If risk_level is 'high', recommended_urgency should usually be 'within_24_hours' or 'within_48_hours'.
- If risk_level is 'medium', recommended_urgency is usually 'within_7_days'.
- If risk_level is 'low', recommended_urgency is usually 'routine'.
- Make risk_score broadly align with the level (e.g., high: 70-100, medium: 30-69, low: 0-29).`

// OracleAssessor scores visit risk through the shared oracle client.
type OracleAssessor struct {
	client *oracle.Client
	logger *logging.Logger

	// Now is injectable for deterministic age derivation in tests.
	Now func() time.Time
}

// NewOracleAssessor builds an assessor around an already-configured client.
func NewOracleAssessor(client *oracle.Client, logger *logging.Logger) *OracleAssessor {
	if client == nil {
		panic("triage: oracle client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OracleAssessor{client: client, logger: logger, Now: time.Now}
}

// Assess builds the structured payload and invokes the backend. It returns an
// explicit outcome and never mutates its input.
func (a *OracleAssessor) Assess(ctx context.Context, input AssessmentInput) Outcome {
	if !a.client.Available() {
		return UnavailableOutcome()
	}

	ctx, span := assessorTracer.Start(ctx, "triage.assess")
	defer span.End()
	span.SetAttributes(
		attribute.Int("clinic.patient_id", input.Patient.ID),
		attribute.String("clinic.model", a.client.Model()),
	)

	userPrompt, err := a.buildUserPrompt(input)
	if err != nil {
		span.RecordError(err)
		return FailureOutcome(err)
	}

	rawText, err := a.client.Complete(ctx, riskSystemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			return UnavailableOutcome()
		}
		span.RecordError(err)
		a.logger.Warn("oracle risk call failed", "error", err, "patient_id", input.Patient.ID)
		return FailureOutcome(err)
	}
	return JudgmentOutcome(rawText)
}

type assessmentPayload struct {
	Patient              payloadPatient      `json:"patient"`
	Insurance            insurance.Insurance `json:"insurance"`
	ProposedReason       string              `json:"proposed_reason"`
	ExistingAppointments []VisitRecord       `json:"existing_appointments"`
}

// payloadPatient extends the patient record with the derived age the backend
// needs for its age-band heuristics.
type payloadPatient struct {
	patients.Patient
	Age *int `json:"age"`
}

func (a *OracleAssessor) buildUserPrompt(input AssessmentInput) (string, error) {
	var age *int
	if !input.Patient.DOB.IsZero() {
		years := patients.AgeAt(input.Patient.DOB, a.Now())
		age = &years
	}

	history := input.History
	if history == nil {
		history = []VisitRecord{}
	}
	payload := assessmentPayload{
		Patient:              payloadPatient{Patient: input.Patient, Age: age},
		Insurance:            input.Insurance,
		ProposedReason:       input.ProposedReason,
		ExistingAppointments: history,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("triage: encode assessment payload: %w", err)
	}
	return "Here is the visit context as JSON. Apply the heuristic rules above and return ONLY the JSON object in the exact schema specified.\n\n" + string(data), nil
}
